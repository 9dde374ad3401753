/*
 * MIT License
 *
 * Copyright (c) 2022 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

package startStop

import (
	"context"
	"errors"
	"sync"
	"time"
)

type runner struct {
	mu sync.Mutex

	fctStart FuncStart
	fctStop  FuncStop

	running bool
	startAt time.Time

	cancel context.CancelFunc

	done chan struct{}

	errList []error
}

func (r *runner) Start(ctx context.Context) error {
	r.mu.Lock()

	if r.running {
		r.mu.Unlock()
		return nil
	}

	if r.fctStart == nil {
		err := errors.New("startStop: invalid start function (nil)")
		r.errList = append(r.errList, err)
		r.mu.Unlock()
		return err
	}

	cctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.running = true
	r.startAt = time.Now()
	r.done = make(chan struct{})

	done := r.done
	fct := r.fctStart

	r.mu.Unlock()

	go func() {
		err := fct(cctx)

		r.mu.Lock()
		if err != nil {
			r.errList = append(r.errList, err)
		}
		r.running = false
		r.startAt = time.Time{}
		r.mu.Unlock()

		close(done)
	}()

	return nil
}

func (r *runner) Stop(ctx context.Context) error {
	r.mu.Lock()

	if !r.running {
		r.mu.Unlock()
		return nil
	}

	cancel := r.cancel
	done := r.done

	r.mu.Unlock()

	if cancel != nil {
		cancel()
	}

	if done != nil {
		select {
		case <-done:
		case <-ctx.Done():
		}
	}

	var err error
	if r.fctStop != nil {
		err = r.fctStop(ctx)
	}

	r.mu.Lock()
	if err != nil {
		r.errList = append(r.errList, err)
	}
	r.running = false
	r.startAt = time.Time{}
	r.mu.Unlock()

	return err
}

func (r *runner) Restart(ctx context.Context) error {
	if err := r.Stop(ctx); err != nil {
		return err
	}
	return r.Start(ctx)
}

func (r *runner) IsRunning() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

func (r *runner) Uptime() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.running || r.startAt.IsZero() {
		return 0
	}
	return time.Since(r.startAt)
}

func (r *runner) ErrorsLast() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.errList) == 0 {
		return nil
	}
	return r.errList[len(r.errList)-1]
}

func (r *runner) ErrorsList() []error {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]error, len(r.errList))
	copy(out, r.errList)
	return out
}
