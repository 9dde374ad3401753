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

package tcp

import (
	"context"
	"net"
	"sync"
	"sync/atomic"

	"github.com/zhangjinde/cerver/socket"
	sckcfg "github.com/zhangjinde/cerver/socket/config"
)

type server struct {
	cfg     sckcfg.Config
	update  socket.UpdateConnFunc
	handler socket.HandlerFunc

	mu       sync.Mutex
	listener net.Listener
	running  bool
	gone     bool

	connMu sync.RWMutex
	conns  map[uint32]socket.Context

	openCount atomic.Int64
}

func (s *server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}

	// cfg.Network is required and pre-validated by sckcfg.Config.Validate
	// (config.Load defaults it to "tcp" when unset in the source file).
	lis, err := listenWithBacklog(ctx, s.cfg.Network, s.cfg.Address, s.cfg.Backlog)
	if err != nil {
		s.mu.Unlock()
		return err
	}

	s.listener = lis
	s.running = true
	s.gone = false
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		_ = s.Close()
	}()

	var wg sync.WaitGroup
	defer func() {
		wg.Wait()
		s.mu.Lock()
		s.running = false
		s.gone = true
		s.mu.Unlock()
	}()

	for {
		conn, err := lis.Accept()
		if err != nil {
			return nil
		}

		if s.update != nil {
			s.update(conn)
		}

		fd := socket.FdOf(conn)
		c := socket.NewContext(conn, fd)

		s.connMu.Lock()
		s.conns[fd] = c
		s.connMu.Unlock()
		s.openCount.Add(1)

		wg.Add(1)
		go func() {
			defer wg.Done()
			defer s.forget(fd)
			defer c.Close()

			if s.handler != nil {
				s.handler(c)
			}
		}()
	}
}

func (s *server) forget(fd uint32) {
	s.connMu.Lock()
	defer s.connMu.Unlock()
	// Close already removed and uncounted every tracked connection.
	if _, ok := s.conns[fd]; !ok {
		return
	}
	delete(s.conns, fd)
	s.openCount.Add(-1)
}

func (s *server) Close() error {
	s.mu.Lock()
	lis := s.listener
	s.mu.Unlock()

	if lis != nil {
		_ = lis.Close()
	}

	s.connMu.Lock()
	for fd, c := range s.conns {
		_ = c.Close()
		delete(s.conns, fd)
	}
	s.connMu.Unlock()
	s.openCount.Store(0)

	s.mu.Lock()
	s.running = false
	s.gone = true
	s.mu.Unlock()

	return nil
}

func (s *server) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *server) IsGone() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gone
}

func (s *server) OpenConnections() int64 {
	return s.openCount.Load()
}

func (s *server) Lookup(fd uint32) (socket.Context, bool) {
	s.connMu.RLock()
	defer s.connMu.RUnlock()
	c, ok := s.conns[fd]
	return c, ok
}

func (s *server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}
