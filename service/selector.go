/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
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

package service

import "sync"

// Selector implements C5: round-robin selection of a Working service.
// The cursor is advanced under Selector's own lock, which is held only
// for the walk itself, never across the subsequent splice.
type Selector struct {
	mu     sync.Mutex
	cursor int
	reg    *Registry
}

// NewSelector builds a Selector over reg. reg must already be Full by
// the time Pick is first called.
func NewSelector(reg *Registry) *Selector {
	return &Selector{reg: reg, cursor: -1}
}

// Pick advances the cursor and returns the next Working service, probing
// at most Capacity() services before giving up. It returns (nil, false)
// if no service is currently Working.
func (sel *Selector) Pick() (*Service, bool) {
	sel.mu.Lock()
	defer sel.mu.Unlock()

	n := sel.reg.Capacity()
	if n == 0 {
		return nil, false
	}

	for probes := 0; probes < n; probes++ {
		sel.cursor = (sel.cursor + 1) % n
		s := sel.reg.At(sel.cursor)
		if s != nil && s.Status().Selectable() {
			return s, true
		}
	}

	return nil, false
}
