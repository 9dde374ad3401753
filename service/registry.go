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

import (
	"sync"

	"github.com/zhangjinde/cerver/duration"
	liberr "github.com/zhangjinde/cerver/errors"
)

// Registry is the fixed-capacity back-end table (C3). Its size is fixed
// at construction; Register appends in order and fails once the
// registry is full. There is no deletion: a service that fails is
// marked Disconnected/Unavailable in place, never removed.
type Registry struct {
	mu       sync.RWMutex
	services []*Service
	capacity int
}

// NewRegistry allocates a registry for exactly n services. n must be
// the same n_services used to size the balancer.
func NewRegistry(n int) *Registry {
	return &Registry{
		services: make([]*Service, 0, n),
		capacity: n,
	}
}

// Register appends a new Service at the next free index. It fails with
// ErrRegistryFull once capacity services have been registered.
func (r *Registry) Register(address string, port int, name string, reconnectWait duration.Duration) (*Service, liberr.Error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.services) >= r.capacity {
		return nil, ErrRegistryFull.Errorf(r.capacity)
	}

	s := New(len(r.services), address, port, name, reconnectWait)
	r.services = append(r.services, s)
	return s, nil
}

// Len returns the number of services registered so far.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.services)
}

// Capacity returns n_services, the registry's fixed size.
func (r *Registry) Capacity() int {
	return r.capacity
}

// Full reports whether the registry has reached its configured
// capacity.
func (r *Registry) Full() bool {
	return r.Len() == r.capacity
}

// RequireFull returns ErrRegistryIncomplete unless exactly capacity
// services have been registered. The balancer calls this before start,
// per C3's "fully populated before start" precondition.
func (r *Registry) RequireFull() liberr.Error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.services) != r.capacity {
		return ErrRegistryIncomplete.Errorf(len(r.services), r.capacity)
	}
	return nil
}

// At returns the service at index i, or nil if out of range.
func (r *Registry) At(i int) *Service {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if i < 0 || i >= len(r.services) {
		return nil
	}
	return r.services[i]
}

// Each calls fn once per registered service, in registration order.
func (r *Registry) Each(fn func(*Service)) {
	r.mu.RLock()
	snapshot := make([]*Service, len(r.services))
	copy(snapshot, r.services)
	r.mu.RUnlock()

	for _, s := range snapshot {
		fn(s)
	}
}

// CountWorking returns the number of services currently Working.
func (r *Registry) CountWorking() int {
	n := 0
	r.Each(func(s *Service) {
		if s.Status() == Working {
			n++
		}
	})
	return n
}
