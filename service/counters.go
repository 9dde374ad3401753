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
	"sync/atomic"

	"github.com/zhangjinde/cerver/packet"
)

// typeSlots is sized one past packet.Bad, the highest enumerated type.
const typeSlots = int(packet.Bad) + 1

// Counters holds one service's monotonic traffic counters. Routed
// counters track client->service traffic (C6); Received counters track
// service->client traffic (C7). All fields are safe for concurrent use.
type Counters struct {
	PacketsRouted   atomic.Uint64
	BytesRouted     atomic.Uint64
	PacketsReceived atomic.Uint64
	BytesReceived   atomic.Uint64

	byTypeRouted   [typeSlots]atomic.Uint64
	byTypeReceived [typeSlots]atomic.Uint64
}

// AddRouted records n bytes of a packet of type t forwarded to the
// service.
func (c *Counters) AddRouted(t packet.Type, n int) {
	c.PacketsRouted.Add(1)
	c.BytesRouted.Add(uint64(n))
	if int(t) < typeSlots {
		c.byTypeRouted[t].Add(1)
	}
}

// AddReceived records n bytes of a packet of type t received from the
// service.
func (c *Counters) AddReceived(t packet.Type, n int) {
	c.PacketsReceived.Add(1)
	c.BytesReceived.Add(uint64(n))
	if int(t) < typeSlots {
		c.byTypeReceived[t].Add(1)
	}
}

// RoutedByType returns the number of packets of type t routed to the
// service so far.
func (c *Counters) RoutedByType(t packet.Type) uint64 {
	if int(t) >= typeSlots {
		return 0
	}
	return c.byTypeRouted[t].Load()
}

// ReceivedByType returns the number of packets of type t received from
// the service so far.
func (c *Counters) ReceivedByType(t packet.Type) uint64 {
	if int(t) >= typeSlots {
		return 0
	}
	return c.byTypeReceived[t].Load()
}
