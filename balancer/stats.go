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

package balancer

import (
	"sync/atomic"

	"github.com/zhangjinde/cerver/packet"
)

const typeSlots = int(packet.Bad) + 1

// Stats holds the balancer-wide traffic counters from the data model
// (§3): everything the balancer observes across all services and
// clients combined, as opposed to service.Counters which are scoped to
// one back-end.
//
// Every field is safe for concurrent use; ingress and egress handlers
// for different connections run in separate goroutines and must use
// atomic adds on this shared state.
type Stats struct {
	ReceivesDone    atomic.Uint64
	PacketsReceived atomic.Uint64
	BytesReceived   atomic.Uint64

	BadReceivesDone    atomic.Uint64 // ingress packets with packet_size < header size
	BadPacketsReceived atomic.Uint64
	BadBytesReceived   atomic.Uint64
	BadPacketsService  atomic.Uint64 // egress packets of an unrecognized type

	PacketsRouted atomic.Uint64 // client -> service
	BytesRouted   atomic.Uint64
	PacketsSent   atomic.Uint64 // service -> client
	BytesSent     atomic.Uint64

	UnhandledPackets atomic.Uint64
	UnhandledBytes   atomic.Uint64

	byTypeReceived [typeSlots]atomic.Uint64
	byTypeRouted   [typeSlots]atomic.Uint64
	byTypeSent     [typeSlots]atomic.Uint64
}

func (s *Stats) addReceived(t packet.Type, n int) {
	s.ReceivesDone.Add(1)
	s.PacketsReceived.Add(1)
	s.BytesReceived.Add(uint64(n))
	if int(t) < typeSlots {
		s.byTypeReceived[t].Add(1)
	}
}

func (s *Stats) addBadReceived(n int) {
	s.BadReceivesDone.Add(1)
	s.BadPacketsReceived.Add(1)
	s.BadBytesReceived.Add(uint64(n))
}

func (s *Stats) addRouted(t packet.Type, n int) {
	s.PacketsRouted.Add(1)
	s.BytesRouted.Add(uint64(n))
	if int(t) < typeSlots {
		s.byTypeRouted[t].Add(1)
	}
}

func (s *Stats) addSent(t packet.Type, n int) {
	s.PacketsSent.Add(1)
	s.BytesSent.Add(uint64(n))
	if int(t) < typeSlots {
		s.byTypeSent[t].Add(1)
	}
}

func (s *Stats) addUnhandled(n int) {
	s.UnhandledPackets.Add(1)
	s.UnhandledBytes.Add(uint64(n))
}

// ReceivedByType returns the number of packets of type t read from
// clients so far.
func (s *Stats) ReceivedByType(t packet.Type) uint64 {
	if int(t) >= typeSlots {
		return 0
	}
	return s.byTypeReceived[t].Load()
}

// RoutedByType returns the number of packets of type t forwarded to a
// service so far.
func (s *Stats) RoutedByType(t packet.Type) uint64 {
	if int(t) >= typeSlots {
		return 0
	}
	return s.byTypeRouted[t].Load()
}

// SentByType returns the number of packets of type t forwarded back to
// a client so far.
func (s *Stats) SentByType(t packet.Type) uint64 {
	if int(t) >= typeSlots {
		return 0
	}
	return s.byTypeSent[t].Load()
}
