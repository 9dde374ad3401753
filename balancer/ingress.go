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
	"io"
	"net"

	"github.com/zhangjinde/cerver/logger"
	"github.com/zhangjinde/cerver/packet"
	"github.com/zhangjinde/cerver/socket"
	"github.com/zhangjinde/cerver/splice"
)

// ingress implements C6: the per-client read loop run by the embedded
// server for as long as the connection stays open. It is the
// socket.HandlerFunc passed to tcp.New.
func (b *Balancer) ingress(c socket.Context) {
	buf := make([]byte, packet.Size)

	for {
		if _, err := io.ReadFull(c, buf); err != nil {
			return // EOF or error: server runtime closes c on return.
		}

		h, derr := packet.Decode(buf)
		if derr != nil {
			return
		}

		if verr := h.Validate(); verr != nil {
			// packet_size < 16: protocol violation, close the connection.
			// Only the header itself was read, so there is nothing to
			// drain and no byte counters to update beyond "bad".
			b.Stats.addBadReceived(packet.Size)
			return
		}

		body := h.BodySize()
		b.Stats.addReceived(h.Type, packet.Size+body)

		selected, ok := b.selector.Pick()
		if !ok {
			b.Stats.addUnhandled(packet.Size + body)
			b.sendServicesUnavailable(c)
			if body > 0 {
				_ = splice.Drain(c, int64(body))
			}
			continue
		}

		tagged := h.WithSockFd(c.Fd())
		if _, ferr := selected.Forward(tagged, c); ferr != nil {
			selected.MarkDisconnected()
			b.log.Warning("egress forward failed, service marked disconnected", logger.Fields{
				"service": selected.Name(), "error": ferr.Error(),
			})
			b.armReconnect(selected)
			b.Stats.addUnhandled(packet.Size + body)
			continue
		}

		selected.Counters.AddRouted(h.Type, packet.Size+body)
		b.Stats.addRouted(h.Type, packet.Size+body)
	}
}

// sendServicesUnavailable writes the balancer-generated Error packet
// (§6) to a client when the selector found no WORKING service.
func (b *Balancer) sendServicesUnavailable(c socket.Context) {
	const msg = "Services unavailable"
	h := packet.New(packet.Error, packet.ServicesUnavailable, len(msg))

	_ = c.WithWriteLock(func(conn net.Conn) error {
		if err := writeAll(conn, h.Encode()); err != nil {
			return err
		}
		return writeAll(conn, []byte(msg))
	})
}

func writeAll(w net.Conn, buf []byte) error {
	for len(buf) > 0 {
		n, err := w.Write(buf)
		if err != nil {
			return err
		}
		buf = buf[n:]
	}
	return nil
}
