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
	"context"
	"io"
	"net"

	liberr "github.com/zhangjinde/cerver/errors"
	"github.com/zhangjinde/cerver/packet"
	startStop "github.com/zhangjinde/cerver/runner/startStop"
	"github.com/zhangjinde/cerver/service"
	"github.com/zhangjinde/cerver/splice"
)

// spawnEgress implements the connector's obligation, on a successful
// connect, to start a service's egress read loop (C7). The loop is
// fire-and-forget: closing the egress connection (from MarkDisconnected
// or Teardown) is what stops it, per §5's cancellation model, so
// nothing here retains the runner beyond Start.
func (b *Balancer) spawnEgress(s *service.Service) {
	conn := s.Conn()
	if conn == nil {
		return
	}

	ctx := b.baseCtx
	if ctx == nil {
		ctx = context.Background()
	}

	runner := startStop.New(b.egressLoop(s, conn), nil)
	_ = runner.Start(ctx)
}

// egressLoop builds the FuncStart for one service's C7 read loop.
func (b *Balancer) egressLoop(s *service.Service, conn net.Conn) startStop.FuncStart {
	return func(ctx context.Context) error {
		buf := make([]byte, packet.Size)

		for {
			if _, err := io.ReadFull(conn, buf); err != nil {
				s.MarkDisconnected()
				b.armReconnect(s)
				return err
			}

			h, derr := packet.Decode(buf)
			if derr != nil {
				s.MarkDisconnected()
				b.armReconnect(s)
				return derr
			}
			if verr := h.Validate(); verr != nil {
				s.MarkDisconnected()
				b.armReconnect(s)
				return verr
			}

			body := h.BodySize()
			s.Counters.AddReceived(h.Type, packet.Size+body)

			switch h.Type {
			case packet.Client, packet.Auth, packet.Test:
				if body > 0 {
					if derr := splice.Drain(conn, int64(body)); derr != nil {
						s.MarkDisconnected()
						b.armReconnect(s)
						return derr
					}
				}

			case packet.Cerver, packet.Error, packet.Request, packet.Game,
				packet.App, packet.AppError, packet.Custom:
				b.routeToClient(s, conn, h, body)

			default:
				b.Stats.BadPacketsService.Add(1)
				if body > 0 {
					if derr := splice.Drain(conn, int64(body)); derr != nil {
						s.MarkDisconnected()
						b.armReconnect(s)
						return derr
					}
				}
			}
		}
	}
}

// routeToClient implements C7's forwarding branch: look up the client
// identified by the header's sock_fd tag and splice the reply to it. A
// lookup miss (the client disconnected mid-flight) drains the reply and
// counts it unhandled instead of erroring.
func (b *Balancer) routeToClient(s *service.Service, conn net.Conn, h packet.Header, body int) {
	client, ok := b.clientByFd(h.SockFd)
	if !ok {
		if body > 0 {
			_ = splice.Drain(conn, int64(body))
		}
		b.Stats.addUnhandled(packet.Size + body)
		return
	}

	var sent int64
	werr := client.WithWriteLock(func(c net.Conn) error {
		var serr liberr.Error
		sent, serr = splice.Splice(c, conn, h)
		if serr != nil {
			return serr
		}
		return nil
	})

	if werr != nil {
		// framing on the client connection can no longer be trusted;
		// sever it. The back-end is not notified (it will observe its
		// own write failures on a future reply, if any).
		_ = client.Close()
		b.Stats.addUnhandled(packet.Size + body)
		return
	}

	b.Stats.addSent(h.Type, packet.Size+int(sent))
}
