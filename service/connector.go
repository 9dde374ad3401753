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
	"context"
	"io"
	"net"

	liberr "github.com/zhangjinde/cerver/errors"
	"github.com/zhangjinde/cerver/packet"
	"github.com/zhangjinde/cerver/splice"
)

// Connect implements C4: dial the back-end, send a health TEST packet,
// and wait for any reply before declaring the service Working.
//
// Transitions are monotonic for the duration of one call: None (or
// Disconnected, on a reconnect) -> Connecting -> Ready -> Working on
// success, or -> Unavailable on any failure. On success s.Conn() returns
// the new egress connection; the caller (the balancer) is responsible
// for spawning the egress read loop.
func (s *Service) Connect(ctx context.Context) liberr.Error {
	s.setStatus(Connecting)

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", s.target())
	if err != nil {
		s.setStatus(Unavailable)
		return ErrDial.Error(err)
	}

	s.setStatus(Ready)

	if err := sendTest(conn); err != nil {
		conn.Close()
		s.setStatus(Unavailable)
		return ErrTestSend.Error(err)
	}

	if err := awaitReply(conn); err != nil {
		conn.Close()
		s.setStatus(Unavailable)
		return ErrTestReply.Error(err)
	}

	s.mu.Lock()
	s.conn = conn
	s.status = Working
	s.mu.Unlock()

	return nil
}

// sendTest writes a single zero-body TEST packet to conn.
func sendTest(conn net.Conn) error {
	h := packet.New(packet.Test, 0, 0)
	buf := h.Encode()
	for len(buf) > 0 {
		n, err := conn.Write(buf)
		if err != nil {
			return err
		}
		buf = buf[n:]
	}
	return nil
}

// awaitReply blocks for any single reply packet on conn: a back-end is
// considered Working the moment it replies at all, per spec. Any body
// bytes the reply carries are drained so framing stays aligned for the
// egress loop that takes over right after.
func awaitReply(conn net.Conn) error {
	buf := make([]byte, packet.Size)
	if _, err := io.ReadFull(conn, buf); err != nil {
		return err
	}

	h, derr := packet.Decode(buf)
	if derr != nil {
		return derr
	}
	if verr := h.Validate(); verr != nil {
		return verr
	}

	if body := h.BodySize(); body > 0 {
		if derr := splice.Drain(conn, int64(body)); derr != nil {
			return derr
		}
	}
	return nil
}

// MarkDisconnected implements the Working->Disconnected arming edge of
// C7/C8: it is a no-op unless the service is currently Working, so a
// concurrent egress loop and a stale caller cannot close or clear a
// connection twice for the same failure. It does not arm the reconnect
// supervisor itself; ArmReconnect's own guard keeps that single. The
// egress connection is closed before returning.
func (s *Service) MarkDisconnected() {
	s.mu.Lock()
	if s.status != Working {
		s.mu.Unlock()
		return
	}
	s.status = Disconnected
	conn := s.conn
	s.conn = nil
	s.mu.Unlock()

	if conn != nil {
		conn.Close()
	}
}

// Close tears down the service's egress connection unconditionally,
// regardless of its current status. Used by lifecycle teardown (C9).
func (s *Service) Close() error {
	s.mu.Lock()
	conn := s.conn
	s.conn = nil
	s.mu.Unlock()

	if conn != nil {
		return conn.Close()
	}
	return nil
}
