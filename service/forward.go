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
	"net"

	liberr "github.com/zhangjinde/cerver/errors"
	"github.com/zhangjinde/cerver/packet"
	"github.com/zhangjinde/cerver/splice"
)

// Forward splices h and its body, read from src, onto this service's
// egress connection. Writes are serialized against concurrent Forward
// calls from other ingress handlers that also selected this service,
// satisfying the "one write mutex per egress socket" requirement: many
// clients may round-robin onto the same back-end and their ingress
// handlers run concurrently.
func (s *Service) Forward(h packet.Header, src net.Conn) (int64, liberr.Error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	conn := s.Conn()
	if conn == nil {
		return 0, ErrNotWorking.Error(nil)
	}
	return splice.Splice(conn, src, h)
}
