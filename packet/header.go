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

package packet

import (
	"encoding/binary"

	liberr "github.com/zhangjinde/cerver/errors"
)

// Size is the fixed wire width of a Header, in bytes.
const Size = 16

const (
	offType    = 0
	offRequest = 2
	offSize    = 4
	offSockFd  = 8
	offReserve = 12
)

// native is the host byte order. The codec never swaps bytes: balancer and
// services are assumed co-located on machines of identical architecture.
var native = binary.NativeEndian

// Header is the fixed 16-byte framing header carried at the front of
// every packet exchanged between client, balancer, and service.
type Header struct {
	// Type classifies the packet (CLIENT, APP, ERROR, TEST, ...).
	Type Type
	// Request is an application-defined subcode.
	Request RequestType
	// Size is the total packet size, header included. Always >= Size.
	Size uint32
	// SockFd is the routing tag: the client's socket descriptor, written
	// by the balancer on ingress and read back on egress to demux the
	// service's reply to the right client connection.
	SockFd uint32
	// Reserved is zero on send and ignored on receive.
	Reserved uint32
}

// BodySize returns the number of body bytes implied by h.Size, i.e. the
// bytes a reader still has to drain after the header itself.
//
// It is undefined (and may be negative were it signed) if h.Size < Size;
// callers must validate with Header.Validate first.
func (h Header) BodySize() int {
	return int(h.Size) - Size
}

// Validate reports whether the header's Size field describes a legal
// packet, i.e. one whose body is not negative in length. A packet that
// fails this check is a protocol violation and the connection carrying
// it must be terminated.
func (h Header) Validate() liberr.Error {
	if h.Size < Size {
		return ErrShortPacket.Errorf(h.Size, Size)
	}
	return nil
}

// Decode parses a Header out of buf. buf must be at least Size bytes;
// Decode is total over any slice of that length and performs no
// allocation.
func Decode(buf []byte) (Header, liberr.Error) {
	if len(buf) < Size {
		return Header{}, ErrBufferTooSmall.Errorf(len(buf), Size)
	}

	return Header{
		Type:     Type(native.Uint16(buf[offType:])),
		Request:  RequestType(native.Uint16(buf[offRequest:])),
		Size:     native.Uint32(buf[offSize:]),
		SockFd:   native.Uint32(buf[offSockFd:]),
		Reserved: native.Uint32(buf[offReserve:]),
	}, nil
}

// Encode serializes h into a freshly allocated Size-byte slice.
func (h Header) Encode() []byte {
	buf := make([]byte, Size)
	h.EncodeInto(buf)
	return buf
}

// EncodeInto writes h into buf, which must be at least Size bytes long.
// It is the allocation-free counterpart of Encode.
func (h Header) EncodeInto(buf []byte) {
	native.PutUint16(buf[offType:], uint16(h.Type))
	native.PutUint16(buf[offRequest:], uint16(h.Request))
	native.PutUint32(buf[offSize:], h.Size)
	native.PutUint32(buf[offSockFd:], h.SockFd)
	native.PutUint32(buf[offReserve:], h.Reserved)
}

// WithSockFd returns a copy of h with the SockFd tag overwritten. The
// balancer's ingress handler uses this to stamp the originating client's
// descriptor before forwarding a packet to a back-end.
func (h Header) WithSockFd(fd uint32) Header {
	h.SockFd = fd
	return h
}

// New builds a Header for a packet of the given type, request subcode
// and body length. The Size field is computed automatically.
func New(t Type, req RequestType, bodyLen int) Header {
	return Header{
		Type:    t,
		Request: req,
		Size:    uint32(Size + bodyLen),
	}
}
