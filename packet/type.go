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

// Package packet implements the fixed-size binary framing header shared by
// every hop of a cerver deployment (client, balancer, back-end service).
//
// A packet on the wire is a 16-byte header followed by a body of
// packet_size-16 bytes. The codec in this package never allocates on
// decode and performs no endianness conversion: the balancer and every
// service it fronts are assumed to run on machines of the same byte
// order, so the header is copied verbatim between sockets.
package packet

import "fmt"

// Type enumerates the packet_type field of the wire header.
type Type uint16

const (
	None     Type = 0
	Cerver   Type = 1
	Client   Type = 2
	Error    Type = 3
	Auth     Type = 4
	Request  Type = 5
	Game     Type = 6
	App      Type = 7
	AppError Type = 8
	Custom   Type = 9
	Test     Type = 10
	Bad      Type = 11
)

// typeNames is used only by String, for logging and error messages.
var typeNames = map[Type]string{
	None:     "NONE",
	Cerver:   "CERVER",
	Client:   "CLIENT",
	Error:    "ERROR",
	Auth:     "AUTH",
	Request:  "REQUEST",
	Game:     "GAME",
	App:      "APP",
	AppError: "APP_ERROR",
	Custom:   "CUSTOM",
	Test:     "TEST",
	Bad:      "BAD",
}

func (t Type) String() string {
	if s, ok := typeNames[t]; ok {
		return s
	}
	return fmt.Sprintf("UNKNOWN(%d)", uint16(t))
}

// Valid reports whether t is one of the enumerated packet types.
func (t Type) Valid() bool {
	_, ok := typeNames[t]
	return ok
}

// RequestType is an application-defined subcode carried alongside Type.
type RequestType uint16

// Well-known request types used by the balancer itself; applications are
// free to define their own above these.
const (
	// ServicesUnavailable is the request_type of a balancer-generated
	// Error packet sent when no back-end is WORKING.
	ServicesUnavailable RequestType = 1
)
