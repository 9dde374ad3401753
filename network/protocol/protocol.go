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

// Package protocol names the network protocols accepted by socket
// configuration and servers, as the strings accepted by the net package.
package protocol

import "strings"

// NetworkProtocol is a typed wrapper around the protocol strings accepted
// by net.Dial / net.Listen.
type NetworkProtocol uint8

const (
	NetworkEmpty NetworkProtocol = iota
	NetworkTCP
	NetworkTCP4
	NetworkTCP6
	NetworkUDP
	NetworkUDP4
	NetworkUDP6
	NetworkUnix
	NetworkUnixGram
	NetworkIP
	NetworkIP4
	NetworkIP6
)

var codes = map[NetworkProtocol]string{
	NetworkEmpty:    "",
	NetworkTCP:      "tcp",
	NetworkTCP4:     "tcp4",
	NetworkTCP6:     "tcp6",
	NetworkUDP:      "udp",
	NetworkUDP4:     "udp4",
	NetworkUDP6:     "udp6",
	NetworkUnix:     "unix",
	NetworkUnixGram: "unixgram",
	NetworkIP:       "ip",
	NetworkIP4:      "ip4",
	NetworkIP6:      "ip6",
}

// Code returns the protocol name as accepted by net.Dial / net.Listen.
func (n NetworkProtocol) Code() string {
	return codes[n]
}

// String implements fmt.Stringer.
func (n NetworkProtocol) String() string {
	return n.Code()
}

// IsTcp reports whether n designates a stream-oriented TCP variant.
func (n NetworkProtocol) IsTcp() bool {
	return n == NetworkTCP || n == NetworkTCP4 || n == NetworkTCP6
}

// Parse maps a case-insensitive protocol string to a NetworkProtocol. An
// unrecognized string yields NetworkEmpty.
func Parse(s string) NetworkProtocol {
	s = strings.ToLower(strings.TrimSpace(s))
	for n, c := range codes {
		if c == s && n != NetworkEmpty {
			return n
		}
	}
	return NetworkEmpty
}
