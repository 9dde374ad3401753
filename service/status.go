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

// Package service models a single back-end instance fronted by the
// balancer: its address, connection lifecycle, status transitions, and
// per-service counters. It does not know about the balancer's selection
// policy or its clients; the balancer package wires those in.
package service

// Status is the lifecycle state of a back-end connection.
//
// A Status is only ever eligible for selection while it is Working. The
// zero value is None, the state every Service starts in before its
// first connect attempt.
type Status uint8

const (
	// None is the initial state: never connected.
	None Status = iota
	// Connecting is set the instant a connect attempt begins.
	Connecting
	// Ready is set once the TCP handshake succeeds, before the TEST
	// reply has been observed.
	Ready
	// Working is set once the TEST reply arrives; the service is
	// eligible for selection.
	Working
	// Unavailable is set when a connect attempt fails before ever
	// reaching Working.
	Unavailable
	// Disconnected is set when a previously Working service's egress
	// read loop observes EOF or an error; it arms the reconnect
	// supervisor.
	Disconnected
)

var statusNames = [...]string{
	None:         "NONE",
	Connecting:   "CONNECTING",
	Ready:        "READY",
	Working:      "WORKING",
	Unavailable:  "UNAVAILABLE",
	Disconnected: "DISCONNECTED",
}

func (s Status) String() string {
	if int(s) < len(statusNames) {
		return statusNames[s]
	}
	return "UNKNOWN"
}

// Selectable reports whether a service in this status may be returned by
// the selector.
func (s Status) Selectable() bool {
	return s == Working
}
