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

import "github.com/zhangjinde/cerver/errors"

const (
	ErrRegistryFull errors.CodeError = iota + errors.MinPkgService
	ErrRegistryIncomplete
	ErrDial
	ErrTestSend
	ErrTestReply
	ErrNoneWorking
	ErrNotWorking
)

func init() {
	errors.RegisterIdFctMessage(ErrRegistryFull, getMessage)
}

func getMessage(code errors.CodeError) (message string) {
	switch code {
	case ErrRegistryFull:
		return "service registry is already at its configured capacity of %d"
	case ErrRegistryIncomplete:
		return "service registry has %d of %d services registered"
	case ErrDial:
		return "failed to open the egress connection to the back-end"
	case ErrTestSend:
		return "failed to send the TEST health packet to the back-end"
	case ErrTestReply:
		return "failed waiting for the back-end's reply to the TEST packet"
	case ErrNoneWorking:
		return "no registered service reached WORKING at startup"
	case ErrNotWorking:
		return "service has no live egress connection to forward onto"
	}

	return ""
}
