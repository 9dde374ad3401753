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

// Package splice forwards a framed packet from one stream socket to
// another: the 16-byte header first, verbatim and atomically, then
// exactly the number of body bytes the header's Size field implies.
//
// The body transfer prefers the kernel's zero-copy splice(2) primitive
// (via a pipe pair) on platforms that support it, falling back to a
// bounded-buffer read/write loop with identical observable behavior
// everywhere else.
//
// The splicer never peeks: once header bytes are committed to dst, the
// body must follow or dst must be torn down. A half-delivered packet
// cannot be recovered by a later read, so after any mid-body failure the
// caller closes the destination connection; Splice itself closes neither
// connection.
package splice

import (
	"io"
	"net"
	"sync"

	liberr "github.com/zhangjinde/cerver/errors"
	"github.com/zhangjinde/cerver/packet"
)

// maxFallbackChunk bounds a single read/write iteration of the
// buffered fallback copy path.
const maxFallbackChunk = 64 * 1024

var bufPool = sync.Pool{
	New: func() any {
		b := make([]byte, maxFallbackChunk)
		return &b
	},
}

// Splice writes h's wire encoding to dst, then transfers exactly
// h.BodySize() bytes read from src to dst. It returns the number of body
// bytes successfully transferred.
//
// On any failure — a short/erroring header write, or an error or
// premature EOF during the body transfer — the caller must treat dst as
// unusable: framing on that connection can no longer be trusted and the
// connection must be closed. src is never closed by Splice.
func Splice(dst, src net.Conn, h packet.Header) (int64, liberr.Error) {
	if err := writeHeader(dst, h); err != nil {
		return 0, ErrShortHeaderWrite.Error(err)
	}

	n := int64(h.BodySize())
	if n == 0 {
		return 0, nil
	}

	if sent, ok := trySpliceFast(dst, src, n); ok {
		if sent < n {
			return sent, ErrBodyTransfer.Errorf(sent, n)
		}
		return sent, nil
	}

	sent, err := copyFallback(dst, src, n)
	if err != nil {
		return sent, ErrBodyTransfer.Error(err)
	}
	if sent < n {
		return sent, ErrBodyTransfer.Errorf(sent, n)
	}
	return sent, nil
}

// writeHeader writes the 16-byte header to dst as a single logical
// write, retrying on short writes until the full header lands or the
// socket errors.
func writeHeader(dst io.Writer, h packet.Header) error {
	buf := h.Encode()
	for len(buf) > 0 {
		n, err := dst.Write(buf)
		if err != nil {
			return err
		}
		buf = buf[n:]
	}
	return nil
}

// copyFallback is the bounded-buffer read/write loop used when the
// kernel zero-copy path is unavailable or fails.
func copyFallback(dst io.Writer, src io.Reader, n int64) (int64, error) {
	bp := bufPool.Get().(*[]byte)
	defer bufPool.Put(bp)
	buf := *bp

	var total int64
	for total < n {
		want := n - total
		if want > int64(len(buf)) {
			want = int64(len(buf))
		}

		rn, rerr := src.Read(buf[:want])
		if rn > 0 {
			wn, werr := dst.Write(buf[:rn])
			total += int64(wn)
			if werr != nil {
				return total, werr
			}
			if int64(wn) != int64(rn) {
				return total, io.ErrShortWrite
			}
		}
		if rerr != nil {
			if rerr == io.EOF {
				return total, io.ErrUnexpectedEOF
			}
			return total, rerr
		}
	}
	return total, nil
}

// Drain reads and discards exactly n bytes from src, restoring framing
// alignment on a stream socket after a packet whose body is not meant to
// be forwarded (e.g. an AUTH or CLIENT control packet, or the body of a
// response whose target client has already disconnected).
func Drain(src io.Reader, n int64) liberr.Error {
	if n <= 0 {
		return nil
	}

	bp := bufPool.Get().(*[]byte)
	defer bufPool.Put(bp)
	buf := *bp

	remaining := n
	for remaining > 0 {
		want := remaining
		if want > int64(len(buf)) {
			want = int64(len(buf))
		}
		rn, err := src.Read(buf[:want])
		remaining -= int64(rn)
		if err != nil {
			if remaining <= 0 {
				return nil
			}
			return ErrDrainFailed.Error(err)
		}
	}
	return nil
}
