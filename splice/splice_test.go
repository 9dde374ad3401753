package splice_test

import (
	"bytes"
	"io"
	"net"
	"testing"
	"time"

	"github.com/zhangjinde/cerver/packet"
	"github.com/zhangjinde/cerver/splice"
)

// tcpPipe returns a pair of connected, in-process TCP sockets so tests
// can exercise both the kernel fast path (on linux) and the portable
// fallback identically.
func tcpPipe(t *testing.T) (a, b net.Conn) {
	t.Helper()

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer lis.Close()

	accepted := make(chan net.Conn, 1)
	go func() {
		c, _ := lis.Accept()
		accepted <- c
	}()

	client, err := net.DialTimeout("tcp", lis.Addr().String(), time.Second)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}

	server := <-accepted
	if server == nil {
		t.Fatal("accept failed")
	}
	return client, server
}

func TestSpliceForwardsHeaderAndBody(t *testing.T) {
	client, server := tcpPipe(t)
	defer client.Close()
	defer server.Close()

	body := []byte("0123456789ABCDEF")
	h := packet.New(packet.App, 0, len(body))

	srcReader, srcWriter := net.Pipe()
	defer srcReader.Close()
	defer srcWriter.Close()

	go func() {
		_, _ = srcWriter.Write(body)
	}()

	done := make(chan struct{})
	var sent int64
	var serr error
	go func() {
		sent, serr = splice.Splice(client, srcReader, h)
		close(done)
	}()

	buf := make([]byte, packet.Size+len(body))
	if _, err := io.ReadFull(server, buf); err != nil {
		t.Fatalf("read on destination: %v", err)
	}
	<-done

	if serr != nil {
		t.Fatalf("Splice error: %v", serr)
	}
	if sent != int64(len(body)) {
		t.Fatalf("sent = %d, want %d", sent, len(body))
	}

	gotHeader, err := packet.Decode(buf[:packet.Size])
	if err != nil {
		t.Fatalf("decode header: %v", err)
	}
	if gotHeader != h {
		t.Fatalf("header mismatch: got %+v want %+v", gotHeader, h)
	}
	if !bytes.Equal(buf[packet.Size:], body) {
		t.Fatalf("body mismatch: got %q want %q", buf[packet.Size:], body)
	}
}

func TestSpliceZeroBodyOnlyWritesHeader(t *testing.T) {
	client, server := tcpPipe(t)
	defer client.Close()
	defer server.Close()

	h := packet.New(packet.Test, 0, 0)

	emptySrc, emptySrcW := net.Pipe()
	defer emptySrc.Close()
	defer emptySrcW.Close()

	sent, err := splice.Splice(client, emptySrc, h)
	if err != nil {
		t.Fatalf("Splice: %v", err)
	}
	if sent != 0 {
		t.Fatalf("sent = %d, want 0", sent)
	}

	buf := make([]byte, packet.Size)
	if _, err := io.ReadFull(server, buf); err != nil {
		t.Fatalf("read header: %v", err)
	}
	got, _ := packet.Decode(buf)
	if got != h {
		t.Fatalf("header mismatch: got %+v want %+v", got, h)
	}
}

func TestDrainDiscardsExactBodyLength(t *testing.T) {
	r, w := net.Pipe()
	defer r.Close()
	defer w.Close()

	body := bytes.Repeat([]byte{0xAA}, 100)
	go func() { _, _ = w.Write(body) }()

	if err := splice.Drain(r, int64(len(body))); err != nil {
		t.Fatalf("Drain: %v", err)
	}
}

func TestDrainZeroIsNoop(t *testing.T) {
	if err := splice.Drain(nil, 0); err != nil {
		t.Fatalf("Drain(0) returned error: %v", err)
	}
}
