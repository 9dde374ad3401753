package tcp_test

import (
	"context"
	"io"
	"net"
	"testing"
	"time"

	"github.com/zhangjinde/cerver/socket"
	sckcfg "github.com/zhangjinde/cerver/socket/config"
	"github.com/zhangjinde/cerver/socket/server/tcp"
)

func echoHandler(c socket.Context) {
	defer func() { _ = c.Close() }()
	buf := make([]byte, 256)
	for {
		n, err := c.Read(buf)
		if n > 0 {
			if _, werr := c.Write(buf[:n]); werr != nil {
				return
			}
		}
		if err != nil {
			return
		}
	}
}

func freeAddr(t *testing.T) string {
	t.Helper()
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed reserving a free port: %v", err)
	}
	addr := lis.Addr().String()
	_ = lis.Close()
	return addr
}

func TestNewRejectsEmptyAddress(t *testing.T) {
	_, err := tcp.New(nil, echoHandler, sckcfg.Config{})
	if err == nil {
		t.Fatal("expected error for empty address")
	}
}

func TestServerLifecycleAndEcho(t *testing.T) {
	cfg := sckcfg.Config{Network: "tcp", Address: freeAddr(t)}
	srv, err := tcp.New(nil, echoHandler, cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if !srv.IsGone() || srv.IsRunning() {
		t.Fatal("expected fresh server to be gone and not running")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() { _ = srv.Start(ctx) }()

	var conn net.Conn
	for i := 0; i < 100; i++ {
		conn, err = net.DialTimeout("tcp", cfg.Address, 50*time.Millisecond)
		if err == nil {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	defer conn.Close()

	msg := []byte("hello balancer")
	if _, err := conn.Write(msg); err != nil {
		t.Fatalf("write: %v", err)
	}

	got := make([]byte, len(msg))
	if _, err := io.ReadFull(conn, got); err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got) != string(msg) {
		t.Fatalf("echo mismatch: got %q want %q", got, msg)
	}

	deadline := time.After(time.Second)
	for srv.OpenConnections() != 1 {
		select {
		case <-deadline:
			t.Fatal("open connection count never reached 1")
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()

	deadline = time.After(time.Second)
	for srv.IsRunning() {
		select {
		case <-deadline:
			t.Fatal("server never stopped after context cancellation")
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestLookupMissAfterDisconnect(t *testing.T) {
	cfg := sckcfg.Config{Network: "tcp", Address: freeAddr(t)}
	srv, err := tcp.New(nil, echoHandler, cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = srv.Start(ctx) }()

	var conn net.Conn
	for i := 0; i < 100; i++ {
		conn, err = net.DialTimeout("tcp", cfg.Address, 50*time.Millisecond)
		if err == nil {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}

	deadline := time.After(time.Second)
	for srv.OpenConnections() != 1 {
		select {
		case <-deadline:
			t.Fatal("connection never registered")
		case <-time.After(5 * time.Millisecond):
		}
	}

	_ = conn.Close()

	deadline = time.After(time.Second)
	for srv.OpenConnections() != 0 {
		select {
		case <-deadline:
			t.Fatal("connection never deregistered after close")
		case <-time.After(5 * time.Millisecond):
		}
	}
}
