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

package balancer

import (
	"context"
	"io"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/zhangjinde/cerver/packet"
	sckcfg "github.com/zhangjinde/cerver/socket/config"
)

// echoService starts a bare TCP listener standing in for a back-end: it
// answers the connector's TEST packet and, for anything else, replies
// with an App packet carrying the same body and sock_fd tag, so the
// test can tell a routed reply apart from the original request.
func echoService(t *testing.T) (host string, port int, stop func()) {
	t.Helper()

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	go func() {
		for {
			conn, err := lis.Accept()
			if err != nil {
				return
			}
			go serveEcho(conn)
		}
	}()

	h, p, err := net.SplitHostPort(lis.Addr().String())
	if err != nil {
		t.Fatalf("split host port: %v", err)
	}
	portNum, err := strconv.Atoi(p)
	if err != nil {
		t.Fatalf("parse port: %v", err)
	}
	return h, portNum, func() { lis.Close() }
}

func serveEcho(c net.Conn) {
	defer c.Close()
	buf := make([]byte, packet.Size)
	for {
		if _, err := io.ReadFull(c, buf); err != nil {
			return
		}
		h, derr := packet.Decode(buf)
		if derr != nil {
			return
		}
		body := h.BodySize()
		bodyBuf := make([]byte, body)
		if body > 0 {
			if _, err := io.ReadFull(c, bodyBuf); err != nil {
				return
			}
		}

		if h.Type == packet.Test {
			reply := packet.New(packet.Test, 0, 0)
			if _, err := c.Write(reply.Encode()); err != nil {
				return
			}
			continue
		}

		reply := packet.New(packet.App, h.Request, body).WithSockFd(h.SockFd)
		if _, err := c.Write(reply.Encode()); err != nil {
			return
		}
		if body > 0 {
			if _, err := c.Write(bodyBuf); err != nil {
				return
			}
		}
	}
}

func startTestBalancer(t *testing.T, services []ServiceConfig) (*Balancer, func()) {
	t.Helper()

	cfg := Config{
		Name:     "test",
		Policy:   RoundRobin,
		Listen:   sckcfg.Config{Network: "tcp", Address: "127.0.0.1:0"},
		Services: services,
	}

	b, berr := New(cfg, nil)
	if berr != nil {
		t.Fatalf("New: %v", berr)
	}

	ctx, cancel := context.WithCancel(context.Background())
	if serr := b.Start(ctx); serr != nil {
		cancel()
		t.Fatalf("Start: %v", serr)
	}

	return b, func() {
		_ = b.Teardown(context.Background())
		cancel()
	}
}

func TestBalancerRoutesClientRequestToServiceAndBack(t *testing.T) {
	host, port, stopSvc := echoService(t)
	defer stopSvc()

	b, stopBal := startTestBalancer(t, []ServiceConfig{
		{Address: host, Port: port, Name: "svc-0"},
	})
	defer stopBal()

	client, err := net.Dial("tcp", b.Addr().String())
	if err != nil {
		t.Fatalf("dial balancer: %v", err)
	}
	defer client.Close()

	body := []byte("hello")
	req := packet.New(packet.App, 42, len(body))
	if _, err := client.Write(req.Encode()); err != nil {
		t.Fatalf("write request: %v", err)
	}
	if _, err := client.Write(body); err != nil {
		t.Fatalf("write body: %v", err)
	}

	client.SetReadDeadline(time.Now().Add(5 * time.Second))
	buf := make([]byte, packet.Size)
	if _, err := io.ReadFull(client, buf); err != nil {
		t.Fatalf("read reply header: %v", err)
	}
	h, derr := packet.Decode(buf)
	if derr != nil {
		t.Fatalf("decode reply header: %v", derr)
	}
	if h.Type != packet.App {
		t.Fatalf("reply type = %v, want App", h.Type)
	}
	if h.Request != 42 {
		t.Fatalf("reply request = %v, want 42", h.Request)
	}

	replyBody := make([]byte, h.BodySize())
	if _, err := io.ReadFull(client, replyBody); err != nil {
		t.Fatalf("read reply body: %v", err)
	}
	if string(replyBody) != "hello" {
		t.Fatalf("reply body = %q, want %q", replyBody, "hello")
	}

	if got := b.Stats.PacketsRouted.Load(); got != 1 {
		t.Fatalf("PacketsRouted = %d, want 1", got)
	}
	if got := b.Stats.PacketsSent.Load(); got != 1 {
		t.Fatalf("PacketsSent = %d, want 1", got)
	}
}

func TestBalancerSendsServicesUnavailableWhenNoServiceWorking(t *testing.T) {
	host, port, stopSvc := echoService(t)

	b, stopBal := startTestBalancer(t, []ServiceConfig{
		{Address: host, Port: port, Name: "svc-0"},
	})
	defer stopBal()

	// Kill the only back-end after the balancer already connected to it
	// and mark the service Disconnected, so no service is Working when the
	// client's request arrives and no reconnect has completed yet.
	stopSvc()
	b.Registry().At(0).MarkDisconnected()

	client, err := net.Dial("tcp", b.Addr().String())
	if err != nil {
		t.Fatalf("dial balancer: %v", err)
	}
	defer client.Close()

	req := packet.New(packet.App, 1, 0)
	if _, err := client.Write(req.Encode()); err != nil {
		t.Fatalf("write request: %v", err)
	}

	client.SetReadDeadline(time.Now().Add(5 * time.Second))
	buf := make([]byte, packet.Size)
	if _, err := io.ReadFull(client, buf); err != nil {
		t.Fatalf("read reply header: %v", err)
	}
	h, derr := packet.Decode(buf)
	if derr != nil {
		t.Fatalf("decode reply header: %v", derr)
	}
	if h.Type != packet.Error || h.Request != packet.ServicesUnavailable {
		t.Fatalf("reply = %+v, want Error/ServicesUnavailable", h)
	}
}
