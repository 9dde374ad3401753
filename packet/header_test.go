package packet_test

import (
	"testing"

	"github.com/zhangjinde/cerver/packet"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	h := packet.New(packet.App, packet.RequestType(7), 16)
	h.SockFd = 42

	buf := h.Encode()
	if len(buf) != packet.Size {
		t.Fatalf("encoded header size = %d, want %d", len(buf), packet.Size)
	}

	got, err := packet.Decode(buf)
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	if got != h {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, h)
	}
}

func TestDecodeTooSmall(t *testing.T) {
	_, err := packet.Decode(make([]byte, 8))
	if err == nil {
		t.Fatal("expected error decoding short buffer")
	}
}

func TestDecodeTotalOverLargerSlice(t *testing.T) {
	buf := make([]byte, 64)
	h := packet.New(packet.Test, 0, 48)
	h.EncodeInto(buf)

	got, err := packet.Decode(buf)
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	if got.Type != packet.Test || got.BodySize() != 48 {
		t.Fatalf("unexpected decode result: %+v", got)
	}
}

func TestValidateRejectsShortPacket(t *testing.T) {
	h := packet.Header{Size: 10}
	if err := h.Validate(); err == nil {
		t.Fatal("expected validation error for packet_size < header size")
	}
}

func TestValidateAcceptsZeroBody(t *testing.T) {
	h := packet.New(packet.Client, 0, 0)
	if err := h.Validate(); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}
	if h.BodySize() != 0 {
		t.Fatalf("BodySize() = %d, want 0", h.BodySize())
	}
}

func TestWithSockFdDoesNotMutateOriginal(t *testing.T) {
	h := packet.New(packet.App, 0, 0)
	tagged := h.WithSockFd(99)

	if h.SockFd != 0 {
		t.Fatalf("original header mutated: SockFd = %d", h.SockFd)
	}
	if tagged.SockFd != 99 {
		t.Fatalf("tagged.SockFd = %d, want 99", tagged.SockFd)
	}
}

func TestTypeString(t *testing.T) {
	if packet.App.String() != "APP" {
		t.Fatalf("String() = %q, want APP", packet.App.String())
	}
	if packet.Type(250).Valid() {
		t.Fatal("expected unregistered type to be invalid")
	}
}
