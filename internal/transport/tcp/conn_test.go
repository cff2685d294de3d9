package tcp_test

import (
	"errors"
	"net"
	"testing"

	"superchat/internal/transport/tcp"
	"superchat/pkg/protocol"
)

func connPair(t *testing.T) (*tcp.Conn, *tcp.Conn) {
	t.Helper()
	a, b := net.Pipe()
	t.Cleanup(func() {
		a.Close()
		b.Close()
	})
	return tcp.NewConn(a), tcp.NewConn(b)
}

func TestConn_RoundTrip(t *testing.T) {
	server, client := connPair(t)

	go func() {
		_ = client.WriteBody([]byte("alice"))
		_ = client.WriteBody([]byte("alice [10:00] : hello"))
	}()

	for _, want := range []string{"alice", "alice [10:00] : hello"} {
		body, err := server.ReadBody()
		if err != nil {
			t.Fatalf("ReadBody() error = %v", err)
		}
		if string(body) != want {
			t.Errorf("ReadBody() = %q, want %q", body, want)
		}
	}
}

func TestConn_MalformedHeaderSurfaces(t *testing.T) {
	a, b := net.Pipe()
	t.Cleanup(func() {
		a.Close()
		b.Close()
	})
	server := tcp.NewConn(a)

	go func() {
		_, _ = b.Write([]byte("xxxxgarbage"))
	}()

	_, err := server.ReadBody()
	if !errors.Is(err, protocol.ErrMalformedHeader) {
		t.Errorf("ReadBody() error = %v, want ErrMalformedHeader", err)
	}
}

func TestConn_CloseUnblocksRead(t *testing.T) {
	server, _ := connPair(t)

	done := make(chan error, 1)
	go func() {
		_, err := server.ReadBody()
		done <- err
	}()

	if err := server.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := <-done; err == nil {
		t.Error("ReadBody() returned nil error after close")
	}
}
