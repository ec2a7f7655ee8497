package overlay

import (
	"context"
	"net"
	"testing"

	"github.com/mcastellin/gossip-overlay/internal/wire"
)

func TestInjectOnceRecordsAndFloodsOwnPayload(t *testing.T) {
	neighbor, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer neighbor.Close()

	p := New(1, "127.0.0.1:6000", nil, testLogger())
	p.setNeighbors([]string{neighbor.Addr().String()})

	done := make(chan string, 1)
	go func() { done <- acceptOne(t, neighbor) }()

	p.injectOnce(context.Background())

	frame := <-done
	fields := wire.Split([]byte(frame))
	if len(fields) != 3 {
		t.Fatalf("expected a 3-field gossip frame, got %q", frame)
	}
	if fields[1] != p.LocalAddr {
		t.Fatalf("gossip origin = %q, want %q", fields[1], p.LocalAddr)
	}
	if p.MessageCount() != 1 {
		t.Fatalf("expected the injected payload to be recorded, got count %d", p.MessageCount())
	}
	if !p.HasMessage(fields[2]) {
		t.Fatalf("message_list must contain the exact payload broadcast on the wire")
	}
}

func TestInjectOnceWithNoNeighborsStillRecordsPayload(t *testing.T) {
	p := New(1, "127.0.0.1:6000", nil, testLogger())
	p.injectOnce(context.Background())

	if p.MessageCount() != 1 {
		t.Fatalf("expected the payload to be recorded even with no neighbors to flood")
	}
}
