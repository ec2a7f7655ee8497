package overlay

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/mcastellin/gossip-overlay/internal/wire"
)

func TestSelectSeedsSizeIsFloorHalfPlusOne(t *testing.T) {
	cases := []struct {
		seeds int
		want  int
	}{
		{1, 1},
		{2, 2},
		{3, 2},
		{4, 3},
		{5, 3},
	}
	for _, tc := range cases {
		all := make([]string, tc.seeds)
		for i := range all {
			all[i] = "seed"
		}
		got := SelectSeeds(all)
		if len(got) != tc.want {
			t.Errorf("SelectSeeds(%d seeds) = %d, want %d", tc.seeds, len(got), tc.want)
		}
	}
}

// fakeSeed accepts one connection, records the frame it received, and
// replies with a fixed response.
func fakeSeed(t *testing.T, reply string) (addr string, received chan string) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	received = make(chan string, 8)

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go func(c net.Conn) {
				defer c.Close()
				buf := make([]byte, wire.MaxFrameBytes)
				n, err := c.Read(buf)
				if err != nil {
					return
				}
				received <- string(buf[:n])
				c.Write([]byte(reply))
			}(conn)
		}
	}()

	t.Cleanup(func() { ln.Close() })
	return ln.Addr().String(), received
}

func TestJoinSendsJoinRequestToEverySeed(t *testing.T) {
	seedAddr, received := fakeSeed(t, `Successfully Connected to "x"`)

	p := New(1, "127.0.0.1:6000", []string{seedAddr}, testLogger())
	p.Join(context.Background())

	select {
	case frame := <-received:
		if frame[:len(wire.TagJoinRequest)] != wire.TagJoinRequest {
			t.Fatalf("expected JOIN_REQUEST, got %q", frame)
		}
	case <-time.After(time.Second):
		t.Fatal("seed never received a JOIN_REQUEST")
	}
}

func TestQueryConnectedNodesMergesDirectoryAndSkipsEmptyReply(t *testing.T) {
	seedAddr, _ := fakeSeed(t, wire.DirectoryReply([]string{"127.0.0.1:6001", "127.0.0.1:6002"}))
	emptyAddr, _ := fakeSeed(t, wire.DirectoryReply(nil))

	p := New(1, "127.0.0.1:6000", []string{seedAddr, emptyAddr}, testLogger())
	p.QueryConnectedNodes(context.Background())

	got := p.Neighbors()
	if len(got) != 2 {
		t.Fatalf("expected 2 neighbors merged from the directory reply, got %v", got)
	}
}

func TestCapNeighborsKeepsAllWhenAtOrBelowMax(t *testing.T) {
	p := New(1, "127.0.0.1:6000", nil, testLogger())
	p.setNeighbors([]string{"a", "b", "c"})

	p.CapNeighbors(4)

	if len(p.Neighbors()) != 3 {
		t.Fatalf("CapNeighbors must not shrink a set already at or below max")
	}
}

func TestCapNeighborsShrinksToMax(t *testing.T) {
	p := New(1, "127.0.0.1:6000", nil, testLogger())
	p.setNeighbors([]string{"a", "b", "c", "d", "e", "f"})

	p.CapNeighbors(4)

	if len(p.Neighbors()) != 4 {
		t.Fatalf("expected exactly 4 neighbors after capping, got %d", len(p.Neighbors()))
	}
}
