package overlay

import (
	"context"
	"fmt"
	"time"

	"github.com/mcastellin/gossip-overlay/internal/wire"
)

// gossipRounds is the number of self-gossip messages a peer injects over
// its lifetime.
const gossipRounds = 10

// gossipInterval is the delay between injected rounds.
const gossipInterval = 5 * time.Second

// Inject runs the self-gossip loop: gossipRounds times, the peer composes
// its own payload, records it in message_list so a copy flooded back to it
// by a neighbor is suppressed, and floods it to every current neighbor. The
// first round fires immediately; gossipInterval is only waited out between
// rounds, so the ten broadcasts land at t=0, gossipInterval, ...,
// 9*gossipInterval.
func (p *Peer) Inject(ctx context.Context) {
	for round := 0; round < gossipRounds; round++ {
		p.injectOnce(ctx)

		if round == gossipRounds-1 {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(gossipInterval):
		}
	}
}

// injectOnce performs a single injection round: compose, dedupe-record and
// flood this peer's own gossip payload. Split out of Inject so tests can
// exercise one round without waiting out gossipInterval.
func (p *Peer) injectOnce(ctx context.Context) {
	payload := fmt.Sprintf("Hello, this is peer @%s!", p.LocalAddr)

	p.mu.Lock()
	p.messageList[payload] = struct{}{}
	neighbors := make([]string, 0, len(p.connectedNodes))
	for n := range p.connectedNodes {
		neighbors = append(neighbors, n)
	}
	p.mu.Unlock()

	frame := wire.Gossip(p.Elapsed(), p.LocalAddr, payload)
	p.broadcast(ctx, neighbors, frame)
}
