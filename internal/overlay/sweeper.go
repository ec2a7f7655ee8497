package overlay

import (
	"context"
	"time"

	"github.com/mcastellin/gossip-overlay/internal/wire"
)

// sweepGrace is the delay before the first sweep, giving bootstrap and the
// first round of probes time to settle connection_times.
const sweepGrace = 2 * time.Second

// sweepInterval is the period between sweeps thereafter.
const sweepInterval = 14 * time.Second

// deadNodeTimeoutMs is the "three missed probes" threshold: with a 13s
// probe interval, three consecutive misses push the silence gap past this
// many milliseconds.
const deadNodeTimeoutMs = 39000

// Sweep runs the failure-detector loop: after an initial grace period, on
// every tick it scans connection_times for neighbors silent longer than
// deadNodeTimeoutMs, evicts them, and reports each eviction to every seed
// this peer uses. The scan itself only reads connection_times under its
// own lock; eviction and the DEAD_NODE broadcast happen afterward, outside
// that lock, so the sweeper never holds connMu across outbound I/O.
func (p *Peer) Sweep(ctx context.Context) {
	select {
	case <-ctx.Done():
		return
	case <-time.After(sweepGrace):
	}

	for {
		p.sweepOnce(ctx)

		select {
		case <-ctx.Done():
			return
		case <-time.After(sweepInterval):
		}
	}
}

func (p *Peer) sweepOnce(ctx context.Context) {
	now := p.ElapsedMillis()

	p.connMu.Lock()
	var stale []string
	for neighbor, lastMs := range p.connectionTimes {
		if now-lastMs > deadNodeTimeoutMs {
			stale = append(stale, neighbor)
		}
	}
	p.connMu.Unlock()

	for _, neighbor := range stale {
		p.evictNeighbor(neighbor)

		frame := wire.DeadNode(neighbor, p.Elapsed(), p.LocalAddr)
		for _, seedAddr := range p.SeedNodes {
			if err := send(ctx, seedAddr, frame); err != nil {
				p.logger.Warnw("dead-node report failed", "peer_no", p.PeerNo, "seed", seedAddr, "neighbor", neighbor, "err", err)
				continue
			}
		}
		p.logger.Infow("evicted silent neighbor", "peer_no", p.PeerNo, "neighbor", neighbor)
	}
}
