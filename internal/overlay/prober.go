package overlay

import (
	"context"
	"time"

	"github.com/mcastellin/gossip-overlay/internal/wire"
)

// probeInterval is the period between liveness requests to a single
// neighbor.
const probeInterval = 13 * time.Second

// Probe runs the per-(peer, neighbor) liveness loop: while neighbor is
// still in connected_nodes, send a LIVENESS_REQUEST every probeInterval.
// The probe never itself decides death — it only supplies evidence for the
// sweeper — so a failed connect is logged and ignored, and the loop simply
// terminates once the sweeper has evicted the neighbor.
func (p *Peer) Probe(ctx context.Context, neighbor string) {
	for {
		if !p.hasNeighbor(neighbor) {
			return
		}

		frame := wire.LivenessRequest(p.Elapsed(), p.LocalAddr)
		if err := send(ctx, neighbor, frame); err != nil {
			p.logger.Warnw("liveness probe failed", "peer_no", p.PeerNo, "neighbor", neighbor, "err", err)
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(probeInterval):
		}
	}
}
