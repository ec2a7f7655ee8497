package overlay

import "context"

// broadcast fans frame out to every target, one fresh TCP connection per
// destination. Per-destination failures are logged and skipped; they never
// abort delivery to the remaining targets, and the broadcast never waits
// for a reply.
func (p *Peer) broadcast(ctx context.Context, targets []string, frame string) {
	for _, addr := range targets {
		if err := send(ctx, addr, frame); err != nil {
			p.logger.Warnw("broadcast send failed", "peer_no", p.PeerNo, "target", addr, "err", err)
		}
	}
}
