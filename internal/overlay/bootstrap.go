package overlay

import (
	"context"

	"github.com/mcastellin/gossip-overlay/internal/wire"
)

// SelectSeeds picks ⌊S/2⌋+1 seeds uniformly at random, without
// replacement, from the full seed list. Each peer calls this exactly once
// at startup.
func SelectSeeds(allSeeds []string) []string {
	k := len(allSeeds)/2 + 1
	return sampleDistinct(allSeeds, k)
}

// Join registers this peer with every seed in SeedNodes, sequentially. The
// seed's acknowledgment body is informational only and discarded.
func (p *Peer) Join(ctx context.Context) {
	for _, seedAddr := range p.SeedNodes {
		frame := wire.JoinRequest(p.LocalAddr, p.Elapsed())
		if _, err := sendRecv(ctx, seedAddr, frame); err != nil {
			p.logger.Warnw("join request failed", "peer_no", p.PeerNo, "seed", seedAddr, "err", err)
		}
	}
}

// QueryConnectedNodes asks every seed in SeedNodes for its directory,
// sequentially, and merges the union into connected_nodes. A reply whose
// first parsed token is empty (an empty directory) contributes nothing.
func (p *Peer) QueryConnectedNodes(ctx context.Context) {
	for _, seedAddr := range p.SeedNodes {
		frame := wire.GetConnectedNodesRequest(p.LocalAddr, p.Elapsed())
		reply, err := sendRecv(ctx, seedAddr, frame)
		if err != nil {
			p.logger.Warnw("directory request failed", "peer_no", p.PeerNo, "seed", seedAddr, "err", err)
			continue
		}

		nodes := wire.ParseDirectoryReply(reply)
		if len(nodes) == 0 || nodes[0] == "" {
			continue
		}
		p.logger.Infow("peer nodes from seed", "peer_no", p.PeerNo, "seed", seedAddr, "nodes", nodes)
		p.addNeighbors(nodes)
	}
}

// CapNeighbors enforces the post-bootstrap membership cap: if
// connected_nodes exceeds max, it is replaced by a uniform random subset of
// size max. A union at or below max is left untouched — the "keep all"
// resolution of the sampler's k<=|S| precondition noted as an open
// question in spec.md §9.
func (p *Peer) CapNeighbors(max int) {
	current := p.Neighbors()
	if len(current) <= max {
		return
	}
	p.setNeighbors(sampleDistinct(current, max))
}
