// Command peer runs one or more gossip overlay peers: it bootstraps each
// against a random subset of seeds, samples neighbors from their
// directories, then runs the listener, prober, sweeper and gossip
// injector loops until SIGINT or SIGTERM.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/rs/xid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mcastellin/gossip-overlay/internal/addrfile"
	"github.com/mcastellin/gossip-overlay/internal/overlay"
)

const (
	peerAddrPath = "./src/peer_addr.txt"
	configPath   = "./src/config.txt"
)

var rootCmd = &cobra.Command{
	Use:   "peer",
	Short: "Run the gossip overlay peer(s) listed in ./src/peer_addr.txt",
	Long: `peer bootstraps one Peer per address in ./src/peer_addr.txt against a
random subset of the seeds in ./src/config.txt, samples up to 4 neighbors
from their directories, and then runs the listener, failure detector and
gossip injector loops until the process receives SIGINT or SIGTERM.

The last address in a multi-peer file runs an idle listener that accepts
and discards every frame without replying, simulating a silent dead node
for failure-detection testing. It still probes its own neighbors and
injects its own gossip like any other peer; only its sweeper is omitted,
since a node that never replies has no failure detector of its own to run.`,
	RunE: runPeers,
}

func runPeers(cmd *cobra.Command, args []string) error {
	runID := xid.New().String()
	logger := zap.Must(zap.NewProduction()).Sugar().With("run_id", runID)
	defer logger.Sync()

	localAddrs, err := addrfile.Read(logger, peerAddrPath)
	if err != nil {
		return fmt.Errorf("peer: reading %s: %w", peerAddrPath, err)
	}
	seedAddrs, err := addrfile.Read(logger, configPath)
	if err != nil {
		return fmt.Errorf("peer: reading %s: %w", configPath, err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	peers := make([]*overlay.Peer, len(localAddrs))
	for i, addr := range localAddrs {
		peerNo := i + 1
		seeds := overlay.SelectSeeds(seedAddrs)
		p := overlay.New(peerNo, addr, seeds, logger)
		logger.Infow("selected seeds", "peer_no", peerNo, "addr", addr, "seeds", seeds)

		p.Join(ctx)
		peers[i] = p
	}

	for _, p := range peers {
		p.QueryConnectedNodes(ctx)
		p.CapNeighbors(overlay.MaxNeighbors)
		logger.Infow("selected peer nodes", "peer_no", p.PeerNo, "neighbors", p.Neighbors())
	}

	var wg sync.WaitGroup
	for i, p := range peers {
		wg.Add(1)
		if i == len(peers)-1 && len(peers) > 1 {
			go func(p *overlay.Peer) {
				defer wg.Done()
				if err := p.IdleListen(ctx); err != nil {
					logger.Fatalw("idle listener accept loop failed", "peer_no", p.PeerNo, "err", err)
				}
			}(p)

			go p.Inject(ctx)
			for _, neighbor := range p.Neighbors() {
				go p.Probe(ctx, neighbor)
			}
			continue
		}

		go func(p *overlay.Peer) {
			defer wg.Done()
			if err := p.Listen(ctx); err != nil {
				logger.Fatalw("listener accept loop failed", "peer_no", p.PeerNo, "err", err)
			}
		}(p)

		go p.Sweep(ctx)
		go p.Inject(ctx)
		for _, neighbor := range p.Neighbors() {
			go p.Probe(ctx, neighbor)
		}
	}

	<-ctx.Done()
	logger.Info("peer shutting down")
	wg.Wait()
	return nil
}

// Execute runs the root command, exiting non-zero on any startup error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func main() {
	Execute()
}
