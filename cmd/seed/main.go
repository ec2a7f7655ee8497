// Command seed runs the bootstrap directory: one Registry per address
// listed in ./src/config.txt, each answering JOIN_REQUEST,
// GET_CONNECTED_NODES_REQUEST and DEAD_NODE frames from peers.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mcastellin/gossip-overlay/internal/addrfile"
	"github.com/mcastellin/gossip-overlay/internal/seed"
)

const configPath = "./src/config.txt"

var rootCmd = &cobra.Command{
	Use:   "seed",
	Short: "Run the gossip overlay bootstrap directory",
	Long: `seed runs one Registry per address listed in ./src/config.txt.

Each registry accepts JOIN_REQUEST, GET_CONNECTED_NODES_REQUEST and
DEAD_NODE frames from peers and answers on the bound address until the
process receives SIGINT or SIGTERM.`,
	RunE: runSeeds,
}

func runSeeds(cmd *cobra.Command, args []string) error {
	logger := zap.Must(zap.NewProduction()).Sugar()
	defer logger.Sync()

	addrs, err := addrfile.Read(logger, configPath)
	if err != nil {
		return fmt.Errorf("seed: reading %s: %w", configPath, err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var wg sync.WaitGroup
	for i, addr := range addrs {
		seedNo := i + 1
		registry := seed.New(seedNo, logger)

		wg.Add(1)
		go func(addr string) {
			defer wg.Done()
			if err := registry.Serve(ctx, addr); err != nil {
				logger.Fatalw("seed accept loop failed", "seed_no", seedNo, "addr", addr, "err", err)
			}
		}(addr)
	}

	<-ctx.Done()
	logger.Info("seed shutting down")
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
