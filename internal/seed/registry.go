// Package seed implements the bootstrap directory: the registry of live
// peer endpoints that peers JOIN into, query, and report deaths against.
package seed

import (
	"context"
	"net"
	"sync"

	"go.uber.org/zap"

	"github.com/mcastellin/gossip-overlay/internal/wire"
)

// Registry holds one seed's view of the live peer directory. A membership
// entry means "at least one peer reported itself alive via JOIN and no
// DEAD_NODE for this endpoint has since been processed".
type Registry struct {
	seedNo int
	logger *zap.SugaredLogger

	mu                sync.Mutex
	connectedNetworks map[string]struct{}
}

// New creates an empty Registry identified by seedNo.
func New(seedNo int, logger *zap.SugaredLogger) *Registry {
	return &Registry{
		seedNo:            seedNo,
		logger:            logger,
		connectedNetworks: map[string]struct{}{},
	}
}

// Snapshot returns the current set of connected endpoints. Exposed for
// tests; production code never needs it, the registry only ever reacts to
// inbound frames.
func (r *Registry) Snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]string, 0, len(r.connectedNetworks))
	for addr := range r.connectedNetworks {
		out = append(out, addr)
	}
	return out
}

// Serve binds addr and accepts connections until ctx is cancelled. Each
// connection is handled by an independent goroutine under the registry
// mutex. An accept-loop error that isn't caused by ctx cancellation is
// fatal to this listener; the caller decides whether that should bring the
// process down.
func (r *Registry) Serve(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	r.logger.Infow("seed listening", "seed_no", r.seedNo, "addr", addr)

	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
				return err
			}
		}
		go r.handleConn(conn)
	}
}

func (r *Registry) handleConn(conn net.Conn) {
	defer conn.Close()

	buf := make([]byte, wire.MaxFrameBytes)
	n, err := conn.Read(buf)
	if err != nil {
		r.logger.Warnw("seed read failed", "seed_no", r.seedNo, "remote", conn.RemoteAddr(), "err", err)
		return
	}

	fields := wire.Split(buf[:n])
	if len(fields) == 0 {
		return
	}

	switch fields[0] {
	case wire.TagJoinRequest:
		r.handleJoin(conn, fields)
	case wire.TagGetConnectedNodes:
		r.handleGetConnectedNodes(conn, fields)
	case wire.TagDeadNode:
		r.handleDeadNode(fields)
	default:
		r.logger.Infow("seed dropping frame with unknown tag", "seed_no", r.seedNo, "tag", fields[0])
	}
}

func (r *Registry) handleJoin(conn net.Conn, fields []string) {
	if len(fields) < 2 {
		r.logger.Infow("malformed JOIN_REQUEST", "seed_no", r.seedNo, "fields", fields)
		return
	}
	peerAddr := fields[1]

	r.mu.Lock()
	r.connectedNetworks[peerAddr] = struct{}{}
	r.mu.Unlock()

	r.logger.Infow("seed received JOIN", "seed_no", r.seedNo, "peer", peerAddr)

	if _, err := conn.Write([]byte(wire.ConnectedAck(peerAddr))); err != nil {
		r.logger.Warnw("seed failed to write JOIN ack", "seed_no", r.seedNo, "peer", peerAddr, "err", err)
	}
}

func (r *Registry) handleGetConnectedNodes(conn net.Conn, fields []string) {
	if len(fields) < 2 {
		r.logger.Infow("malformed GET_CONNECTED_NODES_REQUEST", "seed_no", r.seedNo, "fields", fields)
		return
	}
	requester := fields[1]

	r.mu.Lock()
	nodes := make([]string, 0, len(r.connectedNetworks))
	for addr := range r.connectedNetworks {
		if addr != requester {
			nodes = append(nodes, addr)
		}
	}
	r.mu.Unlock()

	if _, err := conn.Write([]byte(wire.DirectoryReply(nodes))); err != nil {
		r.logger.Warnw("seed failed to write directory reply", "seed_no", r.seedNo, "requester", requester, "err", err)
	}
}

func (r *Registry) handleDeadNode(fields []string) {
	if len(fields) < 4 {
		r.logger.Infow("malformed DEAD_NODE", "seed_no", r.seedNo, "fields", fields)
		return
	}
	deadAddr, reporterAddr := fields[1], fields[3]

	r.mu.Lock()
	_, existed := r.connectedNetworks[deadAddr]
	delete(r.connectedNetworks, deadAddr)
	r.mu.Unlock()

	if existed {
		r.logger.Infow("seed removed dead node", "seed_no", r.seedNo, "dead", deadAddr, "reporter", reporterAddr)
	} else {
		r.logger.Infow("seed dead node not found", "seed_no", r.seedNo, "dead", deadAddr, "reporter", reporterAddr)
	}
}
