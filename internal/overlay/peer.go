// Package overlay implements a gossip peer: bootstrap against a set of
// seeds, a listener that answers liveness probes and floods gossip with
// duplicate suppression, a prober and sweeper pair that form the failure
// detector, and the periodic self-gossip injector.
package overlay

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mcastellin/gossip-overlay/internal/wire"
)

// MaxNeighbors is the cap enforced on connected_nodes once bootstrap
// completes. It never grows back once the overlay is running; it can only
// shrink through eviction.
const MaxNeighbors = 4

// Peer holds one gossip node's membership and message-dedupe state. The
// state is shared by the listener, prober, sweeper and gossiper tasks,
// guarded by two mutexes acquired in a fixed order: peer mutex first, then
// the connection-times mutex. No task holds either lock across outbound
// network I/O.
type Peer struct {
	PeerNo    int
	LocalAddr string
	SeedNodes []string

	creationTime time.Time
	logger       *zap.SugaredLogger

	mu             sync.Mutex
	connectedNodes map[string]struct{}
	messageList    map[string]struct{}

	connMu          sync.Mutex
	connectionTimes map[string]int64
}

// New creates a Peer with no neighbors and no message history yet.
// seedNodes is copied so the caller's slice can be reused or mutated
// freely afterward.
func New(peerNo int, localAddr string, seedNodes []string, logger *zap.SugaredLogger) *Peer {
	return &Peer{
		PeerNo:          peerNo,
		LocalAddr:       localAddr,
		SeedNodes:       append([]string(nil), seedNodes...),
		creationTime:    time.Now(),
		logger:          logger,
		connectedNodes:  map[string]struct{}{},
		messageList:     map[string]struct{}{},
		connectionTimes: map[string]int64{},
	}
}

// Elapsed returns the peer's local clock string, the origin being this
// peer's creation time.
func (p *Peer) Elapsed() string {
	return wire.FormatClock(time.Since(p.creationTime))
}

// ElapsedMillis returns the same clock as an integer millisecond count,
// used internally by the sweeper and the liveness-reply handler.
func (p *Peer) ElapsedMillis() int64 {
	return time.Since(p.creationTime).Milliseconds()
}

// Neighbors returns a snapshot of the current connected-node set.
func (p *Peer) Neighbors() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]string, 0, len(p.connectedNodes))
	for n := range p.connectedNodes {
		out = append(out, n)
	}
	return out
}

func (p *Peer) hasNeighbor(addr string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.connectedNodes[addr]
	return ok
}

// setNeighbors replaces connected_nodes and connection_times wholesale.
// Used by bootstrap only, before any prober or sweeper task exists.
func (p *Peer) setNeighbors(addrs []string) {
	p.mu.Lock()
	p.connectedNodes = make(map[string]struct{}, len(addrs))
	for _, a := range addrs {
		p.connectedNodes[a] = struct{}{}
	}
	p.mu.Unlock()

	p.connMu.Lock()
	p.connectionTimes = make(map[string]int64, len(addrs))
	for _, a := range addrs {
		p.connectionTimes[a] = 0
	}
	p.connMu.Unlock()
}

// addNeighbors merges newly discovered endpoints into connected_nodes and
// seeds their connection_times entry at 0, skipping the peer's own
// address. Used while merging seed directory replies during bootstrap,
// before the post-bootstrap cap is applied.
func (p *Peer) addNeighbors(addrs []string) {
	p.mu.Lock()
	for _, a := range addrs {
		if a == p.LocalAddr {
			continue
		}
		p.connectedNodes[a] = struct{}{}
	}
	p.mu.Unlock()

	p.connMu.Lock()
	for _, a := range addrs {
		if a == p.LocalAddr {
			continue
		}
		if _, ok := p.connectionTimes[a]; !ok {
			p.connectionTimes[a] = 0
		}
	}
	p.connMu.Unlock()
}

// evictNeighbor removes addr from connected_nodes, then from
// connection_times, observing the peer-mutex-first lock order across the
// two independent critical sections.
func (p *Peer) evictNeighbor(addr string) {
	p.mu.Lock()
	delete(p.connectedNodes, addr)
	p.mu.Unlock()

	p.connMu.Lock()
	delete(p.connectionTimes, addr)
	p.connMu.Unlock()
}

// touchConnectionTime records the current local-clock millisecond reading
// as the last-seen time for addr. It reports false if addr has no
// connection_times entry, which the caller treats as the protocol
// invariant violation described in spec.md §4.4/§7.
func (p *Peer) touchConnectionTime(addr string) bool {
	now := p.ElapsedMillis()

	p.connMu.Lock()
	defer p.connMu.Unlock()

	if _, ok := p.connectionTimes[addr]; !ok {
		return false
	}
	p.connectionTimes[addr] = now
	return true
}

// ConnectionTime returns the last-seen millisecond reading for addr, for
// tests.
func (p *Peer) ConnectionTime(addr string) (int64, bool) {
	p.connMu.Lock()
	defer p.connMu.Unlock()
	ms, ok := p.connectionTimes[addr]
	return ms, ok
}

// HasMessage reports whether payload is already in message_list.
func (p *Peer) HasMessage(payload string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.messageList[payload]
	return ok
}

// MessageCount returns the size of message_list, for tests.
func (p *Peer) MessageCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.messageList)
}
