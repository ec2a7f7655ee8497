package overlay

import (
	"context"
	"fmt"
	"net"

	"github.com/mcastellin/gossip-overlay/internal/wire"
)

// Listen binds LocalAddr and serves inbound frames until ctx is cancelled,
// spawning one handler goroutine per accepted connection. It returns nil on
// a clean context-cancellation shutdown and a non-nil error on any other
// accept failure, which is the accept-loop fatal condition from spec.md §7.
func (p *Peer) Listen(ctx context.Context) error {
	ln, err := net.Listen("tcp", p.LocalAddr)
	if err != nil {
		return err
	}
	p.logger.Infow("peer listening", "peer_no", p.PeerNo, "addr", p.LocalAddr)

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
		go p.handleConn(ctx, conn)
	}
}

// IdleListen binds LocalAddr and accepts connections that it reads and
// discards without ever replying — the mechanism by which a test topology
// includes a silent, effectively dead, neighbor.
func (p *Peer) IdleListen(ctx context.Context) error {
	ln, err := net.Listen("tcp", p.LocalAddr)
	if err != nil {
		return err
	}
	p.logger.Infow("peer idle-listening", "peer_no", p.PeerNo, "addr", p.LocalAddr)

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
		go func(c net.Conn) {
			defer c.Close()
			buf := make([]byte, wire.MaxFrameBytes)
			c.Read(buf)
		}(conn)
	}
}

func (p *Peer) handleConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	buf := make([]byte, wire.MaxFrameBytes)
	n, err := conn.Read(buf)
	if err != nil {
		p.logger.Warnw("listener read failed", "peer_no", p.PeerNo, "remote", conn.RemoteAddr(), "err", err)
		return
	}

	fields := wire.Split(buf[:n])
	if len(fields) == 0 {
		return
	}

	switch {
	case fields[0] == wire.TagLivenessRequest:
		p.handleLivenessRequest(ctx, fields)
	case fields[0] == wire.TagLivenessReply:
		p.handleLivenessReply(fields)
	case len(fields) == 3:
		p.handleGossip(ctx, fields)
	default:
		p.logger.Infow("dropping malformed frame", "peer_no", p.PeerNo, "fields", fields)
	}
}

func (p *Peer) handleLivenessRequest(ctx context.Context, fields []string) {
	if len(fields) < 3 {
		p.logger.Infow("malformed LIVENESS_REQUEST", "peer_no", p.PeerNo, "fields", fields)
		return
	}
	origTs, sender := fields[1], fields[2]

	reply := wire.LivenessReply(origTs, sender, p.LocalAddr)
	if err := send(ctx, sender, reply); err != nil {
		p.logger.Warnw("liveness reply send failed", "peer_no", p.PeerNo, "target", sender, "err", err)
	}
}

func (p *Peer) handleLivenessReply(fields []string) {
	if len(fields) < 4 {
		p.logger.Infow("malformed LIVENESS_REPLY", "peer_no", p.PeerNo, "fields", fields)
		return
	}
	responder := fields[3]

	if !p.touchConnectionTime(responder) {
		// A reply from an endpoint connection_times has no entry for is a
		// protocol invariant violation, not a remote condition: spec.md
		// §4.4/§7 both call this a bug and accept a panic.
		panic(fmt.Sprintf("overlay: peer %d got LIVENESS_REPLY from %s with no connection_times entry", p.PeerNo, responder))
	}
}

func (p *Peer) handleGossip(ctx context.Context, fields []string) {
	ts, origin, payload := fields[0], fields[1], fields[2]

	p.mu.Lock()
	if _, seen := p.messageList[payload]; seen {
		p.mu.Unlock()
		return
	}
	p.messageList[payload] = struct{}{}
	neighbors := make([]string, 0, len(p.connectedNodes))
	for n := range p.connectedNodes {
		neighbors = append(neighbors, n)
	}
	p.mu.Unlock()

	p.logger.Infow("received new gossip",
		"peer_no", p.PeerNo, "payload", payload, "origin", origin, "origin_ts", ts)

	frame := wire.Gossip(p.Elapsed(), p.LocalAddr, payload)
	p.broadcast(ctx, neighbors, frame)
}
