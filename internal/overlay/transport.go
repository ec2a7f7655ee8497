package overlay

import (
	"context"
	"net"

	"github.com/mcastellin/gossip-overlay/internal/wire"
)

// send opens a fresh connection to addr, writes frame, and closes without
// waiting for a reply. Every outbound message in this protocol is a
// fire-and-forget single-frame connection.
func send(ctx context.Context, addr, frame string) error {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return err
	}
	defer conn.Close()

	_, err = conn.Write([]byte(frame))
	return err
}

// sendRecv opens a fresh connection to addr, writes frame, and reads one
// reply of up to wire.MaxFrameBytes before closing. Used for the
// seed-facing request/reply exchanges (JOIN, directory query).
func sendRecv(ctx context.Context, addr, frame string) (string, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return "", err
	}
	defer conn.Close()

	if _, err := conn.Write([]byte(frame)); err != nil {
		return "", err
	}

	buf := make([]byte, wire.MaxFrameBytes)
	n, err := conn.Read(buf)
	if err != nil {
		return "", err
	}
	return string(buf[:n]), nil
}
