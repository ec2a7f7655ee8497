package wire

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FormatClock renders an elapsed duration as this peer's local clock
// string: minutes and seconds wrap modulo 60, milliseconds are zero-padded
// to width 3. This clock is only ever meaningful compared against other
// readings from the same peer — never across peers.
func FormatClock(elapsed time.Duration) string {
	totalMs := elapsed.Milliseconds()
	minutes := (totalMs / 60000) % 60
	seconds := (totalMs / 1000) % 60
	millis := totalMs % 1000
	return fmt.Sprintf("%02d:%02d:%03d", minutes, seconds, millis)
}

// ParseClockMillis converts a MM:SS:mmm clock string back to integer
// milliseconds as mm*60000 + ss*1000 + ms. It fails fast on anything that
// doesn't split into exactly three colon-separated integers.
func ParseClockMillis(clock string) (int64, error) {
	parts := strings.Split(clock, ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("wire: invalid clock %q: expected MM:SS:mmm", clock)
	}

	mm, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("wire: invalid clock %q: %w", clock, err)
	}
	ss, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("wire: invalid clock %q: %w", clock, err)
	}
	ms, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("wire: invalid clock %q: %w", clock, err)
	}

	return mm*60000 + ss*1000 + ms, nil
}
