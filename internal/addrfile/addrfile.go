// Package addrfile reads the newline-delimited "<ip> <port>" address files
// that seeds and peers bootstrap from. It is the only external file
// collaborator this module has; its shape is dictated by spec.md §6, not
// derived.
package addrfile

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
)

// Read loads one "ip:port" endpoint per well-formed line of path. Blank
// lines are skipped silently; lines that don't split into exactly two
// whitespace-separated fields are logged and skipped rather than failing
// the read, mirroring
// the teacher's DNSLocalStore.FromFile tolerance for bad individual lines.
func Read(logger *zap.SugaredLogger, path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var addrs []string
	scan := bufio.NewScanner(file)
	lineNo := 0
	for scan.Scan() {
		lineNo++
		line := strings.TrimSpace(scan.Text())
		if line == "" {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) != 2 {
			logger.Infow("skipping malformed address line",
				"path", path, "line", lineNo, "content", line)
			continue
		}

		addrs = append(addrs, fmt.Sprintf("%s:%s", fields[0], fields[1]))
	}
	if err := scan.Err(); err != nil {
		return nil, err
	}

	return addrs, nil
}
