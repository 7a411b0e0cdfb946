package ingest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/cespare/xxhash/v2"
)

// fileID returns a stable 8-byte identity for path derived from its
// absolute form, size, and modification time truncated to the second.
// Truncating mtime absorbs filesystems that don't preserve sub-second
// precision across copies, at the cost of treating two writes within the
// same second as identical — an accepted, documented gap.
func fileID(path string) ([8]byte, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return [8]byte{}, fmt.Errorf("ingest: resolve path %s: %w", path, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return [8]byte{}, fmt.Errorf("ingest: stat %s: %w", abs, err)
	}

	h := xxhash.New()
	fmt.Fprintf(h, "%s\x00%d\x00%d", abs, info.Size(), info.ModTime().Unix())

	var id [8]byte
	sum := h.Sum64()
	for i := 0; i < 8; i++ {
		id[i] = byte(sum >> (8 * (7 - i)))
	}
	return id, nil
}
