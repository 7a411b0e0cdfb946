package pgnstream

import (
	"bufio"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// openReader layers a buffered reader over r, then a decompressor chosen by
// name's extension. Unrecognized extensions pass the bytes through raw: a
// bare .pgn file is a perfectly legal archive member.
//
// The returned closer should be invoked after the reader is drained; it
// releases any decompressor-owned resources (zstd keeps worker goroutines
// until Close).
func openReader(name string, r io.Reader) (io.Reader, func(), error) {
	buffered := bufio.NewReaderSize(r, 64*1024)

	switch strings.ToLower(filepath.Ext(name)) {
	case ".zst":
		zr, err := zstd.NewReader(buffered)
		if err != nil {
			return nil, nil, fmt.Errorf("pgnstream: zstd init: %w", err)
		}
		return zr, zr.Close, nil
	case ".gz":
		gr, err := gzip.NewReader(buffered)
		if err != nil {
			return nil, nil, fmt.Errorf("pgnstream: gzip init: %w", err)
		}
		return gr, func() { gr.Close() }, nil
	default:
		return buffered, func() {}, nil
	}
}
