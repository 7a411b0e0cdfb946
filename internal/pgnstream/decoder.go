package pgnstream

import (
	"fmt"
	"io"
	"os"
)

// DecodeFile opens path, picks a decompressor by its extension, and calls
// emit once per surviving GameSummary. It is the only entry point callers
// outside this package need: the reader, decompressor, and tokenizer are
// all torn down before DecodeFile returns.
//
// A file-open failure is returned as-is for the caller to log and skip per
// component-level policy; a parser error partway through is returned too,
// but any games already emitted to emit stay emitted — no partial game is
// ever passed to emit.
func DecodeFile(path string, filter Filter, emit func(GameSummary) error) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("pgnstream: open %s: %w", path, err)
	}
	defer f.Close()

	reader, closeDecompressor, err := openReader(path, f)
	if err != nil {
		return err
	}
	defer closeDecompressor()

	dec := NewDecoder(reader, filter)
	for {
		summary, ok, err := dec.Next()
		if err != nil {
			return fmt.Errorf("pgnstream: parse %s: %w", path, err)
		}
		if !ok {
			return nil
		}
		if err := emit(summary); err != nil {
			return err
		}
	}
}

// Decode is a convenience wrapper over an already-opened, already-
// decompressed reader — useful for tests and for embedding pgnstream in a
// pipeline that manages its own file handles.
func Decode(r io.Reader, filter Filter, emit func(GameSummary) error) error {
	dec := NewDecoder(r, filter)
	for {
		summary, ok, err := dec.Next()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		if err := emit(summary); err != nil {
			return err
		}
	}
}
