// Package store is the ordered key-value layer: it owns the on-disk key
// schema (see keys.go) and the merge path that folds concurrent worker
// contributions into it without read-modify-write races.
package store

import (
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/chessql/pgnstats/internal/aggregate"
)

// ErrNotFound is returned by point-get style reads when the key is absent.
var ErrNotFound = errors.New("store: key not found")

// Delta is one pending contribution to a key: the raw key bytes (either PS
// or PMS form) and the aggregate to fold in.
type Delta struct {
	Key   []byte
	Value aggregate.Value
}

// Store wraps a Badger database tuned for this workload: point get/put,
// atomic write-batches, prefix iteration in key order, and — in place of a
// native associative merge operator Badger doesn't expose over a dynamic
// key space (see DESIGN.md) — a single serialized committer goroutine that
// every worker's flush funnels through.
type Store struct {
	db *badger.DB

	flushes chan flushRequest
	done    chan struct{}
}

type flushRequest struct {
	batch []Delta
	result chan error
}

// Options tunes the embedded engine. Zero value is sane defaults.
type Options struct {
	// BlockCacheMB sizes Badger's block/index cache. 0 uses a 256MB default.
	BlockCacheMB int64
}

// Open opens (creating if absent) the store directory at path and starts
// the committer goroutine. Close must be called to flush and release it.
func Open(path string, opts Options) (*Store, error) {
	blockCacheMB := opts.BlockCacheMB
	if blockCacheMB <= 0 {
		blockCacheMB = 256
	}

	badgerOpts := badger.DefaultOptions(path).
		WithLogger(nil).
		WithBlockCacheSize(blockCacheMB * 1024 * 1024).
		WithIndexCacheSize(64 * 1024 * 1024).
		WithBloomFalsePositive(0.01).
		WithNumVersionsToKeep(1)

	db, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}

	s := &Store{
		db:      db,
		flushes: make(chan flushRequest),
		done:    make(chan struct{}),
	}
	go s.runCommitter()
	return s, nil
}

// runCommitter is the single serialized writer that every worker's Flush
// funnels through. It is the fallback spec.md §9 sanctions when the engine
// has no generic associative merge operator: each batch is applied as one
// or more read-combine-write transactions, never racing another writer.
func (s *Store) runCommitter() {
	defer close(s.done)
	for req := range s.flushes {
		req.result <- s.applyBatch(req.batch)
	}
}

// Flush submits a batch of deltas for merging and blocks until it is
// durably applied (or fails). An empty batch is a no-op.
func (s *Store) Flush(batch []Delta) error {
	if len(batch) == 0 {
		return nil
	}
	req := flushRequest{batch: batch, result: make(chan error, 1)}
	s.flushes <- req
	return <-req.result
}

// chunkSize bounds how many keys go into a single Badger transaction, well
// under badger's default transaction size limit.
const chunkSize = 2000

func (s *Store) applyBatch(batch []Delta) error {
	for start := 0; start < len(batch); start += chunkSize {
		end := start + chunkSize
		if end > len(batch) {
			end = len(batch)
		}
		if err := s.applyChunk(batch[start:end]); err != nil {
			return fmt.Errorf("store: flush failed: %w", err)
		}
	}
	return nil
}

func (s *Store) applyChunk(chunk []Delta) error {
	return s.db.Update(func(txn *badger.Txn) error {
		for _, d := range chunk {
			existing, err := readAggregate(txn, d.Key)
			if err != nil {
				return err
			}
			combined := aggregate.Combine(existing, d.Value)
			if err := txn.Set(d.Key, combined.Encode()); err != nil {
				return err
			}
		}
		return nil
	})
}

func readAggregate(txn *badger.Txn, key []byte) (aggregate.Value, error) {
	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return aggregate.Value{}, nil
	}
	if err != nil {
		return aggregate.Value{}, err
	}

	var value aggregate.Value
	err = item.Value(func(val []byte) error {
		decoded, err := aggregate.Decode(val)
		if err != nil {
			return err
		}
		value = decoded
		return nil
	})
	return value, err
}

// GetPositionStats point-gets the aggregate for a position's fingerprint.
// Returns ErrNotFound if the position has never been observed.
func (s *Store) GetPositionStats(fp [8]byte) (aggregate.Value, error) {
	return s.get(PositionKey(fp))
}

func (s *Store) get(key []byte) (aggregate.Value, error) {
	var value aggregate.Value
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			decoded, err := aggregate.Decode(val)
			if err != nil {
				return err
			}
			value = decoded
			return nil
		})
	})
	return value, err
}

// MoveStats is one per-move row returned by ScanMoves: the UCI suffix of
// the key and its accumulated aggregate.
type MoveStats struct {
	UCI   string
	Value aggregate.Value
}

// ScanMoves prefix-iterates "pms || fp(P)" in key order and returns every
// per-move entry recorded from P. The iterator is explicitly bounded on
// prefix equality rather than trusting Badger's prefix option alone, per
// spec.md §4.C's note that a prefix seek may run past the last matching key.
func (s *Store) ScanMoves(fp [8]byte) ([]MoveStats, error) {
	prefix := MovePrefix(fp)
	var out []MoveStats

	err := s.db.View(func(txn *badger.Txn) error {
		iterOpts := badger.DefaultIteratorOptions
		iterOpts.Prefix = prefix
		it := txn.NewIterator(iterOpts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			key := item.KeyCopy(nil)
			uci := uciSuffix(key)
			if uci == "" {
				continue
			}
			var value aggregate.Value
			err := item.Value(func(val []byte) error {
				decoded, err := aggregate.Decode(val)
				if err != nil {
					return err
				}
				value = decoded
				return nil
			})
			if err != nil {
				return err
			}
			out = append(out, MoveStats{UCI: uci, Value: value})
		}
		return nil
	})
	return out, err
}

// IsFileProcessed reports whether the ledger already carries a marker for
// fileID.
func (s *Store) IsFileProcessed(fileID [8]byte) (bool, error) {
	var found bool
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(FileLedgerKey(fileID))
		if errors.Is(err, badger.ErrKeyNotFound) {
			found = false
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return nil
	})
	return found, err
}

// MarkFileProcessed writes the ledger marker for fileID. Unlike Flush, this
// is a direct put — the ledger family legitimately replaces its value
// rather than accumulating it (spec.md §4.C).
func (s *Store) MarkFileProcessed(fileID [8]byte, at time.Time) error {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(at.Unix()))
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(FileLedgerKey(fileID), buf)
	})
}

// Close stops the committer and closes the underlying database.
func (s *Store) Close() error {
	close(s.flushes)
	<-s.done
	return s.db.Close()
}
