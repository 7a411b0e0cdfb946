package store

import (
	"os"
	"testing"
	"time"

	"github.com/chessql/pgnstats/internal/aggregate"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	dir, err := os.MkdirTemp("", "pgnstats-store-*")
	if err != nil {
		t.Fatalf("MkdirTemp: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })

	s, err := Open(dir, Options{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestGetPositionStatsMissingReturnsErrNotFound(t *testing.T) {
	s := openTestStore(t)
	var fp [8]byte
	fp[0] = 1

	if _, err := s.GetPositionStats(fp); err != ErrNotFound {
		t.Fatalf("GetPositionStats on unseen position: got err %v, want ErrNotFound", err)
	}
}

func TestFlushAccumulatesAcrossCalls(t *testing.T) {
	s := openTestStore(t)
	var fp [8]byte
	fp[0] = 0xAB

	batch1 := []Delta{{Key: PositionKey(fp), Value: aggregate.Value{White: 1}}}
	batch2 := []Delta{{Key: PositionKey(fp), Value: aggregate.Value{Black: 2}}}

	if err := s.Flush(batch1); err != nil {
		t.Fatalf("Flush 1: %v", err)
	}
	if err := s.Flush(batch2); err != nil {
		t.Fatalf("Flush 2: %v", err)
	}

	got, err := s.GetPositionStats(fp)
	if err != nil {
		t.Fatalf("GetPositionStats: %v", err)
	}
	want := aggregate.Value{White: 1, Black: 2}
	if got != want {
		t.Errorf("GetPositionStats = %+v, want %+v", got, want)
	}
}

func TestFlushSumsMultipleDeltasToSameKeyInOneBatch(t *testing.T) {
	s := openTestStore(t)
	var fp [8]byte
	fp[0] = 0xCD

	batch := []Delta{
		{Key: PositionKey(fp), Value: aggregate.Value{White: 1}},
		{Key: PositionKey(fp), Value: aggregate.Value{White: 1}},
		{Key: PositionKey(fp), Value: aggregate.Value{Draws: 1}},
	}
	if err := s.Flush(batch); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	got, err := s.GetPositionStats(fp)
	if err != nil {
		t.Fatalf("GetPositionStats: %v", err)
	}
	want := aggregate.Value{White: 2, Draws: 1}
	if got != want {
		t.Errorf("GetPositionStats = %+v, want %+v", got, want)
	}
}

func TestScanMovesReturnsOnlyMatchingPrefix(t *testing.T) {
	s := openTestStore(t)
	var fpA, fpB [8]byte
	fpA[0] = 0x01
	fpB[0] = 0x02

	batch := []Delta{
		{Key: MoveKey(fpA, "e2e4"), Value: aggregate.Value{White: 3}},
		{Key: MoveKey(fpA, "d2d4"), Value: aggregate.Value{Black: 1}},
		{Key: MoveKey(fpB, "e2e4"), Value: aggregate.Value{Draws: 5}},
	}
	if err := s.Flush(batch); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	moves, err := s.ScanMoves(fpA)
	if err != nil {
		t.Fatalf("ScanMoves: %v", err)
	}
	if len(moves) != 2 {
		t.Fatalf("ScanMoves returned %d entries, want 2: %+v", len(moves), moves)
	}

	byUCI := make(map[string]aggregate.Value)
	for _, m := range moves {
		byUCI[m.UCI] = m.Value
	}
	if byUCI["e2e4"] != (aggregate.Value{White: 3}) {
		t.Errorf("e2e4 = %+v", byUCI["e2e4"])
	}
	if byUCI["d2d4"] != (aggregate.Value{Black: 1}) {
		t.Errorf("d2d4 = %+v", byUCI["d2d4"])
	}
}

func TestFileLedgerRoundTrip(t *testing.T) {
	s := openTestStore(t)
	var id [8]byte
	id[0] = 0x42

	processed, err := s.IsFileProcessed(id)
	if err != nil {
		t.Fatalf("IsFileProcessed: %v", err)
	}
	if processed {
		t.Fatalf("IsFileProcessed = true before MarkFileProcessed")
	}

	if err := s.MarkFileProcessed(id, time.Now()); err != nil {
		t.Fatalf("MarkFileProcessed: %v", err)
	}

	processed, err = s.IsFileProcessed(id)
	if err != nil {
		t.Fatalf("IsFileProcessed: %v", err)
	}
	if !processed {
		t.Fatalf("IsFileProcessed = false after MarkFileProcessed")
	}
}

func TestEmptyFlushIsNoOp(t *testing.T) {
	s := openTestStore(t)
	if err := s.Flush(nil); err != nil {
		t.Fatalf("Flush(nil): %v", err)
	}
}
