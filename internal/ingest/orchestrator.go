package ingest

import (
	"fmt"
	"log"
	"runtime"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"

	"github.com/chessql/pgnstats/internal/pgnstream"
	"github.com/chessql/pgnstats/internal/store"
)

// Config is everything the orchestrator needs to run one ingestion pass.
type Config struct {
	// DBPath is the store directory, opened (or created) for this run.
	DBPath string

	// Files is the ordered list of PGN archive paths to ingest. Order only
	// matters for log readability; ledger skipping makes re-running with a
	// superset or reordered list idempotent.
	Files []string

	pgnstream.Filter

	// CacheSize is both the per-worker flush threshold and, via
	// dispatchCapacity, the basis for the dispatch channel's capacity.
	// Zero defaults to 1,000,000 per spec's documented default.
	CacheSize int

	// WorkerCount overrides the pool size. Zero uses runtime.NumCPU().
	WorkerCount int
}

func (c Config) flushThreshold() int {
	if c.CacheSize > 0 {
		return c.CacheSize
	}
	return 1_000_000
}

func (c Config) workerCount() int {
	if c.WorkerCount > 0 {
		return c.WorkerCount
	}
	n := runtime.NumCPU()
	if n < 1 {
		return 1
	}
	return n
}

// runStats accumulates the end-of-run summary line. Counters are only
// ever touched from the single reader goroutine.
type runStats struct {
	filesProcessed int
	filesSkipped   int
	gamesKept      int
}

// Run opens the store, spawns the worker pool and the single reader, and
// blocks until every file has been streamed and every worker has drained
// and flushed. The first fatal error from any goroutine is returned; a
// worker panic is recovered, converted to an error, and triggers the same
// shutdown path after the other workers get a chance to flush.
func Run(cfg Config) error {
	st, err := store.Open(cfg.DBPath, store.Options{})
	if err != nil {
		return err
	}
	defer st.Close()

	games := newDispatchChannel(cfg.flushThreshold())

	group := &errgroup.Group{}
	for i := 0; i < cfg.workerCount(); i++ {
		group.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("ingest: worker panic: %v", r)
				}
			}()
			return runWorker(games, st, cfg.flushThreshold())
		})
	}

	stats := &runStats{}
	start := time.Now()
	group.Go(func() error {
		defer close(games)
		return readFiles(cfg, st, games, stats)
	})

	if err := group.Wait(); err != nil {
		return err
	}

	elapsed := time.Since(start)
	log.Printf("ingest: done — %s files processed, %s skipped (already in ledger or unreadable), %s games kept, %s elapsed",
		humanize.Comma(int64(stats.filesProcessed)),
		humanize.Comma(int64(stats.filesSkipped)),
		humanize.Comma(int64(stats.gamesKept)),
		elapsed.Round(time.Millisecond))
	return nil
}

// readFiles is the sole sender on games. It owns that side exclusively —
// no other goroutine ever holds or clones it — so closing it on return is
// the only shutdown signal the worker pool needs.
func readFiles(cfg Config, st *store.Store, games chan<- pgnstream.GameSummary, stats *runStats) error {
	for _, path := range cfg.Files {
		id, err := fileID(path)
		if err != nil {
			log.Printf("ingest: skipping %s: %v", path, err)
			stats.filesSkipped++
			continue
		}

		processed, err := st.IsFileProcessed(id)
		if err != nil {
			return err
		}
		if processed {
			log.Printf("ingest: skipping %s (already in ledger)", path)
			stats.filesSkipped++
			continue
		}

		log.Printf("ingest: processing %s", path)
		kept := 0
		err = pgnstream.DecodeFile(path, cfg.Filter, func(gs pgnstream.GameSummary) error {
			games <- gs
			kept++
			return nil
		})
		if err != nil {
			log.Printf("ingest: %s: %v (file skipped, not marked processed)", path, err)
			stats.filesSkipped++
			continue
		}

		if err := st.MarkFileProcessed(id, time.Now()); err != nil {
			return err
		}
		stats.filesProcessed++
		stats.gamesKept += kept
	}
	return nil
}
