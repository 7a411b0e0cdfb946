package ingest

import (
	"github.com/chessql/pgnstats/internal/aggregate"
	"github.com/chessql/pgnstats/internal/board"
	"github.com/chessql/pgnstats/internal/pgnstream"
	"github.com/chessql/pgnstats/internal/store"
)

// statsCache accumulates deltas keyed by their raw store key bytes before a
// batch is handed to the store's committer. Using the encoded key itself
// (rather than a richer struct) as the map key means two different games
// reaching the same position, or the same position-move pair, combine in
// memory before a single store write — turning O(games) potential writes
// into O(distinct keys touched).
type statsCache struct {
	entries map[string]aggregate.Value
}

func newStatsCache() *statsCache {
	return &statsCache{entries: make(map[string]aggregate.Value)}
}

func (c *statsCache) add(key []byte, delta aggregate.Value) {
	c.entries[string(key)] = aggregate.Combine(c.entries[string(key)], delta)
}

func (c *statsCache) len() int { return len(c.entries) }

func (c *statsCache) drain() []store.Delta {
	batch := make([]store.Delta, 0, len(c.entries))
	for k, v := range c.entries {
		batch = append(batch, store.Delta{Key: []byte(k), Value: v})
	}
	c.entries = make(map[string]aggregate.Value)
	return batch
}

// replayGame walks a decoded game's mainline from the standard starting
// position, accumulating the game's outcome under every position it
// passes through and every position-move pair it plays.
//
// A SAN token that fails to resolve against the current position aborts
// the replay silently: everything accumulated for plies before the bad
// token stays in the cache, because the game was real up to that point,
// but nothing after it is recorded.
func replayGame(c *statsCache, game pgnstream.GameSummary) {
	pos := board.NewPosition()
	delta := aggregate.FromOutcome(game.Winner)

	for _, san := range game.Moves {
		fp := pos.Fingerprint()
		c.add(store.PositionKey(fp), delta)

		move, err := board.ParseSAN(san, pos)
		if err != nil || move == board.NoMove {
			return
		}

		c.add(store.MoveKey(fp, move.String()), delta)
		pos.MakeMove(move)
	}

	c.add(store.PositionKey(pos.Fingerprint()), delta)
}

// runWorker drains games from the dispatch channel, replaying each one into
// a local cache and flushing to st whenever the cache reaches
// flushThreshold entries. It returns when games closes, after a final
// flush of whatever remains.
func runWorker(games <-chan pgnstream.GameSummary, st *store.Store, flushThreshold int) error {
	cache := newStatsCache()

	for game := range games {
		replayGame(cache, game)
		if cache.len() >= flushThreshold {
			if err := st.Flush(cache.drain()); err != nil {
				return err
			}
		}
	}

	if cache.len() > 0 {
		return st.Flush(cache.drain())
	}
	return nil
}
