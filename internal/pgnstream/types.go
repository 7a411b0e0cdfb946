// Package pgnstream turns a PGN archive file into a lazy sequence of
// filtered GameSummary records: decompression by extension, an event-driven
// movetext tokenizer, and the header/ply filter predicates that decide
// which games are worth aggregating.
package pgnstream

import "github.com/chessql/pgnstats/internal/aggregate"

// GameSummary is everything the worker aggregator needs to replay a
// surviving game: its outcome and the ordered mainline SAN tokens.
// Variations are never included — the decoder stays in the mainline scope
// and skips nested variation text entirely.
type GameSummary struct {
	Winner aggregate.Outcome
	Moves  []string
}

// Filter holds the configured predicates evaluated during the header phase
// of each game, plus the ply-count floor evaluated after moves are read.
type Filter struct {
	// MinRating is the floor both WhiteElo and BlackElo must meet. Both
	// headers must be present and parse as integers even when it is zero;
	// a game missing either, or carrying "?", is rejected.
	MinRating int

	// MinPlyCount is the floor a game's ply count must meet to be kept.
	MinPlyCount int

	// TimeControls is a set of case-insensitive substrings; the Event
	// header must contain at least one of them. Empty disables the check.
	TimeControls []string
}
