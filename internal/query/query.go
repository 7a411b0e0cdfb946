// Package query implements the read side of the store: given a FEN, it
// renders the position's accumulated win/loss/draw totals together with
// the per-move breakdown, with each move resolved back to SAN.
package query

import (
	"errors"
	"fmt"

	"github.com/chessql/pgnstats/internal/board"
	"github.com/chessql/pgnstats/internal/store"
)

// ErrNotFound is returned when the position has never been recorded.
var ErrNotFound = errors.New("query: position not found")

// MoveStats is one entry in a Result's move breakdown.
type MoveStats struct {
	UCI   string `json:"uci"`
	SAN   string `json:"san"`
	White uint32 `json:"white"`
	Black uint32 `json:"black"`
	Draws uint32 `json:"draws"`
}

// Result groups a position's own totals with its per-move breakdown —
// the GameStats shape the original implementation returns, not just the
// raw PS/PMS rows the store holds separately.
type Result struct {
	White uint32      `json:"white"`
	Black uint32      `json:"black"`
	Draws uint32      `json:"draws"`
	Moves []MoveStats `json:"moves"`
}

// Lookup parses fen, fetches its position totals and move breakdown from
// st, and resolves each move's UCI suffix back to SAN against the parsed
// position. Returns ErrNotFound if the position has no recorded games.
func Lookup(st *store.Store, fen string) (Result, error) {
	pos, err := board.ParseFEN(fen)
	if err != nil {
		return Result{}, fmt.Errorf("query: parse fen: %w", err)
	}
	fp := pos.Fingerprint()

	totals, err := st.GetPositionStats(fp)
	if errors.Is(err, store.ErrNotFound) {
		return Result{}, ErrNotFound
	}
	if err != nil {
		return Result{}, err
	}

	rows, err := st.ScanMoves(fp)
	if err != nil {
		return Result{}, err
	}

	moves := make([]MoveStats, 0, len(rows))
	for _, row := range rows {
		move, err := board.ParseMove(row.UCI, pos)
		if err != nil {
			continue
		}
		moves = append(moves, MoveStats{
			UCI:   row.UCI,
			SAN:   move.ToSAN(pos),
			White: row.Value.White,
			Black: row.Value.Black,
			Draws: row.Value.Draws,
		})
	}

	return Result{
		White: totals.White,
		Black: totals.Black,
		Draws: totals.Draws,
		Moves: moves,
	}, nil
}
