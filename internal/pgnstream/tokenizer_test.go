package pgnstream

import (
	"strings"
	"testing"

	"github.com/chessql/pgnstats/internal/aggregate"
)

func decodeAll(t *testing.T, pgn string, filter Filter) []GameSummary {
	t.Helper()
	var out []GameSummary
	err := Decode(strings.NewReader(pgn), filter, func(gs GameSummary) error {
		out = append(out, gs)
		return nil
	})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	return out
}

const basicGame = `[Event "Rated Blitz game"]
[White "a"]
[Black "b"]
[WhiteElo "2000"]
[BlackElo "2100"]
[Result "1-0"]

1. e4 e5 2. Nf3 Nc6 3. Bb5 a6 1-0

`

func TestDecodeBasicGame(t *testing.T) {
	games := decodeAll(t, basicGame, Filter{MinRating: 1500, MinPlyCount: 1, TimeControls: []string{"blitz"}})
	if len(games) != 1 {
		t.Fatalf("got %d games, want 1", len(games))
	}
	g := games[0]
	if g.Winner != aggregate.White {
		t.Errorf("Winner = %v, want White", g.Winner)
	}
	want := []string{"e4", "e5", "Nf3", "Nc6", "Bb5", "a6"}
	if len(g.Moves) != len(want) {
		t.Fatalf("Moves = %v, want %v", g.Moves, want)
	}
	for i := range want {
		if g.Moves[i] != want[i] {
			t.Errorf("Moves[%d] = %q, want %q", i, g.Moves[i], want[i])
		}
	}
}

func TestDecodeRejectsLowRating(t *testing.T) {
	games := decodeAll(t, basicGame, Filter{MinRating: 2200, MinPlyCount: 1, TimeControls: []string{"blitz"}})
	if len(games) != 0 {
		t.Fatalf("got %d games, want 0 (rating below floor)", len(games))
	}
}

func TestDecodeRejectsMissingRating(t *testing.T) {
	pgn := `[Event "Rated Blitz game"]
[White "a"]
[Black "b"]
[Result "1-0"]

1. e4 e5 1-0

`
	games := decodeAll(t, pgn, Filter{MinRating: 0, MinPlyCount: 1, TimeControls: []string{"blitz"}})
	if len(games) != 0 {
		t.Fatalf("got %d games, want 0 (no Elo headers at all)", len(games))
	}
}

func TestDecodeRejectsCasualEvent(t *testing.T) {
	pgn := `[Event "Casual Bullet game"]
[WhiteElo "2000"]
[BlackElo "2000"]
[Result "1-0"]

1. e4 e5 1-0

`
	games := decodeAll(t, pgn, Filter{MinRating: 0, MinPlyCount: 1, TimeControls: []string{"bullet"}})
	if len(games) != 0 {
		t.Fatalf("got %d games, want 0 (casual event rejected even with time-control match)", len(games))
	}
}

func TestDecodeRejectsNonMatchingTimeControl(t *testing.T) {
	pgn := `[Event "Rated Classical game"]
[WhiteElo "2000"]
[BlackElo "2000"]
[Result "1-0"]

1. e4 e5 1-0

`
	games := decodeAll(t, pgn, Filter{MinRating: 0, MinPlyCount: 1, TimeControls: []string{"blitz", "bullet"}})
	if len(games) != 0 {
		t.Fatalf("got %d games, want 0 (event doesn't contain any configured time control)", len(games))
	}
}

func TestDecodeRejectsShortGame(t *testing.T) {
	pgn := `[Event "Rated Blitz game"]
[WhiteElo "2000"]
[BlackElo "2000"]
[Result "1-0"]

1. e4 1-0

`
	games := decodeAll(t, pgn, Filter{MinRating: 0, MinPlyCount: 4, TimeControls: []string{"blitz"}})
	if len(games) != 0 {
		t.Fatalf("got %d games, want 0 (below min ply count)", len(games))
	}
}

func TestDecodeSkipsVariations(t *testing.T) {
	pgn := `[Event "Rated Blitz game"]
[WhiteElo "2000"]
[BlackElo "2000"]
[Result "1-0"]

1. e4 e5 (1... c5 2. Nf3 d6) 2. Nf3 Nc6 1-0

`
	games := decodeAll(t, pgn, Filter{MinRating: 0, MinPlyCount: 1, TimeControls: []string{"blitz"}})
	if len(games) != 1 {
		t.Fatalf("got %d games, want 1", len(games))
	}
	want := []string{"e4", "e5", "Nf3", "Nc6"}
	if len(games[0].Moves) != len(want) {
		t.Fatalf("Moves = %v, want %v (variation should be skipped)", games[0].Moves, want)
	}
	for i := range want {
		if games[0].Moves[i] != want[i] {
			t.Errorf("Moves[%d] = %q, want %q", i, games[0].Moves[i], want[i])
		}
	}
}

func TestDecodeSkipsBraceComments(t *testing.T) {
	pgn := `[Event "Rated Blitz game"]
[WhiteElo "2000"]
[BlackElo "2000"]
[Result "1-0"]

1. e4 {good move} e5 2. Nf3 {developing} Nc6 1-0

`
	games := decodeAll(t, pgn, Filter{MinRating: 0, MinPlyCount: 1, TimeControls: []string{"blitz"}})
	if len(games) != 1 {
		t.Fatalf("got %d games, want 1", len(games))
	}
	want := []string{"e4", "e5", "Nf3", "Nc6"}
	if len(games[0].Moves) != len(want) {
		t.Fatalf("Moves = %v, want %v", games[0].Moves, want)
	}
}

func TestDecodeMultipleGamesInOneFile(t *testing.T) {
	pgn := basicGame + `[Event "Rated Blitz game"]
[WhiteElo "2100"]
[BlackElo "2000"]
[Result "0-1"]

1. d4 d5 2. c4 e6 0-1

`
	games := decodeAll(t, pgn, Filter{MinRating: 1500, MinPlyCount: 1, TimeControls: []string{"blitz"}})
	if len(games) != 2 {
		t.Fatalf("got %d games, want 2", len(games))
	}
	if games[1].Winner != aggregate.Black {
		t.Errorf("second game Winner = %v, want Black", games[1].Winner)
	}
}

func TestDecodeDrawResult(t *testing.T) {
	pgn := `[Event "Rated Blitz game"]
[WhiteElo "2000"]
[BlackElo "2000"]
[Result "1/2-1/2"]

1. e4 e5 2. Nf3 Nc6 1/2-1/2

`
	games := decodeAll(t, pgn, Filter{MinRating: 0, MinPlyCount: 1, TimeControls: []string{"blitz"}})
	if len(games) != 1 {
		t.Fatalf("got %d games, want 1", len(games))
	}
	if games[0].Winner != aggregate.Draw {
		t.Errorf("Winner = %v, want Draw", games[0].Winner)
	}
}

func TestDecodeUnknownResultIsDraw(t *testing.T) {
	pgn := `[Event "Rated Blitz game"]
[WhiteElo "2000"]
[BlackElo "2000"]
[Result "*"]

1. e4 e5 2. Nf3 Nc6 *

`
	games := decodeAll(t, pgn, Filter{MinRating: 0, MinPlyCount: 1, TimeControls: []string{"blitz"}})
	if len(games) != 1 {
		t.Fatalf("got %d games, want 1", len(games))
	}
	if games[0].Winner != aggregate.Draw {
		t.Errorf("Winner = %v, want Draw", games[0].Winner)
	}
}
