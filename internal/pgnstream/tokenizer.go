package pgnstream

import (
	"bufio"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/chessql/pgnstats/internal/aggregate"
)

// forbiddenEventWords are substrings that reject a game regardless of
// time-control match, case-insensitively. Kept as a slice rather than a
// single hardcoded string so a future entry doesn't read as a magic literal.
var forbiddenEventWords = []string{"casual"}

var headerLineRe = regexp.MustCompile(`^\[(\w+)\s+"(.*)"\]$`)
var moveNumberPrefixRe = regexp.MustCompile(`^\d+\.*`)

type parserState int

const (
	stateIdle parserState = iota
	stateHeaders
	stateMoves
)

// Decoder tokenizes one PGN stream into a sequence of GameSummary records,
// running the header/ply filter predicates as it goes. It is an
// event-driven visitor, not a recursive-descent parser: headers, moves,
// and the comment/variation scopes are all handled as the line scanner
// advances, with no lookahead or backtracking.
type Decoder struct {
	scanner *bufio.Scanner
	filter  Filter

	state parserState

	skip         bool
	whiteEloOK   bool
	blackEloOK   bool
	eventText    string
	ply          int
	moves        []string
	winner       aggregate.Outcome

	variationDepth int
	inBraceComment bool
}

// NewDecoder wraps r (already decompressed PGN text) in a Decoder that
// applies filter to every game it encounters.
func NewDecoder(r io.Reader, filter Filter) *Decoder {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	return &Decoder{scanner: scanner, filter: filter}
}

// Next returns the next surviving GameSummary. ok is false once the stream
// is exhausted; err is non-nil only on a genuine scan failure (e.g. a line
// exceeding the scanner's buffer), which is fatal for the remainder of
// this file.
func (d *Decoder) Next() (summary GameSummary, ok bool, err error) {
	for d.scanner.Scan() {
		line := d.scanner.Text()
		trimmed := strings.TrimSpace(line)

		switch d.state {
		case stateIdle:
			if trimmed == "" {
				continue
			}
			if strings.HasPrefix(trimmed, "[") {
				d.resetGame()
				d.state = stateHeaders
				d.handleHeaderLine(trimmed)
			}

		case stateHeaders:
			if trimmed == "" {
				d.endHeaders()
				continue
			}
			if strings.HasPrefix(trimmed, "[") {
				d.handleHeaderLine(trimmed)
				continue
			}
			// Malformed export with no blank separator: tolerate it by
			// ending headers here and feeding this line as movetext.
			d.endHeaders()
			if d.processMovetextLine(line) {
				gs, kept := d.finishGame()
				d.state = stateIdle
				if kept {
					return gs, true, nil
				}
			}

		case stateMoves:
			if d.processMovetextLine(line) {
				gs, kept := d.finishGame()
				d.state = stateIdle
				if kept {
					return gs, true, nil
				}
			}
		}
	}
	if scanErr := d.scanner.Err(); scanErr != nil {
		return GameSummary{}, false, scanErr
	}
	return GameSummary{}, false, nil
}

func (d *Decoder) resetGame() {
	d.skip = false
	d.whiteEloOK = false
	d.blackEloOK = false
	d.eventText = ""
	d.ply = 0
	d.moves = nil
	d.winner = aggregate.Draw
	d.variationDepth = 0
	d.inBraceComment = false
}

func (d *Decoder) endHeaders() {
	d.state = stateMoves
	if !d.whiteEloOK || !d.blackEloOK {
		d.skip = true
	}
	if len(d.filter.TimeControls) > 0 {
		matched := false
		for _, tc := range d.filter.TimeControls {
			if strings.Contains(d.eventText, strings.ToLower(tc)) {
				matched = true
				break
			}
		}
		if !matched {
			d.skip = true
		}
	}
	for _, forbidden := range forbiddenEventWords {
		if strings.Contains(d.eventText, forbidden) {
			d.skip = true
		}
	}
}

func (d *Decoder) handleHeaderLine(line string) {
	match := headerLineRe.FindStringSubmatch(line)
	if match == nil {
		return
	}
	key, value := match[1], match[2]

	switch key {
	case "WhiteElo":
		d.whiteEloOK = d.eloMeetsFloor(value)
	case "BlackElo":
		d.blackEloOK = d.eloMeetsFloor(value)
	case "Event":
		d.eventText = strings.ToLower(strings.Trim(strings.TrimSpace(value), `"`))
	}
}

func (d *Decoder) eloMeetsFloor(value string) bool {
	rating, err := strconv.Atoi(value)
	if err != nil {
		return false
	}
	return rating >= d.filter.MinRating
}

// processMovetextLine folds one line of movetext into the game's move list,
// tracking brace-comment and variation-paren depth across the whole line.
// It returns true once a game-result token closes the current game.
func (d *Decoder) processMovetextLine(line string) bool {
	for _, word := range strings.Fields(line) {
		if d.inBraceComment {
			if strings.Contains(word, "}") {
				d.inBraceComment = false
				if idx := strings.Index(word, "}"); idx < len(word)-1 {
					word = word[idx+1:]
				} else {
					continue
				}
			} else {
				continue
			}
		}

		if strings.HasPrefix(word, "{") {
			if strings.Contains(word, "}") {
				continue
			}
			d.inBraceComment = true
			continue
		}

		if d.variationDepth > 0 {
			d.variationDepth += strings.Count(word, "(") - strings.Count(word, ")")
			if d.variationDepth < 0 {
				d.variationDepth = 0
			}
			continue
		}
		if strings.HasPrefix(word, "(") {
			d.variationDepth += strings.Count(word, "(") - strings.Count(word, ")")
			if d.variationDepth < 0 {
				d.variationDepth = 0
			}
			continue
		}

		if isResultToken(word) {
			d.winner = mapOutcome(word)
			return true
		}
		if strings.HasPrefix(word, "$") {
			continue
		}

		san := moveNumberPrefixRe.ReplaceAllString(word, "")
		if san == "" {
			continue
		}
		if !d.skip {
			d.ply++
			d.moves = append(d.moves, san)
		}
	}
	return false
}

func (d *Decoder) finishGame() (GameSummary, bool) {
	if d.skip || d.ply < d.filter.MinPlyCount {
		return GameSummary{}, false
	}
	return GameSummary{Winner: d.winner, Moves: d.moves}, true
}

func isResultToken(word string) bool {
	switch word {
	case "1-0", "0-1", "1/2-1/2", "*":
		return true
	default:
		return false
	}
}

func mapOutcome(result string) aggregate.Outcome {
	switch result {
	case "1-0":
		return aggregate.White
	case "0-1":
		return aggregate.Black
	default:
		return aggregate.Draw
	}
}
