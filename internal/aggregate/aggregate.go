// Package aggregate holds the packed win/loss/draw counters stored under
// every position and position-move key, and the commutative combine used to
// fold concurrent contributions together.
package aggregate

import (
	"encoding/binary"
	"fmt"
)

// Size is the on-disk width of an encoded Value: three big-endian uint32s.
const Size = 12

// Outcome is the result of a single game from one side's perspective-free
// point of view — White, Black, or Draw, matching a PGN result tag.
type Outcome int

const (
	White Outcome = iota
	Black
	Draw
)

// Value is the {black, white, draws} counter triple. Field order matches
// the on-disk byte layout (black, white, draws) and must not change: it is
// part of the persisted database format.
type Value struct {
	Black uint32
	White uint32
	Draws uint32
}

// FromOutcome returns the single-game indicator for an outcome.
func FromOutcome(o Outcome) Value {
	switch o {
	case White:
		return Value{White: 1}
	case Black:
		return Value{Black: 1}
	default:
		return Value{Draws: 1}
	}
}

// Encode serializes v as 12 big-endian bytes in {black, white, draws} order.
func (v Value) Encode() []byte {
	buf := make([]byte, Size)
	binary.BigEndian.PutUint32(buf[0:4], v.Black)
	binary.BigEndian.PutUint32(buf[4:8], v.White)
	binary.BigEndian.PutUint32(buf[8:12], v.Draws)
	return buf
}

// Decode parses a 12-byte buffer into a Value. A buffer of any other length
// is a fatal data-corruption error — the caller should treat it as the
// CorruptStoredValue condition, not retry or default to zero.
func Decode(buf []byte) (Value, error) {
	if len(buf) != Size {
		return Value{}, fmt.Errorf("aggregate: corrupt stored value: want %d bytes, got %d", Size, len(buf))
	}
	return Value{
		Black: binary.BigEndian.Uint32(buf[0:4]),
		White: binary.BigEndian.Uint32(buf[4:8]),
		Draws: binary.BigEndian.Uint32(buf[8:12]),
	}, nil
}

// Combine returns the componentwise sum of a and b. Combine is commutative
// and associative with identity Value{}, so folding deltas in any order or
// grouping produces the same result.
func Combine(a, b Value) Value {
	return Value{
		Black: a.Black + b.Black,
		White: a.White + b.White,
		Draws: a.Draws + b.Draws,
	}
}

// Total returns the number of games represented by v.
func (v Value) Total() uint32 {
	return v.Black + v.White + v.Draws
}
