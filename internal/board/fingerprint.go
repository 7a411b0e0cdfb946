package board

import "encoding/binary"

// Fingerprint returns the 8-byte big-endian encoding of the position's
// Zobrist hash. Hash is computed over piece placement, side to move,
// castling rights, and the en-passant file only (see ComputeHash in
// fen.go) — it never folds in HalfMoveClock or FullMoveNumber, so two
// positions that differ only in clock state produce identical
// fingerprints. That's deliberate: clocks carry no information about
// opening/middlegame statistics, and colliding them here is what lets a
// prefix scan over a fingerprint find every game that reached a position
// regardless of how many reversible moves preceded it.
func (p *Position) Fingerprint() [8]byte {
	var fp [8]byte
	binary.BigEndian.PutUint64(fp[:], p.Hash)
	return fp
}
