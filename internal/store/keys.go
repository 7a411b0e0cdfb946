package store

// Key family prefixes. These three literal byte strings are part of the
// on-disk format: any reimplementation reading this database must use the
// same prefixes in the same byte order.
var (
	prefixPositionStats     = []byte("ps")
	prefixPositionMoveStats = []byte("pms")
	prefixFileLedger        = []byte("fs")
)

// PositionKey builds a "position stats" key: ps || fp(P).
func PositionKey(fp [8]byte) []byte {
	key := make([]byte, 0, len(prefixPositionStats)+8)
	key = append(key, prefixPositionStats...)
	key = append(key, fp[:]...)
	return key
}

// MoveKey builds a "position-move stats" key: pms || fp(P) || uci(M).
func MoveKey(fp [8]byte, uci string) []byte {
	key := make([]byte, 0, len(prefixPositionMoveStats)+8+len(uci))
	key = append(key, prefixPositionMoveStats...)
	key = append(key, fp[:]...)
	key = append(key, uci...)
	return key
}

// MovePrefix builds the scan prefix "pms || fp(P)" that covers exactly the
// per-move entries recorded from position P, and nothing else — no other
// key family nor any other position's moves share this prefix.
func MovePrefix(fp [8]byte) []byte {
	prefix := make([]byte, 0, len(prefixPositionMoveStats)+8)
	prefix = append(prefix, prefixPositionMoveStats...)
	prefix = append(prefix, fp[:]...)
	return prefix
}

// FileLedgerKey builds a ledger marker key: fs || file_id(F).
func FileLedgerKey(fileID [8]byte) []byte {
	key := make([]byte, 0, len(prefixFileLedger)+8)
	key = append(key, prefixFileLedger...)
	key = append(key, fileID[:]...)
	return key
}

// uciSuffix strips the "pms || fp" prefix from a full PMS key, returning
// the ASCII UCI move string that follows it.
func uciSuffix(key []byte) string {
	prefixLen := len(prefixPositionMoveStats) + 8
	if len(key) <= prefixLen {
		return ""
	}
	return string(key[prefixLen:])
}
