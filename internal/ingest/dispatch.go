package ingest

import "github.com/chessql/pgnstats/internal/pgnstream"

// dispatchCapacity returns the bounded channel capacity for a dispatch
// channel sized against cacheSize: max(4096, cacheSize/16). The floor
// keeps small caches from starving the channel into lockstep with workers;
// the cacheSize/16 term lets a large flush threshold buy proportionally
// more slack between reader and workers.
func dispatchCapacity(cacheSize int) int {
	capacity := cacheSize / 16
	if capacity < 4096 {
		capacity = 4096
	}
	return capacity
}

// newDispatchChannel returns a bounded channel of decoded games. The
// reader is its sole sender: closing it is the only shutdown signal any
// worker needs, so ownership of the send side must never be shared or
// cloned.
func newDispatchChannel(cacheSize int) chan pgnstream.GameSummary {
	return make(chan pgnstream.GameSummary, dispatchCapacity(cacheSize))
}
