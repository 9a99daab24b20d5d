// SPDX-License-Identifier: MIT
// Source: github.com/kmar/mlz

package mlz

import "sync"

// matcherPool and optimalMatcherPool let CompressSimple (and any other
// one-shot caller that doesn't want to own a long-lived Matcher) reuse
// the hash tables' memory across calls instead of allocating a fresh
// Matcher every time; the tables are still cleared on every acquire.
// Grounded on sliding_window_pool.go's
// acquire/release-and-reset idiom.
var matcherPool = sync.Pool{
	New: func() any { return NewMatcher() },
}

var optimalMatcherPool = sync.Pool{
	New: func() any { return NewOptimalMatcher() },
}

// acquireMatcher fetches a Matcher sized for level from its pool,
// resetting its hash tables so matches never leak across callers.
func acquireMatcher(level int) *Matcher {
	if clampLevel(level) >= LevelMax {
		m := optimalMatcherPool.Get().(*Matcher)
		m.clear()
		return m
	}
	m := matcherPool.Get().(*Matcher)
	m.clear()
	return m
}

// releaseMatcher returns m to the pool matching the level it was
// acquired for.
func releaseMatcher(level int, m *Matcher) {
	if m == nil {
		return
	}
	if clampLevel(level) >= LevelMax {
		optimalMatcherPool.Put(m)
		return
	}
	matcherPool.Put(m)
}
