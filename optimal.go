// SPDX-License-Identifier: MIT
// Source: github.com/kmar/mlz

package mlz

// repeatRunThreshold is the minimum match length, for a distance-1
// (byte-repeat) candidate, at which the forward scan stops re-searching
// every subsequent position and instead propagates the shrinking run
// directly (the "repeat-run shortcut").
const repeatRunThreshold = 64

// parseOptimal is the level-10 parser: a two-pass DP parse that, unlike
// the greedy/lazy parser, makes a globally cost-minimizing choice at
// every position instead of a locally greedy one.
//
// Pass 1 (forward): for every position, find the single best candidate
// match by exact bit savings (optimalSavings), using an unbounded chain
// walk regardless of level. Pass 2 (backward): cost[i] is the cheapest
// way to encode src[i:] — either one literal plus cost[i+1], or (if a
// candidate match exists at i) that match's token cost plus
// cost[i+len]. A match that reaches or passes the end of input costs
// 0 for its suffix, since there is nothing left to encode.
//
// This is a deliberate redesign relative to mlz_enc.c, which has no
// two-pass parser at all — level 10 there just switches the single-pass
// greedy/lazy parser's acceptance rule to savings-best. spec.md calls
// for a true DP parser at level 10, so that's what this implements.
func parseOptimal(m *Matcher, dst, ext []byte, srcOff, srcLen int) (int, bool) {
	w, ok := newBitWriter(dst)
	if !ok {
		return 0, false
	}

	se := srcOff + srcLen
	matchStartMax := se - MinMatch

	m.clear()
	for tmp := 0; tmp < srcOff; tmp++ {
		h := computeHash(m.hashMask, hashAt(ext, tmp))
		m.insert(h, tmp)
	}

	matchDist := make([]int32, srcLen)
	matchLen := make([]int32, srcLen)

	sb := srcOff
	for sb < se {
		idx := sb - srcOff
		maxDist := sb
		if maxDist > MaxDist {
			maxDist = MaxDist
		}
		maxLen := se - sb
		if maxLen > MaxMatch {
			maxLen = MaxMatch
		}

		hash := computeHash(m.hashMask, hashAt(ext, sb))

		if maxDist == 0 || maxLen < MinMatch || sb > matchStartMax {
			m.insert(hash, sb)
			sb++
			continue
		}

		bestSave := -1
		dist, length := m.find(ext, sb, hash, maxDist, maxLen, 0, -1, savingsBest2(maxLen, &bestSave))
		m.insert(hash, sb)

		if dist == 0 || length < MinMatch {
			sb++
			continue
		}
		matchDist[idx] = int32(dist)
		matchLen[idx] = int32(length)

		if dist == 1 && length >= repeatRunThreshold {
			// repeat-run shortcut: a distance-1 match means every
			// position inside it also sees the same run, shrinking by
			// one each step. Propagate that directly instead of
			// re-walking the chain once per position.
			run := length
			k := 1
			for ; k < run && sb+k < se; k++ {
				remaining := run - k
				if remaining < MinMatch {
					break
				}
				hk := computeHash(m.hashMask, hashAt(ext, sb+k))
				m.insert(hk, sb+k)
				if sb+k-srcOff < srcLen {
					matchDist[sb+k-srcOff] = 1
					matchLen[sb+k-srcOff] = int32(remaining)
				}
			}
			sb += k
			continue
		}
		sb++
	}

	// Backward pass: cost[i] = cheapest encoding of src[i:].
	n := srcLen
	cost := make([]int32, n+1)
	takeLen := make([]int32, n) // 0 means "emit as literal"
	for i := n - 1; i >= 0; i-- {
		best := int32(literalCostBits) + cost[i+1]
		chosen := int32(0)

		if l := int(matchLen[i]); l >= MinMatch {
			end := i + l
			var suffix int32
			if end < n {
				suffix = cost[end]
			}
			total := int32(tokenCostBits(int(matchDist[i]), l)) + suffix
			if total < best {
				best = total
				chosen = int32(l)
			}
		}
		cost[i] = best
		takeLen[i] = chosen
	}

	// Forward reconstruction, reusing the shared token emitter so
	// literal runs still burst into the literal-run shape.
	litStart := srcOff
	i := 0
	for i < n {
		l := int(takeLen[i])
		if l < MinMatch {
			i++
			continue
		}
		pos := srcOff + i
		if !emitMatch(w, ext, litStart, pos, int(matchDist[i]), l) {
			return 0, false
		}
		litStart = pos + l
		i += l
	}
	if litStart < se {
		if !emitMatch(w, ext, litStart, se, 0, 0) {
			return 0, false
		}
	}

	return w.finish()
}

// savingsBest2 is savingsBest's DP-parser counterpart: same shape, but
// scored with optimalSavings instead of computeSavings.
func savingsBest2(maxLen int, bestSave *int) acceptFunc {
	return func(dist, length int) (bool, bool) {
		save := optimalSavings(dist, length)
		if save <= *bestSave {
			return false, false
		}
		*bestSave = save
		return true, length >= maxLen
	}
}
