// SPDX-License-Identifier: MIT
// Source: github.com/kmar/mlz

package mlz

// parseGreedyLazy implements the greedy-with-bounded-lookahead parser
// used for levels 0-9. Ported from mlz_compress's main while loop: find
// the best match at the current position, then speculatively probe one
// byte ahead (repeated up to 30 times at level>5) to see whether
// deferring by one byte finds something longer, the classic lazy-match
// trade-off. ext is the full window (context ++ src); srcOff is where
// src begins within it.
func parseGreedyLazy(m *Matcher, dst, ext []byte, srcOff, srcLen, level int) (int, bool) {
	w, ok := newBitWriter(dst)
	if !ok {
		return 0, false
	}

	se := srcOff + srcLen
	matchStartMax := se - MinMatch

	loops := -1
	if level < 9 {
		loops = 1 << uint(level)
	}

	m.clear()

	for tmp := 0; tmp < srcOff; tmp++ {
		h := computeHash(m.hashMask, hashAt(ext, tmp))
		m.insert(h, tmp)
	}

	litStart := srcOff
	sb := srcOff

	for sb < se {
		maxDist := sb
		if maxDist > MaxDist {
			maxDist = MaxDist
		}
		maxLen := se - sb
		if maxLen > MaxMatch {
			maxLen = MaxMatch
		}

		hash := computeHash(m.hashMask, hashAt(ext, sb))

		if maxDist == 0 || maxLen < MinMatch {
			m.insert(hash, sb)
			sb++
			continue
		}

		var bestDist, bestLen int
		if sb <= matchStartMax {
			bestDist, bestLen = m.find(ext, sb, hash, maxDist, maxLen, 0, loops, lengthBest(maxLen))
		}

		if bestDist == 0 || bestLen < MinMatch {
			m.insert(hash, sb)
			sb++
			continue
		}

		firstSb := sb
		firstLen := bestLen
		firstDist := bestDist

		lazyOfs := 1
		lazyCount := 0
		if level > 5 {
			lazyCount = 30
		}
		for bestLen < maxLen && sb+lazyOfs < se && lazyCount > 0 {
			lazyCount--

			sb2 := sb + lazyOfs
			maxDist2 := sb2
			if maxDist2 > MaxDist {
				maxDist2 = MaxDist
			}
			maxLen2 := se - sb2
			if maxLen2 > MaxMatch {
				maxLen2 = MaxMatch
			}

			// probe for at least MinMatch at sb+bestLen+2-MinMatch first;
			// cheap pre-filter before committing to the full re-search.
			lazysb := sb + bestLen + 2 - MinMatch
			if lazysb+MinMatch > se {
				break
			}

			lMaxDist := lazysb
			if lMaxDist > MaxDist {
				lMaxDist = MaxDist
			}
			lMaxLen := se - lazysb
			if lMaxLen > MaxMatch {
				lMaxLen = MaxMatch
			}
			if lMaxLen > MinMatch {
				lMaxLen = MinMatch
			}
			lHash := computeHash(m.hashMask, hashAt(ext, lazysb))
			lDist, lLen := m.find(ext, lazysb, lHash, lMaxDist, lMaxLen, 0, loops, lengthBest(lMaxLen))
			if lDist == 0 || lLen < MinMatch {
				break
			}

			hash2 := computeHash(m.hashMask, hashAt(ext, sb2))
			var best2Dist, best2Len int
			if sb2 <= matchStartMax {
				best2Dist, best2Len = m.find(ext, sb2, hash2, maxDist2, maxLen2, 0, loops, lengthBest(maxLen2))
			}
			if best2Dist == 0 || best2Len <= bestLen {
				break
			}

			m.insert(hash, sb)
			sb += lazyOfs

			bestDist = best2Dist
			bestLen = best2Len
			maxLen = maxLen2
			hash = hash2
		}

		if sb >= firstSb+MinMatch {
			if firstLen > sb-firstSb {
				firstLen = sb - firstSb
			}
			if !emitMatch(w, ext, litStart, firstSb, firstDist, firstLen) {
				return 0, false
			}
			litStart = firstSb + firstLen
		}

		if !emitMatch(w, ext, litStart, sb, bestDist, bestLen) {
			return 0, false
		}
		for i := 0; i < bestLen; i++ {
			h := computeHash(m.hashMask, hashAt(ext, sb))
			m.insert(h, sb)
			sb++
		}
		litStart = sb
	}

	if litStart < sb {
		if !emitMatch(w, ext, litStart, sb, 0, 0) {
			return 0, false
		}
	}

	return w.finish()
}
