// SPDX-License-Identifier: MIT
// Source: github.com/kmar/mlz

package mlz

// Matcher is a hash-chain match finder over a sliding window of up to
// MaxDist+1 bytes. It is grounded on mlz_enc.c's struct mlz_matcher: a
// small hash -> most-recent-position table plus a fixed-size ring of
// "next occurrence" links, both addressed modulo 65536 so a single
// 16-bit subtraction yields the cyclic distance between two positions.
//
// A Matcher carries no src/dst state; Compress clears it at the start of
// every call and feeds it positions as the parse advances, exactly like
// mlz_matcher_clear followed by mlz_match_hash_next_byte.
type Matcher struct {
	hashMask uint32
	hash     []uint16
	next     [hashListSize]uint16
}

// NewMatcher returns a Matcher sized for the greedy/lazy parser.
func NewMatcher() *Matcher {
	return newMatcher(standardHashBits)
}

// NewOptimalMatcher returns a Matcher with the wider hash table the
// level-10 DP parser's exhaustive forward scan benefits from. Any
// Matcher works with Compress regardless of level; this constructor
// exists purely so level-10 callers get the lower collision rate
// spec.md calls for.
func NewOptimalMatcher() *Matcher {
	return newMatcher(optimalHashBits)
}

func newMatcher(hashBits uint) *Matcher {
	size := uint32(1) << hashBits
	return &Matcher{hashMask: size - 1, hash: make([]uint16, size)}
}

// clear resets the matcher to its empty state, as mlz_matcher_clear does
// at the top of every mlz_compress call.
func (m *Matcher) clear() {
	for i := range m.hash {
		m.hash[i] = 0
	}
	for i := range m.next {
		m.next[i] = 0
	}
}

func computeHash(hashMask uint32, data uint32) uint32 {
	data ^= data >> 11
	data ^= data << 7
	return data & hashMask
}

// hashAt computes the 3-byte rolling hash at buf[pos], matching
// MLZ_HASHBYTE's handling of the last two bytes of the window.
func hashAt(buf []byte, pos int) uint32 {
	var h uint32
	h = uint32(buf[pos])
	if pos+1 < len(buf) {
		h |= uint32(buf[pos+1]) << 8
	}
	if pos+2 < len(buf) {
		h |= uint32(buf[pos+2]) << 16
	}
	return h
}

// insert records buf[pos] (whose hash is hash) as the newest occurrence
// in its chain, matching mlz_match_hash_next_byte.
func (m *Matcher) insert(hash uint32, pos int) {
	slot := uint16(pos & hashListMask)
	m.next[slot] = m.hash[hash]
	m.hash[hash] = slot
}

// cyclicDist returns the forward cyclic distance from newer to older,
// both taken modulo 65536, per MLZ_MATCH's cyc_dist computation.
func cyclicDist(newer, older uint16) int {
	d := int(newer) - int(older)
	if d < 0 {
		d += hashListSize
	}
	return d
}

// acceptFunc decides whether a candidate of the given (distance, length)
// should replace the current best; find only offers candidates longer
// than the best length so far. It returns whether the candidate is
// accepted and whether the search can stop early.
type acceptFunc func(dist, length int) (accept, stop bool)

// lengthBest accepts strictly longer matches and stops as soon as the
// walk reaches maxLen, mirroring MLZ_MATCH_BEST.
func lengthBest(maxLen int) acceptFunc {
	return func(_, length int) (bool, bool) {
		return true, length >= maxLen
	}
}

// savingsBest accepts only candidates that both extend the best length
// and improve on bestSave, mirroring MLZ_MATCH_BEST_SAVINGS. bestSave is
// shared mutable state across the whole search.
func savingsBest(maxLen int, bestSave *int) acceptFunc {
	return func(dist, length int) (bool, bool) {
		save := computeSavings(dist, length)
		if save <= *bestSave {
			return false, false
		}
		*bestSave = save
		return true, length >= maxLen
	}
}

// find walks the hash chain for buf[pos] (whose hash is hash), looking
// for the best match under maxDist/maxLen, honoring an existing
// best-length floor (bestLen) and a chain-hop budget (loops; pass a
// negative value for an unbounded walk). accept decides acceptance
// criteria (length-only vs savings-based). Returns (dist, length); dist
// is 0 if nothing beat bestLen.
//
// This is the Go shape of the MLZ_MATCH/MLZ_MATCH_BEST*/MLZ_MATCH_BEST_COMMON
// macro family: the macros expanded the same walk four ways (bounded vs
// unbounded loop, length-best vs savings-best); here that's one loop
// parameterized by an accept closure plus a loop budget.
func (m *Matcher) find(buf []byte, pos int, hash uint32, maxDist, maxLen, bestLen, loops int, accept acceptFunc) (dist, length int) {
	if maxLen <= 0 || bestLen >= maxLen {
		return 0, bestLen
	}

	opos := uint16(pos)
	cand := m.hash[hash]
	cycDist := cyclicDist(opos, cand)

	for (loops < 0 || loops > 0) && cycDist <= maxDist {
		if loops > 0 {
			loops--
		}

		if pos+bestLen < len(buf) && pos+bestLen-cycDist >= 0 && buf[pos+bestLen] == buf[pos+bestLen-cycDist] {
			i := 0
			for i < maxLen && pos+i-cycDist >= 0 && buf[pos+i] == buf[pos+i-cycDist] {
				i++
			}
			if i > bestLen {
				// bestLen (and so the buf[pos+bestLen] prune check above)
				// only advances on an accepted candidate, not on every
				// length improvement as MLZ_MATCH does in the C source;
				// a slower-but-unsaved longer candidate here still lets a
				// later, cheaper one pass the prune check that a raised
				// floor would have blocked. Search breadth only, never
				// round-trip correctness.
				if ok, stop := accept(cycDist, i); ok {
					bestLen = i
					dist = cycDist
					if stop {
						return dist, bestLen
					}
				}
			}
		}

		npos := m.next[int(cand)&hashListMask]
		tmp := int(cand) - int(npos)
		if tmp <= 0 {
			tmp += hashListSize
		}
		cycDist += tmp
		cand = npos
	}
	return dist, bestLen
}
