// SPDX-License-Identifier: MIT
// Source: github.com/kmar/mlz

package mlz

// Compress encodes src into dst at the given level (clamped to
// [LevelFastest, LevelMax]). context, when non-empty, supplies the bytes
// immediately preceding src that matches are allowed to reference — the
// Go-native replacement for mlz_compress's bytes_before_src count: since
// Go slices can't be indexed backwards past their own start, the actual
// preceding bytes have to be passed explicitly rather than implied by
// pointer arithmetic (spec.md §9's "pointer arithmetic -> explicit
// slices" translation rule).
//
// m is reset at the start of every call, exactly as mlz_matcher_clear
// resets it at the top of every mlz_compress call; callers that stream
// many blocks are expected to reuse the same Matcher (see the sync.Pool
// wrapper in matcher_pool.go) rather than allocate one per call.
func Compress(m *Matcher, dst, src, context []byte, level int) (int, error) {
	if len(src) == 0 {
		return 0, ErrEmptyInput
	}

	ext := src
	srcOff := 0
	if len(context) > 0 {
		ext = make([]byte, len(context)+len(src))
		copy(ext, context)
		copy(ext[len(context):], src)
		srcOff = len(context)
	}

	level = clampLevel(level)

	var n int
	var ok bool
	if level >= LevelMax {
		n, ok = parseOptimal(m, dst, ext, srcOff, len(src))
	} else {
		n, ok = parseGreedyLazy(m, dst, ext, srcOff, len(src), level)
	}
	if !ok {
		return 0, ErrOutputOverrun
	}
	return n, nil
}

// CompressSimple compresses src into dst with no preceding context,
// borrowing a scratch Matcher from matcher_pool.go rather than
// allocating one. Ported from mlz_compress_simple.
func CompressSimple(dst, src []byte, level int) (int, error) {
	m := acquireMatcher(level)
	defer releaseMatcher(level, m)
	return Compress(m, dst, src, nil, level)
}

// MaxCompressedSize returns a safe upper bound on the compressed size of
// an srcLen-byte block: every byte could end up a raw literal (9 bits
// each) plus the 3-byte accumulator reserve and up to 3 extra bytes of
// alignment/backfill slop.
func MaxCompressedSize(srcLen int) int {
	return srcLen + (srcLen+7)/8 + 2*accumBytes
}
