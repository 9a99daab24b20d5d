// SPDX-License-Identifier: MIT
// Source: github.com/kmar/mlz

package mlz

// DecompressSafe decodes src into dst, bounds-checking every write, every
// input read and every back-reference. context, when non-empty, supplies
// the bytes immediately preceding dst that a match is allowed to
// reference — the explicit-slice replacement for mlz_decompress's
// bytes_before_dst count (see Compress's doc comment for why).
//
// Returns the number of bytes written to dst. Grounded on mlz_dec_mini.h
// with MLZ_COPY_MATCH's (not _UNSAFE's) bounds checks and
// MLZ_LITERAL_RUN's run-length validation.
func DecompressSafe(dst, src, context []byte) (int, error) {
	if len(src) == 0 {
		return 0, ErrEmptyInput
	}

	r, ok := newBitReader(src)
	if !ok {
		return 0, ErrInputOverrun
	}

	outPos := 0
	for r.remaining() > 0 {
		bit, ok := r.getBit()
		if !ok {
			break
		}
		if bit == 0 {
			b, ok := r.readByte()
			if !ok {
				return 0, ErrInputOverrun
			}
			if outPos >= len(dst) {
				return 0, ErrOutputOverrun
			}
			dst[outPos] = b
			outPos++
			continue
		}

		tok, ok := decodeMatchShape(r)
		if !ok {
			return 0, ErrInputOverrun
		}

		if tok.dist == 0 {
			run, ok := decodeLiteralRunLen(r)
			if !ok {
				return 0, ErrInputOverrun
			}
			if run < MinLitRun {
				return 0, ErrInvalidToken
			}
			if outPos+run > len(dst) {
				return 0, ErrOutputOverrun
			}
			for i := 0; i < run; i++ {
				b, ok := r.readByte()
				if !ok {
					return 0, ErrInputOverrun
				}
				dst[outPos+i] = b
			}
			outPos += run
			continue
		}

		if tok.len < MinMatch || tok.dist < 1 {
			return 0, ErrInvalidToken
		}
		if outPos+tok.len > len(dst) {
			return 0, ErrOutputOverrun
		}
		if len(context)+outPos-tok.dist < 0 {
			return 0, ErrLookBehindUnderrun
		}
		copyMatchSafe(dst, context, outPos, tok.dist, tok.len)
		outPos += tok.len
	}

	return outPos, nil
}

// copyMatchSafe copies length bytes starting dist bytes behind the
// current output position into dst[outPos:], reading from context when
// the reference reaches before dst[0]. Caller guarantees bounds are
// already validated. Byte-at-a-time to correctly reproduce overlapping
// (run-length-style) back-references where dist < length.
func copyMatchSafe(dst, context []byte, outPos, dist, length int) {
	ctxLen := len(context)
	for k := 0; k < length; k++ {
		srcL := ctxLen + outPos + k - dist
		var b byte
		if srcL < ctxLen {
			b = context[srcL]
		} else {
			b = dst[srcL-ctxLen]
		}
		dst[outPos+k] = b
	}
}

// DecompressSimple decodes src into dst with no preceding context.
// Ported from mlz_decompress_simple.
func DecompressSimple(dst, src []byte) (int, error) {
	return DecompressSafe(dst, src, nil)
}
