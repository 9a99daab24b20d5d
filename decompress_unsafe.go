// SPDX-License-Identifier: MIT
// Source: github.com/kmar/mlz

package mlz

// DecompressUnsafe decodes src into dst with no bounds checks and no
// context support, trusting the caller to have sized dst correctly and
// to be decoding a block produced without preceding context (matching
// mlz_decompress_unsafe's signature, which likewise takes no
// bytes_before_dst). Ported from mlz_decompress_mini.h's unsafe,
// all-in-one decoder, including its 4-byte-unrolled match copy and its
// skipped literal-run length validation.
//
// A malformed input can make this read/write out of dst's bounds; Go
// turns that into a panic (index out of range) rather than silent
// memory corruption, but it is still the caller's job to only ever feed
// this trusted, self-produced data.
func DecompressUnsafe(dst, src []byte) (int, error) {
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
			b, _ := r.readByte()
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
			for i := 0; i < run; i++ {
				b, _ := r.readByte()
				dst[outPos+i] = b
			}
			outPos += run
			continue
		}

		copyMatchUnsafe(dst, outPos, tok.dist, tok.len)
		outPos += tok.len
	}

	return outPos, nil
}

// copyMatchUnsafe copies length bytes from dist behind outPos, 4 at a
// time. Ported from MLZ_COPY_MATCH_UNSAFE.
func copyMatchUnsafe(dst []byte, outPos, dist, length int) {
	src := outPos - dist
	chunks := length >> 2
	for ; chunks > 0; chunks-- {
		dst[outPos] = dst[src]
		dst[outPos+1] = dst[src+1]
		dst[outPos+2] = dst[src+2]
		dst[outPos+3] = dst[src+3]
		outPos += 4
		src += 4
	}
	for n := length & 3; n > 0; n-- {
		dst[outPos] = dst[src]
		outPos++
		src++
	}
}
