// SPDX-License-Identifier: MIT
// Source: github.com/kmar/mlz

package mlz

// This file implements the token codec shared by every parser strategy
// (greedy, lazy, optimal) and both decoder variants (safe, unsafe).
//
// Token shapes, from mlz_output_match's comment block:
//
//	bit 0: literal byte follows
//	match:
//	  100: tiny match   + 3 bits len-MinMatch + byte dist-1
//	  101: short match  + word (3 msbits = len-MinMatch, 13 lsbits = dist)
//	  110: short2 match + 3 bits len-MinMatch + word dist
//	  111: full match   + byte len (255 => word len follows) + word dist
//	dist == 0 on a short/short2/full shape means "literal run": a 16-bit
//	run length follows, then that many raw literal bytes (runs < 36 are
//	illegal, see MinLitRun).

// emitMatch flushes buf[litStart:pos) as literals (bursting any run of
// MinLitRun+ of them into a literal-run token) and then, if length >=
// MinMatch, emits a match token for (dist, length) starting at pos.
// length < MinMatch with dist == 0 is the "flush trailing literals only"
// call used at end of parse. Ported from mlz_output_match.
func emitMatch(w *bitWriter, buf []byte, litStart, pos, dist, length int) bool {
	lb := litStart
	nlit := pos - lb

	for nlit >= MinLitRun {
		run := nlit
		if run > 65535 {
			run = 65535
		}
		if !emitMatchShape(w, 0, MinMatch) {
			return false
		}
		if !w.writeByte(byte(run & 0xff)) || !w.writeByte(byte((run >> 8) & 0xff)) {
			return false
		}
		if !w.writeBytes(buf[lb : lb+run]) {
			return false
		}
		nlit -= run
		lb += run
	}

	for lb < pos {
		if !w.addBit(0) {
			return false
		}
		if !w.writeByte(buf[lb]) {
			return false
		}
		lb++
	}

	if length < MinMatch {
		return true
	}
	return emitMatchShape(w, dist, length)
}

// emitMatchShape encodes just the match half of a token: the 1+2 control
// bits, the length field, and the distance field. Ported from the second
// half of mlz_output_match.
func emitMatchShape(w *bitWriter, dist, length int) bool {
	tinyLen := length >= MinMatch && length < MinMatch+(1<<3)

	switch {
	case dist > 0 && dist-1 < 256 && tinyLen:
		if !w.addBit(1) || !w.addBit(0) || !w.addBit(0) {
			return false
		}
		if !emitShortLenBits(w, length) {
			return false
		}
		return w.writeByte(byte((dist - 1) & 0xff))

	case tinyLen && dist < (1<<13):
		if !w.addBit(1) || !w.addBit(0) || !w.addBit(1) {
			return false
		}
		d := dist | ((length - MinMatch) << 13)
		return w.writeByte(byte(d&0xff)) && w.writeByte(byte((d>>8)&0xff))

	case tinyLen:
		if !w.addBit(1) || !w.addBit(1) || !w.addBit(0) {
			return false
		}
		if !emitShortLenBits(w, length) {
			return false
		}
		return w.writeByte(byte(dist&0xff)) && w.writeByte(byte((dist>>8)&0xff))

	default:
		if !w.addBit(1) || !w.addBit(1) || !w.addBit(1) {
			return false
		}
		dlen := length - MinMatch
		lenByte := dlen
		if lenByte > 255 {
			lenByte = 255
		}
		if !w.writeByte(byte(lenByte)) {
			return false
		}
		if dlen >= 255 {
			if !w.writeByte(byte(dlen&0xff)) || !w.writeByte(byte((dlen>>8)&0xff)) {
				return false
			}
		}
		return w.writeByte(byte(dist&0xff)) && w.writeByte(byte((dist>>8)&0xff))
	}
}

func emitShortLenBits(w *bitWriter, length int) bool {
	l := length - MinMatch
	for j := 0; j < 3; j++ {
		if !w.addBit(uint32((l >> j) & 1)) {
			return false
		}
	}
	return true
}

// decodedToken is the result of decoding one match-shape token: either a
// match (dist > 0) or a literal-run marker (dist == 0, len ignored).
type decodedToken struct {
	dist int
	len  int
}

// decodeMatchShape reads the 2-bit type tag (the leading control bit is
// assumed already consumed by the caller) and the shape-specific fields,
// mirroring mlz_decompress_mini's type dispatch exactly (type 0 = tiny,
// type 2 = short, type 1 = short2, type 3 = full).
func decodeMatchShape(r *bitReader) (decodedToken, bool) {
	typ, ok := r.getType()
	if !ok {
		return decodedToken{}, false
	}

	switch typ {
	case 0: // tiny match
		shortLen, ok := r.getShortLen()
		if !ok {
			return decodedToken{}, false
		}
		distByte, ok := r.readByte()
		if !ok {
			return decodedToken{}, false
		}
		return decodedToken{dist: int(distByte) + 1, len: shortLen + MinMatch}, true

	case 2: // short match
		b0, ok := r.readByte()
		if !ok {
			return decodedToken{}, false
		}
		b1, ok := r.readByte()
		if !ok {
			return decodedToken{}, false
		}
		d := int(b0) + int(b1)<<8
		length := (d >> 13) + MinMatch
		dist := d & ((1 << 13) - 1)
		return decodedToken{dist: dist, len: length}, true

	case 1: // short2 match
		shortLen, ok := r.getShortLen()
		if !ok {
			return decodedToken{}, false
		}
		b0, ok := r.readByte()
		if !ok {
			return decodedToken{}, false
		}
		b1, ok := r.readByte()
		if !ok {
			return decodedToken{}, false
		}
		return decodedToken{dist: int(b0) + int(b1)<<8, len: shortLen + MinMatch}, true

	default: // full match
		b0, ok := r.readByte()
		if !ok {
			return decodedToken{}, false
		}
		length := int(b0)
		if length == 255 {
			lo, ok := r.readByte()
			if !ok {
				return decodedToken{}, false
			}
			hi, ok := r.readByte()
			if !ok {
				return decodedToken{}, false
			}
			length = int(lo) + int(hi)<<8
		}
		length += MinMatch
		db0, ok := r.readByte()
		if !ok {
			return decodedToken{}, false
		}
		db1, ok := r.readByte()
		if !ok {
			return decodedToken{}, false
		}
		return decodedToken{dist: int(db0) + int(db1)<<8, len: length}, true
	}
}

// decodeLiteralRunLen reads the 16-bit run length following a
// literal-run marker. It does not check the length against MinLitRun:
// DecompressSafe rejects shorter runs itself (as MLZ_LITERAL_RUN does),
// and DecompressUnsafe does not check (as MLZ_LITERAL_RUN_UNSAFE).
func decodeLiteralRunLen(r *bitReader) (int, bool) {
	b0, ok := r.readByte()
	if !ok {
		return 0, false
	}
	b1, ok := r.readByte()
	if !ok {
		return 0, false
	}
	return int(b0) + int(b1)<<8, true
}
