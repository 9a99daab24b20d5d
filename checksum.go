// SPDX-License-Identifier: MIT
// Source: github.com/kmar/mlz

package mlz

import "github.com/cespare/xxhash/v2"

// BlockChecksumFunc hashes a single compressed block's bytes to a
// 32-bit checksum. buf is guaranteed 8-byte aligned in the C original;
// that guarantee doesn't carry over to Go slices and isn't needed by
// either checksum implemented here.
type BlockChecksumFunc func(buf []byte) uint32

// IncrementalChecksumFunc folds buf into a running checksum seeded by
// prev, returning the updated value. Used to checksum the whole
// uncompressed stream one block at a time.
type IncrementalChecksumFunc func(buf []byte, prev uint32) uint32

// Adler32Incremental is the default IncrementalChecksumFunc, matching
// mlz_default_stream_params / mlz_adler32 exactly: a byte-at-a-time
// Fletcher-style checksum with a fast-unrolled inner loop for runs of
// 5552 bytes (the largest span before either half can overflow a 32-bit
// accumulator ahead of the next %65521 reduction).
func Adler32Incremental(buf []byte, prev uint32) uint32 {
	lo := prev & 0xffff
	hi := prev >> 16

	for len(buf) >= 5552 {
		for i := 0; i < 5552/4; i++ {
			lo += uint32(buf[4*i])
			hi += lo
			lo += uint32(buf[4*i+1])
			hi += lo
			lo += uint32(buf[4*i+2])
			hi += lo
			lo += uint32(buf[4*i+3])
			hi += lo
		}
		lo %= 65521
		hi %= 65521
		buf = buf[5552:]
	}

	for len(buf) >= 4 {
		lo += uint32(buf[0])
		hi += lo
		lo += uint32(buf[1])
		hi += lo
		lo += uint32(buf[2])
		hi += lo
		lo += uint32(buf[3])
		hi += lo
		buf = buf[4:]
	}

	for _, b := range buf {
		lo += uint32(b)
		hi += lo
	}

	lo %= 65521
	hi %= 65521

	return lo | (hi << 16)
}

// Adler32Simple is Adler32Incremental seeded with the canonical initial
// value of 1, matching mlz_adler32_simple.
func Adler32Simple(buf []byte) uint32 {
	return Adler32Incremental(buf, 1)
}

// XXH64IncrementalChecksum is an alternate, faster IncrementalChecksumFunc
// built on github.com/cespare/xxhash/v2. It is not part of the original
// mlz format (which only ever shipped Adler-32) but demonstrates that
// StreamParams' checksum hooks are genuinely pluggable, the way spec.md's
// "set to null to disable" / function-pointer design intends. prev seeds
// the hash's running state by folding it in ahead of buf so successive
// blocks still chain.
func XXH64IncrementalChecksum(buf []byte, prev uint32) uint32 {
	h := xxhash.New()
	var seed [4]byte
	seed[0] = byte(prev)
	seed[1] = byte(prev >> 8)
	seed[2] = byte(prev >> 16)
	seed[3] = byte(prev >> 24)
	_, _ = h.Write(seed[:])
	_, _ = h.Write(buf)
	return uint32(h.Sum64())
}

// XXH64BlockChecksum is the BlockChecksumFunc counterpart of
// XXH64IncrementalChecksum, used to validate a single compressed block's
// bytes independent of the running stream checksum.
func XXH64BlockChecksum(buf []byte) uint32 {
	return uint32(xxhash.Sum64(buf))
}
