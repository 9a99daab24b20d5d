// SPDX-License-Identifier: MIT
// Copyright (c) 2026 kmar
// Source: github.com/kmar/mlz (Go port of the mini-LZ C library)

package mlz

// Format-level constants shared by the matcher, the token codec and the
// stream framer. Mirrors mlz_common.h's mlz_constants enum.
const (
	// MaxDist is the largest backward match distance the token format can
	// express.
	MaxDist = 65535
	// MinMatch is the shortest match length the parser will ever emit; a
	// shorter candidate is re-emitted as literals (see emitMatch).
	MinMatch = 3
	// MaxMatch is the longest match length the token format can express.
	MaxMatch = 65535
	// MinLitRun is the shortest literal run the literal-run token shape is
	// worth spending its 35-bit static overhead on.
	MinLitRun = 36

	// accumBits is the bit-accumulator word width.
	accumBits = 24
	// accumBytes is accumBits worth of serialized little-endian bytes.
	accumBytes = 3
)

// Compression level bounds (spec.md §6: level ∈ [0,10], clamped).
const (
	LevelFastest = 0
	LevelMedium  = 5
	LevelMax     = 10
)

// Match-finder hash table sizes. The standard (greedy/lazy) parser and the
// optimal (DP) parser each get their own matcher with a distinct hash
// width: 2048 buckets tested best for the standard parser against the
// Silesia corpus per mlz_enc.c; the optimal parser's exhaustive forward
// scan benefits from the wider 4096-bucket table spec.md §3 calls for.
const (
	standardHashBits = 11 // 1<<11 == 2048
	optimalHashBits  = 12 // 1<<12 == 4096

	// hashListSize is the size of the position ring (pos mod 65536); both
	// matchers share this width since distances are capped at MaxDist.
	hashListSize = 65536
	hashListMask = hashListSize - 1
)

// Stream/block-framing constants (mlz_stream_common.h's mlz_stream_constants).
const (
	MinBlockSize = 1 << 10
	MaxBlockSize = 1 << 29

	uncompressedBlockMask uint32 = 1 << 30
	partialBlockMask      uint32 = 1 << 31
	blockLenMask          uint32 = uncompressedBlockMask - 1

	// blockContextSize caps how many trailing bytes of a block are carried
	// forward as context for the next (dependent) block; a block smaller
	// than this carries all of its bytes.
	blockContextSize = MaxDist + 1
	// blockDecReserve pads the decode scratch buffer so an
	// uncompressed-block target pointer never has to special-case the
	// tail of the allocation.
	blockDecReserve = 1 << 10
)

func clampLevel(level int) int {
	switch {
	case level < LevelFastest:
		return LevelFastest
	case level > LevelMax:
		return LevelMax
	default:
		return level
	}
}
