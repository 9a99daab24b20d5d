// SPDX-License-Identifier: MIT
// Source: github.com/kmar/mlz

package mlz

import "errors"

// Sentinel errors returned by the codec, the stream framer and the job
// pool. Callers can match with errors.Is.
var (
	// ErrEmptyInput is returned when Compress/Decompress is handed a
	// zero-length source.
	ErrEmptyInput = errors.New("mlz: empty input")
	// ErrOutputOverrun is returned when the destination buffer is too
	// small to hold the result.
	ErrOutputOverrun = errors.New("mlz: output buffer too small")
	// ErrInputOverrun is returned when the decoder would read past the
	// end of the compressed stream.
	ErrInputOverrun = errors.New("mlz: truncated or corrupt input")
	// ErrLookBehindUnderrun is returned when a decoded match distance
	// reaches before the start of the available context.
	ErrLookBehindUnderrun = errors.New("mlz: match distance underruns available context")
	// ErrInvalidToken is returned when the decoder encounters a token
	// shape that cannot legally occur (e.g. a match of illegal length).
	ErrInvalidToken = errors.New("mlz: invalid token in compressed stream")

	// ErrInvalidBlockSize is returned when a stream's block size is not a
	// power of two within [MinBlockSize, MaxBlockSize).
	ErrInvalidBlockSize = errors.New("mlz: block size must be a power of two in range")
	// ErrMissingReadFunc is returned when OpenInStream is called without
	// a ReadFunc.
	ErrMissingReadFunc = errors.New("mlz: stream params missing ReadFunc")
	// ErrMissingWriteFunc is returned when OpenOutStream is called
	// without a WriteFunc.
	ErrMissingWriteFunc = errors.New("mlz: stream params missing WriteFunc")
	// ErrBlockChecksumMismatch is returned when a compressed block's
	// stored checksum does not match its recomputed value.
	ErrBlockChecksumMismatch = errors.New("mlz: block checksum mismatch")
	// ErrStreamChecksumMismatch is returned when the end-of-stream
	// incremental checksum does not match the value accumulated while
	// decoding.
	ErrStreamChecksumMismatch = errors.New("mlz: stream checksum mismatch")
	// ErrStreamNotRewindable is returned when Rewind is called on a
	// stream whose params carry no RewindFunc.
	ErrStreamNotRewindable = errors.New("mlz: stream is not rewindable")
	// ErrOversizedBlock is returned when a block header advertises a
	// length larger than the stream's configured block size.
	ErrOversizedBlock = errors.New("mlz: block length exceeds configured block size")
	// ErrInvalidFileHeader is returned when the optional 2-byte file
	// header's complement byte does not match, indicating corruption.
	ErrInvalidFileHeader = errors.New("mlz: invalid file header")
	// ErrStreamClosed is returned when Write is called on an OutStream
	// that has already been Closed.
	ErrStreamClosed = errors.New("mlz: stream already closed")

	// ErrJobPoolClosed is returned when work is enqueued on a job pool
	// that has already been shut down.
	ErrJobPoolClosed = errors.New("mlz: job pool is closed")
)
