// SPDX-License-Identifier: MIT
// Source: github.com/kmar/mlz

package mlz

// ReadFunc reads up to len(p) bytes, returning the count read. Mirrors
// mlz_stream_params.read_func, adapted to the io.Reader error-return
// convention rather than C's "-1 means error" sentinel.
type ReadFunc func(p []byte) (n int, err error)

// WriteFunc writes p in full. Mirrors mlz_stream_params.write_func.
type WriteFunc func(p []byte) (n int, err error)

// RewindFunc seeks the underlying handle back to the start, enabling
// InStream.Rewind.
type RewindFunc func() error

// CloseFunc releases the underlying handle.
type CloseFunc func() error

// BlockNotifyFunc is called by OutStream just before a new block is
// written and by InStream just after a block is decoded, mirroring
// mlz_stream_params.block_func. Its zero value means "no notification".
type BlockNotifyFunc func(info BlockInfo)

// BlockInfo is the argument passed to BlockNotifyFunc.
type BlockInfo struct {
	// Index is the zero-based ordinal of the block about to be written
	// (OutStream) or just decoded (InStream).
	Index int
	// UncompressedLen is the number of source bytes the block covers.
	UncompressedLen int
}

// StreamParams configures OpenOutStream/OpenInStream. It is the Go
// capability-record translation of mlz_stream_params: callback-based
// polymorphism becomes a struct of func values (spec.md §9), and the
// read/write functions take the io.Reader/io.Writer shape instead of a
// void* handle plus a pair of C function pointers.
type StreamParams struct {
	Read   ReadFunc
	Write  WriteFunc
	Rewind RewindFunc
	Close  CloseFunc

	// BlockNotify, if set, runs before every block OutStream writes and
	// after every block InStream decodes.
	BlockNotify BlockNotifyFunc

	// BlockChecksum, if set, protects each compressed block's bytes
	// independently of IncrementalChecksum.
	BlockChecksum BlockChecksumFunc
	// IncrementalChecksum, if set, accumulates a running checksum of the
	// uncompressed stream, validated against a trailer value written at
	// Close.
	IncrementalChecksum IncrementalChecksumFunc
	// InitialChecksum seeds IncrementalChecksum.
	InitialChecksum uint32

	// BlockSize must be a power of two in [MinBlockSize, MaxBlockSize).
	// 65536 is recommended (and is what DefaultStreamParams uses).
	BlockSize int
	// IndependentBlocks disables carrying decoded context from one
	// block to the next. Hurts ratio but lets blocks be processed (and,
	// via the job pool, compressed) independently of one another.
	IndependentBlocks bool
	// Level is the compression level used by OutStream (ignored by
	// InStream).
	Level int
	// Workers, if > 1, compresses that many blocks concurrently via a
	// job pool instead of one at a time. Requires IndependentBlocks so
	// that no block's encode depends on another's decoded output.
	Workers int

	// UseHeader, if set, writes the optional 2-byte file header encoding
	// BlockSize, IndependentBlocks and which checksums are in play. On
	// decode it reads the header and checks only that the second byte is
	// the complement of the first; InStream does not take BlockSize,
	// IndependentBlocks or the checksum settings from it, so the caller
	// still sets those in StreamParams.
	UseHeader bool
}

// DefaultStreamParams mirrors mlz_default_stream_params: a 64KiB block
// size, dependent blocks, Adler-32 incremental checksumming seeded at 1,
// and no block checksum. Read/Write/Rewind/Close are left nil; callers
// fill them in (or use NewReaderStreamParams/NewWriterStreamParams).
func DefaultStreamParams() StreamParams {
	return StreamParams{
		IncrementalChecksum: Adler32Incremental,
		InitialChecksum:     1,
		BlockSize:           65536,
		IndependentBlocks:   false,
		Level:               LevelMedium,
	}
}

func (p StreamParams) validate(needRead, needWrite bool) error {
	if p.BlockSize < MinBlockSize || p.BlockSize >= MaxBlockSize {
		return ErrInvalidBlockSize
	}
	if p.BlockSize&(p.BlockSize-1) != 0 {
		return ErrInvalidBlockSize
	}
	if needRead && p.Read == nil {
		return ErrMissingReadFunc
	}
	if needWrite && p.Write == nil {
		return ErrMissingWriteFunc
	}
	return nil
}

// fileHeaderByte encodes the optional 2-byte file header's first byte:
// log2(BlockSize) in bits 0..4, independent-blocks in bit 5, has-block-
// checksum in bit 6, has-incremental-checksum in bit 7. Mirrors
// mlz_stream_common.h's file header layout.
func (p StreamParams) fileHeaderByte() byte {
	var b byte
	for n := p.BlockSize; n > 1; n >>= 1 {
		b++
	}
	if p.IndependentBlocks {
		b |= 1 << 5
	}
	if p.BlockChecksum != nil {
		b |= 1 << 6
	}
	if p.IncrementalChecksum != nil {
		b |= 1 << 7
	}
	return b
}

func (p StreamParams) contextSize() int {
	if p.IndependentBlocks {
		return 0
	}
	size := blockContextSize
	if size > p.BlockSize {
		size = p.BlockSize
	}
	return size
}
