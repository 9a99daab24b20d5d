// SPDX-License-Identifier: MIT
// Source: github.com/kmar/mlz

package mlz

import (
	"encoding/binary"
	"io"
)

// InStream decompresses mlz's block-framed wire format, one block at a
// time, exposing an io.Reader. Grounded on mlz_stream_dec.c's
// mlz_in_stream: mlz_in_stream_read_block's header-then-body read order
// and end-of-stream zero-marker check survive directly; Rewind mirrors
// mlz_in_stream_rewind.
type InStream struct {
	params StreamParams

	ctxSize int
	ctx     []byte

	out    []byte
	outPos int
	outLen int

	header [4]byte

	checksum uint32
	index    int
	eof      bool
	err      error
}

// OpenInStream validates params and allocates an InStream ready for
// Read, mirroring mlz_in_stream_open.
func OpenInStream(p StreamParams) (*InStream, error) {
	if err := p.validate(true, false); err != nil {
		return nil, err
	}
	s := &InStream{
		params:   p,
		ctxSize:  p.contextSize(),
		out:      make([]byte, p.BlockSize+blockDecReserve),
		checksum: p.InitialChecksum,
	}
	if p.UseHeader {
		var hdr [2]byte
		if err := s.readAll(hdr[:]); err != nil {
			return nil, err
		}
		if hdr[1] != ^hdr[0] {
			return nil, ErrInvalidFileHeader
		}
	}
	return s, nil
}

// Read implements io.Reader, decoding blocks on demand as the caller
// drains prior ones. It returns io.EOF once the end-of-stream marker has
// been read and every decoded byte delivered.
func (s *InStream) Read(p []byte) (int, error) {
	if s.err != nil {
		return 0, s.err
	}
	if s.outPos >= s.outLen {
		if s.eof {
			return 0, io.EOF
		}
		if err := s.readBlock(); err != nil {
			s.err = err
			return 0, err
		}
		if s.eof {
			return 0, io.EOF
		}
	}

	n := copy(p, s.out[s.outPos:s.outLen])
	s.outPos += n
	return n, nil
}

// readBlock reads and decodes a single block, or detects and validates
// end-of-stream. Mirrors mlz_in_stream_read_block.
func (s *InStream) readBlock() error {
	header, err := s.readLE32()
	if err != nil {
		return err
	}
	if header == 0 {
		s.eof = true
		if s.params.IncrementalChecksum != nil {
			trailer, err := s.readLE32()
			if err != nil {
				return err
			}
			if trailer != s.checksum {
				return ErrStreamChecksumMismatch
			}
		}
		return nil
	}

	uncompressed := header&uncompressedBlockMask != 0
	partial := header&partialBlockMask != 0
	storedLen := int(header & blockLenMask)

	var blockChecksum uint32
	if s.params.BlockChecksum != nil {
		blockChecksum, err = s.readLE32()
		if err != nil {
			return err
		}
	}

	srcLen := s.params.BlockSize
	if partial {
		n, err := s.readLE32()
		if err != nil {
			return err
		}
		srcLen = int(n)
	}
	if storedLen > s.params.BlockSize || srcLen > s.params.BlockSize {
		return ErrOversizedBlock
	}

	body := make([]byte, storedLen)
	if err := s.readAll(body); err != nil {
		return err
	}

	if s.params.BlockChecksum != nil {
		if s.params.BlockChecksum(body) != blockChecksum {
			return ErrBlockChecksumMismatch
		}
	}

	if uncompressed {
		copy(s.out, body)
	} else {
		n, err := DecompressSafe(s.out[:srcLen], body, s.ctx)
		if err != nil {
			return err
		}
		if n != srcLen {
			return ErrInvalidToken
		}
	}

	if s.params.BlockNotify != nil {
		s.params.BlockNotify(BlockInfo{Index: s.index, UncompressedLen: srcLen})
	}
	s.index++

	if s.params.IncrementalChecksum != nil {
		s.checksum = s.params.IncrementalChecksum(s.out[:srcLen], s.checksum)
	}

	if s.ctxSize > 0 {
		combined := append(append([]byte(nil), s.ctx...), s.out[:srcLen]...)
		if len(combined) > s.ctxSize {
			combined = combined[len(combined)-s.ctxSize:]
		}
		s.ctx = combined
	}

	s.outPos = 0
	s.outLen = srcLen
	return nil
}

// Rewind seeks the underlying source back to the start and resets all
// decode state, mirroring mlz_in_stream_rewind. Returns
// ErrStreamNotRewindable if StreamParams.Rewind is nil.
func (s *InStream) Rewind() error {
	if s.params.Rewind == nil {
		return ErrStreamNotRewindable
	}
	if err := s.params.Rewind(); err != nil {
		return err
	}
	s.ctx = nil
	s.outPos = 0
	s.outLen = 0
	s.checksum = s.params.InitialChecksum
	s.index = 0
	s.eof = false
	s.err = nil
	if s.params.UseHeader {
		var hdr [2]byte
		if err := s.readAll(hdr[:]); err != nil {
			return err
		}
		if hdr[1] != ^hdr[0] {
			return ErrInvalidFileHeader
		}
	}
	return nil
}

// Close releases the underlying handle via StreamParams.Close, if set.
func (s *InStream) Close() error {
	if s.params.Close != nil {
		return s.params.Close()
	}
	return nil
}

func (s *InStream) readLE32() (uint32, error) {
	if err := s.readAll(s.header[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(s.header[:]), nil
}

func (s *InStream) readAll(p []byte) error {
	for len(p) > 0 {
		n, err := s.params.Read(p)
		if n > 0 {
			p = p[n:]
		}
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrInputOverrun
		}
	}
	return nil
}
