// SPDX-License-Identifier: MIT
// Source: github.com/kmar/mlz

package mlz

import "io"

// NewWriterStreamParams fills base.Write from w, wiring Close too when w
// implements io.Closer. Callers typically start from DefaultStreamParams().
func NewWriterStreamParams(w io.Writer, base StreamParams) StreamParams {
	base.Write = w.Write
	if c, ok := w.(io.Closer); ok {
		base.Close = c.Close
	}
	return base
}

// NewReaderStreamParams fills base.Read from r, wiring Rewind when r
// implements io.Seeker and Close when r implements io.Closer. Callers
// typically start from DefaultStreamParams().
func NewReaderStreamParams(r io.Reader, base StreamParams) StreamParams {
	base.Read = r.Read
	if s, ok := r.(io.Seeker); ok {
		base.Rewind = func() error {
			_, err := s.Seek(0, io.SeekStart)
			return err
		}
	}
	if c, ok := r.(io.Closer); ok {
		base.Close = c.Close
	}
	return base
}

// DecompressFromReader decodes an entire mlz block-framed stream read
// from r and returns the fully decompressed bytes. mlz's raw compressed
// block carries no embedded output length or end terminator (unlike the
// original LZO1X format this codec's idiom is grounded on), so unlike
// decompress_reader.go's DecompressFromReader, this convenience needs
// the block framer (InStream) rather than the bare codec: it is the
// framing that tells the decoder where the stream ends.
func DecompressFromReader(r io.Reader, base StreamParams) ([]byte, error) {
	params := NewReaderStreamParams(r, base)
	in, err := OpenInStream(params)
	if err != nil {
		return nil, err
	}
	defer in.Close()
	return io.ReadAll(in)
}

// CompressToWriter compresses all of src into w using mlz's block-framed
// stream format, honoring base's Level/BlockSize/Workers/checksum
// configuration. Symmetric counterpart to DecompressFromReader.
func CompressToWriter(w io.Writer, src []byte, base StreamParams) error {
	params := NewWriterStreamParams(w, base)
	out, err := OpenOutStream(params)
	if err != nil {
		return err
	}
	if _, err := out.Write(src); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
