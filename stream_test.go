// SPDX-License-Identifier: MIT
// Source: github.com/kmar/mlz

package mlz

import (
	"bytes"
	"io"
	"math/rand"
	"testing"
)

// writerStreamParams wires a bytes.Buffer in as the write sink of
// StreamParams; readerStreamParams wires data in as the read source, with
// Rewind backed by seeking a bytes.Reader over it.
func writerStreamParams(buf *bytes.Buffer, base StreamParams) StreamParams {
	base.Write = func(p []byte) (int, error) { return buf.Write(p) }
	return base
}

func readerStreamParams(data []byte, base StreamParams) (StreamParams, func()) {
	r := bytes.NewReader(data)
	base.Read = func(p []byte) (int, error) { return r.Read(p) }
	base.Rewind = func() error {
		_, err := r.Seek(0, 0)
		return err
	}
	return base, func() {}
}

func TestStreamRoundTripSingleWrite(t *testing.T) {
	var buf bytes.Buffer
	params := writerStreamParams(&buf, DefaultStreamParams())
	params.BlockSize = MinBlockSize

	out, err := OpenOutStream(params)
	if err != nil {
		t.Fatalf("OpenOutStream: %v", err)
	}

	src := bytes.Repeat([]byte("stream round trip payload "), 2000)
	if _, err := out.Write(src); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := out.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	inParams, _ := readerStreamParams(buf.Bytes(), DefaultStreamParams())
	inParams.BlockSize = MinBlockSize
	in, err := OpenInStream(inParams)
	if err != nil {
		t.Fatalf("OpenInStream: %v", err)
	}

	got := make([]byte, 0, len(src))
	chunk := make([]byte, 777)
	for {
		n, err := in.Read(chunk)
		got = append(got, chunk[:n]...)
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Read: %v", err)
		}
	}

	if !bytes.Equal(got, src) {
		t.Fatalf("round trip mismatch: got %d bytes, want %d", len(got), len(src))
	}
}

func TestStreamRoundTripArbitraryChunkSplits(t *testing.T) {
	rnd := rand.New(rand.NewSource(11))
	src := make([]byte, 50000)
	rnd.Read(src)

	var buf bytes.Buffer
	params := writerStreamParams(&buf, DefaultStreamParams())
	params.BlockSize = 4096

	out, err := OpenOutStream(params)
	if err != nil {
		t.Fatalf("OpenOutStream: %v", err)
	}

	// Write in arbitrarily-sized, block-size-unaligned chunks.
	chunkSizes := []int{1, 17, 4095, 4097, 8192, 123}
	pos := 0
	for _, sz := range chunkSizes {
		if pos >= len(src) {
			break
		}
		end := pos + sz
		if end > len(src) {
			end = len(src)
		}
		if _, err := out.Write(src[pos:end]); err != nil {
			t.Fatalf("Write: %v", err)
		}
		pos = end
	}
	if pos < len(src) {
		if _, err := out.Write(src[pos:]); err != nil {
			t.Fatalf("Write remainder: %v", err)
		}
	}
	if err := out.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	inParams, _ := readerStreamParams(buf.Bytes(), DefaultStreamParams())
	inParams.BlockSize = 4096
	in, err := OpenInStream(inParams)
	if err != nil {
		t.Fatalf("OpenInStream: %v", err)
	}

	var got bytes.Buffer
	small := make([]byte, 333)
	for {
		n, err := in.Read(small)
		got.Write(small[:n])
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Read: %v", err)
		}
	}

	if !bytes.Equal(got.Bytes(), src) {
		t.Fatal("round trip mismatch across arbitrary chunk splits")
	}
}

func TestStreamExactBlockCount(t *testing.T) {
	rnd := rand.New(rand.NewSource(3))
	src := make([]byte, 65536)
	rnd.Read(src)

	var buf bytes.Buffer
	params := writerStreamParams(&buf, DefaultStreamParams())
	params.BlockSize = 4096
	params.IndependentBlocks = true

	var blocks int
	params.BlockNotify = func(BlockInfo) { blocks++ }

	out, err := OpenOutStream(params)
	if err != nil {
		t.Fatalf("OpenOutStream: %v", err)
	}
	if _, err := out.Write(src); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := out.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if blocks != 16 {
		t.Fatalf("blocks = %d, want 16 (65536/4096)", blocks)
	}
}

func TestStreamIndependentBlocksPermutationEquivalence(t *testing.T) {
	rnd := rand.New(rand.NewSource(5))
	a := make([]byte, 4096)
	b := make([]byte, 4096)
	rnd.Read(a)
	rnd.Read(b)

	encode := func(order [][]byte) []byte {
		var buf bytes.Buffer
		params := writerStreamParams(&buf, DefaultStreamParams())
		params.BlockSize = 4096
		params.IndependentBlocks = true
		out, err := OpenOutStream(params)
		if err != nil {
			t.Fatalf("OpenOutStream: %v", err)
		}
		for _, blk := range order {
			if _, err := out.Write(blk); err != nil {
				t.Fatalf("Write: %v", err)
			}
		}
		if err := out.Close(); err != nil {
			t.Fatalf("Close: %v", err)
		}
		return buf.Bytes()
	}

	ab := encode([][]byte{a, b})
	ba := encode([][]byte{b, a})

	decode := func(data []byte) []byte {
		params, _ := readerStreamParams(data, DefaultStreamParams())
		params.BlockSize = 4096
		in, err := OpenInStream(params)
		if err != nil {
			t.Fatalf("OpenInStream: %v", err)
		}
		var out bytes.Buffer
		tmp := make([]byte, 4096)
		for {
			n, err := in.Read(tmp)
			out.Write(tmp[:n])
			if err == io.EOF {
				break
			}
			if err != nil {
				t.Fatalf("Read: %v", err)
			}
		}
		return out.Bytes()
	}

	gotAB := decode(ab)
	gotBA := decode(ba)

	if !bytes.Equal(gotAB, append(append([]byte{}, a...), b...)) {
		t.Fatal("a-then-b decode mismatch")
	}
	if !bytes.Equal(gotBA, append(append([]byte{}, b...), a...)) {
		t.Fatal("b-then-a decode mismatch")
	}
	// Independent blocks: swapping block order must not change how each
	// individual block decodes (no cross-block context dependency).
	if !bytes.Equal(gotAB[:4096], gotBA[4096:]) {
		t.Fatal("block a decoded differently depending on position")
	}
	if !bytes.Equal(gotAB[4096:], gotBA[:4096]) {
		t.Fatal("block b decoded differently depending on position")
	}
}

func TestStreamMultiWorkerDeterminism(t *testing.T) {
	rnd := rand.New(rand.NewSource(123))
	src := make([]byte, 64*1024)
	rnd.Read(src)

	encodeWith := func(workers int) []byte {
		var buf bytes.Buffer
		params := writerStreamParams(&buf, DefaultStreamParams())
		params.BlockSize = 4096
		params.IndependentBlocks = true
		params.Workers = workers
		out, err := OpenOutStream(params)
		if err != nil {
			t.Fatalf("OpenOutStream(workers=%d): %v", workers, err)
		}
		if _, err := out.Write(src); err != nil {
			t.Fatalf("Write(workers=%d): %v", workers, err)
		}
		if err := out.Close(); err != nil {
			t.Fatalf("Close(workers=%d): %v", workers, err)
		}
		return buf.Bytes()
	}

	single := encodeWith(1)
	quad := encodeWith(4)

	if !bytes.Equal(single, quad) {
		t.Fatal("multi-worker output diverges from single-worker output")
	}
}

func TestStreamChecksumTamperDetected(t *testing.T) {
	var buf bytes.Buffer
	params := writerStreamParams(&buf, DefaultStreamParams())
	params.BlockSize = MinBlockSize

	out, err := OpenOutStream(params)
	if err != nil {
		t.Fatalf("OpenOutStream: %v", err)
	}
	src := bytes.Repeat([]byte("checksum tamper test "), 200)
	if _, err := out.Write(src); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := out.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data := buf.Bytes()
	// Flip every bit of the last byte, well past the header/body of the
	// first block, inside the trailer checksum word, to trigger
	// ErrStreamChecksumMismatch.
	data[len(data)-1] ^= 0xFF

	inParams, _ := readerStreamParams(data, DefaultStreamParams())
	inParams.BlockSize = MinBlockSize
	in, err := OpenInStream(inParams)
	if err != nil {
		t.Fatalf("OpenInStream: %v", err)
	}

	tmp := make([]byte, len(src))
	var readErr error
	for {
		_, err := in.Read(tmp)
		if err != nil {
			readErr = err
			break
		}
	}
	if readErr != ErrStreamChecksumMismatch {
		t.Fatalf("err = %v, want ErrStreamChecksumMismatch", readErr)
	}
}

func TestStreamBlockBodyCorruptionRejected(t *testing.T) {
	var buf bytes.Buffer
	params := writerStreamParams(&buf, DefaultStreamParams())
	params.BlockSize = MinBlockSize
	params.BlockChecksum = XXH64BlockChecksum

	out, err := OpenOutStream(params)
	if err != nil {
		t.Fatalf("OpenOutStream: %v", err)
	}
	src := bytes.Repeat([]byte("header corruption test "), 200)
	if _, err := out.Write(src); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := out.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data := buf.Bytes()
	// Corrupt a body byte inside the first (full, non-partial) block's
	// body -- past its 4-byte header and 4-byte block checksum -- so
	// its block checksum no longer matches.
	data[12] ^= 0xFF

	inParams, _ := readerStreamParams(data, DefaultStreamParams())
	inParams.BlockSize = MinBlockSize
	inParams.BlockChecksum = XXH64BlockChecksum
	in, err := OpenInStream(inParams)
	if err != nil {
		t.Fatalf("OpenInStream: %v", err)
	}

	tmp := make([]byte, len(src))
	_, err = in.Read(tmp)
	if err != ErrBlockChecksumMismatch {
		t.Fatalf("err = %v, want ErrBlockChecksumMismatch", err)
	}
}

func TestStreamRewind(t *testing.T) {
	var buf bytes.Buffer
	params := writerStreamParams(&buf, DefaultStreamParams())
	params.BlockSize = MinBlockSize

	out, err := OpenOutStream(params)
	if err != nil {
		t.Fatalf("OpenOutStream: %v", err)
	}
	src := bytes.Repeat([]byte("rewind test payload "), 100)
	if _, err := out.Write(src); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := out.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	inParams, _ := readerStreamParams(buf.Bytes(), DefaultStreamParams())
	inParams.BlockSize = MinBlockSize
	in, err := OpenInStream(inParams)
	if err != nil {
		t.Fatalf("OpenInStream: %v", err)
	}

	readAll := func() []byte {
		var out bytes.Buffer
		tmp := make([]byte, 256)
		for {
			n, err := in.Read(tmp)
			out.Write(tmp[:n])
			if err == io.EOF {
				break
			}
			if err != nil {
				t.Fatalf("Read: %v", err)
			}
		}
		return out.Bytes()
	}

	first := readAll()
	if err := in.Rewind(); err != nil {
		t.Fatalf("Rewind: %v", err)
	}
	second := readAll()

	if !bytes.Equal(first, second) {
		t.Fatal("rewound read diverges from first read")
	}
	if !bytes.Equal(first, src) {
		t.Fatal("decoded stream diverges from source")
	}
}

func TestOpenInStreamRequiresReadFunc(t *testing.T) {
	params := DefaultStreamParams()
	if _, err := OpenInStream(params); err != ErrMissingReadFunc {
		t.Fatalf("err = %v, want ErrMissingReadFunc", err)
	}
}

func TestOpenOutStreamRequiresWriteFunc(t *testing.T) {
	params := DefaultStreamParams()
	if _, err := OpenOutStream(params); err != ErrMissingWriteFunc {
		t.Fatalf("err = %v, want ErrMissingWriteFunc", err)
	}
}

func TestStreamDefaultParamsRoundTrip(t *testing.T) {
	// Regression test: OpenOutStream must seed its running checksum from
	// InitialChecksum (as OpenInStream already does), or every stream
	// using DefaultStreamParams's InitialChecksum=1 fails the trailer
	// check even on untampered data.
	var buf bytes.Buffer
	params := writerStreamParams(&buf, DefaultStreamParams())

	out, err := OpenOutStream(params)
	if err != nil {
		t.Fatalf("OpenOutStream: %v", err)
	}
	src := bytes.Repeat([]byte("default params checksum seed "), 3000)
	if _, err := out.Write(src); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := out.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	inParams, _ := readerStreamParams(buf.Bytes(), DefaultStreamParams())
	in, err := OpenInStream(inParams)
	if err != nil {
		t.Fatalf("OpenInStream: %v", err)
	}

	got, err := io.ReadAll(in)
	if err != nil {
		t.Fatalf("ReadAll: %v (likely ErrStreamChecksumMismatch from a seed mismatch)", err)
	}
	if !bytes.Equal(got, src) {
		t.Fatal("round trip mismatch under default stream params")
	}
}

func TestStreamFileHeaderRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	params := writerStreamParams(&buf, DefaultStreamParams())
	params.BlockSize = MinBlockSize
	params.UseHeader = true

	out, err := OpenOutStream(params)
	if err != nil {
		t.Fatalf("OpenOutStream: %v", err)
	}
	src := bytes.Repeat([]byte("file header round trip "), 500)
	if _, err := out.Write(src); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := out.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data := buf.Bytes()
	if len(data) < 2 || data[1] != ^data[0] {
		t.Fatalf("file header bytes %x, %x are not complementary", data[0], data[1])
	}

	inParams, _ := readerStreamParams(data, DefaultStreamParams())
	inParams.BlockSize = MinBlockSize
	inParams.UseHeader = true
	in, err := OpenInStream(inParams)
	if err != nil {
		t.Fatalf("OpenInStream: %v", err)
	}
	got, err := io.ReadAll(in)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if !bytes.Equal(got, src) {
		t.Fatal("round trip mismatch with UseHeader enabled")
	}
}

func TestStreamFileHeaderCorruptionRejected(t *testing.T) {
	var buf bytes.Buffer
	params := writerStreamParams(&buf, DefaultStreamParams())
	params.BlockSize = MinBlockSize
	params.UseHeader = true

	out, err := OpenOutStream(params)
	if err != nil {
		t.Fatalf("OpenOutStream: %v", err)
	}
	if _, err := out.Write([]byte("short payload")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := out.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data := buf.Bytes()
	data[0] ^= 0x01 // flip a single bit of the first header byte

	inParams, _ := readerStreamParams(data, DefaultStreamParams())
	inParams.BlockSize = MinBlockSize
	inParams.UseHeader = true
	if _, err := OpenInStream(inParams); err != ErrInvalidFileHeader {
		t.Fatalf("err = %v, want ErrInvalidFileHeader", err)
	}
}

func TestCompressToWriterAndDecompressFromReader(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))
	src := make([]byte, 20000)
	rnd.Read(src)

	var buf bytes.Buffer
	if err := CompressToWriter(&buf, src, DefaultStreamParams()); err != nil {
		t.Fatalf("CompressToWriter: %v", err)
	}

	got, err := DecompressFromReader(bytes.NewReader(buf.Bytes()), DefaultStreamParams())
	if err != nil {
		t.Fatalf("DecompressFromReader: %v", err)
	}
	if !bytes.Equal(got, src) {
		t.Fatal("CompressToWriter/DecompressFromReader round trip mismatch")
	}
}

func TestOpenStreamRejectsBadBlockSize(t *testing.T) {
	var buf bytes.Buffer
	params := writerStreamParams(&buf, DefaultStreamParams())
	params.BlockSize = 100 // not a power of two
	if _, err := OpenOutStream(params); err != ErrInvalidBlockSize {
		t.Fatalf("err = %v, want ErrInvalidBlockSize", err)
	}
}
