// SPDX-License-Identifier: MIT
// Source: github.com/kmar/mlz

/*
Package mlz implements mlz, a small LZ77-style block compressor with a
bit-packed token stream and an optional block-framed streaming format.

Tokens are single literals, literal runs, or one of four match shapes
(tiny, short, short2 and full), chosen by the encoder to minimize bits spent on short
near matches. Compression level selects the parser: levels 0-9 use a
greedy/lazy hash-chain match finder (lazy lookahead only kicks in above
level 5); level 10 runs a two-pass optimal parser that computes the
minimum-bit-cost tokenization with a backward cost pass before emitting
tokens forward.

# One-shot compression

	n, err := mlz.CompressSimple(dst, src, mlz.LevelMedium)
	n, err = mlz.DecompressSafe(dst, compressed, nil)

Compress and DecompressSafe both take an explicit context slice standing
in for the bytes immediately preceding src/dst: Go slices can't be
indexed backward past their own start the way the original C's
bytes_before_src/bytes_before_dst counts could, so callers chaining
dependent blocks pass the trailing bytes of the previous block directly.

# Streaming

OpenOutStream and OpenInStream wrap a StreamParams (read/write/rewind/
close callbacks plus block size, level, checksum and worker-count
knobs) to produce an io.WriteCloser/io.ReadCloser pair that frames the
raw codec into self-describing blocks, each with its own header and
optional checksum, terminated by a zero-length end marker.
*/
package mlz
