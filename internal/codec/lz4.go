package codec

import (
	"encoding/binary"

	"github.com/pierrec/lz4/v4"

	"github.com/joshuapare/cratekit/pkg/types"
)

// Crate LZ4 payloads carry a one-byte chunk header before the block data:
// 0 means a single LZ4 block follows; a nonzero value N means N chunks,
// each prefixed with an int32 compressed size. Chunking only occurs for
// payloads larger than maxChunkSize.
const maxChunkSize = 0x7E000000

// DecompressLZ4 decompresses a chunked LZ4 payload into exactly
// uncompressedSize bytes. A size mismatch or malformed block fails with
// Corrupt.
func DecompressLZ4(src []byte, uncompressedSize int64) ([]byte, error) {
	if uncompressedSize < 0 {
		return nil, corrupt("negative uncompressed size")
	}
	dst := make([]byte, uncompressedSize)
	n, err := decompressInto(src, dst)
	if err != nil {
		return nil, err
	}
	if n != uncompressedSize {
		return nil, corrupt("LZ4 decompressed size mismatch")
	}
	return dst, nil
}

// DecompressLZ4Capacity decompresses a chunked LZ4 payload whose exact
// uncompressed size is unknown but bounded by capacity. It returns the
// actual decompressed bytes.
func DecompressLZ4Capacity(src []byte, capacity int64) ([]byte, error) {
	if capacity < 0 {
		return nil, corrupt("negative capacity")
	}
	dst := make([]byte, capacity)
	n, err := decompressInto(src, dst)
	if err != nil {
		return nil, err
	}
	return dst[:n], nil
}

func decompressInto(src, dst []byte) (int64, error) {
	if len(src) < 1 {
		return 0, corrupt("empty LZ4 payload")
	}
	nChunks := int(src[0])
	body := src[1:]

	if nChunks == 0 {
		n, err := lz4.UncompressBlock(body, dst)
		if err != nil {
			return 0, &types.Error{Kind: types.ErrKindCorrupt,
				Msg: "LZ4 block decode failed", Err: err}
		}
		return int64(n), nil
	}

	written := int64(0)
	for i := 0; i < nChunks; i++ {
		if len(body) < 4 {
			return 0, corrupt("LZ4 chunk header truncated")
		}
		chunkSize := int32(binary.LittleEndian.Uint32(body))
		body = body[4:]
		if chunkSize < 0 || int(chunkSize) > len(body) {
			return 0, corrupt("LZ4 chunk size out of range")
		}
		n, err := lz4.UncompressBlock(body[:chunkSize], dst[written:])
		if err != nil {
			return 0, &types.Error{Kind: types.ErrKindCorrupt,
				Msg: "LZ4 chunk decode failed", Err: err}
		}
		body = body[chunkSize:]
		written += int64(n)
	}
	return written, nil
}

// CompressLZ4 produces a chunked LZ4 payload for src. Inputs up to
// maxChunkSize compress into the single-block form (leading zero byte).
func CompressLZ4(src []byte) ([]byte, error) {
	if len(src) <= maxChunkSize {
		block, err := compressBlock(src)
		if err != nil {
			return nil, err
		}
		out := make([]byte, 0, 1+len(block))
		out = append(out, 0)
		return append(out, block...), nil
	}

	nChunks := (len(src) + maxChunkSize - 1) / maxChunkSize
	out := []byte{byte(nChunks)}
	for off := 0; off < len(src); off += maxChunkSize {
		end := off + maxChunkSize
		if end > len(src) {
			end = len(src)
		}
		block, err := compressBlock(src[off:end])
		if err != nil {
			return nil, err
		}
		var hdr [4]byte
		binary.LittleEndian.PutUint32(hdr[:], uint32(len(block)))
		out = append(out, hdr[:]...)
		out = append(out, block...)
	}
	return out, nil
}

func compressBlock(src []byte) ([]byte, error) {
	dst := make([]byte, lz4.CompressBlockBound(len(src)))
	var c lz4.Compressor
	n, err := c.CompressBlock(src, dst)
	if err != nil {
		return nil, &types.Error{Kind: types.ErrKindCorrupt,
			Msg: "LZ4 block encode failed", Err: err}
	}
	if n == 0 {
		// Incompressible input. Emit a literal-only block so the decoder
		// sees a well-formed LZ4 stream.
		return literalBlock(src), nil
	}
	return dst[:n], nil
}

// literalBlock encodes src as a single LZ4 sequence of literals with no
// match, which is the legal form for a terminal sequence.
func literalBlock(src []byte) []byte {
	n := len(src)
	out := make([]byte, 0, n+n/255+2)
	if n < 15 {
		out = append(out, byte(n)<<4)
	} else {
		out = append(out, 0xF0)
		rest := n - 15
		for rest >= 255 {
			out = append(out, 255)
			rest -= 255
		}
		out = append(out, byte(rest))
	}
	return append(out, src...)
}

func corrupt(msg string) *types.Error {
	return &types.Error{Kind: types.ErrKindCorrupt, Msg: msg, Err: types.ErrCorrupt}
}
