// Copyright 2026 The Fragpad Authors
// SPDX-License-Identifier: Apache-2.0

package history

import (
	"fmt"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Tag identifies the compression algorithm used for a snapshot
// payload. Tags are stored in snapshot envelopes by name — these
// values are format constants, changing them orphans existing
// snapshot files.
type Tag uint8

const (
	// TagNone stores the content uncompressed. Used for tiny
	// snapshots, where compression headers outweigh the savings, and
	// as the fallback for incompressible content.
	TagNone Tag = 0

	// TagLZ4 is LZ4 block compression. Used for small snapshots
	// where lz4's near-free decompression beats zstd's better ratio.
	TagLZ4 Tag = 1

	// TagZstd is zstd at the default level. Markdown compresses
	// 3-5x; this is the choice for anything beyond a few KB.
	TagZstd Tag = 2
)

// String returns the name stored in snapshot envelopes.
func (t Tag) String() string {
	switch t {
	case TagNone:
		return "none"
	case TagLZ4:
		return "lz4"
	case TagZstd:
		return "zstd"
	default:
		return fmt.Sprintf("unknown(%d)", t)
	}
}

// parseTag maps an envelope name back to its tag.
func parseTag(name string) (Tag, error) {
	switch name {
	case "none":
		return TagNone, nil
	case "lz4":
		return TagLZ4, nil
	case "zstd":
		return TagZstd, nil
	default:
		return 0, fmt.Errorf("unknown compression tag %q", name)
	}
}

// Size thresholds for compression selection. Below tinyThreshold the
// content is stored raw; below lz4Threshold lz4 is preferred for its
// cheap decompression; above it zstd's ratio wins.
const (
	tinyThreshold = 64
	lz4Threshold  = 4096
)

// zstdEncoder and zstdDecoder are reused across calls; both are safe
// for concurrent use.
var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic("history: zstd encoder initialization failed: " + err.Error())
	}
	zstdDecoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("history: zstd decoder initialization failed: " + err.Error())
	}
}

var errIncompressible = fmt.Errorf("content is incompressible")

// compress selects an algorithm for the content size and compresses.
// Incompressible content falls back to TagNone with the input
// unchanged.
func compress(raw []byte) ([]byte, Tag) {
	if len(raw) < tinyThreshold {
		return raw, TagNone
	}

	var compressed []byte
	var err error
	var tag Tag
	if len(raw) < lz4Threshold {
		compressed, err = compressLZ4(raw)
		tag = TagLZ4
	} else {
		compressed, err = compressZstd(raw)
		tag = TagZstd
	}
	if err != nil {
		return raw, TagNone
	}
	return compressed, tag
}

// decompress reverses compress. rawSize is the expected original
// length from the envelope; a mismatch means the snapshot file is
// damaged.
func decompress(payload []byte, tag Tag, rawSize int) ([]byte, error) {
	switch tag {
	case TagNone:
		if len(payload) != rawSize {
			return nil, fmt.Errorf("uncompressed payload is %d bytes, envelope says %d",
				len(payload), rawSize)
		}
		return payload, nil

	case TagLZ4:
		destination := make([]byte, rawSize)
		read, err := lz4.UncompressBlock(payload, destination)
		if err != nil {
			return nil, fmt.Errorf("lz4 decompress: %w", err)
		}
		if read != rawSize {
			return nil, fmt.Errorf("lz4 decompress: got %d bytes, expected %d", read, rawSize)
		}
		return destination, nil

	case TagZstd:
		result, err := zstdDecoder.DecodeAll(payload, make([]byte, 0, rawSize))
		if err != nil {
			return nil, fmt.Errorf("zstd decompress: %w", err)
		}
		if len(result) != rawSize {
			return nil, fmt.Errorf("zstd decompress: got %d bytes, expected %d", len(result), rawSize)
		}
		return result, nil

	default:
		return nil, fmt.Errorf("unsupported compression tag %d", tag)
	}
}

func compressLZ4(raw []byte) ([]byte, error) {
	bound := lz4.CompressBlockBound(len(raw))
	destination := make([]byte, bound)
	written, err := lz4.CompressBlock(raw, destination, nil)
	if err != nil {
		return nil, fmt.Errorf("lz4 compress: %w", err)
	}
	// CompressBlock returns 0 for incompressible input; a result no
	// smaller than the input is not worth the tag either.
	if written == 0 || written >= len(raw) {
		return nil, errIncompressible
	}
	return destination[:written], nil
}

func compressZstd(raw []byte) ([]byte, error) {
	compressed := zstdEncoder.EncodeAll(raw, nil)
	if len(compressed) >= len(raw) {
		return nil, errIncompressible
	}
	return compressed, nil
}
