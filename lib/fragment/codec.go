// Copyright 2026 The Fragpad Authors
// SPDX-License-Identifier: Apache-2.0

package fragment

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"unicode/utf8"

	"github.com/klauspost/compress/gzip"

	"github.com/fragpad/fragpad/lib/document"
)

// Token is an encoded document fragment: base64 text safe to place
// after the "#" in a URL.
type Token string

// Empty is the distinguished token for the canonical empty document.
// Encoding an empty document produces Empty rather than an encoded
// empty record, so fresh documents get a clean URL with no fragment.
const Empty Token = ""

// maxDecodedBytes caps how far a token may decompress. Tokens are
// attacker-supplied (anyone can craft a URL), and gzip can expand a
// few KB of input into gigabytes. A token whose payload exceeds the
// cap is malformed.
const maxDecodedBytes = 256 << 20

// record is the JSON wire form of a document. Field order and names
// are protocol constants; changing them breaks every link already
// shared.
type record struct {
	Content string `json:"content"`
	Mode    string `json:"mode"`
}

// base64Variants are tried in order during decode. Tokens this codec
// emits use the first (unpadded URL-safe) variant. The rest accept
// tokens minted by earlier encoders, which used the standard alphabet
// with padding; such tokens survive in old bookmarks.
var base64Variants = []*base64.Encoding{
	base64.RawURLEncoding,
	base64.StdEncoding,
	base64.RawStdEncoding,
	base64.URLEncoding,
}

var (
	errTooLarge = errors.New("decompressed payload exceeds size guard")
	errNotUTF8  = errors.New("decompressed payload is not valid UTF-8")
)

// Codec encodes documents into tokens and decodes tokens back.
// Stateless apart from observability: a logger for failure paths and
// counters for monitoring. Safe for concurrent use.
type Codec struct {
	logger  *slog.Logger
	metrics Metrics
}

// New creates a codec. A nil logger discards the failure records.
func New(logger *slog.Logger) *Codec {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Codec{logger: logger}
}

// Encode serializes a document into a token. The canonical empty
// document encodes to Empty. Internal failures (which would take a
// broken gzip writer or unmarshalable state, neither of which can
// happen with string content) are swallowed: the failure is logged,
// counted, and Empty returned. The document in memory is never at
// risk from a failed encode.
func (c *Codec) Encode(doc document.Document) Token {
	c.metrics.encodes.Add(1)
	if doc.IsEmpty() {
		return Empty
	}

	serialized, err := json.Marshal(record{
		Content: doc.Content,
		Mode:    doc.Mode.WireName(),
	})
	if err != nil {
		return c.encodeFailed("json", err)
	}

	var compressed bytes.Buffer
	writer, err := gzip.NewWriterLevel(&compressed, gzip.BestCompression)
	if err != nil {
		return c.encodeFailed("gzip", err)
	}
	if _, err := writer.Write(serialized); err != nil {
		return c.encodeFailed("gzip", err)
	}
	if err := writer.Close(); err != nil {
		return c.encodeFailed("gzip", err)
	}

	return Token(base64.RawURLEncoding.EncodeToString(compressed.Bytes()))
}

func (c *Codec) encodeFailed(stage string, err error) Token {
	c.metrics.encodeFailures.Add(1)
	c.logger.Error("fragment encode failed", "stage", stage, "error", err)
	return Empty
}

// Decode recovers a document from a token. It never fails outward:
// any token, including hand-mangled garbage, yields a document. The
// recovery ladder is
//
//   - Empty token: canonical empty document.
//   - Payload parses as a JSON object: current generation. The
//     "content" member is used if present and a string, otherwise
//     empty; "mode" is mapped through the wire names, defaulting to
//     edit when absent or unrecognized.
//   - Payload is valid UTF-8 but not a JSON object (parse failure,
//     non-object value, or null): legacy generation. The whole text
//     is the content, mode edit.
//   - base64, gzip, size guard, or UTF-8 failure: malformed. The
//     canonical empty document is returned and the failure logged.
func (c *Codec) Decode(token Token) document.Document {
	c.metrics.decodes.Add(1)
	if token == Empty {
		return document.Empty()
	}

	compressed, err := decodeBase64(string(token))
	if err != nil {
		return c.malformed("base64", err)
	}

	reader, err := gzip.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return c.malformed("gzip", err)
	}
	payload, err := io.ReadAll(io.LimitReader(reader, maxDecodedBytes+1))
	if err != nil {
		return c.malformed("gzip", err)
	}
	if len(payload) > maxDecodedBytes {
		return c.malformed("gzip", errTooLarge)
	}

	if !utf8.Valid(payload) {
		return c.malformed("utf8", errNotUTF8)
	}

	var parsed map[string]any
	if err := json.Unmarshal(payload, &parsed); err != nil || parsed == nil {
		// Legacy generation: the payload is the document text itself.
		// JSON null lands here too (Unmarshal accepts it into a map,
		// leaving it nil), as does any non-object JSON value.
		c.metrics.legacy.Add(1)
		c.logger.Debug("decoded legacy fragment", "bytes", len(payload))
		return document.Document{Content: string(payload), Mode: document.ModeEdit}
	}

	content, _ := parsed["content"].(string)
	modeName, _ := parsed["mode"].(string)
	mode, recognized := document.ModeFromWire(modeName)
	if !recognized && modeName != "" {
		c.logger.Debug("unrecognized fragment mode", "mode", modeName)
	}
	return document.Document{Content: content, Mode: mode}
}

// decodeBase64 tries each accepted base64 variant in order and
// returns the first successful decode.
func decodeBase64(token string) ([]byte, error) {
	var lastErr error
	for _, variant := range base64Variants {
		decoded, err := variant.DecodeString(token)
		if err == nil {
			return decoded, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

func (c *Codec) malformed(stage string, err error) document.Document {
	c.metrics.malformed.Add(1)
	c.logger.Warn("malformed fragment token", "stage", stage, "error", err)
	return document.Empty()
}

// Metrics returns a point-in-time copy of the codec's counters.
func (c *Codec) Metrics() MetricsSnapshot {
	return c.metrics.Snapshot()
}
