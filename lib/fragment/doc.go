// Copyright 2026 The Fragpad Authors
// SPDX-License-Identifier: Apache-2.0

// Package fragment implements the URL fragment codec: documents are
// serialized to a JSON record, gzip-compressed, and base64-encoded
// into a token that travels in the fragment portion of a share URL.
//
// The wire format is an external contract. Tokens already copied into
// chat logs and bookmarks must keep decoding forever, so the codec
// accepts two generations of token: the current JSON record form and
// the legacy form that compressed the raw document text with no
// record wrapper. Generation detection is structural (does the
// payload parse as a JSON object), not tagged; see Decode.
//
// Decoding never fails outward. A token that cannot be decoded at any
// stage yields the canonical empty document, the failure is logged,
// and a counter is bumped. A shared link must always open the editor,
// even when what it carries is garbage.
package fragment
