// Copyright 2026 The Fragpad Authors
// SPDX-License-Identifier: Apache-2.0

// Package document defines the core document model: the text being
// edited, the view mode it should open in, and derived metadata such
// as line/word counts, YAML front matter, and a display title.
//
// A Document is a plain value. It carries no behavior beyond pure
// derivations; encoding, persistence, and rendering live elsewhere.
// The zero value is the canonical empty document: no content, edit
// mode. Every failure path in the system that must still produce a
// document produces this value, so "empty" is well-defined everywhere.
package document
