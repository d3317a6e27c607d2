// Copyright 2026 The Fragpad Authors
// SPDX-License-Identifier: Apache-2.0

// Package history stores local document snapshots. The share URL is
// the primary persistence mechanism — a document is always
// recoverable from its link — but a local trail of explicit saves
// lets the user recall earlier states without hunting through shell
// history for old URLs.
//
// Snapshots are content-addressed: the file name is the BLAKE3-256
// digest of the content, so saving identical content twice stores one
// file. Each file is a CBOR envelope holding the document metadata
// and the content compressed under a tagged algorithm.
package history

import (
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/zeebo/blake3"

	"github.com/fragpad/fragpad/lib/clock"
	"github.com/fragpad/fragpad/lib/document"
)

// snapshotExtension names snapshot files: <blake3-hex>.snap.
const snapshotExtension = ".snap"

// envelopeFormat is the snapshot file format version. Bumped only for
// incompatible envelope changes; unknown versions are skipped on
// List, not errors.
const envelopeFormat = 1

// ErrNotFound reports a Load of a hash with no snapshot file.
var ErrNotFound = errors.New("snapshot not found")

// envelope is the CBOR shape of a snapshot file.
type envelope struct {
	Format      int       `cbor:"format"`
	SavedAt     time.Time `cbor:"saved_at"`
	Mode        string    `cbor:"mode"`
	Title       string    `cbor:"title"`
	Compression string    `cbor:"compression"`
	RawSize     int       `cbor:"raw_size"`
	Payload     []byte    `cbor:"payload"`
}

// encMode is the CBOR encoder configured with Core Deterministic
// Encoding: the same snapshot always produces identical bytes, so
// content-addressed dedupe stays honest across re-encodes.
var encMode cbor.EncMode

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("history: CBOR encoder initialization failed: " + err.Error())
	}
}

// Entry describes one stored snapshot. Hash is the hex BLAKE3-256
// digest of the content, which is also the load key.
type Entry struct {
	Hash    string
	SavedAt time.Time
	Mode    document.Mode
	Title   string
	RawSize int
}

// Store is a snapshot directory. Methods are safe for concurrent use
// only to the extent the filesystem makes them so; the editor calls
// them from a single goroutine.
type Store struct {
	dir    string
	clk    clock.Clock
	logger *slog.Logger
}

// NewStore opens (creating if needed) the snapshot directory. A nil
// clock uses the real clock; a nil logger discards records.
func NewStore(dir string, clk clock.Clock, logger *slog.Logger) (*Store, error) {
	if clk == nil {
		clk = clock.Real()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("creating snapshot directory: %w", err)
	}
	return &Store{dir: dir, clk: clk, logger: logger}, nil
}

// Save stores a snapshot of doc and returns its entry. Saving content
// that is already stored returns the existing entry unchanged — the
// original save time is the interesting one. Empty documents are not
// worth a snapshot and return an error.
func (s *Store) Save(doc document.Document) (Entry, error) {
	if doc.Content == "" {
		return Entry{}, fmt.Errorf("refusing to snapshot an empty document")
	}

	raw := []byte(doc.Content)
	digest := blake3.Sum256(raw)
	hash := hex.EncodeToString(digest[:])

	path := s.path(hash)
	if existing, err := s.readEnvelope(path); err == nil {
		return entryFromEnvelope(hash, existing), nil
	}

	payload, tag := compress(raw)
	env := envelope{
		Format:      envelopeFormat,
		SavedAt:     s.clk.Now().UTC(),
		Mode:        doc.Mode.WireName(),
		Title:       doc.Title(),
		Compression: tag.String(),
		RawSize:     len(raw),
		Payload:     payload,
	}

	encoded, err := encMode.Marshal(env)
	if err != nil {
		return Entry{}, fmt.Errorf("encoding snapshot envelope: %w", err)
	}
	if err := writeFileAtomic(path, encoded); err != nil {
		return Entry{}, err
	}
	return entryFromEnvelope(hash, env), nil
}

// Load reconstructs the document stored under hash. Returns
// ErrNotFound (wrapped) when no snapshot file exists.
func (s *Store) Load(hash string) (document.Document, error) {
	env, err := s.readEnvelope(s.path(hash))
	if err != nil {
		if os.IsNotExist(err) {
			return document.Document{}, fmt.Errorf("snapshot %s: %w", hash, ErrNotFound)
		}
		return document.Document{}, err
	}

	if env.Format != envelopeFormat {
		return document.Document{}, fmt.Errorf("snapshot %s: unknown envelope format %d", hash, env.Format)
	}

	tag, err := parseTag(env.Compression)
	if err != nil {
		return document.Document{}, fmt.Errorf("snapshot %s: %w", hash, err)
	}
	raw, err := decompress(env.Payload, tag, env.RawSize)
	if err != nil {
		return document.Document{}, fmt.Errorf("snapshot %s: %w", hash, err)
	}

	// Verify the content still matches its address. A mismatch means
	// disk corruption the decompressor happened not to notice.
	digest := blake3.Sum256(raw)
	if hex.EncodeToString(digest[:]) != hash {
		return document.Document{}, fmt.Errorf("snapshot %s: content digest mismatch", hash)
	}

	mode, _ := document.ModeFromWire(env.Mode)
	return document.Document{Content: string(raw), Mode: mode}, nil
}

// List returns all snapshots, newest first. Corrupt or foreign files
// in the directory are skipped with a warning, never fatal: one bad
// snapshot must not take down the history picker.
func (s *Store) List() []Entry {
	dirEntries, err := os.ReadDir(s.dir)
	if err != nil {
		s.logger.Warn("reading snapshot directory failed", "dir", s.dir, "error", err)
		return nil
	}

	var entries []Entry
	for _, dirEntry := range dirEntries {
		name := dirEntry.Name()
		if dirEntry.IsDir() || !strings.HasSuffix(name, snapshotExtension) {
			continue
		}
		hash := strings.TrimSuffix(name, snapshotExtension)
		env, err := s.readEnvelope(filepath.Join(s.dir, name))
		if err != nil {
			s.logger.Warn("skipping unreadable snapshot", "file", name, "error", err)
			continue
		}
		if env.Format != envelopeFormat {
			s.logger.Warn("skipping snapshot with unknown format",
				"file", name, "format", env.Format)
			continue
		}
		entries = append(entries, entryFromEnvelope(hash, env))
	}

	slices.SortFunc(entries, func(a, b Entry) int {
		return b.SavedAt.Compare(a.SavedAt)
	})
	return entries
}

// Prune deletes all but the keep newest snapshots. keep <= 0 prunes
// nothing (a misconfigured zero must not wipe the history).
func (s *Store) Prune(keep int) error {
	if keep <= 0 {
		return nil
	}
	entries := s.List()
	if len(entries) <= keep {
		return nil
	}
	var errs []error
	for _, entry := range entries[keep:] {
		if err := os.Remove(s.path(entry.Hash)); err != nil {
			errs = append(errs, fmt.Errorf("pruning snapshot %s: %w", entry.Hash, err))
		}
	}
	return errors.Join(errs...)
}

func (s *Store) path(hash string) string {
	return filepath.Join(s.dir, hash+snapshotExtension)
}

func (s *Store) readEnvelope(path string) (envelope, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return envelope{}, err
	}
	var env envelope
	if err := cbor.Unmarshal(data, &env); err != nil {
		return envelope{}, fmt.Errorf("decoding snapshot envelope: %w", err)
	}
	return env, nil
}

func entryFromEnvelope(hash string, env envelope) Entry {
	mode, _ := document.ModeFromWire(env.Mode)
	return Entry{
		Hash:    hash,
		SavedAt: env.SavedAt,
		Mode:    mode,
		Title:   env.Title,
		RawSize: env.RawSize,
	}
}

// writeFileAtomic writes data through a same-directory temp file and
// rename, so a crash mid-save never leaves a truncated snapshot under
// a valid content address.
func writeFileAtomic(path string, data []byte) error {
	temporaryPath := path + ".tmp"
	file, err := os.OpenFile(temporaryPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("creating temporary snapshot file: %w", err)
	}
	if _, err := file.Write(data); err != nil {
		file.Close()
		os.Remove(temporaryPath)
		return fmt.Errorf("writing temporary snapshot file: %w", err)
	}
	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(temporaryPath)
		return fmt.Errorf("syncing temporary snapshot file: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(temporaryPath)
		return fmt.Errorf("closing temporary snapshot file: %w", err)
	}
	if err := os.Rename(temporaryPath, path); err != nil {
		os.Remove(temporaryPath)
		return fmt.Errorf("renaming snapshot into place: %w", err)
	}
	return nil
}
