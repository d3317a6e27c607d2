// Copyright 2026 The Fragpad Authors
// SPDX-License-Identifier: Apache-2.0

package shareurl

import (
	"fmt"
	"os"
	"strings"

	"github.com/fragpad/fragpad/lib/fragment"
)

// LinkFile publishes the current share URL to a file so shell tooling
// can grab the live link (`cat ~/.local/state/fragpad/link`). The
// file always holds one full URL and a trailing newline.
//
// Writes are atomic: a temporary file in the same directory is
// written, synced, and renamed into place, so a concurrent reader
// never sees a torn URL.
type LinkFile struct {
	Path string
	Link Link
}

// ReadFragment extracts the token from the URL in the file. A missing
// file is an empty carrier, not an error: nothing has been published
// yet.
func (f *LinkFile) ReadFragment() (fragment.Token, error) {
	data, err := os.ReadFile(f.Path)
	if os.IsNotExist(err) {
		return fragment.Empty, nil
	}
	if err != nil {
		return fragment.Empty, fmt.Errorf("reading link file %s: %w", f.Path, err)
	}
	return TokenFromArg(strings.TrimSpace(string(data))), nil
}

// WriteFragment replaces the file content with the full URL for the
// token.
func (f *LinkFile) WriteFragment(token fragment.Token) error {
	data := []byte(f.Link.URL(token) + "\n")
	temporaryPath := f.Path + ".tmp"

	file, err := os.OpenFile(temporaryPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("creating temporary link file: %w", err)
	}
	if _, err := file.Write(data); err != nil {
		file.Close()
		os.Remove(temporaryPath)
		return fmt.Errorf("writing temporary link file: %w", err)
	}
	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(temporaryPath)
		return fmt.Errorf("syncing temporary link file: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(temporaryPath)
		return fmt.Errorf("closing temporary link file: %w", err)
	}
	if err := os.Rename(temporaryPath, f.Path); err != nil {
		os.Remove(temporaryPath)
		return fmt.Errorf("renaming link file into place: %w", err)
	}
	return nil
}
