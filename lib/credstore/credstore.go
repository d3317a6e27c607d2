// Copyright 2026 The Fragpad Authors
// SPDX-License-Identifier: Apache-2.0

// Package credstore stores transcription provider API keys in a
// single age-encrypted file. Encryption uses an scrypt passphrase
// recipient: there is no keypair to manage, the user's passphrase is
// the only secret. Plaintext keys exist only in memory; they are
// never written to disk or logged.
package credstore

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	"filippo.io/age"
)

// ErrWrongPassphrase reports that the file decrypted unsuccessfully
// because the passphrase did not match. Distinguished from corruption
// so the CLI can prompt again instead of telling the user their file
// is damaged.
var ErrWrongPassphrase = errors.New("wrong passphrase")

// ErrNotFound reports a Get or Delete of a provider with no stored
// key.
var ErrNotFound = errors.New("no credential stored for provider")

// Store is one encrypted credential file. The zero value is not
// usable; construct with Open.
type Store struct {
	path string
}

// Open returns a store backed by the file at path. The file need not
// exist yet — the first Set creates it.
func Open(path string) *Store {
	return &Store{path: path}
}

// Set stores (or replaces) the API key for a provider. The whole file
// is re-encrypted on every change; credential files hold a handful of
// short keys, so this costs nothing.
func (s *Store) Set(provider, key, passphrase string) error {
	if provider == "" {
		return fmt.Errorf("provider name must not be empty")
	}
	if key == "" {
		return fmt.Errorf("refusing to store an empty API key")
	}
	credentials, err := s.load(passphrase)
	if err != nil {
		return err
	}
	credentials[provider] = key
	return s.save(credentials, passphrase)
}

// Get returns the API key for a provider.
func (s *Store) Get(provider, passphrase string) (string, error) {
	credentials, err := s.load(passphrase)
	if err != nil {
		return "", err
	}
	key, ok := credentials[provider]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNotFound, provider)
	}
	return key, nil
}

// List returns the provider names with stored keys, sorted. Keys
// themselves are not returned.
func (s *Store) List(passphrase string) ([]string, error) {
	credentials, err := s.load(passphrase)
	if err != nil {
		return nil, err
	}
	providers := make([]string, 0, len(credentials))
	for provider := range credentials {
		providers = append(providers, provider)
	}
	slices.Sort(providers)
	return providers, nil
}

// Delete removes a provider's key.
func (s *Store) Delete(provider, passphrase string) error {
	credentials, err := s.load(passphrase)
	if err != nil {
		return err
	}
	if _, ok := credentials[provider]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, provider)
	}
	delete(credentials, provider)
	return s.save(credentials, passphrase)
}

// load decrypts the credential file into a provider→key map. A
// missing file is an empty store, not an error.
func (s *Store) load(passphrase string) (map[string]string, error) {
	ciphertext, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading credential file: %w", err)
	}

	identity, err := age.NewScryptIdentity(passphrase)
	if err != nil {
		return nil, fmt.Errorf("preparing passphrase identity: %w", err)
	}
	reader, err := age.Decrypt(bytes.NewReader(ciphertext), identity)
	if err != nil {
		var noMatch *age.NoIdentityMatchError
		if errors.As(err, &noMatch) {
			return nil, ErrWrongPassphrase
		}
		return nil, fmt.Errorf("credential file %s is corrupt: %w", s.path, err)
	}
	plaintext, err := io.ReadAll(reader)
	if err != nil {
		// age authenticates as it streams; a read failure here is a
		// tampered or truncated payload, not a passphrase problem.
		return nil, fmt.Errorf("credential file %s is corrupt: %w", s.path, err)
	}

	var credentials map[string]string
	if err := json.Unmarshal(plaintext, &credentials); err != nil {
		return nil, fmt.Errorf("credential file %s holds unexpected content: %w", s.path, err)
	}
	return credentials, nil
}

// save encrypts the map and writes it atomically with owner-only
// permissions.
func (s *Store) save(credentials map[string]string, passphrase string) error {
	plaintext, err := json.Marshal(credentials)
	if err != nil {
		return fmt.Errorf("encoding credentials: %w", err)
	}

	recipient, err := age.NewScryptRecipient(passphrase)
	if err != nil {
		return fmt.Errorf("preparing passphrase recipient: %w", err)
	}

	var ciphertext bytes.Buffer
	writer, err := age.Encrypt(&ciphertext, recipient)
	if err != nil {
		return fmt.Errorf("creating age encryptor: %w", err)
	}
	if _, err := writer.Write(plaintext); err != nil {
		return fmt.Errorf("encrypting credentials: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("finalizing encryption: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("creating credential directory: %w", err)
	}
	temporaryPath := s.path + ".tmp"
	if err := os.WriteFile(temporaryPath, ciphertext.Bytes(), 0600); err != nil {
		return fmt.Errorf("writing credential file: %w", err)
	}
	if err := os.Rename(temporaryPath, s.path); err != nil {
		os.Remove(temporaryPath)
		return fmt.Errorf("renaming credential file into place: %w", err)
	}
	return nil
}
