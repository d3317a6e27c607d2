// Copyright 2026 The Fragpad Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/fragpad/fragpad/lib/config"
	"github.com/fragpad/fragpad/lib/credstore"
	"github.com/fragpad/fragpad/lib/transcribe"
)

// passphraseEnvVar lets scripts supply the credential-store
// passphrase without a terminal. Interactive use should prefer the
// prompt: environment variables leak into process listings and shell
// history.
const passphraseEnvVar = "FRAGPAD_PASSPHRASE"

// readSecret prompts on stderr and reads a line from the terminal
// with echo off.
func readSecret(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	secret, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading secret input: %w", err)
	}
	return strings.TrimSpace(string(secret)), nil
}

// resolvePassphrase returns the store passphrase from the
// environment or, failing that, a terminal prompt.
func resolvePassphrase() (string, error) {
	if passphrase := os.Getenv(passphraseEnvVar); passphrase != "" {
		return passphrase, nil
	}
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return "", fmt.Errorf("no terminal for the passphrase prompt; set %s", passphraseEnvVar)
	}
	passphrase, err := readSecret("credential store passphrase: ")
	if err != nil {
		return "", err
	}
	if passphrase == "" {
		return "", fmt.Errorf("passphrase must not be empty")
	}
	return passphrase, nil
}

func runSetCredential(cfg *config.Config, provider string) error {
	passphrase, err := resolvePassphrase()
	if err != nil {
		return err
	}
	key, err := readSecret("API key for " + provider + ": ")
	if err != nil {
		return err
	}
	if key == "" {
		return fmt.Errorf("API key must not be empty")
	}

	store := credstore.Open(cfg.Transcription.CredentialFile)
	if err := store.Set(provider, key, passphrase); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "stored credential for %s\n", provider)
	return nil
}

func runDeleteCredential(cfg *config.Config, provider string) error {
	passphrase, err := resolvePassphrase()
	if err != nil {
		return err
	}
	store := credstore.Open(cfg.Transcription.CredentialFile)
	if err := store.Delete(provider, passphrase); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "deleted credential for %s\n", provider)
	return nil
}

func runListCredentials(cfg *config.Config) error {
	passphrase, err := resolvePassphrase()
	if err != nil {
		return err
	}
	store := credstore.Open(cfg.Transcription.CredentialFile)
	providers, err := store.List(passphrase)
	if err != nil {
		return err
	}
	if len(providers) == 0 {
		fmt.Fprintln(os.Stderr, "no credentials stored")
		return nil
	}
	for _, provider := range providers {
		fmt.Println(provider)
	}
	return nil
}

// loadAPIKey fetches the configured provider's key from the
// credential store.
func loadAPIKey(cfg *config.Config) (string, error) {
	passphrase, err := resolvePassphrase()
	if err != nil {
		return "", err
	}
	store := credstore.Open(cfg.Transcription.CredentialFile)
	key, err := store.Get(cfg.Transcription.Provider, passphrase)
	if err != nil {
		if errors.Is(err, credstore.ErrNotFound) {
			return "", fmt.Errorf("no credential stored for %q; run fragpad --set-credential %s",
				cfg.Transcription.Provider, cfg.Transcription.Provider)
		}
		return "", err
	}
	return key, nil
}

// headlessTranscriber builds the transcription client for --transcribe,
// where a missing credential is a hard error.
func headlessTranscriber(cfg *config.Config, logger *slog.Logger) (transcribe.Provider, error) {
	key, err := loadAPIKey(cfg)
	if err != nil {
		return nil, err
	}
	return transcribe.NewClient(transcribe.ClientConfig{
		BaseURL: cfg.Transcription.Endpoint,
		Model:   cfg.Transcription.Model,
		APIKey:  key,
		Logger:  logger,
	})
}

// interactiveTranscriber builds the transcription client for the
// editor session, or nil when transcription is not set up. The
// passphrase prompt happens here, before the TUI takes the terminal;
// a wrong passphrase degrades to an editor without transcription
// rather than refusing to start.
func interactiveTranscriber(cfg *config.Config, logger *slog.Logger) transcribe.Provider {
	if _, err := os.Stat(cfg.Transcription.CredentialFile); err != nil {
		return nil
	}
	key, err := loadAPIKey(cfg)
	if err != nil {
		logger.Warn("transcription unavailable", "error", err)
		return nil
	}
	client, err := transcribe.NewClient(transcribe.ClientConfig{
		BaseURL: cfg.Transcription.Endpoint,
		Model:   cfg.Transcription.Model,
		APIKey:  key,
		Logger:  logger,
	})
	if err != nil {
		logger.Warn("transcription unavailable", "error", err)
		return nil
	}
	return client
}
