// Copyright 2026 The Fragpad Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/fragpad/fragpad/lib/budget"
	"github.com/fragpad/fragpad/lib/config"
	"github.com/fragpad/fragpad/lib/document"
	"github.com/fragpad/fragpad/lib/fragment"
	"github.com/fragpad/fragpad/lib/shareurl"
	"github.com/fragpad/fragpad/lib/transcribe"
)

// runPrintLink encodes stdin into a share URL on stdout. The budget
// is advisory here: an oversized document still prints its URL (the
// caller may have a longer ceiling in mind), with a warning on
// stderr.
func runPrintLink(cfg *config.Config, opts options, logger *slog.Logger) error {
	content, err := io.ReadAll(os.Stdin)
	if err != nil {
		return fmt.Errorf("reading stdin: %w", err)
	}

	doc := document.Document{Content: string(content), Mode: cfg.Mode()}
	doc, err = overrideMode(doc, opts.mode)
	if err != nil {
		return err
	}

	link, err := shareurl.Parse(cfg.BaseURL)
	if err != nil {
		return err
	}

	token := fragment.New(logger).Encode(doc)
	snapshot := budget.Assess(token, link.PrefixLength())
	if snapshot.Exceeded() {
		fmt.Fprintf(os.Stderr, "warning: URL uses %d of %d characters; some contexts will truncate it\n",
			snapshot.UsedChars, snapshot.Ceiling)
	}

	fmt.Println(link.URL(token))
	return nil
}

// runDecode prints a link's document content to stdout and its mode
// to stderr, so piping the content stays clean.
func runDecode(arg string, logger *slog.Logger) error {
	doc := fragment.New(logger).Decode(shareurl.TokenFromArg(arg))
	fmt.Fprintf(os.Stderr, "mode: %s\n", doc.Mode)
	fmt.Print(doc.Content)
	if doc.Content != "" && doc.Content[len(doc.Content)-1] != '\n' {
		fmt.Println()
	}
	return nil
}

// runTranscribe appends voice-memo transcriptions to the opened
// document without entering the editor, publishes the result, and
// prints the new URL.
func runTranscribe(cfg *config.Config, opts options, logger *slog.Logger) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	provider, err := headlessTranscriber(cfg, logger)
	if err != nil {
		return err
	}

	link, err := shareurl.Parse(cfg.BaseURL)
	if err != nil {
		return err
	}
	codec := fragment.New(logger)

	carrier, err := resolveCarrier(cfg, opts, link)
	if err != nil {
		return err
	}
	doc, err := initialDocument(cfg, opts, codec, carrier)
	if err != nil {
		return err
	}

	inputs := make([]transcribe.Input, 0, len(opts.transcribe))
	var files []*os.File
	defer func() {
		for _, file := range files {
			file.Close()
		}
	}()
	for _, path := range opts.transcribe {
		file, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("opening audio file: %w", err)
		}
		files = append(files, file)
		inputs = append(inputs, transcribe.Input{Audio: file, Filename: path})
	}

	updated, err := transcribe.Append(ctx, provider, doc, inputs...)
	if err != nil {
		return err
	}

	token := codec.Encode(updated)
	snapshot := budget.Assess(token, link.PrefixLength())
	if snapshot.Exceeded() {
		fmt.Fprintf(os.Stderr, "warning: URL uses %d of %d characters; some contexts will truncate it\n",
			snapshot.UsedChars, snapshot.Ceiling)
	}
	if err := carrier.WriteFragment(token); err != nil {
		logger.Warn("writing link file failed", "error", err)
	}

	fmt.Println(link.URL(token))
	return nil
}
