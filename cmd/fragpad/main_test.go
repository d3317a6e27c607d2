// Copyright 2026 The Fragpad Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/fragpad/fragpad/lib/config"
	"github.com/fragpad/fragpad/lib/document"
	"github.com/fragpad/fragpad/lib/fragment"
	"github.com/fragpad/fragpad/lib/shareurl"
)

func TestOverrideMode(t *testing.T) {
	doc := document.Document{Content: "x", Mode: document.ModeEdit}

	unchanged, err := overrideMode(doc, "")
	if err != nil || unchanged.Mode != document.ModeEdit {
		t.Fatalf("empty flag: doc=%+v err=%v", unchanged, err)
	}

	split, err := overrideMode(doc, "split")
	if err != nil || split.Mode != document.ModeSplit {
		t.Fatalf("split flag: doc=%+v err=%v", split, err)
	}

	if _, err := overrideMode(doc, "bogus"); err == nil {
		t.Fatal("bogus mode accepted")
	}
}

func TestInitialDocumentFromOpenFlag(t *testing.T) {
	cfg := config.Default()
	codec := fragment.New(nil)
	token := codec.Encode(document.Document{Content: "# shared", Mode: document.ModePreview})

	doc, err := initialDocument(cfg, options{open: "https://fragpad.dev/#" + string(token)}, codec, &shareurl.Memory{})
	if err != nil {
		t.Fatalf("initialDocument: %v", err)
	}
	if doc.Content != "# shared" || doc.Mode != document.ModePreview {
		t.Fatalf("opened document = %+v", doc)
	}
}

func TestInitialDocumentFromLinkFile(t *testing.T) {
	cfg := config.Default()
	codec := fragment.New(nil)
	link, err := shareurl.Parse(cfg.BaseURL)
	if err != nil {
		t.Fatalf("parsing base URL: %v", err)
	}

	path := filepath.Join(t.TempDir(), "link")
	carrier := &shareurl.LinkFile{Path: path, Link: link}
	token := codec.Encode(document.Document{Content: "persisted", Mode: document.ModeSplit})
	if err := carrier.WriteFragment(token); err != nil {
		t.Fatalf("writing link file: %v", err)
	}

	doc, err := initialDocument(cfg, options{}, codec, carrier)
	if err != nil {
		t.Fatalf("initialDocument: %v", err)
	}
	if doc.Content != "persisted" || doc.Mode != document.ModeSplit {
		t.Fatalf("document from link file = %+v", doc)
	}
}

func TestInitialDocumentEmptyUsesConfigMode(t *testing.T) {
	cfg := config.Default()
	cfg.DefaultMode = "split"

	doc, err := initialDocument(cfg, options{}, fragment.New(nil), &shareurl.Memory{})
	if err != nil {
		t.Fatalf("initialDocument: %v", err)
	}
	if !doc.IsEmpty() || doc.Mode != document.ModeSplit {
		t.Fatalf("empty-start document = %+v", doc)
	}
}

func TestResolveCarrier(t *testing.T) {
	cfg := config.Default()
	link, _ := shareurl.Parse(cfg.BaseURL)

	cfg.LinkFile = ""
	carrier, err := resolveCarrier(cfg, options{}, link)
	if err != nil {
		t.Fatalf("resolveCarrier: %v", err)
	}
	if _, ok := carrier.(*shareurl.Memory); !ok {
		t.Fatalf("disabled link file produced %T, want Memory", carrier)
	}

	path := filepath.Join(t.TempDir(), "nested", "link")
	carrier, err = resolveCarrier(cfg, options{linkFile: path}, link)
	if err != nil {
		t.Fatalf("resolveCarrier with override: %v", err)
	}
	linkFile, ok := carrier.(*shareurl.LinkFile)
	if !ok || linkFile.Path != path {
		t.Fatalf("carrier = %#v, want LinkFile at %s", carrier, path)
	}
	if _, err := os.Stat(filepath.Dir(path)); err != nil {
		t.Fatalf("link file directory not created: %v", err)
	}
}
