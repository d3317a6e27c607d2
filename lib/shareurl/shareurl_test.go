// Copyright 2026 The Fragpad Authors
// SPDX-License-Identifier: Apache-2.0

package shareurl

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fragpad/fragpad/lib/fragment"
)

func TestParseValid(t *testing.T) {
	for _, base := range []string{
		"https://fragpad.dev/",
		"http://localhost:8080/pad",
		"https://notes.example.com/p/?v=2",
	} {
		link, err := Parse(base)
		if err != nil {
			t.Errorf("Parse(%q) failed: %v", base, err)
		}
		if link.Base != base {
			t.Errorf("Parse(%q).Base = %q", base, link.Base)
		}
	}
}

func TestParseInvalid(t *testing.T) {
	tests := []struct {
		name string
		base string
	}{
		{"empty", ""},
		{"no scheme", "fragpad.dev/"},
		{"wrong scheme", "ftp://fragpad.dev/"},
		{"no host", "https:///pad"},
		{"carries fragment", "https://fragpad.dev/#stale"},
		{"control character", "https://frag\x00pad.dev/"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if _, err := Parse(test.base); err == nil {
				t.Errorf("Parse(%q) should fail", test.base)
			}
		})
	}
}

func TestURLComposition(t *testing.T) {
	link := Link{Base: "https://fragpad.dev/"}
	if got := link.URL("abc123"); got != "https://fragpad.dev/#abc123" {
		t.Errorf("URL(token) = %q", got)
	}
	if got := link.URL(fragment.Empty); got != "https://fragpad.dev/" {
		t.Errorf("URL(empty) = %q, want bare base", got)
	}
}

func TestPrefixLength(t *testing.T) {
	link := Link{Base: "https://fragpad.dev/"}
	if got := link.PrefixLength(); got != 20 {
		t.Errorf("PrefixLength = %d, want 20", got)
	}
}

func TestTokenFromArg(t *testing.T) {
	tests := []struct {
		name string
		arg  string
		want fragment.Token
	}{
		{"bare token", "H4sIAAAAtoken", "H4sIAAAAtoken"},
		{"hash prefixed", "#H4sIAAAAtoken", "H4sIAAAAtoken"},
		{"full url", "https://fragpad.dev/#H4sIAAAAtoken", "H4sIAAAAtoken"},
		{"url without fragment", "https://fragpad.dev/", ""},
		{"percent escaped plus", "https://fragpad.dev/#abc%2Bdef", "abc+def"},
		{"empty", "", ""},
		{"padded legacy token", "#SGVsbG8=", "SGVsbG8="},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := TokenFromArg(test.arg); got != test.want {
				t.Errorf("TokenFromArg(%q) = %q, want %q", test.arg, got, test.want)
			}
		})
	}
}

func TestMemoryCarrier(t *testing.T) {
	var memory Memory
	token, err := memory.ReadFragment()
	if err != nil || token != fragment.Empty {
		t.Fatalf("fresh Memory = %q, %v, want empty token", token, err)
	}
	if err := memory.WriteFragment("tok"); err != nil {
		t.Fatalf("WriteFragment: %v", err)
	}
	token, err = memory.ReadFragment()
	if err != nil || token != "tok" {
		t.Errorf("ReadFragment = %q, %v, want %q", token, err, "tok")
	}
}

func TestLinkFileRoundTrip(t *testing.T) {
	link := Link{Base: "https://fragpad.dev/"}
	path := filepath.Join(t.TempDir(), "link")
	carrier := &LinkFile{Path: path, Link: link}

	if err := carrier.WriteFragment("sometoken"); err != nil {
		t.Fatalf("WriteFragment: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if got := string(data); got != "https://fragpad.dev/#sometoken\n" {
		t.Errorf("file content = %q", got)
	}

	token, err := carrier.ReadFragment()
	if err != nil {
		t.Fatalf("ReadFragment: %v", err)
	}
	if token != "sometoken" {
		t.Errorf("ReadFragment = %q, want %q", token, "sometoken")
	}
}

func TestLinkFileMissingIsEmpty(t *testing.T) {
	carrier := &LinkFile{
		Path: filepath.Join(t.TempDir(), "never-written"),
		Link: Link{Base: "https://fragpad.dev/"},
	}
	token, err := carrier.ReadFragment()
	if err != nil {
		t.Fatalf("ReadFragment on missing file: %v", err)
	}
	if token != fragment.Empty {
		t.Errorf("ReadFragment = %q, want empty", token)
	}
}

func TestLinkFileEmptyToken(t *testing.T) {
	path := filepath.Join(t.TempDir(), "link")
	carrier := &LinkFile{Path: path, Link: Link{Base: "https://fragpad.dev/"}}

	if err := carrier.WriteFragment(fragment.Empty); err != nil {
		t.Fatalf("WriteFragment(empty): %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if got := string(data); got != "https://fragpad.dev/\n" {
		t.Errorf("file content = %q, want bare base", got)
	}
}

func TestLinkFileOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "link")
	carrier := &LinkFile{Path: path, Link: Link{Base: "https://fragpad.dev/"}}

	for _, token := range []fragment.Token{"first", "second", "third"} {
		if err := carrier.WriteFragment(token); err != nil {
			t.Fatalf("WriteFragment(%q): %v", token, err)
		}
	}
	token, err := carrier.ReadFragment()
	if err != nil {
		t.Fatalf("ReadFragment: %v", err)
	}
	if token != "third" {
		t.Errorf("ReadFragment = %q, want the latest write", token)
	}

	// No temporary debris left behind.
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".tmp") {
			t.Errorf("leftover temporary file %s", entry.Name())
		}
	}
}
