// Copyright 2026 The Fragpad Authors
// SPDX-License-Identifier: Apache-2.0

// Package shareurl carries encoded fragments in and out of URLs. The
// token travels after "#": servers never see it, and the document
// stays entirely client-side. This package owns the Base+"#"+token
// composition, token extraction from whatever form the user pastes,
// and the link file that exposes the current URL to shell tooling.
package shareurl

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/fragpad/fragpad/lib/fragment"
)

// Link is the URL prefix documents are published under.
type Link struct {
	// Base is the origin and path, e.g. "https://fragpad.dev/".
	Base string
}

// Parse validates a base URL. The scheme must be http or https and a
// host must be present; any fragment on the base is rejected (the
// fragment position belongs to the token).
func Parse(base string) (Link, error) {
	parsed, err := url.Parse(base)
	if err != nil {
		return Link{}, fmt.Errorf("parsing base URL %q: %w", base, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return Link{}, fmt.Errorf("base URL %q: scheme must be http or https", base)
	}
	if parsed.Host == "" {
		return Link{}, fmt.Errorf("base URL %q: missing host", base)
	}
	if parsed.Fragment != "" {
		return Link{}, fmt.Errorf("base URL %q: must not carry a fragment", base)
	}
	return Link{Base: base}, nil
}

// PrefixLength is the character count the base contributes to the
// URL budget. Base URLs are ASCII, so characters and bytes agree.
func (l Link) PrefixLength() int {
	return len(l.Base)
}

// URL composes the full share URL for a token. The empty token yields
// the bare base: a fresh document gets a clean URL.
func (l Link) URL(token fragment.Token) string {
	if token == fragment.Empty {
		return l.Base
	}
	return l.Base + "#" + string(token)
}

// TokenFromArg extracts a token from whatever the user pasted: a full
// share URL, a bare "#token", or the naked token itself. Percent
// escapes introduced by intermediate sharing (a "+" in a legacy token
// encoded as %2B) are undone. Extraction never fails; a string with
// no "#" is taken to be a bare token, and the codec decides whether
// it decodes.
func TokenFromArg(arg string) fragment.Token {
	// A full URL, fragment or not. Base64 never contains ":", so a
	// bare token can't be mistaken for a scheme.
	if parsed, err := url.Parse(arg); err == nil && parsed.Scheme != "" && parsed.Host != "" {
		return fragment.Token(parsed.Fragment)
	}
	hash := strings.Index(arg, "#")
	if hash < 0 {
		return fragment.Token(arg)
	}
	if parsed, err := url.Parse(arg); err == nil {
		return fragment.Token(parsed.Fragment)
	}
	return fragment.Token(arg[hash+1:])
}

// FragmentReader reads the currently published token from a carrier.
type FragmentReader interface {
	ReadFragment() (fragment.Token, error)
}

// FragmentWriter replaces the currently published token on a carrier.
type FragmentWriter interface {
	WriteFragment(fragment.Token) error
}

// Memory is an in-process carrier: the editor's address line, and
// tests. The zero value is ready to use. Not safe for concurrent use.
type Memory struct {
	token fragment.Token
}

// ReadFragment returns the held token.
func (m *Memory) ReadFragment() (fragment.Token, error) {
	return m.token, nil
}

// WriteFragment replaces the held token.
func (m *Memory) WriteFragment(token fragment.Token) error {
	m.token = token
	return nil
}
