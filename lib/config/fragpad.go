// Copyright 2026 The Fragpad Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads fragpad configuration from a single YAML file
// specified by the FRAGPAD_CONFIG environment variable or the
// --config flag. There are no fallbacks or automatic discovery;
// running without a config file uses the built-in defaults, which is
// the common case.
//
// The only expansion performed is ${HOME} and similar environment
// variables inside path values, for portability of shared config
// files.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/invopop/jsonschema"
	"gopkg.in/yaml.v3"

	"github.com/fragpad/fragpad/lib/document"
)

// EnvVar names the environment variable holding the config file path.
const EnvVar = "FRAGPAD_CONFIG"

// Config is the fragpad configuration.
type Config struct {
	// BaseURL is the origin and path share links are published
	// under. The token goes after "#".
	BaseURL string `yaml:"base_url" json:"base_url"`

	// DefaultMode is the document mode for new documents: "edit",
	// "split", or "preview".
	DefaultMode string `yaml:"default_mode" json:"default_mode"`

	// DebounceWindow is the quiet period between the last edit and
	// the URL publish, as a Go duration string ("500ms", "1s").
	DebounceWindow string `yaml:"debounce_window" json:"debounce_window"`

	// LinkFile is where the current share URL is written for shell
	// tooling. Empty disables the link file.
	LinkFile string `yaml:"link_file" json:"link_file"`

	// ThemeFile is an optional JSONC theme overlay. Empty uses the
	// detected built-in palette.
	ThemeFile string `yaml:"theme_file" json:"theme_file"`

	// History configures the local snapshot store.
	History HistoryConfig `yaml:"history" json:"history"`

	// Transcription configures the audio transcription provider.
	Transcription TranscriptionConfig `yaml:"transcription" json:"transcription"`
}

// HistoryConfig configures the snapshot store.
type HistoryConfig struct {
	// Dir is the snapshot directory.
	Dir string `yaml:"dir" json:"dir"`

	// Keep is how many snapshots Prune retains. Zero disables
	// pruning.
	Keep int `yaml:"keep" json:"keep"`
}

// TranscriptionConfig configures the transcription client. The API
// key is never configured here — it lives in the encrypted credential
// store, keyed by Provider.
type TranscriptionConfig struct {
	// Provider names the credential-store entry holding the API key.
	Provider string `yaml:"provider" json:"provider"`

	// Endpoint is the API origin for OpenAI-compatible services.
	Endpoint string `yaml:"endpoint" json:"endpoint"`

	// Model is the transcription model name.
	Model string `yaml:"model" json:"model"`

	// CredentialFile is the encrypted credential store path.
	CredentialFile string `yaml:"credential_file" json:"credential_file"`
}

// Default returns the built-in configuration. Fragpad runs fully
// functional with no config file at all; these are the values that
// make that work.
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	stateDir := filepath.Join(homeDir, ".local", "state", "fragpad")

	return &Config{
		BaseURL:        "https://fragpad.dev/",
		DefaultMode:    "edit",
		DebounceWindow: "500ms",
		LinkFile:       filepath.Join(stateDir, "link"),
		ThemeFile:      "",
		History: HistoryConfig{
			Dir:  filepath.Join(stateDir, "history"),
			Keep: 100,
		},
		Transcription: TranscriptionConfig{
			Provider:       "openai",
			Endpoint:       "https://api.openai.com",
			Model:          "whisper-1",
			CredentialFile: filepath.Join(stateDir, "credentials.age"),
		},
	}
}

// Load resolves the config: the explicit path if non-empty, else
// FRAGPAD_CONFIG, else defaults with no file read. The file merges
// over defaults, so partial configs are fine.
func Load(explicitPath string) (*Config, error) {
	path := explicitPath
	if path == "" {
		path = os.Getenv(EnvVar)
	}

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}

	cfg.expandVariables()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every field and reports all problems at once.
func (c *Config) Validate() error {
	var errs []error

	if c.BaseURL == "" {
		errs = append(errs, fmt.Errorf("base_url must not be empty"))
	}
	if _, ok := document.ParseMode(c.DefaultMode); !ok {
		errs = append(errs, fmt.Errorf("default_mode %q: must be edit, split, or preview", c.DefaultMode))
	}
	if window, err := time.ParseDuration(c.DebounceWindow); err != nil {
		errs = append(errs, fmt.Errorf("debounce_window %q: %w", c.DebounceWindow, err))
	} else if window <= 0 || window > 30*time.Second {
		errs = append(errs, fmt.Errorf("debounce_window %q: must be between 0 and 30s", c.DebounceWindow))
	}
	if c.History.Keep < 0 {
		errs = append(errs, fmt.Errorf("history.keep must not be negative"))
	}
	if c.History.Dir == "" {
		errs = append(errs, fmt.Errorf("history.dir must not be empty"))
	}

	return errors.Join(errs...)
}

// Mode returns the parsed default mode. Call Validate first; an
// unparseable value falls back to edit.
func (c *Config) Mode() document.Mode {
	mode, _ := document.ParseMode(c.DefaultMode)
	return mode
}

// Window returns the parsed debounce window. Call Validate first; an
// unparseable value falls back to 500ms.
func (c *Config) Window() time.Duration {
	window, err := time.ParseDuration(c.DebounceWindow)
	if err != nil || window <= 0 {
		return 500 * time.Millisecond
	}
	return window
}

// variablePattern matches ${VAR} references in path values.
var variablePattern = regexp.MustCompile(`\$\{(\w+)\}`)

// expandVariables substitutes ${VAR} environment references in path
// fields. Unset variables expand to empty, same as the shell.
func (c *Config) expandVariables() {
	expand := func(value string) string {
		return variablePattern.ReplaceAllStringFunc(value, func(match string) string {
			return os.Getenv(match[2 : len(match)-1])
		})
	}
	c.LinkFile = expand(c.LinkFile)
	c.ThemeFile = expand(c.ThemeFile)
	c.History.Dir = expand(c.History.Dir)
	c.Transcription.CredentialFile = expand(c.Transcription.CredentialFile)
}

// Schema returns the JSON schema for the config file, for
// yaml-language-server users who want completion and validation in
// their editor.
func Schema() ([]byte, error) {
	reflector := jsonschema.Reflector{
		ExpandedStruct: true,
		DoNotReference: true,
	}
	schema := reflector.Reflect(&Config{})
	schema.Title = "fragpad configuration"

	encoded, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding config schema: %w", err)
	}
	return encoded, nil
}
