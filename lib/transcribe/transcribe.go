// Copyright 2026 The Fragpad Authors
// SPDX-License-Identifier: Apache-2.0

// Package transcribe turns audio files into text through a hosted
// transcription API and appends the result to a document. Voice
// capture is out of scope: the input is always an audio file the user
// already has.
package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/fragpad/fragpad/lib/document"
)

// Provider transcribes one audio stream to text.
type Provider interface {
	// Name identifies the provider in logs and error messages.
	Name() string

	// Transcribe reads the audio stream and returns the recognized
	// text. The filename's extension tells the service the container
	// format (wav, mp3, m4a, ...).
	Transcribe(ctx context.Context, audio io.Reader, filename string) (string, error)
}

// maxResponseBytes bounds how much of an API response is read. A
// transcription response is text the size of the spoken audio; 8 MiB
// is far beyond any real transcript and keeps a misbehaving endpoint
// from exhausting memory.
const maxResponseBytes = 8 << 20

// errorSnippetBytes is how much of an error response body is quoted
// in the returned error.
const errorSnippetBytes = 300

// ClientConfig wires a Client. Zero fields get working defaults
// except APIKey, which is required.
type ClientConfig struct {
	// BaseURL is the API origin, e.g. "https://api.openai.com".
	BaseURL string

	// Model is the transcription model name. Default "whisper-1".
	Model string

	// APIKey is the bearer token. Required.
	APIKey string

	// RequestsPerMinute throttles outgoing requests. Hosted
	// transcription endpoints rate-limit aggressively and a batch of
	// voice memos can hit the cap in one Append. Default 30.
	RequestsPerMinute int

	// HTTPClient overrides the default client (30 + audio-upload
	// timeout headroom).
	HTTPClient *http.Client

	Logger *slog.Logger
}

// Client is an OpenAI-compatible transcription provider: multipart
// POST to /v1/audio/transcriptions with bearer auth. Safe for
// concurrent use.
type Client struct {
	baseURL string
	model   string
	apiKey  string
	client  *http.Client
	limiter *rate.Limiter
	logger  *slog.Logger
}

// NewClient validates the config and builds a client.
func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("transcription API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com"
	}
	if cfg.Model == "" {
		cfg.Model = "whisper-1"
	}
	if cfg.RequestsPerMinute <= 0 {
		cfg.RequestsPerMinute = 30
	}
	if cfg.HTTPClient == nil {
		// Uploads of multi-minute audio over slow links take a
		// while; the timeout covers the whole request including the
		// server-side transcription time.
		cfg.HTTPClient = &http.Client{Timeout: 5 * time.Minute}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		model:   cfg.Model,
		apiKey:  cfg.APIKey,
		client:  cfg.HTTPClient,
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RequestsPerMinute)), cfg.RequestsPerMinute),
		logger:  cfg.Logger,
	}, nil
}

// Name identifies the client by its endpoint host.
func (c *Client) Name() string {
	return "openai-compatible (" + c.baseURL + ")"
}

// transcriptionResponse is the API's success shape. Extra fields
// (duration, segments) are ignored.
type transcriptionResponse struct {
	Text string `json:"text"`
}

// Transcribe uploads the audio and returns the recognized text.
func (c *Client) Transcribe(ctx context.Context, audio io.Reader, filename string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("waiting for rate limiter: %w", err)
	}

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	part, err := form.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("building upload form: %w", err)
	}
	if _, err := io.Copy(part, audio); err != nil {
		return "", fmt.Errorf("reading audio: %w", err)
	}
	if err := form.WriteField("model", c.model); err != nil {
		return "", fmt.Errorf("building upload form: %w", err)
	}
	if err := form.Close(); err != nil {
		return "", fmt.Errorf("finalizing upload form: %w", err)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/audio/transcriptions", &body)
	if err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}
	request.Header.Set("Authorization", "Bearer "+c.apiKey)
	request.Header.Set("Content-Type", form.FormDataContentType())

	started := time.Now()
	response, err := c.client.Do(request)
	if err != nil {
		return "", fmt.Errorf("transcription request: %w", err)
	}
	defer response.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(response.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("reading transcription response: %w", err)
	}

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		snippet := string(payload)
		if len(snippet) > errorSnippetBytes {
			snippet = snippet[:errorSnippetBytes] + "..."
		}
		return "", fmt.Errorf("transcription API returned %s: %s", response.Status, snippet)
	}

	var parsed transcriptionResponse
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return "", fmt.Errorf("decoding transcription response: %w", err)
	}

	c.logger.Debug("transcription complete",
		"file", filename,
		"chars", len(parsed.Text),
		"elapsed", time.Since(started),
	)
	return strings.TrimSpace(parsed.Text), nil
}

// Input is one audio stream for Append.
type Input struct {
	Audio    io.Reader
	Filename string
}

// Append transcribes every input concurrently and appends the results
// to the document in input order, each separated from the preceding
// text by a blank line. Any failure abandons the whole batch: a
// partial append would leave the user unsure which memos made it in.
// The document mode is preserved.
func Append(ctx context.Context, provider Provider, doc document.Document, inputs ...Input) (document.Document, error) {
	if len(inputs) == 0 {
		return doc, nil
	}

	texts := make([]string, len(inputs))
	group, groupCtx := errgroup.WithContext(ctx)
	for index, input := range inputs {
		group.Go(func() error {
			text, err := provider.Transcribe(groupCtx, input.Audio, input.Filename)
			if err != nil {
				return fmt.Errorf("transcribing %s: %w", input.Filename, err)
			}
			texts[index] = text
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return doc, err
	}

	var builder strings.Builder
	builder.WriteString(doc.Content)
	for _, text := range texts {
		if text == "" {
			continue
		}
		if builder.Len() > 0 {
			builder.WriteString("\n\n")
		}
		builder.WriteString(text)
	}
	doc.Content = builder.String()
	return doc, nil
}
