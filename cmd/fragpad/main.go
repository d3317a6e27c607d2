// Copyright 2026 The Fragpad Authors
// SPDX-License-Identifier: Apache-2.0

// fragpad is a terminal markdown notepad whose document lives in a
// shareable URL. Every edit is debounced, compressed, and encoded
// into the URL fragment; anyone holding the link holds the document.
//
// The default invocation runs the interactive editor. Headless flags
// cover scripting: --print-link encodes stdin into a share URL,
// --decode inspects an existing link, --transcribe appends voice-memo
// transcriptions to the opened document without entering the editor.
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"

	"github.com/fragpad/fragpad/lib/config"
	"github.com/fragpad/fragpad/lib/document"
	"github.com/fragpad/fragpad/lib/editor"
	"github.com/fragpad/fragpad/lib/fragment"
	"github.com/fragpad/fragpad/lib/history"
	"github.com/fragpad/fragpad/lib/publisher"
	"github.com/fragpad/fragpad/lib/shareurl"
	"github.com/fragpad/fragpad/lib/theme"
	"github.com/fragpad/fragpad/lib/version"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// options holds the parsed command line.
type options struct {
	configPath   string
	configSchema bool
	printLink    bool
	decode       string
	mode         string
	open         string
	transcribe   []string
	setCred      string
	deleteCred   string
	listCreds    bool
	linkFile     string
	logOutput    string
	verbose      bool
}

func run() error {
	var opts options

	flagSet := pflag.NewFlagSet("fragpad", pflag.ContinueOnError)
	flagSet.StringVar(&opts.configPath, "config", "", "config file path (default: $"+config.EnvVar+", else built-in defaults)")
	flagSet.BoolVar(&opts.configSchema, "config-schema", false, "print the config file JSON schema and exit")
	flagSet.BoolVar(&opts.printLink, "print-link", false, "read markdown from stdin, print the share URL, exit")
	flagSet.StringVar(&opts.decode, "decode", "", "decode a share URL or token and print its content")
	flagSet.StringVar(&opts.mode, "mode", "", "document mode: edit, split, or preview")
	flagSet.StringVar(&opts.open, "open", "", "open an existing share URL or token")
	flagSet.StringArrayVar(&opts.transcribe, "transcribe", nil, "append the transcription of this audio file (repeatable)")
	flagSet.StringVar(&opts.setCred, "set-credential", "", "store an API key for the named provider and exit")
	flagSet.StringVar(&opts.deleteCred, "delete-credential", "", "remove the named provider's API key and exit")
	flagSet.BoolVar(&opts.listCreds, "list-credentials", false, "list stored credential providers and exit")
	flagSet.StringVar(&opts.linkFile, "link-file", "", "override the link file path (empty string in config disables)")
	flagSet.StringVar(&opts.logOutput, "log-output", "", "write JSON log records to this file (in addition to TUI display)")
	flagSet.BoolVarP(&opts.verbose, "verbose", "v", false, "debug-level logging")
	flagSet.BoolP("help", "h", false, "show help")

	// Handle --version before flag parsing so it works regardless of
	// other arguments.
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		version.Print("fragpad")
		return nil
	}

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			printHelp(flagSet)
			return nil
		}
		return err
	}
	if help, _ := flagSet.GetBool("help"); help {
		printHelp(flagSet)
		return nil
	}
	if args := flagSet.Args(); len(args) > 0 {
		return fmt.Errorf("unexpected argument: %s (use --open to load a link)", args[0])
	}

	if opts.configSchema {
		schema, err := config.Schema()
		if err != nil {
			return err
		}
		fmt.Println(string(schema))
		return nil
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	level := slog.LevelWarn
	if opts.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	switch {
	case opts.setCred != "":
		return runSetCredential(cfg, opts.setCred)
	case opts.deleteCred != "":
		return runDeleteCredential(cfg, opts.deleteCred)
	case opts.listCreds:
		return runListCredentials(cfg)
	case opts.printLink:
		return runPrintLink(cfg, opts, logger)
	case opts.decode != "":
		return runDecode(opts.decode, logger)
	case len(opts.transcribe) > 0:
		return runTranscribe(cfg, opts, logger)
	}
	return runEditor(cfg, opts, logger)
}

// runEditor is the interactive path: resolve the palette and initial
// document, start the publish pipeline, and hand the terminal to the
// TUI.
func runEditor(cfg *config.Config, opts options, logger *slog.Logger) error {
	palette, err := loadTheme(cfg, logger)
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

	store, err := history.NewStore(cfg.History.Dir, nil, logger)
	if err != nil {
		return err
	}

	transcriber := interactiveTranscriber(cfg, logger)

	// Log routing inside the TUI: Warn+ lands in the status bar;
	// --log-output additionally captures everything as JSONL.
	tuiHandler := editor.NewLogHandler(slog.LevelWarn)
	uiLogger := slog.New(tuiHandler)
	var fileCleanup func()
	if opts.logOutput != "" {
		fileHandler, cleanup, err := openFileLogHandler(opts.logOutput)
		if err != nil {
			return fmt.Errorf("cannot open log file %s: %w", opts.logOutput, err)
		}
		fileCleanup = cleanup
		uiLogger = slog.New(fanoutHandler{tuiHandler, fileHandler})
	}
	if fileCleanup != nil {
		defer fileCleanup()
	}

	notifier := editor.NewNotifier()
	pub := publisher.New(publisher.Config{
		Codec:  codec,
		Link:   link,
		Writer: carrier,
		Window: cfg.Window(),
		Notify: notifier.Notify,
		Logger: uiLogger,
	})
	defer pub.Stop()

	// Publish before the first frame so the link is live even if the
	// session ends immediately.
	pub.PublishNow(doc)

	model := editor.New(editor.Config{
		Document:    doc,
		Publisher:   pub,
		History:     store,
		HistoryKeep: cfg.History.Keep,
		Transcriber: transcriber,
		Theme:       palette,
		Logger:      uiLogger,
	})

	program := tea.NewProgram(model, tea.WithAltScreen())
	notifier.SetProgram(program)
	tuiHandler.SetProgram(program)

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("running editor: %w", err)
	}

	// The link outlives the session: print it so it is the last
	// thing on the restored screen.
	fmt.Println(pub.Last().URL)
	return nil
}

// loadTheme resolves the palette: the detected built-in base, with
// the configured theme file overlaid when present.
func loadTheme(cfg *config.Config, logger *slog.Logger) (theme.Theme, error) {
	base := theme.Detect()
	if cfg.ThemeFile == "" {
		return base, nil
	}
	loaded, err := theme.LoadFile(cfg.ThemeFile, base)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.Warn("theme file missing; using built-in palette", "path", cfg.ThemeFile)
			return base, nil
		}
		return theme.Theme{}, err
	}
	return loaded, nil
}

// resolveCarrier picks where published fragments go: the link file
// from the flag or config, or an in-memory carrier when disabled.
func resolveCarrier(cfg *config.Config, opts options, link shareurl.Link) (shareurl.FragmentWriter, error) {
	path := cfg.LinkFile
	if opts.linkFile != "" {
		path = opts.linkFile
	}
	if path == "" {
		return &shareurl.Memory{}, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("creating link file directory: %w", err)
	}
	return &shareurl.LinkFile{Path: path, Link: link}, nil
}

// initialDocument resolves what the editor opens: --open wins, then
// the link file's last published state, then an empty document in the
// configured default mode.
func initialDocument(cfg *config.Config, opts options, codec *fragment.Codec, carrier shareurl.FragmentWriter) (document.Document, error) {
	if opts.open != "" {
		doc := codec.Decode(shareurl.TokenFromArg(opts.open))
		return overrideMode(doc, opts.mode)
	}

	if reader, ok := carrier.(shareurl.FragmentReader); ok {
		token, err := reader.ReadFragment()
		if err != nil {
			return document.Document{}, err
		}
		if token != fragment.Empty {
			return overrideMode(codec.Decode(token), opts.mode)
		}
	}

	doc := document.Document{Mode: cfg.Mode()}
	return overrideMode(doc, opts.mode)
}

// overrideMode applies the --mode flag on top of whatever mode the
// document carried.
func overrideMode(doc document.Document, modeFlag string) (document.Document, error) {
	if modeFlag == "" {
		return doc, nil
	}
	mode, ok := document.ParseMode(modeFlag)
	if !ok {
		return document.Document{}, fmt.Errorf("unknown mode %q (want edit, split, or preview)", modeFlag)
	}
	doc.Mode = mode
	return doc, nil
}

func printHelp(flagSet *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, `fragpad — a markdown notepad that lives in a URL.

The document is the link: every edit is compressed and encoded into
the URL fragment, and opening that URL restores the document exactly.
Nothing is stored on any server.

Run with no flags to start the interactive editor. The current share
URL is continuously written to the link file (see --link-file and the
config) and printed on exit.

Usage:
  fragpad [flags]

Examples:
  fragpad                              start with an empty document
  fragpad --open 'https://…/#H4sI…'    open an existing link
  echo '# hi' | fragpad --print-link   encode stdin to a share URL
  fragpad --decode 'H4sI…'             print a link's content
  fragpad --transcribe memo.ogg        append a voice memo, print the URL
  fragpad --set-credential openai      store a transcription API key

Flags:
%s`, flagSet.FlagUsages())
}
