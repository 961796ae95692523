package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/metcalfc/glossr/internal/config"
	"github.com/metcalfc/glossr/internal/identity"
	"github.com/metcalfc/glossr/internal/logging"
	"github.com/metcalfc/glossr/internal/lookup"
	"github.com/metcalfc/glossr/internal/reader"
	"github.com/metcalfc/glossr/internal/state"
	"github.com/metcalfc/glossr/internal/store"
	"github.com/metcalfc/glossr/internal/vocab"
)

// Version info (injected via ldflags)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

type options struct {
	configPath  string
	initConfig  bool
	fresh       bool
	exportPath  string
	user        string
	showVersion bool
}

func parseFlags(name, summary string) options {
	var o options
	flag.BoolVar(&o.showVersion, "v", false, "Show version information")
	flag.BoolVar(&o.showVersion, "version", false, "Show version information")
	flag.StringVar(&o.configPath, "config", "", "Config file (default: $XDG_CONFIG_HOME/glossr/config.toml)")
	flag.BoolVar(&o.initConfig, "init-config", false, "Write a default config file and exit")
	flag.BoolVar(&o.fresh, "fresh", false, "Start from the beginning, ignoring saved positions")
	flag.StringVar(&o.exportPath, "export", "", "Export the word bank to a CSV file and exit")
	flag.StringVar(&o.user, "user", "", "Email to pre-fill on the sign in screen")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s\n\n", summary)
		fmt.Fprintf(os.Stderr, "Usage:\n")
		fmt.Fprintf(os.Stderr, "  %s [options] [file]\n\n", name)
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nSupported formats: %s\n", strings.Join(reader.SupportedFormats(), ", "))
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s novela.epub             Read a book\n", name)
		fmt.Fprintf(os.Stderr, "  curl -s URL | %s           Read from stdin\n", name)
		fmt.Fprintf(os.Stderr, "  %s -export words.csv       Export your word bank\n", name)
		fmt.Fprintf(os.Stderr, "\nSelect text with the mouse to translate it.\n")
	}
	flag.Parse()
	return o
}

// session holds the services shared by both front ends.
type session struct {
	cfg      *config.Config
	log      *slog.Logger
	logFile  io.Closer
	store    *store.Store
	identity *identity.Service
	vocab    *vocab.Service
	state    *state.StateStore
	provider lookup.Provider
}

func newSession(ctx context.Context, o options) (*session, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	log, logFile, err := logging.New(cfg.Log)
	if err != nil {
		return nil, err
	}
	s := &session{cfg: cfg, log: log, logFile: logFile}

	s.store, err = store.Open(ctx, cfg.Storage.Path, log)
	if err != nil {
		s.Close()
		return nil, err
	}
	s.identity = identity.NewService(s.store.DB(), log)
	s.vocab = vocab.NewService(vocab.NewStoreRepository(s.store), log)

	s.state, err = state.NewStateStore()
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("state: %w", err)
	}
	if l, ok := s.state.Languages(); ok {
		cfg.Languages.Study, cfg.Languages.Translation = l.Study, l.Translation
	}

	// Pick up the account last used on this device.
	u, err := s.identity.Resume(ctx, s.state.CurrentUser())
	if err != nil {
		log.Warn("resume session failed", slog.String("error", err.Error()))
	}
	if u != nil {
		if err := s.vocab.Load(ctx, u.ID); err != nil {
			log.Warn("load word bank failed", slog.String("error", err.Error()))
		}
	}

	s.provider, err = lookup.New(cfg.Lookup, log)
	if err != nil {
		s.Close()
		return nil, err
	}
	log.Info("session started",
		slog.String("version", version),
		slog.String("provider", cfg.Lookup.Provider),
		slog.Bool("signed_in", u != nil))
	return s, nil
}

func (s *session) Close() {
	if s.store != nil {
		s.store.Close()
	}
	if s.logFile != nil {
		s.logFile.Close()
	}
}

// openDocument reads the file named on the command line, or stdin when
// something is piped in. No input gives an empty document. segmented
// reports whether a word segmenter was used.
func (s *session) openDocument(args []string) (doc *reader.Document, segmented bool, err error) {
	seg, err := reader.SegmenterFor(s.cfg.Languages.Study, s.cfg.Reader.Segment)
	if err != nil {
		return nil, false, err
	}

	if len(args) > 0 {
		doc, err = reader.Open(args[0], seg)
		if err != nil {
			return nil, false, fmt.Errorf("failed to read file '%s': %w", args[0], err)
		}
	} else {
		stat, err := os.Stdin.Stat()
		if err != nil || stat.Mode()&os.ModeCharDevice != 0 {
			return reader.NewDocument("glossr", "", seg), seg != nil, nil
		}
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, false, fmt.Errorf("reading stdin: %w", err)
		}
		doc = reader.NewDocument("stdin", string(data), seg)
	}

	doc.Hash = state.HashText(doc.Text)
	s.log.Info("document opened",
		slog.String("title", doc.Title),
		slog.Int("tokens", len(doc.Tokens)),
		slog.Int("chapters", len(doc.Chapters)))
	return doc, seg != nil, nil
}

// rememberDocument adds doc to the signed-in user's library.
func (s *session) rememberDocument(ctx context.Context, doc *reader.Document) {
	u := s.identity.Current()
	if u == nil || strings.TrimSpace(doc.Text) == "" {
		return
	}
	_, err := s.store.SaveDocument(ctx, u.ID, store.Document{Name: doc.Title, Hash: doc.Hash, Text: doc.Text})
	if err != nil {
		s.log.Warn("save document failed", slog.String("error", err.Error()))
	}
}

func (s *session) exportBank(path string) error {
	if !s.vocab.SignedIn() {
		return errors.New("sign in first; there is no word bank to export")
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := vocab.Export(f, s.vocab.Bank().Entries()); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// runCommands handles the flags that do their work and exit. done is true
// when the program should stop.
func runCommands(ctx context.Context, name string, o options) (s *session, done bool, err error) {
	if o.showVersion {
		fmt.Printf("%s %s (commit: %s, built: %s)\n", name, version, commit, date)
		return nil, true, nil
	}
	if o.initConfig {
		path := o.configPath
		if path == "" {
			path = config.DefaultPath()
		}
		if err := config.WriteDefault(path); err != nil {
			return nil, true, err
		}
		fmt.Printf("Wrote %s\n", path)
		return nil, true, nil
	}

	s, err = newSession(ctx, o)
	if err != nil {
		return nil, true, err
	}
	if o.exportPath != "" {
		defer s.Close()
		if err := s.exportBank(o.exportPath); err != nil {
			return nil, true, err
		}
		fmt.Printf("Exported %d entries to %s\n", s.vocab.Bank().Len(), o.exportPath)
		return nil, true, nil
	}
	return s, false, nil
}
