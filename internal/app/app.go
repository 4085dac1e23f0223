package app

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/LordOfPolls/BlackDwarf/internal/config"
	"github.com/LordOfPolls/BlackDwarf/internal/errors"
	"github.com/LordOfPolls/BlackDwarf/internal/format"
	"github.com/LordOfPolls/BlackDwarf/internal/history"
	"github.com/LordOfPolls/BlackDwarf/internal/parser"
)

// Options carries the resolved CLI settings for one invocation. Flags win
// over config file values; the merge happens before New is called.
type Options struct {
	DryRun    bool
	Infer     bool
	CreateAll bool
	NoFormat  bool
	Module    string
}

type App struct {
	Config *config.Config
	// Target is the file or directory being processed, absolute.
	Target string
	// Root anchors absolute module lookups: the directory containing the
	// target. Processing a directory D resolves "from D.mod import *" the
	// same way running Python from D's parent would.
	Root string
	Opts Options

	parser    *parser.Parser
	formatter format.Formatter
	history   *history.Store
}

func New(cfg *config.Config, target string, opts Options) (*App, error) {
	abs, err := filepath.Abs(target)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, errors.AddContext(
			errors.Wrap(err, errors.CodeValidationError, "target does not exist"), errors.CtxPath, target)
	}
	if !info.IsDir() && filepath.Ext(abs) != ".py" {
		return nil, errors.AddContext(
			errors.New(errors.CodeValidationError, "target file is not a Python source file"), errors.CtxPath, target)
	}

	var formatter format.Formatter = format.Noop{}
	if !opts.NoFormat {
		formatter = format.NewCommand(cfg.Format.Command)
	}

	a := &App{
		Config:    cfg,
		Target:    abs,
		Root:      filepath.Dir(abs),
		Opts:      opts,
		parser:    parser.NewParser(),
		formatter: formatter,
	}

	if cfg.History.Path != "" {
		store, err := history.Open(cfg.History.Path)
		if err != nil {
			return nil, fmt.Errorf("open run history: %w", err)
		}
		a.history = store
	}

	return a, nil
}

func (a *App) Close() error {
	if a == nil {
		return nil
	}
	return a.history.Close()
}

// History exposes the run store for the history subcommand; nil when no
// history path is configured.
func (a *App) History() *history.Store {
	return a.history
}

// InScope reports whether path belongs to the target: the target itself, or
// anything beneath it when the target is a directory. Watch events for
// siblings of a single-file target fall outside.
func (a *App) InScope(path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	if abs == a.Target {
		return true
	}
	return strings.HasPrefix(abs, a.Target+string(os.PathSeparator))
}
