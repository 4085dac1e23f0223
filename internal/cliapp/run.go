package cliapp

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/LordOfPolls/BlackDwarf/internal/app"
	"github.com/LordOfPolls/BlackDwarf/internal/config"
	"github.com/LordOfPolls/BlackDwarf/internal/observability"
	"github.com/LordOfPolls/BlackDwarf/internal/util"
	"github.com/LordOfPolls/BlackDwarf/internal/watcher"
)

func setupLogging(verbose, tui bool) {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}

	output := os.Stderr
	if tui {
		// In UI mode, avoid terminal logs corrupting the dashboard.
		logPath := resolveLogPath()
		if err := os.MkdirAll(filepath.Dir(logPath), 0700); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to create log dir for %s: %v\n", logPath, err)
		} else {
			if fi, err := os.Lstat(logPath); err == nil && (fi.Mode()&os.ModeSymlink) != 0 {
				fmt.Fprintf(os.Stderr, "warning: refusing to write logs to symlink path %s\n", logPath)
			} else {
				f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
				if err == nil {
					output = f
				} else {
					fmt.Fprintf(os.Stderr, "warning: failed to open log file %s: %v\n", logPath, err)
				}
			}
		}
	}

	logger := slog.New(slog.NewTextHandler(output, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)
}

func resolveLogPath() string {
	if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
		return filepath.Join(xdg, "blackdwarf", "blackdwarf.log")
	}

	home, err := os.UserHomeDir()
	if err == nil && home != "" {
		return filepath.Join(home, ".local", "state", "blackdwarf", "blackdwarf.log")
	}

	return "blackdwarf.log"
}

// loadConfig treats the default config path as optional; an explicitly named
// file must exist.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		if os.IsNotExist(err) && path == defaultConfigPath {
			return config.Default(), nil
		}
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func run(ctx context.Context, target string, opts *rootOptions) error {
	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return err
	}

	a, err := app.New(cfg, target, app.Options{
		DryRun:    opts.dryRun,
		Infer:     opts.infer,
		CreateAll: opts.createAll,
		NoFormat:  opts.noFormat,
		Module:    opts.module,
	})
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Observability.OTLPEndpoint != "" {
		shutdown, err := observability.InitTracing(ctx, cfg.Observability.OTLPEndpoint, Version)
		if err != nil {
			slog.Warn("failed to initialize tracing", "error", err)
		} else {
			defer func() { _ = shutdown(context.Background()) }()
		}
	}

	if !(opts.watch && opts.ui) {
		printBanner()
	}

	summary, err := a.Run(ctx)
	if err != nil {
		return err
	}

	if !opts.watch {
		printSummary(summary)
		if code := summary.ExitCode(); code != 0 {
			return exitCodeError{code: code}
		}
		return nil
	}

	return runWatch(ctx, a, cfg, opts, summary)
}

func runWatch(ctx context.Context, a *app.App, cfg *config.Config, opts *rootOptions, initial *app.Summary) error {
	addr := cfg.Observability.MetricsAddr
	if opts.metricsAddr != "" {
		addr = opts.metricsAddr
	}
	if addr != "" {
		srv := observability.NewServer(addr, app.NewHealthService(a))
		if err := srv.Start(ctx); err != nil {
			return err
		}
		defer func() { _ = srv.Stop(context.Background()) }()
	}

	limiter := util.NewLimiter(cfg.Watch.Rate, cfg.Watch.Burst)

	if opts.ui {
		return runUI(ctx, a, cfg, limiter, initial)
	}

	printSummary(initial)

	w, err := watcher.NewWatcher(cfg.Watch.Debounce, limiter, cfg.Exclude.Dirs, cfg.Exclude.Files, func(paths []string) {
		batch := scopedBatch(a, paths)
		if len(batch) == 0 {
			return
		}
		printSummary(a.RunFiles(ctx, batch))
	})
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Watch([]string{watchPath(a)}); err != nil {
		return err
	}

	slog.Info("watching for changes", "target", a.Target)
	<-ctx.Done()
	return nil
}

// watchPath picks the directory to register with the watcher: the target
// itself, or its parent when the target is a single file.
func watchPath(a *app.App) string {
	if info, err := os.Stat(a.Target); err == nil && info.IsDir() {
		return a.Target
	}
	return a.Root
}

// scopedBatch drops events outside the target, such as sibling files when
// the target is one file inside a busy directory.
func scopedBatch(a *app.App, paths []string) []string {
	batch := make([]string, 0, len(paths))
	for _, p := range paths {
		if a.InScope(p) {
			batch = append(batch, p)
		}
	}
	return batch
}
