// Command vitae is a structured resume editor with a CLI, a terminal UI,
// a browser preview and an MCP server.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/custodia-labs/vitae/internal/adapters/driven/ai"
	"github.com/custodia-labs/vitae/internal/adapters/driven/config/file"
	"github.com/custodia-labs/vitae/internal/adapters/driven/pdf"
	"github.com/custodia-labs/vitae/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/vitae/internal/adapters/driven/storage/redis"
	"github.com/custodia-labs/vitae/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/vitae/internal/adapters/driving/cli"
	"github.com/custodia-labs/vitae/internal/adapters/driving/httpapi"
	"github.com/custodia-labs/vitae/internal/core/domain"
	"github.com/custodia-labs/vitae/internal/core/ports/driven"
	"github.com/custodia-labs/vitae/internal/core/services"
	"github.com/custodia-labs/vitae/internal/logger"
	"github.com/custodia-labs/vitae/internal/metrics"
)

// version is set at build time via -ldflags "-X main.version=...".
var version = "dev"

// closeTimeout bounds the final flush and store shutdown.
const closeTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	configStore, err := file.NewConfigStore("")
	if err != nil {
		return report(fmt.Errorf("opening config: %w", err))
	}
	settingsService := services.NewSettingsService(configStore, ai.NewConfigValidator())
	settings, err := settingsService.Get()
	if err != nil {
		return report(fmt.Errorf("reading settings: %w", err))
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	store, closeStore, err := openStateStore(ctx, settings.Storage)
	if err != nil {
		return report(err)
	}

	persistence := services.NewPersistence(store, settings.Editor.Debounce(), m)
	editor := services.NewEditor(
		persistence.Load(ctx),
		services.WithPersistence(persistence),
		services.WithPreferences(configStore),
		services.WithMetrics(m),
	)

	// A broken LLM configuration must not stop the editor from starting.
	llm, err := ai.CreateLLMService(&settings.LLM)
	if err != nil {
		logger.Warn("LLM disabled: %v", err)
	}
	if llm != nil {
		defer llm.Close()
	}
	assist := services.NewAssistService(llm, editor, nil, m)

	var watcher cli.Runner
	prompts, err := file.NewPromptStore("")
	if err != nil {
		logger.Warn("using built-in prompts: %v", err)
	} else {
		assist.SetPromptStore(prompts)
		watcher = newPromptWatcher(prompts)
	}

	renderer := pdf.NewRenderer(pdf.Config{
		ExecPath:  settings.Export.ChromePath,
		NoSandbox: os.Geteuid() == 0,
	})
	defer renderer.Close()
	export := services.NewExportService(editor, renderer, settings.Export.Timeout(), m)

	cli.SetVersion(version)
	cli.SetServices(cli.Services{
		Editor:        editor,
		Assist:        assist,
		Export:        export,
		Settings:      settingsService,
		Persistence:   persistence,
		PromptWatcher: watcher,
		Gatherer:      reg,
		Health:        healthOf(store),
	})

	runErr := cli.Execute(ctx)

	closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), closeTimeout)
	defer cancel()
	closeErr := errors.Join(persistence.Close(closeCtx), closeStore())
	if closeErr != nil {
		logger.Error("shutdown: %v", closeErr)
	}

	if runErr != nil {
		return runErr
	}
	return closeErr
}

// openStateStore opens the configured backend and returns its closer.
func openStateStore(ctx context.Context, cfg domain.StorageSettings) (driven.StateStore, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Backend {
	case domain.StorageMemory:
		logger.Warn("memory storage: the document is lost on exit")
		return memory.NewStateStore(), noop, nil

	case domain.StorageRedis:
		store, err := redis.Dial(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("opening redis storage: %w", err)
		}
		return store, store.Close, nil

	default:
		store, err := sqlite.NewStore(cfg.DataDir)
		if err != nil {
			return nil, nil, fmt.Errorf("opening sqlite storage: %w", err)
		}
		logger.Debug("sqlite storage at %s", store.Path())
		return store, store.Close, nil
	}
}

// healthOf returns the store's health check, if it has one.
func healthOf(store driven.StateStore) httpapi.HealthChecker {
	if h, ok := store.(httpapi.HealthChecker); ok {
		return h
	}
	return nil
}

// newPromptWatcher watches the prompt directory, or returns nil when it
// cannot be watched.
func newPromptWatcher(prompts *file.PromptStore) cli.Runner {
	if err := os.MkdirAll(prompts.Dir(), 0o700); err != nil {
		logger.Warn("prompt reload disabled: %v", err)
		return nil
	}
	w, err := file.NewPromptWatcher(prompts, prompts.Dir())
	if err != nil {
		logger.Warn("prompt reload disabled: %v", err)
		return nil
	}
	return w
}

// report prints a startup error; errors from commands are printed by cobra.
func report(err error) error {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return err
}
