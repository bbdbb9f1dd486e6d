// Package cli implements the learnpath CLI commands.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/rcliao/learnpath/internal/config"
	"github.com/rcliao/learnpath/internal/generator"
	"github.com/rcliao/learnpath/internal/logger"
	"github.com/rcliao/learnpath/internal/search"
	"github.com/rcliao/learnpath/internal/store"
)

var (
	configPath  string
	dbPath      string
	backendFlag string
	mockFlag    bool
	formatFlag  string
)

// RootCmd is the top-level command. Without a subcommand it starts the
// interactive session.
var RootCmd = &cobra.Command{
	Use:   "learnpath",
	Short: "A learning companion for the terminal",
	Long:  "Generate day-by-day learning plans, track progress and keep a learning log. Plans are stored locally.",
	Run:   runStart,
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: ~/.learnpath/config.yaml)")
	RootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Storage path (default: $LEARNPATH_DB or ~/.learnpath/learnpath.db)")
	RootCmd.PersistentFlags().StringVar(&backendFlag, "backend", "", "Storage backend: sqlite, file, redis or memory")
	RootCmd.PersistentFlags().BoolVar(&mockFlag, "mock", false, "Use canned plans instead of the Gemini API")
	RootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", "json", "Output format: json or text (export also accepts xlsx)")
}

// loadConfig resolves config with command line overrides applied on top.
func loadConfig() *config.Config {
	// Flags win over config and .env, which read the same variables.
	if dbPath != "" {
		os.Setenv("LEARNPATH_DB", dbPath)
	}
	if backendFlag != "" {
		os.Setenv("LEARNPATH_BACKEND", backendFlag)
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		exitErr("load config", err)
	}
	if mockFlag {
		cfg.LLM.Provider = "mock"
	}
	return cfg
}

// newLogger builds the file logger, falling back to a no-op logger so a
// broken log path never blocks the CLI.
func newLogger(cfg *config.Config) *logger.Logger {
	log, err := logger.New(cfg.Log.Mode, cfg.Log.File)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
		return logger.Nop()
	}
	return log
}

func openBackend(ctx context.Context, sc config.StorageConfig) (store.Backend, error) {
	switch sc.Backend {
	case "sqlite":
		return store.NewSQLiteBackend(sc.Path)
	case "file":
		return store.NewFileBackend(sc.Path)
	case "redis":
		return store.NewRedisBackend(ctx, sc.RedisAddr, sc.KeyPrefix)
	case "memory":
		return store.NewMemoryBackend(), nil
	}
	return nil, fmt.Errorf("unknown backend %q", sc.Backend)
}

func openStore(ctx context.Context, cfg *config.Config, log *logger.Logger) (*store.BlobStore, error) {
	b, err := openBackend(ctx, cfg.Storage)
	if err != nil {
		return nil, err
	}
	return store.NewBlobStore(b, store.WithLogger(log)), nil
}

func newService(cfg *config.Config, log *logger.Logger) generator.Service {
	return generator.NewFromConfig(cfg, search.NewFromConfig(cfg.Search), log)
}

// env bundles what most commands need.
type env struct {
	cfg   *config.Config
	log   *logger.Logger
	store *store.BlobStore
}

func setup(ctx context.Context) *env {
	cfg := loadConfig()
	log := newLogger(cfg)
	st, err := openStore(ctx, cfg, log)
	if err != nil {
		exitErr("open store", err)
	}
	return &env{cfg: cfg, log: log, store: st}
}

func (e *env) Close() {
	e.store.Close()
	e.log.Sync()
}

// checkWrite fails the command when the last store write did not land.
func (e *env) checkWrite(what string) {
	if err := e.store.WriteErr(); err != nil {
		exitErr(what, err)
	}
}

// output prints v as indented JSON, or calls text when --format text.
func output(w io.Writer, v interface{}, text func(io.Writer)) {
	if formatFlag == "text" && text != nil {
		text(w)
		return
	}
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Fprintln(w, string(b))
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
