package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/user/clawline/internal/config"
	"github.com/user/clawline/internal/router"
	"github.com/user/clawline/internal/state"
	"github.com/user/clawline/internal/supervisor"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "clawline",
	Short: "Chat client core for agent gateways",
	Long: `clawline manages servers, sessions and triggers for agent gateway
conversations, and streams agent answers with reasoning hidden.`,
	SilenceUsage: true,
}

func init() {
	defaultCfg := filepath.Join(os.Getenv("HOME"), ".clawline", "config.json")
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", defaultCfg, "config file path")
}

// loadConfig loads the config or exits; commands rely on it existing.
func loadConfig() *config.Config {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

func setupLogging(cfg *config.Config) {
	var level slog.Level
	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// openStores creates the persistent stores under the config's data dir.
func openStores(cfg *config.Config) *state.Stores {
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create data dir: %v\n", err)
		os.Exit(1)
	}
	return state.NewStores(cfg.DataDir)
}

// newRouter wires the trigger router over the stores.
func newRouter(cfg *config.Config, stores *state.Stores) (*router.Router, error) {
	return router.New(stores.Triggers, stores.Aliases, state.NewSelectionStore(cfg.DataDir))
}

// supervisorConfig maps config durations onto connection tuning.
func supervisorConfig(cfg *config.Config) supervisor.Config {
	return supervisor.Config{
		DialTimeout:  cfg.DialTimeout(),
		ReconnectMin: cfg.ReconnectMin(),
		ReconnectMax: cfg.ReconnectMax(),
		StableWindow: cfg.StableWindow(),
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
