// Package main provides the semspore binary entry point.
// Semspore validates spores and integrates them into target ontology models,
// enforcing conformance levels and ordered integration processes.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/c360studio/semspore/config"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "semspore"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// globalFlags are the persistent flags shared by every subcommand.
type globalFlags struct {
	configPath  string
	logLevel    string
	logFormat   string
	backend     string
	dbPath      string
	level       string
	metricsAddr string
	natsURL     string
	enforce     bool
}

func rootCmd() *cobra.Command {
	var flags globalFlags
	var metricsSrv *http.Server

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Spore integration and conformance validation",
		Long: `Semspore integrates spores, versioned units of ontology change, into
target models held in a graph store.

It provides:
- Structural and SHACL validation of spores
- Conformance gating (STRICT, MODERATE, RELAXED)
- Ordered patch application and batched integration
- Multi-step integration processes (validate, transform, merge)

Documents are Turtle (.ttl) or N-Triples (.nt) files given as glob patterns.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, &flags)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logger := newLogger(cmd.ErrOrStderr(), cfg.Log)
			slog.SetDefault(logger)

			if cfg.Metrics.Addr != "" {
				metricsSrv = startMetricsServer(cfg.Metrics.Addr, logger)
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			cmd.SetContext(withConfig(ctx, cfg))
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if metricsSrv == nil {
				return nil
			}
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return metricsSrv.Shutdown(shutdownCtx)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&flags.configPath, "config", "c", "", "Config file path (YAML)")
	pf.StringVar(&flags.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	pf.StringVar(&flags.logFormat, "log-format", "", "Log format (text, json)")
	pf.StringVar(&flags.backend, "store", "", "Graph store backend (memory, sqlite)")
	pf.StringVar(&flags.dbPath, "db", "", "SQLite database path")
	pf.StringVar(&flags.level, "level", "", "Conformance level (STRICT, MODERATE, RELAXED)")
	pf.StringVar(&flags.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address")
	pf.StringVar(&flags.natsURL, "nats-url", "", "Publish applied patches to this NATS server")
	pf.BoolVar(&flags.enforce, "enforce-conformance", false, "Run the conformance gate before applying patches")

	cmd.AddCommand(
		validateCmd(),
		shaclCmd(),
		conformanceCmd(),
		integrateCmd(),
		migrateCmd(),
		depsCmd(),
		conflictsCmd(),
		stepsCmd(),
		exportCmd(),
		watchCmd(),
		initCmd(),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s version %s (build: %s)\n", appName, Version, BuildTime)
			},
		},
	)

	return cmd
}

// loadConfig layers the config files and then the flags that were set.
func loadConfig(cmd *cobra.Command, flags *globalFlags) (*config.Config, error) {
	bootstrap := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: parseLevel(flags.logLevel)}))
	cfg, err := config.NewLoader(bootstrap).Load(flags.configPath)
	if err != nil {
		return nil, err
	}

	pf := cmd.Flags()
	if pf.Changed("log-level") {
		cfg.Log.Level = strings.ToLower(flags.logLevel)
	}
	if pf.Changed("log-format") {
		cfg.Log.Format = flags.logFormat
	}
	if pf.Changed("store") {
		cfg.Store.Backend = flags.backend
	}
	if pf.Changed("db") {
		cfg.Store.Path = flags.dbPath
		if !pf.Changed("store") {
			cfg.Store.Backend = "sqlite"
		}
	}
	if pf.Changed("level") {
		cfg.Conformance.Level = strings.ToUpper(flags.level)
	}
	if pf.Changed("metrics-addr") {
		cfg.Metrics.Addr = flags.metricsAddr
	}
	if pf.Changed("nats-url") {
		cfg.NATS.URL = flags.natsURL
	}
	if pf.Changed("enforce-conformance") {
		cfg.Integration.EnforceConformance = flags.enforce
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func newLogger(w io.Writer, cfg config.LogConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func startMetricsServer(addr string, logger *slog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Metrics server failed", "addr", addr, "error", err)
		}
	}()
	logger.Info("Serving metrics", "addr", addr)
	return srv
}

type configKey struct{}

func withConfig(ctx context.Context, cfg *config.Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

func configFrom(ctx context.Context) *config.Config {
	if cfg, ok := ctx.Value(configKey{}).(*config.Config); ok {
		return cfg
	}
	return config.DefaultConfig()
}
