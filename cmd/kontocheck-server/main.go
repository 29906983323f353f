package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/pendergraft/kontocheck/internal/config"
	"github.com/pendergraft/kontocheck/internal/methods"
	"github.com/pendergraft/kontocheck/internal/observability/metrics"
	"github.com/pendergraft/kontocheck/internal/server"
	"github.com/pendergraft/kontocheck/internal/storage"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "kontocheck-server",
		Short:        "kontocheck server - bank account check-digit validation API",
		Version:      version,
		SilenceUsage: true,
	}

	// Default behavior (no subcommand) is to serve
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runServe()
	}

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newKeysCmd())
	rootCmd.AddCommand(newMethodsCmd())

	return rootCmd
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}
}

func newMethodsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "methods",
		Short: "List the methods the server would load",
		Long: `List the built-in methods plus those from METHODS_DEFINITIONS_PATH.

Useful to check a definitions file before deploying it.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			registry, _, err := loadRegistry(cfg.Methods.DefinitionsPath)
			if err != nil {
				return err
			}
			return printMethods(cmd.OutOrStdout(), registry)
		},
	}
}

func newKeysCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keys",
		Short: "Manage API keys",
	}

	cmd.AddCommand(newKeysCreateCmd())
	cmd.AddCommand(newKeysListCmd())
	cmd.AddCommand(newKeysRevokeCmd())

	return cmd
}

func newKeysCreateCmd() *cobra.Command {
	var name string
	var outputFile string
	var quiet bool
	var show bool

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new API key",
		Long: `Create a new API key.

By default, the key is written to a file in the current directory.
The key is only shown once - it cannot be retrieved later.

EXAMPLES:
  # Create key, write to file (default)
  kontocheck-server keys create --name "billing"

  # Create key, print only (for piping to secrets manager)
  kontocheck-server keys create --name "billing" --quiet | gh secret set KONTOCHECK_API_KEY
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKeysCreate(cmd.OutOrStdout(), name, outputFile, quiet, show)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "name/label for the key (required)")
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "write key to file (default: ./kontocheck-key-{name}.txt)")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "print only the key (for piping)")
	cmd.Flags().BoolVar(&show, "show", false, "display key on screen")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newKeysListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all API keys",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKeysList(cmd.OutOrStdout())
		},
	}
}

func newKeysRevokeCmd() *cobra.Command {
	var keyID string

	cmd := &cobra.Command{
		Use:   "revoke",
		Short: "Revoke an API key",
		Long: `Revoke an API key to prevent further use.

Use 'kontocheck-server keys list' to find the key ID. A unique prefix of at
least 8 characters is enough.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKeysRevoke(cmd.OutOrStdout(), keyID)
		},
	}

	cmd.Flags().StringVar(&keyID, "id", "", "key ID to revoke (required)")
	_ = cmd.MarkFlagRequired("id")

	return cmd
}

// openStore opens and migrates the configured store for key management.
func openStore() (storage.Store, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if !cfg.StorageEnabled() {
		return nil, errors.New("API keys need storage; set STORAGE_TYPE to sqlite or postgres")
	}

	quiet := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	store, err := storage.New(cfg.Storage, quiet)
	if err != nil {
		return nil, fmt.Errorf("initializing storage: %w", err)
	}
	if err := store.Migrate(context.Background()); err != nil {
		store.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return store, nil
}

// Key management commands

func runKeysCreate(out io.Writer, name, outputFile string, quiet, show bool) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	key, err := store.CreateAPIKey(context.Background(), name)
	if err != nil {
		return fmt.Errorf("creating API key: %w", err)
	}

	if quiet {
		fmt.Fprintln(out, key)
		return nil
	}

	if show {
		fmt.Fprintln(out, "API key (save this - it cannot be retrieved later):")
		fmt.Fprintln(out)
		fmt.Fprintln(out, "   ", key)
		fmt.Fprintln(out)
		return nil
	}

	if outputFile == "" {
		outputFile = fmt.Sprintf("./kontocheck-key-%s.txt", name)
	}

	if dir := filepath.Dir(outputFile); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("creating directory: %w", err)
		}
	}

	if err := os.WriteFile(outputFile, []byte(key+"\n"), 0600); err != nil {
		return fmt.Errorf("writing key to file: %w", err)
	}

	fmt.Fprintf(out, "API key created: %s\n", name)
	fmt.Fprintf(out, "   Written to: %s (mode 0600)\n", outputFile)
	fmt.Fprintln(out)
	fmt.Fprintln(out, "   This key cannot be retrieved later. Keep it safe!")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "   Usage:")
	fmt.Fprintln(out, "     export KONTOCHECK_API_KEY=$(cat", outputFile+")")
	fmt.Fprintln(out, "     kontocheck check 52 43001500 --bank 13051172")

	return nil
}

func runKeysList(out io.Writer) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	keys, err := store.ListAPIKeys(context.Background())
	if err != nil {
		return fmt.Errorf("listing API keys: %w", err)
	}

	if len(keys) == 0 {
		fmt.Fprintln(out, "No API keys found")
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Create one with: kontocheck-server keys create --name \"my-key\"")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tCREATED\tLAST USED")
	for _, k := range keys {
		lastUsed := "never"
		if k.LastUsedAt != "" {
			lastUsed = k.LastUsedAt
		}
		idDisplay := k.ID
		if len(k.ID) > 8 {
			idDisplay = k.ID[:8] + "..."
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", idDisplay, k.Name, k.CreatedAt, lastUsed)
	}
	return w.Flush()
}

func runKeysRevoke(out io.Writer, keyID string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	keys, err := store.ListAPIKeys(context.Background())
	if err != nil {
		return fmt.Errorf("listing API keys: %w", err)
	}

	var matches []string
	for _, k := range keys {
		if k.ID == keyID || (len(keyID) >= 8 && strings.HasPrefix(k.ID, keyID)) {
			matches = append(matches, k.ID)
		}
	}
	switch len(matches) {
	case 0:
		return fmt.Errorf("key not found: %s", keyID)
	case 1:
	default:
		return fmt.Errorf("key id %s is ambiguous (%d matches)", keyID, len(matches))
	}

	if err := store.RevokeAPIKey(context.Background(), matches[0]); err != nil {
		return fmt.Errorf("revoking API key: %w", err)
	}

	fmt.Fprintf(out, "API key revoked: %s\n", matches[0])
	return nil
}

// loadRegistry returns the built-in methods, extended by the definitions
// file when one is configured.
func loadRegistry(path string) (*methods.Registry, int, error) {
	if path == "" {
		return methods.Builtin(), 0, nil
	}
	registry := methods.NewBuiltin()
	n, err := methods.LoadFile(registry, path)
	if err != nil {
		return nil, 0, fmt.Errorf("loading method definitions: %w", err)
	}
	return registry, n, nil
}

func printMethods(out io.Writer, registry *methods.Registry) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CODE\tKIND\tDESCRIPTION")
	for _, e := range registry.List() {
		fmt.Fprintf(w, "%s\t%s\t%s\n", e.Code, e.Kind, e.Description)
	}
	return w.Flush()
}

// Server command

func runServe() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger := setupLogger(cfg)
	logger.Info("starting kontocheck-server", "version", version)

	registry, loaded, err := loadRegistry(cfg.Methods.DefinitionsPath)
	if err != nil {
		return err
	}
	logger.Info("methods registered", "total", registry.Len(), "from_definitions", loaded)

	var store storage.Store
	if cfg.StorageEnabled() {
		store, err = storage.New(cfg.Storage, logger)
		if err != nil {
			return fmt.Errorf("initializing storage: %w", err)
		}
		defer store.Close()

		if err := store.Migrate(context.Background()); err != nil {
			return fmt.Errorf("running migrations: %w", err)
		}
	} else {
		logger.Info("storage disabled; API keys and validation log are unavailable")
	}

	metrics.Init(cfg.Metrics.Enabled, "kontocheck-server")

	srv := server.New(cfg, store, registry, logger)
	defer srv.Close()

	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      srv.Handler(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	var metricsServer *http.Server
	if cfg.Metrics.Enabled {
		mux := http.NewServeMux()
		mux.Handle("/metrics", srv.MetricsHandler())
		metricsServer = &http.Server{
			Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Metrics.Port),
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
	}

	errChan := make(chan error, 2)
	go func() {
		logger.Info("server listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()
	if metricsServer != nil {
		go func() {
			logger.Info("metrics listening", "addr", metricsServer.Addr)
			if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				errChan <- fmt.Errorf("metrics server: %w", err)
			}
		}()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		logger.Info("shutting down", "signal", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if metricsServer != nil {
		if err := metricsServer.Shutdown(ctx); err != nil {
			logger.Warn("metrics shutdown", "error", err)
		}
	}
	if err := httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown error: %w", err)
	}

	logger.Info("server stopped")
	return nil
}

func setupLogger(cfg *config.Config) *slog.Logger {
	var handler slog.Handler

	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Logging.Level),
	}

	if cfg.Logging.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
