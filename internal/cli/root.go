// Package cli implements the kontocheck command line tool.
package cli

import (
	"errors"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// DefaultServer is used when no server is configured anywhere.
const DefaultServer = "http://localhost:8080"

// ErrNotValid is returned by check when the account number failed
// validation. Callers map it to a non-zero exit status without an
// error message.
var ErrNotValid = errors.New("account number is not valid")

var (
	cfgFile string
	server  string
	apiKey  string
)

// Execute runs the CLI
func Execute(version string) error {
	return NewRootCmd(version).Execute()
}

// NewRootCmd builds the command tree.
func NewRootCmd(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "kontocheck",
		Short: "Check-digit validation for German bank account numbers",
		Long: `kontocheck validates German bank account numbers against the check-digit
methods published by the Deutsche Bundesbank.

Numbers are checked locally unless a server is configured with --server,
KONTOCHECK_SERVER or the project config.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: kontocheck.toml)")
	rootCmd.PersistentFlags().StringVar(&server, "server", "", "server URL (default from config)")
	rootCmd.PersistentFlags().StringVar(&apiKey, "api-key", "", "API key for authentication")

	rootCmd.AddCommand(createCheckCmd())
	rootCmd.AddCommand(createMethodsCmd())
	rootCmd.AddCommand(createChecksCmd())
	rootCmd.AddCommand(createAuthCmd())
	rootCmd.AddCommand(createConfigCmd())

	return rootCmd
}

// getServer returns the server URL from flag, env, project config or global
// config, and
// whether one was configured at all.
func getServer() (string, bool) {
	if server != "" {
		return server, true
	}
	if env := os.Getenv("KONTOCHECK_SERVER"); env != "" {
		return env, true
	}
	if config := loadProjectConfigSilent(); config != nil && config.Server != "" {
		return config.Server, true
	}
	if global, err := loadGlobalConfig(); err == nil && global.Server != "" {
		return global.Server, true
	}
	return DefaultServer, false
}

// serverURL returns the effective server URL.
func serverURL() string {
	s, _ := getServer()
	return s
}

// getAPIKey returns the API key from flag, env, or the credentials file
func getAPIKey() string {
	if apiKey != "" {
		return apiKey
	}
	if env := os.Getenv("KONTOCHECK_API_KEY"); env != "" {
		return env
	}
	return getCredential(serverURL())
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
