package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/pendergraft/kontocheck/pkg/client"
)

// Credentials stores API keys per server
type Credentials struct {
	Servers map[string]ServerCredential `yaml:"servers"`
}

// ServerCredential stores credentials for a single server
type ServerCredential struct {
	APIKey string `yaml:"api_key"`
	Name   string `yaml:"name,omitempty"`
}

func createAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authentication commands",
	}

	cmd.AddCommand(createAuthLoginCmd())
	cmd.AddCommand(createAuthLogoutCmd())
	cmd.AddCommand(createAuthStatusCmd())

	return cmd
}

func createAuthLoginCmd() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate with server",
		Long: `Save an API key for a kontocheck server.

The key is stored in ~/.kontocheck/credentials.yaml with mode 0600. It is
read without echo when stdin is a terminal.

EXAMPLES:
  # Interactive login
  kontocheck auth login --server https://kontocheck.example.com

  # Non-interactive login (for CI)
  kontocheck auth login --api-key $KONTOCHECK_API_KEY
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAuthLogin(cmd.InOrStdin(), cmd.OutOrStdout(), serverURL(), apiKey, name)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "label stored with the key")

	return cmd
}

func createAuthLogoutCmd() *cobra.Command {
	var allFlag bool

	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Clear credentials",
		Long: `Remove saved credentials for the configured server, or for all servers
with --all.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAuthLogout(cmd.OutOrStdout(), serverURL(), allFlag)
		},
	}

	cmd.Flags().BoolVar(&allFlag, "all", false, "clear all credentials")

	return cmd
}

func createAuthStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show authentication status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAuthStatus(cmd.OutOrStdout())
		},
	}
}

func runAuthLogin(in io.Reader, out io.Writer, serverURL, key, name string) error {
	if key == "" {
		fmt.Fprintf(out, "Enter API key for %s: ", serverURL)
		var err error
		key, err = readKey(in)
		fmt.Fprintln(out)
		if err != nil {
			return fmt.Errorf("failed to read API key: %w", err)
		}
	}
	if key == "" {
		return errors.New("API key cannot be empty")
	}

	fmt.Fprintf(out, "Validating credentials with %s...\n", serverURL)
	valid, err := validateAPIKey(serverURL, key)
	if err != nil {
		return fmt.Errorf("failed to validate credentials: %w", err)
	}
	if !valid {
		return errors.New("invalid API key")
	}

	if err := saveCredential(serverURL, key, name); err != nil {
		return fmt.Errorf("failed to save credentials: %w", err)
	}

	fmt.Fprintf(out, "Authenticated to %s (key: %s)\n", serverURL, maskAPIKey(key))
	fmt.Fprintf(out, "Credentials saved to %s\n", credentialsFilePath())
	return nil
}

// readKey reads a key without echo from a terminal, or one line otherwise.
func readKey(in io.Reader) (string, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		return strings.TrimSpace(string(b)), err
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func runAuthLogout(out io.Writer, serverURL string, all bool) error {
	if all {
		if err := os.Remove(credentialsFilePath()); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove credentials: %w", err)
		}
		fmt.Fprintln(out, "All credentials cleared")
		return nil
	}

	creds, err := loadCredentials()
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to load credentials: %w", err)
	}
	if creds == nil {
		creds = &Credentials{}
	}
	if _, exists := creds.Servers[serverURL]; !exists {
		fmt.Fprintf(out, "No credentials found for %s\n", serverURL)
		return nil
	}

	delete(creds.Servers, serverURL)
	if err := writeCredentials(creds); err != nil {
		return fmt.Errorf("failed to save credentials: %w", err)
	}

	fmt.Fprintf(out, "Logged out from %s\n", serverURL)
	return nil
}

func runAuthStatus(out io.Writer) error {
	creds, err := loadCredentials()
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to load credentials: %w", err)
	}
	if creds == nil || len(creds.Servers) == 0 {
		fmt.Fprintln(out, "Not authenticated to any servers")
		fmt.Fprintln(out, "\nRun 'kontocheck auth login' to authenticate")
		return nil
	}

	fmt.Fprintln(out, "Authenticated servers:")
	for _, s := range sortedServers(creds) {
		cred := creds.Servers[s]
		if cred.Name != "" {
			fmt.Fprintf(out, "  %s (%s, key: %s)\n", s, cred.Name, maskAPIKey(cred.APIKey))
		} else {
			fmt.Fprintf(out, "  %s (key: %s)\n", s, maskAPIKey(cred.APIKey))
		}
	}
	return nil
}

// Credential file helpers

func credentialsDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".kontocheck"
	}
	return filepath.Join(home, ".kontocheck")
}

func credentialsFilePath() string {
	return filepath.Join(credentialsDir(), "credentials.yaml")
}

func loadCredentials() (*Credentials, error) {
	data, err := os.ReadFile(credentialsFilePath())
	if err != nil {
		return nil, err
	}

	var creds Credentials
	if err := yaml.Unmarshal(data, &creds); err != nil {
		return nil, err
	}
	if creds.Servers == nil {
		creds.Servers = make(map[string]ServerCredential)
	}
	return &creds, nil
}

func writeCredentials(creds *Credentials) error {
	if err := os.MkdirAll(credentialsDir(), 0700); err != nil {
		return err
	}
	data, err := yaml.Marshal(creds)
	if err != nil {
		return err
	}
	return os.WriteFile(credentialsFilePath(), data, 0600)
}

func saveCredential(serverURL, key, name string) error {
	creds, err := loadCredentials()
	if err != nil {
		if !os.IsNotExist(err) {
			return err
		}
		creds = &Credentials{Servers: make(map[string]ServerCredential)}
	}

	creds.Servers[serverURL] = ServerCredential{APIKey: key, Name: name}
	return writeCredentials(creds)
}

func getCredential(serverURL string) string {
	creds, err := loadCredentials()
	if err != nil {
		return ""
	}
	return creds.Servers[serverURL].APIKey
}

func sortedServers(creds *Credentials) []string {
	servers := make([]string, 0, len(creds.Servers))
	for s := range creds.Servers {
		servers = append(servers, s)
	}
	sort.Strings(servers)
	return servers
}

// validateAPIKey makes an authenticated request; only a 401 counts as a
// rejected key.
func validateAPIKey(serverURL, key string) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := client.New(serverURL, key).ListMethods(ctx)
	var apiErr *client.APIError
	switch {
	case err == nil:
		return true, nil
	case errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized:
		return false, nil
	case errors.As(err, &apiErr):
		return true, nil
	default:
		return false, err
	}
}

func maskAPIKey(key string) string {
	if len(key) <= 12 {
		return "****"
	}
	return key[:10] + "..." + key[len(key)-4:]
}
