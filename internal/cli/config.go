package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// projectConfigFile is the project config looked up in the working directory
const projectConfigFile = "kontocheck.toml"

// ProjectConfig is the project-level TOML configuration
type ProjectConfig struct {
	Server      string `toml:"server,omitempty"`
	Method      string `toml:"method,omitempty"`
	Definitions string `toml:"definitions,omitempty"`
	Output      string `toml:"output,omitempty"`
}

// GlobalConfig is the user configuration stored in ~/.kontocheck/config.yaml
type GlobalConfig struct {
	Server string `yaml:"server"`
}

func createConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration commands",
	}

	cmd.AddCommand(createConfigInitCmd())
	cmd.AddCommand(createConfigShowCmd())

	return cmd
}

func createConfigInitCmd() *cobra.Command {
	var opts ProjectConfig
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create config file",
		Long: `Create a kontocheck.toml configuration file in the current directory.

EXAMPLES:
  # Check locally with method 63 unless told otherwise
  kontocheck config init --method 63

  # Always check against a server
  kontocheck config init --server https://kontocheck.example.com

  # Load extra method definitions
  kontocheck config init --definitions ./methods.toml
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigInit(cmd.OutOrStdout(), projectConfigFile, opts, force)
		},
	}

	cmd.Flags().StringVar(&opts.Server, "server", "", "server URL (empty checks locally)")
	cmd.Flags().StringVar(&opts.Method, "method", "", "default method code")
	cmd.Flags().StringVar(&opts.Definitions, "definitions", "", "method definition file (.toml or .yaml)")
	cmd.Flags().StringVar(&opts.Output, "output", "text", "default output format: text, json or yaml")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite existing config")

	return cmd
}

func createConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Display current config",
		Long: `Display the configuration sources in order of precedence and the
effective settings.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow(cmd.OutOrStdout())
		},
	}
}

func runConfigInit(out io.Writer, path string, cfg ProjectConfig, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("config file already exists at %s (use --force to overwrite)", path)
	}
	if cfg.Method != "" {
		if err := validateMethodFlag(cfg.Method); err != nil {
			return err
		}
	}
	if _, err := parseFormat(cfg.Output); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	defer f.Close()

	fmt.Fprintln(f, "# kontocheck project configuration")
	fmt.Fprintln(f)
	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	fmt.Fprintf(out, "Created %s\n", path)
	if cfg.Server == "" {
		fmt.Fprintln(out, "  Numbers are checked locally.")
	} else {
		fmt.Fprintf(out, "  Server: %s\n", cfg.Server)
		fmt.Fprintln(out, "  Run 'kontocheck auth login' if the server requires an API key.")
	}
	return nil
}

func runConfigShow(out io.Writer) error {
	fmt.Fprintln(out, "Configuration sources (in order of precedence):")
	fmt.Fprintln(out)

	fmt.Fprintln(out, "1. Command line flags")
	fmt.Fprintln(out, "   --server, --api-key, --config")
	fmt.Fprintln(out)

	fmt.Fprintln(out, "2. Environment variables")
	for _, name := range []string{"KONTOCHECK_SERVER", "KONTOCHECK_API_KEY"} {
		v := os.Getenv(name)
		switch {
		case v == "":
			v = "(not set)"
		case name == "KONTOCHECK_API_KEY":
			v = maskAPIKey(v)
		}
		fmt.Fprintf(out, "   %s=%s\n", name, v)
	}
	fmt.Fprintln(out)

	fmt.Fprintf(out, "3. Project config (%s)\n", projectConfigFile)
	projectConfig, configPath, err := loadProjectConfig()
	switch {
	case os.IsNotExist(err):
		fmt.Fprintln(out, "   (not found)")
	case err != nil:
		fmt.Fprintf(out, "   Error: %v\n", err)
	default:
		fmt.Fprintf(out, "   Loaded from: %s\n", configPath)
		printSetting(out, "server", projectConfig.Server)
		printSetting(out, "method", projectConfig.Method)
		printSetting(out, "definitions", projectConfig.Definitions)
		printSetting(out, "output", projectConfig.Output)
	}
	fmt.Fprintln(out)

	fmt.Fprintf(out, "4. Global config (%s)\n", globalConfigPath())
	global, err := loadGlobalConfig()
	switch {
	case os.IsNotExist(err):
		fmt.Fprintln(out, "   (not found)")
	case err != nil:
		fmt.Fprintf(out, "   Error: %v\n", err)
	default:
		printSetting(out, "server", global.Server)
	}
	fmt.Fprintln(out)

	fmt.Fprintf(out, "5. Credentials (%s)\n", credentialsFilePath())
	creds, err := loadCredentials()
	switch {
	case os.IsNotExist(err):
		fmt.Fprintln(out, "   (not found)")
	case err != nil:
		fmt.Fprintf(out, "   Error: %v\n", err)
	case len(creds.Servers) == 0:
		fmt.Fprintln(out, "   (no credentials stored)")
	default:
		for _, s := range sortedServers(creds) {
			fmt.Fprintf(out, "   %s: %s\n", s, maskAPIKey(creds.Servers[s].APIKey))
		}
	}
	fmt.Fprintln(out)

	fmt.Fprintln(out, "Effective configuration:")
	if s, remote := getServer(); remote {
		fmt.Fprintf(out, "   Server:  %s\n", s)
	} else {
		fmt.Fprintln(out, "   Server:  (none, checking locally)")
	}
	if key := getAPIKey(); key != "" {
		fmt.Fprintf(out, "   API Key: %s\n", maskAPIKey(key))
	} else {
		fmt.Fprintln(out, "   API Key: (not set)")
	}

	return nil
}

func printSetting(out io.Writer, name, value string) {
	if value != "" {
		fmt.Fprintf(out, "   %s: %s\n", name, value)
	}
}

// loadProjectConfig loads the project config from --config or the working
// directory. Returns the config, the path it was loaded from, and an error.
func loadProjectConfig() (*ProjectConfig, string, error) {
	path := cfgFile
	if path == "" {
		path = projectConfigFile
		if _, err := os.Stat(path); err != nil {
			return nil, "", os.ErrNotExist
		}
	}

	config, err := loadProjectConfigFromPath(path)
	if err != nil {
		return nil, path, err
	}
	return config, path, nil
}

// loadProjectConfigFromPath loads a project config from a specific path
func loadProjectConfigFromPath(path string) (*ProjectConfig, error) {
	var config ProjectConfig
	md, err := toml.DecodeFile(path, &config)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("parsing %s: unknown key %q", path, undecoded[0].String())
	}

	// Relative definition paths are relative to the config file.
	if config.Definitions != "" && !filepath.IsAbs(config.Definitions) {
		config.Definitions = filepath.Join(filepath.Dir(path), config.Definitions)
	}
	return &config, nil
}

// loadProjectConfigSilent loads the project config without returning errors for missing files.
// Parse failures are reported on stderr.
func loadProjectConfigSilent() *ProjectConfig {
	config, _, err := loadProjectConfig()
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		fmt.Fprintf(os.Stderr, "Warning: failed to load project config: %v\n", err)
		return nil
	}
	return config
}

func globalConfigPath() string {
	return filepath.Join(credentialsDir(), "config.yaml")
}

func loadGlobalConfig() (*GlobalConfig, error) {
	data, err := os.ReadFile(globalConfigPath())
	if err != nil {
		return nil, err
	}
	var cfg GlobalConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", globalConfigPath(), err)
	}
	return &cfg, nil
}
