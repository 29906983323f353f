package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

type format string

const (
	formatText format = "text"
	formatJSON format = "json"
	formatYAML format = "yaml"
)

func parseFormat(s string) (format, error) {
	switch f := format(s); f {
	case "":
		return formatText, nil
	case formatText, formatJSON, formatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want text, json or yaml)", s)
	}
}

// outputFormat resolves the -o flag against the project config.
func outputFormat(flag string) (format, error) {
	if flag == "" {
		if pc := loadProjectConfigSilent(); pc != nil {
			flag = pc.Output
		}
	}
	return parseFormat(flag)
}

// encode writes v as JSON or YAML.
func encode(out io.Writer, f format, v any) error {
	switch f {
	case formatJSON:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case formatYAML:
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(v)
	default:
		return fmt.Errorf("cannot encode as %q", f)
	}
}

const (
	green = "\033[32m"
	red   = "\033[31m"
	reset = "\033[0m"
)

// paint colours s when out is a terminal and NO_COLOR is unset.
func paint(out io.Writer, color, s string) string {
	if os.Getenv("NO_COLOR") != "" || !isTerminal(out) {
		return s
	}
	return color + s + reset
}
