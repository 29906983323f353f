package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/pendergraft/kontocheck/internal/methods"
	"github.com/pendergraft/kontocheck/pkg/client"
)

type methodInfo struct {
	Code        string `json:"code" yaml:"code"`
	Description string `json:"description" yaml:"description"`
	Kind        string `json:"kind" yaml:"kind"`
}

func createMethodsCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "methods [code]",
		Short: "List check-digit methods",
		Long: `List the registered check-digit methods, or describe one.

EXAMPLES:
  kontocheck methods
  kontocheck methods B8 -o yaml
`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := outputFormat(output)
			if err != nil {
				return err
			}
			code := ""
			if len(args) == 1 {
				code = methods.NormalizeCode(args[0])
			}
			return runMethods(cmd.Context(), cmd.OutOrStdout(), f, code)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output format: text, json or yaml")

	return cmd
}

func runMethods(ctx context.Context, out io.Writer, f format, code string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	infos, err := listMethods(ctx, code)
	if err != nil {
		return err
	}

	if f != formatText {
		if code != "" {
			return encode(out, f, infos[0])
		}
		return encode(out, f, infos)
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CODE\tKIND\tDESCRIPTION")
	for _, m := range infos {
		fmt.Fprintf(w, "%s\t%s\t%s\n", m.Code, m.Kind, m.Description)
	}
	return w.Flush()
}

func listMethods(ctx context.Context, code string) ([]methodInfo, error) {
	if url, remote := getServer(); remote {
		ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		c := client.New(url, getAPIKey())
		if code != "" {
			m, err := c.GetMethod(ctx, code)
			if err != nil {
				return nil, err
			}
			return []methodInfo{{Code: m.Code, Description: m.Description, Kind: m.Kind}}, nil
		}
		list, err := c.ListMethods(ctx)
		if err != nil {
			return nil, err
		}
		infos := make([]methodInfo, len(list))
		for i, m := range list {
			infos[i] = methodInfo{Code: m.Code, Description: m.Description, Kind: m.Kind}
		}
		return infos, nil
	}

	reg, err := localRegistry()
	if err != nil {
		return nil, err
	}
	if code != "" {
		e, ok := reg.Get(code)
		if !ok {
			return nil, fmt.Errorf("%w: %q", methods.ErrUnknownMethod, code)
		}
		return []methodInfo{{Code: e.Code, Description: e.Description, Kind: string(e.Kind)}}, nil
	}
	entries := reg.List()
	infos := make([]methodInfo, len(entries))
	for i, e := range entries {
		infos[i] = methodInfo{Code: e.Code, Description: e.Description, Kind: string(e.Kind)}
	}
	return infos, nil
}
