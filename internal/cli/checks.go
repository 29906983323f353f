package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/pendergraft/kontocheck/pkg/client"
)

func createChecksCmd() *cobra.Command {
	var opts client.ListChecksOptions
	var output string

	cmd := &cobra.Command{
		Use:   "checks",
		Short: "Show the server's validation log",
		Long: `Show recent validations recorded by the server, newest first.

Requires a server with the validation log enabled.

EXAMPLES:
  kontocheck checks --server https://kontocheck.example.com --method 52
  kontocheck checks --limit 10 --cursor <nextCursor>
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := outputFormat(output)
			if err != nil {
				return err
			}
			return runChecks(cmd.Context(), cmd.OutOrStdout(), f, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Method, "method", "", "only entries for this method")
	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "page size")
	cmd.Flags().StringVar(&opts.Cursor, "cursor", "", "continue from a previous page")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output format: text, json or yaml")

	return cmd
}

func runChecks(ctx context.Context, out io.Writer, f format, opts client.ListChecksOptions) error {
	url, remote := getServer()
	if !remote {
		return errors.New("the validation log lives on a server; set --server or KONTOCHECK_SERVER")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	page, err := client.New(url, getAPIKey()).ListChecks(ctx, opts)
	if err != nil {
		return err
	}

	if f != formatText {
		return encode(out, f, page)
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tMETHOD\tACCOUNT\tOUTCOME\tALT")
	for _, c := range page.Data {
		alt := "-"
		if c.Alternative != nil {
			alt = strconv.Itoa(*c.Alternative)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			c.CreatedAt.Local().Format(time.DateTime), c.Method, c.Account, c.Outcome, alt)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if page.Pagination.HasMore {
		fmt.Fprintf(out, "\nMore entries: --cursor %s\n", page.Pagination.NextCursor)
	}
	return nil
}
