package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/pendergraft/kontocheck/internal/accounts/domain"
	"github.com/pendergraft/kontocheck/internal/methods"
	"github.com/pendergraft/kontocheck/internal/validation"
	"github.com/pendergraft/kontocheck/pkg/client"
)

// checkResult is what check prints.
type checkResult struct {
	Method      string `json:"method" yaml:"method"`
	Account     string `json:"account" yaml:"account"`
	Bank        string `json:"bank,omitempty" yaml:"bank,omitempty"`
	Valid       bool   `json:"valid" yaml:"valid"`
	Outcome     string `json:"outcome" yaml:"outcome"`
	Alternative *int   `json:"alternative,omitempty" yaml:"alternative,omitempty"`
	Exception   bool   `json:"exception" yaml:"exception"`
}

func createCheckCmd() *cobra.Command {
	var bank string
	var output string

	cmd := &cobra.Command{
		Use:   "check [method] <account>",
		Short: "Validate an account number",
		Long: `Validate an account number with a check-digit method.

The method may be omitted when the project config names a default. Methods
that derive a legacy number (52, C0) need the bank number.

The command exits with status 1 when the number is not valid.

EXAMPLES:
  kontocheck check 00 9290701
  kontocheck check 52 43001500 --bank 13051172
  kontocheck check c0 43001500 --bank 13051172 -o json
`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			method, account, err := checkArgs(args)
			if err != nil {
				return err
			}
			f, err := outputFormat(output)
			if err != nil {
				return err
			}
			return runCheck(cmd.Context(), cmd.OutOrStdout(), f, client.Request{
				Method:  method,
				Account: account,
				Bank:    bank,
			})
		},
	}

	cmd.Flags().StringVar(&bank, "bank", "", "bank number (BLZ)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output format: text, json or yaml")

	return cmd
}

func checkArgs(args []string) (method, account string, err error) {
	if len(args) == 2 {
		return args[0], args[1], validateMethodFlag(args[0])
	}
	if pc := loadProjectConfigSilent(); pc != nil && pc.Method != "" {
		return pc.Method, args[0], nil
	}
	return "", "", fmt.Errorf("no method given and no default method configured")
}

func validateMethodFlag(code string) error {
	if err := validation.ValidateMethodCode(code); err != nil {
		return fmt.Errorf("invalid method %q: must be two characters, e.g. 00 or B8", code)
	}
	return nil
}

func runCheck(ctx context.Context, out io.Writer, f format, req client.Request) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var res *checkResult
	if url, remote := getServer(); remote {
		r, err := client.New(url, getAPIKey()).Validate(ctx, req)
		if err != nil {
			return err
		}
		res = fromClientResult(r)
	} else {
		reg, err := localRegistry()
		if err != nil {
			return err
		}
		svc := domain.NewService(reg, nil, slog.New(slog.DiscardHandler), 0)
		r, err := svc.Validate(ctx, domain.ValidateRequest{
			Method:  req.Method,
			Account: req.Account,
			Bank:    req.Bank,
		}, domain.Caller{})
		if err != nil {
			return err
		}
		res = fromDomainResult(r)
	}

	if f == formatText {
		printCheck(out, res)
	} else if err := encode(out, f, res); err != nil {
		return err
	}

	if !res.Valid {
		return ErrNotValid
	}
	return nil
}

func printCheck(out io.Writer, r *checkResult) {
	status := paint(out, green, r.Outcome)
	if !r.Valid {
		status = paint(out, red, r.Outcome)
	}
	line := fmt.Sprintf("%s %s", r.Method, r.Account)
	if r.Bank != "" {
		line += " (BLZ " + r.Bank + ")"
	}
	line += ": " + status
	if r.Alternative != nil {
		line += ", alternative " + strconv.Itoa(*r.Alternative)
	}
	if r.Exception {
		line += ", exception"
	}
	fmt.Fprintln(out, line)
}

// localRegistry returns the built-in methods plus any definitions file
// named in the project config.
func localRegistry() (*methods.Registry, error) {
	pc := loadProjectConfigSilent()
	if pc == nil || pc.Definitions == "" {
		return methods.Builtin(), nil
	}
	reg := methods.NewBuiltin()
	if _, err := methods.LoadFile(reg, pc.Definitions); err != nil {
		return nil, err
	}
	return reg, nil
}

func fromDomainResult(r *domain.ValidateResult) *checkResult {
	res := &checkResult{
		Method:    r.Method,
		Account:   r.Account,
		Bank:      r.Bank,
		Valid:     r.Valid,
		Outcome:   r.Outcome,
		Exception: r.Exception,
	}
	if r.Alternative != domain.NoAlternative {
		alt := r.Alternative
		res.Alternative = &alt
	}
	return res
}

func fromClientResult(r *client.Result) *checkResult {
	return &checkResult{
		Method:      r.Method,
		Account:     r.Account,
		Bank:        r.Bank,
		Valid:       r.Valid,
		Outcome:     r.Outcome,
		Alternative: r.Alternative,
		Exception:   r.Exception,
	}
}
