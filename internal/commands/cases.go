package commands

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/arrears/internal/cases"
	"github.com/cleared-dev/arrears/internal/model"
)

func newCasesCommand() *cobra.Command {
	casesCmd := &cobra.Command{
		Use:   "cases",
		Short: "Review derived recovery cases",
	}
	casesCmd.AddCommand(newCasesListCommand())
	casesCmd.AddCommand(newCasesExportCommand())
	casesCmd.AddCommand(newCasesSetStatusCommand())
	return casesCmd
}

func parseStatus(s string) (model.CaseStatus, error) {
	st := model.CaseStatus(strings.ToLower(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", withCode(ExitUsage, fmt.Errorf("unknown case status %q", s))
	}
	return st, nil
}

func newCasesListCommand() *cobra.Command {
	var limit int
	var status string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List cases, largest debt first",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := parseStatus(status)
			if err != nil {
				return err
			}
			return runCasesList(cmd, st, limit)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", cases.DefaultLimit, "maximum number of cases")
	cmd.Flags().StringVar(&status, "status", string(model.CaseCandidate), "case status to list")

	return cmd
}

func runCasesList(cmd *cobra.Command, status model.CaseStatus, limit int) error {
	ws, err := openWorkspace(cmd)
	if err != nil {
		return err
	}
	ctx := ws.context(cmd)
	st, err := ws.openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	rows, err := st.CaseSummaries(ctx, status, limit)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "No %s cases.\n", status)
		return nil
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "LS\tDEBTOR\tDEBT\tPERIOD\tNAME\tADDRESS\tMISSING")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.Ls, r.DebtorType, r.DebtAmount.StringFixed(2), r.Period(),
			r.FullName, r.Address, strings.Join(r.Flags.Names(), ","))
	}
	return tw.Flush()
}

func newCasesExportCommand() *cobra.Command {
	var limit int
	var status string

	cmd := &cobra.Command{
		Use:   "export <file.csv>",
		Short: "Export cases as semicolon-separated CSV",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := parseStatus(status)
			if err != nil {
				return err
			}
			return runCasesExport(cmd, args[0], st, limit)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", cases.DefaultLimit, "maximum number of cases")
	cmd.Flags().StringVar(&status, "status", string(model.CaseCandidate), "case status to export")

	return cmd
}

func runCasesExport(cmd *cobra.Command, path string, status model.CaseStatus, limit int) error {
	ws, err := openWorkspace(cmd)
	if err != nil {
		return err
	}
	ctx := ws.context(cmd)
	st, err := ws.openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	rows, err := st.CaseSummaries(ctx, status, limit)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating export: %w", err)
	}
	defer f.Close()
	if err := cases.WriteSummaries(f, rows); err != nil {
		return fmt.Errorf("writing export: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing export: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d %s cases to %s\n", len(rows), status, path)
	return nil
}

func newCasesSetStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set-status <case-id> <status>",
		Short: "Record that a case moved to another recovery stage",
		Args:  usageArgs(cobra.ExactArgs(2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := parseStatus(args[1])
			if err != nil {
				return err
			}

			ws, err := openWorkspace(cmd)
			if err != nil {
				return err
			}
			ctx := ws.context(cmd)
			st, err := ws.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			if err := st.SetCaseStatus(ctx, args[0], status); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Case %s is now %s\n", args[0], status)
			return nil
		},
	}
}
