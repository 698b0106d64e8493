package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/cleared-dev/arrears/internal/config"
	"github.com/cleared-dev/arrears/internal/importer"
	"github.com/cleared-dev/arrears/internal/importlog"
	"github.com/cleared-dev/arrears/internal/merge"
	"github.com/cleared-dev/arrears/internal/metrics"
	"github.com/cleared-dev/arrears/internal/source"
)

// shownWarnings is how many warnings the import command prints per file.
const shownWarnings = 10

func newImportCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "import [file...]",
		Short: "Import ledger extracts (every inbox file when none are given)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit < 0 {
				return withCode(ExitUsage, fmt.Errorf("--limit must not be negative"))
			}
			return runImport(cmd, args, limit)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "stop after this many data rows per file (0 reads all)")

	return cmd
}

func importOptions(cfg *config.Config, limit int) (importer.Options, error) {
	tol, err := cfg.Import.ToleranceValue()
	if err != nil {
		return importer.Options{}, err
	}
	return importer.Options{
		ScanRows:      cfg.Import.HeaderScanRows,
		MaxWarnings:   cfg.Import.MaxWarnings,
		Tolerance:     tol,
		StrictPeriod:  cfg.Import.StrictPeriod,
		AddressPolicy: merge.AddressPolicy(cfg.Import.AddressPolicy),
		Limit:         limit,
	}, nil
}

func runImport(cmd *cobra.Command, files []string, limit int) error {
	ws, err := openWorkspace(cmd)
	if err != nil {
		return err
	}
	ctx := ws.context(cmd)
	out := cmd.OutOrStdout()

	opts, err := importOptions(ws.cfg, limit)
	if err != nil {
		return err
	}

	reg := source.DefaultRegistry()
	inbox := ws.path(ws.cfg.Inbox)
	fromInbox := len(files) == 0
	if fromInbox {
		infos, err := source.Scan(inbox, reg)
		if err != nil {
			return err
		}
		for _, fi := range infos {
			files = append(files, fi.Path)
		}
		if len(files) == 0 {
			fmt.Fprintf(out, "Nothing to import in %s (accepted: %s)\n", inbox, joinExts(reg.Extensions()))
			return nil
		}
	}

	st, err := ws.openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	rec := metrics.NewRecorder()
	b := &batch{
		ws:        ws,
		out:       out,
		driver:    importer.New(st, opts, importer.WithMetrics(rec), importer.WithRegistry(reg)),
		runID:     uuid.NewString(),
		inbox:     inbox,
		fromInbox: fromInbox,
	}
	runErr := b.run(ctx, files)

	if textfile := ws.cfg.Metrics.Textfile; textfile != "" {
		if err := rec.WriteTextfile(ws.path(textfile)); err != nil {
			ws.log.Warn().Err(err).Msg("metrics not written")
		}
	}
	if runErr != nil {
		return runErr
	}
	if b.failed > 0 {
		return withCode(ExitFileFatal, fmt.Errorf("%d of %d files could not be imported", b.failed, len(files)))
	}
	return nil
}

// batch imports files one after another under one run id.
type batch struct {
	ws        *workspace
	out       io.Writer
	driver    *importer.Driver
	runID     string
	inbox     string
	fromInbox bool
	failed    int
}

// run stops at the first store failure; file-fatal failures are counted
// and the remaining files still run.
func (b *batch) run(ctx context.Context, files []string) error {
	for _, path := range files {
		sum, err := b.driver.ImportFile(ctx, path)

		entry := importlog.Entry{
			Timestamp:    sum.StartedAt,
			RunID:        b.runID,
			File:         sum.File,
			Result:       sum.Result(),
			RowsRead:     sum.RowsRead,
			RowsImported: sum.RowsImported,
			Mismatches:   sum.BalanceMismatches,
			Warnings:     sum.TotalWarnings(),
		}
		if err != nil {
			entry.Error = err.Error()
		}

		report, rerr := importer.SaveReport(b.ws.path(b.ws.cfg.Reports), sum)
		if rerr != nil {
			return rerr
		}
		if rel, err := filepath.Rel(b.ws.root, report); err == nil {
			report = rel
		}
		entry.Report = report

		if lerr := importlog.Append(b.ws.path(b.ws.cfg.Logs), []importlog.Entry{entry}); lerr != nil {
			return lerr
		}
		printSummary(b.out, sum, report, err)

		var ferr *importer.FileError
		switch {
		case errors.As(err, &ferr):
			b.failed++
			continue
		case err != nil:
			return err
		}

		if b.fromInbox {
			if err := source.MarkProcessed(b.inbox, filepath.Base(path)); err != nil {
				return err
			}
		}
	}
	return nil
}

func printSummary(w io.Writer, sum *importer.Summary, report string, err error) {
	fmt.Fprintf(w, "%s: ", sum.File)
	if err != nil {
		fmt.Fprintf(w, "FAILED. %v\n", err)
	} else {
		fmt.Fprintf(w, "OK. Read=%d Imported=%d BalanceMismatch=%d AccountsCreated=%d CasesCreated=%d CasesRefreshed=%d\n",
			sum.RowsRead, sum.RowsImported, sum.BalanceMismatches,
			sum.AccountsCreated, sum.CasesCreated, sum.CasesRefreshed)
	}

	for i, msg := range sum.Warnings {
		if i == shownWarnings {
			break
		}
		fmt.Fprintf(w, "  %s\n", msg)
	}
	if more := sum.TotalWarnings() - min(len(sum.Warnings), shownWarnings); more > 0 {
		fmt.Fprintf(w, "  ... %d more warnings in the report\n", more)
	}
	fmt.Fprintf(w, "  Report: %s\n", report)
}

func joinExts(exts []string) string {
	return strings.Join(exts, ", ")
}
