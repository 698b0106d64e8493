// Package importer drives the import of one ledger extract: it reads the
// file, validates each row, merges accounts, replaces period balances and
// finally refreshes the case of every account the file touched.
package importer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/arrears/internal/cases"
	"github.com/cleared-dev/arrears/internal/columns"
	"github.com/cleared-dev/arrears/internal/ledger"
	"github.com/cleared-dev/arrears/internal/locale"
	"github.com/cleared-dev/arrears/internal/logging"
	"github.com/cleared-dev/arrears/internal/merge"
	"github.com/cleared-dev/arrears/internal/metrics"
	"github.com/cleared-dev/arrears/internal/model"
	"github.com/cleared-dev/arrears/internal/source"
	"github.com/cleared-dev/arrears/internal/store"
	"github.com/cleared-dev/arrears/internal/validate"
)

// FileError is a file-fatal failure: the file could not be opened, its
// format is unknown, or no header was found. Nothing from the file was
// stored.
type FileError struct {
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("importing %s: %v", filepath.Base(e.Path), e.Err)
}

func (e *FileError) Unwrap() error { return e.Err }

// Options tune an import.
type Options struct {
	// ScanRows bounds the header search.
	ScanRows int
	// MaxWarnings caps Summary.Warnings; zero means DefaultMaxWarnings.
	MaxWarnings int
	// Tolerance is the accepted balance imbalance.
	Tolerance decimal.Decimal
	// StrictPeriod skips rows with an unparseable period instead of
	// dating them to the current month.
	StrictPeriod  bool
	AddressPolicy merge.AddressPolicy
	// Limit stops after this many data rows; zero reads everything.
	Limit int
}

// DefaultOptions mirror the workspace config defaults.
func DefaultOptions() Options {
	return Options{
		ScanRows:      columns.DefaultScanRows,
		MaxWarnings:   DefaultMaxWarnings,
		Tolerance:     validate.DefaultTolerance,
		AddressPolicy: merge.AddressFrozen,
	}
}

// Driver imports files into a store.
type Driver struct {
	st      *store.Store
	reg     *source.Registry
	opts    Options
	now     func() time.Time
	metrics *metrics.Recorder
	checker *validate.Checker
	ledger  *ledger.Writer
	cases   *cases.Engine
}

// Option configures a Driver.
type Option func(*Driver)

// WithClock overrides the clock used for the default period and for every
// stored timestamp.
func WithClock(now func() time.Time) Option {
	return func(d *Driver) { d.now = now }
}

// WithMetrics records counters into rec.
func WithMetrics(rec *metrics.Recorder) Option {
	return func(d *Driver) { d.metrics = rec }
}

// WithRegistry overrides the reader registry.
func WithRegistry(reg *source.Registry) Option {
	return func(d *Driver) { d.reg = reg }
}

// New returns a driver writing to st.
func New(st *store.Store, opts Options, o ...Option) *Driver {
	d := &Driver{
		st:      st,
		reg:     source.DefaultRegistry(),
		opts:    opts,
		now:     time.Now,
		checker: validate.NewChecker(opts.Tolerance),
	}
	for _, fn := range o {
		fn(d)
	}
	d.ledger = ledger.NewWriter(ledger.WithClock(d.now))
	d.cases = cases.NewEngine(cases.WithClock(d.now))
	return d
}

// ImportFile imports the file at path. Row problems become warnings in the
// returned Summary. A *FileError is returned when the file cannot be used at
// all, and store failures are returned as they are; the Summary is never nil.
func (d *Driver) ImportFile(ctx context.Context, path string) (*Summary, error) {
	log := logging.FromContext(ctx).With().Str("file", filepath.Base(path)).Logger()
	sum := newSummary(filepath.Base(path), d.opts.MaxWarnings, d.now())

	err := d.importFile(ctx, path, sum)
	sum.FinishedAt = d.now()

	var ferr *FileError
	d.metrics.FileDone(sum.Duration(), !errors.As(err, &ferr))
	if err != nil {
		sum.Error = err.Error()
		log.Error().Err(err).Msg("import failed")
		return sum, err
	}

	log.Info().
		Int("read", sum.RowsRead).
		Int("imported", sum.RowsImported).
		Int("balance_mismatches", sum.BalanceMismatches).
		Int("accounts_created", sum.AccountsCreated).
		Int("cases_created", sum.CasesCreated).
		Int("cases_refreshed", sum.CasesRefreshed).
		Dur("took", sum.Duration()).
		Msg("import finished")
	return sum, nil
}

func (d *Driver) importFile(ctx context.Context, path string, sum *Summary) error {
	sheet, err := d.read(path)
	if err != nil {
		sum.warn(diagnostic(err))
		return &FileError{Path: path, Err: err}
	}
	sum.Format = sheet.Format
	for _, msg := range sheet.Diagnostics {
		sum.warn(msg)
	}

	// Committed rows keep their case even when the import stops early.
	touched, err := d.importRows(ctx, sheet.Rows, sum)
	if rerr := d.refreshCases(context.WithoutCancel(ctx), touched, sum); rerr != nil {
		return errors.Join(err, rerr)
	}
	return err
}

func (d *Driver) read(path string) (*source.Sheet, error) {
	rd, err := d.reg.ForPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return rd.Read(f, source.Options{ScanRows: d.opts.ScanRows})
}

// diagnostic is the single user-facing warning of a file-fatal error.
func diagnostic(err error) string {
	var herr *columns.HeaderError
	if errors.As(err, &herr) {
		return herr.Error()
	}
	return "Не удалось прочитать файл: " + err.Error()
}

// importRows stores every valid row, one transaction per row, and returns
// the accounts touched in first-seen order.
func (d *Driver) importRows(ctx context.Context, rows []source.Row, sum *Summary) ([]*model.Account, error) {
	log := logging.FromContext(ctx)
	accounts := merge.NewEngine(d.opts.AddressPolicy, merge.WithClock(d.now))

	var touched []*model.Account
	seen := make(map[string]bool)

	for _, row := range rows {
		if d.opts.Limit > 0 && sum.RowsRead >= d.opts.Limit {
			break
		}
		if err := ctx.Err(); err != nil {
			return touched, err
		}
		sum.RowsRead++
		d.metrics.RowRead()

		p, periodOK := locale.Period(row.Record.Period, d.now())
		amounts, v := d.checker.Check(row, p)
		if v != nil {
			d.skip(sum, v)
			log.Debug().Int("line", row.Line).Str("rule", v.Rule.String()).Msg("row skipped")
			continue
		}
		if !periodOK {
			if d.opts.StrictPeriod {
				sum.warnf("Строка %d: ЛС %s: не удалось разобрать период «%s», строка пропущена.",
					row.Line, row.Record.Ls, row.Record.Period)
				d.metrics.RowSkipped(metrics.ReasonPeriod)
				log.Debug().Int("line", row.Line).Str("period", row.Record.Period).Msg("row skipped")
				continue
			}
			sum.warnf("Строка %d: ЛС %s: не удалось разобрать период «%s», принят %s.",
				row.Line, row.Record.Ls, row.Record.Period, p.MonthLabel())
		}

		var (
			acct    *model.Account
			created bool
		)
		err := d.st.InTx(ctx, func(tx *store.Store) error {
			var err error
			acct, created, err = accounts.Resolve(ctx, tx, row.Record)
			if err != nil {
				return fmt.Errorf("resolving account %s: %w", row.Record.Ls, err)
			}
			b := ledger.FromRow(acct.ID, p, amounts, row.Record)
			if err := d.ledger.Upsert(ctx, tx, b); err != nil {
				return fmt.Errorf("storing balance %s %s: %w", row.Record.Ls, p.Key(), err)
			}
			return nil
		})
		if err != nil {
			return touched, fmt.Errorf("line %d: %w", row.Line, err)
		}

		sum.RowsImported++
		d.metrics.RowImported()
		if created {
			sum.AccountsCreated++
			d.metrics.AccountCreated()
		}
		if !seen[acct.ID] {
			seen[acct.ID] = true
			touched = append(touched, acct)
		}
	}
	return touched, nil
}

func (d *Driver) skip(sum *Summary, v *validate.Violation) {
	sum.warn(v.Error())
	switch v.Rule {
	case validate.RuleBalance:
		sum.BalanceMismatches++
		d.metrics.RowSkipped(metrics.ReasonBalance)
	case validate.RuleKeyPresent:
		d.metrics.RowSkipped(metrics.ReasonEmptyKey)
	default:
		d.metrics.RowSkipped(metrics.ReasonMalformed)
	}
}

func (d *Driver) refreshCases(ctx context.Context, touched []*model.Account, sum *Summary) error {
	for _, acct := range touched {
		var out cases.Outcome
		err := d.st.InTx(ctx, func(tx *store.Store) error {
			var err error
			out, err = d.cases.Refresh(ctx, tx, acct)
			return err
		})
		if err != nil {
			return fmt.Errorf("refreshing case of %s: %w", acct.Ls, err)
		}
		switch out {
		case cases.Created:
			sum.CasesCreated++
			d.metrics.CaseDerived("created")
		case cases.Refreshed:
			sum.CasesRefreshed++
			d.metrics.CaseDerived("refreshed")
		default:
			d.metrics.CaseDerived("skipped")
		}
	}
	return nil
}
