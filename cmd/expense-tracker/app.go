package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dafibh/fortuna/fortuna-report/internal/config"
	"github.com/dafibh/fortuna/fortuna-report/internal/domain"
	"github.com/dafibh/fortuna/fortuna-report/internal/format"
	"github.com/dafibh/fortuna/fortuna-report/internal/repository/storage"
	"github.com/dafibh/fortuna/fortuna-report/internal/service"
	"github.com/fatih/color"
	"github.com/rs/zerolog"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

const usageText = `Usage:
  expense-tracker expense add    --amount A --category C [--description D] [--date YYYY-MM-DD] [--user-id N]
  expense-tracker expense list   [--from YYYY-MM-DD] [--to YYYY-MM-DD] [--category C] [--user-id N]
  expense-tracker expense delete ID [--user-id N]
  expense-tracker budget set     --category C --amount A --month M --year Y [--alert-threshold T] [--user-id N]
  expense-tracker budget list    [--month M] [--year Y] [--category C] [--user-id N]
  expense-tracker budget status  --month M --year Y [--format text|csv] [--export TARGET] [--user-id N]
  expense-tracker budget delete  ID [--user-id N]
  expense-tracker report monthly  --month M --year Y [--format text|csv] [--export TARGET] [--user-id N]
  expense-tracker report category --month M --year Y [--format text|csv] [--export TARGET] [--user-id N]
  expense-tracker report annual   --year Y [--format text|csv] [--export TARGET] [--user-id N]

TARGET is a file path (.xlsx writes a workbook, .png a chart) or s3://bucket/key.
`

// usageError marks command-line mistakes, which exit with status 2
type usageError struct {
	msg string
}

func (e *usageError) Error() string {
	return e.msg
}

func usagef(msg string, args ...any) error {
	return &usageError{msg: fmt.Sprintf(msg, args...)}
}

// exportError carries an export failure message that is printed as-is
type exportError struct {
	msg string
}

func (e *exportError) Error() string {
	return e.msg
}

type app struct {
	cfg         *config.Config
	logger      zerolog.Logger
	expenses    *service.ExpenseService
	budgets     *service.BudgetService
	objectStore func(ctx context.Context, bucket string) (domain.ReportObjectStore, error)
	stdout      io.Writer
	stderr      io.Writer
}

// run dispatches a command line and returns the process exit code
func (a *app) run(ctx context.Context, args []string) int {
	start := time.Now()
	err := a.dispatch(ctx, args)

	a.logger.Debug().
		Strs("args", args).
		Dur("latency", time.Since(start)).
		Bool("ok", err == nil).
		Msg("command")

	var uErr *usageError
	var xErr *exportError
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, flag.ErrHelp):
		fmt.Fprint(a.stderr, usageText)
		return exitOK
	case errors.As(err, &uErr):
		printError(a.stderr, uErr.msg)
		fmt.Fprint(a.stderr, usageText)
		return exitUsage
	case errors.As(err, &xErr):
		printMessage(a.stderr, xErr.msg)
		return exitError
	default:
		if errors.Is(err, domain.ErrProvider) {
			a.logger.Error().Err(err).Msg("Store failure")
		}
		printError(a.stderr, err.Error())
		return exitError
	}
}

func (a *app) dispatch(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return usagef("expected a command group and a subcommand")
	}

	group, sub, rest := args[0], args[1], args[2:]
	switch group + " " + sub {
	case "report monthly":
		return a.reportCommand(ctx, reportMonthly, rest)
	case "report category":
		return a.reportCommand(ctx, reportCategory, rest)
	case "report annual":
		return a.reportCommand(ctx, reportAnnual, rest)
	case "expense add":
		return a.addExpense(ctx, rest)
	case "expense list":
		return a.listExpenses(ctx, rest)
	case "expense delete":
		return a.deleteExpense(ctx, rest)
	case "budget set":
		return a.setBudget(ctx, rest)
	case "budget list":
		return a.listBudgets(ctx, rest)
	case "budget status":
		return a.reportCommand(ctx, reportBudgetStatus, rest)
	case "budget delete":
		return a.deleteBudget(ctx, rest)
	default:
		return usagef("unknown command: %s %s", group, sub)
	}
}

func (a *app) newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

// userIDFlag registers --user-id; the value is checked by userID after parsing
func (a *app) userIDFlag(fs *flag.FlagSet) *int64 {
	return fs.Int64("user-id", int64(a.cfg.DefaultUserID), "User ID")
}

// userID narrows a parsed --user-id to the stored int32 range
func userID(v int64) (int32, error) {
	if v < 1 || v > math.MaxInt32 {
		return 0, usagef("--user-id must be between 1 and %d", math.MaxInt32)
	}
	return int32(v), nil
}

func parseFlags(fs *flag.FlagSet, args []string, required ...string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return usagef("%v", err)
	}
	if fs.NArg() > 0 {
		return usagef("unexpected argument: %s", fs.Arg(0))
	}
	return checkRequired(fs, required)
}

// parseFlagsWithID parses a command taking one positional record ID, accepted before or after the flags
func parseFlagsWithID(fs *flag.FlagSet, args []string, name string) (int32, error) {
	var raw string
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		raw, args = args[0], args[1:]
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0, err
		}
		return 0, usagef("%v", err)
	}

	rest := fs.Args()
	if raw == "" && len(rest) > 0 {
		raw, rest = rest[0], rest[1:]
	}
	if len(rest) > 0 {
		return 0, usagef("unexpected argument: %s", rest[0])
	}
	if raw == "" {
		return 0, usagef("missing %s ID", name)
	}

	id, err := strconv.ParseInt(raw, 10, 32)
	if err != nil || id < 1 {
		return 0, usagef("invalid %s ID: %s", name, raw)
	}
	return int32(id), nil
}

func checkRequired(fs *flag.FlagSet, required []string) error {
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	for _, name := range required {
		if !set[name] {
			return usagef("missing required flag --%s", name)
		}
	}
	return nil
}

type reportKind int

const (
	reportMonthly reportKind = iota
	reportCategory
	reportAnnual
	reportBudgetStatus
)

func (a *app) reportCommand(ctx context.Context, kind reportKind, args []string) error {
	fs := a.newFlagSet("report")
	month := fs.Int("month", 0, "Month (1-12)")
	year := fs.Int("year", 0, "Year")
	formatType := fs.String("format", string(domain.ReportFormatText), "Output format (text or csv)")
	exportTo := fs.String("export", "", "Export target: file path or s3://bucket/key")
	rawUserID := a.userIDFlag(fs)

	required := []string{"month", "year"}
	if kind == reportAnnual {
		required = []string{"year"}
	}
	if err := parseFlags(fs, args, required...); err != nil {
		return err
	}
	uid, err := userID(*rawUserID)
	if err != nil {
		return err
	}

	reports := a.reportService(nil)

	var report *domain.Report
	switch kind {
	case reportMonthly:
		report, err = reports.BuildMonthlySummary(ctx, *month, *year, uid, *formatType)
	case reportCategory:
		report, err = reports.BuildCategoryComparison(ctx, *month, *year, uid, *formatType)
	case reportAnnual:
		report, err = reports.BuildAnnualSummary(ctx, *year, uid, *formatType)
	case reportBudgetStatus:
		report, err = reports.BuildBudgetStatus(ctx, *month, *year, uid, *formatType)
	}
	if err != nil {
		return err
	}

	if kind == reportBudgetStatus && len(report.DataRows()) == 0 {
		fmt.Fprintf(a.stdout, "No budgets found for %s.\n", format.MonthYear(*month, *year))
		return nil
	}

	content, err := reports.Render(report)
	if err != nil {
		return err
	}

	if *exportTo == "" {
		fmt.Fprint(a.stdout, content)
		return nil
	}
	return a.export(ctx, reports, report, content, *exportTo)
}

// export routes a report to a workbook, chart, object store or plain file based on the target
func (a *app) export(ctx context.Context, reports *service.ReportService, report *domain.Report, content, target string) error {
	var (
		ok  bool
		msg string
	)

	switch {
	case storage.IsLocation(target):
		bucket, key, err := storage.ParseLocation(target)
		if err != nil {
			return usagef("%v", err)
		}
		store, err := a.objectStore(ctx, bucket)
		if err != nil {
			return &exportError{msg: "Error saving report: " + err.Error()}
		}
		ok, msg = a.reportService(store).ExportReportToObjectStore(ctx, content, key)
	case strings.EqualFold(filepath.Ext(target), ".xlsx"):
		ok, msg = reports.ExportReportToWorkbook(report, target)
	case strings.EqualFold(filepath.Ext(target), ".png"):
		ok, msg = reports.ExportReportChart(report, target)
	default:
		ok, msg = reports.ExportReportToFile(content, target)
	}

	if !ok {
		return &exportError{msg: msg}
	}
	fmt.Fprintln(a.stdout, msg)
	return nil
}

func (a *app) reportService(store domain.ReportObjectStore) *service.ReportService {
	opts := []service.ReportServiceOption{
		service.WithCurrencySymbol(a.cfg.CurrencySymbol),
		service.WithLogger(a.logger),
	}
	if store != nil {
		opts = append(opts, service.WithObjectStore(store))
	}
	return service.NewReportService(a.expenses, a.budgets, opts...)
}

var errorColor = color.New(color.FgRed, color.Bold)

// printError writes "Error: msg" to w, in red unless color output is disabled
func printError(w io.Writer, msg string) {
	printMessage(w, "Error: "+msg)
}

func printMessage(w io.Writer, msg string) {
	errorColor.Fprintln(w, msg)
}
