package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/atelierweb/atelier-api/internal/data"
	"github.com/atelierweb/atelier-api/internal/domain/model"
)

type tailErrorsOptions struct {
	Timeout  time.Duration
	Limit    int
	Offset   int
	Severity string
}

type purgeErrorsOptions struct {
	Timeout time.Duration
	Days    int
	Yes     bool
	DryRun  bool
}

func runTailErrors(cmdCtx *commandContext, args []string) error {
	opts, err := parseTailErrorsFlags(args)
	if err != nil {
		return err
	}

	var severity *model.ErrorSeverity
	if opts.Severity != "" {
		sev := model.ErrorSeverity(strings.ToLower(strings.TrimSpace(opts.Severity)))
		if !sev.Valid() {
			return fmt.Errorf("unknown severity %q", opts.Severity)
		}
		severity = &sev
	}

	return withDatabase(cmdCtx, opts.Timeout, func(ctx context.Context, db *sql.DB) error {
		entries, listErr := data.NewErrorLogRepo(db).List(ctx, opts.Limit, opts.Offset, severity)
		if listErr != nil {
			return fmt.Errorf("list error entries: %w", listErr)
		}
		if printErr := printErrorEntriesTable(os.Stdout, entries); printErr != nil {
			return printErr
		}
		return writef(os.Stdout, "\n%d entry(ies) shown\n", len(entries))
	})
}

func runPurgeErrors(cmdCtx *commandContext, args []string) error {
	opts, err := parsePurgeErrorsFlags(args)
	if err != nil {
		return err
	}

	target := fmt.Sprintf(
		"error log entries older than %d day(s) in database %q",
		opts.Days,
		cmdCtx.Config.Postgres.Name,
	)
	if confirmErr := confirmAction(confirmOptions{
		yes:    opts.Yes,
		dryRun: opts.DryRun,
		target: target,
	}, "purge"); confirmErr != nil {
		return confirmErr
	}

	return withDatabase(cmdCtx, opts.Timeout, func(ctx context.Context, db *sql.DB) error {
		if opts.DryRun {
			cutoff := time.Now().UTC().AddDate(0, 0, -opts.Days)
			return writef(
				os.Stdout,
				"dry run: would delete error entries created before %s\n",
				cutoff.Format(time.RFC3339),
			)
		}

		deleted, purgeErr := data.NewErrorLogRepo(db).PurgeOlderThan(ctx, opts.Days)
		if purgeErr != nil {
			return fmt.Errorf("purge error entries: %w", purgeErr)
		}
		return writef(os.Stdout, "deleted %d error entry(ies)\n", deleted)
	})
}

func parseTailErrorsFlags(args []string) (tailErrorsOptions, error) {
	fs := flag.NewFlagSet("tail-errors", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	opts := tailErrorsOptions{
		Timeout: defaultCommandTimeout,
		Limit:   20,
	}

	fs.DurationVar(&opts.Timeout, "timeout", defaultCommandTimeout, "Maximum duration to wait for the query")
	fs.IntVar(&opts.Limit, "limit", 20, "Maximum number of entries to show")
	fs.IntVar(&opts.Offset, "offset", 0, "Number of entries to skip")
	fs.StringVar(&opts.Severity, "severity", "", "Filter by severity (low, medium, high)")

	if err := fs.Parse(args); err != nil {
		return tailErrorsOptions{}, err
	}

	if opts.Timeout <= 0 {
		return tailErrorsOptions{}, errors.New("--timeout must be greater than zero")
	}
	if opts.Limit <= 0 {
		return tailErrorsOptions{}, errors.New("--limit must be greater than zero")
	}
	if opts.Offset < 0 {
		return tailErrorsOptions{}, errors.New("--offset must not be negative")
	}

	return opts, nil
}

func parsePurgeErrorsFlags(args []string) (purgeErrorsOptions, error) {
	fs := flag.NewFlagSet("purge-errors", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	opts := purgeErrorsOptions{
		Timeout: defaultCommandTimeout,
		Days:    90,
	}

	fs.DurationVar(&opts.Timeout, "timeout", defaultCommandTimeout, "Maximum duration to wait for the purge")
	fs.IntVar(&opts.Days, "days", 90, "Retention window in days; older entries are deleted")
	fs.BoolVar(&opts.Yes, "yes", false, "Skip confirmation prompt")
	fs.BoolVar(&opts.DryRun, "dry-run", false, "Report what would be deleted without deleting")

	if err := fs.Parse(args); err != nil {
		return purgeErrorsOptions{}, err
	}

	if opts.Timeout <= 0 {
		return purgeErrorsOptions{}, errors.New("--timeout must be greater than zero")
	}
	if opts.Days <= 0 {
		return purgeErrorsOptions{}, errors.New("--days must be greater than zero")
	}

	return opts, nil
}

func printErrorEntriesTable(w io.Writer, entries []*model.ErrorEntry) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	if err := writef(tw, "CREATED\tSEVERITY\tCODE\tMESSAGE\tDETAILS\n"); err != nil {
		return err
	}
	for _, entry := range entries {
		if err := writef(
			tw,
			"%s\t%s\t%s\t%s\t%s\n",
			entry.CreatedAt.UTC().Format(time.RFC3339),
			entry.Severity,
			entry.Code,
			truncate(entry.Message, 60),
			formatDetails(entry.Details),
		); err != nil {
			return err
		}
	}
	return tw.Flush()
}

func formatDetails(details map[string]string) string {
	if len(details) == 0 {
		return "-"
	}
	keys := make([]string, 0, len(details))
	for k := range details {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+details[k])
	}
	return strings.Join(parts, " ")
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}
