package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/atelierweb/atelier-api/internal/data"
	"github.com/atelierweb/atelier-api/internal/domain/model"
)

const defaultCommandTimeout = 30 * time.Second

type listContactsOptions struct {
	Timeout time.Duration
	Limit   int
	Offset  int
	Status  string
	Project string
	Query   string
}

type showContactOptions struct {
	Timeout time.Duration
	ID      string
}

type setContactStatusOptions struct {
	Timeout time.Duration
	ID      string
	Status  string
}

func runListContacts(cmdCtx *commandContext, args []string) error {
	opts, err := parseListContactsFlags(args)
	if err != nil {
		return err
	}

	listOpts := model.ContactsListOptions{
		Limit:  opts.Limit,
		Offset: opts.Offset,
	}
	if q := strings.TrimSpace(opts.Query); q != "" {
		listOpts.Q = &q
	}
	if opts.Status != "" {
		status, ok := model.ParseContactStatus(opts.Status)
		if !ok {
			return fmt.Errorf("unknown status %q", opts.Status)
		}
		listOpts.Status = &status
	}
	if opts.Project != "" {
		project := model.ProjectCategory(strings.ToLower(strings.TrimSpace(opts.Project)))
		if !project.Valid() {
			return fmt.Errorf("unknown project category %q", opts.Project)
		}
		listOpts.Project = &project
	}

	return withDatabase(cmdCtx, opts.Timeout, func(ctx context.Context, db *sql.DB) error {
		repo := data.NewContactRepo(db)
		contacts, listErr := repo.List(ctx, listOpts)
		if listErr != nil {
			return fmt.Errorf("list contacts: %w", listErr)
		}
		total, countErr := repo.Count(ctx, listOpts)
		if countErr != nil {
			return fmt.Errorf("count contacts: %w", countErr)
		}
		if printErr := printContactsTable(os.Stdout, contacts); printErr != nil {
			return printErr
		}
		return writef(os.Stdout, "\n%d of %d contact(s) shown\n", len(contacts), total)
	})
}

func runShowContact(cmdCtx *commandContext, args []string) error {
	opts, err := parseShowContactFlags(args)
	if err != nil {
		return err
	}

	return withDatabase(cmdCtx, opts.Timeout, func(ctx context.Context, db *sql.DB) error {
		contact, getErr := data.NewContactRepo(db).GetByID(ctx, opts.ID)
		if getErr != nil {
			if errors.Is(getErr, data.ErrContactNotFound) {
				return fmt.Errorf("no contact with id %q", opts.ID)
			}
			return fmt.Errorf("get contact: %w", getErr)
		}
		return printContactDetail(os.Stdout, contact)
	})
}

func runSetContactStatus(cmdCtx *commandContext, args []string) error {
	opts, err := parseSetContactStatusFlags(args)
	if err != nil {
		return err
	}

	status, ok := model.ParseContactStatus(opts.Status)
	if !ok {
		return fmt.Errorf("unknown status %q", opts.Status)
	}

	return withDatabase(cmdCtx, opts.Timeout, func(ctx context.Context, db *sql.DB) error {
		contact, updateErr := data.NewContactRepo(db).UpdateStatus(ctx, opts.ID, status)
		if updateErr != nil {
			switch {
			case errors.Is(updateErr, data.ErrContactNotFound):
				return fmt.Errorf("no contact with id %q", opts.ID)
			case errors.Is(updateErr, data.ErrInvalidStatusTransition):
				return fmt.Errorf("status change rejected: %w", updateErr)
			default:
				return fmt.Errorf("update contact status: %w", updateErr)
			}
		}
		return writef(os.Stdout, "contact %s moved to %s\n", contact.ID, contact.Status)
	})
}

func parseListContactsFlags(args []string) (listContactsOptions, error) {
	fs := flag.NewFlagSet("list-contacts", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	opts := listContactsOptions{
		Timeout: defaultCommandTimeout,
		Limit:   50,
	}

	fs.DurationVar(&opts.Timeout, "timeout", defaultCommandTimeout, "Maximum duration to wait for the query")
	fs.IntVar(&opts.Limit, "limit", 50, "Maximum number of contacts to show")
	fs.IntVar(&opts.Offset, "offset", 0, "Number of contacts to skip")
	fs.StringVar(&opts.Status, "status", "", "Filter by pipeline status (new, contacted, qualified, converted, closed)")
	fs.StringVar(&opts.Project, "project", "", "Filter by project category (vitrine, ecommerce, webapp, refonte, seo, autre)")
	fs.StringVar(&opts.Query, "q", "", "Filter by name, email, or company substring")

	if err := fs.Parse(args); err != nil {
		return listContactsOptions{}, err
	}

	if opts.Timeout <= 0 {
		return listContactsOptions{}, errors.New("--timeout must be greater than zero")
	}
	if opts.Limit <= 0 {
		return listContactsOptions{}, errors.New("--limit must be greater than zero")
	}
	if opts.Offset < 0 {
		return listContactsOptions{}, errors.New("--offset must not be negative")
	}

	return opts, nil
}

func parseShowContactFlags(args []string) (showContactOptions, error) {
	fs := flag.NewFlagSet("show-contact", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	opts := showContactOptions{
		Timeout: defaultCommandTimeout,
	}

	fs.DurationVar(&opts.Timeout, "timeout", defaultCommandTimeout, "Maximum duration to wait for the query")
	fs.StringVar(&opts.ID, "id", "", "Contact ID (required)")

	if err := fs.Parse(args); err != nil {
		return showContactOptions{}, err
	}

	if strings.TrimSpace(opts.ID) == "" {
		return showContactOptions{}, errors.New("--id is required")
	}
	if opts.Timeout <= 0 {
		return showContactOptions{}, errors.New("--timeout must be greater than zero")
	}

	return opts, nil
}

func parseSetContactStatusFlags(args []string) (setContactStatusOptions, error) {
	fs := flag.NewFlagSet("set-contact-status", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	opts := setContactStatusOptions{
		Timeout: defaultCommandTimeout,
	}

	fs.DurationVar(&opts.Timeout, "timeout", defaultCommandTimeout, "Maximum duration to wait for the update")
	fs.StringVar(&opts.ID, "id", "", "Contact ID (required)")
	fs.StringVar(&opts.Status, "status", "", "Target pipeline status (required)")

	if err := fs.Parse(args); err != nil {
		return setContactStatusOptions{}, err
	}

	if strings.TrimSpace(opts.ID) == "" {
		return setContactStatusOptions{}, errors.New("--id is required")
	}
	if strings.TrimSpace(opts.Status) == "" {
		return setContactStatusOptions{}, errors.New("--status is required")
	}
	if opts.Timeout <= 0 {
		return setContactStatusOptions{}, errors.New("--timeout must be greater than zero")
	}

	return opts, nil
}

func printContactsTable(w io.Writer, contacts []*model.Contact) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	if err := writef(tw, "ID\tNAME\tEMAIL\tPROJECT\tSTATUS\tCREATED\n"); err != nil {
		return err
	}
	for _, c := range contacts {
		if err := writef(
			tw,
			"%s\t%s\t%s\t%s\t%s\t%s\n",
			c.ID,
			c.Name,
			c.Email,
			c.Project,
			c.Status,
			c.CreatedAt.UTC().Format(time.RFC3339),
		); err != nil {
			return err
		}
	}
	return tw.Flush()
}

func printContactDetail(w io.Writer, c *model.Contact) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	rows := []struct {
		label string
		value string
	}{
		{"ID", c.ID},
		{"Name", c.Name},
		{"Email", c.Email},
		{"Phone", strOrDash(c.Phone)},
		{"Company", strOrDash(c.CompanyName)},
		{"Project", string(c.Project)},
		{"Budget", c.Budget},
		{"Timeline", strOrDash(c.Timeline)},
		{"Status", string(c.Status)},
		{"Source", c.Source},
		{"Created", c.CreatedAt.UTC().Format(time.RFC3339)},
		{"Updated", c.UpdatedAt.UTC().Format(time.RFC3339)},
	}
	for _, row := range rows {
		if err := writef(tw, "%s:\t%s\n", row.label, row.value); err != nil {
			return err
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	return writef(w, "\n%s\n", c.Message)
}

func strOrDash(s *string) string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return "-"
	}
	return *s
}
