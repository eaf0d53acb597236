package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/atelierweb/atelier-api/internal/data/database"
	"github.com/atelierweb/atelier-api/internal/data/pgxutil"
	"github.com/atelierweb/atelier-api/internal/domain/model"
)

// ErrContactNotFound is returned when a contact is not found.
var ErrContactNotFound = errors.New("contact not found")

// ErrInvalidStatusTransition is returned when the pipeline does not allow
// moving a contact from its current status to the requested one.
var ErrInvalidStatusTransition = errors.New("invalid contact status transition")

// Sort directions accepted by the query builder.
const (
	sortDirAsc  = "ASC"
	sortDirDesc = "DESC"
)

// ContactRepo provides database operations for contact-form submissions.
type ContactRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewContactRepo creates a new ContactRepo with real time provider.
func NewContactRepo(db *sql.DB) *ContactRepo {
	return &ContactRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

// NewContactRepoWithTimeProvider creates a new ContactRepo with a custom time provider (useful for tests).
func NewContactRepoWithTimeProvider(db *sql.DB, tp TimeProvider) *ContactRepo {
	return &ContactRepo{DB: db, timeProvider: tp}
}

// Create inserts a new contact. New contacts always enter the pipeline with
// status "new".
func (r *ContactRepo) Create(ctx context.Context, req *model.CreateContactRequest) (*model.Contact, error) {
	if req == nil {
		return nil, errors.New("create contact request is required")
	}

	if err := req.Validate(); err != nil {
		return nil, err
	}

	source := strings.TrimSpace(req.Source)
	if source == "" {
		source = "site-vitrine"
	}

	createdAt := r.timeProvider.Now().UTC()
	var out model.Contact
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			INSERT INTO contacts (
				name, email, phone, company_name, project, budget, budget_amount,
				timeline, message, status, source, ip_address, user_agent, referrer,
				created_at, updated_at
			) VALUES (
				$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $15
			) RETURNING `+contactColumnList,
			req.Name,
			req.Email,
			req.Phone,
			req.CompanyName,
			req.Project,
			req.Budget,
			req.BudgetAmount,
			req.Timeline,
			req.Message,
			model.ContactStatusNew,
			source,
			req.IPAddress,
			req.UserAgent,
			req.Referrer,
			createdAt,
		)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Contact])
		return err
	}); err != nil {
		return nil, fmt.Errorf("failed to create contact: %w", err)
	}
	return &out, nil
}

// GetByID retrieves a contact by ID.
func (r *ContactRepo) GetByID(ctx context.Context, id string) (*model.Contact, error) {
	var contact model.Contact
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, contactGetByIDQuery, id)
		if err != nil {
			return err
		}
		defer rows.Close()
		contact, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Contact])
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrContactNotFound
		}
		return nil, fmt.Errorf("failed to get contact by ID: %w", err)
	}
	return &contact, nil
}

// List retrieves contacts with optional filters, newest first.
func (r *ContactRepo) List(ctx context.Context, opts model.ContactsListOptions) ([]*model.Contact, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := max(opts.Offset, 0)

	query, args := database.BuildListQuery(r.buildContactQueryOptions(opts, limit, offset))

	var rowsOut []model.Contact
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		rowsOut, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.Contact])
		return err
	}); err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}

	res := make([]*model.Contact, len(rowsOut))
	for i := range rowsOut {
		res[i] = &rowsOut[i]
	}
	return res, nil
}

// Count returns the number of contacts matching the given filters.
func (r *ContactRepo) Count(ctx context.Context, opts model.ContactsListOptions) (int, error) {
	queryOpts := append(
		[]database.ListQueryOption{database.WithCountOnly()},
		contactFilterOptions(opts)...,
	)
	query, args := database.BuildListQuery(database.NewListQueryOptions("contacts", queryOpts...))

	var count int
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		return conn.QueryRow(ctx, query, args...).Scan(&count)
	}); err != nil {
		return 0, fmt.Errorf("failed to count contacts: %w", err)
	}
	return count, nil
}

// UpdateStatus moves a contact to a new pipeline status. The transition is
// checked against the current status inside the repository so concurrent
// updates cannot skip pipeline stages.
func (r *ContactRepo) UpdateStatus(ctx context.Context, id string, target model.ContactStatus) (*model.Contact, error) {
	if !target.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidStatusTransition, target)
	}

	current, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !current.Status.CanTransitionTo(target) {
		return nil, fmt.Errorf("%w: %q to %q", ErrInvalidStatusTransition, current.Status, target)
	}

	var out model.Contact
	err = pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, qerr := conn.Query(ctx, `
			UPDATE contacts
			SET status = $1, updated_at = $2
			WHERE id = $3 AND status = $4
			RETURNING `+contactColumnList,
			target,
			r.timeProvider.Now().UTC(),
			id,
			current.Status,
		)
		if qerr != nil {
			return qerr
		}
		defer rows.Close()
		var e error
		out, e = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Contact])
		return e
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Row changed under us between the read and the update.
			return nil, fmt.Errorf("contact status changed concurrently, retry")
		}
		return nil, fmt.Errorf("failed to update contact status: %w", err)
	}
	return &out, nil
}

// Delete deletes a contact by ID.
func (r *ContactRepo) Delete(ctx context.Context, id string) (bool, error) {
	var rows int64
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		ct, err := conn.Exec(ctx, `DELETE FROM contacts WHERE id = $1`, id)
		if err != nil {
			return err
		}
		rows = ct.RowsAffected()
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to delete contact: %w", err)
	}
	return rows > 0, nil
}

// CountByStatus returns intake volume grouped by pipeline status.
func (r *ContactRepo) CountByStatus(ctx context.Context) (map[model.ContactStatus]int, error) {
	out := make(map[model.ContactStatus]int)
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `SELECT status, COUNT(*) FROM contacts GROUP BY status`)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var status model.ContactStatus
			var count int
			if scanErr := rows.Scan(&status, &count); scanErr != nil {
				return scanErr
			}
			out[status] = count
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("failed to count contacts by status: %w", err)
	}
	return out, nil
}

// CountByProject returns intake volume grouped by project category.
func (r *ContactRepo) CountByProject(ctx context.Context) (map[model.ProjectCategory]int, error) {
	out := make(map[model.ProjectCategory]int)
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `SELECT project, COUNT(*) FROM contacts GROUP BY project`)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var project model.ProjectCategory
			var count int
			if scanErr := rows.Scan(&project, &count); scanErr != nil {
				return scanErr
			}
			out[project] = count
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("failed to count contacts by project: %w", err)
	}
	return out, nil
}

// MonthlyIntake returns per-month submission counts for the last `months`
// months, oldest first. Months with no submissions are omitted.
func (r *ContactRepo) MonthlyIntake(ctx context.Context, months int) ([]model.MonthlyCount, error) {
	if months <= 0 {
		months = 12
	}

	var out []model.MonthlyCount
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			SELECT to_char(date_trunc('month', created_at), 'YYYY-MM') AS month,
			       COUNT(*)::int AS count
			FROM contacts
			WHERE created_at >= date_trunc('month', now()) - ($1 - 1) * INTERVAL '1 month'
			GROUP BY 1
			ORDER BY 1`,
			months,
		)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.MonthlyCount])
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate monthly intake: %w", err)
	}
	return out, nil
}

// --- helpers ---

const contactColumnList = `id, name, email, phone, company_name, project, budget, budget_amount,
		timeline, message, status, source, ip_address, user_agent, referrer, created_at, updated_at`

const contactGetByIDQuery = `
		SELECT ` + contactColumnList + `
		FROM contacts
		WHERE id = $1`

// contactColumns returns the standard column list for contact queries.
func contactColumns() []string {
	return []string{
		"id",
		"name",
		"email",
		"phone",
		"company_name",
		"project",
		"budget",
		"budget_amount",
		"timeline",
		"message",
		"status",
		"source",
		"ip_address",
		"user_agent",
		"referrer",
		"created_at",
		"updated_at",
	}
}

// buildContactQueryOptions builds query options for contact listing with filters.
func (r *ContactRepo) buildContactQueryOptions(
	opts model.ContactsListOptions,
	limit, offset int,
) *database.ListQueryOptions {
	queryOpts := []database.ListQueryOption{
		database.WithColumns(contactColumns()...),
		database.WithLimit(limit),
		database.WithOffset(offset),
	}
	queryOpts = append(queryOpts, contactFilterOptions(opts)...)
	queryOpts = append(queryOpts, database.WithOrderBy("created_at", sortDirDesc))

	return database.NewListQueryOptions("contacts", queryOpts...)
}

// contactFilterOptions converts list options into WHERE conditions shared by
// List and Count.
func contactFilterOptions(opts model.ContactsListOptions) []database.ListQueryOption {
	var queryOpts []database.ListQueryOption

	if opts.Q != nil && strings.TrimSpace(*opts.Q) != "" {
		needle := "%" + strings.TrimSpace(*opts.Q) + "%"
		queryOpts = append(queryOpts, database.WithCondition(
			database.WhereRawCond("(name ILIKE $1 OR email ILIKE $1)", needle),
		))
	}
	if opts.Status != nil && *opts.Status != "" {
		queryOpts = append(queryOpts, database.WithCondition(
			database.WhereCond("status", database.Equal, *opts.Status),
		))
	}
	if opts.Project != nil && *opts.Project != "" {
		queryOpts = append(queryOpts, database.WithCondition(
			database.WhereCond("project", database.Equal, *opts.Project),
		))
	}
	return queryOpts
}
