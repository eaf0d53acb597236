package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/atelierweb/atelier-api/internal/domain/model"
	"github.com/atelierweb/atelier-api/internal/data/pgxutil"
)

// ErrorLogRepo provides database operations for the operational error log.
type ErrorLogRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewErrorLogRepo creates a new ErrorLogRepo with real time provider.
func NewErrorLogRepo(db *sql.DB) *ErrorLogRepo {
	return &ErrorLogRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

// NewErrorLogRepoWithTimeProvider creates a new ErrorLogRepo with a custom time provider.
func NewErrorLogRepoWithTimeProvider(db *sql.DB, tp TimeProvider) *ErrorLogRepo {
	return &ErrorLogRepo{DB: db, timeProvider: tp}
}

// Create inserts a new error log entry.
func (r *ErrorLogRepo) Create(ctx context.Context, req *model.CreateErrorEntryRequest) (*model.ErrorEntry, error) {
	if req == nil {
		return nil, errors.New("create error entry request is required")
	}
	if strings.TrimSpace(req.Message) == "" {
		return nil, errors.New("error entry message is required")
	}

	code := strings.TrimSpace(req.Code)
	if code == "" {
		code = "internal"
	}
	severity := req.Severity
	if !severity.Valid() {
		severity = model.ErrorSeverityLow
	}

	var out model.ErrorEntry
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			INSERT INTO error_log (
				code, message, severity, details, user_agent, ip_address, referrer, created_at
			) VALUES (
				$1, $2, $3, $4, $5, $6, $7, $8
			) RETURNING `+errorLogColumnList,
			code,
			req.Message,
			severity,
			req.Details,
			req.UserAgent,
			req.IPAddress,
			req.Referrer,
			r.timeProvider.Now().UTC(),
		)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.ErrorEntry])
		return err
	}); err != nil {
		return nil, fmt.Errorf("failed to create error entry: %w", err)
	}
	return &out, nil
}

// List retrieves the newest error entries first, optionally filtered by severity.
func (r *ErrorLogRepo) List(ctx context.Context, limit, offset int, severity *model.ErrorSeverity) ([]*model.ErrorEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	offset = max(offset, 0)

	query := `
		SELECT ` + errorLogColumnList + `
		FROM error_log`
	args := []any{}
	if severity != nil && severity.Valid() {
		query += ` WHERE severity = $1`
		args = append(args, *severity)
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	var rowsOut []model.ErrorEntry
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		rowsOut, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.ErrorEntry])
		return err
	}); err != nil {
		return nil, fmt.Errorf("failed to list error entries: %w", err)
	}

	res := make([]*model.ErrorEntry, len(rowsOut))
	for i := range rowsOut {
		res[i] = &rowsOut[i]
	}
	return res, nil
}

// PurgeOlderThan removes entries older than the given number of days and
// returns the number of rows dropped.
func (r *ErrorLogRepo) PurgeOlderThan(ctx context.Context, days int) (int64, error) {
	if days <= 0 {
		return 0, errors.New("retention days must be positive")
	}

	var rows int64
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		ct, err := conn.Exec(ctx,
			`DELETE FROM error_log WHERE created_at < now() - $1 * INTERVAL '1 day'`, days)
		if err != nil {
			return err
		}
		rows = ct.RowsAffected()
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to purge error entries: %w", err)
	}
	return rows, nil
}

const errorLogColumnList = `id, code, message, severity, details, user_agent, ip_address, referrer, created_at`
