package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/atelierweb/atelier-api/internal/data/pgxutil"
	"github.com/atelierweb/atelier-api/internal/domain/model"
)

// ErrPackageNotFound is returned when a service package is not found.
var ErrPackageNotFound = errors.New("service package not found")

// PackageRepo provides read access to the service packages shown on the
// public site. Packages are seeded by migration, so there is no write path.
type PackageRepo struct {
	DB *sql.DB
}

// NewPackageRepo creates a new PackageRepo.
func NewPackageRepo(db *sql.DB) *PackageRepo {
	return &PackageRepo{DB: db}
}

// ListActive retrieves every active package in display order.
func (r *PackageRepo) ListActive(ctx context.Context) ([]*model.ServicePackage, error) {
	var rowsOut []model.ServicePackage
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			SELECT `+packageColumnList+`
			FROM service_packages
			WHERE active = TRUE
			ORDER BY position ASC, name ASC`)
		if err != nil {
			return err
		}
		defer rows.Close()
		rowsOut, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.ServicePackage])
		return err
	}); err != nil {
		return nil, fmt.Errorf("failed to list service packages: %w", err)
	}

	res := make([]*model.ServicePackage, len(rowsOut))
	for i := range rowsOut {
		res[i] = &rowsOut[i]
	}
	return res, nil
}

// GetBySlug retrieves a package by its public slug.
func (r *PackageRepo) GetBySlug(ctx context.Context, slug string) (*model.ServicePackage, error) {
	var pkg model.ServicePackage
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			SELECT `+packageColumnList+`
			FROM service_packages
			WHERE slug = $1`, slug)
		if err != nil {
			return err
		}
		defer rows.Close()
		pkg, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.ServicePackage])
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPackageNotFound
		}
		return nil, fmt.Errorf("failed to get service package by slug: %w", err)
	}
	return &pkg, nil
}

const packageColumnList = `id, slug, name, description, price_cents, features, position, active, created_at`
