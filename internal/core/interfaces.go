package core

import (
	"context"

	"github.com/atelierweb/atelier-api/internal/domain/model"
)

// This file contains repository interface definitions (ports in hexagonal architecture).
// These interfaces define the contracts between the service layer and data layer.
// Service implementations should depend on these interfaces, not concrete implementations.

// ContactRepository defines the interface for contact data operations.
type ContactRepository interface {
	Create(ctx context.Context, req *model.CreateContactRequest) (*model.Contact, error)
	GetByID(ctx context.Context, id string) (*model.Contact, error)
	List(ctx context.Context, opts model.ContactsListOptions) ([]*model.Contact, error)
	Count(ctx context.Context, opts model.ContactsListOptions) (int, error)
	UpdateStatus(ctx context.Context, id string, target model.ContactStatus) (*model.Contact, error)
	Delete(ctx context.Context, id string) (bool, error)
	CountByStatus(ctx context.Context) (map[model.ContactStatus]int, error)
	CountByProject(ctx context.Context) (map[model.ProjectCategory]int, error)
	MonthlyIntake(ctx context.Context, months int) ([]model.MonthlyCount, error)
}

// ErrorLogRepository defines the interface for operational error log operations.
type ErrorLogRepository interface {
	Create(ctx context.Context, req *model.CreateErrorEntryRequest) (*model.ErrorEntry, error)
	List(ctx context.Context, limit, offset int, severity *model.ErrorSeverity) ([]*model.ErrorEntry, error)
	PurgeOlderThan(ctx context.Context, days int) (int64, error)
}

// PackageRepository defines the read-only interface for service package data.
type PackageRepository interface {
	ListActive(ctx context.Context) ([]*model.ServicePackage, error)
	GetBySlug(ctx context.Context, slug string) (*model.ServicePackage, error)
}
