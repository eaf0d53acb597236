package service

import (
	"context"

	"github.com/atelierweb/atelier-api/internal/core"
	"github.com/atelierweb/atelier-api/internal/domain/model"
)

// CatalogService serves the public service-package read model.
type CatalogService struct {
	packages core.PackageRepository
}

// NewCatalogService constructs a new CatalogService.
func NewCatalogService(packages core.PackageRepository) *CatalogService {
	return &CatalogService{packages: packages}
}

// ListActive returns the active packages in display order.
func (s *CatalogService) ListActive(ctx context.Context) ([]*model.ServicePackage, error) {
	return s.packages.ListActive(ctx)
}

// GetBySlug returns one package by its slug.
func (s *CatalogService) GetBySlug(ctx context.Context, slug string) (*model.ServicePackage, error) {
	return s.packages.GetBySlug(ctx, slug)
}
