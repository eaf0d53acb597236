// Package mocks provides mock implementations for testing the atelier services.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for our repository interfaces.
// The mocks are generated using go:generate directives and provide a fluent API for setting up test expectations.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	defer ctrl.Finish()
//	mockRepo := mocks.NewMockContactRepository(ctrl)
//	mockRepo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(contact, nil)
package mocks

// Generate mock for ContactRepository interface from internal/core package.
// This creates MockContactRepository with methods for all ContactRepository interface methods:
// Create, GetByID, List, Count, UpdateStatus, Delete, CountByStatus, CountByProject, MonthlyIntake
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=contact_repository_mock.go github.com/atelierweb/atelier-api/internal/core ContactRepository

// Generate mock for ErrorLogRepository interface from internal/core package.
// This creates MockErrorLogRepository with methods for all ErrorLogRepository interface methods:
// Create, List, PurgeOlderThan
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=errorlog_repository_mock.go github.com/atelierweb/atelier-api/internal/core ErrorLogRepository

// Generate mock for PackageRepository interface from internal/core package.
// This creates MockPackageRepository with methods for all PackageRepository interface methods:
// ListActive, GetBySlug
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=package_repository_mock.go github.com/atelierweb/atelier-api/internal/core PackageRepository
