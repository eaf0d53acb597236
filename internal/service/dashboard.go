package service

import (
	"context"
	"fmt"

	"github.com/atelierweb/atelier-api/internal/core"
	"github.com/atelierweb/atelier-api/internal/domain/model"
)

const (
	dashboardMonths         = 6
	dashboardRecentContacts = 5
)

// DashboardServiceOptions groups dependencies for DashboardService.
type DashboardServiceOptions struct {
	Contacts core.ContactRepository
}

// DashboardService assembles the admin dashboard from repository group-by
// queries. Each number comes from its own query; the dashboard tolerates the
// slight skew between them.
type DashboardService struct {
	contacts core.ContactRepository
}

// NewDashboardService constructs a new DashboardService.
func NewDashboardService(opts DashboardServiceOptions) *DashboardService {
	return &DashboardService{contacts: opts.Contacts}
}

// Stats gathers the aggregate dashboard numbers.
func (s *DashboardService) Stats(ctx context.Context) (*model.DashboardStats, error) {
	byStatus, err := s.contacts.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("count by status: %w", err)
	}

	byProject, err := s.contacts.CountByProject(ctx)
	if err != nil {
		return nil, fmt.Errorf("count by project: %w", err)
	}

	monthly, err := s.contacts.MonthlyIntake(ctx, dashboardMonths)
	if err != nil {
		return nil, fmt.Errorf("monthly intake: %w", err)
	}

	recent, err := s.contacts.List(ctx, model.ContactsListOptions{Limit: dashboardRecentContacts})
	if err != nil {
		return nil, fmt.Errorf("recent contacts: %w", err)
	}

	total := 0
	for _, count := range byStatus {
		total += count
	}

	return &model.DashboardStats{
		TotalContacts:  total,
		ByStatus:       byStatus,
		ByProject:      byProject,
		MonthlyIntake:  monthly,
		RecentContacts: recent,
	}, nil
}
