package service

import (
	"context"

	"github.com/atelierweb/atelier-api/internal/core"
	"github.com/atelierweb/atelier-api/internal/domain/model"
)

// ContactAdminServiceOptions groups dependencies for ContactAdminService.
type ContactAdminServiceOptions struct {
	Contacts core.ContactRepository
}

// ContactAdminService exposes the admin area's view of the contact pipeline.
type ContactAdminService struct {
	contacts core.ContactRepository
}

// NewContactAdminService constructs a new ContactAdminService.
func NewContactAdminService(opts ContactAdminServiceOptions) *ContactAdminService {
	return &ContactAdminService{contacts: opts.Contacts}
}

// ContactPage is one page of contacts with the unpaged total for pagination.
type ContactPage struct {
	Contacts []*model.Contact `json:"contacts"`
	Total    int              `json:"total"`
	Limit    int              `json:"limit"`
	Offset   int              `json:"offset"`
}

// List returns a filtered page of contacts plus the matching total.
func (s *ContactAdminService) List(ctx context.Context, opts model.ContactsListOptions) (*ContactPage, error) {
	if opts.Limit <= 0 || opts.Limit > 100 {
		opts.Limit = 20
	}
	if opts.Offset < 0 {
		opts.Offset = 0
	}

	contacts, err := s.contacts.List(ctx, opts)
	if err != nil {
		return nil, err
	}
	total, err := s.contacts.Count(ctx, opts)
	if err != nil {
		return nil, err
	}
	return &ContactPage{
		Contacts: contacts,
		Total:    total,
		Limit:    opts.Limit,
		Offset:   opts.Offset,
	}, nil
}

// GetByID retrieves a contact by ID.
func (s *ContactAdminService) GetByID(ctx context.Context, id string) (*model.Contact, error) {
	return s.contacts.GetByID(ctx, id)
}

// UpdateStatus moves a contact along the pipeline. Transition rules are
// enforced by the repository against the current stored status.
func (s *ContactAdminService) UpdateStatus(
	ctx context.Context,
	id string,
	target model.ContactStatus,
) (*model.Contact, error) {
	return s.contacts.UpdateStatus(ctx, id, target)
}

// Delete removes a contact entirely. Used for data-removal requests, not for
// pipeline management; closing a contact keeps the record.
func (s *ContactAdminService) Delete(ctx context.Context, id string) (bool, error) {
	return s.contacts.Delete(ctx, id)
}
