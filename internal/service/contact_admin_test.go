package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/atelierweb/atelier-api/internal/domain/model"
	"github.com/atelierweb/atelier-api/internal/mocks"
)

func TestContactAdminService_List_ClampsPaging(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ctx := context.Background()
	contacts := mocks.NewMockContactRepository(ctrl)

	expectedOpts := model.ContactsListOptions{Limit: 20, Offset: 0}
	contacts.EXPECT().List(ctx, expectedOpts).Return([]*model.Contact{{ID: "c-1"}}, nil)
	contacts.EXPECT().Count(ctx, expectedOpts).Return(42, nil)

	svc := NewContactAdminService(ContactAdminServiceOptions{Contacts: contacts})

	page, err := svc.List(ctx, model.ContactsListOptions{Limit: 500, Offset: -3})
	require.NoError(t, err)
	assert.Len(t, page.Contacts, 1)
	assert.Equal(t, 42, page.Total)
	assert.Equal(t, 20, page.Limit)
	assert.Equal(t, 0, page.Offset)
}

func TestContactAdminService_List_PassesFilters(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ctx := context.Background()
	contacts := mocks.NewMockContactRepository(ctrl)

	status := model.ContactStatusNew
	q := "marie"
	opts := model.ContactsListOptions{Limit: 10, Offset: 20, Q: &q, Status: &status}

	contacts.EXPECT().List(ctx, opts).Return(nil, nil)
	contacts.EXPECT().Count(ctx, opts).Return(0, nil)

	svc := NewContactAdminService(ContactAdminServiceOptions{Contacts: contacts})

	page, err := svc.List(ctx, opts)
	require.NoError(t, err)
	assert.Equal(t, 0, page.Total)
}

func TestContactAdminService_UpdateStatus(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ctx := context.Background()
	contacts := mocks.NewMockContactRepository(ctrl)
	contacts.EXPECT().
		UpdateStatus(ctx, "c-1", model.ContactStatusContacted).
		Return(&model.Contact{ID: "c-1", Status: model.ContactStatusContacted}, nil)

	svc := NewContactAdminService(ContactAdminServiceOptions{Contacts: contacts})

	got, err := svc.UpdateStatus(ctx, "c-1", model.ContactStatusContacted)
	require.NoError(t, err)
	assert.Equal(t, model.ContactStatusContacted, got.Status)
}

func TestContactAdminService_GetByID_PropagatesError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ctx := context.Background()
	contacts := mocks.NewMockContactRepository(ctrl)
	contacts.EXPECT().GetByID(ctx, "missing").Return(nil, errors.New("contact not found"))

	svc := NewContactAdminService(ContactAdminServiceOptions{Contacts: contacts})

	_, err := svc.GetByID(ctx, "missing")
	require.Error(t, err)
}
