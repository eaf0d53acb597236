package httpx

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/atelierweb/atelier-api/internal/data"
	"github.com/atelierweb/atelier-api/internal/domain/model"
	"github.com/atelierweb/atelier-api/internal/mocks"
	"github.com/atelierweb/atelier-api/internal/service"
)

func newAdminHandlers(
	contacts *mocks.MockContactRepository,
	errorLog *mocks.MockErrorLogRepository,
) *AdminHandlers {
	return &AdminHandlers{
		Contacts:  service.NewContactAdminService(service.ContactAdminServiceOptions{Contacts: contacts}),
		Dashboard: service.NewDashboardService(service.DashboardServiceOptions{Contacts: contacts}),
		Errors:    service.NewErrorReporter(service.ErrorReporterOptions{Repo: errorLog}),
	}
}

func TestAdminListContacts_Filters(t *testing.T) {
	ctrl := gomock.NewController(t)
	contacts := mocks.NewMockContactRepository(ctrl)

	contacts.EXPECT().
		List(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, opts model.ContactsListOptions) ([]*model.Contact, error) {
			require.NotNil(t, opts.Status)
			assert.Equal(t, model.ContactStatusNew, *opts.Status)
			require.NotNil(t, opts.Q)
			assert.Equal(t, "dupont", *opts.Q)
			assert.Equal(t, 10, opts.Limit)
			return []*model.Contact{{ID: "c-1"}}, nil
		})
	contacts.EXPECT().Count(gomock.Any(), gomock.Any()).Return(1, nil)

	h := newAdminHandlers(contacts, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/admin/contacts?q=dupont&status=new&limit=10", nil)
	w := httptest.NewRecorder()
	h.ListContacts(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	env := decodeEnvelope(t, w)
	assert.True(t, env.Success)
	assert.EqualValues(t, 1, env.Data["total"])
}

func TestAdminListContacts_UnknownStatus(t *testing.T) {
	ctrl := gomock.NewController(t)
	contacts := mocks.NewMockContactRepository(ctrl)

	h := newAdminHandlers(contacts, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/admin/contacts?status=bogus", nil)
	w := httptest.NewRecorder()
	h.ListContacts(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	env := decodeEnvelope(t, w)
	require.NotNil(t, env.Error)
	assert.Equal(t, "validation_failed", env.Error.Code)
	assert.Contains(t, env.Error.Details, "status")
}

func TestAdminGetContact_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	contacts := mocks.NewMockContactRepository(ctrl)
	contacts.EXPECT().GetByID(gomock.Any(), "missing").Return(nil, data.ErrContactNotFound)

	h := newAdminHandlers(contacts, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/admin/contacts/missing", nil)
	req.SetPathValue("id", "missing")
	w := httptest.NewRecorder()
	h.GetContact(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	env := decodeEnvelope(t, w)
	require.NotNil(t, env.Error)
	assert.Equal(t, "not_found", env.Error.Code)
}

func TestAdminUpdateContactStatus(t *testing.T) {
	t.Run("valid transition", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		contacts := mocks.NewMockContactRepository(ctrl)
		contacts.EXPECT().
			UpdateStatus(gomock.Any(), "c-1", model.ContactStatusContacted).
			Return(&model.Contact{ID: "c-1", Status: model.ContactStatusContacted}, nil)

		h := newAdminHandlers(contacts, nil)
		req := httptest.NewRequest(http.MethodPatch, "/api/admin/contacts/c-1/status",
			strings.NewReader(`{"status":"contacted"}`))
		req.SetPathValue("id", "c-1")
		w := httptest.NewRecorder()
		h.UpdateContactStatus(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		env := decodeEnvelope(t, w)
		assert.True(t, env.Success)
		assert.Equal(t, "contacted", env.Data["status"])
	})

	t.Run("refused transition is a conflict", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		contacts := mocks.NewMockContactRepository(ctrl)
		contacts.EXPECT().
			UpdateStatus(gomock.Any(), "c-1", model.ContactStatusConverted).
			Return(nil, fmt.Errorf("%w: %q to %q", data.ErrInvalidStatusTransition, "new", "converted"))

		h := newAdminHandlers(contacts, nil)
		req := httptest.NewRequest(http.MethodPatch, "/api/admin/contacts/c-1/status",
			strings.NewReader(`{"status":"converted"}`))
		req.SetPathValue("id", "c-1")
		w := httptest.NewRecorder()
		h.UpdateContactStatus(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
		env := decodeEnvelope(t, w)
		require.NotNil(t, env.Error)
		assert.Equal(t, "invalid_transition", env.Error.Code)
	})

	t.Run("unknown status", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		contacts := mocks.NewMockContactRepository(ctrl)

		h := newAdminHandlers(contacts, nil)
		req := httptest.NewRequest(http.MethodPatch, "/api/admin/contacts/c-1/status",
			strings.NewReader(`{"status":"archived"}`))
		req.SetPathValue("id", "c-1")
		w := httptest.NewRecorder()
		h.UpdateContactStatus(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestAdminDeleteContact(t *testing.T) {
	ctrl := gomock.NewController(t)
	contacts := mocks.NewMockContactRepository(ctrl)
	contacts.EXPECT().Delete(gomock.Any(), "c-1").Return(true, nil)
	contacts.EXPECT().Delete(gomock.Any(), "missing").Return(false, nil)

	h := newAdminHandlers(contacts, nil)

	req := httptest.NewRequest(http.MethodDelete, "/api/admin/contacts/c-1", nil)
	req.SetPathValue("id", "c-1")
	w := httptest.NewRecorder()
	h.DeleteContact(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest(http.MethodDelete, "/api/admin/contacts/missing", nil)
	req.SetPathValue("id", "missing")
	w = httptest.NewRecorder()
	h.DeleteContact(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminDashboard(t *testing.T) {
	ctrl := gomock.NewController(t)
	contacts := mocks.NewMockContactRepository(ctrl)
	contacts.EXPECT().CountByStatus(gomock.Any()).
		Return(map[model.ContactStatus]int{model.ContactStatusNew: 3}, nil)
	contacts.EXPECT().CountByProject(gomock.Any()).
		Return(map[model.ProjectCategory]int{model.ProjectCategoryVitrine: 3}, nil)
	contacts.EXPECT().MonthlyIntake(gomock.Any(), gomock.Any()).
		Return([]model.MonthlyCount{{Month: "2026-08", Count: 3}}, nil)
	contacts.EXPECT().List(gomock.Any(), gomock.Any()).
		Return([]*model.Contact{{ID: "c-1"}}, nil)

	h := newAdminHandlers(contacts, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/admin/dashboard", nil)
	w := httptest.NewRecorder()
	h.GetDashboard(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	env := decodeEnvelope(t, w)
	assert.True(t, env.Success)
	assert.EqualValues(t, 3, env.Data["total_contacts"])
}

func TestAdminListErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	contacts := mocks.NewMockContactRepository(ctrl)
	errorLog := mocks.NewMockErrorLogRepository(ctrl)

	sevLow := model.ErrorSeverityLow
	errorLog.EXPECT().
		List(gomock.Any(), 20, 0, &sevLow).
		Return([]*model.ErrorEntry{{ID: "e-1", Code: "notification", Severity: sevLow}}, nil)

	h := newAdminHandlers(contacts, errorLog)
	req := httptest.NewRequest(http.MethodGet, "/api/admin/errors?severity=low", nil)
	w := httptest.NewRecorder()
	h.ListErrors(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	env := decodeEnvelope(t, w)
	assert.True(t, env.Success)
}

func TestAdminListErrors_UnknownSeverity(t *testing.T) {
	ctrl := gomock.NewController(t)
	h := newAdminHandlers(mocks.NewMockContactRepository(ctrl), mocks.NewMockErrorLogRepository(ctrl))

	req := httptest.NewRequest(http.MethodGet, "/api/admin/errors?severity=catastrophic", nil)
	w := httptest.NewRecorder()
	h.ListErrors(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminListContacts_RepoFailureIsOpaque(t *testing.T) {
	ctrl := gomock.NewController(t)
	contacts := mocks.NewMockContactRepository(ctrl)
	contacts.EXPECT().List(gomock.Any(), gomock.Any()).Return(nil, errors.New("pq: down"))

	h := newAdminHandlers(contacts, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/admin/contacts", nil)
	w := httptest.NewRecorder()
	h.ListContacts(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	env := decodeEnvelope(t, w)
	require.NotNil(t, env.Error)
	assert.NotContains(t, env.Error.Message, "pq:")
}
