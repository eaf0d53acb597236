package httpx

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/atelierweb/atelier-api/internal/data"
	"github.com/atelierweb/atelier-api/internal/domain/model"
	"github.com/atelierweb/atelier-api/internal/service"
)

const (
	defaultAdminPageSize = 20
	maxAdminPageSize     = 100
)

// AdminHandlers provides HTTP handlers for the admin area: the contact
// pipeline, the dashboard, and the operational error log.
type AdminHandlers struct {
	Contacts  *service.ContactAdminService
	Dashboard *service.DashboardService
	Errors    *service.ErrorReporter
	Logger    *slog.Logger
}

func (h *AdminHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// ListContacts handles GET /api/admin/contacts.
// Query params: q, status, project, limit, offset.
func (h *AdminHandlers) ListContacts(w http.ResponseWriter, r *http.Request) {
	opts := model.ContactsListOptions{}
	opts.Limit, opts.Offset = ParseLimitOffset(r, defaultAdminPageSize, maxAdminPageSize)

	if q := r.URL.Query().Get("q"); q != "" {
		opts.Q = &q
	}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status, ok := model.ParseContactStatus(raw)
		if !ok {
			WriteError(w, ErrorParams{
				Code:    http.StatusBadRequest,
				ErrCode: "validation_failed",
				Message: "Statut inconnu.",
				Details: map[string]string{"status": "Statut inconnu : " + raw},
			})
			return
		}
		opts.Status = &status
	}
	if raw := r.URL.Query().Get("project"); raw != "" {
		project := model.ProjectCategory(raw)
		if !project.Valid() {
			WriteError(w, ErrorParams{
				Code:    http.StatusBadRequest,
				ErrCode: "validation_failed",
				Message: "Catégorie de projet inconnue.",
				Details: map[string]string{"project": "Catégorie inconnue : " + raw},
			})
			return
		}
		opts.Project = &project
	}

	page, err := h.Contacts.List(r.Context(), opts)
	if err != nil {
		h.writeInternalError(w, r, "list contacts", err)
		return
	}

	WriteSuccess(w, http.StatusOK, page)
}

// GetContact handles GET /api/admin/contacts/{id}.
func (h *AdminHandlers) GetContact(w http.ResponseWriter, r *http.Request) {
	contact, err := h.Contacts.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, data.ErrContactNotFound) {
			h.writeContactNotFound(w)
			return
		}
		h.writeInternalError(w, r, "get contact", err)
		return
	}

	WriteSuccess(w, http.StatusOK, contact)
}

// updateStatusRequest is the body of a status transition.
type updateStatusRequest struct {
	Status string `json:"status"`
}

// UpdateContactStatus handles PATCH /api/admin/contacts/{id}/status.
func (h *AdminHandlers) UpdateContactStatus(w http.ResponseWriter, r *http.Request) {
	var req updateStatusRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	status, ok := model.ParseContactStatus(req.Status)
	if !ok {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "validation_failed",
			Message: "Statut inconnu.",
			Details: map[string]string{"status": "Statut inconnu : " + req.Status},
		})
		return
	}

	contact, err := h.Contacts.UpdateStatus(r.Context(), r.PathValue("id"), status)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrContactNotFound):
			h.writeContactNotFound(w)
		case errors.Is(err, data.ErrInvalidStatusTransition):
			WriteError(w, ErrorParams{
				Code:    http.StatusConflict,
				ErrCode: "invalid_transition",
				Message: "Cette transition de statut n'est pas autorisée.",
			})
		default:
			h.writeInternalError(w, r, "update contact status", err)
		}
		return
	}

	WriteSuccess(w, http.StatusOK, contact)
}

// DeleteContact handles DELETE /api/admin/contacts/{id}. Deletion is for
// data-removal requests; pipeline management closes contacts instead.
func (h *AdminHandlers) DeleteContact(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.Contacts.Delete(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeInternalError(w, r, "delete contact", err)
		return
	}
	if !deleted {
		h.writeContactNotFound(w)
		return
	}

	WriteSuccess(w, http.StatusOK, map[string]bool{"deleted": true})
}

// GetDashboard handles GET /api/admin/dashboard.
func (h *AdminHandlers) GetDashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Dashboard.Stats(r.Context())
	if err != nil {
		h.writeInternalError(w, r, "dashboard stats", err)
		return
	}

	WriteSuccess(w, http.StatusOK, stats)
}

// ListErrors handles GET /api/admin/errors.
// Query params: severity, limit, offset.
func (h *AdminHandlers) ListErrors(w http.ResponseWriter, r *http.Request) {
	limit, offset := ParseLimitOffset(r, defaultAdminPageSize, maxAdminPageSize)

	var severity *model.ErrorSeverity
	if raw := r.URL.Query().Get("severity"); raw != "" {
		sev := model.ErrorSeverity(raw)
		if !sev.Valid() {
			WriteError(w, ErrorParams{
				Code:    http.StatusBadRequest,
				ErrCode: "validation_failed",
				Message: "Sévérité inconnue.",
				Details: map[string]string{"severity": "Sévérité inconnue : " + raw},
			})
			return
		}
		severity = &sev
	}

	entries, err := h.Errors.List(r.Context(), limit, offset, severity)
	if err != nil {
		h.writeInternalError(w, r, "list errors", err)
		return
	}

	WriteSuccess(w, http.StatusOK, map[string]any{
		"errors": entries,
		"limit":  limit,
		"offset": offset,
	})
}

func (h *AdminHandlers) writeContactNotFound(w http.ResponseWriter) {
	WriteError(w, ErrorParams{
		Code:    http.StatusNotFound,
		ErrCode: "not_found",
		Message: "Contact introuvable.",
	})
}

func (h *AdminHandlers) writeInternalError(w http.ResponseWriter, r *http.Request, op string, err error) {
	h.logger().ErrorContext(r.Context(), "admin request failed", "op", op, "error", err)
	WriteDBError(w, err)
}
