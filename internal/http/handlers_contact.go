// Package httpx provides the HTTP transport for the contact intake API and
// the admin area.
package httpx

import (
	"encoding/json"
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/atelierweb/atelier-api/internal/service"
)

// ContactHandlers provides HTTP handlers for contact-form submissions.
type ContactHandlers struct {
	Svc          *service.IntakeService
	Identity     ClientIdentity
	MaxBodyBytes int64
	Logger       *slog.Logger
}

func (h *ContactHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// contactPayload is the inbound submission shape. The same keys are accepted
// as JSON fields and as form fields; projectType is an alias kept for older
// form versions. company and website are decoy fields.
type contactPayload struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Project     string `json:"project"`
	ProjectType string `json:"projectType"`
	Budget      string `json:"budget"`
	Timeline    string `json:"timeline"`
	Message     string `json:"message"`
	CompanyName string `json:"company_name"`
	Company     string `json:"company"`
	Website     string `json:"website"`
}

// Submit handles POST /api/contact.
func (h *ContactHandlers) Submit(w http.ResponseWriter, r *http.Request) {
	if h.MaxBodyBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.MaxBodyBytes)
	}

	payload, ok := h.decodePayload(w, r)
	if !ok {
		return
	}

	project := payload.Project
	if project == "" {
		project = payload.ProjectType
	}

	result, err := h.Svc.Submit(r.Context(), service.Submission{
		Name:        payload.Name,
		Email:       payload.Email,
		Phone:       payload.Phone,
		CompanyName: payload.CompanyName,
		Project:     project,
		Budget:      payload.Budget,
		Timeline:    payload.Timeline,
		Message:     payload.Message,
		Decoys: map[string]string{
			"company": payload.Company,
			"website": payload.Website,
		},
		ClientKey: h.Identity.Key(r),
		IPAddress: h.Identity.IP(r),
		UserAgent: r.UserAgent(),
		Referrer:  r.Referer(),
	})
	if err != nil {
		h.writeSubmitError(w, r, err)
		return
	}

	id := ""
	if result.Contact != nil {
		id = result.Contact.ID
	} else {
		// A discarded submission still gets a plausible id so the response
		// never reveals the trap.
		id = uuid.New().String()
	}

	WriteSuccess(w, http.StatusCreated, map[string]string{
		"id":      id,
		"message": result.Message,
	})
}

// decodePayload reads the submission from a JSON body or a form-encoded body.
func (h *ContactHandlers) decodePayload(w http.ResponseWriter, r *http.Request) (contactPayload, bool) {
	contentType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	switch {
	case strings.HasPrefix(contentType, "multipart/"), contentType == "application/x-www-form-urlencoded":
		return h.decodeForm(w, r, contentType)
	default:
		return h.decodeJSONPayload(w, r)
	}
}

func (h *ContactHandlers) decodeJSONPayload(w http.ResponseWriter, r *http.Request) (contactPayload, bool) {
	var payload contactPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.writeDecodeError(w, err)
		return contactPayload{}, false
	}
	return payload, true
}

func (h *ContactHandlers) decodeForm(
	w http.ResponseWriter,
	r *http.Request,
	contentType string,
) (contactPayload, bool) {
	var err error
	if strings.HasPrefix(contentType, "multipart/") {
		err = r.ParseMultipartForm(h.MaxBodyBytes)
	} else {
		err = r.ParseForm()
	}
	if err != nil {
		h.writeDecodeError(w, err)
		return contactPayload{}, false
	}

	return contactPayload{
		Name:        r.PostFormValue("name"),
		Email:       r.PostFormValue("email"),
		Phone:       r.PostFormValue("phone"),
		Project:     r.PostFormValue("project"),
		ProjectType: r.PostFormValue("projectType"),
		Budget:      r.PostFormValue("budget"),
		Timeline:    r.PostFormValue("timeline"),
		Message:     r.PostFormValue("message"),
		CompanyName: r.PostFormValue("company_name"),
		Company:     r.PostFormValue("company"),
		Website:     r.PostFormValue("website"),
	}, true
}

func (h *ContactHandlers) writeDecodeError(w http.ResponseWriter, err error) {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		WriteError(w, ErrorParams{
			Code:    http.StatusRequestEntityTooLarge,
			ErrCode: "payload_too_large",
			Message: "La requête est trop volumineuse.",
		})
		return
	}
	WriteError(w, ErrorParams{
		Code:    http.StatusBadRequest,
		ErrCode: "invalid_payload",
		Message: "Requête invalide.",
	})
}

// writeSubmitError maps pipeline errors onto the response envelope. Internal
// error detail never reaches the submitter.
func (h *ContactHandlers) writeSubmitError(w http.ResponseWriter, r *http.Request, err error) {
	var rateErr *service.RateLimitedError
	if errors.As(err, &rateErr) {
		SetRateLimitHeaders(w, rateErr.Decision)
		WriteError(w, ErrorParams{
			Code:    http.StatusTooManyRequests,
			ErrCode: "rate_limited",
			Message: "Trop de demandes. Merci de patienter avant de réessayer.",
		})
		return
	}

	var validationErr *service.ValidationError
	if errors.As(err, &validationErr) {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "validation_failed",
			Message: "Certains champs sont invalides.",
			Details: validationErr.Details,
		})
		return
	}

	h.logger().ErrorContext(r.Context(), "contact submission failed", "error", err)
	WriteError(w, ErrorParams{
		Code:    http.StatusInternalServerError,
		ErrCode: "internal_error",
		Message: "Une erreur est survenue. Merci de réessayer plus tard.",
	})
}
