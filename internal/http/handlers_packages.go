package httpx

import (
	"errors"
	"net/http"

	"github.com/atelierweb/atelier-api/internal/data"
	"github.com/atelierweb/atelier-api/internal/service"
)

// PackageHandlers provides HTTP handlers for the public service catalog.
type PackageHandlers struct {
	Svc *service.CatalogService
}

// List handles GET /api/packages.
func (h *PackageHandlers) List(w http.ResponseWriter, r *http.Request) {
	packages, err := h.Svc.ListActive(r.Context())
	if err != nil {
		WriteDBError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, map[string]any{"packages": packages})
}

// GetBySlug handles GET /api/packages/{slug}.
func (h *PackageHandlers) GetBySlug(w http.ResponseWriter, r *http.Request) {
	pkg, err := h.Svc.GetBySlug(r.Context(), r.PathValue("slug"))
	if err != nil {
		if errors.Is(err, data.ErrPackageNotFound) {
			WriteError(w, ErrorParams{
				Code:    http.StatusNotFound,
				ErrCode: "not_found",
				Message: "Offre introuvable.",
			})
			return
		}
		WriteDBError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, pkg)
}
