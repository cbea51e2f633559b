package handlers

import (
	"context"
	"errors"
	"net/http"

	"centre-block/internal/services"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// DirectorySource is the part of the directory client the proxy needs.
type DirectorySource interface {
	Fetch(ctx context.Context) (*services.Directory, error)
}

// CentreHandler proxies the upstream directory for the editor.
type CentreHandler struct {
	directory DirectorySource
	resolver  *services.Resolver
	logr      *zap.Logger
}

func NewCentreHandler(directory DirectorySource, resolver *services.Resolver, logr *zap.Logger) *CentreHandler {
	return &CentreHandler{directory: directory, resolver: resolver, logr: logr}
}

// ListCentres handles GET /awanui/v1/centres. The upstream array is passed
// through byte for byte.
func (h *CentreHandler) ListCentres(w http.ResponseWriter, r *http.Request) {
	dir, err := h.directory.Fetch(r.Context())
	if err != nil {
		h.writeDirectoryError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(dir.Raw)
}

// GetCentre handles GET /awanui/v1/centres/{id}.
func (h *CentreHandler) GetCentre(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	centre, err := h.resolver.Resolve(r.Context(), id, nil)
	switch {
	case errors.Is(err, services.ErrNoSelection):
		writeError(w, http.StatusBadRequest, "invalid_id", "A centre id is required")
		return
	case errors.Is(err, services.ErrCentreNotFound):
		writeError(w, http.StatusNotFound, "not_found", "Collection centre not found")
		return
	case err != nil:
		h.writeDirectoryError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, centre)
}

func (h *CentreHandler) writeDirectoryError(w http.ResponseWriter, err error) {
	h.logr.Error("failed to fetch collection centres", zap.Error(err))
	if services.IsFailureKind(err, services.InvalidResponse) {
		writeError(w, http.StatusInternalServerError, "json_error", "Invalid JSON response")
		return
	}
	writeError(w, http.StatusInternalServerError, "api_error", "Failed to fetch collection centres")
}
