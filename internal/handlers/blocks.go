package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"centre-block/internal/models"
	"centre-block/internal/services"
	"centre-block/internal/utils"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BlockHandler stores block selections and renders published blocks.
type BlockHandler struct {
	store    services.BlockStore
	renderer *services.Renderer
	logr     *zap.Logger
}

func NewBlockHandler(store services.BlockStore, renderer *services.Renderer, logr *zap.Logger) *BlockHandler {
	return &BlockHandler{store: store, renderer: renderer, logr: logr}
}

// CreateBlock handles POST /awanui/v1/blocks. The body is optional.
func (h *BlockHandler) CreateBlock(w http.ResponseWriter, r *http.Request) {
	centreID, ok := h.decodeSelection(w, r, true)
	if !ok {
		return
	}

	block, err := h.store.CreateBlock(r.Context(), centreID)
	if err != nil {
		h.logr.Error("failed to create block", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "storage_error", "Failed to create block")
		return
	}

	h.logr.Info("block created", zap.String("block_id", block.ID.String()), zap.String("centre_id", centreID))
	writeJSON(w, http.StatusCreated, block)
}

// GetBlock handles GET /awanui/v1/blocks/{id}.
func (h *BlockHandler) GetBlock(w http.ResponseWriter, r *http.Request) {
	id, ok := parseBlockID(w, r)
	if !ok {
		return
	}

	block, err := h.store.GetBlock(r.Context(), id)
	if err != nil {
		h.writeStoreError(w, err, id)
		return
	}
	writeJSON(w, http.StatusOK, block)
}

// UpdateBlock handles PUT /awanui/v1/blocks/{id}.
func (h *BlockHandler) UpdateBlock(w http.ResponseWriter, r *http.Request) {
	id, ok := parseBlockID(w, r)
	if !ok {
		return
	}
	centreID, ok := h.decodeSelection(w, r, false)
	if !ok {
		return
	}

	block, err := h.store.SetSelection(r.Context(), id, centreID)
	if err != nil {
		h.writeStoreError(w, err, id)
		return
	}

	h.logr.Info("block selection updated", zap.String("block_id", id.String()), zap.String("centre_id", centreID))
	writeJSON(w, http.StatusOK, block)
}

// RenderBlock handles GET /blocks/{id}: the published fragment for a stored
// block. Storage problems get the same generic copy as upstream failures.
func (h *BlockHandler) RenderBlock(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeHTML(w, http.StatusNotFound, h.renderer.RenderError(services.NotFoundMessage))
		return
	}

	block, err := h.store.GetBlock(r.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrBlockNotFound) {
			writeHTML(w, http.StatusNotFound, h.renderer.RenderError(services.NotFoundMessage))
			return
		}
		h.logr.Error("failed to load block for render", zap.String("block_id", id.String()), zap.Error(err))
		writeHTML(w, http.StatusInternalServerError, h.renderer.RenderError(services.UnavailableMessage))
		return
	}

	writeHTML(w, http.StatusOK, h.renderer.RenderMarkup(r.Context(), block.CentreID))
}

// RenderSelection handles GET /awanui/v1/render?centreId=...
func (h *BlockHandler) RenderSelection(w http.ResponseWriter, r *http.Request) {
	writeHTML(w, http.StatusOK, h.renderer.RenderMarkup(r.Context(), r.URL.Query().Get("centreId")))
}

func (h *BlockHandler) decodeSelection(w http.ResponseWriter, r *http.Request, optional bool) (string, bool) {
	var req models.BlockSelectionRequest
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&req); err != nil {
		if optional && errors.Is(err, io.EOF) {
			return "", true
		}
		h.logr.Warn("failed to decode block selection", zap.Error(err))
		writeError(w, http.StatusBadRequest, "invalid_body", "Invalid request body")
		return "", false
	}

	switch req.CentreID.(type) {
	case nil, string, json.Number:
	default:
		writeError(w, http.StatusBadRequest, "invalid_centre_id", "centreId must be a string or number")
		return "", false
	}
	return utils.IDString(req.CentreID), true
}

func (h *BlockHandler) writeStoreError(w http.ResponseWriter, err error, id uuid.UUID) {
	if errors.Is(err, services.ErrBlockNotFound) {
		writeError(w, http.StatusNotFound, "not_found", "Block not found")
		return
	}
	h.logr.Error("block storage failed", zap.String("block_id", id.String()), zap.Error(err))
	writeError(w, http.StatusInternalServerError, "storage_error", "Failed to load block")
}

func parseBlockID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_id", "Invalid block id")
		return uuid.Nil, false
	}
	return id, true
}
