package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"gams-bknd/internal/models"
	"gams-bknd/internal/services"
	"gams-bknd/internal/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AssetLifecycle is the slice of the asset service the handler needs;
// tests substitute a fake.
type AssetLifecycle interface {
	List(ctx context.Context, params models.AssetListParams) ([]models.GridAsset, error)
	Create(ctx context.Context, in models.AssetInput) (*models.GridAsset, error)
	Update(ctx context.Context, id uuid.UUID, patch map[string]any) (*models.GridAsset, error)
	Delete(ctx context.Context, id uuid.UUID, permanent bool) error
}

type AssetHandler struct {
	service AssetLifecycle
	logr    *zap.Logger
}

func NewAssetHandler(svc AssetLifecycle, logr *zap.Logger) *AssetHandler {
	return &AssetHandler{service: svc, logr: logr}
}

// GetGridAssets handles GET /grid-assets. Soft-deleted records are
// returned only when includeDeleted=true is passed explicitly.
func (h *AssetHandler) GetGridAssets(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	params := models.AssetListParams{
		IncludeDeleted: q.Get("includeDeleted") == "true",
		Types:          utils.ParseQueryList(q, "type"),
		Statuses:       utils.ParseQueryList(q, "status"),
	}

	assets, err := h.service.List(ctx, params)
	if err != nil {
		h.logr.Error("failed to fetch grid assets", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "Failed to fetch grid assets",
		})
		return
	}

	writeJSON(w, http.StatusOK, models.GridAssetsResponse{GridAssets: assets})
}

// CreateGridAsset handles POST /grid-assets.
func (h *AssetHandler) CreateGridAsset(w http.ResponseWriter, r *http.Request) {
	var in models.AssetInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}

	asset, err := h.service.Create(r.Context(), in)
	if err != nil {
		var vErr *services.ValidationError
		if errors.As(err, &vErr) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": vErr.Error()})
			return
		}
		h.logr.Error("failed to create grid asset", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "Failed to create grid asset",
		})
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"asset": asset})
}

// UpdateGridAsset handles PATCH /grid-assets. The body is the target
// id plus any subset of asset fields; restore is a patch with
// deleted=false.
func (h *AssetHandler) UpdateGridAsset(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}

	idStr, _ := body["id"].(string)
	id, err := uuid.Parse(idStr)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	delete(body, "id")

	asset, err := h.service.Update(r.Context(), id, body)
	if err != nil {
		h.respondMutationError(w, err, "Failed to update grid asset")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"asset": asset})
}

type deleteReq struct {
	ID        string `json:"id"`
	Permanent bool   `json:"permanent"`
}

// DeleteGridAsset handles DELETE /grid-assets: a soft delete by
// default, irreversible when permanent=true. The console confirms with
// the user before ever sending a permanent delete.
func (h *AssetHandler) DeleteGridAsset(w http.ResponseWriter, r *http.Request) {
	var req deleteReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}

	id, err := uuid.Parse(req.ID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	if err := h.service.Delete(r.Context(), id, req.Permanent); err != nil {
		h.respondMutationError(w, err, "Failed to delete grid asset")
		return
	}

	msg := "Grid asset soft deleted successfully"
	if req.Permanent {
		msg = "Grid asset permanently deleted successfully"
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": msg})
}

// respondMutationError maps service failures onto the boundary's error
// classes; store detail is logged here and never sent to the caller.
func (h *AssetHandler) respondMutationError(w http.ResponseWriter, err error, generic string) {
	var vErr *services.ValidationError
	switch {
	case errors.Is(err, services.ErrAssetNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Grid asset not found"})
	case errors.As(err, &vErr):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": vErr.Error()})
	default:
		h.logr.Error(generic, zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": generic})
	}
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data == nil {
		return
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(true)
	_ = enc.Encode(data)
}
