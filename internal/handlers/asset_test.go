package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"gams-bknd/internal/models"
	"gams-bknd/internal/services"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeLifecycle struct {
	assets    []models.GridAsset
	listErr   error
	createErr error
	updateErr error
	deleteErr error

	lastParams models.AssetListParams
	lastPatch  map[string]any
	deletedID  uuid.UUID
	permanent  bool
}

func (f *fakeLifecycle) List(ctx context.Context, params models.AssetListParams) ([]models.GridAsset, error) {
	f.lastParams = params
	return f.assets, f.listErr
}

func (f *fakeLifecycle) Create(ctx context.Context, in models.AssetInput) (*models.GridAsset, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &models.GridAsset{ID: uuid.New(), Name: in.Name, Type: in.Type, Address: in.Address, Voltage: in.Voltage}, nil
}

func (f *fakeLifecycle) Update(ctx context.Context, id uuid.UUID, patch map[string]any) (*models.GridAsset, error) {
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	f.lastPatch = patch
	return &models.GridAsset{ID: id}, nil
}

func (f *fakeLifecycle) Delete(ctx context.Context, id uuid.UUID, permanent bool) error {
	f.deletedID = id
	f.permanent = permanent
	return f.deleteErr
}

func newHandler(f *fakeLifecycle) *AssetHandler {
	return NewAssetHandler(f, zap.NewNop())
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestGetGridAssets(t *testing.T) {
	t.Run("defaults to active assets only", func(t *testing.T) {
		fake := &fakeLifecycle{assets: []models.GridAsset{{ID: uuid.New(), Name: "North SS"}}}
		h := newHandler(fake)

		rec := httptest.NewRecorder()
		h.GetGridAssets(rec, httptest.NewRequest("GET", "/grid-assets", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.False(t, fake.lastParams.IncludeDeleted)
		body := decodeBody(t, rec)
		assert.Len(t, body["gridAssets"], 1)
	})

	t.Run("includeDeleted=true lifts the visibility rule", func(t *testing.T) {
		fake := &fakeLifecycle{}
		h := newHandler(fake)

		rec := httptest.NewRecorder()
		h.GetGridAssets(rec, httptest.NewRequest("GET", "/grid-assets?includeDeleted=true", nil))

		assert.True(t, fake.lastParams.IncludeDeleted)
	})

	t.Run("csv filters are parsed", func(t *testing.T) {
		fake := &fakeLifecycle{}
		h := newHandler(fake)

		rec := httptest.NewRecorder()
		h.GetGridAssets(rec, httptest.NewRequest("GET", "/grid-assets?type=substation,plant&status=normal", nil))

		assert.Equal(t, []string{"substation", "plant"}, fake.lastParams.Types)
		assert.Equal(t, []string{"normal"}, fake.lastParams.Statuses)
	})

	t.Run("store failure yields a generic message", func(t *testing.T) {
		fake := &fakeLifecycle{listErr: fmt.Errorf("pg down")}
		h := newHandler(fake)

		rec := httptest.NewRecorder()
		h.GetGridAssets(rec, httptest.NewRequest("GET", "/grid-assets", nil))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "Failed to fetch grid assets", decodeBody(t, rec)["error"])
		assert.NotContains(t, rec.Body.String(), "pg down")
	})
}

func TestCreateGridAsset(t *testing.T) {
	t.Run("returns 201 with the persisted asset", func(t *testing.T) {
		h := newHandler(&fakeLifecycle{})

		payload, _ := json.Marshal(models.AssetInput{Type: "substation", Address: "Mekelle", Voltage: 33})
		rec := httptest.NewRecorder()
		h.CreateGridAsset(rec, httptest.NewRequest("POST", "/grid-assets", bytes.NewReader(payload)))

		assert.Equal(t, http.StatusCreated, rec.Code)
		body := decodeBody(t, rec)
		require.Contains(t, body, "asset")
	})

	t.Run("validation failure is a 400", func(t *testing.T) {
		fake := &fakeLifecycle{createErr: &services.ValidationError{Fields: map[string]string{"type": "Type is required."}}}
		h := newHandler(fake)

		rec := httptest.NewRecorder()
		h.CreateGridAsset(rec, httptest.NewRequest("POST", "/grid-assets", bytes.NewReader([]byte(`{}`))))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("malformed body is a 400", func(t *testing.T) {
		h := newHandler(&fakeLifecycle{})

		rec := httptest.NewRecorder()
		h.CreateGridAsset(rec, httptest.NewRequest("POST", "/grid-assets", bytes.NewReader([]byte(`{`))))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestUpdateGridAsset(t *testing.T) {
	t.Run("patch reaches the service without the id", func(t *testing.T) {
		fake := &fakeLifecycle{}
		h := newHandler(fake)

		id := uuid.New()
		payload := fmt.Sprintf(`{"id":%q,"deleted":false,"name":"Renamed"}`, id)
		rec := httptest.NewRecorder()
		h.UpdateGridAsset(rec, httptest.NewRequest("PATCH", "/grid-assets", bytes.NewReader([]byte(payload))))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.NotContains(t, fake.lastPatch, "id")
		assert.Equal(t, false, fake.lastPatch["deleted"])
	})

	t.Run("unknown id is a 404", func(t *testing.T) {
		fake := &fakeLifecycle{updateErr: services.ErrAssetNotFound}
		h := newHandler(fake)

		payload := fmt.Sprintf(`{"id":%q}`, uuid.New())
		rec := httptest.NewRecorder()
		h.UpdateGridAsset(rec, httptest.NewRequest("PATCH", "/grid-assets", bytes.NewReader([]byte(payload))))

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "Grid asset not found", decodeBody(t, rec)["error"])
	})

	t.Run("unparseable id is a 400", func(t *testing.T) {
		h := newHandler(&fakeLifecycle{})

		rec := httptest.NewRecorder()
		h.UpdateGridAsset(rec, httptest.NewRequest("PATCH", "/grid-assets", bytes.NewReader([]byte(`{"id":"nope"}`))))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestDeleteGridAsset(t *testing.T) {
	t.Run("soft delete by default with its own message", func(t *testing.T) {
		fake := &fakeLifecycle{}
		h := newHandler(fake)

		id := uuid.New()
		payload := fmt.Sprintf(`{"id":%q}`, id)
		rec := httptest.NewRecorder()
		h.DeleteGridAsset(rec, httptest.NewRequest("DELETE", "/grid-assets", bytes.NewReader([]byte(payload))))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.False(t, fake.permanent)
		assert.Equal(t, id, fake.deletedID)
		assert.Equal(t, "Grid asset soft deleted successfully", decodeBody(t, rec)["message"])
	})

	t.Run("permanent delete has a distinct message", func(t *testing.T) {
		fake := &fakeLifecycle{}
		h := newHandler(fake)

		payload := fmt.Sprintf(`{"id":%q,"permanent":true}`, uuid.New())
		rec := httptest.NewRecorder()
		h.DeleteGridAsset(rec, httptest.NewRequest("DELETE", "/grid-assets", bytes.NewReader([]byte(payload))))

		assert.True(t, fake.permanent)
		assert.Equal(t, "Grid asset permanently deleted successfully", decodeBody(t, rec)["message"])
	})

	t.Run("unknown id is a 404", func(t *testing.T) {
		fake := &fakeLifecycle{deleteErr: services.ErrAssetNotFound}
		h := newHandler(fake)

		payload := fmt.Sprintf(`{"id":%q}`, uuid.New())
		rec := httptest.NewRecorder()
		h.DeleteGridAsset(rec, httptest.NewRequest("DELETE", "/grid-assets", bytes.NewReader([]byte(payload))))

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
