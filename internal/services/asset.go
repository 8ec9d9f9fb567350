package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"gams-bknd/internal/models"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ErrAssetNotFound signals that no record matched the target id.
var ErrAssetNotFound = errors.New("grid asset not found")

// ValidationError reports the required fields a submission is missing.
// The same schema check runs in the console before a request is ever
// issued; repeating it here keeps the store clean even when a caller
// bypasses the console.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return fmt.Sprintf("missing required fields: %s", strings.Join(names, ", "))
}

// AssetService translates grid-asset lifecycle operations into
// persistence calls. Every read applies the deleted=false visibility
// rule unless the caller explicitly lifts it.
type AssetService struct {
	db *bun.DB
}

func NewAssetService(db *bun.DB) *AssetService {
	return &AssetService{db: db}
}

// List returns grid assets. Soft-deleted records are excluded unless
// params.IncludeDeleted is set; optional type/status filters narrow
// the result case-insensitively.
func (s *AssetService) List(ctx context.Context, params models.AssetListParams) ([]models.GridAsset, error) {
	assets := make([]models.GridAsset, 0)

	q := s.db.NewSelect().Model(&assets)

	if !params.IncludeDeleted {
		q = q.Where("deleted = ?", false)
	}

	if len(params.Types) > 0 {
		lower := make([]string, len(params.Types))
		for i, t := range params.Types {
			lower[i] = strings.ToLower(t)
		}
		q = q.Where("LOWER(type) IN (?)", bun.In(lower))
	}

	if len(params.Statuses) > 0 {
		lower := make([]string, len(params.Statuses))
		for i, st := range params.Statuses {
			lower[i] = strings.ToLower(st)
		}
		q = q.Where("LOWER(status) IN (?)", bun.In(lower))
	}

	q = q.OrderExpr("last_update DESC, id ASC")

	if err := q.Scan(ctx); err != nil {
		return nil, err
	}
	return assets, nil
}

// Create validates the submission, assigns a fresh id and persists the
// record with deleted=false.
func (s *AssetService) Create(ctx context.Context, in models.AssetInput) (*models.GridAsset, error) {
	if errs := models.ValidateFields(in.Fields()); len(errs) > 0 {
		return nil, &ValidationError{Fields: errs}
	}

	asset := &models.GridAsset{
		ID:         uuid.New(),
		Name:       in.Name,
		Type:       in.Type,
		Status:     in.Status,
		Latitude:   in.Latitude,
		Longitude:  in.Longitude,
		Address:    in.Address,
		Voltage:    in.Voltage,
		Load:       in.Load,
		Capacity:   in.Capacity,
		LastUpdate: in.LastUpdate,
		Site:       in.Site,
		Zone:       in.Zone,
		Woreda:     in.Woreda,
		Category:   in.Category,
		NameLink:   in.NameLink,
		Deleted:    false,
	}
	if asset.LastUpdate.IsZero() {
		asset.LastUpdate = time.Now().UTC()
	}

	if _, err := s.db.NewInsert().Model(asset).Exec(ctx); err != nil {
		return nil, err
	}
	return asset, nil
}

// Update fetches the record addressed by id, applies the patch fields,
// re-validates and saves. Restoring a soft-deleted asset is just a
// patch with deleted=false; there is no separate store primitive.
func (s *AssetService) Update(ctx context.Context, id uuid.UUID, patch map[string]any) (*models.GridAsset, error) {
	var asset models.GridAsset
	err := s.db.NewSelect().Model(&asset).Where("id = ?", id).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAssetNotFound
		}
		return nil, err
	}

	if err := applyPatch(&asset, patch); err != nil {
		return nil, err
	}

	if errs := models.ValidateFields(asset.Fields()); len(errs) > 0 {
		return nil, &ValidationError{Fields: errs}
	}

	res, err := s.db.NewUpdate().Model(&asset).WherePK().Exec(ctx)
	if err != nil {
		return nil, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, ErrAssetNotFound
	}
	return &asset, nil
}

// Delete removes a record permanently or soft-deletes it by flipping
// the deleted flag. Exactly one record is affected, or the id did not
// exist.
func (s *AssetService) Delete(ctx context.Context, id uuid.UUID, permanent bool) error {
	if permanent {
		res, err := s.db.NewDelete().
			Model((*models.GridAsset)(nil)).
			Where("id = ?", id).
			Exec(ctx)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return ErrAssetNotFound
		}
		return nil
	}

	res, err := s.db.NewUpdate().
		Model((*models.GridAsset)(nil)).
		Set("deleted = ?", true).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrAssetNotFound
	}
	return nil
}

// applyPatch copies whitelisted schema fields from a decoded JSON
// object onto the asset. Unknown keys are ignored; the id is never
// patched.
func applyPatch(a *models.GridAsset, patch map[string]any) error {
	for key, raw := range patch {
		switch key {
		case "id":
			// immutable
		case "name":
			if s, ok := asString(raw); ok {
				a.Name = s
			}
		case "type":
			if s, ok := asString(raw); ok {
				a.Type = s
			}
		case "status":
			if s, ok := asString(raw); ok {
				a.Status = s
			}
		case "address":
			if s, ok := asString(raw); ok {
				a.Address = s
			}
		case "latitude":
			if n, ok := asNumber(raw); ok {
				a.Latitude = n
			}
		case "longitude":
			if n, ok := asNumber(raw); ok {
				a.Longitude = n
			}
		case "voltage":
			if n, ok := asNumber(raw); ok {
				a.Voltage = n
			}
		case "load":
			if n, ok := asNumber(raw); ok {
				a.Load = n
			}
		case "capacity":
			if n, ok := asNumber(raw); ok {
				a.Capacity = n
			}
		case "lastUpdate":
			s, ok := raw.(string)
			if !ok {
				return fmt.Errorf("lastUpdate must be a timestamp string")
			}
			t, err := time.Parse(time.RFC3339, s)
			if err != nil {
				return fmt.Errorf("invalid lastUpdate: %w", err)
			}
			a.LastUpdate = t
		case "site":
			a.Site = asNullableString(raw)
		case "zone":
			a.Zone = asNullableString(raw)
		case "woreda":
			a.Woreda = asNullableString(raw)
		case "category":
			a.Category = asNullableString(raw)
		case "nameLink":
			a.NameLink = asNullableString(raw)
		case "deleted":
			if b, ok := raw.(bool); ok {
				a.Deleted = b
			}
		}
	}
	return nil
}

func asString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

// asNumber accepts JSON numbers and numeric strings; the console form
// submits number inputs as strings.
func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case string:
		var f float64
		if _, err := fmt.Sscanf(n, "%g", &f); err == nil {
			return f, true
		}
	}
	return 0, false
}

func asNullableString(v any) *string {
	if s, ok := v.(string); ok {
		return &s
	}
	return nil
}
