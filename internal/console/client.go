package console

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"gams-bknd/internal/models"
)

// AssetAPI is the lifecycle surface the view controllers drive. The
// HTTP client below is the production implementation; tests use an
// in-memory fake.
type AssetAPI interface {
	List(ctx context.Context, includeDeleted bool) ([]models.ProcessedAsset, error)
	Create(ctx context.Context, in models.AssetInput) (models.ProcessedAsset, error)
	Update(ctx context.Context, id string, fields map[string]any) (models.ProcessedAsset, error)
	Delete(ctx context.Context, id string, permanent bool) (string, error)
}

// Client calls the grid-asset lifecycle endpoints with an admin
// session token and normalizes every record it receives.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) List(ctx context.Context, includeDeleted bool) ([]models.ProcessedAsset, error) {
	path := "/api/v1/grid-assets/"
	if includeDeleted {
		path += "?includeDeleted=" + url.QueryEscape("true")
	}

	var resp struct {
		GridAssets []map[string]any `json:"gridAssets"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}

	assets := make([]models.ProcessedAsset, 0, len(resp.GridAssets))
	for _, raw := range resp.GridAssets {
		assets = append(assets, models.NormalizeAsset(raw))
	}
	return assets, nil
}

func (c *Client) Create(ctx context.Context, in models.AssetInput) (models.ProcessedAsset, error) {
	var resp struct {
		Asset map[string]any `json:"asset"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/v1/grid-assets/", in, &resp); err != nil {
		return models.ProcessedAsset{}, err
	}
	return models.NormalizeAsset(resp.Asset), nil
}

func (c *Client) Update(ctx context.Context, id string, fields map[string]any) (models.ProcessedAsset, error) {
	body := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		body[k] = v
	}
	body["id"] = id

	var resp struct {
		Asset map[string]any `json:"asset"`
	}
	if err := c.do(ctx, http.MethodPatch, "/api/v1/grid-assets/", body, &resp); err != nil {
		return models.ProcessedAsset{}, err
	}
	return models.NormalizeAsset(resp.Asset), nil
}

func (c *Client) Delete(ctx context.Context, id string, permanent bool) (string, error) {
	body := map[string]any{"id": id}
	if permanent {
		body["permanent"] = true
	}

	var resp struct {
		Message string `json:"message"`
	}
	if err := c.do(ctx, http.MethodDelete, "/api/v1/grid-assets/", body, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return fmt.Errorf("%w: %v", ErrServer, err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &buf)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrServer, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	res, err := c.http.Do(req)
	if err != nil {
		// A request that never completed looks like a store failure
		// to the caller.
		return fmt.Errorf("%w: %v", ErrServer, err)
	}
	defer res.Body.Close()

	if res.StatusCode >= 400 {
		var errBody struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(res.Body).Decode(&errBody)
		return classify(res.StatusCode, errBody.Error)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", ErrServer, err)
	}
	return nil
}
