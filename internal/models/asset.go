package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// GridAsset represents a physical grid-infrastructure record
// (substation, line, plant) managed through the admin console.
type GridAsset struct {
	bun.BaseModel `bun:"table:grid_assets,alias:ga"`

	ID         uuid.UUID `bun:",pk,type:uuid,default:uuid_generate_v4()" json:"id"`
	Name       string    `bun:"name" json:"name"`
	Type       string    `bun:"type" json:"type"`
	Status     string    `bun:"status" json:"status"`
	Latitude   float64   `bun:"latitude" json:"latitude"`
	Longitude  float64   `bun:"longitude" json:"longitude"`
	Address    string    `bun:"address" json:"address"`
	Voltage    float64   `bun:"voltage" json:"voltage"`
	Load       float64   `bun:"load_kw" json:"load"` // "load" is a reserved word in some SQL tooling
	Capacity   float64   `bun:"capacity" json:"capacity"`
	LastUpdate time.Time `bun:"last_update" json:"lastUpdate"`
	Site       *string   `bun:"site" json:"site"`
	Zone       *string   `bun:"zone" json:"zone"`
	Woreda     *string   `bun:"woreda" json:"woreda"`
	Category   *string   `bun:"category" json:"category"`
	NameLink   *string   `bun:"name_link" json:"nameLink"`
	Deleted    bool      `bun:"deleted,default:false" json:"deleted"`
}

// AssetInput carries the writable fields of a grid asset as submitted
// by the console on create.
type AssetInput struct {
	Name       string    `json:"name"`
	Type       string    `json:"type"`
	Status     string    `json:"status"`
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	Address    string    `json:"address"`
	Voltage    float64   `json:"voltage"`
	Load       float64   `json:"load"`
	Capacity   float64   `json:"capacity"`
	LastUpdate time.Time `json:"lastUpdate"`
	Site       *string   `json:"site"`
	Zone       *string   `json:"zone"`
	Woreda     *string   `json:"woreda"`
	Category   *string   `json:"category"`
	NameLink   *string   `json:"nameLink"`
}

// AssetListParams filters the list endpoint. IncludeDeleted lifts the
// default deleted=false visibility rule; Types and Statuses narrow the
// result the same way the feeder endpoints filter by CSV params.
type AssetListParams struct {
	IncludeDeleted bool
	Types          []string
	Statuses       []string
}

// GridAssetsResponse is the list endpoint payload.
type GridAssetsResponse struct {
	GridAssets []GridAsset `json:"gridAssets"`
}
