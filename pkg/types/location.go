package types

import (
	"time"

	"bizdir/internal/taxonomy"
)

// LocationType aliases the taxonomy ladder's type so store and server code
// can use the constants without reaching into the engine package.
type LocationType = taxonomy.LocationType

const (
	LocationCountry  = taxonomy.LocationCountry
	LocationState    = taxonomy.LocationState
	LocationDistrict = taxonomy.LocationDistrict
	LocationTaluka   = taxonomy.LocationTaluka
	LocationVillage  = taxonomy.LocationVillage
	LocationArea     = taxonomy.LocationArea
	LocationLocality = taxonomy.LocationLocality
)

type Location struct {
	ID        int64        `db:"id" json:"id"`
	ParentID  *int64       `db:"parent_id" json:"parent_id"`
	Name      string       `db:"name" json:"name"`
	Slug      string       `db:"slug" json:"slug"`
	Type      LocationType `db:"type" json:"type"`
	Code      *string      `db:"code" json:"code,omitempty"`
	Latitude  *float64     `db:"latitude" json:"latitude,omitempty"`
	Longitude *float64     `db:"longitude" json:"longitude,omitempty"`
	IsActive  bool         `db:"is_active" json:"is_active"`
	CreatedAt time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt time.Time    `db:"updated_at" json:"updated_at"`
	DeletedAt *time.Time   `db:"deleted_at" json:"-"`
}

func (l *Location) TreeID() int64        { return l.ID }
func (l *Location) TreeParentID() *int64 { return l.ParentID }

// LocationOption is the trimmed shape returned by the children endpoints
// that feed hierarchical dropdowns.
type LocationOption struct {
	ID   int64        `json:"id"`
	Name string       `json:"name"`
	Slug string       `json:"slug"`
	Type LocationType `json:"type"`
}
