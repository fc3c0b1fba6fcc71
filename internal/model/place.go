package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// PlaceStore defines persistence operations for places.
type PlaceStore interface {
	Create(ctx context.Context, place Place) (Place, error)
	GetByID(ctx context.Context, id uuid.UUID) (Place, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]Place, error)
	Update(ctx context.Context, place Place) (Place, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Location is a geographic coordinate pair.
type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Place represents a stored point of interest owned by exactly one user.
type Place struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Address     string    `json:"address"`
	Image       string    `json:"image"`
	Location    Location  `json:"location"`
	CreatorID   uuid.UUID `json:"creator"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// CreatePlaceParams contains parameters to create a place.
type CreatePlaceParams struct {
	Title       string
	Description string
	Address     string
	Image       string
	CreatorID   uuid.UUID
}

// UpdatePlaceParams contains parameters to update a place.
type UpdatePlaceParams struct {
	PlaceID     uuid.UUID
	Title       string
	Description string
	CallerID    uuid.UUID
}

// SameID reports whether two identifiers are equal in their canonical string form.
func SameID(a, b uuid.UUID) bool {
	return a.String() == b.String()
}
