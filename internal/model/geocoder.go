package model

import "context"

// Geocoder resolves a postal address to coordinates.
type Geocoder interface {
	Coordinates(ctx context.Context, address string) (Location, error)
}
