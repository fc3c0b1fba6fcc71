package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dtroode/yourplaces-server/internal/model"
)

var _ model.PlaceStore = (*PlaceRepository)(nil)

const placeColumns = `id, title, description, address, image, lat, lng, creator_id, created_at, updated_at`

type PlaceRepository struct {
	db *Connection
}

func NewPlaceRepository(db *Connection) *PlaceRepository {
	return &PlaceRepository{db: db}
}

func (r *PlaceRepository) Create(ctx context.Context, place model.Place) (model.Place, error) {
	query := `INSERT INTO places (id, title, description, address, image, lat, lng, creator_id, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
			  RETURNING ` + placeColumns

	saved, err := scanPlace(r.db.conn(ctx).QueryRow(ctx, query,
		place.ID, place.Title, place.Description, place.Address, place.Image,
		place.Location.Lat, place.Location.Lng, place.CreatorID,
	))
	if err != nil {
		return model.Place{}, fmt.Errorf("failed to create place: %w", err)
	}

	return saved, nil
}

func (r *PlaceRepository) GetByID(ctx context.Context, id uuid.UUID) (model.Place, error) {
	query := `SELECT ` + placeColumns + ` FROM places WHERE id = $1`

	place, err := scanPlace(r.db.conn(ctx).QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Place{}, model.ErrNotFound
		}
		return model.Place{}, fmt.Errorf("failed to get place by id: %w", err)
	}

	return place, nil
}

// GetByIDs resolves a user's place back-references. Ids without a matching row are skipped.
func (r *PlaceRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Place, error) {
	places := []model.Place{}
	if len(ids) == 0 {
		return places, nil
	}

	query := `SELECT ` + placeColumns + ` FROM places WHERE id = ANY($1) ORDER BY created_at ASC`

	rows, err := r.db.conn(ctx).Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get places by ids: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		place, err := scanPlace(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan place: %w", err)
		}
		places = append(places, place)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate places: %w", err)
	}

	return places, nil
}

func (r *PlaceRepository) Update(ctx context.Context, place model.Place) (model.Place, error) {
	query := `UPDATE places SET title = $2, description = $3, updated_at = NOW()
			  WHERE id = $1
			  RETURNING ` + placeColumns

	saved, err := scanPlace(r.db.conn(ctx).QueryRow(ctx, query, place.ID, place.Title, place.Description))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Place{}, model.ErrNotFound
		}
		return model.Place{}, fmt.Errorf("failed to update place: %w", err)
	}

	return saved, nil
}

func (r *PlaceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	cmd, err := r.db.conn(ctx).Exec(ctx, `DELETE FROM places WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete place: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}

func scanPlace(row pgx.Row) (model.Place, error) {
	var place model.Place
	err := row.Scan(
		&place.ID, &place.Title, &place.Description, &place.Address, &place.Image,
		&place.Location.Lat, &place.Location.Lng, &place.CreatorID,
		&place.CreatedAt, &place.UpdatedAt,
	)
	return place, err
}
