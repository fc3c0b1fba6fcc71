package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dtroode/yourplaces-server/internal/model"
)

var _ model.UserStore = (*UserRepository)(nil)

const uniqueViolation = "23505"

const userColumns = `id, name, email, password_hash, image, place_ids, created_at, updated_at`

type UserRepository struct {
	db *Connection
}

func NewUserRepository(db *Connection) *UserRepository {
	return &UserRepository{
		db: db,
	}
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	user, err := scanUser(r.db.conn(ctx).QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, model.ErrNotFound
		}
		return model.User{}, fmt.Errorf("failed to get user by email: %w", err)
	}

	return user, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(r.db.conn(ctx).QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, model.ErrNotFound
		}
		return model.User{}, fmt.Errorf("failed to get user by id: %w", err)
	}

	return user, nil
}

func (r *UserRepository) List(ctx context.Context) ([]model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at ASC`

	rows, err := r.db.conn(ctx).Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}

	return users, nil
}

func (r *UserRepository) Create(ctx context.Context, user model.User) (model.User, error) {
	query := `INSERT INTO users (id, name, email, password_hash, image, place_ids, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
			  RETURNING ` + userColumns

	placeIDs := user.PlaceIDs
	if placeIDs == nil {
		placeIDs = []uuid.UUID{}
	}

	saved, err := scanUser(r.db.conn(ctx).QueryRow(ctx, query,
		user.ID, user.Name, user.Email, user.PasswordHash, user.Image, placeIDs,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return model.User{}, model.ErrEmailTaken
		}
		return model.User{}, fmt.Errorf("failed to create user: %w", err)
	}

	return saved, nil
}

// AddPlace appends placeID to the user's place back-references.
func (r *UserRepository) AddPlace(ctx context.Context, userID, placeID uuid.UUID) error {
	const query = `UPDATE users SET place_ids = array_append(place_ids, $2), updated_at = NOW()
			  WHERE id = $1 AND NOT ($2 = ANY(place_ids))`

	cmd, err := r.db.conn(ctx).Exec(ctx, query, userID, placeID)
	if err != nil {
		return fmt.Errorf("failed to add place to user: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return r.explainNoRows(ctx, userID)
	}
	return nil
}

// RemovePlace drops placeID from the user's place back-references.
func (r *UserRepository) RemovePlace(ctx context.Context, userID, placeID uuid.UUID) error {
	const query = `UPDATE users SET place_ids = array_remove(place_ids, $2), updated_at = NOW()
			  WHERE id = $1`

	cmd, err := r.db.conn(ctx).Exec(ctx, query, userID, placeID)
	if err != nil {
		return fmt.Errorf("failed to remove place from user: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}

// explainNoRows distinguishes a missing user from a place id that is already referenced.
func (r *UserRepository) explainNoRows(ctx context.Context, userID uuid.UUID) error {
	var exists bool
	err := r.db.conn(ctx).QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, userID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check user existence: %w", err)
	}
	if !exists {
		return model.ErrNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (model.User, error) {
	var user model.User
	err := row.Scan(
		&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.Image, &user.PlaceIDs,
		&user.CreatedAt, &user.UpdatedAt,
	)
	return user, err
}
