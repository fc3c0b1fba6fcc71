package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// UserStore defines persistence operations for users.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (User, error)
	GetByID(ctx context.Context, id uuid.UUID) (User, error)
	List(ctx context.Context) ([]User, error)
	Create(ctx context.Context, user User) (User, error)
	AddPlace(ctx context.Context, userID, placeID uuid.UUID) error
	RemovePlace(ctx context.Context, userID, placeID uuid.UUID) error
}

// User represents a stored account and the ids of the places it owns.
type User struct {
	ID           uuid.UUID   `json:"id"`
	Name         string      `json:"name"`
	Email        string      `json:"email"`
	PasswordHash []byte      `json:"-"`
	Image        string      `json:"image"`
	PlaceIDs     []uuid.UUID `json:"places"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}

// SignupParams contains parameters to register a user.
type SignupParams struct {
	Name     string
	Email    string
	Password string
	Image    string
}

// Session is returned after a successful signup or login.
type Session struct {
	UserID       uuid.UUID `json:"userId"`
	Email        string    `json:"email"`
	Token        string    `json:"token"`
	RefreshToken string    `json:"refreshToken"`
}
