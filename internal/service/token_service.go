package service

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/yourplaces-server/internal/apierror"
	"github.com/dtroode/yourplaces-server/internal/logger"
	"github.com/dtroode/yourplaces-server/internal/model"
	"github.com/dtroode/yourplaces-server/internal/token"
)

// TokenService issues, rotates and revokes token pairs. It composes the
// TokenManager and RefreshTokenStore.
type TokenService struct {
	manager model.TokenManager
	store   model.RefreshTokenStore
	logger  *logger.Logger
}

func NewTokenService(manager model.TokenManager, store model.RefreshTokenStore, logger *logger.Logger) *TokenService {
	return &TokenService{manager: manager, store: store, logger: logger}
}

func (s *TokenService) Issue(ctx context.Context, userID uuid.UUID, email string) (accessToken string, refreshToken string, err error) {
	return s.issue(ctx, userID, email, nil)
}

// Refresh revokes the presented refresh token and returns a new pair.
func (s *TokenService) Refresh(ctx context.Context, presentedRefresh string) (newAccess string, newRefresh string, err error) {
	userID, email, jti, err := s.manager.ParseRefreshToken(presentedRefresh)
	if err != nil {
		return "", "", apierror.NewErrAuthentication(err)
	}

	rt, err := s.store.GetByJTI(ctx, jti)
	if errors.Is(err, model.ErrNotFound) {
		return "", "", apierror.NewErrAuthentication(err)
	}
	if err != nil {
		return "", "", fmt.Errorf("get refresh: %w", err)
	}

	if err := validateRecord(rt, hashRefresh(presentedRefresh), time.Now()); err != nil {
		s.logger.Info("Token service: refresh rejected",
			"user_id", userID,
			"jti", jti,
			"error", err.Error())
		return "", "", apierror.NewErrAuthentication(err)
	}

	if err := s.store.RevokeByJTI(ctx, jti); err != nil {
		return "", "", fmt.Errorf("revoke old refresh: %w", err)
	}

	rotatedFrom := rt.JTI
	return s.issue(ctx, userID, email, &rotatedFrom)
}

func (s *TokenService) RevokeByToken(ctx context.Context, presentedRefresh string) error {
	_, _, jti, err := s.manager.ParseRefreshToken(presentedRefresh)
	if err != nil {
		return apierror.NewErrAuthentication(err)
	}
	if err := s.store.RevokeByJTI(ctx, jti); err != nil {
		return fmt.Errorf("revoke refresh: %w", err)
	}
	return nil
}

// GetUserID verifies an access token and returns its subject.
func (s *TokenService) GetUserID(_ context.Context, accessToken string) (uuid.UUID, error) {
	userID, err := s.manager.ParseAccessToken(accessToken)
	if err != nil {
		return uuid.Nil, apierror.NewErrAuthentication(err)
	}
	return userID, nil
}

func (s *TokenService) issue(ctx context.Context, userID uuid.UUID, email string, rotatedFrom *string) (string, string, error) {
	access, err := s.manager.GenerateAccessToken(userID, email)
	if err != nil {
		return "", "", fmt.Errorf("issue access: %w", err)
	}

	refresh, jti, err := s.manager.GenerateRefreshToken(userID, email)
	if err != nil {
		return "", "", fmt.Errorf("issue refresh: %w", err)
	}

	now := time.Now()
	rt := model.RefreshToken{
		ID:             uuid.New(),
		JTI:            jti,
		UserID:         userID,
		TokenHash:      hashRefresh(refresh),
		IssuedAt:       now,
		ExpiresAt:      now.Add(token.RefreshTTL),
		RotatedFromJTI: rotatedFrom,
	}
	if err := s.store.Create(ctx, rt); err != nil {
		return "", "", fmt.Errorf("persist refresh: %w", err)
	}

	return access, refresh, nil
}

func hashRefresh(token string) []byte {
	h := sha256.Sum256([]byte(token))
	return h[:]
}

func validateRecord(rt model.RefreshToken, presentedHash []byte, now time.Time) error {
	if rt.RevokedAt != nil {
		return model.ErrTokenRevoked
	}
	if now.After(rt.ExpiresAt) {
		return model.ErrTokenExpired
	}
	if subtle.ConstantTimeCompare(rt.TokenHash, presentedHash) != 1 {
		return model.ErrTokenMismatch
	}
	return nil
}
