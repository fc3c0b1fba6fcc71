package service

import (
	"context"
	"crypto/sha256"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/yourplaces-server/internal/apierror"
	"github.com/dtroode/yourplaces-server/internal/model"
	"github.com/dtroode/yourplaces-server/internal/testutil"
)

func TestTokenService_Issue(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	manager := new(MockTokenManager)
	store := new(MockRefreshTokenStore)

	manager.On("GenerateAccessToken", userID, "a@b.c").Return("access", nil).Once()
	manager.On("GenerateRefreshToken", userID, "a@b.c").Return("refresh", "jti-1", nil).Once()
	store.On("Create", ctx, mock.MatchedBy(func(rt model.RefreshToken) bool {
		h := sha256.Sum256([]byte("refresh"))
		return rt.JTI == "jti-1" && rt.UserID == userID && string(rt.TokenHash) == string(h[:]) && rt.RotatedFromJTI == nil
	})).Return(nil).Once()

	svc := NewTokenService(manager, store, testutil.MakeNoopLogger())

	access, refresh, err := svc.Issue(ctx, userID, "a@b.c")
	require.NoError(t, err)
	assert.Equal(t, "access", access)
	assert.Equal(t, "refresh", refresh)
	store.AssertExpectations(t)
}

func TestTokenService_Issue_ManagerError(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	manager := new(MockTokenManager)
	store := new(MockRefreshTokenStore)

	manager.On("GenerateAccessToken", userID, "a@b.c").Return("", assert.AnError).Once()

	svc := NewTokenService(manager, store, testutil.MakeNoopLogger())

	_, _, err := svc.Issue(ctx, userID, "a@b.c")
	require.Error(t, err)
	store.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestTokenService_Refresh(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	presented := "refresh-old"
	h := sha256.Sum256([]byte(presented))
	revokedAt := time.Now().Add(-time.Minute)

	valid := model.RefreshToken{JTI: "jti-old", UserID: userID, TokenHash: h[:], ExpiresAt: time.Now().Add(time.Hour)}
	revoked := valid
	revoked.RevokedAt = &revokedAt
	expired := valid
	expired.ExpiresAt = time.Now().Add(-time.Hour)
	mismatch := valid
	mismatch.TokenHash = []byte("other")

	tests := []struct {
		name      string
		stored    model.RefreshToken
		getErr    error
		wantError bool
	}{
		{name: "rotates", stored: valid},
		{name: "revoked", stored: revoked, wantError: true},
		{name: "expired", stored: expired, wantError: true},
		{name: "hash mismatch", stored: mismatch, wantError: true},
		{name: "unknown jti", getErr: model.ErrNotFound, wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			manager := new(MockTokenManager)
			store := new(MockRefreshTokenStore)

			manager.On("ParseRefreshToken", presented).Return(userID, "a@b.c", "jti-old", nil)
			store.On("GetByJTI", ctx, "jti-old").Return(tt.stored, tt.getErr)
			store.On("RevokeByJTI", ctx, "jti-old").Return(nil)
			manager.On("GenerateAccessToken", userID, "a@b.c").Return("access-new", nil)
			manager.On("GenerateRefreshToken", userID, "a@b.c").Return("refresh-new", "jti-new", nil)
			store.On("Create", ctx, mock.MatchedBy(func(rt model.RefreshToken) bool {
				return rt.JTI == "jti-new" && rt.RotatedFromJTI != nil && *rt.RotatedFromJTI == "jti-old"
			})).Return(nil)

			svc := NewTokenService(manager, store, testutil.MakeNoopLogger())
			access, refresh, err := svc.Refresh(ctx, presented)

			if tt.wantError {
				require.Error(t, err)
				status, _ := apierror.StatusAndMessage(err)
				assert.Equal(t, http.StatusUnauthorized, status)
				store.AssertNotCalled(t, "RevokeByJTI", mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "access-new", access)
			assert.Equal(t, "refresh-new", refresh)
			store.AssertCalled(t, "RevokeByJTI", ctx, "jti-old")
		})
	}
}

func TestTokenService_RevokeByToken(t *testing.T) {
	ctx := context.Background()

	t.Run("revokes", func(t *testing.T) {
		manager := new(MockTokenManager)
		store := new(MockRefreshTokenStore)
		manager.On("ParseRefreshToken", "refresh").Return(uuid.New(), "a@b.c", "jti", nil)
		store.On("RevokeByJTI", ctx, "jti").Return(nil).Once()

		svc := NewTokenService(manager, store, testutil.MakeNoopLogger())
		require.NoError(t, svc.RevokeByToken(ctx, "refresh"))
		store.AssertExpectations(t)
	})

	t.Run("invalid token", func(t *testing.T) {
		manager := new(MockTokenManager)
		store := new(MockRefreshTokenStore)
		manager.On("ParseRefreshToken", "bad").Return(uuid.Nil, "", "", assert.AnError)

		svc := NewTokenService(manager, store, testutil.MakeNoopLogger())
		err := svc.RevokeByToken(ctx, "bad")
		assert.True(t, apierror.Is(err, apierror.KindAuthentication))
	})
}

func TestTokenService_GetUserID(t *testing.T) {
	userID := uuid.New()
	manager := new(MockTokenManager)
	manager.On("ParseAccessToken", "good").Return(userID, nil)
	manager.On("ParseAccessToken", "bad").Return(uuid.Nil, assert.AnError)

	svc := NewTokenService(manager, new(MockRefreshTokenStore), testutil.MakeNoopLogger())

	got, err := svc.GetUserID(context.Background(), "good")
	require.NoError(t, err)
	assert.Equal(t, userID, got)

	_, err = svc.GetUserID(context.Background(), "bad")
	assert.True(t, apierror.Is(err, apierror.KindAuthentication))
}
