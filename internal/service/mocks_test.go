package service

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/dtroode/yourplaces-server/internal/model"
)

// MockPlaceStore mocks the PlaceStore interface
type MockPlaceStore struct {
	mock.Mock
}

func (m *MockPlaceStore) Create(ctx context.Context, place model.Place) (model.Place, error) {
	args := m.Called(ctx, place)
	if fn, ok := args.Get(0).(func(context.Context, model.Place) model.Place); ok {
		return fn(ctx, place), args.Error(1)
	}
	return args.Get(0).(model.Place), args.Error(1)
}

func (m *MockPlaceStore) GetByID(ctx context.Context, id uuid.UUID) (model.Place, error) {
	args := m.Called(ctx, id)
	if fn, ok := args.Get(0).(func(context.Context, uuid.UUID) model.Place); ok {
		return fn(ctx, id), args.Error(1)
	}
	return args.Get(0).(model.Place), args.Error(1)
}

func (m *MockPlaceStore) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Place, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]model.Place), args.Error(1)
}

func (m *MockPlaceStore) Update(ctx context.Context, place model.Place) (model.Place, error) {
	args := m.Called(ctx, place)
	if fn, ok := args.Get(0).(func(context.Context, model.Place) model.Place); ok {
		return fn(ctx, place), args.Error(1)
	}
	return args.Get(0).(model.Place), args.Error(1)
}

func (m *MockPlaceStore) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockUserStore mocks the UserStore interface
type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) GetByEmail(ctx context.Context, email string) (model.User, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *MockUserStore) GetByID(ctx context.Context, id uuid.UUID) (model.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *MockUserStore) List(ctx context.Context) ([]model.User, error) {
	args := m.Called(ctx)
	return args.Get(0).([]model.User), args.Error(1)
}

func (m *MockUserStore) Create(ctx context.Context, user model.User) (model.User, error) {
	args := m.Called(ctx, user)
	if fn, ok := args.Get(0).(func(context.Context, model.User) model.User); ok {
		return fn(ctx, user), args.Error(1)
	}
	return args.Get(0).(model.User), args.Error(1)
}

func (m *MockUserStore) AddPlace(ctx context.Context, userID, placeID uuid.UUID) error {
	args := m.Called(ctx, userID, placeID)
	return args.Error(0)
}

func (m *MockUserStore) RemovePlace(ctx context.Context, userID, placeID uuid.UUID) error {
	args := m.Called(ctx, userID, placeID)
	return args.Error(0)
}

// MockGeocoder mocks the Geocoder interface
type MockGeocoder struct {
	mock.Mock
}

func (m *MockGeocoder) Coordinates(ctx context.Context, address string) (model.Location, error) {
	args := m.Called(ctx, address)
	return args.Get(0).(model.Location), args.Error(1)
}

// MockStorage mocks the Storage interface
type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	args := m.Called(ctx, key, reader, size, contentType)
	return args.Error(0)
}

func (m *MockStorage) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	args := m.Called(ctx, key)
	if rc := args.Get(0); rc != nil {
		return rc.(io.ReadCloser), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStorage) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// MockTokenManager mocks the TokenManager interface
type MockTokenManager struct {
	mock.Mock
}

func (m *MockTokenManager) GenerateAccessToken(userID uuid.UUID, email string) (string, error) {
	args := m.Called(userID, email)
	return args.String(0), args.Error(1)
}

func (m *MockTokenManager) GenerateRefreshToken(userID uuid.UUID, email string) (string, string, error) {
	args := m.Called(userID, email)
	return args.String(0), args.String(1), args.Error(2)
}

func (m *MockTokenManager) ParseAccessToken(token string) (uuid.UUID, error) {
	args := m.Called(token)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockTokenManager) ParseRefreshToken(token string) (uuid.UUID, string, string, error) {
	args := m.Called(token)
	return args.Get(0).(uuid.UUID), args.String(1), args.String(2), args.Error(3)
}

// MockRefreshTokenStore mocks the RefreshTokenStore interface
type MockRefreshTokenStore struct {
	mock.Mock
}

func (m *MockRefreshTokenStore) Create(ctx context.Context, token model.RefreshToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockRefreshTokenStore) GetByJTI(ctx context.Context, jti string) (model.RefreshToken, error) {
	args := m.Called(ctx, jti)
	return args.Get(0).(model.RefreshToken), args.Error(1)
}

func (m *MockRefreshTokenStore) RevokeByJTI(ctx context.Context, jti string) error {
	args := m.Called(ctx, jti)
	return args.Error(0)
}

// fakeTransactor runs fn inline and records the outcome.
type fakeTransactor struct {
	calls int
	err   error
}

func (f *fakeTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	f.calls++
	f.err = fn(ctx)
	return f.err
}
