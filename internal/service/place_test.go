package service

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/yourplaces-server/internal/apierror"
	"github.com/dtroode/yourplaces-server/internal/model"
	"github.com/dtroode/yourplaces-server/internal/testutil"
)

type placeDeps struct {
	places   *MockPlaceStore
	users    *MockUserStore
	tx       *fakeTransactor
	geocoder *MockGeocoder
	storage  *MockStorage
}

func newPlaceService() (*Place, placeDeps) {
	deps := placeDeps{
		places:   new(MockPlaceStore),
		users:    new(MockUserStore),
		tx:       &fakeTransactor{},
		geocoder: new(MockGeocoder),
		storage:  new(MockStorage),
	}
	svc := NewPlace(deps.places, deps.users, deps.tx, deps.geocoder, deps.storage, testutil.MakeNoopLogger())
	return svc, deps
}

func assertAPIError(t *testing.T, err error, status int, message string) {
	t.Helper()
	require.Error(t, err)
	gotStatus, gotMessage := apierror.StatusAndMessage(err)
	assert.Equal(t, status, gotStatus)
	assert.Equal(t, message, gotMessage)
}

var esbLocation = model.Location{Lat: 40.7484405, Lng: -73.9878584}

func TestPlace_GetPlaceByID(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()

	tests := []struct {
		name       string
		storeErr   error
		wantStatus int
		wantMsg    string
	}{
		{name: "found"},
		{name: "not found", storeErr: model.ErrNotFound, wantStatus: http.StatusNotFound, wantMsg: msgPlaceNotFound},
		{name: "store failure", storeErr: errors.New("conn reset"), wantStatus: http.StatusInternalServerError, wantMsg: msgFindPlaceFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, deps := newPlaceService()
			deps.places.On("GetByID", ctx, id).Return(model.Place{ID: id, Title: "ESB"}, tt.storeErr)

			place, err := svc.GetPlaceByID(ctx, id)
			if tt.wantStatus != 0 {
				assertAPIError(t, err, tt.wantStatus, tt.wantMsg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "ESB", place.Title)
		})
	}
}

func TestPlace_GetPlacesByUserID(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	placeID := uuid.New()

	t.Run("returns referenced places", func(t *testing.T) {
		svc, deps := newPlaceService()
		deps.users.On("GetByID", ctx, userID).Return(model.User{ID: userID, PlaceIDs: []uuid.UUID{placeID}}, nil)
		deps.places.On("GetByIDs", ctx, []uuid.UUID{placeID}).Return([]model.Place{{ID: placeID}}, nil)

		places, err := svc.GetPlacesByUserID(ctx, userID)
		require.NoError(t, err)
		require.Len(t, places, 1)
		assert.Equal(t, placeID, places[0].ID)
	})

	t.Run("user without places", func(t *testing.T) {
		svc, deps := newPlaceService()
		deps.users.On("GetByID", ctx, userID).Return(model.User{ID: userID, PlaceIDs: []uuid.UUID{}}, nil)
		deps.places.On("GetByIDs", ctx, []uuid.UUID{}).Return([]model.Place{}, nil)

		places, err := svc.GetPlacesByUserID(ctx, userID)
		require.NoError(t, err)
		assert.Empty(t, places)
	})

	t.Run("unknown user", func(t *testing.T) {
		svc, deps := newPlaceService()
		deps.users.On("GetByID", ctx, userID).Return(model.User{}, model.ErrNotFound)

		_, err := svc.GetPlacesByUserID(ctx, userID)
		assertAPIError(t, err, http.StatusNotFound, msgUserNotFound)
	})

	t.Run("store failure", func(t *testing.T) {
		svc, deps := newPlaceService()
		deps.users.On("GetByID", ctx, userID).Return(model.User{ID: userID, PlaceIDs: []uuid.UUID{placeID}}, nil)
		deps.places.On("GetByIDs", ctx, []uuid.UUID{placeID}).Return([]model.Place(nil), errors.New("boom"))

		_, err := svc.GetPlacesByUserID(ctx, userID)
		assertAPIError(t, err, http.StatusInternalServerError, msgFetchPlacesFailed)
	})
}

func TestPlace_CreatePlace(t *testing.T) {
	ctx := context.Background()
	creatorID := uuid.New()
	params := model.CreatePlaceParams{
		Title:       "Empire State Building",
		Description: "One of the most famous sky scrapers",
		Address:     "20 W 34th St, New York, NY 10001",
		Image:       "uploads/images/esb.png",
		CreatorID:   creatorID,
	}

	t.Run("success", func(t *testing.T) {
		svc, deps := newPlaceService()
		deps.geocoder.On("Coordinates", ctx, params.Address).Return(esbLocation, nil)
		deps.users.On("GetByID", ctx, creatorID).Return(model.User{ID: creatorID}, nil)
		deps.places.On("Create", ctx, mock.MatchedBy(func(p model.Place) bool {
			return p.Title == params.Title && p.Location == esbLocation && p.CreatorID == creatorID && p.ID != uuid.Nil
		})).Return(func(_ context.Context, p model.Place) model.Place { return p }, nil)
		deps.users.On("AddPlace", ctx, creatorID, mock.AnythingOfType("uuid.UUID")).Return(nil)

		place, err := svc.CreatePlace(ctx, params)
		require.NoError(t, err)
		assert.Equal(t, esbLocation, place.Location)
		assert.Equal(t, params.Image, place.Image)
		assert.Equal(t, 1, deps.tx.calls)
		deps.users.AssertCalled(t, "AddPlace", ctx, creatorID, place.ID)
	})

	t.Run("validation", func(t *testing.T) {
		cases := []model.CreatePlaceParams{
			{Title: "", Description: "long enough", Address: "a", CreatorID: creatorID},
			{Title: "t", Description: "abcd", Address: "a", CreatorID: creatorID},
			{Title: "t", Description: "long enough", Address: "  ", CreatorID: creatorID},
		}
		for _, c := range cases {
			svc, deps := newPlaceService()
			_, err := svc.CreatePlace(ctx, c)
			assertAPIError(t, err, http.StatusUnprocessableEntity, "Invalid inputs passed, please check your data.")
			deps.geocoder.AssertNotCalled(t, "Coordinates", mock.Anything, mock.Anything)
		}
	})

	t.Run("geocoding error passes through", func(t *testing.T) {
		svc, deps := newPlaceService()
		deps.geocoder.On("Coordinates", ctx, params.Address).Return(model.Location{}, apierror.NewErrAddressNotFound())

		_, err := svc.CreatePlace(ctx, params)
		assertAPIError(t, err, http.StatusUnprocessableEntity, "Could not find location for the specified address.")
		assert.Zero(t, deps.tx.calls)
	})

	t.Run("creator not found", func(t *testing.T) {
		svc, deps := newPlaceService()
		deps.geocoder.On("Coordinates", ctx, params.Address).Return(esbLocation, nil)
		deps.users.On("GetByID", ctx, creatorID).Return(model.User{}, model.ErrNotFound)

		_, err := svc.CreatePlace(ctx, params)
		assertAPIError(t, err, http.StatusNotFound, msgCreatorNotFound)
		assert.Zero(t, deps.tx.calls)
	})

	t.Run("back reference failure aborts transaction", func(t *testing.T) {
		svc, deps := newPlaceService()
		deps.geocoder.On("Coordinates", ctx, params.Address).Return(esbLocation, nil)
		deps.users.On("GetByID", ctx, creatorID).Return(model.User{ID: creatorID}, nil)
		deps.places.On("Create", ctx, mock.Anything).Return(func(_ context.Context, p model.Place) model.Place { return p }, nil)
		deps.users.On("AddPlace", ctx, creatorID, mock.Anything).Return(model.ErrNotFound)

		_, err := svc.CreatePlace(ctx, params)
		assertAPIError(t, err, http.StatusInternalServerError, msgCreatePlaceFailed)
		assert.ErrorIs(t, deps.tx.err, model.ErrNotFound)
	})

	t.Run("insert failure", func(t *testing.T) {
		svc, deps := newPlaceService()
		deps.geocoder.On("Coordinates", ctx, params.Address).Return(esbLocation, nil)
		deps.users.On("GetByID", ctx, creatorID).Return(model.User{ID: creatorID}, nil)
		deps.places.On("Create", ctx, mock.Anything).Return(model.Place{}, errors.New("boom"))

		_, err := svc.CreatePlace(ctx, params)
		assertAPIError(t, err, http.StatusInternalServerError, msgCreatePlaceFailed)
		deps.users.AssertNotCalled(t, "AddPlace", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestPlace_UpdatePlace(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.New()
	placeID := uuid.New()
	stored := model.Place{ID: placeID, Title: "Old", Description: "Old description", Address: "addr", CreatorID: ownerID}

	tests := []struct {
		name       string
		params     model.UpdatePlaceParams
		getErr     error
		updateErr  error
		wantStatus int
		wantMsg    string
		wantUpdate bool
	}{
		{
			name:       "owner updates",
			params:     model.UpdatePlaceParams{PlaceID: placeID, Title: "New", Description: "New description", CallerID: ownerID},
			wantUpdate: true,
		},
		{
			name:       "invalid input",
			params:     model.UpdatePlaceParams{PlaceID: placeID, Title: "New", Description: "abc", CallerID: ownerID},
			wantStatus: http.StatusUnprocessableEntity,
			wantMsg:    "Invalid inputs passed, please check your data.",
		},
		{
			name:       "not found",
			params:     model.UpdatePlaceParams{PlaceID: placeID, Title: "New", Description: "New description", CallerID: ownerID},
			getErr:     model.ErrNotFound,
			wantStatus: http.StatusNotFound,
			wantMsg:    msgPlaceNotFound,
		},
		{
			name:       "not the owner",
			params:     model.UpdatePlaceParams{PlaceID: placeID, Title: "New", Description: "New description", CallerID: uuid.New()},
			wantStatus: http.StatusUnauthorized,
			wantMsg:    msgEditForbidden,
		},
		{
			name:       "store failure",
			params:     model.UpdatePlaceParams{PlaceID: placeID, Title: "New", Description: "New description", CallerID: ownerID},
			updateErr:  errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantMsg:    msgUpdatePlaceFailed,
			wantUpdate: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, deps := newPlaceService()
			deps.places.On("GetByID", ctx, placeID).Return(stored, tt.getErr)
			deps.places.On("Update", ctx, mock.Anything).Return(func(_ context.Context, p model.Place) model.Place { return p }, tt.updateErr)

			place, err := svc.UpdatePlace(ctx, tt.params)
			if tt.wantUpdate {
				deps.places.AssertCalled(t, "Update", ctx, mock.Anything)
			} else {
				deps.places.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
			}
			if tt.wantStatus != 0 {
				assertAPIError(t, err, tt.wantStatus, tt.wantMsg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "New", place.Title)
			assert.Equal(t, stored.Address, place.Address)
		})
	}

	t.Run("successive updates keep the last title", func(t *testing.T) {
		svc, deps := newPlaceService()
		current := stored
		deps.places.On("GetByID", ctx, placeID).Return(func(context.Context, uuid.UUID) model.Place { return current }, nil)
		deps.places.On("Update", ctx, mock.Anything).Return(func(_ context.Context, p model.Place) model.Place {
			current = p
			return p
		}, nil)

		for _, title := range []string{"A", "B"} {
			_, err := svc.UpdatePlace(ctx, model.UpdatePlaceParams{
				PlaceID:     placeID,
				Title:       title,
				Description: stored.Description,
				CallerID:    ownerID,
			})
			require.NoError(t, err)
		}

		got, err := svc.GetPlaceByID(ctx, placeID)
		require.NoError(t, err)
		assert.Equal(t, "B", got.Title)
		assert.Equal(t, stored.Description, got.Description)
		assert.Equal(t, stored.Address, got.Address)
		deps.places.AssertNumberOfCalls(t, "Update", 2)
	})
}

func TestPlace_DeletePlace(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.New()
	placeID := uuid.New()
	stored := model.Place{ID: placeID, Image: "uploads/images/esb.png", CreatorID: ownerID}

	t.Run("owner deletes", func(t *testing.T) {
		svc, deps := newPlaceService()
		deps.places.On("GetByID", ctx, placeID).Return(stored, nil)
		deps.places.On("Delete", ctx, placeID).Return(nil)
		deps.users.On("RemovePlace", ctx, ownerID, placeID).Return(nil)
		deps.storage.On("Delete", mock.Anything, stored.Image).Return(nil)

		require.NoError(t, svc.DeletePlace(ctx, placeID, ownerID))
		assert.Equal(t, 1, deps.tx.calls)
		deps.storage.AssertExpectations(t)
	})

	t.Run("image cleanup failure is ignored", func(t *testing.T) {
		svc, deps := newPlaceService()
		deps.places.On("GetByID", ctx, placeID).Return(stored, nil)
		deps.places.On("Delete", ctx, placeID).Return(nil)
		deps.users.On("RemovePlace", ctx, ownerID, placeID).Return(nil)
		deps.storage.On("Delete", mock.Anything, stored.Image).Return(errors.New("bucket gone"))

		require.NoError(t, svc.DeletePlace(ctx, placeID, ownerID))
	})

	t.Run("not found", func(t *testing.T) {
		svc, deps := newPlaceService()
		deps.places.On("GetByID", ctx, placeID).Return(model.Place{}, model.ErrNotFound)

		err := svc.DeletePlace(ctx, placeID, ownerID)
		assertAPIError(t, err, http.StatusNotFound, msgPlaceNotFound)
		assert.Zero(t, deps.tx.calls)
	})

	t.Run("not the owner", func(t *testing.T) {
		svc, deps := newPlaceService()
		deps.places.On("GetByID", ctx, placeID).Return(stored, nil)

		err := svc.DeletePlace(ctx, placeID, uuid.New())
		assertAPIError(t, err, http.StatusUnauthorized, msgDeleteForbidden)
		assert.Zero(t, deps.tx.calls)
		deps.places.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("back reference failure keeps image", func(t *testing.T) {
		svc, deps := newPlaceService()
		deps.places.On("GetByID", ctx, placeID).Return(stored, nil)
		deps.places.On("Delete", ctx, placeID).Return(nil)
		deps.users.On("RemovePlace", ctx, ownerID, placeID).Return(model.ErrNotFound)

		err := svc.DeletePlace(ctx, placeID, ownerID)
		assertAPIError(t, err, http.StatusInternalServerError, msgDeletePlaceFailed)
		deps.storage.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})
}
