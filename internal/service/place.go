package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/dtroode/yourplaces-server/internal/apierror"
	"github.com/dtroode/yourplaces-server/internal/logger"
	"github.com/dtroode/yourplaces-server/internal/model"
)

const minDescriptionLength = 5

const (
	msgPlaceNotFound     = "Could not find a place for the provided id."
	msgCreatorNotFound   = "We could not find user for provided id"
	msgUserNotFound      = "Could not find a user for the provided id."
	msgFindPlaceFailed   = "Something went wrong, could not find a place"
	msgFetchPlacesFailed = "Fetching places failed, please try again later"
	msgCreatePlaceFailed = "Creating place failed, please try again"
	msgUpdatePlaceFailed = "Something went wrong, could not update place."
	msgDeletePlaceFailed = "Something went wrong, could not delete place."
	msgEditForbidden     = "You are not allowed to edit this place."
	msgDeleteForbidden   = "You are not allowed to delete this place."
)

// Place implements the place workflows. Every write that touches both a
// place and its creator's back-reference runs in one transaction.
type Place struct {
	placeStore model.PlaceStore
	userStore  model.UserStore
	transactor model.Transactor
	geocoder   model.Geocoder
	storage    model.Storage
	logger     *logger.Logger
}

func NewPlace(
	placeStore model.PlaceStore,
	userStore model.UserStore,
	transactor model.Transactor,
	geocoder model.Geocoder,
	storage model.Storage,
	logger *logger.Logger,
) *Place {
	return &Place{
		placeStore: placeStore,
		userStore:  userStore,
		transactor: transactor,
		geocoder:   geocoder,
		storage:    storage,
		logger:     logger,
	}
}

func (s *Place) GetPlaceByID(ctx context.Context, id uuid.UUID) (model.Place, error) {
	place, err := s.placeStore.GetByID(ctx, id)
	if errors.Is(err, model.ErrNotFound) {
		return model.Place{}, apierror.NewErrNotFound(msgPlaceNotFound)
	}
	if err != nil {
		s.logger.Error("Place service: failed to get place",
			"place_id", id,
			"error", err.Error())
		return model.Place{}, apierror.NewErrPersistence(msgFindPlaceFailed, err)
	}

	return place, nil
}

// GetPlacesByUserID returns the places referenced by the user. A known user
// without places gets an empty list.
func (s *Place) GetPlacesByUserID(ctx context.Context, userID uuid.UUID) ([]model.Place, error) {
	user, err := s.userStore.GetByID(ctx, userID)
	if errors.Is(err, model.ErrNotFound) {
		return nil, apierror.NewErrNotFound(msgUserNotFound)
	}
	if err != nil {
		s.logger.Error("Place service: failed to get user",
			"user_id", userID,
			"error", err.Error())
		return nil, apierror.NewErrPersistence(msgFetchPlacesFailed, err)
	}

	places, err := s.placeStore.GetByIDs(ctx, user.PlaceIDs)
	if err != nil {
		s.logger.Error("Place service: failed to get places of user",
			"user_id", userID,
			"error", err.Error())
		return nil, apierror.NewErrPersistence(msgFetchPlacesFailed, err)
	}

	return places, nil
}

func (s *Place) CreatePlace(ctx context.Context, params model.CreatePlaceParams) (model.Place, error) {
	if err := validatePlaceInput(params.Title, params.Description); err != nil {
		return model.Place{}, err
	}
	if strings.TrimSpace(params.Address) == "" {
		return model.Place{}, apierror.NewErrValidation()
	}

	location, err := s.geocoder.Coordinates(ctx, params.Address)
	if err != nil {
		s.logger.Info("Place service: failed to geocode address",
			"address", params.Address,
			"error", err.Error())
		return model.Place{}, err
	}

	_, err = s.userStore.GetByID(ctx, params.CreatorID)
	if errors.Is(err, model.ErrNotFound) {
		return model.Place{}, apierror.NewErrNotFound(msgCreatorNotFound)
	}
	if err != nil {
		s.logger.Error("Place service: failed to get creator",
			"creator_id", params.CreatorID,
			"error", err.Error())
		return model.Place{}, apierror.NewErrPersistence(msgCreatePlaceFailed, err)
	}

	place := model.Place{
		ID:          uuid.New(),
		Title:       params.Title,
		Description: params.Description,
		Address:     params.Address,
		Image:       params.Image,
		Location:    location,
		CreatorID:   params.CreatorID,
	}

	err = s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		saved, err := s.placeStore.Create(ctx, place)
		if err != nil {
			return fmt.Errorf("failed to create place: %w", err)
		}
		if err := s.userStore.AddPlace(ctx, params.CreatorID, saved.ID); err != nil {
			return fmt.Errorf("failed to link place to creator: %w", err)
		}
		place = saved
		return nil
	})
	if err != nil {
		s.logger.Error("Place service: failed to create place",
			"creator_id", params.CreatorID,
			"error", err.Error())
		return model.Place{}, apierror.NewErrPersistence(msgCreatePlaceFailed, err)
	}

	s.logger.Info("Place service: place created",
		"place_id", place.ID,
		"creator_id", place.CreatorID)

	return place, nil
}

func (s *Place) UpdatePlace(ctx context.Context, params model.UpdatePlaceParams) (model.Place, error) {
	if err := validatePlaceInput(params.Title, params.Description); err != nil {
		return model.Place{}, err
	}

	place, err := s.placeStore.GetByID(ctx, params.PlaceID)
	if errors.Is(err, model.ErrNotFound) {
		return model.Place{}, apierror.NewErrNotFound(msgPlaceNotFound)
	}
	if err != nil {
		s.logger.Error("Place service: failed to get place for update",
			"place_id", params.PlaceID,
			"error", err.Error())
		return model.Place{}, apierror.NewErrPersistence(msgUpdatePlaceFailed, err)
	}

	if !model.SameID(place.CreatorID, params.CallerID) {
		s.logger.Info("Place service: update rejected",
			"place_id", params.PlaceID,
			"caller_id", params.CallerID)
		return model.Place{}, apierror.NewErrAuthorization(msgEditForbidden)
	}

	place.Title = params.Title
	place.Description = params.Description

	updated, err := s.placeStore.Update(ctx, place)
	if errors.Is(err, model.ErrNotFound) {
		return model.Place{}, apierror.NewErrNotFound(msgPlaceNotFound)
	}
	if err != nil {
		s.logger.Error("Place service: failed to update place",
			"place_id", params.PlaceID,
			"error", err.Error())
		return model.Place{}, apierror.NewErrPersistence(msgUpdatePlaceFailed, err)
	}

	return updated, nil
}

// DeletePlace removes the place and its back-reference atomically. The
// image is removed afterwards and a failure there does not fail the call.
func (s *Place) DeletePlace(ctx context.Context, placeID, callerID uuid.UUID) error {
	place, err := s.placeStore.GetByID(ctx, placeID)
	if errors.Is(err, model.ErrNotFound) {
		return apierror.NewErrNotFound(msgPlaceNotFound)
	}
	if err != nil {
		s.logger.Error("Place service: failed to get place for delete",
			"place_id", placeID,
			"error", err.Error())
		return apierror.NewErrPersistence(msgDeletePlaceFailed, err)
	}

	if !model.SameID(place.CreatorID, callerID) {
		s.logger.Info("Place service: delete rejected",
			"place_id", placeID,
			"caller_id", callerID)
		return apierror.NewErrAuthorization(msgDeleteForbidden)
	}

	err = s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.placeStore.Delete(ctx, place.ID); err != nil {
			return fmt.Errorf("failed to delete place: %w", err)
		}
		if err := s.userStore.RemovePlace(ctx, place.CreatorID, place.ID); err != nil {
			return fmt.Errorf("failed to unlink place from creator: %w", err)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Place service: failed to delete place",
			"place_id", placeID,
			"error", err.Error())
		return apierror.NewErrPersistence(msgDeletePlaceFailed, err)
	}

	if place.Image != "" {
		if err := s.storage.Delete(context.WithoutCancel(ctx), place.Image); err != nil {
			s.logger.Warn("Place service: failed to delete place image",
				"place_id", placeID,
				"image", place.Image,
				"error", err.Error())
		}
	}

	return nil
}

func validatePlaceInput(title, description string) error {
	if strings.TrimSpace(title) == "" || utf8.RuneCountInString(description) < minDescriptionLength {
		return apierror.NewErrValidation()
	}
	return nil
}
