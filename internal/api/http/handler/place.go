package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dtroode/yourplaces-server/internal/api/http/middleware"
	"github.com/dtroode/yourplaces-server/internal/apierror"
	"github.com/dtroode/yourplaces-server/internal/logger"
	"github.com/dtroode/yourplaces-server/internal/model"
)

type PlaceService interface {
	GetPlaceByID(ctx context.Context, id uuid.UUID) (model.Place, error)
	GetPlacesByUserID(ctx context.Context, userID uuid.UUID) ([]model.Place, error)
	CreatePlace(ctx context.Context, params model.CreatePlaceParams) (model.Place, error)
	UpdatePlace(ctx context.Context, params model.UpdatePlaceParams) (model.Place, error)
	DeletePlace(ctx context.Context, placeID, callerID uuid.UUID) error
}

type createPlaceRequest struct {
	Title       string `form:"title" binding:"required"`
	Description string `form:"description" binding:"required,min=5"`
	Address     string `form:"address" binding:"required"`
}

type updatePlaceRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description" binding:"required,min=5"`
}

type Place struct {
	service        PlaceService
	contextManager model.ContextManager
	logger         *logger.Logger
}

func NewPlace(service PlaceService, contextManager model.ContextManager, logger *logger.Logger) *Place {
	return &Place{service: service, contextManager: contextManager, logger: logger}
}

func (h *Place) GetPlaceByID(c *gin.Context) {
	placeID, ok := pathID(c, "pid", msgPlaceNotFound)
	if !ok {
		return
	}

	place, err := h.service.GetPlaceByID(c.Request.Context(), placeID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"place": place})
}

func (h *Place) GetPlacesByUserID(c *gin.Context) {
	userID, ok := pathID(c, "uid", msgUserNotFound)
	if !ok {
		return
	}

	places, err := h.service.GetPlacesByUserID(c.Request.Context(), userID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"places": places})
}

func (h *Place) CreatePlace(c *gin.Context) {
	creatorID, ok := callerID(c, h.contextManager)
	if !ok {
		return
	}

	var req createPlaceRequest
	if err := c.ShouldBind(&req); err != nil {
		handleError(c, apierror.NewErrValidation())
		return
	}

	place, err := h.service.CreatePlace(c.Request.Context(), model.CreatePlaceParams{
		Title:       req.Title,
		Description: req.Description,
		Address:     req.Address,
		Image:       c.GetString(middleware.UploadedImageKey),
		CreatorID:   creatorID,
	})
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"place": place})
}

func (h *Place) UpdatePlace(c *gin.Context) {
	caller, ok := callerID(c, h.contextManager)
	if !ok {
		return
	}
	placeID, ok := pathID(c, "pid", msgPlaceNotFound)
	if !ok {
		return
	}

	var req updatePlaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, apierror.NewErrValidation())
		return
	}

	place, err := h.service.UpdatePlace(c.Request.Context(), model.UpdatePlaceParams{
		PlaceID:     placeID,
		Title:       req.Title,
		Description: req.Description,
		CallerID:    caller,
	})
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"place": place})
}

func (h *Place) DeletePlace(c *gin.Context) {
	caller, ok := callerID(c, h.contextManager)
	if !ok {
		return
	}
	placeID, ok := pathID(c, "pid", msgPlaceNotFound)
	if !ok {
		return
	}

	if err := h.service.DeletePlace(c.Request.Context(), placeID, caller); err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Deleted place."})
}
