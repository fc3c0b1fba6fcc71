package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dtroode/yourplaces-server/internal/apierror"
	"github.com/dtroode/yourplaces-server/internal/model"
)

const (
	msgPlaceNotFound = "Could not find a place for the provided id."
	msgUserNotFound  = "Could not find a user for the provided id."
	msgImageNotFound = "Could not find the requested image."
	msgRouteNotFound = "Could not find this route."
)

// handleError hands err to the error responder and stops the chain.
func handleError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// pathID parses an id path parameter. Malformed ids are reported as absent records.
func pathID(c *gin.Context, name, notFoundMessage string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		handleError(c, apierror.NewErrNotFound(notFoundMessage))
		return uuid.Nil, false
	}
	return id, true
}

func callerID(c *gin.Context, cm model.ContextManager) (uuid.UUID, bool) {
	userID, ok := cm.GetUserIDFromContext(c.Request.Context())
	if !ok {
		handleError(c, apierror.NewErrAuthentication(nil))
		return uuid.Nil, false
	}
	return userID, true
}
