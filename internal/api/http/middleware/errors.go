package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/dtroode/yourplaces-server/internal/apierror"
	"github.com/dtroode/yourplaces-server/internal/logger"
	"github.com/dtroode/yourplaces-server/internal/model"
)

// ErrorResponder writes the last error of the chain as {message}. An image
// stored for a failed or panicking request is removed; panics are re-raised
// for the recovery middleware.
type ErrorResponder struct {
	storage model.Storage
	logger  *logger.Logger
}

func NewErrorResponder(storage model.Storage, logger *logger.Logger) *ErrorResponder {
	return &ErrorResponder{storage: storage, logger: logger}
}

func (r *ErrorResponder) Handle(c *gin.Context) {
	defer func() {
		if p := recover(); p != nil {
			r.removeUpload(c)
			panic(p)
		}
	}()

	c.Next()

	if len(c.Errors) == 0 {
		return
	}
	err := c.Errors.Last().Err

	r.removeUpload(c)

	if c.Writer.Written() {
		return
	}

	status, message := apierror.StatusAndMessage(err)
	c.JSON(status, gin.H{"message": message})
}

// removeUpload deletes the image stored for the current request, if any.
func (r *ErrorResponder) removeUpload(c *gin.Context) {
	key := c.GetString(UploadedImageKey)
	if key == "" {
		return
	}
	if err := r.storage.Delete(context.WithoutCancel(c.Request.Context()), key); err != nil {
		r.logger.Warn("HTTP errors: failed to remove uploaded image",
			"key", key,
			"error", err.Error())
	}
}
