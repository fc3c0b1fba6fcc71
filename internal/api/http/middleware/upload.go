package middleware

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dtroode/yourplaces-server/internal/apierror"
	"github.com/dtroode/yourplaces-server/internal/logger"
	"github.com/dtroode/yourplaces-server/internal/model"
)

const (
	// UploadedImageKey holds the storage key of the image stored for the current request.
	UploadedImageKey = "uploaded_image"

	imageField      = "image"
	imagePrefix     = "uploads/images/"
	multipartOffset = 1 << 20
)

var mimeExtensions = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpeg",
	"image/jpg":  "jpg",
}

// Upload stores a single image field before the handler runs.
type Upload struct {
	storage  model.Storage
	maxBytes int64
	logger   *logger.Logger
}

func NewUpload(storage model.Storage, maxBytes int64, logger *logger.Logger) *Upload {
	return &Upload{storage: storage, maxBytes: maxBytes, logger: logger}
}

func (u *Upload) Handle(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, u.maxBytes+multipartOffset)

	header, err := c.FormFile(imageField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			u.abort(c, apierror.NewErrUploadTooLarge(u.maxBytes))
			return
		}
		u.abort(c, apierror.NewErrValidation())
		return
	}

	contentType := header.Header.Get("Content-Type")
	ext, ok := mimeExtensions[contentType]
	if !ok {
		u.abort(c, apierror.NewErrInvalidMimeType(contentType))
		return
	}
	if header.Size > u.maxBytes {
		u.abort(c, apierror.NewErrUploadTooLarge(u.maxBytes))
		return
	}

	file, err := header.Open()
	if err != nil {
		u.abort(c, apierror.NewErrUploadFailed(fmt.Errorf("failed to open uploaded file: %w", err)))
		return
	}
	defer file.Close()

	name, err := uuid.NewUUID()
	if err != nil {
		u.abort(c, apierror.NewErrUploadFailed(fmt.Errorf("failed to generate file name: %w", err)))
		return
	}
	key := imagePrefix + name.String() + "." + ext

	if err := u.storage.Upload(c.Request.Context(), key, file, header.Size, contentType); err != nil {
		u.logger.Error("HTTP upload: failed to store image",
			"key", key,
			"error", err.Error())
		u.abort(c, apierror.NewErrUploadFailed(err))
		return
	}

	c.Set(UploadedImageKey, key)
	c.Next()
}

func (u *Upload) abort(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}
