package handler

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/dtroode/yourplaces-server/internal/apierror"
	"github.com/dtroode/yourplaces-server/internal/logger"
	"github.com/dtroode/yourplaces-server/internal/model"
)

const imagePrefix = "uploads/images/"

// Image streams stored images under their storage key.
type Image struct {
	storage model.Storage
	logger  *logger.Logger
}

func NewImage(storage model.Storage, logger *logger.Logger) *Image {
	return &Image{storage: storage, logger: logger}
}

func (h *Image) GetImage(c *gin.Context) {
	name := c.Param("name")
	if name == "" || strings.ContainsAny(name, `/\`) {
		handleError(c, apierror.NewErrNotFound(msgImageNotFound))
		return
	}
	key := imagePrefix + name

	rc, err := h.storage.Download(c.Request.Context(), key)
	if errors.Is(err, model.ErrNotFound) {
		handleError(c, apierror.NewErrNotFound(msgImageNotFound))
		return
	}
	if err != nil {
		h.logger.Error("HTTP image: failed to open image",
			"key", key,
			"error", err.Error())
		handleError(c, err)
		return
	}
	defer rc.Close()

	contentType := mime.TypeByExtension(path.Ext(name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Type", contentType)
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, rc); err != nil {
		h.logger.Warn("HTTP image: failed to stream image",
			"key", key,
			"error", err.Error())
	}
}
