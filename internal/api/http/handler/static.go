package handler

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/dtroode/yourplaces-server/internal/apierror"
)

// Fallback answers unmatched routes. Unknown API paths get a 404 message;
// everything else is served from publicDir with index.html as the SPA entry.
type Fallback struct {
	publicDir string
}

func NewFallback(publicDir string) *Fallback {
	return &Fallback{publicDir: publicDir}
}

func (h *Fallback) Handle(c *gin.Context) {
	p := c.Request.URL.Path
	if p == "/api" || strings.HasPrefix(p, "/api/") || h.publicDir == "" {
		handleError(c, apierror.NewErrNotFound(msgRouteNotFound))
		return
	}
	if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
		handleError(c, apierror.NewErrNotFound(msgRouteNotFound))
		return
	}

	root, err := filepath.Abs(h.publicDir)
	if err != nil {
		handleError(c, err)
		return
	}

	file := filepath.Join(root, filepath.FromSlash(filepath.Clean("/"+p)))
	if info, err := os.Stat(file); err == nil && !info.IsDir() {
		c.File(file)
		return
	}

	index := filepath.Join(root, "index.html")
	if _, err := os.Stat(index); err != nil {
		handleError(c, apierror.NewErrNotFound(msgRouteNotFound))
		return
	}
	c.File(index)
}
