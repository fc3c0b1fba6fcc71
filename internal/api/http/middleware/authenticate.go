package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dtroode/yourplaces-server/internal/apierror"
	"github.com/dtroode/yourplaces-server/internal/logger"
	"github.com/dtroode/yourplaces-server/internal/model"
)

var (
	errMissingToken = errors.New("missing bearer token")
	errNilSubject   = errors.New("token has no subject")
)

// TokenService resolves user ID from bearer tokens.
type TokenService interface {
	GetUserID(ctx context.Context, token string) (uuid.UUID, error)
}

// Authenticate validates bearer tokens and injects user ID into the request context.
type Authenticate struct {
	tokenService   TokenService
	contextManager model.ContextManager
	logger         *logger.Logger
}

func NewAuthenticate(tokenService TokenService, contextManager model.ContextManager, logger *logger.Logger) *Authenticate {
	return &Authenticate{tokenService: tokenService, contextManager: contextManager, logger: logger}
}

// Handle rejects requests without a valid access token. Preflight requests pass through.
func (m *Authenticate) Handle(c *gin.Context) {
	if c.Request.Method == http.MethodOptions {
		c.Next()
		return
	}

	userID, err := m.authenticateUser(c.Request.Context(), c.GetHeader("Authorization"))
	if err != nil {
		m.logger.Debug("HTTP auth: rejected request",
			"path", c.FullPath(),
			"error", err.Error())
		_ = c.Error(apierror.NewErrAuthentication(err))
		c.Abort()
		return
	}

	c.Request = c.Request.WithContext(m.contextManager.SetUserIDToContext(c.Request.Context(), userID))
	c.Next()
}

func (m *Authenticate) authenticateUser(ctx context.Context, header string) (uuid.UUID, error) {
	scheme, tokenString, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(tokenString) == "" {
		return uuid.Nil, errMissingToken
	}

	userID, err := m.tokenService.GetUserID(ctx, strings.TrimSpace(tokenString))
	if err != nil {
		return uuid.Nil, err
	}
	if userID == uuid.Nil {
		return uuid.Nil, errNilSubject
	}

	return userID, nil
}
