package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dtroode/yourplaces-server/internal/api/http/middleware"
	"github.com/dtroode/yourplaces-server/internal/apierror"
	"github.com/dtroode/yourplaces-server/internal/logger"
	"github.com/dtroode/yourplaces-server/internal/model"
)

type UserService interface {
	ListUsers(ctx context.Context) ([]model.User, error)
	Signup(ctx context.Context, params model.SignupParams) (model.Session, error)
	Login(ctx context.Context, email, password string) (model.Session, error)
}

type TokenService interface {
	Refresh(ctx context.Context, refreshToken string) (string, string, error)
	RevokeByToken(ctx context.Context, refreshToken string) error
}

type signupRequest struct {
	Name     string `form:"name" binding:"required"`
	Email    string `form:"email" binding:"required,email"`
	Password string `form:"password" binding:"required,min=6"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

type User struct {
	userService  UserService
	tokenService TokenService
	logger       *logger.Logger
}

func NewUser(userService UserService, tokenService TokenService, logger *logger.Logger) *User {
	return &User{userService: userService, tokenService: tokenService, logger: logger}
}

func (h *User) ListUsers(c *gin.Context) {
	users, err := h.userService.ListUsers(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"users": users})
}

func (h *User) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBind(&req); err != nil {
		handleError(c, apierror.NewErrValidation())
		return
	}

	session, err := h.userService.Signup(c.Request.Context(), model.SignupParams{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Image:    c.GetString(middleware.UploadedImageKey),
	})
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, session)
}

func (h *User) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, apierror.NewErrInvalidCredentials())
		return
	}

	session, err := h.userService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, session)
}

func (h *User) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, apierror.NewErrAuthentication(err))
		return
	}

	access, refresh, err := h.tokenService.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": access, "refreshToken": refresh})
}

func (h *User) Logout(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, apierror.NewErrAuthentication(err))
		return
	}

	if err := h.tokenService.RevokeByToken(c.Request.Context(), req.RefreshToken); err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Logged out."})
}
