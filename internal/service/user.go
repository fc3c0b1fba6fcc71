package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/dtroode/yourplaces-server/internal/apierror"
	"github.com/dtroode/yourplaces-server/internal/logger"
	"github.com/dtroode/yourplaces-server/internal/model"
)

const defaultHashCost = 12

const (
	msgSignupFailed     = "Signing up failed, please try again later."
	msgLoginFailed      = "Logging in failed, please try again later."
	msgFetchUsersFailed = "Fetching users failed, please try again later."
)

type signupInput struct {
	Name     string `validate:"required"`
	Email    string `validate:"required,email"`
	Password string `validate:"min=6"`
}

type User struct {
	userStore    model.UserStore
	tokenService *TokenService
	validate     *validator.Validate
	hashCost     int
	logger       *logger.Logger
}

func NewUser(userStore model.UserStore, tokenService *TokenService, logger *logger.Logger) *User {
	return &User{
		userStore:    userStore,
		tokenService: tokenService,
		validate:     validator.New(),
		hashCost:     defaultHashCost,
		logger:       logger,
	}
}

func (s *User) ListUsers(ctx context.Context) ([]model.User, error) {
	users, err := s.userStore.List(ctx)
	if err != nil {
		s.logger.Error("User service: failed to list users",
			"error", err.Error())
		return nil, apierror.NewErrPersistence(msgFetchUsersFailed, err)
	}
	return users, nil
}

func (s *User) Signup(ctx context.Context, params model.SignupParams) (model.Session, error) {
	input := signupInput{
		Name:     strings.TrimSpace(params.Name),
		Email:    normalizeEmail(params.Email),
		Password: params.Password,
	}
	if err := s.validate.Struct(input); err != nil {
		return model.Session{}, apierror.NewErrValidation()
	}

	s.logger.Debug("User service: signing up",
		"email", input.Email)

	_, err := s.userStore.GetByEmail(ctx, input.Email)
	if err == nil {
		s.logger.Info("User service: user already exists",
			"email", input.Email)
		return model.Session{}, apierror.NewErrEmailIsTaken(input.Email)
	}
	if !errors.Is(err, model.ErrNotFound) {
		s.logger.Error("User service: failed to get user by email",
			"email", input.Email,
			"error", err.Error())
		return model.Session{}, apierror.NewErrPersistence(msgSignupFailed, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.hashCost)
	if err != nil {
		return model.Session{}, apierror.NewErrPersistence(msgSignupFailed, fmt.Errorf("failed to hash password: %w", err))
	}

	user, err := s.userStore.Create(ctx, model.User{
		ID:           uuid.New(),
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: hash,
		Image:        params.Image,
		PlaceIDs:     []uuid.UUID{},
	})
	if errors.Is(err, model.ErrEmailTaken) {
		return model.Session{}, apierror.NewErrEmailIsTaken(input.Email)
	}
	if err != nil {
		s.logger.Error("User service: failed to create user",
			"email", input.Email,
			"error", err.Error())
		return model.Session{}, apierror.NewErrPersistence(msgSignupFailed, err)
	}

	session, err := s.session(ctx, user)
	if err != nil {
		return model.Session{}, apierror.NewErrPersistence(msgSignupFailed, err)
	}

	s.logger.Info("User service: user signed up",
		"user_id", user.ID)

	return session, nil
}

func (s *User) Login(ctx context.Context, email, password string) (model.Session, error) {
	email = normalizeEmail(email)

	user, err := s.userStore.GetByEmail(ctx, email)
	if errors.Is(err, model.ErrNotFound) {
		return model.Session{}, apierror.NewErrInvalidCredentials()
	}
	if err != nil {
		s.logger.Error("User service: failed to get user by email",
			"email", email,
			"error", err.Error())
		return model.Session{}, apierror.NewErrPersistence(msgLoginFailed, err)
	}

	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		s.logger.Info("User service: invalid password",
			"user_id", user.ID)
		return model.Session{}, apierror.NewErrInvalidCredentials()
	}

	session, err := s.session(ctx, user)
	if err != nil {
		return model.Session{}, apierror.NewErrPersistence(msgLoginFailed, err)
	}

	return session, nil
}

func (s *User) session(ctx context.Context, user model.User) (model.Session, error) {
	access, refresh, err := s.tokenService.Issue(ctx, user.ID, user.Email)
	if err != nil {
		s.logger.Error("User service: failed to issue tokens",
			"user_id", user.ID,
			"error", err.Error())
		return model.Session{}, err
	}

	return model.Session{
		UserID:       user.ID,
		Email:        user.Email,
		Token:        access,
		RefreshToken: refresh,
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
