package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/muhammad-umar-9/GIK-BuyHub/internal/domain"
	"github.com/muhammad-umar-9/GIK-BuyHub/internal/repository"
	"github.com/muhammad-umar-9/GIK-BuyHub/pkg/mylogger"
	"github.com/muhammad-umar-9/GIK-BuyHub/pkg/utils"
	"github.com/muhammad-umar-9/GIK-BuyHub/pkg/validator"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 12

type SessionStore interface {
	Save(ctx context.Context, session *domain.RefreshSession) error
	Get(ctx context.Context, id string) (*domain.RefreshSession, error)
	Delete(ctx context.Context, id string) error
}

type AuthService interface {
	Signup(ctx context.Context, username, password string, role domain.UserRole) (*domain.User, error)
	Login(ctx context.Context, username, password string) (*utils.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*utils.TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
	Me(ctx context.Context, userID int64) (*domain.User, error)
}

type authService struct {
	store     repository.Store
	sessions  SessionStore
	jwt       *utils.JWTManager
	validator validator.Validator
	logger    *zap.Logger
}

func NewAuthService(
	store repository.Store,
	sessions SessionStore,
	jwt *utils.JWTManager,
	validator validator.Validator,
	logger *zap.Logger,
) AuthService {
	return &authService{
		store:     store,
		sessions:  sessions,
		jwt:       jwt,
		validator: validator,
		logger:    logger,
	}
}

// Signup registers a student, owner or employee account. Admins are not self-service.
func (s *authService) Signup(ctx context.Context, username, password string, role domain.UserRole) (*domain.User, error) {
	username = strings.TrimSpace(username)
	if err := s.validator.ValidateUsername(username); err != nil {
		return nil, err
	}
	if err := s.validator.ValidatePassword(password); err != nil {
		return nil, err
	}

	if role == "" {
		role = domain.UserRoleStudent
	}
	if !role.Valid() || role == domain.UserRoleAdmin {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidUserRole, role)
	}

	hashedPass, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		mylogger.Error(
			ctx,
			s.logger,
			"Error hashing password",
			zap.String("username", username),
			zap.Error(err),
		)

		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user, err := s.store.Users().Create(ctx, &domain.User{
		Username:     username,
		PasswordHash: string(hashedPass),
		Role:         role,
	})
	if err != nil {
		if errors.Is(err, repository.ErrUserAlreadyExists) {
			mylogger.Info(ctx, s.logger, "User already exists", zap.String("username", username))
		}

		return nil, err
	}

	mylogger.Info(ctx, s.logger, "User registered", zap.Int64("user_id", user.ID), zap.String("role", string(user.Role)))
	return user, nil
}

func (s *authService) Login(ctx context.Context, username, password string) (*utils.TokenPair, error) {
	user, err := s.store.Users().GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}

		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		mylogger.Warn(ctx, s.logger, "Wrong password", zap.Int64("user_id", user.ID))
		return nil, ErrInvalidCredentials
	}

	return s.issue(ctx, user)
}

// Refresh rotates the session: the presented refresh token stops working.
func (s *authService) Refresh(ctx context.Context, refreshToken string) (*utils.TokenPair, error) {
	claims, err := s.jwt.ValidateToken(refreshToken, true)
	if err != nil {
		mylogger.Warn(ctx, s.logger, "Error validating refresh token", zap.Error(err))
		return nil, err
	}

	session, err := s.sessions.Get(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil, fmt.Errorf("%w: session revoked", utils.ErrInvalidToken)
		}

		return nil, err
	}

	if err := s.sessions.Delete(ctx, session.ID); err != nil && !errors.Is(err, repository.ErrSessionNotFound) {
		return nil, err
	}

	user, err := s.store.Users().GetByID(ctx, session.UserID)
	if err != nil {
		mylogger.Warn(ctx, s.logger, "Error finding user by id", zap.Int64("user_id", session.UserID), zap.Error(err))
		return nil, err
	}

	return s.issue(ctx, user)
}

func (s *authService) Logout(ctx context.Context, refreshToken string) error {
	claims, err := s.jwt.ValidateToken(refreshToken, true)
	if err != nil {
		return err
	}

	if err := s.sessions.Delete(ctx, claims.ID); err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil
		}

		mylogger.Error(ctx, s.logger, "Error deleting session", zap.Int64("user_id", claims.UserID), zap.Error(err))
		return err
	}

	return nil
}

func (s *authService) Me(ctx context.Context, userID int64) (*domain.User, error) {
	return s.store.Users().GetByID(ctx, userID)
}

func (s *authService) issue(ctx context.Context, user *domain.User) (*utils.TokenPair, error) {
	tokens, err := s.jwt.GenerateTokens(user.ID, user.Username, string(user.Role))
	if err != nil {
		mylogger.Error(ctx, s.logger, "Error generating tokens", zap.Int64("user_id", user.ID), zap.Error(err))
		return nil, fmt.Errorf("error generating tokens: %w", err)
	}

	session := &domain.RefreshSession{
		ID:        tokens.RefreshID,
		UserID:    user.ID,
		Role:      user.Role,
		ExpiresAt: tokens.RefreshExpiresAt,
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("error saving session: %w", err)
	}

	return tokens, nil
}
