package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/joseph0711/grading-system-sub000/internal/dto"
	"github.com/joseph0711/grading-system-sub000/internal/repository"
)

// ErrInvalidCredentials indicates an unknown account or a wrong password.
var ErrInvalidCredentials = errors.New("invalid credentials")

const sessionKeyPrefix = "session:"

// AuthService issues and revokes cookie-borne session tokens.
type AuthService interface {
	Login(ctx context.Context, payload dto.LoginRequest) (dto.LoginResponse, error)
	Logout(ctx context.Context, sessionID string) error
	SessionActive(ctx context.Context, sessionID string) (bool, error)
}

type authService struct {
	users      repository.UserRepository
	sessions   *redis.Client
	validator  *validator.Validate
	secret     string
	sessionTTL time.Duration
	logger     zerolog.Logger
	now        func() time.Time
}

// NewAuthService builds the authentication service.
func NewAuthService(users repository.UserRepository, sessions *redis.Client, validate *validator.Validate, secret string, sessionTTL time.Duration, logger zerolog.Logger) AuthService {
	return &authService{
		users:      users,
		sessions:   sessions,
		validator:  validate,
		secret:     secret,
		sessionTTL: sessionTTL,
		logger:     logger.With().Str("component", "auth_service").Logger(),
		now:        time.Now,
	}
}

func (s *authService) Login(ctx context.Context, payload dto.LoginRequest) (dto.LoginResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.LoginResponse{}, err
	}

	user, err := s.users.GetByEmail(ctx, payload.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.LoginResponse{}, ErrInvalidCredentials
		}
		return dto.LoginResponse{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(payload.Password)); err != nil {
		return dto.LoginResponse{}, ErrInvalidCredentials
	}

	sessionID := uuid.NewString()
	issuedAt := s.now()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  fmt.Sprintf("%d", user.ID),
		"role": user.Role,
		"sid":  sessionID,
		"iat":  issuedAt.Unix(),
		"exp":  issuedAt.Add(s.sessionTTL).Unix(),
	})

	signed, err := token.SignedString([]byte(s.secret))
	if err != nil {
		return dto.LoginResponse{}, fmt.Errorf("failed to sign session token: %w", err)
	}

	if err := s.sessions.Set(ctx, sessionKeyPrefix+sessionID, user.ID, s.sessionTTL).Err(); err != nil {
		return dto.LoginResponse{}, fmt.Errorf("failed to store session: %w", err)
	}

	s.logger.Info().Uint("user_id", user.ID).Str("role", user.Role).Msg("user signed in")

	return dto.LoginResponse{
		Token: signed,
		User:  dto.NewUserResponse(user),
	}, nil
}

func (s *authService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}

	if err := s.sessions.Del(ctx, sessionKeyPrefix+sessionID).Err(); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}

	return nil
}

// SessionActive reports whether the session id is still present in the store.
func (s *authService) SessionActive(ctx context.Context, sessionID string) (bool, error) {
	if sessionID == "" {
		return false, nil
	}

	count, err := s.sessions.Exists(ctx, sessionKeyPrefix+sessionID).Result()
	if err != nil {
		return false, err
	}

	return count > 0, nil
}
