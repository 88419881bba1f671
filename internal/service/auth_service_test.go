package service

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/joseph0711/grading-system-sub000/internal/dto"
	"github.com/joseph0711/grading-system-sub000/internal/models"
)

type fakeUserRepo struct {
	users map[string]models.User
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id uint) (models.User, error) {
	for _, user := range f.users {
		if user.ID == id {
			return user, nil
		}
	}
	return models.User{}, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (models.User, error) {
	user, ok := f.users[email]
	if !ok {
		return models.User{}, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (f *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	f.users[user.Email] = *user
	return nil
}

func setupAuthService(t *testing.T) (AuthService, *miniredis.Miniredis) {
	t.Helper()

	server, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(server.Close)

	client := redis.NewClient(&redis.Options{Addr: server.Addr()})

	hash, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.MinCost)
	require.NoError(t, err)

	users := &fakeUserRepo{users: map[string]models.User{
		"teacher@example.com": {
			ID:           1,
			Name:         "Grace Teacher",
			Email:        "teacher@example.com",
			PasswordHash: string(hash),
			Role:         models.RoleTeacher,
		},
	}}

	validate := validator.New(validator.WithRequiredStructEnabled())
	return NewAuthService(users, client, validate, "test-secret", time.Hour, testLogger()), server
}

func TestAuthServiceLoginWrongPassword(t *testing.T) {
	svc, server := setupAuthService(t)

	_, err := svc.Login(context.Background(), dto.LoginRequest{
		Email:    "teacher@example.com",
		Password: "wrong-password",
	})
	require.ErrorIs(t, err, ErrInvalidCredentials)
	require.Empty(t, server.Keys())
}

func TestAuthServiceLoginUnknownAccount(t *testing.T) {
	svc, _ := setupAuthService(t)

	_, err := svc.Login(context.Background(), dto.LoginRequest{
		Email:    "nobody@example.com",
		Password: "correct-horse",
	})
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthServiceLoginStoresSession(t *testing.T) {
	svc, server := setupAuthService(t)

	response, err := svc.Login(context.Background(), dto.LoginRequest{
		Email:    "teacher@example.com",
		Password: "correct-horse",
	})
	require.NoError(t, err)
	require.NotEmpty(t, response.Token)
	require.Equal(t, models.RoleTeacher, response.User.Role)
	require.Len(t, server.Keys(), 1)
}

func TestAuthServiceLogoutRevokesSession(t *testing.T) {
	svc, server := setupAuthService(t)

	_, err := svc.Login(context.Background(), dto.LoginRequest{
		Email:    "teacher@example.com",
		Password: "correct-horse",
	})
	require.NoError(t, err)

	keys := server.Keys()
	require.Len(t, keys, 1)
	sessionID := keys[0][len("session:"):]

	active, err := svc.SessionActive(context.Background(), sessionID)
	require.NoError(t, err)
	require.True(t, active)

	require.NoError(t, svc.Logout(context.Background(), sessionID))

	active, err = svc.SessionActive(context.Background(), sessionID)
	require.NoError(t, err)
	require.False(t, active)
}
