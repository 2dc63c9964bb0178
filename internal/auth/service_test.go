package auth

import (
	"context"
	"testing"
	"time"

	"bookworm/internal/shared/config"
	"bookworm/internal/users"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuthRepo struct {
	byID    map[string]*users.User
	byEmail map[string]*users.User
}

func newFakeAuthRepo() *fakeAuthRepo {
	return &fakeAuthRepo{
		byID:    make(map[string]*users.User),
		byEmail: make(map[string]*users.User),
	}
}

func (f *fakeAuthRepo) CreateUser(_ context.Context, user *users.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	f.byID[user.ID.String()] = user
	f.byEmail[user.Email] = user
	return nil
}

func (f *fakeAuthRepo) GetUserByEmail(_ context.Context, email string) (*users.User, error) {
	user, ok := f.byEmail[email]
	if !ok {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (f *fakeAuthRepo) GetUserByID(_ context.Context, id string) (*users.User, error) {
	user, ok := f.byID[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (f *fakeAuthRepo) UpdateUserPassword(_ context.Context, userID, hashedPassword string) error {
	user, ok := f.byID[userID]
	if !ok {
		return ErrUserNotFound
	}
	user.Password = hashedPassword
	return nil
}

func (f *fakeAuthRepo) EmailExists(_ context.Context, email string) (bool, error) {
	_, ok := f.byEmail[email]
	return ok, nil
}

func newAuthService(repo Repository) Service {
	cfg := &config.Config{
		JWT: config.JWTConfig{
			Secret:           "test-secret",
			JWTExpiresIn:     15 * time.Minute,
			RefreshExpiresIn: 24 * time.Hour,
		},
	}
	return NewService(repo, cfg)
}

func registerRequest() *RegisterRequest {
	return &RegisterRequest{
		FirstName: "Ursula",
		LastName:  "Le Guin",
		Email:     "ursula@example.com",
		Password:  "anarres1974",
	}
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newAuthService(newFakeAuthRepo())
	ctx := context.Background()

	registered, err := svc.Register(ctx, registerRequest())
	require.NoError(t, err)
	assert.NotEmpty(t, registered.AccessToken)
	assert.NotEmpty(t, registered.RefreshToken)
	assert.Equal(t, string(users.RoleUser), registered.User.Role)

	loggedIn, err := svc.Login(ctx, &LoginRequest{Email: "ursula@example.com", Password: "anarres1974"})
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, loggedIn.User.ID)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	svc := newAuthService(newFakeAuthRepo())
	ctx := context.Background()

	_, err := svc.Register(ctx, registerRequest())
	require.NoError(t, err)

	_, err = svc.Register(ctx, registerRequest())
	assert.ErrorIs(t, err, ErrUserAlreadyExists)
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	svc := newAuthService(newFakeAuthRepo())
	ctx := context.Background()

	_, err := svc.Register(ctx, registerRequest())
	require.NoError(t, err)

	_, err = svc.Login(ctx, &LoginRequest{Email: "ursula@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, &LoginRequest{Email: "nobody@example.com", Password: "anarres1974"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRefreshTokenRequiresRefreshType(t *testing.T) {
	svc := newAuthService(newFakeAuthRepo())
	ctx := context.Background()

	registered, err := svc.Register(ctx, registerRequest())
	require.NoError(t, err)

	pair, err := svc.RefreshToken(ctx, registered.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)

	// An access token must not be usable as a refresh token.
	_, err = svc.RefreshToken(ctx, registered.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateTokenClaims(t *testing.T) {
	svc := newAuthService(newFakeAuthRepo())
	ctx := context.Background()

	registered, err := svc.Register(ctx, registerRequest())
	require.NoError(t, err)

	claims, err := svc.ValidateToken(registered.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, claims.UserID)
	assert.Equal(t, "access", claims.Type)
	assert.Equal(t, "ursula@example.com", claims.Email)

	_, err = svc.ValidateToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestChangePassword(t *testing.T) {
	svc := newAuthService(newFakeAuthRepo())
	ctx := context.Background()

	registered, err := svc.Register(ctx, registerRequest())
	require.NoError(t, err)

	err = svc.ChangePassword(ctx, registered.User.ID, &ChangePasswordRequest{
		CurrentPassword: "wrong",
		NewPassword:     "newpassword",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	err = svc.ChangePassword(ctx, registered.User.ID, &ChangePasswordRequest{
		CurrentPassword: "anarres1974",
		NewPassword:     "newpassword",
	})
	require.NoError(t, err)

	_, err = svc.Login(ctx, &LoginRequest{Email: "ursula@example.com", Password: "newpassword"})
	assert.NoError(t, err)
}
