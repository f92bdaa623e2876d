package auth

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pharmaeye/pharmaeye-backend/internal/store"
	pkgauth "github.com/pharmaeye/pharmaeye-backend/pkg/auth"
	"github.com/pharmaeye/pharmaeye-backend/pkg/config"
	"github.com/pharmaeye/pharmaeye-backend/pkg/db/models"
	"github.com/pharmaeye/pharmaeye-backend/pkg/enums"
	pkgerrors "github.com/pharmaeye/pharmaeye-backend/pkg/errors"
)

type fakeGateway struct {
	store.Gateway
	user    *models.User
	authErr error
}

func (f *fakeGateway) Authenticate(_ context.Context, identifier, password string) (*models.User, error) {
	if f.authErr != nil {
		return nil, f.authErr
	}
	return f.user, nil
}

func (f *fakeGateway) FindUserByBiometric(_ context.Context, credentialID string) (*models.User, error) {
	if f.authErr != nil {
		return nil, f.authErr
	}
	return f.user, nil
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{Secret: "test-secret", Issuer: "pharmaeye", ExpirationMinutes: 60}
}

func TestLogin(t *testing.T) {
	user := &models.User{ID: uuid.New(), Username: "root", Role: enums.RoleAdmin}
	svc, err := NewService(&fakeGateway{user: user}, testJWTConfig())
	require.NoError(t, err)

	session, err := svc.Login(context.Background(), "root", "root1")
	require.NoError(t, err)
	assert.Equal(t, user, session.User)

	claims, err := pkgauth.ParseAccessToken(testJWTConfig(), session.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, "root", claims.Username)
	assert.Equal(t, enums.RoleAdmin, claims.Role)
}

func TestLogin_Validation(t *testing.T) {
	svc, err := NewService(&fakeGateway{}, testJWTConfig())
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), "  ", "x")
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))

	_, err = svc.Login(context.Background(), "root", "")
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))
}

func TestLogin_BadCredentialsPropagate(t *testing.T) {
	gw := &fakeGateway{authErr: pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")}
	svc, err := NewService(gw, testJWTConfig())
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), "root", "wrong")
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeUnauthorized, pkgerrors.CodeOf(err))
}

func TestBiometricLogin(t *testing.T) {
	user := &models.User{ID: uuid.New(), Username: "bio", Role: enums.RoleEmployee}
	svc, err := NewService(&fakeGateway{user: user}, testJWTConfig())
	require.NoError(t, err)

	session, err := svc.BiometricLogin(context.Background(), "cred-1")
	require.NoError(t, err)
	assert.Equal(t, user, session.User)
	assert.NotEmpty(t, session.Token)

	_, err = svc.BiometricLogin(context.Background(), "   ")
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))
}

func TestNewService_RequiresDeps(t *testing.T) {
	_, err := NewService(nil, testJWTConfig())
	require.Error(t, err)

	_, err = NewService(&fakeGateway{}, config.JWTConfig{})
	require.Error(t, err)
}
