package auth

import (
	"context"
	"strings"
	"time"

	"github.com/pharmaeye/pharmaeye-backend/internal/store"
	pkgauth "github.com/pharmaeye/pharmaeye-backend/pkg/auth"
	"github.com/pharmaeye/pharmaeye-backend/pkg/config"
	"github.com/pharmaeye/pharmaeye-backend/pkg/db/models"
	pkgerrors "github.com/pharmaeye/pharmaeye-backend/pkg/errors"
)

// Service authenticates staff and mints session tokens.
type Service interface {
	Login(ctx context.Context, identifier, password string) (*Session, error)
	BiometricLogin(ctx context.Context, credentialID string) (*Session, error)
}

// Session is the result of a successful authentication.
type Session struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

type service struct {
	gw  store.Gateway
	cfg config.JWTConfig
	now func() time.Time
}

// NewService wires authentication dependencies.
func NewService(gw store.Gateway, cfg config.JWTConfig) (Service, error) {
	if gw == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "storage gateway required")
	}
	if cfg.Secret == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "jwt secret required")
	}
	return &service{gw: gw, cfg: cfg, now: time.Now}, nil
}

func (s *service) Login(ctx context.Context, identifier, password string) (*Session, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "identifier and password are required")
	}

	user, err := s.gw.Authenticate(ctx, identifier, password)
	if err != nil {
		return nil, err
	}
	return s.mint(user)
}

func (s *service) BiometricLogin(ctx context.Context, credentialID string) (*Session, error) {
	credentialID = strings.TrimSpace(credentialID)
	if credentialID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "credential id required")
	}

	user, err := s.gw.FindUserByBiometric(ctx, credentialID)
	if err != nil {
		return nil, err
	}
	return s.mint(user)
}

func (s *service) mint(user *models.User) (*Session, error) {
	token, err := pkgauth.MintAccessToken(s.cfg, s.now(), pkgauth.AccessTokenPayload{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "minting access token")
	}
	return &Session{User: user, Token: token}, nil
}
