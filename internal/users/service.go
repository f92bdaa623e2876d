package users

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/pharmaeye/pharmaeye-backend/internal/store"
	"github.com/pharmaeye/pharmaeye-backend/pkg/config"
	"github.com/pharmaeye/pharmaeye-backend/pkg/db/models"
	"github.com/pharmaeye/pharmaeye-backend/pkg/enums"
	pkgerrors "github.com/pharmaeye/pharmaeye-backend/pkg/errors"
	"github.com/pharmaeye/pharmaeye-backend/pkg/security"
)

// Service exposes staff account management. All operations are admin-only;
// the controllers enforce the role before calling in.
type Service interface {
	List(ctx context.Context) ([]models.User, error)
	Create(ctx context.Context, input CreateInput) (*models.User, error)
	Update(ctx context.Context, userID uuid.UUID, input UpdateInput) (*models.User, error)
	Delete(ctx context.Context, userID uuid.UUID) error
	RegisterBiometric(ctx context.Context, userID uuid.UUID, credentialID string) error
}

// CreateInput holds the validated payload to create an account.
type CreateInput struct {
	Username string
	Email    string
	Password string
	FullName string
	Role     enums.Role
	Phone    *string
}

// UpdateInput holds optional mutation values. An empty Password leaves the
// stored credential untouched.
type UpdateInput struct {
	Username *string
	Email    *string
	Password *string
	FullName *string
	Role     *enums.Role
	Phone    *string
}

type service struct {
	gw  store.Gateway
	cfg config.PasswordConfig
}

// NewService wires account management dependencies.
func NewService(gw store.Gateway, cfg config.PasswordConfig) (Service, error) {
	if gw == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "storage gateway required")
	}
	return &service{gw: gw, cfg: cfg}, nil
}

func (s *service) List(ctx context.Context) ([]models.User, error) {
	return s.gw.ListUsers(ctx)
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.User, error) {
	username := strings.TrimSpace(input.Username)
	email := strings.TrimSpace(input.Email)
	if username == "" || email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "username and email are required")
	}
	if input.Password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "password is required")
	}
	if !input.Role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid role")
	}

	hash, err := security.HashPassword(input.Password, s.cfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hashing password")
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		FullName:     strings.TrimSpace(input.FullName),
		Role:         input.Role,
		Phone:        input.Phone,
	}
	if err := s.gw.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	created := *user
	created.PasswordHash = ""
	return &created, nil
}

func (s *service) Update(ctx context.Context, userID uuid.UUID, input UpdateInput) (*models.User, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if input.Role != nil && !input.Role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid role")
	}

	patch := store.UserPatch{
		Username: input.Username,
		Email:    input.Email,
		FullName: input.FullName,
		Role:     input.Role,
		Phone:    input.Phone,
	}
	if input.Password != nil && *input.Password != "" {
		hash, err := security.HashPassword(*input.Password, s.cfg)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hashing password")
		}
		patch.PasswordHash = &hash
	}

	return s.gw.UpdateUser(ctx, userID, patch)
}

func (s *service) Delete(ctx context.Context, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	return s.gw.DeleteUser(ctx, userID)
}

func (s *service) RegisterBiometric(ctx context.Context, userID uuid.UUID, credentialID string) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if strings.TrimSpace(credentialID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "credential id required")
	}
	return s.gw.RegisterBiometric(ctx, userID, credentialID)
}
