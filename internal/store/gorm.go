package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pharmaeye/pharmaeye-backend/pkg/db"
	"github.com/pharmaeye/pharmaeye-backend/pkg/db/models"
	"github.com/pharmaeye/pharmaeye-backend/pkg/enums"
	pkgerrors "github.com/pharmaeye/pharmaeye-backend/pkg/errors"
	"github.com/pharmaeye/pharmaeye-backend/pkg/security"
)

// gormStore serves both database-backed gateway variants: the embedded SQLite
// file (local) and the managed Postgres instance (supabase). The dialector is
// decided by Open; everything below is backend-agnostic GORM.
type gormStore struct {
	client  *db.Client
	backend string
}

func newGormStore(client *db.Client, backend string) *gormStore {
	return &gormStore{client: client, backend: backend}
}

func (s *gormStore) Backend() string { return s.backend }

func (s *gormStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "database unreachable")
	}
	return nil
}

func (s *gormStore) Close() error { return s.client.Close() }

// --- Drugs ---

func (s *gormStore) ListDrugs(ctx context.Context) ([]models.Drug, error) {
	var drugs []models.Drug
	if err := s.client.DB().WithContext(ctx).Order("created_at DESC").Find(&drugs).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list drugs")
	}
	return drugs, nil
}

func (s *gormStore) InsertDrug(ctx context.Context, drug *models.Drug) error {
	if strings.TrimSpace(drug.TradeName) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "trade name is required")
	}
	if drug.ID == uuid.Nil {
		drug.ID = uuid.New()
	}
	if err := s.client.DB().WithContext(ctx).Create(drug).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert drug")
	}
	return nil
}

func (s *gormStore) InsertDrugs(ctx context.Context, drugs []models.Drug) error {
	if len(drugs) == 0 {
		return nil
	}
	for i := range drugs {
		if strings.TrimSpace(drugs[i].TradeName) == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "batch contains a row without a trade name")
		}
		if drugs[i].ID == uuid.Nil {
			drugs[i].ID = uuid.New()
		}
	}
	if err := s.client.DB().WithContext(ctx).Create(&drugs).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert drugs batch")
	}
	return nil
}

func (s *gormStore) UpdateDrug(ctx context.Context, id uuid.UUID, patch DrugPatch) (*models.Drug, error) {
	var drug models.Drug
	if err := s.client.DB().WithContext(ctx).First(&drug, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "drug not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load drug")
	}

	applyDrugPatch(&drug, patch)
	if strings.TrimSpace(drug.TradeName) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "trade name cannot be emptied")
	}

	if err := s.client.DB().WithContext(ctx).Save(&drug).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update drug")
	}
	return &drug, nil
}

func (s *gormStore) DeleteDrug(ctx context.Context, id uuid.UUID) error {
	result := s.client.DB().WithContext(ctx).Where("id = ?", id).Delete(&models.Drug{})
	if result.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, result.Error, "delete drug")
	}
	if result.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "drug not found")
	}
	return nil
}

// --- Users ---

func (s *gormStore) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := s.client.DB().WithContext(ctx).Order("created_at ASC").Find(&users).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list users")
	}
	for i := range users {
		users[i].PasswordHash = ""
	}
	return users, nil
}

func (s *gormStore) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if err := s.client.DB().WithContext(ctx).Create(user).Error; err != nil {
		if db.IsUniqueViolation(err, "") {
			return pkgerrors.New(pkgerrors.CodeConflict, "username or email already exists")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create user")
	}
	return nil
}

func (s *gormStore) UpdateUser(ctx context.Context, id uuid.UUID, patch UserPatch) (*models.User, error) {
	var user models.User
	if err := s.client.DB().WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}

	if patch.Username != nil || patch.Email != nil {
		username := user.Username
		if patch.Username != nil {
			username = *patch.Username
		}
		email := user.Email
		if patch.Email != nil {
			email = *patch.Email
		}
		var count int64
		err := s.client.DB().WithContext(ctx).
			Model(&models.User{}).
			Where("id <> ? AND (username = ? OR email = ?)", id, username, email).
			Count(&count).Error
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check duplicates")
		}
		if count > 0 {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "username or email already used by another account")
		}
	}

	applyUserPatch(&user, patch)

	if err := s.client.DB().WithContext(ctx).Save(&user).Error; err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "username or email already used by another account")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update user")
	}

	sanitized := user
	sanitized.PasswordHash = ""
	return &sanitized, nil
}

func (s *gormStore) DeleteUser(ctx context.Context, id uuid.UUID) error {
	var user models.User
	if err := s.client.DB().WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}

	if err := checkDeleteGuards(&user, func() (int64, error) {
		var admins int64
		err := s.client.DB().WithContext(ctx).
			Model(&models.User{}).
			Where("role = ?", enums.RoleAdmin).
			Count(&admins).Error
		return admins, err
	}); err != nil {
		return err
	}

	if err := s.client.DB().WithContext(ctx).Where("id = ?", id).Delete(&models.User{}).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete user")
	}
	return nil
}

func (s *gormStore) Authenticate(ctx context.Context, identifier, password string) (*models.User, error) {
	var user models.User
	err := s.client.DB().WithContext(ctx).
		Where("username = ? OR email = ?", identifier, identifier).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}

	ok, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil || !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	sanitized := user
	sanitized.PasswordHash = ""
	return &sanitized, nil
}

func (s *gormStore) FindUserByBiometric(ctx context.Context, credentialID string) (*models.User, error) {
	if credentialID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	var user models.User
	err := s.client.DB().WithContext(ctx).
		Where("biometric_credential_id = ?", credentialID).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	sanitized := user
	sanitized.PasswordHash = ""
	return &sanitized, nil
}

func (s *gormStore) RegisterBiometric(ctx context.Context, userID uuid.UUID, credentialID string) error {
	result := s.client.DB().WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", userID).
		UpdateColumn("biometric_credential_id", credentialID)
	if result.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, result.Error, "register biometric credential")
	}
	if result.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}
	return nil
}

// --- Notifications ---

func (s *gormStore) ListNotifications(ctx context.Context) ([]models.Notification, error) {
	var notes []models.Notification
	err := s.client.DB().WithContext(ctx).
		Order("created_at DESC, id DESC").
		Find(&notes).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list notifications")
	}
	return notes, nil
}

func (s *gormStore) AddNotification(ctx context.Context, note *models.Notification) error {
	if note.ID == uuid.Nil {
		note.ID = uuid.New()
	}
	if err := s.client.DB().WithContext(ctx).Create(note).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "add notification")
	}
	return nil
}

func (s *gormStore) MarkAllNotificationsRead(ctx context.Context) (int64, error) {
	result := s.client.DB().WithContext(ctx).
		Model(&models.Notification{}).
		Where("read = ?", false).
		UpdateColumn("read", true)
	if result.Error != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, result.Error, "mark notifications read")
	}
	return result.RowsAffected, nil
}

// --- Export ---

func (s *gormStore) Export(ctx context.Context) (*Snapshot, error) {
	users, err := s.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	drugs, err := s.ListDrugs(ctx)
	if err != nil {
		return nil, err
	}
	return NewSnapshot(users, drugs, time.Now()), nil
}
