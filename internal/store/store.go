package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/pharmaeye/pharmaeye-backend/pkg/db/models"
	"github.com/pharmaeye/pharmaeye-backend/pkg/enums"
)

// Gateway is the single data-access contract the rest of the application is
// written against. Exactly one backend implementation is active per deployment,
// chosen by configuration at boot; backends are mutually exclusive and there is
// no automatic fallback between them. Every operation either returns its result
// or a coded error carrying a user-displayable message.
type Gateway interface {
	ListDrugs(ctx context.Context) ([]models.Drug, error)
	InsertDrug(ctx context.Context, drug *models.Drug) error
	InsertDrugs(ctx context.Context, drugs []models.Drug) error
	UpdateDrug(ctx context.Context, id uuid.UUID, patch DrugPatch) (*models.Drug, error)
	DeleteDrug(ctx context.Context, id uuid.UUID) error

	ListUsers(ctx context.Context) ([]models.User, error)
	CreateUser(ctx context.Context, user *models.User) error
	UpdateUser(ctx context.Context, id uuid.UUID, patch UserPatch) (*models.User, error)
	DeleteUser(ctx context.Context, id uuid.UUID) error
	Authenticate(ctx context.Context, identifier, password string) (*models.User, error)
	FindUserByBiometric(ctx context.Context, credentialID string) (*models.User, error)
	RegisterBiometric(ctx context.Context, userID uuid.UUID, credentialID string) error

	ListNotifications(ctx context.Context) ([]models.Notification, error)
	AddNotification(ctx context.Context, note *models.Notification) error
	MarkAllNotificationsRead(ctx context.Context) (int64, error)

	Export(ctx context.Context) (*Snapshot, error)

	Backend() string
	Ping(ctx context.Context) error
	Close() error
}

// DrugPatch carries a partial drug update; nil fields are left untouched.
type DrugPatch struct {
	TradeName           *string  `json:"tradeName,omitempty"`
	AgentName           *string  `json:"agentName,omitempty"`
	Manufacturer        *string  `json:"manufacturer,omitempty"`
	PublicPrice         *float64 `json:"publicPrice,omitempty"`
	AgentPrice          *float64 `json:"agentPrice,omitempty"`
	PriceBeforeDiscount *float64 `json:"priceBeforeDiscount,omitempty"`
	DiscountPercent     *float64 `json:"discountPercent,omitempty"`
}

// UserPatch carries a partial user update. PasswordHash is only set when the
// caller supplied a new password; a nil value leaves the stored hash untouched.
type UserPatch struct {
	Username     *string     `json:"username,omitempty"`
	Email        *string     `json:"email,omitempty"`
	PasswordHash *string     `json:"passwordHash,omitempty"`
	FullName     *string     `json:"fullName,omitempty"`
	Role         *enums.Role `json:"role,omitempty"`
	Phone        *string     `json:"phone,omitempty"`
}

// Snapshot is the full-backup export document.
type Snapshot struct {
	Users     []models.User `json:"users"`
	Drugs     []models.Drug `json:"drugs"`
	Timestamp string        `json:"timestamp"`
}

// NewSnapshot stamps the snapshot with the export time in ISO-8601.
func NewSnapshot(users []models.User, drugs []models.Drug, now time.Time) *Snapshot {
	return &Snapshot{
		Users:     users,
		Drugs:     drugs,
		Timestamp: now.UTC().Format(time.RFC3339),
	}
}

func applyDrugPatch(drug *models.Drug, patch DrugPatch) {
	if patch.TradeName != nil {
		drug.TradeName = *patch.TradeName
	}
	if patch.AgentName != nil {
		drug.AgentName = *patch.AgentName
	}
	if patch.Manufacturer != nil {
		drug.Manufacturer = *patch.Manufacturer
	}
	if patch.PublicPrice != nil {
		drug.PublicPrice = *patch.PublicPrice
	}
	if patch.AgentPrice != nil {
		drug.AgentPrice = *patch.AgentPrice
	}
	if patch.PriceBeforeDiscount != nil {
		drug.PriceBeforeDiscount = *patch.PriceBeforeDiscount
	}
	if patch.DiscountPercent != nil {
		drug.DiscountPercent = *patch.DiscountPercent
	}
}

func applyUserPatch(user *models.User, patch UserPatch) {
	if patch.Username != nil {
		user.Username = *patch.Username
	}
	if patch.Email != nil {
		user.Email = *patch.Email
	}
	if patch.PasswordHash != nil && *patch.PasswordHash != "" {
		user.PasswordHash = *patch.PasswordHash
	}
	if patch.FullName != nil {
		user.FullName = *patch.FullName
	}
	if patch.Role != nil {
		user.Role = *patch.Role
	}
	if patch.Phone != nil {
		user.Phone = patch.Phone
	}
}
