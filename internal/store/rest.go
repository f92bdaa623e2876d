package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pharmaeye/pharmaeye-backend/pkg/config"
	"github.com/pharmaeye/pharmaeye-backend/pkg/db/models"
	"github.com/pharmaeye/pharmaeye-backend/pkg/enums"
	pkgerrors "github.com/pharmaeye/pharmaeye-backend/pkg/errors"
	"github.com/pharmaeye/pharmaeye-backend/pkg/security"
)

// restStore talks to a remote JSON collection server exposing /drugs, /users
// and /notifications resources. Credentials are verified client-side against
// the stored Argon2id hash, so the remote server only ever sees hashes.
//
// Batch inserts are a per-row POST loop: rows written before a failure stay
// written, matching the non-transactional contract of this backend.
type restStore struct {
	baseURL string
	httpc   *http.Client
}

func newRESTStore(cfg config.RESTStoreConfig) *restStore {
	return &restStore{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpc:   &http.Client{Timeout: cfg.Timeout},
	}
}

func (s *restStore) Backend() string { return config.BackendREST }

func (s *restStore) Ping(ctx context.Context) error {
	var drugs []models.Drug
	return s.do(ctx, http.MethodGet, "/drugs", nil, &drugs)
}

func (s *restStore) Close() error {
	s.httpc.CloseIdleConnections()
	return nil
}

// do executes one request against the remote store and decodes the response
// body into out when out is non-nil.
func (s *restStore) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode request body")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, reader)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build request")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpc.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remote store unreachable")
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return pkgerrors.New(pkgerrors.CodeNotFound, "resource not found")
	case resp.StatusCode == http.StatusConflict:
		return pkgerrors.New(pkgerrors.CodeConflict, "resource conflict")
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return pkgerrors.New(pkgerrors.CodeDependency,
			fmt.Sprintf("remote store returned status %d", resp.StatusCode))
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode remote response")
	}
	return nil
}

// --- Drugs ---

func (s *restStore) ListDrugs(ctx context.Context) ([]models.Drug, error) {
	var drugs []models.Drug
	if err := s.do(ctx, http.MethodGet, "/drugs", nil, &drugs); err != nil {
		return nil, err
	}
	return drugs, nil
}

func (s *restStore) InsertDrug(ctx context.Context, drug *models.Drug) error {
	if strings.TrimSpace(drug.TradeName) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "trade name is required")
	}
	if drug.ID == uuid.Nil {
		drug.ID = uuid.New()
	}
	if drug.CreatedAt.IsZero() {
		drug.CreatedAt = time.Now().UTC()
	}
	return s.do(ctx, http.MethodPost, "/drugs", drug, drug)
}

func (s *restStore) InsertDrugs(ctx context.Context, drugs []models.Drug) error {
	for i := range drugs {
		if err := s.InsertDrug(ctx, &drugs[i]); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeOf(err), err,
				fmt.Sprintf("batch insert stopped at row %d", i+1))
		}
	}
	return nil
}

func (s *restStore) UpdateDrug(ctx context.Context, id uuid.UUID, patch DrugPatch) (*models.Drug, error) {
	if patch.TradeName != nil && strings.TrimSpace(*patch.TradeName) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "trade name cannot be emptied")
	}
	var drug models.Drug
	if err := s.do(ctx, http.MethodPatch, "/drugs/"+id.String(), patch, &drug); err != nil {
		return nil, err
	}
	return &drug, nil
}

func (s *restStore) DeleteDrug(ctx context.Context, id uuid.UUID) error {
	return s.do(ctx, http.MethodDelete, "/drugs/"+id.String(), nil, nil)
}

// --- Users ---

func (s *restStore) ListUsers(ctx context.Context) ([]models.User, error) {
	raw, err := s.fetchUsers(ctx)
	if err != nil {
		return nil, err
	}
	users := make([]models.User, 0, len(raw))
	for i := range raw {
		user := raw[i].toModel()
		user.PasswordHash = ""
		users = append(users, *user)
	}
	return users, nil
}

// fetchUsers returns the raw remote users, password hashes included. Callers
// that hand users to the outside must sanitize first.
func (s *restStore) fetchUsers(ctx context.Context) ([]restUser, error) {
	var users []restUser
	if err := s.do(ctx, http.MethodGet, "/users", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (s *restStore) CreateUser(ctx context.Context, user *models.User) error {
	existing, err := s.fetchUsers(ctx)
	if err != nil {
		return err
	}
	for i := range existing {
		if existing[i].Username == user.Username || existing[i].Email == user.Email {
			return pkgerrors.New(pkgerrors.CodeConflict, "username or email already exists")
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	payload := newRESTUser(user)
	return s.do(ctx, http.MethodPost, "/users", payload, nil)
}

func (s *restStore) UpdateUser(ctx context.Context, id uuid.UUID, patch UserPatch) (*models.User, error) {
	users, err := s.fetchUsers(ctx)
	if err != nil {
		return nil, err
	}
	target := findUser(users, id)
	if target == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}

	if patch.Username != nil || patch.Email != nil {
		username := target.Username
		if patch.Username != nil {
			username = *patch.Username
		}
		email := target.Email
		if patch.Email != nil {
			email = *patch.Email
		}
		for i := range users {
			if users[i].ID == id {
				continue
			}
			if users[i].Username == username || users[i].Email == email {
				return nil, pkgerrors.New(pkgerrors.CodeConflict, "username or email already used by another account")
			}
		}
	}

	var updated restUser
	if err := s.do(ctx, http.MethodPatch, "/users/"+id.String(), patch, &updated); err != nil {
		return nil, err
	}
	user := updated.toModel()
	user.PasswordHash = ""
	return user, nil
}

func (s *restStore) DeleteUser(ctx context.Context, id uuid.UUID) error {
	users, err := s.fetchUsers(ctx)
	if err != nil {
		return err
	}
	target := findUser(users, id)
	if target == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}

	model := target.toModel()
	if err := checkDeleteGuards(model, func() (int64, error) {
		var admins int64
		for i := range users {
			if users[i].Role == enums.RoleAdmin {
				admins++
			}
		}
		return admins, nil
	}); err != nil {
		return err
	}

	return s.do(ctx, http.MethodDelete, "/users/"+id.String(), nil, nil)
}

func (s *restStore) Authenticate(ctx context.Context, identifier, password string) (*models.User, error) {
	users, err := s.fetchUsers(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].Username != identifier && users[i].Email != identifier {
			continue
		}
		ok, err := security.VerifyPassword(password, users[i].PasswordHash)
		if err != nil || !ok {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
		}
		user := users[i].toModel()
		user.PasswordHash = ""
		return user, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
}

func (s *restStore) FindUserByBiometric(ctx context.Context, credentialID string) (*models.User, error) {
	if credentialID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	users, err := s.fetchUsers(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].BiometricCredentialID != nil && *users[i].BiometricCredentialID == credentialID {
			user := users[i].toModel()
			user.PasswordHash = ""
			return user, nil
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
}

func (s *restStore) RegisterBiometric(ctx context.Context, userID uuid.UUID, credentialID string) error {
	payload := map[string]string{"biometricCredentialId": credentialID}
	return s.do(ctx, http.MethodPatch, "/users/"+userID.String(), payload, nil)
}

// --- Notifications ---

func (s *restStore) ListNotifications(ctx context.Context) ([]models.Notification, error) {
	var notes []models.Notification
	if err := s.do(ctx, http.MethodGet, "/notifications", nil, &notes); err != nil {
		return nil, err
	}
	sortNotificationsDesc(notes)
	return notes, nil
}

func (s *restStore) AddNotification(ctx context.Context, note *models.Notification) error {
	if note.ID == uuid.Nil {
		note.ID = uuid.New()
	}
	if note.CreatedAt.IsZero() {
		note.CreatedAt = time.Now().UTC()
	}
	return s.do(ctx, http.MethodPost, "/notifications", note, note)
}

func (s *restStore) MarkAllNotificationsRead(ctx context.Context) (int64, error) {
	var notes []models.Notification
	if err := s.do(ctx, http.MethodGet, "/notifications", nil, &notes); err != nil {
		return 0, err
	}

	var marked int64
	payload := map[string]bool{"read": true}
	for i := range notes {
		if notes[i].Read {
			continue
		}
		if err := s.do(ctx, http.MethodPatch, "/notifications/"+notes[i].ID.String(), payload, nil); err != nil {
			return marked, err
		}
		marked++
	}
	return marked, nil
}

// --- Export ---

func (s *restStore) Export(ctx context.Context) (*Snapshot, error) {
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

// restUser is the wire shape of a remote user record. Unlike models.User it
// round-trips the password hash, which the model hides from JSON.
type restUser struct {
	ID                    uuid.UUID  `json:"id"`
	Username              string     `json:"username"`
	Email                 string     `json:"email"`
	PasswordHash          string     `json:"passwordHash"`
	FullName              string     `json:"fullName"`
	Role                  enums.Role `json:"role"`
	Phone                 *string    `json:"phone,omitempty"`
	BiometricCredentialID *string    `json:"biometricCredentialId,omitempty"`
	CreatedAt             time.Time  `json:"createdAt"`
	UpdatedAt             time.Time  `json:"updatedAt"`
}

func newRESTUser(user *models.User) restUser {
	return restUser{
		ID:                    user.ID,
		Username:              user.Username,
		Email:                 user.Email,
		PasswordHash:          user.PasswordHash,
		FullName:              user.FullName,
		Role:                  user.Role,
		Phone:                 user.Phone,
		BiometricCredentialID: user.BiometricCredentialID,
		CreatedAt:             user.CreatedAt,
		UpdatedAt:             user.UpdatedAt,
	}
}

func (u restUser) toModel() *models.User {
	return &models.User{
		ID:                    u.ID,
		Username:              u.Username,
		Email:                 u.Email,
		PasswordHash:          u.PasswordHash,
		FullName:              u.FullName,
		Role:                  u.Role,
		Phone:                 u.Phone,
		BiometricCredentialID: u.BiometricCredentialID,
		CreatedAt:             u.CreatedAt,
		UpdatedAt:             u.UpdatedAt,
	}
}

func findUser(users []restUser, id uuid.UUID) *restUser {
	for i := range users {
		if users[i].ID == id {
			return &users[i]
		}
	}
	return nil
}

func sortNotificationsDesc(notes []models.Notification) {
	sort.Slice(notes, func(i, j int) bool {
		return notes[i].CreatedAt.After(notes[j].CreatedAt)
	})
}
