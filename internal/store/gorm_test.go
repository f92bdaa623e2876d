package store

import (
	"context"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pharmaeye/pharmaeye-backend/pkg/config"
	"github.com/pharmaeye/pharmaeye-backend/pkg/db"
	"github.com/pharmaeye/pharmaeye-backend/pkg/db/models"
	"github.com/pharmaeye/pharmaeye-backend/pkg/enums"
	pkgerrors "github.com/pharmaeye/pharmaeye-backend/pkg/errors"
	"github.com/pharmaeye/pharmaeye-backend/pkg/logger"
	"github.com/pharmaeye/pharmaeye-backend/pkg/security"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: zerolog.Disabled, Output: io.Discard})
}

func testPasswordConfig() config.PasswordConfig {
	return config.PasswordConfig{
		ArgonMemoryKB:    8,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     8,
		ArgonKeyLen:      16,
	}
}

func newTestStore(t *testing.T) *gormStore {
	t.Helper()

	client, err := db.NewSQLite(context.Background(), config.LocalStoreConfig{
		Path: filepath.Join(t.TempDir(), "test.db"),
	}, nil)
	require.NoError(t, err)
	require.NoError(t, autoMigrate(client))

	t.Cleanup(func() { _ = client.Close() })
	return newGormStore(client, config.BackendLocal)
}

func seedUser(t *testing.T, s *gormStore, username, email, password string, role enums.Role) *models.User {
	t.Helper()

	hash, err := security.HashPassword(password, testPasswordConfig())
	require.NoError(t, err)

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		FullName:     "Test " + username,
		Role:         role,
	}
	require.NoError(t, s.CreateUser(context.Background(), user))
	return user
}

func TestInsertDrugsAndList(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	batch := []models.Drug{
		{TradeName: "Panadol Extra", PublicPrice: 12.5, AddedBy: enums.DrugSourceImport},
		{TradeName: "بنادول أزرق", AgentName: "الوكيل الأول", PublicPrice: 9, AddedBy: enums.DrugSourceImport},
		{TradeName: "Augmentin 1g", Manufacturer: "GSK", PublicPrice: 31, AgentPrice: 24, AddedBy: enums.DrugSourceImport},
	}
	require.NoError(t, s.InsertDrugs(ctx, batch))

	drugs, err := s.ListDrugs(ctx)
	require.NoError(t, err)
	require.Len(t, drugs, 3)

	names := make(map[string]bool, len(drugs))
	for _, d := range drugs {
		assert.NotEqual(t, uuid.Nil, d.ID)
		names[d.TradeName] = true
	}
	assert.True(t, names["Panadol Extra"])
	assert.True(t, names["بنادول أزرق"])
	assert.True(t, names["Augmentin 1g"])
}

func TestInsertDrug_RequiresTradeName(t *testing.T) {
	s := newTestStore(t)

	err := s.InsertDrug(context.Background(), &models.Drug{TradeName: "   "})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))

	err = s.InsertDrugs(context.Background(), []models.Drug{
		{TradeName: "Valid"},
		{TradeName: ""},
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))
}

func TestUpdateDrug(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	drug := &models.Drug{TradeName: "Old Name", PublicPrice: 10, AddedBy: enums.DrugSourceManual}
	require.NoError(t, s.InsertDrug(ctx, drug))

	newName := "New Name"
	newPrice := 15.5
	updated, err := s.UpdateDrug(ctx, drug.ID, DrugPatch{TradeName: &newName, PublicPrice: &newPrice})
	require.NoError(t, err)
	assert.Equal(t, "New Name", updated.TradeName)
	assert.Equal(t, 15.5, updated.PublicPrice)
	assert.Equal(t, enums.DrugSourceManual, updated.AddedBy)

	empty := " "
	_, err = s.UpdateDrug(ctx, drug.ID, DrugPatch{TradeName: &empty})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))

	_, err = s.UpdateDrug(ctx, uuid.New(), DrugPatch{TradeName: &newName})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(err))
}

func TestDeleteDrug(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	drug := &models.Drug{TradeName: "ToDelete"}
	require.NoError(t, s.InsertDrug(ctx, drug))
	require.NoError(t, s.DeleteDrug(ctx, drug.ID))

	err := s.DeleteDrug(ctx, drug.ID)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(err))
}

func TestCreateUser_DuplicateConflict(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seedUser(t, s, "amal", "amal@pharma.com", "secret1", enums.RoleEmployee)

	dup := &models.User{
		Username:     "amal",
		Email:        "other@pharma.com",
		PasswordHash: "x",
		FullName:     "Dup",
		Role:         enums.RoleEmployee,
	}
	err := s.CreateUser(ctx, dup)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeConflict, pkgerrors.CodeOf(err))
}

func TestUpdateUser_KeepsPasswordWhenNotProvided(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	user := seedUser(t, s, "sara", "sara@pharma.com", "original1", enums.RoleEmployee)

	fullName := "Sara Updated"
	updated, err := s.UpdateUser(ctx, user.ID, UserPatch{FullName: &fullName})
	require.NoError(t, err)
	assert.Equal(t, "Sara Updated", updated.FullName)
	assert.Empty(t, updated.PasswordHash)

	authed, err := s.Authenticate(ctx, "sara", "original1")
	require.NoError(t, err)
	assert.Equal(t, user.ID, authed.ID)
}

func TestUpdateUser_DuplicateAgainstOtherAccount(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seedUser(t, s, "first", "first@pharma.com", "pass1", enums.RoleEmployee)
	second := seedUser(t, s, "second", "second@pharma.com", "pass2", enums.RoleEmployee)

	takenName := "first"
	_, err := s.UpdateUser(ctx, second.ID, UserPatch{Username: &takenName})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeConflict, pkgerrors.CodeOf(err))

	// renaming to your own current name is not a conflict
	sameName := "second"
	_, err = s.UpdateUser(ctx, second.ID, UserPatch{Username: &sameName})
	require.NoError(t, err)
}

func TestDeleteUser_Guards(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	root := seedUser(t, s, "root", "admin@pharma.com", "root1", enums.RoleAdmin)
	employee := seedUser(t, s, "emp", "emp@pharma.com", "pass1", enums.RoleEmployee)

	err := s.DeleteUser(ctx, root.ID)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeGuard, pkgerrors.CodeOf(err))

	require.NoError(t, s.DeleteUser(ctx, employee.ID))

	admin2 := seedUser(t, s, "boss", "boss@pharma.com", "pass2", enums.RoleAdmin)
	require.NoError(t, s.DeleteUser(ctx, admin2.ID))

	// root stays protected even when another admin exists
	seedUser(t, s, "solo", "solo@pharma.com", "pass3", enums.RoleAdmin)
	err = s.DeleteUser(ctx, root.ID)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeGuard, pkgerrors.CodeOf(err))
}

func TestDeleteUser_LastAdminGuard(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	admin := seedUser(t, s, "onlyadmin", "only@pharma.com", "pass1", enums.RoleAdmin)
	seedUser(t, s, "emp", "emp@pharma.com", "pass2", enums.RoleEmployee)

	err := s.DeleteUser(ctx, admin.ID)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeGuard, pkgerrors.CodeOf(err))
}

func TestAuthenticate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	user := seedUser(t, s, "nadia", "nadia@pharma.com", "correct1", enums.RoleAdmin)

	byUsername, err := s.Authenticate(ctx, "nadia", "correct1")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byUsername.ID)
	assert.Empty(t, byUsername.PasswordHash)

	byEmail, err := s.Authenticate(ctx, "nadia@pharma.com", "correct1")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	_, err = s.Authenticate(ctx, "nadia", "wrong")
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeUnauthorized, pkgerrors.CodeOf(err))

	_, err = s.Authenticate(ctx, "nobody", "correct1")
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeUnauthorized, pkgerrors.CodeOf(err))
}

func TestBiometricRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	user := seedUser(t, s, "bio", "bio@pharma.com", "pass1", enums.RoleEmployee)

	require.NoError(t, s.RegisterBiometric(ctx, user.ID, "cred-abc"))

	found, err := s.FindUserByBiometric(ctx, "cred-abc")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)
	assert.Empty(t, found.PasswordHash)

	_, err = s.FindUserByBiometric(ctx, "cred-missing")
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeUnauthorized, pkgerrors.CodeOf(err))

	_, err = s.FindUserByBiometric(ctx, "")
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeUnauthorized, pkgerrors.CodeOf(err))

	err = s.RegisterBiometric(ctx, uuid.New(), "cred-xyz")
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(err))
}

func TestNotifications(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	older := &models.Notification{Title: "first", Message: "m1", CreatedAt: time.Now().Add(-time.Hour)}
	newer := &models.Notification{Title: "second", Message: "m2", CreatedAt: time.Now()}
	require.NoError(t, s.AddNotification(ctx, older))
	require.NoError(t, s.AddNotification(ctx, newer))

	notes, err := s.ListNotifications(ctx)
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, "second", notes[0].Title)
	assert.Equal(t, "first", notes[1].Title)

	marked, err := s.MarkAllNotificationsRead(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), marked)

	marked, err = s.MarkAllNotificationsRead(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), marked)
}

func TestExportSnapshot(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seedUser(t, s, "exporter", "exp@pharma.com", "pass1", enums.RoleAdmin)
	require.NoError(t, s.InsertDrug(ctx, &models.Drug{TradeName: "Aspirin"}))

	snap, err := s.Export(ctx)
	require.NoError(t, err)
	require.Len(t, snap.Users, 1)
	require.Len(t, snap.Drugs, 1)
	assert.Empty(t, snap.Users[0].PasswordHash)

	stamp, err := time.Parse(time.RFC3339, snap.Timestamp)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), stamp, time.Minute)
}

func TestSeedBootstrap(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	cfg := &config.Config{
		Bootstrap: config.BootstrapConfig{
			RootUsername: "root",
			RootEmail:    "admin@pharma.com",
			RootPassword: "root1",
			RootFullName: "المدير العام",
		},
		Password: testPasswordConfig(),
	}

	require.NoError(t, Seed(ctx, s, cfg, testLogger()))

	users, err := s.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "root", users[0].Username)
	assert.Equal(t, enums.RoleAdmin, users[0].Role)

	notes, err := s.ListNotifications(ctx)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, welcomeTitle, notes[0].Title)
	assert.False(t, notes[0].Read)

	authed, err := s.Authenticate(ctx, "root", "root1")
	require.NoError(t, err)
	assert.Equal(t, users[0].ID, authed.ID)

	// a store with users is never reseeded
	require.NoError(t, Seed(ctx, s, cfg, testLogger()))
	users, err = s.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}
