package store

import (
	"github.com/pharmaeye/pharmaeye-backend/pkg/db/models"
	"github.com/pharmaeye/pharmaeye-backend/pkg/enums"
	pkgerrors "github.com/pharmaeye/pharmaeye-backend/pkg/errors"
)

const (
	// reservedRootUsername is the bootstrap administrator account. It can never
	// be deleted, regardless of who asks.
	reservedRootUsername = "root"

	invalidCredentialsMessage = "invalid credentials"
)

// checkDeleteGuards enforces the two deletion invariants shared by every
// backend: the root account is permanent, and the last remaining admin cannot
// be removed. countAdmins is only invoked when the target is an admin.
func checkDeleteGuards(user *models.User, countAdmins func() (int64, error)) error {
	if user.Username == reservedRootUsername {
		return pkgerrors.New(pkgerrors.CodeGuard, "the root account cannot be deleted")
	}
	if user.Role == enums.RoleAdmin {
		admins, err := countAdmins()
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count admins")
		}
		if admins <= 1 {
			return pkgerrors.New(pkgerrors.CodeGuard, "cannot delete the last admin account")
		}
	}
	return nil
}
