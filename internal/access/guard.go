// Package access decides whether an authenticated user may perform an
// action against another user's record.
//
// Decisions are pure: they depend only on the requester, the target
// username and the action, and perform no I/O. Rules are evaluated in
// order and the first match wins; an action without a rule is denied.
package access

import (
	"errors"

	"github.com/myflix/myflix-api/internal/model"
)

var (
	ErrUnauthenticated  = errors.New("authentication required")
	ErrPermissionDenied = errors.New("permission denied")
	ErrNoRule           = errors.New("no rule grants this action")
)

// Action identifies what a request does.
type Action string

const (
	ReadCatalog    Action = "read_catalog"
	ReadUser       Action = "read_user"
	Register       Action = "register"
	UpdateUser     Action = "update_user"
	DeleteUser     Action = "delete_user"
	AddFavorite    Action = "add_favorite"
	RemoveFavorite Action = "remove_favorite"
)

// Decision is the outcome of Authorize. Reason is set when access is denied.
type Decision struct {
	Allowed bool
	Reason  error
}

// Err returns nil for an allowed decision and the denial reason otherwise.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	return d.Reason
}

func allow() Decision { return Decision{Allowed: true} }

func deny(reason error) Decision { return Decision{Reason: reason} }

// Authorize decides whether requester may perform action on the record of
// target. requester is nil for anonymous requests.
func Authorize(requester *model.User, target string, action Action) Decision {
	switch action {
	case ReadCatalog, ReadUser:
		if requester == nil {
			return deny(ErrUnauthenticated)
		}
		return allow()

	case Register:
		// Uniqueness of target is enforced by the store on create.
		return allow()

	case UpdateUser, DeleteUser, AddFavorite, RemoveFavorite:
		if requester == nil {
			return deny(ErrUnauthenticated)
		}
		if requester.Username != target {
			return deny(ErrPermissionDenied)
		}
		return allow()
	}

	return deny(ErrNoRule)
}
