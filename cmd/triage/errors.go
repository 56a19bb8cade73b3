package main

import (
	"fmt"

	"github.com/Veraticus/upi-triage/internal/api"
	"github.com/Veraticus/upi-triage/internal/common"
	"github.com/Veraticus/upi-triage/internal/permission"
)

// backendError turns a client error into a user error carrying the
// normalized backend message.
func backendError(action string, err error) error {
	apiErr := api.Normalize(err)
	if apiErr == nil {
		return nil
	}
	message := apiErr.Message
	if apiErr.IsUnauthorized() {
		message += ". Run 'triage login' to store a new token"
	}
	return common.NewUserError(message, fmt.Errorf("%s: %w", action, err))
}

// requireSession fails unless session holds p.
func requireSession(session permission.Session, p permission.Permission) error {
	if permission.Require(p).Evaluate(session) == permission.Granted {
		return nil
	}
	return common.NewUserError(
		fmt.Sprintf("Your role does not allow this (%s required)", p),
		fmt.Errorf("%w: %s", common.ErrPermissionDenied, p),
	)
}
