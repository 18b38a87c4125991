package domain

import (
	"net/http"

	commonerrors "github.com/AlibekovAA/task-tracker/backend/internal/common/errors"
)

var (
	ErrDuplicateEmail = commonerrors.NewDomainError(
		"EMAIL_TAKEN",
		commonerrors.CategoryConflict,
		http.StatusConflict,
		"email is already registered",
	)

	// ErrAccountNotFound is returned when a verified token names a user that
	// no longer exists; clients must authenticate again.
	ErrAccountNotFound = commonerrors.NewDomainError(
		"ACCOUNT_NOT_FOUND",
		commonerrors.CategoryUnauthorized,
		http.StatusUnauthorized,
		"account no longer exists",
	)
)
