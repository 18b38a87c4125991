package service

import (
	"net/http"

	commonerrors "github.com/AlibekovAA/task-tracker/backend/internal/common/errors"
	userdomain "github.com/AlibekovAA/task-tracker/backend/internal/user/domain"
)

var (
	ErrInvalidCredentials = commonerrors.NewDomainError(
		"INVALID_CREDENTIALS",
		commonerrors.CategoryUnauthorized,
		http.StatusUnauthorized,
		"invalid email or password",
	)

	ErrDuplicateEmail = userdomain.ErrDuplicateEmail
)
