package service

import (
	"net/http"

	"github.com/AlibekovAA/task-tracker/backend/internal/common/db"
	commonerrors "github.com/AlibekovAA/task-tracker/backend/internal/common/errors"
)

func storeError(code, message string, err error) error {
	return db.AsStoreError(code, message, err)
}

func newInternalError(code, message string, cause error) commonerrors.DomainError {
	err := commonerrors.NewDomainError(
		code,
		commonerrors.CategoryInternal,
		http.StatusInternalServerError,
		message,
	)
	if cause != nil {
		err = err.WithCause(cause)
	}
	return err
}
