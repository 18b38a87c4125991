package http

import commonerrors "github.com/AlibekovAA/task-tracker/backend/internal/common/errors"

var errUnauthenticated = commonerrors.ErrUnauthenticated
