package storage

import (
	"context"
	stderrors "errors"
	"io/fs"

	"github.com/kbukum/cloudstore/errors"
)

// Translate maps an error from a provider call into the cloudstore taxonomy.
// AppErrors produced by a backend pass through unchanged; context expiry
// becomes TIMEOUT; missing files become NOT_FOUND; anything else is a
// TRANSFER_FAILED error wrapping err.
func Translate(operation, key string, err error) *errors.AppError {
	if err == nil {
		return nil
	}
	if appErr, ok := errors.AsAppError(err); ok {
		return appErr
	}
	switch {
	case stderrors.Is(err, context.DeadlineExceeded):
		return errors.Timeout(operation).WithCause(err)
	case stderrors.Is(err, fs.ErrNotExist):
		return errors.NotFound("object", key).WithCause(err)
	case stderrors.Is(err, fs.ErrPermission):
		return errors.Forbidden("").WithCause(err)
	}
	return errors.Transfer(operation, key, err)
}
