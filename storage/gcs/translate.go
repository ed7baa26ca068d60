package gcs

import (
	stderrors "errors"
	"net/http"

	gstorage "cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"

	"github.com/kbukum/cloudstore/errors"
)

// translate maps GCS errors onto the error taxonomy. Errors it does not
// recognize are returned unchanged.
func translate(op, bucket, key string, err error) error {
	if err == nil {
		return nil
	}
	switch {
	case stderrors.Is(err, gstorage.ErrObjectNotExist):
		return errors.NotFound("object", key).WithCause(err).WithDetail("operation", op)
	case stderrors.Is(err, gstorage.ErrBucketNotExist):
		return errors.NotFound("bucket", bucket).WithCause(err).WithDetail("operation", op)
	}

	var apiErr *googleapi.Error
	if stderrors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusNotFound:
			return errors.NotFound("object", key).WithCause(err).WithDetail("operation", op)
		case http.StatusUnauthorized, http.StatusForbidden:
			return errors.Forbidden(apiErr.Message).WithCause(err).WithDetail("operation", op)
		case http.StatusConflict:
			return errors.AlreadyExists("bucket").WithCause(err).WithDetail("bucket", bucket)
		case http.StatusRequestTimeout:
			return errors.Timeout(op).WithCause(err)
		}
	}
	return err
}
