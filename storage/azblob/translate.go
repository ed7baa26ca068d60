package azblob

import (
	stderrors "errors"
	"net/http"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"

	"github.com/kbukum/cloudstore/errors"
)

// translate maps Azure errors onto the error taxonomy. Errors it does not
// recognize are returned unchanged.
func translate(op, container, key string, err error) error {
	if err == nil {
		return nil
	}
	switch {
	case bloberror.HasCode(err, bloberror.BlobNotFound, bloberror.CannotVerifyCopySource):
		return errors.NotFound("object", key).WithCause(err).WithDetail("operation", op)
	case bloberror.HasCode(err, bloberror.ContainerNotFound, bloberror.ContainerBeingDeleted):
		return errors.NotFound("container", container).WithCause(err).WithDetail("operation", op)
	case bloberror.HasCode(err, bloberror.ContainerAlreadyExists):
		return errors.AlreadyExists("container").WithCause(err).WithDetail("container", container)
	case bloberror.HasCode(err,
		bloberror.AuthenticationFailed,
		bloberror.AuthorizationFailure,
		bloberror.AuthorizationPermissionMismatch,
		bloberror.InsufficientAccountPermissions):
		return errors.Forbidden("").WithCause(err).WithDetail("operation", op)
	case bloberror.HasCode(err, bloberror.OperationTimedOut):
		return errors.Timeout(op).WithCause(err)
	}

	var respErr *azcore.ResponseError
	if stderrors.As(err, &respErr) {
		switch respErr.StatusCode {
		case http.StatusNotFound:
			return errors.NotFound("object", key).WithCause(err).WithDetail("operation", op)
		case http.StatusForbidden:
			return errors.Forbidden("").WithCause(err).WithDetail("operation", op)
		}
	}
	return err
}

func isNotFound(err error) bool {
	return bloberror.HasCode(err, bloberror.BlobNotFound)
}
