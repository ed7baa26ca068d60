package s3

import (
	stderrors "errors"
	"net/http"

	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/smithy-go"

	"github.com/kbukum/cloudstore/errors"
)

// translate maps S3 API errors onto the error taxonomy. Errors it does not
// recognize are returned unchanged.
func translate(op, bucket, key string, err error) error {
	if err == nil {
		return nil
	}

	var apiErr smithy.APIError
	if stderrors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return errors.NotFound("object", key).WithCause(err).WithDetail("operation", op)
		case "NoSuchBucket":
			return errors.NotFound("bucket", bucket).WithCause(err).WithDetail("operation", op)
		case "AccessDenied", "Forbidden", "AllAccessDisabled", "InvalidAccessKeyId", "SignatureDoesNotMatch", "ExpiredToken":
			return errors.Forbidden(apiErr.ErrorMessage()).WithCause(err).WithDetail("operation", op)
		case "BucketAlreadyExists", "BucketAlreadyOwnedByYou":
			return errors.AlreadyExists("bucket").WithCause(err).WithDetail("bucket", bucket)
		case "RequestTimeout":
			return errors.Timeout(op).WithCause(err)
		}
	}

	var respErr *awshttp.ResponseError
	if stderrors.As(err, &respErr) {
		switch respErr.HTTPStatusCode() {
		case http.StatusNotFound:
			return errors.NotFound("object", key).WithCause(err).WithDetail("operation", op)
		case http.StatusForbidden:
			return errors.Forbidden("").WithCause(err).WithDetail("operation", op)
		}
	}
	return err
}
