package storage

import (
	"context"
	"io"
	"os"

	"github.com/kbukum/cloudstore/errors"
	"github.com/kbukum/cloudstore/logger"
)

// Page is one page of a provider listing.
type Page struct {
	Keys []string
	// NextToken resumes the listing. Empty means there are no more pages.
	NextToken string
}

// BodyKind tells a backend where a Put body came from, so provider-specific
// upload paths can be kept.
type BodyKind int

const (
	// BodyEncoded is an in-memory buffer produced by a codec.
	BodyEncoded BodyKind = iota
	// BodyBytes is a raw []byte handed to WriteObject.
	BodyBytes
	// BodyStream is a caller-supplied reader, possibly large.
	BodyStream
)

// PutOptions accompanies every Put.
type PutOptions struct {
	ContentType string
	// Size is the body length, or -1 when unknown.
	Size     int64
	Kind     BodyKind
	Transfer TransferConfig
}

// TransferConfig is forwarded as-is to the provider's multi-part transfer
// helpers. Zero fields keep the provider defaults.
type TransferConfig struct {
	PartSize    int64 `mapstructure:"part_size" json:"part_size" validate:"gte=0"`
	Concurrency int   `mapstructure:"concurrency" json:"concurrency" validate:"gte=0,lte=65535"`
}

// Backend is the per-provider surface a Bucket drives. Implementations
// translate native errors into cloudstore AppErrors.
type Backend interface {
	// Name returns the bucket or container name.
	Name() string
	// Provider returns the provider name used in logs, spans and metrics.
	Provider() string

	ListPage(ctx context.Context, prefix, token string, pageSize int) (Page, error)
	// Get opens the object. The caller closes the returned reader.
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Put(ctx context.Context, key string, body io.Reader, opts PutOptions) error
	Copy(ctx context.Context, srcKey, dstBucket, dstKey string) error
	Delete(ctx context.Context, key string) error
}

// FileTransferer is implemented by backends with a dedicated file transfer
// path (parallel ranged downloads, multi-part uploads).
type FileTransferer interface {
	Download(ctx context.Context, key string, dst *os.File, cfg TransferConfig) (int64, error)
	UploadFile(ctx context.Context, key string, src *os.File, cfg TransferConfig) error
}

// BucketCreator is implemented by backends that can create their own bucket
// or container. An existing bucket is reported as an ALREADY_EXISTS error.
type BucketCreator interface {
	CreateBucket(ctx context.Context) error
}

// IgnoreConflict logs and drops an ALREADY_EXISTS error from a bucket
// creation. Any other error is returned as a translated AppError.
func IgnoreConflict(log *logger.Logger, provider, bucket string, err error) error {
	if err == nil {
		return nil
	}
	if errors.IsConflict(err) {
		logger.OrNop(log).Warn("bucket already exists", logger.ObjectFields(provider, bucket, ""))
		return nil
	}
	return Translate("create_bucket", bucket, err)
}
