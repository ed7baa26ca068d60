// Package gcs implements the storage backend for Google Cloud Storage.
package gcs

import (
	"context"
	stderrors "errors"
	"io"

	gstorage "cloud.google.com/go/storage"
	"google.golang.org/api/iterator"

	"github.com/kbukum/cloudstore/auth/gcpauth"
	"github.com/kbukum/cloudstore/logger"
	"github.com/kbukum/cloudstore/storage"
)

// DefaultPageSize is used when a listing asks for no particular page size.
const DefaultPageSize = 1000

// octetStream is the content type raw byte uploads are stored with.
const octetStream = "application/octet-stream"

func init() {
	storage.RegisterFactory(storage.ProviderGCS, func(ctx context.Context, cfg storage.Config, _ *logger.Logger) (storage.Backend, error) {
		a, err := gcpauth.New(AuthConfig(cfg.GCP))
		if err != nil {
			return nil, err
		}
		client, err := gstorage.NewClient(ctx, a.ClientOptions()...)
		if err != nil {
			return nil, storage.Translate("connect", cfg.Bucket, err)
		}
		return New(client, cfg.Bucket, a.Project(), cfg.PageSize), nil
	})
}

// AuthConfig maps the adapter configuration onto credential settings.
func AuthConfig(c storage.GCPConfig) gcpauth.Config {
	return gcpauth.Config{
		Project:         c.Project,
		CredentialsFile: c.CredentialsFile,
		CredentialsJSON: c.CredentialsJSON,
		Endpoint:        c.Endpoint,
		Anonymous:       c.Anonymous,
	}
}

// Backend implements storage.Backend on one GCS bucket.
type Backend struct {
	client   *gstorage.Client
	bucket   string
	project  string
	pageSize int
}

var (
	_ storage.Backend       = (*Backend)(nil)
	_ storage.BucketCreator = (*Backend)(nil)
	_ io.Closer             = (*Backend)(nil)
)

// New returns a backend for bucket. project is only needed to create the
// bucket.
func New(client *gstorage.Client, bucket, project string, pageSize int) *Backend {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Backend{client: client, bucket: bucket, project: project, pageSize: pageSize}
}

func (b *Backend) Name() string     { return b.bucket }
func (b *Backend) Provider() string { return storage.ProviderGCS }

// ListPage returns one page of object names under prefix.
func (b *Backend) ListPage(ctx context.Context, prefix, token string, pageSize int) (storage.Page, error) {
	if pageSize <= 0 {
		pageSize = b.pageSize
	}
	q := &gstorage.Query{Prefix: prefix}
	if err := q.SetAttrSelection([]string{"Name"}); err != nil {
		return storage.Page{}, err
	}
	it := b.client.Bucket(b.bucket).Objects(ctx, q)

	var attrs []*gstorage.ObjectAttrs
	next, err := iterator.NewPager(it, pageSize, token).NextPage(&attrs)
	if err != nil {
		return storage.Page{}, translate("list", b.bucket, prefix, err)
	}
	page := storage.Page{Keys: make([]string, 0, len(attrs)), NextToken: next}
	for _, a := range attrs {
		page.Keys = append(page.Keys, a.Name)
	}
	return page, nil
}

func (b *Backend) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	r, err := b.client.Bucket(b.bucket).Object(key).NewReader(ctx)
	if err != nil {
		return nil, translate("get", b.bucket, key, err)
	}
	return r, nil
}

// Put streams body through a resumable writer. Raw bytes are stored as
// application/octet-stream; encoded bodies carry their codec content type.
func (b *Backend) Put(ctx context.Context, key string, body io.Reader, opts storage.PutOptions) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	w := b.client.Bucket(b.bucket).Object(key).NewWriter(ctx)
	w.ContentType = contentType(opts)
	if opts.Transfer.PartSize > 0 {
		w.ChunkSize = int(opts.Transfer.PartSize)
	}

	if _, err := io.Copy(w, body); err != nil {
		cancel()
		_ = w.Close()
		return translate("put", b.bucket, key, err)
	}
	return translate("put", b.bucket, key, w.Close())
}

func (b *Backend) Copy(ctx context.Context, srcKey, dstBucket, dstKey string) error {
	src := b.client.Bucket(b.bucket).Object(srcKey)
	dst := b.client.Bucket(dstBucket).Object(dstKey)
	_, err := dst.CopierFrom(src).Run(ctx)
	return translate("copy", dstBucket, srcKey, err)
}

// Delete removes key. Deleting a missing object is not an error.
func (b *Backend) Delete(ctx context.Context, key string) error {
	err := b.client.Bucket(b.bucket).Object(key).Delete(ctx)
	if stderrors.Is(err, gstorage.ErrObjectNotExist) {
		return nil
	}
	return translate("delete", b.bucket, key, err)
}

// CreateBucket creates the backend's bucket in its project. An existing
// bucket is reported as an ALREADY_EXISTS error.
func (b *Backend) CreateBucket(ctx context.Context) error {
	return createBucket(ctx, b.client, b.bucket, b.project)
}

// Close releases the client.
func (b *Backend) Close() error { return b.client.Close() }

// CreateBucket creates bucket in project. A bucket that already exists is
// logged and the call succeeds.
func CreateBucket(ctx context.Context, client *gstorage.Client, bucket, project string, log *logger.Logger) error {
	return storage.IgnoreConflict(log, storage.ProviderGCS, bucket, createBucket(ctx, client, bucket, project))
}

func createBucket(ctx context.Context, client *gstorage.Client, bucket, project string) error {
	err := client.Bucket(bucket).Create(ctx, project, nil)
	return translate("create_bucket", bucket, "", err)
}

func contentType(opts storage.PutOptions) string {
	if opts.Kind == storage.BodyBytes || opts.ContentType == "" {
		return octetStream
	}
	return opts.ContentType
}
