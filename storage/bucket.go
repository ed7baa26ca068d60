package storage

import (
	"context"
	"io"
	"time"

	"github.com/kbukum/cloudstore/errors"
	"github.com/kbukum/cloudstore/logger"
	"github.com/kbukum/cloudstore/observability"
)

// Bucket implements Storage over a Backend. It owns the base path, the
// transfer tuning and the logger handle; the backend owns the provider client.
type Bucket struct {
	Paths

	backend  Backend
	log      *logger.Logger
	metrics  *observability.StorageMetrics
	transfer TransferConfig
}

// Option configures a Bucket.
type Option func(*Bucket)

// WithLogger sets the logger handle. A nil logger discards output.
func WithLogger(l *logger.Logger) Option {
	return func(b *Bucket) { b.log = logger.OrNop(l) }
}

// WithMetrics records operations on m.
func WithMetrics(m *observability.StorageMetrics) Option {
	return func(b *Bucket) { b.metrics = m }
}

// WithBasePath sets the initial base path.
func WithBasePath(path string) Option {
	return func(b *Bucket) { b.SetBasePath(path) }
}

// WithTransferConfig sets the initial transfer tuning.
func WithTransferConfig(cfg TransferConfig) Option {
	return func(b *Bucket) { b.transfer = cfg }
}

// NewBucket wraps backend.
func NewBucket(backend Backend, opts ...Option) *Bucket {
	b := &Bucket{backend: backend, log: logger.Nop()}
	for _, opt := range opts {
		opt(b)
	}
	b.log = b.log.WithFields(map[string]interface{}{
		logger.FieldProvider: backend.Provider(),
		logger.FieldBucket:   backend.Name(),
	})
	return b
}

// Name returns the bucket or container name.
func (b *Bucket) Name() string { return b.backend.Name() }

// Provider returns the backend's provider name.
func (b *Bucket) Provider() string { return b.backend.Provider() }

// Backend returns the underlying backend.
func (b *Bucket) Backend() Backend { return b.backend }

// TransferConfig returns the transfer tuning forwarded to the backend.
func (b *Bucket) TransferConfig() TransferConfig { return b.transfer }

// SetTransferConfig replaces the transfer tuning.
func (b *Bucket) SetTransferConfig(cfg TransferConfig) { b.transfer = cfg }

// Ping lists a single key under the base path to check the bucket is reachable.
func (b *Bucket) Ping(ctx context.Context) error {
	return b.observe(ctx, "ping", "", func(ctx context.Context) error {
		if _, err := b.backend.ListPage(ctx, b.FolderPath(""), "", 1); err != nil {
			return Translate("list", b.FolderPath(""), err)
		}
		return nil
	})
}

// CreateBucket creates the bucket behind this adapter. A bucket that already
// exists is logged and the call succeeds.
func (b *Bucket) CreateBucket(ctx context.Context) error {
	bc, ok := b.backend.(BucketCreator)
	if !ok {
		return errors.InvalidInput("provider", b.backend.Provider()+" does not support bucket creation")
	}
	return b.observe(ctx, "create_bucket", "", func(ctx context.Context) error {
		if err := IgnoreConflict(b.log, b.backend.Provider(), b.backend.Name(), bc.CreateBucket(ctx)); err != nil {
			return err
		}
		return nil
	})
}

// Close releases the backend client when it holds one.
func (b *Bucket) Close() error {
	if c, ok := b.backend.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// List returns a lazy iterator over the filtered keys under opts.Folder.
func (b *Bucket) List(ctx context.Context, opts ListOptions) *ObjectIterator {
	prefix := b.FolderPath(opts.Folder)
	fetch := func(ctx context.Context, token string) (Page, error) {
		var page Page
		err := b.observe(ctx, "list", "", func(ctx context.Context) error {
			observability.SetSpanAttribute(ctx, observability.AttrPrefix, prefix)
			var err error
			page, err = b.backend.ListPage(ctx, prefix, token, opts.PageSize)
			if err != nil {
				return Translate("list", prefix, err)
			}
			return nil
		})
		if err == nil {
			b.log.Debug("listed page", map[string]interface{}{
				logger.FieldPrefix: prefix,
				logger.FieldCount:  len(page.Keys),
				"more":             page.NextToken != "",
			})
		}
		return page, err
	}
	return NewObjectIterator(fetch, opts.ListFilter)
}

// observe runs fn inside a span and records the outcome.
func (b *Bucket) observe(ctx context.Context, op, key string, fn func(context.Context) error) error {
	ctx, span := observability.StartSpan(ctx, op, b.backend.Provider(), b.backend.Name())
	if key != "" {
		observability.SetSpanAttribute(ctx, observability.AttrKey, key)
	}
	start := time.Now()

	err := fn(ctx)

	status := "ok"
	if err != nil {
		status = "error"
		b.metrics.RecordError(ctx, b.backend.Provider(), op, string(errors.Wrap(err).Code))
	}
	b.metrics.RecordOperation(ctx, b.backend.Provider(), op, status, time.Since(start))
	observability.EndSpan(span, err)
	return err
}

// countingReader counts bytes and remembers the first read failure so that
// a broken provider stream is not reported as a decode error.
type countingReader struct {
	r   io.Reader
	n   int64
	err error
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	if err != nil && err != io.EOF && c.err == nil {
		c.err = err
	}
	return n, err
}
