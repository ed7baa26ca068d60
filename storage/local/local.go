// Package local stores objects as files under a root directory. Each bucket
// is a directory below the root and keys map to "/"-separated relative paths.
package local

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/kbukum/cloudstore/errors"
	"github.com/kbukum/cloudstore/logger"
	"github.com/kbukum/cloudstore/storage"
)

// DefaultPageSize is used when a listing asks for no particular page size.
const DefaultPageSize = 1000

func init() {
	storage.RegisterFactory(storage.ProviderLocal, func(ctx context.Context, cfg storage.Config, log *logger.Logger) (storage.Backend, error) {
		if err := CreateBucket(ctx, cfg.Local.Root, cfg.Bucket, log); err != nil {
			return nil, err
		}
		return NewBackend(cfg.Local.Root, cfg.Bucket, cfg.PageSize)
	})
}

// Backend implements storage.Backend on the local filesystem.
type Backend struct {
	root     string
	bucket   string
	pageSize int
}

var (
	_ storage.Backend        = (*Backend)(nil)
	_ storage.FileTransferer = (*Backend)(nil)
	_ storage.BucketCreator  = (*Backend)(nil)
)

// NewBackend returns a backend for the bucket directory under root. The
// directory must exist.
func NewBackend(root, bucket string, pageSize int) (*Backend, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.InvalidInput("local.root", err.Error())
	}
	if err := checkBucket(bucket); err != nil {
		return nil, err
	}
	info, err := os.Stat(filepath.Join(abs, bucket))
	if err != nil {
		return nil, storage.Translate("open", bucket, err).WithDetail("resource", "bucket")
	}
	if !info.IsDir() {
		return nil, errors.InvalidInput("bucket", "is not a directory")
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Backend{root: abs, bucket: bucket, pageSize: pageSize}, nil
}

func (b *Backend) Name() string     { return b.bucket }
func (b *Backend) Provider() string { return storage.ProviderLocal }

// Dir returns the bucket directory.
func (b *Backend) Dir() string { return filepath.Join(b.root, b.bucket) }

// ListPage walks the bucket directory and returns keys under prefix in
// lexical order. Directories are reported with a trailing "/". The
// continuation token is the last key of the previous page.
func (b *Backend) ListPage(ctx context.Context, prefix, token string, pageSize int) (storage.Page, error) {
	if pageSize <= 0 {
		pageSize = b.pageSize
	}
	dir := b.Dir()

	var keys []string
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if p == dir {
			return nil
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if d.IsDir() {
			key += "/"
			// Skip subtrees that cannot contain a match.
			if !strings.HasPrefix(key, prefix) && !strings.HasPrefix(prefix, key) {
				return fs.SkipDir
			}
			if key == prefix {
				return nil
			}
		}
		if !d.IsDir() && isTempName(d.Name()) {
			return nil
		}
		if strings.HasPrefix(key, prefix) && key > token {
			keys = append(keys, key)
		}
		return nil
	})
	if err != nil {
		return storage.Page{}, err
	}

	sort.Strings(keys)
	page := storage.Page{Keys: keys}
	if len(keys) > pageSize {
		page.Keys = keys[:pageSize]
		page.NextToken = page.Keys[pageSize-1]
	}
	return page, nil
}

func (b *Backend) Get(_ context.Context, key string) (io.ReadCloser, error) {
	p, err := b.path(b.bucket, key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(p)
	if err != nil {
		return nil, err
	}
	return f, nil
}

// Put writes body to a temporary file next to the target and renames it into
// place, so readers never see a partial object.
func (b *Backend) Put(ctx context.Context, key string, body io.Reader, _ storage.PutOptions) error {
	p, err := b.path(b.bucket, key)
	if err != nil {
		return err
	}
	return writeFile(ctx, p, body)
}

func (b *Backend) Copy(ctx context.Context, srcKey, dstBucket, dstKey string) error {
	if err := checkBucket(dstBucket); err != nil {
		return err
	}
	src, err := b.path(b.bucket, srcKey)
	if err != nil {
		return err
	}
	dst, err := b.path(dstBucket, dstKey)
	if err != nil {
		return err
	}
	if _, err := os.Stat(filepath.Join(b.root, dstBucket)); err != nil {
		if os.IsNotExist(err) {
			return errors.NotFound("bucket", dstBucket)
		}
		return err
	}

	f, err := os.Open(src)
	if err != nil {
		return err
	}
	defer f.Close() //nolint:errcheck // read-only
	return writeFile(ctx, dst, f)
}

// Delete removes key. Deleting a missing key is not an error.
func (b *Backend) Delete(_ context.Context, key string) error {
	p, err := b.path(b.bucket, key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Download copies the object straight into dst.
func (b *Backend) Download(ctx context.Context, key string, dst *os.File, _ storage.TransferConfig) (int64, error) {
	rc, err := b.Get(ctx, key)
	if err != nil {
		return 0, err
	}
	defer rc.Close() //nolint:errcheck // read-only
	return io.Copy(dst, rc)
}

// UploadFile copies src into the object at key.
func (b *Backend) UploadFile(ctx context.Context, key string, src *os.File, _ storage.TransferConfig) error {
	return b.Put(ctx, key, src, storage.PutOptions{Kind: storage.BodyStream, Size: -1})
}

// In-flight writes land in ".cloudstore-<uuid>.tmp" next to the target.
// Keys whose last segment has that shape are reserved.
const (
	tempPrefix = ".cloudstore-"
	tempSuffix = ".tmp"
)

func isTempName(name string) bool {
	return strings.HasPrefix(name, tempPrefix) && strings.HasSuffix(name, tempSuffix)
}

// checkBucket rejects bucket names that are not a single directory below root.
func checkBucket(bucket string) error {
	if bucket == "" || strings.ContainsAny(bucket, `/\`) || bucket == "." || bucket == ".." {
		return errors.InvalidInput("bucket", "must be a single path element")
	}
	return nil
}

// path maps a key to a file below the bucket directory. Keys with ".."
// segments and reserved temporary names are rejected.
func (b *Backend) path(bucket, key string) (string, error) {
	if key == "" {
		return "", errors.InvalidInput("key", "must not be empty")
	}
	parts := strings.Split(key, "/")
	for _, part := range parts {
		if part == ".." {
			return "", errors.InvalidInput("key", "must stay inside the bucket")
		}
	}
	if isTempName(parts[len(parts)-1]) {
		return "", errors.InvalidInput("key", "uses a reserved temporary name")
	}
	clean := path.Clean("/" + key)
	if clean == "/" {
		return "", errors.InvalidInput("key", "must name a file")
	}
	return filepath.Join(b.root, bucket, filepath.FromSlash(clean)), nil
}

func writeFile(ctx context.Context, target string, body io.Reader) (err error) {
	if err := os.MkdirAll(filepath.Dir(target), 0o750); err != nil {
		return err
	}
	tmp := filepath.Join(filepath.Dir(target), tempPrefix+uuid.NewString()+tempSuffix)
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o640)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			f.Close()      //nolint:errcheck // already failing
			os.Remove(tmp) //nolint:errcheck // best effort
		}
	}()

	if _, err = io.Copy(f, &ctxReader{ctx: ctx, r: body}); err != nil {
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, target)
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (r *ctxReader) Read(p []byte) (int, error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}
	return r.r.Read(p)
}

// CreateBucket creates the bucket directory. An existing directory is
// reported as ALREADY_EXISTS.
func (b *Backend) CreateBucket(_ context.Context) error {
	return createBucket(b.root, b.bucket)
}

// CreateBucket creates the bucket directory under root. An existing bucket
// is logged and left alone.
func CreateBucket(_ context.Context, root, bucket string, log *logger.Logger) error {
	return storage.IgnoreConflict(log, storage.ProviderLocal, bucket, createBucket(root, bucket))
}

func createBucket(root, bucket string) error {
	if err := checkBucket(bucket); err != nil {
		return err
	}
	dir := filepath.Join(root, bucket)
	if info, err := os.Stat(dir); err == nil && info.IsDir() {
		return errors.AlreadyExists("bucket").WithDetail("bucket", bucket)
	}
	return os.MkdirAll(dir, 0o750)
}
