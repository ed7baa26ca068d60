// Package memory is an in-process storage backend. Buckets live in a Store
// shared by every backend created from it, so copies between buckets work
// the way they do against a real provider.
package memory

import (
	"bytes"
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/kbukum/cloudstore/errors"
	"github.com/kbukum/cloudstore/logger"
	"github.com/kbukum/cloudstore/storage"
)

// DefaultPageSize is used when a listing asks for no particular page size.
const DefaultPageSize = 1000

var defaultStore = NewStore()

func init() {
	storage.RegisterFactory(storage.ProviderMemory, func(_ context.Context, cfg storage.Config, _ *logger.Logger) (storage.Backend, error) {
		return defaultStore.Backend(cfg.Bucket, cfg.PageSize), nil
	})
}

// Default returns the store behind the "memory" provider factory.
func Default() *Store { return defaultStore }

type object struct {
	data        []byte
	contentType string
	modTime     time.Time
}

// Store holds buckets of objects.
type Store struct {
	mu      sync.RWMutex
	buckets map[string]map[string]*object
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{buckets: make(map[string]map[string]*object)}
}

// CreateBucket adds a bucket. It returns an ALREADY_EXISTS error when the
// bucket is present.
func (s *Store) CreateBucket(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.buckets[name]; ok {
		return errors.AlreadyExists("bucket").WithDetail("bucket", name)
	}
	s.buckets[name] = make(map[string]*object)
	return nil
}

// Backend returns a backend for bucket, creating the bucket if needed.
func (s *Store) Backend(bucket string, pageSize int) *Backend {
	_ = s.CreateBucket(bucket)
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Backend{
		store:    s,
		bucket:   bucket,
		pageSize: pageSize,
	}
}

// Object returns a copy of the object's content.
func (s *Store) Object(bucket, key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.buckets[bucket][key]
	if !ok {
		return nil, false
	}
	return bytes.Clone(o.data), true
}

// ContentType returns the content type the object was stored with.
func (s *Store) ContentType(bucket, key string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if o, ok := s.buckets[bucket][key]; ok {
		return o.contentType
	}
	return ""
}

// Keys returns every key in bucket, sorted.
func (s *Store) Keys(bucket string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.buckets[bucket]))
	for k := range s.buckets[bucket] {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Backend implements storage.Backend over a Store.
type Backend struct {
	store    *Store
	bucket   string
	pageSize int
}

var (
	_ storage.Backend       = (*Backend)(nil)
	_ storage.BucketCreator = (*Backend)(nil)
)

func (b *Backend) Name() string     { return b.bucket }
func (b *Backend) Provider() string { return storage.ProviderMemory }

// ListPage returns keys under prefix in lexical order. The continuation
// token is the last key of the previous page.
func (b *Backend) ListPage(ctx context.Context, prefix, token string, pageSize int) (storage.Page, error) {
	if err := ctx.Err(); err != nil {
		return storage.Page{}, err
	}
	if pageSize <= 0 {
		pageSize = b.pageSize
	}

	b.store.mu.RLock()
	objects, ok := b.store.buckets[b.bucket]
	var keys []string
	for k := range objects {
		if strings.HasPrefix(k, prefix) && k > token {
			keys = append(keys, k)
		}
	}
	b.store.mu.RUnlock()
	if !ok {
		return storage.Page{}, errors.NotFound("bucket", b.bucket)
	}

	sort.Strings(keys)
	page := storage.Page{Keys: keys}
	if len(keys) > pageSize {
		page.Keys = keys[:pageSize]
		page.NextToken = page.Keys[pageSize-1]
	}
	return page, nil
}

func (b *Backend) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, ok := b.store.Object(b.bucket, key)
	if !ok {
		return nil, errors.NotFound("object", key)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (b *Backend) Put(ctx context.Context, key string, body io.Reader, opts storage.PutOptions) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return errors.Transfer("put", key, err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	b.store.mu.Lock()
	defer b.store.mu.Unlock()
	objects, ok := b.store.buckets[b.bucket]
	if !ok {
		return errors.NotFound("bucket", b.bucket)
	}
	objects[key] = &object{data: data, contentType: opts.ContentType, modTime: time.Now()}
	return nil
}

func (b *Backend) Copy(ctx context.Context, srcKey, dstBucket, dstKey string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.store.mu.Lock()
	defer b.store.mu.Unlock()

	src, ok := b.store.buckets[b.bucket][srcKey]
	if !ok {
		return errors.NotFound("object", srcKey)
	}
	dst, ok := b.store.buckets[dstBucket]
	if !ok {
		return errors.NotFound("bucket", dstBucket)
	}
	cp := *src
	cp.data = bytes.Clone(src.data)
	cp.modTime = time.Now()
	dst[dstKey] = &cp
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (b *Backend) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.store.mu.Lock()
	defer b.store.mu.Unlock()
	delete(b.store.buckets[b.bucket], key)
	return nil
}

// CreateBucket reports ALREADY_EXISTS for the backend's bucket unless it was
// removed from the store.
func (b *Backend) CreateBucket(_ context.Context) error {
	return b.store.CreateBucket(b.bucket)
}

// CreateBucket adds bucket to the store. An existing bucket is logged and
// left alone.
func CreateBucket(_ context.Context, s *Store, bucket string, log *logger.Logger) error {
	return storage.IgnoreConflict(log, storage.ProviderMemory, bucket, s.CreateBucket(bucket))
}
