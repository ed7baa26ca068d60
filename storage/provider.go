package storage

import (
	"context"

	"github.com/kbukum/cloudstore/logger"
	"github.com/kbukum/cloudstore/observability"
	"github.com/kbukum/cloudstore/provider"
)

// ObjectRef names an object by filename and folder, resolved with FullPath.
type ObjectRef struct {
	Filename string
	Folder   string
}

// UploadRequest describes a raw upload. Body is a []byte or an io.Reader,
// as accepted by WriteObject.
type UploadRequest struct {
	ObjectRef
	Body any
}

// DownloadProvider exposes ReadObject as a RequestResponse provider.
type DownloadProvider struct {
	name    string
	storage Storage
}

// NewDownloadProvider creates a RequestResponse provider for raw reads.
func NewDownloadProvider(name string, s Storage) *DownloadProvider {
	return &DownloadProvider{name: name, storage: s}
}

func (p *DownloadProvider) Name() string                       { return p.name }
func (p *DownloadProvider) IsAvailable(_ context.Context) bool { return p.storage != nil }

func (p *DownloadProvider) Execute(ctx context.Context, ref ObjectRef) ([]byte, error) {
	return p.storage.ReadObject(ctx, ref.Filename, ref.Folder)
}

// UploadProvider exposes WriteObject as a RequestResponse provider.
type UploadProvider struct {
	name    string
	storage Storage
}

// NewUploadProvider creates a RequestResponse provider for raw writes.
func NewUploadProvider(name string, s Storage) *UploadProvider {
	return &UploadProvider{name: name, storage: s}
}

func (p *UploadProvider) Name() string                       { return p.name }
func (p *UploadProvider) IsAvailable(_ context.Context) bool { return p.storage != nil }

func (p *UploadProvider) Execute(ctx context.Context, req UploadRequest) (struct{}, error) {
	return struct{}{}, p.storage.WriteObject(ctx, req.Body, req.Filename, req.Folder)
}

// ListProvider drains List into a slice.
type ListProvider struct {
	name    string
	storage Storage
}

// NewListProvider creates a RequestResponse provider for listings.
func NewListProvider(name string, s Storage) *ListProvider {
	return &ListProvider{name: name, storage: s}
}

func (p *ListProvider) Name() string                       { return p.name }
func (p *ListProvider) IsAvailable(_ context.Context) bool { return p.storage != nil }

func (p *ListProvider) Execute(ctx context.Context, opts ListOptions) ([]string, error) {
	return Collect(ctx, p.storage.List(ctx, opts))
}

// Instrument wraps rr with logging, tracing and metrics middleware.
func Instrument[I, O any](rr provider.RequestResponse[I, O], log *logger.Logger, metrics *observability.StorageMetrics, backend string) provider.RequestResponse[I, O] {
	return provider.Chain(
		provider.WithLogging[I, O](log),
		provider.WithTracing[I, O](),
		provider.WithMetrics[I, O](metrics, backend),
	)(rr)
}

var (
	_ provider.RequestResponse[ObjectRef, []byte]       = (*DownloadProvider)(nil)
	_ provider.RequestResponse[UploadRequest, struct{}] = (*UploadProvider)(nil)
	_ provider.RequestResponse[ListOptions, []string]   = (*ListProvider)(nil)
)
