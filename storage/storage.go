package storage

import (
	"context"

	"github.com/kbukum/cloudstore/codec"
	"github.com/kbukum/cloudstore/provider"
)

// Storage is the contract every adapter honours: a bucket or container plus
// an optional base path, listed, moved, read and written the same way
// regardless of the provider behind it.
//
// Filenames are resolved with FullPath(filename, folder). Keys passed to Move
// and keys yielded by List are resolved keys, used verbatim.
//
// A Storage is not safe for concurrent use.
type Storage interface {
	// Name returns the bucket or container name.
	Name() string
	// Provider returns the backend name ("s3", "azure", "gcs", ...).
	Provider() string

	BasePath() string
	SetBasePath(path string)
	FolderPath(folder string) string
	FullPath(filename, folder string) string

	// List returns a lazy iterator over the keys under opts.Folder that pass
	// the filter. No request is sent until the first Next.
	List(ctx context.Context, opts ListOptions) *ObjectIterator
	// Move copies keys to the destination bucket and optionally removes the
	// sources. The first failure stops the run.
	Move(ctx context.Context, destination string, keys []string, opts MoveOptions) error
	// MoveFrom is Move over an iterator, typically the result of List.
	MoveFrom(ctx context.Context, destination string, keys provider.Iterator[string], opts MoveOptions) error

	ReadCSV(ctx context.Context, filename, folder string, opts codec.CSVOptions) (*codec.Table, error)
	ReadExcel(ctx context.Context, filename, folder string, opts codec.ExcelOptions) (*codec.Table, error)
	ReadParquet(ctx context.Context, filename, folder string) (*codec.Table, error)
	ReadYAML(ctx context.Context, filename, folder string, out any) error
	ReadJSON(ctx context.Context, filename, folder string, out any, opts codec.JSONOptions) error
	ReadObject(ctx context.Context, filename, folder string) ([]byte, error)
	// ReadObjectToFile downloads an object to a local file and returns the
	// local path written. An empty localName reuses the object key.
	ReadObjectToFile(ctx context.Context, objectName, localName, folder string) (string, error)

	WriteCSV(ctx context.Context, table *codec.Table, filename, folder string, opts codec.CSVOptions) error
	WriteExcel(ctx context.Context, table *codec.Table, filename, folder string, opts codec.ExcelOptions) error
	WriteParquet(ctx context.Context, table *codec.Table, filename, folder string, opts codec.ParquetOptions) error
	WriteYAML(ctx context.Context, value any, filename, folder string, opts codec.YAMLOptions) error
	WriteJSON(ctx context.Context, value any, filename, folder string, opts codec.JSONOptions) error
	// WriteObject stores raw content. data must be a []byte or an io.Reader.
	WriteObject(ctx context.Context, data any, filename, folder string) error
	WriteObjectFromFile(ctx context.Context, localPath, filename, folder string) error

	TransferConfig() TransferConfig
	SetTransferConfig(cfg TransferConfig)
}

// MoveOptions tunes Move and MoveFrom.
type MoveOptions struct {
	// DestinationName renames the object at the destination. Empty keeps
	// the source key.
	DestinationName string
	// RemoveSource deletes each source key once its copy has succeeded.
	RemoveSource bool
	// OnMoved, when set, is called for every key that was copied (and
	// removed, with RemoveSource). Keys skipped as copies onto themselves
	// are not reported.
	OnMoved func(srcKey, dstKey string)
}

var _ Storage = (*Bucket)(nil)
