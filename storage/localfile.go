package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/kbukum/cloudstore/logger"
	"github.com/kbukum/cloudstore/util"
)

const (
	dirPerm  = 0o750
	filePerm = 0o640
)

// ReadObjectToFile downloads objectName in folder to localName and returns
// the path written. An empty localName reuses the object key as a relative
// path. Characters that common filesystems reject are removed from the local
// name, and missing parent directories are created.
//
// The download lands in a temporary sibling file that is renamed into place
// once complete, so a failed transfer never leaves a truncated file at the
// target path.
func (b *Bucket) ReadObjectToFile(ctx context.Context, objectName, localName, folder string) (string, error) {
	key := b.FullPath(objectName, folder)
	if localName == "" {
		localName = key
	}
	localName = util.SanitizeFilename(localName)
	if localName == "" {
		return "", fmt.Errorf("storage: no usable local file name for %q", key)
	}

	if dir := filepath.Dir(localName); dir != "." {
		if err := os.MkdirAll(dir, dirPerm); err != nil {
			return "", fmt.Errorf("storage: create directory %s: %w", dir, err)
		}
	}

	tmp := localName + "." + uuid.NewString() + ".part"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, filePerm)
	if err != nil {
		return "", fmt.Errorf("storage: create %s: %w", tmp, err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = f.Close()
			_ = os.Remove(tmp)
		}
	}()

	err = b.observe(ctx, "download", key, func(ctx context.Context) error {
		b.log.Debug("downloading object", map[string]interface{}{logger.FieldKey: key, "path": localName})

		var n int64
		var err error
		if ft, ok := b.backend.(FileTransferer); ok {
			n, err = ft.Download(ctx, key, f, b.transfer)
		} else {
			n, err = b.copyTo(ctx, key, f)
		}
		if err != nil {
			return Translate("get", key, err)
		}
		b.metrics.RecordBytes(ctx, b.backend.Provider(), "read", n)
		return nil
	})
	if err != nil {
		return "", err
	}

	if err := f.Close(); err != nil {
		return "", fmt.Errorf("storage: close %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, localName); err != nil {
		_ = os.Remove(tmp)
		committed = true
		return "", fmt.Errorf("storage: rename %s: %w", tmp, err)
	}
	committed = true
	return localName, nil
}

func (b *Bucket) copyTo(ctx context.Context, key string, w io.Writer) (int64, error) {
	rc, err := b.backend.Get(ctx, key)
	if err != nil {
		return 0, err
	}
	defer rc.Close()
	return io.Copy(w, rc)
}

// WriteObjectFromFile uploads the local file at localPath to filename in
// folder.
func (b *Bucket) WriteObjectFromFile(ctx context.Context, localPath, filename, folder string) error {
	f, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("storage: open %s: %w", localPath, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("storage: stat %s: %w", localPath, err)
	}
	if info.IsDir() {
		return fmt.Errorf("storage: %s is a directory", localPath)
	}

	key := b.FullPath(filename, folder)
	ft, ok := b.backend.(FileTransferer)
	if !ok {
		return b.put(ctx, "upload", key, f, PutOptions{Size: info.Size(), Kind: BodyStream})
	}
	return b.observe(ctx, "upload", key, func(ctx context.Context) error {
		b.log.Debug("uploading file", map[string]interface{}{logger.FieldKey: key, "path": localPath})
		if err := ft.UploadFile(ctx, key, f, b.transfer); err != nil {
			return Translate("put", key, err)
		}
		b.metrics.RecordBytes(ctx, b.backend.Provider(), "write", info.Size())
		return nil
	})
}
