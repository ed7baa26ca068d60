package storage

import (
	"context"

	"github.com/kbukum/cloudstore/logger"
	"github.com/kbukum/cloudstore/observability"
	"github.com/kbukum/cloudstore/provider"
)

// Move copies keys to destination, one at a time, deleting each source after
// its copy when opts.RemoveSource is set.
//
// Copying a key onto itself (no DestinationName, destination is this bucket)
// is skipped with a warning. Keys are not moved atomically: on failure the
// keys already processed stay moved, the rest are untouched, and the returned
// error carries the failing key and the processed count.
func (b *Bucket) Move(ctx context.Context, destination string, keys []string, opts MoveOptions) error {
	return b.MoveFrom(ctx, destination, provider.FromSlice(keys), opts)
}

// MoveFrom is Move over an iterator. The iterator is closed on return.
func (b *Bucket) MoveFrom(ctx context.Context, destination string, keys provider.Iterator[string], opts MoveOptions) error {
	defer keys.Close()

	processed, moved := 0, 0
	onMoved := opts.OnMoved
	opts.OnMoved = func(srcKey, dstKey string) {
		moved++
		if onMoved != nil {
			onMoved(srcKey, dstKey)
		}
	}
	for {
		key, ok, err := keys.Next(ctx)
		if err != nil {
			return Translate("list", "", err).WithDetail("processed", processed)
		}
		if !ok {
			break
		}
		if err := b.moveOne(ctx, destination, key, opts); err != nil {
			return Translate("copy", key, err).WithDetail("processed", processed)
		}
		processed++
	}

	b.log.Debug("move finished", map[string]interface{}{
		logger.FieldDestination: destination,
		logger.FieldCount:       moved,
		"skipped":               processed - moved,
	})
	return nil
}

func (b *Bucket) moveOne(ctx context.Context, destination, key string, opts MoveOptions) error {
	fields := map[string]interface{}{logger.FieldKey: key, logger.FieldDestination: destination}

	if opts.DestinationName == "" && destination == b.backend.Name() {
		b.log.Warn("source and destination are the same object, nothing to move", fields)
		return nil
	}

	dstKey := opts.DestinationName
	if dstKey == "" {
		dstKey = key
	}

	err := b.observe(ctx, "copy", key, func(ctx context.Context) error {
		observability.SetSpanAttribute(ctx, observability.AttrDestination, destination+"/"+dstKey)
		if err := b.backend.Copy(ctx, key, destination, dstKey); err != nil {
			return Translate("copy", key, err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	b.log.Debug("object copied", fields)

	if !opts.RemoveSource {
		opts.OnMoved(key, dstKey)
		return nil
	}
	err = b.observe(ctx, "delete", key, func(ctx context.Context) error {
		if err := b.backend.Delete(ctx, key); err != nil {
			return Translate("delete", key, err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	b.log.Debug("source removed", fields)
	opts.OnMoved(key, dstKey)
	return nil
}
