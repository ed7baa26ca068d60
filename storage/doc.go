// Package storage is the uniform adapter over S3, Azure Blob Storage and
// Google Cloud Storage.
//
// A Bucket implements the Storage contract on top of a provider Backend: it
// resolves folder and file names against a base path, lists keys lazily page
// by page through a filter, copies and moves keys between buckets, and reads
// and writes CSV, Excel, Parquet, YAML, JSON and raw objects through the codec
// package. Backends live in sub-packages and register themselves with
// RegisterFactory from init:
//
//	import _ "github.com/kbukum/cloudstore/storage/s3"
//
//	b, err := storage.New(ctx, storage.Config{Provider: "s3", Bucket: "raw"}, log)
//	it := b.List(ctx, storage.NewListOptions("2024/", storage.WithExtensions(".csv")))
//	for {
//		key, ok, err := it.Next(ctx)
//		...
//	}
//
// Provider failures are returned as errors.AppError values with the
// TRANSFER_FAILED code (or its NOT_FOUND, FORBIDDEN and TIMEOUT refinements);
// decode failures carry DECODE_FAILED.
package storage
