// Package azblob implements the storage backend for Azure Blob Storage. The
// adapter's bucket is a blob container.
package azblob

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"

	"github.com/kbukum/cloudstore/auth/azureauth"
	"github.com/kbukum/cloudstore/logger"
	"github.com/kbukum/cloudstore/storage"
)

// DefaultCopyPollInterval is how often a pending server-side copy is checked.
const DefaultCopyPollInterval = 500 * time.Millisecond

func init() {
	storage.RegisterFactory(storage.ProviderAzure, func(_ context.Context, cfg storage.Config, _ *logger.Logger) (storage.Backend, error) {
		cred, err := azureauth.Resolve(AuthConfig(cfg.Azure))
		if err != nil {
			return nil, err
		}
		client, err := cred.NewClient(nil)
		if err != nil {
			return nil, err
		}
		return New(client, cfg.Bucket, cfg.PageSize), nil
	})
}

// AuthConfig maps the adapter configuration onto credential settings.
func AuthConfig(c storage.AzureConfig) azureauth.Config {
	return azureauth.Config{
		AccountName:      c.AccountName,
		AccountKey:       c.AccountKey,
		ConnectionString: c.ConnectionString,
		TenantID:         c.TenantID,
		ClientID:         c.ClientID,
		ClientSecret:     c.ClientSecret,
		ServiceURL:       c.ServiceURL,
	}
}

// Backend implements storage.Backend on one blob container.
type Backend struct {
	client       *azblob.Client
	container    string
	pageSize     int32
	pollInterval time.Duration
}

var (
	_ storage.Backend        = (*Backend)(nil)
	_ storage.FileTransferer = (*Backend)(nil)
	_ storage.BucketCreator  = (*Backend)(nil)
)

// New returns a backend for container.
func New(client *azblob.Client, container string, pageSize int) *Backend {
	b := &Backend{client: client, container: container, pollInterval: DefaultCopyPollInterval}
	if pageSize > 0 {
		b.pageSize = int32(pageSize)
	}
	return b
}

func (b *Backend) Name() string     { return b.container }
func (b *Backend) Provider() string { return storage.ProviderAzure }

// ListPage returns one flat listing segment. The continuation token is the
// service's NextMarker.
func (b *Backend) ListPage(ctx context.Context, prefix, token string, pageSize int) (storage.Page, error) {
	opts := &azblob.ListBlobsFlatOptions{Prefix: to.Ptr(prefix)}
	if token != "" {
		opts.Marker = to.Ptr(token)
	}
	switch {
	case pageSize > 0:
		opts.MaxResults = to.Ptr(int32(pageSize))
	case b.pageSize > 0:
		opts.MaxResults = to.Ptr(b.pageSize)
	}

	resp, err := b.client.NewListBlobsFlatPager(b.container, opts).NextPage(ctx)
	if err != nil {
		return storage.Page{}, translate("list", b.container, prefix, err)
	}

	page := storage.Page{}
	if resp.Segment != nil {
		page.Keys = make([]string, 0, len(resp.Segment.BlobItems))
		for _, item := range resp.Segment.BlobItems {
			if item.Name != nil {
				page.Keys = append(page.Keys, *item.Name)
			}
		}
	}
	if resp.NextMarker != nil {
		page.NextToken = *resp.NextMarker
	}
	return page, nil
}

func (b *Backend) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	resp, err := b.client.DownloadStream(ctx, b.container, key, nil)
	if err != nil {
		return nil, translate("get", b.container, key, err)
	}
	return resp.Body, nil
}

// Put uploads raw bytes as a block blob without a content type, encoded
// bodies with their content type, and streams in blocks of the configured
// part size.
func (b *Backend) Put(ctx context.Context, key string, body io.Reader, opts storage.PutOptions) error {
	if opts.Kind == storage.BodyStream {
		_, err := b.client.UploadStream(ctx, b.container, key, body, streamOptions(opts))
		return translate("put", b.container, key, err)
	}

	data, err := readAll(body)
	if err != nil {
		return err
	}
	_, err = b.client.UploadBuffer(ctx, b.container, key, data, bufferOptions(opts))
	return translate("put", b.container, key, err)
}

// Copy starts a server-side copy and waits until the service reports it
// finished, so the source can be removed safely afterwards.
func (b *Backend) Copy(ctx context.Context, srcKey, dstBucket, dstKey string) error {
	src := b.client.ServiceClient().NewContainerClient(b.container).NewBlobClient(srcKey)
	dst := b.client.ServiceClient().NewContainerClient(dstBucket).NewBlobClient(dstKey)

	resp, err := dst.StartCopyFromURL(ctx, src.URL(), nil)
	if err != nil {
		return translate("copy", dstBucket, srcKey, err)
	}
	if resp.CopyStatus != nil && *resp.CopyStatus == blob.CopyStatusTypeSuccess {
		return nil
	}
	return translate("copy", dstBucket, srcKey, waitForCopy(ctx, dst, b.pollInterval))
}

// Delete removes key. Deleting a missing blob is not an error.
func (b *Backend) Delete(ctx context.Context, key string) error {
	_, err := b.client.DeleteBlob(ctx, b.container, key, nil)
	if isNotFound(err) {
		return nil
	}
	return translate("delete", b.container, key, err)
}

// Download fetches key into dst with parallel ranged reads.
func (b *Backend) Download(ctx context.Context, key string, dst *os.File, tc storage.TransferConfig) (int64, error) {
	n, err := b.client.DownloadFile(ctx, b.container, key, dst, &azblob.DownloadFileOptions{
		BlockSize:   tc.PartSize,
		Concurrency: blockConcurrency(tc.Concurrency),
	})
	return n, translate("get", b.container, key, err)
}

// UploadFile uploads src in parallel blocks.
func (b *Backend) UploadFile(ctx context.Context, key string, src *os.File, tc storage.TransferConfig) error {
	_, err := b.client.UploadFile(ctx, b.container, key, src, &azblob.UploadFileOptions{
		BlockSize:   tc.PartSize,
		Concurrency: blockConcurrency(tc.Concurrency),
	})
	return translate("put", b.container, key, err)
}

// CreateBucket creates the backend's container. An existing container is
// reported as an ALREADY_EXISTS error.
func (b *Backend) CreateBucket(ctx context.Context) error {
	_, err := b.client.CreateContainer(ctx, b.container, nil)
	return translate("create_container", b.container, "", err)
}

// CreateContainer creates container. A container that already exists is
// logged and the call succeeds.
func CreateContainer(ctx context.Context, client *azblob.Client, container string, log *logger.Logger) error {
	_, err := client.CreateContainer(ctx, container, nil)
	return storage.IgnoreConflict(log, storage.ProviderAzure, container, translate("create_container", container, "", err))
}

type propertiesGetter interface {
	GetProperties(ctx context.Context, o *blob.GetPropertiesOptions) (blob.GetPropertiesResponse, error)
}

func waitForCopy(ctx context.Context, dst propertiesGetter, interval time.Duration) error {
	timer := time.NewTimer(interval)
	defer timer.Stop()
	for {
		props, err := dst.GetProperties(ctx, nil)
		if err != nil {
			return err
		}
		status := blob.CopyStatusTypeSuccess
		if props.CopyStatus != nil {
			status = *props.CopyStatus
		}
		switch status {
		case blob.CopyStatusTypeSuccess:
			return nil
		case blob.CopyStatusTypeAborted, blob.CopyStatusTypeFailed:
			desc := ""
			if props.CopyStatusDescription != nil {
				desc = *props.CopyStatusDescription
			}
			return fmt.Errorf("azblob: copy %s: %s", status, desc)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
			timer.Reset(interval)
		}
	}
}

// blockConcurrency fits n into the SDK's uint16 field, saturating at the max.
func blockConcurrency(n int) uint16 {
	switch {
	case n <= 0:
		return 0
	case n > math.MaxUint16:
		return math.MaxUint16
	}
	return uint16(n)
}

func bufferOptions(opts storage.PutOptions) *azblob.UploadBufferOptions {
	o := &azblob.UploadBufferOptions{
		BlockSize:   opts.Transfer.PartSize,
		Concurrency: blockConcurrency(opts.Transfer.Concurrency),
	}
	if opts.Kind == storage.BodyEncoded && opts.ContentType != "" {
		o.HTTPHeaders = &blob.HTTPHeaders{BlobContentType: to.Ptr(opts.ContentType)}
	}
	return o
}

func streamOptions(opts storage.PutOptions) *azblob.UploadStreamOptions {
	o := &azblob.UploadStreamOptions{
		BlockSize:   opts.Transfer.PartSize,
		Concurrency: opts.Transfer.Concurrency,
	}
	if opts.ContentType != "" {
		o.HTTPHeaders = &blob.HTTPHeaders{BlobContentType: to.Ptr(opts.ContentType)}
	}
	return o
}

func readAll(r io.Reader) ([]byte, error) {
	switch v := r.(type) {
	case *bytes.Buffer:
		return v.Bytes(), nil
	}
	return io.ReadAll(r)
}
