// Package s3 implements the storage backend for Amazon S3 and S3-compatible
// services.
package s3

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/kbukum/cloudstore/auth/awsauth"
	"github.com/kbukum/cloudstore/logger"
	"github.com/kbukum/cloudstore/storage"
)

func init() {
	storage.RegisterFactory(storage.ProviderS3, func(ctx context.Context, cfg storage.Config, log *logger.Logger) (storage.Backend, error) {
		httpClient, err := NewHTTPClient()
		if err != nil {
			return nil, fmt.Errorf("s3: configure http client: %w", err)
		}
		a, err := Authenticate(ctx, cfg.AWS, log, awsauth.WithHTTPClient(httpClient))
		if err != nil {
			return nil, err
		}
		client := awss3.NewFromConfig(a.Config(), ClientOptions(cfg.AWS)...)
		return New(client, cfg.Bucket, cfg.PageSize), nil
	})
}

// Authenticate resolves the AWS session for cfg, assuming the delegated role
// when cfg.Delegated is set.
func Authenticate(ctx context.Context, cfg storage.AWSConfig, log *logger.Logger, opts ...awsauth.Option) (*awsauth.Auth, error) {
	base := awsauth.Config{
		Region:          cfg.Region,
		Profile:         cfg.Profile,
		AccessKeyID:     cfg.AccessKeyID,
		SecretAccessKey: cfg.SecretAccessKey,
		SessionToken:    cfg.SessionToken,
	}
	if !cfg.Delegated {
		return awsauth.New(ctx, base, opts...)
	}
	d, err := awsauth.NewDelegated(ctx, awsauth.DelegatedConfig{
		Config:     base,
		PolicyName: cfg.PolicyName,
		GroupName:  cfg.GroupName,
		UseMFA:     cfg.UseMFA,
		MFASerial:  cfg.MFASerial,
	}, log, opts...)
	if err != nil {
		return nil, err
	}
	return d.Auth, nil
}

// ClientOptions returns the S3 client options for a custom endpoint and
// path-style addressing.
func ClientOptions(cfg storage.AWSConfig) []func(*awss3.Options) {
	var opts []func(*awss3.Options)
	if cfg.Endpoint != "" {
		opts = append(opts, func(o *awss3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		})
	} else if cfg.ForcePathStyle {
		opts = append(opts, func(o *awss3.Options) {
			o.UsePathStyle = true
		})
	}
	return opts
}

// API is the subset of the S3 client the backend calls directly.
type API interface {
	ListObjectsV2(ctx context.Context, in *awss3.ListObjectsV2Input, optFns ...func(*awss3.Options)) (*awss3.ListObjectsV2Output, error)
	GetObject(ctx context.Context, in *awss3.GetObjectInput, optFns ...func(*awss3.Options)) (*awss3.GetObjectOutput, error)
	PutObject(ctx context.Context, in *awss3.PutObjectInput, optFns ...func(*awss3.Options)) (*awss3.PutObjectOutput, error)
	CopyObject(ctx context.Context, in *awss3.CopyObjectInput, optFns ...func(*awss3.Options)) (*awss3.CopyObjectOutput, error)
	DeleteObject(ctx context.Context, in *awss3.DeleteObjectInput, optFns ...func(*awss3.Options)) (*awss3.DeleteObjectOutput, error)
	CreateBucket(ctx context.Context, in *awss3.CreateBucketInput, optFns ...func(*awss3.Options)) (*awss3.CreateBucketOutput, error)
}

// Uploader is implemented by *manager.Uploader.
type Uploader interface {
	Upload(ctx context.Context, in *awss3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

// Downloader is implemented by *manager.Downloader.
type Downloader interface {
	Download(ctx context.Context, w io.WriterAt, in *awss3.GetObjectInput, opts ...func(*manager.Downloader)) (int64, error)
}

// Backend implements storage.Backend on one S3 bucket.
type Backend struct {
	api        API
	uploader   Uploader
	downloader Downloader
	bucket     string
	region     string
	pageSize   int32
}

var (
	_ storage.Backend        = (*Backend)(nil)
	_ storage.FileTransferer = (*Backend)(nil)
	_ storage.BucketCreator  = (*Backend)(nil)
)

// New returns a backend for bucket using client for object calls and the
// transfer manager for streamed uploads and file downloads.
func New(client *awss3.Client, bucket string, pageSize int) *Backend {
	b := NewWithAPI(client, manager.NewUploader(client), manager.NewDownloader(client), bucket, pageSize)
	b.region = client.Options().Region
	return b
}

// NewWithAPI returns a backend over explicit clients. Buckets it creates get
// no location constraint unless SetRegion is called.
func NewWithAPI(api API, up Uploader, down Downloader, bucket string, pageSize int) *Backend {
	b := &Backend{api: api, uploader: up, downloader: down, bucket: bucket}
	if pageSize > 0 {
		b.pageSize = int32(pageSize)
	}
	return b
}

// SetRegion sets the region used by CreateBucket.
func (b *Backend) SetRegion(region string) { b.region = region }

func (b *Backend) Name() string     { return b.bucket }
func (b *Backend) Provider() string { return storage.ProviderS3 }

// ListPage returns one ListObjectsV2 page. S3 reports directory markers as
// zero-byte keys ending in "/"; they are passed through for the filter.
func (b *Backend) ListPage(ctx context.Context, prefix, token string, pageSize int) (storage.Page, error) {
	in := &awss3.ListObjectsV2Input{
		Bucket: aws.String(b.bucket),
		Prefix: aws.String(prefix),
	}
	if token != "" {
		in.ContinuationToken = aws.String(token)
	}
	switch {
	case pageSize > 0:
		in.MaxKeys = aws.Int32(int32(pageSize))
	case b.pageSize > 0:
		in.MaxKeys = aws.Int32(b.pageSize)
	}

	out, err := b.api.ListObjectsV2(ctx, in)
	if err != nil {
		return storage.Page{}, translate("list", b.bucket, prefix, err)
	}

	page := storage.Page{Keys: make([]string, 0, len(out.Contents))}
	for _, obj := range out.Contents {
		page.Keys = append(page.Keys, aws.ToString(obj.Key))
	}
	if aws.ToBool(out.IsTruncated) {
		page.NextToken = aws.ToString(out.NextContinuationToken)
		if page.NextToken == "" {
			return storage.Page{}, fmt.Errorf("s3: truncated listing without a continuation token")
		}
	}
	return page, nil
}

func (b *Backend) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	out, err := b.api.GetObject(ctx, &awss3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, translate("get", b.bucket, key, err)
	}
	return out.Body, nil
}

// Put sends raw bytes with a single PutObject and no content type, encoded
// bodies with a single PutObject and their content type, and streams through
// the multipart upload manager.
func (b *Backend) Put(ctx context.Context, key string, body io.Reader, opts storage.PutOptions) error {
	in := &awss3.PutObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
	}

	if opts.Kind == storage.BodyStream {
		in.Body = body
		if opts.ContentType != "" {
			in.ContentType = aws.String(opts.ContentType)
		}
		_, err := b.uploader.Upload(ctx, in, uploadOptions(opts.Transfer))
		return translate("put", b.bucket, key, err)
	}

	rs, size, err := seekable(body)
	if err != nil {
		return err
	}
	in.Body = rs
	in.ContentLength = aws.Int64(size)
	if opts.Kind == storage.BodyEncoded && opts.ContentType != "" {
		in.ContentType = aws.String(opts.ContentType)
	}
	_, err = b.api.PutObject(ctx, in)
	return translate("put", b.bucket, key, err)
}

// Copy performs a server-side copy into dstBucket.
func (b *Backend) Copy(ctx context.Context, srcKey, dstBucket, dstKey string) error {
	_, err := b.api.CopyObject(ctx, &awss3.CopyObjectInput{
		Bucket:     aws.String(dstBucket),
		Key:        aws.String(dstKey),
		CopySource: aws.String(CopySource(b.bucket, srcKey)),
	})
	return translate("copy", dstBucket, srcKey, err)
}

func (b *Backend) Delete(ctx context.Context, key string) error {
	_, err := b.api.DeleteObject(ctx, &awss3.DeleteObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
	})
	return translate("delete", b.bucket, key, err)
}

// Download fetches key into dst with ranged parallel GETs.
func (b *Backend) Download(ctx context.Context, key string, dst *os.File, tc storage.TransferConfig) (int64, error) {
	n, err := b.downloader.Download(ctx, dst, &awss3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
	}, downloadOptions(tc))
	return n, translate("get", b.bucket, key, err)
}

// UploadFile sends src through the multipart upload manager.
func (b *Backend) UploadFile(ctx context.Context, key string, src *os.File, tc storage.TransferConfig) error {
	_, err := b.uploader.Upload(ctx, &awss3.PutObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
		Body:   src,
	}, uploadOptions(tc))
	return translate("put", b.bucket, key, err)
}

// CopySource formats the x-amz-copy-source value, escaping each key segment.
func CopySource(bucket, key string) string {
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return bucket + "/" + strings.Join(parts, "/")
}

func uploadOptions(tc storage.TransferConfig) func(*manager.Uploader) {
	return func(u *manager.Uploader) {
		if tc.PartSize > 0 {
			u.PartSize = tc.PartSize
		}
		if tc.Concurrency > 0 {
			u.Concurrency = tc.Concurrency
		}
	}
}

func downloadOptions(tc storage.TransferConfig) func(*manager.Downloader) {
	return func(d *manager.Downloader) {
		if tc.PartSize > 0 {
			d.PartSize = tc.PartSize
		}
		if tc.Concurrency > 0 {
			d.Concurrency = tc.Concurrency
		}
	}
}

// seekable returns body as a ReadSeeker with a known length, buffering it
// when needed. PutObject signs the payload and must be able to rewind it.
func seekable(body io.Reader) (io.ReadSeeker, int64, error) {
	switch r := body.(type) {
	case *bytes.Reader:
		return r, int64(r.Len()), nil
	case *bytes.Buffer:
		return bytes.NewReader(r.Bytes()), int64(r.Len()), nil
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, 0, err
	}
	return bytes.NewReader(data), int64(len(data)), nil
}

// CreateBucket creates the backend's bucket in the client's region. An
// existing bucket is reported as an ALREADY_EXISTS error.
func (b *Backend) CreateBucket(ctx context.Context) error {
	return createBucket(ctx, b.api, b.bucket, b.region)
}

// CreateBucket creates bucket in region. A bucket that already exists is
// logged and the call succeeds.
func CreateBucket(ctx context.Context, api API, bucket, region string, log *logger.Logger) error {
	return storage.IgnoreConflict(log, storage.ProviderS3, bucket, createBucket(ctx, api, bucket, region))
}

// Outside us-east-1 the region is sent as the location constraint.
func createBucket(ctx context.Context, api API, bucket, region string) error {
	in := &awss3.CreateBucketInput{Bucket: aws.String(bucket)}
	if region != "" && region != storage.DefaultRegion {
		in.CreateBucketConfiguration = &types.CreateBucketConfiguration{
			LocationConstraint: types.BucketLocationConstraint(region),
		}
	}
	_, err := api.CreateBucket(ctx, in)
	return translate("create_bucket", bucket, "", err)
}
