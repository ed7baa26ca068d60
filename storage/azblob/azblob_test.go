package azblob

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"

	"github.com/kbukum/cloudstore/auth/azureauth"
	"github.com/kbukum/cloudstore/errors"
	"github.com/kbukum/cloudstore/storage"
)

func TestTranslate(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code errors.ErrorCode
	}{
		{"blob not found", &azcore.ResponseError{ErrorCode: "BlobNotFound", StatusCode: 404}, errors.ErrCodeNotFound},
		{"container not found", &azcore.ResponseError{ErrorCode: "ContainerNotFound", StatusCode: 404}, errors.ErrCodeNotFound},
		{"container exists", &azcore.ResponseError{ErrorCode: "ContainerAlreadyExists", StatusCode: 409}, errors.ErrCodeAlreadyExists},
		{"auth failed", &azcore.ResponseError{ErrorCode: "AuthenticationFailed", StatusCode: 403}, errors.ErrCodeForbidden},
		{"timeout", &azcore.ResponseError{ErrorCode: "OperationTimedOut", StatusCode: 500}, errors.ErrCodeTimeout},
		{"bare 404", &azcore.ResponseError{StatusCode: 404}, errors.ErrCodeNotFound},
		{"bare 403", &azcore.ResponseError{StatusCode: 403}, errors.ErrCodeForbidden},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := translate("get", "c", "k", tc.err); !errors.HasCode(got, tc.code) {
				t.Errorf("translate() = %v, want %s", got, tc.code)
			}
		})
	}

	plain := fmt.Errorf("connection reset")
	if got := translate("get", "c", "k", plain); got != plain {
		t.Errorf("unknown errors should pass through, got %v", got)
	}
	if translate("get", "c", "k", nil) != nil {
		t.Error("nil should stay nil")
	}
	if !isNotFound(&azcore.ResponseError{ErrorCode: "BlobNotFound"}) || isNotFound(fmt.Errorf("x")) {
		t.Error("unexpected isNotFound result")
	}
}

type fakeProps struct {
	statuses []blob.CopyStatusType
	calls    int
	err      error
}

func (f *fakeProps) GetProperties(context.Context, *blob.GetPropertiesOptions) (blob.GetPropertiesResponse, error) {
	if f.err != nil {
		return blob.GetPropertiesResponse{}, f.err
	}
	s := f.statuses[f.calls]
	f.calls++
	return blob.GetPropertiesResponse{CopyStatus: to.Ptr(s), CopyStatusDescription: to.Ptr("detail")}, nil
}

func TestWaitForCopy(t *testing.T) {
	ctx := context.Background()

	f := &fakeProps{statuses: []blob.CopyStatusType{blob.CopyStatusTypePending, blob.CopyStatusTypePending, blob.CopyStatusTypeSuccess}}
	if err := waitForCopy(ctx, f, time.Millisecond); err != nil {
		t.Fatal(err)
	}
	if f.calls != 3 {
		t.Errorf("expected 3 polls, got %d", f.calls)
	}

	f = &fakeProps{statuses: []blob.CopyStatusType{blob.CopyStatusTypeFailed}}
	if err := waitForCopy(ctx, f, time.Millisecond); err == nil {
		t.Error("expected failed copy error")
	}

	f = &fakeProps{err: &azcore.ResponseError{ErrorCode: "BlobNotFound", StatusCode: 404}}
	if err := waitForCopy(ctx, f, time.Millisecond); err == nil {
		t.Error("expected properties error")
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	f = &fakeProps{statuses: []blob.CopyStatusType{blob.CopyStatusTypePending}}
	if err := waitForCopy(cancelled, f, time.Hour); err != context.Canceled {
		t.Errorf("expected context cancellation, got %v", err)
	}
}

func TestUploadOptions(t *testing.T) {
	tc := storage.TransferConfig{PartSize: 4 << 20, Concurrency: 5}

	o := bufferOptions(storage.PutOptions{Kind: storage.BodyEncoded, ContentType: "text/csv", Transfer: tc})
	if o.BlockSize != 4<<20 || o.Concurrency != 5 {
		t.Errorf("transfer config not forwarded: %+v", o)
	}
	if o.HTTPHeaders == nil || *o.HTTPHeaders.BlobContentType != "text/csv" {
		t.Error("encoded bodies should carry their content type")
	}

	o = bufferOptions(storage.PutOptions{Kind: storage.BodyBytes, ContentType: "ignored"})
	if o.HTTPHeaders != nil {
		t.Error("raw bytes should be uploaded without a content type")
	}

	s := streamOptions(storage.PutOptions{Kind: storage.BodyStream, Transfer: tc})
	if s.BlockSize != 4<<20 || s.Concurrency != 5 || s.HTTPHeaders != nil {
		t.Errorf("unexpected stream options %+v", s)
	}
}

func TestBlockConcurrency(t *testing.T) {
	tests := []struct {
		in   int
		want uint16
	}{
		{-1, 0},
		{0, 0},
		{8, 8},
		{65535, 65535},
		{65536, 65535},
		{1 << 20, 65535},
	}
	for _, tc := range tests {
		if got := blockConcurrency(tc.in); got != tc.want {
			t.Errorf("blockConcurrency(%d) = %d, want %d", tc.in, got, tc.want)
		}
	}

	o := bufferOptions(storage.PutOptions{Transfer: storage.TransferConfig{Concurrency: 70000}})
	if o.Concurrency != 65535 {
		t.Errorf("expected saturated concurrency, got %d", o.Concurrency)
	}
}

func TestNewBackend(t *testing.T) {
	cred, err := azureauth.Resolve(AuthConfig(storage.AzureConfig{AccountName: "acct", AccountKey: "a2V5"}))
	if err != nil {
		t.Fatal(err)
	}
	client, err := cred.NewClient(nil)
	if err != nil {
		t.Fatal(err)
	}
	b := New(client, "reports", 250)
	if b.Name() != "reports" || b.Provider() != storage.ProviderAzure || b.pageSize != 250 {
		t.Errorf("unexpected backend %+v", b)
	}
}

func TestFactory_RejectsAmbiguousCredentials(t *testing.T) {
	_, err := storage.New(context.Background(), storage.Config{
		Provider: storage.ProviderAzure,
		Bucket:   "c",
		Azure:    storage.AzureConfig{AccountName: "acct"},
	}, nil)
	if err == nil {
		t.Error("expected an error without credentials")
	}
}
