package validation

import (
	"strings"
	"testing"

	"github.com/kbukum/cloudstore/errors"
)

func TestValidatorRequired(t *testing.T) {
	v := New()
	v.Required("bucket", "")
	v.Required("region", "  ")
	v.Required("profile", "default")

	if len(v.Errors()) != 2 {
		t.Fatalf("expected 2 errors, got %d", len(v.Errors()))
	}
	if v.Errors()[0].Field != "bucket" {
		t.Errorf("expected bucket first, got %q", v.Errors()[0].Field)
	}
}

func TestValidatorForbidden(t *testing.T) {
	v := New().Forbidden("connection_string", "x", "together with account_key")
	if !v.HasErrors() {
		t.Fatal("expected an error for a forbidden non-empty field")
	}
	if !strings.Contains(v.Errors()[0].Message, "together with account_key") {
		t.Errorf("unexpected message %q", v.Errors()[0].Message)
	}
	if New().Forbidden("x", "", "ever").HasErrors() {
		t.Error("empty value must pass")
	}
}

func TestValidatorMinAndOneOf(t *testing.T) {
	v := New().
		Min("transfer.part_size", 1024, 5*1024*1024).
		OneOf("provider", "ftp", []string{"s3", "azure", "gcs"}).
		OneOf("provider", "", []string{"s3"})

	if len(v.Errors()) != 2 {
		t.Fatalf("expected 2 errors, got %v", v.Errors())
	}
}

func TestValidatorErr(t *testing.T) {
	if err := New().Err(); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}

	err := New().Custom(false, "page_size", "must not be negative").Err()
	appErr, ok := errors.AsAppError(err)
	if !ok {
		t.Fatalf("expected AppError, got %T", err)
	}
	if appErr.Code != errors.ErrCodeInvalidInput {
		t.Errorf("expected INVALID_INPUT, got %s", appErr.Code)
	}
	if !strings.Contains(appErr.Message, "page_size: must not be negative") {
		t.Errorf("unexpected message %q", appErr.Message)
	}
	if _, ok := appErr.Details["fields"]; !ok {
		t.Error("expected fields detail")
	}
}

type transferSettings struct {
	PartSize    int64 `mapstructure:"part_size" validate:"gte=0"`
	Concurrency int   `mapstructure:"concurrency" validate:"gte=0"`
}

type sampleConfig struct {
	Provider string           `mapstructure:"provider" validate:"required,oneof=s3 azure gcs"`
	Bucket   string           `mapstructure:"bucket" validate:"required"`
	Region   string           `mapstructure:"region" validate:"required_if=Provider s3"`
	Transfer transferSettings `mapstructure:"transfer"`
}

func TestStructValidateValid(t *testing.T) {
	cfg := sampleConfig{Provider: "s3", Bucket: "data", Region: "eu-west-1"}
	if err := Validate(cfg); err != nil {
		t.Errorf("expected valid, got %v", err)
	}
}

func TestStructValidateInvalid(t *testing.T) {
	cfg := sampleConfig{Provider: "s3", Transfer: transferSettings{PartSize: -1}}
	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected error")
	}
	msg := err.Error()
	for _, want := range []string{"bucket: is required", "region: is required when Provider is s3", "transfer.part_size: must be greater than or equal to 0"} {
		if !strings.Contains(msg, want) {
			t.Errorf("expected %q in %q", want, msg)
		}
	}
}

func TestStructValidateOneOf(t *testing.T) {
	err := Validate(sampleConfig{Provider: "ftp", Bucket: "b"})
	if err == nil || !strings.Contains(err.Error(), "provider: must be one of: s3 azure gcs") {
		t.Errorf("unexpected error %v", err)
	}
}

func TestToSnakeCase(t *testing.T) {
	if got := toSnakeCase("PageSize"); got != "page_size" {
		t.Errorf("expected page_size, got %q", got)
	}
}
