// Package validation checks configuration structs before an adapter is built.
//
// Struct tags cover the static rules:
//
//	type Config struct {
//	    Provider string `mapstructure:"provider" validate:"required,oneof=s3 azure gcs local memory"`
//	    Bucket   string `mapstructure:"bucket" validate:"required"`
//	}
//	err := validation.Validate(cfg)
//
// Rules that depend on other fields are collected programmatically:
//
//	v := validation.New()
//	v.Required("region", cfg.Region).Custom(cfg.PageSize >= 0, "page_size", "must not be negative")
//	err := v.Err()
package validation
