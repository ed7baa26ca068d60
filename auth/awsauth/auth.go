// Package awsauth builds AWS sessions for the S3 backend: from static keys, a
// shared profile or the default credential chain, optionally exchanged for a
// delegated role found through the caller's IAM group policy.
package awsauth

import (
	"context"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"

	"github.com/kbukum/cloudstore/errors"
)

// Config selects the credential source. Static keys take precedence over a
// profile; with neither, the default chain is used.
type Config struct {
	Region          string `mapstructure:"region" json:"region"`
	Profile         string `mapstructure:"profile" json:"profile"`
	AccessKeyID     string `mapstructure:"access_key_id" json:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key" json:"-"`
	SessionToken    string `mapstructure:"session_token" json:"-"`
}

// Validate rejects half-specified static keys.
func (c *Config) Validate() error {
	if (c.AccessKeyID == "") != (c.SecretAccessKey == "") {
		return errors.Authentication("access_key_id and secret_access_key must be set together")
	}
	if c.SessionToken != "" && c.AccessKeyID == "" {
		return errors.Authentication("session_token requires static keys")
	}
	return nil
}

// Auth holds a resolved AWS configuration.
type Auth struct {
	cfg     aws.Config
	profile string
}

// Option adjusts the AWS config loading.
type Option func(*awsconfig.LoadOptions) error

// WithHTTPClient sets the HTTP client used by every service client.
func WithHTTPClient(c *http.Client) Option {
	return func(o *awsconfig.LoadOptions) error {
		o.HTTPClient = c
		return nil
	}
}

// New loads an AWS configuration for cfg.
func New(ctx context.Context, cfg Config, opts ...Option) (*Auth, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	loadOpts := make([]func(*awsconfig.LoadOptions) error, 0, len(opts)+3)
	if cfg.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.Region))
	}
	switch {
	case cfg.AccessKeyID != "":
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, cfg.SessionToken),
		))
	case cfg.Profile != "":
		loadOpts = append(loadOpts, awsconfig.WithSharedConfigProfile(cfg.Profile))
	}
	for _, o := range opts {
		loadOpts = append(loadOpts, o)
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, errors.Authentication("unable to load AWS configuration").WithCause(err)
	}
	return &Auth{cfg: awsCfg, profile: cfg.Profile}, nil
}

// FromConfig wraps an already resolved configuration.
func FromConfig(cfg aws.Config) *Auth { return &Auth{cfg: cfg} }

// Config returns a copy of the AWS configuration.
func (a *Auth) Config() aws.Config { return a.cfg.Copy() }

// Region returns the configured region, which may be empty.
func (a *Auth) Region() string { return a.cfg.Region }

// Profile returns the shared profile name, if one was used.
func (a *Auth) Profile() string { return a.profile }
