// Package gcpauth turns service-account settings into client options for
// Google Cloud Storage.
package gcpauth

import (
	"os"

	"github.com/goccy/go-json"
	"google.golang.org/api/option"

	"github.com/kbukum/cloudstore/errors"
	"github.com/kbukum/cloudstore/util"
)

// Source identifies where credentials come from.
type Source string

const (
	SourceFile    Source = "file"
	SourceJSON    Source = "json"
	SourceDefault Source = "application_default"
	SourceNone    Source = "none"
)

// Config selects the credentials. With neither a file nor JSON, application
// default credentials are used.
type Config struct {
	Project         string `mapstructure:"project" json:"project"`
	CredentialsFile string `mapstructure:"credentials_file" json:"credentials_file"`
	CredentialsJSON string `mapstructure:"credentials_json" json:"-"`
	// Endpoint points the client at an emulator or private endpoint.
	Endpoint string `mapstructure:"endpoint" json:"endpoint"`
	// Anonymous disables authentication, for emulators.
	Anonymous bool `mapstructure:"anonymous" json:"anonymous"`
}

// Auth holds resolved client options.
type Auth struct {
	source  Source
	project string
	opts    []option.ClientOption
}

type serviceAccount struct {
	Type      string `json:"type"`
	ProjectID string `json:"project_id"`
}

// New resolves cfg. A credentials file is read once so that its project
// can fill in a missing Project.
func New(cfg Config) (*Auth, error) {
	if cfg.CredentialsFile != "" && cfg.CredentialsJSON != "" {
		return nil, errors.Authentication("credentials_file and credentials_json are mutually exclusive")
	}

	a := &Auth{project: cfg.Project}
	var raw []byte
	switch {
	case cfg.Anonymous:
		a.source = SourceNone
		a.opts = append(a.opts, option.WithoutAuthentication())
	case cfg.CredentialsFile != "":
		data, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, errors.Authentication("unable to read credentials file").WithCause(err)
		}
		raw = data
		a.source = SourceFile
		a.opts = append(a.opts, option.WithCredentialsFile(cfg.CredentialsFile))
	case cfg.CredentialsJSON != "":
		raw = []byte(cfg.CredentialsJSON)
		a.source = SourceJSON
		a.opts = append(a.opts, option.WithCredentialsJSON(raw))
	default:
		a.source = SourceDefault
	}

	if raw != nil {
		var sa serviceAccount
		if err := json.Unmarshal(raw, &sa); err != nil {
			return nil, errors.Authentication("credentials are not valid JSON").WithCause(err)
		}
		a.project = util.Coalesce(a.project, sa.ProjectID)
	}
	if cfg.Endpoint != "" {
		a.opts = append(a.opts, option.WithEndpoint(cfg.Endpoint))
	}
	return a, nil
}

// Source reports where the credentials come from.
func (a *Auth) Source() Source { return a.source }

// Project returns the configured project, or the one named by the
// service-account credentials.
func (a *Auth) Project() string { return a.project }

// ClientOptions returns the options for a Google API client.
func (a *Auth) ClientOptions() []option.ClientOption {
	return append([]option.ClientOption(nil), a.opts...)
}
