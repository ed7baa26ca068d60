package storage

import (
	"strings"

	"github.com/kbukum/cloudstore/validation"
)

// Provider names.
const (
	ProviderS3     = "s3"
	ProviderAzure  = "azure"
	ProviderGCS    = "gcs"
	ProviderLocal  = "local"
	ProviderMemory = "memory"
)

// Default configuration values.
const (
	DefaultProvider  = ProviderS3
	DefaultRegion    = "us-east-1"
	DefaultLocalRoot = "/tmp/cloudstore"
)

// Config selects and configures one adapter.
type Config struct {
	// Provider selects the backend: s3, azure, gcs, local or memory.
	Provider string `mapstructure:"provider" json:"provider" validate:"required,oneof=s3 azure gcs local memory"`
	// Bucket is the bucket (S3, GCS), container (Azure) or root directory
	// name (local).
	Bucket string `mapstructure:"bucket" json:"bucket" validate:"required"`
	// BasePath prefixes every folder and file name.
	BasePath string `mapstructure:"base_path" json:"base_path"`
	// PageSize is the default listing page size hint.
	PageSize int `mapstructure:"page_size" json:"page_size" validate:"gte=0,max=5000"`

	Transfer TransferConfig `mapstructure:"transfer" json:"transfer"`

	AWS   AWSConfig   `mapstructure:"aws" json:"aws"`
	Azure AzureConfig `mapstructure:"azure" json:"azure"`
	GCP   GCPConfig   `mapstructure:"gcp" json:"gcp"`
	Local LocalConfig `mapstructure:"local" json:"local"`
}

// AWSConfig configures the S3 backend and its credentials.
type AWSConfig struct {
	Region  string `mapstructure:"region" json:"region"`
	Profile string `mapstructure:"profile" json:"profile"`
	// Endpoint targets an S3-compatible service such as MinIO.
	Endpoint       string `mapstructure:"endpoint" json:"endpoint" validate:"omitempty,url"`
	ForcePathStyle bool   `mapstructure:"force_path_style" json:"force_path_style"`

	AccessKeyID     string `mapstructure:"access_key_id" json:"-"`
	SecretAccessKey string `mapstructure:"secret_access_key" json:"-" validate:"required_with=AccessKeyID"`
	SessionToken    string `mapstructure:"session_token" json:"-"`

	// Delegated assumes the role named in the caller's group policy.
	Delegated  bool   `mapstructure:"delegated" json:"delegated"`
	GroupName  string `mapstructure:"group_name" json:"group_name"`
	PolicyName string `mapstructure:"policy_name" json:"policy_name"`
	UseMFA     bool   `mapstructure:"use_mfa" json:"use_mfa"`
	MFASerial  string `mapstructure:"mfa_serial" json:"mfa_serial"`
}

// AzureConfig configures the Azure Blob backend. Exactly one credential kind
// must be set: an account key, a connection string, or a service principal.
type AzureConfig struct {
	AccountName      string `mapstructure:"account_name" json:"account_name"`
	AccountKey       string `mapstructure:"account_key" json:"-"`
	ConnectionString string `mapstructure:"connection_string" json:"-"`
	TenantID         string `mapstructure:"tenant_id" json:"tenant_id"`
	ClientID         string `mapstructure:"client_id" json:"client_id"`
	ClientSecret     string `mapstructure:"client_secret" json:"-"`
	// ServiceURL overrides https://<account>.blob.core.windows.net/.
	ServiceURL string `mapstructure:"service_url" json:"service_url" validate:"omitempty,url"`
}

// GCPConfig configures the Google Cloud Storage backend. With neither
// credentials field set, application default credentials are used.
type GCPConfig struct {
	Project         string `mapstructure:"project" json:"project"`
	CredentialsFile string `mapstructure:"credentials_file" json:"credentials_file" validate:"omitempty,file"`
	CredentialsJSON string `mapstructure:"credentials_json" json:"-"`
	// Endpoint targets an emulator.
	Endpoint string `mapstructure:"endpoint" json:"endpoint" validate:"omitempty,url"`
	// Anonymous skips authentication, for emulators.
	Anonymous bool `mapstructure:"anonymous" json:"anonymous"`
}

// LocalConfig configures the filesystem backend.
type LocalConfig struct {
	// Root is the directory buckets live under.
	Root string `mapstructure:"root" json:"root"`
}

// ApplyDefaults fills in zero-valued fields.
func (c *Config) ApplyDefaults() {
	c.Provider = strings.ToLower(strings.TrimSpace(c.Provider))
	if c.Provider == "" {
		c.Provider = DefaultProvider
	}
	c.BasePath = strings.TrimLeft(c.BasePath, "/")
	if c.Provider == ProviderS3 && c.AWS.Region == "" && c.AWS.Profile == "" {
		c.AWS.Region = DefaultRegion
	}
	if c.Provider == ProviderLocal && c.Local.Root == "" {
		c.Local.Root = DefaultLocalRoot
	}
}

// Validate checks struct tags and the provider-specific rules.
func (c *Config) Validate() error {
	if err := validation.Validate(c); err != nil {
		return err
	}

	v := validation.New()
	switch c.Provider {
	case ProviderS3:
		v.Custom(!c.AWS.Delegated || c.AWS.PolicyName != "", "aws.policy_name", "is required for delegated authentication")
		v.Custom(!c.AWS.UseMFA || c.AWS.Delegated, "aws.use_mfa", "only applies to delegated authentication")
	case ProviderAzure:
		v.Required("azure.account_name", c.Azure.AccountName)
		kinds := 0
		if c.Azure.AccountKey != "" {
			kinds++
		}
		if c.Azure.ConnectionString != "" {
			kinds++
		}
		if c.Azure.TenantID != "" || c.Azure.ClientID != "" || c.Azure.ClientSecret != "" {
			kinds++
			v.Required("azure.tenant_id", c.Azure.TenantID).
				Required("azure.client_id", c.Azure.ClientID).
				Required("azure.client_secret", c.Azure.ClientSecret)
		}
		v.Custom(kinds > 0, "azure", "one of account_key, connection_string or a service principal is required")
		v.Custom(kinds <= 1, "azure", "account_key, connection_string and service principal are mutually exclusive")
	case ProviderGCS:
		if c.GCP.CredentialsFile != "" {
			v.Forbidden("gcp.credentials_json", c.GCP.CredentialsJSON, "together with credentials_file")
		}
	}
	return v.Err()
}
