// Package azureauth resolves Azure Blob Storage credentials. Exactly one
// credential kind must be configured: a shared account key, a connection
// string or a service principal.
package azureauth

import (
	"fmt"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"

	"github.com/kbukum/cloudstore/errors"
)

// Kind identifies the credential variant.
type Kind string

const (
	KindSharedKey        Kind = "shared_key"
	KindConnectionString Kind = "connection_string"
	KindServicePrincipal Kind = "service_principal"
)

// Config carries every credential field. Resolve picks the variant.
type Config struct {
	AccountName      string `mapstructure:"account_name" json:"account_name"`
	AccountKey       string `mapstructure:"account_key" json:"-"`
	ConnectionString string `mapstructure:"connection_string" json:"-"`
	TenantID         string `mapstructure:"tenant_id" json:"tenant_id"`
	ClientID         string `mapstructure:"client_id" json:"client_id"`
	ClientSecret     string `mapstructure:"client_secret" json:"-"`
	// ServiceURL overrides https://<account>.blob.core.windows.net/.
	ServiceURL string `mapstructure:"service_url" json:"service_url"`
}

// Credential is a validated credential of exactly one Kind.
type Credential struct {
	Kind       Kind
	account    string
	serviceURL string

	accountKey       string
	connectionString string
	tenantID         string
	clientID         string
	clientSecret     string
}

// Resolve validates cfg and returns its credential. Configuring no kind, or
// more than one, is an authentication error.
func Resolve(cfg Config) (Credential, error) {
	var kinds []Kind
	if cfg.AccountKey != "" {
		kinds = append(kinds, KindSharedKey)
	}
	if cfg.ConnectionString != "" {
		kinds = append(kinds, KindConnectionString)
	}
	sp := cfg.TenantID != "" || cfg.ClientID != "" || cfg.ClientSecret != ""
	if sp {
		kinds = append(kinds, KindServicePrincipal)
	}

	switch len(kinds) {
	case 0:
		return Credential{}, errors.Authentication("")
	case 1:
	default:
		names := make([]string, len(kinds))
		for i, k := range kinds {
			names[i] = string(k)
		}
		return Credential{}, errors.Authentication("conflicting credential kinds: " + strings.Join(names, ", ")).
			WithDetail("kinds", names)
	}

	c := Credential{
		Kind:             kinds[0],
		account:          cfg.AccountName,
		serviceURL:       cfg.ServiceURL,
		accountKey:       cfg.AccountKey,
		connectionString: cfg.ConnectionString,
		tenantID:         cfg.TenantID,
		clientID:         cfg.ClientID,
		clientSecret:     cfg.ClientSecret,
	}
	switch c.Kind {
	case KindSharedKey:
		if cfg.AccountName == "" {
			return Credential{}, errors.Authentication("a shared key requires an account name")
		}
	case KindServicePrincipal:
		if cfg.TenantID == "" || cfg.ClientID == "" || cfg.ClientSecret == "" {
			return Credential{}, errors.Authentication("a service principal requires tenant_id, client_id and client_secret")
		}
		if cfg.AccountName == "" && cfg.ServiceURL == "" {
			return Credential{}, errors.Authentication("a service principal requires an account name or service url")
		}
	}
	return c, nil
}

// ServiceURL returns the blob endpoint for the account.
func (c Credential) ServiceURL() string {
	if c.serviceURL != "" {
		return c.serviceURL
	}
	return fmt.Sprintf("https://%s.blob.core.windows.net/", c.account)
}

// NewClient builds a blob service client for the credential.
func (c Credential) NewClient(opts *azblob.ClientOptions) (*azblob.Client, error) {
	var (
		client *azblob.Client
		err    error
	)
	switch c.Kind {
	case KindSharedKey:
		var cred *azblob.SharedKeyCredential
		cred, err = azblob.NewSharedKeyCredential(c.account, c.accountKey)
		if err == nil {
			client, err = azblob.NewClientWithSharedKeyCredential(c.ServiceURL(), cred, opts)
		}
	case KindConnectionString:
		client, err = azblob.NewClientFromConnectionString(c.connectionString, opts)
	case KindServicePrincipal:
		var cred *azidentity.ClientSecretCredential
		cred, err = azidentity.NewClientSecretCredential(c.tenantID, c.clientID, c.clientSecret, nil)
		if err == nil {
			client, err = azblob.NewClient(c.ServiceURL(), cred, opts)
		}
	default:
		return nil, errors.Authentication("")
	}
	if err != nil {
		return nil, errors.Authentication("unable to build Azure client").WithCause(err).WithDetail("kind", string(c.Kind))
	}
	return client, nil
}
