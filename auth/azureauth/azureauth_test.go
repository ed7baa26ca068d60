package azureauth

import (
	"testing"

	"github.com/kbukum/cloudstore/errors"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		want    Kind
		wantErr bool
	}{
		{"shared key", Config{AccountName: "acct", AccountKey: "a2V5"}, KindSharedKey, false},
		{"connection string", Config{ConnectionString: "DefaultEndpointsProtocol=https;AccountName=acct;AccountKey=a2V5"}, KindConnectionString, false},
		{"service principal", Config{AccountName: "acct", TenantID: "t", ClientID: "c", ClientSecret: "s"}, KindServicePrincipal, false},
		{"nothing", Config{AccountName: "acct"}, "", true},
		{"key and connection string", Config{AccountName: "acct", AccountKey: "k", ConnectionString: "cs"}, "", true},
		{"key and principal", Config{AccountName: "acct", AccountKey: "k", TenantID: "t", ClientID: "c", ClientSecret: "s"}, "", true},
		{"partial principal", Config{AccountName: "acct", TenantID: "t", ClientID: "c"}, "", true},
		{"key without account", Config{AccountKey: "k"}, "", true},
		{"principal without account", Config{TenantID: "t", ClientID: "c", ClientSecret: "s"}, "", true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c, err := Resolve(tc.cfg)
			if (err != nil) != tc.wantErr {
				t.Fatalf("Resolve() error = %v, wantErr %v", err, tc.wantErr)
			}
			if err != nil {
				if !errors.IsAuthentication(err) {
					t.Errorf("expected authentication error, got %v", err)
				}
				return
			}
			if c.Kind != tc.want {
				t.Errorf("expected kind %s, got %s", tc.want, c.Kind)
			}
		})
	}
}

func TestResolve_DefaultMessage(t *testing.T) {
	_, err := Resolve(Config{})
	if err == nil || err.(*errors.AppError).Message != "Some credentials are required." {
		t.Errorf("unexpected error %v", err)
	}
}

func TestServiceURL(t *testing.T) {
	c, _ := Resolve(Config{AccountName: "acct", AccountKey: "a2V5"})
	if got := c.ServiceURL(); got != "https://acct.blob.core.windows.net/" {
		t.Errorf("unexpected url %q", got)
	}
	c, _ = Resolve(Config{AccountName: "acct", AccountKey: "a2V5", ServiceURL: "http://127.0.0.1:10000/acct"})
	if got := c.ServiceURL(); got != "http://127.0.0.1:10000/acct" {
		t.Errorf("unexpected url %q", got)
	}
}

func TestNewClient(t *testing.T) {
	c, err := Resolve(Config{AccountName: "acct", AccountKey: "a2V5"})
	if err != nil {
		t.Fatal(err)
	}
	client, err := c.NewClient(nil)
	if err != nil || client == nil {
		t.Fatalf("expected client, got %v", err)
	}
	if client.URL() != "https://acct.blob.core.windows.net/" {
		t.Errorf("unexpected client url %q", client.URL())
	}

	c, _ = Resolve(Config{AccountName: "acct", AccountKey: "not base64!"})
	if _, err := c.NewClient(nil); !errors.IsAuthentication(err) {
		t.Errorf("expected authentication error for a malformed key, got %v", err)
	}

	if _, err := (Credential{}).NewClient(nil); !errors.IsAuthentication(err) {
		t.Errorf("expected authentication error for the zero credential, got %v", err)
	}
}
