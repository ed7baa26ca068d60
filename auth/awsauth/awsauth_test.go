package awsauth

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	iamtypes "github.com/aws/aws-sdk-go-v2/service/iam/types"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	ststypes "github.com/aws/aws-sdk-go-v2/service/sts/types"

	"github.com/kbukum/cloudstore/errors"
	"github.com/kbukum/cloudstore/logger"
)

type mockSTS struct {
	failOn      string
	arn         string
	assumeCalls []*sts.AssumeRoleInput
}

func (m *mockSTS) GetCallerIdentity(_ context.Context, _ *sts.GetCallerIdentityInput, _ ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error) {
	if m.failOn == "identity" {
		return nil, fmt.Errorf("sts unavailable")
	}
	return &sts.GetCallerIdentityOutput{Account: aws.String("123456789012"), Arn: aws.String(m.arn)}, nil
}

func (m *mockSTS) AssumeRole(_ context.Context, in *sts.AssumeRoleInput, _ ...func(*sts.Options)) (*sts.AssumeRoleOutput, error) {
	m.assumeCalls = append(m.assumeCalls, in)
	if m.failOn == "assume" {
		return nil, fmt.Errorf("access denied")
	}
	exp := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	return &sts.AssumeRoleOutput{Credentials: &ststypes.Credentials{
		AccessKeyId:     aws.String("ASIATEMP"),
		SecretAccessKey: aws.String("secret"),
		SessionToken:    aws.String("token"),
		Expiration:      &exp,
	}}, nil
}

type mockIAM struct {
	failOn       string
	groups       [][]string
	policy       string
	mfa          []string
	policyGroups []string
}

func (m *mockIAM) ListGroupsForUser(_ context.Context, in *iam.ListGroupsForUserInput, _ ...func(*iam.Options)) (*iam.ListGroupsForUserOutput, error) {
	if m.failOn == "groups" {
		return nil, fmt.Errorf("iam unavailable")
	}
	page := 0
	if in.Marker != nil {
		fmt.Sscan(*in.Marker, &page)
	}
	out := &iam.ListGroupsForUserOutput{}
	if page < len(m.groups) {
		for _, g := range m.groups[page] {
			out.Groups = append(out.Groups, iamtypes.Group{GroupName: aws.String(g)})
		}
	}
	if page+1 < len(m.groups) {
		out.IsTruncated = true
		out.Marker = aws.String(fmt.Sprint(page + 1))
	}
	return out, nil
}

func (m *mockIAM) GetGroupPolicy(_ context.Context, in *iam.GetGroupPolicyInput, _ ...func(*iam.Options)) (*iam.GetGroupPolicyOutput, error) {
	m.policyGroups = append(m.policyGroups, aws.ToString(in.GroupName))
	if m.failOn == "policy" {
		return nil, fmt.Errorf("NoSuchEntity")
	}
	return &iam.GetGroupPolicyOutput{PolicyDocument: aws.String(m.policy)}, nil
}

func (m *mockIAM) ListMFADevices(_ context.Context, _ *iam.ListMFADevicesInput, _ ...func(*iam.Options)) (*iam.ListMFADevicesOutput, error) {
	if m.failOn == "mfa" {
		return nil, fmt.Errorf("iam unavailable")
	}
	out := &iam.ListMFADevicesOutput{}
	for _, s := range m.mfa {
		out.MFADevices = append(out.MFADevices, iamtypes.MFADevice{SerialNumber: aws.String(s)})
	}
	return out, nil
}

const roleARN = "arn:aws:iam::123456789012:role/data-reader"

func encodedPolicy(resource string) string {
	doc := `{"Version":"2012-10-17","Statement":[{"Effect":"Allow","Action":"sts:AssumeRole","Resource":` + resource + `}]}`
	return url.PathEscape(doc)
}

func newMocks() (*mockSTS, *mockIAM) {
	return &mockSTS{arn: "arn:aws:iam::123456789012:user/team/alice"},
		&mockIAM{groups: [][]string{{"analysts"}}, policy: encodedPolicy(`["` + roleARN + `"]`), mfa: []string{"arn:aws:iam::123456789012:mfa/alice"}}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"empty uses default chain", Config{}, false},
		{"profile", Config{Profile: "dev"}, false},
		{"static keys", Config{AccessKeyID: "AKIA", SecretAccessKey: "s"}, false},
		{"key without secret", Config{AccessKeyID: "AKIA"}, true},
		{"secret without key", Config{SecretAccessKey: "s"}, true},
		{"token without keys", Config{SessionToken: "t"}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
			if err != nil && !errors.IsAuthentication(err) {
				t.Errorf("expected authentication error, got %v", err)
			}
		})
	}
}

func TestNew_StaticKeys(t *testing.T) {
	a, err := New(context.Background(), Config{Region: "eu-west-1", AccessKeyID: "AKIA", SecretAccessKey: "s"})
	if err != nil {
		t.Fatal(err)
	}
	if a.Region() != "eu-west-1" {
		t.Errorf("unexpected region %q", a.Region())
	}
	creds, err := a.Config().Credentials.Retrieve(context.Background())
	if err != nil || creds.AccessKeyID != "AKIA" {
		t.Errorf("unexpected credentials %+v %v", creds, err)
	}
}

func TestSecurity(t *testing.T) {
	s, _ := newMocks()
	sec, err := NewSecurity(context.Background(), s)
	if err != nil {
		t.Fatal(err)
	}
	if sec.AccountNumber() != "123456789012" || sec.UserName() != "alice" {
		t.Errorf("unexpected identity %s %s", sec.AccountNumber(), sec.UserName())
	}
}

func TestIdentity_GroupNamesPaged(t *testing.T) {
	_, i := newMocks()
	i.groups = [][]string{{"a", "b"}, {"c"}}
	got, err := NewIdentity(i, "alice").GroupNames(context.Background())
	if err != nil || strings.Join(got, ",") != "a,b,c" {
		t.Errorf("unexpected groups %v %v", got, err)
	}
}

func TestParsePolicy(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		resource string
		wantErr  bool
	}{
		{"list resource", encodedPolicy(`["` + roleARN + `","other"]`), roleARN, false},
		{"single resource", encodedPolicy(`"` + roleARN + `"`), roleARN, false},
		{"plain json", `{"Statement":[{"Resource":"r"}]}`, "r", false},
		{"bad json", url.PathEscape(`{"Statement":`), "", true},
		{"bad escape", "%zz", "", true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			st, err := parsePolicy(tc.raw)
			if (err != nil) != tc.wantErr {
				t.Fatalf("parsePolicy() error = %v, wantErr %v", err, tc.wantErr)
			}
			if err == nil && st[0].Resource[0] != tc.resource {
				t.Errorf("unexpected resource %v", st[0].Resource)
			}
		})
	}
}

func TestDelegate_Success(t *testing.T) {
	s, i := newMocks()
	var buf bytes.Buffer
	log := logger.NewWithWriter(&buf, &logger.Config{Level: "info", Format: "json"}, "")

	d, err := delegate(context.Background(), aws.Config{Region: "eu-west-1"}, s, i, DelegatedConfig{PolicyName: "assume-reader"}, log)
	if err != nil {
		t.Fatal(err)
	}
	if d.RoleARN() != roleARN || d.UserName() != "alice" {
		t.Errorf("unexpected delegated auth %s %s", d.RoleARN(), d.UserName())
	}
	if len(s.assumeCalls) != 1 {
		t.Fatalf("expected one AssumeRole call, got %d", len(s.assumeCalls))
	}
	in := s.assumeCalls[0]
	if aws.ToString(in.RoleSessionName) != DefaultSessionName || aws.ToInt32(in.DurationSeconds) != 3600 {
		t.Errorf("unexpected AssumeRole input %+v", in)
	}
	if in.SerialNumber != nil {
		t.Error("no MFA serial expected without UseMFA")
	}

	creds, err := d.Config().Credentials.Retrieve(context.Background())
	if err != nil || creds.AccessKeyID != "ASIATEMP" || creds.SessionToken != "token" {
		t.Errorf("expected role credentials, got %+v %v", creds, err)
	}
	if d.Region() != "eu-west-1" {
		t.Errorf("region should carry over, got %q", d.Region())
	}
	if !strings.Contains(buf.String(), roleARN) {
		t.Errorf("expected role in log, got %s", buf.String())
	}
}

func TestDelegate_MFA(t *testing.T) {
	s, i := newMocks()
	cfg := DelegatedConfig{
		PolicyName:    "assume-reader",
		UseMFA:        true,
		TokenProvider: func() (string, error) { return "123456", nil },
	}
	if _, err := delegate(context.Background(), aws.Config{}, s, i, cfg, nil); err != nil {
		t.Fatal(err)
	}
	in := s.assumeCalls[0]
	if aws.ToString(in.SerialNumber) != i.mfa[0] || aws.ToString(in.TokenCode) != "123456" {
		t.Errorf("unexpected MFA input %+v", in)
	}

	s.assumeCalls = nil
	cfg.MFASerial = "explicit-serial"
	i.failOn = "mfa"
	if _, err := delegate(context.Background(), aws.Config{}, s, i, cfg, nil); err != nil {
		t.Fatal(err)
	}
	if aws.ToString(s.assumeCalls[0].SerialNumber) != "explicit-serial" {
		t.Error("explicit serial should skip the device lookup")
	}
}

func TestDelegate_GroupSelection(t *testing.T) {
	tests := []struct {
		name     string
		groups   [][]string
		explicit string
		want     string
		wantErr  bool
	}{
		{"single group", [][]string{{"analysts"}}, "", "analysts", false},
		{"explicit wins", [][]string{{"a", "b"}}, "b", "b", false},
		{"several groups", [][]string{{"a", "b"}}, "", "", true},
		{"no groups", nil, "", "", true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s, i := newMocks()
			i.groups = tc.groups
			_, err := delegate(context.Background(), aws.Config{}, s, i, DelegatedConfig{PolicyName: "p", GroupName: tc.explicit}, nil)
			if (err != nil) != tc.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tc.wantErr)
			}
			if err != nil {
				if !errors.IsAuthentication(err) {
					t.Errorf("expected authentication error, got %v", err)
				}
				if len(s.assumeCalls) != 0 {
					t.Error("AssumeRole must not be called")
				}
				return
			}
			if i.policyGroups[0] != tc.want {
				t.Errorf("policy read from %q, want %q", i.policyGroups[0], tc.want)
			}
		})
	}
}

// A failure at any step aborts before AssumeRole and yields no session.
func TestDelegate_FailurePropagation(t *testing.T) {
	tests := []struct {
		name    string
		stsFail string
		iamFail string
		policy  string
		cfg     DelegatedConfig
		assumed int
	}{
		{"caller identity", "identity", "", "", DelegatedConfig{PolicyName: "p"}, 0},
		{"list groups", "", "groups", "", DelegatedConfig{PolicyName: "p"}, 0},
		{"policy lookup", "", "policy", "", DelegatedConfig{PolicyName: "p"}, 0},
		{"empty policy", "", "", url.PathEscape(`{"Statement":[]}`), DelegatedConfig{PolicyName: "p"}, 0},
		{"mfa devices", "", "mfa", "", DelegatedConfig{PolicyName: "p", UseMFA: true, TokenProvider: func() (string, error) { return "1", nil }}, 0},
		{"mfa token", "", "", "", DelegatedConfig{PolicyName: "p", UseMFA: true, TokenProvider: func() (string, error) { return "", fmt.Errorf("eof") }}, 0},
		{"no policy name", "", "", "", DelegatedConfig{}, 0},
		{"assume role", "assume", "", "", DelegatedConfig{PolicyName: "p"}, 1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s, i := newMocks()
			s.failOn, i.failOn = tc.stsFail, tc.iamFail
			if tc.policy != "" {
				i.policy = tc.policy
			}
			d, err := delegate(context.Background(), aws.Config{}, s, i, tc.cfg, nil)
			if err == nil || d != nil {
				t.Fatal("expected failure without a session")
			}
			if !errors.IsAuthentication(err) {
				t.Errorf("expected authentication error, got %v", err)
			}
			if len(s.assumeCalls) != tc.assumed {
				t.Errorf("expected %d AssumeRole calls, got %d", tc.assumed, len(s.assumeCalls))
			}
		})
	}
}
