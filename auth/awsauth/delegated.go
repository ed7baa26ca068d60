package awsauth

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/credentials/stscreds"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/aws/aws-sdk-go-v2/service/sts"

	"github.com/kbukum/cloudstore/errors"
	"github.com/kbukum/cloudstore/logger"
	"github.com/kbukum/cloudstore/util"
)

const (
	// DefaultSessionName names the assumed-role session.
	DefaultSessionName = "temp_session"
	// DefaultSessionDuration is the lifetime of the assumed-role credentials.
	DefaultSessionDuration = time.Hour
)

var errNoCredentials = stderrors.New("AssumeRole returned no credentials")

// DelegatedConfig configures NewDelegated.
type DelegatedConfig struct {
	Config

	// PolicyName is the inline group policy naming the role to assume.
	PolicyName string
	// GroupName selects the IAM group holding the policy. It may be empty
	// when the user belongs to exactly one group.
	GroupName string
	// UseMFA sends an MFA serial and token with AssumeRole.
	UseMFA bool
	// MFASerial overrides the user's first registered MFA device.
	MFASerial string
	// SessionName defaults to DefaultSessionName.
	SessionName string
	// Duration defaults to DefaultSessionDuration.
	Duration time.Duration
	// TokenProvider supplies the MFA code. It defaults to reading stdin.
	TokenProvider func() (string, error)
}

func (c *DelegatedConfig) applyDefaults() {
	if c.SessionName == "" {
		c.SessionName = DefaultSessionName
	}
	if c.Duration <= 0 {
		c.Duration = DefaultSessionDuration
	}
	if c.TokenProvider == nil {
		c.TokenProvider = stscreds.StdinTokenProvider
	}
}

// DelegatedAuth is an Auth whose credentials come from an assumed role.
type DelegatedAuth struct {
	*Auth
	roleARN     string
	userName    string
	credentials aws.Credentials
}

// RoleARN returns the role that was assumed.
func (d *DelegatedAuth) RoleARN() string { return d.roleARN }

// UserName returns the IAM user that assumed the role.
func (d *DelegatedAuth) UserName() string { return d.userName }

// Credentials returns the temporary role credentials.
func (d *DelegatedAuth) Credentials() aws.Credentials { return d.credentials }

// NewDelegated loads the base session for cfg and exchanges it for the role
// named by the caller's group policy. Any failure aborts construction; the
// base session is never returned in place of the role.
func NewDelegated(ctx context.Context, cfg DelegatedConfig, log *logger.Logger, opts ...Option) (*DelegatedAuth, error) {
	base, err := New(ctx, cfg.Config, opts...)
	if err != nil {
		return nil, err
	}
	awsCfg := base.Config()
	d, err := delegate(ctx, awsCfg, sts.NewFromConfig(awsCfg), iam.NewFromConfig(awsCfg), cfg, log)
	if err != nil {
		return nil, err
	}
	d.profile = cfg.Profile
	return d, nil
}

func delegate(ctx context.Context, base aws.Config, stsClient STSAPI, iamClient IAMAPI, cfg DelegatedConfig, log *logger.Logger) (*DelegatedAuth, error) {
	log = logger.OrNop(log).WithComponent("awsauth")
	if cfg.PolicyName == "" {
		return nil, errors.Authentication("delegated auth requires a policy name")
	}
	cfg.applyDefaults()

	sec, err := NewSecurity(ctx, stsClient)
	if err != nil {
		return nil, stepError("get_caller_identity", err)
	}
	user := sec.UserName()
	id := NewIdentity(iamClient, user)

	group, err := selectGroup(ctx, id, cfg.GroupName)
	if err != nil {
		return nil, err
	}

	statements, err := id.GroupPolicyStatements(ctx, group, cfg.PolicyName)
	if err != nil {
		return nil, stepError("get_group_policy", err).WithDetail("group", group)
	}
	if len(statements) == 0 || len(statements[0].Resource) == 0 {
		return nil, errors.Authentication(fmt.Sprintf("policy %q names no role to assume", cfg.PolicyName))
	}
	roleARN := statements[0].Resource[0]

	req := RoleRequest{RoleARN: roleARN, SessionName: cfg.SessionName, Duration: cfg.Duration}
	if cfg.UseMFA {
		serial := cfg.MFASerial
		if serial == "" {
			serials, err := id.MFASerialNumbers(ctx)
			if err != nil {
				return nil, stepError("list_mfa_devices", err)
			}
			if len(serials) == 0 {
				return nil, errors.Authentication(fmt.Sprintf("user %q has no MFA device", user))
			}
			serial = serials[0]
		}
		token, err := cfg.TokenProvider()
		if err != nil {
			return nil, stepError("mfa_token", err)
		}
		req.MFASerial, req.TokenCode = serial, token
	}

	creds, err := sec.AssumeRole(ctx, req)
	if err != nil {
		return nil, stepError("assume_role", err).WithDetail("role", roleARN)
	}

	derived := base.Copy()
	derived.Credentials = aws.NewCredentialsCache(
		credentials.NewStaticCredentialsProvider(creds.AccessKeyID, creds.SecretAccessKey, creds.SessionToken),
	)

	log.Info("assumed delegated role", map[string]interface{}{
		"user":    user,
		"group":   group,
		"role":    roleARN,
		"mfa":     req.MFASerial != "",
		"key":     util.MaskSecret(creds.AccessKeyID, 4),
		"expires": creds.Expires,
	})
	return &DelegatedAuth{
		Auth:        &Auth{cfg: derived},
		roleARN:     roleARN,
		userName:    user,
		credentials: creds,
	}, nil
}

// selectGroup returns the explicit group, or the user's only group.
func selectGroup(ctx context.Context, id *Identity, explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	groups, err := id.GroupNames(ctx)
	if err != nil {
		return "", stepError("list_groups_for_user", err)
	}
	switch len(groups) {
	case 0:
		return "", errors.Authentication(fmt.Sprintf("user %q belongs to no IAM group", id.UserName()))
	case 1:
		return groups[0], nil
	default:
		return "", errors.Authentication(fmt.Sprintf("user %q belongs to %d IAM groups; set a group name", id.UserName(), len(groups))).
			WithDetail("groups", groups)
	}
}

func stepError(step string, err error) *errors.AppError {
	return errors.Authentication("delegated auth failed at "+step).WithCause(err).WithDetail("step", step)
}
