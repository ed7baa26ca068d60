package awsauth

import (
	"context"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

// STSAPI is the subset of the STS client used here.
type STSAPI interface {
	GetCallerIdentity(ctx context.Context, in *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error)
	AssumeRole(ctx context.Context, in *sts.AssumeRoleInput, optFns ...func(*sts.Options)) (*sts.AssumeRoleOutput, error)
}

// Security describes the calling principal and assumes roles on its behalf.
type Security struct {
	client  STSAPI
	account string
	arn     string
}

// NewSecurity looks up the caller identity once.
func NewSecurity(ctx context.Context, client STSAPI) (*Security, error) {
	out, err := client.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return nil, err
	}
	return &Security{
		client:  client,
		account: aws.ToString(out.Account),
		arn:     aws.ToString(out.Arn),
	}, nil
}

// AccountNumber returns the caller's account ID.
func (s *Security) AccountNumber() string { return s.account }

// ARN returns the caller's ARN.
func (s *Security) ARN() string { return s.arn }

// UserName returns the last path segment of the caller ARN.
func (s *Security) UserName() string {
	return s.arn[strings.LastIndex(s.arn, "/")+1:]
}

// RoleRequest describes an AssumeRole call. MFASerial and TokenCode are sent
// only when MFASerial is set.
type RoleRequest struct {
	RoleARN     string
	SessionName string
	Duration    time.Duration
	MFASerial   string
	TokenCode   string
}

// AssumeRole exchanges the caller's credentials for the role's temporary
// credentials.
func (s *Security) AssumeRole(ctx context.Context, req RoleRequest) (aws.Credentials, error) {
	in := &sts.AssumeRoleInput{
		RoleArn:         aws.String(req.RoleARN),
		RoleSessionName: aws.String(req.SessionName),
		DurationSeconds: aws.Int32(int32(req.Duration / time.Second)),
	}
	if req.MFASerial != "" {
		in.SerialNumber = aws.String(req.MFASerial)
		in.TokenCode = aws.String(req.TokenCode)
	}

	out, err := s.client.AssumeRole(ctx, in)
	if err != nil {
		return aws.Credentials{}, err
	}
	if out.Credentials == nil {
		return aws.Credentials{}, errNoCredentials
	}
	creds := aws.Credentials{
		AccessKeyID:     aws.ToString(out.Credentials.AccessKeyId),
		SecretAccessKey: aws.ToString(out.Credentials.SecretAccessKey),
		SessionToken:    aws.ToString(out.Credentials.SessionToken),
		Source:          "AssumeRole",
	}
	if out.Credentials.Expiration != nil {
		creds.CanExpire = true
		creds.Expires = *out.Credentials.Expiration
	}
	return creds, nil
}
