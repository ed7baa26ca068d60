package awsauth

import (
	"context"
	"fmt"
	"net/url"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/goccy/go-json"
)

// IAMAPI is the subset of the IAM client used here.
type IAMAPI interface {
	ListGroupsForUser(ctx context.Context, in *iam.ListGroupsForUserInput, optFns ...func(*iam.Options)) (*iam.ListGroupsForUserOutput, error)
	GetGroupPolicy(ctx context.Context, in *iam.GetGroupPolicyInput, optFns ...func(*iam.Options)) (*iam.GetGroupPolicyOutput, error)
	ListMFADevices(ctx context.Context, in *iam.ListMFADevicesInput, optFns ...func(*iam.Options)) (*iam.ListMFADevicesOutput, error)
}

// Identity reads IAM facts about one user.
type Identity struct {
	client   IAMAPI
	userName string
}

// NewIdentity returns an Identity for userName.
func NewIdentity(client IAMAPI, userName string) *Identity {
	return &Identity{client: client, userName: userName}
}

// UserName returns the IAM user name.
func (i *Identity) UserName() string { return i.userName }

// GroupNames returns the names of every group the user belongs to.
func (i *Identity) GroupNames(ctx context.Context) ([]string, error) {
	var names []string
	in := &iam.ListGroupsForUserInput{UserName: aws.String(i.userName)}
	for {
		out, err := i.client.ListGroupsForUser(ctx, in)
		if err != nil {
			return nil, err
		}
		for _, g := range out.Groups {
			names = append(names, aws.ToString(g.GroupName))
		}
		if !out.IsTruncated || out.Marker == nil {
			return names, nil
		}
		in.Marker = out.Marker
	}
}

// Statement is one statement of an IAM policy document.
type Statement struct {
	Sid      string     `json:"Sid,omitempty"`
	Effect   string     `json:"Effect"`
	Action   StringList `json:"Action"`
	Resource StringList `json:"Resource"`
}

// StringList decodes a policy field that holds either one string or a list.
type StringList []string

// UnmarshalJSON accepts "x" as well as ["x", "y"].
func (l *StringList) UnmarshalJSON(data []byte) error {
	var one string
	if err := json.Unmarshal(data, &one); err == nil {
		*l = StringList{one}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*l = many
	return nil
}

type policyDocument struct {
	Version   string      `json:"Version"`
	Statement []Statement `json:"Statement"`
}

// GroupPolicyStatements returns the statements of the inline policy
// policyName attached to group.
func (i *Identity) GroupPolicyStatements(ctx context.Context, group, policyName string) ([]Statement, error) {
	out, err := i.client.GetGroupPolicy(ctx, &iam.GetGroupPolicyInput{
		GroupName:  aws.String(group),
		PolicyName: aws.String(policyName),
	})
	if err != nil {
		return nil, err
	}
	return parsePolicy(aws.ToString(out.PolicyDocument))
}

// parsePolicy decodes a URL-encoded policy document.
func parsePolicy(raw string) ([]Statement, error) {
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return nil, fmt.Errorf("unescape policy document: %w", err)
	}
	var doc policyDocument
	if err := json.Unmarshal([]byte(decoded), &doc); err != nil {
		return nil, fmt.Errorf("parse policy document: %w", err)
	}
	return doc.Statement, nil
}

// MFASerialNumbers returns the serial numbers of the user's MFA devices.
func (i *Identity) MFASerialNumbers(ctx context.Context) ([]string, error) {
	out, err := i.client.ListMFADevices(ctx, &iam.ListMFADevicesInput{UserName: aws.String(i.userName)})
	if err != nil {
		return nil, err
	}
	serials := make([]string, 0, len(out.MFADevices))
	for _, d := range out.MFADevices {
		serials = append(serials, aws.ToString(d.SerialNumber))
	}
	return serials, nil
}
