// Package identitytools implements the identity tool family (IAM):
// role/policy configuration and permission-presence introspection.
//
// Permission checks here are substring matches against policy documents,
// not an authoritative policy simulation. They are brittle against
// condition blocks and NotAction statements, so callers must cap
// confidence at 0.95 and treat a positive match as a lead, not a proof.
package identitytools

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/iam"

	"github.com/arclight-labs/rca-engine/internal/cloudclient"
	"github.com/arclight-labs/rca-engine/internal/tools/toolkit"
)

// MaxPermissionConfidence bounds any fact derived from substring-matched
// policy documents, per the brittleness note above.
const MaxPermissionConfidence = 0.95

type roleArgs struct {
	RoleName string `json:"roleName"`
}

func GetRoleConfig(ctx context.Context, client *cloudclient.Client, raw json.RawMessage) string {
	var args roleArgs
	if errEnv, ok := toolkit.Decode(raw, &args); !ok {
		return errEnv
	}
	if args.RoleName == "" {
		return toolkit.Error("roleName is required", args)
	}

	im, err := client.IAM()
	if err != nil {
		return toolkit.Errorf(args, "iam client: %v", err)
	}

	out, err := im.GetRole(ctx, &iam.GetRoleInput{RoleName: aws.String(args.RoleName)})
	if err != nil {
		return toolkit.Errorf(args, "GetRole: %v", err)
	}

	attached, err := im.ListAttachedRolePolicies(ctx, &iam.ListAttachedRolePoliciesInput{RoleName: aws.String(args.RoleName)})
	policyNames := []string{}
	if err == nil {
		for _, p := range attached.AttachedPolicies {
			policyNames = append(policyNames, aws.ToString(p.PolicyName))
		}
	}

	return toolkit.Success(args, map[string]interface{}{
		"arn":              aws.ToString(out.Role.Arn),
		"createDate":       out.Role.CreateDate,
		"attachedPolicies": policyNames,
	})
}

type permissionArgs struct {
	RoleName string `json:"roleName"`
	Action   string `json:"action"` // e.g. "dynamodb:GetItem"
}

// CheckPermission substring-matches the role's attached inline and managed
// policy documents for the given action. A match is a lead, not proof: it
// ignores NotAction statements, Deny precedence, and condition blocks, so
// the emitted fact must be capped at MaxPermissionConfidence.
func CheckPermission(ctx context.Context, client *cloudclient.Client, raw json.RawMessage) string {
	var args permissionArgs
	if errEnv, ok := toolkit.Decode(raw, &args); !ok {
		return errEnv
	}
	if args.RoleName == "" || args.Action == "" {
		return toolkit.Error("roleName and action are required", args)
	}

	im, err := client.IAM()
	if err != nil {
		return toolkit.Errorf(args, "iam client: %v", err)
	}

	docs, err := policyDocuments(ctx, im, args.RoleName)
	if err != nil {
		return toolkit.Errorf(args, "collecting policy documents: %v", err)
	}

	found := false
	denyFound := false
	for _, doc := range docs {
		if strings.Contains(doc, args.Action) || strings.Contains(doc, wildcardPrefix(args.Action)) {
			found = true
			if strings.Contains(doc, `"Effect": "Deny"`) || strings.Contains(doc, `"Effect":"Deny"`) {
				denyFound = true
			}
		}
	}

	return toolkit.Success(args, map[string]interface{}{
		"actionReferenced": found,
		"denyStatementSeen": denyFound,
		"maxConfidence":     MaxPermissionConfidence,
		"method":            "substring_match",
	})
}

func wildcardPrefix(action string) string {
	idx := strings.Index(action, ":")
	if idx < 0 {
		return action
	}
	return action[:idx] + ":*"
}

func policyDocuments(ctx context.Context, im *iam.Client, roleName string) ([]string, error) {
	var docs []string

	inline, err := im.ListRolePolicies(ctx, &iam.ListRolePoliciesInput{RoleName: aws.String(roleName)})
	if err == nil {
		for _, name := range inline.PolicyNames {
			p, err := im.GetRolePolicy(ctx, &iam.GetRolePolicyInput{RoleName: aws.String(roleName), PolicyName: aws.String(name)})
			if err != nil {
				continue
			}
			if decoded, derr := url.QueryUnescape(aws.ToString(p.PolicyDocument)); derr == nil {
				docs = append(docs, decoded)
			}
		}
	}

	attached, err := im.ListAttachedRolePolicies(ctx, &iam.ListAttachedRolePoliciesInput{RoleName: aws.String(roleName)})
	if err == nil {
		for _, ap := range attached.AttachedPolicies {
			ver, err := im.GetPolicy(ctx, &iam.GetPolicyInput{PolicyArn: ap.PolicyArn})
			if err != nil || ver.Policy == nil || ver.Policy.DefaultVersionId == nil {
				continue
			}
			pv, err := im.GetPolicyVersion(ctx, &iam.GetPolicyVersionInput{
				PolicyArn: ap.PolicyArn,
				VersionId: ver.Policy.DefaultVersionId,
			})
			if err != nil {
				continue
			}
			if decoded, derr := url.QueryUnescape(aws.ToString(pv.PolicyVersion.Document)); derr == nil {
				docs = append(docs, decoded)
			}
		}
	}

	return docs, nil
}
