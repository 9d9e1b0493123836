package main

import (
	"fmt"

	"github.com/pulumi/pulumi-aws/sdk/v6/go/aws/iam"
	"github.com/pulumi/pulumi-aws/sdk/v6/go/aws/kms"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
)

// Account identifies where the stack is deployed. Resource ARNs that would
// otherwise form a dependency cycle are built from it.
type Account struct {
	id     string
	region string
}

func (a Account) arn(service, resource string) string {
	return fmt.Sprintf("arn:aws:%s:%s:%s:%s", service, a.region, a.id, resource)
}

type Encryption struct {
	key  *kms.Key
	role *iam.Role
}

func NewEncryption(ctx *pulumi.Context, cfg *Config, account Account) (*Encryption, error) {
	enc := &Encryption{}

	assumeRolePolicy, err := iam.GetPolicyDocument(ctx, &iam.GetPolicyDocumentArgs{
		Statements: []iam.GetPolicyDocumentStatement{
			{
				Actions: []string{"sts:AssumeRole"},
				Principals: []iam.GetPolicyDocumentStatementPrincipal{
					{Type: "Service", Identifiers: []string{"events.amazonaws.com"}},
				},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("Error creating cmk AssumeRolePolicy: %w", err)
	}
	enc.role, err = iam.NewRole(ctx, cfg.name("cmk-role"), &iam.RoleArgs{
		AssumeRolePolicy: pulumi.String(assumeRolePolicy.Json),
		Description:      pulumi.String("role to use cmk"),
		Name:             pulumi.String(cfg.name("cmk-role")),
	})
	if err != nil {
		return nil, fmt.Errorf("Error creating cmk role: %w", err)
	}

	keyPolicy := pulumi.JSONMarshal(map[string]interface{}{
		"Version": "2012-10-17",
		"Id":      "default-sns-1",
		"Statement": []interface{}{
			map[string]interface{}{
				"Sid":       "Allow access through SNS and SQS for principals authorized to use them",
				"Effect":    "Allow",
				"Principal": map[string]interface{}{"AWS": "*"},
				"Action": []string{
					"kms:Decrypt",
					"kms:GenerateDataKey*",
					"kms:CreateGrant",
					"kms:ListGrants",
					"kms:DescribeKey",
				},
				"Resource": "*",
				"Condition": map[string]interface{}{
					"ArnEquals": map[string]interface{}{
						"aws:SourceArn": []string{
							account.arn("sqs", cfg.name("sqs")),
							account.arn("sns", cfg.name("main-sns")),
						},
					},
				},
			},
			map[string]interface{}{
				"Sid":       "Allow SNS and EventBridge to use the key",
				"Effect":    "Allow",
				"Principal": map[string]interface{}{"Service": []string{"sns.amazonaws.com", "events.amazonaws.com"}},
				"Action":    []string{"kms:Decrypt", "kms:GenerateDataKey*"},
				"Resource":  "*",
			},
			map[string]interface{}{
				"Sid":       "Allow direct access to key metadata to the account",
				"Effect":    "Allow",
				"Principal": map[string]interface{}{"AWS": fmt.Sprintf("arn:aws:iam::%s:root", account.id)},
				"Action":    "kms:*",
				"Resource":  "*",
			},
		},
	})
	enc.key, err = kms.NewKey(ctx, cfg.name("kms-key"), &kms.KeyArgs{
		Description: pulumi.String("cmk created by pulumi to protect sns & sqs"),
		Policy:      keyPolicy,
	})
	if err != nil {
		return nil, fmt.Errorf("Error creating kms key: %w", err)
	}

	_, err = iam.NewRolePolicy(ctx, cfg.name("cmk-role-policy"), &iam.RolePolicyArgs{
		Role:   enc.role.Name,
		Policy: kmsUsePolicy(enc.key),
	})
	if err != nil {
		return nil, fmt.Errorf("Error creating cmk role policy: %w", err)
	}

	return enc, nil
}

// kmsUsePolicy grants the data key actions on key.
func kmsUsePolicy(key *kms.Key) pulumi.StringOutput {
	return pulumi.JSONMarshal(map[string]interface{}{
		"Version": "2012-10-17",
		"Statement": []interface{}{
			map[string]interface{}{
				"Effect": "Allow",
				"Action": []string{
					"kms:Decrypt",
					"kms:Encrypt",
					"kms:ReEncrypt*",
					"kms:GenerateDataKey*",
					"kms:DescribeKey",
				},
				"Resource": key.Arn,
			},
		},
	})
}
