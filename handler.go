package main

import (
	"fmt"

	"github.com/pulumi/pulumi-aws/sdk/v6/go/aws/iam"
	"github.com/pulumi/pulumi-aws/sdk/v6/go/aws/lambda"
	"github.com/pulumi/pulumi-aws/sdk/v6/go/aws/sns"
	"github.com/pulumi/pulumi-aws/sdk/v6/go/aws/sqs"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
)

type LambdaHandler struct {
	function   *lambda.Function
	role       *iam.Role
	deadLetter *sqs.Queue
}

type LambdaHandlerArgs struct {
	artifact *Artifact
	enc      *Encryption
	topic    *Topic
	queues   *Queues
	// network is nil unless the function runs in a VPC.
	network *Network
}

func NewLambdaHandler(ctx *pulumi.Context, cfg *Config, args LambdaHandlerArgs) (*LambdaHandler, error) {
	lh := &LambdaHandler{}
	var err error

	lh.deadLetter, err = newQueue(ctx, cfg, cfg.name("sqs-lambda-dead-letter"), nil)
	if err != nil {
		return nil, fmt.Errorf("Error creating lambda dead letter queue: %w", err)
	}

	assumeRolePolicy, err := iam.GetPolicyDocument(ctx, &iam.GetPolicyDocumentArgs{
		Statements: []iam.GetPolicyDocumentStatement{
			{
				Actions: []string{"sts:AssumeRole"},
				Principals: []iam.GetPolicyDocumentStatementPrincipal{
					{Type: "Service", Identifiers: []string{"lambda.amazonaws.com"}},
				},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("Error creating AssumeRolePolicy: %w", err)
	}
	managedPolicies := []string{string(iam.ManagedPolicyAWSLambdaBasicExecutionRole)}
	if args.network != nil {
		managedPolicies = append(managedPolicies, "arn:aws:iam::aws:policy/service-role/AWSLambdaVPCAccessExecutionRole")
	}
	lh.role, err = iam.NewRole(ctx, cfg.name("lambda-exec-role"), &iam.RoleArgs{
		AssumeRolePolicy:  pulumi.String(assumeRolePolicy.Json),
		Description:       pulumi.String("lambda exec role"),
		Name:              pulumi.String(cfg.name("lambda-exec-role")),
		ManagedPolicyArns: pulumi.ToStringArray(managedPolicies),
	})
	if err != nil {
		return nil, fmt.Errorf("Error creating execution role: %w", err)
	}

	queuePolicy, err := iam.NewRolePolicy(ctx, cfg.name("lambda-sqs-policy"), &iam.RolePolicyArgs{
		Role: lh.role.Name,
		Policy: pulumi.JSONMarshal(map[string]interface{}{
			"Version": "2012-10-17",
			"Statement": []interface{}{
				map[string]interface{}{
					"Effect": "Allow",
					"Action": []string{
						"sqs:ReceiveMessage",
						"sqs:DeleteMessage",
						"sqs:GetQueueAttributes",
						"sqs:GetQueueUrl",
						"sqs:SendMessage",
					},
					"Resource": []interface{}{
						args.queues.queue.Arn,
						lh.deadLetter.Arn,
					},
				},
			},
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("Error creating queue policy: %w", err)
	}
	kmsPolicy, err := iam.NewRolePolicy(ctx, cfg.name("lambda-kms-policy"), &iam.RolePolicyArgs{
		Role:   lh.role.Name,
		Policy: kmsUsePolicy(args.enc.key),
	})
	if err != nil {
		return nil, fmt.Errorf("Error creating kms policy: %w", err)
	}

	functionArgs := &lambda.FunctionArgs{
		Name:             pulumi.String(cfg.name("lambda-function")),
		Role:             lh.role.Arn,
		Architectures:    pulumi.ToStringArray([]string{cfg.Architecture}),
		Timeout:          pulumi.IntPtr(30),
		DeadLetterConfig: &lambda.FunctionDeadLetterConfigArgs{TargetArn: lh.deadLetter.Arn},
		Environment: &lambda.FunctionEnvironmentArgs{
			Variables: pulumi.StringMap{"LOG_LEVEL": pulumi.String(cfg.LogLevel)},
		},
	}
	args.artifact.apply(functionArgs)
	if args.network != nil {
		functionArgs.VpcConfig = &lambda.FunctionVpcConfigArgs{
			SubnetIds:        args.network.vpc.PrivateSubnetIds,
			SecurityGroupIds: pulumi.StringArray{args.network.sg.ID()},
		}
	}

	dependsOn := []pulumi.Resource{queuePolicy, kmsPolicy}
	if args.artifact.image != nil {
		dependsOn = append(dependsOn, args.artifact.image)
	}
	lh.function, err = lambda.NewFunction(ctx, cfg.name("lambda-function"), functionArgs, pulumi.DependsOn(dependsOn))
	if err != nil {
		return nil, fmt.Errorf("Error creating lambda function: %w", err)
	}

	_, err = lambda.NewEventSourceMapping(ctx, cfg.name("lambda-sqs-event"), &lambda.EventSourceMappingArgs{
		EventSourceArn: args.queues.queue.Arn,
		FunctionName:   lh.function.Name,
	})
	if err != nil {
		return nil, fmt.Errorf("Error creating event source mapping: %w", err)
	}

	permission, err := lambda.NewPermission(ctx, cfg.name("lambda-sns-permission"), &lambda.PermissionArgs{
		Action:    pulumi.String("lambda:InvokeFunction"),
		Function:  lh.function.Name,
		Principal: pulumi.String("sns.amazonaws.com"),
		SourceArn: args.topic.topic.Arn,
	})
	if err != nil {
		return nil, fmt.Errorf("Error creating sns permission: %w", err)
	}

	_, err = sns.NewTopicSubscription(ctx, cfg.name("main-sns-lambda-sub"), &sns.TopicSubscriptionArgs{
		Topic:    args.topic.topic.Arn,
		Endpoint: lh.function.Arn,
		Protocol: pulumi.String("lambda"),
	}, pulumi.DependsOn([]pulumi.Resource{permission}))
	if err != nil {
		return nil, fmt.Errorf("Error creating lambda subscription: %w", err)
	}

	ctx.Export("functionName", lh.function.Name)
	ctx.Export("lambdaDeadLetterQueueUrl", lh.deadLetter.Url)

	return lh, nil
}
