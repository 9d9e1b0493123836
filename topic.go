package main

import (
	"fmt"

	"github.com/pulumi/pulumi-aws/sdk/v6/go/aws/cloudwatch"
	"github.com/pulumi/pulumi-aws/sdk/v6/go/aws/sns"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
)

type Topic struct {
	topic    *sns.Topic
	schedule *cloudwatch.EventRule
	email    *sns.TopicSubscription
}

// NewTopic creates the main topic and the schedule rule publishing to it
// every ScheduleExpression.
func NewTopic(ctx *pulumi.Context, cfg *Config, enc *Encryption) (*Topic, error) {
	t := &Topic{}
	var err error

	t.topic, err = sns.NewTopic(ctx, cfg.name("main-sns"), &sns.TopicArgs{
		Name:           pulumi.String(cfg.name("main-sns")),
		KmsMasterKeyId: enc.key.KeyId,
		Tags:           pulumi.StringMap{"Owner": pulumi.String("awstraining")},
	})
	if err != nil {
		return nil, fmt.Errorf("Error creating topic: %w", err)
	}

	_, err = sns.NewTopicPolicy(ctx, cfg.name("main-sns-policy"), &sns.TopicPolicyArgs{
		Arn: t.topic.Arn,
		Policy: pulumi.JSONMarshal(map[string]interface{}{
			"Version": "2012-10-17",
			"Statement": []interface{}{
				map[string]interface{}{
					"Effect": "Allow",
					"Principal": map[string]interface{}{
						"AWS": enc.role.Arn,
					},
					"Action":   "sns:Publish",
					"Resource": t.topic.Arn,
				},
				map[string]interface{}{
					"Effect": "Allow",
					"Principal": map[string]interface{}{
						"Service": "events.amazonaws.com",
					},
					"Action":   "sns:Publish",
					"Resource": t.topic.Arn,
				},
			},
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("Error creating topic policy: %w", err)
	}

	t.schedule, err = cloudwatch.NewEventRule(ctx, cfg.name("schedule-rule"), &cloudwatch.EventRuleArgs{
		Description:        pulumi.Sprintf("Trigger %s on %s", cfg.name("main-sns"), cfg.ScheduleExpression),
		ScheduleExpression: pulumi.String(cfg.ScheduleExpression),
		RoleArn:            enc.role.Arn,
	})
	if err != nil {
		return nil, fmt.Errorf("Error creating schedule rule: %w", err)
	}

	_, err = cloudwatch.NewEventTarget(ctx, cfg.name("target-main-sns"), &cloudwatch.EventTargetArgs{
		Rule: t.schedule.Name,
		Arn:  t.topic.Arn,
	})
	if err != nil {
		return nil, fmt.Errorf("Error creating schedule target: %w", err)
	}

	if cfg.EmailAddress != "" {
		t.email, err = sns.NewTopicSubscription(ctx, cfg.name("main-sns-email-sub"), &sns.TopicSubscriptionArgs{
			Topic:    t.topic.Arn,
			Endpoint: pulumi.String(cfg.EmailAddress),
			Protocol: pulumi.String("email"),
		})
		if err != nil {
			return nil, fmt.Errorf("Error creating email subscription: %w", err)
		}
	}

	ctx.Export("topicArn", t.topic.Arn)

	return t, nil
}
