package main

import (
	"fmt"

	"github.com/pulumi/pulumi-aws/sdk/v6/go/aws/sns"
	"github.com/pulumi/pulumi-aws/sdk/v6/go/aws/sqs"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
)

type Queues struct {
	queue      *sqs.Queue
	deadLetter *sqs.Queue
}

// NewQueues creates the main queue subscribed to the topic and the dead
// letter queue it redrives to after MaxReceiveCount receives.
func NewQueues(ctx *pulumi.Context, cfg *Config, topic *Topic, enc *Encryption) (*Queues, error) {
	q := &Queues{}
	var err error

	q.deadLetter, err = newQueue(ctx, cfg, cfg.name("sqs-dead-letter"), nil)
	if err != nil {
		return nil, fmt.Errorf("Error creating dead letter queue: %w", err)
	}

	q.queue, err = newQueue(ctx, cfg, cfg.name("sqs"), &sqs.QueueArgs{
		KmsMasterKeyId: enc.key.KeyId,
		RedrivePolicy: pulumi.JSONMarshal(map[string]interface{}{
			"deadLetterTargetArn": q.deadLetter.Arn,
			"maxReceiveCount":     cfg.MaxReceiveCount,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("Error creating queue: %w", err)
	}

	_, err = sqs.NewQueuePolicy(ctx, cfg.name("sqs-policy"), &sqs.QueuePolicyArgs{
		QueueUrl: q.queue.Url,
		Policy: pulumi.JSONMarshal(map[string]interface{}{
			"Version": "2012-10-17",
			"Statement": []interface{}{
				map[string]interface{}{
					"Effect": "Allow",
					"Principal": map[string]interface{}{
						"Service": "sns.amazonaws.com",
					},
					"Action":   "sqs:SendMessage",
					"Resource": q.queue.Arn,
					"Condition": map[string]interface{}{
						"ArnEquals": map[string]interface{}{
							"aws:SourceArn": topic.topic.Arn,
						},
					},
				},
			},
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("Error creating queue policy: %w", err)
	}

	_, err = sns.NewTopicSubscription(ctx, cfg.name("main-sns-sqs-sub"), &sns.TopicSubscriptionArgs{
		Topic:    topic.topic.Arn,
		Endpoint: q.queue.Arn,
		Protocol: pulumi.String("sqs"),
	})
	if err != nil {
		return nil, fmt.Errorf("Error creating queue subscription: %w", err)
	}

	ctx.Export("queueUrl", q.queue.Url)
	ctx.Export("deadLetterQueueUrl", q.deadLetter.Url)

	return q, nil
}

// newQueue applies the retention and visibility settings shared by every
// queue in the stack on top of args.
func newQueue(ctx *pulumi.Context, cfg *Config, name string, args *sqs.QueueArgs) (*sqs.Queue, error) {
	if args == nil {
		args = &sqs.QueueArgs{}
	}
	args.Name = pulumi.String(name)
	args.MessageRetentionSeconds = pulumi.Int(cfg.MessageRetentionSeconds)
	args.VisibilityTimeoutSeconds = pulumi.Int(cfg.VisibilityTimeoutSeconds)
	return sqs.NewQueue(ctx, name, args)
}
