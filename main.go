package main

import (
	"fmt"

	"github.com/pulumi/pulumi-aws/sdk/v6/go/aws"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
)

func main() {
	pulumi.Run(func(ctx *pulumi.Context) error {
		cfg, err := loadConfig(ctx)
		if err != nil {
			return err
		}
		return deploy(ctx, cfg)
	})
}

func deploy(ctx *pulumi.Context, cfg *Config) error {
	identity, err := aws.GetCallerIdentity(ctx, nil)
	if err != nil {
		return fmt.Errorf("Error getting caller identity: %w", err)
	}
	region, err := aws.GetRegion(ctx, nil)
	if err != nil {
		return fmt.Errorf("Error getting region: %w", err)
	}
	account := Account{id: identity.AccountId, region: region.Name}

	enc, err := NewEncryption(ctx, cfg, account)
	if err != nil {
		return err
	}

	topic, err := NewTopic(ctx, cfg, enc)
	if err != nil {
		return err
	}

	queues, err := NewQueues(ctx, cfg, topic, enc)
	if err != nil {
		return err
	}

	var network *Network
	if cfg.Vpc {
		network, err = NewNetwork(ctx, cfg)
		if err != nil {
			return err
		}
	}

	artifact, err := NewArtifact(ctx, cfg)
	if err != nil {
		return err
	}

	_, err = NewLambdaHandler(ctx, cfg, LambdaHandlerArgs{
		artifact: artifact,
		enc:      enc,
		topic:    topic,
		queues:   queues,
		network:  network,
	})
	if err != nil {
		return err
	}

	return nil
}
