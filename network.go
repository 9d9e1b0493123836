package main

import (
	"fmt"

	ec2_classic "github.com/pulumi/pulumi-aws/sdk/v6/go/aws/ec2"
	"github.com/pulumi/pulumi-awsx/sdk/v2/go/awsx/ec2"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
)

// Network places the function in the private subnets of its own VPC. Egress
// goes through a single NAT gateway so the function can still reach SQS.
type Network struct {
	vpc *ec2.Vpc
	sg  *ec2_classic.SecurityGroup
}

func NewNetwork(ctx *pulumi.Context, cfg *Config) (*Network, error) {
	var err error
	network := &Network{}

	as := ec2.SubnetAllocationStrategyAuto
	network.vpc, err = ec2.NewVpc(ctx, cfg.name("vpc"), &ec2.VpcArgs{
		NatGateways:    &ec2.NatGatewayConfigurationArgs{Strategy: ec2.NatGatewayStrategySingle},
		SubnetStrategy: &as,
	})
	if err != nil {
		return nil, fmt.Errorf("Error creating vpc: %w", err)
	}

	network.sg, err = ec2_classic.NewSecurityGroup(ctx, cfg.name("lambda-sg"), &ec2_classic.SecurityGroupArgs{
		VpcId:               network.vpc.VpcId,
		Egress:              egressAll(),
		RevokeRulesOnDelete: pulumi.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("Error creating security group: %w", err)
	}

	return network, nil
}

func egressAll() ec2_classic.SecurityGroupEgressArray {
	return ec2_classic.SecurityGroupEgressArray{
		ec2_classic.SecurityGroupEgressArgs{
			CidrBlocks:  pulumi.ToStringArray([]string{"0.0.0.0/0"}),
			Description: pulumi.String("Egress all"),
			Protocol:    pulumi.String("-1"),
			FromPort:    pulumi.Int(0),
			ToPort:      pulumi.Int(0),
		},
	}
}
