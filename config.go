package main

import (
	"fmt"
	"os"

	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi/config"
)

const (
	packageTypeZip   = "Zip"
	packageTypeImage = "Image"
)

type Config struct {
	Prefix                   string
	ScheduleExpression       string
	EmailAddress             string
	MaxReceiveCount          int
	MessageRetentionSeconds  int
	VisibilityTimeoutSeconds int
	PackageType              string
	ImageUri                 string
	Architecture             string
	Vpc                      bool
	LogLevel                 string
}

func defaultConfig() *Config {
	return &Config{
		Prefix:                   "pulumi-aws-demo",
		ScheduleExpression:       "rate(5 minutes)",
		MaxReceiveCount:          10,
		MessageRetentionSeconds:  7 * 24 * 60 * 60,
		VisibilityTimeoutSeconds: 3000,
		PackageType:              packageTypeZip,
		Architecture:             "arm64",
		LogLevel:                 "info",
	}
}

func loadConfig(ctx *pulumi.Context) (*Config, error) {
	c := config.New(ctx, "")
	cfg := defaultConfig()

	if v := c.Get("prefix"); v != "" {
		cfg.Prefix = v
	}
	if v := c.Get("scheduleExpression"); v != "" {
		cfg.ScheduleExpression = v
	}
	cfg.EmailAddress = c.Get("emailAddress")
	if cfg.EmailAddress == "" {
		cfg.EmailAddress = os.Getenv("MY_EMAIL_ADDRESS")
	}
	if v, err := c.TryInt("maxReceiveCount"); err == nil {
		cfg.MaxReceiveCount = v
	}
	if v, err := c.TryInt("messageRetentionSeconds"); err == nil {
		cfg.MessageRetentionSeconds = v
	}
	if v, err := c.TryInt("visibilityTimeoutSeconds"); err == nil {
		cfg.VisibilityTimeoutSeconds = v
	}
	if v := c.Get("packageType"); v != "" {
		cfg.PackageType = v
	}
	cfg.ImageUri = c.Get("imageUri")
	if cfg.ImageUri == "" {
		cfg.ImageUri = os.Getenv("IMAGE_URI")
	}
	if cfg.ImageUri != "" {
		cfg.PackageType = packageTypeImage
	}
	if v := c.Get("architecture"); v != "" {
		cfg.Architecture = v
	}
	cfg.Vpc = c.GetBool("vpc")
	if v := c.Get("logLevel"); v != "" {
		cfg.LogLevel = v
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.MaxReceiveCount < 1 {
		return fmt.Errorf("Invalid maxReceiveCount %d: must be at least 1", c.MaxReceiveCount)
	}
	if c.MessageRetentionSeconds < 60 || c.MessageRetentionSeconds > 1209600 {
		return fmt.Errorf("Invalid messageRetentionSeconds %d: must be between 60 and 1209600", c.MessageRetentionSeconds)
	}
	if c.VisibilityTimeoutSeconds < 0 || c.VisibilityTimeoutSeconds > 43200 {
		return fmt.Errorf("Invalid visibilityTimeoutSeconds %d: must be between 0 and 43200", c.VisibilityTimeoutSeconds)
	}
	switch c.PackageType {
	case packageTypeZip, packageTypeImage:
	default:
		return fmt.Errorf("Invalid packageType %q: must be %s or %s", c.PackageType, packageTypeZip, packageTypeImage)
	}
	switch c.Architecture {
	case "arm64", "x86_64":
	default:
		return fmt.Errorf("Invalid architecture %q: must be arm64 or x86_64", c.Architecture)
	}
	return nil
}

// name returns the physical resource name for suffix.
func (c *Config) name(suffix string) string {
	return c.Prefix + "-" + suffix
}

// goarch maps the lambda architecture to GOARCH.
func (c *Config) goarch() string {
	if c.Architecture == "x86_64" {
		return "amd64"
	}
	return "arm64"
}
