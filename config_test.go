package main

import (
	"strings"
	"testing"
)

func TestConfigValidate(t *testing.T) {
	tests := map[string]struct {
		mutate  func(*Config)
		wantErr string
	}{
		"defaults":             {func(c *Config) {}, ""},
		"image package":        {func(c *Config) { c.PackageType = packageTypeImage }, ""},
		"x86":                  {func(c *Config) { c.Architecture = "x86_64" }, ""},
		"zero receive count":   {func(c *Config) { c.MaxReceiveCount = 0 }, "maxReceiveCount"},
		"short retention":      {func(c *Config) { c.MessageRetentionSeconds = 59 }, "messageRetentionSeconds"},
		"long retention":       {func(c *Config) { c.MessageRetentionSeconds = 1209601 }, "messageRetentionSeconds"},
		"negative visibility":  {func(c *Config) { c.VisibilityTimeoutSeconds = -1 }, "visibilityTimeoutSeconds"},
		"long visibility":      {func(c *Config) { c.VisibilityTimeoutSeconds = 43201 }, "visibilityTimeoutSeconds"},
		"unknown package type": {func(c *Config) { c.PackageType = "Jar" }, "packageType"},
		"unknown architecture": {func(c *Config) { c.Architecture = "riscv" }, "architecture"},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("validate: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("validate error = %v, want mention of %s", err, tt.wantErr)
			}
		})
	}
}

func TestConfigDefaults(t *testing.T) {
	cfg := defaultConfig()
	if cfg.MessageRetentionSeconds != 604800 {
		t.Errorf("retention = %d, want 7 days", cfg.MessageRetentionSeconds)
	}
	if cfg.VisibilityTimeoutSeconds != 3000 {
		t.Errorf("visibility = %d, want 3000", cfg.VisibilityTimeoutSeconds)
	}
	if cfg.MaxReceiveCount != 10 {
		t.Errorf("maxReceiveCount = %d, want 10", cfg.MaxReceiveCount)
	}
	if got := cfg.name("sqs"); got != "pulumi-aws-demo-sqs" {
		t.Errorf("name = %q", got)
	}
}

func TestConfigGoarch(t *testing.T) {
	cfg := defaultConfig()
	if cfg.goarch() != "arm64" {
		t.Errorf("goarch = %q, want arm64", cfg.goarch())
	}
	cfg.Architecture = "x86_64"
	if cfg.goarch() != "amd64" {
		t.Errorf("goarch = %q, want amd64", cfg.goarch())
	}
}
