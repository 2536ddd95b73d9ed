package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTestConfig(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Terraform.Binary != "terraform" {
		t.Errorf("expected Binary 'terraform', got %q", cfg.Terraform.Binary)
	}
	if cfg.Output.Indent != 2 {
		t.Errorf("expected Indent 2, got %d", cfg.Output.Indent)
	}
	if cfg.Mappers.StrictUnsupported {
		t.Error("expected StrictUnsupported to default false")
	}
	if cfg.Discovery.MaxDepth != 6 {
		t.Errorf("expected MaxDepth 6, got %d", cfg.Discovery.MaxDepth)
	}
	if cfg.Policy != nil {
		t.Error("expected Policy to default nil (disabled)")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tf2tosca.yaml")
	writeTestConfig(t, path, `
terraform:
  binary: tofu
  use_cache: true
mappers:
  deny: ["aws_route53_record"]
policy:
  enabled: true
  dirs: ["policies"]
  on_failure: warn
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Terraform.Binary != "tofu" {
		t.Errorf("expected binary tofu, got %q", cfg.Terraform.Binary)
	}
	if !cfg.Terraform.UseCache {
		t.Error("expected use_cache true")
	}
	if len(cfg.Mappers.Deny) != 1 || cfg.Mappers.Deny[0] != "aws_route53_record" {
		t.Errorf("unexpected deny list: %v", cfg.Mappers.Deny)
	}
	if cfg.Policy == nil || !cfg.Policy.Enabled || cfg.Policy.OnFailure != PolicyActionWarn {
		t.Errorf("unexpected policy config: %+v", cfg.Policy)
	}
	// Output.Indent wasn't set in the file, should fall back to the default.
	if cfg.Output.Indent != 2 {
		t.Errorf("expected indent default 2, got %d", cfg.Output.Indent)
	}
}

func TestLoadOrDefaultFallsBackWhenMissing(t *testing.T) {
	dir := t.TempDir()
	cfg, err := LoadOrDefault(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Terraform.Binary != "terraform" {
		t.Errorf("expected default binary, got %q", cfg.Terraform.Binary)
	}
}

func TestLoadOrDefaultFindsCandidateNames(t *testing.T) {
	for _, name := range candidateConfigNames {
		dir := t.TempDir()
		writeTestConfig(t, filepath.Join(dir, name), "terraform:\n  binary: tofu\n")
		cfg, err := LoadOrDefault(dir)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", name, err)
		}
		if cfg.Terraform.Binary != "tofu" {
			t.Errorf("%s: expected binary tofu, got %q", name, cfg.Terraform.Binary)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid default", func(*Config) {}, false},
		{"empty binary", func(c *Config) { c.Terraform.Binary = "" }, true},
		{"bad indent", func(c *Config) { c.Output.Indent = 1 }, true},
		{"bad max depth", func(c *Config) { c.Discovery.MaxDepth = 0 }, true},
		{"bad policy action", func(c *Config) {
			c.Policy = &PolicyConfig{Enabled: true, OnFailure: "explode"}
		}, true},
		{"valid policy action", func(c *Config) {
			c.Policy = &PolicyConfig{Enabled: true, OnFailure: PolicyActionBlock}
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr && err == nil {
				t.Error("expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestSaveRoundtrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tf2tosca.yaml")

	cfg := DefaultConfig()
	cfg.Terraform.Binary = "tofu"
	if err := cfg.Save(path); err != nil {
		t.Fatalf("unexpected error saving: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error loading: %v", err)
	}
	if loaded.Terraform.Binary != "tofu" {
		t.Errorf("expected binary tofu after roundtrip, got %q", loaded.Terraform.Binary)
	}
}

func TestIsMapperAllowed(t *testing.T) {
	tests := []struct {
		name   string
		cfg    MapperConfig
		typ    string
		expect bool
	}{
		{"no lists allows everything", MapperConfig{}, "aws_vpc", true},
		{"deny wins", MapperConfig{Allow: []string{"aws_vpc"}, Deny: []string{"aws_vpc"}}, "aws_vpc", false},
		{"allow list restricts", MapperConfig{Allow: []string{"aws_vpc"}}, "aws_subnet", false},
		{"allow list admits listed type", MapperConfig{Allow: []string{"aws_vpc"}}, "aws_vpc", true},
		{"deny without allow", MapperConfig{Deny: []string{"aws_subnet"}}, "aws_vpc", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.IsMapperAllowed(tt.typ); got != tt.expect {
				t.Errorf("IsMapperAllowed(%q) = %v, want %v", tt.typ, got, tt.expect)
			}
		})
	}
}

func TestGenerateJSONSchema(t *testing.T) {
	schema := GenerateJSONSchema()
	if schema == "{}" || schema == "" {
		t.Fatal("expected a non-trivial schema document")
	}
}
