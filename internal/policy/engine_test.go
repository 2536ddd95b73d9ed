package policy

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestOPAVersion(t *testing.T) {
	version := OPAVersion()
	if version == "" {
		t.Error("OPAVersion() returned empty string")
	}
}

func TestNewEngine(t *testing.T) {
	policyDirs := []string{"/policies"}
	namespaces := []string{"tosca"}

	engine := NewEngine(policyDirs, namespaces)

	if engine == nil {
		t.Fatal("NewEngine() returned nil")
	}
	if len(engine.policyDirs) != 1 {
		t.Errorf("policyDirs = %v, want 1 element", engine.policyDirs)
	}
	if len(engine.namespaces) != 1 {
		t.Errorf("namespaces = %v, want 1 element", engine.namespaces)
	}
}

const minimalDocument = `tosca_definitions_version: tosca_2_0
service_template:
  node_templates:
    aws_s3_bucket_data:
      type: Storage.ObjectStorage
`

func writeDocument(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestEngine_EvaluateFile_NoPolicies(t *testing.T) {
	tmpDir := t.TempDir()
	docPath := writeDocument(t, tmpDir, "service.yaml", minimalDocument)

	engine := NewEngine([]string{filepath.Join(tmpDir, "nonexistent")}, []string{"tosca"})

	result, err := engine.EvaluateFile(context.Background(), docPath)
	if err != nil {
		t.Fatalf("EvaluateFile() error = %v", err)
	}
	if result == nil {
		t.Fatal("EvaluateFile() returned nil result")
	}
	if len(result.Failures) != 0 {
		t.Errorf("expected no failures, got %d", len(result.Failures))
	}
}

func TestEngine_EvaluateFile_WithPolicy(t *testing.T) {
	tmpDir := t.TempDir()
	docPath := writeDocument(t, tmpDir, "service.yaml", minimalDocument)

	policyDir := filepath.Join(tmpDir, "policies")
	if err := os.MkdirAll(policyDir, 0o755); err != nil {
		t.Fatalf("failed to create policy dir: %v", err)
	}

	policy := `package tosca

deny contains msg if {
	some name, node in input.service_template.node_templates
	node.type == "Storage.ObjectStorage"
	msg := sprintf("bucket node %q is not allowed", [name])
}`
	if err := os.WriteFile(filepath.Join(policyDir, "storage.rego"), []byte(policy), 0o644); err != nil {
		t.Fatalf("failed to write policy: %v", err)
	}

	engine := NewEngine([]string{policyDir}, []string{"tosca"})

	result, err := engine.EvaluateFile(context.Background(), docPath)
	if err != nil {
		t.Fatalf("EvaluateFile() error = %v", err)
	}
	if len(result.Failures) != 1 {
		t.Fatalf("expected 1 failure, got %d: %v", len(result.Failures), result.Failures)
	}
	want := `bucket node "aws_s3_bucket_data" is not allowed`
	if result.Failures[0].Message != want {
		t.Errorf("unexpected failure message: got %q, want %q", result.Failures[0].Message, want)
	}
}

func TestEngine_EvaluateFile_WithWarn(t *testing.T) {
	tmpDir := t.TempDir()
	docPath := writeDocument(t, tmpDir, "service.yaml", minimalDocument)

	policyDir := filepath.Join(tmpDir, "policies")
	if err := os.MkdirAll(policyDir, 0o755); err != nil {
		t.Fatalf("failed to create policy dir: %v", err)
	}

	policy := `package tosca

warn contains msg if {
	some name, node in input.service_template.node_templates
	node.type == "Storage.ObjectStorage"
	msg := "consider enabling versioning on object storage nodes"
}`
	if err := os.WriteFile(filepath.Join(policyDir, "storage.rego"), []byte(policy), 0o644); err != nil {
		t.Fatalf("failed to write policy: %v", err)
	}

	engine := NewEngine([]string{policyDir}, []string{"tosca"})

	result, err := engine.EvaluateFile(context.Background(), docPath)
	if err != nil {
		t.Fatalf("EvaluateFile() error = %v", err)
	}
	if len(result.Warnings) != 1 {
		t.Fatalf("expected 1 warning, got %d", len(result.Warnings))
	}
	want := "consider enabling versioning on object storage nodes"
	if result.Warnings[0].Message != want {
		t.Errorf("unexpected warning message: got %q, want %q", result.Warnings[0].Message, want)
	}
}

func TestEngine_EvaluateFile_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	docPath := writeDocument(t, tmpDir, "service.yaml", "not: [valid: yaml")

	engine := NewEngine([]string{tmpDir}, []string{"tosca"})

	if _, err := engine.EvaluateFile(context.Background(), docPath); err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestEngine_EvaluateFile_JSONExtension(t *testing.T) {
	tmpDir := t.TempDir()
	docPath := writeDocument(t, tmpDir, "service.json", `{"tosca_definitions_version":"tosca_2_0"}`)

	engine := NewEngine(nil, []string{"tosca"})
	result, err := engine.EvaluateFile(context.Background(), docPath)
	if err != nil {
		t.Fatalf("EvaluateFile() error = %v", err)
	}
	if result == nil {
		t.Fatal("expected non-nil result")
	}
}

func TestEngine_EvaluateFile_FileNotFound(t *testing.T) {
	engine := NewEngine([]string{"/tmp"}, []string{"tosca"})

	if _, err := engine.EvaluateFile(context.Background(), "/nonexistent/service.yaml"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestEngine_collectRegoFiles(t *testing.T) {
	tmpDir := t.TempDir()

	policyDir := filepath.Join(tmpDir, "policies")
	if err := os.MkdirAll(policyDir, 0o755); err != nil {
		t.Fatalf("failed to create policy dir: %v", err)
	}

	files := []string{"policy1.rego", "policy2.rego", "policy_test.rego"}
	for _, f := range files {
		if err := os.WriteFile(filepath.Join(policyDir, f), []byte("package test"), 0o644); err != nil {
			t.Fatalf("failed to write %s: %v", f, err)
		}
	}
	if err := os.WriteFile(filepath.Join(policyDir, "readme.md"), []byte("# Readme"), 0o644); err != nil {
		t.Fatalf("failed to write readme: %v", err)
	}

	engine := NewEngine([]string{policyDir}, []string{"test"})
	regoFiles, err := engine.collectRegoFiles()
	if err != nil {
		t.Fatalf("collectRegoFiles() error = %v", err)
	}
	if len(regoFiles) != 2 {
		t.Errorf("expected 2 rego files, got %d: %v", len(regoFiles), regoFiles)
	}
}
