package model

import "testing"

func TestNewToscaFileRejectsWrongVersion(t *testing.T) {
	if _, err := NewToscaFile("tosca_1_3"); err == nil {
		t.Error("NewToscaFile(tosca_1_3) err = nil, want error")
	}
}

func TestNewToscaFileAcceptsCanonicalVersion(t *testing.T) {
	f, err := NewToscaFile(ToscaDefinitionsVersion)
	if err != nil {
		t.Fatalf("NewToscaFile() err = %v", err)
	}
	if f.ToscaDefinitionsVersion != ToscaDefinitionsVersion {
		t.Errorf("ToscaDefinitionsVersion = %q, want %q", f.ToscaDefinitionsVersion, ToscaDefinitionsVersion)
	}
}

func TestNewNodeTemplateRequiresType(t *testing.T) {
	if _, err := NewNodeTemplate(""); err == nil {
		t.Error("NewNodeTemplate(\"\") err = nil, want error")
	}
}

func TestRequirementAssignmentNodeMustHaveTwoEntries(t *testing.T) {
	r := NewRequirementAssignment()

	if err := r.WithNode([]any{"only-one"}); err == nil {
		t.Error("WithNode(1 entry) err = nil, want error")
	}
	if err := r.WithNode([]any{"node-name", "capability"}); err != nil {
		t.Errorf("WithNode(2 entries) err = %v, want nil", err)
	}
	if err := r.WithNode("node-name"); err != nil {
		t.Errorf("WithNode(scalar) err = %v, want nil", err)
	}
}

func TestParameterDefinitionValueAndMappingAreMutuallyExclusive(t *testing.T) {
	p := NewParameterDefinition()
	if err := p.WithValue("concrete"); err != nil {
		t.Fatalf("WithValue() err = %v", err)
	}
	if err := p.WithMapping([]any{"SELF", "some_attr"}); err == nil {
		t.Error("WithMapping() after WithValue() err = nil, want error")
	}
}

func TestParameterDefinitionDefaultForbiddenWhenOptional(t *testing.T) {
	p := NewParameterDefinition()
	if err := p.WithRequired(false); err != nil {
		t.Fatalf("WithRequired(false) err = %v", err)
	}
	if err := p.WithDefault("fallback"); err == nil {
		t.Error("WithDefault() on optional parameter err = nil, want error")
	}
}

func TestParameterDefinitionRequiredRejectedWhenDefaultSet(t *testing.T) {
	p := NewParameterDefinition()
	if err := p.WithDefault("fallback"); err != nil {
		t.Fatalf("WithDefault() err = %v", err)
	}
	if err := p.WithRequired(false); err == nil {
		t.Error("WithRequired(false) after WithDefault() err = nil, want error")
	}
}

func TestWorkflowDefinitionStepsAndImplementationAreMutuallyExclusive(t *testing.T) {
	w := NewWorkflowDefinition()
	if err := w.WithImplementation("scripts/deploy.sh"); err != nil {
		t.Fatalf("WithImplementation() err = %v", err)
	}
	if err := w.WithSteps(nil); err == nil {
		t.Error("WithSteps() after WithImplementation() err = nil, want error")
	}
}

func TestNewArtifactDefinitionValidatesChecksumAlgorithm(t *testing.T) {
	if _, err := NewArtifactDefinition("tosca.artifacts.File", "install.sh", "SHA-3"); err == nil {
		t.Error("NewArtifactDefinition(bad algorithm) err = nil, want error")
	}
	a, err := NewArtifactDefinition("tosca.artifacts.File", "install.sh", "SHA-256")
	if err != nil {
		t.Fatalf("NewArtifactDefinition() err = %v", err)
	}
	if a.ChecksumAlgorithm != "SHA-256" {
		t.Errorf("ChecksumAlgorithm = %q, want SHA-256", a.ChecksumAlgorithm)
	}
}

func TestNodeTemplateSetDirectivesValidatesEnum(t *testing.T) {
	n, err := NewNodeTemplate("tosca.nodes.Compute")
	if err != nil {
		t.Fatalf("NewNodeTemplate() err = %v", err)
	}
	if err := n.SetDirectives([]string{"bogus"}); err == nil {
		t.Error("SetDirectives(bogus) err = nil, want error")
	}
	if err := n.SetDirectives([]string{"select", "substitute"}); err != nil {
		t.Errorf("SetDirectives(valid) err = %v, want nil", err)
	}
}

func TestNodeTemplateSetCountRejectsNegative(t *testing.T) {
	n, err := NewNodeTemplate("tosca.nodes.Compute")
	if err != nil {
		t.Fatalf("NewNodeTemplate() err = %v", err)
	}
	if err := n.SetCount(-1); err == nil {
		t.Error("SetCount(-1) err = nil, want error")
	}
}
