package mappers

import (
	"testing"

	"github.com/edelwud/tf2tosca/internal/terraform/tfplan"
	"github.com/edelwud/tf2tosca/internal/terraform/variables"
	"github.com/edelwud/tf2tosca/internal/tosca/builder"
)

// buildContext parses a raw plan JSON document and wraps it in a
// MappingContext, the fixture every mapper test in this package shares.
func buildContext(t *testing.T, planJSON string) *MappingContext {
	t.Helper()
	plan, err := tfplan.Parse([]byte(planJSON))
	if err != nil {
		t.Fatalf("tfplan.Parse() err = %v", err)
	}
	return &MappingContext{Plan: plan, Vars: variables.Build(plan)}
}

func mustMetaString(t *testing.T, node *builder.NodeBuilder, key string) string {
	t.Helper()
	v, ok := node.Metadata().Get(key)
	if !ok {
		t.Fatalf("metadata key %q not set on node %q", key, node.Name())
	}
	s, ok := v.(string)
	if !ok {
		t.Fatalf("metadata key %q = %v, want string", key, v)
	}
	return s
}
