// Package mappers implements the single-resource and post-pass mapping
// rules (C6/C9): one ResourceMapper per Terraform resource type,
// translating a planned resource instance into node templates,
// requirements, capabilities, and policies on an in-progress
// ServiceTemplateBuilder.
package mappers

import (
	"github.com/edelwud/tf2tosca/internal/terraform/refs"
	"github.com/edelwud/tf2tosca/internal/terraform/tfplan"
	"github.com/edelwud/tf2tosca/internal/terraform/variables"
)

// MappingContext bundles the parsed plan and its variable context for
// the duration of one translation. It is built once by the engine (C7)
// and passed by reference to every mapper invocation; mappers never
// retain it past their call.
type MappingContext struct {
	Plan *tfplan.ParsedPlan
	Vars *variables.VariableContext
}

// Property resolves a resource property for use as a node/capability
// property: a $get_input reference when the value is variable-backed,
// the concrete value otherwise.
func (c *MappingContext) Property(address, key string) any {
	return c.Vars.Resolve(address, key, variables.Property)
}

// Meta resolves a resource property for use in metadata, which always
// carries the concrete value regardless of variable backing.
func (c *MappingContext) Meta(address, key string) any {
	return c.Vars.Resolve(address, key, variables.Metadata)
}

// References returns the classified dependency edges for a resource.
func (c *MappingContext) References(resource *tfplan.Resource) []refs.Reference {
	return refs.Extract(c.Plan, resource)
}

// AllResources returns every planned resource, depth-first through
// child modules, in document order.
func (c *MappingContext) AllResources() []tfplan.Resource {
	return c.Plan.PlannedValues.AllResources()
}

// FindResource returns the planned resource with the given address, or
// nil if none matches.
func (c *MappingContext) FindResource(address string) *tfplan.Resource {
	for _, r := range c.AllResources() {
		if r.Address == address {
			return &r
		}
	}
	return nil
}

// ResourcesOfType returns every planned resource of the given type.
func (c *MappingContext) ResourcesOfType(resourceType string) []tfplan.Resource {
	var out []tfplan.Resource
	for _, r := range c.AllResources() {
		if r.Type == resourceType {
			out = append(out, r)
		}
	}
	return out
}
