// Package builder implements the fluent, order-preserving construction
// API for TOSCA service templates (C2). It mirrors the shape of
// internal/tosca/model but keys every mapping by insertion order and
// accumulates the first validation failure rather than stopping the
// chain, so a mapper can build a whole node in one expression and check
// the error once at the end.
package builder

import (
	"fmt"

	"github.com/edelwud/tf2tosca/internal/tosca/model"
	"github.com/edelwud/tf2tosca/internal/tosca/ordered"
	"github.com/edelwud/tf2tosca/pkg/log"
)

// KV is an ordered key/value pair, used where callers need to set
// several properties/attributes/metadata entries in one call without
// losing Go's lack of ordered map literals.
type KV struct {
	Key   string
	Value model.Value
}

// ServiceTemplateBuilder builds a model.ServiceTemplate. It is owned
// exclusively by the dispatch loop (C7) for the duration of one
// translation; mappers receive it by reference and never retain it.
type ServiceTemplateBuilder struct {
	tmpl  *model.ServiceTemplate
	nodes map[string]*NodeBuilder
	err   error
}

// NewServiceTemplateBuilder returns an empty builder.
func NewServiceTemplateBuilder() *ServiceTemplateBuilder {
	return &ServiceTemplateBuilder{
		tmpl:  model.NewServiceTemplate(),
		nodes: make(map[string]*NodeBuilder),
	}
}

// Err returns the first construction error encountered, if any.
func (b *ServiceTemplateBuilder) Err() error {
	return b.err
}

func (b *ServiceTemplateBuilder) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

// WithDescription sets the service template description.
func (b *ServiceTemplateBuilder) WithDescription(s string) *ServiceTemplateBuilder {
	b.tmpl.Description = s
	return b
}

// WithMetadata replaces the service template metadata.
func (b *ServiceTemplateBuilder) WithMetadata(kvs ...KV) *ServiceTemplateBuilder {
	m := ordered.NewMap[string]()
	for _, kv := range kvs {
		if s, ok := kv.Value.(string); ok {
			m.Set(kv.Key, s)
		}
	}
	b.tmpl.Metadata = m
	return b
}

// InputOption customizes a with_input call.
type InputOption func(*model.ParameterDefinition) error

// InputDefault sets the input's default value.
func InputDefault(v model.Value) InputOption {
	return func(p *model.ParameterDefinition) error { return p.WithDefault(v) }
}

// InputRequired sets whether the input is required.
func InputRequired(required bool) InputOption {
	return func(p *model.ParameterDefinition) error { return p.WithRequired(required) }
}

// InputDescription is carried through to schema.json/jsonschema readers
// even though ParameterDefinition has no dedicated description field in
// this profile; kept as a no-op hook so mapper call sites stay uniform.
func InputDescription(string) InputOption { return func(*model.ParameterDefinition) error { return nil } }

// WithInput adds or updates a service-template input. Overwriting an
// existing input with a differing type is a soft warning per §4.2, not
// an error: the last writer wins and a log line records the conflict.
func (b *ServiceTemplateBuilder) WithInput(name, typ string, opts ...InputOption) *ServiceTemplateBuilder {
	if existing, ok := b.tmpl.Inputs.Get(name); ok && existing.Type != "" && existing.Type != typ {
		log.Warnf("input %q redefined with differing type (%s -> %s)", name, existing.Type, typ)
	}
	p := model.NewParameterDefinition()
	p.Type = typ
	// required defaults to true unless a default is supplied below; mirror
	// the TOSCA input convention used by the variable context (C4).
	for _, opt := range opts {
		if err := opt(p); err != nil {
			b.fail(fmt.Errorf("input %q: %w", name, err))
			return b
		}
	}
	b.tmpl.Inputs.Set(name, *p)
	return b
}

// WithOutput adds or updates a service-template output.
func (b *ServiceTemplateBuilder) WithOutput(name string, opts ...InputOption) *ServiceTemplateBuilder {
	p := model.NewParameterDefinition()
	for _, opt := range opts {
		if err := opt(p); err != nil {
			b.fail(fmt.Errorf("output %q: %w", name, err))
			return b
		}
	}
	b.tmpl.Outputs.Set(name, *p)
	return b
}

// AddNode creates a fresh node template and returns its builder.
// Overwriting an existing name with a fresh AddNode is not permitted
// (§4.2); use GetNode for post-pass mutation instead.
func (b *ServiceTemplateBuilder) AddNode(name, typ string) *NodeBuilder {
	if _, exists := b.nodes[name]; exists {
		b.fail(fmt.Errorf("node %q already exists", name))
		return b.nodes[name]
	}
	nt, err := model.NewNodeTemplate(typ)
	if err != nil {
		b.fail(err)
		nt = &model.NodeTemplate{Type: typ}
	}
	b.tmpl.NodeTemplates.Set(name, nt)
	nb := &NodeBuilder{name: name, node: nt, parent: b}
	b.nodes[name] = nb
	return nb
}

// GetNode returns the builder for an already-created node, or nil if no
// node with that name exists yet. Used by post-pass mappers (C9).
func (b *ServiceTemplateBuilder) GetNode(name string) *NodeBuilder {
	return b.nodes[name]
}

// AddGroup creates a group definition and returns its builder.
func (b *ServiceTemplateBuilder) AddGroup(name, typ string) *GroupBuilder {
	g, err := model.NewGroupDefinition(typ)
	if err != nil {
		b.fail(err)
		g = &model.GroupDefinition{Type: typ}
	}
	b.tmpl.Groups.Set(name, g)
	return &GroupBuilder{name: name, group: g, parent: b}
}

// AddPolicy appends a policy entry and returns its builder. Policies
// are stored as an ordered list of singleton mappings so the same name
// may appear more than once, mirroring requirements.
func (b *ServiceTemplateBuilder) AddPolicy(name, typ string) *PolicyBuilder {
	p, err := model.NewPolicyDefinition(typ)
	if err != nil {
		b.fail(err)
		p = &model.PolicyDefinition{Type: typ}
	}
	entry := &model.PolicyEntry{Name: name, Policy: *p}
	b.tmpl.Policies = append(b.tmpl.Policies, entry)
	idx := len(b.tmpl.Policies) - 1
	return &PolicyBuilder{idx: idx, parent: b}
}

// FindPolicy returns the builder for the first policy entry with the
// given name, or nil. Used by Placement-policy post-pass accumulation
// (aws_db_subnet_group / aws_elasticache_subnet_group add targets
// incrementally as matching resources are discovered).
func (b *ServiceTemplateBuilder) FindPolicy(name string) *PolicyBuilder {
	for i, entry := range b.tmpl.Policies {
		if entry.Name == name {
			return &PolicyBuilder{idx: i, parent: b}
		}
	}
	return nil
}

// AddWorkflow creates a workflow definition and returns its builder.
func (b *ServiceTemplateBuilder) AddWorkflow(name string) *WorkflowBuilder {
	w := model.NewWorkflowDefinition()
	b.tmpl.Workflows.Set(name, w)
	return &WorkflowBuilder{name: name, wf: w, parent: b}
}

// Build returns the constructed service template, or the first error
// encountered during construction.
func (b *ServiceTemplateBuilder) Build() (*model.ServiceTemplate, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.tmpl, nil
}
