package builder

import (
	"github.com/edelwud/tf2tosca/internal/tosca/model"
	"github.com/edelwud/tf2tosca/internal/tosca/ordered"
)

// NodeBuilder builds a single node template.
type NodeBuilder struct {
	name   string
	node   *model.NodeTemplate
	parent *ServiceTemplateBuilder
}

// Name returns the node's TOSCA name as registered with the parent
// builder.
func (n *NodeBuilder) Name() string { return n.name }

// Metadata returns the node's metadata map directly so post-pass
// mappers can append to nested structures (e.g. an ingress_rules list)
// without reconstructing the whole map, the Go equivalent of the
// original mutate-a-copy-then-with_metadata dance.
func (n *NodeBuilder) Metadata() *ordered.Map[model.Value] {
	return n.node.Metadata
}

func (n *NodeBuilder) WithDescription(s string) *NodeBuilder {
	n.node.Description = s
	return n
}

func (n *NodeBuilder) WithMetadataValue(key string, value model.Value) *NodeBuilder {
	n.node.Metadata.Set(key, value)
	return n
}

func (n *NodeBuilder) WithDirectives(directives ...string) *NodeBuilder {
	if err := n.node.SetDirectives(directives); err != nil {
		n.parent.fail(err)
	}
	return n
}

func (n *NodeBuilder) WithProperty(key string, value model.Value) *NodeBuilder {
	if value == nil {
		return n
	}
	n.node.Properties.Set(key, value)
	return n
}

func (n *NodeBuilder) WithProperties(kvs ...KV) *NodeBuilder {
	for _, kv := range kvs {
		n.WithProperty(kv.Key, kv.Value)
	}
	return n
}

func (n *NodeBuilder) WithAttribute(key string, value model.Value) *NodeBuilder {
	if value == nil {
		return n
	}
	n.node.Attributes.Set(key, value)
	return n
}

func (n *NodeBuilder) WithAttributes(kvs ...KV) *NodeBuilder {
	for _, kv := range kvs {
		n.WithAttribute(kv.Key, kv.Value)
	}
	return n
}

func (n *NodeBuilder) WithCount(count int) *NodeBuilder {
	if err := n.node.SetCount(count); err != nil {
		n.parent.fail(err)
	}
	return n
}

func (n *NodeBuilder) WithCopy(name string) *NodeBuilder {
	n.node.CopyFrom = name
	return n
}

// AddRequirement appends a new requirement entry named name. Because
// requirements are an ordered list of singleton mappings, the same name
// may be added more than once (e.g. repeated "dependency" edges).
func (n *NodeBuilder) AddRequirement(name string) *RequirementBuilder {
	assignment := model.NewRequirementAssignment()
	n.node.Requirements = append(n.node.Requirements, model.RequirementEntry{
		Name:       name,
		Assignment: *assignment,
	})
	idx := len(n.node.Requirements) - 1
	return &RequirementBuilder{idx: idx, node: n}
}

// AddCapability creates (or replaces) a capability assignment by name.
func (n *NodeBuilder) AddCapability(name string) *CapabilityBuilder {
	capAssn := model.NewCapabilityAssignment()
	n.node.Capabilities.Set(name, capAssn)
	return &CapabilityBuilder{name: name, cap: capAssn, node: n}
}

// AddArtifact creates an artifact definition by name.
func (n *NodeBuilder) AddArtifact(name, typ, file string) *ArtifactBuilder {
	a, err := model.NewArtifactDefinition(typ, file, "")
	if err != nil {
		n.parent.fail(err)
		a = &model.ArtifactDefinition{Type: typ, File: file}
	}
	n.node.Artifacts.Set(name, a)
	return &ArtifactBuilder{name: name, artifact: a, node: n}
}

// AddInterface creates an interface assignment by name.
func (n *NodeBuilder) AddInterface(name string) *InterfaceBuilder {
	iface := model.NewInterfaceAssignment()
	n.node.Interfaces.Set(name, iface)
	return &InterfaceBuilder{name: name, iface: iface, node: n}
}

// AndService terminates node construction and returns the parent
// service-template builder.
func (n *NodeBuilder) AndService() *ServiceTemplateBuilder {
	return n.parent
}
