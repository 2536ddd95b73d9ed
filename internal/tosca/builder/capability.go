package builder

import "github.com/edelwud/tf2tosca/internal/tosca/model"

// CapabilityBuilder builds a single capability assignment.
type CapabilityBuilder struct {
	name string
	cap  *model.CapabilityAssignment
	node *NodeBuilder
}

func (c *CapabilityBuilder) WithProperty(key string, value model.Value) *CapabilityBuilder {
	if value == nil {
		return c
	}
	c.cap.Properties.Set(key, value)
	return c
}

func (c *CapabilityBuilder) WithProperties(kvs ...KV) *CapabilityBuilder {
	for _, kv := range kvs {
		c.WithProperty(kv.Key, kv.Value)
	}
	return c
}

func (c *CapabilityBuilder) WithAttribute(key string, value model.Value) *CapabilityBuilder {
	if value == nil {
		return c
	}
	c.cap.Attributes.Set(key, value)
	return c
}

func (c *CapabilityBuilder) WithDirectives(directives ...string) *CapabilityBuilder {
	if err := c.cap.SetDirectives(directives); err != nil {
		c.node.parent.fail(err)
	}
	return c
}

// AndNode terminates capability construction and returns the node.
func (c *CapabilityBuilder) AndNode() *NodeBuilder {
	return c.node
}
