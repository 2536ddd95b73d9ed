package builder

import "github.com/edelwud/tf2tosca/internal/tosca/model"

// GroupBuilder builds a single group definition.
type GroupBuilder struct {
	name   string
	group  *model.GroupDefinition
	parent *ServiceTemplateBuilder
}

func (g *GroupBuilder) WithProperty(key string, value model.Value) *GroupBuilder {
	if value == nil {
		return g
	}
	g.group.Properties.Set(key, value)
	return g
}

func (g *GroupBuilder) WithAttribute(key string, value model.Value) *GroupBuilder {
	if value == nil {
		return g
	}
	g.group.Attributes.Set(key, value)
	return g
}

func (g *GroupBuilder) WithMember(name string) *GroupBuilder {
	g.group.Members = append(g.group.Members, name)
	return g
}

func (g *GroupBuilder) WithMembers(names ...string) *GroupBuilder {
	g.group.Members = append(g.group.Members, names...)
	return g
}

// AndService terminates group construction and returns the parent.
func (g *GroupBuilder) AndService() *ServiceTemplateBuilder {
	return g.parent
}
