package builder

import "github.com/edelwud/tf2tosca/internal/tosca/model"

// PolicyBuilder builds a single policy entry. Policies are stored as an
// ordered list of singleton mappings, so PolicyBuilder addresses its
// entry by index into the parent's slice rather than by name.
type PolicyBuilder struct {
	idx    int
	parent *ServiceTemplateBuilder
}

func (p *PolicyBuilder) entry() *model.PolicyEntry {
	return p.parent.tmpl.Policies[p.idx]
}

func (p *PolicyBuilder) WithProperty(key string, value model.Value) *PolicyBuilder {
	if value == nil {
		return p
	}
	p.entry().Policy.Properties.Set(key, value)
	return p
}

func (p *PolicyBuilder) WithTarget(name string) *PolicyBuilder {
	p.entry().Policy.Targets = append(p.entry().Policy.Targets, name)
	return p
}

// WithTargetOnce appends name to Targets only if it is not already
// present, used when the same Placement policy accumulates target
// nodes across multiple resources that might repeat a name.
func (p *PolicyBuilder) WithTargetOnce(name string) *PolicyBuilder {
	for _, t := range p.entry().Policy.Targets {
		if t == name {
			return p
		}
	}
	return p.WithTarget(name)
}

func (p *PolicyBuilder) WithTrigger(name string, event string, action model.Value, condition model.Value) *PolicyBuilder {
	trigger, err := model.NewTriggerDefinition(event, action)
	if err != nil {
		p.parent.fail(err)
		return p
	}
	trigger.Condition = condition
	p.entry().Policy.Triggers.Set(name, *trigger)
	return p
}

// AndService terminates policy construction and returns the parent.
func (p *PolicyBuilder) AndService() *ServiceTemplateBuilder {
	return p.parent
}
