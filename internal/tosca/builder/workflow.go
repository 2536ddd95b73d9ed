package builder

import (
	"github.com/edelwud/tf2tosca/internal/tosca/model"
	"github.com/edelwud/tf2tosca/internal/tosca/ordered"
)

// WorkflowBuilder builds a single workflow definition.
type WorkflowBuilder struct {
	name   string
	wf     *model.WorkflowDefinition
	parent *ServiceTemplateBuilder
}

func (w *WorkflowBuilder) WithInput(name, typ string, opts ...InputOption) *WorkflowBuilder {
	p := model.NewParameterDefinition()
	p.Type = typ
	for _, opt := range opts {
		if err := opt(p); err != nil {
			w.parent.fail(err)
			return w
		}
	}
	w.wf.Inputs.Set(name, *p)
	return w
}

func (w *WorkflowBuilder) WithPrecondition(v model.Value) *WorkflowBuilder {
	w.wf.Precondition = v
	return w
}

func (w *WorkflowBuilder) WithStep(name string, step model.Value) *WorkflowBuilder {
	if w.wf.Steps == nil {
		w.wf.Steps = ordered.NewMap[model.Value]()
	}
	if err := w.wf.WithSteps(w.wf.Steps); err != nil {
		w.parent.fail(err)
		return w
	}
	w.wf.Steps.Set(name, step)
	return w
}

func (w *WorkflowBuilder) WithImplementation(v model.Value) *WorkflowBuilder {
	if err := w.wf.WithImplementation(v); err != nil {
		w.parent.fail(err)
	}
	return w
}

func (w *WorkflowBuilder) WithOutput(name string, opts ...InputOption) *WorkflowBuilder {
	p := model.NewParameterDefinition()
	for _, opt := range opts {
		if err := opt(p); err != nil {
			w.parent.fail(err)
			return w
		}
	}
	w.wf.Outputs.Set(name, *p)
	return w
}

// AndService terminates workflow construction and returns the parent.
func (w *WorkflowBuilder) AndService() *ServiceTemplateBuilder {
	return w.parent
}
