package yamlenc

import (
	yaml "go.yaml.in/yaml/v4"

	"github.com/edelwud/tf2tosca/internal/tosca/model"
	"github.com/edelwud/tf2tosca/internal/tosca/ordered"
)

func toscaFileToNode(f *model.ToscaFile) (*yaml.Node, error) {
	m := newMapping()
	m.put("tosca_definitions_version", strNode(f.ToscaDefinitionsVersion))
	m.put("description", strOrNil(f.Description))
	m.put("metadata", stringMapToNode(f.Metadata))
	m.put("profile", strOrNil(f.Profile))
	if len(f.Imports) > 0 {
		seq := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, imp := range f.Imports {
			entry := newMapping()
			entry.put("url", strOrNil(imp.URL))
			entry.put("namespace", strOrNil(imp.Namespace))
			seq.Content = append(seq.Content, entry.build())
		}
		m.put("imports", seq)
	}
	if repos := repositoriesToNode(f.Repositories); repos != nil {
		m.put("repositories", repos)
	}
	if dsl, err := orderedMapToNode(f.DSLDefinitions); err != nil {
		return nil, err
	} else if dsl != nil {
		m.put("dsl_definitions", dsl)
	}
	if f.ServiceTemplate != nil {
		svc, err := serviceTemplateToNode(f.ServiceTemplate)
		if err != nil {
			return nil, err
		}
		m.put("service_template", svc)
	}
	return m.build(), nil
}

func repositoriesToNode(repos *ordered.Map[model.Repository]) *yaml.Node {
	if repos == nil || repos.Len() == 0 {
		return nil
	}
	out := newMapping()
	repos.Each(func(key string, repo model.Repository) {
		entry := newMapping()
		entry.put("description", strOrNil(repo.Description))
		entry.put("url", strOrNil(repo.URL))
		if repo.Credential != nil {
			if n, err := valueToNode(repo.Credential); err == nil {
				entry.put("credential", n)
			}
		}
		out.put(key, entry.build())
	})
	if out.empty() {
		return nil
	}
	return out.build()
}

func serviceTemplateToNode(s *model.ServiceTemplate) (*yaml.Node, error) {
	m := newMapping()
	m.put("description", strOrNil(s.Description))
	m.put("metadata", stringMapToNode(s.Metadata))

	inputs, err := parameterOrderedMapToNode(s.Inputs)
	if err != nil {
		return nil, err
	}
	m.put("inputs", inputs)

	outputs, err := parameterOrderedMapToNode(s.Outputs)
	if err != nil {
		return nil, err
	}
	m.put("outputs", outputs)

	nodeTemplates, err := nodeTemplatesToNode(s.NodeTemplates)
	if err != nil {
		return nil, err
	}
	m.put("node_templates", nodeTemplates)

	groups, err := groupsToNode(s.Groups)
	if err != nil {
		return nil, err
	}
	m.put("groups", groups)

	policies, err := policiesToNode(s.Policies)
	if err != nil {
		return nil, err
	}
	m.put("policies", policies)

	workflows, err := workflowsToNode(s.Workflows)
	if err != nil {
		return nil, err
	}
	m.put("workflows", workflows)

	return m.build(), nil
}

func nodeTemplatesToNode(nodes *ordered.Map[*model.NodeTemplate]) (*yaml.Node, error) {
	if nodes == nil || nodes.Len() == 0 {
		return &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}, nil
	}
	out := newMapping()
	var firstErr error
	nodes.Each(func(key string, nt *model.NodeTemplate) {
		if firstErr != nil {
			return
		}
		n, err := nodeTemplateToNode(nt)
		if err != nil {
			firstErr = err
			return
		}
		out.put(key, n)
	})
	if firstErr != nil {
		return nil, firstErr
	}
	// node_templates is required even when empty (§8 boundary behaviour).
	return out.build(), nil
}

func nodeTemplateToNode(n *model.NodeTemplate) (*yaml.Node, error) {
	m := newMapping()
	m.put("type", strOrNil(n.Type))
	m.put("description", strOrNil(n.Description))

	meta, err := orderedMapToNode(n.Metadata)
	if err != nil {
		return nil, err
	}
	m.put("metadata", meta)

	m.put("directives", stringListOrNil(n.Directives))

	props, err := orderedMapToNode(n.Properties)
	if err != nil {
		return nil, err
	}
	m.put("properties", props)

	attrs, err := orderedMapToNode(n.Attributes)
	if err != nil {
		return nil, err
	}
	m.put("attributes", attrs)

	reqs, err := requirementsToNode(n.Requirements)
	if err != nil {
		return nil, err
	}
	m.put("requirements", reqs)

	caps, err := capabilitiesToNode(n.Capabilities)
	if err != nil {
		return nil, err
	}
	m.put("capabilities", caps)

	ifaces, err := interfacesToNode(n.Interfaces)
	if err != nil {
		return nil, err
	}
	m.put("interfaces", ifaces)

	arts, err := artifactsToNode(n.Artifacts)
	if err != nil {
		return nil, err
	}
	m.put("artifacts", arts)

	m.put("count", intPtrOrNil(n.Count))
	if n.NodeFilter != nil {
		if nf, err := valueToNode(n.NodeFilter); err == nil {
			m.put("node_filter", nf)
		}
	}
	m.put("copy", strOrNil(n.CopyFrom))

	return m.build(), nil
}

func requirementsToNode(reqs []model.RequirementEntry) (*yaml.Node, error) {
	if len(reqs) == 0 {
		return nil, nil
	}
	seq := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
	for _, entry := range reqs {
		assignment, err := requirementAssignmentToNode(&entry.Assignment)
		if err != nil {
			return nil, err
		}
		wrapper := newMapping()
		wrapper.put(entry.Name, assignment)
		seq.Content = append(seq.Content, wrapper.build())
	}
	return seq, nil
}

func requirementAssignmentToNode(r *model.RequirementAssignment) (*yaml.Node, error) {
	m := newMapping()
	if r.Node != nil {
		n, err := valueToNode(r.Node)
		if err != nil {
			return nil, err
		}
		m.put("node", n)
	}
	m.put("capability", strOrNil(r.Capability))
	if r.Relationship != nil {
		n, err := valueToNode(r.Relationship)
		if err != nil {
			return nil, err
		}
		m.put("relationship", n)
	}
	if r.Allocation != nil {
		n, err := valueToNode(r.Allocation)
		if err != nil {
			return nil, err
		}
		m.put("allocation", n)
	}
	if r.Count != nil && *r.Count != 1 {
		m.put("count", intPtrOrNil(r.Count))
	}
	if r.NodeFilter != nil {
		n, err := valueToNode(r.NodeFilter)
		if err != nil {
			return nil, err
		}
		m.put("node_filter", n)
	}
	m.put("directives", stringListOrNil(r.Directives))
	m.put("optional", boolOrNil(r.Optional, r.Optional))
	return m.build(), nil
}

func capabilitiesToNode(caps *ordered.Map[*model.CapabilityAssignment]) (*yaml.Node, error) {
	if caps == nil || caps.Len() == 0 {
		return nil, nil
	}
	out := newMapping()
	var firstErr error
	caps.Each(func(key string, c *model.CapabilityAssignment) {
		if firstErr != nil {
			return
		}
		props, err := orderedMapToNode(c.Properties)
		if err != nil {
			firstErr = err
			return
		}
		attrs, err := orderedMapToNode(c.Attributes)
		if err != nil {
			firstErr = err
			return
		}
		entry := newMapping()
		entry.put("properties", props)
		entry.put("attributes", attrs)
		entry.put("directives", stringListOrNil(c.Directives))
		if entry.empty() {
			return
		}
		out.put(key, entry.build())
	})
	if firstErr != nil {
		return nil, firstErr
	}
	if out.empty() {
		return nil, nil
	}
	return out.build(), nil
}

func interfacesToNode(ifaces *ordered.Map[*model.InterfaceAssignment]) (*yaml.Node, error) {
	if ifaces == nil || ifaces.Len() == 0 {
		return nil, nil
	}
	out := newMapping()
	var firstErr error
	ifaces.Each(func(key string, iface *model.InterfaceAssignment) {
		if firstErr != nil {
			return
		}
		inputs, err := orderedMapToNode(iface.Inputs)
		if err != nil {
			firstErr = err
			return
		}
		entry := newMapping()
		entry.put("inputs", inputs)

		ops := newMapping()
		var opErr error
		iface.Operations.Each(func(opName string, op *model.OperationAssignment) {
			if opErr != nil {
				return
			}
			opEntry := newMapping()
			opEntry.put("description", strOrNil(op.Description))
			if op.Implementation != nil {
				n, e := valueToNode(op.Implementation)
				if e != nil {
					opErr = e
					return
				}
				opEntry.put("implementation", n)
			}
			opInputs, e := orderedMapToNode(op.Inputs)
			if e != nil {
				opErr = e
				return
			}
			opEntry.put("inputs", opInputs)
			opOutputs, e := orderedMapToNode(op.Outputs)
			if e != nil {
				opErr = e
				return
			}
			opEntry.put("outputs", opOutputs)
			if !opEntry.empty() {
				ops.put(opName, opEntry.build())
			}
		})
		if opErr != nil {
			firstErr = opErr
			return
		}
		if !ops.empty() {
			entry.put("operations", ops.build())
		}
		if !entry.empty() {
			out.put(key, entry.build())
		}
	})
	if firstErr != nil {
		return nil, firstErr
	}
	if out.empty() {
		return nil, nil
	}
	return out.build(), nil
}

func artifactsToNode(arts *ordered.Map[*model.ArtifactDefinition]) (*yaml.Node, error) {
	if arts == nil || arts.Len() == 0 {
		return nil, nil
	}
	out := newMapping()
	var firstErr error
	arts.Each(func(key string, a *model.ArtifactDefinition) {
		if firstErr != nil {
			return
		}
		props, err := orderedMapToNode(a.Properties)
		if err != nil {
			firstErr = err
			return
		}
		entry := newMapping()
		entry.put("type", strOrNil(a.Type))
		entry.put("file", strOrNil(a.File))
		entry.put("repository", strOrNil(a.Repository))
		entry.put("artifact_version", strOrNil(a.ArtifactVersion))
		entry.put("checksum", strOrNil(a.Checksum))
		entry.put("checksum_algorithm", strOrNil(a.ChecksumAlgorithm))
		entry.put("properties", props)
		out.put(key, entry.build())
	})
	if firstErr != nil {
		return nil, firstErr
	}
	if out.empty() {
		return nil, nil
	}
	return out.build(), nil
}

func groupsToNode(groups *ordered.Map[*model.GroupDefinition]) (*yaml.Node, error) {
	if groups == nil || groups.Len() == 0 {
		return nil, nil
	}
	out := newMapping()
	var firstErr error
	groups.Each(func(key string, g *model.GroupDefinition) {
		if firstErr != nil {
			return
		}
		props, err := orderedMapToNode(g.Properties)
		if err != nil {
			firstErr = err
			return
		}
		attrs, err := orderedMapToNode(g.Attributes)
		if err != nil {
			firstErr = err
			return
		}
		entry := newMapping()
		entry.put("type", strOrNil(g.Type))
		entry.put("properties", props)
		entry.put("attributes", attrs)
		entry.put("members", stringListOrNil(g.Members))
		out.put(key, entry.build())
	})
	if firstErr != nil {
		return nil, firstErr
	}
	if out.empty() {
		return nil, nil
	}
	return out.build(), nil
}

func policiesToNode(policies []*model.PolicyEntry) (*yaml.Node, error) {
	if len(policies) == 0 {
		return nil, nil
	}
	seq := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
	for _, entry := range policies {
		props, err := orderedMapToNode(entry.Policy.Properties)
		if err != nil {
			return nil, err
		}
		triggers, err := triggersToNode(entry.Policy.Triggers)
		if err != nil {
			return nil, err
		}
		def := newMapping()
		def.put("type", strOrNil(entry.Policy.Type))
		def.put("properties", props)
		def.put("targets", stringListOrNil(entry.Policy.Targets))
		def.put("triggers", triggers)

		wrapper := newMapping()
		wrapper.put(entry.Name, def.build())
		seq.Content = append(seq.Content, wrapper.build())
	}
	return seq, nil
}

func triggersToNode(triggers *ordered.Map[model.TriggerDefinition]) (*yaml.Node, error) {
	if triggers == nil || triggers.Len() == 0 {
		return nil, nil
	}
	out := newMapping()
	var firstErr error
	triggers.Each(func(key string, t model.TriggerDefinition) {
		if firstErr != nil {
			return
		}
		entry := newMapping()
		entry.put("event", strOrNil(t.Event))
		if t.Action != nil {
			n, err := valueToNode(t.Action)
			if err != nil {
				firstErr = err
				return
			}
			entry.put("action", n)
		}
		if t.Condition != nil {
			n, err := valueToNode(t.Condition)
			if err != nil {
				firstErr = err
				return
			}
			entry.put("condition", n)
		}
		out.put(key, entry.build())
	})
	if firstErr != nil {
		return nil, firstErr
	}
	if out.empty() {
		return nil, nil
	}
	return out.build(), nil
}

func workflowsToNode(workflows *ordered.Map[*model.WorkflowDefinition]) (*yaml.Node, error) {
	if workflows == nil || workflows.Len() == 0 {
		return nil, nil
	}
	out := newMapping()
	var firstErr error
	workflows.Each(func(key string, w *model.WorkflowDefinition) {
		if firstErr != nil {
			return
		}
		inputs, err := parameterOrderedMapToNode(w.Inputs)
		if err != nil {
			firstErr = err
			return
		}
		outputs, err := parameterOrderedMapToNode(w.Outputs)
		if err != nil {
			firstErr = err
			return
		}
		entry := newMapping()
		entry.put("inputs", inputs)
		if w.Precondition != nil {
			n, e := valueToNode(w.Precondition)
			if e != nil {
				firstErr = e
				return
			}
			entry.put("precondition", n)
		}
		if w.Steps != nil {
			n, e := orderedMapToNode(w.Steps)
			if e != nil {
				firstErr = e
				return
			}
			entry.put("steps", n)
		}
		if w.Implementation != nil {
			n, e := valueToNode(w.Implementation)
			if e != nil {
				firstErr = e
				return
			}
			entry.put("implementation", n)
		}
		entry.put("outputs", outputs)
		out.put(key, entry.build())
	})
	if firstErr != nil {
		return nil, firstErr
	}
	if out.empty() {
		return nil, nil
	}
	return out.build(), nil
}

func parameterOrderedMapToNode(params *ordered.Map[model.ParameterDefinition]) (*yaml.Node, error) {
	if params == nil || params.Len() == 0 {
		return nil, nil
	}
	out := newMapping()
	var firstErr error
	params.Each(func(key string, p model.ParameterDefinition) {
		if firstErr != nil {
			return
		}
		n, err := parameterToNode(&p)
		if err != nil {
			firstErr = err
			return
		}
		out.put(key, n)
	})
	if firstErr != nil {
		return nil, firstErr
	}
	if out.empty() {
		return nil, nil
	}
	return out.build(), nil
}

func parameterToNode(p *model.ParameterDefinition) (*yaml.Node, error) {
	m := newMapping()
	m.put("type", strOrNil(p.Type))
	if p.Value != nil {
		n, err := valueToNode(p.Value)
		if err != nil {
			return nil, err
		}
		m.put("value", n)
	}
	if p.Mapping != nil {
		n, err := valueToNode(p.Mapping)
		if err != nil {
			return nil, err
		}
		m.put("mapping", n)
	}
	if !p.Required {
		m.put("required", boolOrNil(true, false))
	}
	if p.Default != nil {
		n, err := valueToNode(p.Default)
		if err != nil {
			return nil, err
		}
		m.put("default", n)
	}
	if p.Validation != nil {
		n, err := valueToNode(p.Validation)
		if err != nil {
			return nil, err
		}
		m.put("validation", n)
	}
	if p.KeySchema != nil {
		n, err := valueToNode(p.KeySchema)
		if err != nil {
			return nil, err
		}
		m.put("key_schema", n)
	}
	if p.EntrySchema != nil {
		n, err := valueToNode(p.EntrySchema)
		if err != nil {
			return nil, err
		}
		m.put("entry_schema", n)
	}
	return m.build(), nil
}
