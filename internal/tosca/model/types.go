package model

import "github.com/edelwud/tf2tosca/internal/tosca/ordered"

// ToscaDefinitionsVersion is the only version this model supports.
const ToscaDefinitionsVersion = "tosca_2_0"

// Value is any TOSCA property/attribute value: a scalar, a list, a
// nested map, or the special intrinsic-function form
// {"$get_input": "name"} produced by the variable context.
type Value = any

// ToscaFile is the root of a TOSCA service-template document.
type ToscaFile struct {
	ToscaDefinitionsVersion string
	Description             string
	Metadata                *ordered.Map[string]
	Profile                 string
	Imports                 []Import
	Repositories            *ordered.Map[Repository]
	DSLDefinitions          *ordered.Map[Value]
	ServiceTemplate         *ServiceTemplate
}

// Import is a single entry of the top-level imports list.
type Import struct {
	URL       string
	Namespace string
}

// Repository describes an artifact/definition repository.
type Repository struct {
	Description string
	URL         string
	Credential  Value
}

// NewToscaFile validates and constructs a ToscaFile. version must be
// ToscaDefinitionsVersion; anything else is rejected eagerly per §3.2.
func NewToscaFile(version string) (*ToscaFile, error) {
	if version != ToscaDefinitionsVersion {
		return nil, invalid("tosca_definitions_version", "must be \"tosca_2_0\"")
	}
	return &ToscaFile{ToscaDefinitionsVersion: version}, nil
}

// ServiceTemplate is the `service_template` entity.
type ServiceTemplate struct {
	Description   string
	Metadata      *ordered.Map[string]
	Inputs        *ordered.Map[ParameterDefinition]
	Outputs       *ordered.Map[ParameterDefinition]
	NodeTemplates *ordered.Map[*NodeTemplate]
	Groups        *ordered.Map[*GroupDefinition]
	Policies      []*PolicyEntry
	Workflows     *ordered.Map[*WorkflowDefinition]
}

// NewServiceTemplate constructs an empty service template with its
// ordered collections initialized.
func NewServiceTemplate() *ServiceTemplate {
	return &ServiceTemplate{
		Inputs:        ordered.NewMap[ParameterDefinition](),
		Outputs:       ordered.NewMap[ParameterDefinition](),
		NodeTemplates: ordered.NewMap[*NodeTemplate](),
		Groups:        ordered.NewMap[*GroupDefinition](),
		Workflows:     ordered.NewMap[*WorkflowDefinition](),
	}
}

// NodeTemplate is a single node in the topology.
type NodeTemplate struct {
	Type         string
	Description  string
	Metadata     *ordered.Map[Value]
	Directives   []string
	Properties   *ordered.Map[Value]
	Attributes   *ordered.Map[Value]
	Requirements []RequirementEntry
	Capabilities *ordered.Map[*CapabilityAssignment]
	Interfaces   *ordered.Map[*InterfaceAssignment]
	Artifacts    *ordered.Map[*ArtifactDefinition]
	Count        *int
	NodeFilter   Value
	CopyFrom     string
}

var nodeDirectives = map[string]bool{"create": true, "select": true, "substitute": true}

// NewNodeTemplate constructs a node template of the given TOSCA type.
// typ is required; §3.2 does not further constrain it (the type name
// space belongs to the profile, not this model).
func NewNodeTemplate(typ string) (*NodeTemplate, error) {
	if typ == "" {
		return nil, invalid("type", "is required")
	}
	return &NodeTemplate{
		Type:         typ,
		Metadata:     ordered.NewMap[Value](),
		Properties:   ordered.NewMap[Value](),
		Attributes:   ordered.NewMap[Value](),
		Capabilities: ordered.NewMap[*CapabilityAssignment](),
		Interfaces:   ordered.NewMap[*InterfaceAssignment](),
		Artifacts:    ordered.NewMap[*ArtifactDefinition](),
	}, nil
}

// SetDirectives validates each directive is one of {create, select,
// substitute} before assigning.
func (n *NodeTemplate) SetDirectives(directives []string) error {
	for _, d := range directives {
		if !nodeDirectives[d] {
			return invalid("directives", "must be one of create, select, substitute; got "+d)
		}
	}
	n.Directives = directives
	return nil
}

// SetCount validates count >= 0 before assigning.
func (n *NodeTemplate) SetCount(count int) error {
	if count < 0 {
		return invalid("count", "must be >= 0")
	}
	n.Count = &count
	return nil
}

// RequirementEntry is one element of a node's ordered requirement list:
// a singleton mapping {name: assignment}. Stored as a struct rather than
// a one-entry map so the same name may legally repeat (§4.2).
type RequirementEntry struct {
	Name       string
	Assignment RequirementAssignment
}

// RequirementAssignment is a single requirement occurrence.
type RequirementAssignment struct {
	// Node is either a string address or a two-element [name, index] pair.
	Node         Value
	Capability   string
	Relationship Value
	Allocation   Value
	Count        *int
	NodeFilter   Value
	Directives   []string
	Optional     bool
}

// NewRequirementAssignment returns an empty assignment with Count 1.
// The node shape is validated when Node is set through WithNode.
func NewRequirementAssignment() *RequirementAssignment {
	return &RequirementAssignment{Count: intPtr(1)}
}

func intPtr(i int) *int { return &i }

func validateRequirementNode(node Value) error {
	list, ok := node.([]any)
	if !ok {
		return nil
	}
	if len(list) != 2 {
		return invalid("node", "a list-form requirement node must have exactly two entries [name, index]")
	}
	return nil
}

// WithNode sets Node, validating the list-form invariant.
func (r *RequirementAssignment) WithNode(node Value) error {
	if err := validateRequirementNode(node); err != nil {
		return err
	}
	r.Node = node
	return nil
}

// CapabilityAssignment is a capability occurrence on a node template.
type CapabilityAssignment struct {
	Properties *ordered.Map[Value]
	Attributes *ordered.Map[Value]
	Directives []string
}

var capabilityDirectives = map[string]bool{"internal": true, "external": true}

// NewCapabilityAssignment returns an empty capability assignment.
func NewCapabilityAssignment() *CapabilityAssignment {
	return &CapabilityAssignment{
		Properties: ordered.NewMap[Value](),
		Attributes: ordered.NewMap[Value](),
	}
}

// SetDirectives validates each directive is one of {internal, external}.
func (c *CapabilityAssignment) SetDirectives(directives []string) error {
	for _, d := range directives {
		if !capabilityDirectives[d] {
			return invalid("directives", "must be one of internal, external; got "+d)
		}
	}
	c.Directives = directives
	return nil
}

// InterfaceAssignment groups operation/notification assignments under a
// named interface on a node template.
type InterfaceAssignment struct {
	Inputs     *ordered.Map[Value]
	Operations *ordered.Map[*OperationAssignment]
}

// NewInterfaceAssignment returns an empty interface assignment.
func NewInterfaceAssignment() *InterfaceAssignment {
	return &InterfaceAssignment{
		Inputs:     ordered.NewMap[Value](),
		Operations: ordered.NewMap[*OperationAssignment](),
	}
}

// OperationAssignment describes a single operation or notification.
type OperationAssignment struct {
	Description    string
	Implementation Value
	Inputs         *ordered.Map[Value]
	Outputs        *ordered.Map[Value]
}

var checksumAlgorithms = map[string]bool{"MD5": true, "SHA-1": true, "SHA-256": true, "SHA-512": true}

// ArtifactDefinition describes a deployment/implementation artifact.
type ArtifactDefinition struct {
	Type              string
	File              string
	Repository        string
	ArtifactVersion   string
	Checksum          string
	ChecksumAlgorithm string
	Properties        *ordered.Map[Value]
}

// NewArtifactDefinition validates the required fields and, when a
// checksum algorithm is given, that it is one of the enumerated values.
func NewArtifactDefinition(typ, file, checksumAlgorithm string) (*ArtifactDefinition, error) {
	if typ == "" {
		return nil, invalid("type", "is required")
	}
	if file == "" {
		return nil, invalid("file", "is required")
	}
	if checksumAlgorithm != "" && !checksumAlgorithms[checksumAlgorithm] {
		return nil, invalid("checksum_algorithm", "must be one of MD5, SHA-1, SHA-256, SHA-512")
	}
	return &ArtifactDefinition{
		Type:              typ,
		File:              file,
		ChecksumAlgorithm: checksumAlgorithm,
		Properties:        ordered.NewMap[Value](),
	}, nil
}

// GroupDefinition groups node templates for shared policy application.
type GroupDefinition struct {
	Type       string
	Properties *ordered.Map[Value]
	Attributes *ordered.Map[Value]
	Members    []string
}

// NewGroupDefinition requires a type, per §3.2.
func NewGroupDefinition(typ string) (*GroupDefinition, error) {
	if typ == "" {
		return nil, invalid("type", "is required")
	}
	return &GroupDefinition{
		Type:       typ,
		Properties: ordered.NewMap[Value](),
		Attributes: ordered.NewMap[Value](),
	}, nil
}

// PolicyEntry is one element of the service template's ordered policy
// list: a singleton mapping {name: policy}.
type PolicyEntry struct {
	Name   string
	Policy PolicyDefinition
}

// PolicyDefinition applies a policy type to a set of targets.
type PolicyDefinition struct {
	Type       string
	Properties *ordered.Map[Value]
	Targets    []string
	Triggers   *ordered.Map[TriggerDefinition]
}

// NewPolicyDefinition requires a type.
func NewPolicyDefinition(typ string) (*PolicyDefinition, error) {
	if typ == "" {
		return nil, invalid("type", "is required")
	}
	return &PolicyDefinition{
		Type:       typ,
		Properties: ordered.NewMap[Value](),
		Triggers:   ordered.NewMap[TriggerDefinition](),
	}, nil
}

// TriggerDefinition binds a policy event to an action.
type TriggerDefinition struct {
	Event     string
	Action    Value
	Condition Value
}

// NewTriggerDefinition requires event and action, per §3.2.
func NewTriggerDefinition(event string, action Value) (*TriggerDefinition, error) {
	if event == "" {
		return nil, invalid("event", "is required")
	}
	if action == nil {
		return nil, invalid("action", "is required")
	}
	return &TriggerDefinition{Event: event, Action: action}, nil
}

// ParameterDefinition describes a single input, output, or property
// parameter. It enforces the value/mapping exclusivity and the
// default-forbidden-when-not-required rule from §3.2.
type ParameterDefinition struct {
	Type        string
	Value       Value
	Mapping     Value
	Required    bool
	Default     Value
	Validation  Value
	KeySchema   Value
	EntrySchema Value

	hasValue   bool
	hasMapping bool
	hasDefault bool
}

// NewParameterDefinition returns a required parameter definition with no
// value, mapping, or default set; use the With* setters to populate it
// and validate invariants as they are assigned.
func NewParameterDefinition() *ParameterDefinition {
	return &ParameterDefinition{Required: true}
}

// WithValue sets Value, rejecting it if Mapping is already set.
func (p *ParameterDefinition) WithValue(v Value) error {
	if p.hasMapping {
		return invalid("value", "mutually exclusive with mapping")
	}
	p.Value = v
	p.hasValue = true
	return nil
}

// WithMapping sets Mapping, rejecting it if Value is already set.
func (p *ParameterDefinition) WithMapping(v Value) error {
	if p.hasValue {
		return invalid("mapping", "mutually exclusive with value")
	}
	p.Mapping = v
	p.hasMapping = true
	return nil
}

// WithRequired sets Required. If false and a default was already set,
// the existing default is rejected per §3.2.
func (p *ParameterDefinition) WithRequired(required bool) error {
	if !required && p.hasDefault {
		return invalid("default", "forbidden when required is false")
	}
	p.Required = required
	return nil
}

// WithDefault sets Default, rejecting it when Required is false.
func (p *ParameterDefinition) WithDefault(v Value) error {
	if !p.Required {
		return invalid("default", "forbidden when required is false")
	}
	p.Default = v
	p.hasDefault = true
	return nil
}

// WorkflowDefinition describes an imperative workflow. Steps and
// Implementation are mutually exclusive per §3.2.
type WorkflowDefinition struct {
	Inputs         *ordered.Map[ParameterDefinition]
	Precondition   Value
	Steps          *ordered.Map[Value]
	Implementation Value
	Outputs        *ordered.Map[ParameterDefinition]

	hasSteps          bool
	hasImplementation bool
}

// NewWorkflowDefinition returns an empty workflow definition.
func NewWorkflowDefinition() *WorkflowDefinition {
	return &WorkflowDefinition{
		Inputs:  ordered.NewMap[ParameterDefinition](),
		Outputs: ordered.NewMap[ParameterDefinition](),
	}
}

// WithSteps sets Steps, rejecting it if Implementation is already set.
func (w *WorkflowDefinition) WithSteps(steps *ordered.Map[Value]) error {
	if w.hasImplementation {
		return invalid("steps", "mutually exclusive with implementation")
	}
	w.Steps = steps
	w.hasSteps = true
	return nil
}

// WithImplementation sets Implementation, rejecting it if Steps is set.
func (w *WorkflowDefinition) WithImplementation(impl Value) error {
	if w.hasSteps {
		return invalid("implementation", "mutually exclusive with steps")
	}
	w.Implementation = impl
	w.hasImplementation = true
	return nil
}
