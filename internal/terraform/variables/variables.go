// Package variables implements the Terraform-variable-to-TOSCA-input
// bridge (C4): extracting variable declarations from a parsed plan,
// converting them to TOSCA input parameters, and resolving resource
// properties to either a concrete value or a {"$get_input": name}
// reference depending on where the value is headed.
//
// The one rule every caller must respect: resolve() in the Metadata
// context never returns $get_input. Metadata is documentation, not
// executable TOSCA, so it always carries the concrete value even when
// the underlying property is variable-backed.
package variables

import (
	"fmt"
	"sort"
	"strings"

	"github.com/edelwud/tf2tosca/internal/terraform/tfplan"
	"github.com/edelwud/tf2tosca/pkg/log"
)

// Context is where a resolved value will be used. Metadata is the one
// context that forbids $get_input.
type Context int

const (
	Property Context = iota
	Metadata
	Attribute
)

// TerraformVariable is a single `variable "name" {}` block.
type TerraformVariable struct {
	Name        string
	Type        string
	Default     any
	HasDefault  bool
	Description string
	Sensitive   bool
}

// ToscaInput is the TOSCA-facing projection of a TerraformVariable.
type ToscaInput struct {
	Name        string
	Type        string
	Description string
	Default     any
	Required    bool
}

var terraformToToscaType = map[string]string{
	"string": "string",
	"number": "float",
	"bool":   "boolean",
	"list":   "list",
	"set":    "list",
	"tuple":  "list",
	"map":    "map",
	"object": "map",
}

func toscaType(terraformType string) string {
	if terraformType == "" {
		return "string"
	}
	if t, ok := terraformToToscaType[terraformType]; ok {
		return t
	}
	switch {
	case strings.HasPrefix(terraformType, "list("), strings.HasPrefix(terraformType, "set("), strings.HasPrefix(terraformType, "tuple("):
		return "list"
	case strings.HasPrefix(terraformType, "map("), strings.HasPrefix(terraformType, "object("):
		return "map"
	}
	log.Warnf("unknown terraform variable type %q, using string", terraformType)
	return "string"
}

type reference struct {
	resourceAddress string
	propertyName    string
}

// VariableContext orchestrates variable extraction, conversion, and property
// resolution for one translation run. It is built once from a parsed
// plan and shared read-only by every mapper invocation.
type VariableContext struct {
	variables map[string]TerraformVariable
	inputs    map[string]ToscaInput
	inputOrder []string

	varRefs        map[reference]string
	resolvedValues map[reference]any
}

// Build extracts variables, converts them to TOSCA inputs, and builds
// the reference/resolved-value maps from a parsed plan. References are
// not checked against the declared variables: a var. reference to an
// undeclared variable is recorded like any other.
func Build(plan *tfplan.ParsedPlan) *VariableContext {
	ctx := &VariableContext{
		variables:      make(map[string]TerraformVariable),
		inputs:         make(map[string]ToscaInput),
		varRefs:        make(map[reference]string),
		resolvedValues: make(map[reference]any),
	}

	names := make([]string, 0, len(plan.Configuration.RootModule.Variables))
	for name := range plan.Configuration.RootModule.Variables {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		v := plan.Configuration.RootModule.Variables[name]
		ctx.variables[name] = TerraformVariable{
			Name:        name,
			Type:        v.Type,
			Default:     v.Default,
			HasDefault:  v.HasDefault,
			Description: v.Description,
			Sensitive:   v.Sensitive,
		}
		ctx.inputOrder = append(ctx.inputOrder, name)
		ctx.inputs[name] = ToscaInput{
			Name:        name,
			Type:        toscaType(v.Type),
			Description: v.Description,
			Default:     v.Default,
			Required:    !v.HasDefault,
		}
	}

	for _, res := range plan.Configuration.RootModule.Resources {
		for propName, expr := range res.Expressions {
			for _, ref := range expr.References {
				if !strings.HasPrefix(ref, "var.") {
					continue
				}
				varName := strings.TrimPrefix(ref, "var.")
				ctx.varRefs[reference{res.Address, propName}] = varName
			}
		}
	}

	collectResolvedValues(plan.PlannedValues.RootModule, ctx.resolvedValues)

	log.Debugf("variable context built: %d variables, %d tosca inputs, %d references",
		len(ctx.variables), len(ctx.inputs), len(ctx.varRefs))

	return ctx
}

func collectResolvedValues(m tfplan.ModuleResources, out map[reference]any) {
	for _, r := range m.Resources {
		for propName, value := range r.Values {
			out[reference{r.Address, propName}] = value
		}
	}
	for _, child := range m.ChildModules {
		collectResolvedValues(child, out)
	}
}

// ToscaInputs returns every TOSCA input, sorted by variable name.
func (c *VariableContext) ToscaInputs() []ToscaInput {
	out := make([]ToscaInput, 0, len(c.inputOrder))
	for _, name := range c.inputOrder {
		out = append(out, c.inputs[name])
	}
	return out
}

// IsVariableBacked reports whether a resource property's value comes
// from a Terraform variable reference.
func (c *VariableContext) IsVariableBacked(resourceAddress, propertyName string) bool {
	_, ok := c.varRefs[reference{resourceAddress, propertyName}]
	return ok
}

// VariableName returns the variable backing a property, if any.
func (c *VariableContext) VariableName(resourceAddress, propertyName string) (string, bool) {
	name, ok := c.varRefs[reference{resourceAddress, propertyName}]
	return name, ok
}

// Concrete returns the resolved (planned) value for a property,
// regardless of whether it is variable-backed. Used whenever a mapper
// needs the actual value to make a mapping decision (e.g. branching on
// an engine name), even when the same value will be emitted elsewhere
// as $get_input.
func (c *VariableContext) Concrete(resourceAddress, propertyName string) (any, bool) {
	v, ok := c.resolvedValues[reference{resourceAddress, propertyName}]
	return v, ok
}

// Resolve returns either {"$get_input": name} or the concrete value,
// depending on context. Metadata context never returns $get_input: see
// the package doc comment for why.
func (c *VariableContext) Resolve(resourceAddress, propertyName string, context Context) any {
	if context != Metadata {
		if varName, ok := c.VariableName(resourceAddress, propertyName); ok {
			return map[string]any{"$get_input": varName}
		}
	}
	v, _ := c.Concrete(resourceAddress, propertyName)
	return v
}

// LogUsageSummary logs a grouped-by-variable breakdown of every
// property that ended up backed by a variable, useful when deciding
// whether an input is genuinely load-bearing or merely declared.
func (c *VariableContext) LogUsageSummary() {
	log.Infof("variable usage summary: %d variables, %d tosca inputs, %d references",
		len(c.variables), len(c.inputs), len(c.varRefs))

	usage := make(map[string][]string)
	for ref, varName := range c.varRefs {
		usage[varName] = append(usage[varName], fmt.Sprintf("%s.%s", ref.resourceAddress, ref.propertyName))
	}

	names := make([]string, 0, len(usage))
	for name := range usage {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		sites := usage[name]
		sort.Strings(sites)
		log.Infof("variable %q used in: %s", name, strings.Join(sites, ", "))
	}
}
