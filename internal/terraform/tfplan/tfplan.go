// Package tfplan decodes a Terraform plan JSON document into a typed
// intermediate representation. Mappers (internal/terraform/mappers)
// never see the raw JSON: they receive ParsedPlan and its resource
// structs, so a malformed or surprising plan shape fails once, at the
// parse boundary, instead of leaking map[string]any lookups into every
// mapper.
//
// This is deliberately its own contract rather than a thin wrapper
// around hashicorp/terraform-json's Plan type: the shape this package
// decodes is the subset documented for this translator (configuration
// expressions, planned_values with child_modules, optional state), and
// keeping it separate means a future terraform-json upgrade can't
// silently change field names out from under the engine.
package tfplan

import (
	"encoding/json"
	"fmt"
)

// ParsedPlan is the root of the decoded plan document.
type ParsedPlan struct {
	Configuration  Configuration
	PlannedValues  PlannedValues
	State          *StateValues
}

// Configuration holds the root_module's static declarations: variables
// and the expression trees of every resource, used for reference
// extraction (internal/terraform/refs) independent of any planned or
// applied value.
type Configuration struct {
	RootModule ConfigRootModule
}

type ConfigRootModule struct {
	Variables map[string]ConfigVariable
	Resources []ConfigResource
}

// ConfigVariable is one entry of configuration.root_module.variables.
type ConfigVariable struct {
	Type        string
	Default     any
	Description string
	Sensitive   bool
	HasDefault  bool
}

// ConfigResource is one entry of configuration.root_module.resources.
type ConfigResource struct {
	Address     string
	Type        string
	Name        string
	Expressions map[string]Expression
}

// Expression is a single property's expression entry: either a list of
// references to other resources/variables, or a constant value, per
// the plan JSON's expressions schema.
type Expression struct {
	References     []string
	ConstantValue  any
	HasConstant    bool
}

// PlannedValues mirrors planned_values, recursively walked through
// child_modules by AllResources().
type PlannedValues struct {
	RootModule ModuleResources
}

// ModuleResources is a module's resource list plus any nested modules.
type ModuleResources struct {
	Address      string
	Resources    []Resource
	ChildModules []ModuleResources
}

// Resource is one planned (or state) resource instance.
type Resource struct {
	Address   string
	Type      string
	Name      string
	Values    map[string]any
	DependsOn []string
}

// StateValues mirrors the optional state.values section, present when
// the plan was produced against existing infrastructure.
type StateValues struct {
	RootModule ModuleResources
}

// AllResources walks planned_values' root module and every nested
// child module depth-first, in document order, yielding each resource
// with its address already qualified by the owning module's prefix.
func (p *PlannedValues) AllResources() []Resource {
	return collectResources(p.RootModule)
}

func collectResources(m ModuleResources) []Resource {
	var out []Resource
	out = append(out, m.Resources...)
	for _, child := range m.ChildModules {
		out = append(out, collectResources(child)...)
	}
	return out
}

// ConfigResourceByAddress returns the configuration entry for an
// address, or nil if the plan has no matching resource (e.g. the
// resource was destroyed and no longer appears in configuration).
func (c *Configuration) ConfigResourceByAddress(address string) *ConfigResource {
	for i := range c.RootModule.Resources {
		if c.RootModule.Resources[i].Address == address {
			return &c.RootModule.Resources[i]
		}
	}
	return nil
}

// wireFormat mirrors the subset of Terraform's plan JSON this package
// understands, decoded with encoding/json before being converted into
// the exported, already-validated structs above.
type wireFormat struct {
	Plan struct {
		Configuration wireConfiguration `json:"configuration"`
		PlannedValues wireModule        `json:"planned_values"`
		State         *wireState        `json:"state"`
	} `json:"plan"`

	// The wrapper above models §6.2's optional `plan` sub-mapping; these
	// top-level fields are used when the input is the plan document
	// itself rather than wrapped.
	Configuration wireConfiguration `json:"configuration"`
	PlannedValues wireModule        `json:"planned_values"`
	State         *wireState        `json:"state"`
}

type wireConfiguration struct {
	RootModule struct {
		Variables map[string]wireVariable `json:"variables"`
		Resources []wireConfigResource    `json:"resources"`
	} `json:"root_module"`
}

type wireVariable struct {
	Type        json.RawMessage `json:"type"`
	Default     any             `json:"default"`
	Description string          `json:"description"`
	Sensitive   bool            `json:"sensitive"`
}

type wireConfigResource struct {
	Address     string                    `json:"address"`
	Type        string                    `json:"type"`
	Name        string                    `json:"name"`
	Expressions map[string]wireExpression `json:"expressions"`
}

type wireExpression struct {
	References    []string `json:"references"`
	ConstantValue any      `json:"constant_value"`
}

type wireModule struct {
	RootModule wireModuleResources `json:"root_module"`
}

type wireModuleResources struct {
	Address      string             `json:"address"`
	Resources    []wireResource     `json:"resources"`
	ChildModules []wireModuleResources `json:"child_modules"`
}

type wireResource struct {
	Address   string         `json:"address"`
	Type      string         `json:"type"`
	Name      string         `json:"name"`
	Values    map[string]any `json:"values"`
	DependsOn []string       `json:"depends_on"`
}

type wireState struct {
	Values wireModule `json:"values"`
}

// Parse decodes raw Terraform plan JSON into a ParsedPlan. It accepts
// both a bare plan document and one wrapped in a top-level "plan" key.
func Parse(data []byte) (*ParsedPlan, error) {
	var w wireFormat
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, &MalformedError{Reason: err.Error()}
	}

	src := w
	if w.Plan.PlannedValues.RootModule.Address != "" || len(w.Plan.Configuration.RootModule.Resources) > 0 || len(w.Plan.Configuration.RootModule.Variables) > 0 {
		src = wireFormat{
			Configuration: w.Plan.Configuration,
			PlannedValues: w.Plan.PlannedValues,
			State:         w.Plan.State,
		}
	}

	parsed := &ParsedPlan{
		Configuration: Configuration{
			RootModule: ConfigRootModule{
				Variables: make(map[string]ConfigVariable, len(src.Configuration.RootModule.Variables)),
			},
		},
	}

	for name, v := range src.Configuration.RootModule.Variables {
		var typ string
		if len(v.Type) > 0 {
			// Terraform emits the type constraint either as a bare string
			// ("string") or, for complex types, as a quoted HCL type
			// expression ("list(string)"); both decode fine as a raw string.
			var s string
			if err := json.Unmarshal(v.Type, &s); err == nil {
				typ = s
			} else {
				typ = string(v.Type)
			}
		}
		parsed.Configuration.RootModule.Variables[name] = ConfigVariable{
			Type:        typ,
			Default:     v.Default,
			Description: v.Description,
			Sensitive:   v.Sensitive,
			HasDefault:  v.Default != nil,
		}
	}

	for _, r := range src.Configuration.RootModule.Resources {
		exprs := make(map[string]Expression, len(r.Expressions))
		for prop, e := range r.Expressions {
			exprs[prop] = Expression{
				References:    e.References,
				ConstantValue: e.ConstantValue,
				HasConstant:   e.ConstantValue != nil,
			}
		}
		parsed.Configuration.RootModule.Resources = append(parsed.Configuration.RootModule.Resources, ConfigResource{
			Address:     r.Address,
			Type:        r.Type,
			Name:        r.Name,
			Expressions: exprs,
		})
	}

	parsed.PlannedValues = PlannedValues{RootModule: convertModule(src.PlannedValues.RootModule)}

	if src.State != nil {
		sv := StateValues{RootModule: convertModule(src.State.Values.RootModule)}
		parsed.State = &sv
	}

	if len(parsed.PlannedValues.RootModule.Resources) == 0 && len(parsed.PlannedValues.RootModule.ChildModules) == 0 {
		return nil, &MalformedError{Reason: "plan has no planned_values.root_module"}
	}

	return parsed, nil
}

func convertModule(m wireModuleResources) ModuleResources {
	out := ModuleResources{Address: m.Address}
	for _, r := range m.Resources {
		out.Resources = append(out.Resources, Resource{
			Address:   r.Address,
			Type:      r.Type,
			Name:      r.Name,
			Values:    r.Values,
			DependsOn: r.DependsOn,
		})
	}
	for _, child := range m.ChildModules {
		out.ChildModules = append(out.ChildModules, convertModule(child))
	}
	return out
}

// MalformedError reports that the input could not be decoded as a
// Terraform plan document at all (ParseInputMalformed in the engine's
// error taxonomy).
type MalformedError struct {
	Reason string
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("malformed terraform plan: %s", e.Reason)
}
