// Package engine implements the mapper dispatch and orchestration
// described in spec §4.7 (C7) and the error taxonomy of §4.8 (C8): it
// is the only package that owns the two-pass walk over planned_values,
// the variable-context/reference-resolver wiring mappers depend on,
// and the translation from a mapper failure into one of the closed set
// of error kinds the CLI front end exit-codes against.
package engine

import (
	"errors"

	"github.com/edelwud/tf2tosca/internal/terraform/mappers"
	"github.com/edelwud/tf2tosca/internal/terraform/tfplan"
	"github.com/edelwud/tf2tosca/internal/terraform/variables"
	"github.com/edelwud/tf2tosca/internal/tosca/builder"
	"github.com/edelwud/tf2tosca/internal/tosca/model"
	"github.com/edelwud/tf2tosca/pkg/log"
)

// SimpleProfileImportURL is the import entry §6.3 requires in every
// emitted file.
const SimpleProfileImportURL = "https://docs.oasis-open.org/tosca/TOSCA-simple-profile/v2.0/TOSCA-simple-profile-v2.0.yaml"

// Options configures one translation run.
type Options struct {
	// Registry overrides the default mapper registry; nil uses
	// mappers.NewRegistry().
	Registry *mappers.Registry
	// StrictUnsupported turns an unsupported resource type from a
	// logged skip into an UnsupportedResourceError, aborting
	// translation. Off by default per §7 ("never an error").
	StrictUnsupported bool
}

// Translate runs the full C7 pipeline against an already-decoded plan:
// build the variable context, seed TOSCA inputs, walk resources in two
// passes (primaries in document order, then post-pass mutators), and
// return the built ToscaFile ready for C3 emission. It never invokes
// terraform itself and never touches the filesystem - both are the
// CLI front end's concern (internal/terraform/planrun, internal/tosca/yamlenc).
func Translate(plan *tfplan.ParsedPlan, opts Options) (*model.ToscaFile, error) {
	if plan == nil {
		return nil, &InvalidInputError{Reason: "parsed plan is nil"}
	}

	registry := opts.Registry
	if registry == nil {
		registry = mappers.NewRegistry()
	}

	vars := variables.Build(plan)
	ctx := &mappers.MappingContext{Plan: plan, Vars: vars}

	fileBuilder := builder.CreateToscaFile(SimpleProfileImportURL)
	service := fileBuilder.Service()
	for _, input := range vars.ToscaInputs() {
		inputOpts := []builder.InputOption{builder.InputRequired(input.Required)}
		if input.Default != nil {
			inputOpts = append(inputOpts, builder.InputDefault(input.Default))
		}
		service.WithInput(input.Name, input.Type, inputOpts...)
	}

	resources := plan.PlannedValues.AllResources()

	for i := range resources {
		r := &resources[i]
		if registry.IsPostPassType(r.Type) {
			continue
		}
		mapper := registry.Primary(r.Type)
		if mapper == nil {
			if opts.StrictUnsupported {
				return nil, &UnsupportedResourceError{ResourceType: r.Type}
			}
			log.Warnf("skipping unsupported resource type %q (%s)", r.Type, r.Address)
			continue
		}
		if err := mapper.MapResource(r, service, ctx); err != nil {
			return nil, &ResourceMappingError{ResourceType: r.Type, ResourceName: r.Name, Cause: err}
		}
	}

	for i := range resources {
		r := &resources[i]
		mapper := registry.PostPass(r.Type)
		if mapper == nil {
			continue
		}
		if err := mapper.MapResource(r, service, ctx); err != nil {
			var missing *mappers.MissingNodeError
			if errors.As(err, &missing) {
				return nil, &PostPassMissingNodeError{ResourceType: r.Type, ResourceName: r.Name, Cause: err}
			}
			return nil, &ResourceMappingError{ResourceType: r.Type, ResourceName: r.Name, Cause: err}
		}
	}

	vars.LogUsageSummary()

	file, err := fileBuilder.Build()
	if err != nil {
		return nil, &InvalidTemplateError{Cause: err}
	}
	return file, nil
}

// ParsePlan decodes raw plan JSON into the typed intermediate, wrapping
// a decode failure as ParseInputMalformedError so the CLI can exit-code
// it distinctly from a mapping failure.
func ParsePlan(data []byte) (*tfplan.ParsedPlan, error) {
	plan, err := tfplan.Parse(data)
	if err != nil {
		return nil, &ParseInputMalformedError{Cause: err}
	}
	return plan, nil
}

// ValidateInputPath performs the eager precondition check of §4.7 step
// 1: the CLI front end still owns directory discovery/terraform
// invocation (internal/discovery, internal/terraform/planrun), but any
// collaborator that hands the engine an empty byte slice should get a
// clear InvalidInput instead of a confusing parse error.
func ValidateInputPath(data []byte) error {
	if len(data) == 0 {
		return &InvalidInputError{Reason: "plan document is empty"}
	}
	return nil
}
