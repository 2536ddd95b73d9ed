package mappers

import (
	"fmt"
	"strings"

	"github.com/edelwud/tf2tosca/internal/terraform/refs"
	"github.com/edelwud/tf2tosca/internal/terraform/tfplan"
	"github.com/edelwud/tf2tosca/internal/tosca/builder"
	"github.com/edelwud/tf2tosca/internal/tosca/model"
	"github.com/edelwud/tf2tosca/internal/tosca/ordered"
	"github.com/edelwud/tf2tosca/pkg/log"
)

// nodeNameFor generates the TOSCA node name for a resource address,
// delegating to refs.NodeName (module/index-aware). It takes only the
// address; the Terraform resource type is not part of the generated
// name: this profile's node names are address-derived, not type-prefixed.
func nodeNameFor(address string) string {
	return refs.NodeName(address)
}

// attachDependencies adds one requirement per extracted reference,
// named after the Terraform property that produced it, pointed at the
// referenced resource's node and classified with the relationship type
// refs.Extract already assigned. This is the pattern nearly every
// single-resource mapper repeats after setting its own properties and
// metadata.
func attachDependencies(node *builder.NodeBuilder, ctx *MappingContext, resource *tfplan.Resource) {
	for _, ref := range ctx.References(resource) {
		target := nodeNameFor(ref.TargetAddress)
		node.AddRequirement(ref.PropertyName).
			ToNode(target).
			WithRelationship(ref.RelationshipType).
			AndNode()
		log.Debugf("added %s requirement %q -> %q (%s)", ref.PropertyName, node.Name(), target, ref.RelationshipType)
	}
}

// tagsAllDiffer reports whether tagsAll carries anything beyond tags,
// the condition every mapper uses to decide whether aws_tags_all is
// worth emitting alongside aws_tags.
func tagsAllDiffer(tags, tagsAll map[string]any) bool {
	if len(tagsAll) == 0 {
		return false
	}
	if len(tagsAll) != len(tags) {
		return true
	}
	for k, v := range tagsAll {
		if tv, ok := tags[k]; !ok || fmt.Sprint(tv) != fmt.Sprint(v) {
			return true
		}
	}
	return false
}

// asStringMap coerces a decoded JSON value to map[string]any, returning
// nil (not an error) for absent or differently-shaped values - Terraform
// tag blocks are always objects when present at all.
func asStringMap(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

// asSlice coerces a decoded JSON value to []any.
func asSlice(v any) []any {
	s, _ := v.([]any)
	return s
}

// targetResourceType extracts the Terraform resource type from a
// "type.name" style reference, as produced by refs.Extract.
func targetResourceType(targetAddress string) string {
	return refs.ParseAddress(targetAddress).Type
}

// findConfigReference locates the single-valued reference a config
// expression carries for propertyName, taking the longest (most
// specific) entry when several are present and stripping a trailing
// ".id" or ".arn" accessor (the two attribute suffixes AWS
// cross-references use). Used by post-pass mappers that must resolve a
// resource's own configuration to find the node they mutate, since
// planned_values alone does not preserve unresolved references.
func findConfigReference(ctx *MappingContext, r *tfplan.Resource, propertyName string) string {
	configResource := ctx.Plan.Configuration.ConfigResourceByAddress(r.Address)
	if configResource == nil {
		return ""
	}
	expr, ok := configResource.Expressions[propertyName]
	if !ok || len(expr.References) == 0 {
		return ""
	}

	best := ""
	for _, ref := range expr.References {
		if len(ref) > len(best) {
			best = ref
		}
	}
	best = strings.TrimSuffix(best, ".id")
	best = strings.TrimSuffix(best, ".arn")
	return best
}

// formatGB renders a numeric size value as the "N GB" string the
// storage node's size property expects, matching aws_ebs_volume.py's
// f"{size} GB" formatting.
func formatGB(v any) string {
	switch n := v.(type) {
	case float64:
		if n == float64(int64(n)) {
			return fmt.Sprintf("%d GB", int64(n))
		}
		return fmt.Sprintf("%g GB", n)
	case int:
		return fmt.Sprintf("%d GB", n)
	default:
		return fmt.Sprintf("%v GB", v)
	}
}

// notEmpty reports whether v is a present, non-blank value.
func notEmpty(v any) bool {
	if v == nil {
		return false
	}
	if s, ok := v.(string); ok {
		return s != ""
	}
	return true
}

// setIfPresent sets key on meta unless v is nil, "", or false, matching
// the Python mappers' pervasive "if value:" truthiness guard before
// adding an optional metadata field.
func setIfPresent(meta *ordered.Map[model.Value], key string, v any) {
	switch t := v.(type) {
	case nil:
		return
	case string:
		if t == "" {
			return
		}
	case bool:
		if !t {
			return
		}
	}
	meta.Set(key, v)
}
