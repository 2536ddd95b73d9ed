package refs

import (
	"strings"

	"github.com/edelwud/tf2tosca/internal/terraform/tfplan"
)

// Reference is one extracted dependency edge: a property on the source
// resource that points at another resource address, classified into a
// TOSCA relationship type.
type Reference struct {
	PropertyName     string
	TargetAddress    string
	RelationshipType string
}

// Relationship type names, matching the TOSCA normative relationship
// types this translator emits.
const (
	DependsOn = "DependsOn"
	LinksTo   = "LinksTo"
	ConnectsTo = "ConnectsTo"
	HostedOn  = "HostedOn"
)

// Extract finds every dependency a resource has on another resource,
// via three signals in priority order:
//
//  1. configuration expressions - a property's "references" list, with
//     any trailing ".id" stripped and any "var."-prefixed reference
//     skipped (those are variable references, not resource edges).
//  2. depends_on - explicit dependency addresses on the resource itself.
//  3. value-pattern heuristics - e.g. a vpc_id property whose value
//     matches a known aws_vpc resource's id, used only when depends_on
//     was empty (an explicit depends_on is assumed to be complete).
//
// Results are deduplicated by target address, keeping the first
// occurrence, so a resource referenced through multiple properties only
// produces one requirement.
func Extract(plan *tfplan.ParsedPlan, resource *tfplan.Resource) []Reference {
	var found []Reference

	if cr := plan.Configuration.ConfigResourceByAddress(resource.Address); cr != nil {
		found = append(found, fromConfiguration(cr)...)
	}

	if len(resource.DependsOn) > 0 {
		for _, dep := range resource.DependsOn {
			found = append(found, Reference{
				PropertyName:     "dependency",
				TargetAddress:    dep,
				RelationshipType: classify("dependency", dep),
			})
		}
	} else {
		found = append(found, fromValuePatterns(plan, resource)...)
	}

	return dedupeByTarget(found)
}

func fromConfiguration(cr *tfplan.ConfigResource) []Reference {
	var out []Reference
	for propName, expr := range cr.Expressions {
		seen := make(map[string]bool)
		for _, ref := range expr.References {
			if ref == "" || seen[ref] {
				continue
			}
			seen[ref] = true
			if strings.HasPrefix(ref, "var.") {
				continue
			}
			target := ref
			if strings.HasSuffix(target, ".id") {
				target = strings.TrimSuffix(target, ".id")
			}
			out = append(out, Reference{
				PropertyName:     propName,
				TargetAddress:    target,
				RelationshipType: classify(propName, target),
			})
		}
	}
	return out
}

// fromValuePatterns infers a dependency from a resolved property value
// that matches another resource's reported id. Extract uses it whenever
// the resource has no explicit depends_on, in addition to any
// configuration-expression references.
func fromValuePatterns(plan *tfplan.ParsedPlan, resource *tfplan.Resource) []Reference {
	vpcID, ok := resource.Values["vpc_id"].(string)
	if !ok || vpcID == "" {
		return nil
	}
	target := findResourceByID(plan, "aws_vpc", vpcID)
	if target == "" {
		return nil
	}
	return []Reference{{
		PropertyName:     "vpc_id",
		TargetAddress:    target,
		RelationshipType: classify("vpc_id", target),
	}}
}

func findResourceByID(plan *tfplan.ParsedPlan, resourceType, id string) string {
	search := func(resources []tfplan.Resource) string {
		for _, r := range resources {
			if r.Type != resourceType {
				continue
			}
			if rid, _ := r.Values["id"].(string); rid == id {
				return r.Address
			}
		}
		return ""
	}
	if plan.State != nil {
		if addr := search(collectAll(plan.State.RootModule)); addr != "" {
			return addr
		}
	}
	return search(plan.PlannedValues.AllResources())
}

func collectAll(m tfplan.ModuleResources) []tfplan.Resource {
	out := append([]tfplan.Resource(nil), m.Resources...)
	for _, child := range m.ChildModules {
		out = append(out, collectAll(child)...)
	}
	return out
}

func dedupeByTarget(refs []Reference) []Reference {
	seen := make(map[string]bool, len(refs))
	out := make([]Reference, 0, len(refs))
	for _, r := range refs {
		if seen[r.TargetAddress] {
			continue
		}
		seen[r.TargetAddress] = true
		out = append(out, r)
	}
	return out
}

// classify assigns a TOSCA relationship type to a dependency edge based
// on the Terraform property name that produced it, falling back to the
// target resource's type for the handful of property names that are
// ambiguous on their own.
func classify(propertyName, targetAddress string) string {
	switch propertyName {
	case "vpc_id", "subnet_id", "subnet_ids", "ref_vpc_id":
		return DependsOn
	case "security_group_ids", "security_groups":
		return DependsOn
	case "load_balancer", "load_balancer_arn", "target_group", "target_group_arn":
		return ConnectsTo
	case "instance_id", "instance_ids":
		return HostedOn
	}
	lower := strings.ToLower(propertyName)
	if strings.Contains(lower, "network") {
		addr := ParseAddress(targetAddress)
		if addr.Type == "aws_vpc" || addr.Type == "aws_subnet" {
			return LinksTo
		}
		return DependsOn
	}
	return DependsOn
}
