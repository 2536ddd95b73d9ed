package mappers

import (
	"encoding/json"

	"github.com/edelwud/tf2tosca/internal/terraform/tfplan"
	"github.com/edelwud/tf2tosca/internal/tosca/builder"
	"github.com/edelwud/tf2tosca/pkg/log"
)

// parsePolicyDocument decodes a JSON IAM policy document string into a
// structured value for YAML metadata, falling back to the raw string
// if it isn't valid JSON. Plain encoding/json is used here rather than
// a third-party codec: this is a one-shot decode of an opaque
// provider-supplied string, not a schema the rest of the module works
// against, so nothing in the corpus's stack (HCL/cty, YAML) fits better.
func parsePolicyDocument(raw string) any {
	if raw == "" {
		return nil
	}
	var parsed any
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		log.Warnf("failed to parse policy document as JSON: %v, storing as string", err)
		return raw
	}
	return parsed
}

// IAMRoleMapper maps aws_iam_role to a SoftwareComponent node, the
// closest simple-profile fit for an entity that bundles permissions and
// assumable-by configuration rather than running software. Grounded on
// aws_iam_role.py.
type IAMRoleMapper struct{}

func (IAMRoleMapper) CanMap(t string) bool { return t == "aws_iam_role" }

func (IAMRoleMapper) MapResource(r *tfplan.Resource, b *builder.ServiceTemplateBuilder, ctx *MappingContext) error {
	log.Infof("mapping IAM role resource %q", r.Address)

	name := nodeNameFor(r.Address)
	node := b.AddNode(name, "SoftwareComponent").
		WithDescription("AWS IAM Role defining permissions and access policies").
		WithProperty("component_version", "1.0")

	meta := node.Metadata()
	meta.Set("original_resource_type", r.Type)
	meta.Set("original_resource_name", r.Name)
	meta.Set("aws_component_type", "IAMRole")
	setIfPresent(meta, "aws_role_name", ctx.Meta(r.Address, "name"))

	if policy, ok := ctx.Meta(r.Address, "assume_role_policy").(string); ok && policy != "" {
		if parsed := parsePolicyDocument(policy); parsed != nil {
			meta.Set("aws_assume_role_policy", parsed)
		}
		node.AddArtifact("assume_role_policy", "application/json", policy).AndNode()
	}

	setIfPresent(meta, "aws_role_description", ctx.Meta(r.Address, "description"))
	setIfPresent(meta, "aws_role_path", ctx.Meta(r.Address, "path"))
	setIfPresent(meta, "aws_max_session_duration", ctx.Meta(r.Address, "max_session_duration"))
	setIfPresent(meta, "aws_permissions_boundary", ctx.Meta(r.Address, "permissions_boundary"))
	if v, ok := ctx.Meta(r.Address, "force_detach_policies").(bool); ok {
		meta.Set("aws_force_detach_policies", v)
	}

	if inline := asSlice(ctx.Meta(r.Address, "inline_policy")); len(inline) > 0 {
		var processed []map[string]any
		for _, raw := range inline {
			p := asStringMap(raw)
			if p == nil {
				continue
			}
			entry := map[string]any{}
			if n, ok := p["name"]; ok && notEmpty(n) {
				entry["name"] = n
			}
			if doc, ok := p["policy"].(string); ok && doc != "" {
				entry["policy"] = parsePolicyDocument(doc)
			}
			if len(entry) > 0 {
				processed = append(processed, entry)
			}
		}
		if len(processed) > 0 {
			meta.Set("aws_inline_policies", processed)
		}
	}

	if arns := asSlice(ctx.Meta(r.Address, "managed_policy_arns")); len(arns) > 0 {
		meta.Set("aws_managed_policy_arns", arns)
	}

	tags := asStringMap(ctx.Meta(r.Address, "tags"))
	tagsAll := asStringMap(ctx.Meta(r.Address, "tags_all"))
	if len(tags) > 0 {
		meta.Set("aws_tags", tags)
	}
	if tagsAllDiffer(tags, tagsAll) {
		meta.Set("aws_tags_all", tagsAll)
	}

	setIfPresent(meta, "aws_region", ctx.Meta(r.Address, "region"))
	setIfPresent(meta, "aws_arn", ctx.Meta(r.Address, "arn"))
	setIfPresent(meta, "aws_create_date", ctx.Meta(r.Address, "create_date"))
	setIfPresent(meta, "aws_unique_id", ctx.Meta(r.Address, "unique_id"))

	attachDependencies(node, ctx, r)
	return nil
}

// IAMPolicyMapper maps aws_iam_policy to a SoftwareComponent node with
// the policy document attached as a JSON artifact and parsed into
// metadata, the same representation IAMRoleMapper uses for its
// assume-role policy - the Python source used dict-in-metadata for one
// and dict-plus-artifact for the other; this mapper set keeps a single
// consistent shape for both. Grounded on aws_iam_policy.py.
type IAMPolicyMapper struct{}

func (IAMPolicyMapper) CanMap(t string) bool { return t == "aws_iam_policy" }

func (IAMPolicyMapper) MapResource(r *tfplan.Resource, b *builder.ServiceTemplateBuilder, ctx *MappingContext) error {
	log.Infof("mapping IAM policy resource %q", r.Address)

	name := nodeNameFor(r.Address)
	node := b.AddNode(name, "SoftwareComponent").
		WithDescription("AWS IAM Policy defining permissions and access rules").
		WithProperty("component_version", "1.0")

	meta := node.Metadata()
	meta.Set("original_resource_type", r.Type)
	meta.Set("original_resource_name", r.Name)
	meta.Set("aws_component_type", "IAMPolicy")
	setIfPresent(meta, "aws_policy_name", ctx.Meta(r.Address, "name"))

	if doc, ok := ctx.Meta(r.Address, "policy").(string); ok && doc != "" {
		if parsed := parsePolicyDocument(doc); parsed != nil {
			meta.Set("aws_policy_document", parsed)
		}
		node.AddArtifact("policy_document", "application/json", doc).AndNode()
	}

	setIfPresent(meta, "aws_policy_description", ctx.Meta(r.Address, "description"))
	setIfPresent(meta, "aws_policy_path", ctx.Meta(r.Address, "path"))
	setIfPresent(meta, "aws_policy_name_prefix", ctx.Meta(r.Address, "name_prefix"))

	tags := asStringMap(ctx.Meta(r.Address, "tags"))
	tagsAll := asStringMap(ctx.Meta(r.Address, "tags_all"))
	if len(tags) > 0 {
		meta.Set("aws_tags", tags)
	}
	if tagsAllDiffer(tags, tagsAll) {
		meta.Set("aws_tags_all", tagsAll)
	}

	setIfPresent(meta, "aws_region", ctx.Meta(r.Address, "region"))
	setIfPresent(meta, "aws_arn", ctx.Meta(r.Address, "arn"))
	setIfPresent(meta, "aws_policy_id", ctx.Meta(r.Address, "policy_id"))
	if v := ctx.Meta(r.Address, "attachment_count"); v != nil {
		meta.Set("aws_attachment_count", v)
	}

	attachDependencies(node, ctx, r)
	return nil
}
