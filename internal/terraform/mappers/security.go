package mappers

import (
	"github.com/edelwud/tf2tosca/internal/terraform/tfplan"
	"github.com/edelwud/tf2tosca/internal/tosca/builder"
	"github.com/edelwud/tf2tosca/pkg/log"
)

// SecurityGroupMapper maps aws_security_group to a bare Root node, since
// the simple profile has no dedicated security-group type. Grounded on
// aws_security_group.py.
type SecurityGroupMapper struct{}

func (SecurityGroupMapper) CanMap(t string) bool { return t == "aws_security_group" }

func (SecurityGroupMapper) MapResource(r *tfplan.Resource, b *builder.ServiceTemplateBuilder, ctx *MappingContext) error {
	log.Infof("mapping security group resource %q", r.Address)

	name := nodeNameFor(r.Address)
	node := b.AddNode(name, "Root")

	meta := node.Metadata()
	meta.Set("original_resource_type", r.Type)
	meta.Set("original_resource_name", r.Name)
	setIfPresent(meta, "aws_security_group_name", ctx.Meta(r.Address, "name"))
	setIfPresent(meta, "aws_description", ctx.Meta(r.Address, "description"))
	setIfPresent(meta, "aws_vpc_id", ctx.Meta(r.Address, "vpc_id"))
	setIfPresent(meta, "aws_arn", ctx.Meta(r.Address, "arn"))
	setIfPresent(meta, "aws_security_group_id", ctx.Meta(r.Address, "id"))
	setIfPresent(meta, "aws_owner_id", ctx.Meta(r.Address, "owner_id"))
	if v, ok := ctx.Meta(r.Address, "revoke_rules_on_delete").(bool); ok {
		meta.Set("aws_revoke_rules_on_delete", v)
	}
	setIfPresent(meta, "aws_name_prefix", ctx.Meta(r.Address, "name_prefix"))

	tags := asStringMap(ctx.Meta(r.Address, "tags"))
	tagsAll := asStringMap(ctx.Meta(r.Address, "tags_all"))
	if len(tags) > 0 {
		meta.Set("aws_tags", tags)
	}
	if tagsAllDiffer(tags, tagsAll) {
		meta.Set("aws_tags_all", tagsAll)
	}

	ingress := asSlice(ctx.Meta(r.Address, "ingress"))
	if processed := processInlineRules(ingress); len(processed) > 0 {
		meta.Set("aws_ingress_rules", processed)
	}
	egress := asSlice(ctx.Meta(r.Address, "egress"))
	if processed := processInlineRules(egress); len(processed) > 0 {
		meta.Set("aws_egress_rules", processed)
	}
	meta.Set("aws_ingress_rule_count", len(ingress))
	meta.Set("aws_egress_rule_count", len(egress))

	attachDependencies(node, ctx, r)
	return nil
}

func processInlineRules(rules []any) []map[string]any {
	var out []map[string]any
	for _, raw := range rules {
		rule := asStringMap(raw)
		if rule == nil {
			continue
		}
		entry := map[string]any{
			"from_port": rule["from_port"],
			"to_port":   rule["to_port"],
			"protocol":  rule["protocol"],
		}
		for _, key := range []string{"description", "cidr_blocks", "ipv6_cidr_blocks", "prefix_list_ids", "security_groups"} {
			if v, ok := rule[key]; ok && notEmpty(v) {
				entry[key] = v
			}
		}
		if v, ok := rule["self"]; ok {
			entry["self"] = v
		}
		out = append(out, entry)
	}
	return out
}

// mapRuleInto places v under key in dst unless v is absent or blank,
// the plain-map counterpart of setIfPresent used for per-rule metadata
// that is accumulated on an already-created node rather than written
// through a fresh *ordered.Map.
func mapRuleInto(dst map[string]any, key string, v any) {
	if !notEmpty(v) {
		return
	}
	dst[key] = v
}

// SecurityGroupIngressRuleMapper is the post-pass handler for
// aws_vpc_security_group_ingress_rule: it does not create a node, it
// appends rule metadata to the security group node a primary mapper
// already created. Grounded on aws_vpc_security_group_ingress_rule.py.
type SecurityGroupIngressRuleMapper struct{}

func (SecurityGroupIngressRuleMapper) CanMap(t string) bool {
	return t == "aws_vpc_security_group_ingress_rule"
}

func (SecurityGroupIngressRuleMapper) MapResource(r *tfplan.Resource, b *builder.ServiceTemplateBuilder, ctx *MappingContext) error {
	return attachSecurityGroupRule(r, b, ctx, "ingress_rules")
}

// SecurityGroupEgressRuleMapper is the post-pass handler for
// aws_vpc_security_group_egress_rule. No Python mapper for the egress
// direction exists in the source corpus; this mirrors the ingress
// mapper's logic with the opposite rule list, which is the symmetric
// treatment the ingress mapper's own design implies.
type SecurityGroupEgressRuleMapper struct{}

func (SecurityGroupEgressRuleMapper) CanMap(t string) bool {
	return t == "aws_vpc_security_group_egress_rule"
}

func (SecurityGroupEgressRuleMapper) MapResource(r *tfplan.Resource, b *builder.ServiceTemplateBuilder, ctx *MappingContext) error {
	return attachSecurityGroupRule(r, b, ctx, "egress_rules")
}

func attachSecurityGroupRule(r *tfplan.Resource, b *builder.ServiceTemplateBuilder, ctx *MappingContext, metadataKey string) error {
	log.Infof("processing %s resource %q", r.Type, r.Address)

	sgRef := findSecurityGroupRef(ctx, r)
	if sgRef == "" {
		log.Warnf("could not find security group reference for %q, skipping", r.Address)
		return nil
	}

	sgNodeName := nodeNameFor(sgRef)
	sgNode := b.GetNode(sgNodeName)
	if sgNode == nil {
		return &MissingNodeError{Resource: r.Address, NodeName: sgNodeName}
	}

	rule := map[string]any{
		"rule_id":   r.Name,
		"from_port": ctx.Meta(r.Address, "from_port"),
		"to_port":   ctx.Meta(r.Address, "to_port"),
		"protocol":  ctx.Meta(r.Address, "ip_protocol"),
	}
	mapRuleInto(rule, "description", ctx.Meta(r.Address, "description"))
	mapRuleInto(rule, "cidr_ipv4", ctx.Meta(r.Address, "cidr_ipv4"))
	mapRuleInto(rule, "cidr_ipv6", ctx.Meta(r.Address, "cidr_ipv6"))
	mapRuleInto(rule, "prefix_list_id", ctx.Meta(r.Address, "prefix_list_id"))
	mapRuleInto(rule, "referenced_security_group_id", ctx.Meta(r.Address, "referenced_security_group_id"))
	mapRuleInto(rule, "arn", ctx.Meta(r.Address, "arn"))
	mapRuleInto(rule, "security_group_rule_id", ctx.Meta(r.Address, "security_group_rule_id"))

	tags := asStringMap(ctx.Meta(r.Address, "tags"))
	tagsAll := asStringMap(ctx.Meta(r.Address, "tags_all"))
	if len(tags) > 0 {
		rule["tags"] = tags
	}
	if tagsAllDiffer(tags, tagsAll) {
		rule["tags_all"] = tagsAll
	}

	meta := sgNode.Metadata()
	existing, _ := meta.Get(metadataKey)
	list, _ := existing.([]any)
	list = append(list, rule)
	meta.Set(metadataKey, list)

	log.Infof("added %s rule %q to security group %q", metadataKey, r.Name, sgNodeName)
	return nil
}

// findSecurityGroupRef locates the security_group_id reference via the
// resource's configuration expressions, taking the longest (most
// specific) reference when several are present and stripping a
// trailing ".id" accessor.
func findSecurityGroupRef(ctx *MappingContext, r *tfplan.Resource) string {
	return findConfigReference(ctx, r, "security_group_id")
}
