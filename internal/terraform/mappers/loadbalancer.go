package mappers

import (
	"github.com/edelwud/tf2tosca/internal/terraform/tfplan"
	"github.com/edelwud/tf2tosca/internal/tosca/builder"
	"github.com/edelwud/tf2tosca/pkg/log"
)

var lbTargetGroupSupportedTypes = map[string]bool{
	"aws_instance":        true,
	"aws_lambda_function": true,
	"aws_lb":              true,
}

// LoadBalancerMapper maps aws_lb to a Root node carrying a "client"
// capability whose only property is the load balancer's dns_name. No
// Python mapper for aws_lb exists in the source corpus; there is no
// TOSCA simple-profile type for a load balancer, so this follows the
// same bare-Root-plus-metadata shape aws_security_group.py uses for
// its own type-less AWS construct.
type LoadBalancerMapper struct{}

func (LoadBalancerMapper) CanMap(t string) bool { return t == "aws_lb" }

func (LoadBalancerMapper) MapResource(r *tfplan.Resource, b *builder.ServiceTemplateBuilder, ctx *MappingContext) error {
	log.Infof("mapping load balancer resource %q", r.Address)

	name := nodeNameFor(r.Address)
	node := b.AddNode(name, "Root")

	meta := node.Metadata()
	meta.Set("original_resource_type", r.Type)
	meta.Set("original_resource_name", r.Name)
	meta.Set("aws_component_type", "LoadBalancer")
	setIfPresent(meta, "aws_lb_name", ctx.Meta(r.Address, "name"))
	setIfPresent(meta, "aws_load_balancer_type", ctx.Meta(r.Address, "load_balancer_type"))
	if v, ok := ctx.Meta(r.Address, "internal").(bool); ok {
		meta.Set("aws_internal", v)
	}
	if ids := asSlice(ctx.Meta(r.Address, "subnets")); len(ids) > 0 {
		meta.Set("aws_subnets", ids)
	}
	if ids := asSlice(ctx.Meta(r.Address, "security_groups")); len(ids) > 0 {
		meta.Set("aws_security_groups", ids)
	}
	setIfPresent(meta, "aws_dns_name", ctx.Meta(r.Address, "dns_name"))
	setIfPresent(meta, "aws_zone_id", ctx.Meta(r.Address, "zone_id"))
	setIfPresent(meta, "aws_arn", ctx.Meta(r.Address, "arn"))
	if v, ok := ctx.Meta(r.Address, "enable_deletion_protection").(bool); ok {
		meta.Set("aws_enable_deletion_protection", v)
	}

	tags := asStringMap(ctx.Meta(r.Address, "tags"))
	tagsAll := asStringMap(ctx.Meta(r.Address, "tags_all"))
	if len(tags) > 0 {
		meta.Set("aws_tags", tags)
	}
	if tagsAllDiffer(tags, tagsAll) {
		meta.Set("aws_tags_all", tagsAll)
	}

	node.AddCapability("client").
		WithProperty("dns_name", ctx.Property(r.Address, "dns_name")).
		AndNode()

	attachDependencies(node, ctx, r)
	return nil
}

// LBListenerMapper is a no-op, mirroring aws_lb_listener.py's own
// documented no-op map_resource. Listener data (port, protocol, default
// actions) does not appear anywhere in the output: neither this mapper
// nor LoadBalancerMapper reads aws_lb_listener resources.
type LBListenerMapper struct{}

func (LBListenerMapper) CanMap(t string) bool { return t == "aws_lb_listener" }

func (LBListenerMapper) MapResource(r *tfplan.Resource, _ *builder.ServiceTemplateBuilder, _ *MappingContext) error {
	log.Debugf("skipping %q: listener resources are not translated", r.Address)
	return nil
}

// LBTargetGroupMapper maps aws_lb_target_group to a Root node carrying
// an "endpoint" capability, the attachment point
// LBTargetGroupAttachmentMapper later adds an "application" requirement
// to. No Python mapper for aws_lb_target_group exists in the source
// corpus; grounded on spec.md's target-group attachment description and
// the same Root-plus-metadata shape as LoadBalancerMapper.
type LBTargetGroupMapper struct{}

func (LBTargetGroupMapper) CanMap(t string) bool { return t == "aws_lb_target_group" }

func (LBTargetGroupMapper) MapResource(r *tfplan.Resource, b *builder.ServiceTemplateBuilder, ctx *MappingContext) error {
	log.Infof("mapping load balancer target group resource %q", r.Address)

	name := nodeNameFor(r.Address)
	node := b.AddNode(name, "Root")

	meta := node.Metadata()
	meta.Set("original_resource_type", r.Type)
	meta.Set("original_resource_name", r.Name)
	meta.Set("aws_component_type", "LoadBalancerTargetGroup")
	setIfPresent(meta, "aws_target_group_name", ctx.Meta(r.Address, "name"))
	setIfPresent(meta, "aws_port", ctx.Meta(r.Address, "port"))
	setIfPresent(meta, "aws_protocol", ctx.Meta(r.Address, "protocol"))
	setIfPresent(meta, "aws_target_type", ctx.Meta(r.Address, "target_type"))
	setIfPresent(meta, "aws_vpc_id", ctx.Meta(r.Address, "vpc_id"))
	setIfPresent(meta, "aws_arn", ctx.Meta(r.Address, "arn"))

	tags := asStringMap(ctx.Meta(r.Address, "tags"))
	tagsAll := asStringMap(ctx.Meta(r.Address, "tags_all"))
	if len(tags) > 0 {
		meta.Set("aws_tags", tags)
	}
	if tagsAllDiffer(tags, tagsAll) {
		meta.Set("aws_tags_all", tagsAll)
	}

	node.AddCapability("endpoint").
		WithProperty("port", ctx.Property(r.Address, "port")).
		WithProperty("protocol", ctx.Property(r.Address, "protocol")).
		AndNode()
	node.AddCapability("admin_endpoint").AndNode()

	attachDependencies(node, ctx, r)
	return nil
}

// LBTargetGroupAttachmentMapper is the post-pass handler for
// aws_lb_target_group_attachment: it locates the target group node and
// the attached node, then adds an "application" requirement between
// them. Grounded on aws_lb_target_group_attachment.py.
type LBTargetGroupAttachmentMapper struct{}

func (LBTargetGroupAttachmentMapper) CanMap(t string) bool {
	return t == "aws_lb_target_group_attachment"
}

func (LBTargetGroupAttachmentMapper) MapResource(r *tfplan.Resource, b *builder.ServiceTemplateBuilder, ctx *MappingContext) error {
	log.Infof("processing target group attachment resource %q", r.Address)

	tgRef := findConfigReference(ctx, r, "target_group_arn")
	if tgRef == "" {
		log.Warnf("could not find target group reference for %q, skipping", r.Address)
		return nil
	}
	targetRef := findAttachmentTargetRef(ctx, r)
	if targetRef == "" {
		log.Warnf("could not find attachment target reference for %q, skipping", r.Address)
		return nil
	}
	if targetType := targetResourceType(targetRef); !lbTargetGroupSupportedTypes[targetType] {
		log.Debugf("attachment target type %q unsupported, skipping %q", targetType, r.Address)
		return nil
	}

	tgNodeName := nodeNameFor(tgRef)
	tgNode := b.GetNode(tgNodeName)
	if tgNode == nil {
		return &MissingNodeError{Resource: r.Address, NodeName: tgNodeName}
	}
	targetNodeName := nodeNameFor(targetRef)
	if b.GetNode(targetNodeName) == nil {
		return &MissingNodeError{Resource: r.Address, NodeName: targetNodeName}
	}

	capabilityName := "endpoint"
	if port := ctx.Meta(r.Address, "port"); notEmpty(port) {
		if p, ok := port.(float64); ok && int(p) == 22 {
			capabilityName = "admin_endpoint"
		}
	}

	relationship := map[string]any{"type": "RoutesTo"}
	if az, ok := ctx.Meta(r.Address, "availability_zone").(string); ok && az != "" {
		relationship["properties"] = map[string]any{"availability_zone": az}
	}

	req := tgNode.AddRequirement("application").ToNode(targetNodeName)
	if capabilityName != "" {
		req.WithCapability(capabilityName)
	}
	req.WithRelationship(relationship).AndNode()

	log.Infof("added application requirement %q -> %q via %q", tgNodeName, targetNodeName, capabilityName)
	return nil
}

// findAttachmentTargetRef resolves the attachment's target_id
// reference, falling back to a plain value-pattern match against
// planned resource IDs when the configuration carries no reference
// (the common plan-apply-time shape for this resource).
func findAttachmentTargetRef(ctx *MappingContext, r *tfplan.Resource) string {
	if ref := findConfigReference(ctx, r, "target_id"); ref != "" {
		return ref
	}
	targetID := ctx.Meta(r.Address, "target_id")
	if targetID == nil {
		return ""
	}
	for _, res := range ctx.AllResources() {
		if id, ok := res.Values["id"]; ok && id == targetID {
			return res.Address
		}
	}
	return ""
}
