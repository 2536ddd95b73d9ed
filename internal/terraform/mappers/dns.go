package mappers

import (
	"github.com/edelwud/tf2tosca/internal/terraform/tfplan"
	"github.com/edelwud/tf2tosca/internal/tosca/builder"
	"github.com/edelwud/tf2tosca/pkg/log"
)

var routingPolicyFields = []string{
	"weighted_routing_policy", "latency_routing_policy", "geolocation_routing_policy",
	"geoproximity_routing_policy", "failover_routing_policy", "cidr_routing_policy",
}

// Route53ZoneMapper maps aws_route53_zone to a Network node: a hosted
// zone provides network-level domain name resolution, which is the
// closest fit among the simple profile's node types. Grounded on
// aws_route53_zone.py.
type Route53ZoneMapper struct{}

func (Route53ZoneMapper) CanMap(t string) bool { return t == "aws_route53_zone" }

func (Route53ZoneMapper) MapResource(r *tfplan.Resource, b *builder.ServiceTemplateBuilder, ctx *MappingContext) error {
	log.Infof("mapping Route53 hosted zone resource %q", r.Address)

	name := nodeNameFor(r.Address)
	node := b.AddNode(name, "Network")

	domainName := ctx.Property(r.Address, "name")
	vpcAssociations := asSlice(ctx.Meta(r.Address, "vpc"))
	private := len(vpcAssociations) > 0

	if notEmpty(domainName) {
		node.WithProperty("network_name", domainName)
	}
	node.WithProperty("dhcp_enabled", private)
	if private {
		node.WithProperty("network_type", "private")
	} else {
		node.WithProperty("network_type", "public")
	}

	meta := node.Metadata()
	meta.Set("original_resource_type", r.Type)
	meta.Set("original_resource_name", r.Name)
	meta.Set("aws_component_type", "Route53HostedZone")
	setIfPresent(meta, "aws_domain_name", ctx.Meta(r.Address, "name"))
	setIfPresent(meta, "aws_zone_comment", ctx.Meta(r.Address, "comment"))
	if v, ok := ctx.Meta(r.Address, "force_destroy").(bool); ok {
		meta.Set("aws_force_destroy", v)
	}
	if private {
		meta.Set("aws_vpc_associations", vpcAssociations)
		meta.Set("aws_zone_type", "private")
	} else {
		meta.Set("aws_zone_type", "public")
	}
	setIfPresent(meta, "aws_delegation_set_id", ctx.Meta(r.Address, "delegation_set_id"))
	setIfPresent(meta, "aws_region", ctx.Meta(r.Address, "region"))
	setIfPresent(meta, "aws_arn", ctx.Meta(r.Address, "arn"))
	setIfPresent(meta, "aws_zone_id", ctx.Meta(r.Address, "zone_id"))
	setIfPresent(meta, "aws_hosted_zone_id", ctx.Meta(r.Address, "id"))
	if servers := asSlice(ctx.Meta(r.Address, "name_servers")); len(servers) > 0 {
		meta.Set("aws_name_servers", servers)
	}
	setIfPresent(meta, "aws_primary_name_server", ctx.Meta(r.Address, "primary_name_server"))

	tags := asStringMap(ctx.Meta(r.Address, "tags"))
	tagsAll := asStringMap(ctx.Meta(r.Address, "tags_all"))
	if len(tags) > 0 {
		meta.Set("aws_tags", tags)
	}
	if tagsAllDiffer(tags, tagsAll) {
		meta.Set("aws_tags_all", tagsAll)
	}

	attachDependencies(node, ctx, r)
	return nil
}

// Route53RecordMapper maps aws_route53_record to a dedicated Network
// node carrying DNS record semantics, with explicit relationships to
// its hosted zone and, for alias records, to the aliased load
// balancer. Grounded on aws_route53_record.py.
type Route53RecordMapper struct{}

func (Route53RecordMapper) CanMap(t string) bool { return t == "aws_route53_record" }

func (Route53RecordMapper) MapResource(r *tfplan.Resource, b *builder.ServiceTemplateBuilder, ctx *MappingContext) error {
	log.Infof("mapping Route53 DNS record resource %q", r.Address)

	dnsName := ctx.Property(r.Address, "name")
	if !notEmpty(dnsName) {
		log.Warnf("Route53 record %q has no name, skipping", r.Address)
		return nil
	}

	name := nodeNameFor(r.Address)
	node := b.AddNode(name, "Network")
	node.WithProperty("network_name", dnsName)
	node.WithProperty("network_type", "dns_record")

	recordType, _ := ctx.Meta(r.Address, "type").(string)

	meta := node.Metadata()
	meta.Set("original_resource_type", r.Type)
	meta.Set("original_resource_name", r.Name)
	meta.Set("aws_component_type", "Route53DNSRecord")
	for prop, key := range map[string]string{
		"name": "aws_record_name", "type": "aws_record_type", "zone_id": "aws_zone_id",
		"ttl": "aws_ttl", "records": "aws_records", "set_identifier": "aws_set_identifier",
		"health_check_id": "aws_health_check_id", "multivalue_answer": "aws_multivalue_answer",
		"allow_overwrite": "aws_allow_overwrite", "fqdn": "aws_fqdn", "id": "aws_record_id",
	} {
		setIfPresent(meta, key, ctx.Meta(r.Address, prop))
	}
	for _, field := range routingPolicyFields {
		if v := asSlice(ctx.Meta(r.Address, field)); len(v) > 0 {
			meta.Set("aws_"+field, v)
		}
	}
	aliasConfigs := asSlice(ctx.Meta(r.Address, "alias"))
	if len(aliasConfigs) > 0 {
		meta.Set("aws_alias_configuration", aliasConfigs)
	}
	if recordType != "" {
		meta.Set("dns_record_type", recordType)
	}
	if ttl := ctx.Meta(r.Address, "ttl"); ttl != nil {
		meta.Set("dns_ttl", ttl)
	}
	meta.Set("dns_alias_enabled", len(aliasConfigs) > 0)

	attachRecordRelationships(node, r, ctx, b)
	return nil
}

func attachRecordRelationships(node *builder.NodeBuilder, r *tfplan.Resource, ctx *MappingContext, b *builder.ServiceTemplateBuilder) {
	seen := map[string]bool{}

	if zoneRef := findConfigReference(ctx, r, "zone_id"); zoneRef != "" {
		zoneNode := nodeNameFor(zoneRef)
		node.AddRequirement("zone").ToNode(zoneNode).WithRelationship("DependsOn").AndNode()
		seen[zoneRef] = true
		log.Infof("added zone requirement %q -> %q", node.Name(), zoneNode)
	}

	if targetRef := findAliasTargetRef(ctx, r); targetRef != "" {
		targetNode := nodeNameFor(targetRef)
		node.AddRequirement("target").ToNode(targetNode).WithRelationship("RoutesTo").AndNode()
		seen[targetRef] = true
		log.Infof("added target requirement %q -> %q", node.Name(), targetNode)

		if lb := b.GetNode(targetNode); lb != nil {
			if dnsName := ctx.Property(r.Address, "name"); notEmpty(dnsName) {
				lb.AddCapability("client").WithProperty("dns_name", dnsName).AndNode()
			}
		}
	}

	for _, ref := range ctx.References(r) {
		if seen[ref.TargetAddress] {
			continue
		}
		target := nodeNameFor(ref.TargetAddress)
		node.AddRequirement(ref.PropertyName).ToNode(target).WithRelationship(ref.RelationshipType).AndNode()
	}
}

// findAliasTargetRef resolves the aws_lb this record's alias block
// points at. Alias is a nested configuration block rather than a plain
// attribute, so it carries no flat configuration-expression reference
// list to walk (tfplan only models flat per-attribute references); this
// falls back to the same value-pattern matching refs.Extract uses for
// vpc_id, comparing the alias target name against every aws_lb's
// resolved dns_name.
func findAliasTargetRef(ctx *MappingContext, r *tfplan.Resource) string {
	aliasConfigs := asSlice(ctx.Meta(r.Address, "alias"))
	if len(aliasConfigs) == 0 {
		return ""
	}
	first := asStringMap(aliasConfigs[0])
	aliasName, _ := first["name"].(string)
	if aliasName == "" {
		return ""
	}
	for _, res := range ctx.ResourcesOfType("aws_lb") {
		if dnsName, _ := res.Values["dns_name"].(string); dnsName != "" && dnsName == aliasName {
			return res.Address
		}
	}
	return ""
}
