package mappers

import (
	"github.com/edelwud/tf2tosca/internal/terraform/tfplan"
	"github.com/edelwud/tf2tosca/internal/tosca/builder"
	"github.com/edelwud/tf2tosca/pkg/log"
)

// InstanceMapper maps aws_instance to a Compute node. No Python mapper
// for this resource type exists in the source corpus; its shape
// follows the same metadata-rich, capability-bearing pattern every
// sibling AWS mapper uses, with "os" and "host" capabilities standing
// in for the simple profile's Compute semantics.
type InstanceMapper struct{}

func (InstanceMapper) CanMap(t string) bool { return t == "aws_instance" }

func (InstanceMapper) MapResource(r *tfplan.Resource, b *builder.ServiceTemplateBuilder, ctx *MappingContext) error {
	log.Infof("mapping EC2 instance resource %q", r.Address)

	name := nodeNameFor(r.Address)
	node := b.AddNode(name, "Compute")

	node.WithProperty("instance_type", ctx.Property(r.Address, "instance_type"))
	if az := ctx.Property(r.Address, "availability_zone"); notEmpty(az) {
		node.WithProperty("availability_zone", az)
	}

	meta := node.Metadata()
	meta.Set("original_resource_type", r.Type)
	meta.Set("original_resource_name", r.Name)
	meta.Set("aws_component_type", "EC2Instance")
	setIfPresent(meta, "aws_ami", ctx.Meta(r.Address, "ami"))
	setIfPresent(meta, "aws_key_name", ctx.Meta(r.Address, "key_name"))
	setIfPresent(meta, "aws_subnet_id", ctx.Meta(r.Address, "subnet_id"))
	if ids := asSlice(ctx.Meta(r.Address, "vpc_security_group_ids")); len(ids) > 0 {
		meta.Set("aws_vpc_security_group_ids", ids)
	}
	if v, ok := ctx.Meta(r.Address, "associate_public_ip_address").(bool); ok {
		meta.Set("aws_associate_public_ip_address", v)
	}
	setIfPresent(meta, "aws_private_ip", ctx.Meta(r.Address, "private_ip"))
	setIfPresent(meta, "aws_public_ip", ctx.Meta(r.Address, "public_ip"))
	setIfPresent(meta, "aws_iam_instance_profile", ctx.Meta(r.Address, "iam_instance_profile"))
	if v, ok := ctx.Meta(r.Address, "monitoring").(bool); ok {
		meta.Set("aws_monitoring", v)
	}
	setIfPresent(meta, "aws_instance_id", ctx.Meta(r.Address, "id"))
	setIfPresent(meta, "aws_arn", ctx.Meta(r.Address, "arn"))
	setIfPresent(meta, "aws_availability_zone", ctx.Meta(r.Address, "availability_zone"))

	tags := asStringMap(ctx.Meta(r.Address, "tags"))
	tagsAll := asStringMap(ctx.Meta(r.Address, "tags_all"))
	if len(tags) > 0 {
		meta.Set("aws_tags", tags)
	}
	if tagsAllDiffer(tags, tagsAll) {
		meta.Set("aws_tags_all", tagsAll)
	}

	node.AddCapability("host").AndNode()
	node.AddCapability("os").WithProperty("type", "linux").AndNode()
	node.AddCapability("endpoint").AndNode()

	attachDependencies(node, ctx, r)
	return nil
}

// EBSVolumeMapper maps aws_ebs_volume to a Storage.BlockStorage node,
// grounded on aws_ebs_volume.py.
type EBSVolumeMapper struct{}

func (EBSVolumeMapper) CanMap(t string) bool { return t == "aws_ebs_volume" }

func (EBSVolumeMapper) MapResource(r *tfplan.Resource, b *builder.ServiceTemplateBuilder, ctx *MappingContext) error {
	log.Infof("mapping EBS volume resource %q", r.Address)

	name := nodeNameFor(r.Address)
	node := b.AddNode(name, "Storage.BlockStorage")

	if size := ctx.Property(r.Address, "size"); notEmpty(size) {
		node.WithProperty("size", formatGB(size))
	}
	if v := ctx.Property(r.Address, "id"); notEmpty(v) {
		node.WithProperty("volume_id", v)
	}
	if v := ctx.Property(r.Address, "snapshot_id"); notEmpty(v) {
		node.WithProperty("snapshot_id", v)
	}

	meta := node.Metadata()
	meta.Set("original_resource_type", r.Type)
	meta.Set("original_resource_name", r.Name)
	setIfPresent(meta, "aws_availability_zone", ctx.Meta(r.Address, "availability_zone"))
	if v, ok := ctx.Meta(r.Address, "encrypted").(bool); ok {
		meta.Set("aws_encrypted", v)
	}
	setIfPresent(meta, "aws_kms_key_id", ctx.Meta(r.Address, "kms_key_id"))
	setIfPresent(meta, "aws_volume_type", ctx.Meta(r.Address, "type"))
	setIfPresent(meta, "aws_iops", ctx.Meta(r.Address, "iops"))
	setIfPresent(meta, "aws_throughput", ctx.Meta(r.Address, "throughput"))
	if v, ok := ctx.Meta(r.Address, "multi_attach_enabled").(bool); ok {
		meta.Set("aws_multi_attach_enabled", v)
	}
	setIfPresent(meta, "aws_outpost_arn", ctx.Meta(r.Address, "outpost_arn"))
	if v, ok := ctx.Meta(r.Address, "final_snapshot").(bool); ok {
		meta.Set("aws_final_snapshot", v)
	}
	setIfPresent(meta, "aws_volume_initialization_rate", ctx.Meta(r.Address, "volume_initialization_rate"))
	setIfPresent(meta, "aws_arn", ctx.Meta(r.Address, "arn"))
	setIfPresent(meta, "aws_create_time", ctx.Meta(r.Address, "create_time"))

	tags := asStringMap(ctx.Meta(r.Address, "tags"))
	tagsAll := asStringMap(ctx.Meta(r.Address, "tags_all"))
	if len(tags) > 0 {
		meta.Set("aws_tags", tags)
	}
	if tagsAllDiffer(tags, tagsAll) {
		meta.Set("aws_tags_all", tagsAll)
	}

	node.AddCapability("attachment").AndNode()
	attachDependencies(node, ctx, r)
	return nil
}
