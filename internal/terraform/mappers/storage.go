package mappers

import (
	"github.com/edelwud/tf2tosca/internal/terraform/tfplan"
	"github.com/edelwud/tf2tosca/internal/tosca/builder"
	"github.com/edelwud/tf2tosca/pkg/log"
)

var s3KnownFields = map[string]bool{
	"bucket": true, "force_destroy": true, "object_lock_enabled": true,
	"tags": true, "tags_all": true, "arn": true, "region": true,
	"bucket_domain_name": true, "bucket_region": true,
	"bucket_regional_domain_name": true, "hosted_zone_id": true,
}

// S3BucketMapper maps aws_s3_bucket to a Storage.ObjectStorage node,
// grounded on aws_s3_bucket.py. Unlike its siblings, the Python mapper
// reads raw resource values directly rather than through the mapping
// context and performs no dependency extraction; this mirrors that
// narrower grounding rather than generalizing it to the usual pattern.
type S3BucketMapper struct{}

func (S3BucketMapper) CanMap(t string) bool { return t == "aws_s3_bucket" }

func (S3BucketMapper) MapResource(r *tfplan.Resource, b *builder.ServiceTemplateBuilder, ctx *MappingContext) error {
	log.Infof("mapping S3 bucket resource %q", r.Address)

	name := nodeNameFor(r.Address)
	node := b.AddNode(name, "Storage.ObjectStorage")

	values := r.Values

	if v, ok := values["bucket"]; ok {
		node.WithProperty("name", v)
	}

	meta := node.Metadata()
	meta.Set("original_resource_type", r.Type)
	meta.Set("original_resource_name", r.Name)
	setIfPresent(meta, "aws_region", values["region"])
	setIfPresent(meta, "aws_arn", values["arn"])
	if v, ok := values["force_destroy"].(bool); ok {
		meta.Set("aws_force_destroy", v)
	}
	if v, ok := values["object_lock_enabled"].(bool); ok {
		meta.Set("aws_object_lock_enabled", v)
	}
	setIfPresent(meta, "aws_bucket_domain_name", values["bucket_domain_name"])
	setIfPresent(meta, "aws_bucket_region", values["bucket_region"])
	setIfPresent(meta, "aws_bucket_regional_domain_name", values["bucket_regional_domain_name"])
	setIfPresent(meta, "aws_hosted_zone_id", values["hosted_zone_id"])

	tags := asStringMap(values["tags"])
	tagsAll := asStringMap(values["tags_all"])
	if len(tags) > 0 {
		meta.Set("aws_tags", tags)
	}
	if tagsAllDiffer(tags, tagsAll) {
		meta.Set("aws_tags_all", tagsAll)
	}

	for k, v := range values {
		if s3KnownFields[k] || v == nil {
			continue
		}
		meta.Set("aws_"+k, v)
	}

	return nil
}
