package mappers

import (
	"testing"

	"github.com/edelwud/tf2tosca/internal/tosca/builder"
)

func TestS3BucketMapperReadsValuesDirectlyAndCatchesAllUnknownFields(t *testing.T) {
	ctx := buildContext(t, `{
		"configuration": {"root_module": {"resources": []}},
		"planned_values": {"root_module": {"resources": [
			{"address": "aws_s3_bucket.assets", "type": "aws_s3_bucket", "name": "assets", "values": {
				"bucket": "my-assets-bucket",
				"force_destroy": true,
				"acceleration_status": "Enabled"
			}}
		]}}
	}`)

	b := builder.NewServiceTemplateBuilder()
	r := ctx.FindResource("aws_s3_bucket.assets")
	if err := (S3BucketMapper{}).MapResource(r, b, ctx); err != nil {
		t.Fatalf("MapResource() err = %v", err)
	}

	tmpl, err := b.Build()
	if err != nil {
		t.Fatalf("Build() err = %v", err)
	}
	node, ok := tmpl.NodeTemplates.Get("assets")
	if !ok {
		t.Fatalf("node %q not found", "assets")
	}
	if node.Type != "Storage.ObjectStorage" {
		t.Errorf("node type = %q, want Storage.ObjectStorage", node.Type)
	}
	name, _ := node.Properties.Get("name")
	if name != "my-assets-bucket" {
		t.Errorf("name = %v, want my-assets-bucket", name)
	}
	// acceleration_status isn't in the known-fields set, so the catch-all
	// loop should fold it into metadata under an aws_-prefixed key.
	v, ok := node.Metadata.Get("aws_acceleration_status")
	if !ok || v != "Enabled" {
		t.Errorf("aws_acceleration_status = %v, ok = %v, want Enabled, true", v, ok)
	}
}
