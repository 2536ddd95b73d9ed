package mappers

import (
	"testing"

	"github.com/edelwud/tf2tosca/internal/tosca/builder"
)

func TestInstanceMapperSetsCapabilities(t *testing.T) {
	ctx := buildContext(t, `{
		"configuration": {"root_module": {"resources": []}},
		"planned_values": {"root_module": {"resources": [
			{"address": "aws_instance.web", "type": "aws_instance", "name": "web", "values": {
				"instance_type": "t3.micro", "ami": "ami-123", "availability_zone": "us-east-1a"
			}}
		]}}
	}`)

	b := builder.NewServiceTemplateBuilder()
	r := ctx.FindResource("aws_instance.web")
	if err := (InstanceMapper{}).MapResource(r, b, ctx); err != nil {
		t.Fatalf("MapResource() err = %v", err)
	}

	tmpl, err := b.Build()
	if err != nil {
		t.Fatalf("Build() err = %v", err)
	}
	node, ok := tmpl.NodeTemplates.Get("web")
	if !ok {
		t.Fatalf("node %q not found", "web")
	}
	if node.Type != "Compute" {
		t.Errorf("node type = %q, want Compute", node.Type)
	}
	for _, cap := range []string{"host", "os", "endpoint"} {
		if _, ok := node.Capabilities.Get(cap); !ok {
			t.Errorf("capability %q not set", cap)
		}
	}
}

func TestEBSVolumeMapperFormatsSizeInGB(t *testing.T) {
	ctx := buildContext(t, `{
		"configuration": {"root_module": {"resources": []}},
		"planned_values": {"root_module": {"resources": [
			{"address": "aws_ebs_volume.data", "type": "aws_ebs_volume", "name": "data", "values": {
				"size": 100, "availability_zone": "us-east-1a", "encrypted": true
			}}
		]}}
	}`)

	b := builder.NewServiceTemplateBuilder()
	r := ctx.FindResource("aws_ebs_volume.data")
	if err := (EBSVolumeMapper{}).MapResource(r, b, ctx); err != nil {
		t.Fatalf("MapResource() err = %v", err)
	}

	tmpl, err := b.Build()
	if err != nil {
		t.Fatalf("Build() err = %v", err)
	}
	node, ok := tmpl.NodeTemplates.Get("data")
	if !ok {
		t.Fatalf("node %q not found", "data")
	}
	size, _ := node.Properties.Get("size")
	if size != "100 GB" {
		t.Errorf("size = %v, want \"100 GB\"", size)
	}
	encrypted, _ := node.Metadata.Get("aws_encrypted")
	if encrypted != true {
		t.Errorf("aws_encrypted = %v, want true", encrypted)
	}
}
