package refs

import (
	"testing"

	"github.com/edelwud/tf2tosca/internal/terraform/tfplan"
)

func TestExtractFromConfigurationStripsTrailingID(t *testing.T) {
	plan, err := tfplan.Parse([]byte(`{
		"configuration": {
			"root_module": {
				"resources": [
					{
						"address": "aws_instance.web",
						"type": "aws_instance",
						"name": "web",
						"expressions": {
							"subnet_id": {"references": ["aws_subnet.public.id"]},
							"ami": {"references": ["var.ami_id"]}
						}
					}
				]
			}
		},
		"planned_values": {"root_module": {"resources": [{"address": "aws_instance.web", "type": "aws_instance", "name": "web", "values": {}}]}}
	}`))
	if err != nil {
		t.Fatalf("Parse() err = %v", err)
	}

	resource := plan.PlannedValues.RootModule.Resources[0]
	got := Extract(plan, &resource)

	if len(got) != 1 {
		t.Fatalf("Extract() = %+v, want exactly one reference (var. ref skipped)", got)
	}
	if got[0].TargetAddress != "aws_subnet.public" {
		t.Errorf("TargetAddress = %q, want aws_subnet.public (stripped .id)", got[0].TargetAddress)
	}
	if got[0].RelationshipType != DependsOn {
		t.Errorf("RelationshipType = %q, want DependsOn", got[0].RelationshipType)
	}
}

func TestExtractPrefersDependsOnOverValuePatterns(t *testing.T) {
	plan, err := tfplan.Parse([]byte(`{
		"configuration": {"root_module": {"resources": []}},
		"planned_values": {
			"root_module": {
				"resources": [
					{"address": "aws_subnet.private", "type": "aws_subnet", "name": "private", "values": {"vpc_id": "vpc-123"}, "depends_on": ["aws_vpc.main"]},
					{"address": "aws_vpc.main", "type": "aws_vpc", "name": "main", "values": {"id": "vpc-123"}}
				]
			}
		}
	}`))
	if err != nil {
		t.Fatalf("Parse() err = %v", err)
	}

	resource := plan.PlannedValues.RootModule.Resources[0]
	got := Extract(plan, &resource)

	if len(got) != 1 || got[0].TargetAddress != "aws_vpc.main" {
		t.Fatalf("Extract() = %+v, want single dependency on aws_vpc.main from depends_on", got)
	}
	if got[0].PropertyName != "dependency" {
		t.Errorf("PropertyName = %q, want dependency", got[0].PropertyName)
	}
}

func TestExtractFallsBackToValuePatternWhenDependsOnEmpty(t *testing.T) {
	plan, err := tfplan.Parse([]byte(`{
		"configuration": {"root_module": {"resources": []}},
		"planned_values": {
			"root_module": {
				"resources": [
					{"address": "aws_subnet.private", "type": "aws_subnet", "name": "private", "values": {"vpc_id": "vpc-123"}},
					{"address": "aws_vpc.main", "type": "aws_vpc", "name": "main", "values": {"id": "vpc-123"}}
				]
			}
		}
	}`))
	if err != nil {
		t.Fatalf("Parse() err = %v", err)
	}

	resource := plan.PlannedValues.RootModule.Resources[0]
	got := Extract(plan, &resource)

	if len(got) != 1 || got[0].TargetAddress != "aws_vpc.main" {
		t.Fatalf("Extract() = %+v, want value-pattern match on aws_vpc.main", got)
	}
}

func TestExtractDedupesByTargetKeepingFirst(t *testing.T) {
	plan, err := tfplan.Parse([]byte(`{
		"configuration": {
			"root_module": {
				"resources": [
					{
						"address": "aws_instance.web",
						"type": "aws_instance",
						"name": "web",
						"expressions": {
							"subnet_id": {"references": ["aws_subnet.public.id"]},
							"network_interface": {"references": ["aws_subnet.public.id"]}
						}
					}
				]
			}
		},
		"planned_values": {"root_module": {"resources": [{"address": "aws_instance.web", "type": "aws_instance", "name": "web", "values": {}}]}}
	}`))
	if err != nil {
		t.Fatalf("Parse() err = %v", err)
	}

	resource := plan.PlannedValues.RootModule.Resources[0]
	got := Extract(plan, &resource)

	if len(got) != 1 {
		t.Fatalf("Extract() = %+v, want one deduped reference to aws_subnet.public", got)
	}
}

func TestClassifyRelationshipTypes(t *testing.T) {
	tests := []struct {
		property string
		target   string
		want     string
	}{
		{"vpc_id", "aws_vpc.main", DependsOn},
		{"instance_id", "aws_instance.web", HostedOn},
		{"load_balancer_arn", "aws_lb.main", ConnectsTo},
		{"network_interface", "aws_subnet.public", LinksTo},
		{"network_interface", "aws_instance.web", DependsOn},
		{"random_property", "aws_s3_bucket.data", DependsOn},
	}
	for _, tt := range tests {
		if got := classify(tt.property, tt.target); got != tt.want {
			t.Errorf("classify(%q, %q) = %q, want %q", tt.property, tt.target, got, tt.want)
		}
	}
}
