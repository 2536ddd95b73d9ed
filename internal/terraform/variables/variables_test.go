package variables

import (
	"testing"

	"github.com/edelwud/tf2tosca/internal/terraform/tfplan"
)

func samplePlan(t *testing.T) *tfplan.ParsedPlan {
	t.Helper()
	plan, err := tfplan.Parse([]byte(`{
		"configuration": {
			"root_module": {
				"variables": {
					"db_name": {"type": "string", "description": "database name"},
					"instance_count": {"type": "number", "default": 2}
				},
				"resources": [
					{
						"address": "aws_db_instance.main",
						"type": "aws_db_instance",
						"name": "main",
						"expressions": {
							"name": {"references": ["var.db_name"]},
							"vpc_security_group_ids": {"references": ["aws_security_group.db.id"]}
						}
					}
				]
			}
		},
		"planned_values": {
			"root_module": {
				"resources": [
					{"address": "aws_db_instance.main", "type": "aws_db_instance", "name": "main", "values": {"name": "app-db", "engine": "postgres"}}
				]
			}
		}
	}`))
	if err != nil {
		t.Fatalf("tfplan.Parse() err = %v", err)
	}
	return plan
}

func TestBuildConvertsVariableWithNoDefaultToRequiredInput(t *testing.T) {
	ctx := Build(samplePlan(t))
	inputs := ctx.ToscaInputs()

	var dbName *ToscaInput
	for i := range inputs {
		if inputs[i].Name == "db_name" {
			dbName = &inputs[i]
		}
	}
	if dbName == nil {
		t.Fatal("db_name input not found")
	}
	if !dbName.Required {
		t.Error("db_name.Required = false, want true (no default)")
	}
	if dbName.Type != "string" {
		t.Errorf("db_name.Type = %q, want string", dbName.Type)
	}
}

func TestBuildConvertsVariableWithDefaultToOptionalInput(t *testing.T) {
	ctx := Build(samplePlan(t))
	inputs := ctx.ToscaInputs()

	var count *ToscaInput
	for i := range inputs {
		if inputs[i].Name == "instance_count" {
			count = &inputs[i]
		}
	}
	if count == nil {
		t.Fatal("instance_count input not found")
	}
	if count.Required {
		t.Error("instance_count.Required = true, want false (has default)")
	}
	if count.Type != "float" {
		t.Errorf("instance_count.Type = %q, want float", count.Type)
	}
}

func TestResolvePropertyUsesGetInputWhenVariableBacked(t *testing.T) {
	ctx := Build(samplePlan(t))

	got := ctx.Resolve("aws_db_instance.main", "name", Property)
	m, ok := got.(map[string]any)
	if !ok {
		t.Fatalf("Resolve() = %v (%T), want map with $get_input", got, got)
	}
	if m["$get_input"] != "db_name" {
		t.Errorf("$get_input = %v, want db_name", m["$get_input"])
	}
}

func TestResolveMetadataNeverReturnsGetInput(t *testing.T) {
	ctx := Build(samplePlan(t))

	got := ctx.Resolve("aws_db_instance.main", "name", Metadata)
	if m, ok := got.(map[string]any); ok {
		t.Fatalf("Resolve(Metadata) = %v, must never be a $get_input map", m)
	}
	if got != "app-db" {
		t.Errorf("Resolve(Metadata) = %v, want concrete value app-db", got)
	}
}

func TestResolveNonVariableBackedPropertyReturnsConcreteValue(t *testing.T) {
	ctx := Build(samplePlan(t))

	got := ctx.Resolve("aws_db_instance.main", "engine", Property)
	if got != "postgres" {
		t.Errorf("Resolve(engine) = %v, want postgres", got)
	}
}

func TestIsVariableBacked(t *testing.T) {
	ctx := Build(samplePlan(t))

	if !ctx.IsVariableBacked("aws_db_instance.main", "name") {
		t.Error("IsVariableBacked(name) = false, want true")
	}
	if ctx.IsVariableBacked("aws_db_instance.main", "engine") {
		t.Error("IsVariableBacked(engine) = true, want false")
	}
}

func TestConcreteReturnsValueRegardlessOfVariableBacking(t *testing.T) {
	ctx := Build(samplePlan(t))

	v, ok := ctx.Concrete("aws_db_instance.main", "name")
	if !ok || v != "app-db" {
		t.Errorf("Concrete(name) = (%v, %v), want (app-db, true)", v, ok)
	}
}
