package mappers

import (
	"testing"

	"github.com/edelwud/tf2tosca/internal/tosca/builder"
)

func TestVPCMapperSetsCIDRAndMetadata(t *testing.T) {
	ctx := buildContext(t, `{
		"configuration": {"root_module": {"resources": []}},
		"planned_values": {"root_module": {"resources": [
			{"address": "aws_vpc.main", "type": "aws_vpc", "name": "main",
			 "values": {"cidr_block": "10.0.0.0/16", "enable_dns_support": true, "tags": {"Name": "main-vpc"}}}
		]}}
	}`)

	b := builder.NewServiceTemplateBuilder()
	r := ctx.FindResource("aws_vpc.main")
	if err := (VPCMapper{}).MapResource(r, b, ctx); err != nil {
		t.Fatalf("MapResource() err = %v", err)
	}

	tmpl, err := b.Build()
	if err != nil {
		t.Fatalf("Build() err = %v", err)
	}
	node, ok := tmpl.NodeTemplates.Get("main")
	if !ok {
		t.Fatalf("node %q not found", "main")
	}
	if node.Type != "Network" {
		t.Errorf("node type = %q, want Network", node.Type)
	}
	cidr, _ := node.Properties.Get("cidr")
	if cidr != "10.0.0.0/16" {
		t.Errorf("cidr = %v, want 10.0.0.0/16", cidr)
	}
}

func TestInternetGatewayMapperBranchesOnEgressOnly(t *testing.T) {
	ctx := buildContext(t, `{
		"configuration": {"root_module": {"resources": []}},
		"planned_values": {"root_module": {"resources": [
			{"address": "aws_internet_gateway.igw", "type": "aws_internet_gateway", "name": "igw",
			 "values": {"vpc_id": "vpc-1"}},
			{"address": "aws_egress_only_internet_gateway.eigw", "type": "aws_egress_only_internet_gateway", "name": "eigw",
			 "values": {"vpc_id": "vpc-1"}}
		]}}
	}`)

	b := builder.NewServiceTemplateBuilder()
	m := InternetGatewayMapper{}
	if !m.CanMap("aws_internet_gateway") || !m.CanMap("aws_egress_only_internet_gateway") {
		t.Fatalf("CanMap() should accept both gateway resource types")
	}

	if err := m.MapResource(ctx.FindResource("aws_internet_gateway.igw"), b, ctx); err != nil {
		t.Fatalf("MapResource(igw) err = %v", err)
	}
	if err := m.MapResource(ctx.FindResource("aws_egress_only_internet_gateway.eigw"), b, ctx); err != nil {
		t.Fatalf("MapResource(eigw) err = %v", err)
	}

	tmpl, err := b.Build()
	if err != nil {
		t.Fatalf("Build() err = %v", err)
	}

	igw, ok := tmpl.NodeTemplates.Get("igw")
	if !ok {
		t.Fatalf("node %q not found", "igw")
	}
	ipv, _ := igw.Properties.Get("ip_version")
	if ipv != 4 {
		t.Errorf("igw ip_version = %v, want 4", ipv)
	}

	eigw, ok := tmpl.NodeTemplates.Get("eigw")
	if !ok {
		t.Fatalf("node %q not found", "eigw")
	}
	ipv6, _ := eigw.Properties.Get("ip_version")
	if ipv6 != 6 {
		t.Errorf("eigw ip_version = %v, want 6", ipv6)
	}
}

func TestRouteMapperAddsDependencyOnRouteTable(t *testing.T) {
	ctx := buildContext(t, `{
		"configuration": {"root_module": {"resources": [
			{"address": "aws_route.default", "type": "aws_route", "name": "default",
			 "expressions": {
				"route_table_id": {"references": ["aws_route_table.public.id"]},
				"gateway_id": {"references": ["aws_internet_gateway.igw.id"]}
			 }}
		]}},
		"planned_values": {"root_module": {"resources": [
			{"address": "aws_route_table.public", "type": "aws_route_table", "name": "public", "values": {}},
			{"address": "aws_internet_gateway.igw", "type": "aws_internet_gateway", "name": "igw", "values": {"vpc_id": "vpc-1"}},
			{"address": "aws_route.default", "type": "aws_route", "name": "default",
			 "values": {"destination_cidr_block": "0.0.0.0/0", "route_table_id": "rtb-1", "gateway_id": "igw-1"}}
		]}}
	}`)

	b := builder.NewServiceTemplateBuilder()
	b.AddNode("public", "Network")
	b.AddNode("IGW-igw", "Network")

	r := ctx.FindResource("aws_route.default")
	if err := (RouteMapper{}).MapResource(r, b, ctx); err != nil {
		t.Fatalf("MapResource() err = %v", err)
	}

	tmpl, err := b.Build()
	if err != nil {
		t.Fatalf("Build() err = %v", err)
	}
	rt, ok := tmpl.NodeTemplates.Get("public")
	if !ok {
		t.Fatalf("node %q not found", "public")
	}
	if len(rt.Requirements) != 1 {
		t.Fatalf("route table requirements = %+v, want exactly one dependency requirement", rt.Requirements)
	}
	if rt.Requirements[0].Name != "dependency" {
		t.Errorf("requirement name = %q, want dependency", rt.Requirements[0].Name)
	}
	if rt.Requirements[0].Assignment.Relationship != "LinksTo" {
		t.Errorf("relationship = %v, want LinksTo", rt.Requirements[0].Assignment.Relationship)
	}

	if _, ok := tmpl.NodeTemplates.Get("default"); ok {
		t.Errorf("standalone aws_route must not create its own node")
	}
}

func TestRouteMapperMissingRouteTableNode(t *testing.T) {
	ctx := buildContext(t, `{
		"configuration": {"root_module": {"resources": [
			{"address": "aws_route.orphan", "type": "aws_route", "name": "orphan",
			 "expressions": {"route_table_id": {"references": ["aws_route_table.missing.id"]}}}
		]}},
		"planned_values": {"root_module": {"resources": [
			{"address": "aws_route.orphan", "type": "aws_route", "name": "orphan",
			 "values": {"destination_cidr_block": "0.0.0.0/0", "route_table_id": "rtb-x"}}
		]}}
	}`)

	b := builder.NewServiceTemplateBuilder()
	r := ctx.FindResource("aws_route.orphan")
	err := (RouteMapper{}).MapResource(r, b, ctx)
	if err == nil {
		t.Fatalf("MapResource() err = nil, want MissingNodeError")
	}
	if _, ok := err.(*MissingNodeError); !ok {
		t.Errorf("err = %T, want *MissingNodeError", err)
	}
}
