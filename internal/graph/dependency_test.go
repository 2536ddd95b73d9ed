package graph

import (
	"sort"
	"testing"

	"github.com/edelwud/tf2tosca/internal/tosca/model"
)

func serviceTemplateWith(nodes map[string][]string) *model.ServiceTemplate {
	svc := model.NewServiceTemplate()
	for name := range nodes {
		tmpl, err := model.NewNodeTemplate("Some.Type")
		if err != nil {
			panic(err)
		}
		svc.NodeTemplates.Set(name, tmpl)
	}
	for name, deps := range nodes {
		tmpl, _ := svc.NodeTemplates.Get(name)
		for _, dep := range deps {
			req := model.RequirementEntry{
				Name:       "dependency",
				Assignment: *withNode(dep),
			}
			tmpl.Requirements = append(tmpl.Requirements, req)
		}
	}
	return svc
}

func withNode(target string) *model.RequirementAssignment {
	ra := model.NewRequirementAssignment()
	if err := ra.WithNode(target); err != nil {
		panic(err)
	}
	return ra
}

func TestBuildFromServiceTemplate_TopologicalSort(t *testing.T) {
	// vpc -> eks -> app
	//     -> rds -> app
	svc := serviceTemplateWith(map[string][]string{
		"vpc": nil,
		"eks": {"vpc"},
		"rds": {"vpc"},
		"app": {"eks", "rds"},
	})

	g := BuildFromServiceTemplate(svc)

	sorted, err := g.TopologicalSort()
	if err != nil {
		t.Fatalf("TopologicalSort failed: %v", err)
	}

	if sorted[0] != "vpc" {
		t.Errorf("Expected vpc first, got %s", sorted[0])
	}
	if sorted[len(sorted)-1] != "app" {
		t.Errorf("Expected app last, got %s", sorted[len(sorted)-1])
	}
	if len(sorted) != 4 {
		t.Errorf("Expected 4 nodes, got %d", len(sorted))
	}
}

func TestDependencyGraph_CycleDetection(t *testing.T) {
	// a -> b -> c -> a
	g := NewDependencyGraph()
	g.AddNode("a", "T")
	g.AddNode("b", "T")
	g.AddNode("c", "T")
	g.AddEdge("a", "b")
	g.AddEdge("b", "c")
	g.AddEdge("c", "a")

	cycles := g.DetectCycles()
	if len(cycles) == 0 {
		t.Fatal("expected at least one cycle")
	}

	_, err := g.TopologicalSort()
	if err == nil {
		t.Error("expected TopologicalSort to fail on a cyclic graph")
	}
}

func TestDependencyGraph_ExecutionLevels(t *testing.T) {
	svc := serviceTemplateWith(map[string][]string{
		"vpc": nil,
		"eks": {"vpc"},
		"rds": {"vpc"},
		"app": {"eks", "rds"},
	})
	g := BuildFromServiceTemplate(svc)

	levels, err := g.ExecutionLevels()
	if err != nil {
		t.Fatalf("ExecutionLevels failed: %v", err)
	}
	if len(levels) != 3 {
		t.Fatalf("expected 3 levels, got %d: %v", len(levels), levels)
	}
	if levels[0][0] != "vpc" {
		t.Errorf("expected vpc at level 0, got %v", levels[0])
	}
	sort.Strings(levels[1])
	if levels[1][0] != "eks" || levels[1][1] != "rds" {
		t.Errorf("expected eks and rds at level 1, got %v", levels[1])
	}
	if levels[2][0] != "app" {
		t.Errorf("expected app at level 2, got %v", levels[2])
	}
}

func TestDependencyGraph_GetAllDependencies(t *testing.T) {
	svc := serviceTemplateWith(map[string][]string{
		"vpc": nil,
		"eks": {"vpc"},
		"app": {"eks"},
	})
	g := BuildFromServiceTemplate(svc)

	deps := g.GetAllDependencies("app")
	sort.Strings(deps)
	if len(deps) != 2 || deps[0] != "eks" || deps[1] != "vpc" {
		t.Errorf("GetAllDependencies(app) = %v, want [eks vpc]", deps)
	}
}

func TestDependencyGraph_ToDOT(t *testing.T) {
	svc := serviceTemplateWith(map[string][]string{
		"vpc": nil,
		"eks": {"vpc"},
	})
	g := BuildFromServiceTemplate(svc)

	dot := g.ToDOT()
	if dot == "" {
		t.Fatal("ToDOT returned empty string")
	}
	if !contains(dot, "digraph tosca_nodes") {
		t.Error("ToDOT output missing graph header")
	}
	if !contains(dot, `"eks" -> "vpc"`) {
		t.Error("ToDOT output missing expected edge")
	}
}

func TestDependencyGraph_GetStats(t *testing.T) {
	svc := serviceTemplateWith(map[string][]string{
		"vpc": nil,
		"eks": {"vpc"},
		"rds": {"vpc"},
	})
	g := BuildFromServiceTemplate(svc)

	stats := g.GetStats()
	if stats.TotalNodes != 3 {
		t.Errorf("TotalNodes = %d, want 3", stats.TotalNodes)
	}
	if stats.TotalEdges != 2 {
		t.Errorf("TotalEdges = %d, want 2", stats.TotalEdges)
	}
	if stats.HasCycles {
		t.Error("expected no cycles")
	}
}

func TestBuildFromServiceTemplate_NilInput(t *testing.T) {
	g := BuildFromServiceTemplate(nil)
	if len(g.Nodes()) != 0 {
		t.Errorf("expected empty graph for nil service template")
	}
}

func contains(haystack, needle string) bool {
	return len(haystack) >= len(needle) && (func() bool {
		for i := 0; i+len(needle) <= len(haystack); i++ {
			if haystack[i:i+len(needle)] == needle {
				return true
			}
		}
		return false
	})()
}
