package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/edelwud/tf2tosca/internal/graph"
	"github.com/edelwud/tf2tosca/internal/terraform/planrun"
)

var (
	graphFormat    string
	graphOutput    string
	graphShowStats bool
	graphNode      string
	graphReverse   bool
)

var graphCmd = &cobra.Command{
	Use:   "graph <input_directory>",
	Short: "Display the node dependency graph of a translated project",
	Long: `Translate a Terraform project and display the requirement graph
among its resulting node templates, without writing a YAML file.

Formats:
  - dot: GraphViz DOT format (can be rendered with: dot -Tpng -o graph.png)
  - list: simple text list in dependency order
  - levels: execution levels (nodes with no relationship to each other)

Examples:
  tf2tosca graph ./infra/network --format dot -o deps.dot
  tf2tosca graph ./infra/network --format dot | dot -Tpng -o deps.png
  tf2tosca graph ./infra/network --stats
  tf2tosca graph ./infra/network --node aws_vpc_main`,
	Args: cobra.ExactArgs(1),
	RunE: runGraph,
}

func init() {
	rootCmd.AddCommand(graphCmd)

	graphCmd.Flags().StringVarP(&graphFormat, "format", "f", "dot", "output format: dot, list, levels")
	graphCmd.Flags().StringVarP(&graphOutput, "output", "o", "", "output file (default: stdout)")
	graphCmd.Flags().BoolVar(&graphShowStats, "stats", false, "show graph statistics")
	graphCmd.Flags().StringVar(&graphNode, "node", "", "show requirements for a specific node template")
	graphCmd.Flags().BoolVar(&graphReverse, "reverse", false, "with --node, show nodes that require it instead")
}

func runGraph(_ *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 3*planrun.CommandTimeout)
	defer cancel()

	file, err := translate(ctx, args[0])
	if err != nil {
		return err
	}

	depGraph := graph.BuildFromServiceTemplate(file.ServiceTemplate)

	if graphNode != "" {
		return showNodeDependencies(depGraph, graphNode, graphReverse)
	}

	if graphShowStats {
		return showGraphStats(depGraph)
	}

	var output string
	switch graphFormat {
	case "dot":
		output = depGraph.ToDOT()
	case "list":
		output = formatList(depGraph)
	case "levels":
		output, err = formatLevels(depGraph)
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown format: %s", graphFormat)
	}

	if graphOutput != "" {
		if err := os.WriteFile(graphOutput, []byte(output), 0o644); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Graph written to %s\n", graphOutput)
	} else {
		fmt.Print(output)
	}

	return nil
}

func showNodeDependencies(g *graph.DependencyGraph, name string, reverse bool) error {
	if g.GetNode(name) == nil {
		return fmt.Errorf("node template not found: %s", name)
	}

	var deps []string
	var label string

	if reverse {
		deps = g.GetAllDependents(name)
		label = "Nodes that require"
	} else {
		deps = g.GetAllDependencies(name)
		label = "Requirements of"
	}

	fmt.Printf("%s %s:\n", label, name)
	if len(deps) == 0 {
		fmt.Println("  (none)")
	} else {
		for _, d := range deps {
			fmt.Printf("  - %s\n", d)
		}
	}

	return nil
}

func showGraphStats(g *graph.DependencyGraph) error {
	stats := g.GetStats()

	fmt.Println("Node Dependency Graph Statistics:")
	fmt.Printf("  Total nodes:       %d\n", stats.TotalNodes)
	fmt.Printf("  Total edges:       %d\n", stats.TotalEdges)
	fmt.Printf("  Root nodes:        %d (no requirements)\n", stats.RootNodes)
	fmt.Printf("  Leaf nodes:        %d (no dependents)\n", stats.LeafNodes)
	fmt.Printf("  Max depth:         %d\n", stats.MaxDepth)
	fmt.Printf("  Average depth:     %.2f\n", stats.AverageDepth)

	if stats.HasCycles {
		fmt.Printf("  Cycles detected:   %d (WARNING!)\n", stats.CycleCount)
		cycles := g.DetectCycles()
		fmt.Println("\nCycles:")
		for i, cycle := range cycles {
			fmt.Printf("  %d: %s\n", i+1, strings.Join(cycle, " -> "))
		}
	} else {
		fmt.Printf("  Cycles:            none\n")
	}

	return nil
}

func formatList(g *graph.DependencyGraph) string {
	var sb strings.Builder

	sorted, err := g.TopologicalSort()
	if err != nil {
		sb.WriteString(fmt.Sprintf("Error: %s\n", err))
		return sb.String()
	}

	for _, name := range sorted {
		deps := g.GetDependencies(name)
		if len(deps) == 0 {
			sb.WriteString(fmt.Sprintf("%s\n", name))
		} else {
			sb.WriteString(fmt.Sprintf("%s -> %s\n", name, strings.Join(deps, ", ")))
		}
	}

	return sb.String()
}

func formatLevels(g *graph.DependencyGraph) (string, error) {
	levels, err := g.ExecutionLevels()
	if err != nil {
		return "", err
	}

	var sb strings.Builder

	sb.WriteString("Execution Levels (nodes at the same level share no requirement relationship):\n\n")

	for i, level := range levels {
		sb.WriteString(fmt.Sprintf("Level %d:\n", i))
		for _, name := range level {
			sb.WriteString(fmt.Sprintf("  - %s\n", name))
		}
		sb.WriteString("\n")
	}

	return sb.String(), nil
}
