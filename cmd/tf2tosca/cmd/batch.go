package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/edelwud/tf2tosca/internal/discovery"
	"github.com/edelwud/tf2tosca/internal/filter"
	"github.com/edelwud/tf2tosca/internal/terraform/engine"
	"github.com/edelwud/tf2tosca/internal/terraform/planrun"
	"github.com/edelwud/tf2tosca/internal/tosca/yamlenc"
	"github.com/edelwud/tf2tosca/pkg/log"
)

var (
	batchExclude  []string
	batchInclude  []string
	batchParallel int
)

// batchCmd translates every root module under a parent directory,
// one output document per module, instead of a single project.
var batchCmd = &cobra.Command{
	Use:   "batch <parent_directory> <output_directory>",
	Short: "Translate every Terraform root module under a directory tree",
	Long: `Scan a parent directory for independent Terraform root modules
(each a directory containing at least one *.tf file) and translate each
one into its own TOSCA service template directly under output_directory.
Each file is named after the module's relative path with "/" replaced
by "__" (root.yaml for a module at the parent directory itself).

Example:
  tf2tosca batch ./infra ./generated
  tf2tosca batch --exclude 'legacy/*' ./infra ./generated`,
	Args: cobra.ExactArgs(2),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().StringArrayVar(&batchExclude, "exclude", nil, "glob pattern for root modules to skip (repeatable)")
	batchCmd.Flags().StringArrayVar(&batchInclude, "include", nil, "glob pattern root modules must match (repeatable)")
	batchCmd.Flags().IntVar(&batchParallel, "parallel", 4, "number of root modules to translate concurrently")
}

func runBatch(_ *cobra.Command, args []string) error {
	parentDir := args[0]
	outputDir := args[1]

	scanner := discovery.NewScanner(parentDir)
	if cfg.Discovery.MaxDepth > 0 {
		scanner.MaxDepth = cfg.Discovery.MaxDepth
	}

	modules, err := scanner.Scan()
	if err != nil {
		return &engine.InvalidInputError{Reason: fmt.Sprintf("failed to scan %s: %s", parentDir, err)}
	}
	if len(modules) == 0 {
		return &engine.InvalidInputError{Reason: fmt.Sprintf("no terraform root modules found under %s", parentDir)}
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(len(modules))*planrun.CommandTimeout)
	defer cancel()

	if err := discovery.ValidateAll(ctx, modules); err != nil {
		return &engine.InvalidInputError{Reason: err.Error()}
	}

	exclude := append(append([]string{}, cfg.Discovery.Exclude...), batchExclude...)
	include := append(append([]string{}, cfg.Discovery.Include...), batchInclude...)
	glob := filter.NewGlobFilter(exclude, include)
	modules = glob.FilterModules(modules)
	if len(modules) == 0 {
		log.Warn("all discovered root modules were excluded by filter patterns")
		return nil
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return &engine.OutputIoError{Path: outputDir, Cause: err}
	}

	log.WithField("count", len(modules)).Info("translating discovered root modules")

	parallelism := batchParallel
	if parallelism < 1 {
		parallelism = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)

	for _, m := range modules {
		m := m
		g.Go(func() error {
			return translateModule(gctx, m, outputDir)
		})
	}

	return g.Wait()
}

// translateModule runs one discovered root module through the shared
// translate pipeline and writes its document directly under outputDir,
// named after the module's relative path with "/" replaced by "__" and
// a .yaml extension.
func translateModule(ctx context.Context, m *discovery.RootModule, outputDir string) error {
	name := m.RelativePath
	if name == "" {
		name = "root"
	}
	outPath := filepath.Join(outputDir, strings.ReplaceAll(name, "/", "__")+".yaml")

	log.WithField("module", m.RelativePath).Info("translating root module")

	result, err := translate(ctx, m.Path)
	if err != nil {
		log.WithField("module", m.RelativePath).WithError(err).Error("translation failed")
		return fmt.Errorf("%s: %w", m.RelativePath, err)
	}

	gen := yamlenc.GenerationMetadata{
		GeneratorVersion: firstNonEmpty(cfg.Output.GeneratorVersion, buildVersion),
		GeneratedAt:      time.Now(),
	}
	if err := yamlenc.WriteFile(outPath, result, gen); err != nil {
		return fmt.Errorf("%s: %w", m.RelativePath, wrapEmitError(outPath, err))
	}

	log.WithField("module", m.RelativePath).WithField("file", outPath).Info("wrote tosca service template")
	return nil
}
