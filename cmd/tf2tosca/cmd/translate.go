package cmd

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/edelwud/tf2tosca/internal/policy"
	"github.com/edelwud/tf2tosca/internal/terraform/engine"
	"github.com/edelwud/tf2tosca/internal/terraform/mappers"
	tfplandiff "github.com/edelwud/tf2tosca/internal/terraform/plan"
	"github.com/edelwud/tf2tosca/internal/terraform/planrun"
	"github.com/edelwud/tf2tosca/internal/tosca/model"
	"github.com/edelwud/tf2tosca/internal/tosca/yamlenc"
	"github.com/edelwud/tf2tosca/pkg/log"
)

// buildVersion is set by SetVersion and stamped into generated_by
// documents as generator_version; it stays empty in tests.
var buildVersion string

// showDiff prints a terraform-json change summary ahead of translation
// when set by the --show-diff flag.
var showDiff bool

// translate runs the Terraform CLI against dir and translates the
// resulting plan into a TOSCA service template. It is shared by the
// root translate command and by graph, which needs the built model
// without writing it anywhere.
func translate(ctx context.Context, dir string) (*model.ToscaFile, error) {
	log.WithField("dir", dir).Info("running terraform to obtain plan")
	raw, err := planrun.Run(ctx, planrun.Options{
		Binary:   cfg.Terraform.Binary,
		Dir:      dir,
		UseCache: cfg.Terraform.UseCache || useCache,
	})
	if err != nil {
		return nil, &usageError{code: planrunExitCode(err), err: err}
	}

	if err := engine.ValidateInputPath(raw); err != nil {
		return nil, err
	}

	if showDiff {
		printDiffSummary(dir, raw)
	}

	log.Debug("parsing terraform plan")
	plan, err := engine.ParsePlan(raw)
	if err != nil {
		return nil, err
	}

	log.Debug("translating plan to tosca service template")
	return engine.Translate(plan, engine.Options{
		Registry:          mappers.NewRegistry(),
		StrictUnsupported: cfg.Mappers.StrictUnsupported,
	})
}

// printDiffSummary decodes the raw plan with terraform-json's native
// Plan type to report the change counts terraform itself would show,
// independent of (and a cross-check against) the engine's own typed
// plan intermediate. A decode failure here is non-fatal: diff display
// is a convenience, not a precondition for translation.
func printDiffSummary(dir string, raw []byte) {
	parsed, err := tfplandiff.ParseJSONData(raw)
	if err != nil {
		log.WithField("dir", dir).WithError(err).Warn("could not summarize plan changes")
		return
	}
	log.WithField("dir", dir).Info(parsed.Summary())
}

func runTranslate(_ *cobra.Command, args []string) error {
	inputDir := args[0]
	outputFile := args[1]

	if ext := strings.ToLower(filepath.Ext(outputFile)); ext != ".yaml" && ext != ".yml" {
		return &usageError{code: 1, err: &engine.InvalidInputError{
			Reason: fmt.Sprintf("output file must have a .yaml or .yml extension, got %q", outputFile),
		}}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*planrun.CommandTimeout)
	defer cancel()

	result, err := translate(ctx, inputDir)
	if err != nil {
		return err
	}

	gen := yamlenc.GenerationMetadata{
		GeneratorVersion: firstNonEmpty(cfg.Output.GeneratorVersion, buildVersion),
		GeneratedAt:      time.Now(),
	}
	if err := yamlenc.WriteFile(outputFile, result, gen); err != nil {
		return wrapEmitError(outputFile, err)
	}
	log.WithField("file", outputFile).Info("wrote tosca service template")

	if cfg.Policy != nil && cfg.Policy.Enabled {
		checker := policy.NewChecker(cfg.Policy, cfg.Policy.Dirs)
		result, err := checker.CheckDocument(ctx, outputFile)
		if err != nil {
			return fmt.Errorf("policy check failed: %w", err)
		}
		logPolicyResult(result)
		if checker.ShouldBlock(policy.NewSummary([]policy.Result{*result})) {
			return fmt.Errorf("policy check failed with %d violations", len(result.Failures))
		}
	}

	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// planrunExitCode maps a planrun failure to the nearest §6.1 exit code:
// a directory that isn't a Terraform project is an input problem (1);
// any other planrun failure (a missing binary, or the terraform
// subprocess itself failing on bad config or a provider error) is
// "other terraform-plugin error" (7).
func planrunExitCode(err error) int {
	var notDir *planrun.NotATerraformDirError
	if errors.As(err, &notDir) {
		return 1
	}
	return 7
}

func wrapEmitError(path string, err error) error {
	var ioErr *yamlenc.IoError
	if errors.As(err, &ioErr) {
		return &engine.OutputIoError{Path: path, Cause: ioErr.Unwrap()}
	}
	var serErr *yamlenc.SerializationError
	if errors.As(err, &serErr) {
		return &engine.SerializationError{Cause: serErr}
	}
	return &engine.OutputIoError{Path: path, Cause: err}
}

func logPolicyResult(result *policy.Result) {
	if result == nil {
		return
	}
	for _, f := range result.Failures {
		log.WithField("namespace", f.Namespace).WithField("message", f.Message).Error("policy failure")
	}
	for _, w := range result.Warnings {
		log.WithField("namespace", w.Namespace).WithField("message", w.Message).Warn("policy warning")
	}
}
