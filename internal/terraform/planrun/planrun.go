// Package planrun is the CLI-only collaborator that invokes the
// Terraform CLI to obtain a parsed plan. It is never imported by the
// engine packages (internal/terraform/engine, tfplan, variables, refs,
// mappers): per spec §1 the engine only consumes an already-parsed
// plan document, and per §5 each CLI-invoked command is bounded to 300
// seconds. This package owns that process lifecycle instead.
package planrun

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/edelwud/tf2tosca/pkg/log"
)

// CommandTimeout bounds every individual terraform invocation, per §5.
const CommandTimeout = 300 * time.Second

// CachedPlanFilename is the name terraform-plan.json takes alongside
// the project, mirroring original_source's TerraformParser cache.
const CachedPlanFilename = "terraform-plan.json"

// Options configures a Run.
type Options struct {
	// Binary is the terraform (or tofu) executable to invoke.
	Binary string
	// Dir is the Terraform project directory; must contain at least
	// one *.tf file.
	Dir string
	// UseCache reuses an existing terraform-plan.json in Dir instead
	// of invoking the CLI, mirroring original_source's parser cache.
	UseCache bool
}

// NotATerraformDirError signals Dir has no *.tf files.
type NotATerraformDirError struct {
	Dir string
}

func (e *NotATerraformDirError) Error() string {
	return fmt.Sprintf("%q is not a Terraform project directory (no *.tf files)", e.Dir)
}

// BinaryNotFoundError signals the configured binary isn't on PATH.
type BinaryNotFoundError struct {
	Binary string
}

func (e *BinaryNotFoundError) Error() string {
	return fmt.Sprintf("terraform binary %q not found on PATH", e.Binary)
}

// CommandError wraps a failed terraform invocation with its captured
// stderr, so callers can surface the underlying CLI diagnostic.
type CommandError struct {
	Args   []string
	Stderr string
	Cause  error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("terraform %v failed: %v: %s", e.Args, e.Cause, e.Stderr)
}

func (e *CommandError) Unwrap() error { return e.Cause }

// IsTerraformDir reports whether dir contains at least one *.tf file.
func IsTerraformDir(dir string) bool {
	matches, err := filepath.Glob(filepath.Join(dir, "*.tf"))
	return err == nil && len(matches) > 0
}

// Run executes `terraform init`, `terraform plan -out=...` and
// `terraform show -json` in Opts.Dir, returning the raw plan JSON
// bytes ready for engine.ParsePlan. It caches the JSON document to
// terraform-plan.json alongside the project and, when Opts.UseCache is
// set, returns that cache directly instead of re-running the CLI -
// the behaviour original_source's TerraformParser.parse implements as
// clear_plan_cache/cache-on-disk.
func Run(ctx context.Context, opts Options) ([]byte, error) {
	binary := opts.Binary
	if binary == "" {
		binary = "terraform"
	}

	if !IsTerraformDir(opts.Dir) {
		return nil, &NotATerraformDirError{Dir: opts.Dir}
	}

	cachePath := filepath.Join(opts.Dir, CachedPlanFilename)
	if opts.UseCache {
		if data, err := os.ReadFile(cachePath); err == nil {
			log.WithField("path", cachePath).Debug("loaded cached terraform plan")
			return data, nil
		}
	}

	if _, err := exec.LookPath(binary); err != nil {
		return nil, &BinaryNotFoundError{Binary: binary}
	}

	planFile, err := os.CreateTemp(opts.Dir, "tf2tosca-plan-*.tfplan")
	if err != nil {
		return nil, fmt.Errorf("creating temporary plan file: %w", err)
	}
	planPath := planFile.Name()
	_ = planFile.Close()
	defer os.Remove(planPath)

	if _, err := run(ctx, opts.Dir, binary, "init", "-input=false", "-no-color"); err != nil {
		return nil, err
	}
	if _, err := run(ctx, opts.Dir, binary, "plan", "-out="+planPath, "-input=false", "-no-color"); err != nil {
		return nil, err
	}
	out, err := run(ctx, opts.Dir, binary, "show", "-json", planPath)
	if err != nil {
		return nil, err
	}

	if err := cachePlan(cachePath, out); err != nil {
		log.WithError(err).Warn("failed to cache terraform plan JSON")
	}

	return out, nil
}

// ClearCache removes a previously written terraform-plan.json, forcing
// the next Run(UseCache: true) to regenerate it.
func ClearCache(dir string) error {
	err := os.Remove(filepath.Join(dir, CachedPlanFilename))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func cachePlan(path string, raw []byte) error {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		// Fall back to the raw bytes; a malformed cache is still
		// better than none, and ParsePlan will reject it later anyway.
		return os.WriteFile(path, raw, 0o644)
	}
	pretty, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return os.WriteFile(path, raw, 0o644)
	}
	return os.WriteFile(path, pretty, 0o644)
}

func run(ctx context.Context, dir, binary string, args ...string) ([]byte, error) {
	cctx, cancel := context.WithTimeout(ctx, CommandTimeout)
	defer cancel()

	cmd := exec.CommandContext(cctx, binary, args...)
	cmd.Dir = dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	log.WithField("dir", dir).Debugf("running terraform %v", args)

	if err := cmd.Run(); err != nil {
		return nil, &CommandError{Args: args, Stderr: stderr.String(), Cause: err}
	}
	return stdout.Bytes(), nil
}
