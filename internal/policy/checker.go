package policy

import (
	"context"
	"fmt"
	"os"

	"github.com/edelwud/tf2tosca/pkg/config"
)

// DefaultNamespace is evaluated when a PolicyConfig sets no namespaces.
const DefaultNamespace = "tosca"

// Checker runs policy checks against emitted TOSCA documents.
type Checker struct {
	config     *config.PolicyConfig
	policyDirs []string
}

// NewChecker creates a new policy checker. policyDirs overrides
// cfg.Dirs when non-empty, mirroring how the CLI lets --policy-dir
// flags take precedence over configuration.
func NewChecker(cfg *config.PolicyConfig, policyDirs []string) *Checker {
	if len(policyDirs) == 0 && cfg != nil {
		policyDirs = cfg.Dirs
	}
	return &Checker{config: cfg, policyDirs: policyDirs}
}

// CheckDocument runs policy checks for a single TOSCA document.
func (c *Checker) CheckDocument(ctx context.Context, path string) (*Result, error) {
	if c.config == nil || !c.config.Enabled {
		return &Result{Document: path, Skipped: 1}, nil
	}

	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("document not found: %s: %w", path, err)
	}

	for _, dir := range c.policyDirs {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			return nil, fmt.Errorf("policy directory %q is not usable: %v", dir, err)
		}
	}

	namespaces := c.config.Namespaces
	if len(namespaces) == 0 {
		namespaces = []string{DefaultNamespace}
	}

	engine := NewEngine(c.policyDirs, namespaces)
	result, err := engine.EvaluateFile(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("policy evaluation failed: %w", err)
	}

	result.Document = path
	return result, nil
}

// CheckDocuments runs policy checks for every given path and aggregates
// them into a Summary. A per-document evaluation failure is recorded as
// a failure rather than aborting the whole batch, so one malformed file
// doesn't hide results for the rest.
func (c *Checker) CheckDocuments(ctx context.Context, paths []string) (*Summary, error) {
	results := make([]Result, 0, len(paths))
	for _, path := range paths {
		result, err := c.CheckDocument(ctx, path)
		if err != nil {
			results = append(results, Result{
				Document: path,
				Failures: []Violation{{Message: err.Error(), Namespace: "policy"}},
			})
			continue
		}
		results = append(results, *result)
	}
	return NewSummary(results), nil
}

// ShouldBlock returns true if the summary should abort the CLI with a
// non-zero exit code.
func (c *Checker) ShouldBlock(summary *Summary) bool {
	if c.config == nil {
		return false
	}
	if c.config.OnFailure == config.PolicyActionBlock {
		return summary.HasFailures()
	}
	return false
}
