package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/edelwud/tf2tosca/internal/policy"
	"github.com/edelwud/tf2tosca/pkg/log"
)

var (
	policyOutputFormat string
	policyDirs         []string
)

// policyCheckCmd checks one or more already-emitted TOSCA documents
// against the configured OPA/Rego policies, independent of a translate
// run — useful in a pipeline stage that re-validates documents emitted
// earlier.
var policyCheckCmd = &cobra.Command{
	Use:   "check <document>...",
	Short: "Check TOSCA documents against OPA policies",
	Long: `Check one or more TOSCA YAML/JSON documents against the configured
Rego policies.

Example:
  tf2tosca policy check service-template.yaml
  tf2tosca policy check --output json a.yaml b.yaml`,
	Args: cobra.MinimumNArgs(1),
	RunE: runPolicyCheck,
}

func init() {
	policyCmd := &cobra.Command{
		Use:   "policy",
		Short: "Policy management commands",
		Long:  "Commands for running OPA policy checks against emitted TOSCA documents.",
	}

	policyCmd.AddCommand(policyCheckCmd)
	rootCmd.AddCommand(policyCmd)

	policyCheckCmd.Flags().StringVarP(&policyOutputFormat, "output", "o", "text", "output format: text, json")
	policyCheckCmd.Flags().StringArrayVar(&policyDirs, "policy-dir", nil, "policy directory (overrides config, repeatable)")
}

func runPolicyCheck(_ *cobra.Command, args []string) error {
	if cfg.Policy == nil || !cfg.Policy.Enabled {
		return fmt.Errorf("policy checks are not enabled in configuration")
	}

	log.Info("running policy checks")

	checker := policy.NewChecker(cfg.Policy, policyDirs)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	summary, err := checker.CheckDocuments(ctx, args)
	if err != nil {
		return fmt.Errorf("policy check failed: %w", err)
	}

	if policyOutputFormat == "json" {
		return outputPolicyJSON(summary)
	}

	return outputPolicyText(summary, checker.ShouldBlock(summary))
}

func outputPolicyJSON(summary *policy.Summary) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(summary)
}

func outputPolicyText(summary *policy.Summary, shouldBlock bool) error {
	log.WithField("total", summary.TotalDocuments).
		WithField("passed", summary.PassedDocuments).
		WithField("warned", summary.WarnedDocuments).
		WithField("failed", summary.FailedDocuments).
		Info("policy check summary")

	for _, result := range summary.Results {
		if result.Status() == policy.StatusPass {
			continue
		}

		log.WithField("document", result.Document).
			WithField("status", result.Status()).
			Info("document result")

		log.IncreasePadding()
		for _, f := range result.Failures {
			log.WithField("namespace", f.Namespace).WithField("message", f.Message).Error("failure")
		}
		for _, w := range result.Warnings {
			log.WithField("namespace", w.Namespace).WithField("message", w.Message).Warn("warning")
		}
		log.DecreasePadding()
	}

	if shouldBlock {
		log.Error("policy check FAILED")
		return fmt.Errorf("policy check failed with %d failures", summary.TotalFailures)
	}

	if summary.HasWarnings() {
		log.Warn("policy check passed with warnings")
	} else {
		log.Info("policy check PASSED")
	}

	return nil
}
