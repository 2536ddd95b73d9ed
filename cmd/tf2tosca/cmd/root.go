package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/edelwud/tf2tosca/internal/terraform/engine"
	"github.com/edelwud/tf2tosca/pkg/config"
	"github.com/edelwud/tf2tosca/pkg/log"
)

var (
	// Global flags
	cfgFile  string
	workDir  string
	debug    bool
	useCache bool

	// Version info
	versionInfo struct {
		Version string
		Commit  string
		Date    string
	}

	// Global config
	cfg *config.Config
)

// rootCmd is tf2tosca itself: given an input directory of Terraform
// sources and an output path, it runs the translation end to end.
var rootCmd = &cobra.Command{
	Use:   "tf2tosca <input_directory> <output_file>",
	Short: "Translate a Terraform project into a TOSCA 2.0 service template",
	Long: `tf2tosca runs the Terraform CLI against a project directory to obtain
a fully resolved plan, then translates that plan into a TOSCA 2.0 Simple
Profile service template.

Example:
  tf2tosca ./infra/network service-template.yaml
  tf2tosca --debug ./infra/network service-template.yaml`,
	Args: cobra.ExactArgs(2),
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		log.Init()

		if debug {
			log.SetLevel(log.DebugLevel)
		}

		if cmd.Name() == "version" || cmd.Name() == "schema" || cmd.Name() == "completion" || cmd.Name() == "man" {
			return nil
		}

		log.Debug("loading configuration")
		var err error
		if cfgFile != "" {
			cfg, err = config.Load(cfgFile)
		} else {
			cfg, err = config.LoadOrDefault(workDir)
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		return cfg.Validate()
	},
	RunE: runTranslate,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets version information.
func SetVersion(version, commit, date string) {
	versionInfo.Version = version
	versionInfo.Commit = commit
	versionInfo.Date = date
	buildVersion = version
}

// ExitCodeFor maps an error returned by Execute to the process exit
// code described in the CLI's external interface: translation errors
// map through engine.ExitCode, anything else is an unexpected error.
func ExitCodeFor(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *usageError
	if errors.As(err, &exitErr) {
		return exitErr.code
	}
	return engine.ExitCode(err)
}

// usageError lets the translate path request a specific exit code for
// failures outside the engine (Terraform CLI failures, a bad output-file
// extension) without overloading engine.ExitCode's translation-error
// taxonomy.
type usageError struct {
	code int
	err  error
}

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

func init() {
	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default: .tf2tosca.yaml)")
	rootCmd.PersistentFlags().StringVarP(&workDir, "dir", "d", cwd, "working directory used to locate configuration")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable verbose logging")
	rootCmd.Flags().BoolVar(&useCache, "use-cache", false, "reuse a cached terraform plan if present")
	rootCmd.PersistentFlags().BoolVar(&showDiff, "show-diff", false, "print a terraform-style change summary before translating")
}
