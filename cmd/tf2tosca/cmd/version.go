package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/edelwud/tf2tosca/internal/policy"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Printf("tf2tosca %s\n", versionInfo.Version)
		fmt.Printf("  commit: %s\n", versionInfo.Commit)
		fmt.Printf("  built:  %s\n", versionInfo.Date)
		fmt.Printf("  opa:    %s\n", policy.OPAVersion())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
