package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

const version = "1.0.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  `Display the current version of the clubliq CLI.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("clubliq version %s\n", version)
		fmt.Println("Position sizing and risk tools for forex, gold and bitcoin")
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
