package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

const version = "0.2.0"

func init() {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "skillforge %s (build %s)\n", version, build)
		},
	})
}
