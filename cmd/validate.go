package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kayz/skillforge/internal/validator"
)

func init() {
	rootCmd.AddCommand(newValidateCommand())
}

func newValidateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <file>...",
		Short: "Validate existing SKILL.md files",
		Long: `Validate checks skill documents against the structural contract:
frontmatter fields, name slug, description length, capability tags,
hook events and instruction body. Warnings are reported but do not
fail the check.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			val, err := validator.New(cfg.Validation)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			failed := 0
			for _, path := range args {
				report, err := val.ValidateFile(path)
				if err != nil {
					return err
				}

				if report.OK() {
					fmt.Fprintf(out, "%s: ok\n", path)
				} else {
					fmt.Fprintf(out, "%s: invalid\n", path)
					failed++
				}
				for _, v := range report {
					fmt.Fprintf(out, "  [%s] %s\n", v.Severity, v.String())
				}
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d file(s) failed validation", failed, len(args))
			}
			return nil
		},
	}
	return cmd
}
