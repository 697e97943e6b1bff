package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kayz/skillforge/internal/config"
	"github.com/kayz/skillforge/internal/logger"
)

var (
	logLevel   string
	configPath string
	build      = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "skillforge",
	Short: "Author SKILL.md capability documents through guided dialogue",
	Long: `skillforge turns a plain-language description of what you want an
assistant to be able to do into a validated SKILL.md document.

Commands:
  skillforge create "..."   Start a guided authoring session
  skillforge validate FILE  Check an existing skill document
  skillforge history        Review past authoring sessions`,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		name := logLevel
		if !cmd.Flags().Changed("log") && cfg.Logging.Level != "" {
			name = cfg.Logging.Level
		}
		level, err := logger.ParseLevel(name)
		if err != nil {
			return err
		}
		logger.SetLevel(level)

		if cfg.Logging.File != "" {
			if err := logger.SetFile(config.ExpandPath(cfg.Logging.File)); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "info",
		"Log level: trace, debug, info, warn, error, fatal")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Config file path (default: .skillforge.yaml next to the executable)")
}

// SetBuild records the build identifier stamped in at link time
func SetBuild(b string) {
	if b != "" {
		build = b
	}
}

func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFrom(configPath)
	}
	return config.Load()
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
