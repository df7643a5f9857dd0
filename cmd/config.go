package cmd

import (
	"fmt"

	"github.com/brogergvhs/noveld/internal/config"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the merged config or manage noveld config profiles",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, used, err := config.LoadMerged(config.Options{
			IgnoreConfig: flagIgnoreConfig,
			Debug:        flagDebug,
		})
		if err != nil {
			return err
		}

		fmt.Printf("Loaded config from:\n  %s\n\n", used)
		cfg.Print()

		if err := cfg.Validate(); err != nil {
			fmt.Printf("\nInvalid: %v\n", err)
		}
		for _, s := range cfg.Sources {
			if err := s.Validate(); err != nil {
				fmt.Printf("\nSource will be skipped: %v\n", err)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}
