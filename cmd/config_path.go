package cmd

import (
	"fmt"

	"github.com/brogergvhs/noveld/internal/config"

	"github.com/spf13/cobra"
)

var configPathCmd = &cobra.Command{
	Use:   "path [label]",
	Short: "Print the path of the active or specified config",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 1 {
			path, err := config.ConfigPathByLabel(args[0])
			if err != nil {
				return err
			}
			fmt.Println(path)
			return nil
		}

		path, err := config.ActiveConfigPath()
		if err != nil {
			return fmt.Errorf("%w (configs live in %s)", err, config.ConfigsDir())
		}
		fmt.Println(path)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configPathCmd)
}
