package cmd

import (
	"fmt"

	"github.com/brogergvhs/noveld/internal/config"

	"github.com/spf13/cobra"
)

var configRenameCmd = &cobra.Command{
	Use:   "rename <old_label> <new_label>",
	Short: "Rename an existing labeled config (<old_label> <new_label>)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		oldLabel, newLabel := args[0], args[1]
		if oldLabel == config.DefaultLabel {
			return fmt.Errorf("the %s config cannot be renamed, copy it with `noveld config add --from`", config.DefaultLabel)
		}

		if err := config.RenameConfig(oldLabel, newLabel); err != nil {
			return err
		}

		path, err := config.ConfigPathByLabel(newLabel)
		if err != nil {
			return err
		}
		fmt.Printf("Renamed config %q to %q (%s)\n", oldLabel, newLabel, path)

		if active, _ := config.CurrentLabel(); active == newLabel {
			fmt.Println("It is still the active config.")
		}
		return nil
	},
}

func init() {
	configCmd.AddCommand(configRenameCmd)
}
