package cmd

import (
	"fmt"

	"github.com/brogergvhs/noveld/internal/config"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
)

var forceRemove bool

var configRemoveCmd = &cobra.Command{
	Use:   "remove <label>",
	Short: "Remove a config (<config_label>)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		label := args[0]

		if _, err := config.ConfigPathByLabel(label); err != nil {
			return err
		}

		if active, _ := config.CurrentLabel(); label == active && !forceRemove {
			prompt := promptui.Prompt{
				Label:     fmt.Sprintf("Config %q is currently active. Remove it anyway", label),
				IsConfirm: true,
			}
			if _, err := prompt.Run(); err != nil {
				fmt.Println("Aborted.")
				return nil
			}
		}

		switched, err := config.RemoveConfig(label, forceRemove)
		if err != nil {
			return err
		}

		fmt.Printf("Removed configuration %q\n", label)
		switch {
		case switched != "":
			fmt.Println("Active config is now:", switched)
		case label == config.DefaultLabel:
			fmt.Println("No config is active; defaults are used until `noveld config switch`.")
		}
		return nil
	},
}

func init() {
	configRemoveCmd.Flags().BoolVarP(&forceRemove, "force", "f", false, "skip confirmation and allow removing the Default config")
	configCmd.AddCommand(configRemoveCmd)
}
