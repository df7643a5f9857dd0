package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/brogergvhs/noveld/internal/config"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
)

var configSwitchCmd = &cobra.Command{
	Use:   "switch [label]",
	Short: "Switch to a different configuration profile",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		label := ""
		if len(args) == 1 {
			label = args[0]
		} else {
			picked, err := pickConfig()
			if err != nil {
				return err
			}
			label = picked
		}

		if err := config.SwitchConfig(label); err != nil {
			return err
		}

		fmt.Println("Switched to:", label)

		cfg, _, err := config.LoadMerged(config.Options{})
		if err != nil {
			return err
		}
		cfg.Print()
		return nil
	},
}

// pickConfig lets the user choose a profile, with type-to-filter on labels.
func pickConfig() (string, error) {
	list, err := config.ListConfigs()
	if err != nil {
		return "", err
	}
	if len(list) == 0 {
		return "", fmt.Errorf("no configs available, run `noveld config init` first")
	}

	items := make([]string, len(list))
	cursor := 0
	for i, c := range list {
		items[i] = c.Label
		if c.Active {
			items[i] += "  (active)"
			cursor = i
		}
	}

	prompt := promptui.Select{
		Label:     "Select config",
		Items:     items,
		Size:      10,
		CursorPos: cursor,
		Searcher: func(input string, index int) bool {
			return strings.Contains(strings.ToLower(list[index].Label), strings.ToLower(input))
		},
	}

	idx, _, err := prompt.Run()
	if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrAbort) {
		return "", fmt.Errorf("selection cancelled")
	}
	if err != nil {
		return "", err
	}

	return list[idx].Label, nil
}

func init() {
	configCmd.AddCommand(configSwitchCmd)
}
