package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/brogergvhs/noveld/internal/config"

	"github.com/spf13/cobra"
)

var flagAddFrom string

var configAddCmd = &cobra.Command{
	Use:   "add [label]",
	Short: "Create a new config from the defaults or from an existing YAML file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var label string
		if len(args) == 1 {
			label = args[0]
		} else {
			reader := bufio.NewReader(os.Stdin)
			fmt.Print("Enter label for new config: ")
			label, _ = reader.ReadString('\n')
		}
		label = strings.TrimSpace(label)

		if label == "" {
			return fmt.Errorf("label cannot be empty")
		}

		if flagAddFrom != "" {
			if err := config.AddConfig(label, flagAddFrom); err != nil {
				return err
			}
			path, _ := config.ConfigPathByLabel(label)
			fmt.Printf("Imported %s as config %q: %s\n", flagAddFrom, label, path)
			return nil
		}

		path, err := config.CreateConfig(label)
		if err != nil {
			return fmt.Errorf("failed to create config: %w", err)
		}

		fmt.Printf("Created new config: %s\n", path)
		return nil
	},
}

func init() {
	configAddCmd.Flags().StringVar(&flagAddFrom, "from", "", "import an existing YAML config file")
	configCmd.AddCommand(configAddCmd)
}
