package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/brogergvhs/noveld/internal/config"

	"github.com/spf13/cobra"
)

var flagInitYes bool

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the Default config",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaultPath := filepath.Join(config.ConfigsDir(), config.DefaultLabel+".yaml")

		if _, err := os.Stat(defaultPath); err == nil {
			fmt.Println("Configuration already exists at:")
			fmt.Println("  ", defaultPath)
			fmt.Println("Use `noveld config reset` to recreate it.")
			return nil
		}

		fmt.Println("Configuration file will be saved at:")
		fmt.Println("  ", defaultPath)
		fmt.Println()

		fmt.Println("Default configuration:")
		config.DefaultConfig().Print()
		fmt.Println()

		if !flagInitYes {
			reader := bufio.NewReader(os.Stdin)
			fmt.Printf("Create Default config at %s? [y/N]: ", defaultPath)
			resp, _ := reader.ReadString('\n')
			resp = strings.TrimSpace(strings.ToLower(resp))

			if resp != "y" && resp != "yes" {
				fmt.Println("Aborted.")
				return nil
			}
		}

		path, err := config.InitDefaultConfig()
		if errors.Is(err, os.ErrExist) {
			fmt.Println("Config already exists at:", path)
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to create config: %w", err)
		}

		fmt.Println("Config created at:", path)
		fmt.Printf("This config is now active (label: %s).\n", config.DefaultLabel)

		return nil
	},
}

func init() {
	configInitCmd.Flags().BoolVarP(&flagInitYes, "yes", "y", false, "do not ask for confirmation")
	configCmd.AddCommand(configInitCmd)
}
