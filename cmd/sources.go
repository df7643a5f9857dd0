package cmd

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/brogergvhs/noveld/internal/config"

	"github.com/spf13/cobra"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List the sources of the active config and whether they are valid",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := config.LoadMerged(config.Options{
			IgnoreConfig: flagIgnoreConfig,
			Debug:        flagDebug,
		})
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 4, ' ', 0)
		_, _ = fmt.Fprintln(w, "NAME\tENGINE\tNOVELS\tPAGINATION\tSTATUS")

		for _, s := range cfg.Sources {
			engine := s.Engine
			if engine == "" {
				engine = cfg.Engine
			}

			status := "ok"
			if err := s.Validate(); err != nil {
				status = err.Error()
			}

			_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%t\t%s\n", s.Name, engine, strconv.Itoa(len(s.BaseURLs)), s.Pagination.Enabled, status)
		}

		if err := w.Flush(); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to flush table output: %v\n", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sourcesCmd)
}
