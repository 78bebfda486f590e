package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/trial-harvester/internal/store"
	"github.com/pdiddy/trial-harvester/pkg/types"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export harvested trial rows to YAML or JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		dbPath, _ := cmd.Flags().GetString("db")
		out, _ := cmd.Flags().GetString("out")
		asJSON, _ := cmd.Flags().GetBool("json")

		trials, err := store.Open(types.StorageConfig{DBPath: dbPath})
		if err != nil {
			return err
		}
		defer trials.Close()

		if asJSON {
			if out == "" {
				out = "trials.json"
			}
			if err := trials.ExportJSON(cmd.Context(), out); err != nil {
				return err
			}
		} else {
			if out == "" {
				out = "trials.yaml"
			}
			if err := trials.ExportYAML(cmd.Context(), out); err != nil {
				return err
			}
		}
		fmt.Printf("exported to %s\n", out)
		return nil
	},
}

func init() {
	exportCmd.Flags().String("db", "trials.db", "SQLite file holding harvested trial rows")
	exportCmd.Flags().String("out", "", "output path (default trials.yaml or trials.json)")
	exportCmd.Flags().Bool("json", false, "export JSON instead of YAML")

	rootCmd.AddCommand(exportCmd)
}
