package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"FoodZone/internal/catalog"
)

func seedCmd() *cobra.Command {
	var (
		file   string
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load menu items from a YAML file into the catalog database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := os.Open(file)
			if err != nil {
				return err
			}
			defer f.Close()

			items, err := catalog.ParseSeed(f, time.Now())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if dryRun {
				for _, it := range items {
					fmt.Fprintf(out, "%s\t%s\t%s\n", it.Name, it.Type, it.Price.Decimal.StringFixed(2))
				}
				return nil
			}

			db, err := openDB(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()

			if err := catalog.Seed(cmd.Context(), catalog.NewPostgresStore(db), items); err != nil {
				return err
			}
			fmt.Fprintf(out, "seeded %d menu items\n", len(items))
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "menu.yaml", "YAML menu file")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Validate and print the items without writing")
	return cmd
}
