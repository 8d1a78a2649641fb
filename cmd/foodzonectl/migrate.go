package main

import (
	"github.com/spf13/cobra"

	"FoodZone/pkg/kit"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			log := kit.NewLogger("foodzonectl")
			defer func() { _ = log.Sync() }()

			db, err := openDB(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()

			return migrateDB(db, log)
		},
	}
}
