// Command foodzonectl runs operational tasks against a FoodZone deployment:
// schema migrations, menu seeding and minting access tokens.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"FoodZone/internal/config"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "foodzonectl",
		Short: "FoodZone operations tool",
		Long: `Operational commands for FoodZone.

Settings come from the environment (and a .env file in the working
directory): DATABASE_URL for migrate and seed, JWT_SECRET for token.

Examples:
  foodzonectl migrate
  foodzonectl seed --file menu.yaml
  foodzonectl token --email chef@foodzone.test --role admin --ttl 1h
`,
		SilenceUsage: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			config.LoadDotEnv()
		},
	}

	cmd.AddCommand(migrateCmd(), seedCmd(), tokenCmd())
	return cmd
}
