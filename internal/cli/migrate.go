package cli

import (
	"fmt"

	"invoice-ledger-backend/internal/repository"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the ledger tables",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := bootstrap()
		if err != nil {
			return err
		}
		defer rt.close()

		if err := repository.Migrate(rt.db); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		rt.log.Info("migration complete")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
