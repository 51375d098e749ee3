package cli

import (
	"fmt"

	"invoice-ledger-backend/internal/repository"
	"invoice-ledger-backend/internal/services/ledger"

	"github.com/spf13/cobra"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Delete line items and payments whose invoice no longer exists",
	Long: `Delete line items and payments whose invoice no longer exists.

Invoice deletion is transactional, so orphans only appear after manual
edits or an interrupted cascade. The command is safe to run repeatedly.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := bootstrap()
		if err != nil {
			return err
		}
		defer rt.close()

		sweeper := ledger.NewSweeper(repository.NewGormRepository(rt.db), rt.log, 0)
		result, err := sweeper.SweepOrphans(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "removed %d line items, %d payments\n", result.LineItems, result.Payments)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sweepCmd)
}
