package cmd

import (
	"fmt"
	"time"

	"github.com/chrisdamba/foodstore/internal/models"
	"github.com/chrisdamba/foodstore/internal/repositories/postgres"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var resetStockCmd = &cobra.Command{
	Use:   "reset-stock",
	Short: "Refill daily stock for products not yet reset today",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		dayFlag, _ := cmd.Flags().GetString("day")

		loc, err := cfg.Scheduling.Location()
		if err != nil {
			return err
		}
		day := time.Now().In(loc)
		if dayFlag != "" {
			day, err = time.ParseInLocation(models.DateLayout, dayFlag, loc)
			if err != nil {
				return fmt.Errorf("invalid --day: %w", err)
			}
		}

		pool, err := connectDB(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		n, err := postgres.NewProductRepository(pool).ResetDailyStock(ctx, day)
		if err != nil {
			return fmt.Errorf("failed to reset stock: %w", err)
		}
		logger.Info("daily stock reset", zap.String("day", day.Format(models.DateLayout)), zap.Int64("products", n))
		return nil
	},
}

func init() {
	resetStockCmd.Flags().String("day", "", "store-local day to reset for, YYYY-MM-DD (default today)")
	rootCmd.AddCommand(resetStockCmd)
}
