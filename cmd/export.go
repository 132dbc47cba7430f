package cmd

import (
	"fmt"
	"time"

	"github.com/chrisdamba/foodstore/internal/cloudwriter"
	"github.com/chrisdamba/foodstore/internal/events"
	"github.com/chrisdamba/foodstore/internal/models"
	"github.com/chrisdamba/foodstore/internal/repositories/postgres"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export orders created in a date range to parquet, locally or to S3",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		fromFlag, _ := cmd.Flags().GetString("from")
		toFlag, _ := cmd.Flags().GetString("to")

		loc, err := cfg.Scheduling.Location()
		if err != nil {
			return err
		}
		y, m, d := time.Now().In(loc).Date()
		from := time.Date(y, m, d, 0, 0, 0, 0, loc)
		to := from.AddDate(0, 0, 1)
		if fromFlag != "" {
			if from, err = time.ParseInLocation(models.DateLayout, fromFlag, loc); err != nil {
				return fmt.Errorf("invalid --from: %w", err)
			}
		}
		if toFlag != "" {
			if to, err = time.ParseInLocation(models.DateLayout, toFlag, loc); err != nil {
				return fmt.Errorf("invalid --to: %w", err)
			}
			to = to.AddDate(0, 0, 1)
		}
		if !from.Before(to) {
			return fmt.Errorf("--from must not be after --to")
		}

		pool, err := connectDB(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		orders, err := postgres.NewOrderRepository(pool).ListBetween(ctx, from, to)
		if err != nil {
			return fmt.Errorf("failed to list orders: %w", err)
		}

		exp := cfg.Export
		topics := events.TopicsFrom(cfg.Events)
		out := events.NewParquetOutput(exp.OutputPath, exp.OutputFolder, topics, logger)
		if exp.OutputDestination == "cloud" {
			factory, err := cloudwriter.NewWriterFactory(ctx, exp.CloudStorage)
			if err != nil {
				return fmt.Errorf("failed to create cloud writer factory: %w", err)
			}
			out.WithCloudStorage(factory, exp.CloudStorage.BucketName)
		}
		publisher := events.NewPublisher(out, topics, logger)

		bar := progressbar.Default(int64(len(orders)), "exporting orders")
		for _, order := range orders {
			if err := publisher.OrderPlaced(order); err != nil {
				_ = publisher.Close()
				return err
			}
			if order.Status == models.OrderStatusConfirmed {
				if err := publisher.OrderConfirmed(order); err != nil {
					_ = publisher.Close()
					return err
				}
			}
			_ = bar.Add(1)
		}
		_ = bar.Finish()

		if err := publisher.Close(); err != nil {
			return fmt.Errorf("failed to flush parquet files: %w", err)
		}
		logger.Info("export completed",
			zap.Int("orders", len(orders)),
			zap.Time("from", from),
			zap.Time("to", to),
			zap.String("destination", exp.OutputDestination))
		return nil
	},
}

func init() {
	exportCmd.Flags().String("from", "", "first store-local day, YYYY-MM-DD (default today)")
	exportCmd.Flags().String("to", "", "last store-local day, inclusive (default --from)")
	rootCmd.AddCommand(exportCmd)
}
