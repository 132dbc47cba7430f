package cmd

import (
	"fmt"

	"github.com/chrisdamba/foodstore/internal/events"
	"github.com/chrisdamba/foodstore/internal/factories"
	"github.com/chrisdamba/foodstore/internal/models"
	"github.com/chrisdamba/foodstore/internal/simulator"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Simulate customer demand against a catalog and emit order events",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		generate, _ := cmd.Flags().GetBool("generate")
		format, _ := cmd.Flags().GetString("format")

		var catalog *models.Catalog
		if cfg.CatalogFile != "" && !generate {
			var err error
			if catalog, err = models.LoadCatalog(cfg.CatalogFile); err != nil {
				return err
			}
		} else {
			if cfg.Simulation.Seed != 0 {
				factories.Seed(cfg.Simulation.Seed)
			}
			catalog = factories.CreateCatalog(max(cfg.Seed.ProductsPerStore, 5), cfg.Seed.AddonCategories)
		}

		out, err := events.NewOutputDestination(ctx, cfg, cmd.ErrOrStderr(), logger)
		if err != nil {
			return err
		}
		publisher := events.NewPublisher(out, events.TopicsFrom(cfg.Events), logger)
		defer func() {
			if err := publisher.Close(); err != nil {
				logger.Error("failed to close event output", zap.Error(err))
			}
		}()

		sim, err := simulator.NewSimulator(cfg, catalog, publisher, logger)
		if err != nil {
			return err
		}
		bar := progressbar.Default(int64(sim.Steps()), "simulating")
		sim.OnStep = func() { _ = bar.Add(1) }

		stats, err := sim.Run(ctx)
		_ = bar.Finish()
		if err != nil {
			return fmt.Errorf("simulation failed: %w", err)
		}
		return render(cmd.OutOrStdout(), format, stats)
	},
}

func init() {
	simulateCmd.Flags().Bool("generate", false, "generate a demo catalog even when a catalog file is set")
	simulateCmd.Flags().String("format", "json", "json or yaml")
	simulateCmd.Flags().Int("days", 0, "days to simulate (overrides simulation.days)")
	simulateCmd.Flags().Int("customers", 0, "number of shoppers (overrides simulation.customers)")
	simulateCmd.Flags().Int64("seed", 0, "random seed (overrides simulation.seed)")
	cobra.CheckErr(viper.BindPFlag("simulation.days", simulateCmd.Flags().Lookup("days")))
	cobra.CheckErr(viper.BindPFlag("simulation.customers", simulateCmd.Flags().Lookup("customers")))
	cobra.CheckErr(viper.BindPFlag("simulation.seed", simulateCmd.Flags().Lookup("seed")))
	rootCmd.AddCommand(simulateCmd)
}
