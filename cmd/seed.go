package cmd

import (
	"fmt"

	"github.com/chrisdamba/foodstore/internal/factories"
	"github.com/chrisdamba/foodstore/internal/models"
	"github.com/chrisdamba/foodstore/internal/repositories/postgres"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the schema and load stores, products and add-ons",
	Long: `seed applies the schema and loads the catalog file when one is configured.
Otherwise it generates seed.stores demo stores with faker.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		reset, _ := cmd.Flags().GetBool("reset")
		generate, _ := cmd.Flags().GetBool("generate")

		pool, err := connectDB(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		if err := postgres.Migrate(ctx, pool); err != nil {
			return err
		}
		repos := postgresRepositories(pool)
		if reset {
			if err := repos.Stores.DeleteAll(ctx); err != nil {
				return fmt.Errorf("failed to clear tables: %w", err)
			}
			logger.Info("existing data removed")
		}

		var catalogs []*models.Catalog
		if cfg.CatalogFile != "" && !generate {
			catalog, err := models.LoadCatalog(cfg.CatalogFile)
			if err != nil {
				return err
			}
			catalogs = append(catalogs, catalog)
		} else {
			if cfg.Simulation.Seed != 0 {
				factories.Seed(cfg.Simulation.Seed)
			}
			for i := 0; i < max(cfg.Seed.Stores, 1); i++ {
				catalogs = append(catalogs, factories.CreateCatalog(cfg.Seed.ProductsPerStore, cfg.Seed.AddonCategories))
			}
		}

		bar := progressbar.Default(int64(len(catalogs)), "seeding stores")
		for _, c := range catalogs {
			if err := repos.Stores.Create(ctx, &c.Store); err != nil {
				return fmt.Errorf("failed to create store %s: %w", c.Store.ID, err)
			}
			for i := range c.Products {
				if c.Products[i].StoreID == "" {
					c.Products[i].StoreID = c.Store.ID
				}
			}
			_, warnings := c.ResolveProducts()
			for _, w := range warnings {
				logger.Warn("catalog product", zap.String("warning", w))
			}
			if err := repos.Products.BulkCreate(ctx, c.Products); err != nil {
				return fmt.Errorf("failed to create products for %s: %w", c.Store.ID, err)
			}
			if err := repos.Addons.BulkCreate(ctx, c.AddonCategories); err != nil {
				return fmt.Errorf("failed to create add-ons for %s: %w", c.Store.ID, err)
			}
			_ = bar.Add(1)
		}
		_ = bar.Finish()

		stores, _ := repos.Stores.Count(ctx)
		products, _ := repos.Products.Count(ctx)
		logger.Info("seed completed", zap.Int("stores", stores), zap.Int("products", products))
		return nil
	},
}

func init() {
	seedCmd.Flags().Bool("reset", false, "delete existing data first")
	seedCmd.Flags().Bool("generate", false, "generate demo stores even when a catalog file is set")
	rootCmd.AddCommand(seedCmd)
}
