package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chrisdamba/foodstore/internal/models"
	"github.com/chrisdamba/foodstore/internal/repositories/memory"
	"github.com/chrisdamba/foodstore/internal/repositories/postgres"
	"github.com/chrisdamba/foodstore/internal/scheduling"
	"github.com/chrisdamba/foodstore/internal/storefront"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

func schedulingOptions() (scheduling.Options, error) {
	loc, err := cfg.Scheduling.Location()
	if err != nil {
		return scheduling.Options{}, err
	}
	return scheduling.Options{
		Location:     loc,
		SlotInterval: cfg.Scheduling.SlotInterval,
		LeadTime:     cfg.Scheduling.LeadTime,
	}, nil
}

func connectDB(ctx context.Context) (*pgxpool.Pool, error) {
	pool, err := postgres.Connect(ctx, cfg.Database.DSN())
	if err != nil {
		return nil, err
	}
	logger.Info("connected to database", zap.String("host", cfg.Database.Host), zap.String("dbname", cfg.Database.DBName))
	return pool, nil
}

func postgresRepositories(pool *pgxpool.Pool) storefront.Repositories {
	return storefront.Repositories{
		Stores:   postgres.NewStoreRepository(pool),
		Products: postgres.NewProductRepository(pool),
		Addons:   postgres.NewAddonRepository(pool),
		Orders:   postgres.NewOrderRepository(pool),
	}
}

// offlineSession opens a storefront session over the configured catalog file.
func offlineSession(ctx context.Context) (*storefront.Session, error) {
	if cfg.CatalogFile == "" {
		return nil, fmt.Errorf("no catalog file: set catalog_file or pass --catalog")
	}
	catalog, err := models.LoadCatalog(cfg.CatalogFile)
	if err != nil {
		return nil, err
	}
	db := memory.New()
	if err := db.Load(ctx, catalog); err != nil {
		return nil, err
	}
	opts, err := schedulingOptions()
	if err != nil {
		return nil, err
	}
	svc := storefront.NewService(storefront.Repositories{
		Stores:   db.Stores(),
		Products: db.Products(),
		Addons:   db.Addons(),
		Orders:   db.Orders(),
	}, nil, logger, storefront.Options{Scheduling: opts, DaysAhead: cfg.Scheduling.DaysAhead})
	return svc.Open(ctx, catalog.Store.ID)
}

// parseItems reads productID[:quantity] arguments.
func parseItems(values []string) ([]storefront.LineRequest, error) {
	items := make([]storefront.LineRequest, 0, len(values))
	for _, v := range values {
		id, qty, found := strings.Cut(v, ":")
		if strings.TrimSpace(id) == "" {
			return nil, fmt.Errorf("invalid item %q", v)
		}
		quantity := 1
		if found {
			n, err := strconv.Atoi(qty)
			if err != nil {
				return nil, fmt.Errorf("invalid quantity in item %q: %w", v, err)
			}
			quantity = n
		}
		items = append(items, storefront.LineRequest{ProductID: strings.TrimSpace(id), Quantity: quantity})
	}
	return items, nil
}

// render writes v as json or yaml. yaml goes through the JSON form so decimal
// amounts keep their string encoding.
func render(w io.Writer, format string, v any) error {
	switch format {
	case "", "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		raw, err := json.Marshal(v)
		if err != nil {
			return err
		}
		var generic any
		if err := json.Unmarshal(raw, &generic); err != nil {
			return err
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(generic)
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
}
