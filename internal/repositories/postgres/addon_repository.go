package postgres

import (
	"context"
	"sort"

	"github.com/chrisdamba/foodstore/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AddonRepository struct {
	pool *pgxpool.Pool
}

func NewAddonRepository(pool *pgxpool.Pool) *AddonRepository {
	return &AddonRepository{pool: pool}
}

func (r *AddonRepository) BulkCreate(ctx context.Context, categories []models.AddonCategory) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var items []models.AddonItem
	for _, c := range categories {
		items = append(items, c.Items...)
	}

	_, err = tx.CopyFrom(
		ctx,
		pgx.Identifier{"addon_categories"},
		[]string{"id", "product_id", "name", "is_required", "is_multiple", "min_select", "max_select", "sort_order"},
		pgx.CopyFromSlice(len(categories), func(i int) ([]interface{}, error) {
			c := categories[i]
			return []interface{}{c.ID, c.ProductID, c.Name, c.IsRequired, c.IsMultiple, c.MinSelect, c.MaxSelect, c.SortOrder}, nil
		}),
	)
	if err != nil {
		return err
	}

	_, err = tx.CopyFrom(
		ctx,
		pgx.Identifier{"addon_items"},
		[]string{"id", "category_id", "name", "price", "is_available"},
		pgx.CopyFromSlice(len(items), func(i int) ([]interface{}, error) {
			item := items[i]
			return []interface{}{item.ID, item.CategoryID, item.Name, item.Price, item.IsAvailable}, nil
		}),
	)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *AddonRepository) Create(ctx context.Context, category *models.AddonCategory) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
        INSERT INTO addon_categories (
            id, product_id, name, is_required, is_multiple, min_select, max_select, sort_order
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
    `,
		category.ID,
		category.ProductID,
		category.Name,
		category.IsRequired,
		category.IsMultiple,
		category.MinSelect,
		category.MaxSelect,
		category.SortOrder,
	)
	if err != nil {
		return err
	}

	for _, item := range category.Items {
		_, err = tx.Exec(ctx, `
            INSERT INTO addon_items (id, category_id, name, price, is_available)
            VALUES ($1, $2, $3, $4, $5)
        `, item.ID, category.ID, item.Name, item.Price, item.IsAvailable)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// GetCategoriesByProducts returns each product's categories with their items,
// ordered by sort order.
func (r *AddonRepository) GetCategoriesByProducts(ctx context.Context, productIDs []string) (map[string][]models.AddonCategory, error) {
	out := make(map[string][]models.AddonCategory)
	if len(productIDs) == 0 {
		return out, nil
	}

	query := `
        SELECT
            c.id, c.product_id, c.name, c.is_required, c.is_multiple,
            c.min_select, c.max_select, c.sort_order,
            i.id, i.name, i.price, i.is_available
        FROM addon_categories c
        LEFT JOIN addon_items i ON i.category_id = c.id
        WHERE c.product_id = ANY($1)
        ORDER BY c.product_id, c.sort_order, c.id, i.name
    `
	rows, err := r.pool.Query(ctx, query, productIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := make(map[string]*models.AddonCategory)
	var order []string
	for rows.Next() {
		var c models.AddonCategory
		var item addonItemRow
		err := rows.Scan(
			&c.ID, &c.ProductID, &c.Name, &c.IsRequired, &c.IsMultiple,
			&c.MinSelect, &c.MaxSelect, &c.SortOrder,
			&item.ID, &item.Name, &item.Price, &item.IsAvailable,
		)
		if err != nil {
			return nil, err
		}
		existing, ok := categories[c.ID]
		if !ok {
			existing = &c
			categories[c.ID] = existing
			order = append(order, c.ID)
		}
		if item.ID != nil {
			existing.Items = append(existing.Items, item.toModel(c.ID))
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, id := range order {
		c := categories[id]
		out[c.ProductID] = append(out[c.ProductID], *c)
	}
	for productID := range out {
		sort.SliceStable(out[productID], func(i, j int) bool {
			return out[productID][i].SortOrder < out[productID][j].SortOrder
		})
	}
	return out, nil
}
