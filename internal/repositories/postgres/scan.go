package postgres

import (
	"github.com/chrisdamba/foodstore/internal/models"
	"github.com/shopspring/decimal"
)

// addonItemRow holds the nullable side of the category/item left join.
type addonItemRow struct {
	ID          *string
	Name        *string
	Price       decimal.NullDecimal
	IsAvailable *bool
}

func (r addonItemRow) toModel(categoryID string) models.AddonItem {
	item := models.AddonItem{CategoryID: categoryID, Price: r.Price.Decimal}
	if r.ID != nil {
		item.ID = *r.ID
	}
	if r.Name != nil {
		item.Name = *r.Name
	}
	if r.IsAvailable != nil {
		item.IsAvailable = *r.IsAvailable
	}
	return item
}
