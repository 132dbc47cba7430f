package factories

import (
	"fmt"

	"github.com/chrisdamba/foodstore/internal/models"
	"github.com/lucsky/cuid"
	"github.com/shopspring/decimal"
)

type addonTemplate struct {
	name     string
	required bool
	multiple bool
	maxSel   int
	items    []string
}

var addonTemplates = []addonTemplate{
	{name: "Size", required: true, items: []string{"Small", "Medium", "Large"}},
	{name: "Toppings", multiple: true, maxSel: 3, items: []string{"Chocolate Sauce", "Sprinkles", "Strawberries", "Nuts", "Whipped Cream"}},
	{name: "Extras", multiple: true, items: []string{"Gift Wrap", "Candle", "Card Message"}},
	{name: "Sides", items: []string{"Fries", "Salad", "Onion Rings"}},
}

type AddonFactory struct{}

// CreateCategories attaches up to n add-on categories to the product.
func (af *AddonFactory) CreateCategories(product models.ProductRecord, n int) []models.AddonCategory {
	n = min(n, len(addonTemplates))
	start := fake.IntBetween(0, len(addonTemplates)-1)

	categories := make([]models.AddonCategory, 0, n)
	for i := 0; i < n; i++ {
		tpl := addonTemplates[(start+i)%len(addonTemplates)]
		category := models.AddonCategory{
			ID:         cuid.New(),
			ProductID:  product.ID,
			Name:       tpl.name,
			IsRequired: tpl.required,
			IsMultiple: tpl.multiple,
			MaxSelect:  tpl.maxSel,
			SortOrder:  i,
		}
		if tpl.required {
			category.MinSelect = 1
		}
		for j, name := range tpl.items {
			price := decimal.Zero
			if j > 0 || !tpl.required {
				price = decimal.New(int64(fake.IntBetween(1, 12)*50), -2)
			}
			category.Items = append(category.Items, models.AddonItem{
				ID:          fmt.Sprintf("%s-%d", category.ID, j),
				CategoryID:  category.ID,
				Name:        name,
				Price:       price,
				IsAvailable: fake.BoolWithChance(90),
			})
		}
		categories = append(categories, category)
	}
	return categories
}
