package factories

import (
	"sort"

	"github.com/chrisdamba/foodstore/internal/models"
	"github.com/lucsky/cuid"
	"github.com/shopspring/decimal"
)

var menu = map[string][]string{
	"cakes":   {"Carrot Cake", "Chocolate Truffle Cake", "Red Velvet", "Lemon Drizzle", "Cheesecake"},
	"sweets":  {"Brigadeiro Box", "Macaron Box", "Brownie", "Cookie Pack", "Alfajor"},
	"savory":  {"Chicken Pie", "Cheese Bread", "Quiche Lorraine", "Empanada", "Spinach Tart"},
	"drinks":  {"Filter Coffee", "Cappuccino", "Orange Juice", "Iced Tea", "Hot Chocolate"},
	"burgers": {"Classic Cheeseburger", "BBQ Bacon Burger", "Veggie Burger", "Mushroom Swiss Burger"},
}

type ProductFactory struct{}

// CreateProduct returns a product row. Some products are tiered, some sold
// from a daily quota and some need to be ordered a day ahead.
func (pf *ProductFactory) CreateProduct(store *models.Store) models.ProductRecord {
	categories := make([]string, 0, len(menu))
	for c := range menu {
		categories = append(categories, c)
	}
	sort.Strings(categories)
	category := pick(categories)

	price := decimal.New(int64(fake.IntBetween(350, 8990)), -2)
	rec := models.ProductRecord{
		ID:          cuid.New(),
		StoreID:     store.ID,
		CategoryID:  category,
		Name:        pick(menu[category]),
		Description: fake.Lorem().Sentence(10),
		Price:       price,
		IsAvailable: fake.BoolWithChance(95),
	}

	if fake.BoolWithChance(20) {
		rec.SalePrice = decimal.NewNullDecimal(price.Mul(decimal.New(85, -2)).Round(2))
	}
	if fake.BoolWithChance(15) {
		included := fake.IntBetween(1, 4)
		rec.MaxIncludedQuantity = &included
		rec.ExcessUnitPrice = decimal.NewNullDecimal(price.Mul(decimal.New(40, -2)).Round(2))
	}
	if category == "cakes" || fake.BoolWithChance(30) {
		daily := fake.IntBetween(3, 30)
		current := fake.IntBetween(0, daily)
		rec.DailyStock = &daily
		rec.CurrentStock = &current
	}
	if category == "cakes" {
		sameDay := fake.BoolWithChance(30)
		rec.AllowSameDayScheduling = &sameDay
	}
	return rec
}
