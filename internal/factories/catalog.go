package factories

import "github.com/chrisdamba/foodstore/internal/models"

// CreateCatalog builds a store with products and add-on categories. Every
// third product gets add-ons.
func CreateCatalog(products, addonCategories int) *models.Catalog {
	store := (&StoreFactory{}).CreateStore()
	catalog := &models.Catalog{Store: *store}

	pf := &ProductFactory{}
	af := &AddonFactory{}
	for i := 0; i < products; i++ {
		rec := pf.CreateProduct(store)
		catalog.Products = append(catalog.Products, rec)
		if addonCategories > 0 && i%3 == 0 {
			catalog.AddonCategories = append(catalog.AddonCategories, af.CreateCategories(rec, addonCategories)...)
		}
	}
	return catalog
}
