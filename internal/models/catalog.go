package models

import (
	"fmt"
	"sort"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// Catalog is a store with its products and add-on categories, loaded from a
// YAML or JSON file for offline use.
type Catalog struct {
	Store           Store           `mapstructure:"store"`
	Products        []ProductRecord `mapstructure:"products"`
	AddonCategories []AddonCategory `mapstructure:"addon_categories"`
}

func LoadCatalog(path string) (*Catalog, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}

	var catalog Catalog
	err := v.Unmarshal(&catalog, viper.DecoderConfigOption(func(c *mapstructure.DecoderConfig) {
		c.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeHookFunc(DateLayout),
			StringToDecimalHookFunc(),
		)
	}))
	if err != nil {
		return nil, fmt.Errorf("decode catalog %s: %w", path, err)
	}
	return &catalog, nil
}

// ResolveProducts converts the catalog rows, returning conversion warnings.
func (c *Catalog) ResolveProducts() ([]Product, []string) {
	products := make([]Product, 0, len(c.Products))
	var warnings []string
	for _, rec := range c.Products {
		if rec.StoreID == "" {
			rec.StoreID = c.Store.ID
		}
		p, w := NewProductFromRecord(rec)
		products = append(products, p)
		warnings = append(warnings, w...)
	}
	return products, warnings
}

// CategoriesFor returns the add-on categories of a product by sort order.
func (c *Catalog) CategoriesFor(productID string) []AddonCategory {
	var out []AddonCategory
	for _, cat := range c.AddonCategories {
		if cat.ProductID == productID {
			out = append(out, cat)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].SortOrder < out[j].SortOrder })
	return out
}
