// Package factories generates demo stores, catalogs and customers.
package factories

import (
	"math/rand"

	"github.com/jaswdr/faker"
)

var fake = faker.New()

// Seed makes the generated data reproducible.
func Seed(seed int64) {
	fake = faker.NewWithSeed(rand.NewSource(seed))
}

func pick(values []string) string {
	return values[fake.IntBetween(0, len(values)-1)]
}
