package factories

import (
	"fmt"
	"strings"

	"github.com/chrisdamba/foodstore/internal/models"
	"github.com/lucsky/cuid"
)

type CustomerFactory struct{}

func (cf *CustomerFactory) CreateCustomer() models.Customer {
	first, last := fake.Person().FirstName(), fake.Person().LastName()
	return models.Customer{
		ID:    cuid.New(),
		Name:  first + " " + last,
		Phone: fmt.Sprintf("(%02d) 9%04d-%04d", fake.IntBetween(11, 99), fake.IntBetween(1000, 9999), fake.IntBetween(0, 9999)),
		Email: emailLocal(first, last) + "@" + fake.Internet().Domain(),
	}
}

func (cf *CustomerFactory) CreateAddress() models.Address {
	addr := fake.Address()
	return models.Address{
		Street:       addr.StreetName(),
		Number:       addr.BuildingNumber(),
		Neighborhood: addr.CityPrefix() + " " + addr.StreetSuffix(),
		City:         addr.City(),
		State:        addr.StateAbbr(),
		ZipCode:      addr.PostCode(),
	}
}

func emailLocal(first, last string) string {
	local := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			return r
		}
		return -1
	}, strings.ToLower(first+last))
	if local == "" {
		return "customer"
	}
	return local
}
