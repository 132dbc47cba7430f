package stock

import (
	"testing"

	"github.com/chrisdamba/foodstore/internal/models"
	"github.com/stretchr/testify/assert"
)

func finite(id string, daily, current int) models.Product {
	return models.Product{ID: id, DailyStock: &daily, CurrentStock: current}
}

func TestManager_CheckAvailability(t *testing.T) {
	m := NewManager([]models.Product{
		finite("A", 3, 1),
		{ID: "B"},
	})

	assert.Equal(t, 1, m.GetAvailableStock("A"))
	assert.True(t, m.CheckAvailability("A", 1))
	assert.False(t, m.CheckAvailability("A", 2))

	assert.Equal(t, Unlimited, m.GetAvailableStock("B"))
	assert.True(t, m.CheckAvailability("B", 1_000_000))

	assert.Equal(t, 0, m.GetAvailableStock("missing"))
	assert.False(t, m.CheckAvailability("missing", 1))
}

func TestManager_ReduceStockFloorsAtZero(t *testing.T) {
	m := NewManager([]models.Product{finite("A", 5, 3), {ID: "B"}})

	m.ReduceStock("A", 2)
	assert.Equal(t, 1, m.GetAvailableStock("A"))

	m.ReduceStock("A", 10)
	assert.Equal(t, 0, m.GetAvailableStock("A"))
	assert.False(t, m.CheckAvailability("A", 1))
	assert.True(t, m.CheckAvailability("A", 0))

	m.ReduceStock("B", 10)
	assert.Equal(t, Unlimited, m.GetAvailableStock("B"))

	m.ReduceStock("missing", 1)
	assert.Equal(t, 0, m.GetAvailableStock("missing"))
}

func TestManager_SnapshotOnlyTracked(t *testing.T) {
	m := NewManager([]models.Product{finite("A", 5, 4), {ID: "B"}})
	assert.Equal(t, map[string]int{"A": 4}, m.Snapshot())
	assert.True(t, m.IsTracked("A"))
	assert.False(t, m.IsTracked("B"))
}

func TestManager_InstancesAreIndependent(t *testing.T) {
	products := []models.Product{finite("A", 2, 2)}
	first := NewManager(products)
	second := NewManager(products)

	first.ReduceStock("A", 2)
	assert.Equal(t, 0, first.GetAvailableStock("A"))
	assert.Equal(t, 2, second.GetAvailableStock("A"))
}

func TestManager_Shortages(t *testing.T) {
	a := finite("A", 3, 1)
	a.Name = "Brigadeiro box"
	c := finite("C", 10, 2)
	m := NewManager([]models.Product{a, {ID: "B"}, c})

	shortages := m.Shortages([]models.CartLine{
		{Product: a, Quantity: 2},
		{Product: models.Product{ID: "B"}, Quantity: 50},
		{Product: c, Quantity: 1},
		{Product: c, Quantity: 2},
	})

	assert.Equal(t, []Shortage{
		{ProductID: "A", ProductName: "Brigadeiro box", Requested: 2, Available: 1},
		{ProductID: "C", Requested: 3, Available: 2},
	}, shortages)
}

func TestManager_ShortagesLoadsUnknownProducts(t *testing.T) {
	m := NewManager(nil)
	d := finite("D", 4, 4)
	assert.Empty(t, m.Shortages([]models.CartLine{{Product: d, Quantity: 4}}))
	assert.Equal(t, 4, m.GetAvailableStock("D"))
}
