package factories

import (
	"fmt"

	"github.com/chrisdamba/foodstore/internal/models"
	"github.com/lucsky/cuid"
	"github.com/shopspring/decimal"
)

type StoreFactory struct{}

func (sf *StoreFactory) CreateStore() *models.Store {
	open := fake.IntBetween(7, 11)
	closeHour := fake.IntBetween(18, 23)

	weekly := models.WeeklySchedule{}
	for _, day := range []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday"} {
		weekly[day] = models.DaySchedule{Open: clock(open, 0), Close: clock(closeHour, 0)}
	}
	if fake.BoolWithChance(40) {
		weekly["sunday"] = models.DaySchedule{Open: clock(open+1, 0), Close: clock(min(closeHour, 16), 0)}
	} else {
		weekly["sunday"] = models.DaySchedule{Closed: true}
	}

	return &models.Store{
		ID:             cuid.New(),
		Name:           fake.Company().Name(),
		Phone:          fake.Phone().Number(),
		WeeklySchedule: weekly,
		SpecialDates:   sf.specialDates(open),
		DeliverySchedule: []models.DeliveryWindow{
			{Name: "lunch", Start: "11:00", End: "14:30", Enabled: true},
			{Name: "afternoon", Start: "15:00", End: "18:00", Enabled: fake.Bool()},
			{Name: "dinner", Start: "18:30", End: clock(closeHour, 0), Enabled: closeHour > 19},
		},
		SameDayCutoffTime: clock(closeHour-2, 30),
		AllowScheduling:   fake.BoolWithChance(85),
		MinimumOrder:      decimal.NewFromInt(int64(fake.IntBetween(0, 6) * 5)),
		DeliveryFee:       decimal.New(int64(fake.IntBetween(399, 1299)), -2),
	}
}

func (sf *StoreFactory) specialDates(open int) []models.SpecialDate {
	year := fake.IntBetween(2026, 2027)
	return []models.SpecialDate{
		{Date: fmt.Sprintf("%d-12-25", year), Closed: true, Description: "Christmas"},
		{Date: fmt.Sprintf("%d-01-01", year+1), Closed: true, Description: "New Year"},
		{Date: fmt.Sprintf("%d-12-24", year), Open: clock(open, 0), Close: "14:00", Description: "Christmas Eve"},
	}
}

func clock(hour, minute int) string {
	return fmt.Sprintf("%02d:%02d", hour, minute)
}
