package scheduling

import (
	"fmt"
	"time"

	"github.com/chrisdamba/foodstore/internal/models"
)

// SlotLayout is the wire format of a slot: store-local date and time of day.
const SlotLayout = "2006-01-02T15:04"

type Slot struct {
	Date string `json:"date"`
	Time string `json:"time"`
}

func (s Slot) String() string {
	return s.Date + "T" + s.Time
}

// In returns the instant of the slot in loc.
func (s Slot) In(loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(SlotLayout, s.String(), loc)
}

// ParseSlot parses "YYYY-MM-DDTHH:MM".
func ParseSlot(value string) (Slot, error) {
	t, err := time.Parse(SlotLayout, value)
	if err != nil {
		return Slot{}, fmt.Errorf("invalid slot %q: %w", value, err)
	}
	return Slot{Date: t.Format(models.DateLayout), Time: t.Format("15:04")}, nil
}

// Dedupe drops repeated slots, keeping the first occurrence.
func Dedupe(slots []Slot) []Slot {
	seen := make(map[Slot]struct{}, len(slots))
	out := make([]Slot, 0, len(slots))
	for _, s := range slots {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
