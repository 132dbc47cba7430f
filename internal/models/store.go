package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const DateLayout = "2006-01-02"

// Clock is a store-local time of day in minutes since midnight.
type Clock int

// ParseClock parses "HH:MM". "24:00" is accepted as end of day.
func ParseClock(s string) (Clock, error) {
	var h, m int
	s = strings.TrimSpace(s)
	if len(s) != 5 || s[2] != ':' {
		return 0, fmt.Errorf("invalid time of day %q", s)
	}
	if _, err := fmt.Sscanf(s, "%02d:%02d", &h, &m); err != nil {
		return 0, fmt.Errorf("invalid time of day %q: %w", s, err)
	}
	if h < 0 || m < 0 || m > 59 || h > 24 || (h == 24 && m != 0) {
		return 0, fmt.Errorf("invalid time of day %q", s)
	}
	return Clock(h*60 + m), nil
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

// On returns the instant of this clock on the given day in loc.
func (c Clock) On(day time.Time, loc *time.Location) time.Time {
	y, mo, d := day.Date()
	return time.Date(y, mo, d, int(c)/60, int(c)%60, 0, 0, loc)
}

// ClockOf returns the time of day of t.
func ClockOf(t time.Time) Clock {
	return Clock(t.Hour()*60 + t.Minute())
}

type DaySchedule struct {
	Open   string `json:"open" mapstructure:"open"`
	Close  string `json:"close" mapstructure:"close"`
	Closed bool   `json:"closed" mapstructure:"closed"`
}

// Window parses the day into an open/close pair. ok is false for closed or
// malformed days.
func (d DaySchedule) Window() (open, close Clock, ok bool) {
	if d.Closed {
		return 0, 0, false
	}
	return parseWindow(d.Open, d.Close)
}

// WeeklySchedule is keyed by lower-case English weekday names.
type WeeklySchedule map[string]DaySchedule

func WeekdayKey(day time.Weekday) string {
	return strings.ToLower(day.String())
}

// For returns the entry for a weekday. A missing entry counts as closed.
func (w WeeklySchedule) For(day time.Weekday) DaySchedule {
	entry, ok := w[WeekdayKey(day)]
	if !ok {
		return DaySchedule{Closed: true}
	}
	return entry
}

type SpecialDate struct {
	Date        string `json:"date" mapstructure:"date"`
	Closed      bool   `json:"closed" mapstructure:"closed"`
	Open        string `json:"open,omitempty" mapstructure:"open"`
	Close       string `json:"close,omitempty" mapstructure:"close"`
	Description string `json:"description,omitempty" mapstructure:"description"`
}

// HasHours reports whether the override carries its own opening hours.
func (s SpecialDate) HasHours() bool {
	return strings.TrimSpace(s.Open) != "" && strings.TrimSpace(s.Close) != ""
}

type DeliveryWindow struct {
	Name    string `json:"name" mapstructure:"name"`
	Start   string `json:"start" mapstructure:"start"`
	End     string `json:"end" mapstructure:"end"`
	Enabled bool   `json:"enabled" mapstructure:"enabled"`
}

func (w DeliveryWindow) Window() (start, end Clock, ok bool) {
	if !w.Enabled {
		return 0, 0, false
	}
	return parseWindow(w.Start, w.End)
}

type Store struct {
	ID                string           `json:"id" mapstructure:"id"`
	Name              string           `json:"name" mapstructure:"name"`
	Phone             string           `json:"phone" mapstructure:"phone"`
	WeeklySchedule    WeeklySchedule   `json:"weekly_schedule" mapstructure:"weekly_schedule"`
	SpecialDates      []SpecialDate    `json:"special_dates" mapstructure:"special_dates"`
	DeliverySchedule  []DeliveryWindow `json:"delivery_schedule" mapstructure:"delivery_schedule"`
	SameDayCutoffTime string           `json:"same_day_cutoff_time" mapstructure:"same_day_cutoff_time"`
	AllowScheduling   bool             `json:"allow_scheduling" mapstructure:"allow_scheduling"`
	MinimumOrder      decimal.Decimal  `json:"minimum_order" mapstructure:"minimum_order"`
	DeliveryFee       decimal.Decimal  `json:"delivery_fee" mapstructure:"delivery_fee"`
}

// SpecialDateFor returns the first override matching the day, if any.
func (s Store) SpecialDateFor(day time.Time) (SpecialDate, bool) {
	key := day.Format(DateLayout)
	for _, sd := range s.SpecialDates {
		if strings.TrimSpace(sd.Date) == key {
			return sd, true
		}
	}
	return SpecialDate{}, false
}

// BusinessHours resolves the opening window of a calendar day, applying
// special dates before the weekly schedule.
func (s Store) BusinessHours(day time.Time) (open, close Clock, ok bool) {
	if sd, found := s.SpecialDateFor(day); found {
		if sd.Closed {
			return 0, 0, false
		}
		if sd.HasHours() {
			return parseWindow(sd.Open, sd.Close)
		}
	}
	return s.WeeklySchedule.For(day.Weekday()).Window()
}

// Cutoff returns the same-day cutoff, if configured and valid.
func (s Store) Cutoff() (Clock, bool) {
	if strings.TrimSpace(s.SameDayCutoffTime) == "" {
		return 0, false
	}
	c, err := ParseClock(s.SameDayCutoffTime)
	if err != nil {
		return 0, false
	}
	return c, true
}

func parseWindow(from, to string) (Clock, Clock, bool) {
	open, err := ParseClock(from)
	if err != nil {
		return 0, 0, false
	}
	close, err := ParseClock(to)
	if err != nil {
		return 0, 0, false
	}
	if open >= close {
		return 0, 0, false
	}
	return open, close, true
}
