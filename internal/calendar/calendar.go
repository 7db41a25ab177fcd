// Package calendar answers whether the A-share market is open and
// whether the session is inside the pre-close window, in a fixed
// Asia/Shanghai timezone.
package calendar

import (
	"fmt"
	"time"
)

// Phase is the market session phase at a given instant.
type Phase int

const (
	// Closed covers nights, lunch break, weekends and holidays.
	Closed Phase = iota
	// OpenMidday is regular trading hours outside the pre-close window.
	OpenMidday
	// OpenNearClose is the 14:30-14:50 window where premium/NAV
	// convergence risk changes and tighter thresholds apply.
	OpenNearClose
)

func (p Phase) String() string {
	switch p {
	case OpenMidday:
		return "open-midday"
	case OpenNearClose:
		return "open-near-close"
	default:
		return "closed"
	}
}

// HolidayOracle reports whether a given calendar day is an exchange
// holiday. An oracle failure makes the whole phase computation fail,
// which callers treat as "not a trading day".
type HolidayOracle interface {
	IsHoliday(date time.Time) (bool, error)
}

// A-share session boundaries, in minutes since local midnight.
const (
	morningOpen    = 9*60 + 30
	morningClose   = 11*60 + 30
	afternoonOpen  = 13 * 60
	afternoonClose = 15 * 60
	nearCloseStart = 14*60 + 30
	nearCloseEnd   = 14*60 + 50
)

// Calendar computes the trading phase for a wall-clock instant.
type Calendar struct {
	loc      *time.Location
	holidays HolidayOracle
}

// New creates a Calendar using the Asia/Shanghai timezone.
func New(holidays HolidayOracle) (*Calendar, error) {
	loc, err := time.LoadLocation("Asia/Shanghai")
	if err != nil {
		return nil, fmt.Errorf("load timezone: %w", err)
	}
	return &Calendar{loc: loc, holidays: holidays}, nil
}

// Location returns the exchange timezone.
func (c *Calendar) Location() *time.Location {
	return c.loc
}

// CurrentPhase returns the market phase at the given instant. Weekends
// and holidays are Closed regardless of the time of day. A holiday
// oracle error is returned as-is so the caller can fail closed.
func (c *Calendar) CurrentPhase(now time.Time) (Phase, error) {
	local := now.In(c.loc)

	if wd := local.Weekday(); wd == time.Saturday || wd == time.Sunday {
		return Closed, nil
	}

	holiday, err := c.holidays.IsHoliday(local)
	if err != nil {
		return Closed, fmt.Errorf("holiday calendar: %w", err)
	}
	if holiday {
		return Closed, nil
	}

	minute := local.Hour()*60 + local.Minute()
	inMorning := minute >= morningOpen && minute <= morningClose
	inAfternoon := minute >= afternoonOpen && minute <= afternoonClose
	if !inMorning && !inAfternoon {
		return Closed, nil
	}

	if minute >= nearCloseStart && minute < nearCloseEnd {
		return OpenNearClose, nil
	}
	return OpenMidday, nil
}
