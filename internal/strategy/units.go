package strategy

import (
	"fmt"
	"strings"
)

// Calendar constants in simulated seconds. A month is a twelfth of a 365-day year.
const (
	SecondsPerMinute = 60
	SecondsPerHour   = 60 * SecondsPerMinute
	SecondsPerDay    = 24 * SecondsPerHour
	SecondsPerWeek   = 7 * SecondsPerDay
	SecondsPerYear   = 365 * SecondsPerDay
	SecondsPerMonth  = SecondsPerYear / 12
)

// Unit names the unit of a run length.
// Keep these values stable; they appear in YAML configs and API requests.
type Unit string

const (
	UnitTicks   Unit = "ticks"
	UnitSeconds Unit = "seconds"
	UnitMinutes Unit = "minutes"
	UnitHours   Unit = "hours"
	UnitDays    Unit = "days"
	UnitWeeks   Unit = "weeks"
	UnitMonths  Unit = "months"
	UnitYears   Unit = "years"
)

var unitSeconds = map[Unit]int64{
	UnitSeconds: 1,
	UnitMinutes: SecondsPerMinute,
	UnitHours:   SecondsPerHour,
	UnitDays:    SecondsPerDay,
	UnitWeeks:   SecondsPerWeek,
	UnitMonths:  SecondsPerMonth,
	UnitYears:   SecondsPerYear,
}

// ParseUnit accepts plural or singular unit names in any case.
func ParseUnit(s string) (Unit, error) {
	u := Unit(strings.ToLower(strings.TrimSpace(s)))
	if u == "tick" || u == UnitTicks {
		return UnitTicks, nil
	}
	if _, ok := unitSeconds[u]; ok {
		return u, nil
	}
	if _, ok := unitSeconds[u+"s"]; ok {
		return u + "s", nil
	}
	return "", fmt.Errorf("%w: unknown time unit %q", ErrConfiguration, s)
}

// Seconds returns the length of one unit. Ticks have no fixed length.
func (u Unit) Seconds() (int64, error) {
	n, ok := unitSeconds[u]
	if !ok {
		return 0, fmt.Errorf("%w: unit %q has no length in seconds", ErrConfiguration, string(u))
	}
	return n, nil
}
