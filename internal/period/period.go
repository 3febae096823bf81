// Package period parses free-text relative time expressions like
// "3 months" or "2 w" into canonical durations with a day-aligned cutoff.
package period

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidPeriod is returned when the input text cannot be parsed.
// Callers must surface it; reports are never silently widened to all time.
var ErrInvalidPeriod = errors.New("invalid period")

// Unit is a canonical, pluralized duration unit.
type Unit string

const (
	UnitDays   Unit = "days"
	UnitWeeks  Unit = "weeks"
	UnitMonths Unit = "months"
	UnitYears  Unit = "years"
)

// unitAliases maps accepted unit words (lowercased, singular or plural or
// abbreviated) to their canonical unit. A bare "m" means month, not minute;
// the parser is day/week/month/year granularity only.
var unitAliases = map[string]Unit{
	"d": UnitDays, "day": UnitDays, "days": UnitDays,
	"w": UnitWeeks, "week": UnitWeeks, "weeks": UnitWeeks,
	"m": UnitMonths, "mo": UnitMonths, "month": UnitMonths, "months": UnitMonths,
	"y": UnitYears, "yr": UnitYears, "year": UnitYears, "years": UnitYears,
}

// Period is a parsed relative duration. It is constructed fresh per report
// request and never persisted.
type Period struct {
	Amount int
	Unit   Unit

	// Cutoff is the start of the current calendar day minus Amount units.
	Cutoff time.Time
}

// CutoffMillis returns the cutoff as epoch milliseconds.
func (p Period) CutoffMillis() int64 {
	return p.Cutoff.UnixMilli()
}

// String returns the canonical form, e.g. "2 months".
func (p Period) String() string {
	return fmt.Sprintf("%d %s", p.Amount, p.Unit)
}

// Parse interprets text of the shape "<integer> <unit-word>" relative to now.
// The cutoff is aligned to the start of now's calendar day regardless of the
// time of day, so "1 day" means yesterday's midnight rather than 24 hours ago.
func Parse(text string, now time.Time) (Period, error) {
	fields := strings.Fields(strings.TrimSpace(text))
	if len(fields) != 2 {
		return Period{}, fmt.Errorf("%w: %q", ErrInvalidPeriod, text)
	}

	amount, err := strconv.Atoi(fields[0])
	if err != nil || amount <= 0 {
		return Period{}, fmt.Errorf("%w: %q", ErrInvalidPeriod, text)
	}

	unit, ok := unitAliases[strings.ToLower(fields[1])]
	if !ok {
		return Period{}, fmt.Errorf("%w: unknown unit in %q", ErrInvalidPeriod, text)
	}

	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	var cutoff time.Time
	switch unit {
	case UnitDays:
		cutoff = startOfDay.AddDate(0, 0, -amount)
	case UnitWeeks:
		cutoff = startOfDay.AddDate(0, 0, -7*amount)
	case UnitMonths:
		cutoff = startOfDay.AddDate(0, -amount, 0)
	case UnitYears:
		cutoff = startOfDay.AddDate(-amount, 0, 0)
	}

	return Period{
		Amount: amount,
		Unit:   unit,
		Cutoff: cutoff,
	}, nil
}
