// Package period resolves symbolic period tokens (current, previous,
// previous-2) into concrete calendar-month windows.
package period

import (
	"time"

	"github.com/rockstar-cards/cashback-bfa-go/internal/domain"
)

// DateRange is an inclusive window over a calendar month.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Info describes the concrete month a period token resolves to.
type Info struct {
	Month     int       `json:"month"` // 1-12
	Year      int       `json:"year"`
	MonthName string    `json:"monthName"` // Spanish, capitalized
	DateRange DateRange `json:"dateRange"`
}

// Labeled pairs a period token with its display label for the filter modal.
type Labeled struct {
	Label string        `json:"label"`
	Value domain.Period `json:"value"`
}

var monthNames = [...]string{
	"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
	"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
}

// Resolve maps a period token to its month window anchored to now.
func Resolve(p domain.Period) Info {
	return ResolveAt(p, time.Now())
}

// ResolveAt is Resolve anchored to an explicit reference time. Unknown
// tokens fall back to the current month; that is the default policy,
// not an error.
func ResolveAt(p domain.Period, now time.Time) Info {
	back := 0
	switch p {
	case domain.PeriodPrevious:
		back = 1
	case domain.PeriodPrevious2:
		back = 2
	}

	year, month := now.Year(), int(now.Month())
	for i := 0; i < back; i++ {
		if month == 1 {
			month = 12
			year--
		} else {
			month--
		}
	}

	loc := now.Location()
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, loc)
	// Day 0 of the next month is the last day of this one.
	end := time.Date(year, time.Month(month)+1, 0, 23, 59, 59, 0, loc)

	return Info{
		Month:     month,
		Year:      year,
		MonthName: monthNames[month-1],
		DateRange: DateRange{Start: start, End: end},
	}
}

// Available returns the three selectable periods with their labels,
// anchored to now.
func Available() []Labeled {
	return AvailableAt(time.Now())
}

// AvailableAt returns the selectable periods anchored to an explicit
// reference time.
func AvailableAt(now time.Time) []Labeled {
	return []Labeled{
		{Label: ResolveAt(domain.PeriodCurrent, now).MonthName, Value: domain.PeriodCurrent},
		{Label: ResolveAt(domain.PeriodPrevious, now).MonthName, Value: domain.PeriodPrevious},
		{Label: ResolveAt(domain.PeriodPrevious2, now).MonthName, Value: domain.PeriodPrevious2},
	}
}
