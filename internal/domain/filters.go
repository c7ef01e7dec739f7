package domain

import "github.com/shopspring/decimal"

// ============================================================
// Periods
// ============================================================

// Period is a rolling calendar-month window relative to today.
type Period string

const (
	PeriodCurrent   Period = "current"
	PeriodPrevious  Period = "previous"
	PeriodPrevious2 Period = "previous-2"
)

// Valid reports whether p is one of the defined period tokens.
func (p Period) Valid() bool {
	switch p {
	case PeriodCurrent, PeriodPrevious, PeriodPrevious2:
		return true
	}
	return false
}

// ============================================================
// Categories
// ============================================================

// CategoryCode is the short identifier of a merchant category.
type CategoryCode string

const (
	CategoryAll           CategoryCode = "all"
	CategorySupermarket   CategoryCode = "Sup"
	CategoryRestaurant    CategoryCode = "Res"
	CategoryPharmacy      CategoryCode = "Far"
	CategoryTelecom       CategoryCode = "Tel"
	CategoryGasStation    CategoryCode = "Gas"
	CategoryEntertainment CategoryCode = "Ent"
)

// AllowedCategories are the categories offered in the filter modal.
// Only these are surfaced by generation and aggregation.
var AllowedCategories = []CategoryCode{
	CategorySupermarket,
	CategoryRestaurant,
	CategoryPharmacy,
	CategoryTelecom,
}

// ValidFilter reports whether c is a usable category filter:
// "all" or one of the allowed categories.
func (c CategoryCode) ValidFilter() bool {
	if c == CategoryAll {
		return true
	}
	return c.Allowed()
}

// Allowed reports whether c is one of the filter-modal categories.
func (c CategoryCode) Allowed() bool {
	for _, a := range AllowedCategories {
		if c == a {
			return true
		}
	}
	return false
}

// cashbackRates are the fixed cashback percentages per category.
var cashbackRates = map[CategoryCode]float64{
	CategorySupermarket:   1,
	CategoryRestaurant:    2,
	CategoryPharmacy:      1.5,
	CategoryTelecom:       2,
	CategoryGasStation:    1,
	CategoryEntertainment: 1,
}

// CashbackRate returns the fixed cashback percentage for a category.
// Unlisted categories earn 1%.
func CashbackRate(c CategoryCode) float64 {
	if r, ok := cashbackRates[c]; ok {
		return r
	}
	return 1
}

var categoryNames = map[CategoryCode]string{
	CategorySupermarket:   "Supermercados",
	CategoryRestaurant:    "Restaurantes",
	CategoryPharmacy:      "Farmacias",
	CategoryTelecom:       "Telecomunicaciones",
	CategoryGasStation:    "Gasolineras",
	CategoryEntertainment: "Entretenimiento",
}

// CategoryName returns the display name of a category, "Otros" when unknown.
func CategoryName(c CategoryCode) string {
	if n, ok := categoryNames[c]; ok {
		return n
	}
	return "Otros"
}

// CategoryDescription returns the description of a category. The
// frontend contract keeps name and description as separate fields even
// though they currently coincide.
func CategoryDescription(c CategoryCode) string {
	return CategoryName(c)
}

// ============================================================
// Filters
// ============================================================

// TransactionFilters narrows which transactions are considered.
// Value type, compared by equality; drives cache keys and generation.
type TransactionFilters struct {
	Period   Period       `json:"period" validate:"required,oneof=current previous previous-2"`
	Category CategoryCode `json:"category" validate:"required,oneof=all Sup Res Far Tel"`
}

// Validate checks that both filter fields hold defined enum values.
func (f TransactionFilters) Validate() error {
	if !f.Period.Valid() {
		return &ErrValidation{Field: "period", Message: "must be one of current, previous, previous-2"}
	}
	if !f.Category.ValidFilter() {
		return &ErrValidation{Field: "category", Message: "must be one of all, Sup, Res, Far, Tel"}
	}
	return nil
}

// DefaultFilters is the screen's initial filter state.
func DefaultFilters() TransactionFilters {
	return TransactionFilters{Period: PeriodCurrent, Category: CategoryAll}
}

// Round2 rounds a monetary value to 2 decimals, half away from zero.
func Round2(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}
