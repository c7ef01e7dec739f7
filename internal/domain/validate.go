package domain

// Structural validation of the cashback data bundle. JSON decoding is
// typed, so "valid" here means the minimal required fields are present,
// mirroring what the frontend checks before trusting the payload.

// ValidProduct reports whether a product has the minimum required shape.
func ValidProduct(p *Product) bool {
	if p == nil {
		return false
	}
	return p.Type != "" && p.Product.Name != ""
}

// ValidCashbackAmounts reports whether an accumulated-amounts record
// carries currencies on both totals.
func ValidCashbackAmounts(a *CashBackAmounts) bool {
	if a == nil {
		return false
	}
	return a.MonthAmount.Currency != "" && a.AnnualAmount.Currency != ""
}

// ValidActivityAmountCashBacks reports whether every per-category
// aggregate has a name and a category code.
func ValidActivityAmountCashBacks(items []ActivityAmountCashBack) bool {
	for _, it := range items {
		if it.Name == "" || it.CategoryCode == "" {
			return false
		}
	}
	return true
}

// ValidPurchases reports whether every purchase has an id and a merchant.
func ValidPurchases(purchases []Purchase) bool {
	for _, p := range purchases {
		if p.CardTransactionID == "" || p.Merchant.Name == "" {
			return false
		}
	}
	return true
}

// ValidPromotions reports whether every promotion has an id.
func ValidPromotions(promos []Promotion) bool {
	for _, p := range promos {
		if p.PromotionID == "" {
			return false
		}
	}
	return true
}

// ValidCashbackData validates the whole bundle. Purchases, promotions
// and rewards may be empty but must be well-formed when present.
func ValidCashbackData(d *CashbackData) bool {
	if d == nil {
		return false
	}
	if !ValidProduct(&d.Product) {
		return false
	}
	for i := range d.Products {
		if !ValidProduct(&d.Products[i]) {
			return false
		}
	}
	if !ValidCashbackAmounts(&d.CashbackAmounts) {
		return false
	}
	if !ValidActivityAmountCashBacks(d.ActivityAmountCashBacks) {
		return false
	}
	if !ValidPurchases(d.Purchases) {
		return false
	}
	if !ValidPromotions(d.Promotions) {
		return false
	}
	return ValidPromotions(d.RockStarRewards)
}
