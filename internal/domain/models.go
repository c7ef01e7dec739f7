package domain

import "time"

// ============================================================
// Money
// ============================================================

// Amount is a monetary value with its currency code.
type Amount struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

// DefaultCurrency is the currency every generated and aggregated
// amount is denominated in.
const DefaultCurrency = "MXN"

// ============================================================
// Purchase (card transaction)
// ============================================================

// Clearing carries the cashback settlement data of a purchase.
type Clearing struct {
	CashBackPercentage float64 `json:"cashBackPercentage"`
	CashBackAmount     Amount  `json:"cashBackAmount"`
}

// Merchant identifies the establishment where a purchase was made.
type Merchant struct {
	Name                string       `json:"name"`
	CategoryCode        CategoryCode `json:"categoryCode"`
	CategoryDescription string       `json:"categoryDescription"`
}

// Purchase is an immutable card transaction. Identity is the
// transaction id; records are never mutated after creation.
type Purchase struct {
	CardTransactionID       string    `json:"cardTransactionId"`
	AcquirerReferenceNumber string    `json:"acquirerReferenceNumber"`
	OrderDate               time.Time `json:"orderDate"`
	Amount                  Amount    `json:"amount"`
	Clearing                Clearing  `json:"clearing"`
	Merchant                Merchant  `json:"merchant"`
}

// TransactionPage is one page of a paginated transaction listing.
type TransactionPage struct {
	Transactions []Purchase `json:"transactions"`
	Total        int        `json:"total"`
	HasMore      bool       `json:"hasMore"`
}

// ============================================================
// Cashback aggregates
// ============================================================

// CashbackPeriodRef labels which month/year an accumulated figure covers.
// Month and year are strings to match the frontend contract.
type CashbackPeriodRef struct {
	Month string `json:"month"`
	Year  string `json:"year"`
}

// CashBackAmounts is the accumulated cashback for a period: the month
// total plus the year-to-date total.
type CashBackAmounts struct {
	MonthAmount    Amount            `json:"monthAmount"`
	AnnualAmount   Amount            `json:"annualAmount"`
	CashbackPeriod CashbackPeriodRef `json:"cashbackPeriod"`
}

// ActivityAmountCashBack is the per-category cashback aggregate shown in
// the "monthly by store" breakdown.
type ActivityAmountCashBack struct {
	Name                string       `json:"name"`
	CategoryCode        CategoryCode `json:"categoryCode"`
	CategoryDescription string       `json:"categoryDescription"`
	CashBackAmount      Amount       `json:"cashBackAmount"`
	CashBackPercentage  float64      `json:"cashBackPercentage"`
}

// ============================================================
// Product (card)
// ============================================================

// CardIdentification carries the displayable card number.
type CardIdentification struct {
	DisplayNumber string `json:"displayNumber"`
}

// CardImage references the card artwork by number.
type CardImage struct {
	ImageNumber string `json:"imageNumber"`
}

// ProductInfo is the commercial name of the card product.
type ProductInfo struct {
	Name string `json:"name"`
}

// StatusInfo is the status of an associated account.
type StatusInfo struct {
	StatusCode string `json:"statusCode"`
}

// Contract identifies the account contract.
type Contract struct {
	ContractID string `json:"contractId"`
}

// Account is a bank account tied to a card product.
type Account struct {
	Contract   Contract   `json:"contract"`
	TypeCode   string     `json:"typeCode"`
	StatusInfo StatusInfo `json:"statusInfo"`
	Balances   []Amount   `json:"balances"`
}

// AssociatedAccount wraps an account associated to a product.
type AssociatedAccount struct {
	Account Account `json:"account"`
}

// Product is a selectable bank card. Switching products changes the
// transaction universe entirely.
type Product struct {
	Type               string              `json:"type"` // CREDIT, DEBIT
	CardIdentification CardIdentification  `json:"cardIdentification"`
	Image              CardImage           `json:"image"`
	Product            ProductInfo         `json:"product"`
	AssociatedAccounts []AssociatedAccount `json:"associatedAccounts"`
}

// ============================================================
// Promotions
// ============================================================

// PromotionMerchant is the merchant behind a promotion.
type PromotionMerchant struct {
	Name string `json:"name"`
	URL  string `json:"url,omitempty"`
}

// Promotion is a browsable cashback promotion.
type Promotion struct {
	PromotionID string            `json:"promotionId"`
	Title       string            `json:"title,omitempty"`
	Description string            `json:"description,omitempty"`
	Image       CardImage         `json:"image"`
	Merchant    PromotionMerchant `json:"merchant"`
	ValidUntil  string            `json:"validUntil,omitempty"`
}

// ============================================================
// Static data bundle
// ============================================================

// CashbackData is the static bundle served by the cashback data
// backend: the whole screen bootstrap in one fetch.
type CashbackData struct {
	Product                 Product                  `json:"product"`
	Products                []Product                `json:"products"`
	CashbackAmounts         CashBackAmounts          `json:"cashbackAmounts"`
	ActivityAmountCashBacks []ActivityAmountCashBack `json:"activityAmountCashBacks"`
	Purchases               []Purchase               `json:"purchases"`
	Promotions              []Promotion              `json:"promotions"`
	RockStarRewards         []Promotion              `json:"rockStarRewards"`
}
