package entities

import "github.com/shopspring/decimal"

// Shareholder is one cap-table row. Actions is the capital weight used by
// quorum math and by direct-attendance capital.
type Shareholder struct {
	ID       int64
	Code     string
	Name     string
	Document string
	Email    string
	Actions  decimal.Decimal
	Status   string
}

const ShareholderStatusActive = "ACTIVE"
