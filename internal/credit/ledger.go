// Package credit applies a customer's prepaid balance against an amount
// owed. Settle is pure; callers must read the balance and persist the new
// one inside the same storage transaction as the rest of the ingestion,
// otherwise concurrent readings can double-spend credit.
package credit

import (
	"errors"

	"github.com/openwater/aquabill/pkg/money"
)

var (
	ErrNonPositiveAmount = errors.New("non_positive_amount")
	ErrNegativeBalance   = errors.New("negative_balance")
)

// Settlement is the split produced by applying credit to a debt.
type Settlement struct {
	CreditUsed    float64
	RemainingDebt float64
	NewBalance    float64
}

// Settle splits amountOwed between available credit and remaining debt.
// Full cover drains the debt, partial cover drains the balance, an empty
// balance leaves both untouched. All results are rounded to two decimals.
func Settle(amountOwed, availableCredit float64) (Settlement, error) {
	if amountOwed <= 0 {
		return Settlement{}, ErrNonPositiveAmount
	}
	if availableCredit < 0 {
		return Settlement{}, ErrNegativeBalance
	}

	switch {
	case availableCredit >= amountOwed:
		return Settlement{
			CreditUsed:    money.Round(amountOwed),
			RemainingDebt: 0,
			NewBalance:    money.Round(availableCredit - amountOwed),
		}, nil
	case availableCredit > 0:
		return Settlement{
			CreditUsed:    money.Round(availableCredit),
			RemainingDebt: money.Round(amountOwed - availableCredit),
			NewBalance:    0,
		}, nil
	default:
		return Settlement{
			CreditUsed:    0,
			RemainingDebt: money.Round(amountOwed),
			NewBalance:    availableCredit,
		}, nil
	}
}
