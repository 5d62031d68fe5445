// Package commission computes the marketplace fee charged on top of a hostel fee.
package commission

import (
	"fmt"

	"github.com/Domenick1991/hostelmarket/internal/domain"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Calculator is immutable once built; the percent comes from configuration.
type Calculator struct {
	percent decimal.Decimal
}

func NewCalculator(percent float64) (*Calculator, error) {
	if percent < 0 {
		return nil, fmt.Errorf("%w: commission percent %v is negative", domain.ErrInvalidInput, percent)
	}
	return &Calculator{percent: decimal.NewFromFloat(percent)}, nil
}

// MustCalculator panics on a negative percent. Intended for tests and constants.
func MustCalculator(percent float64) *Calculator {
	c, err := NewCalculator(percent)
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Calculator) Percent() decimal.Decimal {
	return c.percent
}

// Calculate splits a hostel fee expressed in the currency's smallest unit.
// The commission is rounded half-up to a whole unit.
func (c *Calculator) Calculate(hostelFee int64) (domain.Fees, error) {
	if hostelFee < 0 {
		return domain.Fees{}, fmt.Errorf("%w: hostel fee %d is negative", domain.ErrInvalidInput, hostelFee)
	}
	commission := decimal.NewFromInt(hostelFee).Mul(c.percent).Div(hundred).Round(0).IntPart()
	return domain.Fees{
		HostelFee:       hostelFee,
		AdminCommission: commission,
		TotalAmount:     hostelFee + commission,
	}, nil
}
