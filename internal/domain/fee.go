package domain

import (
	"fmt"
	"math/bits"
)

const (
	// BasisPointsDenominator is 100% expressed in basis points.
	BasisPointsDenominator = 10000
)

// Terms are the commercial terms of a case, fixed at creation.
type Terms struct {
	AmountOwedSat   uint64
	MarketFeeSat    uint64
	SellerCreditSat uint64
}

// ComputeTerms - amount owed, market fee (rounded up) and seller credit.
// MarketFeeSat + SellerCreditSat always equals AmountOwedSat.
func ComputeTerms(quantity, unitPriceSat uint64, feeRateBasisPoints uint32) (Terms, error) {
	if quantity == 0 {
		return Terms{}, NewValidationError("Quantity must be positive.")
	}
	if feeRateBasisPoints > BasisPointsDenominator {
		return Terms{}, NewValidationError("Fee rate must not exceed 10000 basis points.")
	}

	hi, amountOwed := bits.Mul64(quantity, unitPriceSat)
	if hi != 0 {
		return Terms{}, fmt.Errorf("quantity %d * price %d: %w", quantity, unitPriceSat, ErrOverflow)
	}

	hi, feeNumerator := bits.Mul64(amountOwed, uint64(feeRateBasisPoints))
	if hi != 0 {
		return Terms{}, fmt.Errorf("amount %d * fee rate %d: %w", amountOwed, feeRateBasisPoints, ErrOverflow)
	}

	marketFee := divideRoundUp(feeNumerator, BasisPointsDenominator)

	return Terms{
		AmountOwedSat:   amountOwed,
		MarketFeeSat:    marketFee,
		SellerCreditSat: amountOwed - marketFee,
	}, nil
}

// divideRoundUp equals (dividend + divisor - 1) / divisor without the
// intermediate sum, so it cannot wrap near the top of the range.
func divideRoundUp(dividend, divisor uint64) uint64 {
	q := dividend / divisor
	if dividend%divisor != 0 {
		q++
	}
	return q
}
