package csvimport

import (
	"fmt"
	"math"
)

// maxPlausibleMultiplier bounds the derived value; anything beyond it is
// treated as broken input data rather than a real contract size.
const maxPlausibleMultiplier = 1_000_000

// DeriveContractMultiplier recovers the implied contract multiplier from a
// broker-reported realized profit, reversing the identity
//
//	profit = multiplier * priceDelta * quantity + commission + fees
//
// The broker's profit figure already nets out commission and fees, so both
// are subtracted back before dividing. The returned reason is non-empty when
// a guard fired and the value was defaulted or adjusted; the caller records
// it as a data-quality warning. The result is rounded to 10 decimal places,
// and only at the very end, so the division keeps full precision.
func DeriveContractMultiplier(profit, commission, fees, entryPrice, exitPrice, quantity float64, action string) (float64, string) {
	rawPnL := profit - commission - fees

	priceDiff := exitPrice - entryPrice
	if action == "sell" {
		priceDiff = entryPrice - exitPrice
	}

	if quantity == 0 {
		return 1, "cannot derive contract multiplier with zero quantity, defaulted to 1"
	}
	if entryPrice == 0 || exitPrice == 0 {
		return 1, "cannot derive contract multiplier with a zero price, defaulted to 1"
	}
	if priceDiff == 0 {
		return 1, "cannot derive contract multiplier with zero price movement, defaulted to 1"
	}

	multiplier := rawPnL / (priceDiff * quantity)

	if math.IsNaN(multiplier) || math.IsInf(multiplier, 0) {
		return 1, "derived contract multiplier is not a finite number, defaulted to 1"
	}

	reason := ""
	if multiplier <= 0 {
		multiplier = math.Abs(multiplier)
		reason = "derived contract multiplier was negative, using absolute value (check action/profit signs)"
	}
	if multiplier > maxPlausibleMultiplier {
		return 1, fmt.Sprintf("derived contract multiplier %v is implausibly large, defaulted to 1", multiplier)
	}

	return roundTo(multiplier, 10), reason
}

func roundTo(val float64, decimals int) float64 {
	ratio := math.Pow(10, float64(decimals))
	return math.Round(val*ratio) / ratio
}
