// Package wac computes weighted-average cost basis and realized P/L for
// unitized investment positions.
package wac

import "github.com/shopspring/decimal"

// Average returns the new weighted-average unit cost after buying units at
// price with fees, given the prior position. When the combined unit count is
// zero the price is returned as-is to avoid a division by zero.
func Average(prevUnits, prevAvg, units, price, fees decimal.Decimal) decimal.Decimal {
	total := prevUnits.Add(units)
	if total.IsZero() {
		return price
	}
	cost := prevUnits.Mul(prevAvg).Add(units.Mul(price)).Add(fees)
	return cost.Div(total)
}

// RealizedPnL returns the gain or loss booked by selling units at sellPrice
// with sellFees against an average cost basis. Selling never changes the
// average cost of the remaining position.
func RealizedPnL(avg, units, sellPrice, sellFees decimal.Decimal) decimal.Decimal {
	proceeds := sellPrice.Mul(units).Sub(sellFees)
	basis := avg.Mul(units)
	return proceeds.Sub(basis)
}
