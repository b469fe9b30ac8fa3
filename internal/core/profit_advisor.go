package core

import "github.com/shopspring/decimal"

// Verdict messages shown verbatim on the cashier screen.
const (
	msgLoss      = "Loss—check pricing and FX rate."
	msgLowMargin = "Low margin—consider price review."
	msgHealthy   = "Healthy profit."
)

var (
	hundred         = decimal.NewFromInt(100)
	lowMarginCutoff = decimal.NewFromInt(10)
	marginFloor     = decimal.RequireFromString("0.05")
	marginCeiling   = decimal.RequireFromString("0.95")
)

// EvaluateSale computes the profit verdict for a committed sale from its
// captured line costs. It reads nothing but the sale itself, so the same
// sale always yields the same verdict.
func EvaluateSale(sale *Sale) Verdict {
	cogs := decimal.Zero
	for _, line := range sale.Lines {
		cogs = cogs.Add(line.CostUsdAtSale.Mul(decimal.NewFromInt(int64(line.Qty))))
	}

	profit := sale.TotalUsd.Sub(cogs)

	margin := decimal.Zero
	if !sale.TotalUsd.IsZero() {
		margin = profit.Div(sale.TotalUsd).Mul(hundred)
	}

	msg := msgHealthy
	switch {
	case profit.Sign() <= 0:
		msg = msgLoss
	case margin.LessThan(lowMarginCutoff):
		msg = msgLowMargin
	}

	return Verdict{
		Profitable: profit.Sign() > 0,
		ProfitUsd:  profit.Round(2),
		MarginPct:  margin.Round(2),
		Message:    msg,
	}
}

// SuggestPriceUSD returns the retail price that yields the target margin
// percentage over the given unit cost. The margin is clamped to [5%, 95%]
// so the division stays sane for degenerate inputs.
func SuggestPriceUSD(costUsd decimal.Decimal, targetMarginPct decimal.Decimal) decimal.Decimal {
	m := targetMarginPct.Div(hundred)
	if m.GreaterThanOrEqual(marginCeiling) {
		m = marginCeiling
	} else if m.Sign() <= 0 {
		m = marginFloor
	}
	return costUsd.Div(decimal.NewFromInt(1).Sub(m)).Round(2)
}
