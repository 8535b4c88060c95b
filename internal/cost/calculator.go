// Package cost estimates the spend of a single completion from token
// counts and fixed per-thousand-token rates.
package cost

import "strconv"

// Rates: pricing applied per thousand tokens, plus a static USD to EUR
// multiplier. The conversion rate is a constant, not a live quote.
type Rates struct {
	InputUSDPerThousand  float64
	OutputUSDPerThousand float64
	EURPerUSD            float64
}

// Estimate: token-level cost of one completion, formatted for the
// response body.
type Estimate struct {
	USD string
	EUR string
}

// Estimate: computes the cost of a completion with the given token counts.
func (r Rates) Estimate(inputTokens, outputTokens int) Estimate {
	usd := float64(inputTokens)/1000*r.InputUSDPerThousand + float64(outputTokens)/1000*r.OutputUSDPerThousand
	eur := usd * r.EURPerUSD
	return Estimate{
		USD: formatAmount(usd),
		EUR: formatAmount(eur),
	}
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
