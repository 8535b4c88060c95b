package cost

import "testing"

func defaultRates() Rates {
	return Rates{
		InputUSDPerThousand:  0.003,
		OutputUSDPerThousand: 0.015,
		EURPerUSD:            0.92,
	}
}

func TestEstimate(t *testing.T) {
	est := defaultRates().Estimate(1000, 500)

	if est.USD != "0.010500" {
		t.Fatalf("USD = %q, want 0.010500", est.USD)
	}
	if est.EUR != "0.009660" {
		t.Fatalf("EUR = %q, want 0.009660", est.EUR)
	}
}

func TestEstimateZeroTokens(t *testing.T) {
	est := defaultRates().Estimate(0, 0)

	if est.USD != "0.000000" || est.EUR != "0.000000" {
		t.Fatalf("unexpected zero-token estimate: %+v", est)
	}
}

func TestEstimateOutputPricedHigher(t *testing.T) {
	rates := defaultRates()
	inputOnly := rates.Estimate(1000, 0)
	outputOnly := rates.Estimate(0, 1000)

	if inputOnly.USD >= outputOnly.USD {
		t.Fatalf("expected output tokens to cost more: input=%s output=%s", inputOnly.USD, outputOnly.USD)
	}
}
