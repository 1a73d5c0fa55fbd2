package technical

import (
	"testing"

	"MarketPulse/internal/domain/models"
)

func rising(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 100 + float64(i)
	}
	return out
}

func falling(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 200 - float64(i)
	}
	return out
}

func TestRSI(t *testing.T) {
	a := New()

	if got := a.rsi(rising(5)); got != 50 {
		t.Errorf("short series rsi = %v, want 50", got)
	}
	if got := a.rsi(rising(30)); got != 100 {
		t.Errorf("all-gains rsi = %v, want 100", got)
	}
	if got := a.rsi(falling(30)); got != 0 {
		t.Errorf("all-losses rsi = %v, want 0", got)
	}

	mixed := []float64{100, 102, 101, 103, 102, 104, 103, 105, 104, 106, 105, 107, 106, 108, 107}
	got := a.rsi(mixed)
	if got <= 50 || got >= 100 {
		t.Errorf("mixed rsi = %v, want within (50,100)", got)
	}
}

func TestTrendCrossover(t *testing.T) {
	a := New()

	if got := a.Trend(rising(3)); got != models.TrendNeutral {
		t.Errorf("short series trend = %v, want neutral", got)
	}
	// Steep rise pushes the 5-period average more than 2% above the 10-period one.
	steep := []float64{100, 100, 100, 100, 100, 100, 110, 120, 130, 140}
	if got := a.Trend(steep); got != models.TrendBullish {
		t.Errorf("steep rise trend = %v, want bullish", got)
	}
	drop := []float64{140, 140, 140, 140, 140, 140, 120, 110, 100, 90}
	if got := a.Trend(drop); got != models.TrendBearish {
		t.Errorf("steep drop trend = %v, want bearish", got)
	}
	flat := []float64{100, 100, 100, 100, 100, 100, 100, 100, 100, 100}
	if got := a.Trend(flat); got != models.TrendNeutral {
		t.Errorf("flat trend = %v, want neutral", got)
	}
}

func TestTrendFromChange(t *testing.T) {
	if got := TrendFromChange(2.45); got != models.TrendBullish {
		t.Errorf("positive change = %v, want bullish", got)
	}
	if got := TrendFromChange(-0.01); got != models.TrendBearish {
		t.Errorf("negative change = %v, want bearish", got)
	}
	if got := TrendFromChange(0); got != models.TrendNeutral {
		t.Errorf("zero change = %v, want neutral", got)
	}
}

func TestVolatility(t *testing.T) {
	a := New()

	if got := a.Volatility([]float64{100}); got != 0 {
		t.Errorf("single price volatility = %v, want 0", got)
	}
	flat := []float64{100, 100, 100, 100}
	if got := a.Volatility(flat); got != 0 {
		t.Errorf("flat volatility = %v, want 0", got)
	}
	choppy := []float64{100, 110, 95, 112, 90}
	if got := a.Volatility(choppy); got <= 0 {
		t.Errorf("choppy volatility = %v, want > 0", got)
	}
}

func TestBollingerBands(t *testing.T) {
	a := New()
	ind := a.Indicators(rising(30))

	if ind.BollingerUpper <= ind.BollingerMiddle || ind.BollingerMiddle <= ind.BollingerLower {
		t.Errorf("band ordering violated: %v / %v / %v",
			ind.BollingerUpper, ind.BollingerMiddle, ind.BollingerLower)
	}

	short := a.Indicators([]float64{100, 101})
	if short.BollingerUpper != 101 || short.BollingerLower != 101 {
		t.Errorf("short series bands = %v / %v, want collapsed at last price",
			short.BollingerUpper, short.BollingerLower)
	}
}
