package technical

import (
	"math"

	"MarketPulse/internal/domain/models"
)

const (
	rsiPeriod       = 14
	macdFastPeriod  = 12
	macdSlowPeriod  = 26
	bollingerPeriod = 20
	bollingerWidth  = 2.0
)

// Analyzer derives simplified indicators from a closing-price series.
// Prices are ordered oldest first.
type Analyzer struct{}

func New() *Analyzer { return &Analyzer{} }

// Indicators computes RSI, MACD and Bollinger bands for the series.
// Short series fall back to neutral values rather than erroring.
func (a *Analyzer) Indicators(prices []float64) *models.TechnicalIndicators {
	macd := a.macd(prices)
	upper, middle, lower := a.bollinger(prices)
	return &models.TechnicalIndicators{
		RSI:             a.rsi(prices),
		MACD:            macd,
		MACDSignal:      macd,
		BollingerUpper:  upper,
		BollingerMiddle: middle,
		BollingerLower:  lower,
	}
}

// rsi is the classic 14-period relative strength index over simple
// average gains/losses. Returns 50 when the series is too short and
// 100 when there are no losing periods.
func (a *Analyzer) rsi(prices []float64) float64 {
	if len(prices) < rsiPeriod+1 {
		return 50
	}
	recent := prices[len(prices)-rsiPeriod-1:]
	var gains, losses float64
	for i := 1; i < len(recent); i++ {
		d := recent[i] - recent[i-1]
		if d > 0 {
			gains += d
		} else {
			losses -= d
		}
	}
	if losses == 0 {
		return 100
	}
	rs := (gains / rsiPeriod) / (losses / rsiPeriod)
	return 100 - 100/(1+rs)
}

// macd approximates MACD with simple moving averages.
func (a *Analyzer) macd(prices []float64) float64 {
	if len(prices) < macdSlowPeriod {
		return 0
	}
	return sma(prices, macdFastPeriod) - sma(prices, macdSlowPeriod)
}

func (a *Analyzer) bollinger(prices []float64) (upper, middle, lower float64) {
	if len(prices) < bollingerPeriod {
		if len(prices) == 0 {
			return 0, 0, 0
		}
		last := prices[len(prices)-1]
		return last, last, last
	}
	middle = sma(prices, bollingerPeriod)
	sd := stddev(prices[len(prices)-bollingerPeriod:])
	return middle + bollingerWidth*sd, middle, middle - bollingerWidth*sd
}

// Volatility is the standard deviation of period-over-period returns,
// expressed as a percentage.
func (a *Analyzer) Volatility(prices []float64) float64 {
	if len(prices) < 2 {
		return 0
	}
	returns := make([]float64, 0, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		if prices[i-1] == 0 {
			continue
		}
		returns = append(returns, (prices[i]-prices[i-1])/prices[i-1])
	}
	if len(returns) == 0 {
		return 0
	}
	return stddev(returns) * 100
}

// AnnualizedVolatility scales daily return deviation by sqrt(252).
func (a *Analyzer) AnnualizedVolatility(prices []float64) float64 {
	if len(prices) < 2 {
		return 0
	}
	returns := make([]float64, 0, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		if prices[i-1] == 0 {
			continue
		}
		returns = append(returns, (prices[i]-prices[i-1])/prices[i-1])
	}
	if len(returns) == 0 {
		return 0
	}
	return stddev(returns) * math.Sqrt(252)
}

// Trend classifies direction from a 5/10 moving-average crossover with
// a 2% deadband. Series shorter than 10 points are neutral.
func (a *Analyzer) Trend(prices []float64) models.TrendDirection {
	if len(prices) < 10 {
		return models.TrendNeutral
	}
	fast := sma(prices, 5)
	slow := sma(prices, 10)
	switch {
	case fast > slow*1.02:
		return models.TrendBullish
	case fast < slow*0.98:
		return models.TrendBearish
	default:
		return models.TrendNeutral
	}
}

// TrendFromChange classifies direction from a single change value.
func TrendFromChange(change float64) models.TrendDirection {
	switch {
	case change > 0:
		return models.TrendBullish
	case change < 0:
		return models.TrendBearish
	default:
		return models.TrendNeutral
	}
}

func sma(prices []float64, period int) float64 {
	if period <= 0 || len(prices) < period {
		return 0
	}
	var sum float64
	for _, p := range prices[len(prices)-period:] {
		sum += p
	}
	return sum / float64(period)
}

func stddev(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var mean float64
	for _, x := range xs {
		mean += x
	}
	mean /= float64(len(xs))
	var variance float64
	for _, x := range xs {
		variance += (x - mean) * (x - mean)
	}
	variance /= float64(len(xs))
	return math.Sqrt(variance)
}
