package usecase

import (
	"sort"
	"time"

	"MarketPulse/internal/domain/models"
)

// AggregateSectors rolls financial signals up per sector: average change,
// total volume, average volatility and the majority trend direction.
func AggregateSectors(signals []*models.FinancialSignal, now time.Time) []*models.SectorPerformance {
	type acc struct {
		change     float64
		volatility float64
		volume     int64
		bullish    int
		bearish    int
		count      int
	}

	bySector := make(map[string]*acc)
	for _, s := range signals {
		if s == nil || s.Sector == "" {
			continue
		}
		a, ok := bySector[s.Sector]
		if !ok {
			a = &acc{}
			bySector[s.Sector] = a
		}
		a.change += s.ChangePercent
		a.volatility += s.Volatility
		a.volume += s.Volume
		a.count++
		switch s.TrendDirection {
		case models.TrendBullish:
			a.bullish++
		case models.TrendBearish:
			a.bearish++
		}
	}

	out := make([]*models.SectorPerformance, 0, len(bySector))
	for sector, a := range bySector {
		trend := models.TrendNeutral
		if a.bullish > a.bearish {
			trend = models.TrendBullish
		} else if a.bearish > a.bullish {
			trend = models.TrendBearish
		}
		out = append(out, &models.SectorPerformance{
			Sector:         sector,
			AvgChange:      a.change / float64(a.count),
			TotalVolume:    a.volume,
			AvgVolatility:  a.volatility / float64(a.count),
			TrendDirection: trend,
			StockCount:     a.count,
			Timestamp:      now,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Sector < out[j].Sector })
	return out
}
