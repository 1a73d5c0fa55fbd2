package match

import (
	"math/rand"
	"testing"
	"time"

	"MarketPulse/internal/domain/models"
)

func fixedClock(month time.Month) func() time.Time {
	return func() time.Time {
		return time.Date(2026, month, 15, 12, 0, 0, 0, time.UTC)
	}
}

func TestGenerateSmartphoneMatches(t *testing.T) {
	e := NewEngineWithClock(rand.New(rand.NewSource(42)), fixedClock(time.March))

	matches := e.Generate("smartphone", nil)
	if len(matches) == 0 || len(matches) > 5 {
		t.Fatalf("got %d matches, want 1..5", len(matches))
	}

	for i, m := range matches {
		if m.MatchScore < 0 || m.MatchScore > 100 {
			t.Errorf("match %d score %v out of [0,100]", i, m.MatchScore)
		}
		if i > 0 && matches[i-1].MatchScore < m.MatchScore {
			t.Errorf("matches not sorted descending at %d", i)
		}
		if m.SynergyType != models.SynergyComplementary {
			t.Errorf("synergy = %v", m.SynergyType)
		}
		if m.PrimaryProduct != "smartphone" {
			t.Errorf("primary = %q", m.PrimaryProduct)
		}
		if len(m.RiskFactors) == 0 || len(m.RiskFactors) > 3 {
			t.Errorf("risk factors = %d, want 1..3", len(m.RiskFactors))
		}
		if m.MarketOpportunity == "" || m.TimeToMarket == "" {
			t.Errorf("match %d missing narrative fields", i)
		}
	}

	found := false
	for _, m := range matches {
		if m.MatchedProduct == "phone_case" {
			found = true
			if m.MatchScore < 60 {
				t.Errorf("popular pair score %v, want >= 60", m.MatchScore)
			}
		}
	}
	if !found {
		t.Error("phone_case missing from smartphone matches")
	}
}

func TestGenerateDeterministicWithSeed(t *testing.T) {
	clock := fixedClock(time.March)
	a := NewEngineWithClock(rand.New(rand.NewSource(7)), clock).Generate("laptop", []string{"productivity"})
	b := NewEngineWithClock(rand.New(rand.NewSource(7)), clock).Generate("laptop", []string{"productivity"})

	if len(a) != len(b) {
		t.Fatalf("lengths differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].MatchedProduct != b[i].MatchedProduct || a[i].MatchScore != b[i].MatchScore {
			t.Errorf("match %d differs: %s/%v vs %s/%v",
				i, a[i].MatchedProduct, a[i].MatchScore, b[i].MatchedProduct, b[i].MatchScore)
		}
	}
}

func TestGenerateResolvesProductBySubstring(t *testing.T) {
	e := NewEngineWithClock(rand.New(rand.NewSource(42)), fixedClock(time.March))

	matches := e.Generate("Apple Smartphone", nil)
	if len(matches) == 0 {
		t.Fatal("no matches for branded smartphone")
	}
	seen := map[string]bool{}
	for _, m := range matches {
		seen[m.MatchedProduct] = true
	}
	if !seen["phone_case"] {
		t.Errorf("smartphone complements not resolved for branded name: %v", seen)
	}

	var pairScore float64
	for _, m := range matches {
		if m.MatchedProduct == "phone_case" {
			pairScore = m.MatchScore
		}
	}
	if pairScore < baseScore+popularPairBonus-jitterSpread {
		t.Errorf("popular pair bonus not applied to branded name, score %v", pairScore)
	}
}

func TestGoalBonusRequiresGoalInsideCandidate(t *testing.T) {
	clock := fixedClock(time.March)
	// "tripod stand kit" is not a substring of any camera complement, so
	// it must not raise the tripod score.
	without := NewEngineWithClock(rand.New(rand.NewSource(9)), clock).Generate("camera", nil)
	with := NewEngineWithClock(rand.New(rand.NewSource(9)), clock).Generate("camera", []string{"tripod stand kit"})

	scoreOf := func(ms []*models.StrategicMatch) float64 {
		for _, m := range ms {
			if m.MatchedProduct == "tripod" {
				return m.MatchScore
			}
		}
		return -1
	}
	if a, b := scoreOf(without), scoreOf(with); a != b {
		t.Errorf("goal containing the candidate changed the score: %v vs %v", a, b)
	}
}

func TestGenerateUnknownProductUsesCategoryFallback(t *testing.T) {
	e := NewEngineWithClock(rand.New(rand.NewSource(1)), fixedClock(time.March))

	matches := e.Generate("mystery gadget", nil)
	if len(matches) == 0 {
		t.Fatal("no matches for unknown product")
	}
	seen := map[string]bool{}
	for _, m := range matches {
		seen[m.MatchedProduct] = true
	}
	if !seen["accessories"] {
		t.Errorf("generic fallback list not used: %v", seen)
	}
}

func TestGoalKeywordsRaiseScore(t *testing.T) {
	clock := fixedClock(time.March)
	without := NewEngineWithClock(rand.New(rand.NewSource(3)), clock).Generate("camera", nil)
	with := NewEngineWithClock(rand.New(rand.NewSource(3)), clock).Generate("camera", []string{"tripod"})

	var base, boosted float64
	for _, m := range without {
		if m.MatchedProduct == "tripod" {
			base = m.MatchScore
		}
	}
	for _, m := range with {
		if m.MatchedProduct == "tripod" {
			boosted = m.MatchScore
		}
	}
	if boosted <= base {
		t.Errorf("goal keyword did not raise score: %v <= %v", boosted, base)
	}
}

func TestSeasonalDemand(t *testing.T) {
	rngA := rand.New(rand.NewSource(5))
	rngB := rand.New(rand.NewSource(5))

	december := NewEngineWithClock(rngA, fixedClock(time.December)).Generate("coffee_maker", nil)
	march := NewEngineWithClock(rngB, fixedClock(time.March)).Generate("coffee_maker", nil)

	demandOf := func(ms []*models.StrategicMatch, product string) float64 {
		for _, m := range ms {
			if m.MatchedProduct == product {
				return m.EstimatedDemand
			}
		}
		return -1
	}

	dDec := demandOf(december, "coffee_beans")
	dMar := demandOf(march, "coffee_beans")
	if dDec != dMar+15 {
		t.Errorf("december demand %v, march %v, want +15 seasonal lift", dDec, dMar)
	}
}

func TestRevenueDerivation(t *testing.T) {
	rp := revenueFromDemand(50)
	if rp.MonthlyMin != 25000 || rp.MonthlyMax != 100000 || rp.MonthlyAvg != 50000 {
		t.Errorf("monthly revenue = %+v", rp)
	}
	if rp.AnnualPotential != rp.MonthlyAvg*12 {
		t.Errorf("annual = %v, want %v", rp.AnnualPotential, rp.MonthlyAvg*12)
	}
}
