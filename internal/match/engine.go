package match

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"MarketPulse/internal/domain/models"
)

const (
	baseScore         = 60.0
	popularPairBonus  = 20.0
	goalBonus         = 10.0
	highDemandBonus   = 15.0
	jitterSpread      = 5.0
	maxMatches        = 5
	maxRiskFactors    = 3
	baseDemand        = 50.0
	peakSeasonBonus   = 15.0
	summerSeasonBonus = 10.0
)

// complementEntries are resolved by substring: "apple smartphone" picks
// the smartphone complements. Declaration order decides ties.
var complementEntries = []struct {
	key         string
	complements []string
}{
	{"smartphone", []string{"phone_case", "screen_protector", "wireless_charger", "bluetooth_headphones"}},
	{"laptop", []string{"laptop_bag", "wireless_mouse", "external_monitor", "keyboard"}},
	{"coffee_maker", []string{"coffee_beans", "milk_frother", "coffee_grinder", "descaling_solution"}},
	{"fitness_tracker", []string{"fitness_bands", "wireless_earbuds", "water_bottle", "yoga_mat"}},
	{"camera", []string{"tripod", "camera_bag", "memory_card", "lens_filter"}},
	{"gaming_console", []string{"controller", "gaming_headset", "charging_dock", "game_storage"}},
}

var popularPairs = [][2]string{
	{"smartphone", "phone_case"},
	{"laptop", "laptop_bag"},
	{"camera", "tripod"},
	{"coffee_maker", "coffee_beans"},
	{"fitness_tracker", "fitness_bands"},
}

var highDemandKeywords = []string{"smart", "wireless", "portable", "premium", "eco"}

var baseRiskFactors = []string{
	"Market saturation",
	"Seasonal demand fluctuations",
	"Supply chain dependencies",
	"Regulatory compliance requirements",
	"Competitive pricing pressure",
}

var successIndicators = []string{
	"Customer acquisition cost below industry average",
	"Repeat purchase rate above 25%",
	"Positive review ratio above 80%",
	"Inventory turnover within 60 days",
	"Cross-sell attachment rate above 15%",
}

var opportunityTemplates = []string{
	"Bundle %s with %s to raise average order value",
	"Cross-promote %s to existing %s customers",
	"Position %s as the essential companion for every %s purchase",
	"Capture accessory spend by pairing %s listings with %s",
	"Launch a starter kit combining %s and %s for new buyers",
}

// Engine generates strategic product matches. Scoring is deterministic
// apart from a small jitter drawn from the injected rand source, so
// tests pin the seed.
type Engine struct {
	mu  sync.Mutex
	rng *rand.Rand
	now func() time.Time
}

func NewEngine(rng *rand.Rand) *Engine {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Engine{rng: rng, now: time.Now}
}

// NewEngineWithClock also injects the time source for seasonality tests.
func NewEngineWithClock(rng *rand.Rand, now func() time.Time) *Engine {
	e := NewEngine(rng)
	e.now = now
	return e
}

// Generate scores every candidate complement for primary and returns at
// most five matches, best first. Scores stay within [0, 100].
func (e *Engine) Generate(primary string, userGoals []string) []*models.StrategicMatch {
	e.mu.Lock()
	defer e.mu.Unlock()

	primary = strings.ToLower(strings.TrimSpace(primary))
	now := e.now()

	matches := make([]*models.StrategicMatch, 0, maxMatches)
	for _, candidate := range e.candidates(primary) {
		score := e.score(primary, candidate, userGoals)
		demand := e.estimateDemand(candidate, now)

		matches = append(matches, &models.StrategicMatch{
			ID:                fmt.Sprintf("match_%s_%s_%d", sanitize(primary), sanitize(candidate), now.Unix()),
			PrimaryProduct:    primary,
			MatchedProduct:    candidate,
			MatchScore:        score,
			SynergyType:       e.synergy(primary, candidate),
			MarketOpportunity: e.opportunity(primary, candidate),
			EstimatedDemand:   demand,
			RevenuePotential:  revenueFromDemand(demand),
			Complexity:        complexityOf(candidate),
			TimeToMarket:      timeToMarket(complexityOf(candidate)),
			RiskFactors:       riskFactors(candidate),
			SuccessIndicators: successIndicators,
			Metadata: map[string]any{
				"algorithm_version": "1.0",
				"user_goals":        userGoals,
				"generated_at":      now.UTC().Format(time.RFC3339),
			},
			Timestamp: now,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].MatchScore > matches[j].MatchScore
	})
	if len(matches) > maxMatches {
		matches = matches[:maxMatches]
	}
	return matches
}

// complementsFor resolves the complement list whose key occurs in the
// lowercase primary name.
func complementsFor(primary string) ([]string, bool) {
	for _, entry := range complementEntries {
		if strings.Contains(primary, entry.key) {
			return entry.complements, true
		}
	}
	return nil, false
}

// candidates returns the complement list for primary, falling back to a
// category-level list when the product is unknown.
func (e *Engine) candidates(primary string) []string {
	if list, ok := complementsFor(primary); ok {
		return list
	}
	switch {
	case containsAny(primary, "tech", "electronic"):
		return []string{"accessories", "protective_case", "charger", "stand"}
	case containsAny(primary, "clothing", "apparel"):
		return []string{"accessories", "shoes", "jewelry", "bags"}
	case strings.Contains(primary, "home"):
		return []string{"decor", "cleaning_supplies", "storage", "lighting"}
	default:
		return []string{"accessories", "maintenance_kit", "user_manual", "warranty"}
	}
}

func (e *Engine) score(primary, candidate string, userGoals []string) float64 {
	score := baseScore
	if isPopularPair(primary, candidate) {
		score += popularPairBonus
	}
	for _, goal := range userGoals {
		goal = strings.ToLower(goal)
		if goal != "" && strings.Contains(candidate, goal) {
			score += goalBonus
		}
	}
	if containsAny(candidate, highDemandKeywords...) {
		score += highDemandBonus
	}
	score += e.rng.Float64()*2*jitterSpread - jitterSpread
	return clamp(score, 0, 100)
}

func isPopularPair(primary, candidate string) bool {
	for _, p := range popularPairs {
		if strings.Contains(primary, p[0]) && strings.Contains(candidate, p[1]) {
			return true
		}
	}
	return false
}

func (e *Engine) synergy(primary, candidate string) models.SynergyType {
	if _, ok := complementsFor(primary); ok {
		return models.SynergyComplementary
	}
	if containsAny(candidate, "competitor", "alternative") {
		return models.SynergyCompetitive
	}
	return models.SynergyComplementary
}

func (e *Engine) opportunity(primary, candidate string) string {
	tpl := opportunityTemplates[e.rng.Intn(len(opportunityTemplates))]
	return fmt.Sprintf(tpl, humanize(candidate), humanize(primary))
}

func (e *Engine) estimateDemand(candidate string, now time.Time) float64 {
	demand := baseDemand
	for _, kw := range highDemandKeywords {
		if strings.Contains(candidate, kw) {
			demand += 10
		}
	}
	switch now.Month() {
	case time.November, time.December, time.January:
		demand += peakSeasonBonus
	case time.June, time.July, time.August:
		demand += summerSeasonBonus
	}
	return clamp(demand, 0, 100)
}

func revenueFromDemand(demand float64) models.RevenuePotential {
	monthly := demand * 1000
	return models.RevenuePotential{
		MonthlyMin:      monthly * 0.5,
		MonthlyMax:      monthly * 2.0,
		MonthlyAvg:      monthly,
		AnnualPotential: monthly * 12,
	}
}

func complexityOf(candidate string) models.Complexity {
	switch {
	case strings.Contains(candidate, "physical"):
		return models.ComplexityHigh
	case containsAny(candidate, "software", "digital"):
		return models.ComplexityMedium
	case containsAny(candidate, "service", "accessor"):
		return models.ComplexityLow
	default:
		return models.ComplexityMedium
	}
}

func timeToMarket(c models.Complexity) string {
	switch c {
	case models.ComplexityLow:
		return "1-3 months"
	case models.ComplexityHigh:
		return "6-12 months"
	default:
		return "3-6 months"
	}
}

func riskFactors(candidate string) []string {
	risks := make([]string, 0, maxRiskFactors)
	risks = append(risks, baseRiskFactors...)
	if containsAny(candidate, "electronic", "charger", "wireless", "headphones") {
		risks = append(risks, "Technology obsolescence")
	}
	if containsAny(candidate, "fashion", "apparel", "jewelry") {
		risks = append(risks, "Fashion trend changes")
	}
	if len(risks) > maxRiskFactors {
		risks = risks[:maxRiskFactors]
	}
	return risks
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func sanitize(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), " ", "_")
}

func humanize(s string) string {
	return strings.ReplaceAll(s, "_", " ")
}
