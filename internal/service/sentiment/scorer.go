package sentiment

import "strings"

// Word lists mirror the calibration used by the original feed tuning.
var positive = map[string]struct{}{
	"good": {}, "great": {}, "excellent": {}, "amazing": {},
	"awesome": {}, "love": {}, "perfect": {}, "best": {},
}

var negative = map[string]struct{}{
	"bad": {}, "terrible": {}, "awful": {}, "hate": {},
	"worst": {}, "horrible": {}, "disappointing": {},
}

// Scorer produces a lexicon-based sentiment score. It is stateless and
// safe for concurrent use.
type Scorer struct{}

func New() *Scorer { return &Scorer{} }

// Score returns (positives - negatives) / totalWords, clamped to [-1, 1].
// Empty or whitespace-only text scores 0.
func (s *Scorer) Score(text string) float64 {
	words := strings.Fields(strings.ToLower(text))
	if len(words) == 0 {
		return 0
	}

	var pos, neg int
	for _, w := range words {
		w = strings.Trim(w, ".,!?;:'\"()")
		if _, ok := positive[w]; ok {
			pos++
			continue
		}
		if _, ok := negative[w]; ok {
			neg++
		}
	}

	score := float64(pos-neg) / float64(len(words))
	return clamp(score, -1, 1)
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
