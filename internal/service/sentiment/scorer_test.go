package sentiment

import "testing"

func TestScore(t *testing.T) {
	s := New()

	tests := []struct {
		name string
		text string
		want float64
	}{
		{"empty", "", 0},
		{"whitespace only", "   \t\n", 0},
		{"neutral text", "the quick brown fox", 0},
		{"single positive", "great product", 0.5},
		{"single negative", "terrible product", -0.5},
		{"mixed cancels", "great but terrible", 0},
		{"case insensitive", "GREAT Product", 0.5},
		{"punctuation stripped", "this product is great!", 0.25},
		{"all positive clamps at one", "good great", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.Score(tt.text); got != tt.want {
				t.Errorf("Score(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestScoreDeterministic(t *testing.T) {
	s := New()
	text := "amazing launch but disappointing battery life overall"
	first := s.Score(text)
	for i := 0; i < 10; i++ {
		if got := s.Score(text); got != first {
			t.Fatalf("score changed between calls: %v then %v", first, got)
		}
	}
	if first < -1 || first > 1 {
		t.Fatalf("score %v out of [-1,1]", first)
	}
}
