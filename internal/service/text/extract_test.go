package text

import (
	"reflect"
	"strings"
	"testing"
)

func TestKeywords(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"empty", "", []string{}},
		{"stopwords and short words dropped", "the cat is on a mat", []string{}},
		{"basic extraction", "wireless earbuds with noise cancellation", []string{"wireless", "earbuds", "noise", "cancellation"}},
		{"lowercased", "Wireless EARBUDS", []string{"wireless", "earbuds"}},
		{"capped at five", "alpha bravo charlie delta echoes foxtrot golfing", []string{"alpha", "bravo", "charlie", "delta", "echoes"}},
		{"duplicates collapsed", "solar solar solar panels", []string{"solar", "panels"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Keywords(tt.text)
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Keywords(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestHashtagsAndMentions(t *testing.T) {
	text := "Big move by @elonmusk on #AI and #robotics, cc @OpenAI"

	if got, want := Hashtags(text), []string{"AI", "robotics"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Hashtags = %v, want %v", got, want)
	}
	if got, want := Mentions(text), []string{"elonmusk", "OpenAI"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Mentions = %v, want %v", got, want)
	}
	if got := Hashtags("no tags here"); got != nil {
		t.Errorf("Hashtags on plain text = %v, want nil", got)
	}
}

func TestTruncate(t *testing.T) {
	long := strings.Repeat("x", 250)
	got := Truncate(long, 200)
	if len(got) != 203 || !strings.HasSuffix(got, "...") {
		t.Errorf("Truncate length = %d, suffix ok = %v", len(got), strings.HasSuffix(got, "..."))
	}
	if got := Truncate("short", 200); got != "short" {
		t.Errorf("Truncate short = %q", got)
	}
}
