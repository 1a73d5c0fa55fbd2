package text

import (
	"regexp"
	"strings"
)

var stopwords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {},
	"in": {}, "on": {}, "at": {}, "to": {}, "for": {}, "of": {},
	"with": {}, "by": {}, "is": {}, "are": {}, "was": {}, "were": {},
}

var (
	hashtagRe = regexp.MustCompile(`#(\w+)`)
	mentionRe = regexp.MustCompile(`@(\w+)`)
)

const maxKeywords = 5

// Keywords extracts up to five lowercase terms longer than three
// characters, skipping stopwords. Order follows first appearance.
func Keywords(text string) []string {
	words := strings.Fields(strings.ToLower(text))
	out := make([]string, 0, maxKeywords)
	seen := make(map[string]struct{})
	for _, w := range words {
		w = strings.Trim(w, ".,!?;:'\"()#@")
		if len(w) <= 3 {
			continue
		}
		if _, stop := stopwords[w]; stop {
			continue
		}
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
		if len(out) == maxKeywords {
			break
		}
	}
	return out
}

// Hashtags returns the tags in text without the leading '#'.
func Hashtags(text string) []string {
	return captures(hashtagRe, text)
}

// Mentions returns the handles in text without the leading '@'.
func Mentions(text string) []string {
	return captures(mentionRe, text)
}

func captures(re *regexp.Regexp, text string) []string {
	matches := re.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m[1])
	}
	return out
}

// Truncate shortens s to max characters, appending "..." when cut.
func Truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
