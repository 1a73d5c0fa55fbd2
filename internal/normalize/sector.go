package normalize

import "strings"

// sectorBuckets are checked in declaration order; the first bucket with
// a matching keyword wins, so classification is stable run to run.
var sectorBuckets = []struct {
	sector string
	words  []string
}{
	{"Technology", []string{"technology", "tech", "programming", "gadgets", "artificial", "software", "hardware", "startups"}},
	{"Business", []string{"business", "entrepreneur", "smallbusiness", "marketing", "sales"}},
	{"Healthcare", []string{"health", "medicine", "fitness", "nutrition", "medical"}},
	{"Finance", []string{"finance", "investing", "stocks", "cryptocurrency", "wallstreetbets", "economy"}},
}

// classifySector maps a community or topic name to a sector label.
// Unrecognized names fall back to "General".
func classifySector(name string) string {
	n := strings.ToLower(name)
	for _, bucket := range sectorBuckets {
		for _, w := range bucket.words {
			if strings.Contains(n, w) {
				return bucket.sector
			}
		}
	}
	return "General"
}
