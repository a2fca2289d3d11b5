package resolver

import "strings"

// searchPrefixes are understood by both Lavalink and yt-dlp; queries
// already carrying one pass through untouched.
var searchPrefixes = []string{
	"ytsearch:", "ytsearch1:", "ytsearch5:", "ytsearch10:", "ytdsearch:",
	"spsearch:", "scsearch:",
}

// NormalizeQuery trims the query and prefixes bare search terms with
// "ytsearch:" so both backends receive the same identifier. URLs and
// prefixed queries pass through unchanged. Empty means the query was blank.
func NormalizeQuery(q string) string {
	q = strings.TrimSpace(q)
	if q == "" {
		return ""
	}
	lower := strings.ToLower(q)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return q
	}
	for _, p := range searchPrefixes {
		if strings.HasPrefix(lower, p) {
			return q
		}
	}
	return "ytsearch:" + q
}
