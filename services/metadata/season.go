package metadata

import (
	"regexp"
	"strconv"
	"strings"
)

// Season markers are stripped from titles before a TMDB search. Patterns are
// tried in order; the first match wins.
var seasonPatterns = []*regexp.Regexp{
	regexp.MustCompile(`第([0-9一二三四五六七八九十]+)[季部]`),
	regexp.MustCompile(`(?i)\s*Season\s*(\d+)`),
	regexp.MustCompile(`(?i)\bS(\d+)\b`),
}

var cjkNumerals = map[rune]int{
	'一': 1, '二': 2, '三': 3, '四': 4, '五': 5,
	'六': 6, '七': 7, '八': 8, '九': 9, '十': 10,
}

// splitSeasonTitle strips a season marker from the title and returns the
// cleaned title plus the season number recovered from the marker (0 when the
// marker carried no usable number or no marker matched).
func splitSeasonTitle(title string) (string, int) {
	for _, pattern := range seasonPatterns {
		match := pattern.FindStringSubmatchIndex(title)
		if match == nil {
			continue
		}
		captured := title[match[2]:match[3]]
		cleaned := strings.TrimSpace(title[:match[0]] + title[match[1]:])
		return cleaned, parseSeasonNumber(captured)
	}
	return strings.TrimSpace(title), 0
}

// parseSeasonNumber interprets the captured marker group: a CJK numeral 一–十
// or a run of ASCII digits.
func parseSeasonNumber(s string) int {
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	runes := []rune(s)
	if len(runes) == 1 {
		if n, ok := cjkNumerals[runes[0]]; ok {
			return n
		}
	}
	return 0
}
