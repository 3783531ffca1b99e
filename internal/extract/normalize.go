package extract

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Normalizers are total functions: malformed input degrades to a zero
// or sentinel value, never to an error. Field-level extraction failures
// must not escalate to item-level failures.

var (
	decimalPattern     = regexp.MustCompile(`\d+(\.\d+)?`)
	digitGroupPattern  = regexp.MustCompile(`[\d,]+`)
	digitRunPattern    = regexp.MustCompile(`\d+`)
	starOutOfPattern   = regexp.MustCompile(`([1-5](?:\.\d)?) out of`)
	starBarePattern    = regexp.MustCompile(`[1-5](?:\.\d)?`)
	reviewTotalPattern = regexp.MustCompile(`([0-9,]+)\s+customer review(s)?`)
	asinPathPattern    = regexp.MustCompile(`/dp/([A-Z0-9]{10})`)
	reviewPathPattern  = regexp.MustCompile(`/product-reviews/([A-Z0-9]{10})/`)
)

// CleanRating extracts the first decimal or integer number from rating
// text ("4.6 out of 5 stars" -> "4.6"). Returns "" when none is found.
func CleanRating(text string) string {
	return decimalPattern.FindString(text)
}

// CleanReviewCount extracts the first digit group and strips thousands
// separators ("77,762 ratings" -> "77762"). Returns "" when none found.
func CleanReviewCount(text string) string {
	m := digitGroupPattern.FindString(text)
	if m == "" {
		return ""
	}
	return strings.ReplaceAll(m, ",", "")
}

// ParseHelpful parses helpful-vote text. "One person found this helpful"
// is the worded singular; otherwise the first digit run with separators
// stripped; anything else is 0.
func ParseHelpful(text string) int {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0
	}
	if strings.Contains(text, "One person") {
		return 1
	}
	m := digitRunPattern.FindString(strings.ReplaceAll(text, ",", ""))
	if m == "" {
		return 0
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0
	}
	return n
}

// reviewDateLayouts covers the formats Amazon renders review dates in.
var reviewDateLayouts = []string{
	"January 2, 2006",
	"2 January 2006",
	"January 2 2006",
	"Jan 2, 2006",
	"2006-01-02",
	"01/02/2006",
}

// ParseWriteDate normalizes review date text to YYYY-MM-DD. A leading
// "Reviewed in ... on " prefix is stripped first. Unparsable input is
// returned verbatim; consumers see the raw string rather than losing it.
func ParseWriteDate(text string) string {
	if text == "" {
		return ""
	}
	dateStr := strings.TrimSpace(text)
	if idx := strings.LastIndex(dateStr, "on "); idx >= 0 {
		dateStr = strings.TrimSpace(dateStr[idx+len("on "):])
	}
	for _, layout := range reviewDateLayouts {
		if dt, err := time.Parse(layout, dateStr); err == nil {
			return dt.Format("2006-01-02")
		}
	}
	return text
}

// ParseStar parses star-rating text into 1..5, preferring the
// "N out of" phrasing over a bare leading number. 0 means unparsable;
// the sentinel is stored, not treated as absence.
func ParseStar(text string) float64 {
	if text == "" {
		return 0.0
	}
	if m := starOutOfPattern.FindStringSubmatch(text); m != nil {
		v, _ := strconv.ParseFloat(m[1], 64)
		return v
	}
	if m := starBarePattern.FindString(text); m != "" {
		v, _ := strconv.ParseFloat(m, 64)
		return v
	}
	return 0.0
}

// ParseReviewTotal reads the "N customer reviews" banner above a review
// list. "No customer reviews" and unmatchable text both yield 0.
func ParseReviewTotal(text string) int {
	if strings.Contains(text, "No customer reviews") {
		return 0
	}
	m := reviewTotalPattern.FindStringSubmatch(text)
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(strings.ReplaceAll(m[1], ",", ""))
	if err != nil {
		return 0
	}
	return n
}

// FirstPriceToken keeps only the leading whitespace-delimited token of a
// matched price ("$129.99 with 13 percent savings" -> "$129.99").
func FirstPriceToken(text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// ASINFromURL pulls the ASIN out of a /dp/{ASIN} product path.
func ASINFromURL(url string) string {
	m := asinPathPattern.FindStringSubmatch(url)
	if m == nil {
		return ""
	}
	return m[1]
}

// ASINFromReviewURL pulls the ASIN out of a /product-reviews/{ASIN}/ path.
func ASINFromReviewURL(url string) string {
	m := reviewPathPattern.FindStringSubmatch(url)
	if m == nil {
		return ""
	}
	return m[1]
}

// StripInvisible removes the LRM/RLM marks Amazon embeds in attribute
// tables, then trims whitespace.
func StripInvisible(s string) string {
	s = strings.ReplaceAll(s, "‎", "")
	s = strings.ReplaceAll(s, "‏", "")
	return strings.TrimSpace(s)
}

// NormalizeSpace collapses internal whitespace runs to single spaces.
func NormalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// FieldKey normalizes an attribute-table header into an expand_info key
// ("Hard Disk Description" -> "hard_disk_description").
func FieldKey(header string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(header), " ", "_"))
}
