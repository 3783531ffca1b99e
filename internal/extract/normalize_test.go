package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanRating(t *testing.T) {
	assert.Equal(t, "4.6", CleanRating("4.6 out of 5 stars"))
	assert.Equal(t, "5", CleanRating("5 out of 5 stars"))
	assert.Equal(t, "", CleanRating("no rating yet"))
	assert.Equal(t, "", CleanRating(""))
}

func TestCleanReviewCount(t *testing.T) {
	assert.Equal(t, "77762", CleanReviewCount("77,762 ratings"))
	assert.Equal(t, "312", CleanReviewCount("312 ratings"))
	assert.Equal(t, "", CleanReviewCount("ratings"))
}

func TestParseHelpful(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"One person found this helpful", 1},
		{"23 people found this helpful", 23},
		{"1,204 people found this helpful", 1204},
		{"", 0},
		{"Helpful", 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseHelpful(tt.text), tt.text)
	}
}

func TestParseWriteDate(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"Reviewed in the United States on January 15, 2024", "2024-01-15"},
		{"Reviewed in Germany on 3 December 2023", "2023-12-03"},
		{"January 2, 2006", "2006-01-02"},
		{"2024-06-30", "2024-06-30"},
		// Unparsable dates pass through untouched.
		{"Reviewed on yesterday", "Reviewed on yesterday"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseWriteDate(tt.text), tt.text)
	}
}

func TestParseStar(t *testing.T) {
	assert.Equal(t, 4.0, ParseStar("4.0 out of 5 stars"))
	assert.Equal(t, 3.5, ParseStar("3.5 out of 5 stars"))
	// "out of" phrasing wins over a leading bare number.
	assert.Equal(t, 5.0, ParseStar("Top 5 out of"))
	assert.Equal(t, 4.0, ParseStar("4 stars"))
	assert.Equal(t, 0.0, ParseStar("unrated"))
	assert.Equal(t, 0.0, ParseStar(""))
}

func TestParseReviewTotal(t *testing.T) {
	assert.Equal(t, 9200, ParseReviewTotal("31,778 global ratings | 9,200 customer reviews"))
	assert.Equal(t, 1, ParseReviewTotal("1 customer review"))
	assert.Equal(t, 0, ParseReviewTotal("No customer reviews"))
	assert.Equal(t, 0, ParseReviewTotal("reviews"))
}

func TestFirstPriceToken(t *testing.T) {
	assert.Equal(t, "$129.99", FirstPriceToken("$129.99 with 13 percent savings"))
	assert.Equal(t, "$59.00", FirstPriceToken("  $59.00  "))
	assert.Equal(t, "", FirstPriceToken(""))
}

func TestASINFromURL(t *testing.T) {
	assert.Equal(t, "B0C1KQ4FJ1", ASINFromURL("https://www.amazon.com/dp/B0C1KQ4FJ1?th=1"))
	assert.Equal(t, "B0C1KQ4FJ1", ASINFromURL("/Some-Product/dp/B0C1KQ4FJ1/ref=sr_1_3"))
	assert.Equal(t, "", ASINFromURL("https://www.amazon.com/gp/help"))
}

func TestASINFromReviewURL(t *testing.T) {
	assert.Equal(t, "B0C1KQ4FJ1", ASINFromReviewURL("/product-reviews/B0C1KQ4FJ1/ref=cm_cr"))
	assert.Equal(t, "", ASINFromReviewURL("/dp/B0C1KQ4FJ1"))
}

func TestStripInvisible(t *testing.T) {
	assert.Equal(t, "1TB", StripInvisible("‎ 1TB ‏"))
	assert.Equal(t, "plain", StripInvisible("plain"))
}

func TestNormalizeSpace(t *testing.T) {
	assert.Equal(t, "a b c", NormalizeSpace("  a \n b\t c "))
}

func TestFieldKey(t *testing.T) {
	assert.Equal(t, "hard_disk_description", FieldKey(" Hard Disk Description "))
	assert.Equal(t, "best_sellers_rank", FieldKey("Best Sellers Rank"))
}
