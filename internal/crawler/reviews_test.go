package crawler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/boardlab/amazon-board-crawler/internal/models"
)

const reviewPage = `<html><body>
<div data-hook="cr-filter-info-review-rating-count">4.8 out of 5 stars, 31,778 global ratings | 9,454 customer reviews</div>
<ul>
<li data-hook="review">
  <span class="a-profile-name">Alex R.</span>
  <a data-hook="review-title" href="/gp/customer-reviews/R1AAAA/ref=cm_cr?ASIN=B0CHILD001">
    <i class="a-icon-star"><span class="a-icon-alt">5.0 out of 5 stars</span></i>
    <span>Fast and tiny</span>
  </a>
  <i data-hook="review-star-rating"><span class="a-icon-alt">5.0 out of 5 stars</span></i>
  <span data-hook="review-date">Reviewed in the United States on January 15, 2024</span>
  <a data-hook="format-strip" href="/product-reviews/B0PARENT01/ref=cm_cr">Capacity: 1TB</a>
  <span data-hook="avp-badge">Verified Purchase</span>
  <span data-hook="review-body"><span>Transfers a 40GB folder in under a minute.</span></span>
  <span data-hook="helpful-vote-statement">23 people found this helpful</span>
</li>
<li data-hook="review">
  <span class="a-profile-name">Sam K.</span>
  <a data-hook="review-title" href="/gp/customer-reviews/R2BBBB/ref=cm_cr?ASIN=B0CHILD001">
    <span>Decent value</span>
  </a>
  <i data-hook="review-star-rating"><span class="a-icon-alt">4.0 out of 5 stars</span></i>
  <span data-hook="review-date">Reviewed in the United States on December 3, 2023</span>
  <span data-hook="review-body"><span>Does what it says.</span></span>
  <span data-hook="helpful-vote-statement">One person found this helpful</span>
</li>
</ul>
<div class="a-text-center"><ul class="a-pagination"><li class="a-last"><a href="/product-reviews/B0CHILD001/?pageNumber=2">Next page</a></li></ul></div>
</body></html>`

func TestParseReviewPage(t *testing.T) {
	reviews, total, err := ParseReviewPage(parseDoc(t, reviewPage), "B0CHILD001")
	require.NoError(t, err)
	assert.Equal(t, 9454, total)
	require.Len(t, reviews, 2)

	first := reviews[0]
	assert.Equal(t, "B0CHILD001", first.ASIN)
	assert.Equal(t, "B0PARENT01", first.GroupID, "format strip link carries the parent asin")
	assert.Equal(t, "Fast and tiny", first.Title)
	assert.Equal(t, "Transfers a 40GB folder in under a minute.", first.Content)
	assert.Equal(t, "Alex R.", first.WriterNm)
	assert.Equal(t, "2024-01-15", first.WriteDt)
	assert.Equal(t, 5.0, first.Star)
	assert.Equal(t, "Capacity: 1TB", first.Option)
	assert.True(t, first.IsVerified)
	assert.Equal(t, 23, first.Helpful)
	assert.Contains(t, first.ReviewURL, "/gp/customer-reviews/R1AAAA")

	second := reviews[1]
	assert.Equal(t, "B0CHILD001", second.GroupID, "group id stays the asin without a format strip")
	assert.Equal(t, 4.0, second.Star)
	assert.False(t, second.IsVerified)
	assert.Equal(t, 1, second.Helpful, "worded singular parses to one")
	assert.Equal(t, "2023-12-03", second.WriteDt)
	assert.Empty(t, second.Option)
}

func TestParseReviewPageEmpty(t *testing.T) {
	reviews, total, err := ParseReviewPage(parseDoc(t, `<html><body><p>no reviews</p></body></html>`), "B0CHILD001")
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, reviews)
}

func TestParseReviewPageMalformedBlock(t *testing.T) {
	page := `<html><body>
	<li data-hook="review"><i data-hook="review-star-rating"><span class="a-icon-alt">3.0 out of 5 stars</span></i></li>
	</body></html>`

	_, _, err := ParseReviewPage(parseDoc(t, page), "B0CHILD001")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "review block 0")
}

func TestReviewTitleSkipsStarText(t *testing.T) {
	// Older markup nests the star alt inside the title anchor; the title
	// chain must not surface it.
	page := `<html><body>
	<li data-hook="review">
	  <span class="a-profile-name">Jo</span>
	  <a data-hook="review-title" href="/gp/customer-reviews/R3CCCC">
	    <span class="a-icon-alt">4.0 out of 5 stars</span>
	    <span>Solid drive</span>
	  </a>
	  <span data-hook="review-body"><span>works</span></span>
	</li>
	</body></html>`

	reviews, _, err := ParseReviewPage(parseDoc(t, page), "B0CHILD001")
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	assert.Equal(t, "Solid drive", reviews[0].Title)
}

func TestEmptyFirstPageFailure(t *testing.T) {
	dogPage := parseDoc(t, `<html><body><img alt="Dogs of Amazon"/><p>Looking for something?</p></body></html>`)
	livePage := parseDoc(t, `<html><body><span id="productTitle">still for sale</span></body></html>`)

	tests := []struct {
		name   string
		status int
		doc    *html.Node
		want   models.FailureType
	}{
		{name: "probe returns 404", status: 404, doc: nil, want: models.FailureProductNoExist},
		{name: "dog page with 200", status: 200, doc: dogPage, want: models.FailureProductNoExist},
		{name: "live product without reviews", status: 200, doc: livePage, want: models.FailureNoReviews},
		{name: "probe failed entirely", status: 0, doc: nil, want: models.FailureNoReviews},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, emptyFirstPageFailure(tt.status, tt.doc))
		})
	}
}
