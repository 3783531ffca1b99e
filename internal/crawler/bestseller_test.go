package crawler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const bestsellerPage = `<html><body>
<div id="gridItemRoot">
  <span class="zg-bdg-text">#1</span>
  <a class="a-link-normal" href="/SAMSUNG-Portable-SSD-1TB/dp/B0CHILD001/ref=zg_bs"></a>
  <div class="p13n-sc-css-line-clamp-3">SAMSUNG T7 Portable SSD 1TB</div>
  <a href="/product-reviews/B0CHILD001"><span>31,778</span></a>
  <span class="p13n-sc-price">$89.99</span>
</div>
<div id="gridItemRoot">
  <span class="zg-bdg-text">#2</span>
  <div class="p13n-sc-css-line-clamp-3">Crucial X9 2TB</div>
</div>
<li class="a-last"><a href="/gp/bestsellers/pc/3015429011?pg=2">Next</a></li>
</body></html>`

func TestParseBestsellerPage(t *testing.T) {
	entries := ParseBestsellerPage(parseDoc(t, bestsellerPage), "BEST_External SSD")
	require.Len(t, entries, 2)

	first := entries[0]
	assert.Equal(t, "#1", first.Ranking)
	assert.Equal(t, "SAMSUNG T7 Portable SSD 1TB", first.ProductName)
	assert.Equal(t, "$89.99", first.PriceAfter)
	assert.Equal(t, "$89.99", first.PriceBefore, "single listed price fills both columns")
	assert.Equal(t, "31778", first.ReviewCnt)
	assert.Equal(t, "B0CHILD001", first.ASIN)
	assert.Equal(t, "BEST_External SSD", first.BoardName)

	// sparse card keeps its slot with fallbacks
	second := entries[1]
	assert.Equal(t, "#2", second.Ranking)
	assert.Equal(t, "Crucial X9 2TB", second.ProductName)
	assert.Equal(t, ValueSentinel, second.PriceAfter)
	assert.Equal(t, ValueSentinel, second.PriceBefore)
	assert.Equal(t, "0", second.ReviewCnt)
	assert.Equal(t, ValueSentinel, second.ASIN)
}

func TestParseBestsellerPagePositionalFallbacks(t *testing.T) {
	// Two cards with no readable fields at all.
	page := `<html><body>
<div id="gridItemRoot"><div class="junk"></div></div>
<div id="gridItemRoot"><div class="junk"></div></div>
</body></html>`

	entries := ParseBestsellerPage(parseDoc(t, page), "BEST_SD")
	require.Len(t, entries, 2)

	assert.Equal(t, "#1", entries[0].Ranking)
	assert.Equal(t, "Product_1", entries[0].ProductName)
	assert.Equal(t, "#2", entries[1].Ranking)
	assert.Equal(t, "Product_2", entries[1].ProductName)
	assert.Equal(t, "0", entries[0].ReviewCnt)
	assert.Equal(t, ValueSentinel, entries[0].PriceAfter)
	assert.Equal(t, ValueSentinel, entries[0].ASIN)
}

func TestParseBestsellerPageNoCards(t *testing.T) {
	entries := ParseBestsellerPage(parseDoc(t, `<html><body></body></html>`), "BEST_SD")
	assert.Empty(t, entries)
}

func TestBoardNameForURL(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{url: "https://www.amazon.com/Best-Sellers/zgbs/electronics/3015429011", want: "BEST_External SSD"},
		{url: "https://www.amazon.com/Best-Sellers/zgbs/pc/1292116011", want: "BEST_Internal SSD"},
		{url: "https://www.amazon.com/gp/bestsellers/pc/3015433011", want: "BEST_Micro SD"},
		{url: "https://www.amazon.com/zgbs/pc/3151491", want: "BEST_Flash Drive"},
		{url: "https://www.amazon.com/zgbs/pc/1197396", want: "BEST_SD"},
		{url: "https://www.amazon.com/zgbs/pc/999999999", want: ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, BoardNameForURL(tt.url), tt.url)
	}
}
