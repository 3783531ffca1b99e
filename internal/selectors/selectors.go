// Package selectors holds the static strategy tables and keyword lists
// the crawlers run on. Everything here is data consumed read-only by the
// extraction pipeline; tuning a chain means editing a list, not code.
package selectors

import (
	"github.com/boardlab/amazon-board-crawler/internal/extract"
)

// Product page chains.
var (
	ProductTitle = []extract.Strategy{
		extract.Css("#productTitle"),
		extract.Xpath(`//span[@id="productTitle"]`),
		extract.Css("#titleSection h1"),
		extract.Css("#title_feature_div span.a-size-large"),
		extract.Css("#centerCol h1"),
	}

	Price = []extract.Strategy{
		extract.Css("#corePrice_feature_div span.a-price > span.a-offscreen"),
		extract.Css("span.a-price.apexPriceToPay span.a-offscreen"),
		extract.Css("#priceblock_dealprice"),
		extract.Css("#priceblock_ourprice"),
		extract.Css("span.a-price > span.a-offscreen"),
		extract.Css("span.a-price-whole"),
	}

	ListPrice = []extract.Strategy{
		extract.Css(`span.a-price.a-text-price[data-a-strike="true"] span.a-offscreen`),
		extract.Css("span.basisPrice span.a-offscreen"),
		extract.Css("#listPrice"),
		extract.Xpath(`//span[contains(@class,"a-text-price") and not(contains(@class,"apexPriceToPay"))]/span[@class="a-offscreen"]`),
	}

	Discount = []extract.Strategy{
		extract.Css("span.savingsPercentage"),
		extract.Css("td.priceBlockSavingsString"),
	}

	Rating = []extract.Strategy{
		extract.Css("#acrPopover span.a-icon-alt"),
		extract.Css(`span[data-hook="rating-out-of-text"]`),
		extract.Css("i.a-icon-star span.a-icon-alt"),
	}

	ReviewCount = []extract.Strategy{
		extract.Css("#acrCustomerReviewText"),
		extract.Css(`span[data-hook="total-review-count"]`),
		extract.Xpath(`//a[@id="acrCustomerReviewLink"]/span`),
	}

	Breadcrumb = []extract.Strategy{
		extract.Xpath(`//div[@id="wayfinding-breadcrumbs_feature_div"]//ul/li[last()]/span/a`),
		extract.Css("#wayfinding-breadcrumbs_feature_div ul li:last-child span a"),
	}

	Style = []extract.Strategy{
		extract.Css("#inline-twister-expanded-dimension-text-style_name"),
	}

	LandingImage = []extract.Strategy{
		extract.Css("#landingImage"),
	}

	// Attribute tables feeding expand_info, in source order: the
	// key/value product-detail table, the detail bullet list, then the
	// compact overview table near the buy box.
	DetailTableRows = []extract.Strategy{
		extract.Xpath(`//table[contains(@class,"a-keyvalue") and contains(@class,"prodDetTable")]//tr`),
	}
	DetailBulletItems = []extract.Strategy{
		extract.Xpath(`//div[@id="detailBullets_feature_div"]//ul/li`),
	}
	OverviewTableRows = []extract.Strategy{
		extract.Xpath(`//table[contains(@class,"a-normal") and contains(@class,"a-spacing-micro")]//tr`),
		extract.Xpath(`//div[@id="productOverview_feature_div"]//table//tr`),
	}
)

// Attribute headers that never land in expand_info.
var ExcludedHeaders = map[string]struct{}{
	"Customer Reviews": {},
	"ASIN":             {},
}

// Review page chains.
var (
	ReviewBlock = []extract.Strategy{
		extract.Css(`li[data-hook="review"]`),
		extract.Css(`div[data-hook="review"]`),
	}

	ReviewTitle = []extract.Strategy{
		// Translated reviews carry the original text in its own span.
		extract.Css(`a[data-hook="review-title"] span.cr-original-review-content`),
		extract.Css(`span[data-hook="review-title"] span.cr-original-review-content`),
		extract.Css(`a[data-hook="review-title"] > span:not(.a-icon-alt):not(.a-letter-space)`),
		extract.Css(`span[data-hook="review-title"] > span:not(.a-icon-alt):not(.a-letter-space)`),
		extract.Css(`a[data-hook="review-title"] > span`),
		extract.Css(`span[data-hook="review-title"] > span`),
	}

	ReviewTitleLink = []extract.Strategy{
		extract.Css(`a[data-hook="review-title"]`),
		extract.Css(`span[data-hook="review-title"]`),
	}

	ReviewContent = []extract.Strategy{
		extract.Css(`span[data-hook="review-body"] span.cr-original-review-content`),
		extract.Css(`span[data-hook="review-body"] span`),
		extract.Css(`span[data-hook="review-body"]`),
		extract.Css(`div[data-hook="review-collapsed"] span`),
		extract.Css("div.review-data span"),
	}

	ReviewStar = []extract.Strategy{
		extract.Css(`i[data-hook="review-star-rating"] span.a-icon-alt`),
		extract.Css(`i[data-hook="cmps-review-star-rating"] span.a-icon-alt`),
		extract.Css("i.a-icon-star span.a-icon-alt"),
		extract.Css("i.review-rating span.a-icon-alt"),
		extract.Css(`i[class*="a-star-"] span.a-icon-alt`),
		extract.Css("span.a-icon-alt"),
		extract.Xpath(`.//i[contains(@class,"a-icon-star")]/span[contains(@class,"a-icon-alt")]`),
	}

	ReviewTotalCount = []extract.Strategy{
		extract.Css(`div[data-hook="cr-filter-info-review-rating-count"]`),
		extract.Xpath(`//div[contains(@data-hook,"cr-filter-info-review-rating-count")]`),
	}

	ReviewWriter = []extract.Strategy{
		extract.Css("span.a-profile-name"),
	}

	ReviewDate = []extract.Strategy{
		extract.Css(`span[data-hook="review-date"]`),
		extract.Xpath(`.//span[@data-hook="review-date"]`),
	}

	ReviewOption = []extract.Strategy{
		extract.Xpath(`.//a[@data-hook="format-strip"]`),
		extract.Xpath(`.//div[contains(@class,"review-format-strip")]/a`),
	}

	ReviewVerified = []extract.Strategy{
		extract.Xpath(`.//span[@data-hook="avp-badge" and contains(text(),"Verified Purchase")]`),
		extract.Xpath(`.//a[@aria-label and contains(@aria-label,"Verified Purchase")]`),
		extract.Xpath(`.//span[contains(@class,"a-color-state") and contains(text(),"Verified Purchase")]`),
	}

	ReviewHelpful = []extract.Strategy{
		extract.Css(`span[data-hook="helpful-vote-statement"]`),
		extract.Xpath(`.//span[contains(@data-hook,"helpful-vote-statement")]`),
	}

	ReviewNextPage = []extract.Strategy{
		extract.Xpath(`//a[contains(text(),"Next page")]`),
		extract.Xpath(`//div[@class="a-text-center"]/ul[@class="a-pagination"]/li[@class="a-last"]/a`),
		extract.Xpath(`//ul[@class="a-pagination"]/li[contains(@class,"a-last")]/a`),
	}
)

// Format-strip fragments that are navigation chrome, not variant text.
var OptionExcludeKeywords = []string{
	"Verified Purchase",
	"What's this?",
}

// Fragments excluded when mining the format-strip links for a group id.
var GroupIDExcludeKeywords = []string{
	"Verified Purchase",
	"Amazon Vine Customer Review of Free Product",
	"What's this?",
}

// Bestseller listing chains, all relative to one grid card.
var (
	BestsellerCard = []extract.Strategy{
		extract.Xpath(`//div[@id="gridItemRoot"]`),
	}

	BestsellerRank = []extract.Strategy{
		extract.Css("span.zg-bdg-text"),
		extract.Xpath(`.//span[contains(@class,"zg-bdg-text")]`),
		extract.Xpath(`.//span[contains(@class,"zg-badge-text")]`),
	}

	BestsellerTitle = []extract.Strategy{
		extract.Xpath(`.//div[contains(@class,"p13n-sc-css-line-clamp-3")]`),
		extract.Xpath(`.//h3`),
		extract.Xpath(`.//a[contains(@class,"a-link-normal")]//span`),
		extract.Xpath(`.//span[contains(@class,"a-size-mini")]`),
	}

	BestsellerReviews = []extract.Strategy{
		extract.Xpath(`.//a[contains(@href,"product-reviews")]/span`),
		extract.Xpath(`.//span[contains(@class,"a-size-small")]`),
		extract.Xpath(`.//a[contains(@href,"product-reviews")]`),
	}

	BestsellerPrice = []extract.Strategy{
		extract.Xpath(`.//span[contains(@class,"p13n-sc-price")]`),
		extract.Xpath(`.//span[@class="a-price-whole"]`),
		extract.Xpath(`.//span[contains(@class,"a-price")]//span`),
		extract.Xpath(`.//span[contains(@class,"price")]`),
	}

	BestsellerLink = []extract.Strategy{
		extract.Xpath(`.//a[contains(@class,"a-link-normal")]`),
		extract.Xpath(`.//a[@role="link"]`),
		extract.Xpath(`.//a`),
	}

	BestsellerNextPage = []extract.Strategy{
		extract.Xpath(`//li[@class="a-last"]/a`),
	}
)

// Listing URL category code -> board name.
var URLBoardMap = map[string]string{
	"3015429011": "BEST_External SSD",
	"1292116011": "BEST_Internal SSD",
	"3151491":    "BEST_Flash Drive",
	"3015433011": "BEST_Micro SD",
	"1197396":    "BEST_SD",
}

// Default bestseller listing URLs, one per board category.
var BestsellerURLs = []string{
	"https://www.amazon.com/Best-Sellers-Electronics-External-Solid-State-Drives/zgbs/electronics/3015429011",
	"https://www.amazon.com/Best-Sellers-Computers-Accessories-Internal-Solid-State-Drives/zgbs/pc/1292116011",
	"https://www.amazon.com/Best-Sellers-Computers-Accessories-USB-Flash-Drives/zgbs/pc/3151491",
	"https://www.amazon.com/gp/bestsellers/pc/3015433011",
	"https://www.amazon.com/Best-Sellers-Computers-Accessories-SecureDigital-Memory-Cards/zgbs/pc/1197396",
}
