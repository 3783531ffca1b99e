package crawler

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/antchfx/htmlquery"
	"github.com/playwright-community/playwright-go"
	"golang.org/x/net/html"

	"github.com/boardlab/amazon-board-crawler/internal/browser"
	"github.com/boardlab/amazon-board-crawler/internal/extract"
	"github.com/boardlab/amazon-board-crawler/internal/models"
	"github.com/boardlab/amazon-board-crawler/internal/ratelimit"
	"github.com/boardlab/amazon-board-crawler/internal/selectors"
)

type ReviewCrawler struct {
	runner     *browser.Runner
	cookies    []browser.Cookie
	limiter    ratelimit.RateLimiter
	logger     *slog.Logger
	maxPages   int
	maxRetries int
}

func NewReviewCrawler(runner *browser.Runner, cookies []browser.Cookie, limiter ratelimit.RateLimiter, maxPages int) *ReviewCrawler {
	if maxPages <= 0 {
		maxPages = 10
	}
	return &ReviewCrawler{
		runner:     runner,
		cookies:    cookies,
		limiter:    limiter,
		logger:     slog.Default().With("component", "review_crawler"),
		maxPages:   maxPages,
		maxRetries: 3,
	}
}

// Crawl walks the review pages of one ASIN from newest to oldest. The
// result always has the ASIN set; a non-nil failure record explains an
// empty result. Reviews are all-or-nothing per ASIN: one bad block
// discards the partial list.
func (rc *ReviewCrawler) Crawl(ctx context.Context, asin string) (models.ReviewResult, *models.FailureRecord) {
	result := models.ReviewResult{ASIN: asin}

	browserCtx, err := rc.runner.NewContext(rc.cookies)
	if err != nil {
		return result, rc.fail(asin, err.Error(), models.FailureOther)
	}
	defer browserCtx.Close()

	page, err := rc.runner.NewPage(browserCtx)
	if err != nil {
		return result, rc.fail(asin, err.Error(), models.FailureOther)
	}

	var reviews []models.ReviewRecord
	totalCount := 0

	for pageNum := 1; pageNum <= rc.maxPages; pageNum++ {
		if err := rc.limiter.Wait(ctx); err != nil {
			return result, rc.fail(asin, err.Error(), models.FailureOther)
		}

		url := ReviewsURL(asin, pageNum)
		if err := rc.runner.Navigate(page, url, rc.maxRetries); err != nil {
			return result, rc.fail(asin, err.Error(), models.FailureCrawlingError)
		}

		content, err := page.Content()
		if err != nil {
			return result, rc.fail(asin, err.Error(), models.FailureCrawlingError)
		}

		doc, err := htmlquery.Parse(strings.NewReader(content))
		if err != nil {
			return result, rc.fail(asin, err.Error(), models.FailureCrawlingError)
		}

		if err := CheckPage(doc); err != nil {
			reportOutcome(rc.limiter, err)
			return result, rc.fail(asin, err.Error(), models.FailureCrawlingError)
		}
		reportOutcome(rc.limiter, nil)

		pageReviews, pageTotal, err := ParseReviewPage(doc, asin)
		if err != nil {
			// One unreadable block poisons the whole ASIN so a rerun
			// starts clean instead of half-written.
			return result, rc.fail(asin, err.Error(), models.FailureCrawlingError)
		}
		if pageTotal > 0 {
			totalCount = pageTotal
		}

		if len(pageReviews) == 0 {
			if pageNum == 1 {
				// Nothing on the first page: distinguish a dead product
				// from a live one with no reviews.
				return result, rc.classifyEmpty(page, asin)
			}
			break
		}

		reviews = append(reviews, pageReviews...)
		rc.logger.Debug("crawled review page", "asin", asin, "page", pageNum, "reviews", len(pageReviews))

		if extract.FirstNode(doc, selectors.ReviewNextPage) == nil {
			break
		}
	}

	result.Reviews = reviews
	result.CrawlReviewCnt = len(reviews)
	if totalCount == 0 {
		totalCount = len(reviews)
	}
	for i := range result.Reviews {
		result.Reviews[i].ReviewCnt = totalCount
	}

	rc.logger.Info("crawled reviews", "asin", asin, "count", len(reviews), "total_on_site", totalCount)
	return result, nil
}

// classifyEmpty probes the product page to decide why page one had no
// reviews: a 404 means the product is gone, anything else means it
// simply has none.
func (rc *ReviewCrawler) classifyEmpty(page playwright.Page, asin string) *models.FailureRecord {
	var (
		status int
		doc    *html.Node
	)
	resp, err := page.Goto(ProductURL(asin), playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
	})
	if err == nil {
		if resp != nil {
			status = resp.Status()
		}
		if content, cerr := page.Content(); cerr == nil {
			doc, _ = htmlquery.Parse(strings.NewReader(content))
		}
	}

	if emptyFirstPageFailure(status, doc) == models.FailureProductNoExist {
		return rc.fail(asin, models.MsgNoProduct, models.FailureProductNoExist)
	}
	return rc.fail(asin, models.MsgNoReviews, models.FailureNoReviews)
}

// emptyFirstPageFailure maps the product-page probe outcome to a failure
// type. The product is gone when the probe returns 404 or serves the dog
// page; a live product with an empty first page just has no reviews.
func emptyFirstPageFailure(status int, doc *html.Node) models.FailureType {
	if status == 404 {
		return models.FailureProductNoExist
	}
	if doc != nil && CheckPage(doc) == ErrPageNotFound {
		return models.FailureProductNoExist
	}
	return models.FailureNoReviews
}

func (rc *ReviewCrawler) fail(asin, msg string, ft models.FailureType) *models.FailureRecord {
	rc.logger.Warn("review crawl failed", "asin", asin, "failure_type", ft, "error", msg)
	rec := models.NewFailureRecord(asin, msg, ft)
	return &rec
}

// ParseReviewPage extracts every review block on a parsed review page
// plus the site-reported total. An individual block that yields no
// usable fields is an error, not a skip.
func ParseReviewPage(doc *html.Node, asin string) ([]models.ReviewRecord, int, error) {
	total := extract.ParseReviewTotal(extract.First(doc, selectors.ReviewTotalCount))

	blocks := extract.AllNodes(doc, selectors.ReviewBlock)
	reviews := make([]models.ReviewRecord, 0, len(blocks))
	now := time.Now()

	for i, block := range blocks {
		review, err := parseReviewBlock(block, asin, now)
		if err != nil {
			return nil, total, fmt.Errorf("review block %d: %w", i, err)
		}
		reviews = append(reviews, review)
	}

	return reviews, total, nil
}

func parseReviewBlock(block *html.Node, asin string, now time.Time) (models.ReviewRecord, error) {
	review := models.ReviewRecord{
		ASIN:          asin,
		GroupID:       asin,
		CrawlDate:     now.Format("2006-01-02"),
		CrawlDatetime: now.Format("2006-01-02 15:04:05"),
	}

	review.Title = extract.NormalizeSpace(extract.FirstWith(block, selectors.ReviewTitle, notStarText))
	review.Content = extract.NormalizeSpace(extract.First(block, selectors.ReviewContent))
	review.WriterNm = extract.First(block, selectors.ReviewWriter)
	review.WriteDt = extract.ParseWriteDate(extract.First(block, selectors.ReviewDate))
	review.Star = extract.ParseStar(extract.First(block, selectors.ReviewStar))
	review.Helpful = extract.ParseHelpful(extract.First(block, selectors.ReviewHelpful))
	review.IsVerified = extract.FirstNode(block, selectors.ReviewVerified) != nil
	review.Option = reviewOption(block)

	if href := extract.FirstAttr(block, selectors.ReviewTitleLink, "href"); href != "" {
		review.ReviewURL = absoluteURL(href)
	}
	if gid := groupIDFromFormatStrip(block); gid != "" {
		review.GroupID = gid
	}

	if review.Title == "" && review.Content == "" && review.WriterNm == "" {
		return review, fmt.Errorf("no extractable fields")
	}

	return review, nil
}

// reviewOption joins the variant fragments of the format strip, dropping
// navigation chrome and duplicates.
func reviewOption(block *html.Node) string {
	var parts []string
	seen := make(map[string]struct{})
	for _, node := range extract.AllNodes(block, selectors.ReviewOption) {
		text := extract.NormalizeSpace(extract.Text(node))
		if text == "" || isExcludedOption(text) {
			continue
		}
		if _, dup := seen[text]; dup {
			continue
		}
		seen[text] = struct{}{}
		parts = append(parts, text)
	}
	return strings.Join(parts, ", ")
}

// groupIDFromFormatStrip mines the format-strip anchors for the parent
// ASIN their hrefs point at. Variant reviews link back to the parent's
// review listing, which groups siblings without another page fetch.
func groupIDFromFormatStrip(block *html.Node) string {
	for _, node := range extract.AllNodes(block, selectors.ReviewOption) {
		text := extract.NormalizeSpace(extract.Text(node))
		if containsAnyKeyword(text, selectors.GroupIDExcludeKeywords) {
			continue
		}
		href := extract.Attr(node, "href")
		if gid := extract.ASINFromReviewURL(href); gid != "" {
			return gid
		}
		if gid := extract.ASINFromURL(href); gid != "" {
			return gid
		}
	}
	return ""
}

func containsAnyKeyword(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

func isExcludedOption(text string) bool {
	return containsAnyKeyword(text, selectors.OptionExcludeKeywords)
}

// notStarText rejects rating strings the title chains sometimes catch.
func notStarText(s string) bool {
	return !strings.Contains(s, "out of 5 stars")
}

func absoluteURL(href string) string {
	if strings.HasPrefix(href, "http") {
		return href
	}
	return baseURL + href
}
