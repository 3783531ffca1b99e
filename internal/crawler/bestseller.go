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

// ValueSentinel is stored when a card's price or ASIN cannot be read.
// Cards are emitted regardless so ranking rows stay contiguous; ranking
// and product name fall back to the card's position on the page.
const ValueSentinel = "null"

type BestsellerCrawler struct {
	runner     *browser.Runner
	cookies    []browser.Cookie
	limiter    ratelimit.RateLimiter
	logger     *slog.Logger
	maxRetries int
}

func NewBestsellerCrawler(runner *browser.Runner, cookies []browser.Cookie, limiter ratelimit.RateLimiter) *BestsellerCrawler {
	return &BestsellerCrawler{
		runner:     runner,
		cookies:    cookies,
		limiter:    limiter,
		logger:     slog.Default().With("component", "bestseller_crawler"),
		maxRetries: 3,
	}
}

// CrawlBoard scrapes one bestseller listing, following pagination until
// the next-page link runs out. The board name comes from the category
// code in the URL.
func (bc *BestsellerCrawler) CrawlBoard(ctx context.Context, url string) ([]models.BestsellerEntry, error) {
	boardName := BoardNameForURL(url)
	if boardName == "" {
		return nil, fmt.Errorf("no board mapping for url %s", url)
	}

	bc.logger.Info("crawling bestseller board", "board", boardName, "url", url)

	browserCtx, err := bc.runner.NewContext(bc.cookies)
	if err != nil {
		return nil, fmt.Errorf("failed to create context: %w", err)
	}
	defer browserCtx.Close()

	page, err := bc.runner.NewPage(browserCtx)
	if err != nil {
		return nil, fmt.Errorf("failed to create page: %w", err)
	}

	var entries []models.BestsellerEntry
	pageURL := url

	for pageURL != "" {
		if err := bc.limiter.Wait(ctx); err != nil {
			return entries, err
		}

		if err := bc.runner.Navigate(page, pageURL, bc.maxRetries); err != nil {
			return entries, fmt.Errorf("failed to navigate: %w", err)
		}

		// The grid lazy-loads below the fold; scroll it into existence.
		bc.scrollToBottom(page)

		content, err := page.Content()
		if err != nil {
			return entries, fmt.Errorf("failed to get page content: %w", err)
		}

		doc, err := htmlquery.Parse(strings.NewReader(content))
		if err != nil {
			return entries, fmt.Errorf("failed to parse page: %w", err)
		}

		if err := CheckPage(doc); err != nil {
			reportOutcome(bc.limiter, err)
			return entries, err
		}
		reportOutcome(bc.limiter, nil)

		pageEntries := ParseBestsellerPage(doc, boardName)
		entries = append(entries, pageEntries...)
		bc.logger.Debug("crawled bestseller page", "board", boardName, "cards", len(pageEntries))

		pageURL = ""
		if href := extract.FirstAttr(doc, selectors.BestsellerNextPage, "href"); href != "" {
			pageURL = absoluteURL(href)
		}
	}

	bc.logger.Info("crawled bestseller board", "board", boardName, "entries", len(entries))
	return entries, nil
}

func (bc *BestsellerCrawler) scrollToBottom(page playwright.Page) {
	for i := 0; i < 5; i++ {
		if _, err := page.Evaluate(`window.scrollBy(0, document.body.scrollHeight / 5)`); err != nil {
			return
		}
		page.WaitForTimeout(400)
	}
}

// ParseBestsellerPage extracts every grid card on a parsed listing page.
// Unreadable fields degrade to sentinels instead of dropping the card.
func ParseBestsellerPage(doc *html.Node, boardName string) []models.BestsellerEntry {
	now := time.Now()
	cards := extract.AllNodes(doc, selectors.BestsellerCard)
	entries := make([]models.BestsellerEntry, 0, len(cards))

	for i, card := range cards {
		pos := i + 1
		entry := models.BestsellerEntry{
			Ranking:       fmt.Sprintf("#%d", pos),
			ProductName:   fmt.Sprintf("Product_%d", pos),
			PriceBefore:   ValueSentinel,
			PriceAfter:    ValueSentinel,
			ReviewCnt:     "0",
			ASIN:          ValueSentinel,
			BoardName:     boardName,
			CrawlDate:     now.Format("2006-01-02"),
			CrawlDatetime: now.Format("2006-01-02 15:04:05"),
		}

		if rank := extract.First(card, selectors.BestsellerRank); rank != "" {
			entry.Ranking = rank
		}
		if title := extract.NormalizeSpace(extract.First(card, selectors.BestsellerTitle)); title != "" {
			entry.ProductName = title
		}
		if price := extract.FirstPriceToken(extract.FirstWith(card, selectors.BestsellerPrice, extract.LooksLikePrice)); price != "" {
			// The listing shows one price per card; both columns carry it.
			entry.PriceBefore = price
			entry.PriceAfter = price
		}
		if cnt := extract.FirstWith(card, selectors.BestsellerReviews, extract.HasDigit); cnt != "" {
			entry.ReviewCnt = extract.CleanReviewCount(cnt)
		}
		if href := extract.FirstAttr(card, selectors.BestsellerLink, "href"); href != "" {
			if asin := extract.ASINFromURL(href); asin != "" {
				entry.ASIN = asin
			}
		}

		entries = append(entries, entry)
	}

	return entries
}

// BoardNameForURL maps a listing URL to its board name via the category
// code embedded in the path.
func BoardNameForURL(url string) string {
	for code, name := range selectors.URLBoardMap {
		if strings.Contains(url, code) {
			return name
		}
	}
	return ""
}
