package crawler

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"

	"github.com/boardlab/amazon-board-crawler/internal/browser"
	"github.com/boardlab/amazon-board-crawler/internal/classify"
	"github.com/boardlab/amazon-board-crawler/internal/embedded"
	"github.com/boardlab/amazon-board-crawler/internal/extract"
	"github.com/boardlab/amazon-board-crawler/internal/models"
	"github.com/boardlab/amazon-board-crawler/internal/ratelimit"
	"github.com/boardlab/amazon-board-crawler/internal/selectors"
)

type ProductCrawler struct {
	runner     *browser.Runner
	cookies    []browser.Cookie
	limiter    ratelimit.RateLimiter
	logger     *slog.Logger
	maxRetries int
}

func NewProductCrawler(runner *browser.Runner, cookies []browser.Cookie, limiter ratelimit.RateLimiter) *ProductCrawler {
	return &ProductCrawler{
		runner:     runner,
		cookies:    cookies,
		limiter:    limiter,
		logger:     slog.Default().With("component", "product_crawler"),
		maxRetries: 3,
	}
}

// Crawl fetches and parses one product detail page. The returned record
// always carries the ASIN and URL; on failure its Error field is set and
// the error is returned alongside it.
func (pc *ProductCrawler) Crawl(ctx context.Context, asin string) (*models.ProductRecord, error) {
	if err := pc.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	url := ProductURL(asin)
	rec := models.NewProductRecord(asin, url)

	pc.logger.Info("crawling product", "asin", asin)

	browserCtx, err := pc.runner.NewContext(pc.cookies)
	if err != nil {
		rec.Error = err.Error()
		return rec, fmt.Errorf("failed to create context: %w", err)
	}
	defer browserCtx.Close()

	page, err := pc.runner.NewPage(browserCtx)
	if err != nil {
		rec.Error = err.Error()
		return rec, fmt.Errorf("failed to create page: %w", err)
	}

	if err := pc.runner.Navigate(page, url, pc.maxRetries); err != nil {
		rec.Error = err.Error()
		return rec, fmt.Errorf("failed to navigate: %w", err)
	}

	content, err := page.Content()
	if err != nil {
		rec.Error = err.Error()
		return rec, fmt.Errorf("failed to get page content: %w", err)
	}

	doc, err := htmlquery.Parse(strings.NewReader(content))
	if err != nil {
		rec.Error = err.Error()
		return rec, fmt.Errorf("failed to parse page: %w", err)
	}

	if err := CheckPage(doc); err != nil {
		reportOutcome(pc.limiter, err)
		rec.Error = err.Error()
		return rec, err
	}
	reportOutcome(pc.limiter, nil)

	pc.ParseProduct(doc, rec)

	pc.logger.Info("crawled product", "asin", asin,
		"board", rec.BoardName, "data_gbn", rec.DataGbn)

	return rec, nil
}

// ParseProduct fills a record from a parsed product page. It never
// fails; fields whose chains match nothing stay empty.
func (pc *ProductCrawler) ParseProduct(doc *html.Node, rec *models.ProductRecord) {
	rec.ProductName = extract.NormalizeSpace(extract.First(doc, selectors.ProductTitle))
	rec.Price = extract.FirstPriceToken(extract.FirstWith(doc, selectors.Price, extract.LooksLikePrice))
	rec.ListPrice = extract.FirstPriceToken(extract.FirstWith(doc, selectors.ListPrice, extract.LooksLikePrice))
	rec.Discount = extract.First(doc, selectors.Discount)
	rec.Rating = extract.CleanRating(extract.First(doc, selectors.Rating))
	rec.ReviewCount = extract.CleanReviewCount(extract.FirstWith(doc, selectors.ReviewCount, extract.HasDigit))
	rec.Style = extract.NormalizeSpace(extract.First(doc, selectors.Style))
	// data-old-hires carries the full-resolution image; src is the
	// scaled-down render.
	rec.ImageURL = extract.FirstAttr(doc, selectors.LandingImage, "data-old-hires")
	if rec.ImageURL == "" {
		rec.ImageURL = extract.FirstAttr(doc, selectors.LandingImage, "src")
	}

	rec.ExpandInfo = CollectExpandInfo(doc)

	variation, err := embedded.Extract(doc)
	switch {
	case err == nil:
		rec.GroupID = variation.GroupID(rec.ASIN)
		variation.MergeInto(rec.ExpandInfo)
	case err != embedded.ErrNotFound:
		pc.logger.Warn("variation data unparsable", "asin", rec.ASIN, "error", err)
	}

	rec.DataGbn = dataGbnFromRank(rec.ExpandInfo)

	breadcrumb := extract.NormalizeSpace(extract.First(doc, selectors.Breadcrumb))
	bt := classify.DetermineBoardType(classify.Signals{
		Breadcrumb:             breadcrumb,
		ProductName:            rec.ProductName,
		HardDiskDescription:    rec.ExpandInfo["hard_disk_description"],
		FlashMemoryType:        rec.ExpandInfo["flash_memory_type"],
		ConnectivityTechnology: rec.ExpandInfo["connectivity_technology"],
		HardwareConnectivity:   rec.ExpandInfo["hardware_connectivity"],
		HardwareInterface:      rec.ExpandInfo["hardware_interface"],
		InstallationType:       rec.ExpandInfo["installation_type"],
	})
	rec.BoardName, rec.Division = classify.BoardNameAndDivision(bt, rec.DataGbn == models.DataGbnBest)
}

// Attribute-row sub-chains, evaluated relative to one table row or
// bullet item.
var (
	rowHeader      = []extract.Strategy{extract.Xpath(`.//th`)}
	rowCells       = extract.Xpath(`.//td`)
	bulletBoldSpan = []extract.Strategy{extract.Xpath(`.//span[contains(@class,"a-text-bold")]`)}
)

// CollectExpandInfo gathers the open attribute map from the three table
// shapes Amazon renders product details in. Later sources overwrite
// earlier ones for the same key.
func CollectExpandInfo(doc *html.Node) map[string]string {
	info := make(map[string]string)

	for _, row := range extract.AllNodes(doc, selectors.DetailTableRows) {
		header := extract.Text(extract.FirstNode(row, rowHeader))
		cells := extract.Nodes(row, rowCells)
		if len(cells) == 0 {
			continue
		}
		putAttribute(info, header, extract.Text(cells[0]))
	}

	for _, item := range extract.AllNodes(doc, selectors.DetailBulletItems) {
		bold := extract.FirstNode(item, bulletBoldSpan)
		if bold == nil {
			continue
		}
		header := extract.Text(bold)
		full := extract.Text(item)
		value := strings.TrimSpace(strings.TrimPrefix(full, header))
		putAttribute(info, header, value)
	}

	for _, row := range extract.AllNodes(doc, selectors.OverviewTableRows) {
		cells := extract.Nodes(row, rowCells)
		if len(cells) < 2 {
			continue
		}
		putAttribute(info, extract.Text(cells[0]), extract.Text(cells[1]))
	}

	return info
}

func putAttribute(info map[string]string, header, value string) {
	header = extract.NormalizeSpace(extract.StripInvisible(header))
	header = strings.TrimSuffix(strings.TrimSpace(header), ":")
	header = strings.TrimSpace(header)
	value = extract.NormalizeSpace(extract.StripInvisible(value))
	if header == "" || value == "" {
		return
	}
	if _, excluded := selectors.ExcludedHeaders[header]; excluded {
		return
	}
	info[extract.FieldKey(header)] = value
}

var rankPattern = regexp.MustCompile(`#([\d,]+)`)

// dataGbnFromRank marks the record BEST when the leading sales rank in
// the attribute map is 100 or better. Only the first token counts;
// sub-category ranks further along the text never promote a record.
func dataGbnFromRank(info map[string]string) models.DataGbn {
	rankText, ok := info["best_sellers_rank"]
	if !ok {
		return models.DataGbnNormal
	}
	fields := strings.Fields(rankText)
	if len(fields) == 0 {
		return models.DataGbnNormal
	}
	m := rankPattern.FindStringSubmatch(fields[0])
	if m == nil {
		return models.DataGbnNormal
	}
	rank, err := strconv.Atoi(strings.ReplaceAll(m[1], ",", ""))
	if err != nil || rank <= 0 || rank > 100 {
		return models.DataGbnNormal
	}
	return models.DataGbnBest
}
