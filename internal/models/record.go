package models

import (
	"time"
)

// DataGbn flags whether a product currently holds a top-100 bestseller rank.
type DataGbn string

const (
	DataGbnBest   DataGbn = "BEST"
	DataGbnNormal DataGbn = "NORMAL"
)

// ProductRecord is one crawled product-master document, keyed by ASIN.
// ASIN is always present, even for failed visits, since it is derived
// from the request URL rather than the page.
type ProductRecord struct {
	Seq               int64             `json:"seq,omitempty"`
	ASIN              string            `json:"asin"`
	GroupID           string            `json:"group_id"`
	URL               string            `json:"url"`
	BoardName         string            `json:"board_name"`
	Division          string            `json:"division"`
	ProductName       string            `json:"product_name"`
	Style             string            `json:"style"`
	Price             string            `json:"price"`
	ListPrice         string            `json:"list_price"`
	Discount          string            `json:"discount"`
	Rating            string            `json:"rating"`
	ReviewCount       string            `json:"review_count"`
	ImageURL          string            `json:"image_url"`
	ExpandInfo        map[string]string `json:"expand_info"`
	Error             string            `json:"error,omitempty"`
	DataGbn           DataGbn           `json:"data_gbn"`
	LastCrawlDatetime string            `json:"last_crawl_datetime"`
}

// NewProductRecord creates a record with the invariant fields set. GroupID
// starts as the ASIN and is only replaced when a parent ASIN is found.
func NewProductRecord(asin, url string) *ProductRecord {
	return &ProductRecord{
		ASIN:              asin,
		GroupID:           asin,
		URL:               url,
		DataGbn:           DataGbnNormal,
		ExpandInfo:        make(map[string]string),
		LastCrawlDatetime: time.Now().Format("2006-01-02 15:04:05"),
	}
}

// ReviewRecord is one document per DOM review block. Star is 0 when the
// rating text could not be parsed; that sentinel is stored, not dropped.
type ReviewRecord struct {
	Seq           int64   `json:"seq,omitempty"`
	GroupID       string  `json:"group_id"`
	ASIN          string  `json:"asin"`
	ReviewCnt     int     `json:"review_cnt"`
	Title         string  `json:"title"`
	Content       string  `json:"content"`
	ReviewURL     string  `json:"review_url"`
	Star          float64 `json:"star"`
	WriterNm      string  `json:"writer_nm"`
	WriteDt       string  `json:"write_dt"`
	Option        string  `json:"option"`
	IsVerified    bool    `json:"is_verified"`
	Helpful       int     `json:"helpful"`
	CrawlDate     string  `json:"crawl_date"`
	CrawlDatetime string  `json:"crawl_datetime"`
}

// BestsellerEntry is one ranked card on a bestseller listing page.
// Unscraped fields carry explicit sentinels ("#N" ranking, "null" price
// and asin) so every card is still emitted.
type BestsellerEntry struct {
	Seq           int64  `json:"seq,omitempty"`
	Ranking       string `json:"ranking"`
	ProductName   string `json:"product_name"`
	PriceBefore   string `json:"price_before"`
	PriceAfter    string `json:"price_after"`
	ReviewCnt     string `json:"review_cnt"`
	ASIN          string `json:"asin"`
	BoardName     string `json:"board_name"`
	Error         string `json:"error,omitempty"`
	CrawlDate     string `json:"crawl_date"`
	CrawlDatetime string `json:"crawl_datetime"`
}

// FailureType classifies a terminal per-item outcome.
type FailureType string

const (
	FailureProductNoExist FailureType = "PRODUCT_NO_EXIST"
	FailureNoReviews      FailureType = "NO_REVIEWS"
	FailureCrawlingError  FailureType = "CRAWLING_ERROR"
	FailureOther          FailureType = "OTHER"
)

// Failure messages paired with the types above.
const (
	MsgNoProduct     = "product does not exist (product page returned 404)"
	MsgNoReviews     = "product exists but has no reviews"
	MsgCrawlingError = "error while extracting review data"
	MsgOther         = "unclassified error"
)

// FailureRecord is appended once per failed work item and never mutated.
type FailureRecord struct {
	ASIN        string      `json:"asin"`
	Error       string      `json:"error"`
	FailureType FailureType `json:"failure_type"`
	Timestamp   string      `json:"timestamp"`
}

func NewFailureRecord(asin, errMsg string, ft FailureType) FailureRecord {
	return FailureRecord{
		ASIN:        asin,
		Error:       errMsg,
		FailureType: ft,
		Timestamp:   time.Now().Format("2006-01-02 15:04:05"),
	}
}

// ReviewResult is the per-ASIN outcome of a review crawl. Failed items
// still produce a result with zero reviews so the batch always returns
// one outcome per input item.
type ReviewResult struct {
	ASIN           string         `json:"asin"`
	Reviews        []ReviewRecord `json:"result"`
	CrawlReviewCnt int            `json:"crawl_review_cnt"`
}
