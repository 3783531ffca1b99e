package crawler

import (
	"errors"
	"strings"

	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"
)

var (
	// ErrRobotCheck means Amazon served a CAPTCHA wall instead of the page.
	ErrRobotCheck = errors.New("robot check page served")
	// ErrPageNotFound means Amazon served its 404 page for the URL.
	ErrPageNotFound = errors.New("page not found")
)

// backoffReporter is implemented by limiters that adapt their delay to
// crawl health, such as ratelimit.AdaptiveRateLimiter.
type backoffReporter interface {
	RecordSuccess()
	RecordError()
}

// reportOutcome feeds a page-load outcome into the limiter when it
// supports adaptive backoff. Only robot checks count as errors; a 404
// is a valid answer, not a sign the crawl is being throttled.
func reportOutcome(limiter any, err error) {
	reporter, ok := limiter.(backoffReporter)
	if !ok {
		return
	}
	if errors.Is(err, ErrRobotCheck) {
		reporter.RecordError()
		return
	}
	if err == nil {
		reporter.RecordSuccess()
	}
}

// CheckPage inspects a fetched document for the two page-level failure
// shapes that carry a 200 status: the CAPTCHA wall and the dog 404 page.
// A nil return means the document is a real content page.
func CheckPage(doc *html.Node) error {
	text := htmlquery.InnerText(doc)

	if strings.Contains(text, "api-services-support@amazon.com") ||
		strings.Contains(text, "Enter the characters you see below") {
		return ErrRobotCheck
	}

	if strings.Contains(text, "Dogs of Amazon") ||
		strings.Contains(text, "Looking for something?") {
		return ErrPageNotFound
	}

	return nil
}
