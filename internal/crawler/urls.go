package crawler

import "fmt"

const baseURL = "https://www.amazon.com"

func ProductURL(asin string) string {
	return fmt.Sprintf("%s/dp/%s", baseURL, asin)
}

func ReviewsURL(asin string, page int) string {
	return fmt.Sprintf("%s/product-reviews/%s/?sortBy=recent&pageNumber=%d", baseURL, asin, page)
}
