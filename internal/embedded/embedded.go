// Package embedded pulls variation data out of the inline script block
// Amazon ships on product detail pages. The block assigns a JavaScript
// object literal to dataToReturn; only an allow-listed subset of its
// keys is kept.
package embedded

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"
)

// ErrNotFound reports that no inline script on the page carries a
// dataToReturn assignment. Pages without variations legitimately lack it.
var ErrNotFound = errors.New("embedded: dataToReturn not found")

var dataToReturnPattern = regexp.MustCompile(`(?s)var\s+dataToReturn\s*=\s*(\{.*?\});`)

// allowedKeys is the subset of dataToReturn worth persisting. Everything
// else in the blob is presentation state.
var allowedKeys = []string{
	"currentAsin",
	"landingAsin",
	"parentAsin",
	"dimensionToAsinMap",
	"variationValues",
	"num_total_variations",
	"dimensionValuesDisplayData",
	"variationDisplayLabels",
}

// VariationData holds the allow-listed keys of the dataToReturn blob.
// Values keep the parsed literal's shape (strings, numbers, maps, slices).
type VariationData struct {
	values map[string]any
}

// Extract scans the document's inline scripts for the dataToReturn
// assignment and parses its object literal. ErrNotFound means the page
// has no blob; any other error means the blob was present but could not
// be parsed, and the caller should treat the variation keys as absent.
func Extract(doc *html.Node) (*VariationData, error) {
	scripts, err := htmlquery.QueryAll(doc, `//script[not(@src)]`)
	if err != nil {
		return nil, fmt.Errorf("embedded: query scripts: %w", err)
	}
	for _, script := range scripts {
		text := htmlquery.InnerText(script)
		if !strings.Contains(text, "dataToReturn") {
			continue
		}
		m := dataToReturnPattern.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		parsed, err := parseLiteral(m[1])
		if err != nil {
			return nil, fmt.Errorf("embedded: parse dataToReturn: %w", err)
		}
		obj, ok := parsed.(map[string]any)
		if !ok {
			return nil, errors.New("embedded: dataToReturn is not an object")
		}
		values := make(map[string]any, len(allowedKeys))
		for _, key := range allowedKeys {
			if v, present := obj[key]; present && v != nil {
				values[key] = v
			}
		}
		return &VariationData{values: values}, nil
	}
	return nil, ErrNotFound
}

// GroupID returns the parent ASIN when the blob names one, otherwise the
// product's own ASIN. Variation siblings therefore share a group.
func (v *VariationData) GroupID(asin string) string {
	if v == nil {
		return asin
	}
	if parent, ok := v.values["parentAsin"].(string); ok && parent != "" {
		return parent
	}
	return asin
}

// MergeInto copies the kept keys into an attribute map. Scalar values
// are stored as their string form; structured values are stored as
// compact JSON so the document stays flat.
func (v *VariationData) MergeInto(info map[string]string) {
	if v == nil {
		return
	}
	for key, val := range v.values {
		switch t := val.(type) {
		case string:
			info[key] = t
		case float64:
			info[key] = fmt.Sprintf("%g", t)
		case bool:
			if t {
				info[key] = "true"
			} else {
				info[key] = "false"
			}
		default:
			encoded, err := json.Marshal(t)
			if err != nil {
				continue
			}
			info[key] = string(encoded)
		}
	}
}

// Value returns the raw parsed value for one of the kept keys.
func (v *VariationData) Value(key string) (any, bool) {
	if v == nil {
		return nil, false
	}
	val, ok := v.values[key]
	return val, ok
}
