package extract

import (
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
	"github.com/antchfx/xpath"
	"golang.org/x/net/html"
)

// Kind distinguishes how a strategy's query string is interpreted.
type Kind int

const (
	KindCSS Kind = iota
	KindXPath
)

// Strategy is one entry in an ordered fallback chain. Chains are tried
// front to back and the first non-empty match wins, so list order is
// part of the extraction contract.
type Strategy struct {
	Kind  Kind
	Query string
}

func Css(query string) Strategy   { return Strategy{Kind: KindCSS, Query: query} }
func Xpath(query string) Strategy { return Strategy{Kind: KindXPath, Query: query} }

// Nodes runs a single strategy against the subtree rooted at n.
// Invalid queries yield no nodes rather than an error; a selector that
// cannot match is indistinguishable from one that does not match.
func Nodes(n *html.Node, s Strategy) []*html.Node {
	if n == nil {
		return nil
	}
	switch s.Kind {
	case KindCSS:
		return goquery.NewDocumentFromNode(n).Find(s.Query).Nodes
	case KindXPath:
		expr := compiledXPath(s.Query)
		if expr == nil {
			return nil
		}
		return htmlquery.QuerySelectorAll(n, expr)
	}
	return nil
}

// Chains are package-level constants evaluated against every page, so
// compiled expressions are cached for the life of the process.
var xpathCache sync.Map

func compiledXPath(query string) *xpath.Expr {
	if cached, ok := xpathCache.Load(query); ok {
		return cached.(*xpath.Expr)
	}
	expr, err := xpath.Compile(query)
	if err != nil {
		return nil
	}
	xpathCache.Store(query, expr)
	return expr
}

// Text returns the trimmed text content of a node.
func Text(n *html.Node) string {
	if n == nil {
		return ""
	}
	return strings.TrimSpace(htmlquery.InnerText(n))
}

// Attr returns the trimmed value of the named attribute, or "".
func Attr(n *html.Node, name string) string {
	if n == nil {
		return ""
	}
	return strings.TrimSpace(htmlquery.SelectAttr(n, name))
}

// First tries each strategy in order and returns the first match whose
// trimmed text is non-empty. No match across the chain returns "";
// downstream normalizers treat that as unknown, not as an error.
func First(n *html.Node, chain []Strategy) string {
	return FirstWith(n, chain, nil)
}

// FirstWith is First with an extra acceptance predicate gating each
// candidate text (e.g. "must contain a digit" for price fields).
func FirstWith(n *html.Node, chain []Strategy, accept func(string) bool) string {
	for _, s := range chain {
		for _, node := range Nodes(n, s) {
			text := Text(node)
			if text == "" {
				continue
			}
			if accept != nil && !accept(text) {
				continue
			}
			return text
		}
	}
	return ""
}

// FirstAttr returns the first non-empty value of attr across the chain.
func FirstAttr(n *html.Node, chain []Strategy, attr string) string {
	for _, s := range chain {
		for _, node := range Nodes(n, s) {
			if v := Attr(node, attr); v != "" {
				return v
			}
		}
	}
	return ""
}

// FirstNode returns the first node matched by any strategy in the chain.
func FirstNode(n *html.Node, chain []Strategy) *html.Node {
	for _, s := range chain {
		if nodes := Nodes(n, s); len(nodes) > 0 {
			return nodes[0]
		}
	}
	return nil
}

// AllNodes returns the matches of the first strategy that matches
// anything at all. Later strategies are fallbacks, not unions.
func AllNodes(n *html.Node, chain []Strategy) []*html.Node {
	for _, s := range chain {
		if nodes := Nodes(n, s); len(nodes) > 0 {
			return nodes
		}
	}
	return nil
}

// HasDigit reports whether s contains at least one ASCII digit.
func HasDigit(s string) bool {
	for _, r := range s {
		if r >= '0' && r <= '9' {
			return true
		}
	}
	return false
}

// LooksLikePrice accepts text containing a digit or a currency symbol.
func LooksLikePrice(s string) bool {
	return HasDigit(s) || strings.ContainsAny(s, "$€£¥")
}
