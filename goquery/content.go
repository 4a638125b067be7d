package goquery

import (
	"strings"

	"github.com/fwojciec/bustop"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// walkContent flattens the body of one post into content blocks in
// document order. Wrapper elements are dropped and their children take
// their place, so nesting depth never shows in the result.
func walkContent(n *html.Node) []bustop.Content {
	contents := []bustop.Content{}
	walkChildren(n, &contents)
	return contents
}

func walkChildren(n *html.Node, contents *[]bustop.Content) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			if text := strings.TrimSpace(c.Data); text != "" {
				*contents = append(*contents, bustop.TextContent(text))
			}
		case html.ElementNode:
			switch c.DataAtom {
			case atom.Img:
				if src, ok := imageSource(c); ok {
					*contents = append(*contents, bustop.ImageContent(src))
				}
			case atom.Blockquote:
				if quote, ok := reconstructQuote(c); ok {
					*contents = append(*contents, bustop.QuoteContent(quote))
				}
			default:
				walkChildren(c, contents)
			}
		}
	}
}

// imageSource returns the src of an img element when it is an absolute
// http(s) URL. Relative and protocol-relative sources point at forum
// decoration and are skipped.
func imageSource(n *html.Node) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == "src" {
			return a.Val, strings.HasPrefix(a.Val, "http")
		}
	}
	return "", false
}

// reconstructQuote rebuilds a citation from a blockquote. The markup puts
// the header ("author marker date time") and the cited body in sibling
// text runs, so the first two descendant text nodes are read in order.
// Anything short of a complete quote yields false.
func reconstructQuote(n *html.Node) (bustop.Quote, bool) {
	texts := descendantTexts(n)
	if len(texts) < 2 {
		return bustop.Quote{}, false
	}

	header := strings.Split(texts[0], " ")
	if len(header) < 4 {
		return bustop.Quote{}, false
	}

	publishedAt, ok := parseTime(header[2]+" "+header[3], minuteLayouts)
	if !ok {
		return bustop.Quote{}, false
	}

	return bustop.Quote{
		Author:      header[0],
		PublishedAt: publishedAt,
		Text:        strings.TrimSpace(texts[1]),
	}, true
}

// descendantTexts collects the data of every text node below n, verbatim,
// in document order.
func descendantTexts(n *html.Node) []string {
	var texts []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.TextNode {
				texts = append(texts, c.Data)
			}
			walk(c)
		}
	}
	walk(n)
	return texts
}
