package goquery

import (
	"net/url"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/bustop"
)

// Ensure ListingParser implements bustop.ListingParser at compile time.
var _ bustop.ListingParser = (*ListingParser)(nil)

// decorativeImages are listing icons that sit among the preview images.
var decorativeImages = map[string]bool{
	"template/javbus/images/folder_lock.gif": true,
	"template/javbus/images/pollsmall.gif":   true,
}

// ListingParser extracts articles from thread-listing pages.
// ListingParser is safe for concurrent use by multiple goroutines.
type ListingParser struct {
	selectors *ListingSelectors
	base      *url.URL
	onDrop    DropFunc
}

// ListingOption configures a ListingParser.
type ListingOption func(*ListingParser)

// WithListingDropFunc sets a callback for rows left out of the result.
func WithListingDropFunc(fn DropFunc) ListingOption {
	return func(p *ListingParser) {
		p.onDrop = fn
	}
}

// NewListingParser creates a ListingParser that resolves relative links
// against baseURL.
func NewListingParser(selectors *ListingSelectors, baseURL string, opts ...ListingOption) (*ListingParser, error) {
	base, err := url.Parse(baseURL)
	if err != nil || !base.IsAbs() {
		return nil, bustop.Errorf(bustop.EINVALID, "invalid base URL: %q", baseURL)
	}

	p := &ListingParser{
		selectors: selectors,
		base:      base,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// ParseListing returns the listing's complete rows in document order.
func (p *ListingParser) ParseListing(html string) ([]bustop.Article, error) {
	doc, err := parseDocument(html)
	if err != nil {
		return nil, err
	}

	articles := []bustop.Article{}
	doc.FindMatcher(p.selectors.Items).Each(func(_ int, row *goquery.Selection) {
		if article, ok := p.parseArticle(row); ok {
			articles = append(articles, article)
		}
	})
	return articles, nil
}

func (p *ListingParser) parseArticle(row *goquery.Selection) (bustop.Article, bool) {
	s := p.selectors
	f := newFields(row)

	article := bustop.Article{
		Title: f.text("title", s.Title),
		Author: bustop.Author{
			Picture: f.attr("author picture", s.AuthorPicture, "src"),
			Name:    f.text("author name", s.AuthorName),
		},
		PublishedAt: f.when("published at", timestamp{
			precise: s.PublishedAt,
			visible: s.PublishedAtText,
			layouts: dateLayouts,
		}),
		Views:   f.count("views", s.Views),
		Replies: f.count("replies", s.Replies),
		LastReply: bustop.LastReply{
			Name: f.text("last reply name", s.LastReplyName),
			PublishedAt: f.when("last reply published at", timestamp{
				precise: s.LastReplyPublishedAt,
				visible: s.LastReplyPublishedText,
				layouts: minuteLayouts,
			}),
		},
	}

	href := f.attr("href", s.Href, "href")
	if article.Href = p.resolve(href); f.ok() && article.Href == "" {
		f.miss("href")
	}

	if !f.ok() {
		if p.onDrop != nil {
			p.onDrop("article", f.missing)
		}
		return bustop.Article{}, false
	}

	article.PreviewImages = p.previewImages(row)
	return article, true
}

// previewImages returns the row's thumbnail URLs in document order,
// skipping listing icons.
func (p *ListingParser) previewImages(row *goquery.Selection) []string {
	images := []string{}
	row.FindMatcher(p.selectors.PreviewImages).Each(func(_ int, img *goquery.Selection) {
		src, ok := img.Attr("src")
		if !ok || src == "" || decorativeImages[src] {
			return
		}
		if resolved := p.resolve(src); resolved != "" {
			images = append(images, resolved)
		}
	})
	return images
}

// resolve makes a forum-relative link absolute.
func (p *ListingParser) resolve(href string) string {
	if href == "" {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return p.base.ResolveReference(ref).String()
}
