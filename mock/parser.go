package mock

import "github.com/fwojciec/bustop"

var (
	_ bustop.ListingParser = (*ListingParser)(nil)
	_ bustop.ThreadParser  = (*ThreadParser)(nil)
)

// ListingParser is a mock implementation of bustop.ListingParser.
type ListingParser struct {
	ParseListingFn func(html string) ([]bustop.Article, error)
}

func (p *ListingParser) ParseListing(html string) ([]bustop.Article, error) {
	return p.ParseListingFn(html)
}

// ThreadParser is a mock implementation of bustop.ThreadParser.
type ThreadParser struct {
	ParseThreadFn func(html, href string, kind bustop.PageKind) (*bustop.ThreadUpdate, error)
}

func (p *ThreadParser) ParseThread(html, href string, kind bustop.PageKind) (*bustop.ThreadUpdate, error) {
	return p.ParseThreadFn(html, href, kind)
}
