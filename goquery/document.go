// Package goquery implements the forum page parsers on top of goquery and
// compiled cascadia selectors.
package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/bustop"
)

// DropFunc is called when a record is left out of a parse result because
// a required field could not be resolved. record names the record type
// ("article", "talk", "reply"); field names the first field that missed.
type DropFunc func(record, field string)

// parseDocument reads raw page HTML.
func parseDocument(html string) (*goquery.Document, error) {
	if strings.TrimSpace(html) == "" {
		return nil, bustop.Errorf(bustop.EINVALID, "empty HTML input")
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, bustop.Errorf(bustop.EINVALID, "failed to parse HTML: %v", err)
	}
	return doc, nil
}
