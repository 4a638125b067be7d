package goquery

import (
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Layouts accepted for forum timestamps. Single-digit month and day
// layouts also accept zero-padded values. Post times may carry seconds;
// reply, last-reply and quote times are minute precision.
var (
	dateLayouts     = []string{"2006-1-2"}
	dateTimeLayouts = []string{"2006-1-2 15:04:05", "2006-1-2 15:04"}
	minuteLayouts   = []string{"2006-1-2 15:04"}
)

// postedAtMarker holds the runes of the localized "posted at" prefix that
// precedes timestamps in visible text, in traditional and simplified forms.
const postedAtMarker = " \u00a0發表於发表于"

// timestamp locates a time value in one of two markup shapes. Recent
// posts carry the exact value in the title attribute of a precise element
// and a relative phrase as its text; older posts print the value as
// visible text of the enclosing element, after a "posted at" marker.
type timestamp struct {
	// precise matches the element whose title attribute holds the value.
	// Nil skips the attribute strategy.
	precise goquery.Matcher

	// visible matches the element whose text holds the value.
	visible goquery.Matcher

	layouts []string
}

// resolve tries the attribute, then the visible text, within scope.
func (ts timestamp) resolve(scope *goquery.Selection) (time.Time, bool) {
	if ts.precise != nil {
		if title, ok := scope.FindMatcher(ts.precise).First().Attr("title"); ok {
			if t, ok := parseTime(strings.TrimSpace(title), ts.layouts); ok {
				return t, true
			}
		}
	}

	if ts.visible != nil {
		sel := scope.FindMatcher(ts.visible).First()
		if sel.Length() > 0 {
			if t, ok := parseTime(stripMarker(sel.Text()), ts.layouts); ok {
				return t, true
			}
		}
	}

	return time.Time{}, false
}

// stripMarker removes surrounding whitespace and the "posted at" marker
// from the left of s.
func stripMarker(s string) string {
	return strings.TrimLeft(strings.TrimSpace(s), postedAtMarker)
}

// parseTime parses value with the first layout that accepts it.
// Values carry no zone and are read as UTC.
func parseTime(value string, layouts []string) (time.Time, bool) {
	for _, layout := range layouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
