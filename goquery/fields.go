package goquery

import (
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// fields resolves the required fields of one record from its scope element.
//
// The first miss is sticky: every later lookup returns a zero value without
// touching the DOM, and ok reports false. Extractors read all fields, then
// check ok once, so the drop-on-missing policy lives here and nowhere else.
type fields struct {
	scope   *goquery.Selection
	missing string
}

func newFields(scope *goquery.Selection) *fields {
	return &fields{scope: scope}
}

// ok reports whether every field resolved so far was found.
func (f *fields) ok() bool {
	return f.missing == ""
}

func (f *fields) miss(name string) {
	if f.missing == "" {
		f.missing = name
	}
}

// first returns the first element matching m within the scope.
func (f *fields) first(name string, m goquery.Matcher) *goquery.Selection {
	if !f.ok() {
		return nil
	}
	sel := f.scope.FindMatcher(m).First()
	if sel.Length() == 0 {
		f.miss(name)
		return nil
	}
	return sel
}

// text returns the trimmed text of all descendants of the first match.
func (f *fields) text(name string, m goquery.Matcher) string {
	sel := f.first(name, m)
	if sel == nil {
		return ""
	}
	text := strings.TrimSpace(sel.Text())
	if text == "" {
		f.miss(name)
	}
	return text
}

// leadingText returns the first descendant text node of the first match,
// trimmed. Markup that interleaves a value with nested decoration puts the
// value first.
func (f *fields) leadingText(name string, m goquery.Matcher) string {
	sel := f.first(name, m)
	if sel == nil {
		return ""
	}
	text, found := firstTextNode(sel.Get(0))
	text = strings.TrimSpace(text)
	if !found || text == "" {
		f.miss(name)
	}
	return text
}

// attr returns the named attribute of the first match.
func (f *fields) attr(name string, m goquery.Matcher, attr string) string {
	sel := f.first(name, m)
	if sel == nil {
		return ""
	}
	val, exists := sel.Attr(attr)
	val = strings.TrimSpace(val)
	if !exists || val == "" {
		f.miss(name)
	}
	return val
}

// count parses the text of the first match as a non-negative decimal.
func (f *fields) count(name string, m goquery.Matcher) uint32 {
	return f.number(name, f.text(name, m))
}

// floor is count for floor counters, which the forum prints as "#12".
func (f *fields) floor(name string, m goquery.Matcher) uint32 {
	return f.number(name, strings.TrimPrefix(f.text(name, m), "#"))
}

func (f *fields) number(name, text string) uint32 {
	if !f.ok() {
		return 0
	}
	n, err := strconv.ParseUint(text, 10, 32)
	if err != nil {
		f.miss(name)
		return 0
	}
	return uint32(n)
}

// when resolves a timestamp through ts's fallback chain.
func (f *fields) when(name string, ts timestamp) time.Time {
	if !f.ok() {
		return time.Time{}
	}
	t, found := ts.resolve(f.scope)
	if !found {
		f.miss(name)
	}
	return t
}

// firstTextNode returns the data of the first text node below n in
// document order.
func firstTextNode(n *html.Node) (string, bool) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			return c.Data, true
		}
		if text, ok := firstTextNode(c); ok {
			return text, true
		}
	}
	return "", false
}
