// Package bloom provides link deduplication using Bloom filters.
//
// Listing pages shift while they are paged through: a thread bumped by a
// new reply moves to page 1 and pushes the rest down, so a later page can
// repeat rows already seen. The filter remembers links cheaply across the
// whole sync.
package bloom

import "github.com/bits-and-blooms/bloom/v3"

// Filter remembers links. A Filter is not safe for concurrent use.
type Filter struct {
	f *bloom.BloomFilter
}

// NewFilter creates a new Bloom filter sized for n expected links
// with the given false positive rate.
func NewFilter(n uint, fpRate float64) *Filter {
	return &Filter{
		f: bloom.NewWithEstimates(n, fpRate),
	}
}

// Add records a link.
func (f *Filter) Add(href string) {
	f.f.AddString(href)
}

// Test reports whether the link might have been recorded.
// False positives are possible; false negatives are not.
func (f *Filter) Test(href string) bool {
	return f.f.TestString(href)
}

// Seen records the link and reports whether it might have been recorded
// before.
func (f *Filter) Seen(href string) bool {
	return f.f.TestAndAddString(href)
}

// EstimatedCount returns the approximate number of links recorded.
func (f *Filter) EstimatedCount() uint {
	return uint(f.f.ApproximatedSize())
}
