package goquery

import "github.com/andybalholm/cascadia"

// ListingSelectors names the markup anchors of a thread-listing page.
// Row-level selectors are evaluated against one Items match at a time.
//
// A ListingSelectors is read-only after construction and safe to share
// between goroutines.
type ListingSelectors struct {
	Items cascadia.Selector

	Title                  cascadia.Selector
	AuthorPicture          cascadia.Selector
	AuthorName             cascadia.Selector
	PublishedAt            cascadia.Selector
	PublishedAtText        cascadia.Selector
	Views                  cascadia.Selector
	Replies                cascadia.Selector
	PreviewImages          cascadia.Selector
	LastReplyName          cascadia.Selector
	LastReplyPublishedAt   cascadia.Selector
	LastReplyPublishedText cascadia.Selector
	Href                   cascadia.Selector
}

// NewListingSelectors compiles the listing selectors.
// It panics if a selector is malformed, which is a programming error.
func NewListingSelectors() *ListingSelectors {
	const (
		info  = "tr > th > div.post_inforight > div.post_infolist"
		other = "tr > th > div.post_inforight > div.post_infolist_other"
	)

	return &ListingSelectors{
		Items: cascadia.MustCompile("#threadlisttableid > tbody"),

		Title:                  cascadia.MustCompile(info + " > div > a.s"),
		AuthorPicture:          cascadia.MustCompile("tr > th > div.post_avatar > a > img"),
		AuthorName:             cascadia.MustCompile(other + " > div:nth-child(1) > span.author > a"),
		PublishedAt:            cascadia.MustCompile(other + " > div:nth-child(1) > span.dateline > span"),
		PublishedAtText:        cascadia.MustCompile(other + " > div:nth-child(1) > span.dateline"),
		Views:                  cascadia.MustCompile(other + " > div.z.nums > span.views"),
		Replies:                cascadia.MustCompile(other + " > div.z.nums > span.reply"),
		PreviewImages:          cascadia.MustCompile(info + " > div > a > img"),
		LastReplyName:          cascadia.MustCompile(other + " > span > a"),
		LastReplyPublishedAt:   cascadia.MustCompile(other + " > span > span:nth-child(3) > span"),
		LastReplyPublishedText: cascadia.MustCompile(other + " > span > span:nth-child(3)"),
		Href:                   cascadia.MustCompile(info + " > div > a.s"),
	}
}

// ThreadSelectors names the markup anchors of a thread page.
//
// Main* selectors locate the thread-opening post, which only appears on
// the first page and sits outside the repeated post list. Item* selectors
// are evaluated against one Items match; Reply* selectors against one
// reply element of either kind of post.
//
// A ThreadSelectors is read-only after construction and safe to share
// between goroutines.
type ThreadSelectors struct {
	Title cascadia.Selector
	Pages cascadia.Selector

	MainAuthorName    cascadia.Selector
	MainAuthorPicture cascadia.Selector
	MainPublishedAt   cascadia.Selector
	MainContent       cascadia.Selector
	MainReplies       cascadia.Selector

	Items               cascadia.Selector
	ItemAuthorName      cascadia.Selector
	ItemAuthorPicture   cascadia.Selector
	ItemPublishedAt     cascadia.Selector
	ItemPublishedAtText cascadia.Selector
	ItemFloor           cascadia.Selector
	ItemContent         cascadia.Selector
	ItemReplies         cascadia.Selector

	ReplyAuthorName      cascadia.Selector
	ReplyAuthorPicture   cascadia.Selector
	ReplyPublishedAt     cascadia.Selector
	ReplyPublishedAtText cascadia.Selector
	ReplyContent         cascadia.Selector
}

// NewThreadSelectors compiles the thread selectors.
// It panics if a selector is malformed, which is a programming error.
func NewThreadSelectors() *ThreadSelectors {
	const (
		author    = "#ct > div.wp.cl > div.sd.sd_allbox > div.viewthread_authorinfo"
		firstPost = "#postlist > div.nthread_firstpostbox > table.nthread_firstpost > tbody > tr:nth-child(1) > td > div > div"
		row       = "table.plhin > tbody > tr:nth-child(1)"
		itemInfo  = row + " > td.plc > div.pi"
	)

	return &ThreadSelectors{
		Title: cascadia.MustCompile("#thread_subject"),
		Pages: cascadia.MustCompile("#ct > div.wp.cl > div.mn > div.pgs.mtm.mbm.cl > div.pg > label > span"),

		MainAuthorName:    cascadia.MustCompile(author + " > div.authi > a"),
		MainAuthorPicture: cascadia.MustCompile(author + " > div.avatar > a > img"),
		MainPublishedAt:   cascadia.MustCompile("#postlist > div.nthread_info.cl > div > div > span:nth-child(2)"),
		MainContent:       cascadia.MustCompile(firstPost + " > div:nth-child(2) > table > tbody > tr > td.t_f"),
		MainReplies:       cascadia.MustCompile(firstPost + " > div.cm > div.pstl"),

		Items:               cascadia.MustCompile("#postlist > div.nthread_postbox"),
		ItemAuthorName:      cascadia.MustCompile(itemInfo + " > div > div.authi > a.xw1"),
		ItemAuthorPicture:   cascadia.MustCompile(row + " > td.pls > div.pls.favatar > div > div.avatar > a > img"),
		ItemPublishedAt:     cascadia.MustCompile(itemInfo + " > div > div.authi > em > span"),
		ItemPublishedAtText: cascadia.MustCompile(itemInfo + " > div > div.authi > em"),
		ItemFloor:           cascadia.MustCompile(itemInfo + " > strong > a > em"),
		ItemContent:         cascadia.MustCompile(row + " > td.plc > div.pct > div > div:nth-child(1) > table > tbody > tr > td.t_f"),
		ItemReplies:         cascadia.MustCompile(row + " > td.plc > div.pct > div.pcb > div.cm > div.pstl.xs1.cl"),

		ReplyAuthorName:      cascadia.MustCompile("div.psta.vm > a.xi2.xw1"),
		ReplyAuthorPicture:   cascadia.MustCompile("div.psta.vm > a:nth-child(1) > img"),
		ReplyPublishedAt:     cascadia.MustCompile("div.psti > span > span"),
		ReplyPublishedAtText: cascadia.MustCompile("div.psti > span"),
		ReplyContent:         cascadia.MustCompile("div.psti"),
	}
}
