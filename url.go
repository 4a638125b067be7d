package bustop

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// DefaultBaseURL is the forum root that relative links are resolved against.
const DefaultBaseURL = "https://www.javbus.com/forum/"

// DefaultForumID is the board whose listing is read by default.
const DefaultForumID = 2

// ListingURL returns the URL of one page of a board's thread listing.
func ListingURL(baseURL string, forumID, page int) string {
	if page < 1 {
		page = 1
	}
	return strings.TrimSuffix(baseURL, "/") + "/forum.php?mod=forumdisplay&fid=" +
		strconv.Itoa(forumID) + "&page=" + strconv.Itoa(page)
}

// ThreadPageURL returns the URL of one page of a thread.
// href is the thread's detail URL as found on the listing.
func ThreadPageURL(href string, page int) string {
	if page < 1 {
		page = 1
	}
	sep := "&"
	if !strings.Contains(href, "?") {
		sep = "?"
	}
	return href + sep + "page=" + strconv.Itoa(page)
}

var threadPathRe = regexp.MustCompile(`thread-(\d+)-`)

// ThreadID returns the numeric thread id of a detail URL, taken from its
// tid query parameter or a thread-N-P-F.html path.
// Returns an empty string if the URL carries no thread id.
func ThreadID(href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if tid := u.Query().Get("tid"); tid != "" {
		return tid
	}
	if m := threadPathRe.FindStringSubmatch(u.Path); m != nil {
		return m[1]
	}
	return ""
}
