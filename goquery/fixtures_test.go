package goquery_test

import (
	"fmt"
	"strings"
)

const testBaseURL = "https://www.javbus.com/forum/"

// listingRow describes one thread row of a listing page. Fields hold raw
// inner HTML so tests can remove or reshape individual parts.
type listingRow struct {
	Title     string
	Href      string
	Avatar    string
	Author    string
	Dateline  string
	Nums      string
	Images    string
	LastReply string
}

func defaultListingRow() listingRow {
	return listingRow{
		Title:     "First thread",
		Href:      "forum.php?mod=viewthread&amp;tid=101",
		Avatar:    `<img src="https://www.javbus.com/forum/uc_server/avatar.php?uid=1">`,
		Author:    `<span class="author"><a href="space-uid-1.html">alice</a></span>`,
		Dateline:  `<span class="dateline"><span title="2024-03-01">3&nbsp;天前</span></span>`,
		Nums:      `<span class="views">120</span><span class="reply">5</span>`,
		Images:    `<a href="#"><img src="https://pics.example.com/1.jpg"></a>`,
		LastReply: `<a href="space-uid-2.html">bob</a><span>·</span><span><span title="2024-03-04 12:30">昨天&nbsp;12:30</span></span>`,
	}
}

func (r listingRow) html(id int) string {
	return fmt.Sprintf(`<tbody id="normalthread_%d">
<tr>
<th>
<div class="post_avatar"><a href="#">%s</a></div>
<div class="post_inforight">
<div class="post_infolist">
<div><a href="%s" class="s xst">%s</a></div>
<div>%s</div>
</div>
<div class="post_infolist_other">
<div>%s%s</div>
<div class="z nums">%s</div>
<span>%s</span>
</div>
</div>
</th>
</tr>
</tbody>`, id, r.Avatar, r.Href, r.Title, r.Images, r.Author, r.Dateline, r.Nums, r.LastReply)
}

func listingPage(rows ...listingRow) string {
	var b strings.Builder
	b.WriteString(`<!DOCTYPE html><html><body><div id="threadlist"><table id="threadlisttableid">`)
	for i, r := range rows {
		b.WriteString(r.html(i + 1))
	}
	b.WriteString(`</table></div></body></html>`)
	return b.String()
}

// threadReply renders one comment block.
func threadReply(name, uid, timeHTML, text string) string {
	return fmt.Sprintf(`<div class="pstl xs1 cl">
<div class="psta vm"><a href="#" class="avt"><img src="https://www.javbus.com/forum/uc_server/avatar.php?uid=%s"></a><a href="#" class="xi2 xw1">%s</a></div>
<div class="psti">%s <span class="xg1">%s</span></div>
</div>`, uid, name, text, timeHTML)
}

// threadItem describes one repeated post.
type threadItem struct {
	Floor   string
	Author  string
	Avatar  string
	Time    string
	Body    string
	Replies string
}

func defaultThreadItem(floor int) threadItem {
	return threadItem{
		Floor:   fmt.Sprintf("%d", floor),
		Author:  `<a href="#" class="xw1">dave</a>`,
		Avatar:  `<img src="https://www.javbus.com/forum/uc_server/avatar.php?uid=8">`,
		Time:    `<em>發表於 <span title="2024-03-02 09:15:00">昨天&nbsp;09:15</span></em>`,
		Body:    fmt.Sprintf("reply number %d", floor),
		Replies: "",
	}
}

func (it threadItem) html() string {
	return fmt.Sprintf(`<div class="nthread_postbox">
<table class="plhin"><tbody><tr>
<td class="pls"><div class="pls favatar"><div><div class="avatar"><a href="#">%s</a></div></div></div></td>
<td class="plc">
<div class="pi">
<strong><a href="#"><em>%s</em></a></strong>
<div><div class="authi">%s%s</div></div>
</div>
<div class="pct"><div class="pcb">
<div><table><tbody><tr><td class="t_f">%s</td></tr></tbody></table></div>
<div class="cm">%s</div>
</div></div>
</td>
</tr></tbody></table>
</div>`, it.Avatar, it.Floor, it.Author, it.Time, it.Body, it.Replies)
}

// threadMain describes the thread-opening post and page chrome.
type threadMain struct {
	Title   string
	Pager   string
	Author  string
	Time    string
	Body    string
	Replies string
}

func defaultThreadMain() threadMain {
	return threadMain{
		Title:   `<span id="thread_subject">Opening title</span><span class="xg1">[複製鏈接]</span>`,
		Pager:   `<div class="pgs mtm mbm cl"><div class="pg"><label><input type="text" name="custompage" value="1"><span title="共 3 頁"> / 3 頁</span></label></div></div>`,
		Author:  `<div class="authi"><a href="#">opener</a></div>`,
		Time:    `<span>查看: 100</span><span>發表於 2024-03-01 10:00:00</span>`,
		Body:    `Hello world`,
		Replies: "",
	}
}

func threadPage(main threadMain, items ...threadItem) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<!DOCTYPE html><html><body>
<h1>%s</h1>
<div id="ct"><div class="wp cl">
<div class="mn">%s</div>
<div class="sd sd_allbox"><div class="viewthread_authorinfo">
<div class="avatar"><a href="#"><img src="https://www.javbus.com/forum/uc_server/avatar.php?uid=7"></a></div>
%s
</div></div>
</div></div>
<div id="postlist">
<div class="nthread_info cl"><div><div>%s</div></div></div>
<div class="nthread_firstpostbox">
<table class="nthread_firstpost"><tbody><tr><td><div><div>
<div class="header">header</div>
<div><table><tbody><tr><td class="t_f">%s</td></tr></tbody></table></div>
<div class="cm">%s</div>
</div></div></td></tr></tbody></table>
</div>
`, main.Title, main.Pager, main.Author, main.Time, main.Body, main.Replies)
	for _, it := range items {
		b.WriteString(it.html())
	}
	b.WriteString(`</div></body></html>`)
	return b.String()
}

// continuationPage renders a later page of a thread: the same post list
// without the opening post.
func continuationPage(items ...threadItem) string {
	var b strings.Builder
	b.WriteString(`<!DOCTYPE html><html><body><div id="postlist">`)
	for _, it := range items {
		b.WriteString(it.html())
	}
	b.WriteString(`</div></body></html>`)
	return b.String()
}
