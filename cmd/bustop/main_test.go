package main_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	main "github.com/fwojciec/bustop/cmd/bustop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const listingHTML = `<!DOCTYPE html><html><body><div id="threadlist"><table id="threadlisttableid">
<tbody id="normalthread_1"><tr><th>
<div class="post_avatar"><a href="#"><img src="https://www.javbus.com/forum/uc_server/avatar.php?uid=1"></a></div>
<div class="post_inforight">
<div class="post_infolist">
<div><a href="forum.php?mod=viewthread&amp;tid=101" class="s xst">First thread</a></div>
<div><a href="#"><img src="https://pics.example.com/1.jpg"></a></div>
</div>
<div class="post_infolist_other">
<div><span class="author"><a href="space-uid-1.html">alice</a></span><span class="dateline"><span title="2024-03-01">3&nbsp;天前</span></span></div>
<div class="z nums"><span class="views">120</span><span class="reply">5</span></div>
<span><a href="space-uid-2.html">bob</a><span>·</span><span><span title="2024-03-04 12:30">昨天&nbsp;12:30</span></span></span>
</div>
</div>
</th></tr></tbody>
</table></div></body></html>`

const firstThreadHTML = `<!DOCTYPE html><html><body>
<h1><span id="thread_subject">Opening title</span><span class="xg1">[複製鏈接]</span></h1>
<div id="ct"><div class="wp cl">
<div class="mn"><div class="pgs mtm mbm cl"><div class="pg"><label><input type="text" name="custompage" value="1"><span title="共 2 頁"> / 2 頁</span></label></div></div></div>
<div class="sd sd_allbox"><div class="viewthread_authorinfo">
<div class="avatar"><a href="#"><img src="https://www.javbus.com/forum/uc_server/avatar.php?uid=7"></a></div>
<div class="authi"><a href="#">opener</a></div>
</div></div>
</div></div>
<div id="postlist">
<div class="nthread_info cl"><div><div><span>查看: 100</span><span>發表於 2024-03-01 10:00:00</span></div></div></div>
<div class="nthread_firstpostbox">
<table class="nthread_firstpost"><tbody><tr><td><div><div>
<div class="header">header</div>
<div><table><tbody><tr><td class="t_f">Hello world</td></tr></tbody></table></div>
<div class="cm"></div>
</div></div></td></tr></tbody></table>
</div>
</div></body></html>`

const continuationHTML = `<!DOCTYPE html><html><body><div id="postlist">
<div class="nthread_postbox">
<table class="plhin"><tbody><tr>
<td class="pls"><div class="pls favatar"><div><div class="avatar"><a href="#"><img src="https://www.javbus.com/forum/uc_server/avatar.php?uid=8"></a></div></div></div></td>
<td class="plc">
<div class="pi">
<strong><a href="#"><em>11</em></a></strong>
<div><div class="authi"><a href="#" class="xw1">dave</a><em>發表於 <span title="2024-03-02 09:15:00">昨天&nbsp;09:15</span></em></div></div>
</div>
<div class="pct"><div class="pcb">
<div><table><tbody><tr><td class="t_f">page two reply</td></tr></tbody></table></div>
<div class="cm"></div>
</div></div>
</td>
</tr></tbody></table>
</div>
</div></body></html>`

// newForum serves one listing page and a two-page thread.
func newForum(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		switch {
		case q.Get("mod") == "forumdisplay":
			_, _ = w.Write([]byte(listingHTML))
		case q.Get("mod") == "viewthread" && q.Get("page") == "2":
			_, _ = w.Write([]byte(continuationHTML))
		case q.Get("mod") == "viewthread":
			_, _ = w.Write([]byte(firstThreadHTML))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func run(t *testing.T, m *main.Main, args ...string) (string, string, error) {
	t.Helper()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	err := m.Run(context.Background(), args, stdout, stderr)
	return stdout.String(), stderr.String(), err
}

func TestMain_Run_EndToEnd(t *testing.T) {
	t.Parallel()

	srv := newForum(t)
	baseURL := srv.URL + "/forum/"
	threadURL := baseURL + "forum.php?mod=viewthread&tid=101"
	global := []string{"--base-url", baseURL, "--rps", "100"}

	dir := t.TempDir()
	newMain := func() *main.Main {
		m := main.NewMain()
		m.DBPath = filepath.Join(dir, "bustop.db")
		m.ConfigPath = filepath.Join(dir, "config.yaml")
		return m
	}

	// list
	out, _, err := run(t, newMain(), append(global, "list")...)
	require.NoError(t, err)
	assert.Contains(t, out, "1. First thread")
	assert.Contains(t, out, threadURL)

	// sync then articles
	out, _, err = run(t, newMain(), append(global, "sync", "--pages", "1")...)
	require.NoError(t, err)
	assert.Contains(t, out, "Saved 1 articles from 1 pages")

	out, _, err = run(t, newMain(), "articles", "--author", "alice")
	require.NoError(t, err)
	assert.Contains(t, out, "First thread")

	// archive then export
	out, _, err = run(t, newMain(), append(global, "archive", threadURL)...)
	require.NoError(t, err)
	assert.Contains(t, out, "Archived 2 pages")

	exportDir := filepath.Join(dir, "export")
	out, _, err = run(t, newMain(), "export", threadURL, exportDir)
	require.NoError(t, err)
	assert.Contains(t, out, filepath.Join(exportDir, "101.md"))

	data, err := os.ReadFile(filepath.Join(exportDir, "101.md"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "title: Opening title")
	assert.Contains(t, string(data), "Hello world")
	assert.Contains(t, string(data), "page two reply")
}

func TestMain_Run_ParseLocalFile(t *testing.T) {
	t.Parallel()

	m := newTestMain(t)
	path := filepath.Join(t.TempDir(), "thread.html")
	require.NoError(t, os.WriteFile(path, []byte(firstThreadHTML), 0644))

	out, _, err := run(t, m, "parse", path, "--kind", "thread",
		"--url", "https://www.javbus.com/forum/forum.php?mod=viewthread&tid=101")

	require.NoError(t, err)
	assert.Contains(t, out, "# Opening title")
	assert.Contains(t, out, "## #1 opener @ 2024-03-01 10:00:00")
}

func TestMain_Run_DebugLogsDroppedRecords(t *testing.T) {
	t.Parallel()

	m := newTestMain(t)
	path := filepath.Join(t.TempDir(), "listing.html")
	// Row without a views counter.
	broken := bytes.Replace([]byte(listingHTML), []byte(`<span class="views">120</span>`), nil, 1)
	require.NoError(t, os.WriteFile(path, broken, 0644))

	_, stderr, err := run(t, m, "--debug", "parse", path)

	require.NoError(t, err)
	assert.Contains(t, stderr, "dropped record")
	assert.Contains(t, stderr, "views")
}

func TestMain_Run_InvalidConfig(t *testing.T) {
	t.Parallel()

	m := newTestMain(t)
	require.NoError(t, os.WriteFile(m.ConfigPath, []byte("rps: [\n"), 0644))

	_, stderr, err := run(t, m, "articles")

	require.Error(t, err)
	assert.Contains(t, stderr, "BUSTOP_CONFIG")
}
