// Package fs exports archived threads as markdown files.
package fs

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fwojciec/bustop"
	"gopkg.in/yaml.v3"
)

// ThreadPath returns the file name a thread is exported to, derived from
// the thread id in its href.
func ThreadPath(href string) (string, error) {
	tid := bustop.ThreadID(href)
	if tid == "" {
		return "", bustop.Errorf(bustop.EINVALID, "no thread id in %q", href)
	}
	return tid + ".md", nil
}

// frontMatter is the YAML header of an exported thread.
type frontMatter struct {
	Source   string `yaml:"source"`
	Title    string `yaml:"title"`
	Pages    uint32 `yaml:"pages"`
	Exported string `yaml:"exported"`
}

// FormatThread renders a thread with YAML front matter.
func FormatThread(page *bustop.TalkPage, exported time.Time) (string, error) {
	header, err := yaml.Marshal(frontMatter{
		Source:   page.Href,
		Title:    page.Title,
		Pages:    page.TotalPages,
		Exported: exported.Format("2006-01-02"),
	})
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("---\n")
	b.Write(header)
	b.WriteString("---\n\n")
	b.WriteString(bustop.FormatTalkPage(page))
	return b.String(), nil
}

// Ensure Writer implements bustop.ThreadWriter at compile time.
var _ bustop.ThreadWriter = (*Writer)(nil)

// Writer writes threads as markdown files to a directory.
type Writer struct {
	baseDir string
	now     func() time.Time
}

// NewWriter creates a new Writer that writes to the given base directory.
func NewWriter(baseDir string) *Writer {
	return &Writer{baseDir: baseDir, now: time.Now}
}

// WriteThread writes the thread to disk and returns the file path. The
// file is written under a temporary name and renamed into place, so a
// reader never sees a partial export.
func (w *Writer) WriteThread(ctx context.Context, page *bustop.TalkPage) (string, error) {
	if page == nil {
		return "", bustop.Errorf(bustop.EINVALID, "thread required")
	}

	relPath, err := ThreadPath(page.Href)
	if err != nil {
		return "", err
	}
	content, err := FormatThread(page, w.now())
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(w.baseDir, 0755); err != nil {
		return "", err
	}

	fullPath := filepath.Join(w.baseDir, relPath)
	tmpPath := fullPath + ".tmp"
	if err := os.WriteFile(tmpPath, []byte(content), 0644); err != nil {
		return "", err
	}
	if err := os.Rename(tmpPath, fullPath); err != nil {
		_ = os.Remove(tmpPath)
		return "", err
	}

	return fullPath, nil
}
