package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/fwojciec/bustop"
	"github.com/fwojciec/bustop/crawl"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx    context.Context
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger

	Articles bustop.ArticleService
	Threads  bustop.ThreadService

	ListingParser bustop.ListingParser
	ThreadParser  bustop.ThreadParser

	// Reader and Syncer are only set for commands that fetch pages.
	Reader *crawl.Reader
	Syncer *crawl.Syncer

	NewWriter func(dir string) bustop.ThreadWriter
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	BaseURL  string        `name:"base-url" default:"${base_url}" env:"BUSTOP_BASE_URL" help:"Forum root URL"`
	ForumID  int           `name:"forum-id" default:"${forum_id}" help:"Board whose listing is read"`
	Timeout  time.Duration `default:"${timeout}" help:"Per-request timeout"`
	RPS      float64       `default:"${rps}" help:"Requests per second per host"`
	CacheTTL time.Duration `name:"cache-ttl" default:"${cache_ttl}" help:"How long a fetched page is reused"`
	Browser  bool          `default:"${browser}" help:"Fetch pages with headless Chrome"`
	Debug    bool          `help:"Log every fetch, parse and dropped record"`

	List     ListCmd     `cmd:"" help:"Show one page of the forum listing"`
	Thread   ThreadCmd   `cmd:"" help:"Show and store one page of a thread"`
	Sync     SyncCmd     `cmd:"" help:"Archive listing pages"`
	Archive  ArchiveCmd  `cmd:"" help:"Archive every page of a thread"`
	Export   ExportCmd   `cmd:"" help:"Write a stored thread as markdown"`
	Parse    ParseCmd    `cmd:"" help:"Parse a saved HTML file"`
	Articles ArticlesCmd `cmd:"" help:"List stored articles"`
}

// ListCmd is the "list" subcommand.
type ListCmd struct {
	Page int `short:"p" default:"1" help:"Listing page number"`
}

// ThreadCmd is the "thread" subcommand.
type ThreadCmd struct {
	URL  string `arg:"" help:"Thread URL"`
	Page int    `short:"p" default:"1" help:"Thread page number"`
}

// SyncCmd is the "sync" subcommand.
type SyncCmd struct {
	Pages       int `default:"1" help:"Number of listing pages to read"`
	Concurrency int `short:"c" default:"4" help:"Concurrent fetch limit"`
}

// ArchiveCmd is the "archive" subcommand.
type ArchiveCmd struct {
	URL         string `arg:"" help:"Thread URL"`
	Concurrency int    `short:"c" default:"4" help:"Concurrent fetch limit"`
}

// ExportCmd is the "export" subcommand.
type ExportCmd struct {
	URL string `arg:"" help:"Thread URL"`
	Dir string `arg:"" type:"path" help:"Output directory"`
}

// ParseCmd is the "parse" subcommand.
type ParseCmd struct {
	File string `arg:"" type:"existingfile" help:"HTML file"`
	Kind string `enum:"listing,thread" default:"listing" help:"Page family (listing, thread)"`
	Page int    `short:"p" default:"1" help:"Thread page number the file was saved from"`
	URL  string `help:"Thread URL the file was saved from"`
}

// ArticlesCmd is the "articles" subcommand.
type ArticlesCmd struct {
	Author string `help:"Only articles by this author"`
	Limit  int    `default:"20" help:"Maximum number of articles"`
}
