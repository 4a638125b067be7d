package slog

import (
	"log/slog"
	"time"

	"github.com/fwojciec/bustop"
)

// Ensure the logging parsers implement their interfaces.
var (
	_ bustop.ListingParser = (*LoggingListingParser)(nil)
	_ bustop.ThreadParser  = (*LoggingThreadParser)(nil)
)

// LoggingListingParser wraps a ListingParser with debug logging.
type LoggingListingParser struct {
	next   bustop.ListingParser
	logger *slog.Logger
}

// NewLoggingListingParser creates a new LoggingListingParser.
func NewLoggingListingParser(next bustop.ListingParser, logger *slog.Logger) *LoggingListingParser {
	return &LoggingListingParser{next: next, logger: logger}
}

// ParseListing delegates to the wrapped parser and logs the result.
func (p *LoggingListingParser) ParseListing(html string) (articles []bustop.Article, err error) {
	defer func(begin time.Time) {
		p.logger.Debug("parse listing",
			"bytes", len(html),
			"count", len(articles),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return p.next.ParseListing(html)
}

// LoggingThreadParser wraps a ThreadParser with debug logging. Floor
// numbers that fail to increase are logged at WARN.
type LoggingThreadParser struct {
	next   bustop.ThreadParser
	logger *slog.Logger
}

// NewLoggingThreadParser creates a new LoggingThreadParser.
func NewLoggingThreadParser(next bustop.ThreadParser, logger *slog.Logger) *LoggingThreadParser {
	return &LoggingThreadParser{next: next, logger: logger}
}

// ParseThread delegates to the wrapped parser and logs the result.
func (p *LoggingThreadParser) ParseThread(html, href string, kind bustop.PageKind) (update *bustop.ThreadUpdate, err error) {
	defer func(begin time.Time) {
		var talks []bustop.Talk
		if update != nil {
			talks = update.Talks
			if update.Page != nil {
				talks = update.Page.Talks
			}
		}
		p.logger.Debug("parse thread",
			"url", href,
			"kind", kind.String(),
			"count", len(talks),
			"duration", time.Since(begin),
			"err", err,
		)
		for _, a := range bustop.FloorAnomalies(talks) {
			p.logger.Warn("floor out of order",
				"url", href,
				"index", a.Index,
				"floor", a.Floor,
				"previous", a.Previous,
			)
		}
	}(time.Now())
	return p.next.ParseThread(html, href, kind)
}

// DropLogger returns a callback for parsers that logs each record left
// out of a result.
func DropLogger(logger *slog.Logger) func(record, field string) {
	return func(record, field string) {
		logger.Debug("dropped record", "record", record, "missing", field)
	}
}
