package main

import (
	"fmt"

	"github.com/fwojciec/bustop"
	"github.com/fwojciec/bustop/crawl"
)

// progressPrinter reports fetched pages on stdout and failures on stderr.
func progressPrinter(deps *Dependencies) crawl.ProgressFunc {
	return func(event crawl.ProgressEvent) {
		switch event.Type {
		case crawl.ProgressStarted:
			fmt.Fprintf(deps.Stdout, "  Reading %d pages\n", event.Total)
		case crawl.ProgressCompleted:
			fmt.Fprintf(deps.Stdout, "  [%d/%d] %s\n", event.Completed, event.Total, crawl.TruncateURL(event.URL, 60))
		case crawl.ProgressFailed:
			fmt.Fprintf(deps.Stderr, "  skip %s: %v\n", event.URL, event.Error)
		case crawl.ProgressFinished:
			// Summary printed by the command
		}
	}
}

// Run executes the sync command.
func (c *SyncCmd) Run(deps *Dependencies) error {
	if c.Concurrency > 0 {
		deps.Syncer.Concurrency = c.Concurrency
	}

	result, err := deps.Syncer.SyncListings(deps.Ctx, c.Pages, progressPrinter(deps))
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", bustop.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Saved %d articles from %d pages (%d duplicates, %d failed)\n",
		result.Saved, result.Pages, result.Skipped, result.Failed)
	return nil
}

// Run executes the archive command.
func (c *ArchiveCmd) Run(deps *Dependencies) error {
	if c.Concurrency > 0 {
		deps.Syncer.Concurrency = c.Concurrency
	}

	result, err := deps.Syncer.SyncThread(deps.Ctx, c.URL, progressPrinter(deps))
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", bustop.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Archived %d pages, %d talks changed (%d failed)\n",
		result.Pages, result.Saved, result.Failed)
	return nil
}
