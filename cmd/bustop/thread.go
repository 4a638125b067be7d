package main

import (
	"fmt"

	"github.com/fwojciec/bustop"
)

// Run executes the thread command. A continuation page needs the thread's
// first page for its title and page count, so that page is read from
// storage or fetched when it was never stored.
func (c *ThreadCmd) Run(deps *Dependencies) error {
	page, err := c.run(deps)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", bustop.ErrorMessage(err))
		return err
	}

	fmt.Fprint(deps.Stdout, bustop.FormatTalkPage(page))
	return nil
}

func (c *ThreadCmd) run(deps *Dependencies) (*bustop.TalkPage, error) {
	if c.Page <= 1 {
		return c.first(deps)
	}

	current, err := deps.Threads.FindThread(deps.Ctx, c.URL)
	if bustop.ErrorCode(err) == bustop.ENOTFOUND {
		current, err = c.first(deps)
	}
	if err != nil {
		return nil, err
	}
	if uint32(c.Page) > current.TotalPages {
		return nil, bustop.Errorf(bustop.EINVALID, "thread has %d pages", current.TotalPages)
	}

	update, err := deps.Reader.Thread(deps.Ctx, c.URL, c.Page)
	if err != nil {
		return nil, err
	}
	next, err := update.Apply(current)
	if err != nil {
		return nil, err
	}
	if _, err := deps.Threads.AppendTalks(deps.Ctx, c.URL, c.Page, update.Talks); err != nil {
		return nil, err
	}
	return next, nil
}

// first fetches and stores the first page of the thread.
func (c *ThreadCmd) first(deps *Dependencies) (*bustop.TalkPage, error) {
	update, err := deps.Reader.Thread(deps.Ctx, c.URL, 1)
	if err != nil {
		return nil, err
	}
	page, err := update.Apply(nil)
	if err != nil {
		return nil, err
	}
	if err := deps.Threads.ReplaceThread(deps.Ctx, page); err != nil {
		return nil, err
	}
	return page, nil
}
