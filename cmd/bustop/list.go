package main

import (
	"fmt"

	"github.com/fwojciec/bustop"
)

// Run executes the list command.
func (c *ListCmd) Run(deps *Dependencies) error {
	articles, err := deps.Reader.Listing(deps.Ctx, c.Page)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", bustop.ErrorMessage(err))
		return err
	}

	if len(articles) == 0 {
		fmt.Fprintf(deps.Stdout, "No articles found on page %d.\n", c.Page)
		return nil
	}

	fmt.Fprintln(deps.Stdout, bustop.FormatArticles(articles))
	return nil
}
