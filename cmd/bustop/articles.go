package main

import (
	"fmt"

	"github.com/fwojciec/bustop"
)

// Run executes the articles command.
func (c *ArticlesCmd) Run(deps *Dependencies) error {
	filter := bustop.ArticleFilter{Limit: c.Limit}
	if c.Author != "" {
		filter.Author = &c.Author
	}

	found, err := deps.Articles.FindArticles(deps.Ctx, filter)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", bustop.ErrorMessage(err))
		return err
	}

	if len(found) == 0 {
		fmt.Fprintln(deps.Stdout, "No articles stored. Use 'bustop sync' to archive some.")
		return nil
	}

	articles := make([]bustop.Article, len(found))
	for i, a := range found {
		articles[i] = *a
	}
	fmt.Fprintln(deps.Stdout, bustop.FormatArticles(articles))
	return nil
}
