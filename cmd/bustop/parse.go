package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fwojciec/bustop"
)

// Run executes the parse command.
func (c *ParseCmd) Run(deps *Dependencies) error {
	data, err := os.ReadFile(c.File)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %v\n", err)
		return err
	}

	out, err := c.parse(deps, string(data))
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", bustop.ErrorMessage(err))
		return err
	}

	fmt.Fprintln(deps.Stdout, out)
	return nil
}

func (c *ParseCmd) parse(deps *Dependencies, html string) (string, error) {
	if c.Kind == "listing" {
		articles, err := deps.ListingParser.ParseListing(html)
		if err != nil {
			return "", err
		}
		return bustop.FormatArticles(articles), nil
	}

	kind := bustop.PageKindOf(c.Page)
	update, err := deps.ThreadParser.ParseThread(html, c.URL, kind)
	if err != nil {
		return "", err
	}
	if kind == bustop.PageFirst {
		return bustop.FormatTalkPage(update.Page), nil
	}

	parts := make([]string, len(update.Talks))
	for i, talk := range update.Talks {
		parts[i] = bustop.FormatTalk(talk)
	}
	return strings.Join(parts, "\n"), nil
}
