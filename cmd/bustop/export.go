package main

import (
	"fmt"

	"github.com/fwojciec/bustop"
)

// Run executes the export command.
func (c *ExportCmd) Run(deps *Dependencies) error {
	page, err := deps.Threads.FindThread(deps.Ctx, c.URL)
	if bustop.ErrorCode(err) == bustop.ENOTFOUND {
		fmt.Fprintf(deps.Stderr, "error: thread %q not stored. Use 'bustop archive %s' first.\n", c.URL, c.URL)
		return err
	}
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", bustop.ErrorMessage(err))
		return err
	}

	path, err := deps.NewWriter(c.Dir).WriteThread(deps.Ctx, page)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", bustop.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Wrote %s\n", path)
	return nil
}
