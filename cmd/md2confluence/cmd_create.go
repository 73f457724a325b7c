/*
Copyright © 2024 paul <paul@denknerd.org>
*/

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var (
	ParentID  string
	Title     string
	Overwrite bool
)

var createUsage = strings.TrimSpace(`
Publish FILE as a new page called --title, below the page --parent-id.  The new page lives in the
parent's space.

If that space already has a page with this title, or FILE's front-matter already points at a page,
nothing is published unless you pass --overwrite.  With --overwrite the existing page is updated
in place instead.
`)

var createCmd = &cobra.Command{
	Use:   "create FILE",
	Short: "Create a new page from a Markdown file",
	Long:  createUsage,
	Args:  cobra.ExactArgs(1),
	RunE:  createRun,
}

func init() {
	rootCmd.AddCommand(createCmd)

	createCmd.Flags().StringVar(&ParentID, "parent-id", "", "id of the page to create the new page under")
	createCmd.Flags().StringVar(&Title, "title", "", "title of the new page")
	createCmd.Flags().BoolVar(&Overwrite, "overwrite", false, "update the existing page instead of refusing")
}

func createRun(cmd *cobra.Command, args []string) (err error) {
	headline("Publishing " + args[0])

	doc, err := readDocument(args[0])
	if err != nil {
		return err
	}

	c, err := newClients()
	if err != nil {
		return err
	}
	defer c.closeInto(&err)

	pub, err := newPublisher(c)
	if err != nil {
		return err
	}

	// A *publish.ConflictError already says how to get past it.
	res, err := pub.CreatePage(cmd.Context(), doc, ParentID, Title, Overwrite)
	if err != nil {
		return fmt.Errorf("create: %w", err)
	}

	fmt.Println(res.URL)
	headline("Done, page " + string(res.Action))
	return nil
}
