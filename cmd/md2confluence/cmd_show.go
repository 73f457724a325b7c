/*
Copyright © 2024 paul <paul@denknerd.org>
*/

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/toothbrush/md2confluence/render"
)

var ShowPageID string

var showUsage = strings.TrimSpace(`
Print a Confluence page as Markdown, with its title, version and URL as front-matter.  Name the
page with --page-id (and --url), or pass a FILE whose confluence-url points at it.

The output can be saved and published back with "update".
`)

var showCmd = &cobra.Command{
	Use:   "show [FILE]",
	Short: "Print a page as Markdown",
	Long:  showUsage,
	Args:  cobra.MaximumNArgs(1),
	RunE:  showRun,
}

func init() {
	rootCmd.AddCommand(showCmd)

	showCmd.Flags().StringVarP(&ShowPageID, "page-id", "p", "", "id of the page to show")
}

func showRun(cmd *cobra.Command, args []string) (err error) {
	host, err := hostOf(ConfluenceURL)
	if err != nil {
		return err
	}
	pageID := ShowPageID

	if len(args) == 1 {
		doc, err := readDocument(args[0])
		if err != nil {
			return err
		}
		if ref, ok := doc.PageReference(); ok {
			if host == "" {
				host = ref.Host
			}
			if pageID == "" {
				pageID = ref.PageID
			}
		}
	}
	if pageID == "" {
		return fmt.Errorf("show: no page id, pass --page-id or a file with confluence-url")
	}
	if host == "" {
		return fmt.Errorf("show: no url, pass --url")
	}

	c, err := newClients()
	if err != nil {
		return err
	}
	defer c.closeInto(&err)

	api, err := c.confluence(host)
	if err != nil {
		return err
	}

	page, err := api.PageBody(cmd.Context(), pageID)
	if err != nil {
		return fmt.Errorf("show: couldn't fetch page %s: %w", pageID, err)
	}

	header := render.PreviewHeader{Title: page.Title, URL: page.Link()}
	if page.Version != nil {
		header.Version = page.Version.Number
	}
	storage := ""
	if page.Body != nil {
		storage = page.Body.Storage.Value
	}

	out, err := render.Preview(header, storage, api.BaseURI)
	if err != nil {
		return fmt.Errorf("show: %w", err)
	}

	fmt.Print(out)
	return nil
}
