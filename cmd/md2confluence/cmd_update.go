/*
Copyright © 2024 paul <paul@denknerd.org>
*/

package main

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/toothbrush/md2confluence/document"
	"golang.org/x/exp/maps"
)

var PageID string

var updateUsage = strings.TrimSpace(`
Replace the body of an existing Confluence page with the rendered contents of FILE.  The page is
the one given with --page-id, or else the one named by confluence-url in FILE's front-matter.
The page keeps its title, and the edit is saved as a minor one so watchers aren't notified.
`)

var updateCmd = &cobra.Command{
	Use:   "update FILE",
	Short: "Update an existing page from a Markdown file",
	Long:  updateUsage,
	Args:  cobra.ExactArgs(1),
	RunE:  updateRun,
}

func init() {
	rootCmd.AddCommand(updateCmd)

	updateCmd.Flags().StringVarP(&PageID, "page-id", "p", "", "id of the page to update (default: from the document's confluence-url)")
}

func updateRun(cmd *cobra.Command, args []string) (err error) {
	headline("Updating " + args[0])

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

	res, err := pub.UpdateExisting(cmd.Context(), doc, PageID)
	if err != nil {
		return fmt.Errorf("update: %w", err)
	}

	fmt.Println(res.URL)
	headline("Done")
	return nil
}

// readDocument loads path and reports what we learnt about it.
func readDocument(path string) (*document.Document, error) {
	doc, err := document.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("cmd: no such document %s", path)
		}
		return nil, fmt.Errorf("cmd: couldn't read document: %w", err)
	}

	if doc.MetaErr != nil {
		logger.Warn("ignoring front-matter", "file", doc.Path, "error", doc.MetaErr)
	}
	keys := maps.Keys(doc.Meta)
	sort.Strings(keys)
	logger.Debug("read document", "file", doc.Path, "meta", strings.Join(keys, ","), "images", len(doc.Images))

	return doc, nil
}
