/*
Copyright © 2024 paul <paul@denknerd.org>
*/

package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/toothbrush/md2confluence/confluence"
	"golang.org/x/exp/maps"
)

var IncludePersonal bool

var listSpacesUsage = strings.TrimSpace(`
If you want to find out what spaces your Confluence wiki has, use this command.  Needs --url.
`)

var listSpacesCmd = &cobra.Command{
	Use:   "spaces",
	Short: "Print list of spaces",
	Long:  listSpacesUsage,
	Args:  cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		host, err := hostOf(ConfluenceURL)
		if err != nil {
			return err
		}
		if host == "" {
			return fmt.Errorf("list: no url, pass --url")
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

		logger.Info("listing Confluence spaces", "host", host)
		spaces, err := api.ListAllSpaces(cmd.Context(), IncludePersonal)
		if err != nil {
			return fmt.Errorf("list: couldn't list Confluence spaces: %w", err)
		}
		logger.Info("found spaces", "count", len(spaces), "host", host)

		printSpaces(os.Stdout, spaces)
		return nil
	},
}

func printSpaces(w io.Writer, spaces map[string]confluence.Space) {
	spaceKeys := maps.Keys(spaces)
	sort.Strings(spaceKeys)

	fmt.Fprintf(w, "spaces:\n")
	for _, spaceKey := range spaceKeys {
		fmt.Fprintf(w, "  - %s: %s\n", spaceKey, spaces[spaceKey].Name)
	}
}

func init() {
	listCmd.AddCommand(listSpacesCmd)

	listSpacesCmd.Flags().BoolVar(&IncludePersonal, "include-personal-spaces", false, "list individuals' personal spaces")
}
