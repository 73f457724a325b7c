/*
Copyright © 2024 paul <paul@denknerd.org>
*/

package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/toothbrush/md2confluence/confluence"
)

var whoamiUsage = strings.TrimSpace(`
Check that your credentials work before publishing anything: print who Confluence thinks you are.
Needs --url.
`)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show which Confluence user the credentials belong to",
	Long:  whoamiUsage,
	Args:  cobra.ExactArgs(0),
	RunE:  whoamiRun,
}

func init() {
	rootCmd.AddCommand(whoamiCmd)
}

func whoamiRun(cmd *cobra.Command, args []string) (err error) {
	host, err := hostOf(ConfluenceURL)
	if err != nil {
		return err
	}
	if host == "" {
		return fmt.Errorf("whoami: no url, pass --url")
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

	user, err := api.CurrentUser(cmd.Context())
	if err != nil {
		return fmt.Errorf("whoami: %w", err)
	}
	// Confluence answers for anonymous visitors too, rather than refusing.
	if user.Type == "anonymous" {
		return fmt.Errorf("whoami: %s doesn't recognise these credentials", host)
	}

	printUser(cmd.OutOrStdout(), host, user)
	return nil
}

func printUser(w io.Writer, host string, u *confluence.User) {
	name := u.DisplayName
	if name == "" {
		name = u.AccountID
	}
	if u.Email != "" {
		name += " <" + u.Email + ">"
	}
	fmt.Fprintf(w, "%s: %s\n", host, name)
}
