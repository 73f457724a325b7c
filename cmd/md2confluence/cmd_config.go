/*
Copyright © 2024 paul <paul@denknerd.org>
*/

package main

import (
	"strings"

	"github.com/spf13/cobra"
)

var configUsage = strings.TrimSpace(`
Settings can live in a YAML file (default ` + defaultConfig + `, or wherever MD2CONFLUENCE_CONFIG
points).  Its keys are the long names of the global flags, e.g. "url", "auth-username" or
"auth-token-cmd".  Flags given on the command line win over the file.

These commands show what the settings resolved to, and which file they came from.
`)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect the resolved configuration",
	Long:  configUsage,
}

func init() {
	rootCmd.AddCommand(configCmd)
}
