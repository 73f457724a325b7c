/*
Copyright © 2024 paul <paul@denknerd.org>
*/

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Output current config",
	Long: `
Is something not working for you?  Have a look whether your config is as you expect.
`,
	Run: func(cmd *cobra.Command, args []string) {
		printConfig(os.Stdout)
	},
}

// Note, you can only talk about persistent flags here.  Command-specific ones won't be
// visible.
func printConfig(w io.Writer) {
	fmt.Fprintf(w, "Dump current config state:\n\n")

	fmt.Fprintf(w, "  Config file: %s\n", ConfigActual)
	fmt.Fprintf(w, "  Verbose: %v\n", Verbose)
	fmt.Fprintf(w, "  Quiet: %v\n", Quiet)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  URL: %s\n", ConfluenceURL)
	fmt.Fprintf(w, "  AuthUsername: %s\n", AuthUsername)
	fmt.Fprintf(w, "  AuthToken: %s\n", redacted(AuthToken))
	fmt.Fprintf(w, "  %s: %s\n", tokenEnv, redacted(os.Getenv(tokenEnv)))
	fmt.Fprintf(w, "  AuthTokenCmd: %v\n", AuthTokenCmd)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  WithVCR: %v\n", WithVCR)
	fmt.Fprintf(w, "  AddMeta: %v\n", AddMeta)
	fmt.Fprintf(w, "  AddInfo: %v\n", AddInfo)
	fmt.Fprintf(w, "  AddLabel: %s\n", AddLabel)
	fmt.Fprintf(w, "  ConvertJira: %v\n", ConvertJira)
}

func redacted(secret string) string {
	if secret == "" {
		return ""
	}
	return "(set)"
}

func init() {
	configCmd.AddCommand(configShowCmd)
}
