/*
Copyright © 2024 paul <paul@denknerd.org>
*/

package main

import (
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

// Version is set at build time with -ldflags "-X main.Version=...", or else taken from the
// module version "go install" records.
var Version = "unknown"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Args:  cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		info, ok := debug.ReadBuildInfo()
		if !ok {
			return fmt.Errorf("version: could not read build info")
		}
		fmt.Printf("md2confluence version %s (%s)\n", describeBuild(info), info.GoVersion)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// describeBuild condenses the module version and VCS stamps into e.g. "v1.2.0" or
// "rev-abc123-dirty, 2024-03-01".
func describeBuild(info *debug.BuildInfo) string {
	version := Version
	if version == "unknown" && info.Main.Version != "" && info.Main.Version != "(devel)" {
		version = info.Main.Version
	}

	var revision string
	var committed time.Time
	dirty := false
	for _, kv := range info.Settings {
		switch kv.Key {
		case "vcs.revision":
			revision = kv.Value
		case "vcs.time":
			committed, _ = time.Parse(time.RFC3339, kv.Value)
		case "vcs.modified":
			dirty = kv.Value == "true"
		}
	}

	parts := []string{}
	if version != "unknown" {
		parts = append(parts, version)
	}
	if revision != "" {
		parts = append(parts, "rev", revision)
		if dirty {
			parts = append(parts, "dirty")
		}
	}
	if len(parts) == 0 {
		return "devel"
	}

	desc := strings.Join(parts, "-")
	if !committed.IsZero() {
		desc += ", " + committed.Format(time.DateOnly)
	}
	return desc
}
