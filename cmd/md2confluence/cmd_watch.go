/*
Copyright © 2024 paul <paul@denknerd.org>
*/

package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

var (
	WatchPageID string
	WatchDelay  time.Duration
)

var watchUsage = strings.TrimSpace(`
Keep a page in sync with FILE while you edit it.  Every time FILE is saved it's republished, exactly
as "update" would.  Failed publishes are logged and watching carries on.  Stop with Ctrl-C.
`)

var watchCmd = &cobra.Command{
	Use:   "watch FILE",
	Short: "Republish a Markdown file whenever it changes",
	Long:  watchUsage,
	Args:  cobra.ExactArgs(1),
	RunE:  watchRun,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringVarP(&WatchPageID, "page-id", "p", "", "id of the page to update (default: from the document's confluence-url)")
	watchCmd.Flags().DurationVar(&WatchDelay, "delay", 500*time.Millisecond, "wait this long after the last change before publishing")
}

func watchRun(cmd *cobra.Command, args []string) (err error) {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	doc, err := readDocument(args[0])
	if err != nil {
		return err
	}
	target, err := filepath.Abs(doc.Path)
	if err != nil {
		return fmt.Errorf("watch: %w", err)
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

	// Our own front-matter write-back must not trigger another round.
	var published []byte
	publishOnce := func() error {
		doc, err := readDocument(target)
		if err != nil {
			return err
		}
		if published != nil && bytes.Equal(doc.Raw, published) {
			logger.Debug("file unchanged since last publish", "file", target)
			return nil
		}

		res, err := pub.UpdateExisting(ctx, doc, WatchPageID)
		if err != nil {
			return err
		}
		logger.Info("published", "url", res.URL)

		published, err = os.ReadFile(target)
		if err != nil {
			return fmt.Errorf("watch: couldn't re-read %s: %w", target, err)
		}
		return nil
	}

	if err := publishOnce(); err != nil {
		return fmt.Errorf("watch: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: couldn't start watching: %w", err)
	}
	defer watcher.Close()

	// Editors tend to save by renaming a temporary file over the original, which a watch on
	// the file itself would lose.
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("watch: couldn't watch %s: %w", filepath.Dir(target), err)
	}

	headline("Watching " + target)
	return watchLoop(ctx, watcher.Events, watcher.Errors, target, WatchDelay, func() {
		if err := publishOnce(); err != nil {
			logger.Error("publish failed", "file", target, "error", err)
		}
	})
}

// watchLoop calls run once things have been quiet for delay after a change to target.  It
// returns when ctx is done or the watcher shuts down.
func watchLoop(ctx context.Context, events <-chan fsnotify.Event, errs <-chan error, target string, delay time.Duration, run func()) error {
	timer := time.NewTimer(delay)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			logger.Debug("change", "file", ev.Name, "op", ev.Op.String())
			timer.Reset(delay)

		case err, ok := <-errs:
			if !ok {
				return nil
			}
			logger.Warn("watcher", "error", err)

		case <-timer.C:
			run()
		}
	}
}
