// Package attachments uploads the local images a document references and points the
// rendered markup at the uploaded copies.
package attachments

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/toothbrush/md2confluence/confluence"
	"github.com/toothbrush/md2confluence/document"
	"github.com/toothbrush/md2confluence/markup"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

// Uploader stores a file as an attachment of a page.  *confluence.API satisfies it.
type Uploader interface {
	AttachFile(ctx context.Context, path, pageID string) (*confluence.Content, error)
}

// NotFoundError means an image exists neither next to the document nor relative to the
// working directory.
type NotFoundError struct {
	// Path as written in the document.
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("attachments: image %q not found", e.Path)
}

func (e *NotFoundError) Unwrap() error { return fs.ErrNotExist }

// ResolvePath finds the file an image path refers to: dir/path if it exists, else path
// relative to the working directory.
func ResolvePath(dir, path string) (string, error) {
	if candidate := filepath.Join(dir, path); isFile(candidate) {
		return candidate, nil
	}
	if isFile(path) {
		return path, nil
	}
	return "", &NotFoundError{Path: path}
}

func isFile(p string) bool {
	info, err := os.Stat(p)
	return err == nil && !info.IsDir()
}

type Resolver struct {
	Uploader Uploader
	// Replacer defaults to markup.Literal.
	Replacer markup.Replacer
	Logger   *slog.Logger
	// Progress, when set, receives an upload progress bar.
	Progress io.Writer
}

type upload struct {
	image document.Image
	file  string
}

// Resolve uploads every image to pageID and swaps each image's <img> tag in body for an
// attachment embed.  All paths are resolved before the first upload, so a missing file
// fails the call without touching the page.
func (r *Resolver) Resolve(ctx context.Context, body, dir string, images []document.Image, pageID string) (string, error) {
	log := r.Logger
	if log == nil {
		log = slog.Default()
	}
	replacer := r.Replacer
	if replacer == nil {
		replacer = markup.Literal{}
	}

	if len(images) == 0 {
		return body, nil
	}

	uploads := make([]upload, 0, len(images))
	distinct := map[string]bool{}
	for _, img := range images {
		file, err := ResolvePath(dir, img.Path)
		if err != nil {
			return "", err
		}
		if file != filepath.Join(dir, img.Path) {
			log.Debug("image not next to document, using path relative to working directory", "path", img.Path)
		}
		uploads = append(uploads, upload{image: img, file: file})
		distinct[file] = true
	}

	var (
		p   *mpb.Progress
		bar *mpb.Bar
	)
	if r.Progress != nil {
		p = mpb.New(mpb.WithWidth(64), mpb.WithOutput(r.Progress))
		bar = p.AddBar(int64(len(distinct)),
			mpb.PrependDecorators(
				decor.Name("attachments:", decor.WC{C: decor.DindentRight | decor.DextraSpace}),
			),
			mpb.AppendDecorators(
				decor.CountersNoUnit("(%d/%d) "),
				decor.NewPercentage("%d"),
			),
		)
	}

	uploaded := map[string]bool{}
	for _, u := range uploads {
		if !uploaded[u.file] {
			if _, err := r.Uploader.AttachFile(ctx, u.file, pageID); err != nil {
				if bar != nil {
					bar.Abort(false)
					p.Wait()
				}
				return "", fmt.Errorf("attachments: couldn't upload %s: %w", u.file, err)
			}
			uploaded[u.file] = true
			if bar != nil {
				bar.Increment()
			}
			log.Debug("uploaded attachment", "file", u.file, "page", pageID)
		}

		old, ok := markup.FindImageTag(body, u.image.Path)
		if !ok {
			log.Warn("image tag not found in rendered page", "image", u.image.Path, "alt", u.image.Alt)
			continue
		}
		body, _ = replacer.Replace(body, old, markup.AttachmentTag(filepath.Base(u.file)), 1)
	}

	if p != nil {
		p.Wait()
	}

	return body, nil
}
