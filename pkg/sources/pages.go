package sources

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/Sriram-PR/sitemap-gen/pkg/models"
	"github.com/Sriram-PR/sitemap-gen/pkg/utils"
)

// PageSource infers static routes from page files, following file-based routing:
// "pages/blog/index.vue" is "/blog", "pages/users/[id].vue" is "/users/:id".
type PageSource struct {
	dirs       []string
	extensions []string
	log        *logrus.Entry
}

// NewPageSource creates a PageSource scanning dirs for files with the given extensions
func NewPageSource(dirs, extensions []string, log *logrus.Entry) *PageSource {
	return &PageSource{
		dirs:       dirs,
		extensions: lo.Map(extensions, func(ext string, _ int) string { return strings.ToLower(ext) }),
		log:        log,
	}
}

// Dirs returns the directories scanned for pages
func (s *PageSource) Dirs() []string { return s.dirs }

// Pages walks every pages directory and returns the inferred routes in walk order.
// Missing directories are skipped. HTML pages marked noindex are left out.
func (s *PageSource) Pages(ctx context.Context) ([]models.Page, error) {
	var pages []models.Page
	seen := make(map[string]struct{})

	for _, dir := range s.dirs {
		info, err := os.Stat(dir)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				s.log.WithField("dir", dir).Debug("Pages directory not found, skipping")
				continue
			}
			return pages, fmt.Errorf("%w: stat pages dir '%s': %w", utils.ErrFilesystem, dir, err)
		}
		if !info.IsDir() {
			s.log.WithField("dir", dir).Warn("Pages path is not a directory, skipping")
			continue
		}

		walkErr := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			if d.IsDir() {
				return nil
			}
			ext := strings.ToLower(filepath.Ext(path))
			if !lo.Contains(s.extensions, ext) {
				return nil
			}

			rel, err := filepath.Rel(dir, path)
			if err != nil {
				return err
			}
			route := RouteFromFile(rel)

			if ext == ".html" && isNoIndex(path) {
				s.log.WithField("file", path).Debug("Page marked noindex, skipping")
				return nil
			}
			if _, dup := seen[route]; dup {
				return nil
			}
			seen[route] = struct{}{}
			pages = append(pages, models.Page{Path: route, File: path})
			return nil
		})
		if walkErr != nil {
			if errors.Is(walkErr, context.Canceled) || errors.Is(walkErr, context.DeadlineExceeded) {
				return pages, walkErr
			}
			return pages, fmt.Errorf("%w: walking pages dir '%s': %w", utils.ErrFilesystem, dir, walkErr)
		}
	}

	return pages, nil
}

// RouteFromFile converts a page file path, relative to its pages directory, into a route.
// Trailing "index" segments map to their directory and "[param]" / "_param" segments
// become ":param".
func RouteFromFile(rel string) string {
	rel = filepath.ToSlash(rel)
	rel = strings.TrimSuffix(rel, filepath.Ext(rel))

	segments := strings.Split(rel, "/")
	if segments[len(segments)-1] == "index" {
		segments = segments[:len(segments)-1]
	}

	for i, seg := range segments {
		switch {
		case strings.HasPrefix(seg, "[...") && strings.HasSuffix(seg, "]"):
			segments[i] = ":" + seg[4:len(seg)-1] + "*"
		case strings.Contains(seg, "["):
			segments[i] = strings.NewReplacer("[[", ":", "]]", "?", "[", ":", "]", "").Replace(seg)
		case strings.HasPrefix(seg, "_") && len(seg) > 1:
			segments[i] = ":" + seg[1:]
		}
	}

	return "/" + strings.Join(segments, "/")
}

// isNoIndex reports whether an HTML page carries <meta name="robots" content="noindex">.
// Unreadable files are treated as indexable.
func isNoIndex(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	doc, err := goquery.NewDocumentFromReader(f)
	if err != nil {
		return false
	}

	noindex := false
	doc.Find("meta[name]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		name := strings.ToLower(sel.AttrOr("name", ""))
		if name != "robots" {
			return true
		}
		content := strings.ToLower(sel.AttrOr("content", ""))
		noindex = strings.Contains(content, "noindex") || strings.Contains(content, "none")
		return !noindex
	})
	return noindex
}
