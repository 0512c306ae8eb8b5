// Package sitemap turns configured URLs, inferred pages and a remote URL list into the
// ordered set of sitemap entries for one site.
package sitemap

import (
	"context"
	"os"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/Sriram-PR/sitemap-gen/pkg/config"
	"github.com/Sriram-PR/sitemap-gen/pkg/filter"
	"github.com/Sriram-PR/sitemap-gen/pkg/merge"
	"github.com/Sriram-PR/sitemap-gen/pkg/models"
	"github.com/Sriram-PR/sitemap-gen/pkg/normalize"
	"github.com/Sriram-PR/sitemap-gen/pkg/parse"
	"github.com/Sriram-PR/sitemap-gen/pkg/resolve"
	"github.com/Sriram-PR/sitemap-gen/pkg/routerules"
	"github.com/Sriram-PR/sitemap-gen/pkg/sources"
	"github.com/Sriram-PR/sitemap-gen/pkg/utils"
)

// PageLister discovers static page routes
type PageLister interface {
	Pages(ctx context.Context) ([]models.Page, error)
}

// LazyFetcher fetches the remote URL list. It never fails; see sources.Result.
type LazyFetcher interface {
	Fetch(ctx context.Context) sources.Result
}

// Deps are the collaborators a Generator pulls entries and rules from.
// Any of them may be nil.
type Deps struct {
	Pages      PageLister
	Lazy       LazyFetcher
	RouteRules routerules.Lookup
	Robots     *filter.RobotsFilter
	Now        func() time.Time
}

// Generator produces the entries for one site. It holds no state between passes, so
// concurrent calls to Generate are independent.
type Generator struct {
	cfg         config.SiteConfig
	deps        Deps
	urlFilter   *filter.Filter
	resolvers   resolve.SiteResolvers
	inferPages  bool
	autoLastmod bool
	log         *logrus.Entry
}

// New creates a Generator for a validated site configuration
func New(siteCfg config.SiteConfig, appCfg config.AppConfig, deps Deps, log *logrus.Entry) (*Generator, error) {
	urlFilter, err := filter.New(siteCfg.Include, siteCfg.Exclude)
	if err != nil {
		return nil, err
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Generator{
		cfg:         siteCfg,
		deps:        deps,
		urlFilter:   urlFilter,
		resolvers:   resolve.NewSiteResolvers(siteCfg.SiteURL, siteCfg.BaseURL, siteCfg.TrailingSlash),
		inferPages:  config.GetEffectiveInferStaticPages(siteCfg, appCfg),
		autoLastmod: config.GetEffectiveAutoLastmod(siteCfg, appCfg),
		log:         log,
	}, nil
}

// Resolvers returns the resolvers used by Build
func (g *Generator) Resolvers() resolve.SiteResolvers { return g.resolvers }

// Generate collects every source and returns the site's entries, shortest loc first.
// Source failures only reduce the output; the sole error is ctx's when it ends.
func (g *Generator) Generate(ctx context.Context) ([]models.Entry, error) {
	start := g.deps.Now()
	log := g.log.WithField("pass_id", uuid.NewString())

	lazy, pages := g.collect(ctx, log)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pageEntries := g.pageEntries(pages, log)

	all := make([]models.RawEntry, 0, len(lazy)+len(g.cfg.URLs)+len(pageEntries))
	all = append(all, lazy...)
	all = append(all, g.cfg.URLs...)
	all = append(all, pageEntries...)

	prepared := g.preNormalise(all, start, log)

	entries := make([]models.Entry, 0, len(prepared))
	dropped := 0
	for _, e := range prepared {
		entry, keep := g.applyRouteRules(e)
		if !keep {
			dropped++
			continue
		}
		entries = append(entries, g.postNormalise(entry))
	}

	// Plain loc again, first occurrence wins: an earlier source is never
	// overridden by a later duplicate at this stage.
	entries = merge.FirstWinsDedup(entries, func(e models.Entry) string { return e.Loc })

	log.WithFields(logrus.Fields{
		"lazy":             len(lazy),
		"config":           len(g.cfg.URLs),
		"pages":            len(pageEntries),
		"route_rule_drops": dropped,
		"entries":          len(entries),
		"duration":         g.deps.Now().Sub(start),
	}).Info("Sitemap entries generated")

	return entries, nil
}

// Build generates entries and runs them through final normalisation: URLs resolved
// against the site, sub-lists merged and entries merged on their key.
func (g *Generator) Build(ctx context.Context) ([]models.Entry, error) {
	entries, err := g.Generate(ctx)
	if err != nil {
		return nil, err
	}
	raw := lo.Map(entries, func(e models.Entry, _ int) models.RawEntry { return e.Raw() })
	return normalize.NormalizeEntries(raw, g.resolvers), nil
}

// collect runs the remote fetch and page discovery concurrently.
// Both are best effort and never fail the pass.
func (g *Generator) collect(ctx context.Context, log *logrus.Entry) ([]models.RawEntry, []models.Page) {
	var (
		lazy  []models.RawEntry
		pages []models.Page
	)

	eg, egCtx := errgroup.WithContext(ctx)
	if g.cfg.HasAPIRoutesURL && g.deps.Lazy != nil {
		eg.Go(func() error {
			lazy = g.deps.Lazy.Fetch(egCtx).Values()
			return nil
		})
	}
	if g.inferPages && g.deps.Pages != nil {
		eg.Go(func() error {
			found, err := g.deps.Pages.Pages(egCtx)
			if err != nil {
				log.WithFields(logrus.Fields{
					"error_type": utils.CategorizeError(err),
					"error":      err,
				}).Warn("Page discovery incomplete")
			}
			pages = found
			return nil
		})
	}
	_ = eg.Wait()

	return lazy, pages
}

// pageEntries turns discovered pages into entries, skipping parametrised routes
// and routes the include/exclude filter rejects
func (g *Generator) pageEntries(pages []models.Page, log *logrus.Entry) []models.RawEntry {
	entries := make([]models.RawEntry, 0, len(pages))
	for _, page := range pages {
		if page.HasParams() {
			continue
		}
		if !g.urlFilter.Match(page.Path) {
			continue
		}
		entry := models.RawPath(page.Path)
		if g.autoLastmod && page.File != "" {
			if info, err := os.Stat(page.File); err == nil {
				entry.Lastmod = models.DateFromTime(info.ModTime())
			} else {
				log.WithField("file", page.File).Debugf("Cannot stat page file: %v", err)
			}
		}
		entries = append(entries, entry)
	}
	return entries
}

// preNormalise applies defaults and the loc policy, dedups, filters, orders
// and canonicalises dates
func (g *Generator) preNormalise(all []models.RawEntry, now time.Time, log *logrus.Entry) []models.RawEntry {
	defaults := g.cfg.Defaults
	if g.autoLastmod && defaults.Lastmod.IsZero() {
		defaults.Lastmod = models.DateFromTime(now)
	}

	prepared := make([]models.RawEntry, 0, len(all))
	for _, raw := range all {
		loc := raw.Location()
		if loc == "" {
			log.Debug("Skipping entry without loc")
			continue
		}
		e := defaults.Overlay(raw)
		e.Loc = g.fixLoc(loc)
		prepared = append(prepared, e)
	}

	// Plain loc, first occurrence wins: lazy and configured URLs are not
	// replaced by a duplicate inferred page.
	prepared = merge.FirstWinsDedup(prepared, func(e models.RawEntry) string { return e.Loc })

	prepared = lo.Filter(prepared, func(e models.RawEntry, _ int) bool {
		return g.urlFilter.Match(e.Loc) && g.deps.Robots.Allowed(e.Loc)
	})

	sort.SliceStable(prepared, func(i, j int) bool {
		return len(prepared[i].Loc) < len(prepared[j].Loc)
	})

	for i := range prepared {
		prepared[i].URL = ""
		prepared[i].Lastmod = normalizeLastmod(prepared[i].Lastmod)
	}
	return prepared
}

// fixLoc encodes the URI, applies the trailing-slash policy and prefixes the base path
func (g *Generator) fixLoc(u string) string {
	if g.cfg.TrailingSlash {
		u = parse.WithTrailingSlash(u)
	} else {
		u = parse.WithoutTrailingSlash(u)
	}
	return parse.WithBase(parse.EncodeURI(u), g.cfg.BaseURL)
}

// applyRouteRules drops the entry if its route is not indexed, otherwise lays the
// rule's sitemap fields over it (rule wins). Lookup uses the loc without trailing slash.
func (g *Generator) applyRouteRules(e models.RawEntry) (models.Entry, bool) {
	if g.deps.RouteRules != nil {
		rule := g.deps.RouteRules.ForPath(parse.WithoutTrailingSlash(e.Loc))
		if rule.Excluded() {
			return models.Entry{}, false
		}
		if rule.Sitemap != nil {
			override := *rule.Sitemap
			if override.Loc == "" {
				override.Loc = override.URL
			}
			override.URL = ""
			override.Lastmod = normalizeLastmod(override.Lastmod)
			e = e.Overlay(override)
		}
	}
	return toEntry(e), true
}

// postNormalise prefixes the site URL
func (g *Generator) postNormalise(e models.Entry) models.Entry {
	e.Loc = parse.WithBase(e.Loc, g.cfg.SiteURL)
	return e
}

// normalizeLastmod returns the canonical form of d, or the zero Date when d is
// absent or unparseable
func normalizeLastmod(d models.Date) models.Date {
	if d.IsZero() {
		return d
	}
	normalized, ok := parse.NormalizeDate(d)
	if !ok {
		return models.Date{}
	}
	return models.DateFromString(normalized)
}

func toEntry(e models.RawEntry) models.Entry {
	return models.Entry{
		Loc:          e.Loc,
		Lastmod:      e.Lastmod.Raw(),
		Changefreq:   e.Changefreq,
		Priority:     e.Priority,
		Alternatives: e.Alternatives,
		Images:       e.Images,
		Videos:       e.Videos,
		Sitemap:      e.Sitemap,
	}
}
