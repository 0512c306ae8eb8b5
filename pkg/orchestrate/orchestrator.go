// Package orchestrate runs sitemap generation for several sites in parallel.
package orchestrate

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"

	"github.com/Sriram-PR/sitemap-gen/pkg/config"
	"github.com/Sriram-PR/sitemap-gen/pkg/utils"
)

// DefaultMaxParallel bounds concurrent site passes when no limit is given
const DefaultMaxParallel = 4

// SiteRunner generates and writes one site, returning the number of entries produced
type SiteRunner func(ctx context.Context, siteKey string) (int, error)

// SiteResult contains the result of generating a single site
type SiteResult struct {
	SiteKey  string
	Success  bool
	Error    error
	Entries  int
	Duration time.Duration
}

// Orchestrator runs a SiteRunner for each site, at most maxParallel at a time
type Orchestrator struct {
	siteKeys []string
	run      SiteRunner
	sem      *semaphore.Weighted
	log      *logrus.Entry
}

// NewOrchestrator creates an orchestrator. maxParallel <= 0 uses DefaultMaxParallel.
func NewOrchestrator(siteKeys []string, maxParallel int, run SiteRunner, log *logrus.Entry) *Orchestrator {
	if maxParallel <= 0 {
		maxParallel = DefaultMaxParallel
	}
	return &Orchestrator{
		siteKeys: siteKeys,
		run:      run,
		sem:      semaphore.NewWeighted(int64(maxParallel)),
		log:      log,
	}
}

// Run generates every site and returns the results sorted by site key.
// A failing site does not stop the others.
func (o *Orchestrator) Run(ctx context.Context) []SiteResult {
	start := time.Now()
	o.log.Infof("Generating %d sites: %v", len(o.siteKeys), o.siteKeys)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		results = make([]SiteResult, 0, len(o.siteKeys))
	)

	for _, siteKey := range o.siteKeys {
		wg.Add(1)
		go func(key string) {
			defer wg.Done()
			result := o.runSite(ctx, key)
			mu.Lock()
			results = append(results, result)
			mu.Unlock()
		}(siteKey)
	}
	wg.Wait()

	sort.Slice(results, func(i, j int) bool { return results[i].SiteKey < results[j].SiteKey })
	o.logSummary(results, time.Since(start))
	return results
}

func (o *Orchestrator) runSite(ctx context.Context, siteKey string) SiteResult {
	result := SiteResult{SiteKey: siteKey}

	if err := o.sem.Acquire(ctx, 1); err != nil {
		result.Error = err
		return result
	}
	defer o.sem.Release(1)

	start := time.Now()
	entries, err := o.run(ctx, siteKey)
	result.Duration = time.Since(start)
	result.Entries = entries
	if err != nil {
		result.Error = err
		o.log.WithFields(logrus.Fields{
			"site":       siteKey,
			"error_type": utils.CategorizeError(err),
		}).Errorf("Generation failed: %v", err)
		return result
	}
	result.Success = true
	return result
}

func (o *Orchestrator) logSummary(results []SiteResult, total time.Duration) {
	successCount, totalEntries := 0, 0
	for _, r := range results {
		status := "SUCCESS"
		if r.Success {
			successCount++
		} else {
			status = "FAILED"
		}
		totalEntries += r.Entries
		o.log.Infof("  %s: %s - %d entries in %v", r.SiteKey, status, r.Entries, r.Duration.Round(time.Millisecond))
	}
	o.log.Infof("Total: %d sites (%d success, %d failed), %d entries in %v",
		len(results), successCount, len(results)-successCount, totalEntries, total.Round(time.Millisecond))
}

// ValidateSiteKeys checks that all provided site keys exist in the config
func ValidateSiteKeys(appCfg *config.AppConfig, siteKeys []string) error {
	for _, key := range siteKeys {
		if _, exists := appCfg.Sites[key]; !exists {
			return fmt.Errorf("site '%s' not found. Available sites: %v", key, GetAllSiteKeys(appCfg))
		}
	}
	return nil
}

// GetAllSiteKeys returns all site keys from the config, sorted
func GetAllSiteKeys(appCfg *config.AppConfig) []string {
	keys := make([]string, 0, len(appCfg.Sites))
	for k := range appCfg.Sites {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
