package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/Sriram-PR/sitemap-gen/pkg/config"
	"github.com/Sriram-PR/sitemap-gen/pkg/fetch"
	"github.com/Sriram-PR/sitemap-gen/pkg/filter"
	applog "github.com/Sriram-PR/sitemap-gen/pkg/log"
	"github.com/Sriram-PR/sitemap-gen/pkg/models"
	"github.com/Sriram-PR/sitemap-gen/pkg/orchestrate"
	"github.com/Sriram-PR/sitemap-gen/pkg/routerules"
	"github.com/Sriram-PR/sitemap-gen/pkg/sitemap"
	"github.com/Sriram-PR/sitemap-gen/pkg/sources"
	"github.com/Sriram-PR/sitemap-gen/pkg/watch"
)

const version = "0.4.0"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "generate":
		runGenerate(os.Args[2:])
	case "watch":
		runWatch(os.Args[2:])
	case "validate":
		runValidate(os.Args[2:])
	case "list-sites":
		runListSites(os.Args[2:])
	case "version":
		fmt.Printf("sitemap-gen %s\n", version)
	case "-h", "--help", "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	printUsageTo(os.Stdout)
}

// printUsageTo writes usage information to the provided writer.
func printUsageTo(w io.Writer) {
	fmt.Fprintln(w, `sitemap-gen - Sitemap entry generator

Usage:
  sitemap-gen <command> [options]

Commands:
  generate    Generate the sitemap entries for a site
  watch       Regenerate on page changes or on a schedule
  validate    Validate configuration file
  list-sites  List available site keys
  version     Show version info

Run 'sitemap-gen <command> -h' for command-specific help.`)
}

// loadConfig loads and parses the config file
func loadConfig(path string) (*config.AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg config.AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

// loadSite loads the config, validates it and returns the named site with its key.
// Relative paths in the site config are resolved against the config file's directory.
func loadSite(configPath, siteKey string, log *logrus.Logger) (*config.AppConfig, string, config.SiteConfig, error) {
	appCfg, err := loadConfig(configPath)
	if err != nil {
		return nil, "", config.SiteConfig{}, err
	}
	appWarnings, _ := appCfg.Validate()
	for _, w := range appWarnings {
		log.Warn(w)
	}

	if siteKey == "" {
		if len(appCfg.Sites) != 1 {
			return nil, "", config.SiteConfig{}, fmt.Errorf("-site is required when the config has %d sites", len(appCfg.Sites))
		}
		for k := range appCfg.Sites {
			siteKey = k
		}
	}
	siteCfg, ok := appCfg.Sites[siteKey]
	if !ok {
		return nil, "", config.SiteConfig{}, fmt.Errorf("site '%s' not found in config", siteKey)
	}
	siteWarnings, err := siteCfg.Validate()
	if err != nil {
		return nil, "", config.SiteConfig{}, fmt.Errorf("site '%s': %w", siteKey, err)
	}
	for _, w := range siteWarnings {
		log.WithField("site", siteKey).Warn(w)
	}

	baseDir := filepath.Dir(configPath)
	for i, dir := range siteCfg.PagesDirs {
		siteCfg.PagesDirs[i] = relativeTo(baseDir, dir)
	}
	if siteCfg.RobotsTxt != "" {
		siteCfg.RobotsTxt = relativeTo(baseDir, siteCfg.RobotsTxt)
	}
	return appCfg, siteKey, siteCfg, nil
}

func relativeTo(baseDir, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}

// buildGenerator wires the site's sources, route rules and robots filter
func buildGenerator(appCfg *config.AppConfig, siteKey string, siteCfg config.SiteConfig, logger *logrus.Logger) (*sitemap.Generator, error) {
	deps := sitemap.Deps{
		Pages:      sources.NewPageSource(siteCfg.PagesDirs, siteCfg.Extensions, applog.ForSite(logger, siteKey, "pages")),
		RouteRules: routerules.NewTable(siteCfg.RouteRules),
	}

	if siteCfg.HasAPIRoutesURL {
		fetchLog := applog.ForSite(logger, siteKey, "fetch")
		client := fetch.NewClient(appCfg.HTTPClientSettings, fetchLog)
		fetcher := fetch.NewFetcher(client, fetch.PolicyFromConfig(*appCfg), appCfg.DefaultUserAgent, fetchLog)
		deps.Lazy = sources.NewLazySource(fetcher, siteCfg.SiteURL, siteCfg.APIURLsEndpoint,
			appCfg.LazyFetchTimeout, applog.ForSite(logger, siteKey, "lazy"))
	}

	if siteCfg.RobotsTxt != "" {
		robots, err := filter.LoadRobotsFilter(siteCfg.RobotsTxt, config.GetEffectiveRobotsUserAgent(siteCfg, *appCfg))
		if err != nil {
			return nil, err
		}
		deps.Robots = robots
	}

	return sitemap.New(siteCfg, *appCfg, deps, applog.ForSite(logger, siteKey, "generator"))
}

// writeEntries encodes entries as JSON or YAML to path ("-" for w)
func writeEntries(entries []models.Entry, format, path string, w io.Writer) error {
	var (
		data []byte
		err  error
	)
	switch strings.ToLower(format) {
	case "", "json":
		data, err = json.MarshalIndent(entries, "", "  ")
		data = append(data, '\n')
	case "yaml", "yml":
		data, err = yaml.Marshal(entries)
	default:
		return fmt.Errorf("unknown output format %q (want json or yaml)", format)
	}
	if err != nil {
		return fmt.Errorf("encode entries: %w", err)
	}

	if path == "" || path == "-" {
		_, err = w.Write(data)
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	return os.WriteFile(path, data, 0o644)
}

// generateOptions holds the flags shared by generate and watch
type generateOptions struct {
	configPath string
	siteKey    string
	output     string
	format     string
	raw        bool
}

// multiSiteOptions holds the extra flags of a multi-site generate run
type multiSiteOptions struct {
	sites     string
	allSites  bool
	outputDir string
	parallel  int
}

func (o *generateOptions) register(fs *flag.FlagSet) {
	fs.StringVar(&o.configPath, "config", "sitemap.yaml", "Path to config file")
	fs.StringVar(&o.siteKey, "site", "", "Site key from config (optional with a single site)")
	fs.StringVar(&o.output, "output", "-", "Output file, '-' for stdout")
	fs.StringVar(&o.format, "format", "json", "Output format (json, yaml)")
	fs.BoolVar(&o.raw, "raw", false, "Skip final URL resolution and key merge")
}

// runGenerate handles the generate subcommand
func runGenerate(args []string) {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	var opts generateOptions
	opts.register(fs)
	var multi multiSiteOptions
	fs.StringVar(&multi.sites, "sites", "", "Comma-separated site keys to generate in parallel")
	fs.BoolVar(&multi.allSites, "all-sites", false, "Generate all configured sites in parallel")
	fs.StringVar(&multi.outputDir, "output-dir", "sitemaps", "Output directory for multi-site runs (<site>.<format>)")
	fs.IntVar(&multi.parallel, "parallel", orchestrate.DefaultMaxParallel, "Maximum sites generated at once")
	logLevel := fs.String("loglevel", "info", "Log level (debug, info, warn, error)")
	logFormat := fs.String("logformat", "text", "Log format (text, json)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: sitemap-gen generate [options]\n\nOptions:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  sitemap-gen generate -site docs -output public/sitemap-urls.json\n")
		fmt.Fprintf(os.Stderr, "  sitemap-gen generate -sites docs,blog -output-dir public/sitemaps\n")
		fmt.Fprintf(os.Stderr, "  sitemap-gen generate --all-sites\n")
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	logger, err := applog.New(*logLevel, *logFormat, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if multi.allSites || multi.sites != "" {
		os.Exit(doGenerateSites(ctx, opts, multi, logger, os.Stderr))
	}
	os.Exit(doGenerate(ctx, opts, logger, os.Stdout, os.Stderr))
}

// doGenerate runs one generation pass and writes the result.
// Returns exit code (0 = success, 1 = error).
func doGenerate(ctx context.Context, opts generateOptions, logger *logrus.Logger, stdout, stderr io.Writer) int {
	appCfg, siteKey, siteCfg, err := loadSite(opts.configPath, opts.siteKey, logger)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	gen, err := buildGenerator(appCfg, siteKey, siteCfg, logger)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	if _, err := generateOnce(ctx, gen, opts, stdout); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// doGenerateSites generates several sites in parallel, one output file per site.
// Returns exit code (0 = all sites succeeded, 1 = otherwise).
func doGenerateSites(ctx context.Context, opts generateOptions, multi multiSiteOptions, logger *logrus.Logger, stderr io.Writer) int {
	appCfg, err := loadConfig(opts.configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	siteKeys := orchestrate.GetAllSiteKeys(appCfg)
	if !multi.allSites {
		siteKeys = strings.Split(multi.sites, ",")
		for i := range siteKeys {
			siteKeys[i] = strings.TrimSpace(siteKeys[i])
		}
		if err := orchestrate.ValidateSiteKeys(appCfg, siteKeys); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
	}

	ext := strings.ToLower(opts.format)
	if ext == "" {
		ext = "json"
	}

	run := func(ctx context.Context, siteKey string) (int, error) {
		siteApp, key, siteCfg, err := loadSite(opts.configPath, siteKey, logger)
		if err != nil {
			return 0, err
		}
		gen, err := buildGenerator(siteApp, key, siteCfg, logger)
		if err != nil {
			return 0, err
		}
		siteOpts := opts
		siteOpts.siteKey = key
		siteOpts.output = filepath.Join(multi.outputDir, key+"."+ext)
		return generateOnce(ctx, gen, siteOpts, io.Discard)
	}

	results := orchestrate.NewOrchestrator(siteKeys, multi.parallel, run, logger.WithField("component", "orchestrator")).Run(ctx)
	exitCode := 0
	for _, r := range results {
		if !r.Success {
			fmt.Fprintf(stderr, "ERROR: [%s] %v\n", r.SiteKey, r.Error)
			exitCode = 1
		}
	}
	return exitCode
}

// generateOnce runs one pass and writes it, returning the number of entries written
func generateOnce(ctx context.Context, gen *sitemap.Generator, opts generateOptions, stdout io.Writer) (int, error) {
	var (
		entries []models.Entry
		err     error
	)
	if opts.raw {
		entries, err = gen.Generate(ctx)
	} else {
		entries, err = gen.Build(ctx)
	}
	if err != nil {
		return 0, err
	}
	return len(entries), writeEntries(entries, opts.format, opts.output, stdout)
}

// runWatch handles the watch subcommand
func runWatch(args []string) {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	var opts generateOptions
	opts.register(fs)
	interval := fs.String("interval", "", "Regeneration interval (e.g. 30m, 1h, 7d); overrides watch_interval")
	logLevel := fs.String("loglevel", "info", "Log level (debug, info, warn, error)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: sitemap-gen watch [options]\n\nOptions:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  sitemap-gen watch -site docs -output public/sitemap-urls.json\n")
		fmt.Fprintf(os.Stderr, "  sitemap-gen watch -site docs -output out.json --interval 1h\n")
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	logger, err := applog.New(*logLevel, applog.FormatText, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	appCfg, siteKey, siteCfg, err := loadSite(opts.configPath, opts.siteKey, logger)
	if err != nil {
		logger.Fatalf("Config error: %v", err)
	}
	every := appCfg.WatchInterval
	if *interval != "" {
		every, err = watch.ParseInterval(*interval)
		if err != nil {
			logger.Fatalf("Invalid interval: %v", err)
		}
	}

	gen, err := buildGenerator(appCfg, siteKey, siteCfg, logger)
	if err != nil {
		logger.Fatalf("Setup error: %v", err)
	}

	var dirs []string
	if config.GetEffectiveInferStaticPages(siteCfg, *appCfg) {
		dirs = siteCfg.PagesDirs
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	w := watch.New(dirs, every, func(ctx context.Context, reason string) error {
		_, err := generateOnce(ctx, gen, opts, os.Stdout)
		return err
	}, applog.ForSite(logger, siteKey, "watch"))

	if err := w.Run(ctx); err != nil {
		logger.Fatalf("Watch error: %v", err)
	}
}

// runValidate handles the validate subcommand
func runValidate(args []string) {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	configFile := fs.String("config", "sitemap.yaml", "Path to config file")
	siteKey := fs.String("site", "", "Site key to validate (optional, validates all if empty)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: sitemap-gen validate [options]\n\nOptions:\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	os.Exit(doValidate(*configFile, *siteKey, os.Stdout, os.Stderr))
}

// doValidate performs validation and writes output to provided writers.
// Returns exit code (0 = success, 1 = error).
func doValidate(configPath, siteKey string, stdout, stderr io.Writer) int {
	appCfg, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	warnings, _ := appCfg.Validate()
	for _, w := range warnings {
		fmt.Fprintf(stdout, "WARN: %s\n", w)
	}

	keys := orchestrate.GetAllSiteKeys(appCfg)
	if siteKey != "" {
		if _, ok := appCfg.Sites[siteKey]; !ok {
			fmt.Fprintf(stderr, "Error: site '%s' not found in config\n", siteKey)
			return 1
		}
		keys = []string{siteKey}
	}

	hasError := false
	for _, key := range keys {
		siteCfg := appCfg.Sites[key]
		siteWarnings, err := siteCfg.Validate()
		if err != nil {
			fmt.Fprintf(stderr, "ERROR: [%s] %v\n", key, err)
			hasError = true
			continue
		}
		for _, w := range siteWarnings {
			fmt.Fprintf(stdout, "WARN: [%s] %s\n", key, w)
		}
		fmt.Fprintf(stdout, "OK: [%s]\n", key)
	}
	if hasError {
		return 1
	}

	fmt.Fprintln(stdout, "\nConfiguration valid.")
	return 0
}

// runListSites handles the list-sites subcommand
func runListSites(args []string) {
	fs := flag.NewFlagSet("list-sites", flag.ExitOnError)
	configFile := fs.String("config", "sitemap.yaml", "Path to config file")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: sitemap-gen list-sites [options]\n\nOptions:\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	os.Exit(doListSites(*configFile, os.Stdout, os.Stderr))
}

// doListSites lists sites and writes output to provided writers.
// Returns exit code (0 = success, 1 = error).
func doListSites(configPath string, stdout, stderr io.Writer) int {
	appCfg, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	fmt.Fprintf(stdout, "Sites in %s:\n\n", configPath)
	for _, key := range orchestrate.GetAllSiteKeys(appCfg) {
		site := appCfg.Sites[key]
		fmt.Fprintf(stdout, "  %s\n", key)
		if site.SiteURL != "" {
			fmt.Fprintf(stdout, "    Site URL: %s\n", site.SiteURL)
		}
		if site.BaseURL != "" && site.BaseURL != "/" {
			fmt.Fprintf(stdout, "    Base URL: %s\n", site.BaseURL)
		}
		fmt.Fprintf(stdout, "    URLs: %d\n", len(site.URLs))
		if len(site.RouteRules) > 0 {
			fmt.Fprintf(stdout, "    Route rules: %d\n", len(site.RouteRules))
		}
		fmt.Fprintln(stdout)
	}
	return 0
}
