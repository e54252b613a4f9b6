package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/ramkansal/corpscout/internal/enricher"
	"github.com/ramkansal/corpscout/internal/extractor"
	"github.com/ramkansal/corpscout/internal/fetcher"
	"github.com/ramkansal/corpscout/internal/input"
	"github.com/ramkansal/corpscout/internal/output"
	"github.com/ramkansal/corpscout/internal/resolver"
	"github.com/ramkansal/corpscout/pkg/plugin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var version = "1.0.0"

// flags holds all parsed CLI options.
type flags struct {
	// Files
	input  string
	output string

	// Run
	configFile  string
	fetcher     string
	concurrency int

	// Output
	verbose bool
	noColor bool

	// Meta
	showHelp    bool
	showVersion bool
}

func main() {
	f, err := parseFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v (use --help for usage)\n", err)
		os.Exit(1)
	}

	if f.showVersion {
		fmt.Printf("corpscout v%s\n", version)
		os.Exit(0)
	}
	if f.showHelp {
		printUsage()
		os.Exit(0)
	}
	if f.noColor {
		color.NoColor = true
	}

	cfg, err := buildConfig(f)
	if err != nil {
		fatal("%v", err)
	}

	log := newLogger(cfg.Verbose)
	defer log.Sync()

	// The output is written once at the end, so an interrupt leaves nothing behind
	sig := make(chan os.Signal, 1)
	registerSignals(sig)
	go func() {
		<-sig
		fmt.Fprintf(os.Stderr, "\n\n%s Interrupt received, stopping without writing %s\n", clr("yellow", "!"), cfg.OutputPath)
		os.Exit(130)
	}()

	if err := run(cfg, log); err != nil {
		fatal("%v", err)
	}
}

func run(cfg *enricher.Config, log *zap.Logger) error {
	printBanner()
	fmt.Printf("\n  %s %s\n", clr("cyan", "Input:"), cfg.InputPath)
	fmt.Printf("  %s %s\n", clr("cyan", "Output:"), cfg.OutputPath)
	fmt.Printf("  %s %s  %s %d\n\n",
		clr("dim", "Fetcher:"), string(cfg.FetcherMode),
		clr("dim", "Workers:"), cfg.Parallelism,
	)

	records, err := input.ReadCompanies(cfg.InputPath)
	if err != nil {
		return err
	}
	fmt.Printf("  %s Found %d companies\n\n", clr("green", "✓"), len(records))

	httpFetch := fetcher.NewHTTPFetcher(fetcher.HTTPFetcherConfig{
		UserAgent:       cfg.UserAgent,
		Timeout:         cfg.Timeout,
		MaxRedirects:    cfg.MaxRedirects,
		MaxResponseSize: cfg.MaxResponseSize,
	})
	defer httpFetch.Close()

	ext, closeExt := buildExtractor(cfg, httpFetch, log)
	defer closeExt()

	res := resolver.New(httpFetch, resolver.WithLogger(log))
	writer := output.NewCSVWriter(cfg.OutputPath)
	e := enricher.New(cfg, res, ext, writer, log)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for event := range e.Events() {
			handleEvent(event, cfg)
		}
	}()

	summary, err := e.Run(records)
	<-done
	if err != nil {
		return err
	}

	printSummary(summary, cfg)
	return nil
}

// buildExtractor wires the fetchers the extractor uses for the configured mode.
// A browser that fails to launch degrades to plain HTTP.
func buildExtractor(cfg *enricher.Config, httpFetch plugin.Fetcher, log *zap.Logger) (*extractor.Extractor, func()) {
	noop := func() {}
	if cfg.FetcherMode == enricher.FetcherHTTP {
		return extractor.New(httpFetch, extractor.WithLogger(log)), noop
	}

	bf, err := fetcher.NewBrowserFetcher(fetcher.BrowserFetcherConfig{
		Timeout:     cfg.BrowserTimeout,
		PageTimeout: cfg.PageTimeout,
		UserAgent:   cfg.UserAgent,
	})
	if err != nil {
		log.Warn("browser fetcher unavailable, falling back to HTTP", zap.Error(err))
		return extractor.New(httpFetch, extractor.WithLogger(log)), noop
	}
	closeBrowser := func() { _ = bf.Close() }

	if cfg.FetcherMode == enricher.FetcherBrowser {
		return extractor.New(bf, extractor.WithLogger(log)), closeBrowser
	}
	return extractor.New(httpFetch, extractor.WithFallback(bf), extractor.WithLogger(log)), closeBrowser
}

func handleEvent(event plugin.Event, cfg *enricher.Config) {
	switch event.Type {
	case plugin.EventCompanyStarted:
		fmt.Printf("  %s Processing: %s\n",
			clr("dim", fmt.Sprintf("[%d/%d]", event.Index, event.Total)),
			event.Company,
		)

	case plugin.EventHomepageFound:
		fmt.Printf("      %s Homepage found: %s\n", clr("green", "✓"), event.URL)

	case plugin.EventHomepageNotFound:
		fmt.Printf("      %s Homepage not found\n", clr("red", "✗"))

	case plugin.EventEmailFound:
		fmt.Printf("      %s Email found: %s\n", clr("green", "✓"), clr("cyan", event.Email))

	case plugin.EventEmailNotFound:
		fmt.Printf("      %s Email not found\n", clr("yellow", "!"))

	case plugin.EventCompanyError:
		fmt.Printf("      %s Error: %s\n", clr("red", "✗"), event.Message)

	case plugin.EventOutputSaved:
		fmt.Printf("\n  %s Results saved to: %s\n", clr("green", "✓"), clr("green", cfg.OutputPath))

	case plugin.EventRunStarted, plugin.EventRunFinished:
		// banner and summary are printed by run()
	}
}

func printSummary(summary *plugin.RunSummary, cfg *enricher.Config) {
	s := summary.Stats
	fmt.Println()
	fmt.Printf("  %s\n", strings.Repeat("─", 50))
	fmt.Printf("  %s Enrichment complete\n", clr("green", "✓"))
	fmt.Printf("    Companies:  %s in %s\n", clr("cyan", strconv.Itoa(s.Total)), fmtDur(s.Elapsed))
	fmt.Printf("    Homepages:  %s (%d%%)\n", clr("cyan", strconv.Itoa(s.HomepagesFound)), s.HomepagePct)
	fmt.Printf("    Emails:     %s (%d%%)\n", clr("cyan", strconv.Itoa(s.EmailsFound)), s.EmailPct)
	if s.Errors > 0 {
		fmt.Printf("    Errors:     %s\n", clr("red", strconv.Itoa(s.Errors)))
	}
	fmt.Printf("    Output:     %s\n", clr("green", cfg.OutputPath))
	fmt.Println()
}

// ---------- Flag parsing ----------

func parseFlags(args []string) (*flags, error) {
	f := &flags{}

	var positional []string
	for i := 0; i < len(args); i++ {
		arg := args[i]
		next := func() (string, error) {
			if i+1 < len(args) {
				i++
				return args[i], nil
			}
			return "", fmt.Errorf("flag %s requires an argument", arg)
		}

		switch arg {
		// Run
		case "--config":
			v, err := next()
			if err != nil {
				return nil, err
			}
			f.configFile = v
		case "-f", "--fetcher":
			v, err := next()
			if err != nil {
				return nil, err
			}
			f.fetcher = v
		case "-c", "--concurrency":
			v, err := next()
			if err != nil {
				return nil, err
			}
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 {
				return nil, fmt.Errorf("flag %s wants a positive integer, got %q", arg, v)
			}
			f.concurrency = n

		// Output
		case "-v", "--verbose":
			f.verbose = true
		case "-nc", "--no-color":
			f.noColor = true

		// Meta
		case "-h", "--help":
			f.showHelp = true
		case "-V", "--version":
			f.showVersion = true

		default:
			if strings.HasPrefix(arg, "-") && arg != "-" {
				return nil, fmt.Errorf("unknown flag: %s", arg)
			}
			positional = append(positional, arg)
		}
	}

	if len(positional) > 2 {
		return nil, errors.New("too many arguments: want [inputPath] [outputPath]")
	}
	if len(positional) > 0 {
		f.input = positional[0]
	}
	if len(positional) > 1 {
		f.output = positional[1]
	}
	return f, nil
}

func buildConfig(f *flags) (*enricher.Config, error) {
	cfg := enricher.DefaultConfig()
	if f.configFile != "" {
		loaded, err := enricher.LoadConfig(f.configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if f.input != "" {
		cfg.InputPath = f.input
	}
	if f.output != "" {
		cfg.OutputPath = f.output
	}
	if f.concurrency > 0 {
		cfg.Parallelism = f.concurrency
	}
	if f.fetcher != "" {
		cfg.FetcherMode = enricher.FetcherMode(strings.ToLower(f.fetcher))
	}
	cfg.Verbose = f.verbose
	cfg.NoColor = f.noColor

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(verbose bool) *zap.Logger {
	zcfg := zap.NewDevelopmentConfig()
	zcfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	if verbose {
		zcfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	zcfg.DisableStacktrace = true
	zcfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
	if !color.NoColor {
		zcfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	log, err := zcfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return log
}

// ---------- Help / banner ----------

func printUsage() {
	printBanner()
	fmt.Print(`
USAGE:
  corpscout [flags] [inputPath] [outputPath]
  corpscout companies.csv enriched.csv
  corpscout -f auto -c 4 companies.csv

  inputPath defaults to input.csv, outputPath to output.csv.
  The input needs a header row with a company name column
  (企業名, companyName or name). Homepage and email columns are optional.

RUN:
         --config <string>           path to a YAML configuration file
  -f,    --fetcher <string>          email page fetcher: http, browser, auto (default "http")
  -c,    --concurrency <int>         number of companies processed at once (default 1)

OUTPUT:
  -v,    --verbose                   log every probe and fetch failure
  -nc,   --no-color                  disable colored output

META:
  -h,    --help                      show this help message
  -V,    --version                   show version

`)
}

func printBanner() {
	fmt.Println(clr("cyan", "  corpscout"))
	fmt.Printf("  %s  %s\n", clr("dim", "Company homepage and contact email finder"), clr("dim", "v"+version))
	fmt.Printf("  %s\n", clr("dim", strings.Repeat("─", 58)))
}

// ---------- Utilities ----------

func fmtDur(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	m := int(d.Minutes())
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%dm%ds", m, s)
}

var palette = map[string]*color.Color{
	"red":    color.New(color.FgRed),
	"green":  color.New(color.FgGreen),
	"yellow": color.New(color.FgYellow),
	"cyan":   color.New(color.FgCyan),
	"dim":    color.New(color.Faint),
	"bold":   color.New(color.Bold),
}

func clr(name, text string) string {
	c, ok := palette[name]
	if !ok {
		return text
	}
	return c.Sprint(text)
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "\n  %s %s\n\n", clr("red", "ERROR:"), fmt.Sprintf(format, args...))
	os.Exit(1)
}
