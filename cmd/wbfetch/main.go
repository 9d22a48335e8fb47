// wbfetch fetches World Bank indicator data, exports it, and renders charts.
//
// Main CLI entrypoint using the cobra command framework.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/ArdentEmpiricist/world-bank-data-go/src/api"
	"github.com/ArdentEmpiricist/world-bank-data-go/src/config"
	"github.com/ArdentEmpiricist/world-bank-data-go/src/logx"
	"github.com/ArdentEmpiricist/world-bank-data-go/src/models"
	"github.com/ArdentEmpiricist/world-bank-data-go/src/stats"
	"github.com/ArdentEmpiricist/world-bank-data-go/src/storage"
	"github.com/ArdentEmpiricist/world-bank-data-go/src/viz"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
)

var cfg *config.Config

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "wbfetch",
	Short: "Fetch, export, and chart World Bank indicator data",
	Long: `wbfetch queries the World Bank Indicators API (v2), exports tidy
observations as CSV, JSON, or XLSX, and renders multi-series charts
to PNG or SVG.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		configFile, _ := cmd.Flags().GetString("config")
		if configFile != "" {
			cfg, err = config.LoadFromFile(configFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
			cfg.Logging.Level = lvl
		}
		logx.SetLevel(cfg.Logging.Level)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(getCmd)
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("wbfetch %s (%s)\n", version, commit)
	},
}

// --- Get Command ---

var getCmd = &cobra.Command{
	Use:   "get",
	Short: "Fetch indicator observations and optionally export or plot them",
	Long: `Fetch observations for one or more countries and indicators.

Examples:
  wbfetch get -c DEU,USA -i SP.POP.TOTL --date 2000:2020 -o pop.csv
  wbfetch get -c DEU -i SP.POP.TOTL,NY.GDP.MKTP.CD --date 2010:2020 --plot gdp.png
  wbfetch get -c EUU -i SP.DYN.LE00.IN --date 1990:2020 --plot le.svg --kind loess --stats`,
	RunE: runGet,
}

func init() {
	f := getCmd.Flags()
	f.StringSliceP("countries", "c", nil, "country codes, ISO2/ISO3/aggregates (e.g. DEU,USA,EUU)")
	f.StringSliceP("indicators", "i", nil, "indicator ids (e.g. SP.POP.TOTL)")
	f.String("date", "2000:2020", "year or inclusive range (YYYY or YYYY:YYYY)")
	f.Int("source", 0, "numeric source id, required by the API for multi-indicator single calls")
	f.StringP("out", "o", "", "output data file; format from extension or --format")
	f.String("format", "", "output format override: csv, json, xlsx")
	f.String("plot", "", "render a chart to this file; .svg renders vector output")
	f.Int("width", 0, "chart width in pixels")
	f.Int("height", 0, "chart height in pixels")
	f.String("title", "", "chart title; derived from indicator names when empty")
	f.String("locale", "", "tick label locale (en, de, fr, es, it, pt, nl)")
	f.String("legend", "", "legend placement: right, top, bottom, inside, hidden")
	f.String("kind", "", "plot kind: line, scatter, line-points, area, stacked-area, grouped-bar, loess")
	f.Float64("loess-span", 0, "LOESS neighbor span fraction (0,1], loess kind only")
	f.String("style", "", "series style mode: default, country-hue, country-palette")
	f.Bool("stats", false, "print grouped summary statistics")

	getCmd.MarkFlagRequired("countries")
	getCmd.MarkFlagRequired("indicators")
}

func runGet(cmd *cobra.Command, args []string) error {
	f := cmd.Flags()
	rawCountries, _ := f.GetStringSlice("countries")
	rawIndicators, _ := f.GetStringSlice("indicators")
	countries := splitCodes(rawCountries)
	indicators := splitCodes(rawIndicators)
	dateStr, _ := f.GetString("date")
	source, _ := f.GetInt("source")
	out, _ := f.GetString("out")
	plot, _ := f.GetString("plot")
	printStats, _ := f.GetBool("stats")

	if source == 0 {
		source = cfg.API.Source
	}

	var date *models.DateSpec
	if dateStr != "" {
		d, err := models.ParseDateSpec(dateStr)
		if err != nil {
			return err
		}
		date = &d
	}

	client := api.NewClient(cfg.API.BaseURL)
	logx.Infof("fetching %d indicator(s) for %d countr(y/ies)", len(indicators), len(countries))
	rows, err := client.Fetch(cmd.Context(), countries, indicators, date, source)
	if err != nil {
		return err
	}
	logx.Infof("fetched %d observations", len(rows))
	api.SortObservations(rows)

	if out != "" {
		path := out
		if format, _ := f.GetString("format"); format != "" {
			path = forceExtension(out, format)
		} else if cfg.Output.Format != "" && !hasKnownExtension(out) {
			path = forceExtension(out, cfg.Output.Format)
		}
		if err := storage.Save(rows, path); err != nil {
			return fmt.Errorf("save %s: %w", path, err)
		}
		logx.Infof("wrote %s", path)
	}

	if printStats {
		printSummary(stats.GroupedSummary(rows))
	}

	if plot != "" {
		opts := chartOptions(f)
		if err := viz.RenderFile(rows, plot, opts); err != nil {
			return fmt.Errorf("plot %s: %w", plot, err)
		}
		logx.Infof("wrote %s", plot)
	}
	return nil
}

// chartOptions merges chart flags over config defaults.
func chartOptions(f *pflag.FlagSet) viz.Options {
	opts := viz.Options{
		Width:     cfg.Chart.Width,
		Height:    cfg.Chart.Height,
		Locale:    cfg.Chart.Locale,
		Legend:    viz.ParseLegendMode(cfg.Chart.Legend),
		Title:     cfg.Chart.Title,
		Kind:      viz.ParsePlotKind(cfg.Chart.Kind),
		LoessSpan: cfg.Chart.LoessSpan,
		Style:     viz.ParseStyleMode(cfg.Chart.Style),
	}
	if v, _ := f.GetInt("width"); v > 0 {
		opts.Width = v
	}
	if v, _ := f.GetInt("height"); v > 0 {
		opts.Height = v
	}
	if v, _ := f.GetString("locale"); v != "" {
		opts.Locale = v
	}
	if v, _ := f.GetString("legend"); v != "" {
		opts.Legend = viz.ParseLegendMode(v)
	}
	if v, _ := f.GetString("title"); v != "" {
		opts.Title = v
	}
	if v, _ := f.GetString("kind"); v != "" {
		opts.Kind = viz.ParsePlotKind(v)
	}
	if v, _ := f.GetFloat64("loess-span"); v > 0 {
		opts.LoessSpan = v
	}
	if v, _ := f.GetString("style"); v != "" {
		opts.Style = viz.ParseStyleMode(v)
	}
	return opts
}

// splitCodes re-splits list arguments on ";" too, so both the API's code
// separator and the usual comma work on the command line.
func splitCodes(args []string) []string {
	var out []string
	for _, a := range args {
		for _, p := range strings.FieldsFunc(a, func(r rune) bool { return r == ',' || r == ';' }) {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

func hasKnownExtension(path string) bool {
	switch strings.ToLower(ext(path)) {
	case "csv", "json", "xlsx":
		return true
	}
	return false
}

func forceExtension(path, format string) string {
	format = strings.ToLower(strings.TrimSpace(format))
	if strings.EqualFold(ext(path), format) {
		return path
	}
	return path + "." + format
}

func ext(path string) string {
	i := strings.LastIndexByte(path, '.')
	if i < 0 {
		return ""
	}
	return path[i+1:]
}

func printSummary(summaries []stats.Summary) {
	fmt.Printf("%-24s %-6s %6s %8s %14s %14s %14s %14s\n",
		"indicator", "iso3", "count", "missing", "min", "max", "mean", "median")
	for _, s := range summaries {
		fmt.Printf("%-24s %-6s %6d %8d %14s %14s %14s %14s\n",
			s.Key.IndicatorID, s.Key.CountryISO3, s.Count, s.Missing,
			fmtOpt(s.Min), fmtOpt(s.Max), fmtOpt(s.Mean), fmtOpt(s.Median))
	}
}

func fmtOpt(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.4g", *v)
}
