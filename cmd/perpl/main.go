// Command perpl measures relative positions between localisations in a
// super-resolution point table and writes the feature table plus distance
// histograms.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/banshee-data/perpl/internal/channels"
	"github.com/banshee-data/perpl/internal/config"
	"github.com/banshee-data/perpl/internal/histogram"
	"github.com/banshee-data/perpl/internal/monitoring"
	"github.com/banshee-data/perpl/internal/pointio"
	"github.com/banshee-data/perpl/internal/relpos"
	"github.com/banshee-data/perpl/internal/version"
)

// options are the parsed command-line flags. set records which flags were
// given explicitly so they override config and environment values.
type options struct {
	input       string
	configPath  string
	filter      float64
	dims        int
	channels    string
	interactive bool
	outDir      string
	binWidth    float64
	maxDistance float64
	format      string
	plots       bool
	version     bool

	set map[string]bool
}

func parseFlags(name string, args []string) (options, error) {
	var o options
	flags := flag.NewFlagSet(name, flag.ContinueOnError)
	flags.StringVar(&o.input, "input", "", "Localisation file (.csv, .txt, .npy, .parquet, optionally .gz)")
	flags.StringVar(&o.configPath, "config", "", "Analysis config JSON file")
	flags.Float64Var(&o.filter, "filter", 0, "Filter distance: half-width of the neighbour search box")
	flags.IntVar(&o.dims, "dims", 0, "Number of spatial dimensions (2 or 3)")
	flags.StringVar(&o.channels, "channels", "", "Channel selection: empty for all points, \"c\" or \"from,to\"")
	flags.BoolVar(&o.interactive, "interactive", false, "Ask which colour channels to analyse")
	flags.StringVar(&o.outDir, "out", "perpl-out", "Output directory")
	flags.Float64Var(&o.binWidth, "bin-width", 0, "Histogram bin width")
	flags.Float64Var(&o.maxDistance, "max-distance", 0, "Histogram upper limit (default: filter distance)")
	flags.StringVar(&o.format, "format", "csv", "Feature table format: csv or parquet")
	flags.BoolVar(&o.plots, "plots", false, "Write PNG and HTML distance histograms")
	flags.BoolVar(&o.version, "version", false, "Print version and exit")

	if err := flags.Parse(args); err != nil {
		return o, err
	}
	o.set = make(map[string]bool)
	flags.Visit(func(f *flag.Flag) { o.set[f.Name] = true })
	return o, nil
}

func main() {
	o, err := parseFlags(os.Args[0], os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		os.Exit(2)
	}
	if o.version {
		fmt.Println(version.String())
		return
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("Warning: failed to load .env: %v", err)
	}

	if err := run(o, os.Stdin, os.Stdout); err != nil {
		log.Fatalf("perpl: %v", err)
	}
}

// resolveConfig layers the config file, PERPL_* environment and explicit
// flags, in that order.
func resolveConfig(o options) (*config.AnalysisConfig, error) {
	cfg := config.EmptyAnalysisConfig()
	if o.configPath != "" {
		loaded, err := config.LoadAnalysisConfig(o.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}

	if o.set["filter"] {
		cfg.FilterDist = &o.filter
	}
	if o.set["dims"] {
		cfg.Dims = &o.dims
	}
	if o.set["bin-width"] {
		cfg.BinWidth = &o.binWidth
	}
	if o.set["max-distance"] {
		cfg.MaxDistance = &o.maxDistance
	}
	if o.set["channels"] {
		chs, err := config.ParseChannelList(o.channels)
		if err != nil {
			return nil, err
		}
		if err := cfg.SetChannels(chs); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// selectChannels settles the channel mode of rc, asking on in/out when
// interactive is set.
func selectChannels(rc *relpos.Config, table pointio.Table, interactive bool, in io.Reader, out io.Writer) error {
	if !interactive && rc.Mode == relpos.ChannelNone {
		return nil
	}
	if !table.HasChannel(rc.Dims) {
		return fmt.Errorf("%w: input has %d columns and no channel column for %d-D data",
			relpos.ErrInvalidChannelSelector, table.Columns(), rc.Dims)
	}
	available := relpos.DistinctChannels(table.Rows)

	if interactive {
		sel, err := channels.Prompter{In: in, Out: out, MaxAttempts: channels.DefaultMaxAttempts}.Prompt(available)
		if err != nil {
			return err
		}
		sel.Apply(rc)
		return nil
	}

	sel := channels.Selection{rc.From}
	if rc.Mode == relpos.ChannelPair {
		sel = append(sel, rc.To)
	}
	return channels.Validate(available, sel)
}

func run(o options, in io.Reader, out io.Writer) error {
	if o.input == "" {
		return errors.New("-input is required")
	}
	format, err := pointio.ParseFormat(o.format)
	if err != nil {
		return err
	}
	cfg, err := resolveConfig(o)
	if err != nil {
		return err
	}

	table, err := pointio.ReadFile(o.input)
	if err != nil {
		return err
	}
	monitoring.Logf("Read %d localisations (%d columns) from %s", table.Len(), table.Columns(), o.input)

	rc := cfg.ToRelpos()
	if err := selectChannels(&rc, table, o.interactive, in, out); err != nil {
		return err
	}
	label := selectionLabel(rc)

	est, err := relpos.EstimateRows(table.Rows, rc)
	if err != nil {
		return err
	}
	monitoring.Logf("Analysing %s: %d points, ~%.1f neighbours per point, ~%.0f raw vectors",
		label, est.Points, est.NeighboursPerPoint, est.RawVectors)
	if rc.ShouldWarn(cfg.GetWarnFilterDist()) {
		monitoring.Logf("Warning: filter distance %g exceeds %g; the scan may be slow and memory hungry",
			rc.FilterDist, cfg.GetWarnFilterDist())
	}

	rc.Progress = monitoring.ScanProgress(label)
	var features relpos.FeatureTable
	err = monitoring.Timed("relative position scan", func() error {
		var derr error
		features, derr = relpos.Dispatch(table.Rows, rc)
		return derr
	})
	if err != nil {
		return err
	}
	monitoring.Logf("Found %d relative positions within %g", features.Len(), rc.FilterDist)

	runID := uuid.New().String()
	base := pointio.OutputName(stem(o.input), label, runID[:8])

	featurePath := filepath.Join(o.outDir, base+"_relpos."+string(format))
	if err := pointio.WriteFeatures(featurePath, features, format); err != nil {
		return err
	}
	fmt.Fprintln(out, featurePath)

	hists := make([]histogram.Histogram, 0, len(features.DistanceColumns()))
	for _, name := range features.DistanceColumns() {
		col, _ := features.Column(name)
		monitoring.Logf("%s distances: %s", name, histogram.Summarise(col))
		h, err := histogram.Bin(name, col, cfg.GetBinWidth(), cfg.GetMaxDistance())
		if err != nil {
			return err
		}
		if h.Excluded > 0 {
			monitoring.Logf("%s: %d distances beyond %g left out of the histogram", name, h.Excluded, h.Edges[len(h.Edges)-1])
		}
		hists = append(hists, h)
	}

	if !o.plots {
		return nil
	}
	labels := histogram.Labels{
		Title:    "Relative positions: " + label,
		Subtitle: fmt.Sprintf("%s, filter %g, run %s", filepath.Base(o.input), rc.FilterDist, runID),
	}
	for _, h := range hists {
		l := labels
		l.XLabel = h.Name + " distance"
		path := filepath.Join(o.outDir, base+"_"+h.Name+".png")
		if err := writeFile(path, func(w io.Writer) error { return histogram.WritePNG(w, h, l) }); err != nil {
			return err
		}
		fmt.Fprintln(out, path)
	}
	labels.XLabel = "distance"
	htmlPath := filepath.Join(o.outDir, base+"_histograms.html")
	if err := writeFile(htmlPath, func(w io.Writer) error { return histogram.WriteHTML(w, hists, labels) }); err != nil {
		return err
	}
	fmt.Fprintln(out, htmlPath)
	return nil
}

func selectionLabel(rc relpos.Config) string {
	switch rc.Mode {
	case relpos.ChannelSingle:
		return fmt.Sprintf("ch%g", rc.From)
	case relpos.ChannelPair:
		return fmt.Sprintf("ch%g-to-ch%g", rc.From, rc.To)
	default:
		return "all"
	}
}

// stem strips directories and every extension, so cells.csv.gz becomes cells.
func stem(path string) string {
	name := filepath.Base(path)
	if i := strings.IndexByte(name, '.'); i > 0 {
		return name[:i]
	}
	return name
}

func writeFile(path string, write func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return write(f)
}
