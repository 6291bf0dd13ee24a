package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dpup/prefab/logging"
	"gonum.org/v1/plot/vg"

	"github.com/hauke96/master-thesis/evaluation/internal/chart"
	"github.com/hauke96/master-thesis/evaluation/internal/config"
	"github.com/hauke96/master-thesis/evaluation/internal/lib/geo"
	"github.com/hauke96/master-thesis/evaluation/internal/logger"
	"github.com/hauke96/master-thesis/evaluation/internal/report"
	"github.com/hauke96/master-thesis/evaluation/internal/services"
)

// app bundles the services every command works with
type app struct {
	similarity *services.SimilarityService
	distances  *services.DistanceService
	statistics *services.StatisticsService
	plots      *services.PlotService
}

func newApp(cfg *config.Config) (*app, error) {
	utm, err := geo.NewUTM(cfg.Projection.Zone, cfg.Projection.South)
	if err != nil {
		return nil, err
	}

	style := chart.DefaultStyle()
	style.Width = vg.Length(cfg.Plot.WidthInches) * vg.Inch
	style.Height = vg.Length(cfg.Plot.HeightInches) * vg.Inch

	return &app{
		similarity: services.NewSimilarityService(utm, cfg.Similarity.ResamplePoints),
		distances:  services.NewDistanceService(utm, cfg.Matching),
		statistics: services.NewStatisticsService(geo.NewGeoUtils()),
		plots:      services.NewPlotService(style, cfg.Plot.MaxID),
	}, nil
}

type command struct {
	name    string
	args    string
	help    string
	minArgs int
	maxArgs int // -1 for no limit
	run     func(ctx context.Context, a *app, args []string, out io.Writer) error
}

var commands = []command{
	{
		name: "linestring-distance", args: "<routes>...", minArgs: 1, maxArgs: -1,
		help: "Hausdorff distance of every id occurring exactly twice (CSV id,h_dist)",
		run:  handleLineStringDistance,
	},
	{
		name: "distance-csv", args: "<benchmark.csv> <routing.geojson> <expected.geojson>", minArgs: 3, maxArgs: 3,
		help: "Route lengths relative to the beeline per request (CSV)",
		run:  handleDistanceCSV,
	},
	{
		name: "coordinate-count", args: "<file.geojson>", minArgs: 1, maxArgs: 1,
		help: "Number of coordinates with and without duplicates",
		run:  handleCoordinateCount,
	},
	{
		name: "segment-lengths", args: "[file.geojson]", minArgs: 0, maxArgs: 1,
		help: "Length of each segment of the first feature (default " + services.DefaultWaypointsFile + ")",
		run:  handleSegmentLengths,
	},
	{
		name: "consolidate", args: "<folder> <pattern>", minArgs: 2, maxArgs: 2,
		help: "Average, minimum and maximum times of benchmark result files (CSV)",
		run:  handleConsolidate,
	},
	{
		name: "node-degree", args: "<file.osm|file.opl> [opl]", minArgs: 1, maxArgs: 2,
		help: "Node degree histogram and average degree, opl lists the way nodes with a count tag first",
		run:  handleNodeDegree,
	},
	{
		name: "xcoord-collisions", args: "<file.osm|file.opl> [opl]", minArgs: 1, maxArgs: 2,
		help: "Nodes sharing the same x coordinate, opl lists the colliding nodes first",
		run:  handleXCoordCollisions,
	},
	{
		name: "plot-similarity", args: "<dataset-prefix>", minArgs: 1, maxArgs: 1,
		help: "Bar charts of Hausdorff and relative distances",
		run:  handlePlotSimilarity,
	},
	{
		name: "pair-kml", args: "<out.kml> <routes>...", minArgs: 2, maxArgs: -1,
		help: "KML file with every compared pair of routes",
		run:  handlePairKML,
	},
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes one command. Reports are buffered so stdout stays empty when
// the command fails.
func run(args []string, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		printUsage(stderr)
		return 1
	}

	name := args[0]
	if name == "help" {
		printUsage(stdout)
		return 0
	}

	cmd, ok := lookup(name)
	if !ok {
		fmt.Fprintf(stderr, "Unknown command: %s\n\n", name)
		printUsage(stderr)
		return 1
	}

	params := args[1:]
	if len(params) < cmd.minArgs || (cmd.maxArgs >= 0 && len(params) > cmd.maxArgs) {
		fmt.Fprintf(stderr, "Wrong number of arguments for %s: found %d\n", cmd.name, len(params))
		fmt.Fprintf(stderr, "Usage: evaltool %s %s\n", cmd.name, cmd.args)
		return 1
	}

	cfg, err := config.Load(config.DefaultFile)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}

	log, err := logger.NewWithWriter(stderr, cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	defer log.Sync()
	ctx := logging.With(context.Background(), log)

	a, err := newApp(cfg)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}

	var out bytes.Buffer
	if err := cmd.run(ctx, a, params, &out); err != nil {
		logging.Errorw(ctx, "Command failed", "command", cmd.name, "error", err)
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}

	if _, err := stdout.Write(out.Bytes()); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

func lookup(name string) (command, bool) {
	for _, c := range commands {
		if c.name == name {
			return c, true
		}
	}
	return command{}, false
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Route evaluation tool")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  evaltool <command> [arguments]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	for _, c := range commands {
		fmt.Fprintf(w, "  %s %s\n", c.name, c.args)
		fmt.Fprintf(w, "      %s\n", c.help)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Settings are read from %s and %s* environment variables, e.g. %sPROJECTION__ZONE=33\n",
		config.DefaultFile, config.EnvPrefix, config.EnvPrefix)
}

func handleLineStringDistance(ctx context.Context, a *app, args []string, out io.Writer) error {
	records, err := a.similarity.LineStringDistances(ctx, args)
	if err != nil {
		return err
	}
	return report.WriteSimilarities(out, records, nil)
}

func handleDistanceCSV(ctx context.Context, a *app, args []string, out io.Writer) error {
	rows, err := a.distances.DistanceTable(ctx, args[0], args[1], args[2])
	if err != nil {
		return err
	}
	return report.WriteDistances(out, rows, nil)
}

func handleCoordinateCount(ctx context.Context, a *app, args []string, out io.Writer) error {
	count, err := a.statistics.CoordinateCount(ctx, args[0])
	if err != nil {
		return err
	}
	return report.WriteCoordinateCount(out, count)
}

func handleSegmentLengths(ctx context.Context, a *app, args []string, out io.Writer) error {
	path := ""
	if len(args) > 0 {
		path = args[0]
	}
	lengths, err := a.statistics.SegmentLengths(ctx, path)
	if err != nil {
		return err
	}
	return report.WriteSegmentLengths(out, lengths)
}

func handleConsolidate(ctx context.Context, a *app, args []string, out io.Writer) error {
	summaries, err := a.statistics.Consolidate(ctx, args[0], args[1])
	if err != nil {
		return err
	}
	return report.WriteRunSummaries(out, summaries)
}

func handleNodeDegree(ctx context.Context, a *app, args []string, out io.Writer) error {
	listNodes, err := oplMode(args)
	if err != nil {
		return err
	}

	summary, nodes, err := a.statistics.NodeDegrees(ctx, args[0], listNodes)
	if err != nil {
		return err
	}
	if listNodes {
		if err := report.WriteOPLNodes(out, nodes); err != nil {
			return err
		}
	}
	return report.WriteDegreeSummary(out, summary)
}

func handleXCoordCollisions(ctx context.Context, a *app, args []string, out io.Writer) error {
	listNodes, err := oplMode(args)
	if err != nil {
		return err
	}

	summary, nodes, err := a.statistics.XCollisions(ctx, args[0], listNodes)
	if err != nil {
		return err
	}
	if listNodes {
		if err := report.WriteOPLNodes(out, nodes); err != nil {
			return err
		}
	}
	return report.WriteXSummary(out, summary)
}

// oplMode reads the optional output mode following the input file
func oplMode(args []string) (bool, error) {
	if len(args) < 2 {
		return false, nil
	}
	if args[1] != "opl" {
		return false, fmt.Errorf("unknown output mode %q, only \"opl\" is supported", args[1])
	}
	return true, nil
}

func handlePlotSimilarity(ctx context.Context, a *app, args []string, out io.Writer) error {
	_, err := a.plots.PlotSimilarity(ctx, args[0])
	return err
}

func handlePairKML(ctx context.Context, a *app, args []string, out io.Writer) error {
	target := args[0]
	pairs, err := a.similarity.PairKML(ctx, args[1:])
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	name := strings.TrimSuffix(filepath.Base(target), filepath.Ext(target))
	if err := report.WritePairKML(&buf, name, pairs); err != nil {
		return err
	}
	if err := os.WriteFile(target, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", target, err)
	}

	logging.Infow(ctx, "Wrote KML", "file", target, "pairs", len(pairs))
	return nil
}
