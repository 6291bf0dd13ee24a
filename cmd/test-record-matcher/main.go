package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/hauke96/master-thesis/evaluation/internal/dataset"
	"github.com/hauke96/master-thesis/evaluation/internal/lib/routing"
)

var errUsage = errors.New("usage")

func main() {
	if len(os.Args) < 2 {
		printUsage(os.Stdout)
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	var err error
	switch command {
	case "bucket":
		err = handleBucket(args, os.Stdout)
	case "match":
		err = handleMatch(args, os.Stdout)
	case "list-buckets":
		err = handleListBuckets(args, os.Stdout)
	case "help":
		printUsage(os.Stdout)
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage(os.Stdout)
		os.Exit(1)
	}

	if err != nil {
		if !errors.Is(err, errUsage) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func handleBucket(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("bucket", flag.ContinueOnError)
	distance := fs.Float64("distance", -1, "Beeline distance in meters")
	size := fs.Float64("size", routing.DefaultBucketSize, "Bucket size in meters")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *distance < 0 {
		fmt.Fprintln(out, "Example usage:")
		fmt.Fprintln(out, "  test-record-matcher bucket --distance 1024.7 --size 50")
		return errUsage
	}
	if *size <= 0 {
		return fmt.Errorf("bucket size must be positive, got %v", *size)
	}

	fmt.Fprintf(out, "Distance %v falls into bucket %v (size %v)\n",
		*distance, routing.RoundToBucket(*distance, *size), *size)
	return nil
}

func handleMatch(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("match", flag.ContinueOnError)
	csvFile := fs.String("csv", "", "Benchmark CSV with distance_beeline and distance_route columns")
	beeline := fs.Float64("beeline", -1, "Beeline distance of the routed request in meters")
	size := fs.Float64("size", routing.DefaultBucketSize, "Bucket size in meters")
	verbose := fs.Bool("verbose", false, "Show extra columns of the matched row")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *csvFile == "" || *beeline < 0 {
		fmt.Fprintln(out, "Example usage:")
		fmt.Fprintln(out, "  test-record-matcher match --csv results/0,5km2_performance_Routing.csv --beeline 1010")
		return errUsage
	}

	records, err := dataset.ReadBenchmark(*csvFile)
	if err != nil {
		return err
	}
	matcher, err := routing.NewRecordMatcher(records, *size)
	if err != nil {
		return err
	}

	record, err := matcher.Match(*beeline)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Matched benchmark row:\n")
	fmt.Fprintf(out, "  Bucket: %v\n", matcher.Bucket(*beeline))
	fmt.Fprintf(out, "  Line: %d\n", record.Line)
	fmt.Fprintf(out, "  distance_beeline: %v\n", record.DistanceBeeline)
	fmt.Fprintf(out, "  distance_route: %v\n", record.DistanceRoute)
	if record.DistanceBeeline > 0 {
		fmt.Fprintf(out, "  Relative: %.4f\n", record.DistanceRoute/record.DistanceBeeline)
	}

	if *verbose {
		columns := make([]string, 0, len(record.Extra))
		for column := range record.Extra {
			columns = append(columns, column)
		}
		sort.Strings(columns)
		for _, column := range columns {
			fmt.Fprintf(out, "  %s: %v\n", column, record.Extra[column])
		}
	}
	return nil
}

// handleListBuckets shows which rows share a bucket. Only the first row of a
// bucket can ever be matched.
func handleListBuckets(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("list-buckets", flag.ContinueOnError)
	csvFile := fs.String("csv", "", "Benchmark CSV")
	size := fs.Float64("size", routing.DefaultBucketSize, "Bucket size in meters")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *csvFile == "" {
		fmt.Fprintln(out, "Example usage:")
		fmt.Fprintln(out, "  test-record-matcher list-buckets --csv results/0,5km2_performance_Routing.csv")
		return errUsage
	}
	if *size <= 0 {
		return fmt.Errorf("bucket size must be positive, got %v", *size)
	}

	records, err := dataset.ReadBenchmark(*csvFile)
	if err != nil {
		return err
	}

	var buckets []float64
	lines := make(map[float64][]int)
	for _, r := range records {
		b := routing.RoundToBucket(r.DistanceBeeline, *size)
		if _, seen := lines[b]; !seen {
			buckets = append(buckets, b)
		}
		lines[b] = append(lines[b], r.Line)
	}
	sort.Float64s(buckets)

	fmt.Fprintf(out, "Buckets of %s (size %v):\n", *csvFile, *size)
	for _, b := range buckets {
		shadowed := ""
		if len(lines[b]) > 1 {
			shadowed = fmt.Sprintf(" (lines %v never match)", lines[b][1:])
		}
		fmt.Fprintf(out, "  %v: line %d%s\n", b, lines[b][0], shadowed)
	}
	return nil
}

func printUsage(out io.Writer) {
	fmt.Fprintf(out, `test-record-matcher - Benchmark row lookup testing tool

USAGE:
    test-record-matcher <command> [options]

COMMANDS:
    bucket          Round a beeline distance to its bucket
    match           Find the benchmark row for a beeline distance
    list-buckets    Show the bucket of every benchmark row
    help            Show this help message

EXAMPLES:
    test-record-matcher bucket --distance 1024.7
    test-record-matcher match --csv results.csv --beeline 1010 --verbose
    test-record-matcher list-buckets --csv results.csv --size 50
`)
}
