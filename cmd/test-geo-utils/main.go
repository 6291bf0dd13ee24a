package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/hauke96/master-thesis/evaluation/internal/lib/geo"
	"github.com/hauke96/master-thesis/evaluation/internal/lib/similarity"
)

var errUsage = errors.New("usage")

func main() {
	if len(os.Args) < 2 {
		printUsage(os.Stdout)
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]
	geoUtils := geo.NewGeoUtils()

	var err error
	switch command {
	case "point-distance":
		err = handlePointDistance(geoUtils, args, os.Stdout)
	case "project":
		err = handleProject(args, os.Stdout)
	case "decode-polyline":
		err = handleDecodePolyline(geoUtils, args, os.Stdout)
	case "polyline-hausdorff":
		err = handlePolylineHausdorff(geoUtils, args, os.Stdout)
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

func handlePointDistance(geoUtils geo.GeoUtils, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("point-distance", flag.ContinueOnError)
	lat1 := fs.Float64("lat1", 0, "Latitude of first point")
	lng1 := fs.Float64("lng1", 0, "Longitude of first point")
	lat2 := fs.Float64("lat2", 0, "Latitude of second point")
	lng2 := fs.Float64("lng2", 0, "Longitude of second point")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *lat1 == 0 && *lng1 == 0 && *lat2 == 0 && *lng2 == 0 {
		fmt.Fprintln(out, "Example usage:")
		fmt.Fprintln(out, "  test-geo-utils point-distance --lat1 53.5503 --lng1 9.9920 --lat2 53.5614 --lng2 10.0030")
		return errUsage
	}

	p1 := geo.Point{Latitude: *lat1, Longitude: *lng1}
	p2 := geo.Point{Latitude: *lat2, Longitude: *lng2}

	distance, err := geoUtils.PointToPoint(p1, p2)
	if err != nil {
		return fmt.Errorf("calculating distance: %w", err)
	}

	fmt.Fprintf(out, "Distance between points:\n")
	fmt.Fprintf(out, "  Point 1: (%.6f, %.6f)\n", p1.Latitude, p1.Longitude)
	fmt.Fprintf(out, "  Point 2: (%.6f, %.6f)\n", p2.Latitude, p2.Longitude)
	fmt.Fprintf(out, "  Distance: %.2f meters (%.3f km)\n", distance, distance/1000)
	return nil
}

func handleProject(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("project", flag.ContinueOnError)
	lat := fs.Float64("lat", 0, "Latitude")
	lng := fs.Float64("lng", 0, "Longitude")
	zone := fs.Int("zone", 32, "UTM zone")
	south := fs.Bool("south", false, "Use the southern hemisphere false northing")

	if err := fs.Parse(args); err != nil {
		return err
	}

	utm, err := geo.NewUTM(*zone, *south)
	if err != nil {
		return err
	}
	xy, err := utm.Project(geo.Point{Latitude: *lat, Longitude: *lng})
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "UTM zone %d:\n", *zone)
	fmt.Fprintf(out, "  Input: (%.6f, %.6f)\n", *lat, *lng)
	fmt.Fprintf(out, "  Easting: %.3f\n", xy.X)
	fmt.Fprintf(out, "  Northing: %.3f\n", xy.Y)
	return nil
}

func handleDecodePolyline(geoUtils geo.GeoUtils, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("decode-polyline", flag.ContinueOnError)
	polylineStr := fs.String("polyline", "", "Encoded polyline string to decode")
	verbose := fs.Bool("verbose", false, "Show all decoded points")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *polylineStr == "" {
		fmt.Fprintln(out, "Example usage:")
		fmt.Fprintln(out, "  test-geo-utils decode-polyline --polyline \"_p~iF~ps|U_ulLnnqC_mqNvxq`@\" --verbose")
		return errUsage
	}

	points, err := geoUtils.DecodePolyline(*polylineStr)
	if err != nil {
		return fmt.Errorf("decoding polyline: %w", err)
	}

	fmt.Fprintf(out, "Polyline decoded successfully:\n")
	fmt.Fprintf(out, "  Points: %d\n", len(points))
	if len(points) > 0 {
		fmt.Fprintf(out, "  Start: (%.6f, %.6f)\n", points[0].Latitude, points[0].Longitude)
		fmt.Fprintf(out, "  End: (%.6f, %.6f)\n", points[len(points)-1].Latitude, points[len(points)-1].Longitude)
	}
	if len(points) > 1 {
		lengths, err := geoUtils.SegmentLengths(points)
		if err != nil {
			return err
		}
		total := 0.0
		for _, l := range lengths {
			total += l
		}
		fmt.Fprintf(out, "  Length: %.2f meters\n", total)
	}

	if *verbose {
		fmt.Fprintf(out, "  All points:\n")
		for i, point := range points {
			fmt.Fprintf(out, "    %d: (%.6f, %.6f)\n", i+1, point.Latitude, point.Longitude)
		}
	}
	return nil
}

func handlePolylineHausdorff(geoUtils geo.GeoUtils, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("polyline-hausdorff", flag.ContinueOnError)
	polyline1 := fs.String("polyline1", "", "First encoded polyline string")
	polyline2 := fs.String("polyline2", "", "Second encoded polyline string")
	points := fs.Int("points", similarity.DefaultPointCount, "Number of points both lines are resampled to")
	zone := fs.Int("zone", 32, "UTM zone")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *polyline1 == "" || *polyline2 == "" {
		fmt.Fprintln(out, "Example usage:")
		fmt.Fprintln(out, "  test-geo-utils polyline-hausdorff --polyline1 \"hiker_route\" --polyline2 \"expected_route\" --points 20")
		return errUsage
	}

	utm, err := geo.NewUTM(*zone, false)
	if err != nil {
		return err
	}

	var lines [2]geo.Polyline
	for i, encoded := range []string{*polyline1, *polyline2} {
		decoded, err := geoUtils.DecodePolyline(encoded)
		if err != nil {
			return fmt.Errorf("decoding polyline%d: %w", i+1, err)
		}
		lines[i], err = geo.ProjectAll(utm, decoded)
		if err != nil {
			return fmt.Errorf("projecting polyline%d: %w", i+1, err)
		}
	}

	distance, err := similarity.CompareLines(lines[0], lines[1], *points)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Polyline similarity:\n")
	fmt.Fprintf(out, "  Polyline 1: %d points\n", len(lines[0]))
	fmt.Fprintf(out, "  Polyline 2: %d points\n", len(lines[1]))
	fmt.Fprintf(out, "  Resampled to: %d points\n", *points)
	fmt.Fprintf(out, "  Hausdorff distance: %.2f meters\n", distance)
	return nil
}

func printUsage(out io.Writer) {
	fmt.Fprintf(out, `test-geo-utils - Geographic utility testing tool

USAGE:
    test-geo-utils <command> [options]

COMMANDS:
    point-distance      Calculate great-circle distance between two points
    project             Project a coordinate into a UTM zone
    decode-polyline     Decode Google polyline string to coordinates
    polyline-hausdorff  Hausdorff distance of two encoded polylines
    help                Show this help message

EXAMPLES:
    # Distance across the Hamburg city center
    test-geo-utils point-distance --lat1 53.5503 --lng1 9.9920 --lat2 53.5614 --lng2 10.0030

    # Planar coordinates used for route comparison
    test-geo-utils project --lat 53.5 --lng 10 --zone 32

    # Decode polyline to see coordinates
    test-geo-utils decode-polyline --polyline "encoded_string" --verbose

    # Compare two routes
    test-geo-utils polyline-hausdorff --polyline1 "route_a" --polyline2 "route_b" --points 20
`)
}
