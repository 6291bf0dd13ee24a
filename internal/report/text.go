package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/paulmach/osm"

	"github.com/hauke96/master-thesis/evaluation/internal/dataset"
	"github.com/hauke96/master-thesis/evaluation/internal/lib/osmstats"
)

// WriteCoordinateCount prints the coordinate count with and without duplicates
func WriteCoordinateCount(w io.Writer, count dataset.CoordinateCount) error {
	_, err := fmt.Fprintf(w,
		"Number of coordinates (with duplicates): %d\nNumber of coordinates (no duplicates):   %d\n",
		count.Total, count.Unique)
	return err
}

// WriteDegreeSummary prints the node degree histogram and the average degree
func WriteDegreeSummary(w io.Writer, summary osmstats.DegreeSummary) error {
	var b strings.Builder
	b.WriteString("Node degree histogram (degree with amount of nodes):\n")
	writeHistogram(&b, summary.Histogram)
	b.WriteString("Average node degree:\n")
	fmt.Fprintf(&b, "  %s\n", FullPrecision(summary.Average))

	_, err := io.WriteString(w, b.String())
	return err
}

// WriteXSummary prints every shared x coordinate with its nodes, followed by
// the totals and the occurrence histogram
func WriteXSummary(w io.Writer, summary osmstats.XSummary) error {
	var b strings.Builder
	for _, c := range summary.Collisions {
		ids := make([]string, len(c.Nodes))
		for i, id := range c.Nodes {
			ids[i] = fmt.Sprint(int64(id))
		}
		fmt.Fprintf(&b, "%s : %s\n", FullPrecision(c.X), strings.Join(ids, " "))
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "Total number of nodes:\n  %d\n", summary.TotalNodes)
	fmt.Fprintf(&b, "Number of non-unique x-coordinates:\n  %d\n", len(summary.Collisions))
	fmt.Fprintf(&b, "Percent of nodes with non-unique x-coord:\n  %s%%\n", FullPrecision(summary.Percent))
	b.WriteString("\nx-coord occurrence histogram:\n")
	writeHistogram(&b, summary.Histogram)

	_, err := io.WriteString(w, b.String())
	return err
}

// WriteOPLNodes prints one OPL line per node followed by two blank lines,
// which separate the listing from the summary printed after it
func WriteOPLNodes(w io.Writer, nodes []*osm.Node) error {
	var b strings.Builder
	for _, n := range nodes {
		b.WriteString(dataset.FormatOPLNode(n))
		b.WriteByte('\n')
	}
	b.WriteString("\n\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func writeHistogram(b *strings.Builder, histogram []int) {
	for value, count := range histogram {
		fmt.Fprintf(b, "  %d=%d\n", value, count)
	}
}
