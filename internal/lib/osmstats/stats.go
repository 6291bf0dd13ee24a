// Package osmstats collects structural statistics of OSM data sets that
// explain the import and routing times of the benchmark datasets.
package osmstats

import (
	"errors"
	"strconv"

	"github.com/paulmach/osm"
)

// ErrNoNodes is returned when a summary is requested before any node was seen
var ErrNoNodes = errors.New("no nodes")

// NodeDegrees counts how many way segments touch each node
type NodeDegrees struct {
	counts map[osm.NodeID]int
}

// DegreeSummary is the degree histogram and the average node degree.
// Histogram[d] is the number of nodes with degree d, for d in 0..max.
type DegreeSummary struct {
	Nodes     int
	Histogram []int
	Average   float64
}

func NewNodeDegrees() *NodeDegrees {
	return &NodeDegrees{counts: make(map[osm.NodeID]int)}
}

// Add accumulates the node references of a way. Other objects are ignored.
// A single-node way is both its own start and end, so its node gets 2.
func (d *NodeDegrees) Add(o osm.Object) {
	way, ok := o.(*osm.Way)
	if !ok || len(way.Nodes) == 0 {
		return
	}

	nodes := way.Nodes
	d.counts[nodes[0].ID]++
	d.counts[nodes[len(nodes)-1].ID]++
	if len(nodes) > 2 {
		for _, n := range nodes[1 : len(nodes)-1] {
			d.counts[n.ID] += 2
		}
	}
}

// Degree returns the accumulated degree of a node
func (d *NodeDegrees) Degree(id osm.NodeID) int {
	return d.counts[id]
}

// Annotate returns the nodes touched by at least one way in input order.
// Each copy carries a single count tag holding its degree instead of its tags.
func (d *NodeDegrees) Annotate(nodes []*osm.Node) []*osm.Node {
	var annotated []*osm.Node
	for _, n := range nodes {
		degree := d.counts[n.ID]
		if degree < 1 {
			continue
		}
		c := *n
		c.Tags = osm.Tags{{Key: "count", Value: strconv.Itoa(degree)}}
		annotated = append(annotated, &c)
	}
	return annotated
}

func (d *NodeDegrees) Summary() (DegreeSummary, error) {
	if len(d.counts) == 0 {
		return DegreeSummary{}, ErrNoNodes
	}

	maxDegree, sum := 0, 0
	for _, c := range d.counts {
		sum += c
		if c > maxDegree {
			maxDegree = c
		}
	}

	histogram := make([]int, maxDegree+1)
	for _, c := range d.counts {
		histogram[c]++
	}

	return DegreeSummary{
		Nodes:     len(d.counts),
		Histogram: histogram,
		Average:   float64(sum) / float64(len(d.counts)),
	}, nil
}

// XCoordinates groups nodes by their exact longitude
type XCoordinates struct {
	seen   map[osm.NodeID]struct{}
	byX    map[float64][]osm.NodeID
	xOrder []float64
}

// XCollision is a longitude shared by more than one node
type XCollision struct {
	X     float64
	Nodes []osm.NodeID
}

// XSummary describes how often nodes share an x coordinate. Histogram[k] is
// the number of x values shared by exactly k nodes, for k in 0..max.
type XSummary struct {
	TotalNodes int
	Collisions []XCollision
	Percent    float64
	Histogram  []int
}

func NewXCoordinates() *XCoordinates {
	return &XCoordinates{
		seen: make(map[osm.NodeID]struct{}),
		byX:  make(map[float64][]osm.NodeID),
	}
}

// Add records a node. Repeated node ids count once.
func (x *XCoordinates) Add(o osm.Object) {
	node, ok := o.(*osm.Node)
	if !ok {
		return
	}
	if _, dup := x.seen[node.ID]; dup {
		return
	}
	x.seen[node.ID] = struct{}{}

	if _, known := x.byX[node.Lon]; !known {
		x.xOrder = append(x.xOrder, node.Lon)
	}
	x.byX[node.Lon] = append(x.byX[node.Lon], node.ID)
}

// Colliding returns the nodes whose longitude is shared with another node, in
// input order and without tags
func (x *XCoordinates) Colliding(nodes []*osm.Node) []*osm.Node {
	var colliding []*osm.Node
	for _, n := range nodes {
		if len(x.byX[n.Lon]) < 2 {
			continue
		}
		c := *n
		c.Tags = nil
		colliding = append(colliding, &c)
	}
	return colliding
}

// Summary lists the collisions in order of first appearance
func (x *XCoordinates) Summary() (XSummary, error) {
	if len(x.seen) == 0 {
		return XSummary{}, ErrNoNodes
	}

	summary := XSummary{TotalNodes: len(x.seen)}
	maxOccurrences := 0
	for _, lon := range x.xOrder {
		nodes := x.byX[lon]
		if len(nodes) < 2 {
			continue
		}
		summary.Collisions = append(summary.Collisions, XCollision{X: lon, Nodes: nodes})
		if len(nodes) > maxOccurrences {
			maxOccurrences = len(nodes)
		}
	}

	summary.Percent = float64(len(summary.Collisions)) / float64(summary.TotalNodes) * 100
	if maxOccurrences > 0 {
		summary.Histogram = make([]int, maxOccurrences+1)
		for _, c := range summary.Collisions {
			summary.Histogram[len(c.Nodes)]++
		}
	}

	return summary, nil
}
