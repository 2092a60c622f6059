package graph

import (
	"fmt"
	"math"

	"bishroute/internal/domain"
)

// metersPerDegree approximates one degree of latitude. Good enough for
// cell sizing at city scale.
const metersPerDegree = 111320.0

type node struct {
	id int
	pt domain.Point
}

type edge struct {
	to    int
	hours float64 // travel time at annotated speed
	km    float64
}

type cellKey struct {
	x, y int
}

// Graph is a weighted street graph. Edge cost is travel time, so shortest
// paths account for per-segment traffic speeds.
type Graph struct {
	nodes []node
	adj   map[int][]edge

	cells       map[cellKey][]int
	cellSizeDeg float64

	snapRadiusM float64
	maxSpeedKmh float64
}

// Build constructs a graph from annotated street segments. Consecutive
// polyline vertices become undirected edges; vertices closer than
// mergeRadiusM collapse into a single node so crossing streets connect.
// snapRadiusM bounds how far a query point may be from the network.
func Build(segments []domain.StreetSegment, mergeRadiusM, snapRadiusM float64) *Graph {
	g := &Graph{
		adj:         make(map[int][]edge),
		cells:       make(map[cellKey][]int),
		cellSizeDeg: math.Max(mergeRadiusM, 1) / metersPerDegree,
		snapRadiusM: snapRadiusM,
		maxSpeedKmh: 1,
	}

	for _, seg := range segments {
		if len(seg.Points) < 2 {
			continue
		}

		speed := seg.AvgSpeedKmh
		if speed <= 0 {
			speed = seg.Class.BaseSpeedKmh()
		}
		if speed > g.maxSpeedKmh {
			g.maxSpeedKmh = speed
		}

		prev := g.nodeFor(seg.Points[0], mergeRadiusM)
		for _, pt := range seg.Points[1:] {
			cur := g.nodeFor(pt, mergeRadiusM)
			if cur == prev {
				continue
			}
			km := domain.Haversine(g.nodes[prev].pt, g.nodes[cur].pt)
			g.addEdge(prev, cur, km, speed)
			g.addEdge(cur, prev, km, speed)
			prev = cur
		}
	}

	return g
}

// NodeCount reports the number of distinct graph nodes
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// MaxSpeedKmh is the fastest annotated segment speed in the graph, used as
// the heuristic divisor so the estimate never overstates remaining time
func (g *Graph) MaxSpeedKmh() float64 {
	return g.maxSpeedKmh
}

func (g *Graph) addEdge(from, to int, km, speedKmh float64) {
	g.adj[from] = append(g.adj[from], edge{to: to, hours: km / speedKmh, km: km})
}

// nodeFor returns the id of an existing node within mergeRadiusM of pt, or
// creates a new one
func (g *Graph) nodeFor(pt domain.Point, mergeRadiusM float64) int {
	key := g.cell(pt)
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			for _, id := range g.cells[cellKey{key.x + dx, key.y + dy}] {
				if domain.Haversine(g.nodes[id].pt, pt)*1000 <= mergeRadiusM {
					return id
				}
			}
		}
	}

	id := len(g.nodes)
	g.nodes = append(g.nodes, node{id: id, pt: pt})
	g.cells[key] = append(g.cells[key], id)
	return id
}

func (g *Graph) cell(pt domain.Point) cellKey {
	return cellKey{
		x: int(math.Floor(pt.Lng / g.cellSizeDeg)),
		y: int(math.Floor(pt.Lat / g.cellSizeDeg)),
	}
}

// snap finds the nearest graph node to pt within the snap radius
func (g *Graph) snap(pt domain.Point, label string) (int, error) {
	best := -1
	bestM := math.Inf(1)
	for _, n := range g.nodes {
		m := domain.Haversine(n.pt, pt) * 1000
		if m < bestM {
			bestM = m
			best = n.id
		}
	}

	if best < 0 || bestM > g.snapRadiusM {
		return 0, fmt.Errorf("%w: %s point %.0fm from nearest street", domain.ErrUnreachablePoint, label, bestM)
	}
	return best, nil
}
