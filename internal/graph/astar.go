package graph

import (
	"container/heap"
	"fmt"
	"slices"

	"bishroute/internal/domain"
)

// Path is a route computed on the street graph
type Path struct {
	Points     []domain.Point
	DistanceKm float64
	Hours      float64
}

// FindPath runs A* between the graph nodes nearest to start and end and
// returns the travelled coordinate sequence including the raw endpoints.
// Fails with domain.ErrUnreachablePoint when an endpoint cannot be snapped
// and domain.ErrNoRouteFound when the snapped nodes are disconnected.
func (g *Graph) FindPath(start, end domain.Point) (*Path, error) {
	src, err := g.snap(start, "start")
	if err != nil {
		return nil, err
	}
	dst, err := g.snap(end, "end")
	if err != nil {
		return nil, err
	}

	pq := newPriorityQueue()
	heap.Init(pq)

	gScore := map[int]float64{src: 0}
	cameFrom := make(map[int]int)
	closed := make(map[int]bool)

	pq.push(src, 0, g.heuristic(src, dst))

	for pq.Len() > 0 {
		current := heap.Pop(pq).(*queueItem)
		u := current.node

		// First pop of the goal is optimal: the heuristic never
		// overestimates, so no cheaper path remains queued
		if u == dst {
			points := g.reconstruct(cameFrom, u, start, end)
			return &Path{
				Points:     points,
				DistanceKm: domain.PathLengthKm(points),
				Hours:      current.g,
			}, nil
		}

		if closed[u] {
			continue
		}
		closed[u] = true

		for _, e := range g.adj[u] {
			if closed[e.to] {
				continue
			}

			tentative := gScore[u] + e.hours
			if old, seen := gScore[e.to]; seen && tentative >= old {
				continue
			}

			gScore[e.to] = tentative
			cameFrom[e.to] = u

			f := tentative + g.heuristic(e.to, dst)
			if !pq.update(e.to, tentative, f) {
				pq.push(e.to, tentative, f)
			}
		}
	}

	return nil, fmt.Errorf("%w: street network disconnected between endpoints", domain.ErrNoRouteFound)
}

// heuristic is the straight-line travel time lower bound in hours
func (g *Graph) heuristic(from, to int) float64 {
	return domain.Haversine(g.nodes[from].pt, g.nodes[to].pt) / g.maxSpeedKmh
}

func (g *Graph) reconstruct(cameFrom map[int]int, current int, start, end domain.Point) []domain.Point {
	nodePath := []int{current}
	for {
		prev, ok := cameFrom[current]
		if !ok {
			break
		}
		nodePath = append(nodePath, prev)
		current = prev
	}
	slices.Reverse(nodePath)

	points := make([]domain.Point, 0, len(nodePath)+2)
	points = append(points, start)
	for _, id := range nodePath {
		points = append(points, g.nodes[id].pt)
	}
	points = append(points, end)
	return points
}
