// Package services contains the dependency-graph-to-BOM transformation logic.
package services

import (
	"fmt"

	"github.com/ochairo/cratebom/internal/domain/entities"
	"github.com/ochairo/cratebom/internal/domain/interfaces"
)

// Resolution is the outcome of a policy-filtered graph traversal:
// the packages actually reached and the edges actually followed.
// Node order is BFS discovery order from the roots, stable for
// identical input.
type Resolution struct {
	Nodes []*entities.PackageNode
	Edges []entities.DependencyEdge
	Roots []entities.PackageID
}

// ResolverService walks the normalized graph from the workspace roots
// and applies the inclusion policy.
type ResolverService struct {
	logger interfaces.Logger
}

// NewResolverService creates a new resolver service
func NewResolverService(logger interfaces.Logger) *ResolverService {
	if logger == nil {
		logger = &interfaces.NoOpLogger{}
	}
	return &ResolverService{logger: logger}
}

// Resolve traverses the graph breadth-first from each root, visiting
// every package at most once regardless of how many paths reach it.
// A diamond-shaped dependency therefore yields exactly one node.
//
// An edge is followed only if its kind passes the policy, its platform
// condition matches the target filter, and it is active in the current
// resolution. Edges failing any check are dropped entirely.
//
// A cycle among the followed edges means the resolver upstream produced
// an invalid resolution; that is fatal, never silently broken.
func (s *ResolverService) Resolve(graph *entities.ResolvedGraph, roots []entities.PackageID, policy entities.InclusionPolicy) (*Resolution, error) {
	if graph == nil {
		return nil, &entities.ResolutionInvariantError{Kind: "missing_node", Msg: "graph is nil"}
	}
	if len(roots) == 0 {
		roots = graph.Roots()
	}

	visited := make(map[entities.PackageID]bool)
	var nodes []*entities.PackageNode
	var followed []entities.DependencyEdge

	type queueItem struct {
		id    entities.PackageID
		depth int
	}

	// Seed every root at depth 0 before walking. A root that is also
	// another root's dependency keeps its depth-0 seat, so its own
	// direct edges survive a top-level cut.
	var queue []queueItem
	for _, root := range roots {
		if visited[root] {
			continue
		}
		rootNode, ok := graph.Node(root)
		if !ok {
			return nil, &entities.ResolutionInvariantError{
				Kind: "missing_node",
				Msg:  fmt.Sprintf("root %s not found in graph", root),
			}
		}
		visited[root] = true
		nodes = append(nodes, rootNode)
		queue = append(queue, queueItem{id: root, depth: 0})
	}

	for len(queue) > 0 {
		item := queue[0]
		queue = queue[1:]

		if policy.TopLevelOnly && item.depth >= 1 {
			continue
		}

		for _, edge := range graph.EdgesFrom(item.id) {
			follow, err := s.shouldFollow(edge, policy)
			if err != nil {
				return nil, err
			}
			if !follow {
				s.logger.Debug("edge dropped by policy",
					interfaces.F("from", edge.From.Name),
					interfaces.F("to", edge.To.Name),
					interfaces.F("kind", string(edge.Kind)))
				continue
			}
			followed = append(followed, edge)
			if visited[edge.To] {
				continue
			}
			child, ok := graph.Node(edge.To)
			if !ok {
				return nil, &entities.ResolutionInvariantError{
					Kind: "missing_node",
					Msg:  fmt.Sprintf("edge from %s references missing package %s", edge.From, edge.To),
				}
			}
			visited[edge.To] = true
			nodes = append(nodes, child)
			queue = append(queue, queueItem{id: edge.To, depth: item.depth + 1})
		}
	}

	if err := detectCycle(followed); err != nil {
		return nil, err
	}

	s.logger.Debug("resolution complete",
		interfaces.F("packages", len(nodes)),
		interfaces.F("edges", len(followed)))

	return &Resolution{Nodes: nodes, Edges: followed, Roots: roots}, nil
}

// shouldFollow applies the three edge checks: kind, platform, activation
func (s *ResolverService) shouldFollow(edge entities.DependencyEdge, policy entities.InclusionPolicy) (bool, error) {
	if !edge.Active {
		return false, nil
	}
	allowed, err := policy.AllowsKind(edge.Kind)
	if err != nil {
		return false, &entities.ResolutionInvariantError{
			Kind: "invalid_edge",
			Msg:  fmt.Sprintf("edge %s -> %s: %v", edge.From, edge.To, err),
		}
	}
	if !allowed {
		return false, nil
	}
	return policy.Target.Matches(edge.Target), nil
}

// detectCycle runs a DFS coloring pass over the followed edges.
// Colors: 0 = unvisited, 1 = in progress, 2 = done.
func detectCycle(edges []entities.DependencyEdge) error {
	adjacency := make(map[entities.PackageID][]entities.PackageID)
	for _, e := range edges {
		adjacency[e.From] = append(adjacency[e.From], e.To)
	}

	color := make(map[entities.PackageID]int)
	var path []entities.PackageID

	var dfs func(id entities.PackageID) error
	dfs = func(id entities.PackageID) error {
		color[id] = 1
		path = append(path, id)

		for _, next := range adjacency[id] {
			if color[next] == 1 {
				cycleStart := 0
				for i, p := range path {
					if p == next {
						cycleStart = i
						break
					}
				}
				names := make([]string, 0, len(path)-cycleStart+1)
				for _, p := range path[cycleStart:] {
					names = append(names, p.Name+"@"+p.Version)
				}
				names = append(names, next.Name+"@"+next.Version)
				return &entities.ResolutionInvariantError{
					Kind: "cycle",
					Msg:  fmt.Sprintf("cycle detected: %v", names),
				}
			}
			if color[next] == 0 {
				if err := dfs(next); err != nil {
					return err
				}
			}
		}

		path = path[:len(path)-1]
		color[id] = 2
		return nil
	}

	for _, e := range edges {
		if color[e.From] == 0 {
			if err := dfs(e.From); err != nil {
				return err
			}
		}
	}
	return nil
}
