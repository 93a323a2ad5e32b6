// Package gateways provides infrastructure adapters for the domain layer.
package gateways

import (
	"fmt"

	"github.com/ochairo/cratebom/internal/domain/entities"
)

// GraphGateway normalizes the resolver's raw graph into an indexed,
// integrity-checked view. A malformed graph is an upstream resolver
// defect and fails the run.
type GraphGateway struct{}

// NewGraphGateway creates a new graph gateway
//
//nolint:revive // unexported-return: Intentionally returns concrete type for testability
func NewGraphGateway() *GraphGateway {
	return &GraphGateway{}
}

// Normalize indexes the raw graph by package identity and verifies
// referential integrity. Node iteration order follows the input node
// list; per-parent edge order follows the input edge list, which the
// resolver emits in declaration order.
func (g *GraphGateway) Normalize(raw *entities.RawGraph) (*entities.ResolvedGraph, error) {
	if raw == nil {
		return nil, &entities.GraphAdapterError{Msg: "raw graph is nil"}
	}
	if len(raw.Nodes) == 0 {
		return nil, &entities.GraphAdapterError{Msg: "raw graph has no packages"}
	}

	order := make([]entities.PackageID, 0, len(raw.Nodes))
	nodes := make(map[entities.PackageID]*entities.PackageNode, len(raw.Nodes))
	for i := range raw.Nodes {
		node := &raw.Nodes[i]
		id := node.ID()
		if node.Name == "" {
			return nil, &entities.GraphAdapterError{
				Msg: fmt.Sprintf("package at index %d has no name", i),
			}
		}
		if _, dup := nodes[id]; dup {
			return nil, &entities.GraphAdapterError{
				Msg: fmt.Sprintf("duplicate package identity %s", id),
			}
		}
		nodes[id] = node
		order = append(order, id)
	}

	edges := make(map[entities.PackageID][]entities.DependencyEdge)
	for _, edge := range raw.Edges {
		if _, ok := nodes[edge.From]; !ok {
			return nil, &entities.GraphAdapterError{
				Msg: fmt.Sprintf("edge references unknown parent %s", edge.From),
			}
		}
		if _, ok := nodes[edge.To]; !ok {
			return nil, &entities.GraphAdapterError{
				Msg: fmt.Sprintf("edge from %s references unknown child %s", edge.From, edge.To),
			}
		}
		if edge.From == edge.To {
			return nil, &entities.GraphAdapterError{
				Msg: fmt.Sprintf("self-referential edge on %s", edge.From),
			}
		}
		edges[edge.From] = append(edges[edge.From], edge)
	}

	if len(raw.Roots) == 0 {
		return nil, &entities.GraphAdapterError{Msg: "raw graph declares no workspace roots"}
	}
	roots := make([]entities.PackageID, 0, len(raw.Roots))
	seen := make(map[entities.PackageID]bool, len(raw.Roots))
	for _, root := range raw.Roots {
		if _, ok := nodes[root]; !ok {
			return nil, &entities.GraphAdapterError{
				Msg: fmt.Sprintf("root %s is not a package in the graph", root),
			}
		}
		if seen[root] {
			continue
		}
		seen[root] = true
		roots = append(roots, root)
	}

	return entities.NewResolvedGraph(order, nodes, edges, roots), nil
}
