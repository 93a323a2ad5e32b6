// Package entities defines core domain models and data structures.
package entities

import "fmt"

// DependencyKind classifies a dependency edge by when it is used
type DependencyKind string

// Dependency edge kinds as reported by the resolver
const (
	KindNormal      DependencyKind = "normal"
	KindBuild       DependencyKind = "build"
	KindDevelopment DependencyKind = "development"
)

// ParseDependencyKind converts a resolver kind string into a DependencyKind.
// An empty string means a normal (runtime) dependency.
func ParseDependencyKind(s string) (DependencyKind, error) {
	switch s {
	case "", "normal":
		return KindNormal, nil
	case "build":
		return KindBuild, nil
	case "dev", "development":
		return KindDevelopment, nil
	default:
		return "", fmt.Errorf("unknown dependency kind %q", s)
	}
}

// SourceKind classifies where a package was obtained from
type SourceKind string

// Package source kinds
const (
	SourceRegistry SourceKind = "registry"
	SourceGit      SourceKind = "git"
	SourcePath     SourceKind = "path"
)

// DefaultRegistryURL is the public crates.io registry index.
// Packages from this source need no registry qualifier in their package URL.
const DefaultRegistryURL = "https://github.com/rust-lang/crates.io-index"

// PackageSource identifies the origin of a package
type PackageSource struct {
	Kind SourceKind
	// URL is the registry index URL or git repository URL.
	// Empty for path sources.
	URL string
	// Reference is the pinned git revision for git sources.
	Reference string
}

// IsDefaultRegistry returns true if the source is the public default registry
func (s PackageSource) IsDefaultRegistry() bool {
	return s.Kind == SourceRegistry && (s.URL == "" || s.URL == DefaultRegistryURL)
}

// String renders the source in a diagnostic-friendly form
func (s PackageSource) String() string {
	switch s.Kind {
	case SourceGit:
		if s.Reference != "" {
			return fmt.Sprintf("git+%s#%s", s.URL, s.Reference)
		}
		return "git+" + s.URL
	case SourcePath:
		return "path"
	default:
		if s.URL == "" {
			return string(SourceRegistry)
		}
		return "registry+" + s.URL
	}
}

// PackageID is the stable identity of a resolved package.
// Two packages with equal name, version and source are the same package
// no matter how many graph paths reach them.
type PackageID struct {
	Name    string
	Version string
	Source  PackageSource
}

// String renders the identity for diagnostics
func (id PackageID) String() string {
	return fmt.Sprintf("%s@%s (%s)", id.Name, id.Version, id.Source)
}

// PackageNode is one resolved package as reported by the resolver.
// Immutable once queried.
type PackageNode struct {
	Name    string
	Version string
	Source  PackageSource

	// Checksum is the package archive digest, hex-encoded SHA-256,
	// empty when the source provides none (git and path sources).
	Checksum string
	// License is the declared license expression, possibly malformed,
	// empty when the manifest declares none.
	License     string
	Authors     []string
	Description string
	// ManifestPath is the absolute filesystem location of the package manifest.
	ManifestPath string
	// WorkspaceMember is true for packages that are part of the local workspace.
	WorkspaceMember bool
}

// ID returns the stable identity of the node
func (n *PackageNode) ID() PackageID {
	return PackageID{Name: n.Name, Version: n.Version, Source: n.Source}
}

// DependencyEdge is one resolved dependency relation between two packages
type DependencyEdge struct {
	From PackageID
	To   PackageID
	Kind DependencyKind
	// Target is the platform condition the edge is gated on:
	// a target triple or a cfg() expression. Empty means target-independent.
	Target string
	// Optional is true for edges declared behind an optional feature.
	Optional bool
	// Active is true when the edge participates in the current resolution.
	// Edges gated behind unselected features are present but inactive.
	Active bool
}

// RawGraph is the resolver's graph as handed to the pipeline:
// a flat node list, a flat edge list and the workspace roots.
// It is normalized into a ResolvedGraph before any traversal.
type RawGraph struct {
	Nodes []PackageNode
	Edges []DependencyEdge
	Roots []PackageID
}

// ResolvedGraph is the normalized, indexed view of a RawGraph.
// Node iteration order and per-parent edge order are stable across runs
// for identical input.
type ResolvedGraph struct {
	order []PackageID
	nodes map[PackageID]*PackageNode
	edges map[PackageID][]DependencyEdge
	roots []PackageID
}

// NewResolvedGraph builds the indexed view. Callers must have verified
// referential integrity beforehand; this constructor only stores.
func NewResolvedGraph(order []PackageID, nodes map[PackageID]*PackageNode, edges map[PackageID][]DependencyEdge, roots []PackageID) *ResolvedGraph {
	return &ResolvedGraph{order: order, nodes: nodes, edges: edges, roots: roots}
}

// Nodes returns all package identities in stable input order
func (g *ResolvedGraph) Nodes() []PackageID {
	out := make([]PackageID, len(g.order))
	copy(out, g.order)
	return out
}

// Node looks up a package by identity
func (g *ResolvedGraph) Node(id PackageID) (*PackageNode, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// EdgesFrom returns the outgoing edges of a package in declaration order
func (g *ResolvedGraph) EdgesFrom(id PackageID) []DependencyEdge {
	return g.edges[id]
}

// Roots returns the workspace root packages
func (g *ResolvedGraph) Roots() []PackageID {
	out := make([]PackageID, len(g.roots))
	copy(out, g.roots)
	return out
}

// Len returns the number of packages in the graph
func (g *ResolvedGraph) Len() int {
	return len(g.order)
}
