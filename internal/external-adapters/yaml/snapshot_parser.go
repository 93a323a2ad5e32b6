// Package yaml provides YAML-based resolved-graph snapshot parsing.
//
// A snapshot is a hand-writable serialization of a resolver's output:
// packages, dependency edges and workspace roots. It exists so the
// pipeline can be driven without a live package manager, and as the
// fixture format for test corpora.
package yaml

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ochairo/cratebom/internal/domain/entities"
)

// yamlSnapshot represents the raw YAML structure
type yamlSnapshot struct {
	Roots    []string      `yaml:"roots"`
	Packages []yamlPackage `yaml:"packages"`
	Edges    []yamlEdge    `yaml:"edges"`
}

type yamlPackage struct {
	Name            string     `yaml:"name"`
	Version         string     `yaml:"version"`
	Source          yamlSource `yaml:"source"`
	Checksum        string     `yaml:"checksum"`
	License         string     `yaml:"license"`
	Authors         []string   `yaml:"authors"`
	Description     string     `yaml:"description"`
	ManifestPath    string     `yaml:"manifest_path"`
	WorkspaceMember bool       `yaml:"workspace_member"`
}

type yamlSource struct {
	Kind      string `yaml:"kind"` // registry | git | path; empty means registry
	URL       string `yaml:"url"`
	Reference string `yaml:"reference"`
}

type yamlEdge struct {
	From     string `yaml:"from"` // "name@version"
	To       string `yaml:"to"`
	Kind     string `yaml:"kind"` // normal | build | dev; empty means normal
	Target   string `yaml:"target"`
	Optional bool   `yaml:"optional"`
	// Active defaults to true when omitted.
	Active *bool `yaml:"active"`
}

// SnapshotParser parses YAML graph snapshot files
type SnapshotParser struct{}

// NewSnapshotParser creates a new snapshot parser
func NewSnapshotParser() *SnapshotParser {
	return &SnapshotParser{}
}

// Load parses a snapshot file into a RawGraph
func (p *SnapshotParser) Load(path string) (*entities.RawGraph, error) {
	//nolint:gosec // G304: path is the user-supplied graph snapshot location
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}
	return p.Parse(data)
}

// Parse parses snapshot bytes into a RawGraph.
// Packages are referenced by "name@version" in roots and edges; a
// snapshot with two packages sharing name and version is rejected as
// ambiguous.
func (p *SnapshotParser) Parse(data []byte) (*entities.RawGraph, error) {
	var snap yamlSnapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if len(snap.Packages) == 0 {
		return nil, fmt.Errorf("snapshot declares no packages")
	}

	byRef := make(map[string]entities.PackageID, len(snap.Packages))
	raw := &entities.RawGraph{}
	for i, pkg := range snap.Packages {
		if pkg.Name == "" {
			return nil, fmt.Errorf("package at index %d has no name", i)
		}
		if pkg.Version == "" {
			return nil, fmt.Errorf("package %q has no version", pkg.Name)
		}
		source, err := convertSource(pkg.Source)
		if err != nil {
			return nil, fmt.Errorf("package %q: %w", pkg.Name, err)
		}
		node := entities.PackageNode{
			Name:            pkg.Name,
			Version:         pkg.Version,
			Source:          source,
			Checksum:        pkg.Checksum,
			License:         pkg.License,
			Authors:         pkg.Authors,
			Description:     pkg.Description,
			ManifestPath:    pkg.ManifestPath,
			WorkspaceMember: pkg.WorkspaceMember,
		}
		ref := pkg.Name + "@" + pkg.Version
		if _, dup := byRef[ref]; dup {
			return nil, fmt.Errorf("ambiguous snapshot: multiple packages match %q", ref)
		}
		byRef[ref] = node.ID()
		raw.Nodes = append(raw.Nodes, node)
	}

	for i, edge := range snap.Edges {
		from, ok := byRef[edge.From]
		if !ok {
			return nil, fmt.Errorf("edge at index %d: unknown package %q", i, edge.From)
		}
		to, ok := byRef[edge.To]
		if !ok {
			return nil, fmt.Errorf("edge at index %d: unknown package %q", i, edge.To)
		}
		kind, err := entities.ParseDependencyKind(edge.Kind)
		if err != nil {
			return nil, fmt.Errorf("edge %s -> %s: %w", edge.From, edge.To, err)
		}
		active := true
		if edge.Active != nil {
			active = *edge.Active
		}
		raw.Edges = append(raw.Edges, entities.DependencyEdge{
			From:     from,
			To:       to,
			Kind:     kind,
			Target:   edge.Target,
			Optional: edge.Optional,
			Active:   active,
		})
	}

	for _, root := range snap.Roots {
		id, ok := byRef[root]
		if !ok {
			return nil, fmt.Errorf("root %q is not a declared package", root)
		}
		raw.Roots = append(raw.Roots, id)
	}
	if len(raw.Roots) == 0 {
		// Fall back to workspace members so minimal snapshots stay terse.
		for _, node := range raw.Nodes {
			if node.WorkspaceMember {
				raw.Roots = append(raw.Roots, node.ID())
			}
		}
	}
	if len(raw.Roots) == 0 {
		return nil, fmt.Errorf("snapshot declares no roots and no workspace members")
	}

	return raw, nil
}

// convertSource maps the raw source block to the domain source
func convertSource(src yamlSource) (entities.PackageSource, error) {
	kind := strings.TrimSpace(src.Kind)
	switch kind {
	case "", "registry":
		return entities.PackageSource{Kind: entities.SourceRegistry, URL: src.URL}, nil
	case "git":
		if src.URL == "" {
			return entities.PackageSource{}, fmt.Errorf("git source requires a url")
		}
		return entities.PackageSource{Kind: entities.SourceGit, URL: src.URL, Reference: src.Reference}, nil
	case "path":
		return entities.PackageSource{Kind: entities.SourcePath, URL: src.URL}, nil
	default:
		return entities.PackageSource{}, fmt.Errorf("unknown source kind %q", kind)
	}
}
