// Package cargometa parses the JSON document emitted by
// `cargo metadata --format-version 1` into the raw graph model.
//
// The package id strings inside the document are treated as opaque join
// keys between the packages table and the resolve table; they are never
// parsed structurally, so both the legacy and the url-form id syntaxes
// work unchanged.
package cargometa

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/ochairo/cratebom/internal/domain/entities"
)

type metadataDoc struct {
	Packages         []metadataPackage `json:"packages"`
	WorkspaceMembers []string          `json:"workspace_members"`
	Resolve          *metadataResolve  `json:"resolve"`
	Version          int               `json:"version"`
}

type metadataPackage struct {
	ID           string               `json:"id"`
	Name         string               `json:"name"`
	Version      string               `json:"version"`
	License      string               `json:"license"`
	Description  string               `json:"description"`
	Authors      []string             `json:"authors"`
	ManifestPath string               `json:"manifest_path"`
	Source       *string              `json:"source"`
	Dependencies []metadataDependency `json:"dependencies"`
}

type metadataDependency struct {
	Name     string  `json:"name"`
	Kind     *string `json:"kind"`
	Optional bool    `json:"optional"`
	Target   *string `json:"target"`
}

type metadataResolve struct {
	Nodes []resolveNode `json:"nodes"`
	Root  *string       `json:"root"`
}

type resolveNode struct {
	ID   string       `json:"id"`
	Deps []resolveDep `json:"deps"`
}

type resolveDep struct {
	Name     string           `json:"name"`
	Pkg      string           `json:"pkg"`
	DepKinds []resolveDepKind `json:"dep_kinds"`
}

type resolveDepKind struct {
	Kind   *string `json:"kind"`
	Target *string `json:"target"`
}

// MetadataParser parses cargo-metadata JSON documents
type MetadataParser struct{}

// NewMetadataParser creates a new metadata parser
func NewMetadataParser() *MetadataParser {
	return &MetadataParser{}
}

// Load parses a metadata file into a RawGraph
func (p *MetadataParser) Load(path string) (*entities.RawGraph, error) {
	//nolint:gosec // G304: path is the user-supplied metadata location
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}
	return p.Parse(data)
}

// Parse converts metadata bytes into a RawGraph. Only documents with a
// resolve section are usable: without it there is no resolved graph to
// describe.
func (p *MetadataParser) Parse(data []byte) (*entities.RawGraph, error) {
	var doc metadataDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &entities.GraphAdapterError{Msg: fmt.Sprintf("malformed metadata JSON: %v", err)}
	}
	if doc.Resolve == nil {
		return nil, &entities.GraphAdapterError{Msg: "metadata has no resolve section (run cargo metadata without --no-deps)"}
	}
	if len(doc.Packages) == 0 {
		return nil, &entities.GraphAdapterError{Msg: "metadata declares no packages"}
	}

	members := make(map[string]bool, len(doc.WorkspaceMembers))
	for _, id := range doc.WorkspaceMembers {
		members[id] = true
	}

	byID := make(map[string]entities.PackageID, len(doc.Packages))
	declarations := make(map[string][]metadataDependency, len(doc.Packages))
	raw := &entities.RawGraph{}
	for _, pkg := range doc.Packages {
		source, err := parseSource(pkg.Source)
		if err != nil {
			return nil, &entities.GraphAdapterError{
				Msg: fmt.Sprintf("package %s@%s: %v", pkg.Name, pkg.Version, err),
			}
		}
		node := entities.PackageNode{
			Name:            pkg.Name,
			Version:         pkg.Version,
			Source:          source,
			License:         pkg.License,
			Authors:         pkg.Authors,
			Description:     pkg.Description,
			ManifestPath:    pkg.ManifestPath,
			WorkspaceMember: members[pkg.ID],
		}
		byID[pkg.ID] = node.ID()
		declarations[pkg.ID] = pkg.Dependencies
		raw.Nodes = append(raw.Nodes, node)
	}

	for _, node := range doc.Resolve.Nodes {
		from, ok := byID[node.ID]
		if !ok {
			return nil, &entities.GraphAdapterError{
				Msg: fmt.Sprintf("resolve node references unknown package id %q", node.ID),
			}
		}
		for _, dep := range node.Deps {
			to, ok := byID[dep.Pkg]
			if !ok {
				return nil, &entities.GraphAdapterError{
					Msg: fmt.Sprintf("resolve dep of %s references unknown package id %q", from, dep.Pkg),
				}
			}
			optional := declaredOptional(declarations[node.ID], to.Name)
			kinds := dep.DepKinds
			if len(kinds) == 0 {
				// Older cargo versions omit dep_kinds; treat as one normal edge.
				kinds = []resolveDepKind{{}}
			}
			for _, dk := range kinds {
				kind, err := entities.ParseDependencyKind(deref(dk.Kind))
				if err != nil {
					return nil, &entities.GraphAdapterError{
						Msg: fmt.Sprintf("edge %s -> %s: %v", from, to, err),
					}
				}
				raw.Edges = append(raw.Edges, entities.DependencyEdge{
					From:     from,
					To:       to,
					Kind:     kind,
					Target:   deref(dk.Target),
					Optional: optional,
					// Edges present in the resolve section are active:
					// deps gated behind unselected features do not appear.
					Active: true,
				})
			}
		}
	}

	if doc.Resolve.Root != nil {
		root, ok := byID[*doc.Resolve.Root]
		if !ok {
			return nil, &entities.GraphAdapterError{
				Msg: fmt.Sprintf("resolve root references unknown package id %q", *doc.Resolve.Root),
			}
		}
		raw.Roots = []entities.PackageID{root}
	} else {
		for _, id := range doc.WorkspaceMembers {
			member, ok := byID[id]
			if !ok {
				return nil, &entities.GraphAdapterError{
					Msg: fmt.Sprintf("workspace member references unknown package id %q", id),
				}
			}
			raw.Roots = append(raw.Roots, member)
		}
	}

	return raw, nil
}

// parseSource converts a cargo source string into the domain source.
// A nil source marks a local workspace or path package.
// Registry form: "registry+https://github.com/rust-lang/crates.io-index"
// Git form: "git+https://host/repo?rev=...#<resolved-revision>"
func parseSource(source *string) (entities.PackageSource, error) {
	if source == nil || *source == "" {
		return entities.PackageSource{Kind: entities.SourcePath}, nil
	}
	s := *source
	switch {
	case strings.HasPrefix(s, "registry+"):
		return entities.PackageSource{
			Kind: entities.SourceRegistry,
			URL:  strings.TrimPrefix(s, "registry+"),
		}, nil
	case strings.HasPrefix(s, "sparse+"):
		return entities.PackageSource{
			Kind: entities.SourceRegistry,
			URL:  strings.TrimPrefix(s, "sparse+"),
		}, nil
	case strings.HasPrefix(s, "git+"):
		rest := strings.TrimPrefix(s, "git+")
		reference := ""
		if i := strings.LastIndex(rest, "#"); i >= 0 {
			reference = rest[i+1:]
			rest = rest[:i]
		}
		u, err := url.Parse(rest)
		if err != nil {
			return entities.PackageSource{}, fmt.Errorf("malformed git source %q: %w", s, err)
		}
		u.RawQuery = ""
		return entities.PackageSource{
			Kind:      entities.SourceGit,
			URL:       u.String(),
			Reference: reference,
		}, nil
	case strings.HasPrefix(s, "path+"):
		return entities.PackageSource{Kind: entities.SourcePath}, nil
	default:
		return entities.PackageSource{}, fmt.Errorf("unknown source scheme %q", s)
	}
}

// declaredOptional finds the optional flag on the parent's declaration
// of a dependency by crate name
func declaredOptional(declarations []metadataDependency, name string) bool {
	for _, d := range declarations {
		if d.Name == name && d.Optional {
			return true
		}
	}
	return false
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
