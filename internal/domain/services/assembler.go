package services

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/ochairo/cratebom/internal/domain/entities"
)

// AssemblerService arranges enriched components and followed edges into
// the final document-level model and enforces document-wide invariants.
type AssemblerService struct{}

// NewAssemblerService creates a new assembler service
func NewAssemblerService() *AssemblerService {
	return &AssemblerService{}
}

// Assemble builds the BomDocument. The first root becomes the document
// subject; remaining roots stay in the component list with their Root
// flag set, sharing one component pool and one relationship graph.
//
// Edges followed under multiple kinds for the same parent/child pair
// collapse to a single relationship entry: kind is a traversal-time
// filter, the CycloneDX dependency graph carries no kind attribute.
func (s *AssemblerService) Assemble(components []entities.Component, followed []entities.DependencyEdge, roots []entities.PackageID, tool entities.Tool, specVersion entities.SpecVersion) (*entities.BomDocument, error) {
	if len(components) == 0 {
		return nil, &entities.AssemblyInvariantError{Msg: "no components to assemble"}
	}
	if len(roots) == 0 {
		return nil, &entities.AssemblyInvariantError{Msg: "no roots designated"}
	}

	byRef := make(map[string]*entities.Component, len(components))
	byPurl := make(map[string]bool, len(components))
	for i := range components {
		c := &components[i]
		if _, dup := byRef[c.BOMRef]; dup {
			return nil, &entities.AssemblyInvariantError{
				Ref: c.BOMRef,
				Msg: "duplicate bom-ref in component set",
			}
		}
		if byPurl[c.PackageURL] {
			return nil, &entities.AssemblyInvariantError{
				Ref: c.BOMRef,
				Msg: "duplicate package URL in component set",
			}
		}
		byRef[c.BOMRef] = c
		byPurl[c.PackageURL] = true
	}

	// Group followed edges by parent, dedup targets.
	dependsOn := make(map[string]map[string]bool)
	for _, edge := range followed {
		fromRef := BOMRef(edge.From)
		toRef := BOMRef(edge.To)
		if _, ok := byRef[fromRef]; !ok {
			return nil, &entities.AssemblyInvariantError{
				Ref: fromRef,
				Msg: fmt.Sprintf("followed edge source %s has no component", edge.From),
			}
		}
		if _, ok := byRef[toRef]; !ok {
			return nil, &entities.AssemblyInvariantError{
				Ref: toRef,
				Msg: fmt.Sprintf("followed edge target %s has no component", edge.To),
			}
		}
		if dependsOn[fromRef] == nil {
			dependsOn[fromRef] = make(map[string]bool)
		}
		dependsOn[fromRef][toRef] = true
	}

	// One relationship entry per component, empty entries included, so
	// consumers can distinguish "no dependencies" from "not analyzed".
	relationships := make([]entities.Relationship, 0, len(components))
	for i := range components {
		ref := components[i].BOMRef
		targets := make([]string, 0, len(dependsOn[ref]))
		for target := range dependsOn[ref] {
			targets = append(targets, target)
		}
		sort.Strings(targets)
		relationships = append(relationships, entities.Relationship{Ref: ref, DependsOn: targets})
	}

	subjectRef := BOMRef(roots[0])
	subject, ok := byRef[subjectRef]
	if !ok {
		return nil, &entities.AssemblyInvariantError{
			Ref: subjectRef,
			Msg: fmt.Sprintf("root %s has no component", roots[0]),
		}
	}

	rest := make([]entities.Component, 0, len(components)-1)
	for i := range components {
		if components[i].BOMRef == subjectRef {
			continue
		}
		rest = append(rest, components[i])
	}

	doc := &entities.BomDocument{
		SerialNumber:  "urn:uuid:" + uuid.New().String(),
		SpecVersion:   specVersion,
		Version:       1,
		Timestamp:     time.Now().UTC(),
		Tool:          tool,
		Subject:       subject,
		Components:    rest,
		Relationships: relationships,
	}

	if err := s.checkInvariants(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// checkInvariants verifies every relationship reference resolves to a
// component in the same document. A violation here is a defect in the
// resolver or enricher, never silently fixed.
func (s *AssemblerService) checkInvariants(doc *entities.BomDocument) error {
	for _, rel := range doc.Relationships {
		if _, ok := doc.Component(rel.Ref); !ok {
			return &entities.AssemblyInvariantError{
				Ref: rel.Ref,
				Msg: "relationship source references no component",
			}
		}
		for _, target := range rel.DependsOn {
			if _, ok := doc.Component(target); !ok {
				return &entities.AssemblyInvariantError{
					Ref: target,
					Msg: fmt.Sprintf("relationship of %q references no component", rel.Ref),
				}
			}
		}
	}
	return nil
}
