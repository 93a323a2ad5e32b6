// Package gateways defines contracts for infrastructure adapters
// consumed by the domain layer.
package gateways

import (
	"io"

	"github.com/ochairo/cratebom/internal/domain/entities"
)

// BOMSerializer renders an assembled document to its wire format.
// Spec-version-specific field placement, escaping and schema shape are
// the serializer's responsibility; the core never hand-builds bytes.
type BOMSerializer interface {
	Serialize(w io.Writer, doc *entities.BomDocument, format entities.OutputFormat) error
}

// GraphLoader reads a resolver output document from disk into the raw
// graph model. Implementations exist for cargo-metadata JSON and for
// YAML graph snapshots.
type GraphLoader interface {
	Load(path string) (*entities.RawGraph, error)
}
