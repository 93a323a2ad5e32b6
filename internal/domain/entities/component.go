package entities

// ComponentType classifies a component in the BOM
type ComponentType string

// Component types used by the pipeline
const (
	TypeApplication ComponentType = "application"
	TypeLibrary     ComponentType = "library"
)

// License is one resolved license entry. Exactly one of Expression or
// Name is set: Expression holds a syntactically valid SPDX expression,
// Name holds the declared free-text fallback when the expression did
// not parse.
type License struct {
	Expression string
	Name       string
}

// Hash is a cryptographic digest of a component
type Hash struct {
	Algorithm string // "SHA-256", "SHA-512", ...
	Value     string // hex-encoded
}

// Component is the enriched BOM record derived from one PackageNode.
// One Component exists per unique package identity regardless of how
// many graph paths reach the package.
type Component struct {
	// BOMRef is the document-local reference used by Relationships.
	// It is the identity package URL, unique within one document.
	BOMRef  string
	Type    ComponentType
	Name    string
	Version string
	// PackageURL is the full purl including source and checksum qualifiers.
	PackageURL  string
	Description string
	Author      string
	Licenses    []License
	Hashes      []Hash
	// Root marks the workspace package(s) the document describes.
	Root bool
}

// Relationship records which components a source component depends on.
// DependsOn holds bom-refs, sorted and deduplicated. An empty DependsOn
// is meaningful: the component is known to have no dependencies.
type Relationship struct {
	Ref       string
	DependsOn []string
}
