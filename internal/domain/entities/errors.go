package entities

import (
	"errors"
	"fmt"
)

// Sentinel errors for programmatic checking via errors.Is().
// Every one of these is fatal: the pipeline emits a complete and
// correct document or none at all.
var (
	// ErrGraphAdapter indicates a malformed input graph (upstream resolver defect).
	ErrGraphAdapter = errors.New("graph adapter error")

	// ErrResolutionInvariant indicates a cycle or missing node found mid-traversal.
	ErrResolutionInvariant = errors.New("resolution invariant violation")

	// ErrMetadata indicates structurally invalid required package metadata.
	ErrMetadata = errors.New("metadata error")

	// ErrAssemblyInvariant indicates an internal consistency defect in the
	// assembled document, such as a dangling relationship reference.
	ErrAssemblyInvariant = errors.New("assembly invariant violation")
)

// GraphAdapterError reports a malformed raw graph.
// Wraps ErrGraphAdapter for errors.Is() compatibility.
type GraphAdapterError struct {
	Msg string
}

func (e *GraphAdapterError) Error() string {
	if e.Msg == "" {
		return ErrGraphAdapter.Error()
	}
	return fmt.Sprintf("%s: %s", ErrGraphAdapter.Error(), e.Msg)
}

func (e *GraphAdapterError) Unwrap() error { return ErrGraphAdapter }

// ResolutionInvariantError reports a violated traversal invariant.
// Wraps ErrResolutionInvariant for errors.Is() compatibility.
type ResolutionInvariantError struct {
	Kind string // "cycle" or "missing_node"
	Msg  string
}

func (e *ResolutionInvariantError) Error() string {
	if e.Msg == "" {
		return ErrResolutionInvariant.Error()
	}
	return fmt.Sprintf("%s: %s", ErrResolutionInvariant.Error(), e.Msg)
}

func (e *ResolutionInvariantError) Unwrap() error { return ErrResolutionInvariant }

// MetadataError reports structurally invalid required metadata on a package.
// Missing optional metadata is not an error and never produces one of these.
// Wraps ErrMetadata for errors.Is() compatibility.
type MetadataError struct {
	Package string // identity of the offending package
	Field   string
	Msg     string
}

func (e *MetadataError) Error() string {
	return fmt.Sprintf("%s: package %s: %s: %s", ErrMetadata.Error(), e.Package, e.Field, e.Msg)
}

func (e *MetadataError) Unwrap() error { return ErrMetadata }

// AssemblyInvariantError reports an inconsistency in the assembled document.
// Wraps ErrAssemblyInvariant for errors.Is() compatibility.
type AssemblyInvariantError struct {
	Ref string // the bom-ref that triggered the failure
	Msg string
}

func (e *AssemblyInvariantError) Error() string {
	if e.Ref != "" {
		return fmt.Sprintf("%s: %q: %s", ErrAssemblyInvariant.Error(), e.Ref, e.Msg)
	}
	return fmt.Sprintf("%s: %s", ErrAssemblyInvariant.Error(), e.Msg)
}

func (e *AssemblyInvariantError) Unwrap() error { return ErrAssemblyInvariant }
