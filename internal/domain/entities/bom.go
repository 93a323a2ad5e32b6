package entities

import (
	"fmt"
	"time"
)

// SpecVersion is the CycloneDX specification version of the output document
type SpecVersion string

// Supported CycloneDX spec versions
const (
	SpecVersion1_3 SpecVersion = "1.3"
	SpecVersion1_4 SpecVersion = "1.4"
	SpecVersion1_5 SpecVersion = "1.5"
)

// DefaultSpecVersion is used when no version is requested
const DefaultSpecVersion = SpecVersion1_4

// ParseSpecVersion validates a requested spec version string
func ParseSpecVersion(s string) (SpecVersion, error) {
	switch SpecVersion(s) {
	case SpecVersion1_3, SpecVersion1_4, SpecVersion1_5:
		return SpecVersion(s), nil
	case "":
		return DefaultSpecVersion, nil
	default:
		return "", fmt.Errorf("unsupported spec version %q (supported: 1.3, 1.4, 1.5)", s)
	}
}

// OutputFormat selects the wire encoding of the serialized document
type OutputFormat string

// Output formats
const (
	FormatJSON OutputFormat = "json"
	FormatXML  OutputFormat = "xml"
)

// ParseOutputFormat validates a requested output format string
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch OutputFormat(s) {
	case FormatJSON, FormatXML:
		return OutputFormat(s), nil
	case "":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported output format %q (supported: json, xml)", s)
	}
}

// Tool identifies the generator in the document metadata
type Tool struct {
	Vendor  string
	Name    string
	Version string
}

// BomDocument is the fully assembled in-memory BOM, handed to the
// serializer and discarded. Immutable after assembly.
type BomDocument struct {
	// SerialNumber is the document identity, a urn:uuid generated per run.
	SerialNumber string
	SpecVersion  SpecVersion
	Version      int
	Timestamp    time.Time
	Tool         Tool
	// Subject is the primary component the document describes
	// (the first workspace root).
	Subject *Component
	// Components holds every component except the Subject, in stable
	// discovery order. Additional workspace roots appear here with
	// their Root flag set.
	Components []Component
	// Relationships holds one entry per component, Subject included.
	Relationships []Relationship
}

// Component looks up a component by bom-ref, Subject included
func (d *BomDocument) Component(ref string) (*Component, bool) {
	if d.Subject != nil && d.Subject.BOMRef == ref {
		return d.Subject, true
	}
	for i := range d.Components {
		if d.Components[i].BOMRef == ref {
			return &d.Components[i], true
		}
	}
	return nil, false
}

// ComponentCount returns the total number of components, Subject included
func (d *BomDocument) ComponentCount() int {
	n := len(d.Components)
	if d.Subject != nil {
		n++
	}
	return n
}
