package gateways

import (
	"fmt"
	"io"

	cdx "github.com/CycloneDX/cyclonedx-go"

	"github.com/ochairo/cratebom/internal/domain/entities"
)

// CycloneDXSerializer renders an assembled document with the official
// CycloneDX library, which owns spec-version-specific field placement,
// escaping and schema shape.
type CycloneDXSerializer struct{}

// NewCycloneDXSerializer creates a new serializer gateway
//
//nolint:revive // unexported-return: Intentionally returns concrete type for testability
func NewCycloneDXSerializer() *CycloneDXSerializer {
	return &CycloneDXSerializer{}
}

// Serialize encodes the document as JSON or XML at its spec version
func (s *CycloneDXSerializer) Serialize(w io.Writer, doc *entities.BomDocument, format entities.OutputFormat) error {
	if doc == nil {
		return fmt.Errorf("document is nil")
	}

	bom, err := s.toCDX(doc)
	if err != nil {
		return err
	}

	fileFormat := cdx.BOMFileFormatJSON
	if format == entities.FormatXML {
		fileFormat = cdx.BOMFileFormatXML
	}

	specVersion, err := cdxSpecVersion(doc.SpecVersion)
	if err != nil {
		return err
	}

	encoder := cdx.NewBOMEncoder(w, fileFormat)
	encoder.SetPretty(true)
	if err := encoder.EncodeVersion(bom, specVersion); err != nil {
		return fmt.Errorf("failed to encode BOM: %w", err)
	}
	return nil
}

// toCDX maps the domain model onto the cyclonedx-go model
func (s *CycloneDXSerializer) toCDX(doc *entities.BomDocument) (*cdx.BOM, error) {
	bom := cdx.NewBOM()
	bom.SerialNumber = doc.SerialNumber
	bom.Version = doc.Version
	bom.Metadata = &cdx.Metadata{
		Timestamp: doc.Timestamp.Format("2006-01-02T15:04:05Z07:00"),
		Tools: &cdx.ToolsChoice{
			Tools: &[]cdx.Tool{{
				Vendor:  doc.Tool.Vendor,
				Name:    doc.Tool.Name,
				Version: doc.Tool.Version,
			}},
		},
	}
	if doc.Subject != nil {
		subject := s.componentToCDX(doc.Subject)
		bom.Metadata.Component = &subject
	}

	components := make([]cdx.Component, 0, len(doc.Components))
	for i := range doc.Components {
		components = append(components, s.componentToCDX(&doc.Components[i]))
	}
	bom.Components = &components

	dependencies := make([]cdx.Dependency, 0, len(doc.Relationships))
	for _, rel := range doc.Relationships {
		targets := make([]string, len(rel.DependsOn))
		copy(targets, rel.DependsOn)
		dependencies = append(dependencies, cdx.Dependency{
			Ref:          rel.Ref,
			Dependencies: &targets,
		})
	}
	bom.Dependencies = &dependencies

	return bom, nil
}

// componentToCDX maps one component
func (s *CycloneDXSerializer) componentToCDX(c *entities.Component) cdx.Component {
	out := cdx.Component{
		BOMRef:      c.BOMRef,
		Type:        cdx.ComponentTypeLibrary,
		Name:        c.Name,
		Version:     c.Version,
		PackageURL:  c.PackageURL,
		Description: c.Description,
		Author:      c.Author,
	}
	if c.Type == entities.TypeApplication {
		out.Type = cdx.ComponentTypeApplication
	}

	if len(c.Licenses) > 0 {
		licenses := make(cdx.Licenses, 0, len(c.Licenses))
		for _, l := range c.Licenses {
			if l.Expression != "" {
				licenses = append(licenses, cdx.LicenseChoice{Expression: l.Expression})
			} else {
				licenses = append(licenses, cdx.LicenseChoice{License: &cdx.License{Name: l.Name}})
			}
		}
		out.Licenses = &licenses
	}

	if len(c.Hashes) > 0 {
		hashes := make([]cdx.Hash, 0, len(c.Hashes))
		for _, h := range c.Hashes {
			hashes = append(hashes, cdx.Hash{
				Algorithm: cdx.HashAlgorithm(h.Algorithm),
				Value:     h.Value,
			})
		}
		out.Hashes = &hashes
	}

	return out
}

// cdxSpecVersion maps the requested spec version to the library enum
func cdxSpecVersion(v entities.SpecVersion) (cdx.SpecVersion, error) {
	switch v {
	case entities.SpecVersion1_3:
		return cdx.SpecVersion1_3, nil
	case entities.SpecVersion1_4:
		return cdx.SpecVersion1_4, nil
	case entities.SpecVersion1_5:
		return cdx.SpecVersion1_5, nil
	default:
		return 0, fmt.Errorf("unsupported spec version %q", v)
	}
}
