package services

import (
	"regexp"
	"strings"

	"github.com/github/go-spdx/v2/spdxexp"
	"github.com/package-url/packageurl-go"

	"github.com/ochairo/cratebom/internal/domain/entities"
)

// semverPattern matches the version syntax the resolver guarantees:
// major.minor.patch with optional pre-release and build metadata.
var semverPattern = regexp.MustCompile(`^\d+\.\d+\.\d+(-[0-9A-Za-z.-]+)?(\+[0-9A-Za-z.-]+)?$`)

// hexPattern matches a hex-encoded digest
var hexPattern = regexp.MustCompile(`^[0-9a-fA-F]+$`)

// EnricherService derives stable component identity and gathers
// per-package metadata. Enrichment is a pure function of a single
// PackageNode; no cross-node state.
type EnricherService struct{}

// NewEnricherService creates a new enricher service
func NewEnricherService() *EnricherService {
	return &EnricherService{}
}

// BOMRef computes the document-local reference for a package identity:
// the identity package URL, without checksum qualifiers. Derivable from
// the identity alone so the assembler can translate edges without
// consulting enriched components.
func BOMRef(id entities.PackageID) string {
	return purlString(id, "")
}

// PackageURLFor computes the full package URL of a node, including the
// checksum qualifier when a digest is available. Two nodes with
// identical (name, version, source) always yield an identical URL.
func PackageURLFor(node *entities.PackageNode) string {
	return purlString(node.ID(), normalizeChecksum(node.Checksum))
}

// purlString builds the deterministic purl for an identity.
// Non-default sources carry a qualifier; the default public registry
// carries none. Qualifier ordering is canonical (sorted by key).
func purlString(id entities.PackageID, checksum string) string {
	qualifiers := map[string]string{}
	switch id.Source.Kind {
	case entities.SourceGit:
		ref := id.Source.URL
		if id.Source.Reference != "" {
			ref += "#" + id.Source.Reference
		}
		qualifiers["vcs_url"] = "git+" + ref
	case entities.SourceRegistry:
		if !id.Source.IsDefaultRegistry() {
			qualifiers["repository_url"] = id.Source.URL
		}
	case entities.SourcePath:
		// Local packages carry no source qualifier; their identity is
		// the workspace itself.
	}
	if checksum != "" {
		qualifiers["checksum"] = "sha256:" + checksum
	}

	purl := packageurl.NewPackageURL(
		packageurl.TypeCargo,
		"",
		id.Name,
		id.Version,
		packageurl.QualifiersFromMap(qualifiers),
		"",
	)
	return purl.ToString()
}

// Enrich converts one reached package into a Component. Missing
// optional metadata (license, author, description, checksum) is
// omitted, never invented. Structurally invalid required metadata is
// fatal: a malformed component cannot be dropped without producing a
// misleading document.
func (s *EnricherService) Enrich(node *entities.PackageNode) (*entities.Component, error) {
	if node == nil {
		return nil, &entities.MetadataError{Package: "<nil>", Field: "node", Msg: "node is nil"}
	}
	if node.Name == "" {
		return nil, &entities.MetadataError{
			Package: node.ID().String(),
			Field:   "name",
			Msg:     "package name is empty",
		}
	}
	if !semverPattern.MatchString(node.Version) {
		return nil, &entities.MetadataError{
			Package: node.ID().String(),
			Field:   "version",
			Msg:     "unparsable version string",
		}
	}
	if node.Checksum != "" && !hexPattern.MatchString(normalizeChecksum(node.Checksum)) {
		return nil, &entities.MetadataError{
			Package: node.ID().String(),
			Field:   "checksum",
			Msg:     "checksum is not hex-encoded",
		}
	}

	componentType := entities.TypeLibrary
	if node.WorkspaceMember {
		componentType = entities.TypeApplication
	}

	component := &entities.Component{
		BOMRef:      BOMRef(node.ID()),
		Type:        componentType,
		Name:        node.Name,
		Version:     node.Version,
		PackageURL:  PackageURLFor(node),
		Description: node.Description,
		Author:      strings.Join(node.Authors, ", "),
		Licenses:    resolveLicenses(node.License),
		Root:        node.WorkspaceMember,
	}
	if checksum := normalizeChecksum(node.Checksum); checksum != "" {
		component.Hashes = []entities.Hash{{Algorithm: "SHA-256", Value: strings.ToLower(checksum)}}
	}
	return component, nil
}

// EnrichAll enriches every reached node in resolution order
func (s *EnricherService) EnrichAll(resolution *Resolution) ([]entities.Component, error) {
	components := make([]entities.Component, 0, len(resolution.Nodes))
	for _, node := range resolution.Nodes {
		component, err := s.Enrich(node)
		if err != nil {
			return nil, err
		}
		components = append(components, *component)
	}
	return components, nil
}

// resolveLicenses applies the documented fallback order:
//  1. syntactically valid SPDX expression -> expression license
//  2. declared but unparsable -> named free-text license, original string kept
//  3. absent -> omitted entirely; a license is never fabricated
func resolveLicenses(declared string) []entities.License {
	declared = strings.TrimSpace(declared)
	if declared == "" {
		return nil
	}
	if valid, _ := spdxexp.ValidateLicenses([]string{declared}); valid {
		return []entities.License{{Expression: declared}}
	}
	return []entities.License{{Name: declared}}
}

// normalizeChecksum strips an optional algorithm prefix from a declared digest
func normalizeChecksum(checksum string) string {
	return strings.TrimPrefix(checksum, "sha256:")
}
