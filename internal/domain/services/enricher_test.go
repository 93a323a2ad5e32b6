package services

import (
	"errors"
	"strings"
	"testing"

	"github.com/package-url/packageurl-go"

	"github.com/ochairo/cratebom/internal/domain/entities"
)

// purlQualifiers parses a generated purl back and returns its qualifier map
func purlQualifiers(t *testing.T, purl string) map[string]string {
	t.Helper()
	parsed, err := packageurl.FromString(purl)
	if err != nil {
		t.Fatalf("generated purl %q does not parse: %v", purl, err)
	}
	return parsed.Qualifiers.Map()
}

func TestEnrichRegistryPackage(t *testing.T) {
	node := &entities.PackageNode{
		Name:        "serde",
		Version:     "1.0.193",
		Source:      entities.PackageSource{Kind: entities.SourceRegistry},
		Checksum:    "25dd9975e68d0cb5aa5120c6fc3fcb4b9da917ab1de2c5b269b9f453d947b3f0",
		License:     "MIT OR Apache-2.0",
		Authors:     []string{"Erick Tryzelaar <erick.tryzelaar@gmail.com>"},
		Description: "A generic serialization/deserialization framework",
	}

	component, err := NewEnricherService().Enrich(node)
	if err != nil {
		t.Fatalf("Enrich() error = %v", err)
	}

	if !strings.HasPrefix(component.PackageURL, "pkg:cargo/serde@1.0.193") {
		t.Errorf("PackageURL = %q, want pkg:cargo/serde@1.0.193 prefix", component.PackageURL)
	}
	qualifiers := purlQualifiers(t, component.PackageURL)
	if qualifiers["checksum"] != "sha256:"+node.Checksum {
		t.Errorf("checksum qualifier = %q", qualifiers["checksum"])
	}
	if component.BOMRef != "pkg:cargo/serde@1.0.193" {
		t.Errorf("BOMRef = %q, want checksum-free identity purl", component.BOMRef)
	}
	if component.Type != entities.TypeLibrary {
		t.Errorf("Type = %v, want library", component.Type)
	}
	if len(component.Licenses) != 1 || component.Licenses[0].Expression != "MIT OR Apache-2.0" {
		t.Errorf("Licenses = %+v, want one SPDX expression", component.Licenses)
	}
	if len(component.Hashes) != 1 || component.Hashes[0].Algorithm != "SHA-256" {
		t.Errorf("Hashes = %+v, want one SHA-256 entry", component.Hashes)
	}
	if component.Author == "" {
		t.Error("Author is empty")
	}
}

func TestEnrichWorkspaceRoot(t *testing.T) {
	node := &entities.PackageNode{
		Name:            "alpha",
		Version:         "0.1.0",
		Source:          entities.PackageSource{Kind: entities.SourcePath},
		WorkspaceMember: true,
	}

	component, err := NewEnricherService().Enrich(node)
	if err != nil {
		t.Fatalf("Enrich() error = %v", err)
	}
	if component.Type != entities.TypeApplication {
		t.Errorf("Type = %v, want application for workspace member", component.Type)
	}
	if !component.Root {
		t.Error("Root flag not set for workspace member")
	}
	if component.PackageURL != "pkg:cargo/alpha@0.1.0" {
		t.Errorf("PackageURL = %q", component.PackageURL)
	}
	// Absent optional metadata is omitted, not invented.
	if len(component.Licenses) != 0 {
		t.Errorf("Licenses = %+v, want none", component.Licenses)
	}
	if len(component.Hashes) != 0 {
		t.Errorf("Hashes = %+v, want none", component.Hashes)
	}
}

func TestEnrichSourceQualifiers(t *testing.T) {
	tests := []struct {
		name      string
		source    entities.PackageSource
		qualifier string
		want      string
	}{
		{
			name:      "alternate registry carries repository_url",
			source:    entities.PackageSource{Kind: entities.SourceRegistry, URL: "https://registry.example.com/index"},
			qualifier: "repository_url",
			want:      "https://registry.example.com/index",
		},
		{
			name:      "git source carries vcs_url with revision",
			source:    entities.PackageSource{Kind: entities.SourceGit, URL: "https://github.com/acme/dep", Reference: "9f2e1ab"},
			qualifier: "vcs_url",
			want:      "git+https://github.com/acme/dep#9f2e1ab",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node := &entities.PackageNode{Name: "dep", Version: "1.0.0", Source: tt.source}
			component, err := NewEnricherService().Enrich(node)
			if err != nil {
				t.Fatalf("Enrich() error = %v", err)
			}
			qualifiers := purlQualifiers(t, component.PackageURL)
			if qualifiers[tt.qualifier] != tt.want {
				t.Errorf("%s qualifier = %q, want %q", tt.qualifier, qualifiers[tt.qualifier], tt.want)
			}
		})
	}

	t.Run("default registry has no qualifier", func(t *testing.T) {
		node := &entities.PackageNode{
			Name:    "dep",
			Version: "1.0.0",
			Source:  entities.PackageSource{Kind: entities.SourceRegistry, URL: entities.DefaultRegistryURL},
		}
		component, err := NewEnricherService().Enrich(node)
		if err != nil {
			t.Fatalf("Enrich() error = %v", err)
		}
		if component.PackageURL != "pkg:cargo/dep@1.0.0" {
			t.Errorf("PackageURL = %q, want bare purl", component.PackageURL)
		}
	})
}

func TestEnrichIdentityIsDeterministic(t *testing.T) {
	node := func() *entities.PackageNode {
		return &entities.PackageNode{
			Name:    "dep",
			Version: "2.1.0",
			Source:  entities.PackageSource{Kind: entities.SourceRegistry},
		}
	}

	first, err := NewEnricherService().Enrich(node())
	if err != nil {
		t.Fatalf("Enrich() error = %v", err)
	}
	second, err := NewEnricherService().Enrich(node())
	if err != nil {
		t.Fatalf("Enrich() error = %v", err)
	}
	if first.PackageURL != second.PackageURL {
		t.Errorf("identical nodes produced different purls: %q vs %q", first.PackageURL, second.PackageURL)
	}
	if first.BOMRef != second.BOMRef {
		t.Errorf("identical nodes produced different bom-refs: %q vs %q", first.BOMRef, second.BOMRef)
	}
}

// TestEnrichMalformedLicense checks the free-text fallback: the
// declared string survives verbatim as a named license, never fatal
func TestEnrichMalformedLicense(t *testing.T) {
	node := &entities.PackageNode{
		Name:    "dep",
		Version: "1.0.0",
		Source:  entities.PackageSource{Kind: entities.SourceRegistry},
		License: "Apache-2.0 OR MIT OR",
	}

	component, err := NewEnricherService().Enrich(node)
	if err != nil {
		t.Fatalf("Enrich() error = %v, malformed license must not be fatal", err)
	}
	if len(component.Licenses) != 1 {
		t.Fatalf("Licenses count = %d, want 1", len(component.Licenses))
	}
	license := component.Licenses[0]
	if license.Expression != "" {
		t.Errorf("malformed expression kept as SPDX: %q", license.Expression)
	}
	if license.Name != "Apache-2.0 OR MIT OR" {
		t.Errorf("Name = %q, want the original declared string", license.Name)
	}
}

func TestEnrichInvalidMetadataIsFatal(t *testing.T) {
	tests := []struct {
		name string
		node *entities.PackageNode
	}{
		{
			name: "empty name",
			node: &entities.PackageNode{Version: "1.0.0"},
		},
		{
			name: "unparsable version",
			node: &entities.PackageNode{Name: "dep", Version: "not-a-version"},
		},
		{
			name: "non-hex checksum",
			node: &entities.PackageNode{Name: "dep", Version: "1.0.0", Checksum: "zzzz"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewEnricherService().Enrich(tt.node)
			if err == nil {
				t.Fatal("Enrich() expected error, got nil")
			}
			if !errors.Is(err, entities.ErrMetadata) {
				t.Errorf("Enrich() error = %v, want ErrMetadata", err)
			}
		})
	}
}

func TestEnrichVersionForms(t *testing.T) {
	for _, version := range []string{"1.0.0", "0.2.11", "1.0.0-alpha.1", "2.3.4+build.5"} {
		node := &entities.PackageNode{
			Name:    "dep",
			Version: version,
			Source:  entities.PackageSource{Kind: entities.SourceRegistry},
		}
		if _, err := NewEnricherService().Enrich(node); err != nil {
			t.Errorf("Enrich() rejected valid version %q: %v", version, err)
		}
	}
}
