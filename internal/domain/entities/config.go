package entities

import (
	"fmt"
	"strings"
)

// Pattern selects how output filenames are derived
type Pattern string

// Output filename patterns
const (
	// PatternBom names the output "bom".
	PatternBom Pattern = "bom"
	// PatternPackage names the output after the root package.
	PatternPackage Pattern = "package"
)

// ParsePattern validates an output filename pattern string
func ParsePattern(s string) (Pattern, error) {
	switch Pattern(s) {
	case PatternBom, PatternPackage:
		return Pattern(s), nil
	default:
		return "", fmt.Errorf("expected bom or package, got %q", s)
	}
}

// OutputOptions controls output file naming
type OutputOptions struct {
	// CdxExtension inserts ".cdx" before the format extension,
	// per the CycloneDX recognized-file-pattern convention.
	CdxExtension bool
	// Pattern derives the filename stem; ignored when Prefix is set.
	Pattern Pattern
	// Prefix is a custom filename stem. Mutually exclusive with a
	// configured Pattern; must not contain path separators.
	Prefix string
}

// FileName computes the output filename for the given root package and format
func (o OutputOptions) FileName(rootName string, format OutputFormat) string {
	stem := o.Prefix
	if stem == "" {
		switch o.Pattern {
		case PatternPackage:
			stem = rootName
		default:
			stem = string(PatternBom)
		}
	}
	ext := "." + string(format)
	if o.CdxExtension {
		ext = ".cdx" + ext
	}
	return stem + ext
}

// ValidatePrefix rejects custom prefixes that would escape the output
// directory
func ValidatePrefix(prefix string) error {
	if strings.ContainsAny(prefix, `/\`) {
		return fmt.Errorf("invalid prefix %q: must not contain path separators", prefix)
	}
	return nil
}

// SbomConfig is the manifest-level generation configuration. Nil fields
// are "not configured" and fall back to defaults or CLI flags.
type SbomConfig struct {
	Format *OutputFormat
	// TopLevelOnly mirrors the manifest's included_dependencies option:
	// true for "top-level", false for "all".
	TopLevelOnly *bool
	Output       *OutputOptions
}

// EmptyConfig returns a config with nothing set
func EmptyConfig() SbomConfig {
	return SbomConfig{}
}

// Merge overlays other on top of the receiver: fields set in other win.
func (c SbomConfig) Merge(other SbomConfig) SbomConfig {
	out := c
	if other.Format != nil {
		out.Format = other.Format
	}
	if other.TopLevelOnly != nil {
		out.TopLevelOnly = other.TopLevelOnly
	}
	if other.Output != nil {
		out.Output = other.Output
	}
	return out
}
