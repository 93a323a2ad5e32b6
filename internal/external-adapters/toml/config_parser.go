// Package toml reads generation configuration from the
// [package.metadata.cyclonedx] table of a Cargo.toml-style manifest.
package toml

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/ochairo/cratebom/internal/domain/entities"
)

// tomlManifest captures only the slice of the manifest we care about;
// everything else is ignored.
type tomlManifest struct {
	Package struct {
		Metadata struct {
			Cyclonedx *tomlConfig `toml:"cyclonedx"`
		} `toml:"metadata"`
	} `toml:"package"`
	Workspace struct {
		Metadata struct {
			Cyclonedx *tomlConfig `toml:"cyclonedx"`
		} `toml:"metadata"`
	} `toml:"workspace"`
}

type tomlConfig struct {
	Format               *string            `toml:"format"`
	IncludedDependencies *string            `toml:"included_dependencies"`
	OutputOptions        *tomlOutputOptions `toml:"output_options"`
}

type tomlOutputOptions struct {
	Cdx     *bool   `toml:"cdx"`
	Pattern *string `toml:"pattern"`
	Prefix  *string `toml:"prefix"`
}

// ConfigParser reads SbomConfig from manifest files
type ConfigParser struct{}

// NewConfigParser creates a new config parser
func NewConfigParser() *ConfigParser {
	return &ConfigParser{}
}

// LoadFile reads and parses a manifest. A missing cyclonedx table
// yields the empty config, not an error.
func (p *ConfigParser) LoadFile(path string) (entities.SbomConfig, error) {
	//nolint:gosec // G304: path is the user-supplied manifest location
	data, err := os.ReadFile(path)
	if err != nil {
		return entities.SbomConfig{}, fmt.Errorf("failed to read manifest %s: %w", path, err)
	}
	return p.Parse(data)
}

// Parse parses manifest bytes. A [workspace.metadata.cyclonedx] table
// provides workspace-wide defaults; [package.metadata.cyclonedx]
// overrides them.
func (p *ConfigParser) Parse(data []byte) (entities.SbomConfig, error) {
	var manifest tomlManifest
	if err := toml.Unmarshal(data, &manifest); err != nil {
		return entities.SbomConfig{}, fmt.Errorf("failed to parse manifest TOML: %w", err)
	}

	config := entities.EmptyConfig()
	if manifest.Workspace.Metadata.Cyclonedx != nil {
		workspace, err := convertConfig(manifest.Workspace.Metadata.Cyclonedx)
		if err != nil {
			return entities.SbomConfig{}, err
		}
		config = config.Merge(workspace)
	}
	if manifest.Package.Metadata.Cyclonedx != nil {
		pkg, err := convertConfig(manifest.Package.Metadata.Cyclonedx)
		if err != nil {
			return entities.SbomConfig{}, err
		}
		config = config.Merge(pkg)
	}
	return config, nil
}

// convertConfig validates and maps one cyclonedx table
func convertConfig(raw *tomlConfig) (entities.SbomConfig, error) {
	config := entities.EmptyConfig()

	if raw.Format != nil {
		format, err := entities.ParseOutputFormat(*raw.Format)
		if err != nil {
			return entities.SbomConfig{}, err
		}
		config.Format = &format
	}

	if raw.IncludedDependencies != nil {
		switch *raw.IncludedDependencies {
		case "top-level":
			topLevel := true
			config.TopLevelOnly = &topLevel
		case "all":
			topLevel := false
			config.TopLevelOnly = &topLevel
		default:
			return entities.SbomConfig{}, fmt.Errorf(
				"expected all or top-level, got %q", *raw.IncludedDependencies)
		}
	}

	if raw.OutputOptions != nil {
		options, err := convertOutputOptions(raw.OutputOptions)
		if err != nil {
			return entities.SbomConfig{}, err
		}
		config.Output = options
	}

	return config, nil
}

// convertOutputOptions validates the output naming block. Pattern and
// prefix are mutually exclusive.
func convertOutputOptions(raw *tomlOutputOptions) (*entities.OutputOptions, error) {
	if raw.Pattern != nil && raw.Prefix != nil {
		return nil, fmt.Errorf("output_options can contain either prefix or pattern, got both")
	}

	options := &entities.OutputOptions{Pattern: entities.PatternBom}
	if raw.Cdx != nil {
		options.CdxExtension = *raw.Cdx
	}
	if raw.Pattern != nil {
		pattern, err := entities.ParsePattern(*raw.Pattern)
		if err != nil {
			return nil, err
		}
		options.Pattern = pattern
	}
	if raw.Prefix != nil {
		if err := entities.ValidatePrefix(*raw.Prefix); err != nil {
			return nil, err
		}
		options.Prefix = *raw.Prefix
	}
	return options, nil
}
