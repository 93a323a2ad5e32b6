package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	adapters "github.com/ochairo/cratebom/internal/domain-adapters/gateways"
	orchestrators "github.com/ochairo/cratebom/internal/domain-orchestrators"
	"github.com/ochairo/cratebom/internal/domain/entities"
	"github.com/ochairo/cratebom/internal/external-adapters/charmlog"
	"github.com/ochairo/cratebom/internal/external-adapters/toml"
)

func runGenerate(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	var (
		graphPath    = fs.String("graph", "", "Resolved graph input (cargo-metadata .json or snapshot .yaml)")
		manifestPath = fs.String("manifest", "", "Manifest with a [package.metadata.cyclonedx] config table")
		outputPath   = fs.String("output", "", "Output file (default: derived from config in the current directory)")
		format       = fs.String("format", "", "Output format: json or xml (default json)")
		specVersion  = fs.String("spec-version", "", "CycloneDX spec version: 1.3, 1.4 or 1.5 (default 1.4)")
		topLevel     = fs.Bool("top-level", false, "Include only the direct dependencies of each root")
		dev          = fs.Bool("dev", false, "Include development dependencies")
		noBuild      = fs.Bool("no-build", false, "Exclude build dependencies")
		target       = fs.String("target", "all", "Platform filter: all, host or a target triple")
		verbose      = fs.Bool("verbose", false, "Enable debug logging")
	)

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: cratebom generate [options]

Generate a CycloneDX BOM from a resolved dependency graph.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  cargo metadata --format-version 1 > metadata.json
  cratebom generate --graph metadata.json
  cratebom generate --graph graph.yaml --format xml --spec-version 1.5
  cratebom generate --graph metadata.json --manifest Cargo.toml --dev
`)
	}

	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing flags: %v\n", err)
		os.Exit(1)
	}

	if *graphPath == "" {
		fmt.Fprintf(os.Stderr, "Error: --graph is required\n\n")
		fs.Usage()
		os.Exit(1)
	}

	if err := executeGenerate(ctx, generateOptions{
		graphPath:    *graphPath,
		manifestPath: *manifestPath,
		outputPath:   *outputPath,
		format:       *format,
		specVersion:  *specVersion,
		topLevel:     *topLevel,
		dev:          *dev,
		noBuild:      *noBuild,
		target:       *target,
		verbose:      *verbose,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type generateOptions struct {
	graphPath    string
	manifestPath string
	outputPath   string
	format       string
	specVersion  string
	topLevel     bool
	dev          bool
	noBuild      bool
	target       string
	verbose      bool
}

func executeGenerate(ctx context.Context, opts generateOptions) error {
	logger := charmlog.New(os.Stderr, opts.verbose)

	// Manifest config first, CLI flags override.
	config := entities.EmptyConfig()
	if opts.manifestPath != "" {
		parsed, err := toml.NewConfigParser().LoadFile(opts.manifestPath)
		if err != nil {
			return err
		}
		config = parsed
	}

	outputFormat, err := resolveFormat(opts.format, config)
	if err != nil {
		return err
	}
	version, err := entities.ParseSpecVersion(opts.specVersion)
	if err != nil {
		return err
	}

	policy := entities.DefaultInclusionPolicy()
	policy.IncludeDevDependencies = opts.dev
	policy.IncludeBuildDependencies = !opts.noBuild
	policy.Target = targetFilterFor(opts.target)
	if config.TopLevelOnly != nil {
		policy.TopLevelOnly = *config.TopLevelOnly
	}
	if opts.topLevel {
		policy.TopLevelOnly = true
	}

	loader, err := graphLoaderFor(opts.graphPath)
	if err != nil {
		return err
	}
	raw, err := loader.Load(opts.graphPath)
	if err != nil {
		return err
	}

	outputPath := opts.outputPath
	if outputPath == "" {
		rootName := ""
		if len(raw.Roots) > 0 {
			rootName = raw.Roots[0].Name
		}
		options := entities.OutputOptions{Pattern: entities.PatternBom}
		if config.Output != nil {
			options = *config.Output
		}
		outputPath = options.FileName(rootName, outputFormat)
	}

	out, err := os.Create(filepath.Clean(outputPath))
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}

	orchestrator := orchestrators.NewGenerateOrchestrator(adapters.NewCycloneDXSerializer(), logger)
	result, err := orchestrator.Generate(ctx, orchestrators.GenerateRequest{
		Raw:         raw,
		Policy:      policy,
		SpecVersion: version,
		Format:      outputFormat,
		Tool:        toolIdentity(),
		Output:      out,
	})
	if err != nil {
		// Remove the partial file; a truncated BOM must never be left behind.
		_ = out.Close()
		_ = os.Remove(outputPath)
		return err
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to close output file: %w", err)
	}

	fmt.Printf("Wrote %s (%d components, CycloneDX %s)\n",
		outputPath, result.Document.ComponentCount(), result.Document.SpecVersion)
	return nil
}

// resolveFormat applies the flag-over-config precedence for --format
func resolveFormat(flagValue string, config entities.SbomConfig) (entities.OutputFormat, error) {
	if flagValue == "" && config.Format != nil {
		return *config.Format, nil
	}
	return entities.ParseOutputFormat(flagValue)
}
