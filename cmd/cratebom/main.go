package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/ochairo/cratebom/internal/domain/entities"
	"github.com/ochairo/cratebom/internal/domain/interfaces/gateways"
	"github.com/ochairo/cratebom/internal/external-adapters/cargometa"
	"github.com/ochairo/cratebom/internal/external-adapters/yaml"
)

// toolVersion identifies this build in generated documents
const toolVersion = "0.1.0"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	ctx := context.Background()
	command := os.Args[1]

	// Dispatch to subcommand
	switch command {
	case "generate":
		runGenerate(ctx, os.Args[2:])
	case "inspect":
		runInspect(ctx, os.Args[2:])
	case "validate":
		runValidate(ctx, os.Args[2:])
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`cratebom - CycloneDX SBOM generator for resolved dependency graphs

Usage:
  cratebom <command> [options]

Commands:
  generate  Generate a CycloneDX BOM from a resolved graph
  inspect   Print the component inventory a generation would produce
  validate  Audit the assembled document and report findings

Use "cratebom <command> --help" for more information about a command.`)
}

// graphLoaderFor picks the input adapter from the file extension:
// cargo-metadata JSON or a YAML graph snapshot.
func graphLoaderFor(path string) (gateways.GraphLoader, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return cargometa.NewMetadataParser(), nil
	case ".yaml", ".yml":
		return yaml.NewSnapshotParser(), nil
	default:
		return nil, fmt.Errorf("unrecognized graph file extension on %q (expected .json, .yaml or .yml)", path)
	}
}

// hostTriple maps the running platform to a target triple for
// --target host
func hostTriple() string {
	archMap := map[string]string{
		"amd64": "x86_64",
		"arm64": "aarch64",
		"386":   "i686",
	}
	arch := archMap[runtime.GOARCH]
	if arch == "" {
		arch = runtime.GOARCH
	}

	switch runtime.GOOS {
	case "linux":
		return arch + "-unknown-linux-gnu"
	case "darwin":
		return arch + "-apple-darwin"
	case "windows":
		return arch + "-pc-windows-msvc"
	default:
		return arch + "-unknown-" + runtime.GOOS
	}
}

// targetFilterFor parses the --target flag value
func targetFilterFor(target string) entities.TargetFilter {
	switch target {
	case "", "all":
		return entities.TargetFilter{All: true}
	case "host":
		return entities.TargetFilter{Triple: hostTriple()}
	default:
		return entities.TargetFilter{Triple: target}
	}
}

func toolIdentity() entities.Tool {
	return entities.Tool{Vendor: "ochairo", Name: "cratebom", Version: toolVersion}
}
