package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	adapters "github.com/ochairo/cratebom/internal/domain-adapters/gateways"
	orchestrators "github.com/ochairo/cratebom/internal/domain-orchestrators"
	"github.com/ochairo/cratebom/internal/domain/entities"
	"github.com/ochairo/cratebom/internal/external-adapters/charmlog"
)

func runValidate(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	var (
		graphPath = fs.String("graph", "", "Resolved graph input (cargo-metadata .json or snapshot .yaml)")
		dev       = fs.Bool("dev", false, "Include development dependencies")
		noBuild   = fs.Bool("no-build", false, "Exclude build dependencies")
		target    = fs.String("target", "all", "Platform filter: all, host or a target triple")
		verbose   = fs.Bool("verbose", false, "Enable debug logging")
	)

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: cratebom validate [options]

Run the generation pipeline and audit the assembled document against
document-wide rules. Exits non-zero when the audit finds anything.

Options:
`)
		fs.PrintDefaults()
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

	if err := executeValidate(ctx, *graphPath, *dev, *noBuild, *target, *verbose); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func executeValidate(ctx context.Context, graphPath string, dev, noBuild bool, target string, verbose bool) error {
	logger := charmlog.New(os.Stderr, verbose)

	policy := entities.DefaultInclusionPolicy()
	policy.IncludeDevDependencies = dev
	policy.IncludeBuildDependencies = !noBuild
	policy.Target = targetFilterFor(target)

	loader, err := graphLoaderFor(graphPath)
	if err != nil {
		return err
	}
	raw, err := loader.Load(graphPath)
	if err != nil {
		return err
	}

	orchestrator := orchestrators.NewGenerateOrchestrator(adapters.NewCycloneDXSerializer(), logger)
	doc, result, err := orchestrator.Audit(ctx, orchestrators.GenerateRequest{
		Raw:         raw,
		Policy:      policy,
		SpecVersion: entities.DefaultSpecVersion,
		Tool:        toolIdentity(),
	})
	if err != nil {
		return err
	}

	if result.Passed() {
		fmt.Printf("OK: %d components, %d relationships\n",
			doc.ComponentCount(), len(doc.Relationships))
		return nil
	}

	for _, f := range result.Failures {
		fmt.Fprintf(os.Stderr, "FAIL %s: %s\n", f.Context, f.Message)
	}
	os.Exit(1)
	return nil
}
