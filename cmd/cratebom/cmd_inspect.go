package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	adapters "github.com/ochairo/cratebom/internal/domain-adapters/gateways"
	orchestrators "github.com/ochairo/cratebom/internal/domain-orchestrators"
	"github.com/ochairo/cratebom/internal/domain/entities"
	"github.com/ochairo/cratebom/internal/external-adapters/charmlog"
)

func runInspect(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("inspect", flag.ExitOnError)
	var (
		graphPath = fs.String("graph", "", "Resolved graph input (cargo-metadata .json or snapshot .yaml)")
		topLevel  = fs.Bool("top-level", false, "Include only the direct dependencies of each root")
		dev       = fs.Bool("dev", false, "Include development dependencies")
		noBuild   = fs.Bool("no-build", false, "Exclude build dependencies")
		target    = fs.String("target", "all", "Platform filter: all, host or a target triple")
		verbose   = fs.Bool("verbose", false, "Enable debug logging")
	)

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: cratebom inspect [options]

Print the component inventory a generation would produce, without
writing a document.

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

	if err := executeInspect(ctx, *graphPath, *topLevel, *dev, *noBuild, *target, *verbose); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func executeInspect(ctx context.Context, graphPath string, topLevel, dev, noBuild bool, target string, verbose bool) error {
	logger := charmlog.New(os.Stderr, verbose)

	policy := entities.DefaultInclusionPolicy()
	policy.IncludeDevDependencies = dev
	policy.IncludeBuildDependencies = !noBuild
	policy.TopLevelOnly = topLevel
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
	result, err := orchestrator.Generate(ctx, orchestrators.GenerateRequest{
		Raw:         raw,
		Policy:      policy,
		SpecVersion: entities.DefaultSpecVersion,
		Format:      entities.FormatJSON,
		Tool:        toolIdentity(),
	})
	if err != nil {
		return err
	}

	doc := result.Document
	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tVERSION\tTYPE\tLICENSES\tPURL")
	printComponent(w, doc.Subject)
	for i := range doc.Components {
		printComponent(w, &doc.Components[i])
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("\n%d components, %d relationships\n", doc.ComponentCount(), len(doc.Relationships))
	return nil
}

func printComponent(w *tabwriter.Writer, c *entities.Component) {
	if c == nil {
		return
	}
	licenses := ""
	for i, l := range c.Licenses {
		if i > 0 {
			licenses += "; "
		}
		if l.Expression != "" {
			licenses += l.Expression
		} else {
			licenses += l.Name
		}
	}
	if licenses == "" {
		licenses = "-"
	}
	fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", c.Name, c.Version, c.Type, licenses, c.PackageURL)
}
