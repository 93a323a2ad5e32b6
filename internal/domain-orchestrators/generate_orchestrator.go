// Package orchestrators coordinates domain services for complete use cases.
package orchestrators

import (
	"context"
	"fmt"
	"io"
	"time"

	adapters "github.com/ochairo/cratebom/internal/domain-adapters/gateways"
	"github.com/ochairo/cratebom/internal/domain/entities"
	"github.com/ochairo/cratebom/internal/domain/interfaces"
	"github.com/ochairo/cratebom/internal/domain/interfaces/gateways"
	"github.com/ochairo/cratebom/internal/domain/services"
)

// GenerateOrchestrator runs the straight-line pipeline:
// normalize -> resolve -> enrich -> assemble -> validate -> serialize.
// Data flows strictly forward; every stage owns its output and no stage
// re-enters an earlier one. All failures are fatal: the run emits a
// complete and correct document or nothing.
type GenerateOrchestrator struct {
	graphGateway *adapters.GraphGateway
	resolver     *services.ResolverService
	enricher     *services.EnricherService
	assembler    *services.AssemblerService
	validator    *services.ValidatorService
	serializer   gateways.BOMSerializer
	logger       interfaces.Logger
}

// NewGenerateOrchestrator creates a new generate orchestrator
func NewGenerateOrchestrator(serializer gateways.BOMSerializer, logger interfaces.Logger) *GenerateOrchestrator {
	if logger == nil {
		logger = &interfaces.NoOpLogger{}
	}
	return &GenerateOrchestrator{
		graphGateway: adapters.NewGraphGateway(),
		resolver:     services.NewResolverService(logger),
		enricher:     services.NewEnricherService(),
		assembler:    services.NewAssemblerService(),
		validator:    services.NewValidatorService(),
		serializer:   serializer,
		logger:       logger,
	}
}

// GenerateRequest carries everything one invocation needs. No ambient
// globals: policy, roots and spec version arrive here explicitly.
type GenerateRequest struct {
	Raw         *entities.RawGraph
	Policy      entities.InclusionPolicy
	SpecVersion entities.SpecVersion
	Format      entities.OutputFormat
	Tool        entities.Tool
	// Output receives the serialized document. Nil skips serialization
	// (used by the validate and inspect paths).
	Output io.Writer
}

// GenerateResult reports the outcome of one pipeline run
type GenerateResult struct {
	Document *entities.BomDocument
	Duration time.Duration
}

// Generate executes the full pipeline
func (o *GenerateOrchestrator) Generate(_ context.Context, req GenerateRequest) (*GenerateResult, error) {
	start := time.Now()

	doc, err := o.buildDocument(req)
	if err != nil {
		return nil, err
	}

	if audit := o.validator.ValidateDocument(doc); !audit.Passed() {
		f := audit.Failures[0]
		return nil, fmt.Errorf("document failed validation at %s: %s (%d finding(s))",
			f.Context, f.Message, len(audit.Failures))
	}

	if req.Output != nil {
		if err := o.serializer.Serialize(req.Output, doc, req.Format); err != nil {
			return nil, err
		}
	}

	o.logger.Info("BOM generated",
		interfaces.F("components", doc.ComponentCount()),
		interfaces.F("spec_version", string(doc.SpecVersion)),
		interfaces.F("duration", time.Since(start).String()))

	return &GenerateResult{Document: doc, Duration: time.Since(start)}, nil
}

// Audit runs the pipeline up to assembly and returns the validator's
// findings instead of serializing.
func (o *GenerateOrchestrator) Audit(_ context.Context, req GenerateRequest) (*entities.BomDocument, services.ValidationResult, error) {
	doc, err := o.buildDocument(req)
	if err != nil {
		return nil, services.ValidationResult{}, err
	}
	return doc, o.validator.ValidateDocument(doc), nil
}

// buildDocument runs normalize through assemble
func (o *GenerateOrchestrator) buildDocument(req GenerateRequest) (*entities.BomDocument, error) {
	graph, err := o.graphGateway.Normalize(req.Raw)
	if err != nil {
		return nil, err
	}
	o.logger.Debug("graph normalized", interfaces.F("packages", graph.Len()))

	resolution, err := o.resolver.Resolve(graph, graph.Roots(), req.Policy)
	if err != nil {
		return nil, err
	}

	components, err := o.enricher.EnrichAll(resolution)
	if err != nil {
		return nil, err
	}

	return o.assembler.Assemble(components, resolution.Edges, resolution.Roots, req.Tool, req.SpecVersion)
}
