package orchestrators

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	adapters "github.com/ochairo/cratebom/internal/domain-adapters/gateways"
	"github.com/ochairo/cratebom/internal/domain/entities"
)

func testTool() entities.Tool {
	return entities.Tool{Vendor: "ochairo", Name: "cratebom", Version: "0.1.0"}
}

// workspaceRawGraph builds a small raw graph with one workspace root,
// two registry libraries and one dev-only dependency.
func workspaceRawGraph() *entities.RawGraph {
	app := entities.PackageNode{
		Name:            "app",
		Version:         "0.1.0",
		Source:          entities.PackageSource{Kind: entities.SourcePath},
		ManifestPath:    "/ws/app/Cargo.toml",
		WorkspaceMember: true,
	}
	serde := entities.PackageNode{
		Name:     "serde",
		Version:  "1.0.193",
		Source:   entities.PackageSource{Kind: entities.SourceRegistry},
		License:  "MIT OR Apache-2.0",
		Checksum: "25dd9975e68d0cb5aa5120c6fc3fcb4b9da917ab1de2c5b269b9f453d947b3f0",
	}
	itoa := entities.PackageNode{
		Name:    "itoa",
		Version: "1.0.10",
		Source:  entities.PackageSource{Kind: entities.SourceRegistry},
		License: "MIT OR Apache-2.0",
	}
	criterion := entities.PackageNode{
		Name:    "criterion",
		Version: "0.5.1",
		Source:  entities.PackageSource{Kind: entities.SourceRegistry},
		License: "Apache-2.0 OR MIT",
	}
	return &entities.RawGraph{
		Nodes: []entities.PackageNode{app, serde, itoa, criterion},
		Edges: []entities.DependencyEdge{
			{From: app.ID(), To: serde.ID(), Kind: entities.KindNormal, Active: true},
			{From: serde.ID(), To: itoa.ID(), Kind: entities.KindNormal, Active: true},
			{From: app.ID(), To: criterion.ID(), Kind: entities.KindDevelopment, Active: true},
		},
		Roots: []entities.PackageID{app.ID()},
	}
}

// documentShape captures everything about a document that must be
// stable across runs: refs, purls and the relationship graph.
func documentShape(doc *entities.BomDocument) string {
	var b bytes.Buffer
	b.WriteString(doc.Subject.BOMRef + "|" + doc.Subject.PackageURL + "\n")
	for _, c := range doc.Components {
		b.WriteString(c.BOMRef + "|" + c.PackageURL + "|" + string(c.Type) + "\n")
	}
	for _, r := range doc.Relationships {
		b.WriteString(r.Ref)
		for _, dep := range r.DependsOn {
			b.WriteString(" -> " + dep)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func TestGenerateDeterminism(t *testing.T) {
	orch := NewGenerateOrchestrator(adapters.NewCycloneDXSerializer(), nil)
	req := GenerateRequest{
		Raw:         workspaceRawGraph(),
		Policy:      entities.DefaultInclusionPolicy(),
		SpecVersion: entities.SpecVersion1_4,
		Format:      entities.FormatJSON,
		Tool:        testTool(),
	}

	first, err := orch.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	req.Raw = workspaceRawGraph()
	second, err := orch.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("Generate() second run error = %v", err)
	}

	if got, want := documentShape(second.Document), documentShape(first.Document); got != want {
		t.Errorf("document shape differs across runs:\nfirst:\n%s\nsecond:\n%s", want, got)
	}
	// The serial number is the only intentional difference.
	if first.Document.SerialNumber == second.Document.SerialNumber {
		t.Error("serial numbers should be unique per run")
	}
}

func TestGenerateSerializesOutput(t *testing.T) {
	orch := NewGenerateOrchestrator(adapters.NewCycloneDXSerializer(), nil)
	var out bytes.Buffer
	result, err := orch.Generate(context.Background(), GenerateRequest{
		Raw:         workspaceRawGraph(),
		Policy:      entities.DefaultInclusionPolicy(),
		SpecVersion: entities.SpecVersion1_4,
		Format:      entities.FormatJSON,
		Tool:        testTool(),
		Output:      &out,
	})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	var decoded struct {
		BOMFormat    string `json:"bomFormat"`
		SpecVersion  string `json:"specVersion"`
		SerialNumber string `json:"serialNumber"`
	}
	if err := json.Unmarshal(out.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.BOMFormat != "CycloneDX" || decoded.SpecVersion != "1.4" {
		t.Errorf("decoded header = %+v", decoded)
	}
	if decoded.SerialNumber != result.Document.SerialNumber {
		t.Errorf("serialized serial %q != document serial %q",
			decoded.SerialNumber, result.Document.SerialNumber)
	}
}

func TestGeneratePolicyToggle(t *testing.T) {
	orch := NewGenerateOrchestrator(adapters.NewCycloneDXSerializer(), nil)

	base := GenerateRequest{
		Raw:         workspaceRawGraph(),
		Policy:      entities.DefaultInclusionPolicy(),
		SpecVersion: entities.SpecVersion1_4,
		Format:      entities.FormatJSON,
		Tool:        testTool(),
	}
	result, err := orch.Generate(context.Background(), base)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if _, ok := result.Document.Component("pkg:cargo/criterion@0.5.1"); ok {
		t.Error("dev dependency should be excluded by the default policy")
	}

	withDev := base
	withDev.Raw = workspaceRawGraph()
	withDev.Policy.IncludeDevDependencies = true
	result, err = orch.Generate(context.Background(), withDev)
	if err != nil {
		t.Fatalf("Generate() with dev error = %v", err)
	}
	if _, ok := result.Document.Component("pkg:cargo/criterion@0.5.1"); !ok {
		t.Error("dev dependency should be included when the policy allows it")
	}
}

func TestGenerateTopLevelOnly(t *testing.T) {
	orch := NewGenerateOrchestrator(adapters.NewCycloneDXSerializer(), nil)
	policy := entities.DefaultInclusionPolicy()
	policy.TopLevelOnly = true
	result, err := orch.Generate(context.Background(), GenerateRequest{
		Raw:         workspaceRawGraph(),
		Policy:      policy,
		SpecVersion: entities.SpecVersion1_4,
		Format:      entities.FormatJSON,
		Tool:        testTool(),
	})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if _, ok := result.Document.Component("pkg:cargo/serde@1.0.193"); !ok {
		t.Error("direct dependency should survive top-level cut")
	}
	if _, ok := result.Document.Component("pkg:cargo/itoa@1.0.10"); ok {
		t.Error("transitive dependency should be cut in top-level mode")
	}
}

func TestGenerateRejectsBadGraph(t *testing.T) {
	orch := NewGenerateOrchestrator(adapters.NewCycloneDXSerializer(), nil)
	_, err := orch.Generate(context.Background(), GenerateRequest{
		Raw:         &entities.RawGraph{},
		Policy:      entities.DefaultInclusionPolicy(),
		SpecVersion: entities.SpecVersion1_4,
		Format:      entities.FormatJSON,
		Tool:        testTool(),
	})
	if !errors.Is(err, entities.ErrGraphAdapter) {
		t.Errorf("Generate() error = %v, want ErrGraphAdapter", err)
	}
}

func TestAudit(t *testing.T) {
	orch := NewGenerateOrchestrator(adapters.NewCycloneDXSerializer(), nil)
	doc, result, err := orch.Audit(context.Background(), GenerateRequest{
		Raw:         workspaceRawGraph(),
		Policy:      entities.DefaultInclusionPolicy(),
		SpecVersion: entities.SpecVersion1_5,
		Format:      entities.FormatJSON,
		Tool:        testTool(),
	})
	if err != nil {
		t.Fatalf("Audit() error = %v", err)
	}
	if doc == nil {
		t.Fatal("Audit() returned nil document")
	}
	if !result.Passed() {
		t.Errorf("Audit() findings = %+v, want clean pass", result.Failures)
	}
}
