package yaml

import (
	"testing"

	"github.com/ochairo/cratebom/internal/domain/entities"
)

const sampleSnapshot = `
roots:
  - alpha@0.1.0
packages:
  - name: alpha
    version: 0.1.0
    source:
      kind: path
    workspace_member: true
    manifest_path: /ws/alpha/Cargo.toml
  - name: serde
    version: 1.0.193
    license: MIT OR Apache-2.0
    checksum: 25dd9975e68d0cb5aa5120c6fc3fcb4b9da917ab1de2c5b269b9f453d947b3f0
    authors:
      - Erick Tryzelaar <erick.tryzelaar@gmail.com>
  - name: nix
    version: 0.27.1
    source:
      kind: git
      url: https://github.com/nix-rust/nix
      reference: 9f2e1ab
edges:
  - from: alpha@0.1.0
    to: serde@1.0.193
    kind: normal
  - from: alpha@0.1.0
    to: nix@0.27.1
    kind: normal
    target: cfg(unix)
  - from: serde@1.0.193
    to: nix@0.27.1
    kind: dev
    active: false
    optional: true
`

func TestParseSnapshot(t *testing.T) {
	raw, err := NewSnapshotParser().Parse([]byte(sampleSnapshot))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if len(raw.Nodes) != 3 {
		t.Fatalf("Nodes count = %d, want 3", len(raw.Nodes))
	}
	if len(raw.Edges) != 3 {
		t.Fatalf("Edges count = %d, want 3", len(raw.Edges))
	}
	if len(raw.Roots) != 1 || raw.Roots[0].Name != "alpha" {
		t.Fatalf("Roots = %v, want alpha", raw.Roots)
	}

	// Source kinds map through.
	if raw.Nodes[0].Source.Kind != entities.SourcePath || !raw.Nodes[0].WorkspaceMember {
		t.Errorf("alpha source = %+v, want workspace path package", raw.Nodes[0])
	}
	if raw.Nodes[1].Source.Kind != entities.SourceRegistry {
		t.Errorf("serde source kind = %v, want registry default", raw.Nodes[1].Source.Kind)
	}
	if raw.Nodes[2].Source.Kind != entities.SourceGit || raw.Nodes[2].Source.Reference != "9f2e1ab" {
		t.Errorf("nix source = %+v, want git with reference", raw.Nodes[2].Source)
	}

	// Active defaults to true and maps through when explicit.
	if !raw.Edges[0].Active {
		t.Error("edge without active flag should default to true")
	}
	if raw.Edges[1].Target != "cfg(unix)" {
		t.Errorf("edge target = %q, want cfg(unix)", raw.Edges[1].Target)
	}
	if raw.Edges[2].Active || !raw.Edges[2].Optional {
		t.Errorf("dev edge = %+v, want inactive optional", raw.Edges[2])
	}
	if raw.Edges[2].Kind != entities.KindDevelopment {
		t.Errorf("dev edge kind = %v", raw.Edges[2].Kind)
	}
}

func TestParseSnapshotRootFallback(t *testing.T) {
	snapshot := `
packages:
  - name: solo
    version: 1.0.0
    source:
      kind: path
    workspace_member: true
`
	raw, err := NewSnapshotParser().Parse([]byte(snapshot))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(raw.Roots) != 1 || raw.Roots[0].Name != "solo" {
		t.Errorf("Roots = %v, want workspace member fallback", raw.Roots)
	}
}

func TestParseSnapshotErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "not yaml", data: "\t{{{"},
		{name: "no packages", data: "roots: [a@1.0.0]"},
		{
			name: "package without version",
			data: "packages:\n  - name: a",
		},
		{
			name: "ambiguous package ref",
			data: `
packages:
  - name: a
    version: 1.0.0
    workspace_member: true
  - name: a
    version: 1.0.0
    source:
      kind: git
      url: https://example.com/a
`,
		},
		{
			name: "edge to unknown package",
			data: `
packages:
  - name: a
    version: 1.0.0
    workspace_member: true
edges:
  - from: a@1.0.0
    to: ghost@9.9.9
`,
		},
		{
			name: "unknown edge kind",
			data: `
packages:
  - name: a
    version: 1.0.0
    workspace_member: true
  - name: b
    version: 1.0.0
edges:
  - from: a@1.0.0
    to: b@1.0.0
    kind: banana
`,
		},
		{
			name: "unknown source kind",
			data: `
packages:
  - name: a
    version: 1.0.0
    source:
      kind: carrier-pigeon
`,
		},
		{
			name: "git source without url",
			data: `
packages:
  - name: a
    version: 1.0.0
    source:
      kind: git
`,
		},
		{
			name: "no roots and no members",
			data: `
packages:
  - name: a
    version: 1.0.0
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewSnapshotParser().Parse([]byte(tt.data)); err == nil {
				t.Error("Parse() expected error, got nil")
			}
		})
	}
}
