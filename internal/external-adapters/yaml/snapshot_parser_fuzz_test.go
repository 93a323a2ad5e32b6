package yaml

import (
	"testing"
)

// FuzzSnapshotParser tests the snapshot parser against random/malformed
// inputs to detect crashes, panics, or unexpected behavior.
//
// Run with: go test -fuzz=FuzzSnapshotParser -fuzztime=30s
func FuzzSnapshotParser(f *testing.F) {
	// Seed corpus with valid snapshot examples
	f.Add([]byte(`roots:
  - app@0.1.0
packages:
  - name: app
    version: 0.1.0
    workspace_member: true
  - name: serde
    version: 1.0.193
    checksum: 25dd9975e68d0cb5aa5120c6fc3fcb4b9da917ab1de2c5b269b9f453d947b3f0
edges:
  - from: app@0.1.0
    to: serde@1.0.193
`))

	f.Add([]byte(`packages:
  - name: solo
    version: 1.0.0
    workspace_member: true
    source:
      kind: path
`))

	f.Add([]byte(`packages:
  - name: pinned
    version: 0.27.1
    workspace_member: true
    source:
      kind: git
      url: https://example.com/pinned
      reference: deadbeef
edges:
  - from: pinned@0.27.1
    to: pinned@0.27.1
    kind: dev
    active: false
`))

	// Seed with edge cases
	f.Add([]byte(``))                              // Empty input
	f.Add([]byte(`{}`))                            // Empty JSON-style YAML
	f.Add([]byte(`[]`))                            // Array instead of object
	f.Add([]byte(`packages: packages`))            // Scalar where list expected
	f.Add([]byte(`packages:\n  - name: a\n  bad`)) // Invalid indentation
	f.Add([]byte(`roots:
  - missing@1.0.0
packages:
  - name: other
    version: 1.0.0
`)) // Root not declared

	parser := NewSnapshotParser()

	f.Fuzz(func(_ *testing.T, data []byte) {
		// The parser should handle any input without crashing
		// We don't care if it returns an error - just that it doesn't panic
		_, _ = parser.Parse(data)
	})
}
