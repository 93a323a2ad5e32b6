package entities

import (
	"fmt"
	"strings"
)

// TargetFilter decides whether a platform-conditional edge applies.
// The zero value matches only target-independent edges plus edges whose
// condition names the configured triple.
type TargetFilter struct {
	// Triple is the platform the BOM is generated for,
	// e.g. "x86_64-unknown-linux-gnu".
	Triple string
	// All accepts every platform condition, producing a
	// platform-independent BOM.
	All bool
}

// Matches reports whether an edge gated on the given condition applies.
// An empty condition is target-independent and always applies.
func (f TargetFilter) Matches(condition string) bool {
	if condition == "" {
		return true
	}
	if f.All {
		return true
	}
	if condition == f.Triple {
		return true
	}
	if strings.HasPrefix(condition, "cfg(") {
		return f.matchesCfg(condition)
	}
	return false
}

// matchesCfg evaluates the small cfg() subset that shows up on
// dependency edges in practice. Unrecognized expressions do not match;
// callers wanting them must use All.
func (f TargetFilter) matchesCfg(condition string) bool {
	expr := strings.TrimSuffix(strings.TrimPrefix(condition, "cfg("), ")")
	switch expr {
	case "unix":
		return f.tripleOS() != "windows" && f.tripleOS() != ""
	case "windows":
		return f.tripleOS() == "windows"
	}
	if os, ok := strings.CutPrefix(expr, "target_os = "); ok {
		return strings.Trim(os, `"`) == f.tripleOS()
	}
	if arch, ok := strings.CutPrefix(expr, "target_arch = "); ok {
		return strings.Trim(arch, `"`) == f.tripleArch()
	}
	return false
}

// tripleOS extracts the OS component of the triple.
// Triples look like arch-vendor-os or arch-vendor-os-abi.
func (f TargetFilter) tripleOS() string {
	parts := strings.Split(f.Triple, "-")
	if len(parts) < 3 {
		return ""
	}
	os := parts[2]
	if os == "darwin" || os == "linux" || os == "windows" {
		return os
	}
	// arch-vendor-os-abi form, e.g. x86_64-pc-windows-msvc
	if len(parts) >= 4 && parts[2] == "pc" {
		return parts[3]
	}
	return os
}

// tripleArch extracts the architecture component of the triple
func (f TargetFilter) tripleArch() string {
	parts := strings.Split(f.Triple, "-")
	if len(parts) == 0 {
		return ""
	}
	return parts[0]
}

// InclusionPolicy configures which dependency edges the resolver follows
type InclusionPolicy struct {
	// IncludeDevDependencies follows development-kind edges when true.
	IncludeDevDependencies bool
	// IncludeBuildDependencies follows build-kind edges when true.
	IncludeBuildDependencies bool
	// TopLevelOnly stops traversal at the direct dependencies of each
	// root instead of walking the full transitive closure.
	TopLevelOnly bool
	// Target filters platform-conditional edges.
	Target TargetFilter
}

// DefaultInclusionPolicy returns the policy used when nothing is configured:
// build dependencies in, dev dependencies out, full transitive closure,
// platform-independent output.
func DefaultInclusionPolicy() InclusionPolicy {
	return InclusionPolicy{
		IncludeBuildDependencies: true,
		Target:                   TargetFilter{All: true},
	}
}

// AllowsKind reports whether the policy follows edges of the given kind
func (p InclusionPolicy) AllowsKind(kind DependencyKind) (bool, error) {
	switch kind {
	case KindNormal:
		return true, nil
	case KindBuild:
		return p.IncludeBuildDependencies, nil
	case KindDevelopment:
		return p.IncludeDevDependencies, nil
	default:
		return false, fmt.Errorf("unknown dependency kind %q", kind)
	}
}
