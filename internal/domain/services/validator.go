package services

import (
	"fmt"

	"github.com/ochairo/cratebom/internal/domain/entities"
)

// FailureReason is one validation finding with the path of the
// offending field, e.g. "components[3].hashes[0]".
type FailureReason struct {
	Message string
	Context string
}

// ValidationResult is the outcome of a document audit. Results merge:
// a merged result fails if either side fails and carries both failure
// lists.
type ValidationResult struct {
	Failures []FailureReason
}

// Passed reports whether the audit found nothing
func (r ValidationResult) Passed() bool {
	return len(r.Failures) == 0
}

// Merge combines two results
func (r ValidationResult) Merge(other ValidationResult) ValidationResult {
	return ValidationResult{Failures: append(r.Failures, other.Failures...)}
}

func failure(message, contextFormat string, args ...interface{}) ValidationResult {
	return ValidationResult{Failures: []FailureReason{{
		Message: message,
		Context: fmt.Sprintf(contextFormat, args...),
	}}}
}

// ValidatorService audits an assembled document against document-wide
// rules before serialization. The assembler already fails hard on
// dangling references; the validator exists as an independent check for
// the validate command and as a test oracle.
type ValidatorService struct{}

// NewValidatorService creates a new validator service
func NewValidatorService() *ValidatorService {
	return &ValidatorService{}
}

// ValidateDocument runs the full audit
func (s *ValidatorService) ValidateDocument(doc *entities.BomDocument) ValidationResult {
	result := ValidationResult{}
	if doc == nil {
		return failure("document is nil", "document")
	}

	if doc.SerialNumber == "" {
		result = result.Merge(failure("serial number is empty", "serialNumber"))
	}
	if doc.Subject == nil {
		result = result.Merge(failure("document has no subject component", "metadata.component"))
	} else {
		result = result.Merge(s.validateComponent(doc.Subject, "metadata.component"))
	}

	refs := make(map[string]int)
	purls := make(map[string]int)
	if doc.Subject != nil {
		refs[doc.Subject.BOMRef]++
		purls[doc.Subject.PackageURL]++
	}
	for i := range doc.Components {
		c := &doc.Components[i]
		context := fmt.Sprintf("components[%d]", i)
		result = result.Merge(s.validateComponent(c, context))
		refs[c.BOMRef]++
		purls[c.PackageURL]++
		if refs[c.BOMRef] > 1 {
			result = result.Merge(failure(
				fmt.Sprintf("duplicate bom-ref %q", c.BOMRef), "%s.bom-ref", context))
		}
		if purls[c.PackageURL] > 1 {
			result = result.Merge(failure(
				fmt.Sprintf("duplicate package URL %q", c.PackageURL), "%s.purl", context))
		}
	}

	for i, rel := range doc.Relationships {
		context := fmt.Sprintf("dependencies[%d]", i)
		if refs[rel.Ref] == 0 {
			result = result.Merge(failure(
				fmt.Sprintf("relationship source %q is not a component", rel.Ref),
				"%s.ref", context))
		}
		for j, target := range rel.DependsOn {
			if refs[target] == 0 {
				result = result.Merge(failure(
					fmt.Sprintf("relationship target %q is not a component", target),
					"%s.dependsOn[%d]", context, j))
			}
		}
	}

	return result
}

// validateComponent checks per-component required fields
func (s *ValidatorService) validateComponent(c *entities.Component, context string) ValidationResult {
	result := ValidationResult{}
	if c.Name == "" {
		result = result.Merge(failure("component name is empty", "%s.name", context))
	}
	if c.Version == "" {
		result = result.Merge(failure("component version is empty", "%s.version", context))
	}
	if c.BOMRef == "" {
		result = result.Merge(failure("component bom-ref is empty", "%s.bom-ref", context))
	}
	if c.PackageURL == "" {
		result = result.Merge(failure("component package URL is empty", "%s.purl", context))
	}
	for i, h := range c.Hashes {
		if !hexPattern.MatchString(h.Value) {
			result = result.Merge(failure(
				fmt.Sprintf("hash value %q is not hex-encoded", h.Value),
				"%s.hashes[%d]", context, i))
		}
	}
	for i, l := range c.Licenses {
		if (l.Expression == "") == (l.Name == "") {
			result = result.Merge(failure(
				"license must set exactly one of expression or name",
				"%s.licenses[%d]", context, i))
		}
	}
	return result
}
