// Package validate checks annotation documents in two independently
// invokable passes: a structural pass over the document alone, and a
// per-field conformance pass over a resolved value. Neither pass stops
// at the first problem; findings are collected so tooling can report
// them in one batch.
package validate

import "fmt"

// Severity grades a finding.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Finding is one validation observation tied to the offending entity.
type Finding struct {
	Severity Severity `json:"severity"`
	EntityID string   `json:"entity_id,omitempty"`
	Message  string   `json:"message"`
}

// String renders the finding for human-readable diagnostics.
func (f Finding) String() string {
	if f.EntityID != "" {
		return fmt.Sprintf("[%s] %s: %s", f.Severity, f.EntityID, f.Message)
	}
	return fmt.Sprintf("[%s] %s", f.Severity, f.Message)
}

// Report is the ordered list of findings from one validation run, plus
// the overall flag callers branch on. Binding proceeds in degraded mode
// when StructurallyInvalid is set; whether that is fatal is the
// caller's decision.
type Report struct {
	Findings            []Finding `json:"findings"`
	StructurallyInvalid bool      `json:"structurally_invalid"`
}

// ErrorCount returns how many findings carry error severity.
func (r *Report) ErrorCount() int {
	n := 0
	for _, f := range r.Findings {
		if f.Severity == SeverityError {
			n++
		}
	}
	return n
}

// WarningCount returns how many findings carry warning severity.
func (r *Report) WarningCount() int {
	return len(r.Findings) - r.ErrorCount()
}

type findings struct {
	list []Finding
}

func (fs *findings) errorf(entityID, format string, args ...any) {
	fs.list = append(fs.list, Finding{
		Severity: SeverityError,
		EntityID: entityID,
		Message:  fmt.Sprintf(format, args...),
	})
}

func (fs *findings) warnf(entityID, format string, args ...any) {
	fs.list = append(fs.list, Finding{
		Severity: SeverityWarning,
		EntityID: entityID,
		Message:  fmt.Sprintf(format, args...),
	})
}
