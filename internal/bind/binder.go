// Package bind combines a built annotation document, a caller data
// tree, the path resolver and the validator into the flat, ordered list
// of resolved field instances a renderer consumes.
package bind

import (
	"sync"

	"github.com/formlab/annotate/internal/datapath"
	"github.com/formlab/annotate/internal/document"
	"github.com/formlab/annotate/internal/geometry"
	"github.com/formlab/annotate/internal/validate"
)

// Config controls binder behavior.
type Config struct {
	// Workers caps the number of goroutines resolving fields
	// concurrently. Values below 2 bind serially. Output order is
	// document declaration order either way.
	Workers int
}

// DefaultConfig returns the serial configuration.
func DefaultConfig() Config {
	return Config{Workers: 1}
}

// Binder binds data trees against immutable documents. A Binder is
// stateless and safe for concurrent use; the same document may be bound
// against many data trees at once.
type Binder struct {
	cfg Config
}

// NewBinder creates a binder with the default configuration.
func NewBinder() *Binder {
	return NewBinderWithConfig(DefaultConfig())
}

// NewBinderWithConfig creates a binder with a custom configuration.
func NewBinderWithConfig(cfg Config) *Binder {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	return &Binder{cfg: cfg}
}

// fieldOutcome pairs one field's instance with the findings that
// explain its status, so parallel workers can hand results back by
// index and the report still reads in declaration order.
type fieldOutcome struct {
	instance ResolvedFieldInstance
	findings []validate.Finding
}

// Bind resolves every field in document order and returns the
// instances plus the validation report. The structural pass runs
// first; error findings flag the report StructurallyInvalid but never
// stop binding, so callers decide whether degraded output is usable.
// The returned list always has exactly one instance per field.
func (b *Binder) Bind(doc *document.Document, data any) ([]ResolvedFieldInstance, *validate.Report) {
	report := &validate.Report{Findings: validate.Structural(doc)}
	report.StructurallyInvalid = report.ErrorCount() > 0

	var refs []document.FieldRef
	doc.EachField(func(ref document.FieldRef) {
		refs = append(refs, ref)
	})

	outcomes := make([]fieldOutcome, len(refs))
	if b.cfg.Workers > 1 && len(refs) > 1 {
		b.bindParallel(refs, data, outcomes)
	} else {
		for i, ref := range refs {
			outcomes[i] = bindField(ref, data)
		}
	}

	instances := make([]ResolvedFieldInstance, len(outcomes))
	for i := range outcomes {
		instances[i] = outcomes[i].instance
		report.Findings = append(report.Findings, outcomes[i].findings...)
	}
	return instances, report
}

// bindParallel fans field resolution out over a bounded worker pool.
// Results land in the index-addressed outcomes slice, which reassembles
// declaration order regardless of completion order.
func (b *Binder) bindParallel(refs []document.FieldRef, data any, outcomes []fieldOutcome) {
	workers := b.cfg.Workers
	if workers > len(refs) {
		workers = len(refs)
	}

	indexes := make(chan int)
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := range indexes {
				outcomes[i] = bindField(refs[i], data)
			}
		}()
	}
	for i := range refs {
		indexes <- i
	}
	close(indexes)
	wg.Wait()
}

// bindField resolves and checks one field. Every failure is scoped to
// the field's status; nothing here aborts the surrounding bind.
func bindField(ref document.FieldRef, data any) fieldOutcome {
	field := ref.Field
	absPos := geometry.Compose(ref.Section.Position, field.Position)

	instance := ResolvedFieldInstance{
		FieldID:    field.FieldID,
		Position:   absPos,
		PageNumber: ref.Page.PageNumber,
		ZOrder:     ZOrderField,
	}

	// Text fields carry their own content; no resolution happens.
	if field.FieldType == document.FieldTypeText {
		instance.Status = StatusOK
		instance.Value = field.Label
		instance.HasValue = true
		return fieldOutcome{instance: instance}
	}

	if field.DataSource == nil || field.DataSource.Path == "" {
		// The structural pass already reported the missing binding.
		instance.Status = StatusMissingData
		return fieldOutcome{instance: instance}
	}

	value, err := datapath.Resolve(field.DataSource.Path, data)
	if err != nil {
		switch {
		case datapath.TypeMismatch(err):
			instance.Status = StatusTypeMismatch
		default:
			// PathNotFound and the defensive depth limit both mean the
			// data simply is not there.
			instance.Status = StatusMissingData
		}
		return fieldOutcome{
			instance: instance,
			findings: []validate.Finding{{
				Severity: validate.SeverityWarning,
				EntityID: field.FieldID,
				Message:  err.Error(),
			}},
		}
	}

	instance.Value = value.Raw
	instance.HasValue = true

	verdict, findings := validate.Conformance(field, value)
	switch verdict {
	case validate.VerdictOK:
		instance.Status = StatusOK
	case validate.VerdictTypeMismatch:
		instance.Status = StatusTypeMismatch
	case validate.VerdictConstraintViolation:
		instance.Status = StatusConstraintViolation
	}

	if seg := field.InputSegmentation; seg != nil && instance.Status == StatusOK {
		instance.Segments = resolveSegments(seg, absPos, value.String())
	}

	return fieldOutcome{instance: instance, findings: findings}
}

// resolveSegments splits the bound value across the segment boxes and
// composes each box into absolute page coordinates. The conformance
// pass has already verified the split fits, so a failure here only
// yields a nil slice.
func resolveSegments(seg *document.Segmentation, fieldPos geometry.Rect, value string) []ResolvedSegment {
	parts, err := validate.SplitSegments(seg, value)
	if err != nil {
		return nil
	}

	out := make([]ResolvedSegment, 0, len(seg.Segments))
	for i := range seg.Segments {
		s := &seg.Segments[i]
		out = append(out, ResolvedSegment{
			SegmentIndex: s.SegmentIndex,
			Value:        parts[s.SegmentIndex],
			Position:     geometry.Compose(fieldPos, s.Position),
		})
	}
	return out
}
