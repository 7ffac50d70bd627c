package bind

import "github.com/formlab/annotate/internal/geometry"

// Status is the per-field outcome of one bind.
type Status string

const (
	StatusOK                  Status = "ok"
	StatusMissingData         Status = "missing_data"
	StatusTypeMismatch        Status = "type_mismatch"
	StatusConstraintViolation Status = "constraint_violation"
)

// Render layers within a section. Background regions paint first,
// fields above them, layout elements last; declaration order breaks
// ties within a layer. Renderers may reorder, which is why the layer
// is carried on the output instead of being baked into list order.
const (
	ZOrderBackground = 0
	ZOrderField      = 1
	ZOrderLayout     = 2
)

// ResolvedSegment maps one substring of a segmented field's value onto
// its absolute page-space box.
type ResolvedSegment struct {
	SegmentIndex int           `json:"segment_index"`
	Value        string        `json:"value"`
	Position     geometry.Rect `json:"position"`
}

// ResolvedFieldInstance is the canonical renderer-facing output for one
// field bound against one data tree. Instances are created fresh per
// bind, never mutated afterwards, and carry absolute page coordinates.
//
// Value holds the resolved raw value even when Status is
// type_mismatch or constraint_violation, so a renderer can choose to
// display the offending value with a warning rather than blank it.
// HasValue is the absence marker: false for missing_data.
type ResolvedFieldInstance struct {
	FieldID    string            `json:"field_id"`
	Status     Status            `json:"status"`
	Value      any               `json:"value,omitempty"`
	HasValue   bool              `json:"has_value"`
	Segments   []ResolvedSegment `json:"segments,omitempty"`
	Position   geometry.Rect     `json:"position"`
	PageNumber int               `json:"page_number"`
	ZOrder     int               `json:"z_order"`
}
