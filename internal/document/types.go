// Package document defines the typed in-memory representation of a form
// annotation: Form → Pages → Sections → {Fields, Layout Elements,
// Background Regions}, with segmented-input substructure under fields.
//
// The tree is immutable after construction. Build is the only entry
// point that produces a Document, and it refuses to produce one at all
// when the raw form violates a construction invariant; see builder.go.
package document

import (
	"strconv"
	"strings"

	"github.com/formlab/annotate/internal/geometry"
)

// FieldType represents the kind of a form field.
type FieldType string

const (
	FieldTypeText     FieldType = "text"
	FieldTypeCheckbox FieldType = "checkbox"
	FieldTypeInput    FieldType = "input"
)

// InputMode declares the expected data type of a bound field value.
// Required for checkbox and input fields, ignored for text fields.
type InputMode string

const (
	InputModeString  InputMode = "string"
	InputModeNumber  InputMode = "number"
	InputModeInteger InputMode = "integer"
	InputModeBoolean InputMode = "boolean"
	InputModeDate    InputMode = "date"
)

// CustomPrefix marks an open-set enum value that extends the known
// vocabulary. "custom:barcode" is accepted where a bare "barcode" is
// rejected, so truly malformed input still fails construction.
const CustomPrefix = "custom:"

// SectionType classifies a section. The set is open: any value not in
// the known list must carry the CustomPrefix escape.
type SectionType string

const (
	SectionTypeHeader         SectionType = "header"
	SectionTypePersonalInfo   SectionType = "personal_info"
	SectionTypeFilingStatus   SectionType = "filing_status"
	SectionTypeIncome         SectionType = "income"
	SectionTypeDeductions     SectionType = "deductions"
	SectionTypeCredits        SectionType = "credits"
	SectionTypeTaxComputation SectionType = "tax_computation"
	SectionTypePayments       SectionType = "payments"
	SectionTypeRefund         SectionType = "refund"
	SectionTypeSignature      SectionType = "signature"
	SectionTypeInstructions   SectionType = "instructions"
	SectionTypeFooter         SectionType = "footer"
)

// ElementType classifies a visual layout element.
type ElementType string

const (
	ElementTypeLine      ElementType = "line"
	ElementTypeBorder    ElementType = "border"
	ElementTypeSeparator ElementType = "separator"
	ElementTypeImage     ElementType = "image"
	ElementTypeLogo      ElementType = "logo"
)

// RegionType classifies a background region. Open set like SectionType.
type RegionType string

const (
	RegionTypeShading   RegionType = "shading"
	RegionTypeHighlight RegionType = "highlight"
	RegionTypeWatermark RegionType = "watermark"
)

// LineType describes the stroke style of a drawn line element.
type LineType string

const (
	LineTypeSolid  LineType = "solid"
	LineTypeDotted LineType = "dotted"
	LineTypeDashed LineType = "dashed"
)

// Orientation describes the direction of a drawn line element.
type Orientation string

const (
	OrientationHorizontal Orientation = "horizontal"
	OrientationVertical   Orientation = "vertical"
	OrientationDiagonal   Orientation = "diagonal"
)

// Form is the root of an annotation document.
type Form struct {
	FormID   string `json:"form_id"`
	FormName string `json:"form_name,omitempty"`
	FormYear int    `json:"form_year"`
	Version  string `json:"version"`
	Pages    []Page `json:"pages"`
}

// PageSize declares the physical dimensions and coordinate unit of a
// page. Every position on the page inherits this unit.
type PageSize struct {
	Width  float64       `json:"width"`
	Height float64       `json:"height"`
	Units  geometry.Unit `json:"units"`
}

// Bounds returns the page rectangle anchored at the page origin (0,0).
func (ps PageSize) Bounds() geometry.Rect {
	return geometry.Rect{Width: ps.Width, Height: ps.Height}
}

// Page is one sheet of the form, owning an ordered list of sections.
type Page struct {
	PageID     string    `json:"page_id"`
	PageNumber int       `json:"page_number"`
	PageSize   PageSize  `json:"page_size"`
	Sections   []Section `json:"sections,omitempty"`
}

// Section groups fields and visual elements within a page region.
// Default render order within a section is background regions, then
// fields, then layout elements, declaration order within each category;
// resolved output exposes a z-order so renderers can override.
type Section struct {
	SectionID         string             `json:"section_id"`
	SectionType       SectionType        `json:"section_type"`
	Position          geometry.Rect      `json:"position"`
	Fields            []Field            `json:"fields,omitempty"`
	LayoutElements    []LayoutElement    `json:"layout_elements,omitempty"`
	BackgroundRegions []BackgroundRegion `json:"background_regions,omitempty"`
}

// DataSource names the location in the caller's data tree a field binds
// to, as a dot-notation path.
type DataSource struct {
	Path string `json:"path"`
}

// Formatting is the optional styling bag attached to a field.
type Formatting struct {
	FontFamily    string  `json:"font_family,omitempty"`
	FontSize      float64 `json:"font_size,omitempty"`
	TextAlign     string  `json:"text_align,omitempty"`
	TextTransform string  `json:"text_transform,omitempty"`
	MaxLength     int     `json:"max_length,omitempty"`
	Color         string  `json:"color,omitempty"`
}

// Field is a positioned, optionally data-bound input or label.
type Field struct {
	FieldID           string        `json:"field_id"`
	Label             string        `json:"label,omitempty"`
	FieldType         FieldType     `json:"field_type"`
	InputMode         InputMode     `json:"input_mode,omitempty"`
	DataSource        *DataSource   `json:"data_source,omitempty"`
	Position          geometry.Rect `json:"position"`
	Formatting        *Formatting   `json:"formatting,omitempty"`
	InputSegmentation *Segmentation `json:"input_segmentation,omitempty"`
}

// Segmentation subdivides one logical field into multiple positioned
// input boxes, e.g. the 3-2-4 digit groups of an SSN.
type Segmentation struct {
	Pattern    string      `json:"pattern"`
	Segments   []Segment   `json:"segments"`
	Separators []Separator `json:"separators,omitempty"`
}

// Segment is one box of a segmented input. Indexes are contiguous
// from zero; positions are relative to the owning field.
type Segment struct {
	SegmentIndex int           `json:"segment_index"`
	MaxLength    int           `json:"max_length"`
	Position     geometry.Rect `json:"position"`
}

// Separator is the printed character between two segments.
type Separator struct {
	AfterSegment  int           `json:"after_segment"`
	SeparatorChar string        `json:"separator_char"`
	Position      geometry.Rect `json:"position"`
}

// ElementProperties carries the visual attributes of a layout element.
type ElementProperties struct {
	LineType    LineType    `json:"line_type,omitempty"`
	Orientation Orientation `json:"orientation,omitempty"`
	Thickness   float64     `json:"thickness,omitempty"`
	Color       string      `json:"color,omitempty"`
	Source      string      `json:"source,omitempty"`
}

// LayoutElement is a purely visual element: a line, border, separator,
// image or logo. Line and separator elements position as a line
// segment; the rest position as rectangles.
type LayoutElement struct {
	ElementID   string             `json:"element_id"`
	ElementType ElementType        `json:"element_type"`
	Position    Placement          `json:"position"`
	Properties  *ElementProperties `json:"properties,omitempty"`
}

// RegionStyling carries fill and border attributes of a background region.
type RegionStyling struct {
	BackgroundColor string   `json:"background_color,omitempty"`
	Opacity         *float64 `json:"opacity,omitempty"`
	BorderColor     string   `json:"border_color,omitempty"`
	BorderWidth     float64  `json:"border_width,omitempty"`
}

// BackgroundRegion is a filled area rendered beneath a section's fields.
type BackgroundRegion struct {
	RegionID   string         `json:"region_id"`
	RegionType RegionType     `json:"region_type"`
	Position   geometry.Rect  `json:"position"`
	Styling    *RegionStyling `json:"styling,omitempty"`
}

var knownSectionTypes = map[SectionType]bool{
	SectionTypeHeader:         true,
	SectionTypePersonalInfo:   true,
	SectionTypeFilingStatus:   true,
	SectionTypeIncome:         true,
	SectionTypeDeductions:     true,
	SectionTypeCredits:        true,
	SectionTypeTaxComputation: true,
	SectionTypePayments:       true,
	SectionTypeRefund:         true,
	SectionTypeSignature:      true,
	SectionTypeInstructions:   true,
	SectionTypeFooter:         true,
}

var knownRegionTypes = map[RegionType]bool{
	RegionTypeShading:   true,
	RegionTypeHighlight: true,
	RegionTypeWatermark: true,
}

// IsKnown reports whether the section type is in the known vocabulary.
func (s SectionType) IsKnown() bool { return knownSectionTypes[s] }

// IsCustom reports whether the section type uses the custom escape.
func (s SectionType) IsCustom() bool { return strings.HasPrefix(string(s), CustomPrefix) }

// Valid reports whether the section type is known or a tagged custom value.
func (s SectionType) Valid() bool { return s.IsKnown() || s.IsCustom() }

// IsKnown reports whether the region type is in the known vocabulary.
func (r RegionType) IsKnown() bool { return knownRegionTypes[r] }

// IsCustom reports whether the region type uses the custom escape.
func (r RegionType) IsCustom() bool { return strings.HasPrefix(string(r), CustomPrefix) }

// Valid reports whether the region type is known or a tagged custom value.
func (r RegionType) Valid() bool { return r.IsKnown() || r.IsCustom() }

// Valid reports whether the field type is a member of its closed set.
func (f FieldType) Valid() bool {
	switch f {
	case FieldTypeText, FieldTypeCheckbox, FieldTypeInput:
		return true
	}
	return false
}

// Valid reports whether the input mode is a member of its closed set.
func (m InputMode) Valid() bool {
	switch m {
	case InputModeString, InputModeNumber, InputModeInteger, InputModeBoolean, InputModeDate:
		return true
	}
	return false
}

// Valid reports whether the element type is a member of its closed set.
func (e ElementType) Valid() bool {
	switch e {
	case ElementTypeLine, ElementTypeBorder, ElementTypeSeparator, ElementTypeImage, ElementTypeLogo:
		return true
	}
	return false
}

// DrawsAsLine reports whether elements of this type position as a line
// segment rather than a rectangle.
func (e ElementType) DrawsAsLine() bool {
	return e == ElementTypeLine || e == ElementTypeSeparator
}

// CompareVersions orders two dot-separated numeric version strings.
// It returns -1, 0 or 1. Non-numeric components compare as strings,
// so malformed versions still order deterministically.
func CompareVersions(a, b string) int {
	as := strings.Split(a, ".")
	bs := strings.Split(b, ".")
	n := len(as)
	if len(bs) > n {
		n = len(bs)
	}
	for i := 0; i < n; i++ {
		var ap, bp string
		if i < len(as) {
			ap = as[i]
		}
		if i < len(bs) {
			bp = bs[i]
		}
		ai, aerr := strconv.Atoi(ap)
		bi, berr := strconv.Atoi(bp)
		switch {
		case aerr == nil && berr == nil:
			if ai != bi {
				if ai < bi {
					return -1
				}
				return 1
			}
		default:
			if ap != bp {
				if ap < bp {
					return -1
				}
				return 1
			}
		}
	}
	return 0
}
