package document

import (
	"fmt"
	"sort"
	"strings"

	"github.com/formlab/annotate/internal/geometry"
)

// Problem describes one construction invariant the raw form violates.
type Problem struct {
	EntityID string `json:"entity_id,omitempty"`
	Message  string `json:"message"`
}

// StructuralError aggregates every construction problem found in one
// pass over the raw form. When Build returns it, no Document exists:
// a partially built document is never usable.
type StructuralError struct {
	Problems []Problem
}

// Error summarizes the problems, one per line after the count.
func (e *StructuralError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "document construction failed with %d problem(s)", len(e.Problems))
	for _, p := range e.Problems {
		sb.WriteString("\n  ")
		if p.EntityID != "" {
			sb.WriteString(p.EntityID)
			sb.WriteString(": ")
		}
		sb.WriteString(p.Message)
	}
	return sb.String()
}

// FieldRef locates a field together with its owning section and page,
// so callers can compose coordinates without re-walking the tree.
type FieldRef struct {
	Page    *Page
	Section *Section
	Field   *Field
}

// SectionRef locates a section together with its owning page.
type SectionRef struct {
	Page    *Page
	Section *Section
}

// Document is the validated, immutable annotation tree. All accessors
// return the underlying data read-only by convention; nothing in this
// package mutates a Document after Build returns it, and callers must
// not either. Lookup maps are built once at construction.
type Document struct {
	form        *Form
	fieldByID   map[string]FieldRef
	sectionByID map[string]SectionRef
	fieldOrder  []string
}

// Build verifies the construction invariants of the raw form and wraps
// it in a Document. It collects every violation rather than stopping at
// the first, and returns a *StructuralError when any exist.
func Build(form *Form) (*Document, error) {
	if form == nil {
		return nil, &StructuralError{Problems: []Problem{{Message: "form is nil"}}}
	}

	b := &builder{
		doc: &Document{
			form:        form,
			fieldByID:   make(map[string]FieldRef),
			sectionByID: make(map[string]SectionRef),
		},
		elementIDs: make(map[string]bool),
		regionIDs:  make(map[string]bool),
	}

	b.checkForm(form)
	for pi := range form.Pages {
		b.checkPage(&form.Pages[pi])
	}
	b.checkPageNumbering(form)

	if len(b.problems) > 0 {
		return nil, &StructuralError{Problems: b.problems}
	}
	return b.doc, nil
}

// Form returns the underlying form.
func (d *Document) Form() *Form { return d.form }

// Pages returns the ordered pages of the form.
func (d *Document) Pages() []Page { return d.form.Pages }

// FieldByID returns the field with the given id and its owners.
func (d *Document) FieldByID(id string) (FieldRef, bool) {
	ref, ok := d.fieldByID[id]
	return ref, ok
}

// SectionByID returns the section with the given id and its owning page.
func (d *Document) SectionByID(id string) (SectionRef, bool) {
	ref, ok := d.sectionByID[id]
	return ref, ok
}

// FieldCount returns the total number of fields in the form.
func (d *Document) FieldCount() int { return len(d.fieldOrder) }

// FieldIDs returns every field id in document declaration order.
func (d *Document) FieldIDs() []string {
	out := make([]string, len(d.fieldOrder))
	copy(out, d.fieldOrder)
	return out
}

// EachField walks every field in declaration order: page order, then
// section order within the page, then field order within the section.
func (d *Document) EachField(fn func(FieldRef)) {
	for _, id := range d.fieldOrder {
		fn(d.fieldByID[id])
	}
}

type builder struct {
	doc        *Document
	problems   []Problem
	elementIDs map[string]bool
	regionIDs  map[string]bool
}

func (b *builder) problemf(entityID, format string, args ...any) {
	b.problems = append(b.problems, Problem{EntityID: entityID, Message: fmt.Sprintf(format, args...)})
}

func (b *builder) checkForm(form *Form) {
	if form.FormID == "" {
		b.problemf("", "form_id is required")
	}
	if form.FormYear <= 0 {
		b.problemf(form.FormID, "form_year must be a positive integer, got %d", form.FormYear)
	}
	if form.Version == "" {
		b.problemf(form.FormID, "version is required")
	}
	if len(form.Pages) == 0 {
		b.problemf(form.FormID, "form has no pages")
	}
}

func (b *builder) checkPage(page *Page) {
	if page.PageID == "" {
		b.problemf("", "page_id is required (page_number %d)", page.PageNumber)
	}
	if page.PageSize.Width <= 0 || page.PageSize.Height <= 0 {
		b.problemf(page.PageID, "page_size must have positive width and height, got %gx%g",
			page.PageSize.Width, page.PageSize.Height)
	}
	if !geometry.ValidUnit(page.PageSize.Units) {
		b.problemf(page.PageID, "page_size units must be one of inches, points, mm, cm; got %q", page.PageSize.Units)
	}

	for si := range page.Sections {
		b.checkSection(page, &page.Sections[si])
	}
}

func (b *builder) checkSection(page *Page, section *Section) {
	if section.SectionID == "" {
		b.problemf(page.PageID, "section_id is required")
	} else if prev, dup := b.doc.sectionByID[section.SectionID]; dup {
		b.problemf(section.SectionID, "duplicate section_id (already declared on page %q)", prev.Page.PageID)
	} else {
		b.doc.sectionByID[section.SectionID] = SectionRef{Page: page, Section: section}
	}

	if !section.SectionType.Valid() {
		b.problemf(section.SectionID, "section_type %q is not a known type; use %q to extend",
			section.SectionType, CustomPrefix+string(section.SectionType))
	}
	if section.Position.Width < 0 || section.Position.Height < 0 {
		b.problemf(section.SectionID, "position has negative dimensions")
	}

	for fi := range section.Fields {
		b.checkField(page, section, &section.Fields[fi])
	}
	for ei := range section.LayoutElements {
		b.checkLayoutElement(section, &section.LayoutElements[ei])
	}
	for ri := range section.BackgroundRegions {
		b.checkBackgroundRegion(section, &section.BackgroundRegions[ri])
	}
}

func (b *builder) checkField(page *Page, section *Section, field *Field) {
	if field.FieldID == "" {
		b.problemf(section.SectionID, "field_id is required")
	} else if _, dup := b.doc.fieldByID[field.FieldID]; dup {
		b.problemf(field.FieldID, "duplicate field_id; field ids must be unique across the form")
	} else {
		b.doc.fieldByID[field.FieldID] = FieldRef{Page: page, Section: section, Field: field}
		b.doc.fieldOrder = append(b.doc.fieldOrder, field.FieldID)
	}

	if !field.FieldType.Valid() {
		b.problemf(field.FieldID, "field_type %q is not one of text, checkbox, input", field.FieldType)
	}
	if field.InputMode != "" && !field.InputMode.Valid() {
		b.problemf(field.FieldID, "input_mode %q is not one of string, number, integer, boolean, date", field.InputMode)
	}
	if field.Position.Width < 0 || field.Position.Height < 0 {
		b.problemf(field.FieldID, "position has negative dimensions")
	}
	if f := field.Formatting; f != nil && f.MaxLength < 0 {
		b.problemf(field.FieldID, "formatting max_length must not be negative, got %d", f.MaxLength)
	}

	if seg := field.InputSegmentation; seg != nil {
		b.checkSegmentation(field, seg)
	}
}

func (b *builder) checkSegmentation(field *Field, seg *Segmentation) {
	if seg.Pattern == "" {
		b.problemf(field.FieldID, "segmentation pattern is required")
	}
	if len(seg.Segments) == 0 {
		b.problemf(field.FieldID, "segmentation declares no segments")
	}

	seen := make(map[int]bool, len(seg.Segments))
	for i := range seg.Segments {
		s := &seg.Segments[i]
		if seen[s.SegmentIndex] {
			b.problemf(field.FieldID, "duplicate segment_index %d", s.SegmentIndex)
		}
		seen[s.SegmentIndex] = true
		if s.MaxLength <= 0 {
			b.problemf(field.FieldID, "segment %d max_length must be positive, got %d", s.SegmentIndex, s.MaxLength)
		}
	}
	for i := 0; i < len(seg.Segments); i++ {
		if !seen[i] {
			b.problemf(field.FieldID, "segment indexes must be contiguous from 0; missing index %d", i)
			break
		}
	}

	for i := range seg.Separators {
		sep := &seg.Separators[i]
		if !seen[sep.AfterSegment] {
			b.problemf(field.FieldID, "separator after_segment %d does not reference a declared segment", sep.AfterSegment)
		}
		if sep.SeparatorChar == "" {
			b.problemf(field.FieldID, "separator after segment %d has no separator_char", sep.AfterSegment)
		}
	}
}

func (b *builder) checkLayoutElement(section *Section, el *LayoutElement) {
	if el.ElementID == "" {
		b.problemf(section.SectionID, "element_id is required")
	} else if b.elementIDs[el.ElementID] {
		b.problemf(el.ElementID, "duplicate element_id; element ids must be unique across the form")
	} else {
		b.elementIDs[el.ElementID] = true
	}

	if !el.ElementType.Valid() {
		b.problemf(el.ElementID, "element_type %q is not one of line, border, separator, image, logo", el.ElementType)
	}
	if !el.Position.IsRect() && !el.Position.IsLine() {
		b.problemf(el.ElementID, "element has no position")
		return
	}
	if el.ElementType.DrawsAsLine() {
		if l := el.Position.Line; l != nil && l.StartX == l.EndX && l.StartY == l.EndY {
			b.problemf(el.ElementID, "line endpoints must differ")
		}
	} else if el.Position.IsLine() {
		b.problemf(el.ElementID, "element_type %q positions as a rectangle, not a line", el.ElementType)
	}
}

func (b *builder) checkBackgroundRegion(section *Section, region *BackgroundRegion) {
	if region.RegionID == "" {
		b.problemf(section.SectionID, "region_id is required")
	} else if b.regionIDs[region.RegionID] {
		b.problemf(region.RegionID, "duplicate region_id; region ids must be unique across the form")
	} else {
		b.regionIDs[region.RegionID] = true
	}

	if !region.RegionType.Valid() {
		b.problemf(region.RegionID, "region_type %q is not a known type; use %q to extend",
			region.RegionType, CustomPrefix+string(region.RegionType))
	}
	if s := region.Styling; s != nil {
		if s.Opacity != nil && (*s.Opacity < 0 || *s.Opacity > 1) {
			b.problemf(region.RegionID, "styling opacity must be within [0,1], got %g", *s.Opacity)
		}
		if s.BorderWidth < 0 {
			b.problemf(region.RegionID, "styling border_width must not be negative, got %g", s.BorderWidth)
		}
	}
}

// checkPageNumbering verifies page numbers are unique, start at 1 and
// are contiguous, and that page ids do not repeat.
func (b *builder) checkPageNumbering(form *Form) {
	if len(form.Pages) == 0 {
		return
	}

	ids := make(map[string]bool, len(form.Pages))
	numbers := make([]int, 0, len(form.Pages))
	byNumber := make(map[int]bool, len(form.Pages))
	for i := range form.Pages {
		p := &form.Pages[i]
		if p.PageID != "" {
			if ids[p.PageID] {
				b.problemf(p.PageID, "duplicate page_id")
			}
			ids[p.PageID] = true
		}
		if byNumber[p.PageNumber] {
			b.problemf(p.PageID, "duplicate page_number %d", p.PageNumber)
			continue
		}
		byNumber[p.PageNumber] = true
		numbers = append(numbers, p.PageNumber)
	}

	sort.Ints(numbers)
	for i, n := range numbers {
		if n != i+1 {
			b.problemf(form.FormID, "page numbers must be contiguous starting at 1; got %v", numbers)
			break
		}
	}
}
