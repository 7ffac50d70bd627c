package validate

import (
	"strconv"

	"github.com/formlab/annotate/internal/document"
	"github.com/formlab/annotate/internal/geometry"
)

// Structural runs the document-only pass: geometric containment,
// sibling non-overlap inside segmented fields, unit consistency, and
// the presence rules for data-bound fields. It needs no data tree and
// returns every finding in document order.
//
// Containment is checked in each entity's own coordinate space: a
// section must fit its page, and a child must fit the local bounds
// {0, 0, parent.width, parent.height} of its parent, since child
// positions are parent-relative.
func Structural(doc *document.Document) []Finding {
	var fs findings

	checkUnitConsistency(&fs, doc)
	for _, page := range doc.Pages() {
		pageBounds := page.PageSize.Bounds()
		for si := range page.Sections {
			checkSection(&fs, pageBounds, &page.Sections[si])
		}
	}

	return fs.list
}

// checkUnitConsistency flags a form whose pages declare different
// units. Positions inherit their page's unit, so a mixed-unit form has
// no single coordinate space and downstream comparisons are undefined.
func checkUnitConsistency(fs *findings, doc *document.Document) {
	pages := doc.Pages()
	if len(pages) < 2 {
		return
	}
	first := pages[0].PageSize.Units
	for i := 1; i < len(pages); i++ {
		if pages[i].PageSize.Units != first {
			fs.errorf(pages[i].PageID, "page units %q differ from form units %q; units must not mix within a form",
				pages[i].PageSize.Units, first)
		}
	}
}

func checkSection(fs *findings, pageBounds geometry.Rect, section *document.Section) {
	if !geometry.Contains(pageBounds, section.Position) {
		fs.errorf(section.SectionID, "section position extends beyond its page bounds")
	}

	local := localBounds(section.Position)
	for fi := range section.Fields {
		checkField(fs, local, &section.Fields[fi])
	}
	for ei := range section.LayoutElements {
		checkLayoutElement(fs, local, &section.LayoutElements[ei])
	}
	for ri := range section.BackgroundRegions {
		region := &section.BackgroundRegions[ri]
		if !geometry.Contains(local, region.Position) {
			fs.errorf(region.RegionID, "background region extends beyond its section bounds")
		}
	}
}

func checkField(fs *findings, sectionBounds geometry.Rect, field *document.Field) {
	if !geometry.Contains(sectionBounds, field.Position) {
		fs.errorf(field.FieldID, "field position extends beyond its section bounds")
	}

	switch field.FieldType {
	case document.FieldTypeText:
		if field.DataSource != nil {
			fs.warnf(field.FieldID, "text fields render their label; data_source is ignored")
		}
	case document.FieldTypeCheckbox, document.FieldTypeInput:
		if field.InputMode == "" {
			fs.errorf(field.FieldID, "%s fields require input_mode", field.FieldType)
		}
		if field.DataSource == nil || field.DataSource.Path == "" {
			fs.errorf(field.FieldID, "%s fields require data_source.path", field.FieldType)
		}
	}

	if seg := field.InputSegmentation; seg != nil {
		checkSegmentation(fs, field, seg)
	}
}

func checkSegmentation(fs *findings, field *document.Field, seg *document.Segmentation) {
	fieldBounds := localBounds(field.Position)

	for i := range seg.Segments {
		s := &seg.Segments[i]
		if !geometry.Contains(fieldBounds, s.Position) {
			fs.errorf(field.FieldID, "segment %d extends beyond its field bounds", s.SegmentIndex)
		}
	}
	for i := range seg.Separators {
		sep := &seg.Separators[i]
		if !geometry.Contains(fieldBounds, sep.Position) {
			fs.errorf(field.FieldID, "separator after segment %d extends beyond its field bounds", sep.AfterSegment)
		}
	}

	// Segments and separators must not overlap each other. All pairs
	// are checked; segment counts are small (an SSN has three).
	labels := make([]string, 0, len(seg.Segments)+len(seg.Separators))
	rects := make([]geometry.Rect, 0, cap(labels))
	for i := range seg.Segments {
		labels = append(labels, labelSegment(seg.Segments[i].SegmentIndex))
		rects = append(rects, seg.Segments[i].Position)
	}
	for i := range seg.Separators {
		labels = append(labels, labelSeparator(seg.Separators[i].AfterSegment))
		rects = append(rects, seg.Separators[i].Position)
	}
	for i := 0; i < len(rects); i++ {
		for j := i + 1; j < len(rects); j++ {
			if geometry.Overlaps(rects[i], rects[j]) {
				fs.errorf(field.FieldID, "%s overlaps %s", labels[i], labels[j])
			}
		}
	}

	// Advisory: the pattern's character count should equal the sum of
	// segment widths plus the separator characters.
	want := 0
	for i := range seg.Segments {
		want += seg.Segments[i].MaxLength
	}
	for i := range seg.Separators {
		want += len(seg.Separators[i].SeparatorChar)
	}
	if seg.Pattern != "" && len(seg.Pattern) != want {
		fs.warnf(field.FieldID, "pattern %q has %d characters but segments and separators account for %d",
			seg.Pattern, len(seg.Pattern), want)
	}
}

func checkLayoutElement(fs *findings, sectionBounds geometry.Rect, el *document.LayoutElement) {
	switch {
	case el.Position.IsRect():
		if !geometry.Contains(sectionBounds, *el.Position.Rect) {
			fs.errorf(el.ElementID, "layout element extends beyond its section bounds")
		}
	case el.Position.IsLine():
		if !geometry.ContainsLine(sectionBounds, *el.Position.Line) {
			fs.errorf(el.ElementID, "layout element line extends beyond its section bounds")
		}
	}
}

// localBounds is the coordinate space children of a positioned entity
// live in: origin at the entity's top-left corner.
func localBounds(r geometry.Rect) geometry.Rect {
	return geometry.Rect{Width: r.Width, Height: r.Height}
}

func labelSegment(index int) string   { return "segment " + strconv.Itoa(index) }
func labelSeparator(index int) string { return "separator after segment " + strconv.Itoa(index) }
