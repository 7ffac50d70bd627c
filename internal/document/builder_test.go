package document

import (
	"errors"
	"testing"

	"github.com/formlab/annotate/internal/geometry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// taxForm returns a small but complete two-field form that passes
// every construction invariant. Tests mutate copies of it to trigger
// specific problems.
func taxForm() *Form {
	return &Form{
		FormID:   "f1040",
		FormName: "U.S. Individual Income Tax Return",
		FormYear: 2025,
		Version:  "1.2.0",
		Pages: []Page{
			{
				PageID:     "page-1",
				PageNumber: 1,
				PageSize:   PageSize{Width: 8.5, Height: 11, Units: geometry.UnitInches},
				Sections: []Section{
					{
						SectionID:   "taxpayer-info",
						SectionType: SectionTypePersonalInfo,
						Position:    geometry.Rect{StartX: 0.5, StartY: 0.5, Width: 7.5, Height: 2.0},
						Fields: []Field{
							{
								FieldID:    "first-name",
								Label:      "First name",
								FieldType:  FieldTypeInput,
								InputMode:  InputModeString,
								DataSource: &DataSource{Path: "taxpayer.first_name"},
								Position:   geometry.Rect{StartX: 0.1, StartY: 0.1, Width: 2.5, Height: 0.3},
							},
							{
								FieldID:    "ssn",
								Label:      "Social security number",
								FieldType:  FieldTypeInput,
								InputMode:  InputModeString,
								DataSource: &DataSource{Path: "taxpayer.ssn"},
								Position:   geometry.Rect{StartX: 4.0, StartY: 0.1, Width: 2.0, Height: 0.3},
								InputSegmentation: &Segmentation{
									Pattern: "XXX-XX-XXXX",
									Segments: []Segment{
										{SegmentIndex: 0, MaxLength: 3, Position: geometry.Rect{StartX: 0.0, StartY: 0.0, Width: 0.55, Height: 0.3}},
										{SegmentIndex: 1, MaxLength: 2, Position: geometry.Rect{StartX: 0.7, StartY: 0.0, Width: 0.4, Height: 0.3}},
										{SegmentIndex: 2, MaxLength: 4, Position: geometry.Rect{StartX: 1.25, StartY: 0.0, Width: 0.7, Height: 0.3}},
									},
									Separators: []Separator{
										{AfterSegment: 0, SeparatorChar: "-", Position: geometry.Rect{StartX: 0.56, StartY: 0.0, Width: 0.13, Height: 0.3}},
										{AfterSegment: 1, SeparatorChar: "-", Position: geometry.Rect{StartX: 1.11, StartY: 0.0, Width: 0.13, Height: 0.3}},
									},
								},
							},
						},
						LayoutElements: []LayoutElement{
							{
								ElementID:   "name-underline",
								ElementType: ElementTypeLine,
								Position:    Placement{Line: &geometry.Line{StartX: 0.1, StartY: 0.45, EndX: 2.6, EndY: 0.45}},
								Properties:  &ElementProperties{LineType: LineTypeSolid, Orientation: OrientationHorizontal, Thickness: 0.5},
							},
						},
						BackgroundRegions: []BackgroundRegion{
							{
								RegionID:   "info-shading",
								RegionType: RegionTypeShading,
								Position:   geometry.Rect{StartX: 0.0, StartY: 0.0, Width: 7.5, Height: 0.5},
								Styling:    &RegionStyling{BackgroundColor: "#e8f0fe", Opacity: floatPtr(0.6)},
							},
						},
					},
				},
			},
		},
	}
}

func floatPtr(f float64) *float64 { return &f }

func TestBuild_ValidForm(t *testing.T) {
	doc, err := Build(taxForm())
	require.NoError(t, err)
	require.NotNil(t, doc)

	assert.Equal(t, 2, doc.FieldCount())
	assert.Equal(t, []string{"first-name", "ssn"}, doc.FieldIDs())

	ref, ok := doc.FieldByID("ssn")
	require.True(t, ok)
	assert.Equal(t, "taxpayer-info", ref.Section.SectionID)
	assert.Equal(t, "page-1", ref.Page.PageID)

	sref, ok := doc.SectionByID("taxpayer-info")
	require.True(t, ok)
	assert.Equal(t, "page-1", sref.Page.PageID)

	_, ok = doc.FieldByID("nope")
	assert.False(t, ok)
}

func TestBuild_NilForm(t *testing.T) {
	doc, err := Build(nil)
	assert.Nil(t, doc)
	assert.Error(t, err)
}

func TestBuild_CollectsAllProblems(t *testing.T) {
	form := taxForm()
	form.FormID = ""
	form.FormYear = 0
	form.Pages[0].PageSize.Units = "pixels"

	doc, err := Build(form)
	assert.Nil(t, doc)

	var serr *StructuralError
	require.True(t, errors.As(err, &serr))
	assert.GreaterOrEqual(t, len(serr.Problems), 3, "all problems must be collected in one pass")
}

func TestBuild_DuplicateFieldID(t *testing.T) {
	form := taxForm()
	form.Pages[0].Sections[0].Fields[1].FieldID = "first-name"
	form.Pages[0].Sections[0].Fields[1].InputSegmentation = nil

	_, err := Build(form)
	var serr *StructuralError
	require.True(t, errors.As(err, &serr))
	assert.Contains(t, serr.Error(), "duplicate field_id")
}

func TestBuild_DuplicateSectionIDAcrossPages(t *testing.T) {
	form := taxForm()
	second := form.Pages[0]
	second.PageID = "page-2"
	second.PageNumber = 2
	second.Sections = []Section{{
		SectionID:   "taxpayer-info", // collides with page 1
		SectionType: SectionTypeIncome,
		Position:    geometry.Rect{StartX: 0.5, StartY: 0.5, Width: 7.5, Height: 2.0},
	}}
	form.Pages = append(form.Pages, second)
	// Field/element/region ids on the copied page would collide too;
	// the duplicated section above carries none.

	_, err := Build(form)
	var serr *StructuralError
	require.True(t, errors.As(err, &serr))
	assert.Contains(t, serr.Error(), "duplicate section_id")
}

func TestBuild_PageNumbering(t *testing.T) {
	tests := []struct {
		name   string
		number int
		wantOK bool
	}{
		{"contiguous from 1", 2, true},
		{"gap in numbering", 3, false},
		{"duplicate number", 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := taxForm()
			form.Pages = append(form.Pages, Page{
				PageID:     "page-extra",
				PageNumber: tt.number,
				PageSize:   PageSize{Width: 8.5, Height: 11, Units: geometry.UnitInches},
			})
			_, err := Build(form)
			if tt.wantOK {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestBuild_EnumMembership(t *testing.T) {
	t.Run("unknown section_type rejected", func(t *testing.T) {
		form := taxForm()
		form.Pages[0].Sections[0].SectionType = "barcode"
		_, err := Build(form)
		assert.Error(t, err)
	})

	t.Run("custom escape accepted", func(t *testing.T) {
		form := taxForm()
		form.Pages[0].Sections[0].SectionType = "custom:barcode"
		_, err := Build(form)
		assert.NoError(t, err)
	})

	t.Run("unknown field_type rejected", func(t *testing.T) {
		form := taxForm()
		form.Pages[0].Sections[0].Fields[0].FieldType = "dropdown"
		_, err := Build(form)
		assert.Error(t, err)
	})

	t.Run("unknown input_mode rejected", func(t *testing.T) {
		form := taxForm()
		form.Pages[0].Sections[0].Fields[0].InputMode = "currency"
		_, err := Build(form)
		assert.Error(t, err)
	})

	t.Run("unknown element_type rejected", func(t *testing.T) {
		form := taxForm()
		form.Pages[0].Sections[0].LayoutElements[0].ElementType = "sparkle"
		_, err := Build(form)
		assert.Error(t, err)
	})

	t.Run("unknown region_type rejected, custom accepted", func(t *testing.T) {
		form := taxForm()
		form.Pages[0].Sections[0].BackgroundRegions[0].RegionType = "zebra"
		_, err := Build(form)
		assert.Error(t, err)

		form = taxForm()
		form.Pages[0].Sections[0].BackgroundRegions[0].RegionType = "custom:zebra"
		_, err = Build(form)
		assert.NoError(t, err)
	})
}

func TestBuild_SegmentationInvariants(t *testing.T) {
	t.Run("non-contiguous indexes", func(t *testing.T) {
		form := taxForm()
		form.Pages[0].Sections[0].Fields[1].InputSegmentation.Segments[2].SegmentIndex = 5
		_, err := Build(form)
		assert.Error(t, err)
	})

	t.Run("non-positive max_length", func(t *testing.T) {
		form := taxForm()
		form.Pages[0].Sections[0].Fields[1].InputSegmentation.Segments[0].MaxLength = 0
		_, err := Build(form)
		assert.Error(t, err)
	})

	t.Run("separator referencing missing segment", func(t *testing.T) {
		form := taxForm()
		form.Pages[0].Sections[0].Fields[1].InputSegmentation.Separators[0].AfterSegment = 9
		_, err := Build(form)
		assert.Error(t, err)
	})

	t.Run("empty pattern", func(t *testing.T) {
		form := taxForm()
		form.Pages[0].Sections[0].Fields[1].InputSegmentation.Pattern = ""
		_, err := Build(form)
		assert.Error(t, err)
	})
}

func TestBuild_OpacityRange(t *testing.T) {
	form := taxForm()
	form.Pages[0].Sections[0].BackgroundRegions[0].Styling.Opacity = floatPtr(1.5)
	_, err := Build(form)
	assert.Error(t, err)
}

func TestBuild_LineElementRequiresDistinctEndpoints(t *testing.T) {
	form := taxForm()
	form.Pages[0].Sections[0].LayoutElements[0].Position = Placement{
		Line: &geometry.Line{StartX: 1, StartY: 1, EndX: 1, EndY: 1},
	}
	_, err := Build(form)
	assert.Error(t, err)
}

func TestBuild_RectElementRejectsLinePosition(t *testing.T) {
	form := taxForm()
	form.Pages[0].Sections[0].LayoutElements[0].ElementType = ElementTypeBorder
	_, err := Build(form)
	assert.Error(t, err, "border positions as a rectangle")
}

func TestEachField_DeclarationOrder(t *testing.T) {
	doc, err := Build(taxForm())
	require.NoError(t, err)

	var order []string
	doc.EachField(func(ref FieldRef) {
		order = append(order, ref.Field.FieldID)
	})
	assert.Equal(t, []string{"first-name", "ssn"}, order)
}

func TestCompareVersions(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"1.0.0", "1.0.0", 0},
		{"1.0.0", "1.2.0", -1},
		{"2.0", "1.9.9", 1},
		{"1.10", "1.9", 1},
		{"1.0", "1.0.1", -1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CompareVersions(tt.a, tt.b), "%s vs %s", tt.a, tt.b)
	}
}
