package pdfinfo

import (
	"fmt"

	"github.com/formlab/annotate/internal/document"
	"github.com/formlab/annotate/internal/geometry"
	"github.com/formlab/annotate/internal/validate"
)

// DimTolerancePts is how far a declared page size may deviate from the
// measured PDF page before the mismatch is flagged. Half a point
// absorbs rounding in hand-authored annotation coordinates.
const DimTolerancePts = 0.5

// CrossCheck compares an annotation document's declared page geometry
// against the PDF it annotates: page count must match, and each page's
// declared size (converted to points) must agree with the measured
// MediaBox within DimTolerancePts. Findings use the same shape as the
// structural pass so tooling reports them uniformly.
func CrossCheck(doc *document.Document, pdfPath string, insp Inspector) ([]validate.Finding, error) {
	dims, err := insp.PageDims(pdfPath)
	if err != nil {
		return nil, err
	}

	var findings []validate.Finding
	pages := doc.Pages()

	if len(pages) != len(dims) {
		findings = append(findings, validate.Finding{
			Severity: validate.SeverityError,
			EntityID: doc.Form().FormID,
			Message:  fmt.Sprintf("annotation declares %d page(s) but the PDF has %d", len(pages), len(dims)),
		})
	}

	for i := range pages {
		if i >= len(dims) {
			break
		}
		if f, ok := comparePage(&pages[i], dims[i]); !ok {
			findings = append(findings, f)
		}
	}
	return findings, nil
}

func comparePage(page *document.Page, dim PageDim) (validate.Finding, bool) {
	widthPts, err := geometry.ToPoints(page.PageSize.Width, page.PageSize.Units)
	if err != nil {
		return validate.Finding{Severity: validate.SeverityError, EntityID: page.PageID, Message: err.Error()}, false
	}
	heightPts, err := geometry.ToPoints(page.PageSize.Height, page.PageSize.Units)
	if err != nil {
		return validate.Finding{Severity: validate.SeverityError, EntityID: page.PageID, Message: err.Error()}, false
	}

	if abs(widthPts-dim.WidthPts) > DimTolerancePts || abs(heightPts-dim.HeightPts) > DimTolerancePts {
		return validate.Finding{
			Severity: validate.SeverityError,
			EntityID: page.PageID,
			Message: fmt.Sprintf("declared page size %.2fx%.2fpt differs from measured %.2fx%.2fpt",
				widthPts, heightPts, dim.WidthPts, dim.HeightPts),
		}, false
	}
	return validate.Finding{}, true
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
