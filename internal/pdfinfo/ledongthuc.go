package pdfinfo

import (
	"fmt"

	"github.com/ledongthuc/pdf"
)

// US Letter, the overwhelmingly common tax-form size, used when a page
// carries no resolvable MediaBox.
const (
	defaultWidthPts  = 612.0
	defaultHeightPts = 792.0
)

// ledongthucInspector answers geometry queries through ledongthuc/pdf.
// It is cheaper than pdfcpu but reads only the page MediaBox.
type ledongthucInspector struct{}

func (i *ledongthucInspector) Backend() BackendType { return BackendLedongthuc }

func (i *ledongthucInspector) PageCount(path string) (int, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return 0, &InspectorError{Backend: BackendLedongthuc, Op: "page count", Err: err}
	}
	defer f.Close()
	return r.NumPage(), nil
}

func (i *ledongthucInspector) PageDims(path string) ([]PageDim, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, &InspectorError{Backend: BackendLedongthuc, Op: "page dims", Err: err}
	}
	defer f.Close()

	out := make([]PageDim, 0, r.NumPage())
	for n := 1; n <= r.NumPage(); n++ {
		page := r.Page(n)
		if page.V.IsNull() {
			return nil, &InspectorError{
				Backend: BackendLedongthuc,
				Op:      "page dims",
				Err:     fmt.Errorf("page %d is not readable", n),
			}
		}
		out = append(out, mediaBoxDims(page))
	}
	return out, nil
}

// mediaBoxDims reads the page MediaBox [llx lly urx ury]. Pages that
// inherit their MediaBox from the page tree come back null here, in
// which case US Letter is assumed.
func mediaBoxDims(page pdf.Page) PageDim {
	box := page.V.Key("MediaBox")
	if box.IsNull() || box.Len() != 4 {
		return PageDim{WidthPts: defaultWidthPts, HeightPts: defaultHeightPts}
	}

	llx := box.Index(0).Float64()
	lly := box.Index(1).Float64()
	urx := box.Index(2).Float64()
	ury := box.Index(3).Float64()
	return PageDim{WidthPts: urx - llx, HeightPts: ury - lly}
}
