package pdfinfo

import (
	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// pdfcpuInspector answers geometry queries through pdfcpu.
type pdfcpuInspector struct{}

func (i *pdfcpuInspector) Backend() BackendType { return BackendPDFCPU }

func (i *pdfcpuInspector) PageCount(path string) (int, error) {
	count, err := api.PageCountFile(path)
	if err != nil {
		return 0, &InspectorError{Backend: BackendPDFCPU, Op: "page count", Err: err}
	}
	return count, nil
}

func (i *pdfcpuInspector) PageDims(path string) ([]PageDim, error) {
	dims, err := api.PageDimsFile(path)
	if err != nil {
		return nil, &InspectorError{Backend: BackendPDFCPU, Op: "page dims", Err: err}
	}

	out := make([]PageDim, len(dims))
	for n, d := range dims {
		out[n] = PageDim{WidthPts: d.Width, HeightPts: d.Height}
	}
	return out, nil
}
