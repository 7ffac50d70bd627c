// Package pdfinfo reads page geometry from source PDF files so an
// annotation document can be checked against the form it annotates.
// Two backends are wrapped behind one interface: pdfcpu for robust
// parsing, ledongthuc/pdf as a lightweight fallback.
package pdfinfo

import "fmt"

// BackendType selects the PDF library answering geometry queries.
type BackendType string

const (
	BackendPDFCPU     BackendType = "pdfcpu"
	BackendLedongthuc BackendType = "ledongthuc"
	BackendAuto       BackendType = "auto"
)

// PageDim is one page's physical size in PDF points (1/72 inch).
type PageDim struct {
	WidthPts  float64 `json:"width_pts"`
	HeightPts float64 `json:"height_pts"`
}

// Inspector answers geometry queries about a PDF file.
type Inspector interface {
	// PageCount returns the number of pages in the file.
	PageCount(path string) (int, error)
	// PageDims returns every page's dimensions in points, in page order.
	PageDims(path string) ([]PageDim, error)
	// Backend identifies the wrapped library.
	Backend() BackendType
}

// InspectorError wraps a backend failure with the operation that hit it.
type InspectorError struct {
	Backend BackendType
	Op      string
	Err     error
}

func (e *InspectorError) Error() string {
	return fmt.Sprintf("pdfinfo %s: %s: %v", e.Backend, e.Op, e.Err)
}

func (e *InspectorError) Unwrap() error { return e.Err }

// NewInspector creates an inspector for the requested backend. Auto
// picks pdfcpu, which parses the wider range of files.
func NewInspector(backend BackendType) (Inspector, error) {
	switch backend {
	case BackendPDFCPU, BackendAuto:
		return &pdfcpuInspector{}, nil
	case BackendLedongthuc:
		return &ledongthucInspector{}, nil
	default:
		return nil, fmt.Errorf("unknown pdf backend: %q", backend)
	}
}
