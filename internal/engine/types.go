package engine

import (
	"github.com/formlab/annotate/internal/bind"
	"github.com/formlab/annotate/internal/pdfinfo"
	"github.com/formlab/annotate/internal/validate"
)

// Tool request/response types shared by the CLI and the MCP server.

// FormValidateFileRequest asks for the structural pass over one
// annotation document file.
type FormValidateFileRequest struct {
	Path string `json:"path"`
}

// FormValidateFileResult reports document identity plus every finding.
// Construction problems surface as error findings here rather than a
// hard failure, so tooling can show authors everything at once.
type FormValidateFileResult struct {
	Path     string             `json:"path"`
	FormID   string             `json:"form_id,omitempty"`
	FormName string             `json:"form_name,omitempty"`
	FormYear int                `json:"form_year,omitempty"`
	Version  string             `json:"version,omitempty"`
	Pages    int                `json:"pages"`
	Fields   int                `json:"fields"`
	Valid    bool               `json:"valid"`
	Findings []validate.Finding `json:"findings"`
}

// FormBindFileRequest asks for a full bind of a document file against a
// data tree file.
type FormBindFileRequest struct {
	DocumentPath string `json:"document_path"`
	DataPath     string `json:"data_path"`
}

// FormBindFileResult carries the resolved instances and the validation
// report, plus per-status counts for quick summaries.
type FormBindFileResult struct {
	DocumentPath string                       `json:"document_path"`
	DataPath     string                       `json:"data_path"`
	Instances    []bind.ResolvedFieldInstance `json:"instances"`
	Report       *validate.Report             `json:"report"`
	StatusCounts map[bind.Status]int          `json:"status_counts"`
}

// FormInspectPDFRequest asks for the geometry cross-check of a document
// file against the source PDF it annotates.
type FormInspectPDFRequest struct {
	DocumentPath string `json:"document_path"`
	PDFPath      string `json:"pdf_path"`
}

// FormInspectPDFResult reports the measured PDF geometry and any
// disagreements with the annotation's declared pages.
type FormInspectPDFResult struct {
	DocumentPath string             `json:"document_path"`
	PDFPath      string             `json:"pdf_path"`
	PDFPages     int                `json:"pdf_pages"`
	PageDims     []pdfinfo.PageDim  `json:"page_dims"`
	Findings     []validate.Finding `json:"findings"`
	Matches      bool               `json:"matches"`
}

// ServiceInfoResult describes the engine for the MCP server-info tool.
type ServiceInfoResult struct {
	Name        string   `json:"name"`
	Version     string   `json:"version"`
	PDFBackend  string   `json:"pdf_backend"`
	MaxFileSize int64    `json:"max_file_size"`
	Tools       []string `json:"tools"`
}
