// Package engine is the file-facing service layer over the annotation
// core: it loads documents and data trees from disk, runs validation
// and binding, and shapes results for the CLI and the MCP server. The
// core packages underneath never touch the filesystem.
package engine

import (
	"errors"
	"fmt"
	"os"

	"github.com/formlab/annotate/internal/bind"
	"github.com/formlab/annotate/internal/document"
	"github.com/formlab/annotate/internal/pdfinfo"
	"github.com/formlab/annotate/internal/validate"
)

// Service executes annotation operations against files.
type Service struct {
	maxFileSize int64
	binder      *bind.Binder
	inspector   pdfinfo.Inspector
	name        string
	version     string
}

// Options configures a Service.
type Options struct {
	// MaxFileSize caps how large an input file may be, in bytes.
	MaxFileSize int64
	// Workers is passed through to the binder.
	Workers int
	// PDFBackend selects the inspector for source-PDF cross-checks.
	PDFBackend pdfinfo.BackendType
	// Name and Version identify the service in info responses.
	Name    string
	Version string
}

// NewService creates the service with the given options.
func NewService(opts Options) (*Service, error) {
	if opts.MaxFileSize <= 0 {
		return nil, errors.New("max file size must be positive")
	}
	backend := opts.PDFBackend
	if backend == "" {
		backend = pdfinfo.BackendAuto
	}
	inspector, err := pdfinfo.NewInspector(backend)
	if err != nil {
		return nil, err
	}

	return &Service{
		maxFileSize: opts.MaxFileSize,
		binder:      bind.NewBinderWithConfig(bind.Config{Workers: opts.Workers}),
		inspector:   inspector,
		name:        opts.Name,
		version:     opts.Version,
	}, nil
}

// FormValidateFile decodes, builds and structurally validates one
// annotation document. Construction problems come back as error
// findings with Valid=false instead of an error return: a malformed
// document is a diagnostic outcome, not a service failure.
func (s *Service) FormValidateFile(req FormValidateFileRequest) (*FormValidateFileResult, error) {
	form, err := s.loadForm(req.Path)
	if err != nil {
		return nil, err
	}

	result := &FormValidateFileResult{
		Path:     req.Path,
		FormID:   form.FormID,
		FormName: form.FormName,
		FormYear: form.FormYear,
		Version:  form.Version,
		Pages:    len(form.Pages),
	}

	doc, err := document.Build(form)
	if err != nil {
		var serr *document.StructuralError
		if !errors.As(err, &serr) {
			return nil, err
		}
		for _, p := range serr.Problems {
			result.Findings = append(result.Findings, validate.Finding{
				Severity: validate.SeverityError,
				EntityID: p.EntityID,
				Message:  p.Message,
			})
		}
		return result, nil
	}

	result.Fields = doc.FieldCount()
	result.Findings = validate.Structural(doc)
	result.Valid = countErrors(result.Findings) == 0
	return result, nil
}

// FormBindFile binds a document file against a data tree file and
// returns the resolved instances with the full report.
func (s *Service) FormBindFile(req FormBindFileRequest) (*FormBindFileResult, error) {
	doc, err := s.loadDocument(req.DocumentPath)
	if err != nil {
		return nil, err
	}

	data, err := s.loadDataTree(req.DataPath)
	if err != nil {
		return nil, err
	}

	instances, report := s.binder.Bind(doc, data)

	counts := make(map[bind.Status]int, 4)
	for i := range instances {
		counts[instances[i].Status]++
	}

	return &FormBindFileResult{
		DocumentPath: req.DocumentPath,
		DataPath:     req.DataPath,
		Instances:    instances,
		Report:       report,
		StatusCounts: counts,
	}, nil
}

// FormInspectPDF cross-checks a document file's declared page geometry
// against the source PDF.
func (s *Service) FormInspectPDF(req FormInspectPDFRequest) (*FormInspectPDFResult, error) {
	doc, err := s.loadDocument(req.DocumentPath)
	if err != nil {
		return nil, err
	}

	if err := s.validateFile(req.PDFPath); err != nil {
		return nil, err
	}
	dims, err := s.inspector.PageDims(req.PDFPath)
	if err != nil {
		return nil, err
	}
	findings, err := pdfinfo.CrossCheck(doc, req.PDFPath, s.inspector)
	if err != nil {
		return nil, err
	}

	return &FormInspectPDFResult{
		DocumentPath: req.DocumentPath,
		PDFPath:      req.PDFPath,
		PDFPages:     len(dims),
		PageDims:     dims,
		Findings:     findings,
		Matches:      len(findings) == 0,
	}, nil
}

// Info describes the service and its tools.
func (s *Service) Info() *ServiceInfoResult {
	return &ServiceInfoResult{
		Name:        s.name,
		Version:     s.version,
		PDFBackend:  string(s.inspector.Backend()),
		MaxFileSize: s.maxFileSize,
		Tools: []string{
			"form_validate_file",
			"form_bind_file",
			"form_inspect_pdf",
			"form_server_info",
		},
	}
}

func (s *Service) loadForm(path string) (*document.Form, error) {
	if err := s.validateFile(path); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open annotation document: %w", err)
	}
	defer f.Close()
	return document.DecodeForm(f)
}

func (s *Service) loadDocument(path string) (*document.Document, error) {
	form, err := s.loadForm(path)
	if err != nil {
		return nil, err
	}
	return document.Build(form)
}

func (s *Service) loadDataTree(path string) (any, error) {
	if err := s.validateFile(path); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open data tree: %w", err)
	}
	defer f.Close()
	return document.DecodeDataTree(f)
}

// validateFile rejects empty paths, unreadable files, and files larger
// than the configured limit.
func (s *Service) validateFile(path string) error {
	if path == "" {
		return errors.New("path cannot be empty")
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("cannot access %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	if info.Size() > s.maxFileSize {
		return fmt.Errorf("file %s is %d bytes, exceeding the %d byte limit", path, info.Size(), s.maxFileSize)
	}
	return nil
}

func countErrors(findings []validate.Finding) int {
	n := 0
	for _, f := range findings {
		if f.Severity == validate.SeverityError {
			n++
		}
	}
	return n
}
