// Package builtin provides the FlowUnits adkflow ships compiled in, rather
// than as a discovered plugin package (spec 10.5 / component 17): document
// parsing, token counting, and embedded vector search, each wrapping a
// domain dependency the rest of the module already carries.
package builtin

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/kadirpekel/adkflow/internal/contextagg"
	"github.com/kadirpekel/adkflow/pkg/flowunit"
)

// DocFormat distinguishes the three office formats the aggregator already
// knows how to parse.
type DocFormat string

const (
	FormatXLSX DocFormat = "xlsx"
	FormatPDF  DocFormat = "pdf"
	FormatDOCX DocFormat = "docx"
)

// docReaderUnit reads inputs["path"] with the reader for one fixed format,
// returning its extracted text. It exists alongside the context_aggregator
// custom node (which dispatches by extension automatically) for workflows
// that want a single-format node explicitly wired into the graph, e.g. to
// show a dedicated "Read PDF" node in the palette.
type docReaderUnit struct {
	format DocFormat
	read   func(path string) (string, error)
}

func newDocReaderUnit(format DocFormat, read func(path string) (string, error)) *docReaderUnit {
	return &docReaderUnit{format: format, read: read}
}

// NewXLSXReader reads a single .xlsx workbook via xuri/excelize/v2,
// flattening every sheet into tab-separated rows.
func NewXLSXReader() flowunit.Unit { return newDocReaderUnit(FormatXLSX, contextagg.ReadExcel) }

// NewPDFReader extracts plain text page-by-page from a .pdf via
// ledongthuc/pdf.
func NewPDFReader() flowunit.Unit { return newDocReaderUnit(FormatPDF, contextagg.ReadPDF) }

// NewDocxReader extracts body text from a .docx via
// nguyenthenguyen/docx.
func NewDocxReader() flowunit.Unit { return newDocReaderUnit(FormatDOCX, contextagg.ReadDocx) }

func (u *docReaderUnit) UnitID() string { return "doc_reader_" + string(u.format) }

func (u *docReaderUnit) ValidateConfig(config map[string]any) error {
	return nil
}

func (u *docReaderUnit) Run(ctx context.Context, inputs map[string]any, config map[string]any) (map[string]any, error) {
	path, _ := inputs["path"].(string)
	if path == "" {
		path, _ = config["path"].(string)
	}
	if path == "" {
		return nil, fmt.Errorf("%s: no path provided", u.UnitID())
	}
	if ext := strings.TrimPrefix(filepath.Ext(path), "."); ext != "" && !strings.EqualFold(ext, string(u.format)) {
		return nil, fmt.Errorf("%s: expected a .%s file, got %q", u.UnitID(), u.format, path)
	}

	text, err := u.read(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", u.UnitID(), err)
	}
	return map[string]any{
		"text":        text,
		"token_count": contextagg.TokenCount(text),
	}, nil
}

func (u *docReaderUnit) Descriptor() flowunit.Descriptor {
	return flowunit.Descriptor{
		Description: fmt.Sprintf("Reads a .%s file and returns its extracted plain text.", u.format),
		Inputs: []flowunit.Port{
			{Name: "path", Kind: flowunit.PortKindString, Required: true, Description: "Project-relative file path."},
		},
		Outputs: []flowunit.Port{
			{Name: "text", Kind: flowunit.PortKindString, Description: "Extracted plain text."},
			{Name: "token_count", Kind: flowunit.PortKindNumber, Description: "cl100k_base token count of the extracted text."},
		},
	}
}

var (
	_ flowunit.Unit            = (*docReaderUnit)(nil)
	_ flowunit.ConfigValidator = (*docReaderUnit)(nil)
	_ flowunit.Describable     = (*docReaderUnit)(nil)
)
