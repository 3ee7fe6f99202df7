package contextagg

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
	"github.com/xuri/excelize/v2"
)

// readExcel flattens every sheet's rows into tab-separated lines, sheet
// names as section headers, grounded on xuri/excelize/v2's GetRows API.
func readExcel(path string) (string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return "", fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	var out strings.Builder
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			continue
		}
		fmt.Fprintf(&out, "## %s\n", sheet)
		for _, row := range rows {
			out.WriteString(strings.Join(row, "\t"))
			out.WriteByte('\n')
		}
	}
	return out.String(), nil
}

// readPDF extracts plain text page by page via ledongthuc/pdf.
func readPDF(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	var out strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		out.WriteString(text)
		out.WriteByte('\n')
	}
	return out.String(), nil
}

// readDocx extracts document body text via nguyenthenguyen/docx.
func readDocx(path string) (string, error) {
	r, err := docx.ReadDocxFile(path)
	if err != nil {
		return "", fmt.Errorf("open docx: %w", err)
	}
	defer r.Close()
	return r.Editable().GetContent(), nil
}

// ReadExcel, ReadPDF, and ReadDocx expose the per-format readers above for
// pkg/flowunit/builtin's standalone document-parser units, so a workflow can
// parse a single file without going through the full aggregator node.
func ReadExcel(path string) (string, error) { return readExcel(path) }
func ReadPDF(path string) (string, error)   { return readPDF(path) }
func ReadDocx(path string) (string, error)  { return readDocx(path) }
