package builtin

import (
	"github.com/kadirpekel/adkflow/internal/extension"
	"github.com/kadirpekel/adkflow/pkg/flowunit"
)

// entry pairs a constructor with the static palette metadata a discovered
// plugin would otherwise supply via its manifest.yaml.
type entry struct {
	id      string
	label   string
	menu    string
	icon    string
	factory func() flowunit.Unit
}

var builtins = []entry{
	{id: "doc_reader_xlsx", label: "Read Excel Workbook", menu: "Documents", icon: "file-spreadsheet", factory: NewXLSXReader},
	{id: "doc_reader_pdf", label: "Read PDF", menu: "Documents", icon: "file-text", factory: NewPDFReader},
	{id: "doc_reader_docx", label: "Read Word Document", menu: "Documents", icon: "file-type", factory: NewDocxReader},
	{id: "token_counter", label: "Count Tokens", menu: "Documents", icon: "hash", factory: NewTokenCounter},
	{id: UnitIDVectorSearch, label: "Vector Search", menu: "Retrieval", icon: "search", factory: NewVectorSearch},
}

// RegisterAll registers every built-in unit into reg under ScopeBuiltin, so
// they appear in the palette and are resolvable by "custom:<unit_id>" nodes
// without a plugin package on disk.
func RegisterAll(reg *extension.Registry) error {
	for _, b := range builtins {
		manifestEntry := extension.UnitEntry{
			UnitID:       b.id,
			Symbol:       b.id,
			UILabel:      b.label,
			MenuLocation: b.menu,
			Icon:         b.icon,
		}
		if err := reg.RegisterBuiltin(manifestEntry, b.factory()); err != nil {
			return err
		}
	}
	return nil
}
