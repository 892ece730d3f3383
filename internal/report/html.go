package report

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"hosereport/internal/inspection"
)

//go:embed templates/page.gohtml
var templateFS embed.FS

var pageTemplate = template.Must(
	template.New("page.gohtml").
		Funcs(template.FuncMap{"cellClass": cellClass}).
		ParseFS(templateFS, "templates/page.gohtml"),
)

func cellClass(i int) string {
	if i < 0 || i >= len(columns) {
		return "text"
	}
	switch columns[i].Kind {
	case inspection.KindCode:
		return "code"
	case inspection.KindText:
		if columns[i].Key != RowNumberKey {
			return "text"
		}
	}
	return "value"
}

// RenderHTML renders layout to a self-contained HTML document whose
// #report-page element is exactly one page wide.
func RenderHTML(layout PageLayout) ([]byte, error) {
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, layout); err != nil {
		return nil, fmt.Errorf("render page %d: %w", layout.PageNumber, err)
	}
	return buf.Bytes(), nil
}
