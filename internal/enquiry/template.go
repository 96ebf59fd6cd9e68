// internal/enquiry/template.go
package enquiry

import (
	"fmt"
	"strings"
	"text/template"
)

// Each module that speaks has exactly one localized sentence template. The
// placeholder names are bound to result columns by the module's declared row
// shape, so a mismatch is a programming error, not a data error: templates
// are parsed with missingkey=error and any binding failure surfaces as
// TEMPLATE_BINDING_ERROR.

func mustTemplate(name, text string) *template.Template {
	return template.Must(
		template.New(name).Option("missingkey=error").Parse(text),
	)
}

// rowShape fixes the positional meaning of one module's result columns and
// which positions are duration-like.
type rowShape struct {
	columns   []string
	durations []int
}

// bind pairs a scanned row with the shape's column names.
func (s rowShape) bind(row []interface{}) (map[string]interface{}, error) {
	if len(row) != len(s.columns) {
		return nil, fmt.Errorf("row has %d columns, shape declares %d", len(row), len(s.columns))
	}
	data := make(map[string]interface{}, len(row))
	for i, name := range s.columns {
		data[name] = row[i]
	}
	return data, nil
}

// renderRow produces one sentence for one normalized row.
func renderRow(t *template.Template, shape rowShape, row []interface{}) (string, error) {
	data, err := shape.bind(row)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	if err := t.Execute(&b, data); err != nil {
		return "", err
	}
	return b.String(), nil
}
