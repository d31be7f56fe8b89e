package export

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/a-h/templ"

	"github.com/I2Cprogramacion/SEI-sub000/internal/store"
)

// bom lets spreadsheet software detect UTF-8.
const bom = "\uFEFF"

// Write renders res in its own format.
func Write(ctx context.Context, w io.Writer, res *Result) error {
	switch res.Format {
	case FormatExcel:
		return WriteWorkbook(ctx, w, res)
	case FormatPDF:
		return WriteStructured(w, res)
	default:
		return WriteCSV(w, res)
	}
}

// WriteCSV writes a BOM, a header row of catalog labels and one record per
// row. Values containing a comma, quote or line break are quoted.
func WriteCSV(w io.Writer, res *Result) error {
	if _, err := io.WriteString(w, bom); err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(res.Headers); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i := range res.Rows {
		if err := cw.Write(res.Cells(i)); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

const workbookHead = `<html xmlns:o="urn:schemas-microsoft-com:office:office" xmlns:x="urn:schemas-microsoft-com:office:excel">
<head>
<meta charset="UTF-8">
<!--[if gte mso 9]>
<xml>
<x:ExcelWorkbook>
<x:ExcelWorksheets>
<x:ExcelWorksheet>
<x:Name>Datos</x:Name>
</x:ExcelWorksheet>
</x:ExcelWorksheets>
</x:ExcelWorkbook>
</xml>
<![endif]-->
<style>
  table { border-collapse: collapse; }
  th { background-color: #1e40af; color: white; font-weight: bold; padding: 8px; border: 1px solid #ccc; }
  td { padding: 8px; border: 1px solid #ccc; }
  tr:nth-child(even) { background-color: #f3f4f6; }
</style>
</head>
<body>
<table>
`

const workbookTail = `</tbody>
</table>
</body>
</html>`

// Workbook returns the spreadsheet-compatible HTML table for res as a
// templ component. Every header and cell is escaped.
func Workbook(res *Result) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, bom+workbookHead+"<thead>\n<tr>"); err != nil {
			return err
		}
		for _, h := range res.Headers {
			if _, err := io.WriteString(w, "<th>"+templ.EscapeString(h)+"</th>"); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, "</tr>\n</thead>\n<tbody>\n"); err != nil {
			return err
		}

		for i := range res.Rows {
			if err := ctx.Err(); err != nil {
				return err
			}
			if _, err := io.WriteString(w, "<tr>"); err != nil {
				return err
			}
			for _, cell := range res.Cells(i) {
				if _, err := io.WriteString(w, "<td>"+templ.EscapeString(cell)+"</td>"); err != nil {
					return err
				}
			}
			if _, err := io.WriteString(w, "</tr>\n"); err != nil {
				return err
			}
		}

		_, err := io.WriteString(w, workbookTail)
		return err
	})
}

// WriteWorkbook renders the workbook component.
func WriteWorkbook(ctx context.Context, w io.Writer, res *Result) error {
	return Workbook(res).Render(ctx, w)
}

// Envelope is the structured payload for client-side rendering.
type Envelope struct {
	Success     bool           `json:"success"`
	Data        []store.Record `json:"data"`
	Headers     []string       `json:"headers"`
	Fields      []string       `json:"fields"`
	DataType    string         `json:"dataType"`
	GeneratedAt time.Time      `json:"generatedAt"`
}

// NewEnvelope wraps res.
func NewEnvelope(res *Result) Envelope {
	data := res.Rows
	if data == nil {
		data = []store.Record{}
	}
	return Envelope{
		Success:     true,
		Data:        data,
		Headers:     res.Headers,
		Fields:      res.Fields,
		DataType:    res.Dataset,
		GeneratedAt: res.GeneratedAt,
	}
}

// WriteStructured writes the JSON envelope for res.
func WriteStructured(w io.Writer, res *Result) error {
	return json.NewEncoder(w).Encode(NewEnvelope(res))
}
