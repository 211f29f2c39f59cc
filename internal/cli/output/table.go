package output

import (
	"io"

	"github.com/olekukonko/tablewriter"
)

// TableRenderer is implemented by listings that can be shown as a table.
type TableRenderer interface {
	Headers() []string
	Rows() [][]string
}

// Table is a TableRenderer built row by row.
type Table struct {
	headers []string
	rows    [][]string
}

func NewTable(headers ...string) *Table {
	return &Table{headers: headers, rows: make([][]string, 0)}
}

func (t *Table) AddRow(cells ...string) {
	t.rows = append(t.rows, cells)
}

func (t *Table) Headers() []string { return t.headers }

func (t *Table) Rows() [][]string { return t.rows }

// newWriter returns a borderless, left-aligned writer.
func newWriter(w io.Writer, columnSeparator string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator(columnSeparator)
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("  ")
	table.SetNoWhiteSpace(true)
	return table
}

// PrintTable writes data with upper-cased headers.
func PrintTable(w io.Writer, data TableRenderer) error {
	table := newWriter(w, "")
	table.SetAutoFormatHeaders(true)
	table.SetHeader(data.Headers())
	table.AppendBulk(data.Rows())
	table.Render()
	return nil
}

// PrintFields writes key/value pairs, one per line.
func PrintFields(w io.Writer, fields [][2]string) error {
	table := newWriter(w, ":")
	table.SetAutoFormatHeaders(false)
	for _, field := range fields {
		table.Append([]string{field[0], field[1]})
	}
	table.Render()
	return nil
}
