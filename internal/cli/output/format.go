// Package output renders command results for adopsctl as a table, JSON or YAML.
package output

import (
	"fmt"
	"io"
	"strings"
)

// Format is an output encoding.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// ParseFormat accepts table, json, yaml or yml in any case. Empty means table.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "table":
		return FormatTable, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("invalid output format %q (valid: table, json, yaml)", s)
	}
}

func (f Format) String() string {
	return string(f)
}

// Printer writes results in one format.
type Printer struct {
	out    io.Writer
	format Format
}

func NewPrinter(out io.Writer, format Format) *Printer {
	return &Printer{out: out, format: format}
}

func (p *Printer) Format() Format {
	return p.format
}

// List prints a listing. In table format an empty listing prints emptyMsg
// instead of a header with no rows; the structured formats always encode
// data so scripts see an empty array.
func (p *Printer) List(data any, table TableRenderer, emptyMsg string) error {
	switch p.format {
	case FormatJSON:
		return PrintJSON(p.out, data)
	case FormatYAML:
		return PrintYAML(p.out, data)
	case FormatTable:
		if len(table.Rows()) == 0 {
			_, err := fmt.Fprintln(p.out, emptyMsg)
			return err
		}
		return PrintTable(p.out, table)
	default:
		return fmt.Errorf("unknown format: %s", p.format)
	}
}

// Object prints a single object; table format renders fields as key/value pairs.
func (p *Printer) Object(data any, fields [][2]string) error {
	switch p.format {
	case FormatJSON:
		return PrintJSON(p.out, data)
	case FormatYAML:
		return PrintYAML(p.out, data)
	case FormatTable:
		return PrintFields(p.out, fields)
	default:
		return fmt.Errorf("unknown format: %s", p.format)
	}
}

// Result is the encoded form of a mutating operation.
type Result struct {
	Success bool   `json:"success" yaml:"success"`
	Message string `json:"message" yaml:"message"`
	DN      string `json:"dn,omitempty" yaml:"dn,omitempty"`
}

// Result prints the outcome of a mutation. Table format prints the message alone.
func (p *Printer) Result(r Result) error {
	switch p.format {
	case FormatJSON:
		return PrintJSON(p.out, r)
	case FormatYAML:
		return PrintYAML(p.out, r)
	case FormatTable:
		_, err := fmt.Fprintln(p.out, r.Message)
		return err
	default:
		return fmt.Errorf("unknown format: %s", p.format)
	}
}
