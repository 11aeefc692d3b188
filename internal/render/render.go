// Package render writes checksum reports in the output format chosen on the
// command line.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"
	"text/tabwriter"

	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"
)

// Format represents an output format.
type Format string

const (
	FormatTable   Format = "table"
	FormatJSON    Format = "json"
	FormatYAML    Format = "yaml"
	FormatMsgpack Format = "msgpack"
)

// ParseFormat parses a format string, returning an error for invalid formats.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "table":
		return FormatTable, nil
	case "json":
		return FormatJSON, nil
	case "yaml":
		return FormatYAML, nil
	case "msgpack":
		return FormatMsgpack, nil
	default:
		return "", fmt.Errorf("invalid format: %q (must be table, json, yaml, or msgpack)", s)
	}
}

// Renderer handles output formatting.
type Renderer struct {
	format Format
	out    io.Writer
}

// NewRenderer creates a renderer writing to stdout.
func NewRenderer(format Format) *Renderer {
	return NewRendererWithWriter(format, os.Stdout)
}

// NewRendererWithWriter creates a renderer with a custom writer.
func NewRendererWithWriter(format Format, out io.Writer) *Renderer {
	return &Renderer{format: format, out: out}
}

// Format returns the configured format.
func (r *Renderer) Format() Format {
	return r.format
}

// Render outputs data in the configured format.
func (r *Renderer) Render(data any) error {
	switch r.format {
	case FormatJSON:
		return r.renderJSON(data)
	case FormatTable:
		return r.renderTable(data)
	case FormatYAML:
		return r.renderYAML(data)
	case FormatMsgpack:
		return msgpack.NewEncoder(r.out).Encode(data)
	default:
		return fmt.Errorf("unknown format: %s", r.format)
	}
}

func (r *Renderer) renderJSON(data any) error {
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

func (r *Renderer) renderYAML(data any) error {
	enc := yaml.NewEncoder(r.out)
	enc.SetIndent(2)
	if err := enc.Encode(data); err != nil {
		return err
	}
	return enc.Close()
}

func (r *Renderer) renderTable(data any) error {
	v := reflect.ValueOf(data)
	if v.Kind() == reflect.Slice {
		return r.renderSliceTable(v)
	}
	return r.renderStructTable(v)
}

func (r *Renderer) renderSliceTable(v reflect.Value) error {
	if v.Len() == 0 {
		fmt.Fprintln(r.out, "(no results)")
		return nil
	}

	w := tabwriter.NewWriter(r.out, 0, 0, 2, ' ', 0)
	headers := fieldNames(v.Index(0))
	fmt.Fprintln(w, strings.ToUpper(strings.Join(headers, "\t")))
	for i := 0; i < v.Len(); i++ {
		fmt.Fprintln(w, strings.Join(rowValues(v.Index(i)), "\t"))
	}
	return w.Flush()
}

func (r *Renderer) renderStructTable(v reflect.Value) error {
	w := tabwriter.NewWriter(r.out, 0, 0, 2, ' ', 0)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		fmt.Fprintf(w, "%v\n", v.Interface())
		return w.Flush()
	}

	names := fieldNames(v)
	for i, val := range rowValues(v) {
		fmt.Fprintf(w, "%s:\t%s\n", names[i], val)
	}
	return w.Flush()
}

func fieldNames(v reflect.Value) []string {
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil
	}
	t := v.Type()
	names := make([]string, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		names = append(names, fieldName(t.Field(i)))
	}
	return names
}

func rowValues(v reflect.Value) []string {
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return []string{formatValue(v)}
	}
	values := make([]string, 0, v.NumField())
	for i := 0; i < v.NumField(); i++ {
		values = append(values, formatValue(v.Field(i)))
	}
	return values
}

// fieldName prefers the json tag name.
func fieldName(f reflect.StructField) string {
	if tag := f.Tag.Get("json"); tag != "" {
		name, _, _ := strings.Cut(tag, ",")
		if name != "" && name != "-" {
			return name
		}
	}
	return strings.ToLower(f.Name)
}

func formatValue(v reflect.Value) string {
	if !v.IsValid() {
		return ""
	}
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return ""
		}
		v = v.Elem()
	}
	switch v.Kind() {
	case reflect.Slice, reflect.Array:
		return fmt.Sprintf("[%d items]", v.Len())
	case reflect.Struct:
		return "{...}"
	default:
		return fmt.Sprintf("%v", v.Interface())
	}
}

// IsTerminal reports whether f is a character device.
func IsTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
