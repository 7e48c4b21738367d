package lang

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-yaml"
)

// Encoding selects how programs and values are written.
type Encoding int

const (
	EncodingNative Encoding = iota // native
	EncodingJSON                   // json
	EncodingYAML                   // yaml
)

func (e Encoding) String() string {
	switch e {
	case EncodingNative:
		return "native"
	case EncodingJSON:
		return "json"
	case EncodingYAML:
		return "yaml"
	default:
		return "unknown"
	}
}

// Encodings lists the names accepted by ParseEncoding.
func Encodings() []string { return []string{"native", "json", "yaml"} }

// ParseEncoding parses an encoding name, case-insensitively.
func ParseEncoding(s string) (Encoding, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "native", "":
		return EncodingNative, true
	case "json":
		return EncodingJSON, true
	case "yaml", "yml":
		return EncodingYAML, true
	default:
		return EncodingNative, false
	}
}

// Format writes the program as canonical source text, one statement per
// line. Every compound expression is parenthesized.
func (p *Program) Format(_ context.Context, w io.Writer) error {
	for _, stmt := range p.Statements {
		if _, err := fmt.Fprintln(w, stmt.String()); err != nil {
			return err
		}
	}

	return nil
}

// FormatJSON writes the program's syntax tree as JSON to the writer.
func (p *Program) FormatJSON(_ context.Context, w io.Writer, indent int) error {
	return writeJSON(w, p, indent)
}

// FormatYAML writes the program's syntax tree as YAML to the writer.
func (p *Program) FormatYAML(ctx context.Context, w io.Writer, indent int) error {
	return writeYAML(ctx, w, p.ToNative(), indent)
}

// WriteValue writes v to w in the given encoding followed by a newline.
// The native encoding writes strings without quotes at the top level.
func WriteValue(
	ctx context.Context,
	w io.Writer,
	v Value,
	enc Encoding,
	indent int,
) error {
	if v == nil {
		v = None{}
	}

	switch enc {
	case EncodingJSON:
		return writeJSON(w, v, indent)

	case EncodingYAML:
		return writeYAML(ctx, w, ToNative(v), indent)

	default:
		_, err := fmt.Fprintln(w, v.String())

		return err
	}
}

func writeJSON(w io.Writer, v any, indent int) error {
	var (
		jsonData []byte
		err      error
	)

	if indent > 0 {
		jsonData, err = json.MarshalIndent(v, "", strings.Repeat(" ", indent))
	} else {
		jsonData, err = json.Marshal(v)
	}

	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(jsonData))

	return err
}

func writeYAML(ctx context.Context, w io.Writer, v any, indent int) error {
	var opts []yaml.EncodeOption
	if indent > 0 {
		opts = append(opts, yaml.Indent(indent))
	} else {
		opts = append(opts, yaml.Flow(true))
	}

	yamlData, err := yaml.MarshalContext(ctx, v, opts...)
	if err != nil {
		return err
	}

	_, err = fmt.Fprint(w, string(yamlData))

	return err
}
