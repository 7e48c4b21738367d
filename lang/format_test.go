package lang

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestWriteValue(t *testing.T) {
	obj := NewObject(
		Entry{Key: "name", Value: String("fns")},
		Entry{Key: "n", Value: Number(1.5)},
		Entry{Key: "ok", Value: Boolean(true)},
		Entry{Key: "nil", Value: None{}},
	)

	tests := []struct {
		name string
		v    Value
		enc  Encoding
		want string
	}{
		{"native string", String("plain"), EncodingNative, "plain\n"},
		{"native number", Number(7), EncodingNative, "7\n"},
		{"native object", obj, EncodingNative, `{ name: "fns", n: 1.5, ok: true, nil: none }` + "\n"},
		{"json string", String("q"), EncodingJSON, `"q"` + "\n"},
		{"json none", None{}, EncodingJSON, "null\n"},
		{"json object", obj, EncodingJSON, `{"name":"fns","n":1.5,"ok":true,"nil":null}` + "\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := WriteValue(t.Context(), &buf, tt.v, tt.enc, 0); err != nil {
				t.Fatal(err)
			}

			if buf.String() != tt.want {
				t.Errorf("WriteValue() = %q, want %q", buf.String(), tt.want)
			}
		})
	}
}

func TestWriteValueYAMLKeepsOrder(t *testing.T) {
	obj := NewObject(
		Entry{Key: "zeta", Value: String("last")},
		Entry{Key: "alpha", Value: NewObject(Entry{Key: "inner", Value: Boolean(false)})},
	)

	var buf bytes.Buffer
	if err := WriteValue(t.Context(), &buf, obj, EncodingYAML, 2); err != nil {
		t.Fatal(err)
	}

	out := buf.String()

	z, a := strings.Index(out, "zeta:"), strings.Index(out, "alpha:")
	if z < 0 || a < 0 || z > a {
		t.Errorf("YAML keys out of order:\n%s", out)
	}

	if !strings.Contains(out, "inner: false") {
		t.Errorf("YAML missing nested entry:\n%s", out)
	}
}

func TestProgramFormat(t *testing.T) {
	prog, err := parseNoCache(t, "let a = 1+2*3\n  a=a-1 // done")
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := prog.Format(t.Context(), &buf); err != nil {
		t.Fatal(err)
	}

	want := "let a = (1 + (2 * 3))\n(a = (a - 1))\n"
	if buf.String() != want {
		t.Errorf("Format() = %q, want %q", buf.String(), want)
	}
}

func TestProgramFormatJSON(t *testing.T) {
	prog, err := parseNoCache(t, "x.y + 1")
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := prog.FormatJSON(t.Context(), &buf, 2); err != nil {
		t.Fatal(err)
	}

	var tree []map[string]any
	if err := json.Unmarshal(buf.Bytes(), &tree); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
	}

	expr, _ := tree[0]["expression"].(map[string]any)
	if expr["type"] != "Binary" || expr["operator"] != "+" {
		t.Errorf("expression = %v", expr)
	}

	left, _ := expr["left"].(map[string]any)
	if left["type"] != "Member" || left["property"] != "y" {
		t.Errorf("left = %v", left)
	}
}

func TestProgramFormatYAML(t *testing.T) {
	prog, err := parseNoCache(t, "const k = none")
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := prog.FormatYAML(t.Context(), &buf, 2); err != nil {
		t.Fatal(err)
	}

	for _, want := range []string{"type: Const", "name: k", "type: None"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("YAML missing %q:\n%s", want, buf.String())
		}
	}
}

func TestParseEncoding(t *testing.T) {
	tests := map[string]Encoding{
		"":       EncodingNative,
		"native": EncodingNative,
		"JSON":   EncodingJSON,
		" yml ":  EncodingYAML,
		"yaml":   EncodingYAML,
	}

	for s, want := range tests {
		got, ok := ParseEncoding(s)
		if !ok || got != want {
			t.Errorf("ParseEncoding(%q) = %v, %v, want %v", s, got, ok, want)
		}
	}

	if _, ok := ParseEncoding("toml"); ok {
		t.Error("ParseEncoding(toml) succeeded")
	}
}
