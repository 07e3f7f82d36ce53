package cli

import (
	"bytes"
	"strings"
	"testing"
)

func sampleTable() *Table {
	return &Table{
		Headers: []string{"name", "family", "arity"},
		Rows: [][]string{
			{"base64.decode", "base64", "1"},
			{"json.match_schema", "jsonschema", "2"},
		},
	}
}

func TestParseOutputFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    OutputFormat
		wantErr bool
	}{
		{"", FormatText, false},
		{"text", FormatText, false},
		{"JSON", FormatJSON, false},
		{"yaml", FormatYAML, false},
		{"csv", FormatCSV, false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		got, err := ParseOutputFormat(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseOutputFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseOutputFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTextFormatter(t *testing.T) {
	f := &TextFormatter{}

	out, err := f.Format("test message")
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if string(out) != "test message\n" {
		t.Errorf("Format() = %q", out)
	}

	buf := &bytes.Buffer{}
	if err := f.FormatTo(buf, sampleTable()); err != nil {
		t.Fatalf("FormatTo() error = %v", err)
	}
	want := "name               family      arity\n" +
		"base64.decode      base64      1\n" +
		"json.match_schema  jsonschema  2\n"
	if buf.String() != want {
		t.Errorf("FormatTo() =\n%s\nwant\n%s", buf.String(), want)
	}
}

func TestJSONFormatter(t *testing.T) {
	out, err := (&JSONFormatter{}).Format(sampleTable())
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	want := `[{"arity":"1","family":"base64","name":"base64.decode"},{"arity":"2","family":"jsonschema","name":"json.match_schema"}]`
	if string(out) != want {
		t.Errorf("Format() = %s, want %s", out, want)
	}

	buf := &bytes.Buffer{}
	if err := (&JSONFormatter{Indent: true}).FormatTo(buf, map[string]int{"a": 1}); err != nil {
		t.Fatalf("FormatTo() error = %v", err)
	}
	if buf.String() != "{\n  \"a\": 1\n}\n" {
		t.Errorf("FormatTo() = %q", buf.String())
	}
}

func TestYAMLFormatter(t *testing.T) {
	buf := &bytes.Buffer{}
	if err := (&YAMLFormatter{}).FormatTo(buf, sampleTable()); err != nil {
		t.Fatalf("FormatTo() error = %v", err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "- arity: \"1\"\n") {
		t.Errorf("unexpected YAML:\n%s", out)
	}
	if !strings.Contains(out, "name: json.match_schema") {
		t.Errorf("unexpected YAML:\n%s", out)
	}
}

func TestCSVFormatter(t *testing.T) {
	out, err := (&CSVFormatter{}).Format(sampleTable())
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	want := "name,family,arity\nbase64.decode,base64,1\njson.match_schema,jsonschema,2\n"
	if string(out) != want {
		t.Errorf("Format() = %q, want %q", out, want)
	}

	if _, err := (&CSVFormatter{}).Format("not a table"); err == nil {
		t.Error("expected error for non-tabular data")
	}
}

func TestNewFormatter(t *testing.T) {
	tests := []struct {
		format OutputFormat
		want   string
	}{
		{FormatText, "*cli.TextFormatter"},
		{FormatJSON, "*cli.JSONFormatter"},
		{FormatYAML, "*cli.YAMLFormatter"},
		{FormatCSV, "*cli.CSVFormatter"},
		{"unknown", "*cli.TextFormatter"},
	}
	for _, tt := range tests {
		got := NewFormatter(tt.format)
		if typeName(got) != tt.want {
			t.Errorf("NewFormatter(%q) = %s, want %s", tt.format, typeName(got), tt.want)
		}
	}
}

func typeName(v interface{}) string {
	switch v.(type) {
	case *TextFormatter:
		return "*cli.TextFormatter"
	case *JSONFormatter:
		return "*cli.JSONFormatter"
	case *YAMLFormatter:
		return "*cli.YAMLFormatter"
	case *CSVFormatter:
		return "*cli.CSVFormatter"
	}
	return "unknown"
}
