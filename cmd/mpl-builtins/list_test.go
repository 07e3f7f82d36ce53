package main

import (
	"strings"
	"testing"

	"mercator-hq/mpl-builtins/pkg/mpl/builtins"
)

func TestBuiltinTable(t *testing.T) {
	registry := builtins.NewRegistry(builtins.FamilyHex)

	table := builtinTable(registry, "")
	var names []string
	for _, row := range table.Rows {
		names = append(names, row[0])
	}
	got := strings.Join(names, ",")
	want := "hex.decode,hex.encode,json.is_valid,json.marshal,json.unmarshal"
	if got != want {
		t.Errorf("names = %s, want %s", got, want)
	}

	table = builtinTable(registry, builtins.FamilyHex)
	if len(table.Rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(table.Rows))
	}
	if table.Rows[0][1] != "hex" || table.Rows[0][2] != "1" {
		t.Errorf("row = %v", table.Rows[0])
	}
}

func TestListCommand(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		contains []string
		excludes []string
		wantErr  bool
	}{
		{
			name:     "text",
			args:     []string{"list"},
			contains: []string{"name", "base64url.encode_no_pad", "json.match_schema"},
		},
		{
			name:     "family csv",
			args:     []string{"list", "--family", "jsonschema", "--format", "csv"},
			contains: []string{"name,family,arity\n", "json.match_schema,jsonschema,2\n"},
			excludes: []string{"hex.encode"},
		},
		{
			name:     "json",
			args:     []string{"list", "--family", "urlquery", "--format", "json"},
			contains: []string{`"name":"urlquery.decode_object"`},
		},
		{
			name:    "unknown family",
			args:    []string{"list", "--family", "xml"},
			wantErr: true,
		},
		{
			name:    "bad format",
			args:    []string{"list", "--format", "toml"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := executeCommand(t, nil, tt.args...)
			if (err != nil) != tt.wantErr {
				t.Fatalf("list error = %v, wantErr %v", err, tt.wantErr)
			}
			for _, s := range tt.contains {
				if !strings.Contains(out, s) {
					t.Errorf("output missing %q:\n%s", s, out)
				}
			}
			for _, s := range tt.excludes {
				if strings.Contains(out, s) {
					t.Errorf("output contains %q:\n%s", s, out)
				}
			}
		})
	}
}
