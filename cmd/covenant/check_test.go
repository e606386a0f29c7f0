package main

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFixture(t *testing.T, name, source string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(source), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestCheckModuleFileValid(t *testing.T) {
	source := `imports : { "util": 'lib/util.dsl'; };
exports : {
	"double": 'double_impl';
	"parse": imports.util.parse;
};
double_impl : (int:n), { r : n * 2; }, (r);
test_suite : [ { "target": 'double_impl'; "input_args": (2,); "expected_output": 4; } ];
`
	path := writeFixture(t, "validators.dsl", source)

	result := checkModuleFile(path)
	if !result.Valid {
		t.Fatalf("result = %+v, want valid", result)
	}
	if len(result.Imports) != 1 || result.Imports[0] != "util=lib/util.dsl" {
		t.Errorf("Imports = %v", result.Imports)
	}
	if result.Exports != 2 || result.ReExports != 1 {
		t.Errorf("Exports = %d, ReExports = %d", result.Exports, result.ReExports)
	}
	if !result.HasSuite {
		t.Error("HasSuite should be set")
	}
}

func TestCheckModuleFileSyntaxError(t *testing.T) {
	path := writeFixture(t, "broken.dsl", "x : 1 +\ny : 2;\n")

	result := checkModuleFile(path)
	if result.Valid {
		t.Fatalf("result = %+v, want invalid", result)
	}
	if result.Error == "" {
		t.Error("parse failures should carry a message")
	}
	if result.Line == 0 {
		t.Error("parse failures should carry a position")
	}
}

func TestCheckModuleFileMissing(t *testing.T) {
	result := checkModuleFile(filepath.Join(t.TempDir(), "absent.dsl"))
	if result.Valid || result.Error == "" {
		t.Errorf("result = %+v, want unreadable-file error", result)
	}
}
