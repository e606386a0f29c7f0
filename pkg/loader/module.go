package loader

import (
	"fmt"
	"strings"

	"veridian-hq/covenant/pkg/contract"
	"veridian-hq/covenant/pkg/dsl/ast"
	"veridian-hq/covenant/pkg/dsl/parser"
	"veridian-hq/covenant/pkg/dsl/value"
)

// reserved binding names that describe a module rather than belong to its
// symbol surface.
var reservedBindings = map[string]bool{
	"imports":    true,
	"exports":    true,
	"test_suite": true,
	"source":     true,
}

// ExportEntry is one row of a module's exports promise map: a public name
// bound either to an internal binding or to an imported symbol.
type ExportEntry struct {
	Public   string
	Internal string
	// ReExport marks an `imports.alias.symbol` binding. Its hash covers the
	// imports statement line, not the aliased definition.
	ReExport bool
	Alias    string
	Symbol   string
}

// Module is a parsed DSL source file plus the declarations the filter needs:
// the import map, the exports promise map and the test suite binding.
type Module struct {
	Path    string
	Source  string
	Lines   []string
	Program *ast.Program

	// Imports maps alias to module path, in declaration order.
	Imports     map[string]string
	ImportOrder []string
	// importsLine is the source line of the imports binding, hashed for
	// re-exported aliases.
	importsLine int

	Exports    []ExportEntry
	HasExports bool

	// TestSuite is the test_suite binding, nil when the module declares no
	// suite.
	TestSuite *ast.Binding

	// Bindings holds the evaluated top-level scope, filled by the loader
	// after import resolution.
	Bindings *value.Dict
}

// ParseModule parses source into a Module and extracts its declarations.
func ParseModule(path, source string) (*Module, error) {
	prog, err := parser.Parse(path, source)
	if err != nil {
		return nil, err
	}

	m := &Module{
		Path:    path,
		Source:  source,
		Lines:   strings.Split(source, "\n"),
		Program: prog,
		Imports: map[string]string{},
	}

	if b := prog.Binding("imports"); b != nil {
		m.importsLine = b.Loc.Line
		if err := m.extractImports(b); err != nil {
			return nil, err
		}
	}
	if b := prog.Binding("exports"); b != nil {
		m.HasExports = true
		if err := m.extractExports(b); err != nil {
			return nil, err
		}
	}
	m.TestSuite = prog.Binding("test_suite")

	return m, nil
}

func (m *Module) extractImports(b *ast.Binding) error {
	dict, ok := b.Value.(*ast.DictLit)
	if !ok {
		return fmt.Errorf("%s: imports must be a dict literal", m.Path)
	}
	for _, entry := range dict.Entries {
		path, err := importPath(entry.Value)
		if err != nil {
			return fmt.Errorf("%s: import %q: %w", m.Path, entry.Key, err)
		}
		if _, dup := m.Imports[entry.Key]; !dup {
			m.ImportOrder = append(m.ImportOrder, entry.Key)
		}
		m.Imports[entry.Key] = path
	}
	return nil
}

// importPath accepts a plain module path string or an explicit
// resource('path') loader call.
func importPath(expr ast.Expr) (string, error) {
	switch e := expr.(type) {
	case *ast.StringLit:
		return e.Value, nil
	case *ast.Call:
		callee, ok := e.Callee.(*ast.Ident)
		if !ok || callee.Name != "resource" {
			return "", fmt.Errorf("import value must be a path string or resource(...) call")
		}
		if len(e.Args) != 1 {
			return "", fmt.Errorf("resource takes one path argument")
		}
		path, ok := e.Args[0].(*ast.StringLit)
		if !ok {
			return "", fmt.Errorf("resource path must be a string literal")
		}
		return path.Value, nil
	}
	return "", fmt.Errorf("import value must be a path string or resource(...) call")
}

func (m *Module) extractExports(b *ast.Binding) error {
	dict, ok := b.Value.(*ast.DictLit)
	if !ok {
		return fmt.Errorf("%s: exports must be a dict literal", m.Path)
	}
	for _, entry := range dict.Entries {
		ex := ExportEntry{Public: entry.Key}
		switch v := entry.Value.(type) {
		case *ast.StringLit:
			ex.Internal = v.Value
		case *ast.DotAccess:
			alias, symbol, ok := reExportTarget(v)
			if !ok {
				return fmt.Errorf("%s: export %q must name an internal symbol or imports.alias.symbol", m.Path, entry.Key)
			}
			ex.ReExport = true
			ex.Alias = alias
			ex.Symbol = symbol
		default:
			return fmt.Errorf("%s: export %q must name an internal symbol or imports.alias.symbol", m.Path, entry.Key)
		}
		m.Exports = append(m.Exports, ex)
	}
	return nil
}

// reExportTarget matches the `imports.alias.symbol` shape.
func reExportTarget(d *ast.DotAccess) (alias, symbol string, ok bool) {
	inner, isDot := d.Base.(*ast.DotAccess)
	if !isDot {
		return "", "", false
	}
	base, isIdent := inner.Base.(*ast.Ident)
	if !isIdent || base.Name != "imports" {
		return "", "", false
	}
	return inner.Segment, d.Segment, true
}

// Candidates returns the symbols subject to contract validation: the
// exports map when declared, otherwise every top-level binding that is not
// a module declaration.
func (m *Module) Candidates() []ExportEntry {
	if m.HasExports {
		return m.Exports
	}
	var out []ExportEntry
	seen := map[string]bool{}
	for _, stmt := range m.Program.Statements {
		b, ok := stmt.(*ast.Binding)
		if !ok || reservedBindings[b.Name] || seen[b.Name] {
			continue
		}
		seen[b.Name] = true
		out = append(out, ExportEntry{Public: b.Name, Internal: b.Name})
	}
	return out
}

// SymbolHash computes a candidate's source hash: the defining span of the
// internal binding, or the imports statement line for a re-exported alias.
func (m *Module) SymbolHash(e ExportEntry) (string, error) {
	if e.ReExport {
		if m.importsLine == 0 {
			return "", fmt.Errorf("%s: re-export %q without an imports declaration", m.Path, e.Public)
		}
		return contract.HashLines(m.Lines, m.importsLine, m.importsLine), nil
	}
	b := m.Program.Binding(e.Internal)
	if b == nil {
		return "", fmt.Errorf("%s: exported symbol %q is not bound", m.Path, e.Internal)
	}
	return contract.HashLines(m.Lines, b.Loc.Line, b.EndLine), nil
}

// TestHash hashes the test suite's defining span, so edits to the tests
// invalidate trust alongside edits to the code. Empty when no suite exists.
func (m *Module) TestHash() string {
	if m.TestSuite == nil {
		return ""
	}
	return contract.HashLines(m.Lines, m.TestSuite.Loc.Line, m.TestSuite.EndLine)
}
