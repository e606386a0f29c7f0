package loader

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"veridian-hq/covenant/pkg/contract"
	"veridian-hq/covenant/pkg/contract/storage"
	"veridian-hq/covenant/pkg/dsl/value"
)

const utilSource = `double : (int:n), { r : n * 2; }, (r);
limit : 10;
test_suite : [
	{ "target": 'double'; "input_args": (4,); "expected_output": 8; },
	{ "target": 'limit'; "expected_output": 10; }
];
`

func newTestLoader(t *testing.T, files map[string]string) (*Loader, *storage.MemoryStore, string) {
	t.Helper()
	root := t.TempDir()
	for path, source := range files {
		full := filepath.Join(root, filepath.FromSlash(path))
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(full, []byte(source), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	store := storage.NewMemoryStore()
	return New(root, store), store, root
}

func rewrite(t *testing.T, root, path, source string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(root, filepath.FromSlash(path)), []byte(source), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestNativeModulePreSealed(t *testing.T) {
	l, _, _ := newTestLoader(t, nil)

	proxy, err := l.Load(context.Background(), NativeModulePath)
	if err != nil {
		t.Fatalf("Load(native) error = %v", err)
	}
	if !proxy.Sealed() {
		t.Error("native proxy should be sealed from the start")
	}

	want := []string{"bootstrap", "generate_checksum", "register", "resource"}
	if got := proxy.Exposed(); !reflect.DeepEqual(got, want) {
		t.Errorf("Exposed() = %v, want %v", got, want)
	}
	if _, err := proxy.Attr("resource"); err != nil {
		t.Errorf("Attr(resource) error = %v", err)
	}

	// The native module survives invalidation.
	l.Invalidate(NativeModulePath)
	if _, err := l.Load(context.Background(), NativeModulePath); err != nil {
		t.Errorf("Load(native) after Invalidate error = %v", err)
	}
}

func TestLoadWithholdsUntestedSymbols(t *testing.T) {
	l, _, _ := newTestLoader(t, map[string]string{"util.dsl": utilSource})

	proxy, err := l.Load(context.Background(), "util.dsl")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := proxy.Exposed(); len(got) != 0 {
		t.Errorf("Exposed() = %v, want none before certification", got)
	}

	_, err = proxy.Attr("double")
	var unexposed *contract.UnexposedSymbolError
	if !errors.As(err, &unexposed) || unexposed.Status != contract.StatusUntested {
		t.Errorf("Attr(double) = %v, want untested UnexposedSymbolError", err)
	}

	// The module itself still loaded.
	if got := l.Loaded(); !reflect.DeepEqual(got, []string{"util.dsl"}) {
		t.Errorf("Loaded() = %v", got)
	}
}

func TestRegenerateExposes(t *testing.T) {
	l, store, _ := newTestLoader(t, map[string]string{"util.dsl": utilSource})
	ctx := context.Background()

	report, saved, err := l.Regenerate(ctx, "util.dsl")
	if err != nil {
		t.Fatalf("Regenerate() error = %v", err)
	}
	if !saved || !report.AllPassed() {
		t.Fatalf("saved = %v, report = %+v", saved, report)
	}

	stored, _ := store.Load(ctx, "util.dsl")
	if len(stored) != 2 {
		t.Fatalf("stored contract = %d symbols, want 2", len(stored))
	}
	if stored["double"].Status != contract.StatusTestedPass || stored["double"].TestHash == "" {
		t.Errorf("double record = %+v", stored["double"])
	}

	proxy, err := l.Load(ctx, "util.dsl")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := proxy.Exposed(); !reflect.DeepEqual(got, []string{"double", "limit"}) {
		t.Errorf("Exposed() = %v", got)
	}
	if v, err := proxy.Attr("limit"); err != nil || !value.Equal(v, value.Int(10)) {
		t.Errorf("Attr(limit) = %v, %v", v, err)
	}
}

func TestRegenerateFailingSuiteLeavesStoreUntouched(t *testing.T) {
	bad := strings.Replace(utilSource, "\"expected_output\": 8;", "\"expected_output\": 9;", 1)
	l, store, _ := newTestLoader(t, map[string]string{"util.dsl": bad})
	ctx := context.Background()

	report, saved, err := l.Regenerate(ctx, "util.dsl")
	if err != nil {
		t.Fatalf("Regenerate() error = %v", err)
	}
	if saved {
		t.Error("a failing suite must not save contracts")
	}
	if len(report.Failed()) != 1 {
		t.Errorf("Failed() = %+v", report.Failed())
	}

	stored, _ := store.Load(ctx, "util.dsl")
	if len(stored) != 0 {
		t.Errorf("store should stay empty, got %v", stored)
	}
}

func TestRegenerateRequiresSuite(t *testing.T) {
	l, _, _ := newTestLoader(t, map[string]string{"plain.dsl": "a : 1;\n"})
	if _, _, err := l.Regenerate(context.Background(), "plain.dsl"); err == nil {
		t.Fatal("Regenerate() without a test_suite should fail")
	}
}

func TestRunSuiteDoesNotSave(t *testing.T) {
	l, store, _ := newTestLoader(t, map[string]string{"util.dsl": utilSource})
	ctx := context.Background()

	_, report, err := l.RunSuite(ctx, "util.dsl")
	if err != nil {
		t.Fatalf("RunSuite() error = %v", err)
	}
	if !report.AllPassed() {
		t.Fatalf("report = %+v", report)
	}

	stored, _ := store.Load(ctx, "util.dsl")
	if len(stored) != 0 {
		t.Errorf("RunSuite must not write contracts, got %v", stored)
	}
}

func TestLoadIsCachedUntilInvalidated(t *testing.T) {
	l, _, _ := newTestLoader(t, map[string]string{"util.dsl": utilSource})
	ctx := context.Background()

	first, err := l.Load(ctx, "util.dsl")
	if err != nil {
		t.Fatal(err)
	}
	second, err := l.Load(ctx, "util.dsl")
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Error("repeated loads should share one proxy")
	}

	l.Invalidate("util.dsl")
	third, err := l.Load(ctx, "util.dsl")
	if err != nil {
		t.Fatal(err)
	}
	if third == first {
		t.Error("invalidation should force a rebuild")
	}
}

func TestEditAfterCertificationWithholdsChangedSymbol(t *testing.T) {
	l, _, root := newTestLoader(t, map[string]string{"util.dsl": utilSource})
	ctx := context.Background()

	if _, saved, err := l.Regenerate(ctx, "util.dsl"); err != nil || !saved {
		t.Fatalf("Regenerate() = %v, saved %v", err, saved)
	}
	if _, err := l.Load(ctx, "util.dsl"); err != nil {
		t.Fatal(err)
	}

	// Change double's defining line only; limit's span is untouched.
	edited := strings.Replace(utilSource, "n * 2", "n * 3", 1)
	rewrite(t, root, "util.dsl", edited)
	l.Invalidate("util.dsl")

	proxy, err := l.Load(ctx, "util.dsl")
	if err != nil {
		t.Fatalf("Load() after edit error = %v", err)
	}

	_, err = proxy.Attr("double")
	var unexposed *contract.UnexposedSymbolError
	if !errors.As(err, &unexposed) || unexposed.Status != contract.StatusTestedFail {
		t.Errorf("changed symbol = %v, want tested-fail UnexposedSymbolError", err)
	}
	if v, err := proxy.Attr("limit"); err != nil || !value.Equal(v, value.Int(10)) {
		t.Errorf("unchanged symbol should stay exposed, got %v, %v", v, err)
	}
}

func TestCircularImports(t *testing.T) {
	l, _, _ := newTestLoader(t, map[string]string{
		"a.dsl": "imports : { \"b\": 'b.dsl'; };\na_val : 1;\n",
		"b.dsl": "imports : { \"a\": 'a.dsl'; };\nb_val : 2;\n",
	})

	proxy, err := l.Load(context.Background(), "a.dsl")
	if err != nil {
		t.Fatalf("Load() of a cycle error = %v", err)
	}
	if !proxy.Sealed() {
		t.Error("proxy should seal once the cycle unwinds")
	}
	if got := l.Loaded(); !reflect.DeepEqual(got, []string{"a.dsl", "b.dsl"}) {
		t.Errorf("Loaded() = %v", got)
	}
}

func TestReExport(t *testing.T) {
	api := `imports : { "util": 'util.dsl'; };
exports : {
	"double": imports.util.double;
	"ready": 'ready';
};
ready : 1;
test_suite : [ { "target": 'ready'; "expected_output": 1; } ];
`
	l, _, _ := newTestLoader(t, map[string]string{
		"util.dsl": utilSource,
		"api.dsl":  api,
	})
	ctx := context.Background()

	if _, saved, err := l.Regenerate(ctx, "util.dsl"); err != nil || !saved {
		t.Fatalf("Regenerate(util) = %v, saved %v", err, saved)
	}
	if _, saved, err := l.Regenerate(ctx, "api.dsl"); err != nil || !saved {
		t.Fatalf("Regenerate(api) = %v, saved %v", err, saved)
	}

	proxy, err := l.Load(ctx, "api.dsl")
	if err != nil {
		t.Fatalf("Load(api) error = %v", err)
	}
	if got := proxy.Exposed(); !reflect.DeepEqual(got, []string{"double", "ready"}) {
		t.Errorf("Exposed() = %v", got)
	}

	v, err := proxy.Attr("double")
	if err != nil {
		t.Fatalf("Attr(double) error = %v", err)
	}
	if _, ok := v.(*value.Function); !ok {
		t.Errorf("re-exported symbol = %T, want the aliased function", v)
	}
}

func TestReExportOfWithheldSymbolIsWithheld(t *testing.T) {
	api := `imports : { "util": 'util.dsl'; };
exports : { "double": imports.util.double; "ready": 'ready'; };
ready : 1;
test_suite : [ { "target": 'ready'; "expected_output": 1; } ];
`
	l, _, _ := newTestLoader(t, map[string]string{
		"util.dsl": utilSource,
		"api.dsl":  api,
	})
	ctx := context.Background()

	// Certify api but not util: the aliased symbol stays untested.
	if _, saved, err := l.Regenerate(ctx, "api.dsl"); err != nil || !saved {
		t.Fatalf("Regenerate(api) = %v, saved %v", err, saved)
	}

	proxy, err := l.Load(ctx, "api.dsl")
	if err != nil {
		t.Fatalf("Load(api) error = %v", err)
	}
	if _, err := proxy.Attr("double"); err == nil {
		t.Error("re-export of a withheld symbol should not be exposed")
	}
	if v, err := proxy.Attr("ready"); err != nil || !value.Equal(v, value.Int(1)) {
		t.Errorf("direct export should still expose, got %v, %v", v, err)
	}
}

func TestRunThreadsImportsThroughFilter(t *testing.T) {
	main := `imports : { "util": 'util.dsl'; };
result : imports.util.double(21);
`
	l, _, _ := newTestLoader(t, map[string]string{
		"util.dsl": utilSource,
		"main.dsl": main,
	})
	ctx := context.Background()

	if _, saved, err := l.Regenerate(ctx, "util.dsl"); err != nil || !saved {
		t.Fatalf("Regenerate(util) = %v, saved %v", err, saved)
	}

	bindings, err := l.Run(ctx, "main.dsl")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if v, _ := bindings.Get("result"); !value.Equal(v, value.Int(42)) {
		t.Errorf("result = %v, want 42", v)
	}
}

func TestRunFailsOnWithheldAccess(t *testing.T) {
	main := `imports : { "util": 'util.dsl'; };
result : imports.util.double(21);
`
	l, _, _ := newTestLoader(t, map[string]string{
		"util.dsl": utilSource,
		"main.dsl": main,
	})

	// No certification: double is withheld and the program must not run.
	if _, err := l.Run(context.Background(), "main.dsl"); err == nil {
		t.Fatal("Run() should fail when the program touches a withheld symbol")
	}
}

func TestRevalidateDetectsDrift(t *testing.T) {
	l, _, root := newTestLoader(t, map[string]string{"util.dsl": utilSource})
	ctx := context.Background()

	if _, saved, err := l.Regenerate(ctx, "util.dsl"); err != nil || !saved {
		t.Fatalf("Regenerate() = %v, saved %v", err, saved)
	}
	if _, err := l.Load(ctx, "util.dsl"); err != nil {
		t.Fatal(err)
	}

	// No drift yet.
	n, err := l.Revalidate(ctx)
	if err != nil || n != 0 {
		t.Fatalf("Revalidate() = %d, %v, want 0 invalidations", n, err)
	}

	rewrite(t, root, "util.dsl", strings.Replace(utilSource, "n * 2", "n * 3", 1))
	n, err = l.Revalidate(ctx)
	if err != nil {
		t.Fatalf("Revalidate() error = %v", err)
	}
	if n != 1 {
		t.Errorf("Revalidate() = %d invalidations, want 1", n)
	}
	if got := l.Loaded(); len(got) != 0 {
		t.Errorf("Loaded() = %v, want drifted module dropped", got)
	}
}

func TestServiceCatalogExample(t *testing.T) {
	root := filepath.Join("..", "..", "examples", "service-catalog")
	if _, err := os.Stat(filepath.Join(root, "bootstrap.dsl")); err != nil {
		t.Fatalf("bundled example missing: %v", err)
	}

	l := New(root, storage.NewMemoryStore())
	ctx := context.Background()

	for _, module := range []string{"lib/normalize.dsl", "lib/catalog.dsl"} {
		report, saved, err := l.Regenerate(ctx, module)
		if err != nil {
			t.Fatalf("Regenerate(%s) error = %v", module, err)
		}
		if !saved {
			t.Fatalf("Regenerate(%s) failed targets: %+v", module, report.Failed())
		}
	}

	bindings, err := l.Run(ctx, "bootstrap.dsl")
	if err != nil {
		t.Fatalf("Run(bootstrap.dsl) error = %v", err)
	}

	healthy, _ := bindings.Get("healthy")
	want := &value.List{Elements: []value.Value{value.Str("auth"), value.Str("edge")}}
	if !value.Equal(healthy, want) {
		t.Errorf("healthy = %v, want %v", healthy, want)
	}
	if summary, _ := bindings.Get("summary"); !value.Equal(summary, value.Str(`3 services, healthy: ["auth","edge"]`)) {
		t.Errorf("summary = %v", summary)
	}
	if registered, _ := bindings.Get("registered"); !value.Equal(registered, value.Bool(true)) {
		t.Errorf("registered = %v, want true", registered)
	}
}
