package loader

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"veridian-hq/covenant/pkg/contract"
	"veridian-hq/covenant/pkg/contract/storage"
	"veridian-hq/covenant/pkg/dsl/ast"
	"veridian-hq/covenant/pkg/dsl/eval"
	"veridian-hq/covenant/pkg/dsl/stdlib"
	"veridian-hq/covenant/pkg/dsl/value"
	"veridian-hq/covenant/pkg/telemetry/metrics"
	"veridian-hq/covenant/pkg/testsuite"
)

// NativeModulePath is the loader's own module identity. Its proxy carries
// exactly the allow-listed operations, force-exposed, so bootstrap programs
// can import the loader before any contract exists.
const NativeModulePath = "framework/loader"

// Loader loads, validates and filters DSL modules. Loading is idempotent
// and cached per module path: the first load validates and builds the
// proxy, every later request shares it.
type Loader struct {
	root    string
	store   storage.Store
	engine  *ContractEngine
	logger  *slog.Logger
	metrics *metrics.LoaderMetrics
	journal *testsuite.Journal

	mu    sync.Mutex
	slots map[string]*slot
}

type slot struct {
	proxy  *ProxyModule
	module *Module
	done   chan struct{}
	err    error
}

// Option configures a Loader.
type Option func(*Loader)

// WithLogger sets the loader's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) { l.logger = logger }
}

// WithMetrics records load and verdict metrics.
func WithMetrics(m *metrics.LoaderMetrics) Option {
	return func(l *Loader) { l.metrics = m }
}

// WithJournal records every test-suite run during regeneration.
func WithJournal(j *testsuite.Journal) Option {
	return func(l *Loader) { l.journal = j }
}

// New creates a Loader resolving module paths against root and validating
// against the given contract store.
func New(root string, store storage.Store, opts ...Option) *Loader {
	l := &Loader{
		root:   root,
		store:  store,
		logger: slog.Default().With("component", "loader"),
		slots:  map[string]*slot{},
	}
	for _, opt := range opts {
		opt(l)
	}
	l.engine = NewContractEngine(store,
		WithEngineLogger(l.logger.With("component", "loader.engine")),
		WithEngineMetrics(l.metrics),
	)
	l.installNativeModule()
	return l
}

// installNativeModule pre-seals the loader's own proxy with the
// allow-listed operations, satisfying the force-exposure invariant even on
// an empty contract store.
func (l *Loader) installNativeModule() {
	proxy := NewPartialProxy(NativeModulePath)
	for name := range AllowList {
		proxy.expose(name, &value.Builtin{Name: name}, contract.StatusForceExposed)
	}
	proxy.seal()

	done := make(chan struct{})
	close(done)
	l.slots[NativeModulePath] = &slot{proxy: proxy, done: done}
}

// registry is the builtin table every module evaluates against: the
// standard library plus the loader's own operations.
func (l *Loader) registry() eval.Registry {
	return stdlib.Registry().Merge(l.ops())
}

// loadChain tracks the module paths on the current load chain so re-entrant
// loads in an import cycle receive the in-progress partial proxy instead of
// recursing forever.
type loadChain struct {
	mu     sync.Mutex
	active map[string]bool
}

func (c *loadChain) enter(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.active[path] = true
}

func (c *loadChain) leave(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.active, path)
}

func (c *loadChain) holds(path string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active[path]
}

type chainKey struct{}

// withChain attaches a fresh load chain to ctx unless one is present.
func withChain(ctx context.Context) (context.Context, *loadChain) {
	if c, ok := ctx.Value(chainKey{}).(*loadChain); ok {
		return ctx, c
	}
	c := &loadChain{active: map[string]bool{}}
	return context.WithValue(ctx, chainKey{}, c), c
}

// Load returns the filtered proxy for a module path, validating and
// building it on first use. Concurrent first loads collapse to a single
// load; a re-entrant load within one chain returns the partial proxy.
func (l *Loader) Load(ctx context.Context, path string) (*ProxyModule, error) {
	ctx, chain := withChain(ctx)
	path = filepath.ToSlash(path)

	l.mu.Lock()
	if s, ok := l.slots[path]; ok {
		l.mu.Unlock()
		if chain.holds(path) {
			// Import cycle: hand back the growing partial proxy.
			return s.proxy, nil
		}
		<-s.done
		return s.proxy, s.err
	}
	s := &slot{proxy: NewPartialProxy(path), done: make(chan struct{})}
	l.slots[path] = s
	l.mu.Unlock()

	chain.enter(path)
	defer chain.leave(path)

	start := time.Now()
	s.module, s.err = l.build(ctx, path, s.proxy)
	s.proxy.seal()
	close(s.done)

	result := "ok"
	if s.err != nil {
		result = "error"
	}
	if l.metrics != nil {
		l.metrics.RecordLoad(path, result, time.Since(start))
	}
	if s.err == nil {
		l.logger.Info("module loaded",
			"module", path,
			"exposed", len(s.proxy.Exposed()),
			"elapsed", time.Since(start),
		)
	}
	return s.proxy, s.err
}

// build parses, evaluates and validates one module, filling its proxy.
func (l *Loader) build(ctx context.Context, path string, proxy *ProxyModule) (*Module, error) {
	mod, _, err := l.evaluate(ctx, path)
	if err != nil {
		return nil, err
	}

	vc, err := l.engine.Validate(ctx, mod)
	if err != nil {
		return mod, fmt.Errorf("validate %s: %w", path, err)
	}

	for _, candidate := range mod.Candidates() {
		status := vc.Status(candidate.Public)
		if !status.Exposable() {
			proxy.withhold(candidate.Public, status)
			continue
		}

		v, ok := l.resolveSymbol(mod, candidate)
		if !ok {
			proxy.withhold(candidate.Public, status)
			continue
		}
		proxy.expose(candidate.Public, v, status)
	}
	return mod, nil
}

// resolveSymbol finds the value behind a candidate: an evaluated binding,
// or the imported symbol a re-export aliases.
func (l *Loader) resolveSymbol(mod *Module, candidate ExportEntry) (value.Value, bool) {
	if candidate.ReExport {
		imports, ok := mod.Bindings.Get("imports")
		if !ok {
			return nil, false
		}
		dict, ok := imports.(*value.Dict)
		if !ok {
			return nil, false
		}
		raw, ok := dict.Get(candidate.Alias)
		if !ok {
			return nil, false
		}
		dep, ok := raw.(*value.Module)
		if !ok {
			return nil, false
		}
		v, err := dep.Attrs.Attr(candidate.Symbol)
		if err != nil {
			l.logger.Warn("re-exported symbol withheld by dependency",
				"module", mod.Path,
				"symbol", candidate.Public,
				"error", err,
			)
			return nil, false
		}
		return v, true
	}

	v, ok := mod.Bindings.Get(candidate.Internal)
	if !ok {
		l.logger.Warn("exported symbol is not bound",
			"module", mod.Path,
			"symbol", candidate.Internal,
		)
		return nil, false
	}
	return v, true
}

// evaluate reads, parses and executes a module with its imports resolved
// through the filter. The returned interpreter serves as the caller for
// test-suite execution.
func (l *Loader) evaluate(ctx context.Context, path string) (*Module, *eval.Interpreter, error) {
	source, err := l.readModule(path)
	if err != nil {
		return nil, nil, err
	}

	mod, err := ParseModule(path, source)
	if err != nil {
		return nil, nil, err
	}

	importsDict := value.NewDict()
	for _, alias := range mod.ImportOrder {
		depPath := mod.Imports[alias]
		depProxy, err := l.Load(ctx, depPath)
		if err != nil {
			return nil, nil, fmt.Errorf("import %q of %s: %w", alias, path, err)
		}
		importsDict.Set(alias, &value.Module{Path: depPath, Attrs: depProxy})
	}

	interp := eval.New(l.registry(), eval.WithLogger(l.logger))
	interp.Root().Define("imports", importsDict)

	bindings, err := interp.Execute(ctx, executable(mod.Program))
	if err != nil {
		return nil, nil, fmt.Errorf("evaluate %s: %w", path, err)
	}
	mod.Bindings = bindings
	return mod, interp, nil
}

// executable strips the declarative imports and exports bindings from a
// program. The loader pre-binds `imports` with resolved module proxies, and
// the exports map is consumed structurally at parse time; evaluating either
// as ordinary code would clobber the proxies or force eager access to
// withheld re-exported symbols.
func executable(prog *ast.Program) *ast.Program {
	out := &ast.Program{}
	for _, stmt := range prog.Statements {
		if b, ok := stmt.(*ast.Binding); ok && (b.Name == "imports" || b.Name == "exports") {
			continue
		}
		out.Statements = append(out.Statements, stmt)
	}
	return out
}

func (l *Loader) readModule(path string) (string, error) {
	full := filepath.Join(l.root, filepath.FromSlash(path))
	data, err := os.ReadFile(full)
	if err != nil {
		return "", fmt.Errorf("read module %s: %w", path, err)
	}
	return string(data), nil
}

// Run executes a production program: its imports load through the filter,
// its own bindings run unfiltered, and any parse or evaluation error is
// fatal.
func (l *Loader) Run(ctx context.Context, path string) (*value.Dict, error) {
	ctx, _ = withChain(ctx)
	mod, _, err := l.evaluate(ctx, filepath.ToSlash(path))
	if err != nil {
		return nil, err
	}
	return mod.Bindings, nil
}

// Invalidate drops a module's cached proxy so the next load revalidates.
func (l *Loader) Invalidate(path string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if path == NativeModulePath {
		return
	}
	delete(l.slots, filepath.ToSlash(path))
}

// Loaded returns the sorted paths of fully loaded modules.
func (l *Loader) Loaded() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []string
	for path, s := range l.slots {
		if path == NativeModulePath {
			continue
		}
		select {
		case <-s.done:
			if s.err == nil {
				out = append(out, path)
			}
		default:
		}
	}
	sort.Strings(out)
	return out
}
