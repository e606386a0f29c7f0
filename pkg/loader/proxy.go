package loader

import (
	"sort"
	"sync"

	"veridian-hq/covenant/pkg/contract"
	"veridian-hq/covenant/pkg/dsl/value"
)

// ProxyModule is the filtered view over a module's bindings. While a load
// is in progress the proxy is partial: re-entrant loads in an import cycle
// observe an exposure set that grows until the cycle unwinds and the proxy
// seals. After sealing the set never changes and no contract is re-checked
// on access.
type ProxyModule struct {
	path string

	mu       sync.RWMutex
	sealed   bool
	exposed  map[string]value.Value
	statuses map[string]contract.Status
}

// NewPartialProxy creates an empty, unsealed proxy for a load in progress.
func NewPartialProxy(path string) *ProxyModule {
	return &ProxyModule{
		path:     path,
		exposed:  map[string]value.Value{},
		statuses: map[string]contract.Status{},
	}
}

// expose adds a symbol to an unsealed proxy.
func (p *ProxyModule) expose(name string, v value.Value, status contract.Status) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.sealed {
		return
	}
	p.exposed[name] = v
	p.statuses[name] = status
}

// withhold records a non-exposable verdict so access errors can report it.
func (p *ProxyModule) withhold(name string, status contract.Status) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.sealed {
		return
	}
	p.statuses[name] = status
}

// seal fixes the exposure set.
func (p *ProxyModule) seal() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sealed = true
}

// Path returns the module path the proxy filters.
func (p *ProxyModule) Path() string { return p.path }

// Attr resolves an exposed symbol. Withheld or unknown names fail with an
// UnexposedSymbolError carrying the symbol's verdict, distinguishing
// never-tested symbols from hash mismatches.
func (p *ProxyModule) Attr(name string) (value.Value, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if v, ok := p.exposed[name]; ok {
		return v, nil
	}

	status, known := p.statuses[name]
	if !known {
		status = contract.StatusUntested
	}
	return nil, &contract.UnexposedSymbolError{
		Module: p.path,
		Symbol: name,
		Status: status,
	}
}

// Exposed returns the sorted exposed symbol names.
func (p *ProxyModule) Exposed() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]string, 0, len(p.exposed))
	for name := range p.exposed {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Sealed reports whether the exposure set is final.
func (p *ProxyModule) Sealed() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.sealed
}

var _ value.Attributer = (*ProxyModule)(nil)
