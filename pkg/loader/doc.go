// Package loader implements the contract-driven dependency filter: it
// parses and evaluates DSL modules, validates each exported symbol against
// the contract store, and exposes only certified symbols through filtered
// proxy modules. Circular imports resolve through partial proxies held in a
// per-path load arena; the bootstrap allow-list keeps the loader's own
// operations reachable before any contract exists.
package loader
