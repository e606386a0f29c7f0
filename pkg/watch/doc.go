// Package watch invalidates cached modules when their source or contract
// files change on disk, so the next load re-validates against the current
// state. Events are debounced to absorb editor save storms.
package watch
