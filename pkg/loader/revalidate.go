package loader

import "context"

// Revalidate re-parses every loaded module and recomputes its contract
// verdicts. A module whose exposure set would differ from the cached proxy
// is dropped from the cache, so the next load rebuilds it. Returns the
// number of invalidated modules.
func (l *Loader) Revalidate(ctx context.Context) (int, error) {
	invalidated := 0

	for _, path := range l.Loaded() {
		source, err := l.readModule(path)
		if err != nil {
			l.logger.Warn("module unreadable during revalidation", "module", path, "error", err)
			l.Invalidate(path)
			invalidated++
			continue
		}

		mod, err := ParseModule(path, source)
		if err != nil {
			l.logger.Warn("module unparsable during revalidation", "module", path, "error", err)
			l.Invalidate(path)
			invalidated++
			continue
		}

		vc, err := l.engine.Validate(ctx, mod)
		if err != nil {
			return invalidated, err
		}

		if !sameExposure(vc.Exposable(), l.exposedFor(path)) {
			l.logger.Warn("exposure drift detected, cache invalidated", "module", path)
			l.Invalidate(path)
			invalidated++
		}
	}
	return invalidated, nil
}

func (l *Loader) exposedFor(path string) []string {
	l.mu.Lock()
	s, ok := l.slots[path]
	l.mu.Unlock()
	if !ok {
		return nil
	}
	return s.proxy.Exposed()
}

func sameExposure(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
