package metrics

import (
	"net/http"
	"sync"
)

// The collector ignores its own scrape endpoint and the heartbeat.
var skipPaths = map[string]struct{}{"/metrics": {}, "/ping": {}}

var (
	normMu         sync.RWMutex
	pathNormalizer = func(r *http.Request) string { return r.URL.Path }
)

// SetPathNormalizer replaces the uri label function. The dispatch router
// installs one that collapses request paths to their resolved endpoint key.
func SetPathNormalizer(fn func(*http.Request) string) {
	if fn == nil {
		return
	}
	normMu.Lock()
	pathNormalizer = fn
	normMu.Unlock()
}

func isSkipPath(r *http.Request) bool {
	_, ok := skipPaths[r.URL.Path]
	return ok
}

func normalizePath(r *http.Request) string {
	normMu.RLock()
	fn := pathNormalizer
	normMu.RUnlock()
	return fn(r)
}
