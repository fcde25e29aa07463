// core/handlers.go
package core

import "sync"

var (
	handlersMu sync.RWMutex
	handlers   = map[string]Factory{}
)

// RegisterHandler makes a local handler factory available under a name
// referenced by manifest endpoints (handler = "name").
func RegisterHandler(name string, f Factory) {
	if name == "" || f == nil {
		panic("core: handler name and factory required")
	}
	handlersMu.Lock()
	defer handlersMu.Unlock()
	if _, dup := handlers[name]; dup {
		panic("core: duplicate handler " + name)
	}
	handlers[name] = f
}

// LookupHandler retrieves a registered handler factory by name.
func LookupHandler(name string) (Factory, bool) {
	handlersMu.RLock()
	defer handlersMu.RUnlock()
	f, ok := handlers[name]
	return f, ok
}
