// core/transform/registry.go
package transform

import (
	"fmt"
	"reflect"
	"sync"
)

// Func reshapes a call result. It runs after the envelope has been unwrapped.
type Func func(any) (any, error)

var (
	mu  sync.RWMutex
	reg = map[string]Func{}
)

// Identity returns its input untouched.
func Identity(v any) (any, error) { return v, nil }

// Register binds a named transform. Names are global to the process.
func Register(name string, fn Func) {
	if name == "" || fn == nil {
		panic("transform: name, fn required")
	}
	mu.Lock()
	defer mu.Unlock()
	if _, dup := reg[name]; dup {
		panic("transform: duplicate " + name)
	}
	reg[name] = fn
}

// RegisterFor binds a transform that only accepts values of type T.
// Values of another type fail with a type mismatch error.
func RegisterFor[T any](name string, fn func(T) (any, error)) {
	if fn == nil {
		panic("transform: fn required")
	}
	Register(name, func(v any) (any, error) {
		t, ok := v.(T)
		if !ok {
			var zero T
			return nil, fmt.Errorf("transform: %q expects %v, got %T", name, reflect.TypeOf(&zero).Elem(), v)
		}
		return fn(t)
	})
}

// Lookup returns the transform registered under name.
func Lookup(name string) (Func, bool) {
	mu.RLock()
	defer mu.RUnlock()
	fn, ok := reg[name]
	return fn, ok
}

// Resolve composes the named transforms in order.
func Resolve(names ...string) (Func, error) {
	mu.RLock()
	defer mu.RUnlock()
	fns := make([]Func, 0, len(names))
	for _, n := range names {
		fn, ok := reg[n]
		if !ok {
			return nil, fmt.Errorf("transform: %q not found", n)
		}
		fns = append(fns, fn)
	}
	if len(fns) == 1 {
		return fns[0], nil
	}
	return func(v any) (any, error) {
		cur := v
		for i, fn := range fns {
			out, err := fn(cur)
			if err != nil {
				return nil, fmt.Errorf("transform %q: %w", names[i], err)
			}
			cur = out
		}
		return cur, nil
	}, nil
}
