package core

import (
	"fmt"
	"strings"

	"github.com/joeydtaylor/steeze-dispatch/pkg/core/transform"
	"github.com/joeydtaylor/steeze-dispatch/pkg/manifest"
)

type Kind int

const (
	KindRemote Kind = iota + 1
	KindLocal
)

func (k Kind) String() string {
	switch k {
	case KindRemote:
		return "remote"
	case KindLocal:
		return "local"
	}
	return "unknown"
}

// Descriptor says how to reach one endpoint. Kind is fixed at construction:
// remote descriptors carry URL, local ones carry Factory.
type Descriptor struct {
	Kind    Kind
	URL     string
	Factory Factory

	ContentType string              // remote default request content type
	Transform   transform.Func      // applied when the call does not set one
	Creds       CredentialsProvider // remote only
	Options     map[string]any      // local only, handed to Factory
}

func Remote(url string) Descriptor { return Descriptor{Kind: KindRemote, URL: url} }
func Local(f Factory) Descriptor   { return Descriptor{Kind: KindLocal, Factory: f} }

type Entry struct {
	Key        string
	Descriptor Descriptor
}

// Registry is the immutable key -> descriptor table shared by Client and router.
type Registry struct {
	keys  []string
	table map[string]Descriptor
}

// NewRegistry normalizes keys and rejects duplicates and incomplete descriptors.
func NewRegistry(entries ...Entry) (*Registry, error) {
	r := &Registry{table: make(map[string]Descriptor, len(entries))}
	for i, e := range entries {
		key := manifest.NormalizeKey(e.Key)
		if key == "" || key == "." {
			return nil, fmt.Errorf("registry entry %d: key is required", i)
		}
		if _, dup := r.table[key]; dup {
			return nil, fmt.Errorf("registry entry %d: duplicate key %q", i, key)
		}
		d := e.Descriptor
		switch d.Kind {
		case KindRemote:
			if d.URL == "" {
				return nil, fmt.Errorf("registry entry %q: remote descriptor without url", key)
			}
		case KindLocal:
			if d.Factory == nil {
				return nil, fmt.Errorf("registry entry %q: local descriptor without factory", key)
			}
		default:
			return nil, fmt.Errorf("registry entry %q: unknown kind %d", key, d.Kind)
		}
		r.keys = append(r.keys, key)
		r.table[key] = d
	}
	return r, nil
}

func (r *Registry) Lookup(key string) (Descriptor, bool) {
	d, ok := r.table[manifest.NormalizeKey(key)]
	return d, ok
}

// Resolve finds the longest registered key that is a segment prefix of
// subpath. "a/b/c" matches "a/b" before "a". Empty segments are ignored.
func (r *Registry) Resolve(subpath string) (string, Descriptor, bool) {
	var segs []string
	for _, s := range strings.Split(subpath, "/") {
		if s != "" {
			segs = append(segs, s)
		}
	}
	for n := len(segs); n > 0; n-- {
		key := strings.Join(segs[:n], "/")
		if d, ok := r.table[key]; ok {
			return key, d, true
		}
	}
	return "", Descriptor{}, false
}

// Keys returns endpoint keys in registration order.
func (r *Registry) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}
