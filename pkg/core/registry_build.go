package core

import (
	"fmt"
	"strings"

	"github.com/joeydtaylor/steeze-dispatch/pkg/core/transform"
	"github.com/joeydtaylor/steeze-dispatch/pkg/manifest"
)

// BuildRegistry turns a validated manifest into a Registry. Local handler
// names and transform names must already be registered.
func BuildRegistry(cfg manifest.Config) (*Registry, error) {
	entries := make([]Entry, 0, len(cfg.Endpoints))
	for _, ep := range cfg.Endpoints {
		var d Descriptor
		switch ep.Kind() {
		case manifest.EndpointRemote:
			d = Remote(ep.URL)
			d.ContentType = ep.ContentType
			d.Creds = credsFor(ep.DownAuth)
		case manifest.EndpointLocal:
			f, ok := LookupHandler(ep.Handler)
			if !ok {
				return nil, fmt.Errorf("endpoint %q: handler %q not registered", ep.Key, ep.Handler)
			}
			d = Local(f)
			d.Options = ep.Options
		}
		if ep.Transform != "" {
			fn, err := transform.Resolve(splitChain(ep.Transform)...)
			if err != nil {
				return nil, fmt.Errorf("endpoint %q: %w", ep.Key, err)
			}
			d.Transform = fn
		}
		entries = append(entries, Entry{Key: ep.Key, Descriptor: d})
	}
	return NewRegistry(entries...)
}

// splitChain reads "first, trim" as the chain first then trim.
func splitChain(s string) []string {
	var out []string
	for _, n := range strings.Split(s, ",") {
		if n = strings.TrimSpace(n); n != "" {
			out = append(out, n)
		}
	}
	return out
}
