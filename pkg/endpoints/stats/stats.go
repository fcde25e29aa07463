// Package stats reports how many items another endpoint currently returns.
// It reaches that endpoint through the injected client, so the source may be
// local or remote.
package stats

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/joeydtaylor/steeze-dispatch/pkg/core"
	"github.com/joeydtaylor/steeze-dispatch/pkg/core/transform"
)

const Name = "stats"

type Stats struct {
	client core.Caller
	source string
	count  transform.Func
}

var registerOnce sync.Once

func Register() {
	registerOnce.Do(func() { core.RegisterHandler(Name, New) })
}

// New reads option source (default "messages").
func New(cfg core.HandlerConfig) (any, error) {
	if cfg.Client == nil {
		return nil, fmt.Errorf("stats: client required")
	}
	source := "messages"
	if v, ok := cfg.Options["source"]; ok {
		s, ok := v.(string)
		if !ok || strings.TrimSpace(s) == "" {
			return nil, fmt.Errorf("stats: source must be a non-empty string")
		}
		source = strings.TrimSpace(s)
	}
	count, ok := transform.Lookup("count")
	if !ok {
		return nil, fmt.Errorf("stats: count transform not registered")
	}
	return &Stats{client: cfg.Client, source: source, count: count}, nil
}

func (s *Stats) Get(ctx context.Context, p core.Params, _ core.RequestMeta) (any, error) {
	fwd := core.Params{}
	for _, k := range []string{core.KeyAuthToken, core.KeyRequestID} {
		if v, ok := p[k]; ok {
			fwd[k] = v
		}
	}
	n, err := s.client.Call(ctx, core.CallRequest{
		Endpoint:  s.source,
		Params:    fwd,
		Transform: s.countList,
	})
	if err != nil {
		return nil, err
	}
	return map[string]any{"source": s.source, "count": n}, nil
}

// countList reports an empty result as zero and anything that is not a list
// as a bad gateway.
func (s *Stats) countList(v any) (any, error) {
	if v == nil {
		return 0, nil
	}
	n, err := s.count(v)
	if err != nil {
		return nil, core.Errorf(http.StatusBadGateway, "%s returned %T, expected a list", s.source, v)
	}
	return n, nil
}
