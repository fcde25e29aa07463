package core

import (
	"context"
	"net/http"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

// echo returns its params and exposes request metadata under "meta".
type echo struct{}

func (echo) Get(_ context.Context, p Params, m RequestMeta) (any, error) {
	out := map[string]any{}
	for k, v := range p {
		out[k] = v
	}
	out["meta"] = map[string]any{
		"token": m.AuthToken,
		"rid":   m.RequestID,
		"base":  m.BaseURL,
		"url":   m.OriginalURL,
	}
	return out, nil
}

func (echo) Post(_ context.Context, p Params, _ RequestMeta) (any, error) {
	return map[string]any(p), nil
}

// getOnly answers GET with a fixed value.
type getOnly struct{ v any }

func (g getOnly) Get(context.Context, Params, RequestMeta) (any, error) { return g.v, nil }

// failing returns err from every GET.
type failing struct{ err error }

func (f failing) Get(context.Context, Params, RequestMeta) (any, error) { return nil, f.err }

type panicky struct{}

func (panicky) Get(context.Context, Params, RequestMeta) (any, error) { panic("boom") }

func static(h any) Factory {
	return func(HandlerConfig) (any, error) { return h, nil }
}

// counting wraps a factory and counts constructions.
func counting(n *atomic.Int32, h any) Factory {
	return func(HandlerConfig) (any, error) {
		n.Add(1)
		return h, nil
	}
}

func mustRegistry(t *testing.T, entries ...Entry) *Registry {
	t.Helper()
	reg, err := NewRegistry(entries...)
	require.NoError(t, err)
	return reg
}

func requireFailure(t *testing.T, err error, status int, msg string) {
	t.Helper()
	var f *Failure
	require.ErrorAs(t, err, &f)
	require.Equal(t, status, f.Status)
	require.Equal(t, msg, f.Message)
}

type doerFunc func(*http.Request) (*http.Response, error)

func (f doerFunc) Do(r *http.Request) (*http.Response, error) { return f(r) }
