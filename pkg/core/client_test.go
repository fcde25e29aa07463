package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/joeydtaylor/steeze-dispatch/pkg/codec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captured struct {
	method string
	query  url.Values
	header http.Header
	body   string
}

type recorder struct {
	mu   sync.Mutex
	last captured
}

func (r *recorder) get() captured {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last
}

// remoteStub answers every request with status and body and records the last request.
func remoteStub(t *testing.T, status int, body string) (*httptest.Server, *recorder) {
	t.Helper()
	rec := &recorder{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		rec.mu.Lock()
		rec.last = captured{method: r.Method, query: r.URL.Query(), header: r.Header.Clone(), body: string(b)}
		rec.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv, rec
}

func TestCallRemoteUnwrapsData(t *testing.T) {
	srv, got := remoteStub(t, 200, `{"data":{"id":1,"text":"hi"}}`)
	c := NewClient(mustRegistry(t, Entry{Key: "msgs", Descriptor: Remote(srv.URL + "/api/msgs")}))

	v, err := c.Call(context.Background(), CallRequest{Endpoint: "msgs"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"id": json.Number("1"), "text": "hi"}, v)
	assert.Equal(t, http.MethodGet, got.get().method)
	assert.Equal(t, "application/json", got.get().header.Get("Content-Type"))
}

func TestCallRemoteWholeBodyAndText(t *testing.T) {
	srv, _ := remoteStub(t, 200, `[1,2]`)
	c := NewClient(mustRegistry(t, Entry{Key: "list", Descriptor: Remote(srv.URL)}))
	v, err := c.Call(context.Background(), CallRequest{Endpoint: "list"})
	require.NoError(t, err)
	assert.Equal(t, []any{json.Number("1"), json.Number("2")}, v)

	txt, _ := remoteStub(t, 200, `pong`)
	c = NewClient(mustRegistry(t, Entry{Key: "txt", Descriptor: Remote(txt.URL)}))
	v, err = c.Call(context.Background(), CallRequest{Endpoint: "txt"})
	require.NoError(t, err)
	assert.Equal(t, "pong", v)
}

func TestRemoteAndLocalAreIndistinguishable(t *testing.T) {
	value := map[string]any{"id": 7, "tags": []string{"a", "b"}, "text": "hi"}

	srv, _ := remoteStub(t, 200, `{"data":{"id":7,"tags":["a","b"],"text":"hi"}}`)
	c := NewClient(mustRegistry(t,
		Entry{Key: "remote", Descriptor: Remote(srv.URL)},
		Entry{Key: "local", Descriptor: Local(static(getOnly{value}))},
	))

	rv, err := c.Call(context.Background(), CallRequest{Endpoint: "remote"})
	require.NoError(t, err)
	lv, err := c.Call(context.Background(), CallRequest{Endpoint: "local"})
	require.NoError(t, err)

	rb, err := codec.JSON.Marshal(rv)
	require.NoError(t, err)
	lb, err := codec.JSON.Marshal(lv)
	require.NoError(t, err)
	assert.JSONEq(t, string(lb), string(rb))
}

func TestCallRemoteQueryEncoding(t *testing.T) {
	srv, got := remoteStub(t, 200, `{"data":null}`)
	c := NewClient(mustRegistry(t, Entry{Key: "q", Descriptor: Remote(srv.URL + "?fixed=1")}))

	_, err := c.Call(context.Background(), CallRequest{
		Endpoint: "q",
		Verb:     VerbDelete,
		Params: Params{
			"s":          "x",
			"n":          2,
			"tags":       []any{"a", "b"},
			"filter":     map[string]any{"k": "v"},
			"skip":       nil,
			KeyAuthToken: "secret",
		},
	})
	require.NoError(t, err)

	want := url.Values{
		"fixed":  {"1"},
		"s":      {"x"},
		"n":      {"2"},
		"tags":   {"a", "b"},
		"filter": {`{"k":"v"}`},
	}
	assert.Equal(t, http.MethodDelete, got.get().method)
	if diff := cmp.Diff(want, got.get().query); diff != "" {
		t.Errorf("query mismatch (-want +got):\n%s", diff)
	}
}

func TestCallRemoteBodies(t *testing.T) {
	srv, got := remoteStub(t, 200, `{"data":"ok"}`)
	c := NewClient(mustRegistry(t, Entry{Key: "b", Descriptor: Remote(srv.URL)}))

	_, err := c.Call(context.Background(), CallRequest{Endpoint: "b", Verb: "POST", Params: Params{"text": "<hi>", "n": 1}})
	require.NoError(t, err)
	assert.Equal(t, http.MethodPost, got.get().method)
	assert.JSONEq(t, `{"text":"<hi>","n":1}`, got.get().body)

	_, err = c.Call(context.Background(), CallRequest{
		Endpoint:    "b",
		Verb:        VerbPut,
		ContentType: formContentType + "; charset=utf-8",
		Params:      Params{"a": "1", "b": []string{"x", "y"}},
	})
	require.NoError(t, err)
	assert.Equal(t, http.MethodPut, got.get().method)
	form, err := url.ParseQuery(got.get().body)
	require.NoError(t, err)
	assert.Equal(t, url.Values{"a": {"1"}, "b": {"x", "y"}}, form)
	assert.Equal(t, formContentType+"; charset=utf-8", got.get().header.Get("Content-Type"))
}

func TestCallRemoteDescriptorContentType(t *testing.T) {
	srv, got := remoteStub(t, 200, `{}`)
	d := Remote(srv.URL)
	d.ContentType = formContentType
	c := NewClient(mustRegistry(t, Entry{Key: "f", Descriptor: d}))

	_, err := c.Call(context.Background(), CallRequest{Endpoint: "f", Verb: VerbPost, Params: Params{"a": "1"}})
	require.NoError(t, err)
	assert.Equal(t, formContentType, got.get().header.Get("Content-Type"))
	assert.Equal(t, "a=1", got.get().body)
}

func TestCallRemoteUnsupportedVerb(t *testing.T) {
	var calls atomic.Int32
	c := NewClient(
		mustRegistry(t, Entry{Key: "r", Descriptor: Remote("http://unused.invalid")}),
		WithHTTPDoer(doerFunc(func(*http.Request) (*http.Response, error) {
			calls.Add(1)
			return nil, errors.New("unreachable")
		})),
	)
	_, err := c.Call(context.Background(), CallRequest{Endpoint: "r", Verb: "head"})
	requireFailure(t, err, http.StatusMethodNotAllowed, "method not supported")
	assert.Zero(t, calls.Load())
}

func TestCallRemoteTransportError(t *testing.T) {
	c := NewClient(
		mustRegistry(t, Entry{Key: "r", Descriptor: Remote("http://unused.invalid")}),
		WithHTTPDoer(doerFunc(func(*http.Request) (*http.Response, error) {
			return nil, errors.New("connection refused")
		})),
	)
	_, err := c.Call(context.Background(), CallRequest{Endpoint: "r"})
	requireFailure(t, err, http.StatusInternalServerError, "connection refused")
}

func TestCallRemoteErrorEnvelope(t *testing.T) {
	srv, _ := remoteStub(t, 409, `{"error":{"code":409,"message":"message store full"}}`)
	c := NewClient(mustRegistry(t, Entry{Key: "r", Descriptor: Remote(srv.URL)}))
	_, err := c.Call(context.Background(), CallRequest{Endpoint: "r"})
	requireFailure(t, err, http.StatusConflict, "message store full")

	bare, _ := remoteStub(t, 503, `upstream down`)
	c = NewClient(mustRegistry(t, Entry{Key: "r", Descriptor: Remote(bare.URL)}))
	_, err = c.Call(context.Background(), CallRequest{Endpoint: "r"})
	requireFailure(t, err, http.StatusServiceUnavailable, "Service Unavailable")
}

func TestCallRemoteHeaders(t *testing.T) {
	srv, got := remoteStub(t, 200, `{}`)
	fwd := Remote(srv.URL)
	fwd.Creds = ForwardTokenProvider{}
	st := Remote(srv.URL)
	st.Creds = StaticBearerProvider{HeaderName: "X-Api-Key", EnvVar: "TEST_DISPATCH_BEARER"}
	t.Setenv("TEST_DISPATCH_BEARER", "s3cret")

	c := NewClient(mustRegistry(t,
		Entry{Key: "fwd", Descriptor: fwd},
		Entry{Key: "static", Descriptor: st},
	))

	_, err := c.Call(context.Background(), CallRequest{
		Endpoint: "fwd",
		Params:   Params{KeyAuthToken: "tok", KeyRequestID: "rid-1"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok", got.get().header.Get("Authorization"))
	assert.Equal(t, "rid-1", got.get().header.Get("X-Request-ID"))
	assert.Empty(t, got.get().query)

	_, err = c.Call(context.Background(), CallRequest{Endpoint: "static"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer s3cret", got.get().header.Get("X-Api-Key"))
	assert.Empty(t, got.get().header.Get("Authorization"))
	_, err = uuid.Parse(got.get().header.Get("X-Request-ID"))
	assert.NoError(t, err)
}

func TestCallUnknownEndpoint(t *testing.T) {
	c := NewClient(mustRegistry(t))
	_, err := c.Call(context.Background(), CallRequest{Endpoint: "ghost"})
	requireFailure(t, err, http.StatusNotFound, "api endpoint not found")
}

func TestCallLocalMissingVerb(t *testing.T) {
	c := NewClient(mustRegistry(t, Entry{Key: "g", Descriptor: Local(static(getOnly{1}))}))

	_, err := c.Call(context.Background(), CallRequest{Endpoint: "g", Verb: VerbPost})
	requireFailure(t, err, http.StatusMethodNotAllowed, "method not available")

	_, err = c.Call(context.Background(), CallRequest{Endpoint: "g", Verb: "head"})
	requireFailure(t, err, http.StatusMethodNotAllowed, "method not available")
}

func TestCallLocalReusesInstance(t *testing.T) {
	var built atomic.Int32
	c := NewClient(mustRegistry(t, Entry{Key: "e", Descriptor: Local(counting(&built, echo{}))}))

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.Call(context.Background(), CallRequest{Endpoint: "e"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.EqualValues(t, 1, built.Load())
}

func TestCallLocalFailurePassesThrough(t *testing.T) {
	c := NewClient(mustRegistry(t,
		Entry{Key: "conflict", Descriptor: Local(static(failing{Errorf(409, "taken")}))},
		Entry{Key: "plain", Descriptor: Local(static(failing{errors.New("db gone")}))},
		Entry{Key: "panic", Descriptor: Local(static(panicky{}))},
	))

	_, err := c.Call(context.Background(), CallRequest{Endpoint: "conflict", Transform: func(any) (any, error) {
		t.Fatal("transform must not run on failure")
		return nil, nil
	}})
	requireFailure(t, err, http.StatusConflict, "taken")

	_, err = c.Call(context.Background(), CallRequest{Endpoint: "plain"})
	requireFailure(t, err, http.StatusInternalServerError, "db gone")

	_, err = c.Call(context.Background(), CallRequest{Endpoint: "panic"})
	requireFailure(t, err, http.StatusInternalServerError, "handler panicked: boom")
}

func TestCallLocalFactoryError(t *testing.T) {
	var attempts atomic.Int32
	f := func(cfg HandlerConfig) (any, error) {
		if attempts.Add(1) == 1 {
			return nil, fmt.Errorf("bad option for %s", cfg.Endpoint)
		}
		return getOnly{"up"}, nil
	}
	c := NewClient(mustRegistry(t, Entry{Key: "flaky", Descriptor: Local(f)}))

	_, err := c.Call(context.Background(), CallRequest{Endpoint: "flaky"})
	requireFailure(t, err, http.StatusInternalServerError, "bad option for flaky")

	v, err := c.Call(context.Background(), CallRequest{Endpoint: "flaky"})
	require.NoError(t, err)
	assert.Equal(t, "up", v)
}

func TestCallTransformPrecedence(t *testing.T) {
	d := Local(static(getOnly{"v"}))
	d.Transform = func(v any) (any, error) { return "descriptor:" + v.(string), nil }
	c := NewClient(mustRegistry(t, Entry{Key: "t", Descriptor: d}))

	v, err := c.Call(context.Background(), CallRequest{Endpoint: "t"})
	require.NoError(t, err)
	assert.Equal(t, "descriptor:v", v)

	v, err = c.Call(context.Background(), CallRequest{Endpoint: "t", Transform: func(v any) (any, error) {
		return "call:" + v.(string), nil
	}})
	require.NoError(t, err)
	assert.Equal(t, "call:v", v)

	_, err = c.Call(context.Background(), CallRequest{Endpoint: "t", Transform: func(any) (any, error) {
		return nil, errors.New("bad shape")
	}})
	requireFailure(t, err, http.StatusInternalServerError, "bad shape")
}

// relay calls another endpoint through the client it was built with.
type relay struct{ c Caller }

func (r relay) Get(ctx context.Context, p Params, _ RequestMeta) (any, error) {
	return r.c.Call(ctx, CallRequest{Endpoint: "inner", Params: p})
}

func TestHandlersCallOtherEndpoints(t *testing.T) {
	var cfgSeen HandlerConfig
	outer := func(cfg HandlerConfig) (any, error) {
		cfgSeen = cfg
		return relay{c: cfg.Client}, nil
	}
	d := Local(outer)
	d.Options = map[string]any{"depth": 1}
	c := NewClient(mustRegistry(t,
		Entry{Key: "outer", Descriptor: d},
		Entry{Key: "inner", Descriptor: Local(static(echo{}))},
	))

	v, err := c.Call(context.Background(), CallRequest{Endpoint: "outer", Params: Params{"x": "1"}})
	require.NoError(t, err)
	assert.Equal(t, "1", v.(map[string]any)["x"])
	assert.Same(t, c, cfgSeen.Client)
	assert.Equal(t, "outer", cfgSeen.Endpoint)
	assert.Equal(t, map[string]any{"depth": 1}, cfgSeen.Options)
	assert.NotNil(t, cfgSeen.Logger)
}

func TestGoDeliversOneOutcome(t *testing.T) {
	c := NewClient(mustRegistry(t, Entry{Key: "g", Descriptor: Local(static(getOnly{42}))}))

	ch := c.Go(context.Background(), CallRequest{Endpoint: "g"})
	out, ok := <-ch
	require.True(t, ok)
	assert.NoError(t, out.Err)
	assert.Equal(t, 42, out.Value)
	_, ok = <-ch
	assert.False(t, ok)

	out = <-c.Go(context.Background(), CallRequest{Endpoint: "missing"})
	requireFailure(t, out.Err, http.StatusNotFound, "api endpoint not found")
}
