package core

import (
	"context"
	"net/http"
	"strings"

	"github.com/joeydtaylor/steeze-dispatch/pkg/core/transform"
	"go.uber.org/zap"
)

// Reserved keys shared by params and results.
const (
	KeyData      = "data"
	KeyRaw       = "_raw"
	KeyRedirect  = "_redirect"
	KeyBody      = "_body"
	KeyAuthToken = "_auth_token"
	KeyRequestID = "_request_id"
)

// Params is the uniform, order-insensitive parameter object handed to handlers.
type Params map[string]any

// GetString returns the value under k when it is a string.
func (p Params) GetString(k string) (string, bool) {
	s, ok := p[k].(string)
	return s, ok
}

type Verb string

const (
	VerbGet    Verb = "get"
	VerbPost   Verb = "post"
	VerbPut    Verb = "put"
	VerbDelete Verb = "delete"
)

// ParseVerb lowercases v. Unknown verbs are kept so callers can reject them.
func ParseVerb(v string) Verb { return Verb(strings.ToLower(strings.TrimSpace(v))) }

func (v Verb) supported() bool {
	switch v {
	case VerbGet, VerbPost, VerbPut, VerbDelete:
		return true
	}
	return false
}

// RequestMeta describes the inbound HTTP request, when there is one.
// It is zero for calls made through the Client.
type RequestMeta struct {
	OriginalURL string
	BaseURL     string
	AuthToken   string
	RequestID   string
	Header      http.Header
}

// Capability interfaces. A handler implements the verbs it supports.
type (
	Getter interface {
		Get(ctx context.Context, p Params, m RequestMeta) (any, error)
	}
	Poster interface {
		Post(ctx context.Context, p Params, m RequestMeta) (any, error)
	}
	Putter interface {
		Put(ctx context.Context, p Params, m RequestMeta) (any, error)
	}
	Deleter interface {
		Delete(ctx context.Context, p Params, m RequestMeta) (any, error)
	}
)

// Caller is the client contract injected into handlers.
type Caller interface {
	Call(ctx context.Context, req CallRequest) (any, error)
}

// HandlerConfig is passed to a Factory on first use of an endpoint.
type HandlerConfig struct {
	Client   Caller
	Logger   *zap.Logger
	Endpoint string
	Options  map[string]any
}

// Factory constructs a handler instance. The returned value must implement
// at least one of Getter, Poster, Putter or Deleter.
type Factory func(HandlerConfig) (any, error)

type CallRequest struct {
	Endpoint    string
	Verb        Verb
	Params      Params
	ContentType string
	Transform   transform.Func
}

// withDefaults fills Verb and Params. ContentType and Transform stay empty
// here because the endpoint descriptor may supply them.
func (r CallRequest) withDefaults() CallRequest {
	if r.Verb == "" {
		r.Verb = VerbGet
	} else {
		r.Verb = ParseVerb(string(r.Verb))
	}
	if r.Params == nil {
		r.Params = Params{}
	}
	return r
}

// Outcome is delivered by Client.Go. Exactly one of Value or Err is meaningful.
type Outcome struct {
	Value any
	Err   error
}

// Raw marks v to be written to the HTTP response without the data envelope.
func Raw(v any) map[string]any { return map[string]any{KeyRaw: v} }

// Redirect makes the router answer with a 302 to url.
func Redirect(url string) map[string]any { return map[string]any{KeyRedirect: url} }

// invokeVerb calls the capability matching verb on h.
func invokeVerb(ctx context.Context, h any, verb Verb, p Params, m RequestMeta) (any, error) {
	switch verb {
	case VerbGet:
		if g, ok := h.(Getter); ok {
			return g.Get(ctx, p, m)
		}
	case VerbPost:
		if g, ok := h.(Poster); ok {
			return g.Post(ctx, p, m)
		}
	case VerbPut:
		if g, ok := h.(Putter); ok {
			return g.Put(ctx, p, m)
		}
	case VerbDelete:
		if g, ok := h.(Deleter); ok {
			return g.Delete(ctx, p, m)
		}
	}
	return nil, errMethodNotAvailable()
}
