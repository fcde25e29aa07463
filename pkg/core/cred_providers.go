// pkg/core/cred_providers.go
package core

import (
	"context"
	"os"
	"strings"
)

const defaultStaticBearerEnv = "DISPATCH_STATIC_BEARER"

type NoAuthProvider struct{}

func (NoAuthProvider) Issue(context.Context, CallRequest) (DownstreamCredentials, error) {
	return DownstreamCredentials{}, nil
}

type StaticBearerProvider struct {
	HeaderName string // default: "Authorization"
	EnvVar     string // default: DISPATCH_STATIC_BEARER
}

func (p StaticBearerProvider) Issue(context.Context, CallRequest) (DownstreamCredentials, error) {
	env := p.EnvVar
	if env == "" {
		env = defaultStaticBearerEnv
	}
	val := strings.TrimSpace(os.Getenv(env))
	if val == "" {
		return DownstreamCredentials{}, nil
	}
	return DownstreamCredentials{HeaderName: headerOr(p.HeaderName), HeaderValue: bearer(val)}, nil
}

// ForwardTokenProvider relays the caller's own bearer token, taken from the
// _auth_token param the router extracts from the inbound request.
type ForwardTokenProvider struct {
	HeaderName string // default: "Authorization"
}

func (p ForwardTokenProvider) Issue(_ context.Context, req CallRequest) (DownstreamCredentials, error) {
	tok, _ := req.Params.GetString(KeyAuthToken)
	if tok == "" {
		return DownstreamCredentials{}, nil
	}
	return DownstreamCredentials{HeaderName: headerOr(p.HeaderName), HeaderValue: bearer(tok)}, nil
}

func headerOr(h string) string {
	if h == "" {
		return "Authorization"
	}
	return h
}

func bearer(tok string) string {
	if strings.HasPrefix(tok, "Bearer ") {
		return tok
	}
	return "Bearer " + tok
}
