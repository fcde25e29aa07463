// core/cred.go
package core

import (
	"context"

	"github.com/joeydtaylor/steeze-dispatch/pkg/manifest"
)

type DownstreamCredentials struct {
	HeaderName  string
	HeaderValue string
	Extra       map[string]string
}

// CredentialsProvider issues the headers a remote call carries to its endpoint.
type CredentialsProvider interface {
	Issue(ctx context.Context, req CallRequest) (DownstreamCredentials, error)
}

func credsFor(da *manifest.DownstreamAuth) CredentialsProvider {
	if da == nil {
		return nil
	}
	switch da.Type {
	case manifest.DownAuthStaticBearer:
		return StaticBearerProvider{HeaderName: da.Header, EnvVar: da.EnvVar}
	case manifest.DownAuthForwardToken:
		return ForwardTokenProvider{HeaderName: da.Header}
	}
	return NoAuthProvider{}
}
