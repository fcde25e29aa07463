package manifest

import (
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"
)

// Endpoint binds a key to either a remote URL or a registered local handler.
type Endpoint struct {
	Key         string          `toml:"key"`
	URL         string          `toml:"url"`          // remote
	Handler     string          `toml:"handler"`      // local, by registered name
	ContentType string          `toml:"content_type"` // remote request content type
	Transform   string          `toml:"transform"`    // named result transform
	DownAuth    *DownstreamAuth `toml:"downstream_auth"`
	Options     map[string]any  `toml:"options"` // handed to local handler factories
}

type DownstreamAuth struct {
	Type   string `toml:"type"`   // "none" | "static-bearer" | "forward-token"
	Header string `toml:"header"` // default: Authorization
	EnvVar string `toml:"env"`    // static-bearer token source, default: DISPATCH_STATIC_BEARER
}

// Kind reports whether the endpoint is remote or local. Valid after Validate.
func (e Endpoint) Kind() EndpointKind {
	if e.URL != "" {
		return EndpointRemote
	}
	return EndpointLocal
}

// NormalizeKey trims whitespace and surrounding slashes and collapses
// duplicate separators, so "/orders//sub/" becomes "orders/sub".
func NormalizeKey(k string) string {
	k = strings.Trim(strings.TrimSpace(k), "/")
	if k == "" {
		return ""
	}
	return strings.Trim(path.Clean(k), "/")
}

func (e *Endpoint) normalize() error {
	e.Key = NormalizeKey(e.Key)
	if e.Key == "" || e.Key == "." {
		return errors.New("key is required")
	}
	e.URL = strings.TrimSpace(e.URL)
	e.Handler = strings.TrimSpace(e.Handler)
	e.ContentType = strings.TrimSpace(e.ContentType)
	e.Transform = strings.TrimSpace(e.Transform)
	return nil
}

func (e *Endpoint) validate() error {
	switch {
	case e.URL == "" && e.Handler == "":
		return errors.New("one of url or handler is required")
	case e.URL != "" && e.Handler != "":
		return errors.New("url and handler are mutually exclusive")
	}

	if e.URL != "" {
		u, err := url.Parse(e.URL)
		if err != nil {
			return fmt.Errorf("url: %w", err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("url scheme %q not supported", u.Scheme)
		}
		if u.Host == "" {
			return errors.New("url host is required")
		}
	}

	if da := e.DownAuth; da != nil {
		if e.URL == "" {
			return errors.New("downstream_auth only applies to remote endpoints")
		}
		switch da.Type {
		case "", DownAuthNone, DownAuthStaticBearer, DownAuthForwardToken:
		default:
			return fmt.Errorf("downstream_auth.type %q invalid", da.Type)
		}
	}
	return nil
}
