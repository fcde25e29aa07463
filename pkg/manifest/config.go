package manifest

import (
	"errors"
	"fmt"
	"path"
	"strings"
)

// Config is the top-level manifest.
type Config struct {
	Server    Server     `toml:"server"`
	Endpoints []Endpoint `toml:"endpoint"`
}

// Server holds request router settings.
type Server struct {
	Mount        string   `toml:"mount"`          // default "/api"
	RawBody      bool     `toml:"raw_body"`       // attach raw body text as _body
	RequestID    bool     `toml:"request_id"`     // attach X-Request-ID as _request_id
	ExtraHeaders []string `toml:"extra_headers"`  // copied verbatim into params
	BodyLogPaths []string `toml:"body_log_paths"` // access log allowlist for request bodies
}

// Validate normalizes the manifest in place and reports the first problem found.
func (c *Config) Validate() error {
	if len(c.Endpoints) == 0 {
		return errors.New("no endpoints defined")
	}
	if err := c.Server.normalize(); err != nil {
		return fmt.Errorf("server: %w", err)
	}

	seen := make(map[string]int, len(c.Endpoints))
	for i := range c.Endpoints {
		if err := c.Endpoints[i].normalize(); err != nil {
			return fmt.Errorf("endpoint %d: %w", i, err)
		}
		if err := c.Endpoints[i].validate(); err != nil {
			return fmt.Errorf("endpoint %d (%s): %w", i, c.Endpoints[i].Key, err)
		}
		if j, dup := seen[c.Endpoints[i].Key]; dup {
			return fmt.Errorf("endpoint %d: key %q already defined by endpoint %d", i, c.Endpoints[i].Key, j)
		}
		seen[c.Endpoints[i].Key] = i
	}
	return nil
}

// NormalizeMount trims mount, defaults it to DefaultMount, roots it at "/"
// and cleans it, so "api/" and "/api" name the same prefix.
func NormalizeMount(mount string) string {
	m := strings.TrimSpace(mount)
	if m == "" {
		return DefaultMount
	}
	if !strings.HasPrefix(m, "/") {
		m = "/" + m
	}
	return path.Clean(m)
}

func (s *Server) normalize() error {
	m := NormalizeMount(s.Mount)
	if strings.ContainsAny(m, "*{}") {
		return fmt.Errorf("mount %q must be a literal path", s.Mount)
	}
	s.Mount = m

	hdrs := s.ExtraHeaders[:0]
	for _, h := range s.ExtraHeaders {
		h = strings.TrimSpace(h)
		if h == "" {
			continue
		}
		hdrs = append(hdrs, h)
	}
	s.ExtraHeaders = hdrs
	return nil
}
