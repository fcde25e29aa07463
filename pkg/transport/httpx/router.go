// pkg/transport/httpx/router.go
package httpx

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

// Router is the minimal HTTP router contract the dispatch server depends on.
// transport/httpx.NewChi implements this.
type Router interface {
	Handle(method, path string, h http.Handler)
	// Mount binds each method handler to prefix and everything below it.
	Mount(prefix string, byMethod map[string]http.Handler)
	NotFound(h http.HandlerFunc)
	MethodNotAllowed(h http.HandlerFunc)
	Use(mw ...func(http.Handler) http.Handler)
	Mux() http.Handler
}

// chiRouter is our default Router backed by github.com/go-chi/chi.
type chiRouter struct{ r *chi.Mux }

// NewChi returns a Chi-backed Router.
func NewChi() Router { return &chiRouter{r: chi.NewRouter()} }

func (c *chiRouter) Handle(method, path string, h http.Handler) { c.r.Method(method, path, h) }

func (c *chiRouter) Mount(prefix string, byMethod map[string]http.Handler) {
	prefix = "/" + strings.Trim(prefix, "/")
	wildcard := strings.TrimSuffix(prefix, "/") + "/*"
	for method, h := range byMethod {
		if prefix != "/" {
			c.r.Method(method, prefix, h)
		}
		c.r.Method(method, wildcard, h)
	}
}

func (c *chiRouter) NotFound(h http.HandlerFunc)               { c.r.NotFound(h) }
func (c *chiRouter) MethodNotAllowed(h http.HandlerFunc)       { c.r.MethodNotAllowed(h) }
func (c *chiRouter) Use(mw ...func(http.Handler) http.Handler) { c.r.Use(mw...) }
func (c *chiRouter) Mux() http.Handler                         { return c.r }
