// core/router.go
package core

import (
	"net/http"
	"strings"

	chimd "github.com/go-chi/chi/v5/middleware"
	"github.com/joeydtaylor/steeze-dispatch/pkg/core/transform"
	"github.com/joeydtaylor/steeze-dispatch/pkg/manifest"
	hmetrics "github.com/joeydtaylor/steeze-dispatch/pkg/middleware/metrics"
	httpx "github.com/joeydtaylor/steeze-dispatch/pkg/transport/httpx"
	"go.uber.org/zap"
)

// BuildRouter mounts the dispatch entry points for GET, POST, PUT and DELETE
// under srv.Mount. Every request below the mount is resolved against the
// client's registry by longest key prefix.
func BuildRouter(srv manifest.Server, d BuildDeps) http.Handler {
	r := d.Router
	if r == nil {
		r = httpx.NewChi()
	}
	if d.Client == nil {
		d.Client = NewClient(nil)
	}
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	srv.Mount = manifest.NormalizeMount(srv.Mount)

	r.Use(chimd.RequestID, chimd.Recoverer, chimd.Heartbeat("/ping"))
	if d.LogMW != nil {
		r.Use(d.LogMW.Middleware())
	}
	r.Use(hmetrics.Collect())

	if d.Metrics != nil {
		r.Handle(http.MethodGet, "/metrics", d.Metrics)
	}

	ds := &dispatcher{srv: srv, client: d.Client, log: d.Log}
	hmetrics.SetPathNormalizer(ds.metricPath)

	r.Mount(srv.Mount, map[string]http.Handler{
		http.MethodGet:    ds.entry(VerbGet),
		http.MethodPost:   ds.entry(VerbPost),
		http.MethodPut:    ds.entry(VerbPut),
		http.MethodDelete: ds.entry(VerbDelete),
	})
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeFailure(w, errNotFound())
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeFailure(w, errMethodNotSupported())
	})
	return r.Mux()
}

type dispatcher struct {
	srv    manifest.Server
	client *Client
	log    *zap.Logger
}

func (ds *dispatcher) entry(verb Verb) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key, _, ok := ds.client.reg.Resolve(ds.subpath(r))
		if !ok {
			ds.fail(w, r, errNotFound())
			return
		}

		params, meta, err := ds.extract(r)
		if err != nil {
			ds.fail(w, r, AsFailure(err))
			return
		}

		// Results reach the wire as the handler produced them.
		out, err := ds.client.invoke(r.Context(), CallRequest{
			Endpoint:  key,
			Verb:      verb,
			Params:    params,
			Transform: transform.Identity,
		}, meta)
		if err != nil {
			ds.fail(w, r, AsFailure(err))
			return
		}
		writeResult(w, out)
	}
}

func (ds *dispatcher) subpath(r *http.Request) string {
	if ds.srv.Mount == "/" {
		return r.URL.Path
	}
	return strings.TrimPrefix(r.URL.Path, ds.srv.Mount)
}

// metricPath labels requests by resolved endpoint so ids in paths do not
// explode label cardinality.
func (ds *dispatcher) metricPath(r *http.Request) string {
	p := r.URL.Path
	if p != ds.srv.Mount && !strings.HasPrefix(p, strings.TrimSuffix(ds.srv.Mount, "/")+"/") {
		return p
	}
	if key, _, ok := ds.client.reg.Resolve(ds.subpath(r)); ok {
		return strings.TrimSuffix(ds.srv.Mount, "/") + "/" + key
	}
	return p
}

func (ds *dispatcher) fail(w http.ResponseWriter, r *http.Request, f *Failure) {
	if f.IsServerError() {
		ds.log.Error("dispatch failed",
			zap.String("requestId", chimd.GetReqID(r.Context())),
			zap.String("method", r.Method),
			zap.String("uri", r.URL.Path),
			zap.Int("status", f.Status),
			zap.String("message", f.Message),
		)
	}
	writeFailure(w, f)
}
