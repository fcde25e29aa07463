package core

import (
	"context"
	"net/http"
	"time"

	"github.com/joeydtaylor/steeze-dispatch/pkg/core/transform"
	"github.com/joeydtaylor/steeze-dispatch/pkg/manifest"
	hmetrics "github.com/joeydtaylor/steeze-dispatch/pkg/middleware/metrics"
	httpx "github.com/joeydtaylor/steeze-dispatch/pkg/transport/httpx"
	"go.uber.org/zap"
)

// Client invokes endpoints by key without the caller knowing whether they
// are served in this process or over HTTP. It is safe for concurrent use.
type Client struct {
	reg       *Registry
	doer      httpx.Doer
	log       *zap.Logger
	instances *instanceCache
}

type Option func(*Client)

// WithHTTPDoer sets the outbound client for remote endpoints.
func WithHTTPDoer(d httpx.Doer) Option { return func(c *Client) { c.doer = d } }

func WithLogger(l *zap.Logger) Option { return func(c *Client) { c.log = l } }

func NewClient(reg *Registry, opts ...Option) *Client {
	c := &Client{reg: reg, instances: newInstanceCache()}
	for _, o := range opts {
		o(c)
	}
	if c.reg == nil {
		c.reg, _ = NewRegistry()
	}
	if c.doer == nil {
		c.doer = httpx.NewHTTPClient()
	}
	if c.log == nil {
		c.log = zap.NewNop()
	}
	return c
}

func (c *Client) Registry() *Registry { return c.reg }

// Call performs exactly one local invocation or one HTTP request. Failures
// are always *Failure. ctx cancels the call but no timeout is imposed.
func (c *Client) Call(ctx context.Context, req CallRequest) (any, error) {
	return c.invoke(ctx, req, RequestMeta{})
}

// Go runs Call on its own goroutine. The channel yields one Outcome and closes.
func (c *Client) Go(ctx context.Context, req CallRequest) <-chan Outcome {
	ch := make(chan Outcome, 1)
	go func() {
		defer close(ch)
		v, err := c.Call(ctx, req)
		ch <- Outcome{Value: v, Err: err}
	}()
	return ch
}

func (c *Client) invoke(ctx context.Context, req CallRequest, meta RequestMeta) (any, error) {
	start := time.Now()
	req = req.withDefaults()
	key := manifest.NormalizeKey(req.Endpoint)

	d, ok := c.reg.Lookup(key)
	if !ok {
		return nil, errNotFound()
	}

	var (
		out any
		err error
	)
	switch d.Kind {
	case KindRemote:
		out, err = c.callRemote(ctx, d, req)
	default:
		out, err = c.callLocal(ctx, key, d, req, meta)
	}
	if err == nil {
		out, err = pickTransform(req, d)(out)
	}

	code := http.StatusOK
	if err != nil {
		f := AsFailure(err)
		code = f.Status
		err = f
	}
	hmetrics.ObserveCall(key, d.Kind.String(), code, time.Since(start))
	if err != nil {
		return nil, err
	}
	return out, nil
}

func pickTransform(req CallRequest, d Descriptor) transform.Func {
	switch {
	case req.Transform != nil:
		return req.Transform
	case d.Transform != nil:
		return d.Transform
	}
	return transform.Identity
}

func (c *Client) callLocal(ctx context.Context, key string, d Descriptor, req CallRequest, meta RequestMeta) (out any, err error) {
	h, err := c.instances.getOrCreate(key, func() (any, error) {
		h, err := d.Factory(HandlerConfig{
			Client:   c,
			Logger:   c.log.With(zap.String("endpoint", key)),
			Endpoint: key,
			Options:  d.Options,
		})
		if err == nil && h != nil {
			hmetrics.HandlerCreated(key)
			c.log.Info("handler created", zap.String("endpoint", key))
		}
		return h, err
	})
	if err != nil {
		c.log.Error("handler construction failed", zap.String("endpoint", key), zap.Error(err))
		return nil, err
	}

	defer func() {
		if r := recover(); r != nil {
			c.log.Error("handler panicked", zap.String("endpoint", key), zap.Any("panic", r))
			out, err = nil, Errorf(http.StatusInternalServerError, "handler panicked: %v", r)
		}
	}()
	return invokeVerb(ctx, h, req.Verb, req.Params, meta)
}
