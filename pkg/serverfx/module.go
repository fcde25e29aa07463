package serverfx

import (
	"context"
	"crypto/tls"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/joeydtaylor/steeze-dispatch/pkg/bundlefx"
	"github.com/joeydtaylor/steeze-dispatch/pkg/core"
	"github.com/joeydtaylor/steeze-dispatch/pkg/manifest"
	"github.com/joeydtaylor/steeze-dispatch/pkg/middleware/logger"
	"github.com/joeydtaylor/steeze-dispatch/pkg/transport/httpx"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// ---------- Options ----------

type Config struct {
	Service         string // for logs only
	ManifestEnv     string // DISPATCH_MANIFEST
	DefaultManifest string // "manifest.toml"
	ManifestPath    string // wins over ManifestEnv when set
	ListenEnv       string // SERVER_LISTEN_ADDRESS
	DefaultListen   string // ":4000"
	TLSCertEnv      string // SSL_SERVER_CERTIFICATE
	TLSKeyEnv       string // SSL_SERVER_KEY
}

type Option func(*Config)

func WithService(s string) Option            { return func(c *Config) { c.Service = s } }
func WithManifestEnv(k string) Option        { return func(c *Config) { c.ManifestEnv = k } }
func WithDefaultManifest(path string) Option { return func(c *Config) { c.DefaultManifest = path } }
func WithManifestPath(path string) Option    { return func(c *Config) { c.ManifestPath = path } }
func WithListenEnv(k string) Option          { return func(c *Config) { c.ListenEnv = k } }
func WithDefaultListen(addr string) Option   { return func(c *Config) { c.DefaultListen = addr } }
func WithTLSCertKeyEnv(cert, key string) Option {
	return func(c *Config) { c.TLSCertEnv, c.TLSKeyEnv = cert, key }
}

func defaultConfig() Config {
	return Config{
		Service:         "dispatch",
		ManifestEnv:     "DISPATCH_MANIFEST",
		DefaultManifest: "manifest.toml",
		ListenEnv:       "SERVER_LISTEN_ADDRESS",
		DefaultListen:   ":4000",
		TLSCertEnv:      "SSL_SERVER_CERTIFICATE",
		TLSKeyEnv:       "SSL_SERVER_KEY",
	}
}

func (c Config) manifestPath() string {
	if c.ManifestPath != "" {
		return c.ManifestPath
	}
	return envOr(c.ManifestEnv, c.DefaultManifest)
}

// Module returns a complete Fx option set; add app-specific fx.Invoke(...) alongside.
// Local handlers must be registered with core.RegisterHandler before the app starts.
func Module(opts ...Option) fx.Option {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}
	return fx.Options(
		// Logger, access log and metrics handler
		bundlefx.Module,
		// Transport
		fx.Provide(httpx.NewChi),
		fx.Provide(httpx.NewHTTPClient),
		// Config into DI
		fx.Provide(func() Config { return cfg }),
		// Dispatch engine
		fx.Provide(provideManifest),
		fx.Provide(provideClient),
		fx.Provide(func(c *core.Client) core.Caller { return c }),
		// Router
		fx.Provide(fx.Annotate(
			provideRouter,
			fx.ParamTags(``, ``, ``, `name:"metrics"`, ``, ``), // man,c,lm,m,r,zl
			fx.ResultTags(`name:"app"`),
		)),
		// Lifecycle
		fx.Invoke(registerHooks),
	)
}

// ---------- Dispatch engine ----------

func provideManifest(cfg Config, zl *zap.Logger) (manifest.Config, error) {
	path := cfg.manifestPath()
	man, err := core.LoadConfig(path)
	if err != nil {
		zl.Error("manifest load failed", zap.Error(err), zap.String("path", path))
		return manifest.Config{}, err
	}
	zl.Info("manifest loaded",
		zap.String("service", cfg.Service),
		zap.String("path", path),
		zap.Int("endpoints", len(man.Endpoints)),
	)
	return man, nil
}

func provideClient(man manifest.Config, doer httpx.Doer, zl *zap.Logger) (*core.Client, error) {
	reg, err := core.BuildRegistry(man)
	if err != nil {
		return nil, err
	}
	return core.NewClient(reg, core.WithHTTPDoer(doer), core.WithLogger(zl)), nil
}

// ---------- Router ----------

func provideRouter(
	man manifest.Config,
	c *core.Client,
	lm *logger.Middleware,
	/* name:"metrics" */ m http.Handler,
	r httpx.Router,
	zl *zap.Logger,
) http.Handler {
	return core.BuildRouter(man.Server, core.BuildDeps{
		Client:  c,
		LogMW:   lm,
		Metrics: m,
		Router:  r,
		Log:     zl,
	})
}

// ---------- Lifecycle ----------

type serverDeps struct {
	fx.In
	Logger *zap.Logger
	App    http.Handler `name:"app"`
}

func registerHooks(lc fx.Lifecycle, cfg Config, d serverDeps) {
	addr := envOr(cfg.ListenEnv, cfg.DefaultListen)
	cert := os.Getenv(cfg.TLSCertEnv)
	key := os.Getenv(cfg.TLSKeyEnv)

	srv := &http.Server{
		Addr:         addr,
		Handler:      d.App,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
		TLSConfig:    &tls.Config{MinVersion: tls.VersionTLS13, MaxVersion: tls.VersionTLS13},
	}
	useTLS := fileExists(cert) && fileExists(key)

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			if useTLS {
				d.Logger.Info("server starting (TLS)",
					zap.String("service", cfg.Service),
					zap.String("addr", addr),
					zap.String("cert", cert),
				)
				go func() {
					if err := srv.ListenAndServeTLS(cert, key); err != nil && !errors.Is(err, http.ErrServerClosed) {
						d.Logger.Fatal("server failed", zap.Error(err))
					}
				}()
				return nil
			}
			d.Logger.Info("server starting (PLAINTEXT)",
				zap.String("service", cfg.Service),
				zap.String("addr", addr),
			)
			srv.TLSConfig = nil
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					d.Logger.Fatal("server failed", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			d.Logger.Info("server stopping", zap.String("service", cfg.Service))
			return srv.Shutdown(ctx)
		},
	})
}

// ---------- tiny helpers ----------

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func fileExists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}
