package serverfx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/joeydtaylor/steeze-dispatch/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
)

type hello struct{}

func (hello) Get(context.Context, core.Params, core.RequestMeta) (any, error) {
	return map[string]any{"hello": "world"}, nil
}

func init() {
	core.RegisterHandler("serverfx.hello", func(core.HandlerConfig) (any, error) { return hello{}, nil })
}

func writeManifest(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "manifest.toml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestModuleServesManifestEndpoints(t *testing.T) {
	t.Setenv("LOG_DIR", t.TempDir())
	t.Setenv("SERVER_LISTEN_ADDRESS", "127.0.0.1:0")
	p := writeManifest(t, `
[server]
mount = "/rpc"

[[endpoint]]
key = "hello"
handler = "serverfx.hello"
`)

	var (
		app    http.Handler
		caller core.Caller
	)
	fxApp := fxtest.New(t,
		Module(WithService("test"), WithManifestPath(p)),
		fx.Invoke(fx.Annotate(func(h http.Handler) { app = h }, fx.ParamTags(`name:"app"`))),
		fx.Populate(&caller),
	)
	fxApp.RequireStart()
	defer fxApp.RequireStop()

	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/rpc/hello", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":{"hello":"world"}}`, rec.Body.String())

	v, err := caller.Call(context.Background(), core.CallRequest{Endpoint: "hello"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"hello": "world"}, v)
}

func TestModuleFailsOnBadManifest(t *testing.T) {
	t.Setenv("LOG_DIR", t.TempDir())
	p := writeManifest(t, `
[[endpoint]]
key = "ghost"
handler = "not.registered"
`)
	app := fx.New(Module(WithManifestPath(p)), fx.NopLogger)
	require.Error(t, app.Err())
	assert.Contains(t, app.Err().Error(), `handler "not.registered" not registered`)
}

func TestManifestPathPrecedence(t *testing.T) {
	cfg := defaultConfig()
	t.Setenv("DISPATCH_MANIFEST", "")
	assert.Equal(t, "manifest.toml", cfg.manifestPath())

	t.Setenv("DISPATCH_MANIFEST", "/etc/dispatch.toml")
	assert.Equal(t, "/etc/dispatch.toml", cfg.manifestPath())

	cfg.ManifestPath = "/tmp/explicit.toml"
	assert.Equal(t, "/tmp/explicit.toml", cfg.manifestPath())
}
