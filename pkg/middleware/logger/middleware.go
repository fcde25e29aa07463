package logger

import (
	"bytes"
	"io"
	"net/http"
	"strings"
	"time"

	chimd "github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

type Middleware struct {
	access *zap.Logger
}

// NewMiddleware writes one access log line per request to l.
func NewMiddleware(l *zap.Logger) *Middleware {
	if l == nil {
		l = zap.NewNop()
	}
	return &Middleware{access: l}
}

func (m *Middleware) Middleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimd.NewWrapResponseWriter(w, r.ProtoMajor)

			// Read and RESTORE request body so downstream can consume it
			var body []byte
			if r.Body != nil {
				if b, err := io.ReadAll(r.Body); err == nil {
					body = b
				}
				r.Body.Close()
				r.Body = io.NopCloser(bytes.NewReader(body))
			}

			scheme := "http"
			if r.TLS != nil {
				scheme = "https"
			}

			start := time.Now()
			defer func() {
				log := m.access.With(
					zap.String("requestId", chimd.GetReqID(r.Context())),
					zap.String("httpScheme", scheme),
					zap.String("tokenSubject", tokenSubject(r)),
					zap.String("httpProto", r.Proto),
					zap.String("httpMethod", r.Method),
					zap.String("remoteAddr", r.RemoteAddr),
					zap.String("uri", r.URL.Path),
					zap.Duration("lat", time.Since(start)),
					zap.Int("responseSize", ww.BytesWritten()),
					zap.Int("status", ww.Status()),
				)

				// Redact by default; allowlist small JSON bodies only.
				if shouldLogBody(r, body) {
					log.Info("http request", zap.ByteString("requestData", body))
				} else {
					log.Info("http request")
				}
			}()

			next.ServeHTTP(ww, r)
		})
	}
}

// tokenSubject reads the sub claim of a bearer JWT without verifying it.
// The value is informational only and must never drive access decisions.
func tokenSubject(r *http.Request) string {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	scheme, tok, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return ""
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(strings.TrimSpace(tok), claims); err != nil {
		return ""
	}
	sub, _ := claims.GetSubject()
	return sub
}
