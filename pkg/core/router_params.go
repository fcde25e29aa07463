package core

import (
	"bytes"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"github.com/joeydtaylor/steeze-dispatch/pkg/codec"
)

// extract merges every request source into one Params. Later sources win:
// body, query, raw body, bearer token, request id, extra headers.
func (ds *dispatcher) extract(r *http.Request) (Params, RequestMeta, error) {
	p := Params{}

	var raw []byte
	if r.Body != nil {
		b, err := io.ReadAll(r.Body)
		if err != nil {
			return nil, RequestMeta{}, NewFailure(http.StatusBadRequest, msgInvalidBody)
		}
		raw = b
	}
	if err := mergeBody(p, r.Header.Get("Content-Type"), raw); err != nil {
		return nil, RequestMeta{}, err
	}
	mergeValues(p, r.URL.Query())

	if ds.srv.RawBody {
		p[KeyBody] = string(raw)
	}

	meta := RequestMeta{
		OriginalURL: r.URL.RequestURI(),
		BaseURL:     ds.srv.Mount,
		Header:      r.Header.Clone(),
	}
	if tok := bearerToken(r.Header.Get("Authorization")); tok != "" {
		p[KeyAuthToken] = tok
		meta.AuthToken = tok
	}
	if ds.srv.RequestID {
		if id := r.Header.Get("X-Request-ID"); id != "" {
			p[KeyRequestID] = id
			meta.RequestID = id
		}
	}
	for _, h := range ds.srv.ExtraHeaders {
		if v := r.Header.Get(h); v != "" {
			p[h] = v
		}
	}
	return p, meta, nil
}

// mergeBody decodes JSON objects and URL-encoded forms. Other media types
// and JSON documents that are not objects contribute nothing. A body sent
// without a Content-Type is merged only when it happens to be a JSON object.
func mergeBody(p Params, contentType string, raw []byte) error {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	mt, _, _ := mime.ParseMediaType(contentType)
	switch {
	case mt == formContentType:
		vals, err := url.ParseQuery(string(raw))
		if err != nil {
			return NewFailure(http.StatusBadRequest, msgInvalidBody)
		}
		mergeValues(p, vals)
	case mt == "":
		if m, ok, err := codec.DecodeObject(raw); err == nil && ok {
			for k, v := range m {
				p[k] = v
			}
		}
	case mt == "application/json" || strings.HasSuffix(mt, "+json"):
		m, ok, err := codec.DecodeObject(raw)
		if err != nil {
			return NewFailure(http.StatusBadRequest, msgInvalidBody)
		}
		if ok {
			for k, v := range m {
				p[k] = v
			}
		}
	}
	return nil
}

// mergeValues stores single values as strings and repeated ones as []string.
func mergeValues(p Params, vals url.Values) {
	for k, vs := range vals {
		switch len(vs) {
		case 0:
		case 1:
			p[k] = vs[0]
		default:
			p[k] = append([]string(nil), vs...)
		}
	}
}

func bearerToken(h string) string {
	scheme, tok, ok := strings.Cut(strings.TrimSpace(h), " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return ""
	}
	return strings.TrimSpace(tok)
}
