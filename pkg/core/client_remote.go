package core

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"reflect"
	"strings"

	chimd "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/joeydtaylor/steeze-dispatch/pkg/codec"
	"go.uber.org/zap"
)

const formContentType = "application/x-www-form-urlencoded"

func (c *Client) callRemote(ctx context.Context, d Descriptor, req CallRequest) (any, error) {
	if !req.Verb.supported() {
		return nil, errMethodNotSupported()
	}
	ct := firstNonEmpty(req.ContentType, d.ContentType, codec.JSON.ContentType())

	u, err := url.Parse(d.URL)
	if err != nil {
		return nil, Errorf(http.StatusInternalServerError, "endpoint url: %v", err)
	}

	var body io.Reader
	switch req.Verb {
	case VerbGet, VerbDelete:
		q := u.Query()
		addValues(q, req.Params)
		u.RawQuery = q.Encode()
	case VerbPost, VerbPut:
		b, err := encodeBody(ct, req.Params)
		if err != nil {
			return nil, Errorf(http.StatusInternalServerError, "encode params: %v", err)
		}
		body = bytes.NewReader(b)
	}

	httpReq, err := http.NewRequestWithContext(ctx, strings.ToUpper(string(req.Verb)), u.String(), body)
	if err != nil {
		return nil, NewFailure(http.StatusInternalServerError, err.Error())
	}
	httpReq.Header.Set("Content-Type", ct)
	httpReq.Header.Set("Accept", codec.JSON.ContentType())
	httpReq.Header.Set("X-Request-ID", outboundRequestID(ctx, req.Params))

	if d.Creds != nil {
		creds, err := d.Creds.Issue(ctx, req)
		if err != nil {
			return nil, Errorf(http.StatusInternalServerError, "downstream credentials: %v", err)
		}
		if creds.HeaderName != "" && creds.HeaderValue != "" {
			httpReq.Header.Set(creds.HeaderName, creds.HeaderValue)
		}
		for k, v := range creds.Extra {
			httpReq.Header.Set(k, v)
		}
	}

	resp, err := c.doer.Do(httpReq)
	if err != nil {
		c.log.Warn("remote call failed", zap.String("url", d.URL), zap.Error(err))
		return nil, NewFailure(http.StatusInternalServerError, err.Error())
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewFailure(http.StatusInternalServerError, err.Error())
	}
	return decodeRemote(resp.StatusCode, raw)
}

// decodeRemote unwraps a remote response. Successful JSON bodies yield their
// data member when present, the whole document otherwise. Non-JSON bodies
// yield their text.
func decodeRemote(status int, raw []byte) (any, error) {
	if status < 200 || status > 299 {
		if m, ok, err := codec.DecodeObject(raw); err == nil && ok {
			if e, ok := m["error"].(map[string]any); ok {
				code := status
				if n, ok := toInt(e["code"]); ok {
					code = n
				}
				msg, _ := e["message"].(string)
				return nil, NewFailure(code, msg)
			}
		}
		return nil, NewFailure(status, http.StatusText(status))
	}

	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}
	var v any
	if err := codec.JSON.Unmarshal(raw, &v); err != nil {
		return string(raw), nil
	}
	if m, ok := v.(map[string]any); ok {
		if data, has := m[KeyData]; has {
			return data, nil
		}
	}
	return v, nil
}

func encodeBody(ct string, p Params) ([]byte, error) {
	if mt, _, _ := mime.ParseMediaType(ct); mt == formContentType {
		v := url.Values{}
		addValues(v, p)
		return []byte(v.Encode()), nil
	}
	return codec.JSON.Marshal(outbound(p))
}

// addValues flattens params into v. Lists repeat the key; objects are sent
// as JSON text.
func addValues(v url.Values, p Params) {
	for k, x := range outbound(p) {
		switch t := x.(type) {
		case nil:
		case []string:
			for _, s := range t {
				v.Add(k, s)
			}
		case []any:
			for _, e := range t {
				v.Add(k, scalarString(e))
			}
		default:
			v.Add(k, scalarString(x))
		}
	}
}

func scalarString(x any) string {
	switch t := x.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	}
	switch reflect.ValueOf(x).Kind() {
	case reflect.Map, reflect.Struct, reflect.Slice, reflect.Array:
		if b, err := codec.JSON.Marshal(x); err == nil {
			return string(b)
		}
	}
	return fmt.Sprint(x)
}

// outbound drops the params that travel as headers instead.
func outbound(p Params) Params {
	out := make(Params, len(p))
	for k, v := range p {
		switch k {
		case KeyAuthToken, KeyRequestID, KeyBody:
			continue
		}
		out[k] = v
	}
	return out
}

func outboundRequestID(ctx context.Context, p Params) string {
	if id, _ := p.GetString(KeyRequestID); id != "" {
		return id
	}
	if id := chimd.GetReqID(ctx); id != "" {
		return id
	}
	return uuid.NewString()
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case json.Number:
		i, err := n.Int64()
		return int(i), err == nil
	case float64:
		return int(n), true
	case int:
		return n, true
	}
	return 0, false
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
