package core

import (
	"fmt"
	"net/http"

	"github.com/joeydtaylor/steeze-dispatch/pkg/codec"
)

// writeResult applies the success envelope: _redirect, then _raw, then a
// pre-wrapped data member, else {"data": out}.
func writeResult(w http.ResponseWriter, out any) {
	if m, ok := asObject(out); ok {
		if u, ok := m[KeyRedirect]; ok {
			w.Header().Set("Location", fmt.Sprint(u))
			w.WriteHeader(http.StatusFound)
			return
		}
		if raw, ok := m[KeyRaw]; ok {
			writeRaw(w, raw)
			return
		}
		if _, ok := m[KeyData]; ok {
			writeJSON(w, m, http.StatusOK)
			return
		}
	}
	writeJSON(w, map[string]any{KeyData: out}, http.StatusOK)
}

func asObject(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case Params:
		return m, true
	}
	return nil, false
}

func writeRaw(w http.ResponseWriter, v any) {
	switch b := v.(type) {
	case string:
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(b))
	case []byte:
		w.Header().Set("Content-Type", "application/octet-stream")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(b)
	default:
		writeJSON(w, v, http.StatusOK)
	}
}

func writeFailure(w http.ResponseWriter, f *Failure) {
	writeJSON(w, map[string]any{"error": f}, f.Status)
}

func writeJSON(w http.ResponseWriter, v any, status int) {
	payload, err := codec.JSON.Marshal(v)
	if err != nil {
		status = http.StatusInternalServerError
		payload, _ = codec.JSON.Marshal(map[string]any{
			"error": NewFailure(status, "encode response: "+err.Error()),
		})
	}
	w.Header().Set("Content-Type", codec.JSON.ContentType())
	w.WriteHeader(status)
	_, _ = w.Write(payload)
}
