package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	"github.com/go-chi/chi/v5"

	mw "github.com/perola/clusterd/internal/api/middleware"
	"github.com/perola/clusterd/internal/api/response"
)

// newRequest creates a new HTTP request with an optional JSON body.
func newRequest(method, target string, body any) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	r := httptest.NewRequest(method, target, &buf)
	r.Header.Set("Content-Type", "application/json")
	return r
}

// newRequestRaw creates a new HTTP request with a raw string body.
func newRequestRaw(method, target, body string) *http.Request {
	r := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	r.Header.Set("Content-Type", "application/json")
	return r
}

// withChiURLParam adds a chi URL parameter to the request context.
func withChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// withIdentity injects a caller identity the way the Identify middleware does.
func withIdentity(r *http.Request, email string, controller bool) *http.Request {
	return r.WithContext(mw.WithIdentity(r.Context(), &mw.Identity{Email: email, IsController: controller}))
}

// decodeError parses the JSON error envelope from a recorded response.
func decodeError(rec *httptest.ResponseRecorder) response.ErrorDetail {
	var body response.ErrorBody
	json.Unmarshal(rec.Body.Bytes(), &body)
	return body.Error
}

const validClusterID = "3f1f8b52-7a4e-4f9a-b1d2-9c8e7a6b5c4d"
