package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/quarryql/quarry/internal/engine"
	"github.com/quarryql/quarry/internal/schema"
	"github.com/quarryql/quarry/internal/source"
)

func testHandler(t *testing.T, opts ...Option) *Handler {
	t.Helper()
	s := schema.New("Query")
	s.AddType(schema.NewType("Query", schema.TypeKindObject).
		AddField(schema.NewField("users", schema.ListType(schema.NonNullType(schema.NamedType("User"))))))
	s.AddType(schema.NewType("User", schema.TypeKindObject).
		AddField(schema.NewField("id", schema.NonNullType(schema.NamedType(schema.ScalarInt)))).
		AddField(schema.NewField("name", schema.NonNullType(schema.NamedType(schema.ScalarString)))))

	src := source.NewMemory(map[string]any{
		"users": []any{
			map[string]any{"id": int64(1), "name": "Ada"},
		},
	})
	return New(engine.New(s), src, opts...)
}

func postJSON(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/query", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestServePost(t *testing.T) {
	w := postJSON(t, testHandler(t), `{"query": "{ users { id name } }"}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))
	require.JSONEq(t, `{"data":{"users":[{"id":1,"name":"Ada"}]}}`, w.Body.String())
}

func TestServeGet(t *testing.T) {
	h := testHandler(t)
	q := url.Values{"query": {"{ users { id } }"}}
	req := httptest.NewRequest(http.MethodGet, "/query?"+q.Encode(), nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"data":{"users":[{"id":1}]}}`, w.Body.String())
}

func TestServeCompileError(t *testing.T) {
	w := postJSON(t, testHandler(t), `{"query": "{ nope }"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var out struct {
		Data   any `json:"data"`
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	require.Nil(t, out.Data)
	require.Len(t, out.Errors, 1)
	require.Equal(t, "Field 'nope' not found on type 'Query'", out.Errors[0].Message)
}

func TestServeBatch(t *testing.T) {
	w := postJSON(t, testHandler(t), `[{"query": "{ users { id } }"}, {"query": "{ users { name } }"}]`)
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `[{"data":{"users":[{"id":1}]}},{"data":{"users":[{"name":"Ada"}]}}]`, w.Body.String())
}

func TestServeMissingQuery(t *testing.T) {
	w := postJSON(t, testHandler(t), `{}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "missing 'query'")
}

func TestServeInvalidJSON(t *testing.T) {
	w := postJSON(t, testHandler(t), `{`)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestServeMethodNotAllowed(t *testing.T) {
	req := httptest.NewRequest(http.MethodDelete, "/query", nil)
	w := httptest.NewRecorder()
	testHandler(t).ServeHTTP(w, req)
	require.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestServeBodyLimit(t *testing.T) {
	h := testHandler(t, WithMaxBodyBytes(16))
	w := postJSON(t, h, `{"query": "{ users { id name } }"}`)
	require.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestServeVariables(t *testing.T) {
	h := testHandler(t)
	body := `{"query": "query ($n: String!) { users { id } }", "variables": {"n": "x"}}`
	w := postJSON(t, h, body)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestServeCORS(t *testing.T) {
	h := testHandler(t, WithCORS("https://example.com"))

	req := httptest.NewRequest(http.MethodOptions, "/query", nil)
	req.Header.Set("Origin", "https://example.com")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusNoContent, w.Code)
	require.Equal(t, "https://example.com", w.Header().Get("Access-Control-Allow-Origin"))

	// Unlisted origins get no CORS headers.
	req = httptest.NewRequest(http.MethodOptions, "/query", nil)
	req.Header.Set("Origin", "https://evil.example")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestServePretty(t *testing.T) {
	h := testHandler(t, WithPretty())
	w := postJSON(t, h, `{"query": "{ users { id } }"}`)
	require.Contains(t, w.Body.String(), "\n  ")
}
