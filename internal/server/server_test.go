package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/mcncl/jsongraph/internal/diagnostic"
	"github.com/mcncl/jsongraph/internal/formatter"
	"github.com/mcncl/jsongraph/internal/graph"
	"github.com/mcncl/jsongraph/internal/models"
)

func newTestServer(t *testing.T, opts Options) (*Server, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})
	return New(logger, opts), &buf
}

func do(t *testing.T, s *Server, method, target, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t, Options{})
	rec := do(t, s, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name       string
		target     string
		body       string
		headers    map[string]string
		valid      bool
		line       int
		column     int
		suggestion string
	}{
		{
			name:   "valid object",
			target: "/v1/validate",
			body:   `{"a": 1}`,
			valid:  true,
		},
		{
			name:       "trailing comma",
			target:     "/v1/validate",
			body:       `{"a":1,}`,
			line:       1,
			column:     8,
			suggestion: diagnostic.SuggestTrailingComma,
		},
		{
			name:   "empty body",
			target: "/v1/validate",
			body:   "  \n",
			line:   1,
			column: 1,
		},
		{
			name:   "yaml by query",
			target: "/v1/validate?format=yaml",
			body:   "a: 1\nb:\n  - x\n",
			valid:  true,
		},
		{
			name:    "yaml by content type",
			target:  "/v1/validate",
			body:    "a: 1\n",
			headers: map[string]string{"Content-Type": "application/yaml"},
			valid:   true,
		},
		{
			name:    "query beats content type",
			target:  "/v1/validate?format=json",
			body:    "a: 1\n",
			headers: map[string]string{"Content-Type": "application/yaml"},
			line:    1,
			column:  1,
		},
		{
			name:   "toml",
			target: "/v1/validate?format=toml",
			body:   "title = \"x\"\n[owner]\nname = \"y\"\n",
			valid:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestServer(t, Options{})
			rec := do(t, s, http.MethodPost, tt.target, tt.body, tt.headers)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			resp := decodeBody[ValidateResponse](t, rec)
			assert.Equal(t, tt.valid, resp.Valid)
			if tt.valid {
				assert.Nil(t, resp.Diagnostic)
				return
			}
			require.NotNil(t, resp.Diagnostic)
			assert.Equal(t, tt.line, resp.Diagnostic.Line)
			assert.Equal(t, tt.column, resp.Diagnostic.Column)
			assert.Equal(t, tt.suggestion, resp.Diagnostic.Suggestion)
		})
	}
}

func TestValidate_UnsupportedFormat(t *testing.T) {
	s, _ := newTestServer(t, Options{})
	rec := do(t, s, http.MethodPost, "/v1/validate?format=xml", "<a/>", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeBody[ErrorResponse](t, rec)
	assert.Contains(t, resp.Error, "xml")
}

func TestValidate_BodyTooLarge(t *testing.T) {
	s, _ := newTestServer(t, Options{MaxBodyBytes: 8})
	rec := do(t, s, http.MethodPost, "/v1/validate", `{"a": "0123456789"}`, nil)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestValidate_ContextWindow(t *testing.T) {
	s, _ := newTestServer(t, Options{LinesBefore: 0, LinesAfter: 0})
	rec := do(t, s, http.MethodPost, "/v1/validate", "{\n  \"a\": 1\n  \"b\": 2\n}", nil)
	resp := decodeBody[ValidateResponse](t, rec)
	require.NotNil(t, resp.Diagnostic)
	assert.Equal(t, "→   3:   \"b\": 2", resp.Diagnostic.Context)
}

func TestGraph(t *testing.T) {
	s, _ := newTestServer(t, Options{})
	rec := do(t, s, http.MethodPost, "/v1/graph", `{"user":{"id":1},"items":[1,2]}`, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	doc := decodeBody[formatter.GraphDocument](t, rec)
	require.Len(t, doc.Nodes, 6)
	assert.Len(t, doc.Edges, 5)
	assert.Equal(t, "items[2]", doc.Nodes[3].Label)
	assert.Equal(t, models.Position{X: 400, Y: 200}, doc.Nodes[5].Position)
	for _, node := range doc.Nodes {
		assert.False(t, node.Highlighted)
	}

	require.NotNil(t, doc.Stats)
	assert.Equal(t, 6, doc.Stats.Nodes)
	assert.Equal(t, 2, doc.Stats.MaxDepth)
}

func TestGraph_Highlight(t *testing.T) {
	s, _ := newTestServer(t, Options{})
	rec := do(t, s, http.MethodPost, "/v1/graph?highlight=user.id", `{"user":{"id":1},"items":[1,2]}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	doc := decodeBody[formatter.GraphDocument](t, rec)
	var highlighted []string
	for _, node := range doc.Nodes {
		if node.Highlighted {
			highlighted = append(highlighted, node.Path)
		}
	}
	assert.Equal(t, []string{"$.user.id"}, highlighted)
}

func TestGraph_Layout(t *testing.T) {
	s, _ := newTestServer(t, Options{Layout: graph.Layout{HorizontalSpacing: 50, VerticalSpacing: 10}})
	rec := do(t, s, http.MethodPost, "/v1/graph", `[1, 2]`, nil)
	doc := decodeBody[formatter.GraphDocument](t, rec)
	require.Len(t, doc.Nodes, 3)
	assert.Equal(t, models.Position{X: 50, Y: 10}, doc.Nodes[2].Position)
}

func TestGraph_InvalidInput(t *testing.T) {
	s, _ := newTestServer(t, Options{})
	rec := do(t, s, http.MethodPost, "/v1/graph", `["item1", "item2",]`, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	resp := decodeBody[ErrorResponse](t, rec)
	require.NotNil(t, resp.Diagnostic)
	assert.Equal(t, resp.Diagnostic.Message, resp.Error)
	assert.Equal(t, diagnostic.SuggestTrailingComma, resp.Diagnostic.Suggestion)
}

func TestGraph_Msgpack(t *testing.T) {
	s, _ := newTestServer(t, Options{})
	rec := do(t, s, http.MethodPost, "/v1/graph", `{"a": [true]}`, map[string]string{"Accept": "application/msgpack"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/msgpack", rec.Header().Get("Content-Type"))

	var doc formatter.GraphDocument
	require.NoError(t, msgpack.Unmarshal(rec.Body.Bytes(), &doc))
	require.Len(t, doc.Nodes, 3)
	assert.Equal(t, "$.a[0]", doc.Nodes[2].Path)
}

func TestSearch(t *testing.T) {
	body := `{"user":{"id":1},"items":[1,2]}`

	tests := []struct {
		name   string
		query  string
		body   string
		status int
		path   string
	}{
		{"exact", "$.items[1]", body, http.StatusOK, "$.items[1]"},
		{"substring", "ITEMS", body, http.StatusOK, "$.items"},
		{"no match", "address", body, http.StatusNotFound, ""},
		{"blank query", "%20%20", body, http.StatusBadRequest, ""},
		{"invalid input", "user", `{"user":`, http.StatusUnprocessableEntity, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestServer(t, Options{})
			rec := do(t, s, http.MethodPost, "/v1/search?q="+tt.query, tt.body, nil)
			require.Equal(t, tt.status, rec.Code, rec.Body.String())

			if tt.status != http.StatusOK {
				resp := decodeBody[ErrorResponse](t, rec)
				assert.NotEmpty(t, resp.Error)
				if tt.status == http.StatusNotFound {
					assert.Equal(t, NoMatchMessage, resp.Error)
				}
				return
			}
			node := decodeBody[models.GraphNode](t, rec)
			assert.Equal(t, tt.path, node.Path)
			assert.True(t, node.Highlighted)
		})
	}
}

func TestMethodNotAllowed(t *testing.T) {
	s, _ := newTestServer(t, Options{})
	rec := do(t, s, http.MethodGet, "/v1/graph", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRequestID(t *testing.T) {
	s, buf := newTestServer(t, Options{})

	rec := do(t, s, http.MethodGet, "/healthz", "", nil)
	id := rec.Header().Get(RequestIDHeader)
	_, err := uuid.Parse(id)
	require.NoError(t, err, "generated id %q", id)
	assert.Contains(t, buf.String(), "request_id="+id)
	assert.Contains(t, buf.String(), "path=/healthz")
	assert.Contains(t, buf.String(), "status=200")

	incoming := uuid.NewString()
	rec = do(t, s, http.MethodGet, "/healthz", "", map[string]string{RequestIDHeader: incoming})
	assert.Equal(t, incoming, rec.Header().Get(RequestIDHeader))

	rec = do(t, s, http.MethodGet, "/healthz", "", map[string]string{RequestIDHeader: "not-a-uuid"})
	assert.NotEqual(t, "not-a-uuid", rec.Header().Get(RequestIDHeader))
}

func TestServe_ShutsDownOnCancel(t *testing.T) {
	s, _ := newTestServer(t, Options{ReadTimeout: time.Second, WriteTimeout: time.Second})
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- s.Serve(ctx, listener)
	}()

	resp, err := http.Get("http://" + listener.Addr().String() + "/healthz")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, "ok", string(body))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestListenAndServe_BadAddress(t *testing.T) {
	s, _ := newTestServer(t, Options{})
	err := s.ListenAndServe(context.Background(), "256.0.0.1:bad")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to listen")
}
