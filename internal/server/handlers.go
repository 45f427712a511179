package server

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/mcncl/jsongraph/internal/analyzer"
	"github.com/mcncl/jsongraph/internal/diagnostic"
	"github.com/mcncl/jsongraph/internal/formatter"
	"github.com/mcncl/jsongraph/internal/graph"
	"github.com/mcncl/jsongraph/internal/models"
	"github.com/mcncl/jsongraph/internal/parser"
)

const (
	contentTypeJSON    = "application/json"
	contentTypeMsgpack = "application/msgpack"

	// NoMatchMessage is returned when a search finds nothing.
	NoMatchMessage = "No match found."
)

// ValidateResponse is the body of /v1/validate.
type ValidateResponse struct {
	Valid      bool               `json:"valid" msgpack:"valid"`
	Diagnostic *models.Diagnostic `json:"diagnostic,omitempty" msgpack:"diagnostic,omitempty"`
}

// ErrorResponse is returned for every non-2xx status.
type ErrorResponse struct {
	Error      string             `json:"error" msgpack:"error"`
	Diagnostic *models.Diagnostic `json:"diagnostic,omitempty" msgpack:"diagnostic,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, "ok")
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	result, ok := s.validate(w, r)
	if !ok {
		return
	}
	s.respond(w, r, http.StatusOK, ValidateResponse{Valid: result.Valid(), Diagnostic: result.Diagnostic})
}

// handleGraph converts the body into a graph. An optional highlight query
// marks the node that search would select.
func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	result, ok := s.validate(w, r)
	if !ok {
		return
	}
	if !result.Valid() {
		s.respond(w, r, http.StatusUnprocessableEntity, ErrorResponse{Error: result.Diagnostic.Message, Diagnostic: result.Diagnostic})
		return
	}

	g := s.transformer.Transform(result.Value)
	if query := r.URL.Query().Get("highlight"); strings.TrimSpace(query) != "" {
		if node, found := graph.Search(g.Nodes, query); found {
			g.Nodes = graph.Highlight(g.Nodes, node.ID)
		}
	}

	var stats *analyzer.Stats
	if !g.IsEmpty() {
		st := analyzer.Analyze(result.Value)
		stats = &st
	}
	s.respond(w, r, http.StatusOK, formatter.NewGraphDocument(g, stats))
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if strings.TrimSpace(query) == "" {
		s.respond(w, r, http.StatusBadRequest, ErrorResponse{Error: "query parameter q is required"})
		return
	}

	result, ok := s.validate(w, r)
	if !ok {
		return
	}
	if !result.Valid() {
		s.respond(w, r, http.StatusUnprocessableEntity, ErrorResponse{Error: result.Diagnostic.Message, Diagnostic: result.Diagnostic})
		return
	}

	g := s.transformer.Transform(result.Value)
	node, found := graph.Search(g.Nodes, query)
	if !found {
		s.respond(w, r, http.StatusNotFound, ErrorResponse{Error: NoMatchMessage})
		return
	}
	node.Highlighted = true
	s.respond(w, r, http.StatusOK, node)
}

// validate reads the body and runs it through the requested decoder. It
// writes the error response itself and returns false when the request is unusable.
func (s *Server) validate(w http.ResponseWriter, r *http.Request) (diagnostic.Result, bool) {
	format, err := requestFormat(r)
	if err != nil {
		s.respond(w, r, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return diagnostic.Result{}, false
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			s.respond(w, r, http.StatusRequestEntityTooLarge, ErrorResponse{Error: tooLarge.Error()})
		} else {
			s.respond(w, r, http.StatusBadRequest, ErrorResponse{Error: "failed to read request body"})
		}
		return diagnostic.Result{}, false
	}

	builder := diagnostic.NewBuilderWithWindow(parser.NewDecoder(format), s.opts.LinesBefore, s.opts.LinesAfter)
	result := builder.Validate(string(body))
	if !result.Valid() {
		s.logger.Debug("Invalid input",
			"request_id", RequestIDFromContext(r.Context()),
			"format", format,
			"line", result.Diagnostic.Line,
			"column", result.Diagnostic.Column,
		)
	}
	return result, true
}

// requestFormat prefers the format query parameter, then the Content-Type, then JSON.
func requestFormat(r *http.Request) (parser.Format, error) {
	if name := r.URL.Query().Get("format"); name != "" {
		format, err := parser.ParseFormat(name)
		if err != nil {
			return "", err
		}
		if format != parser.FormatAuto {
			return format, nil
		}
	}

	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return parser.FormatJSON, nil
	}
	switch mediaType {
	case "application/yaml", "application/x-yaml", "text/yaml":
		return parser.FormatYAML, nil
	case "application/toml":
		return parser.FormatTOML, nil
	default:
		return parser.FormatJSON, nil
	}
}

// respond encodes v as msgpack when the client asks for it and as JSON otherwise.
func (s *Server) respond(w http.ResponseWriter, r *http.Request, status int, v any) {
	var (
		data        []byte
		err         error
		contentType = contentTypeJSON
	)
	if strings.Contains(r.Header.Get("Accept"), contentTypeMsgpack) {
		contentType = contentTypeMsgpack
		data, err = msgpack.Marshal(v)
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		s.logger.Error("Failed to encode response", "err", err, "request_id", RequestIDFromContext(r.Context()))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	_, _ = w.Write(data)
}
