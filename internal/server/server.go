// Package server exposes the query engine over HTTP. It parses request
// envelopes, runs the engine against the configured source, and formats
// responses as data plus an ordered error list.
package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/quarryql/quarry/internal/engine"
	"github.com/quarryql/quarry/internal/eventbus"
	"github.com/quarryql/quarry/internal/events"
	"github.com/quarryql/quarry/internal/reqid"
	"github.com/quarryql/quarry/internal/source"
)

const errBodyTooLargeMessage = "request body too large"

// Handler is an http.Handler serving the query endpoint.
type Handler struct {
	engine *engine.Engine
	source source.Source
	opt    Options
}

// Options controls envelope behavior.
type Options struct {
	// Timeout sets a default timeout when the request context has none.
	// 0 means no default timeout.
	Timeout time.Duration

	// Pretty enables indented JSON responses.
	Pretty bool

	// MaxBodyBytes limits the request body size. 0 means unlimited.
	MaxBodyBytes int64

	// CORS configuration. Empty AllowedOrigins disables CORS.
	CORS CORSOptions
}

// CORSOptions holds simple CORS settings.
type CORSOptions struct {
	AllowedOrigins []string
}

// Option mutates Options.
type Option func(*Options)

func WithTimeout(d time.Duration) Option { return func(o *Options) { o.Timeout = d } }
func WithPretty() Option                 { return func(o *Options) { o.Pretty = true } }
func WithMaxBodyBytes(n int64) Option    { return func(o *Options) { o.MaxBodyBytes = n } }
func WithCORS(origins ...string) Option {
	return func(o *Options) { o.CORS.AllowedOrigins = origins }
}

// New creates a handler over the given engine and source.
func New(eng *engine.Engine, src source.Source, opts ...Option) *Handler {
	op := Options{Timeout: 10 * time.Second}
	for _, f := range opts {
		f(&op)
	}
	return &Handler{engine: eng, source: src, opt: op}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, ok := ctx.Deadline(); !ok && h.opt.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.opt.Timeout)
		defer cancel()
	}

	ctx, _ = reqid.NewContext(ctx)
	status := http.StatusOK
	start := time.Now()
	eventbus.Publish(ctx, events.HTTPStart{Request: r})
	defer func() {
		eventbus.Publish(ctx, events.HTTPFinish{Request: r, Status: status, Duration: time.Since(start)})
	}()

	if r.Method == http.MethodOptions {
		if len(h.opt.CORS.AllowedOrigins) > 0 {
			setCORSHeaders(w, r, h.opt.CORS)
		}
		status = http.StatusNoContent
		w.WriteHeader(status)
		return
	}

	if r.Method != http.MethodPost && r.Method != http.MethodGet {
		status = http.StatusMethodNotAllowed
		writeJSON(w, status, errorResponse("method not allowed"), h.opt.Pretty)
		return
	}

	if len(h.opt.CORS.AllowedOrigins) > 0 {
		setCORSHeaders(w, r, h.opt.CORS)
	}

	req, batch, perr := parseRequest(r, h.opt.MaxBodyBytes)
	if perr != "" {
		status = http.StatusBadRequest
		if perr == errBodyTooLargeMessage {
			status = http.StatusRequestEntityTooLarge
		}
		writeJSON(w, status, errorResponse(perr), h.opt.Pretty)
		return
	}

	if batch != nil {
		out := make([]any, len(batch))
		for i := range batch {
			out[i] = h.executeOne(ctx, batch[i])
		}
		writeJSON(w, status, out, h.opt.Pretty)
		return
	}

	writeJSON(w, status, h.executeOne(ctx, req), h.opt.Pretty)
}

func (h *Handler) executeOne(ctx context.Context, req QueryRequest) any {
	start := time.Now()
	eventbus.Publish(ctx, events.QueryStart{Query: req.Query, OperationName: req.OperationName})

	result := h.execute(ctx, req)

	errs := make([]error, len(result.Errors))
	for i := range result.Errors {
		errs[i] = result.Errors[i]
	}
	eventbus.Publish(ctx, events.QueryFinish{
		Query:         req.Query,
		OperationName: req.OperationName,
		Errors:        errs,
		Duration:      time.Since(start),
	})
	return result
}

func (h *Handler) execute(ctx context.Context, req QueryRequest) *engine.Result {
	root, err := h.source.Root(ctx)
	if err != nil {
		return &engine.Result{Errors: []engine.QueryError{{Message: err.Error()}}}
	}
	return h.engine.Execute(ctx, req.Query, req.OperationName, req.Variables, root)
}

// ------------------ Request parsing ------------------

// QueryRequest is the request envelope: query text plus optional variables.
type QueryRequest struct {
	Query         string         `json:"query"`
	OperationName string         `json:"operationName,omitempty"`
	Variables     map[string]any `json:"variables,omitempty"`
}

func parseRequest(r *http.Request, maxBody int64) (QueryRequest, []QueryRequest, string) {
	if r.Method == http.MethodGet {
		q := r.URL.Query().Get("query")
		if q == "" {
			return QueryRequest{}, nil, "missing 'query'"
		}
		vars := map[string]any{}
		if v := r.URL.Query().Get("variables"); v != "" {
			if err := json.Unmarshal([]byte(v), &vars); err != nil {
				return QueryRequest{}, nil, "invalid 'variables' JSON"
			}
		}
		op := r.URL.Query().Get("operationName")
		return QueryRequest{Query: q, Variables: vars, OperationName: op}, nil, ""
	}

	ct := r.Header.Get("Content-Type")
	if ct != "" && ct != "application/json" && !strings.HasPrefix(ct, "application/json;") {
		return QueryRequest{}, nil, "unsupported Content-Type"
	}

	reader := io.Reader(r.Body)
	if maxBody > 0 {
		reader = io.LimitReader(r.Body, maxBody+1)
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		return QueryRequest{}, nil, "failed to read body"
	}
	defer r.Body.Close()
	if maxBody > 0 && int64(len(body)) > maxBody {
		return QueryRequest{}, nil, errBodyTooLargeMessage
	}

	// Batched requests arrive as a JSON array.
	if len(body) > 0 && body[0] == '[' {
		var arr []QueryRequest
		if err := json.Unmarshal(body, &arr); err != nil {
			return QueryRequest{}, nil, "invalid JSON"
		}
		if len(arr) == 0 {
			return QueryRequest{}, nil, "empty batch"
		}
		return QueryRequest{}, arr, ""
	}

	var req QueryRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return QueryRequest{}, nil, "invalid JSON"
	}
	if req.Query == "" {
		return QueryRequest{}, nil, "missing 'query'"
	}
	if req.Variables == nil {
		req.Variables = map[string]any{}
	}
	return req, nil, ""
}

// ------------------ Response formatting ------------------

type errorBody struct {
	Data   any                 `json:"data"`
	Errors []engine.QueryError `json:"errors"`
}

func errorResponse(message string) errorBody {
	return errorBody{Errors: []engine.QueryError{{Message: message}}}
}

func setCORSHeaders(w http.ResponseWriter, r *http.Request, cors CORSOptions) {
	origin := r.Header.Get("Origin")
	allowed := ""
	for _, o := range cors.AllowedOrigins {
		if o == "*" || o == origin {
			allowed = o
			break
		}
	}
	if allowed == "" {
		return
	}
	w.Header().Set("Access-Control-Allow-Origin", allowed)
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
}

func writeJSON(w http.ResponseWriter, status int, v any, pretty bool) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	_ = enc.Encode(v)
}
