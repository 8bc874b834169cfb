package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	apperrors "github.com/buddyai/buddy-server-go/internal/errors"
	"github.com/buddyai/buddy-server-go/internal/httputil"
	"github.com/buddyai/buddy-server-go/internal/metrics"
)

type Kind int

const (
	KindQuery Kind = iota
	KindMutation
)

func (k Kind) method() string {
	if k == KindMutation {
		return http.MethodPost
	}
	return http.MethodGet
}

// HandlerFunc runs a procedure against its raw JSON input.
type HandlerFunc func(ctx context.Context, input json.RawMessage) (any, error)

type procedure struct {
	kind    Kind
	handler HandlerFunc
}

// Registrar accepts named procedures. Both Router and Group implement it.
type Registrar interface {
	Handle(name string, kind Kind, handler HandlerFunc)
}

// Router serves every registered procedure from a single route whose last
// path segment is the dotted procedure name, e.g. /api/trpc/meetings.getMany.
type Router struct {
	procedures map[string]procedure
	metrics    *metrics.Metrics
}

func NewRouter(m *metrics.Metrics) *Router {
	return &Router{
		procedures: make(map[string]procedure),
		metrics:    m,
	}
}

func (r *Router) Handle(name string, kind Kind, handler HandlerFunc) {
	if _, exists := r.procedures[name]; exists {
		panic("rpc: duplicate procedure " + name)
	}
	r.procedures[name] = procedure{kind: kind, handler: handler}
}

func (r *Router) Group(prefix string) *Group {
	return &Group{prefix: prefix, parent: r}
}

// Procedures lists the registered procedure names.
func (r *Router) Procedures() []string {
	names := make([]string, 0, len(r.procedures))
	for name := range r.procedures {
		names = append(names, name)
	}
	return names
}

type Group struct {
	prefix string
	parent Registrar
}

func (g *Group) Handle(name string, kind Kind, handler HandlerFunc) {
	g.parent.Handle(g.prefix+"."+name, kind, handler)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	start := time.Now()
	name := chi.URLParam(req, "procedure")

	out, err := r.call(req, name)

	code := "OK"
	if err != nil {
		code = string(apperrors.GetCode(err))
		if code == "" {
			code = string(apperrors.ErrCodeInternal)
		}
	}

	label := name
	if _, known := r.procedures[name]; !known {
		label = "unknown"
	}
	r.metrics.ObserveRPC(label, code, time.Since(start).Seconds())

	logEvent := log.Debug()
	if err != nil {
		if appErr, ok := apperrors.AsAppError(err); ok && appErr.IsClientError() {
			logEvent = log.Info()
		} else {
			logEvent = log.Error().Err(err)
		}
	}
	logEvent.
		Str("requestId", chimiddleware.GetReqID(req.Context())).
		Str("procedure", name).
		Str("code", code).
		Dur("duration", time.Since(start)).
		Msg("rpc call")

	if err != nil {
		status, body := httputil.NewErrorBody(err)
		httputil.WriteJSON(w, status, httputil.ErrorResponse{Error: body})
		return
	}

	httputil.WriteJSON(w, http.StatusOK, successResponse{Result: resultBody{Data: out}})
}

type successResponse struct {
	Result resultBody `json:"result"`
}

type resultBody struct {
	Data any `json:"data"`
}

func (r *Router) call(req *http.Request, name string) (any, error) {
	proc, ok := r.procedures[name]
	if !ok {
		return nil, apperrors.NotFound("Procedure " + name)
	}

	if req.Method != proc.kind.method() {
		return nil, apperrors.MethodNotSupported(req.Method, name)
	}

	input, err := readInput(req, proc.kind)
	if err != nil {
		return nil, err
	}

	return proc.handler(req.Context(), input)
}

func readInput(req *http.Request, kind Kind) (json.RawMessage, error) {
	var raw []byte
	if kind == KindQuery {
		raw = []byte(req.URL.Query().Get("input"))
	} else {
		body, err := io.ReadAll(req.Body)
		if err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				return nil, apperrors.PayloadTooLarge()
			}
			return nil, apperrors.ValidationError("failed to read request body").WithCause(err)
		}
		raw = body
	}

	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return json.RawMessage("{}"), nil
	}
	return json.RawMessage(trimmed), nil
}
