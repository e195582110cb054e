package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/ordinex/ordinex/internal/errors"
	"github.com/ordinex/ordinex/internal/log"
	"github.com/ordinex/ordinex/internal/plan"
	"github.com/ordinex/ordinex/internal/store"
)

// MaxBodyBytes bounds request bodies
const MaxBodyBytes = 4 << 20

// BreakdownRequest is a plan document plus the force flag
type BreakdownRequest struct {
	plan.Document
	Force bool `json:"force,omitempty"`
}

// HistoryResponse lists a plan's stored breakdowns
type HistoryResponse struct {
	PlanID     string          `json:"planId"`
	Breakdowns []store.Summary `json:"breakdowns"`
}

// ErrorResponse is the body of every non-2xx API response
type ErrorResponse struct {
	Error     ErrorBody `json:"error"`
	RequestID string    `json:"requestId,omitempty"`
}

// ErrorBody carries a coded error
type ErrorBody struct {
	Code        string   `json:"code"`
	Message     string   `json:"message"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// POST /v1/plans/detect
func (s *Server) handleDetect(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	var doc plan.Document
	if err := decodeBody(r, &doc); err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, s.pipeline.Detect(r.Context(), &doc))
}

// POST /v1/plans/breakdown
func (s *Server) handleBreakdown(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	var req BreakdownRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	out, err := s.pipeline.Breakdown(r.Context(), &req.Document, req.Force)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// GET /v1/breakdowns/{id}
func (s *Server) handleGetBreakdown(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	rec, err := s.pipeline.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// GET /v1/plans/{planId}/breakdowns
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	planID := r.PathValue("planId")
	list, err := s.pipeline.History(r.Context(), planID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, HistoryResponse{PlanID: planID, Breakdowns: list})
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.writeError(w, r, errors.New(errors.ErrCodeAPIRouteNotFound, fmt.Sprintf("no route for %s %s", r.Method, r.URL.Path)).
		WithSuggestion("See GET /healthz and the /v1 routes"))
}

func decodeBody(r *http.Request, v any) error {
	body := http.MaxBytesReader(nil, r.Body, MaxBodyBytes)
	dec := json.NewDecoder(body)
	if err := dec.Decode(v); err != nil {
		if err == io.EOF {
			return errors.New(errors.ErrCodeAPIBadRequest, "request body is empty")
		}
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field == "plan_version" {
			return errors.NewPlanInvalidError(fmt.Sprintf("plan_version must be a whole number >= 1, got %s", typeErr.Value))
		}
		return errors.Wrap(errors.ErrCodeAPIBadRequest, "request body is not a valid plan document", err)
	}
	return nil
}

// allowMethod writes API-002 and returns false unless r uses method
func allowMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method == method {
		return true
	}
	w.Header().Set("Allow", method)
	writeJSON(w, http.StatusMethodNotAllowed, ErrorResponse{
		Error: ErrorBody{
			Code:    string(errors.ErrCodeAPIMethodNotAllowed),
			Message: fmt.Sprintf("method %s not allowed, use %s", r.Method, method),
		},
		RequestID: log.RequestIDFromContext(r.Context()),
	})
	return false
}

// StatusFor maps an error to its HTTP status
func StatusFor(err error) int {
	code := errors.CodeOf(err)
	switch {
	case errors.IsNotFound(err):
		return http.StatusNotFound
	case errors.IsValidation(err):
		return http.StatusBadRequest
	case code == errors.ErrCodeAPIMethodNotAllowed:
		return http.StatusMethodNotAllowed
	case code == errors.ErrCodeStoreOpen:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)

	body := ErrorBody{Code: string(errors.CodeOf(err)), Message: err.Error()}
	var oe *errors.OrdinexError
	if errors.As(err, &oe) {
		body.Message = oe.Message
		body.Suggestions = oe.Suggestions
	}
	if body.Code == "" {
		body.Code = "INTERNAL"
	}
	if status == http.StatusInternalServerError {
		s.logger.LogErrorContext(r.Context(), err)
		body.Message = "internal error"
		body.Suggestions = nil
	}

	writeJSON(w, status, ErrorResponse{Error: body, RequestID: log.RequestIDFromContext(r.Context())})
}
