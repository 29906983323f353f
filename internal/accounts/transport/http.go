// Package transport provides HTTP handlers for the accounts domain.
package transport

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/pendergraft/kontocheck/internal/accounts/domain"
	"github.com/pendergraft/kontocheck/internal/auth"
)

// Service is the accounts service as used by the HTTP handlers.
type Service interface {
	Validate(ctx context.Context, req domain.ValidateRequest, caller domain.Caller) (*domain.ValidateResult, error)
	ValidateBatch(ctx context.Context, reqs []domain.ValidateRequest, caller domain.Caller) ([]domain.BatchItem, error)
	ListMethods(ctx context.Context) ([]domain.MethodInfo, error)
	GetMethod(ctx context.Context, code string) (*domain.MethodInfo, error)
	ListChecks(ctx context.Context, filter domain.CheckFilter, pagination domain.PaginationParams) (*domain.CheckList, error)
}

// Handler handles HTTP requests for account validation.
type Handler struct {
	svc Service
}

// NewHandler creates a new accounts HTTP handler.
func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes registers all account routes on a chi router mounted at /api/v1.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/validate", h.handleValidate)
	r.Post("/validate/batch", h.handleValidateBatch)
	r.Get("/methods", h.handleListMethods)
	r.Get("/methods/{code}", h.handleGetMethod)
	r.Get("/checks", h.handleListChecks)
}

func callerFrom(r *http.Request) domain.Caller {
	return domain.Caller{
		KeyID:     auth.KeyIDFromContext(r.Context()),
		RequestID: middleware.GetReqID(r.Context()),
	}
}

func (h *Handler) handleValidate(w http.ResponseWriter, r *http.Request) {
	var req ValidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body")
		return
	}

	result, err := h.svc.Validate(r.Context(), req.ToDomain(), callerFrom(r))
	if err != nil {
		status, body := errorFor(err)
		writeError(w, status, body.Code, body.Message)
		return
	}

	writeJSON(w, http.StatusOK, FromDomainResult(result))
}

func (h *Handler) handleValidateBatch(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body")
		return
	}

	reqs := make([]domain.ValidateRequest, len(req.Items))
	for i, item := range req.Items {
		reqs[i] = item.ToDomain()
	}

	items, err := h.svc.ValidateBatch(r.Context(), reqs, callerFrom(r))
	if err != nil {
		status, body := errorFor(err)
		writeError(w, status, body.Code, body.Message)
		return
	}

	resp := BatchResponse{Results: make([]BatchResult, len(items))}
	for i, item := range items {
		if item.Err != nil {
			_, body := errorFor(item.Err)
			resp.Results[i] = BatchResult{Error: &body}
			continue
		}
		resp.Results[i] = BatchResult{ValidateResponse: FromDomainResult(item.Result)}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleListMethods(w http.ResponseWriter, r *http.Request) {
	infos, err := h.svc.ListMethods(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list methods")
		return
	}

	data := make([]MethodResponse, len(infos))
	for i, m := range infos {
		data[i] = FromDomainMethod(m)
	}
	writeJSON(w, http.StatusOK, MethodListResponse{Data: data})
}

func (h *Handler) handleGetMethod(w http.ResponseWriter, r *http.Request) {
	info, err := h.svc.GetMethod(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		status, body := errorFor(err)
		writeError(w, status, body.Code, body.Message)
		return
	}
	writeJSON(w, http.StatusOK, FromDomainMethod(*info))
}

func (h *Handler) handleListChecks(w http.ResponseWriter, r *http.Request) {
	limit := domain.DefaultListLimit
	if l := r.URL.Query().Get("limit"); l != "" {
		parsed, err := strconv.Atoi(l)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "limit must be a positive integer")
			return
		}
		limit = min(parsed, domain.MaxListLimit)
	}

	list, err := h.svc.ListChecks(r.Context(), domain.CheckFilter{
		Method: r.URL.Query().Get("method"),
	}, domain.PaginationParams{
		Limit:  limit,
		Cursor: r.URL.Query().Get("cursor"),
	})
	if err != nil {
		status, body := errorFor(err)
		writeError(w, status, body.Code, body.Message)
		return
	}

	data := make([]CheckResponse, len(list.Checks))
	for i, c := range list.Checks {
		data[i] = FromDomainCheck(c)
	}
	writeJSON(w, http.StatusOK, CheckListResponse{
		Data: data,
		Pagination: Pagination{
			Limit:      limit,
			HasMore:    list.HasMore,
			NextCursor: list.NextCursor,
		},
	})
}

// errorFor maps service errors to an HTTP status and error body.
func errorFor(err error) (int, ErrorBody) {
	switch {
	case errors.Is(err, domain.ErrUnknownMethod):
		return http.StatusNotFound, ErrorBody{Code: "UNKNOWN_METHOD", Message: err.Error()}
	case errors.Is(err, domain.ErrInvalidAccount),
		errors.Is(err, domain.ErrInvalidBank),
		errors.Is(err, domain.ErrEmptyBatch),
		errors.Is(err, domain.ErrInvalidCursor):
		return http.StatusBadRequest, ErrorBody{Code: "INVALID_REQUEST", Message: err.Error()}
	case errors.Is(err, domain.ErrBatchTooLarge):
		return http.StatusRequestEntityTooLarge, ErrorBody{Code: "BATCH_TOO_LARGE", Message: err.Error()}
	case errors.Is(err, domain.ErrNotEnabled):
		return http.StatusNotFound, ErrorBody{Code: "NOT_ENABLED", Message: "Validation log is not enabled"}
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, ErrorBody{Code: "TIMEOUT", Message: "Request cancelled"}
	default:
		return http.StatusInternalServerError, ErrorBody{Code: "INTERNAL_ERROR", Message: "Internal server error"}
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Error: ErrorBody{Code: code, Message: message}})
}
