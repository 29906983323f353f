package domain

import (
	"context"
	"log/slog"
	"time"
)

// loggingService is the interface required for logging middleware.
type loggingService interface {
	Validate(ctx context.Context, req ValidateRequest, caller Caller) (*ValidateResult, error)
	ValidateBatch(ctx context.Context, reqs []ValidateRequest, caller Caller) ([]BatchItem, error)
	ListMethods(ctx context.Context) ([]MethodInfo, error)
	GetMethod(ctx context.Context, code string) (*MethodInfo, error)
	ListChecks(ctx context.Context, filter CheckFilter, pagination PaginationParams) (*CheckList, error)
}

// LoggingMiddleware returns a service middleware that logs all operations.
// Account numbers are logged masked.
func LoggingMiddleware(logger *slog.Logger) func(loggingService) *loggingMiddleware {
	return func(next loggingService) *loggingMiddleware {
		return &loggingMiddleware{
			next:   next,
			logger: logger,
		}
	}
}

type loggingMiddleware struct {
	next   loggingService
	logger *slog.Logger
}

func (m *loggingMiddleware) Validate(ctx context.Context, req ValidateRequest, caller Caller) (*ValidateResult, error) {
	start := time.Now()
	result, err := m.next.Validate(ctx, req, caller)
	attrs := []any{
		"method", req.Method,
		"account", MaskAccount(req.Account),
		"request_id", caller.RequestID,
		"duration", time.Since(start),
	}
	if result != nil {
		attrs = append(attrs, "outcome", result.Outcome, "alternative", result.Alternative)
	}
	attrs = append(attrs, "error", err)
	m.logger.Debug("Validate", attrs...)
	return result, err
}

func (m *loggingMiddleware) ValidateBatch(ctx context.Context, reqs []ValidateRequest, caller Caller) ([]BatchItem, error) {
	start := time.Now()
	items, err := m.next.ValidateBatch(ctx, reqs, caller)
	failed := 0
	for _, it := range items {
		if it.Err != nil {
			failed++
		}
	}
	m.logger.Info("ValidateBatch",
		"items", len(reqs),
		"failed", failed,
		"request_id", caller.RequestID,
		"duration", time.Since(start),
		"error", err,
	)
	return items, err
}

func (m *loggingMiddleware) ListMethods(ctx context.Context) ([]MethodInfo, error) {
	start := time.Now()
	infos, err := m.next.ListMethods(ctx)
	m.logger.Debug("ListMethods",
		"count", len(infos),
		"duration", time.Since(start),
		"error", err,
	)
	return infos, err
}

func (m *loggingMiddleware) GetMethod(ctx context.Context, code string) (*MethodInfo, error) {
	start := time.Now()
	info, err := m.next.GetMethod(ctx, code)
	m.logger.Debug("GetMethod",
		"code", code,
		"duration", time.Since(start),
		"error", err,
	)
	return info, err
}

func (m *loggingMiddleware) ListChecks(ctx context.Context, filter CheckFilter, pagination PaginationParams) (*CheckList, error) {
	start := time.Now()
	list, err := m.next.ListChecks(ctx, filter, pagination)
	count := 0
	if list != nil {
		count = len(list.Checks)
	}
	m.logger.Debug("ListChecks",
		"method", filter.Method,
		"limit", pagination.Limit,
		"count", count,
		"duration", time.Since(start),
		"error", err,
	)
	return list, err
}
