package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/pendergraft/kontocheck/internal/digits"
	"github.com/pendergraft/kontocheck/internal/eser"
	"github.com/pendergraft/kontocheck/internal/methods"
	"github.com/pendergraft/kontocheck/internal/observability/metrics"
	"github.com/pendergraft/kontocheck/internal/storage"
	"github.com/pendergraft/kontocheck/internal/validation"
)

// Common errors returned by the accounts service.
var (
	ErrInvalidAccount = errors.New("invalid account number")
	ErrInvalidBank    = errors.New("invalid bank number")
	ErrUnknownMethod  = errors.New("unknown method")
	ErrNotEnabled     = errors.New("validation log is not enabled")
	ErrBatchTooLarge  = errors.New("batch too large")
	ErrEmptyBatch     = errors.New("batch has no items")
	ErrInvalidCursor  = errors.New("invalid cursor")
)

// Listing limits for the validation log.
const (
	DefaultListLimit = 50
	MaxListLimit     = 500
)

// CheckStore defines the storage operations needed for the validation log.
type CheckStore interface {
	RecordCheck(ctx context.Context, c *storage.Check) error
	ListChecks(ctx context.Context, filter storage.CheckFilter, pagination storage.PaginationParams) (*storage.PaginatedResult[storage.Check], error)
}

type service struct {
	registry *methods.Registry
	checks   CheckStore
	logger   *slog.Logger
	maxBatch int
	now      func() time.Time
}

// NewService creates a new accounts service. checks may be nil, which
// disables the validation log.
func NewService(registry *methods.Registry, checks CheckStore, logger *slog.Logger, maxBatch int) *service {
	if logger == nil {
		logger = slog.Default()
	}
	return &service{
		registry: registry,
		checks:   checks,
		logger:   logger,
		maxBatch: maxBatch,
		now:      time.Now,
	}
}

// Validate checks one account number.
func (s *service) Validate(ctx context.Context, req ValidateRequest, caller Caller) (*ValidateResult, error) {
	result, err := s.validate(req)
	if err != nil {
		return nil, err
	}
	s.record(ctx, result, caller)
	return result, nil
}

// ValidateBatch checks several account numbers. Item errors are reported
// per item; only malformed batches fail as a whole.
func (s *service) ValidateBatch(ctx context.Context, reqs []ValidateRequest, caller Caller) ([]BatchItem, error) {
	if len(reqs) == 0 {
		return nil, ErrEmptyBatch
	}
	if s.maxBatch > 0 && len(reqs) > s.maxBatch {
		return nil, fmt.Errorf("%w: %d items, limit is %d", ErrBatchTooLarge, len(reqs), s.maxBatch)
	}
	metrics.BatchSize(len(reqs))

	items := make([]BatchItem, len(reqs))
	for i, req := range reqs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		result, err := s.validate(req)
		if err != nil {
			items[i] = BatchItem{Err: err}
			continue
		}
		s.record(ctx, result, caller)
		items[i] = BatchItem{Result: result}
	}
	return items, nil
}

// ListMethods returns all registered methods sorted by code.
func (s *service) ListMethods(ctx context.Context) ([]MethodInfo, error) {
	entries := s.registry.List()
	infos := make([]MethodInfo, len(entries))
	for i, e := range entries {
		infos[i] = toMethodInfo(e)
	}
	return infos, nil
}

// GetMethod returns one registered method.
func (s *service) GetMethod(ctx context.Context, code string) (*MethodInfo, error) {
	e, ok := s.registry.Get(code)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMethod, code)
	}
	info := toMethodInfo(e)
	return &info, nil
}

// ListChecks returns recent validation log entries, newest first.
func (s *service) ListChecks(ctx context.Context, filter CheckFilter, pagination PaginationParams) (*CheckList, error) {
	if s.checks == nil {
		return nil, ErrNotEnabled
	}

	if filter.Method != "" {
		if err := validation.ValidateMethodCode(filter.Method); err != nil {
			return nil, fmt.Errorf("%w: %q", ErrUnknownMethod, filter.Method)
		}
		filter.Method = methods.NormalizeCode(filter.Method)
	}
	switch {
	case pagination.Limit <= 0:
		pagination.Limit = DefaultListLimit
	case pagination.Limit > MaxListLimit:
		pagination.Limit = MaxListLimit
	}

	res, err := s.checks.ListChecks(ctx,
		storage.CheckFilter{Method: filter.Method},
		storage.PaginationParams{Limit: pagination.Limit, Cursor: pagination.Cursor},
	)
	if err != nil {
		if errors.Is(err, storage.ErrInvalidCursor) {
			return nil, ErrInvalidCursor
		}
		return nil, fmt.Errorf("listing checks: %w", err)
	}

	list := &CheckList{
		Checks:     make([]Check, len(res.Data)),
		HasMore:    res.HasMore,
		NextCursor: res.NextCursor,
	}
	for i, c := range res.Data {
		list.Checks[i] = Check(c)
	}
	return list, nil
}

func (s *service) validate(req ValidateRequest) (*ValidateResult, error) {
	if err := validation.ValidateMethodCode(req.Method); err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMethod, req.Method)
	}
	code := methods.NormalizeCode(req.Method)

	entry, ok := s.registry.Get(code)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMethod, req.Method)
	}

	account, err := validation.ParseAccountNumber(req.Account)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAccount, err)
	}
	bank, err := validation.ParseBankNumber(req.Bank)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBank, err)
	}

	res, err := entry.Method.Check(account, bank)
	if err != nil {
		return nil, classify(code, err)
	}

	outcome := res.Outcome.String()
	metrics.Validation(code, outcome)
	if entry.Kind == methods.KindChain {
		metrics.Alternative(code, res.Alternative)
	}

	return &ValidateResult{
		Method:      code,
		Account:     account.String(),
		Bank:        bank.String(),
		Valid:       res.Valid,
		Outcome:     outcome,
		Alternative: res.Alternative,
		Exception:   res.Exception,
	}, nil
}

// classify maps method errors onto the service's input errors.
func classify(code string, err error) error {
	switch {
	case errors.Is(err, methods.ErrBankNumberRequired):
		return fmt.Errorf("%w: method %s requires a bank number", ErrInvalidBank, code)
	case errors.Is(err, eser.ErrIllegalBankNumber):
		return fmt.Errorf("%w: %v", ErrInvalidBank, err)
	case errors.Is(err, eser.ErrIllegalAccountNumber), errors.Is(err, digits.ErrOutOfRange):
		return fmt.Errorf("%w: %v", ErrInvalidAccount, err)
	default:
		return fmt.Errorf("checking with method %s: %w", code, err)
	}
}

// record writes a validation log entry. Failures are logged and counted
// but never fail the validation.
func (s *service) record(ctx context.Context, r *ValidateResult, caller Caller) {
	if s.checks == nil {
		return
	}
	c := &storage.Check{
		Method:      r.Method,
		Account:     MaskAccount(r.Account),
		Valid:       r.Valid,
		Outcome:     r.Outcome,
		Alternative: r.Alternative,
		KeyID:       caller.KeyID,
		RequestID:   caller.RequestID,
		CreatedAt:   s.now(),
	}
	if err := s.checks.RecordCheck(ctx, c); err != nil {
		metrics.AuditFailure()
		s.logger.Warn("recording check failed",
			"method", r.Method,
			"request_id", caller.RequestID,
			"error", err,
		)
	}
}

func toMethodInfo(e methods.Entry) MethodInfo {
	return MethodInfo{
		Code:        e.Code,
		Description: e.Description,
		Kind:        string(e.Kind),
	}
}
