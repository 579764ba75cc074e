package investment

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"path/filepath"
	"time"

	"github.com/empower-api/internal/domain"
	"github.com/empower-api/internal/pkg/id"
	"github.com/empower-api/internal/pkg/phone"
)

// UserStore resolves investors and maintains the active-investment pointer.
type UserStore interface {
	Get(ctx context.Context, mobile string) (*domain.User, error)
	SetActiveInvestment(ctx context.Context, mobile, investmentID string) error
}

// InvestmentStore persists lifecycle records.
type InvestmentStore interface {
	Put(ctx context.Context, inv *domain.Investment) error
	Get(ctx context.Context, investmentID string) (*domain.Investment, error)
	Latest(ctx context.Context, mobile string) (*domain.Investment, error)
	LatestPending(ctx context.Context, mobile string) (*domain.Investment, error)
	UpdateIfStatus(ctx context.Context, investmentID, expectedStatus string, updates map[string]interface{}) error
}

// ReceiptStore uploads proof-of-payment images.
type ReceiptStore interface {
	Upload(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
}

// EventPublisher mirrors state changes to clients, fire-and-forget.
type EventPublisher interface {
	Publish(event string, payload interface{})
}

// PaymentSubmission carries the proof-of-payment form fields. Receipt may be
// nil when the user supplies only a UTR.
type PaymentSubmission struct {
	UserID        string
	PaymentMethod string
	UTRNumber     string
	Receipt       io.Reader
	Filename      string
	ContentType   string
}

type Service interface {
	CreatePlan(ctx context.Context, req domain.CreatePlanRequest) (*domain.Investment, error)
	SubmitPayment(ctx context.Context, sub PaymentSubmission) (*domain.Investment, error)
	StatusOf(ctx context.Context, userID string) (*domain.Investment, error)
}

type service struct {
	users       UserStore
	investments InvestmentStore
	receipts    ReceiptStore
	events      EventPublisher
}

func NewService(users UserStore, investments InvestmentStore, receipts ReceiptStore, events EventPublisher) Service {
	return &service{users: users, investments: investments, receipts: receipts, events: events}
}

// CreatePlan locks in the user's terms: the expected return is computed once
// from the multiplier table and stored, never recomputed. Terms outside
// {10, 20, 30} days fail closed with ErrInvalidPlan.
func (s *service) CreatePlan(ctx context.Context, req domain.CreatePlanRequest) (*domain.Investment, error) {
	mobile, err := phone.Normalize(req.UserID)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, domain.ErrBadRequest)
	}
	if _, err := s.users.Get(ctx, mobile); err != nil {
		return nil, err
	}
	if req.BaseAmount <= 0 {
		return nil, fmt.Errorf("base amount must be positive: %w", domain.ErrInvalidAmount)
	}
	mult, err := domain.PlanMultiplier(req.Days)
	if err != nil {
		return nil, fmt.Errorf("term of %d days: %w", req.Days, err)
	}

	inv := &domain.Investment{
		InvestmentID:   id.New(),
		UserMobile:     mobile,
		BaseAmount:     req.BaseAmount,
		Days:           req.Days,
		ExpectedReturn: math.Round(req.BaseAmount * mult),
		Status:         domain.InvestmentPending,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.investments.Put(ctx, inv); err != nil {
		return nil, err
	}
	// The pointer makes the new plan authoritative for dashboard and payment
	// lookups. A failed pointer write is recoverable: lookups fall back to
	// the latest-by-creation query.
	if err := s.users.SetActiveInvestment(ctx, mobile, inv.InvestmentID); err != nil {
		slog.Warn("could not set active investment pointer", "mobile", mobile, "err", err)
	}

	s.events.Publish("investment.created", inv)
	return inv, nil
}

// SubmitPayment moves the active pending plan to verifying. The receipt is
// uploaded first; when storage fails the record is left untouched so the
// user can retry. The pending->verifying transition is a conditional update,
// so two concurrent submissions cannot both claim the same plan.
func (s *service) SubmitPayment(ctx context.Context, sub PaymentSubmission) (*domain.Investment, error) {
	mobile, err := phone.Normalize(sub.UserID)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, domain.ErrBadRequest)
	}
	u, err := s.users.Get(ctx, mobile)
	if err != nil {
		return nil, err
	}

	inv, err := s.pendingPlan(ctx, u)
	if err != nil {
		return nil, err
	}

	receiptURL := ""
	if sub.Receipt != nil {
		key := fmt.Sprintf("receipts/%s/%s%s", mobile, inv.InvestmentID, filepath.Ext(sub.Filename))
		receiptURL, err = s.receipts.Upload(ctx, key, sub.Receipt, sub.ContentType)
		if err != nil {
			return nil, fmt.Errorf("upload receipt: %w", domain.ErrStorageFailure)
		}
	}

	method := sub.PaymentMethod
	if method == "" {
		method = "UPI"
	}
	now := time.Now().UTC()
	updates := map[string]interface{}{
		"status":         domain.InvestmentVerifying,
		"payment_method": method,
		"utr_number":     sub.UTRNumber,
		"submitted_at":   now.Format(time.RFC3339),
	}
	if receiptURL != "" {
		updates["receipt_url"] = receiptURL
	}
	if err := s.investments.UpdateIfStatus(ctx, inv.InvestmentID, domain.InvestmentPending, updates); err != nil {
		return nil, err
	}

	inv.Status = domain.InvestmentVerifying
	inv.PaymentMethod = method
	inv.UTRNumber = sub.UTRNumber
	inv.SubmittedAt = &now
	if receiptURL != "" {
		inv.ReceiptURL = receiptURL
	}

	s.events.Publish("investment.submitted", inv)
	return inv, nil
}

// StatusOf returns the authoritative (most recent) investment for the user.
func (s *service) StatusOf(ctx context.Context, userID string) (*domain.Investment, error) {
	mobile, err := phone.Normalize(userID)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, domain.ErrBadRequest)
	}
	u, err := s.users.Get(ctx, mobile)
	if err != nil {
		return nil, err
	}
	if u.ActiveInvestmentID != "" {
		if inv, err := s.investments.Get(ctx, u.ActiveInvestmentID); err == nil {
			return inv, nil
		}
	}
	return s.investments.Latest(ctx, mobile)
}

// pendingPlan resolves the plan awaiting payment, preferring the indexed
// pointer over the latest-pending query.
func (s *service) pendingPlan(ctx context.Context, u *domain.User) (*domain.Investment, error) {
	if u.ActiveInvestmentID != "" {
		inv, err := s.investments.Get(ctx, u.ActiveInvestmentID)
		if err == nil && inv.Status == domain.InvestmentPending {
			return inv, nil
		}
	}
	inv, err := s.investments.LatestPending(ctx, u.Mobile)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("no pending investment plan found: %w", domain.ErrNotFound)
	}
	return inv, err
}
