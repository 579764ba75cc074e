package transaction

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/empower-api/internal/domain"
	"github.com/empower-api/internal/pkg/id"
	"github.com/empower-api/internal/pkg/phone"
)

// UserStore resolves account owners.
type UserStore interface {
	Get(ctx context.Context, mobile string) (*domain.User, error)
}

// LedgerStore is the append-only entry log. There is deliberately no update
// or delete operation.
type LedgerStore interface {
	Append(ctx context.Context, tx *domain.Transaction) error
	ListByUser(ctx context.Context, mobile string) ([]domain.Transaction, error)
}

// EventPublisher mirrors ledger changes to clients, fire-and-forget.
type EventPublisher interface {
	Publish(event string, payload interface{})
}

// Result pairs the written entry with the freshly folded balance.
type Result struct {
	Transaction *domain.Transaction `json:"transaction"`
	Balance     float64             `json:"balance"`
}

type Service interface {
	Deposit(ctx context.Context, userID string, amount float64) (*Result, error)
	Withdraw(ctx context.Context, userID string, amount float64) (*Result, error)
	BalanceOf(ctx context.Context, userID string) (float64, error)
	History(ctx context.Context, userID string) ([]domain.Transaction, error)
}

type service struct {
	users  UserStore
	ledger LedgerStore
	events EventPublisher
}

func NewService(users UserStore, ledger LedgerStore, events EventPublisher) Service {
	return &service{users: users, ledger: ledger, events: events}
}

func (s *service) Deposit(ctx context.Context, userID string, amount float64) (*Result, error) {
	mobile, err := s.resolve(ctx, userID)
	if err != nil {
		return nil, err
	}
	if amount <= 0 {
		return nil, fmt.Errorf("deposit of %v: %w", amount, domain.ErrInvalidAmount)
	}
	return s.append(ctx, mobile, domain.TxDeposit, amount)
}

// Withdraw recomputes the balance first and rejects any amount that would
// drive it negative, leaving the ledger unchanged.
func (s *service) Withdraw(ctx context.Context, userID string, amount float64) (*Result, error) {
	mobile, err := s.resolve(ctx, userID)
	if err != nil {
		return nil, err
	}
	if amount <= 0 {
		return nil, fmt.Errorf("withdrawal of %v: %w", amount, domain.ErrInvalidAmount)
	}
	balance, err := s.fold(ctx, mobile)
	if err != nil {
		return nil, err
	}
	if amount > balance {
		return nil, fmt.Errorf("withdrawal of %v exceeds balance %v: %w", amount, balance, domain.ErrInsufficientFunds)
	}
	return s.append(ctx, mobile, domain.TxWithdraw, amount)
}

// BalanceOf folds over every ledger entry on each call; no running total is
// cached anywhere. A transient read error degrades to zero with a warning so
// read-only dashboards stay up.
func (s *service) BalanceOf(ctx context.Context, userID string) (float64, error) {
	mobile, err := s.resolve(ctx, userID)
	if err != nil {
		return 0, err
	}
	balance, err := s.fold(ctx, mobile)
	if err != nil {
		slog.Warn("balance fold failed, reporting zero", "mobile", mobile, "err", err)
		return 0, nil
	}
	return balance, nil
}

// History lists entries most recent first. An unregistered user gets an
// empty history rather than an error, matching the dashboard contract.
func (s *service) History(ctx context.Context, userID string) ([]domain.Transaction, error) {
	mobile, err := phone.Normalize(userID)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, domain.ErrBadRequest)
	}
	if _, err := s.users.Get(ctx, mobile); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return []domain.Transaction{}, nil
		}
		return nil, err
	}
	return s.ledger.ListByUser(ctx, mobile)
}

func (s *service) resolve(ctx context.Context, userID string) (string, error) {
	mobile, err := phone.Normalize(userID)
	if err != nil {
		return "", fmt.Errorf("%v: %w", err, domain.ErrBadRequest)
	}
	if _, err := s.users.Get(ctx, mobile); err != nil {
		return "", err
	}
	return mobile, nil
}

func (s *service) append(ctx context.Context, mobile, kind string, amount float64) (*Result, error) {
	tx := &domain.Transaction{
		TransactionID: id.New(),
		UserMobile:    mobile,
		Type:          kind,
		Amount:        amount,
		Status:        "success",
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.ledger.Append(ctx, tx); err != nil {
		return nil, err
	}
	balance, err := s.fold(ctx, mobile)
	if err != nil {
		slog.Warn("balance fold failed after append, reporting zero", "mobile", mobile, "err", err)
		balance = 0
	}
	s.events.Publish("transaction."+kind, tx)
	return &Result{Transaction: tx, Balance: balance}, nil
}

func (s *service) fold(ctx context.Context, mobile string) (float64, error) {
	entries, err := s.ledger.ListByUser(ctx, mobile)
	if err != nil {
		return 0, err
	}
	var balance float64
	for _, e := range entries {
		switch e.Type {
		case domain.TxDeposit:
			balance += e.Amount
		case domain.TxWithdraw:
			balance -= e.Amount
		}
	}
	return balance, nil
}
