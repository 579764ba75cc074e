package bank

import (
	"context"
	"fmt"
	"time"

	"github.com/empower-api/internal/domain"
	"github.com/empower-api/internal/pkg/phone"
)

type UserStore interface {
	Get(ctx context.Context, mobile string) (*domain.User, error)
}

type BankDetailStore interface {
	Upsert(ctx context.Context, d *domain.BankDetail) error
	Get(ctx context.Context, mobile string) (*domain.BankDetail, error)
}

type Service interface {
	Save(ctx context.Context, req domain.BankDetailRequest) (*domain.BankDetail, error)
	Get(ctx context.Context, userID string) (*domain.BankDetail, error)
}

type service struct {
	users   UserStore
	details BankDetailStore
}

func NewService(users UserStore, details BankDetailStore) Service {
	return &service{users: users, details: details}
}

// Save upserts the user's settlement details. Details may change any number
// of times before a plan is locked in.
func (s *service) Save(ctx context.Context, req domain.BankDetailRequest) (*domain.BankDetail, error) {
	mobile, err := phone.Normalize(req.UserID)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, domain.ErrBadRequest)
	}
	if req.Amount < domain.MinDepositAmount {
		return nil, fmt.Errorf("minimum deposit amount is %d: %w", domain.MinDepositAmount, domain.ErrInvalidAmount)
	}
	if _, err := s.users.Get(ctx, mobile); err != nil {
		return nil, err
	}

	d := &domain.BankDetail{
		UserMobile:    mobile,
		AccountNumber: req.AccountNumber,
		IFSC:          req.IFSC,
		Amount:        req.Amount,
		UpdatedAt:     time.Now().UTC(),
	}
	if err := s.details.Upsert(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *service) Get(ctx context.Context, userID string) (*domain.BankDetail, error) {
	mobile, err := phone.Normalize(userID)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, domain.ErrBadRequest)
	}
	if _, err := s.users.Get(ctx, mobile); err != nil {
		return nil, err
	}
	return s.details.Get(ctx, mobile)
}
