package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"time"

	"github.com/empower-api/internal/domain"
	"github.com/empower-api/internal/infrastructure/phoneemail"
	"github.com/empower-api/internal/pkg/phone"
	"golang.org/x/crypto/bcrypt"
)

// UserStore is the identity store the service depends on.
type UserStore interface {
	Get(ctx context.Context, mobile string) (*domain.User, error)
	Create(ctx context.Context, u *domain.User) error
	Update(ctx context.Context, mobile string, updates map[string]interface{}) error
}

// ChallengeStore holds the single live one-time code per mobile number.
type ChallengeStore interface {
	Put(ctx context.Context, c *domain.Challenge) error
	Get(ctx context.Context, mobile string) (*domain.Challenge, error)
	Delete(ctx context.Context, mobile string) error
}

// SMSSender dispatches the one-time code out of band.
type SMSSender interface {
	SendSMS(ctx context.Context, to, message string) error
}

// TokenSigner mints bearer tokens after a successful credential check.
// May be nil, in which case no bearer is returned.
type TokenSigner interface {
	Sign(mobile, role string) (string, error)
}

// PhoneEmailVerifier validates federated phone.email payloads.
type PhoneEmailVerifier interface {
	Verify(ctx context.Context, userJSONURL string) (*phoneemail.Payload, error)
}

// RegisterResult routes the client between the OTP and MPIN entry flows.
type RegisterResult struct {
	Mobile  string `json:"mobile"`
	Exists  bool   `json:"exists"`
	HasMPIN bool   `json:"hasMpin"`
}

type VerifyResult struct {
	HasMPIN bool   `json:"hasMpin"`
	Bearer  string `json:"-"`
}

type LoginResult struct {
	Mobile string       `json:"mobile"`
	User   *domain.User `json:"user"`
	Bearer string       `json:"-"`
}

type StatusResult struct {
	Exists   bool `json:"exists"`
	Verified bool `json:"verified"`
	HasMPIN  bool `json:"hasMpin"`
}

type Service interface {
	Register(ctx context.Context, req domain.RegisterRequest) (*RegisterResult, error)
	VerifyChallenge(ctx context.Context, mobile, otp string) (*VerifyResult, error)
	SetPin(ctx context.Context, mobile, mpin string) error
	LoginWithPin(ctx context.Context, mobile, mpin string) (*LoginResult, error)
	CheckStatus(ctx context.Context, mobile string) (*StatusResult, error)
	VerifyPhoneEmail(ctx context.Context, userJSONURL string) (*RegisterResult, error)
}

type service struct {
	users      UserStore
	challenges ChallengeStore
	sms        SMSSender
	signer     TokenSigner
	verifier   PhoneEmailVerifier
	otpTTL     time.Duration
}

func NewService(users UserStore, challenges ChallengeStore, sms SMSSender, signer TokenSigner, verifier PhoneEmailVerifier, otpTTL time.Duration) Service {
	return &service{
		users:      users,
		challenges: challenges,
		sms:        sms,
		signer:     signer,
		verifier:   verifier,
		otpTTL:     otpTTL,
	}
}

var mpinPattern = regexp.MustCompile(`^[0-9]{4,6}$`)

// Register creates the user when unseen (unverified) and always issues a
// fresh challenge, superseding any prior live code. The challenge is
// persisted before dispatch: when delivery fails the caller gets
// ErrDeliveryFailure and may simply call Register again to resend.
func (s *service) Register(ctx context.Context, req domain.RegisterRequest) (*RegisterResult, error) {
	mobile, err := phone.Normalize(req.Mobile)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, domain.ErrBadRequest)
	}

	u, err := s.users.Get(ctx, mobile)
	switch {
	case err == nil:
		// existing user, fresh code below
	case errors.Is(err, domain.ErrNotFound):
		now := time.Now().UTC()
		u = &domain.User{
			Mobile:    mobile,
			Name:      req.Name,
			Email:     req.Email,
			Verified:  false,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.users.Create(ctx, u); err != nil {
			if !errors.Is(err, domain.ErrConflict) {
				return nil, err
			}
			// Lost the create race; the concurrent writer's record is the
			// one the result must describe.
			if u, err = s.users.Get(ctx, mobile); err != nil {
				return nil, err
			}
		}
	default:
		return nil, err
	}

	code, err := generateOTP()
	if err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	if err := s.challenges.Put(ctx, &domain.Challenge{
		Mobile:    mobile,
		CodeHash:  string(hash),
		ExpiresAt: time.Now().Add(s.otpTTL).Unix(),
	}); err != nil {
		return nil, err
	}

	if err := s.sms.SendSMS(ctx, mobile, "Your verification code for Empower is: "+code); err != nil {
		// The challenge stays persisted so a resend can follow.
		return nil, fmt.Errorf("send OTP to %s: %w", mobile, domain.ErrDeliveryFailure)
	}

	return &RegisterResult{
		Mobile:  mobile,
		Exists:  u.Verified,
		HasMPIN: u.HasMPIN(),
	}, nil
}

// VerifyChallenge consumes the live code. Absent, expired, and mismatched
// codes are indistinguishable to the caller.
func (s *service) VerifyChallenge(ctx context.Context, mobile, otp string) (*VerifyResult, error) {
	mobile, err := phone.Normalize(mobile)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, domain.ErrBadRequest)
	}

	c, err := s.challenges.Get(ctx, mobile)
	if err != nil {
		return nil, fmt.Errorf("no live challenge: %w", domain.ErrInvalidChallenge)
	}
	if c.ExpiresAt < time.Now().Unix() {
		return nil, fmt.Errorf("challenge expired: %w", domain.ErrInvalidChallenge)
	}
	if bcrypt.CompareHashAndPassword([]byte(c.CodeHash), []byte(otp)) != nil {
		return nil, fmt.Errorf("code mismatch: %w", domain.ErrInvalidChallenge)
	}
	// Delete before reporting success — a matched code must never verify twice.
	if err := s.challenges.Delete(ctx, mobile); err != nil {
		return nil, fmt.Errorf("consume challenge: %w", err)
	}

	if err := s.users.Update(ctx, mobile, map[string]interface{}{"verified": true}); err != nil {
		return nil, err
	}
	u, err := s.users.Get(ctx, mobile)
	if err != nil {
		return nil, err
	}

	res := &VerifyResult{HasMPIN: u.HasMPIN()}
	if s.signer != nil {
		if bearer, err := s.signer.Sign(mobile, domain.RoleUser); err == nil {
			res.Bearer = bearer
		}
	}
	return res, nil
}

// SetPin stores the quick-access PIN. The 4-6 digit policy is enforced here
// as well as at the transport boundary.
func (s *service) SetPin(ctx context.Context, mobile, mpin string) error {
	mobile, err := phone.Normalize(mobile)
	if err != nil {
		return fmt.Errorf("%v: %w", err, domain.ErrBadRequest)
	}
	if !mpinPattern.MatchString(mpin) {
		return fmt.Errorf("MPIN must be 4-6 digits: %w", domain.ErrBadRequest)
	}
	if _, err := s.users.Get(ctx, mobile); err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(mpin), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.users.Update(ctx, mobile, map[string]interface{}{"mpin_hash": string(hash)})
}

// LoginWithPin is the fast path for verified users with a configured PIN.
func (s *service) LoginWithPin(ctx context.Context, mobile, mpin string) (*LoginResult, error) {
	mobile, err := phone.Normalize(mobile)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, domain.ErrBadRequest)
	}
	u, err := s.users.Get(ctx, mobile)
	if err != nil {
		return nil, err
	}
	if !u.HasMPIN() || bcrypt.CompareHashAndPassword([]byte(u.MPINHash), []byte(mpin)) != nil {
		return nil, fmt.Errorf("PIN check failed for %s: %w", mobile, domain.ErrInvalidCredential)
	}

	res := &LoginResult{Mobile: mobile, User: u}
	if s.signer != nil {
		if bearer, err := s.signer.Sign(mobile, domain.RoleUser); err == nil {
			res.Bearer = bearer
		}
	}
	return res, nil
}

// CheckStatus reports how the client should route: OTP entry, MPIN entry, or
// registration. An unknown number is not an error here.
func (s *service) CheckStatus(ctx context.Context, mobile string) (*StatusResult, error) {
	mobile, err := phone.Normalize(mobile)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, domain.ErrBadRequest)
	}
	u, err := s.users.Get(ctx, mobile)
	if errors.Is(err, domain.ErrNotFound) {
		return &StatusResult{}, nil
	}
	if err != nil {
		return nil, err
	}
	return &StatusResult{Exists: true, Verified: u.Verified, HasMPIN: u.HasMPIN()}, nil
}

// VerifyPhoneEmail handles the federated flow: the provider already proved
// control of the number, so the user is created (or flipped) verified
// without a challenge.
func (s *service) VerifyPhoneEmail(ctx context.Context, userJSONURL string) (*RegisterResult, error) {
	if s.verifier == nil {
		return nil, fmt.Errorf("phone.email verification not configured: %w", domain.ErrBadRequest)
	}
	payload, err := s.verifier.Verify(ctx, userJSONURL)
	if err != nil {
		return nil, err
	}
	mobile, err := phone.Normalize(payload.Mobile)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, domain.ErrBadRequest)
	}

	u, err := s.users.Get(ctx, mobile)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		name := payload.Name()
		if name == "" {
			name = "Phone Email User"
		}
		now := time.Now().UTC()
		nu := &domain.User{
			Mobile:    mobile,
			Name:      name,
			Email:     mobile + "@phone.email",
			Verified:  true,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.users.Create(ctx, nu); err != nil && !errors.Is(err, domain.ErrConflict) {
			return nil, err
		}
		return &RegisterResult{Mobile: mobile}, nil
	case err != nil:
		return nil, err
	}

	if err := s.users.Update(ctx, mobile, map[string]interface{}{"verified": true}); err != nil {
		return nil, err
	}
	return &RegisterResult{Mobile: mobile, Exists: u.Verified, HasMPIN: u.HasMPIN()}, nil
}

// generateOTP samples a uniform 6-digit code.
func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
