package admin

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/empower-api/internal/domain"
	"github.com/empower-api/internal/pkg/id"
)

// Decisions accepted by Decide. "paid" is the legacy spelling of approve
// kept for older admin clients.
const (
	DecisionApprove = "approve"
	DecisionPaid    = "paid"
	DecisionReject  = "reject"
	DecisionReset   = "reset"
)

type UserStore interface {
	Get(ctx context.Context, mobile string) (*domain.User, error)
}

type InvestmentStore interface {
	Get(ctx context.Context, investmentID string) (*domain.Investment, error)
	ScanAll(ctx context.Context) ([]domain.Investment, error)
	UpdateIfStatus(ctx context.Context, investmentID, expectedStatus string, updates map[string]interface{}) error
}

type SettingsStore interface {
	Get(ctx context.Context) (*domain.AdminSettings, error)
	Upsert(ctx context.Context, s *domain.AdminSettings) error
}

// ObjectStore uploads QR code images and presigns receipt reads.
type ObjectStore interface {
	Upload(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
	PresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
}

type TokenSigner interface {
	Sign(mobile, role string) (string, error)
}

type EventPublisher interface {
	Publish(event string, payload interface{})
}

// QRUpload carries a new QR code image for the payment page.
type QRUpload struct {
	Reader      io.Reader
	Filename    string
	ContentType string
}

type Service interface {
	Login(ctx context.Context, accessKey string) (bearer string, err error)
	ListInvestments(ctx context.Context) ([]domain.AdminInvestment, error)
	Decide(ctx context.Context, investmentID, decision string) error
	GetSettings(ctx context.Context) (*domain.AdminSettings, error)
	UpdateSettings(ctx context.Context, upiID string, qr *QRUpload) error
}

type service struct {
	users       UserStore
	investments InvestmentStore
	settings    SettingsStore
	objects     ObjectStore
	signer      TokenSigner
	events      EventPublisher
	accessKey   string
}

func NewService(users UserStore, investments InvestmentStore, settings SettingsStore, objects ObjectStore, signer TokenSigner, events EventPublisher, accessKey string) Service {
	return &service{
		users:       users,
		investments: investments,
		settings:    settings,
		objects:     objects,
		signer:      signer,
		events:      events,
		accessKey:   accessKey,
	}
}

// Login exchanges the shared admin access key for an admin bearer. The
// compare is constant-time; an empty configured key disables admin access
// entirely.
func (s *service) Login(_ context.Context, accessKey string) (string, error) {
	if s.accessKey == "" {
		return "", fmt.Errorf("admin access disabled: %w", domain.ErrForbidden)
	}
	if subtle.ConstantTimeCompare([]byte(accessKey), []byte(s.accessKey)) != 1 {
		return "", fmt.Errorf("bad access key: %w", domain.ErrUnauthorized)
	}
	if s.signer == nil {
		return "", fmt.Errorf("token signing unavailable: %w", domain.ErrForbidden)
	}
	return s.signer.Sign("", domain.RoleAdmin)
}

// ListInvestments is the verification queue: every investment, newest first,
// joined with the owner's name. Receipt links are presigned so the dashboard
// can render them without bucket access.
func (s *service) ListInvestments(ctx context.Context) ([]domain.AdminInvestment, error) {
	investments, err := s.investments.ScanAll(ctx)
	if err != nil {
		return nil, err
	}

	names := make(map[string]string)
	rows := make([]domain.AdminInvestment, 0, len(investments))
	for _, inv := range investments {
		name, ok := names[inv.UserMobile]
		if !ok {
			if u, err := s.users.Get(ctx, inv.UserMobile); err == nil {
				name = u.Name
			} else {
				name = "Unknown"
			}
			names[inv.UserMobile] = name
		}
		if key, ok := objectKey(inv.ReceiptURL); ok {
			if url, err := s.objects.PresignedURL(ctx, key, 15*time.Minute); err == nil {
				inv.ReceiptURL = url
			} else {
				slog.Warn("could not presign receipt", "investment", inv.InvestmentID, "err", err)
			}
		}
		rows = append(rows, domain.AdminInvestment{Investment: inv, UserName: name})
	}
	return rows, nil
}

// Decide applies a verification decision as a single conditional update
// keyed on the status read here, so two admins cannot double-process one
// record. Approve and reject only apply to records still awaiting
// verification; deciding a record already at the target status is a no-op.
func (s *service) Decide(ctx context.Context, investmentID, decision string) error {
	target, err := targetStatus(decision)
	if err != nil {
		return err
	}
	inv, err := s.investments.Get(ctx, investmentID)
	if err != nil {
		return err
	}
	if inv.Status == target {
		return nil
	}
	if target != domain.InvestmentPending && !awaitingVerification(inv.Status) {
		return fmt.Errorf("investment %s is %s, not awaiting verification: %w", investmentID, inv.Status, domain.ErrConflict)
	}

	if err := s.investments.UpdateIfStatus(ctx, investmentID, inv.Status, map[string]interface{}{
		"status": target,
	}); err != nil {
		return err
	}

	inv.Status = target
	s.events.Publish("investment.decided", inv)
	return nil
}

// GetSettings falls back to defaults when the row was never written, so the
// payment page always has a payee.
func (s *service) GetSettings(ctx context.Context) (*domain.AdminSettings, error) {
	settings, err := s.settings.Get(ctx)
	if errors.Is(err, domain.ErrNotFound) {
		return &domain.AdminSettings{UPIID: "invest@personal"}, nil
	}
	if err != nil {
		return nil, err
	}
	if key, ok := objectKey(settings.QRCodeURL); ok {
		if url, err := s.objects.PresignedURL(ctx, key, time.Hour); err == nil {
			settings.QRCodeURL = url
		}
	}
	return settings, nil
}

// UpdateSettings uploads a new QR image when provided and upserts the single
// settings row, keeping the previous QR otherwise.
func (s *service) UpdateSettings(ctx context.Context, upiID string, qr *QRUpload) error {
	qrURL := ""
	if qr != nil {
		key := fmt.Sprintf("qr/%s%s", id.New(), filepath.Ext(qr.Filename))
		url, err := s.objects.Upload(ctx, key, qr.Reader, qr.ContentType)
		if err != nil {
			return fmt.Errorf("upload QR code: %w", domain.ErrStorageFailure)
		}
		qrURL = url
	}

	current, err := s.settings.Get(ctx)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	if qrURL == "" && current != nil {
		qrURL = current.QRCodeURL
	}

	return s.settings.Upsert(ctx, &domain.AdminSettings{
		UPIID:     upiID,
		QRCodeURL: qrURL,
		UpdatedAt: time.Now().UTC(),
	})
}

func targetStatus(decision string) (string, error) {
	switch decision {
	case DecisionApprove, DecisionPaid:
		return domain.InvestmentActive, nil
	case DecisionReject:
		return domain.InvestmentRejected, nil
	case DecisionReset:
		return domain.InvestmentPending, nil
	default:
		return "", fmt.Errorf("unknown decision %q: %w", decision, domain.ErrBadRequest)
	}
}

func awaitingVerification(status string) bool {
	return status == domain.InvestmentPending || status == domain.InvestmentVerifying
}

// objectKey extracts the object key from an s3:// URL written by the store.
func objectKey(url string) (string, bool) {
	const scheme = "s3://"
	if len(url) <= len(scheme) || url[:len(scheme)] != scheme {
		return "", false
	}
	rest := url[len(scheme):]
	for i := 0; i < len(rest); i++ {
		if rest[i] == '/' {
			return rest[i+1:], true
		}
	}
	return "", false
}
