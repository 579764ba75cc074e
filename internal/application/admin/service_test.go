package admin

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/empower-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockUserStore struct{ mock.Mock }

func (m *mockUserStore) Get(ctx context.Context, mobile string) (*domain.User, error) {
	args := m.Called(ctx, mobile)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockInvestmentStore struct{ mock.Mock }

func (m *mockInvestmentStore) Get(ctx context.Context, investmentID string) (*domain.Investment, error) {
	args := m.Called(ctx, investmentID)
	if inv, _ := args.Get(0).(*domain.Investment); inv != nil {
		return inv, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockInvestmentStore) ScanAll(ctx context.Context) ([]domain.Investment, error) {
	args := m.Called(ctx)
	if invs, _ := args.Get(0).([]domain.Investment); invs != nil {
		return invs, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockInvestmentStore) UpdateIfStatus(ctx context.Context, investmentID, expectedStatus string, updates map[string]interface{}) error {
	return m.Called(ctx, investmentID, expectedStatus, updates).Error(0)
}

type mockSettingsStore struct{ mock.Mock }

func (m *mockSettingsStore) Get(ctx context.Context) (*domain.AdminSettings, error) {
	args := m.Called(ctx)
	if s, _ := args.Get(0).(*domain.AdminSettings); s != nil {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockSettingsStore) Upsert(ctx context.Context, s *domain.AdminSettings) error {
	return m.Called(ctx, s).Error(0)
}

type mockObjectStore struct{ mock.Mock }

func (m *mockObjectStore) Upload(ctx context.Context, key string, r io.Reader, contentType string) (string, error) {
	args := m.Called(ctx, key, r, contentType)
	return args.String(0), args.Error(1)
}
func (m *mockObjectStore) PresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	args := m.Called(ctx, key, ttl)
	return args.String(0), args.Error(1)
}

type mockSigner struct{ mock.Mock }

func (m *mockSigner) Sign(mobile, role string) (string, error) {
	args := m.Called(mobile, role)
	return args.String(0), args.Error(1)
}

type mockEventPublisher struct{ mock.Mock }

func (m *mockEventPublisher) Publish(event string, payload interface{}) {
	m.Called(event, payload)
}

func nopEvents() *mockEventPublisher {
	ev := &mockEventPublisher{}
	ev.On("Publish", mock.Anything, mock.Anything).Maybe()
	return ev
}

// --- Login ---

func TestLogin_CorrectKeyMintsAdminBearer(t *testing.T) {
	signer := &mockSigner{}
	signer.On("Sign", "", domain.RoleAdmin).Return("admin-bearer", nil)

	svc := NewService(nil, nil, nil, nil, signer, nopEvents(), "secret-key")
	bearer, err := svc.Login(context.Background(), "secret-key")

	require.NoError(t, err)
	assert.Equal(t, "admin-bearer", bearer)
}

func TestLogin_WrongKey(t *testing.T) {
	svc := NewService(nil, nil, nil, nil, nil, nopEvents(), "secret-key")
	_, err := svc.Login(context.Background(), "wrong-key")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}

func TestLogin_EmptyConfiguredKeyDisablesAccess(t *testing.T) {
	svc := NewService(nil, nil, nil, nil, nil, nopEvents(), "")
	_, err := svc.Login(context.Background(), "")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrForbidden))
}

func TestLogin_NoSigner(t *testing.T) {
	svc := NewService(nil, nil, nil, nil, nil, nopEvents(), "secret-key")
	_, err := svc.Login(context.Background(), "secret-key")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrForbidden))
}

// --- ListInvestments ---

func TestListInvestments_JoinsNamesAndPresignsReceipts(t *testing.T) {
	us := &mockUserStore{}
	is := &mockInvestmentStore{}
	obs := &mockObjectStore{}

	is.On("ScanAll", mock.Anything).Return([]domain.Investment{
		{InvestmentID: "inv-2", UserMobile: "+911111111111", Status: domain.InvestmentVerifying,
			ReceiptURL: "s3://bucket/receipts/+911111111111/inv-2.png"},
		{InvestmentID: "inv-1", UserMobile: "+911111111111", Status: domain.InvestmentActive},
		{InvestmentID: "inv-3", UserMobile: "+912222222222", Status: domain.InvestmentPending},
	}, nil)
	us.On("Get", mock.Anything, "+911111111111").Return(&domain.User{Mobile: "+911111111111", Name: "Asha"}, nil).Once()
	us.On("Get", mock.Anything, "+912222222222").Return(nil, domain.ErrNotFound)
	obs.On("PresignedURL", mock.Anything, "receipts/+911111111111/inv-2.png", 15*time.Minute).
		Return("https://signed.example/receipt", nil)

	svc := NewService(us, is, nil, obs, nil, nopEvents(), "k")
	rows, err := svc.ListInvestments(context.Background())

	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Asha", rows[0].UserName)
	assert.Equal(t, "https://signed.example/receipt", rows[0].ReceiptURL)
	assert.Equal(t, "Asha", rows[1].UserName)
	assert.Equal(t, "Unknown", rows[2].UserName)
	// one lookup per distinct user
	us.AssertExpectations(t)
}

func TestListInvestments_PresignFailureKeepsStoredURL(t *testing.T) {
	us := &mockUserStore{}
	is := &mockInvestmentStore{}
	obs := &mockObjectStore{}

	is.On("ScanAll", mock.Anything).Return([]domain.Investment{
		{InvestmentID: "inv-1", UserMobile: "+911111111111",
			ReceiptURL: "s3://bucket/receipts/+911111111111/inv-1.png"},
	}, nil)
	us.On("Get", mock.Anything, "+911111111111").Return(&domain.User{Name: "Asha"}, nil)
	obs.On("PresignedURL", mock.Anything, mock.Anything, mock.Anything).Return("", errors.New("s3 down"))

	svc := NewService(us, is, nil, obs, nil, nopEvents(), "k")
	rows, err := svc.ListInvestments(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "s3://bucket/receipts/+911111111111/inv-1.png", rows[0].ReceiptURL)
}

// --- Decide ---

func TestDecide_ApproveVerifyingInvestment(t *testing.T) {
	is := &mockInvestmentStore{}
	is.On("Get", mock.Anything, "inv-1").Return(&domain.Investment{
		InvestmentID: "inv-1", Status: domain.InvestmentVerifying,
	}, nil)
	is.On("UpdateIfStatus", mock.Anything, "inv-1", domain.InvestmentVerifying, map[string]interface{}{
		"status": domain.InvestmentActive,
	}).Return(nil)

	svc := NewService(nil, is, nil, nil, nil, nopEvents(), "k")
	require.NoError(t, svc.Decide(context.Background(), "inv-1", DecisionApprove))
	is.AssertExpectations(t)
}

func TestDecide_PaidIsLegacyApprove(t *testing.T) {
	is := &mockInvestmentStore{}
	is.On("Get", mock.Anything, "inv-1").Return(&domain.Investment{
		InvestmentID: "inv-1", Status: domain.InvestmentPending,
	}, nil)
	is.On("UpdateIfStatus", mock.Anything, "inv-1", domain.InvestmentPending, map[string]interface{}{
		"status": domain.InvestmentActive,
	}).Return(nil)

	svc := NewService(nil, is, nil, nil, nil, nopEvents(), "k")
	require.NoError(t, svc.Decide(context.Background(), "inv-1", DecisionPaid))
}

func TestDecide_RejectVerifyingInvestment(t *testing.T) {
	is := &mockInvestmentStore{}
	is.On("Get", mock.Anything, "inv-1").Return(&domain.Investment{
		InvestmentID: "inv-1", Status: domain.InvestmentVerifying,
	}, nil)
	is.On("UpdateIfStatus", mock.Anything, "inv-1", domain.InvestmentVerifying, map[string]interface{}{
		"status": domain.InvestmentRejected,
	}).Return(nil)

	svc := NewService(nil, is, nil, nil, nil, nopEvents(), "k")
	require.NoError(t, svc.Decide(context.Background(), "inv-1", DecisionReject))
}

func TestDecide_ResetRejectedBackToPending(t *testing.T) {
	is := &mockInvestmentStore{}
	is.On("Get", mock.Anything, "inv-1").Return(&domain.Investment{
		InvestmentID: "inv-1", Status: domain.InvestmentRejected,
	}, nil)
	is.On("UpdateIfStatus", mock.Anything, "inv-1", domain.InvestmentRejected, map[string]interface{}{
		"status": domain.InvestmentPending,
	}).Return(nil)

	svc := NewService(nil, is, nil, nil, nil, nopEvents(), "k")
	require.NoError(t, svc.Decide(context.Background(), "inv-1", DecisionReset))
}

func TestDecide_ApproveActiveIsNoOp(t *testing.T) {
	is := &mockInvestmentStore{}
	is.On("Get", mock.Anything, "inv-1").Return(&domain.Investment{
		InvestmentID: "inv-1", Status: domain.InvestmentActive,
	}, nil)

	svc := NewService(nil, is, nil, nil, nil, nopEvents(), "k")
	require.NoError(t, svc.Decide(context.Background(), "inv-1", DecisionApprove))
	is.AssertNotCalled(t, "UpdateIfStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestDecide_RejectActiveIsConflict(t *testing.T) {
	is := &mockInvestmentStore{}
	is.On("Get", mock.Anything, "inv-1").Return(&domain.Investment{
		InvestmentID: "inv-1", Status: domain.InvestmentActive,
	}, nil)

	svc := NewService(nil, is, nil, nil, nil, nopEvents(), "k")
	err := svc.Decide(context.Background(), "inv-1", DecisionReject)

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConflict))
}

func TestDecide_ConcurrentDecisionLosesConditionalUpdate(t *testing.T) {
	is := &mockInvestmentStore{}
	is.On("Get", mock.Anything, "inv-1").Return(&domain.Investment{
		InvestmentID: "inv-1", Status: domain.InvestmentVerifying,
	}, nil)
	is.On("UpdateIfStatus", mock.Anything, "inv-1", domain.InvestmentVerifying, mock.Anything).
		Return(domain.ErrConflict)

	svc := NewService(nil, is, nil, nil, nil, nopEvents(), "k")
	err := svc.Decide(context.Background(), "inv-1", DecisionApprove)

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConflict))
}

func TestDecide_UnknownDecision(t *testing.T) {
	svc := NewService(nil, &mockInvestmentStore{}, nil, nil, nil, nopEvents(), "k")
	err := svc.Decide(context.Background(), "inv-1", "escalate")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

// --- Settings ---

func TestGetSettings_DefaultsWhenNeverWritten(t *testing.T) {
	ss := &mockSettingsStore{}
	ss.On("Get", mock.Anything).Return(nil, domain.ErrNotFound)

	svc := NewService(nil, nil, ss, nil, nil, nopEvents(), "k")
	settings, err := svc.GetSettings(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "invest@personal", settings.UPIID)
	assert.Empty(t, settings.QRCodeURL)
}

func TestGetSettings_PresignsQRCode(t *testing.T) {
	ss := &mockSettingsStore{}
	obs := &mockObjectStore{}
	ss.On("Get", mock.Anything).Return(&domain.AdminSettings{
		UPIID: "payee@upi", QRCodeURL: "s3://bucket/qr/abc.png",
	}, nil)
	obs.On("PresignedURL", mock.Anything, "qr/abc.png", time.Hour).
		Return("https://signed.example/qr", nil)

	svc := NewService(nil, nil, ss, obs, nil, nopEvents(), "k")
	settings, err := svc.GetSettings(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "payee@upi", settings.UPIID)
	assert.Equal(t, "https://signed.example/qr", settings.QRCodeURL)
}

func TestUpdateSettings_UploadsNewQR(t *testing.T) {
	ss := &mockSettingsStore{}
	obs := &mockObjectStore{}
	obs.On("Upload", mock.Anything, mock.MatchedBy(func(key string) bool {
		return strings.HasPrefix(key, "qr/") && strings.HasSuffix(key, ".png")
	}), mock.Anything, "image/png").Return("s3://bucket/qr/new.png", nil)
	ss.On("Get", mock.Anything).Return(nil, domain.ErrNotFound)
	ss.On("Upsert", mock.Anything, mock.MatchedBy(func(s *domain.AdminSettings) bool {
		return s.UPIID == "payee@upi" && s.QRCodeURL == "s3://bucket/qr/new.png"
	})).Return(nil)

	svc := NewService(nil, nil, ss, obs, nil, nopEvents(), "k")
	err := svc.UpdateSettings(context.Background(), "payee@upi", &QRUpload{
		Reader: strings.NewReader("png-bytes"), Filename: "qr.png", ContentType: "image/png",
	})

	require.NoError(t, err)
	ss.AssertExpectations(t)
	obs.AssertExpectations(t)
}

func TestUpdateSettings_KeepsPriorQRWhenNoneUploaded(t *testing.T) {
	ss := &mockSettingsStore{}
	ss.On("Get", mock.Anything).Return(&domain.AdminSettings{
		UPIID: "old@upi", QRCodeURL: "s3://bucket/qr/old.png",
	}, nil)
	ss.On("Upsert", mock.Anything, mock.MatchedBy(func(s *domain.AdminSettings) bool {
		return s.UPIID == "new@upi" && s.QRCodeURL == "s3://bucket/qr/old.png"
	})).Return(nil)

	svc := NewService(nil, nil, ss, nil, nil, nopEvents(), "k")
	require.NoError(t, svc.UpdateSettings(context.Background(), "new@upi", nil))
	ss.AssertExpectations(t)
}

func TestUpdateSettings_UploadFailure(t *testing.T) {
	ss := &mockSettingsStore{}
	obs := &mockObjectStore{}
	obs.On("Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return("", errors.New("s3 down"))

	svc := NewService(nil, nil, ss, obs, nil, nopEvents(), "k")
	err := svc.UpdateSettings(context.Background(), "payee@upi", &QRUpload{
		Reader: strings.NewReader("x"), Filename: "qr.png", ContentType: "image/png",
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrStorageFailure))
	ss.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}
