package investment

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

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
func (m *mockUserStore) SetActiveInvestment(ctx context.Context, mobile, investmentID string) error {
	return m.Called(ctx, mobile, investmentID).Error(0)
}

type mockInvestmentStore struct{ mock.Mock }

func (m *mockInvestmentStore) Put(ctx context.Context, inv *domain.Investment) error {
	return m.Called(ctx, inv).Error(0)
}
func (m *mockInvestmentStore) Get(ctx context.Context, investmentID string) (*domain.Investment, error) {
	args := m.Called(ctx, investmentID)
	if inv, _ := args.Get(0).(*domain.Investment); inv != nil {
		return inv, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockInvestmentStore) Latest(ctx context.Context, mobile string) (*domain.Investment, error) {
	args := m.Called(ctx, mobile)
	if inv, _ := args.Get(0).(*domain.Investment); inv != nil {
		return inv, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockInvestmentStore) LatestPending(ctx context.Context, mobile string) (*domain.Investment, error) {
	args := m.Called(ctx, mobile)
	if inv, _ := args.Get(0).(*domain.Investment); inv != nil {
		return inv, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockInvestmentStore) UpdateIfStatus(ctx context.Context, investmentID, expectedStatus string, updates map[string]interface{}) error {
	return m.Called(ctx, investmentID, expectedStatus, updates).Error(0)
}

type mockReceiptStore struct{ mock.Mock }

func (m *mockReceiptStore) Upload(ctx context.Context, key string, r io.Reader, contentType string) (string, error) {
	args := m.Called(ctx, key, r, contentType)
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

const mobile = "+919876543210"

// --- CreatePlan ---

func TestCreatePlan_ComputesReturnFromTerm(t *testing.T) {
	cases := []struct {
		days     int
		base     float64
		expected float64
	}{
		{10, 10000, 11000},
		{20, 10000, 13000},
		{30, 10000, 15000},
		{30, 333, 500}, // 333 * 1.5 = 499.5, rounded half away from zero
	}
	for _, tc := range cases {
		us := &mockUserStore{}
		is := &mockInvestmentStore{}
		us.On("Get", mock.Anything, mobile).Return(&domain.User{Mobile: mobile, Verified: true}, nil)
		us.On("SetActiveInvestment", mock.Anything, mobile, mock.Anything).Return(nil)
		is.On("Put", mock.Anything, mock.AnythingOfType("*domain.Investment")).Return(nil)

		svc := NewService(us, is, nil, nopEvents())
		inv, err := svc.CreatePlan(context.Background(), domain.CreatePlanRequest{
			UserID: "9876543210", BaseAmount: tc.base, Days: tc.days,
		})

		require.NoError(t, err, "days=%d", tc.days)
		assert.Equal(t, tc.expected, inv.ExpectedReturn, "days=%d", tc.days)
		assert.Equal(t, domain.InvestmentPending, inv.Status)
		assert.NotEmpty(t, inv.InvestmentID)
	}
}

func TestCreatePlan_UnsupportedTermFailsClosed(t *testing.T) {
	us := &mockUserStore{}
	is := &mockInvestmentStore{}
	us.On("Get", mock.Anything, mobile).Return(&domain.User{Mobile: mobile}, nil)

	svc := NewService(us, is, nil, nopEvents())
	for _, days := range []int{0, 5, 15, 25, 60, -10} {
		_, err := svc.CreatePlan(context.Background(), domain.CreatePlanRequest{
			UserID: "9876543210", BaseAmount: 10000, Days: days,
		})
		require.Error(t, err, "days=%d", days)
		assert.True(t, errors.Is(err, domain.ErrInvalidPlan), "days=%d", days)
	}
	is.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
}

func TestCreatePlan_NonPositiveAmount(t *testing.T) {
	us := &mockUserStore{}
	us.On("Get", mock.Anything, mobile).Return(&domain.User{Mobile: mobile}, nil)

	svc := NewService(us, &mockInvestmentStore{}, nil, nopEvents())
	for _, amount := range []float64{0, -100} {
		_, err := svc.CreatePlan(context.Background(), domain.CreatePlanRequest{
			UserID: "9876543210", BaseAmount: amount, Days: 10,
		})
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrInvalidAmount))
	}
}

func TestCreatePlan_PointerWriteFailureIsNonFatal(t *testing.T) {
	us := &mockUserStore{}
	is := &mockInvestmentStore{}
	us.On("Get", mock.Anything, mobile).Return(&domain.User{Mobile: mobile}, nil)
	us.On("SetActiveInvestment", mock.Anything, mobile, mock.Anything).Return(errors.New("dynamo down"))
	is.On("Put", mock.Anything, mock.Anything).Return(nil)

	svc := NewService(us, is, nil, nopEvents())
	inv, err := svc.CreatePlan(context.Background(), domain.CreatePlanRequest{
		UserID: "9876543210", BaseAmount: 10000, Days: 20,
	})

	require.NoError(t, err)
	assert.Equal(t, float64(13000), inv.ExpectedReturn)
}

func TestCreatePlan_UnknownUser(t *testing.T) {
	us := &mockUserStore{}
	us.On("Get", mock.Anything, mobile).Return(nil, domain.ErrNotFound)

	svc := NewService(us, &mockInvestmentStore{}, nil, nopEvents())
	_, err := svc.CreatePlan(context.Background(), domain.CreatePlanRequest{
		UserID: "9876543210", BaseAmount: 10000, Days: 10,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

// --- SubmitPayment ---

func TestSubmitPayment_MovesPendingToVerifying(t *testing.T) {
	us := &mockUserStore{}
	is := &mockInvestmentStore{}
	rs := &mockReceiptStore{}
	ev := nopEvents()

	us.On("Get", mock.Anything, mobile).Return(&domain.User{
		Mobile: mobile, ActiveInvestmentID: "inv-1",
	}, nil)
	is.On("Get", mock.Anything, "inv-1").Return(&domain.Investment{
		InvestmentID: "inv-1", UserMobile: mobile, Status: domain.InvestmentPending,
	}, nil)
	rs.On("Upload", mock.Anything, "receipts/"+mobile+"/inv-1.png", mock.Anything, "image/png").
		Return("s3://bucket/receipts/"+mobile+"/inv-1.png", nil)
	is.On("UpdateIfStatus", mock.Anything, "inv-1", domain.InvestmentPending, mock.MatchedBy(func(m map[string]interface{}) bool {
		return m["status"] == domain.InvestmentVerifying && m["utr_number"] == "UTR123" && m["receipt_url"] != ""
	})).Return(nil)

	svc := NewService(us, is, rs, ev)
	inv, err := svc.SubmitPayment(context.Background(), PaymentSubmission{
		UserID:      "9876543210",
		UTRNumber:   "UTR123",
		Receipt:     strings.NewReader("png-bytes"),
		Filename:    "proof.png",
		ContentType: "image/png",
	})

	require.NoError(t, err)
	assert.Equal(t, domain.InvestmentVerifying, inv.Status)
	assert.Equal(t, "UPI", inv.PaymentMethod)
	assert.NotNil(t, inv.SubmittedAt)
	is.AssertExpectations(t)
	rs.AssertExpectations(t)
}

func TestSubmitPayment_NoPendingPlan(t *testing.T) {
	us := &mockUserStore{}
	is := &mockInvestmentStore{}
	rs := &mockReceiptStore{}

	us.On("Get", mock.Anything, mobile).Return(&domain.User{Mobile: mobile}, nil)
	is.On("LatestPending", mock.Anything, mobile).Return(nil, domain.ErrNotFound)

	svc := NewService(us, is, rs, nopEvents())
	_, err := svc.SubmitPayment(context.Background(), PaymentSubmission{
		UserID:  "9876543210",
		Receipt: strings.NewReader("png-bytes"),
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	rs.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	is.AssertNotCalled(t, "UpdateIfStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSubmitPayment_UploadFailureLeavesRecordUntouched(t *testing.T) {
	us := &mockUserStore{}
	is := &mockInvestmentStore{}
	rs := &mockReceiptStore{}

	us.On("Get", mock.Anything, mobile).Return(&domain.User{
		Mobile: mobile, ActiveInvestmentID: "inv-1",
	}, nil)
	is.On("Get", mock.Anything, "inv-1").Return(&domain.Investment{
		InvestmentID: "inv-1", UserMobile: mobile, Status: domain.InvestmentPending,
	}, nil)
	rs.On("Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return("", errors.New("s3 down"))

	svc := NewService(us, is, rs, nopEvents())
	_, err := svc.SubmitPayment(context.Background(), PaymentSubmission{
		UserID:   "9876543210",
		Receipt:  strings.NewReader("png-bytes"),
		Filename: "proof.png",
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrStorageFailure))
	is.AssertNotCalled(t, "UpdateIfStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSubmitPayment_StalePointerFallsBackToLatestPending(t *testing.T) {
	us := &mockUserStore{}
	is := &mockInvestmentStore{}

	// Pointer targets an already-active plan; a newer pending one exists.
	us.On("Get", mock.Anything, mobile).Return(&domain.User{
		Mobile: mobile, ActiveInvestmentID: "inv-old",
	}, nil)
	is.On("Get", mock.Anything, "inv-old").Return(&domain.Investment{
		InvestmentID: "inv-old", Status: domain.InvestmentActive,
	}, nil)
	is.On("LatestPending", mock.Anything, mobile).Return(&domain.Investment{
		InvestmentID: "inv-new", UserMobile: mobile, Status: domain.InvestmentPending,
	}, nil)
	is.On("UpdateIfStatus", mock.Anything, "inv-new", domain.InvestmentPending, mock.Anything).Return(nil)

	svc := NewService(us, is, nil, nopEvents())
	inv, err := svc.SubmitPayment(context.Background(), PaymentSubmission{
		UserID:    "9876543210",
		UTRNumber: "UTR456",
	})

	require.NoError(t, err)
	assert.Equal(t, "inv-new", inv.InvestmentID)
}

func TestSubmitPayment_ConcurrentClaimLosesConditionalUpdate(t *testing.T) {
	us := &mockUserStore{}
	is := &mockInvestmentStore{}

	us.On("Get", mock.Anything, mobile).Return(&domain.User{
		Mobile: mobile, ActiveInvestmentID: "inv-1",
	}, nil)
	is.On("Get", mock.Anything, "inv-1").Return(&domain.Investment{
		InvestmentID: "inv-1", Status: domain.InvestmentPending,
	}, nil)
	is.On("UpdateIfStatus", mock.Anything, "inv-1", domain.InvestmentPending, mock.Anything).
		Return(domain.ErrConflict)

	svc := NewService(us, is, nil, nopEvents())
	_, err := svc.SubmitPayment(context.Background(), PaymentSubmission{UserID: "9876543210"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConflict))
}

// --- StatusOf ---

func TestStatusOf_PrefersActivePointer(t *testing.T) {
	us := &mockUserStore{}
	is := &mockInvestmentStore{}

	us.On("Get", mock.Anything, mobile).Return(&domain.User{
		Mobile: mobile, ActiveInvestmentID: "inv-1",
	}, nil)
	is.On("Get", mock.Anything, "inv-1").Return(&domain.Investment{
		InvestmentID: "inv-1", Status: domain.InvestmentVerifying,
	}, nil)

	svc := NewService(us, is, nil, nopEvents())
	inv, err := svc.StatusOf(context.Background(), "9876543210")

	require.NoError(t, err)
	assert.Equal(t, "inv-1", inv.InvestmentID)
	is.AssertNotCalled(t, "Latest", mock.Anything, mock.Anything)
}

func TestStatusOf_FallsBackToLatestWhenPointerUnset(t *testing.T) {
	us := &mockUserStore{}
	is := &mockInvestmentStore{}

	us.On("Get", mock.Anything, mobile).Return(&domain.User{Mobile: mobile}, nil)
	is.On("Latest", mock.Anything, mobile).Return(&domain.Investment{
		InvestmentID: "inv-2", Status: domain.InvestmentActive,
	}, nil)

	svc := NewService(us, is, nil, nopEvents())
	inv, err := svc.StatusOf(context.Background(), "9876543210")

	require.NoError(t, err)
	assert.Equal(t, "inv-2", inv.InvestmentID)
}

func TestStatusOf_NoInvestments(t *testing.T) {
	us := &mockUserStore{}
	is := &mockInvestmentStore{}

	us.On("Get", mock.Anything, mobile).Return(&domain.User{Mobile: mobile}, nil)
	is.On("Latest", mock.Anything, mobile).Return(nil, domain.ErrNotFound)

	svc := NewService(us, is, nil, nopEvents())
	_, err := svc.StatusOf(context.Background(), "9876543210")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}
