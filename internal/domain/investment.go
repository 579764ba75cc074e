package domain

import "time"

// Investment lifecycle states. pending -> verifying -> active | rejected.
// An administrator may reset any record back to pending; that is the only
// backward transition.
const (
	InvestmentPending   = "pending"
	InvestmentVerifying = "verifying"
	InvestmentActive    = "active"
	InvestmentRejected  = "rejected"
)

// planMultipliers maps a term in days to its fixed return multiplier.
// The set is closed: any other term fails with ErrInvalidPlan.
var planMultipliers = map[int]float64{
	10: 1.1,
	20: 1.3,
	30: 1.5,
}

// PlanMultiplier returns the multiplier for a term, or ErrInvalidPlan for a
// term outside the enumerated set.
func PlanMultiplier(days int) (float64, error) {
	m, ok := planMultipliers[days]
	if !ok {
		return 0, ErrInvalidPlan
	}
	return m, nil
}

// Investment is a fixed-term commitment. ExpectedReturn is computed once at
// creation from the multiplier table and never recomputed, so the user keeps
// the terms they locked in even if the table changes later.
type Investment struct {
	InvestmentID   string     `json:"id" dynamodbav:"investment_id"`
	UserMobile     string     `json:"userId" dynamodbav:"user_mobile"`
	BaseAmount     float64    `json:"baseAmount" dynamodbav:"base_amount"`
	Days           int        `json:"days" dynamodbav:"days"`
	ExpectedReturn float64    `json:"expectedReturn" dynamodbav:"expected_return"`
	Status         string     `json:"status" dynamodbav:"status"`
	PaymentMethod  string     `json:"paymentMethod,omitempty" dynamodbav:"payment_method"`
	UTRNumber      string     `json:"utrNumber,omitempty" dynamodbav:"utr_number"`
	ReceiptURL     string     `json:"receiptUrl,omitempty" dynamodbav:"receipt_url"`
	CreatedAt      time.Time  `json:"createdAt" dynamodbav:"created_at"`
	SubmittedAt    *time.Time `json:"submittedAt,omitempty" dynamodbav:"submitted_at"`
}

type CreatePlanRequest struct {
	UserID     string  `json:"userId" validate:"required"`
	BaseAmount float64 `json:"baseAmount" validate:"required,gt=0"`
	Days       int     `json:"days" validate:"required"`
}

// AdminInvestment is the admin listing row: an investment joined with its
// owner's display name and mobile.
type AdminInvestment struct {
	Investment
	UserName string `json:"userName"`
}
