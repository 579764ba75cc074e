package domain

import "time"

// Roles carried in JWT claims.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is keyed by its normalized mobile number (one account per number).
// Verified flips false->true once, after a successful OTP or phone.email
// check. MPINHash is empty until the user sets a quick-access PIN.
type User struct {
	Mobile             string    `json:"mobile" dynamodbav:"mobile"`
	Name               string    `json:"name" dynamodbav:"name"`
	Email              string    `json:"email" dynamodbav:"email"`
	Verified           bool      `json:"verified" dynamodbav:"verified"`
	MPINHash           string    `json:"-" dynamodbav:"mpin_hash"`
	ActiveInvestmentID string    `json:"-" dynamodbav:"active_investment_id"`
	CreatedAt          time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt          time.Time `json:"updated" dynamodbav:"updated_at"`
}

// HasMPIN reports whether the quick-access PIN has been configured.
func (u *User) HasMPIN() bool { return u.MPINHash != "" }

type RegisterRequest struct {
	Name   string `json:"name" validate:"required"`
	Email  string `json:"email" validate:"required,email"`
	Mobile string `json:"mobile" validate:"required"`
}

type VerifyOTPRequest struct {
	Mobile string `json:"mobile" validate:"required"`
	OTP    string `json:"otp" validate:"required,len=6,numeric"`
}

type SetupMPINRequest struct {
	Mobile string `json:"mobile" validate:"required"`
	MPIN   string `json:"mpin" validate:"required,min=4,max=6,numeric"`
}

type LoginMPINRequest struct {
	Mobile string `json:"mobile" validate:"required"`
	MPIN   string `json:"mpin" validate:"required"`
}
