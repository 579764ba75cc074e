package domain

import "time"

// MinDepositAmount is the smallest settlement amount accepted with bank
// details, in whole currency units.
const MinDepositAmount = 10000

// BankDetail is one-to-one with a user and upserted freely until a plan is
// locked in.
type BankDetail struct {
	UserMobile    string    `json:"userId" dynamodbav:"user_mobile"`
	AccountNumber string    `json:"accountNumber" dynamodbav:"account_number"`
	IFSC          string    `json:"ifsc" dynamodbav:"ifsc"`
	Amount        float64   `json:"amount" dynamodbav:"amount"`
	UpdatedAt     time.Time `json:"updated" dynamodbav:"updated_at"`
}

type BankDetailRequest struct {
	UserID        string  `json:"userId" validate:"required"`
	AccountNumber string  `json:"accountNumber" validate:"required"`
	IFSC          string  `json:"ifsc" validate:"required"`
	Amount        float64 `json:"amount" validate:"required"`
}
