package domain

import "time"

// Ledger entry kinds. The amount magnitude is always positive; the sign is
// implied by the kind.
const (
	TxDeposit  = "deposit"
	TxWithdraw = "withdraw"
)

// Transaction is an immutable ledger entry. The ledger is append-only: rows
// are never updated or deleted, and the balance is a fold over all rows.
type Transaction struct {
	TransactionID string    `json:"id" dynamodbav:"transaction_id"`
	UserMobile    string    `json:"userId" dynamodbav:"user_mobile"`
	Type          string    `json:"type" dynamodbav:"type"`
	Amount        float64   `json:"amount" dynamodbav:"amount"`
	Status        string    `json:"status" dynamodbav:"status"`
	CreatedAt     time.Time `json:"timestamp" dynamodbav:"created_at"`
}

type TransactionRequest struct {
	UserID string  `json:"userId" validate:"required"`
	Amount float64 `json:"amount" validate:"required"`
}
