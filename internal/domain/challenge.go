package domain

// Challenge is the single live one-time code for a mobile number.
// PK: mobile. Issuing a new code overwrites the previous row, and the row
// is deleted on first successful match — a code can never be replayed.
// Only the bcrypt hash of the code is stored.
// ExpiresAt is a Unix timestamp used as DynamoDB TTL.
type Challenge struct {
	Mobile    string `json:"mobile" dynamodbav:"mobile"`
	CodeHash  string `json:"-" dynamodbav:"code_hash"`
	ExpiresAt int64  `json:"expires_at" dynamodbav:"expires_at"` // TTL (Unix seconds)
}
