package http

import (
	"github.com/empower-api/internal/infrastructure/dynamo"
	jwtinfra "github.com/empower-api/internal/infrastructure/jwt"
	"github.com/empower-api/internal/infrastructure/phoneemail"
	s3infra "github.com/empower-api/internal/infrastructure/s3"
	"github.com/empower-api/internal/infrastructure/sns"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	UserRepo       *dynamo.UserRepo
	ChallengeRepo  *dynamo.ChallengeRepo
	InvestmentRepo *dynamo.InvestmentRepo
	LedgerRepo     *dynamo.TransactionRepo
	BankDetailRepo *dynamo.BankDetailRepo
	SettingsRepo   *dynamo.SettingsRepo
	S3Store        *s3infra.Store
	SMSSender      sns.SMSSender
	Events         sns.EventPublisher
	PhoneEmail     *phoneemail.Verifier
	JWTProvider    *jwtinfra.Provider
}
