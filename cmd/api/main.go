package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/empower-api/internal/config"
	"github.com/empower-api/internal/infrastructure/dynamo"
	jwtinfra "github.com/empower-api/internal/infrastructure/jwt"
	"github.com/empower-api/internal/infrastructure/phoneemail"
	s3infra "github.com/empower-api/internal/infrastructure/s3"
	"github.com/empower-api/internal/infrastructure/sns"
	transporthttp "github.com/empower-api/internal/transport/http"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()

	// Bootstrap DynamoDB tables (creates them if they don't exist).
	dynamoClient := dynamo.NewClient(cfg)
	dynamo.Bootstrap(context.Background(), dynamoClient, cfg.DynamoTables)

	// JWT provider (optional — graceful fallback if keys are missing).
	// Without it token issuance is skipped and admin routes stay shut.
	var jwtProvider *jwtinfra.Provider
	if p, err := jwtinfra.NewProvider(cfg); err == nil {
		jwtProvider = p
	} else {
		log.Printf("WARN: JWT provider not available: %v", err)
	}

	// S3 store for payment receipts and the payee QR code.
	s3Client := s3infra.NewClient(cfg)
	s3Store := s3infra.NewStore(s3Client, cfg.S3BucketName)

	// SNS SMS sender; a logging mock keeps local development working.
	smsSender, err := sns.NewSender(cfg)
	if err != nil {
		log.Printf("WARN: SNS sender not available, using mock: %v", err)
		smsSender = sns.MockSender{}
	}

	// Event mirror (no-op when the topic ARN is unset).
	events, err := sns.NewEventPublisher(cfg)
	if err != nil {
		log.Printf("WARN: event publisher not available: %v", err)
		events = sns.NopPublisher{}
	}

	deps := &transporthttp.Deps{
		UserRepo:       dynamo.NewUserRepo(dynamoClient, cfg.DynamoTables.Users),
		ChallengeRepo:  dynamo.NewChallengeRepo(dynamoClient, cfg.DynamoTables.Challenges),
		InvestmentRepo: dynamo.NewInvestmentRepo(dynamoClient, cfg.DynamoTables.Investments),
		LedgerRepo:     dynamo.NewTransactionRepo(dynamoClient, cfg.DynamoTables.Transactions),
		BankDetailRepo: dynamo.NewBankDetailRepo(dynamoClient, cfg.DynamoTables.BankDetails),
		SettingsRepo:   dynamo.NewSettingsRepo(dynamoClient, cfg.DynamoTables.AdminSettings),
		S3Store:        s3Store,
		SMSSender:      smsSender,
		Events:         events,
		PhoneEmail:     phoneemail.NewVerifier(),
		JWTProvider:    jwtProvider,
	}

	router := transporthttp.NewRouter(cfg, deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s (env=%s)", cfg.AppPort, cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}
