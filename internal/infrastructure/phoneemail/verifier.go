package phoneemail

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/empower-api/internal/domain"
)

// Payload holds the verified identity extracted from a phone.email callback.
type Payload struct {
	Mobile    string
	FirstName string
	LastName  string
}

// Name joins the first and last name, falling back to empty when neither is
// present.
func (p *Payload) Name() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// Verifier fetches and validates phone.email verification payloads. The
// provider hands the client a one-time JSON URL; fetching it proves the user
// completed the provider's own phone check.
type Verifier struct {
	client *http.Client
}

func NewVerifier() *Verifier {
	return &Verifier{client: &http.Client{Timeout: 10 * time.Second}}
}

// Verify fetches the user JSON payload and extracts the confirmed phone
// number. Returns a domain.ErrUnauthorized-wrapped error when the payload is
// unreachable or carries no number.
func (v *Verifier) Verify(ctx context.Context, userJSONURL string) (*Payload, error) {
	if !strings.HasPrefix(userJSONURL, "https://") {
		return nil, fmt.Errorf("verification URL must be https: %w", domain.ErrBadRequest)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, userJSONURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := v.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch verification payload: %w", domain.ErrUnauthorized)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("verification payload returned %d: %w", resp.StatusCode, domain.ErrUnauthorized)
	}

	var body struct {
		UserPhoneNumber string `json:"user_phone_number"`
		UserFirstName   string `json:"user_first_name"`
		UserLastName    string `json:"user_last_name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode verification payload: %w", domain.ErrUnauthorized)
	}
	if body.UserPhoneNumber == "" {
		return nil, fmt.Errorf("payload carries no phone number: %w", domain.ErrUnauthorized)
	}
	return &Payload{
		Mobile:    body.UserPhoneNumber,
		FirstName: body.UserFirstName,
		LastName:  body.UserLastName,
	}, nil
}
