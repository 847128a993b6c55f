// Package payments collects the magistrate court filing fee for approved
// cases through Stripe.
package payments

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v84"
)

// FilingFeeIntent is the client-facing slice of a Stripe payment intent.
type FilingFeeIntent struct {
	IntentID     string `json:"intent_id"`
	ClientSecret string `json:"client_secret"`
	AmountCents  int64  `json:"amount_cents"`
}

type Service struct {
	client   *stripe.Client
	logger   *logrus.Logger
	feeCents int64
}

func New(apiKey string, feeCents int64, logger *logrus.Logger) *Service {
	return &Service{
		client:   stripe.NewClient(apiKey),
		logger:   logger,
		feeCents: feeCents,
	}
}

// FeeCents returns the configured filing fee.
func (s *Service) FeeCents() int64 {
	return s.feeCents
}

// CreateFilingFeeIntent opens a payment intent for the case's filing fee.
// The idempotency key is derived from the case id, so retrying a request
// for the same case returns the original intent instead of double charging.
func (s *Service) CreateFilingFeeIntent(ctx context.Context, caseID string) (*FilingFeeIntent, error) {
	params := &stripe.PaymentIntentCreateParams{
		Amount:      stripe.Int64(s.feeCents),
		Currency:    stripe.String(string(stripe.CurrencyUSD)),
		Description: stripe.String(fmt.Sprintf("Dispossessory filing fee for %s", caseID)),
		Metadata:    map[string]string{"case_id": caseID},
	}
	params.SetIdempotencyKey("filing-fee-" + caseID)

	intent, err := s.client.V1PaymentIntents.Create(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("create filing fee intent: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"case_id":      caseID,
		"intent_id":    intent.ID,
		"amount_cents": s.feeCents,
	}).Info("filing fee intent created")

	return &FilingFeeIntent{
		IntentID:     intent.ID,
		ClientSecret: intent.ClientSecret,
		AmountCents:  s.feeCents,
	}, nil
}
