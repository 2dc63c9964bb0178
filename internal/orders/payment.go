package orders

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// PaymentProcessor charges the shopper's card. Card tokenization and real
// gateway integration live behind this interface.
type PaymentProcessor interface {
	Charge(ctx context.Context, amount float64, card CardDetails) (*ChargeResult, error)
}

type ChargeResult struct {
	ProcessorRef string
	Approved     bool
	Reason       string
}

// declineTestCard always declines, mirroring the gateway's standard test
// number for the decline path.
const declineTestCard = "4000000000000002"

type mockProcessor struct{}

// NewMockProcessor returns the development processor: approves every charge
// except the decline test card and non-positive amounts.
func NewMockProcessor() PaymentProcessor {
	return &mockProcessor{}
}

func (mockProcessor) Charge(_ context.Context, amount float64, card CardDetails) (*ChargeResult, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("charge amount must be positive, got %.2f", amount)
	}

	if strings.ReplaceAll(card.Number, " ", "") == declineTestCard {
		return &ChargeResult{
			Approved: false,
			Reason:   "card declined",
		}, nil
	}

	return &ChargeResult{
		ProcessorRef: "pay_" + uuid.NewString(),
		Approved:     true,
	}, nil
}
