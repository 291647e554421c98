package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/coursehub/coursehub-gateway/internal/gwerrors"
	"github.com/coursehub/coursehub-gateway/internal/models"
)

const headerIdempotencyKey string = "Idempotency-Key"

type depositInput struct {
	Amount int64 `json:"amount" validate:"gt=0"`
}

type verifyInput struct {
	OrderCode int64 `json:"orderCode" validate:"gt=0"`
}

type PaymentService struct {
	client *Client
}

// CreateDeposit starts a payment of the given amount and returns the page where it is completed.
// A replay after a credential refresh carries the same Idempotency-Key as the first attempt.
func (s *PaymentService) CreateDeposit(ctx context.Context, amount int64) (models.Deposit, error) {
	input := depositInput{Amount: amount}
	if err := s.client.check(input); err != nil {
		return models.Deposit{}, err
	}
	req, err := jsonRequest(http.MethodPost, "/payments/create", input)
	if err != nil {
		return models.Deposit{}, err
	}
	req.Header = http.Header{}
	req.Header.Set(headerIdempotencyKey, s.client.idempotencyKey())
	envelope, err := call[models.Deposit](ctx, s.client, req)
	if err != nil {
		return models.Deposit{}, err
	}
	if envelope.Data.PaymentURL == "" {
		return models.Deposit{}, fmt.Errorf("%w: the payment response has no payment url", gwerrors.ErrInvalidResponse)
	}
	return envelope.Data, nil
}

// Verify confirms a completed payment and returns the purchased course
func (s *PaymentService) Verify(ctx context.Context, orderCode int64) (models.PaymentVerification, error) {
	input := verifyInput{OrderCode: orderCode}
	if err := s.client.check(input); err != nil {
		return models.PaymentVerification{}, err
	}
	return send[models.PaymentVerification](ctx, s.client, http.MethodPost, "/payments/verify", input)
}
