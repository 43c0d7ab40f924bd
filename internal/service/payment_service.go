package service

import (
	"context"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/costcrew/costcrew/internal/models"
	"github.com/costcrew/costcrew/internal/storage"
)

// PaymentService records settlement payments between members. Recording a
// payment is how a proposed plan entry becomes a ledger entry; once marked
// completed it reduces the debt it settles.
type PaymentService struct {
	store storage.Store
}

// NewPaymentService creates a new PaymentService with the given storage
// backend.
func NewPaymentService(store storage.Store) *PaymentService {
	return &PaymentService{store: store}
}

// RecordPayment validates and persists a payment with pending status.
func (s *PaymentService) RecordPayment(ctx context.Context, groupID, fromUserID, toUserID string, amount decimal.Decimal) (*models.Payment, error) {
	if !amount.IsPositive() {
		return nil, validationf("payment amount must be positive")
	}
	if fromUserID == toUserID {
		return nil, validationf("payer and payee must differ")
	}

	if _, err := s.store.GetGroup(ctx, groupID); err != nil {
		return nil, err
	}
	for _, userID := range []string{fromUserID, toUserID} {
		isMember, err := s.store.IsGroupMember(ctx, groupID, userID)
		if err != nil {
			return nil, err
		}
		if !isMember {
			return nil, validationf("user %s is not a member of the group", userID)
		}
	}

	payment := &models.Payment{
		GroupID:    groupID,
		FromUserID: fromUserID,
		ToUserID:   toUserID,
		Amount:     amount,
		Status:     models.PaymentPending,
	}
	if err := s.store.CreatePayment(ctx, payment); err != nil {
		slog.Error("RecordPayment failed", "group_id", groupID, "error", err)
		return nil, err
	}

	slog.Info("Payment recorded",
		"payment_id", payment.ID,
		"group_id", groupID,
		"from", fromUserID,
		"to", toUserID,
		"amount", amount,
	)
	return payment, nil
}

// ListGroupPayments retrieves a group's recorded payments, newest first.
func (s *PaymentService) ListGroupPayments(ctx context.Context, groupID string) ([]*models.Payment, error) {
	if _, err := s.store.GetGroup(ctx, groupID); err != nil {
		return nil, err
	}
	return s.store.ListPaymentsByGroup(ctx, groupID)
}

// CompletePayment marks a payment as completed, folding it into future
// balance computations.
func (s *PaymentService) CompletePayment(ctx context.Context, paymentID string) (*models.Payment, error) {
	payment, err := s.store.GetPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if payment.Status == models.PaymentCompleted {
		return nil, validationf("payment is already completed")
	}

	if err := s.store.UpdatePaymentStatus(ctx, paymentID, models.PaymentCompleted); err != nil {
		return nil, err
	}
	payment.Status = models.PaymentCompleted

	slog.Info("Payment completed", "payment_id", paymentID)
	return payment, nil
}
