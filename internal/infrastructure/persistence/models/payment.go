package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/arahumroh/backend/internal/domain/payment"
	"github.com/arahumroh/backend/internal/domain/shared"
	"github.com/arahumroh/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// PaymentTransactionModel is the persistence model for the payment Transaction aggregate.
type PaymentTransactionModel struct {
	BaseModel
	OrderID       string                    `gorm:"type:varchar(64);not null;uniqueIndex:uq_payment_transactions_order_id"`
	AccountID     uuid.UUID                 `gorm:"type:uuid;not null;index:idx_pay_tx_account_created,priority:1"`
	Amount        int64                     `gorm:"not null"`
	Kind          payment.TransactionKind   `gorm:"type:varchar(30);not null"`
	Status        payment.TransactionStatus `gorm:"type:varchar(20);not null;index:idx_pay_tx_status_created,priority:1"`
	SessionToken  string                    `gorm:"type:varchar(255)"`
	RedirectURL   string                    `gorm:"type:varchar(500)"`
	PaymentMethod string                    `gorm:"type:varchar(50)"`
	MetadataJSON  string                    `gorm:"column:metadata;type:jsonb;not null;default:'{}'"`
	PaidAt        *time.Time
}

// TableName returns the table name for GORM
func (PaymentTransactionModel) TableName() string {
	return "payment_transactions"
}

// ToDomain converts the persistence model to a domain Transaction.
func (m *PaymentTransactionModel) ToDomain() (*payment.Transaction, error) {
	var metadata payment.Metadata
	if m.MetadataJSON != "" {
		if err := json.Unmarshal([]byte(m.MetadataJSON), &metadata); err != nil {
			return nil, fmt.Errorf("decode metadata of order %s: %w", m.OrderID, err)
		}
	}

	return &payment.Transaction{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: m.BaseModel.ToDomain(),
		},
		OrderID:       m.OrderID,
		AccountID:     m.AccountID,
		Amount:        valueobject.Rupiah(m.Amount),
		Kind:          m.Kind,
		Status:        m.Status,
		SessionToken:  m.SessionToken,
		RedirectURL:   m.RedirectURL,
		PaymentMethod: m.PaymentMethod,
		Metadata:      metadata,
		PaidAt:        m.PaidAt,
	}, nil
}

// PaymentTransactionModelFromDomain creates a persistence model from a domain Transaction.
func PaymentTransactionModelFromDomain(t *payment.Transaction) (*PaymentTransactionModel, error) {
	metadata, err := json.Marshal(t.Metadata)
	if err != nil {
		return nil, fmt.Errorf("encode metadata of order %s: %w", t.OrderID, err)
	}

	m := &PaymentTransactionModel{
		OrderID:       t.OrderID,
		AccountID:     t.AccountID,
		Amount:        t.Amount.Int64(),
		Kind:          t.Kind,
		Status:        t.Status,
		SessionToken:  t.SessionToken,
		RedirectURL:   t.RedirectURL,
		PaymentMethod: t.PaymentMethod,
		MetadataJSON:  string(metadata),
		PaidAt:        t.PaidAt,
	}
	m.FromDomainBaseEntity(t.BaseEntity)
	return m, nil
}
