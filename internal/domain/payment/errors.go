package payment

import (
	"errors"

	"github.com/arahumroh/backend/internal/domain/shared"
)

// ---------------------------------------------------------------------------
// Transaction errors (surfaced to API callers)
// ---------------------------------------------------------------------------

var (
	ErrInvalidAccount      = shared.NewDomainError("PAYMENT_INVALID_ACCOUNT", "Account ID cannot be empty")
	ErrInvalidOrderID      = shared.NewDomainError("PAYMENT_INVALID_ORDER_ID", "Order ID cannot be empty")
	ErrInvalidAmount       = shared.NewDomainError("PAYMENT_INVALID_AMOUNT", "Amount must be a positive integer")
	ErrInvalidKind         = shared.NewDomainError("PAYMENT_INVALID_KIND", "Unknown transaction kind")
	ErrInvalidItems        = shared.NewDomainError("PAYMENT_INVALID_ITEMS", "At least one item with positive price and quantity is required")
	ErrItemTotalMismatch   = shared.NewDomainError("PAYMENT_ITEM_TOTAL_MISMATCH", "Sum of item prices does not equal the amount")
	ErrCreditMismatch      = shared.NewDomainError("PAYMENT_CREDIT_MISMATCH", "Requested credit quantity does not match the amount")
	ErrMissingSession      = shared.NewDomainError("PAYMENT_MISSING_SESSION", "Provider session token cannot be empty")
	ErrTransactionNotFound = shared.NewDomainError("PAYMENT_TRANSACTION_NOT_FOUND", "Payment transaction not found")
	ErrDuplicateOrderID    = shared.NewDomainError("PAYMENT_DUPLICATE_ORDER_ID", "Order ID already exists")
	ErrProviderRejected    = shared.NewDomainError("PAYMENT_PROVIDER_REJECTED", "Payment provider rejected the request")
)

// ---------------------------------------------------------------------------
// Notification errors (webhook boundary)
// ---------------------------------------------------------------------------

var (
	ErrMalformedNotification = shared.NewDomainError("PAYMENT_MALFORMED_NOTIFICATION", "Notification body is not valid JSON")
	ErrMissingOrderID        = shared.NewDomainError("PAYMENT_NOTIFICATION_MISSING_ORDER_ID", "Notification has no order_id")
	ErrInvalidSignature      = shared.NewDomainError("PAYMENT_INVALID_SIGNATURE", "Notification signature is invalid")
	ErrAmountMismatch        = shared.NewDomainError("PAYMENT_AMOUNT_MISMATCH", "Notification amount does not match the transaction")
)

// ---------------------------------------------------------------------------
// Provider errors (infrastructure adapters wrap these)
// ---------------------------------------------------------------------------

var (
	ErrProviderNotConfigured   = errors.New("payment: provider not configured")
	ErrProviderUnavailable     = errors.New("payment: provider temporarily unavailable")
	ErrProviderRequestFailed   = errors.New("payment: provider request failed")
	ErrProviderInvalidResponse = errors.New("payment: invalid provider response")
	ErrProviderOrderUnknown    = errors.New("payment: provider has no record of the order")
)
