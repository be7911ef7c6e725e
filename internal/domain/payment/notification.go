package payment

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/arahumroh/backend/internal/domain/shared/valueobject"
)

// FraudStatus is the provider's fraud screening verdict on a capture
type FraudStatus string

const (
	FraudStatusAccept    FraudStatus = "accept"
	FraudStatusChallenge FraudStatus = "challenge"
	FraudStatusDeny      FraudStatus = "deny"
)

// ProviderStatus is the closed set of transaction_status values the provider
// reports. The only implementations are Capture, Settlement, Cancel, Deny,
// Expire and Unknown.
type ProviderStatus interface {
	// Name returns the provider's wire value
	Name() string
	isProviderStatus()
}

// Capture is a card payment captured by the provider, pending fraud screening
type Capture struct {
	Fraud FraudStatus
}

// Settlement means the funds have settled
type Settlement struct{}

// Cancel means the payment was cancelled by the merchant or provider
type Cancel struct{}

// Deny means the payment was rejected by the provider or the bank
type Deny struct{}

// Expire means the customer did not pay before the session deadline
type Expire struct{}

// Unknown carries any other status verbatim (pending, refund, authorize, ...)
type Unknown struct {
	Raw string
}

func (Capture) Name() string    { return "capture" }
func (Settlement) Name() string { return "settlement" }
func (Cancel) Name() string     { return "cancel" }
func (Deny) Name() string       { return "deny" }
func (Expire) Name() string     { return "expire" }
func (u Unknown) Name() string  { return u.Raw }

func (Capture) isProviderStatus()    {}
func (Settlement) isProviderStatus() {}
func (Cancel) isProviderStatus()     {}
func (Deny) isProviderStatus()       {}
func (Expire) isProviderStatus()     {}
func (Unknown) isProviderStatus()    {}

// ParseProviderStatus converts the raw transaction_status and fraud_status
// strings into a ProviderStatus. Matching is case-insensitive.
func ParseProviderStatus(transactionStatus, fraudStatus string) ProviderStatus {
	switch strings.ToLower(strings.TrimSpace(transactionStatus)) {
	case "capture":
		return Capture{Fraud: FraudStatus(strings.ToLower(strings.TrimSpace(fraudStatus)))}
	case "settlement":
		return Settlement{}
	case "cancel":
		return Cancel{}
	case "deny":
		return Deny{}
	case "expire":
		return Expire{}
	default:
		return Unknown{Raw: transactionStatus}
	}
}

// Outcome maps a provider status to the local status it implies.
// The boolean is false when the status carries no decision and the
// transaction must be left as it is.
func Outcome(s ProviderStatus) (TransactionStatus, bool) {
	switch v := s.(type) {
	case Capture:
		if v.Fraud == FraudStatusAccept {
			return TransactionStatusPaid, true
		}
		return "", false
	case Settlement:
		return TransactionStatusPaid, true
	case Cancel, Deny, Expire:
		return TransactionStatusFailed, true
	default:
		return "", false
	}
}

// RawNotification is the provider's JSON notification body
type RawNotification struct {
	OrderID           string `json:"order_id"`
	TransactionStatus string `json:"transaction_status"`
	FraudStatus       string `json:"fraud_status"`
	PaymentType       string `json:"payment_type"`
	StatusCode        string `json:"status_code"`
	GrossAmount       string `json:"gross_amount"`
	Currency          string `json:"currency"`
	SignatureKey      string `json:"signature_key"`
	TransactionID     string `json:"transaction_id"`
}

// Notification is a parsed provider status report, from a webhook or from a
// status query
type Notification struct {
	OrderID       string
	Status        ProviderStatus
	PaymentMethod string
	StatusCode    string
	GrossAmount   string
	Currency      string
	SignatureKey  string
	ProviderTxID  string
}

// ParseNotification decodes a webhook body into a Notification
func ParseNotification(body []byte) (*Notification, error) {
	var raw RawNotification
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, ErrMalformedNotification
	}
	return raw.ToNotification()
}

// ToNotification validates the raw payload and converts it
func (r RawNotification) ToNotification() (*Notification, error) {
	orderID := strings.TrimSpace(r.OrderID)
	if orderID == "" {
		return nil, ErrMissingOrderID
	}
	return &Notification{
		OrderID:       orderID,
		Status:        ParseProviderStatus(r.TransactionStatus, r.FraudStatus),
		PaymentMethod: r.PaymentType,
		StatusCode:    r.StatusCode,
		GrossAmount:   r.GrossAmount,
		Currency:      r.Currency,
		SignatureKey:  r.SignatureKey,
		ProviderTxID:  r.TransactionID,
	}, nil
}

// MatchesAmount checks the reported gross amount and currency against the
// transaction amount. Fields the provider left out are not compared.
func (n *Notification) MatchesAmount(amount valueobject.Rupiah) error {
	if n.Currency != "" && !strings.EqualFold(n.Currency, string(valueobject.IDR)) {
		return fmt.Errorf("%w: currency %q", ErrAmountMismatch, n.Currency)
	}
	if n.GrossAmount == "" {
		return nil
	}
	reported, err := valueobject.ParseRupiah(n.GrossAmount)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrAmountMismatch, err)
	}
	if reported != amount {
		return fmt.Errorf("%w: reported %s, expected %s", ErrAmountMismatch, reported.GrossAmount(), amount.GrossAmount())
	}
	return nil
}
