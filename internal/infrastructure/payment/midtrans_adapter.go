package payment

import (
	"bytes"
	"context"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/arahumroh/backend/internal/domain/payment"
)

const (
	midtransSnapPath   = "/snap/v1/transactions"
	midtransStatusPath = "/v2/%s/status"

	// maxMidtransResponseSize bounds how much of a provider response is read
	maxMidtransResponseSize = 1 << 20
)

// MidtransAdapter implements payment.Provider and payment.NotificationVerifier
// against the Midtrans Snap and Core APIs
type MidtransAdapter struct {
	config     *MidtransConfig
	httpClient *http.Client
}

// NewMidtransAdapter creates a new Midtrans adapter
func NewMidtransAdapter(config *MidtransConfig) (*MidtransAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &MidtransAdapter{
		config: config,
		httpClient: &http.Client{
			Timeout: config.timeout(),
		},
	}, nil
}

// CreateSession opens a Snap checkout session for the order
func (a *MidtransAdapter) CreateSession(ctx context.Context, req *payment.SessionRequest) (*payment.Session, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	body, err := json.Marshal(a.buildSnapRequest(req))
	if err != nil {
		return nil, fmt.Errorf("midtrans: failed to encode request: %w", err)
	}

	respBody, _, err := a.doRequest(ctx, http.MethodPost, a.config.snapURL()+midtransSnapPath, body)
	if err != nil {
		return nil, err
	}

	var resp midtransSnapResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", payment.ErrProviderInvalidResponse, err)
	}
	if resp.Token == "" {
		return nil, fmt.Errorf("%w: empty token", payment.ErrProviderInvalidResponse)
	}

	return &payment.Session{
		Token:       resp.Token,
		RedirectURL: resp.RedirectURL,
	}, nil
}

// FetchStatus queries the Core API for the current status of an order.
// An order Midtrans has never seen returns payment.ErrProviderOrderUnknown.
func (a *MidtransAdapter) FetchStatus(ctx context.Context, orderID string) (*payment.Notification, error) {
	if orderID == "" {
		return nil, payment.ErrInvalidOrderID
	}

	endpoint := a.config.apiURL() + fmt.Sprintf(midtransStatusPath, url.PathEscape(orderID))
	respBody, statusCode, err := a.doRequest(ctx, http.MethodGet, endpoint, nil)
	if statusCode == http.StatusNotFound {
		return nil, payment.ErrProviderOrderUnknown
	}
	if err != nil {
		return nil, err
	}

	var raw payment.RawNotification
	if err := json.Unmarshal(respBody, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", payment.ErrProviderInvalidResponse, err)
	}
	// The Core API reports some failures with HTTP 200 and the real code in the body
	if raw.StatusCode == "404" {
		return nil, payment.ErrProviderOrderUnknown
	}
	if raw.OrderID == "" {
		raw.OrderID = orderID
	}

	n, err := raw.ToNotification()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", payment.ErrProviderInvalidResponse, err)
	}
	return n, nil
}

// VerifyNotification checks signature_key against
// SHA512(order_id + status_code + gross_amount + server_key)
func (a *MidtransAdapter) VerifyNotification(n *payment.Notification) error {
	if n.SignatureKey == "" {
		return fmt.Errorf("%w: missing signature_key", payment.ErrInvalidSignature)
	}
	expected := Signature(n.OrderID, n.StatusCode, n.GrossAmount, a.config.ServerKey)
	got := strings.ToLower(n.SignatureKey)
	if subtle.ConstantTimeCompare([]byte(expected), []byte(got)) != 1 {
		return payment.ErrInvalidSignature
	}
	return nil
}

// Signature computes the notification signature Midtrans sends as signature_key
func Signature(orderID, statusCode, grossAmount, serverKey string) string {
	sum := sha512.Sum512([]byte(orderID + statusCode + grossAmount + serverKey))
	return hex.EncodeToString(sum[:])
}

func (a *MidtransAdapter) buildSnapRequest(req *payment.SessionRequest) midtransSnapRequest {
	items := make([]midtransItemDetail, len(req.Items))
	for i, item := range req.Items {
		items[i] = midtransItemDetail{
			ID:       item.ID,
			Price:    item.Price.Int64(),
			Quantity: item.Quantity,
			Name:     item.Name,
		}
	}

	body := midtransSnapRequest{
		TransactionDetails: midtransTransactionDetails{
			OrderID:     req.OrderID,
			GrossAmount: req.Amount.Int64(),
		},
		ItemDetails: items,
	}
	if req.Customer.Email != "" || req.Customer.Name != "" {
		body.CustomerDetails = &midtransCustomerDetails{
			Email:     req.Customer.Email,
			FirstName: req.Customer.Name,
		}
	}
	return body
}

// doRequest performs an authenticated request and returns the body and HTTP status
func (a *MidtransAdapter) doRequest(ctx context.Context, method, endpoint string, body []byte) ([]byte, int, error) {
	var reqBody io.Reader
	if body != nil {
		reqBody = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return nil, 0, fmt.Errorf("midtrans: failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.SetBasicAuth(a.config.ServerKey, "")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", payment.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxMidtransResponseSize))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("midtrans: failed to read response: %w", err)
	}

	if resp.StatusCode >= 500 {
		return nil, resp.StatusCode, fmt.Errorf("%w: HTTP %d", payment.ErrProviderUnavailable, resp.StatusCode)
	}
	if resp.StatusCode >= 400 {
		var errResp midtransErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil {
			if len(errResp.ErrorMessages) > 0 {
				return nil, resp.StatusCode, fmt.Errorf("%w: %s", payment.ErrProviderRequestFailed, strings.Join(errResp.ErrorMessages, "; "))
			}
			if errResp.StatusMessage != "" {
				return nil, resp.StatusCode, fmt.Errorf("%w: %s", payment.ErrProviderRequestFailed, errResp.StatusMessage)
			}
		}
		return nil, resp.StatusCode, fmt.Errorf("%w: HTTP %d", payment.ErrProviderRequestFailed, resp.StatusCode)
	}

	return respBody, resp.StatusCode, nil
}

// Ensure MidtransAdapter implements the payment ports
var (
	_ payment.Provider             = (*MidtransAdapter)(nil)
	_ payment.NotificationVerifier = (*MidtransAdapter)(nil)
)
