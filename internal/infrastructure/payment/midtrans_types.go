package payment

// midtransSnapRequest is the body of POST /snap/v1/transactions
type midtransSnapRequest struct {
	TransactionDetails midtransTransactionDetails `json:"transaction_details"`
	CustomerDetails    *midtransCustomerDetails   `json:"customer_details,omitempty"`
	ItemDetails        []midtransItemDetail       `json:"item_details"`
}

type midtransTransactionDetails struct {
	OrderID     string `json:"order_id"`
	GrossAmount int64  `json:"gross_amount"`
}

type midtransCustomerDetails struct {
	Email     string `json:"email,omitempty"`
	FirstName string `json:"first_name,omitempty"`
}

type midtransItemDetail struct {
	ID       string `json:"id"`
	Price    int64  `json:"price"`
	Quantity int    `json:"quantity"`
	Name     string `json:"name"`
}

// midtransSnapResponse is the Snap answer on success
type midtransSnapResponse struct {
	Token       string `json:"token"`
	RedirectURL string `json:"redirect_url"`
}

// midtransErrorResponse is returned by both APIs on failure
type midtransErrorResponse struct {
	ErrorMessages []string `json:"error_messages,omitempty"`
	StatusCode    string   `json:"status_code,omitempty"`
	StatusMessage string   `json:"status_message,omitempty"`
}
