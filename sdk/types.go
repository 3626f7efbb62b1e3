package sdk

import "encoding/json"

// PaymentRequest describes a payment to initiate. Amount and CallbackURL are
// required; BackURL is where the payer is sent if they abandon the flow.
type PaymentRequest struct {
	// Amount is the payment amount. Must be positive and finite.
	Amount float64 `json:"amount"`
	// Currency is the ISO 4217 currency code. Defaults to the account
	// currency when empty.
	Currency string `json:"currency,omitempty"`
	// CallbackURL receives the server-to-server payment notification.
	// Must be an absolute http(s) URL.
	CallbackURL string `json:"callback_url"`
	// BackURL is where the payer's browser returns to. Optional, but must
	// be an absolute http(s) URL when set.
	BackURL string `json:"back_url,omitempty"`
}

// PaymentIntent is the result of initiating a payment: where to send the
// payer, and the id to poll for status.
type PaymentIntent struct {
	PaymentURL    string `json:"payment_url"`
	TransactionID string `json:"transaction_id"`
}

// Transaction is the full record returned by the status endpoint.
type Transaction struct {
	TransactionID string  `json:"transaction_id"`
	Status        string  `json:"status"`
	Amount        float64 `json:"amount"`
	Currency      string  `json:"currency,omitempty"`
	CreatedAt     string  `json:"created_at"`
	UpdatedAt     string  `json:"updated_at"`
	CallbackURL   string  `json:"callback_url,omitempty"`
}

// UnmarshalJSON accepts both "transaction_id" and the older "id" field name
// the API still emits on some routes.
func (t *Transaction) UnmarshalJSON(data []byte) error {
	type alias Transaction
	aux := struct {
		*alias
		ID string `json:"id"`
	}{alias: (*alias)(t)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if t.TransactionID == "" {
		t.TransactionID = aux.ID
	}
	return nil
}

// validateResponse is the body of a successful credential check.
type validateResponse struct {
	Valid   bool   `json:"valid"`
	Account string `json:"account,omitempty"`
}

// apiEnvelope is the error body shape the payment API uses. All fields are
// optional; classification falls back to the raw status when the body is
// absent or not JSON.
type apiEnvelope struct {
	// Error and Message are both used by the API depending on the route.
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
	// Code is a machine-readable error code such as "NOT_FOUND".
	Code string `json:"code,omitempty"`
	// RetryAfter is the rate-limit wait hint in whole seconds.
	RetryAfter int `json:"retry_after,omitempty"`
	// Tier is the account tier the limit applies to ("free", "starter",
	// "business", "enterprise").
	Tier string `json:"tier,omitempty"`
	// Challenge tags the protection challenge type on 403 responses.
	Challenge string `json:"challenge,omitempty"`
}

// message returns whichever of the two message fields is populated.
func (e *apiEnvelope) message() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Error
}
