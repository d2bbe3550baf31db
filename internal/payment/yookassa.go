// Package payment implements the YooKassa collaborator: registering
// redirect payments with fiscal receipts and decoding the asynchronous
// webhook notifications the provider sends back.
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/rassvet/banquet-booking/internal/model"
)

const defaultAPIURL = "https://api.yookassa.ru/v3"

// Webhook event types delivered by YooKassa.
const (
	EventPaymentSucceeded      = "payment.succeeded"
	EventPaymentCanceled       = "payment.canceled"
	EventPaymentWaitingCapture = "payment.waiting_for_capture"
)

// Amount is a monetary value on the wire: a two-decimal string plus
// currency code.
type Amount struct {
	Value    string `json:"value"`
	Currency string `json:"currency"`
}

// ReceiptCustomer identifies the payer on the fiscal receipt. Email is
// mandatory for receipt delivery.
type ReceiptCustomer struct {
	Email    string `json:"email"`
	FullName string `json:"full_name,omitempty"`
	Phone    string `json:"phone,omitempty"`
}

// ReceiptItem is one fiscal receipt line.
type ReceiptItem struct {
	Description    string `json:"description"`
	Quantity       string `json:"quantity"`
	Amount         Amount `json:"amount"`
	VATCode        int    `json:"vat_code"`
	PaymentSubject string `json:"payment_subject"`
	PaymentMode    string `json:"payment_mode"`
}

// Receipt is the fiscal receipt attached to a payment.
type Receipt struct {
	Customer ReceiptCustomer `json:"customer"`
	Items    []ReceiptItem   `json:"items"`
}

type methodData struct {
	Type string `json:"type"`
}

type confirmation struct {
	Type            string `json:"type"`
	ReturnURL       string `json:"return_url,omitempty"`
	ConfirmationURL string `json:"confirmation_url,omitempty"`
}

type createPaymentRequest struct {
	Amount            Amount            `json:"amount"`
	PaymentMethodData *methodData       `json:"payment_method_data,omitempty"`
	Confirmation      confirmation      `json:"confirmation"`
	Description       string            `json:"description,omitempty"`
	Metadata          map[string]string `json:"metadata,omitempty"`
	Capture           bool              `json:"capture"`
	Receipt           *Receipt          `json:"receipt,omitempty"`
}

// Payment is the subset of the provider's payment object this service
// uses. Metadata carries the booking id end-to-end so webhooks can be
// correlated back to a booking.
type Payment struct {
	ID           string            `json:"id"`
	Status       string            `json:"status"`
	Amount       Amount            `json:"amount"`
	Confirmation confirmation      `json:"confirmation"`
	Metadata     map[string]string `json:"metadata"`
}

// ConfirmationURL is the redirect target the payer must be sent to.
func (p Payment) ConfirmationURL() string { return p.Confirmation.ConfirmationURL }

// Notification is the webhook envelope posted by the provider.
type Notification struct {
	Event  string  `json:"event"`
	Object Payment `json:"object"`
}

// Client calls the YooKassa REST API using shop-id/secret basic auth.
// Every create request carries a fresh UUID idempotence key as the API
// requires.
type Client struct {
	shopID    string
	secretKey string
	baseURL   string
	http      *http.Client
}

// NewClient returns a Client for the given shop credentials. baseURL
// overrides the production API endpoint and is meant for tests; pass ""
// for the real service.
func NewClient(shopID, secretKey, baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultAPIURL
	}
	return &Client{
		shopID:    shopID,
		secretKey: secretKey,
		baseURL:   baseURL,
		http:      &http.Client{Timeout: 15 * time.Second},
	}
}

// CreatePayment registers a redirect payment and returns the provider's
// payment object, including the URL the payer must be redirected to.
func (c *Client) CreatePayment(ctx context.Context, amount float64, description, returnURL string, metadata map[string]string, receipt *Receipt) (*Payment, error) {
	body := createPaymentRequest{
		Amount:            Amount{Value: FormatAmount(amount), Currency: "RUB"},
		PaymentMethodData: &methodData{Type: "bank_card"},
		Confirmation:      confirmation{Type: "redirect", ReturnURL: returnURL},
		Description:       description,
		Metadata:          metadata,
		Capture:           true,
		Receipt:           receipt,
	}
	buf, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/payments", bytes.NewReader(buf))
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(c.shopID, c.secretKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotence-Key", uuid.NewString())

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("yookassa: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr struct {
			Description string `json:"description"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		if apiErr.Description == "" {
			apiErr.Description = resp.Status
		}
		return nil, fmt.Errorf("yookassa: create payment failed: %s", apiErr.Description)
	}

	var p Payment
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return nil, fmt.Errorf("yookassa: decode response: %w", err)
	}
	return &p, nil
}

// FormatAmount renders a ruble amount as the two-decimal string the
// provider expects.
func FormatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// BuildReceipt constructs the fiscal receipt for a booking: one service
// line for the hall rental carrying the booking total minus the menu
// lines, then one commodity line per ordered dish. The receipt total
// therefore always equals the payment amount, which the provider enforces
// strictly.
func BuildReceipt(b *model.Booking) (*Receipt, error) {
	if b.Email == "" {
		return nil, errors.New("customer email is required for a receipt")
	}

	var menuTotal float64
	menuLines := make([]ReceiptItem, 0, len(b.MenuItems))
	for i, it := range b.MenuItems {
		qty := it.Quantity
		if qty < 1 {
			qty = 1
		}
		line := float64(qty) * it.Price
		menuTotal += line
		desc := it.Name
		if desc == "" {
			desc = fmt.Sprintf("Item %d", i+1)
		}
		menuLines = append(menuLines, ReceiptItem{
			Description:    clip(desc, 128),
			Quantity:       strconv.Itoa(qty),
			Amount:         Amount{Value: FormatAmount(line), Currency: "RUB"},
			VATCode:        1,
			PaymentSubject: "commodity",
			PaymentMode:    "full_payment",
		})
	}

	rental := b.TotalAmount - menuTotal
	if rental < 0 {
		return nil, fmt.Errorf("menu total %.2f exceeds booking total %.2f", menuTotal, b.TotalAmount)
	}

	items := make([]ReceiptItem, 0, len(menuLines)+1)
	if rental > 0 {
		items = append(items, ReceiptItem{
			Description:    clip(fmt.Sprintf("Banquet hall %d rental, %s %s (%dh)", b.HallNumber, b.Date, b.Time, b.Duration), 128),
			Quantity:       "1",
			Amount:         Amount{Value: FormatAmount(rental), Currency: "RUB"},
			VATCode:        1,
			PaymentSubject: "service",
			PaymentMode:    "full_payment",
		})
	}
	items = append(items, menuLines...)
	if len(items) == 0 {
		return nil, errors.New("receipt has no items")
	}

	return &Receipt{
		Customer: ReceiptCustomer{Email: b.Email, FullName: b.Name, Phone: b.Phone},
		Items:    items,
	}, nil
}

func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
