package qrpay

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidSignature is returned when a webhook payload was not signed with
// the configured checksum key.
var ErrInvalidSignature = errors.New("invalid webhook signature")

type Client struct {
	BaseURL     string
	ClientID    string
	APIKey      string
	ChecksumKey string
	HTTPClient  *http.Client
}

type PaymentRequest struct {
	OrderCode   int64  `json:"orderCode"`
	Amount      int64  `json:"amount"`
	Description string `json:"description"`
	ReturnURL   string `json:"returnUrl"`
	CancelURL   string `json:"cancelUrl"`
	Signature   string `json:"signature"`
}

type PaymentLink struct {
	PaymentLinkID string `json:"paymentLinkId"`
	OrderCode     int64  `json:"orderCode"`
	Amount        int64  `json:"amount"`
	Status        string `json:"status"`
	CheckoutURL   string `json:"checkoutUrl"`
	QRCode        string `json:"qrCode"`
}

type apiResponse struct {
	Code string          `json:"code"`
	Desc string          `json:"desc"`
	Data json.RawMessage `json:"data"`
}

// Webhook is the body the provider posts when a payment changes state.
type Webhook struct {
	Code      string                     `json:"code"`
	Desc      string                     `json:"desc"`
	Success   bool                       `json:"success"`
	Data      map[string]json.RawMessage `json:"data"`
	Signature string                     `json:"signature"`
}

type WebhookData struct {
	OrderCode           int64  `json:"orderCode"`
	Amount              int64  `json:"amount"`
	Description         string `json:"description"`
	Reference           string `json:"reference"`
	TransactionDateTime string `json:"transactionDateTime"`
	Code                string `json:"code"`
	Desc                string `json:"desc"`
}

func NewClient(baseURL, clientID, apiKey, checksumKey string) *Client {
	return &Client{
		BaseURL:     strings.TrimRight(baseURL, "/"),
		ClientID:    clientID,
		APIKey:      apiKey,
		ChecksumKey: checksumKey,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *Client) sign(data string) string {
	mac := hmac.New(sha256.New, []byte(c.ChecksumKey))
	mac.Write([]byte(data))
	return hex.EncodeToString(mac.Sum(nil))
}

// SignRequest computes the signature over the request fields in the
// provider's fixed alphabetical order.
func (c *Client) SignRequest(req PaymentRequest) string {
	data := fmt.Sprintf("amount=%d&cancelUrl=%s&description=%s&orderCode=%d&returnUrl=%s",
		req.Amount, req.CancelURL, req.Description, req.OrderCode, req.ReturnURL)
	return c.sign(data)
}

// Create a payment link and QR code for an amount
func (c *Client) CreatePaymentLink(ctx context.Context, req PaymentRequest) (*PaymentLink, error) {
	req.Signature = c.SignRequest(req)

	jsonData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request data: %w", err)
	}

	url := c.BaseURL + "/v2/payment-requests"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-client-id", c.ClientID)
	httpReq.Header.Set("x-api-key", c.APIKey)

	resp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("payment provider returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var response apiResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if response.Code != "00" {
		return nil, fmt.Errorf("payment provider error %s: %s", response.Code, response.Desc)
	}

	var link PaymentLink
	if err := json.Unmarshal(response.Data, &link); err != nil {
		return nil, fmt.Errorf("failed to parse payment link: %w", err)
	}
	return &link, nil
}

// VerifyWebhook checks the signature over the data object (keys sorted,
// key=value pairs joined by &) and decodes it.
func (c *Client) VerifyWebhook(w *Webhook) (*WebhookData, error) {
	if w == nil || w.Data == nil {
		return nil, errors.New("webhook data missing")
	}

	keys := make([]string, 0, len(w.Data))
	for k := range w.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+rawToString(w.Data[k]))
	}

	expected := c.sign(strings.Join(pairs, "&"))
	if !hmac.Equal([]byte(expected), []byte(strings.ToLower(w.Signature))) {
		return nil, ErrInvalidSignature
	}

	raw, err := json.Marshal(w.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to re-encode webhook data: %w", err)
	}
	var data WebhookData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to parse webhook data: %w", err)
	}
	return &data, nil
}

func rawToString(raw json.RawMessage) string {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return ""
	}
	if strings.HasPrefix(s, `"`) {
		if unquoted, err := strconv.Unquote(s); err == nil {
			return unquoted
		}
	}
	return s
}
