package paymongo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/bloomcart/internal/domain/errors"
	"github.com/polkiloo/bloomcart/internal/domain/model"
)

const (
	sessionsPath     = "/v1/checkout_sessions"
	secretKeySetting = "PAYMONGO_SECRET_KEY"
	productIDPrefix  = "product_id_"

	sessionStatusExpired = "expired"
)

// Client talks to the PayMongo Checkout Sessions API.
type Client struct {
	baseURL        *url.URL
	secretKey      string
	paymentMethods []string
	httpClient     *http.Client
	logger         *slog.Logger
}

// NewClient creates a PayMongo client. paymentMethods is used when a checkout
// request does not name its own.
func NewClient(baseURL, secretKey string, paymentMethods []string, timeout time.Duration, logger *slog.Logger) (*Client, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse paymongo url: %w", err)
	}
	if !parsed.IsAbs() {
		return nil, fmt.Errorf("paymongo url must be absolute")
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:        parsed,
		secretKey:      secretKey,
		paymentMethods: paymentMethods,
		logger:         logger,
		httpClient:     &http.Client{Timeout: timeout},
	}, nil
}

func (c *Client) Provider() model.Provider {
	return model.ProviderPayMongo
}

// Configured reports whether a secret key is present.
func (c *Client) Configured() bool {
	return c.secretKey != ""
}

type createRequest struct {
	Data struct {
		Attributes createAttributes `json:"attributes"`
	} `json:"data"`
}

type createAttributes struct {
	LineItems          []lineItem        `json:"line_items"`
	PaymentMethodTypes []string          `json:"payment_method_types"`
	SuccessURL         string            `json:"success_url,omitempty"`
	CancelURL          string            `json:"cancel_url,omitempty"`
	ReferenceNumber    string            `json:"reference_number"`
	Description        string            `json:"description"`
	SendEmailReceipt   bool              `json:"send_email_receipt"`
	ShowDescription    bool              `json:"show_description"`
	ShowLineItems      bool              `json:"show_line_items"`
	Metadata           map[string]string `json:"metadata,omitempty"`
}

type lineItem struct {
	Currency string `json:"currency"`
	Amount   int64  `json:"amount"`
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

type sessionResponse struct {
	Data struct {
		ID         string            `json:"id"`
		Attributes sessionAttributes `json:"attributes"`
	} `json:"data"`
}

type sessionAttributes struct {
	CheckoutURL     string            `json:"checkout_url"`
	ReferenceNumber string            `json:"reference_number"`
	Status          string            `json:"status"`
	Metadata        map[string]string `json:"metadata"`
	LineItems       []lineItem        `json:"line_items"`
	Billing         *struct {
		Email string `json:"email"`
		Name  string `json:"name"`
		Phone string `json:"phone"`
	} `json:"billing"`
	Payments []struct {
		ID         string `json:"id"`
		Attributes struct {
			Status string `json:"status"`
		} `json:"attributes"`
	} `json:"payments"`
	PaymentIntent *struct {
		ID         string `json:"id"`
		Attributes struct {
			Status string `json:"status"`
		} `json:"attributes"`
	} `json:"payment_intent"`
}

type errorResponse struct {
	Errors []struct {
		Code   string `json:"code"`
		Detail string `json:"detail"`
	} `json:"errors"`
}

// CreateSession opens a hosted checkout session for the request.
func (c *Client) CreateSession(ctx context.Context, req model.CheckoutRequest) (*model.CheckoutSession, error) {
	if !c.Configured() {
		return nil, domainErrors.ConfigurationError{Setting: secretKeySetting}
	}

	methods := req.PaymentMethodTypes
	if len(methods) == 0 {
		methods = c.paymentMethods
	}

	var body createRequest
	attrs := &body.Data.Attributes
	attrs.PaymentMethodTypes = methods
	attrs.SuccessURL = req.SuccessURL
	attrs.CancelURL = req.CancelURL
	attrs.ReferenceNumber = req.Reference
	attrs.Description = "Order " + req.Reference
	attrs.ShowDescription = true
	attrs.ShowLineItems = true
	attrs.Metadata = map[string]string{"reference": req.Reference}
	if req.CustomerEmail != "" {
		attrs.Metadata["customer_email"] = req.CustomerEmail
	}

	currency := strings.ToUpper(req.Currency)
	for i, item := range req.Items {
		attrs.LineItems = append(attrs.LineItems, lineItem{
			Currency: currency,
			Amount:   toCentavos(item.Price),
			Name:     item.Title,
			Quantity: item.Quantity,
		})
		if item.ProductID != nil {
			attrs.Metadata[productIDPrefix+strconv.Itoa(i)] = strconv.FormatInt(*item.ProductID, 10)
		}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode paymongo request: %w", err)
	}

	var out sessionResponse
	if err := c.do(ctx, http.MethodPost, sessionsPath, bytes.NewReader(payload), &out); err != nil {
		return nil, err
	}

	reference := out.Data.Attributes.ReferenceNumber
	if reference == "" {
		reference = req.Reference
	}
	return &model.CheckoutSession{ID: out.Data.ID, URL: out.Data.Attributes.CheckoutURL, Reference: reference}, nil
}

// RetrieveSession fetches the authoritative session state.
func (c *Client) RetrieveSession(ctx context.Context, id string) (*model.ProviderSession, error) {
	if !c.Configured() {
		return nil, domainErrors.ConfigurationError{Setting: secretKeySetting}
	}
	if strings.TrimSpace(id) == "" {
		return nil, domainErrors.ErrMissingReference
	}
	if !model.ValidSessionID(id) {
		return nil, domainErrors.ErrInvalidSessionID
	}

	var out sessionResponse
	if err := c.do(ctx, http.MethodGet, sessionsPath+"/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return out.toProviderSession(), nil
}

func (r *sessionResponse) toProviderSession() *model.ProviderSession {
	attrs := r.Data.Attributes

	// Payments are checked before the intent; the first recognised paid
	// status wins.
	var statuses []string
	for _, p := range attrs.Payments {
		statuses = append(statuses, p.Attributes.Status)
	}
	if attrs.PaymentIntent != nil {
		statuses = append(statuses, attrs.PaymentIntent.Attributes.Status)
	}

	raw := attrs.Status
	if len(statuses) > 0 && statuses[0] != "" {
		raw = statuses[0]
	}

	result := &model.ProviderSession{
		ID:            r.Data.ID,
		Reference:     attrs.ReferenceNumber,
		RawStatus:     raw,
		PaymentStatus: model.NormalizePaymentStatus(statuses...),
		Expired:       attrs.Status == sessionStatusExpired,
		CustomerEmail: attrs.Metadata["customer_email"],
	}
	if result.Reference == "" {
		result.Reference = attrs.Metadata["reference"]
	}
	if b := attrs.Billing; b != nil {
		if b.Email != "" {
			result.CustomerEmail = b.Email
		}
		result.CustomerName = b.Name
		result.CustomerPhone = b.Phone
	}

	for i, li := range attrs.LineItems {
		item := model.LineItem{
			Title:    li.Name,
			Price:    fromCentavos(li.Amount),
			Quantity: li.Quantity,
		}
		if raw, ok := attrs.Metadata[productIDPrefix+strconv.Itoa(i)]; ok {
			if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
				item.ProductID = &id
			}
		}
		result.Items = append(result.Items, item)
	}
	return result
}

func (c *Client) do(ctx context.Context, method, p string, body io.Reader, out any) error {
	endpoint := *c.baseURL
	endpoint.Path = path.Join(endpoint.Path, p)

	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), body)
	if err != nil {
		return err
	}
	req.SetBasicAuth(c.secretKey, "")
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("paymongo request: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read paymongo response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr errorResponse
		_ = json.Unmarshal(payload, &apiErr)
		var message string
		if len(apiErr.Errors) > 0 {
			message = apiErr.Errors[0].Detail
		}
		c.logger.Error("paymongo request failed",
			slog.String("method", method),
			slog.String("path", p),
			slog.Int("status", resp.StatusCode),
			slog.String("message", message),
		)
		return domainErrors.ProviderError{
			Provider:   string(model.ProviderPayMongo),
			StatusCode: resp.StatusCode,
			Message:    message,
		}
	}

	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("decode paymongo response: %w", err)
	}
	return nil
}

func toCentavos(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}

func fromCentavos(amount int64) decimal.Decimal {
	return decimal.New(amount, -2)
}
