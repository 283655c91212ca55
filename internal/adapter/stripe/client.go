package stripe

import (
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
	sessionsPath       = "/v1/checkout/sessions"
	sessionIDTemplate  = "{CHECKOUT_SESSION_ID}"
	secretKeySetting   = "STRIPE_SECRET_KEY"
	productIDMetadata  = "product_id"
	referenceMetadata  = "reference"
	lineItemsExpansion = "line_items.data.price.product"

	sessionStatusExpired = "expired"
)

// Client talks to the Stripe Checkout Sessions API.
type Client struct {
	baseURL    *url.URL
	secretKey  string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a Stripe client. An empty secret key is accepted so the
// server can start; every call then fails with a configuration error.
func NewClient(baseURL, secretKey string, timeout time.Duration, logger *slog.Logger) (*Client, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse stripe url: %w", err)
	}
	if !parsed.IsAbs() {
		return nil, fmt.Errorf("stripe url must be absolute")
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:    parsed,
		secretKey:  secretKey,
		logger:     logger,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

func (c *Client) Provider() model.Provider {
	return model.ProviderStripe
}

// Configured reports whether a secret key is present.
func (c *Client) Configured() bool {
	return c.secretKey != ""
}

type session struct {
	ID                string            `json:"id"`
	URL               string            `json:"url"`
	Status            string            `json:"status"`
	PaymentStatus     string            `json:"payment_status"`
	ClientReferenceID string            `json:"client_reference_id"`
	CustomerEmail     string            `json:"customer_email"`
	Metadata          map[string]string `json:"metadata"`
	CustomerDetails   *struct {
		Email string `json:"email"`
		Name  string `json:"name"`
		Phone string `json:"phone"`
	} `json:"customer_details"`
	LineItems *struct {
		Data []lineItem `json:"data"`
	} `json:"line_items"`
}

type lineItem struct {
	Description string `json:"description"`
	Quantity    int    `json:"quantity"`
	Price       *struct {
		UnitAmount int64           `json:"unit_amount"`
		Product    json.RawMessage `json:"product"`
	} `json:"price"`
}

type product struct {
	Name     string            `json:"name"`
	Metadata map[string]string `json:"metadata"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// CreateSession opens a hosted checkout session for the request.
func (c *Client) CreateSession(ctx context.Context, req model.CheckoutRequest) (*model.CheckoutSession, error) {
	if !c.Configured() {
		return nil, domainErrors.ConfigurationError{Setting: secretKeySetting}
	}

	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("success_url", withSessionPlaceholder(req.SuccessURL))
	form.Set("cancel_url", req.CancelURL)
	form.Set("client_reference_id", req.Reference)
	form.Set("metadata["+referenceMetadata+"]", req.Reference)
	if req.CustomerEmail != "" {
		form.Set("customer_email", req.CustomerEmail)
	}

	currency := strings.ToLower(req.Currency)
	for i, item := range req.Items {
		prefix := fmt.Sprintf("line_items[%d]", i)
		form.Set(prefix+"[quantity]", strconv.Itoa(item.Quantity))
		form.Set(prefix+"[price_data][currency]", currency)
		form.Set(prefix+"[price_data][unit_amount]", strconv.FormatInt(toMinorUnits(item.Price), 10))
		form.Set(prefix+"[price_data][product_data][name]", item.Title)
		if item.ProductID != nil {
			form.Set(prefix+"[price_data][product_data][metadata]["+productIDMetadata+"]", strconv.FormatInt(*item.ProductID, 10))
		}
	}

	headers := http.Header{}
	headers.Set("Content-Type", "application/x-www-form-urlencoded")
	if req.Reference != "" {
		headers.Set("Idempotency-Key", req.Reference)
	}

	var out session
	if err := c.do(ctx, http.MethodPost, sessionsPath, nil, headers, strings.NewReader(form.Encode()), &out); err != nil {
		return nil, err
	}
	return &model.CheckoutSession{ID: out.ID, URL: out.URL, Reference: req.Reference}, nil
}

// RetrieveSession fetches the authoritative session state including line items.
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

	query := url.Values{}
	query.Add("expand[]", lineItemsExpansion)

	var out session
	if err := c.do(ctx, http.MethodGet, sessionsPath+"/"+url.PathEscape(id), query, nil, nil, &out); err != nil {
		return nil, err
	}
	return out.toProviderSession(), nil
}

func (s *session) toProviderSession() *model.ProviderSession {
	result := &model.ProviderSession{
		ID:            s.ID,
		Reference:     s.ClientReferenceID,
		RawStatus:     s.PaymentStatus,
		PaymentStatus: model.NormalizePaymentStatus(s.PaymentStatus),
		Expired:       s.Status == sessionStatusExpired,
		CustomerEmail: s.CustomerEmail,
	}
	if result.Reference == "" {
		result.Reference = s.Metadata[referenceMetadata]
	}
	if d := s.CustomerDetails; d != nil {
		if d.Email != "" {
			result.CustomerEmail = d.Email
		}
		result.CustomerName = d.Name
		result.CustomerPhone = d.Phone
	}
	if s.LineItems == nil {
		return result
	}

	for _, li := range s.LineItems.Data {
		item := model.LineItem{Title: li.Description, Quantity: li.Quantity}
		if li.Price != nil {
			item.Price = fromMinorUnits(li.Price.UnitAmount)
			var p product
			if len(li.Price.Product) > 0 && json.Unmarshal(li.Price.Product, &p) == nil {
				if item.Title == "" {
					item.Title = p.Name
				}
				if raw, ok := p.Metadata[productIDMetadata]; ok {
					if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
						item.ProductID = &id
					}
				}
			}
		}
		result.Items = append(result.Items, item)
	}
	return result
}

func (c *Client) do(ctx context.Context, method, p string, query url.Values, headers http.Header, body io.Reader, out any) error {
	endpoint := *c.baseURL
	endpoint.Path = path.Join(endpoint.Path, p)
	if query != nil {
		endpoint.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), body)
	if err != nil {
		return err
	}
	for key, values := range headers {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.secretKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("stripe request: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read stripe response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr errorResponse
		_ = json.Unmarshal(payload, &apiErr)
		c.logger.Error("stripe request failed",
			slog.String("method", method),
			slog.String("path", p),
			slog.Int("status", resp.StatusCode),
			slog.String("message", apiErr.Error.Message),
		)
		return domainErrors.ProviderError{
			Provider:   string(model.ProviderStripe),
			StatusCode: resp.StatusCode,
			Message:    apiErr.Error.Message,
		}
	}

	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("decode stripe response: %w", err)
	}
	return nil
}

// withSessionPlaceholder makes Stripe append the session id to the success URL
// so the storefront can confirm the payment on return.
func withSessionPlaceholder(raw string) string {
	if raw == "" || strings.Contains(raw, sessionIDTemplate) {
		return raw
	}
	sep := "?"
	if strings.Contains(raw, "?") {
		sep = "&"
	}
	return raw + sep + "session_id=" + sessionIDTemplate
}

func toMinorUnits(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}

func fromMinorUnits(amount int64) decimal.Decimal {
	return decimal.New(amount, -2)
}
