package stripe

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polkiloo/bloomcart/internal/config"
	domainErrors "github.com/polkiloo/bloomcart/internal/domain/errors"
	"github.com/polkiloo/bloomcart/internal/domain/model"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func newTestClient(t *testing.T, handler http.HandlerFunc, secret string) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client, err := NewClient(srv.URL, secret, time.Second, testLogger())
	require.NoError(t, err)
	return client
}

func roseRequest() model.CheckoutRequest {
	id := int64(1)
	return model.CheckoutRequest{
		Items: []model.LineItem{
			{ProductID: &id, Title: "Rose Bouquet", Price: decimal.NewFromInt(500), Quantity: 2},
			{Title: "Greeting Card", Price: decimal.RequireFromString("49.99"), Quantity: 1},
		},
		CustomerEmail: "ana@example.com",
		SuccessURL:    "https://shop.example/success",
		CancelURL:     "https://shop.example/cart",
		Reference:     "BC-1-abcdef12",
		Currency:      "PHP",
	}
}

func TestNewClientValidatesURL(t *testing.T) {
	_, err := NewClient("://bad", "sk", time.Second, testLogger())
	assert.Error(t, err)
	_, err = NewClient("/relative", "sk", time.Second, testLogger())
	assert.Error(t, err)

	client, err := NewClient("https://api.stripe.com", "", 0, testLogger())
	require.NoError(t, err)
	assert.Equal(t, 15*time.Second, client.httpClient.Timeout)
	assert.False(t, client.Configured())
	assert.Equal(t, model.ProviderStripe, client.Provider())
}

func TestCreateSessionSendsFormEncodedRequest(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/checkout/sessions", r.URL.Path)
		assert.Equal(t, "Bearer sk_test", r.Header.Get("Authorization"))
		assert.Equal(t, "BC-1-abcdef12", r.Header.Get("Idempotency-Key"))
		require.NoError(t, r.ParseForm())

		form := r.PostForm
		assert.Equal(t, "payment", form.Get("mode"))
		assert.Equal(t, "https://shop.example/success?session_id={CHECKOUT_SESSION_ID}", form.Get("success_url"))
		assert.Equal(t, "https://shop.example/cart", form.Get("cancel_url"))
		assert.Equal(t, "BC-1-abcdef12", form.Get("client_reference_id"))
		assert.Equal(t, "BC-1-abcdef12", form.Get("metadata[reference]"))
		assert.Equal(t, "ana@example.com", form.Get("customer_email"))
		assert.Equal(t, "php", form.Get("line_items[0][price_data][currency]"))
		assert.Equal(t, "50000", form.Get("line_items[0][price_data][unit_amount]"))
		assert.Equal(t, "Rose Bouquet", form.Get("line_items[0][price_data][product_data][name]"))
		assert.Equal(t, "1", form.Get("line_items[0][price_data][product_data][metadata][product_id]"))
		assert.Equal(t, "2", form.Get("line_items[0][quantity]"))
		assert.Equal(t, "4999", form.Get("line_items[1][price_data][unit_amount]"))
		_, hasID := form["line_items[1][price_data][product_data][metadata][product_id]"]
		assert.False(t, hasID)

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"cs_test_1","url":"https://checkout.stripe.com/c/pay/cs_test_1"}`)
	}, "sk_test")

	session, err := client.CreateSession(context.Background(), roseRequest())
	require.NoError(t, err)
	assert.Equal(t, "cs_test_1", session.ID)
	assert.Equal(t, "https://checkout.stripe.com/c/pay/cs_test_1", session.URL)
	assert.Equal(t, "BC-1-abcdef12", session.Reference)
}

func TestCreateSessionWithoutSecretFailsFast(t *testing.T) {
	called := false
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) { called = true }, "")

	_, err := client.CreateSession(context.Background(), roseRequest())
	var cfgErr domainErrors.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "STRIPE_SECRET_KEY", cfgErr.Setting)

	_, err = client.RetrieveSession(context.Background(), "cs_test_1")
	require.ErrorAs(t, err, &cfgErr)
	assert.False(t, called, "no request may reach the provider without credentials")
}

func TestCreateSessionSurfacesProviderMessage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error":{"message":"Invalid currency: xyz","type":"invalid_request_error"}}`)
	}, "sk_test")

	_, err := client.CreateSession(context.Background(), roseRequest())
	var provErr domainErrors.ProviderError
	require.ErrorAs(t, err, &provErr)
	assert.Equal(t, http.StatusBadRequest, provErr.StatusCode)
	assert.Equal(t, "Invalid currency: xyz", err.Error())
}

func TestCreateSessionProviderErrorWithoutBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}, "sk_test")

	_, err := client.CreateSession(context.Background(), roseRequest())
	assert.EqualError(t, err, "stripe request failed with status 502")
}

func TestCreateSessionMalformedResponse(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{not json`)
	}, "sk_test")

	_, err := client.CreateSession(context.Background(), roseRequest())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode stripe response")
}

func TestRetrieveSessionMapsLineItemsAndStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v1/checkout/sessions/cs_test_1", r.URL.Path)
		assert.Equal(t, []string{"line_items.data.price.product"}, r.URL.Query()["expand[]"])

		_, _ = io.WriteString(w, `{
			"id": "cs_test_1",
			"payment_status": "paid",
			"client_reference_id": "BC-1-abcdef12",
			"customer_details": {"email": "ana@example.com", "name": "Ana Cruz", "phone": "+639171234567"},
			"line_items": {"data": [
				{"description": "Rose Bouquet", "quantity": 2,
				 "price": {"unit_amount": 50000, "product": {"name": "Rose Bouquet", "metadata": {"product_id": "1"}}}},
				{"description": "", "quantity": 1,
				 "price": {"unit_amount": 4999, "product": {"name": "Greeting Card", "metadata": {}}}},
				{"description": "Legacy", "quantity": 1,
				 "price": {"unit_amount": 100, "product": "prod_123"}}
			]}
		}`)
	}, "sk_test")

	session, err := client.RetrieveSession(context.Background(), "cs_test_1")
	require.NoError(t, err)
	assert.Equal(t, "cs_test_1", session.ID)
	assert.Equal(t, "BC-1-abcdef12", session.Reference)
	assert.Equal(t, model.PaymentStatusPaid, session.PaymentStatus)
	assert.Equal(t, "paid", session.RawStatus)
	assert.Equal(t, "ana@example.com", session.CustomerEmail)
	assert.Equal(t, "Ana Cruz", session.CustomerName)
	assert.Equal(t, "+639171234567", session.CustomerPhone)

	require.Len(t, session.Items, 3)
	require.NotNil(t, session.Items[0].ProductID)
	assert.Equal(t, int64(1), *session.Items[0].ProductID)
	assert.True(t, session.Items[0].Price.Equal(decimal.NewFromInt(500)))
	assert.Equal(t, 2, session.Items[0].Quantity)
	assert.Equal(t, "Greeting Card", session.Items[1].Title)
	assert.Nil(t, session.Items[1].ProductID)
	assert.True(t, session.Items[1].Price.Equal(decimal.RequireFromString("49.99")))
	assert.Equal(t, "Legacy", session.Items[2].Title)
	assert.Nil(t, session.Items[2].ProductID)
}

func TestRetrieveSessionUnpaidIsPending(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"id":"cs_test_2","payment_status":"unpaid","metadata":{"reference":"BC-2"},"customer_email":"bo@example.com"}`)
	}, "sk_test")

	session, err := client.RetrieveSession(context.Background(), "cs_test_2")
	require.NoError(t, err)
	assert.Equal(t, model.PaymentStatusPending, session.PaymentStatus)
	assert.Equal(t, "BC-2", session.Reference)
	assert.Equal(t, "bo@example.com", session.CustomerEmail)
	assert.Empty(t, session.Items)
}

func TestRetrieveSessionRequiresID(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {}, "sk_test")
	_, err := client.RetrieveSession(context.Background(), " ")
	assert.True(t, errors.Is(err, domainErrors.ErrMissingReference))
}

func TestRetrieveSessionTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	client, err := NewClient(srv.URL, "sk_test", time.Second, testLogger())
	require.NoError(t, err)
	srv.Close()

	_, err = client.RetrieveSession(context.Background(), "cs_test_1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stripe request")
}

func TestWithSessionPlaceholder(t *testing.T) {
	cases := map[string]string{
		"":                                   "",
		"https://shop.example/ok":            "https://shop.example/ok?session_id={CHECKOUT_SESSION_ID}",
		"https://shop.example/ok?tab=orders": "https://shop.example/ok?tab=orders&session_id={CHECKOUT_SESSION_ID}",
		"https://shop.example/ok?sid={CHECKOUT_SESSION_ID}": "https://shop.example/ok?sid={CHECKOUT_SESSION_ID}",
	}
	for in, want := range cases {
		assert.Equal(t, want, withSessionPlaceholder(in), "input %q", in)
	}
}

func TestMinorUnitConversion(t *testing.T) {
	assert.Equal(t, int64(50000), toMinorUnits(decimal.NewFromInt(500)))
	assert.Equal(t, int64(1999), toMinorUnits(decimal.RequireFromString("19.985")))
	assert.True(t, fromMinorUnits(127000).Equal(decimal.RequireFromString("1270")))
}

func TestNewClientUsesConfig(t *testing.T) {
	cfg := &config.Config{StripeAPIURL: "https://api.stripe.com", StripeSecretKey: "sk", ProviderTimeout: 3 * time.Second}
	client, err := newClient(clientParams{Config: cfg, Logger: testLogger()})
	require.NoError(t, err)
	assert.True(t, client.Configured())
	assert.Equal(t, 3*time.Second, client.httpClient.Timeout)
	u, _ := url.Parse("https://api.stripe.com")
	assert.Equal(t, u.Host, client.baseURL.Host)
}

func TestRetrieveSessionRejectsMalformedID(t *testing.T) {
	called := false
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
		_, _ = io.WriteString(w, `{"id":"cus_123"}`)
	}, "sk_test")

	for _, id := range []string{"../../customers/cus_123", "cs_1/expire", "cs_1?expand[]=customer", "..%2Fcustomers"} {
		t.Run(id, func(t *testing.T) {
			_, err := client.RetrieveSession(context.Background(), id)
			assert.ErrorIs(t, err, domainErrors.ErrInvalidSessionID)
		})
	}
	assert.False(t, called, "malformed ids must not reach the provider")
}

func TestRetrieveSessionExpired(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"id":"cs_test_3","status":"expired","payment_status":"unpaid"}`)
	}, "sk_test")

	session, err := client.RetrieveSession(context.Background(), "cs_test_3")
	require.NoError(t, err)
	assert.True(t, session.Expired)
	assert.Equal(t, model.PaymentStatusPending, session.PaymentStatus)
	assert.Equal(t, model.OrderStatusCancelled, session.OrderStatus())
}
