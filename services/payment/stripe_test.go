package payment

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"consultme/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stripeStub records form posts and answers with canned checkout sessions.
type stripeStub struct {
	mu    sync.Mutex
	forms map[string][]string
	paths []string
}

func newStripeStub(t *testing.T) (*stripeStub, *StripeGateway) {
	stub := &stripeStub{forms: map[string][]string{}}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		stub.mu.Lock()
		stub.paths = append(stub.paths, r.URL.Path)
		for k, v := range r.PostForm {
			stub.forms[k] = v
		}
		stub.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/v1/checkout/sessions":
			_, _ = w.Write([]byte(`{"id":"cs_test_1","object":"checkout.session","status":"open","url":"https://checkout.stripe.com/c/cs_test_1"}`))
		case "/v1/checkout/sessions/cs_test_1/expire":
			_, _ = w.Write([]byte(`{"id":"cs_test_1","object":"checkout.session","status":"expired"}`))
		case "/v1/checkout/sessions/cs_paid/expire":
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":{"type":"invalid_request_error","message":"Only Checkout Sessions with a status in open can be expired."}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":{"type":"invalid_request_error","message":"No such checkout.session"}}`))
		}
	}))
	t.Cleanup(srv.Close)

	g := newStripeGateway("sk_test_123", RedirectURLs{Success: "https://app.example/ok", Cancel: "https://app.example/cancel"}, srv.URL)
	return stub, g
}

func (s *stripeStub) form(key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v := s.forms[key]; len(v) > 0 {
		return v[0]
	}
	return ""
}

func checkoutInput(expiresAt time.Time) models.CheckoutSessionInput {
	return models.CheckoutSessionInput{
		PayerID:     "client-a",
		BookingID:   "b-1",
		Amount:      5000,
		Currency:    "usd",
		Description: "Consultation",
		ExpiresAt:   expiresAt,
	}
}

func TestCreateCheckoutSessionLifetimeMeetsStripeMinimum(t *testing.T) {
	stub, g := newStripeStub(t)
	before := time.Now()

	// A hold that ends sooner than Stripe accepts.
	id, url, err := g.CreateCheckoutSession(context.Background(), checkoutInput(before.Add(10*time.Minute)))
	require.NoError(t, err)
	assert.Equal(t, "cs_test_1", id)
	assert.Equal(t, "https://checkout.stripe.com/c/cs_test_1", url)

	expiresAt, err := strconv.ParseInt(stub.form("expires_at"), 10, 64)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, expiresAt-before.Unix(), int64(30*60+60))
	assert.Equal(t, "b-1", stub.form("metadata[booking_id]"))
	assert.Equal(t, "client-a", stub.form("client_reference_id"))
}

func TestCreateCheckoutSessionKeepsLongerHold(t *testing.T) {
	stub, g := newStripeStub(t)
	want := time.Now().Add(2 * time.Hour).Truncate(time.Second).Add(300 * time.Millisecond)

	_, _, err := g.CreateCheckoutSession(context.Background(), checkoutInput(want))
	require.NoError(t, err)

	expiresAt, err := strconv.ParseInt(stub.form("expires_at"), 10, 64)
	require.NoError(t, err)
	assert.Equal(t, want.Unix()+1, expiresAt, "partial seconds round up")
}

func TestCheckoutExpiryUsesFloor(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	g := &StripeGateway{now: func() time.Time { return now }}

	assert.Equal(t, now.Add(minCheckoutLifetime).Unix(), g.checkoutExpiry(now))
	assert.Equal(t, now.Add(time.Hour).Unix(), g.checkoutExpiry(now.Add(time.Hour)))
}

func TestExpireCheckoutSession(t *testing.T) {
	stub, g := newStripeStub(t)

	require.NoError(t, g.ExpireCheckoutSession(context.Background(), "cs_test_1"))
	assert.NoError(t, g.ExpireCheckoutSession(context.Background(), "cs_paid"), "a session that is no longer open is left alone")
	assert.Error(t, g.ExpireCheckoutSession(context.Background(), "cs_unknown"))
	assert.Contains(t, stub.paths, "/v1/checkout/sessions/cs_test_1/expire")
}
