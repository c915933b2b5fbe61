package payment

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"consultme/models"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// RedirectURLs are the pages Stripe sends the browser back to.
type RedirectURLs struct {
	Success           string
	Cancel            string
	OnboardingRefresh string
	OnboardingReturn  string
}

// minCheckoutLifetime stays above Stripe's 30 minute floor for expires_at.
const minCheckoutLifetime = 31 * time.Minute

// StripeGateway creates checkout sessions and Connect accounts.
type StripeGateway struct {
	api  *client.API
	urls RedirectURLs
	now  func() time.Time
}

// NewStripeGateway builds a client whose HTTP calls are traced.
func NewStripeGateway(secretKey string, urls RedirectURLs) *StripeGateway {
	return newStripeGateway(secretKey, urls, "")
}

// newStripeGateway points every backend at baseURL when it is set.
func newStripeGateway(secretKey string, urls RedirectURLs, baseURL string) *StripeGateway {
	httpClient := &http.Client{
		Timeout:   30 * time.Second,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
	// GetBackendWithConfig fills in the URL, so each backend gets its own config.
	backend := func(kind stripe.SupportedBackend) stripe.Backend {
		cfg := &stripe.BackendConfig{HTTPClient: httpClient}
		if baseURL != "" {
			cfg.URL = stripe.String(baseURL)
		}
		return stripe.GetBackendWithConfig(kind, cfg)
	}
	backends := &stripe.Backends{
		API:     backend(stripe.APIBackend),
		Connect: backend(stripe.ConnectBackend),
		Uploads: backend(stripe.UploadsBackend),
	}
	return &StripeGateway{api: client.New(secretKey, backends), urls: urls, now: time.Now}
}

// checkoutExpiry rounds up to whole seconds and never asks for less than
// minCheckoutLifetime, which Stripe would reject.
func (g *StripeGateway) checkoutExpiry(want time.Time) int64 {
	if floor := g.now().Add(minCheckoutLifetime); want.Before(floor) {
		want = floor
	}
	return want.Add(time.Second - time.Nanosecond).Unix()
}

// CreateCheckoutSession opens a one-item card checkout for the booking. The
// booking id travels in metadata and the payer in client_reference_id.
func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, in models.CheckoutSessionInput) (string, string, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency: stripe.String(in.Currency),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(in.Description),
				},
				UnitAmount: stripe.Int64(in.Amount),
			},
			Quantity: stripe.Int64(1),
		}},
		ClientReferenceID: stripe.String(in.PayerID),
		SuccessURL:        stripe.String(g.urls.Success),
		CancelURL:         stripe.String(g.urls.Cancel),
	}
	if !in.ExpiresAt.IsZero() {
		params.ExpiresAt = stripe.Int64(g.checkoutExpiry(in.ExpiresAt))
	}
	params.Context = ctx
	params.AddMetadata("booking_id", in.BookingID)
	params.SetIdempotencyKey("checkout:" + in.BookingID)

	session, err := g.api.CheckoutSessions.New(params)
	if err != nil {
		return "", "", fmt.Errorf("stripe checkout session: %w", err)
	}
	return session.ID, session.URL, nil
}

// ExpireCheckoutSession closes an open session. A session that is already
// complete or expired is left alone.
func (g *StripeGateway) ExpireCheckoutSession(ctx context.Context, sessionID string) error {
	params := &stripe.CheckoutSessionExpireParams{}
	params.Context = ctx

	_, err := g.api.CheckoutSessions.Expire(sessionID, params)
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) && stripeErr.HTTPStatusCode == http.StatusBadRequest {
		return nil
	}
	if err != nil {
		return fmt.Errorf("stripe expire checkout session: %w", err)
	}
	return nil
}

// CreateConnectedAccount creates an Express account able to receive transfers.
func (g *StripeGateway) CreateConnectedAccount(ctx context.Context, consultant *models.User) (string, error) {
	params := &stripe.AccountParams{
		Type:  stripe.String(string(stripe.AccountTypeExpress)),
		Email: stripe.String(consultant.Email),
		Capabilities: &stripe.AccountCapabilitiesParams{
			CardPayments: &stripe.AccountCapabilitiesCardPaymentsParams{Requested: stripe.Bool(true)},
			Transfers:    &stripe.AccountCapabilitiesTransfersParams{Requested: stripe.Bool(true)},
		},
	}
	params.Context = ctx
	params.AddMetadata("consultant_id", consultant.ID)
	params.SetIdempotencyKey("account:" + consultant.ID)

	account, err := g.api.Accounts.New(params)
	if err != nil {
		return "", fmt.Errorf("stripe account: %w", err)
	}
	return account.ID, nil
}

// CreateOnboardingLink returns a hosted onboarding URL for the account.
func (g *StripeGateway) CreateOnboardingLink(ctx context.Context, accountID string) (string, error) {
	params := &stripe.AccountLinkParams{
		Account:    stripe.String(accountID),
		RefreshURL: stripe.String(g.urls.OnboardingRefresh),
		ReturnURL:  stripe.String(g.urls.OnboardingReturn),
		Type:       stripe.String("account_onboarding"),
	}
	params.Context = ctx

	link, err := g.api.AccountLinks.New(params)
	if err != nil {
		return "", fmt.Errorf("stripe account link: %w", err)
	}
	return link.URL, nil
}
