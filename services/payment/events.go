package payment

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"consultme/models"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"
)

var (
	ErrWebhookSecretMissing = errors.New("webhook secret is not configured")
	ErrInvalidSignature     = errors.New("invalid webhook signature")
)

const (
	eventSessionCompleted      = "checkout.session.completed"
	eventAsyncPaymentSucceeded = "checkout.session.async_payment_succeeded"
	eventAsyncPaymentFailed    = "checkout.session.async_payment_failed"
	eventSessionExpired        = "checkout.session.expired"
	eventExternalAccount       = "account.external_account.created"
)

// EventParser verifies Stripe webhook signatures and translates events.
type EventParser struct {
	Secret string
}

// Parse verifies payload against the Stripe-Signature header and maps it to
// a domain event. Event types the booking core does not act on come back as
// PaymentEventIgnored.
func (p *EventParser) Parse(payload []byte, signature string) (models.PaymentEvent, error) {
	if p.Secret == "" {
		return models.PaymentEvent{}, ErrWebhookSecretMissing
	}
	evt, err := webhook.ConstructEventWithOptions(payload, signature, p.Secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return models.PaymentEvent{}, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	return translate(evt)
}

func translate(evt stripe.Event) (models.PaymentEvent, error) {
	out := models.PaymentEvent{
		EventID:   evt.ID,
		Kind:      models.PaymentEventIgnored,
		RawType:   string(evt.Type),
		CreatedAt: time.Unix(evt.Created, 0).UTC(),
	}

	switch string(evt.Type) {
	case eventSessionCompleted, eventAsyncPaymentSucceeded, eventAsyncPaymentFailed, eventSessionExpired:
		var session stripe.CheckoutSession
		if err := json.Unmarshal(evt.Data.Raw, &session); err != nil {
			return out, fmt.Errorf("decode checkout session: %w", err)
		}
		out.SessionID = session.ID
		out.BookingID = session.Metadata["booking_id"]
		out.PayerID = session.ClientReferenceID
		out.Amount = session.AmountTotal
		out.Currency = string(session.Currency)

		switch string(evt.Type) {
		case eventSessionCompleted:
			// Delayed payment methods complete the session before the money
			// arrives; those are settled by the async events.
			if session.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid {
				out.Kind = models.PaymentEventSucceeded
			}
		case eventAsyncPaymentSucceeded:
			out.Kind = models.PaymentEventSucceeded
		default:
			out.Kind = models.PaymentEventFailed
		}
	case eventExternalAccount:
		out.Kind = models.PaymentEventAccountReady
		out.AccountID = evt.Account
	}
	return out, nil
}
