package payment

import (
	"context"
	"errors"

	"consultme/models"

	"go.uber.org/zap"
)

// ErrEventInFlight is returned for a redelivery that arrives while an earlier
// copy of the same event is still being processed. Answering non-2xx makes
// the provider retry, so the event is not lost if that copy fails.
var ErrEventInFlight = errors.New("payment event is still being processed")

// EventHandler applies a verified payment event to the ledger.
type EventHandler interface {
	HandlePaymentEvent(ctx context.Context, evt models.PaymentEvent) error
}

// WebhookProcessor verifies, deduplicates and dispatches provider events.
type WebhookProcessor struct {
	Parser  *EventParser
	Deduper EventDeduper
	Handler EventHandler
	Logger  *zap.Logger
}

// Process handles one webhook delivery. Errors from Parse are returned as is
// so callers can tell signature problems apart; a handler error releases the
// dedupe claim so the provider's retry is processed.
func (w *WebhookProcessor) Process(ctx context.Context, payload []byte, signature string) error {
	evt, err := w.Parser.Parse(payload, signature)
	if err != nil {
		return err
	}
	if evt.Kind == models.PaymentEventIgnored {
		w.Logger.Info("Ignoring payment event", zap.String("eventID", evt.EventID), zap.String("type", evt.RawType))
		return nil
	}

	claimed := false
	if w.Deduper != nil && evt.EventID != "" {
		state, err := w.Deduper.Claim(ctx, evt.EventID)
		switch {
		case err != nil:
			// The ledger is idempotent, so carry on without the fast path.
			w.Logger.Warn("Event dedupe unavailable", zap.String("eventID", evt.EventID), zap.Error(err))
		case state == ClaimCompleted:
			w.Logger.Info("Duplicate payment event", zap.String("eventID", evt.EventID))
			return nil
		case state == ClaimInFlight:
			w.Logger.Info("Payment event already in flight", zap.String("eventID", evt.EventID))
			return ErrEventInFlight
		default:
			claimed = true
		}
	}

	if err := w.Handler.HandlePaymentEvent(ctx, evt); err != nil {
		if claimed {
			if rerr := w.Deduper.Release(context.WithoutCancel(ctx), evt.EventID); rerr != nil {
				w.Logger.Error("Failed to release event claim", zap.String("eventID", evt.EventID), zap.Error(rerr))
			}
		}
		return err
	}
	if claimed {
		if err := w.Deduper.Complete(context.WithoutCancel(ctx), evt.EventID); err != nil {
			// The lease lapses on its own and the ledger rejects a replay.
			w.Logger.Warn("Failed to mark event complete", zap.String("eventID", evt.EventID), zap.Error(err))
		}
	}
	return nil
}
