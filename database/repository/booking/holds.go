package bookingRepo

import (
	"context"
	"fmt"
	"time"

	"consultme/models"

	"go.mongodb.org/mongo-driver/bson"
)

func expiredHoldFilter(now time.Time) bson.M {
	return bson.M{
		"status":          models.BookingStatusUpcoming,
		"payment_status":  models.PaymentStatusPending,
		"hold_expires_at": bson.M{"$lte": now},
	}
}

func releaseHoldUpdate(now time.Time) bson.M {
	return bson.M{
		"$set": bson.M{
			"status":         models.BookingStatusCancelled,
			"payment_status": models.PaymentStatusFailed,
			"updated_at":     now,
		},
	}
}

// ReleaseExpiredHold cancels the booking only if it is still pending and its
// hold has lapsed; it reports whether anything changed.
func (r *MongoBookingRepo) ReleaseExpiredHold(ctx context.Context, id string, now time.Time) (bool, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	filter := expiredHoldFilter(now)
	filter["id"] = id
	res, err := r.bookingColl.UpdateOne(ctx, filter, releaseHoldUpdate(now))
	if err != nil {
		return false, fmt.Errorf("error releasing hold for booking %s: %w", id, err)
	}
	return res.ModifiedCount == 1, nil
}

// ReleaseExpiredHolds cancels all lapsed pending bookings.
func (r *MongoBookingRepo) ReleaseExpiredHolds(ctx context.Context, now time.Time) (int64, error) {
	ctx, cancel := newContext(ctx, 30*time.Second)
	defer cancel()

	res, err := r.bookingColl.UpdateMany(ctx, expiredHoldFilter(now), releaseHoldUpdate(now))
	if err != nil {
		return 0, fmt.Errorf("error releasing expired holds: %w", err)
	}
	return res.ModifiedCount, nil
}
