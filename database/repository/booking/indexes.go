package bookingRepo

import (
	"context"
	"fmt"
	"time"

	"consultme/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const upcomingCellIndex = "uniq_upcoming_cell"

// ensureIndexes creates the ledger and payment indexes.
func (r *MongoBookingRepo) ensureIndexes() error {
	ctx, cancel := newContext(context.Background(), 10*time.Second)
	defer cancel()

	bookingIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true).SetName("uniq_booking_id")},
		{
			Keys: bson.D{
				{Key: "consultant_id", Value: 1},
				{Key: "date", Value: 1},
				{Key: "time_key", Value: 1},
			},
			Options: options.Index().
				SetUnique(true).
				SetName(upcomingCellIndex).
				SetPartialFilterExpression(bson.M{"status": models.BookingStatusUpcoming}),
		},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "date", Value: -1}}, Options: options.Index().SetName("user_date")},
		{Keys: bson.D{{Key: "consultant_id", Value: 1}, {Key: "date", Value: -1}}, Options: options.Index().SetName("consultant_date")},
		{
			Keys: bson.D{{Key: "hold_expires_at", Value: 1}},
			Options: options.Index().
				SetName("pending_holds").
				SetPartialFilterExpression(bson.M{
					"status":         models.BookingStatusUpcoming,
					"payment_status": models.PaymentStatusPending,
				}),
		},
	}
	if _, err := r.bookingColl.Indexes().CreateMany(ctx, bookingIndexes); err != nil {
		return fmt.Errorf("bookings: %w", err)
	}

	paymentIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "payment_id", Value: 1}}, Options: options.Index().SetUnique(true).SetName("uniq_payment_id")},
		{Keys: bson.D{{Key: "booking_id", Value: 1}}, Options: options.Index().SetName("payment_booking")},
	}
	if _, err := r.paymentColl.Indexes().CreateMany(ctx, paymentIndexes); err != nil {
		return fmt.Errorf("payments: %w", err)
	}
	return nil
}
