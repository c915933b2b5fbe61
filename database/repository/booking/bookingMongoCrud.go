package bookingRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"consultme/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Insert stores a new booking; a unique index violation maps to ErrSlotTaken.
func (r *MongoBookingRepo) Insert(ctx context.Context, booking *models.Booking) error {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	if _, err := r.bookingColl.InsertOne(ctx, booking); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrSlotTaken
		}
		return fmt.Errorf("error inserting booking: %w", err)
	}
	return nil
}

// GetByID retrieves a booking by its id.
func (r *MongoBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	var booking models.Booking
	if err := r.bookingColl.FindOne(ctx, bson.M{"id": id}).Decode(&booking); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error fetching booking %s: %w", id, err)
	}
	return &booking, nil
}

// Reschedule moves an upcoming booking in place. The unique cell index
// rejects the move when another upcoming booking holds the target cell.
func (r *MongoBookingRepo) Reschedule(ctx context.Context, id string, day time.Time, timeLabel, timeKey string, remindBefore int) (*models.Booking, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"id": id, "status": models.BookingStatusUpcoming}
	update := bson.M{"$set": bson.M{
		"date":          day,
		"time":          timeLabel,
		"time_key":      timeKey,
		"remind_before": remindBefore,
		"updated_at":    time.Now().UTC(),
	}}
	return r.findOneAndUpdate(ctx, filter, update)
}

// AttachCheckoutSession stores the session id on a booking that is still pending.
func (r *MongoBookingRepo) AttachCheckoutSession(ctx context.Context, id, sessionID string) error {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"id": id, "payment_status": models.PaymentStatusPending}
	update := bson.M{"$set": bson.M{"checkout_session_id": sessionID, "updated_at": time.Now().UTC()}}
	res, err := r.bookingColl.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("error attaching checkout session: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkFailed cancels a still pending booking and marks its payment failed.
func (r *MongoBookingRepo) MarkFailed(ctx context.Context, id string) (*models.Booking, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"id": id, "payment_status": models.PaymentStatusPending}
	update := bson.M{
		"$set": bson.M{
			"status":         models.BookingStatusCancelled,
			"payment_status": models.PaymentStatusFailed,
			"updated_at":     time.Now().UTC(),
		},
		"$unset": bson.M{"hold_expires_at": ""},
	}
	return r.findOneAndUpdate(ctx, filter, update)
}

// Cancel cancels an upcoming booking, freeing its cell.
func (r *MongoBookingRepo) Cancel(ctx context.Context, id string) (*models.Booking, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"id": id, "status": models.BookingStatusUpcoming}
	update := bson.M{
		"$set": bson.M{
			"status":     models.BookingStatusCancelled,
			"updated_at": time.Now().UTC(),
		},
		"$unset": bson.M{"hold_expires_at": ""},
	}
	return r.findOneAndUpdate(ctx, filter, update)
}

func (r *MongoBookingRepo) findOneAndUpdate(ctx context.Context, filter, update bson.M) (*models.Booking, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var booking models.Booking
	err := r.bookingColl.FindOneAndUpdate(ctx, filter, update, opts).Decode(&booking)
	switch {
	case err == nil:
		return &booking, nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return nil, ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return nil, ErrSlotTaken
	default:
		return nil, fmt.Errorf("error updating booking: %w", err)
	}
}
