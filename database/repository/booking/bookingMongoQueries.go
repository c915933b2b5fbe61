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

// FindUpcomingAt returns the upcoming booking in the given cell, whatever its
// payment state.
func (r *MongoBookingRepo) FindUpcomingAt(ctx context.Context, consultantID string, day time.Time, timeKey string) (*models.Booking, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	start, end := dayWindow(day)
	filter := bson.M{
		"consultant_id": consultantID,
		"date":          bson.M{"$gte": start, "$lte": end},
		"time_key":      timeKey,
		"status":        models.BookingStatusUpcoming,
	}
	var booking models.Booking
	if err := r.bookingColl.FindOne(ctx, filter).Decode(&booking); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error fetching booking at cell: %w", err)
	}
	return &booking, nil
}

// ListOccupying returns upcoming bookings on day that are paid, or pending
// with an unexpired hold.
func (r *MongoBookingRepo) ListOccupying(ctx context.Context, consultantID string, day time.Time, now time.Time) ([]models.Booking, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	start, end := dayWindow(day)
	filter := bson.M{
		"consultant_id": consultantID,
		"date":          bson.M{"$gte": start, "$lte": end},
		"status":        models.BookingStatusUpcoming,
		"$or": bson.A{
			bson.M{"payment_status": models.PaymentStatusPaid},
			bson.M{
				"payment_status":  models.PaymentStatusPending,
				"hold_expires_at": bson.M{"$gt": now},
			},
		},
	}
	opts := options.Find().SetProjection(bson.M{"time": 1, "time_key": 1, "status": 1, "payment_status": 1, "hold_expires_at": 1})
	return r.find(ctx, filter, opts)
}

// ListByUser returns the client's bookings, optionally filtered by status.
func (r *MongoBookingRepo) ListByUser(ctx context.Context, userID, status string) ([]models.Booking, error) {
	return r.listBy(ctx, "user_id", userID, status)
}

// ListByConsultant returns the consultant's bookings, optionally filtered by status.
func (r *MongoBookingRepo) ListByConsultant(ctx context.Context, consultantID, status string) ([]models.Booking, error) {
	return r.listBy(ctx, "consultant_id", consultantID, status)
}

func (r *MongoBookingRepo) listBy(ctx context.Context, field, value, status string) ([]models.Booking, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{field: value}
	if status != "" {
		filter["status"] = status
	}
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}, {Key: "time_key", Value: -1}})
	return r.find(ctx, filter, opts)
}

func (r *MongoBookingRepo) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Booking, error) {
	cursor, err := r.bookingColl.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("error fetching bookings: %w", err)
	}
	defer cursor.Close(ctx)

	bookings := []models.Booking{}
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("error decoding bookings: %w", err)
	}
	return bookings, nil
}
