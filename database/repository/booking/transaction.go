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

// ApplyPayment inserts the payment record, marks the booking paid and credits
// the consultant's balance atomically. The unique payment_id index makes a
// replay fail with ErrPaymentAlreadyApplied before anything is credited.
func (r *MongoBookingRepo) ApplyPayment(ctx context.Context, payment *models.Payment) (*models.Booking, error) {
	ctx, cancel := newContext(ctx, 15*time.Second)
	defer cancel()

	client := r.bookingColl.Database().Client()
	sess, err := client.StartSession()
	if err != nil {
		return nil, fmt.Errorf("could not start mongo session: %w", err)
	}
	defer sess.EndSession(ctx)

	var applied models.Booking
	txnFn := func(sc mongo.SessionContext) error {
		var booking models.Booking
		if err := r.bookingColl.FindOne(sc, bson.M{"id": payment.BookingID}).Decode(&booking); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return ErrNotFound
			}
			return fmt.Errorf("fetch booking failed: %w", err)
		}
		if payment.UserID != "" && booking.UserID != payment.UserID {
			return ErrPayerMismatch
		}

		payment.ConsultantID = booking.ConsultantID
		if _, err := r.paymentColl.InsertOne(sc, payment); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return ErrPaymentAlreadyApplied
			}
			return fmt.Errorf("insert payment failed: %w", err)
		}

		now := time.Now().UTC()
		set := bson.M{
			"payment_status": models.PaymentStatusPaid,
			"transaction_id": payment.SessionID,
			"updated_at":     now,
		}
		// A payment arriving after the hold was released reclaims the cell
		// only when nobody else has taken it meanwhile.
		if booking.Status == models.BookingStatusCancelled && booking.PaymentStatus == models.PaymentStatusFailed {
			taken, err := r.bookingColl.CountDocuments(sc, bson.M{
				"consultant_id": booking.ConsultantID,
				"date":          booking.Date,
				"time_key":      booking.TimeKey,
				"status":        models.BookingStatusUpcoming,
			})
			if err != nil {
				return fmt.Errorf("cell lookup failed: %w", err)
			}
			if taken == 0 {
				set["status"] = models.BookingStatusUpcoming
			}
		}

		opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
		update := bson.M{"$set": set, "$unset": bson.M{"hold_expires_at": ""}}
		if err := r.bookingColl.FindOneAndUpdate(sc, bson.M{"id": booking.ID}, update, opts).Decode(&applied); err != nil {
			return fmt.Errorf("mark booking paid failed: %w", err)
		}

		credit := bson.M{
			"$inc": bson.M{"balance": payment.Amount},
			"$set": bson.M{"updated_at": now},
		}
		res, err := r.userColl.UpdateOne(sc, bson.M{"id": booking.ConsultantID}, credit)
		if err != nil {
			return fmt.Errorf("credit consultant failed: %w", err)
		}
		if res.MatchedCount == 0 {
			return fmt.Errorf("credit consultant failed: consultant %s not found", booking.ConsultantID)
		}
		return nil
	}

	if err := mongo.WithSession(ctx, sess, func(sc mongo.SessionContext) error {
		if err := sc.StartTransaction(); err != nil {
			return err
		}
		if err := txnFn(sc); err != nil {
			_ = sc.AbortTransaction(sc)
			return err
		}
		return sc.CommitTransaction(sc)
	}); err != nil {
		if errors.Is(err, ErrPaymentAlreadyApplied) || errors.Is(err, ErrNotFound) || errors.Is(err, ErrPayerMismatch) {
			return nil, err
		}
		return nil, fmt.Errorf("payment transaction failed: %w", err)
	}
	return &applied, nil
}
