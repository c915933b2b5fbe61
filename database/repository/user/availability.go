package userRepo

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

const maxAvailabilityAttempts = 3

// AddAvailability is append-if-absent in a single document update: either
// the day exists without the time and the time is pushed, the day is
// missing and a new entry is pushed, or the consultant has no schedule yet
// and the first day is set. When none matches the pair already exists,
// unless a concurrent writer created the day in between.
func (r *MongoUserRepo) AddAvailability(ctx context.Context, consultantID, day, timeLabel string) ([]models.WeekdayAvailability, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	for attempt := 0; attempt < maxAvailabilityAttempts; attempt++ {
		user, err := r.pushTime(ctx, consultantID, day, timeLabel)
		if err != nil {
			return nil, err
		}
		if user == nil {
			user, err = r.seedDay(ctx, consultantID, day, timeLabel)
			if err != nil {
				return nil, err
			}
		}
		if user == nil {
			user, err = r.pushDay(ctx, consultantID, day, timeLabel)
			if err != nil {
				return nil, err
			}
		}
		if user != nil {
			return user.Availability, nil
		}

		current, err := r.GetByID(ctx, consultantID)
		if err != nil {
			return nil, err
		}
		for _, t := range current.TimesFor(day) {
			if t == timeLabel {
				return nil, ErrDuplicateSlot
			}
		}
	}
	return nil, fmt.Errorf("failed to add availability for %s after %d attempts", consultantID, maxAvailabilityAttempts)
}

func (r *MongoUserRepo) pushTime(ctx context.Context, consultantID, day, timeLabel string) (*models.User, error) {
	filter := bson.M{
		"id": consultantID,
		"available_times": bson.M{"$elemMatch": bson.M{
			"day":   day,
			"times": bson.M{"$ne": timeLabel},
		}},
	}
	update := bson.M{
		"$push": bson.M{"available_times.$[d].times": timeLabel},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	}
	opts := options.FindOneAndUpdate().
		SetArrayFilters(options.ArrayFilters{Filters: []interface{}{bson.M{"d.day": day}}}).
		SetReturnDocument(options.After)
	return r.updateAvailability(ctx, filter, update, opts)
}

// seedDay covers documents whose available_times is missing or null, where
// $push would fail.
func (r *MongoUserRepo) seedDay(ctx context.Context, consultantID, day, timeLabel string) (*models.User, error) {
	filter := bson.M{"id": consultantID, "available_times": nil}
	update := bson.M{"$set": bson.M{
		"available_times": []models.WeekdayAvailability{{Day: day, Times: []string{timeLabel}}},
		"updated_at":      time.Now().UTC(),
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	return r.updateAvailability(ctx, filter, update, opts)
}

func (r *MongoUserRepo) pushDay(ctx context.Context, consultantID, day, timeLabel string) (*models.User, error) {
	filter := bson.M{
		"id":                  consultantID,
		"available_times.day": bson.M{"$ne": day},
	}
	update := bson.M{
		"$push": bson.M{"available_times": models.WeekdayAvailability{Day: day, Times: []string{timeLabel}}},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	return r.updateAvailability(ctx, filter, update, opts)
}

// updateAvailability returns nil, nil when the filter did not match.
func (r *MongoUserRepo) updateAvailability(ctx context.Context, filter, update bson.M, opts *options.FindOneAndUpdateOptions) (*models.User, error) {
	var user models.User
	err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update availability: %w", err)
	}
	return &user, nil
}
