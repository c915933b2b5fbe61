package userRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
)

// SetStripeAccount stores the connected account id unless one is already set.
func (r *MongoUserRepo) SetStripeAccount(ctx context.Context, id, accountID string) error {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"id": id,
		"$or": bson.A{
			bson.M{"stripe_account_id": bson.M{"$exists": false}},
			bson.M{"stripe_account_id": ""},
		},
	}
	update := bson.M{"$set": bson.M{
		"stripe_account_id":      accountID,
		"stripe_onboarding_done": false,
		"updated_at":             time.Now().UTC(),
	}}
	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to set stripe account for %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("stripe account for %s not set: user missing or already linked", id)
	}
	return nil
}

// MarkOnboarded sets stripe_onboarding_done for the owner of accountID.
func (r *MongoUserRepo) MarkOnboarded(ctx context.Context, accountID string) error {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"stripe_onboarding_done": true,
		"updated_at":             time.Now().UTC(),
	}}
	res, err := r.coll.UpdateOne(ctx, bson.M{"stripe_account_id": accountID}, update)
	if err != nil {
		return fmt.Errorf("failed to mark onboarding for account %s: %w", accountID, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
