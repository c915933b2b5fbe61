package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestUserWithoutScheduleOmitsAvailableTimes(t *testing.T) {
	raw, err := bson.Marshal(User{ID: "client-a", Role: RoleUser})
	require.NoError(t, err)

	_, err = bson.Raw(raw).LookupErr("available_times")
	assert.Error(t, err, "a null array would break later $push updates")

	raw, err = bson.Marshal(User{ID: "consultant-1", Availability: []WeekdayAvailability{{Day: "MON", Times: []string{"09:00"}}}})
	require.NoError(t, err)
	_, err = bson.Raw(raw).LookupErr("available_times")
	assert.NoError(t, err)
}
