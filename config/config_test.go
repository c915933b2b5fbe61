package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValidateBookingHoldTTL(t *testing.T) {
	cases := []struct {
		name string
		ttl  time.Duration
		ok   bool
	}{
		{"default", 35 * time.Minute, true},
		{"minimum", MinBookingHoldTTL, true},
		{"stripe floor", 30 * time.Minute, false},
		{"unset", 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Config{BookingHoldTTL: tc.ttl}.Validate()
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorContains(t, err, "BOOKING_HOLD_TTL")
			}
		})
	}
}
