package booking

import (
	"context"
	"testing"
	"time"

	"consultme/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRescheduleByOwner(t *testing.T) {
	f := newFixture()
	res, err := f.book(clientA, monday, "09:00")
	require.NoError(t, err)

	updated, err := f.svc.Reschedule(context.Background(), clientA, models.RescheduleRequest{
		BookingID: res.BookingID, Date: nextMonday, Time: "10:00", RemindBefore: 30,
	})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC), updated.Date)
	assert.Equal(t, "10:00", updated.Time)
	assert.Equal(t, 30, updated.RemindBefore)
	assert.Equal(t, []string{models.NotifyBookingRescheduled}, f.notifier.kinds())

	slots, err := f.svc.GetAvailableSlots(context.Background(), consultantID, monday)
	require.NoError(t, err)
	assert.Equal(t, []string{"09:00", "10:00"}, slots, "the old cell is free")
}

func TestRescheduleByNonOwner(t *testing.T) {
	f := newFixture()
	res, err := f.book(clientA, monday, "09:00")
	require.NoError(t, err)
	before, err := f.ledger.GetByID(context.Background(), res.BookingID)
	require.NoError(t, err)

	updated, err := f.svc.Reschedule(context.Background(), clientB, models.RescheduleRequest{
		BookingID: res.BookingID, Date: nextMonday, Time: "10:00", RemindBefore: 5,
	})
	assert.Nil(t, updated)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, KindAuthorization, KindOf(err))

	after, err := f.ledger.GetByID(context.Background(), res.BookingID)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestRescheduleConflicts(t *testing.T) {
	f := newFixture()
	mine, err := f.book(clientA, monday, "09:00")
	require.NoError(t, err)
	_, err = f.book(clientB, monday, "10:00")
	require.NoError(t, err)

	tests := []struct {
		name string
		req  models.RescheduleRequest
		want error
	}{
		{"occupied cell", models.RescheduleRequest{BookingID: mine.BookingID, Date: monday, Time: "10:00", RemindBefore: 5}, ErrSlotAlreadyBooked},
		{"time not offered", models.RescheduleRequest{BookingID: mine.BookingID, Date: monday, Time: "12:00", RemindBefore: 5}, ErrSlotNotOffered},
		{"weekday not offered", models.RescheduleRequest{BookingID: mine.BookingID, Date: tuesday, Time: "09:00", RemindBefore: 5}, ErrNoAvailabilityConfigured},
		{"unknown booking", models.RescheduleRequest{BookingID: "nope", Date: monday, Time: "10:00", RemindBefore: 5}, ErrBookingNotFound},
		{"missing booking id", models.RescheduleRequest{Date: monday, Time: "10:00", RemindBefore: 5}, ErrMissingField},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Reschedule(context.Background(), clientA, tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	booking, err := f.ledger.GetByID(context.Background(), mine.BookingID)
	require.NoError(t, err)
	assert.Equal(t, "09:00", booking.Time)
}

func TestRescheduleIntoSameCell(t *testing.T) {
	f := newFixture()
	res, err := f.book(clientA, monday, "09:00")
	require.NoError(t, err)

	updated, err := f.svc.Reschedule(context.Background(), clientA, models.RescheduleRequest{
		BookingID: res.BookingID, Date: monday, Time: "09:00", RemindBefore: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, 10, updated.RemindBefore)
}

func TestRescheduleCancelledBooking(t *testing.T) {
	f := newFixture()
	res, err := f.book(clientA, monday, "09:00")
	require.NoError(t, err)
	_, err = f.svc.Cancel(context.Background(), clientA, res.BookingID)
	require.NoError(t, err)

	_, err = f.svc.Reschedule(context.Background(), clientA, models.RescheduleRequest{
		BookingID: res.BookingID, Date: monday, Time: "10:00", RemindBefore: 5,
	})
	assert.ErrorIs(t, err, ErrBookingNotUpcoming)
	assert.Equal(t, KindConflict, KindOf(err))
}

func TestCancel(t *testing.T) {
	f := newFixture()
	res, err := f.book(clientA, monday, "09:00")
	require.NoError(t, err)

	_, err = f.svc.Cancel(context.Background(), clientB, res.BookingID)
	assert.ErrorIs(t, err, ErrUnauthorized)

	cancelled, err := f.svc.Cancel(context.Background(), clientA, res.BookingID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusCancelled, cancelled.Status)
	assert.Equal(t, 0, f.ledger.upcomingCount())

	_, err = f.book(clientB, monday, "09:00")
	assert.NoError(t, err, "a cancelled booking frees its cell")
}

func TestCancelPendingBookingExpiresCheckout(t *testing.T) {
	f := newFixture()
	res, err := f.book(clientA, monday, "09:00")
	require.NoError(t, err)

	cancelled, err := f.svc.Cancel(context.Background(), clientA, res.BookingID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusCancelled, cancelled.Status)
	assert.Equal(t, models.PaymentStatusFailed, cancelled.PaymentStatus)
	assert.Equal(t, []string{"cs_test_1"}, f.payments.expired)
}

func TestCancelPaidBookingKeepsPayment(t *testing.T) {
	f := newFixture()
	res, err := f.book(clientA, monday, "09:00")
	require.NoError(t, err)
	require.NoError(t, f.pay(res.BookingID, clientA, "cs_test_1"))

	cancelled, err := f.svc.Cancel(context.Background(), clientA, res.BookingID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusCancelled, cancelled.Status)
	assert.Equal(t, models.PaymentStatusPaid, cancelled.PaymentStatus)
	assert.Empty(t, f.payments.expired)
}

func TestPaymentAfterCancelRestoresFreeCell(t *testing.T) {
	f := newFixture()
	res, err := f.book(clientA, monday, "09:00")
	require.NoError(t, err)
	_, err = f.svc.Cancel(context.Background(), clientA, res.BookingID)
	require.NoError(t, err)

	// The session was already open in the payer's browser.
	require.NoError(t, f.pay(res.BookingID, clientA, "cs_test_1"))

	booking, err := f.ledger.GetByID(context.Background(), res.BookingID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusUpcoming, booking.Status)
	assert.Equal(t, models.PaymentStatusPaid, booking.PaymentStatus)

	slots, err := f.svc.GetAvailableSlots(context.Background(), consultantID, monday)
	require.NoError(t, err)
	assert.NotContains(t, slots, "09:00")
	assert.Equal(t, int64(5000), f.users.balance(consultantID))
}

func TestPaymentAfterCancelWhenCellRebooked(t *testing.T) {
	f := newFixture()
	res, err := f.book(clientA, monday, "09:00")
	require.NoError(t, err)
	_, err = f.svc.Cancel(context.Background(), clientA, res.BookingID)
	require.NoError(t, err)
	_, err = f.book(clientB, monday, "09:00")
	require.NoError(t, err)

	require.NoError(t, f.pay(res.BookingID, clientA, "cs_test_1"))

	booking, err := f.ledger.GetByID(context.Background(), res.BookingID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusCancelled, booking.Status)
	assert.Equal(t, 1, f.ledger.upcomingCount())

	var unmatched []models.NotificationPayload
	for _, s := range f.notifier.sent {
		if s.kind == models.NotifyPaymentUnmatched {
			unmatched = append(unmatched, s.payload)
		}
	}
	require.Len(t, unmatched, 1)
	assert.Equal(t, []string{clientA}, unmatched[0].Recipients)
}
