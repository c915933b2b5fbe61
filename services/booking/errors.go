package booking

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a BookingError; handlers map each kind to one HTTP status.
type ErrorKind string

const (
	KindValidation    ErrorKind = "validation"
	KindNotFound      ErrorKind = "not_found"
	KindConflict      ErrorKind = "conflict"
	KindAuthorization ErrorKind = "authorization"
	KindUpstream      ErrorKind = "upstream"
	KindInternal      ErrorKind = "internal"
)

// BookingError is the error type returned by the booking service.
// Two BookingErrors match under errors.Is when their codes are equal.
type BookingError struct {
	Kind    ErrorKind
	Code    string
	Message string
	Err     error
}

func (e *BookingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BookingError) Unwrap() error {
	return e.Err
}

func (e *BookingError) Is(target error) bool {
	t, ok := target.(*BookingError)
	return ok && t.Code == e.Code
}

// withMessage returns a copy of e carrying a more specific message.
func (e *BookingError) withMessage(format string, args ...any) *BookingError {
	cp := *e
	cp.Message = fmt.Sprintf(format, args...)
	return &cp
}

// wrap returns a copy of e with err as its cause.
func (e *BookingError) wrap(err error) *BookingError {
	cp := *e
	cp.Err = err
	return &cp
}

func newBookingError(kind ErrorKind, code, message string) *BookingError {
	return &BookingError{Kind: kind, Code: code, Message: message}
}

var (
	ErrMissingField             = newBookingError(KindValidation, "missing_field", "All fields are required")
	ErrInvalidDate              = newBookingError(KindValidation, "invalid_date", "Date must be YYYY-MM-DD or RFC3339")
	ErrInvalidTime              = newBookingError(KindValidation, "invalid_time", "Time must be an HH:MM 24h label")
	ErrInvalidDay               = newBookingError(KindValidation, "invalid_day", "Day must be one of SUN, MON, TUE, WED, THU, FRI, SAT")
	ErrInvalidReminder          = newBookingError(KindValidation, "invalid_reminder", "remind_before must be one of 5, 10, 15, 30")
	ErrInvalidListType          = newBookingError(KindValidation, "invalid_type", "type must be upcoming, completed or cancelled")
	ErrPriceNotConfigured       = newBookingError(KindValidation, "price_not_configured", "This consultant has not set a price")
	ErrNoAvailabilityConfigured = newBookingError(KindValidation, "no_availability_configured", "This consultant hasn't set availability for this day")
	ErrSlotNotOffered           = newBookingError(KindValidation, "slot_not_offered", "This consultant does not offer that time")
	ErrPayoutAccountMissing     = newBookingError(KindValidation, "payout_account_missing", "No payout account could be created for this consultant")

	ErrConsultantNotFound = newBookingError(KindNotFound, "consultant_not_found", "Consultant not found")
	ErrBookingNotFound    = newBookingError(KindNotFound, "booking_not_found", "Booking not found")

	ErrSlotAlreadyBooked  = newBookingError(KindConflict, "slot_already_booked", "This slot is already booked")
	ErrDuplicateSlot      = newBookingError(KindConflict, "duplicate_slot", "This time is already in your availability")
	ErrBookingNotUpcoming = newBookingError(KindConflict, "booking_not_upcoming", "Only upcoming bookings can be changed")

	ErrUnauthorized = newBookingError(KindAuthorization, "unauthorized", "You are not allowed to change this booking")

	ErrPaymentSession = newBookingError(KindUpstream, "payment_session_failed", "Could not start the payment, please try again")
	ErrPaymentAccount = newBookingError(KindUpstream, "payout_account_failed", "Could not reach the payment provider")

	ErrInternal = newBookingError(KindInternal, "internal_error", "Something went wrong")
)

// internal wraps an unexpected dependency failure.
func internal(err error) error {
	return ErrInternal.wrap(err)
}

// KindOf reports the kind of err, treating foreign errors as internal.
func KindOf(err error) ErrorKind {
	var be *BookingError
	if errors.As(err, &be) {
		return be.Kind
	}
	return KindInternal
}
