package booking

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	bookingRepo "consultme/database/repository/booking"
	userRepo "consultme/database/repository/user"
	"consultme/models"
)

// memLedger mirrors the Mongo ledger, including the unique index on
// upcoming (consultant, date, time_key) cells.
type memLedger struct {
	mu       sync.Mutex
	bookings map[string]*models.Booking
	payments map[string]*models.Payment
	users    *memUsers
}

func newMemLedger(users *memUsers) *memLedger {
	return &memLedger{
		bookings: map[string]*models.Booking{},
		payments: map[string]*models.Payment{},
		users:    users,
	}
}

func cellTaken(all map[string]*models.Booking, exceptID, consultantID string, day time.Time, timeKey string) bool {
	for id, b := range all {
		if id == exceptID {
			continue
		}
		if b.Status == models.BookingStatusUpcoming && b.ConsultantID == consultantID &&
			b.Date.Equal(day) && b.TimeKey == timeKey {
			return true
		}
	}
	return false
}

func (l *memLedger) Insert(_ context.Context, b *models.Booking) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if b.Status == models.BookingStatusUpcoming && cellTaken(l.bookings, b.ID, b.ConsultantID, b.Date, b.TimeKey) {
		return bookingRepo.ErrSlotTaken
	}
	cp := *b
	l.bookings[b.ID] = &cp
	return nil
}

func (l *memLedger) GetByID(_ context.Context, id string) (*models.Booking, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	b, ok := l.bookings[id]
	if !ok {
		return nil, bookingRepo.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (l *memLedger) FindUpcomingAt(_ context.Context, consultantID string, day time.Time, timeKey string) (*models.Booking, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, b := range l.bookings {
		if b.Status == models.BookingStatusUpcoming && b.ConsultantID == consultantID &&
			b.Date.Equal(day) && b.TimeKey == timeKey {
			cp := *b
			return &cp, nil
		}
	}
	return nil, bookingRepo.ErrNotFound
}

func (l *memLedger) ListOccupying(_ context.Context, consultantID string, day time.Time, now time.Time) ([]models.Booking, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []models.Booking
	for _, b := range l.bookings {
		if b.ConsultantID == consultantID && b.Date.Equal(day) && b.Occupies(now) {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (l *memLedger) ListByUser(_ context.Context, userID, status string) ([]models.Booking, error) {
	return l.list(func(b *models.Booking) bool { return b.UserID == userID }, status), nil
}

func (l *memLedger) ListByConsultant(_ context.Context, consultantID, status string) ([]models.Booking, error) {
	return l.list(func(b *models.Booking) bool { return b.ConsultantID == consultantID }, status), nil
}

func (l *memLedger) list(match func(*models.Booking) bool, status string) []models.Booking {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := []models.Booking{}
	for _, b := range l.bookings {
		if match(b) && (status == "" || b.Status == status) {
			out = append(out, *b)
		}
	}
	return out
}

func (l *memLedger) Reschedule(_ context.Context, id string, day time.Time, timeLabel, timeKey string, remindBefore int) (*models.Booking, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	b, ok := l.bookings[id]
	if !ok || b.Status != models.BookingStatusUpcoming {
		return nil, bookingRepo.ErrNotFound
	}
	if cellTaken(l.bookings, id, b.ConsultantID, day, timeKey) {
		return nil, bookingRepo.ErrSlotTaken
	}
	b.Date, b.Time, b.TimeKey, b.RemindBefore = day, timeLabel, timeKey, remindBefore
	cp := *b
	return &cp, nil
}

func (l *memLedger) AttachCheckoutSession(_ context.Context, id, sessionID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	b, ok := l.bookings[id]
	if !ok || b.PaymentStatus != models.PaymentStatusPending {
		return bookingRepo.ErrNotFound
	}
	b.CheckoutSessionID = sessionID
	return nil
}

func (l *memLedger) MarkFailed(_ context.Context, id string) (*models.Booking, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	b, ok := l.bookings[id]
	if !ok || b.PaymentStatus != models.PaymentStatusPending {
		return nil, bookingRepo.ErrNotFound
	}
	b.Status, b.PaymentStatus, b.HoldExpiresAt = models.BookingStatusCancelled, models.PaymentStatusFailed, nil
	cp := *b
	return &cp, nil
}

func (l *memLedger) Cancel(_ context.Context, id string) (*models.Booking, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	b, ok := l.bookings[id]
	if !ok || b.Status != models.BookingStatusUpcoming {
		return nil, bookingRepo.ErrNotFound
	}
	b.Status, b.HoldExpiresAt = models.BookingStatusCancelled, nil
	cp := *b
	return &cp, nil
}

func (l *memLedger) ReleaseExpiredHold(_ context.Context, id string, now time.Time) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	b, ok := l.bookings[id]
	if !ok || !b.HoldExpired(now) {
		return false, nil
	}
	b.Status, b.PaymentStatus = models.BookingStatusCancelled, models.PaymentStatusFailed
	return true, nil
}

func (l *memLedger) ReleaseExpiredHolds(_ context.Context, now time.Time) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var n int64
	for _, b := range l.bookings {
		if b.HoldExpired(now) {
			b.Status, b.PaymentStatus = models.BookingStatusCancelled, models.PaymentStatusFailed
			n++
		}
	}
	return n, nil
}

func (l *memLedger) ApplyPayment(_ context.Context, p *models.Payment) (*models.Booking, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	b, ok := l.bookings[p.BookingID]
	if !ok {
		return nil, bookingRepo.ErrNotFound
	}
	if p.UserID != "" && p.UserID != b.UserID {
		return nil, bookingRepo.ErrPayerMismatch
	}
	if _, dup := l.payments[p.SessionID]; dup {
		return nil, bookingRepo.ErrPaymentAlreadyApplied
	}
	p.ConsultantID = b.ConsultantID
	l.payments[p.SessionID] = p

	if b.Status == models.BookingStatusCancelled && b.PaymentStatus == models.PaymentStatusFailed &&
		!cellTaken(l.bookings, b.ID, b.ConsultantID, b.Date, b.TimeKey) {
		b.Status = models.BookingStatusUpcoming
	}
	b.PaymentStatus, b.TransactionID, b.HoldExpiresAt = models.PaymentStatusPaid, p.SessionID, nil
	l.users.credit(b.ConsultantID, p.Amount)
	cp := *b
	return &cp, nil
}

func (l *memLedger) upcomingCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, b := range l.bookings {
		if b.Status == models.BookingStatusUpcoming {
			n++
		}
	}
	return n
}

type memUsers struct {
	mu    sync.Mutex
	users map[string]*models.User
}

func newMemUsers(users ...*models.User) *memUsers {
	m := &memUsers{users: map[string]*models.User{}}
	for _, u := range users {
		m.users[u.ID] = u
	}
	return m
}

func (m *memUsers) GetByID(_ context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, userRepo.ErrNotFound
	}
	cp := *u
	cp.Availability = append([]models.WeekdayAvailability(nil), u.Availability...)
	return &cp, nil
}

func (m *memUsers) ListByIDs(ctx context.Context, ids []string) ([]models.User, error) {
	var out []models.User
	for _, id := range ids {
		if u, err := m.GetByID(ctx, id); err == nil {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (m *memUsers) AddAvailability(_ context.Context, consultantID, day, timeLabel string) ([]models.WeekdayAvailability, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[consultantID]
	if !ok {
		return nil, userRepo.ErrNotFound
	}
	for i := range u.Availability {
		if u.Availability[i].Day != day {
			continue
		}
		for _, t := range u.Availability[i].Times {
			if t == timeLabel {
				return nil, userRepo.ErrDuplicateSlot
			}
		}
		u.Availability[i].Times = append(u.Availability[i].Times, timeLabel)
		return u.Availability, nil
	}
	u.Availability = append(u.Availability, models.WeekdayAvailability{Day: day, Times: []string{timeLabel}})
	return u.Availability, nil
}

func (m *memUsers) SetStripeAccount(_ context.Context, id, accountID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok || u.StripeAccountID != "" {
		return fmt.Errorf("cannot link %s", id)
	}
	u.StripeAccountID = accountID
	return nil
}

func (m *memUsers) MarkOnboarded(_ context.Context, accountID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.StripeAccountID == accountID {
			u.StripeOnboardingDone = true
			return nil
		}
	}
	return userRepo.ErrNotFound
}

func (m *memUsers) credit(id string, amount int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		u.Balance += amount
	}
}

func (m *memUsers) balance(id string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.users[id].Balance
}

type fakePayments struct {
	mu         sync.Mutex
	failNext   error
	sessions   []models.CheckoutSessionInput
	accounts   int
	onboarding []string
	expired    []string
}

func (p *fakePayments) CreateCheckoutSession(_ context.Context, in models.CheckoutSessionInput) (string, string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failNext != nil {
		err := p.failNext
		p.failNext = nil
		return "", "", err
	}
	p.sessions = append(p.sessions, in)
	id := fmt.Sprintf("cs_test_%d", len(p.sessions))
	return id, "https://checkout.example/" + id, nil
}

func (p *fakePayments) ExpireCheckoutSession(_ context.Context, sessionID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.expired = append(p.expired, sessionID)
	return nil
}

func (p *fakePayments) CreateConnectedAccount(_ context.Context, consultant *models.User) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.accounts++
	return fmt.Sprintf("acct_%d", p.accounts), nil
}

func (p *fakePayments) CreateOnboardingLink(_ context.Context, accountID string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onboarding = append(p.onboarding, accountID)
	return "https://connect.example/" + accountID, nil
}

type sentNotification struct {
	kind    string
	payload models.NotificationPayload
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentNotification
}

func (n *recordingNotifier) Notify(_ context.Context, kind string, payload models.NotificationPayload) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentNotification{kind: kind, payload: payload})
}

func (n *recordingNotifier) kinds() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []string
	for _, s := range n.sent {
		out = append(out, s.kind)
	}
	return out
}

type queuedReminder struct {
	payload models.ReminderPayload
	fireAt  time.Time
}

type fakeReminders struct {
	mu     sync.Mutex
	queued []queuedReminder
}

func (r *fakeReminders) ScheduleReminder(_ context.Context, payload models.ReminderPayload, fireAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.queued = append(r.queued, queuedReminder{payload: payload, fireAt: fireAt})
	return nil
}

var errProviderDown = errors.New("provider unavailable")

// fixture wires a service around in-memory collaborators with a fixed clock.
type fixture struct {
	svc       *DefaultBookingService
	ledger    *memLedger
	users     *memUsers
	payments  *fakePayments
	notifier  *recordingNotifier
	reminders *fakeReminders
	now       time.Time
}

const (
	consultantID = "consultant-1"
	clientA      = "client-a"
	clientB      = "client-b"
	monday       = "2025-06-02"
	tuesday      = "2025-06-03"
	nextMonday   = "2025-06-09"
)

func newFixture() *fixture {
	f := &fixture{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	f.users = newMemUsers(
		&models.User{
			ID:    consultantID,
			Name:  "Dr Consult",
			Email: "consult@example.com",
			Role:  models.RoleConsultant,
			Price: 50,
			Availability: []models.WeekdayAvailability{
				{Day: "MON", Times: []string{"09:00", "10:00"}},
			},
		},
		&models.User{ID: clientA, Role: models.RoleUser},
		&models.User{ID: clientB, Role: models.RoleUser},
	)
	f.ledger = newMemLedger(f.users)
	f.payments = &fakePayments{}
	f.notifier = &recordingNotifier{}
	f.reminders = &fakeReminders{}
	f.svc = &DefaultBookingService{
		Bookings:  f.ledger,
		Users:     f.users,
		Payments:  f.payments,
		Notifier:  f.notifier,
		Reminders: f.reminders,
		HoldTTL:   DefaultHoldTTL,
		Now:       func() time.Time { return f.now },
	}
	return f
}

func (f *fixture) book(userID, date, clock string) (*models.CheckoutResult, error) {
	return f.svc.CreateBooking(context.Background(), userID, models.CreateBookingRequest{
		ConsultantID: consultantID,
		Date:         date,
		Time:         clock,
		RemindBefore: 15,
	})
}

func (f *fixture) pay(bookingID, payerID, sessionID string) error {
	return f.svc.HandlePaymentEvent(context.Background(), models.PaymentEvent{
		EventID:   "evt_" + sessionID,
		Kind:      models.PaymentEventSucceeded,
		RawType:   "checkout.session.completed",
		SessionID: sessionID,
		BookingID: bookingID,
		PayerID:   payerID,
		Amount:    5000,
		Currency:  "usd",
		CreatedAt: f.now,
	})
}
