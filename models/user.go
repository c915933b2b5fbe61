package models

import (
	"strings"
	"time"
)

const (
	RoleUser       = "user"
	RoleConsultant = "consultant"
)

// WeekdayAvailability lists the time labels a consultant offers on one weekday.
type WeekdayAvailability struct {
	Day   string   `bson:"day" json:"day"`     // SUN..SAT
	Times []string `bson:"times" json:"times"` // "HH:MM" labels in consultant order
}

// User is a client or a consultant. Only consultants carry availability,
// a price and a payout balance.
type User struct {
	ID                   string                `bson:"id" json:"id"`
	Name                 string                `bson:"name" json:"name"`
	Email                string                `bson:"email" json:"email"`
	Role                 string                `bson:"role" json:"role"`
	Price                float64               `bson:"price" json:"price"`
	Balance              int64                 `bson:"balance" json:"balance"` // minor currency units
	Availability         []WeekdayAvailability `bson:"available_times,omitempty" json:"available_times"`
	StripeAccountID      string                `bson:"stripe_account_id,omitempty" json:"stripe_account_id,omitempty"`
	StripeOnboardingDone bool                  `bson:"stripe_onboarding_done" json:"stripe_onboarding_done"`
	FCMToken             string                `bson:"fcm_token,omitempty" json:"-"`
	CreatedAt            time.Time             `bson:"created_at" json:"created_at"`
	UpdatedAt            time.Time             `bson:"updated_at" json:"updated_at"`
}

// TimesFor returns the labels configured for day, or nil.
func (u *User) TimesFor(day string) []string {
	for _, entry := range u.Availability {
		if strings.EqualFold(entry.Day, day) {
			return entry.Times
		}
	}
	return nil
}

// PriceMinorUnits converts the configured price into minor currency units.
func (u *User) PriceMinorUnits() int64 {
	return int64(u.Price*100 + 0.5)
}
