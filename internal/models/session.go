package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// RecentlyViewedLimit caps the product handles kept per session.
const RecentlyViewedLimit = 12

type Session struct {
	ID                     string         `json:"id" gorm:"type:varchar(36);primaryKey"`
	CartID                 *string        `json:"cart_id"`
	CustomerAccessToken    *string        `json:"-"`
	CustomerTokenExpiresAt *time.Time     `json:"customer_token_expires_at"`
	RecentlyViewed         pq.StringArray `json:"recently_viewed" gorm:"type:text"`
	CreatedAt              time.Time      `json:"created_at"`
	UpdatedAt              time.Time      `json:"updated_at"`
}

func (s *Session) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	return nil
}

// IsLoggedIn reports whether the session carries a customer token.
func (s *Session) IsLoggedIn() bool {
	return s.CustomerAccessToken != nil && *s.CustomerAccessToken != ""
}

// ClearCustomer drops the customer token and its expiry.
func (s *Session) ClearCustomer() {
	s.CustomerAccessToken = nil
	s.CustomerTokenExpiresAt = nil
}

// SetCustomer stores a customer token expiring at expiresAt. A zero
// expiresAt leaves the expiry unset.
func (s *Session) SetCustomer(token string, expiresAt time.Time) {
	s.CustomerAccessToken = &token
	s.CustomerTokenExpiresAt = nil
	if !expiresAt.IsZero() {
		s.CustomerTokenExpiresAt = &expiresAt
	}
}

// TokenExpiresWithin reports whether the customer token expires inside d.
func (s *Session) TokenExpiresWithin(now time.Time, d time.Duration) bool {
	if s.CustomerTokenExpiresAt == nil {
		return false
	}
	return s.CustomerTokenExpiresAt.Sub(now) < d
}

// Viewed moves handle to the front of the recently viewed list.
func (s *Session) Viewed(handle string) {
	if handle == "" {
		return
	}
	next := pq.StringArray{handle}
	for _, h := range s.RecentlyViewed {
		if h != handle && len(next) < RecentlyViewedLimit {
			next = append(next, h)
		}
	}
	s.RecentlyViewed = next
}
