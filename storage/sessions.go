package storage

import (
	"errors"
	"sync"
	"time"

	"olx-profit-bot/models"
)

// ErrInvalidDays rejects a subscription grant with a non-positive duration.
var ErrInvalidDays = errors.New("subscription days must be a positive integer")

// SessionStore maps user ids to their subscription state. Expiry is
// enforced lazily: a read that observes a past expiry flips the entry to
// inactive as a side effect. There is no background sweep.
type SessionStore struct {
	mu   sync.Mutex
	subs map[int64]models.Subscription
	now  func() time.Time
}

// NewSessionStore creates an empty SessionStore.
func NewSessionStore() *SessionStore {
	return &SessionStore{
		subs: make(map[int64]models.Subscription),
		now:  time.Now,
	}
}

// IsActive reports whether the user holds an unexpired active
// subscription. An expired entry is deactivated in place.
func (s *SessionStore) IsActive(userID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isActiveLocked(userID)
}

func (s *SessionStore) isActiveLocked(userID int64) bool {
	sub, ok := s.subs[userID]
	if !ok {
		return false
	}
	if sub.Active && sub.Until.After(s.now()) {
		return true
	}
	if sub.Active {
		sub.Active = false
		s.subs[userID] = sub
	}
	return false
}

// Get returns the stored subscription without touching its active flag.
func (s *SessionStore) Get(userID int64) (models.Subscription, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub, ok := s.subs[userID]
	return sub, ok
}

// Grant overwrites the user's subscription with an active one expiring
// after the given number of days. Non-positive days are rejected.
func (s *SessionStore) Grant(userID int64, days int) (models.Subscription, error) {
	if days <= 0 {
		return models.Subscription{}, ErrInvalidDays
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sub := models.Subscription{
		Active: true,
		Until:  s.now().AddDate(0, 0, days),
	}
	s.subs[userID] = sub
	return sub, nil
}

// ActivateAll grants the given duration to every listed user id.
func (s *SessionStore) ActivateAll(userIDs []int64, days int) error {
	if days <= 0 {
		return ErrInvalidDays
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	until := s.now().AddDate(0, 0, days)
	for _, id := range userIDs {
		s.subs[id] = models.Subscription{Active: true, Until: until}
	}
	return nil
}

// DeactivateAll flips every stored subscription to inactive.
func (s *SessionStore) DeactivateAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, sub := range s.subs {
		sub.Active = false
		s.subs[id] = sub
	}
}

// ActiveCount returns the number of currently active subscriptions,
// applying the same lazy expiry as IsActive.
func (s *SessionStore) ActiveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for id := range s.subs {
		if s.isActiveLocked(id) {
			count++
		}
	}
	return count
}
