package storage

import (
	"strings"
	"sync"

	"olx-profit-bot/models"
)

// QueryLog is a bounded, append-only log of inbound search requests,
// backed by a fixed-capacity ring buffer. Once full, every append evicts
// the single oldest record. It is the source of truth for the admin
// console's user list and per-user history views.
type QueryLog struct {
	mu   sync.Mutex
	buf  []models.QueryRecord
	head int
	size int
}

// NewQueryLog creates a QueryLog holding at most capacity records.
func NewQueryLog(capacity int) *QueryLog {
	if capacity < 1 {
		capacity = 1
	}
	return &QueryLog{buf: make([]models.QueryRecord, capacity)}
}

// Append stores a record, evicting the oldest one when the log is full.
// Eviction is atomic with the append that triggers it.
func (l *QueryLog) Append(rec models.QueryRecord) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.size < len(l.buf) {
		l.buf[(l.head+l.size)%len(l.buf)] = rec
		l.size++
		return
	}
	l.buf[l.head] = rec
	l.head = (l.head + 1) % len(l.buf)
}

// Len returns the number of records currently held.
func (l *QueryLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.size
}

// All returns the held records in append order, oldest first.
func (l *QueryLog) All() []models.QueryRecord {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]models.QueryRecord, l.size)
	for i := 0; i < l.size; i++ {
		out[i] = l.buf[(l.head+i)%len(l.buf)]
	}
	return out
}

// ByUser returns all records of one user, oldest first.
func (l *QueryLog) ByUser(userID int64) []models.QueryRecord {
	var out []models.QueryRecord
	for _, rec := range l.All() {
		if rec.UserID == userID {
			out = append(out, rec)
		}
	}
	return out
}

// Users aggregates the log into per-user summaries, ordered by each
// user's first appearance in the log.
func (l *QueryLog) Users() []models.UserSummary {
	byID := make(map[int64]*models.UserSummary)
	var order []int64

	for _, rec := range l.All() {
		s, ok := byID[rec.UserID]
		if !ok {
			s = &models.UserSummary{
				UserID:       rec.UserID,
				Username:     rec.Username,
				Name:         rec.Name,
				LastActivity: rec.Time,
			}
			byID[rec.UserID] = s
			order = append(order, rec.UserID)
		}
		s.QueryCount++
		if rec.Time.After(s.LastActivity) {
			s.LastActivity = rec.Time
		}
	}

	out := make([]models.UserSummary, 0, len(order))
	for _, id := range order {
		out = append(out, *byID[id])
	}
	return out
}

// ResolveUsername finds the user id behind a username, ignoring case and
// a leading "@". Returns false when the name never appeared in the log.
func (l *QueryLog) ResolveUsername(username string) (int64, bool) {
	username = strings.ToLower(strings.TrimPrefix(username, "@"))
	if username == "" {
		return 0, false
	}
	for _, rec := range l.All() {
		if strings.ToLower(rec.Username) == username {
			return rec.UserID, true
		}
	}
	return 0, false
}
