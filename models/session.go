package models

import "time"

// QueryRecord is one inbound search request, immutable once appended
// to the query log.
type QueryRecord struct {
	UserID   int64
	Username string
	Name     string
	Text     string
	Time     time.Time
}

// Subscription is the access grant for one user. An active subscription
// always carries an expiry; expiry is enforced lazily, at read time.
type Subscription struct {
	Active bool
	Until  time.Time
}

// UserSummary is the aggregated per-user view built from the query log,
// used by the admin console's user list.
type UserSummary struct {
	UserID       int64
	Username     string
	Name         string
	LastActivity time.Time
	QueryCount   int
}
