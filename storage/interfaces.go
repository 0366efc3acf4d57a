package storage

import "olx-profit-bot/models"

// QueryReader is the read-only view of the query log that console
// rendering consumes. Every render recomputes its slice from the live
// log — there are no cached snapshots.
type QueryReader interface {
	All() []models.QueryRecord
	ByUser(userID int64) []models.QueryRecord
	Users() []models.UserSummary
	ResolveUsername(username string) (int64, bool)
	Len() int
}

// SubscriptionManager is the subscription surface the console and the
// message pipeline operate through.
type SubscriptionManager interface {
	IsActive(userID int64) bool
	Get(userID int64) (models.Subscription, bool)
	Grant(userID int64, days int) (models.Subscription, error)
	ActivateAll(userIDs []int64, days int) error
	DeactivateAll()
	ActiveCount() int
}
