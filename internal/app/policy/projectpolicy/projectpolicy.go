// Package projectpolicy provides the visibility lifecycle rules for
// project listings.
//
// Lifecycle rules:
//   - A listing is visible to non-owners only while its Active flag is set
//     AND it has not outlived the TTL window measured from CreatedAt
//   - A listing whose server timestamp has not materialized yet (zero
//     CreatedAt) is never considered expired
//   - Reactivation is only meaningful for an expired listing; it restarts
//     the TTL window by resetting CreatedAt and never touches the view count
//
// All functions are pure; callers supply "now" so the rules stay testable
// and so a request evaluates every listing against one instant.
package projectpolicy

import (
	"time"

	"github.com/hackmatehq/hackmate/internal/domain/models"
)

// DefaultTTL is the visibility window for a listing before it drops out of
// the browse page absent a reactivation.
const DefaultTTL = 90 * 24 * time.Hour

// IsExpired reports whether a listing created at createdAt has outlived ttl
// as of now. A zero createdAt (server timestamp still resolving) is never
// expired.
func IsExpired(createdAt, now time.Time, ttl time.Duration) bool {
	if createdAt.IsZero() {
		return false
	}
	return now.Sub(createdAt) > ttl
}

// IsVisibleToOthers reports whether p should appear on the browse page for
// users other than its owner.
func IsVisibleToOthers(p models.Project, now time.Time, ttl time.Duration) bool {
	return p.Active && !IsExpired(p.CreatedAt, now, ttl)
}

// CanReactivate reports whether p is eligible for reactivation. Only an
// expired listing qualifies; reactivating a live one is a no-op the UI
// should not offer.
func CanReactivate(p models.Project, now time.Time, ttl time.Duration) bool {
	return IsExpired(p.CreatedAt, now, ttl)
}

// Reactivate returns p restored to visibility: Active set, CreatedAt reset
// to now so the TTL window restarts. The view count carries over.
func Reactivate(p models.Project, now time.Time) models.Project {
	p.Active = true
	p.CreatedAt = now
	return p
}
