// Package lifecycle computes subscription state. Everything here is pure:
// persistence is the caller's responsibility, and the stored status column is
// never consulted — state is always derived from the date range.
package lifecycle

import (
	"time"

	"github.com/rsinghal/paperroute/app/models"
	"github.com/rsinghal/paperroute/internal/pkg/catalog"
)

const day = 24 * time.Hour

// DeriveStatus returns active iff now is strictly before the end date. At
// exactly the end date the subscription is already expired.
func DeriveStatus(sub *models.Subscription, now time.Time) string {
	if now.Before(sub.EndDate) {
		return models.SubscriptionStatusActive
	}
	return models.SubscriptionStatusExpired
}

// DaysLeft returns ceil((end - now) / 1 day), floored at zero.
func DaysLeft(sub *models.Subscription, now time.Time) int {
	remaining := sub.EndDate.Sub(now)
	if remaining <= 0 {
		return 0
	}
	days := int(remaining / day)
	if remaining%day > 0 {
		days++
	}
	return days
}

// NewSubscription builds a fresh subscription anchored at now. The caller must
// have checked that no active subscription exists for the subscriber; renewals
// of an existing record go through Renew instead.
func NewSubscription(subscriberID uint, plan catalog.Plan, now time.Time) *models.Subscription {
	return &models.Subscription{
		SubscriberID: subscriberID,
		PlanID:       plan.ID,
		PlanName:     plan.Name,
		StartDate:    now,
		EndDate:      now.Add(time.Duration(plan.DurationDays) * day),
		Status:       models.SubscriptionStatusActive,
	}
}

// Renew extends a subscription in place. An active subscription stacks the
// plan duration onto the current end date so early renewals never lose
// paid-for days. An expired one is re-anchored at now, like a new purchase.
func Renew(sub *models.Subscription, plan catalog.Plan, now time.Time) *models.Subscription {
	duration := time.Duration(plan.DurationDays) * day
	if DeriveStatus(sub, now) == models.SubscriptionStatusActive {
		sub.EndDate = sub.EndDate.Add(duration)
	} else {
		sub.StartDate = now
		sub.EndDate = now.Add(duration)
	}
	sub.PlanID = plan.ID
	sub.PlanName = plan.Name
	sub.Status = models.SubscriptionStatusActive
	return sub
}
