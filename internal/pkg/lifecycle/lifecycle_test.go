package lifecycle

import (
	"testing"
	"time"

	"github.com/rsinghal/paperroute/app/models"
	"github.com/rsinghal/paperroute/internal/pkg/catalog"
)

var testPlan = catalog.Plan{ID: "monthly", Name: "Monthly", Price: 300, DurationDays: 30}

func subEnding(end time.Time) *models.Subscription {
	return &models.Subscription{
		SubscriberID: 1,
		PlanID:       testPlan.ID,
		PlanName:     testPlan.Name,
		StartDate:    end.Add(-30 * 24 * time.Hour),
		EndDate:      end,
		Status:       models.SubscriptionStatusActive,
	}
}

func TestDeriveStatus(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		end  time.Time
		want string
	}{
		{name: "before end", end: now.Add(time.Hour), want: models.SubscriptionStatusActive},
		{name: "exactly at end", end: now, want: models.SubscriptionStatusExpired},
		{name: "after end", end: now.Add(-time.Hour), want: models.SubscriptionStatusExpired},
	}

	for _, tt := range tests {
		if got := DeriveStatus(subEnding(tt.end), now); got != tt.want {
			t.Fatalf("%s: DeriveStatus = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestDeriveStatusIgnoresStoredColumn(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	// Stale stored status must not leak through.
	sub := subEnding(now.Add(24 * time.Hour))
	sub.Status = models.SubscriptionStatusExpired
	if got := DeriveStatus(sub, now); got != models.SubscriptionStatusActive {
		t.Fatalf("DeriveStatus trusted the stored column: got %q", got)
	}
}

func TestDaysLeft(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		end  time.Time
		want int
	}{
		{name: "thirty full days", end: now.Add(30 * 24 * time.Hour), want: 30},
		{name: "partial day rounds up", end: now.Add(24*time.Hour + time.Minute), want: 2},
		{name: "under one day", end: now.Add(time.Hour), want: 1},
		{name: "exactly now", end: now, want: 0},
		{name: "already past", end: now.Add(-48 * time.Hour), want: 0},
	}

	for _, tt := range tests {
		if got := DaysLeft(subEnding(tt.end), now); got != tt.want {
			t.Fatalf("%s: DaysLeft = %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestNewSubscription(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	sub := NewSubscription(7, testPlan, now)
	if sub.SubscriberID != 7 {
		t.Fatalf("SubscriberID = %d, want 7", sub.SubscriberID)
	}
	if !sub.StartDate.Equal(now) {
		t.Fatalf("StartDate = %v, want %v", sub.StartDate, now)
	}
	if want := now.Add(30 * 24 * time.Hour); !sub.EndDate.Equal(want) {
		t.Fatalf("EndDate = %v, want %v", sub.EndDate, want)
	}
	if DaysLeft(sub, now) != 30 {
		t.Fatalf("fresh 30-day subscription has %d days left", DaysLeft(sub, now))
	}
}

func TestRenewStacksOnActive(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	// 20 days remaining plus a 30-day plan must yield 50, never 30.
	sub := subEnding(now.Add(20 * 24 * time.Hour))
	originalStart := sub.StartDate

	Renew(sub, testPlan, now)

	if got := DaysLeft(sub, now); got != 50 {
		t.Fatalf("DaysLeft after stacking renewal = %d, want 50", got)
	}
	if !sub.StartDate.Equal(originalStart) {
		t.Fatalf("stacking renewal moved the start date")
	}
}

func TestRenewReanchorsExpired(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	sub := subEnding(now.Add(-10 * 24 * time.Hour))
	Renew(sub, testPlan, now)

	if !sub.StartDate.Equal(now) {
		t.Fatalf("expired renewal StartDate = %v, want %v", sub.StartDate, now)
	}
	if got := DaysLeft(sub, now); got != 30 {
		t.Fatalf("DaysLeft after expired renewal = %d, want 30", got)
	}
	if DeriveStatus(sub, now) != models.SubscriptionStatusActive {
		t.Fatalf("renewed subscription not active")
	}
}

func TestRenewUpdatesPlanFields(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	yearly := catalog.Plan{ID: "yearly", Name: "Yearly", Price: 3200, DurationDays: 365}

	sub := subEnding(now.Add(5 * 24 * time.Hour))
	Renew(sub, yearly, now)

	if sub.PlanID != "yearly" || sub.PlanName != "Yearly" {
		t.Fatalf("plan fields not updated: %q %q", sub.PlanID, sub.PlanName)
	}
	if got := DaysLeft(sub, now); got != 370 {
		t.Fatalf("DaysLeft after plan switch renewal = %d, want 370", got)
	}
}
