package catalog

import (
	"errors"
	"testing"
)

func TestAll(t *testing.T) {
	got := All()
	if len(got) != 3 {
		t.Fatalf("expected 3 plans, got %d", len(got))
	}

	// Returned slice is a copy; mutating it must not touch the catalog.
	got[0].Price = 1
	if fresh := All(); fresh[0].Price == 1 {
		t.Fatalf("All returned a shared slice")
	}
}

func TestFind(t *testing.T) {
	tests := []struct {
		id       string
		price    int
		duration int
	}{
		{id: "monthly", price: 300, duration: 30},
		{id: "quarterly", price: 850, duration: 90},
		{id: "yearly", price: 3200, duration: 365},
	}

	for _, tt := range tests {
		plan, err := Find(tt.id)
		if err != nil {
			t.Fatalf("Find(%q) failed: %v", tt.id, err)
		}
		if plan.Price != tt.price || plan.DurationDays != tt.duration {
			t.Fatalf("Find(%q) = %d rupees / %d days, want %d / %d",
				tt.id, plan.Price, plan.DurationDays, tt.price, tt.duration)
		}
		if len(plan.Features) == 0 {
			t.Fatalf("plan %q has no features", tt.id)
		}
	}
}

func TestFindUnknown(t *testing.T) {
	if _, err := Find("weekly"); !errors.Is(err, ErrPlanNotFound) {
		t.Fatalf("expected ErrPlanNotFound, got %v", err)
	}
}
