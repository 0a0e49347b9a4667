package catalog

import "errors"

// ErrPlanNotFound is returned when a plan id is not part of the catalog.
var ErrPlanNotFound = errors.New("plan not found in catalog")

// Plan is a static catalog entry. Prices are whole rupees, durations whole
// days. The catalog is fixed at deploy time and never read from the store.
type Plan struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Price        int      `json:"price"`
	DurationDays int      `json:"duration_days"`
	Features     []string `json:"features"`
}

var plans = []Plan{
	{
		ID:           "monthly",
		Name:         "Monthly",
		Price:        300,
		DurationDays: 30,
		Features: []string{
			"Daily newspaper delivery",
			"Access to e-paper",
			"Monthly billing",
			"Cancel anytime",
		},
	},
	{
		ID:           "quarterly",
		Name:         "Quarterly",
		Price:        850,
		DurationDays: 90,
		Features: []string{
			"Daily newspaper delivery",
			"Access to e-paper",
			"Quarterly billing",
			"5% discount on regular price",
			"Cancel anytime",
		},
	},
	{
		ID:           "yearly",
		Name:         "Yearly",
		Price:        3200,
		DurationDays: 365,
		Features: []string{
			"Daily newspaper delivery",
			"Access to e-paper",
			"Annual billing",
			"10% discount on regular price",
			"Premium customer support",
			"Cancel anytime",
		},
	},
}

// All returns the catalog in display order.
func All() []Plan {
	out := make([]Plan, len(plans))
	copy(out, plans)
	return out
}

// Find looks a plan up by id.
func Find(planID string) (Plan, error) {
	for _, p := range plans {
		if p.ID == planID {
			return p, nil
		}
	}
	return Plan{}, ErrPlanNotFound
}
