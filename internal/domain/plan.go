/**
 * @description
 * The subscription plan catalog. Plans are static configuration: a named tier
 * with a duration in days and a cost. The catalog is immutable after startup
 * and safe for concurrent reads.
 */
package domain

import (
	"encoding/json"
	"fmt"
)

// Plan is a subscription tier.
type Plan struct {
	ID   string `json:"id"`
	Days int    `json:"days"`
	Cost int    `json:"cost"`
}

// PlanCatalog is a lookup table of plans keyed by plan ID.
type PlanCatalog map[string]Plan

// DefaultPlanCatalog returns the built-in plan set.
func DefaultPlanCatalog() PlanCatalog {
	return PlanCatalog{
		"monthly":      {ID: "monthly", Days: 30, Cost: 10},
		"quarterly":    {ID: "quarterly", Days: 90, Cost: 25},
		"semiAnnually": {ID: "semiAnnually", Days: 180, Cost: 50},
		"yearly":       {ID: "yearly", Days: 365, Cost: 100},
	}
}

// ParsePlanCatalog builds a catalog from a JSON object keyed by plan ID, for
// example {"monthly":{"days":30,"cost":10}}. It lets deployments override the
// built-in plans without a code change.
func ParsePlanCatalog(raw string) (PlanCatalog, error) {
	var decoded map[string]Plan
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return nil, fmt.Errorf("parse plan catalog: %w", err)
	}
	if len(decoded) == 0 {
		return nil, fmt.Errorf("plan catalog must define at least one plan")
	}

	catalog := make(PlanCatalog, len(decoded))
	for id, plan := range decoded {
		if plan.Days <= 0 {
			return nil, fmt.Errorf("plan %q: days must be positive", id)
		}
		if plan.Cost < 0 {
			return nil, fmt.Errorf("plan %q: cost must not be negative", id)
		}
		plan.ID = id
		catalog[id] = plan
	}
	return catalog, nil
}

// Lookup returns the plan for the given ID, or ErrInvalidPlan if it is not in
// the catalog.
func (c PlanCatalog) Lookup(planID string) (Plan, error) {
	plan, ok := c[planID]
	if !ok {
		return Plan{}, ErrInvalidPlan
	}
	return plan, nil
}
