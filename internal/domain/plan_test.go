package domain

import (
	"errors"
	"testing"
)

func TestPlanCatalogLookup(t *testing.T) {
	catalog := DefaultPlanCatalog()

	plan, err := catalog.Lookup("yearly")
	if err != nil {
		t.Fatalf("lookup yearly: %v", err)
	}
	if plan.Days != 365 || plan.Cost != 100 {
		t.Fatalf("unexpected yearly plan %+v", plan)
	}

	if _, err := catalog.Lookup("weekly"); !errors.Is(err, ErrInvalidPlan) {
		t.Fatalf("expected ErrInvalidPlan, got %v", err)
	}
}

func TestDefaultCatalogHasFourTiers(t *testing.T) {
	catalog := DefaultPlanCatalog()
	for _, id := range []string{"monthly", "quarterly", "semiAnnually", "yearly"} {
		if _, err := catalog.Lookup(id); err != nil {
			t.Errorf("missing plan %q", id)
		}
	}
}

func TestParsePlanCatalogOverride(t *testing.T) {
	catalog, err := ParsePlanCatalog(`{"monthly":{"days":28,"cost":12},"lifetime":{"days":36500,"cost":999}}`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	plan, err := catalog.Lookup("monthly")
	if err != nil {
		t.Fatalf("lookup monthly: %v", err)
	}
	if plan.ID != "monthly" || plan.Days != 28 || plan.Cost != 12 {
		t.Fatalf("unexpected overridden plan %+v", plan)
	}

	if _, err := catalog.Lookup("lifetime"); err != nil {
		t.Fatal("expected custom plan in overridden catalog")
	}
	// The override replaces the catalog, it does not merge with the default.
	if _, err := catalog.Lookup("yearly"); !errors.Is(err, ErrInvalidPlan) {
		t.Fatalf("expected yearly gone from overridden catalog, got %v", err)
	}
}

func TestParsePlanCatalogRejectsBadInput(t *testing.T) {
	cases := map[string]string{
		"malformed JSON":    `{"monthly":`,
		"empty object":      `{}`,
		"non-positive days": `{"monthly":{"days":0,"cost":10}}`,
		"negative cost":     `{"monthly":{"days":30,"cost":-1}}`,
	}
	for name, raw := range cases {
		if _, err := ParsePlanCatalog(raw); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}
