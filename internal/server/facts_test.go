package server

import (
	"strings"
	"testing"
)

func TestCategorizeFactFirstListWins(t *testing.T) {
	// Contains both organisation ("association") and challenge ("retention")
	// keywords; organisation is checked first.
	got := categorizeFact("Our trade association needs better retention")
	if got != factCategoryOrganisation {
		t.Fatalf("expected organisation, got %q", got)
	}
}

func TestCategorizeFact(t *testing.T) {
	cases := []struct {
		fact     string
		expected string
	}{
		{"They run a professional body for accountants", factCategoryOrganisation},
		{"Churn has been climbing since January", factCategoryChallenge},
		{"Wants to grow lapsed member win-backs", factCategoryGoal},
		{"Asked about email campaign support", factCategoryService},
		{"Budget is capped at 2k per month", factCategoryPreference},
		{"Based in Leeds", factCategoryDefault},
		{"", factCategoryDefault},
	}
	for _, tc := range cases {
		if got := categorizeFact(tc.fact); got != tc.expected {
			t.Fatalf("categorizeFact(%q) = %q, expected %q", tc.fact, got, tc.expected)
		}
	}
}

func TestCleanFactStripsBoilerplate(t *testing.T) {
	cases := []struct {
		raw      string
		expected string
	}{
		{"The user is running a trade association", "running a trade association"},
		{"They want better onboarding", "want better onboarding"},
		{"user has 4000 members", "4000 members"},
		{"She prefers quarterly reviews", "quarterly reviews"},
		{"no boilerplate here", "no boilerplate here"},
	}
	for _, tc := range cases {
		if got := cleanFact(tc.raw); got != tc.expected {
			t.Fatalf("cleanFact(%q) = %q, expected %q", tc.raw, got, tc.expected)
		}
	}
}

func TestGroupFactsDeduplicatesPerBucket(t *testing.T) {
	facts := []string{
		"The user is part of a trade association",
		"They are part of a trade association",
		"Retention is declining",
		"",
		"Based in Leeds",
	}

	categorized, entities := groupFacts(facts)
	if len(categorized) != 4 {
		t.Fatalf("expected 4 categorized facts, got %d", len(categorized))
	}
	if len(entities.Organisations) != 1 {
		t.Fatalf("expected deduplicated organisation bucket, got %v", entities.Organisations)
	}
	if entities.Organisations[0] != "part of a trade association" {
		t.Fatalf("unexpected cleaned organisation: %q", entities.Organisations[0])
	}
	if len(entities.Challenges) != 1 {
		t.Fatalf("expected one challenge, got %v", entities.Challenges)
	}
	// The default bucket keeps the fact in the flat list only.
	if categorized[3].Type != factCategoryDefault {
		t.Fatalf("expected default category, got %q", categorized[3].Type)
	}
}

func TestEntityContextGroupsByCategory(t *testing.T) {
	_, entities := groupFacts([]string{
		"The user runs a charity",
		"Renewals are declining",
		"Wants to improve engagement emails",
	})

	context := entityContext(entities)
	if !strings.Contains(context, "Organisation: runs a charity") {
		t.Fatalf("missing organisation line: %q", context)
	}
	if !strings.Contains(context, "Challenges: ") {
		t.Fatalf("missing challenges line: %q", context)
	}

	if got := entityContext(factEntities{}); got != "" {
		t.Fatalf("expected empty context for empty entities, got %q", got)
	}
}
