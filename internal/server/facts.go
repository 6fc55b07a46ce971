package server

import (
	"regexp"
	"strings"
)

const (
	factCategoryOrganisation = "organisation"
	factCategoryChallenge    = "challenge"
	factCategoryGoal         = "goal"
	factCategoryService      = "service"
	factCategoryPreference   = "preference"
	factCategoryDefault      = "fact"
)

// factKeywordLists are checked in order and the first list with any substring
// match wins, so a fact mentioning both an association and retention counts as
// an organisation fact.
var factKeywordLists = []struct {
	category string
	keywords []string
}{
	{factCategoryOrganisation, []string{
		"association", "professional body", "trade", "charity", "membership",
		"institute", "society", "federation", "guild",
	}},
	{factCategoryChallenge, []string{
		"retention", "churn", "engagement", "acquisition", "renewals",
		"declining", "struggling", "problem", "challenge", "issue",
	}},
	{factCategoryGoal, []string{
		"goal", "want", "target", "grow", "increase", "improve", "achieve",
		"looking for", "need",
	}},
	{factCategoryService, []string{
		"marketing", "strategy", "content", "campaign", "digital", "email",
		"event", "referral", "onboarding",
	}},
	{factCategoryPreference, []string{
		"prefer", "important", "budget", "timeline", "priority", "interested in",
	}},
}

func categorizeFact(fact string) string {
	lowered := strings.ToLower(fact)
	for _, list := range factKeywordLists {
		for _, keyword := range list.keywords {
			if strings.Contains(lowered, keyword) {
				return list.category
			}
		}
	}
	return factCategoryDefault
}

var (
	factSubjectPrefix = regexp.MustCompile(`(?i)^(the user |user |they |he |she )`)
	factVerbPrefix    = regexp.MustCompile(`(?i)^(is |are |has |have |wants |prefers )`)
)

// cleanFact strips leading pronoun/verb boilerplate to leave a display-friendly
// fragment. Best-effort text massaging, not guaranteed grammatical.
func cleanFact(fact string) string {
	cleaned := factSubjectPrefix.ReplaceAllString(fact, "")
	cleaned = factVerbPrefix.ReplaceAllString(cleaned, "")
	return strings.TrimSpace(cleaned)
}

type categorizedFact struct {
	Fact  string `json:"fact"`
	Type  string `json:"type"`
	Clean string `json:"clean"`
}

type factEntities struct {
	Organisations []string `json:"organisations"`
	Challenges    []string `json:"challenges"`
	Goals         []string `json:"goals"`
	Services      []string `json:"services"`
	Preferences   []string `json:"preferences"`
}

// groupFacts buckets raw fact strings by category, deduplicating cleaned
// values per bucket while preserving insertion order.
func groupFacts(facts []string) ([]categorizedFact, factEntities) {
	categorized := make([]categorizedFact, 0, len(facts))
	entities := factEntities{
		Organisations: []string{},
		Challenges:    []string{},
		Goals:         []string{},
		Services:      []string{},
		Preferences:   []string{},
	}

	for _, fact := range facts {
		if strings.TrimSpace(fact) == "" {
			continue
		}
		category := categorizeFact(fact)
		clean := cleanFact(fact)
		categorized = append(categorized, categorizedFact{Fact: fact, Type: category, Clean: clean})

		switch category {
		case factCategoryOrganisation:
			entities.Organisations = appendUnique(entities.Organisations, clean)
		case factCategoryChallenge:
			entities.Challenges = appendUnique(entities.Challenges, clean)
		case factCategoryGoal:
			entities.Goals = appendUnique(entities.Goals, clean)
		case factCategoryService:
			entities.Services = appendUnique(entities.Services, clean)
		case factCategoryPreference:
			entities.Preferences = appendUnique(entities.Preferences, clean)
		}
	}
	return categorized, entities
}

func appendUnique(values []string, value string) []string {
	for _, existing := range values {
		if existing == value {
			return values
		}
	}
	return append(values, value)
}

// entityContext renders grouped entities as the short per-user summary shown
// alongside the chat widget.
func entityContext(entities factEntities) string {
	parts := make([]string, 0, 5)
	if len(entities.Organisations) > 0 {
		parts = append(parts, "Organisation: "+strings.Join(entities.Organisations, ", "))
	}
	if len(entities.Challenges) > 0 {
		parts = append(parts, "Challenges: "+strings.Join(entities.Challenges, ", "))
	}
	if len(entities.Goals) > 0 {
		parts = append(parts, "Goals: "+strings.Join(entities.Goals, ", "))
	}
	if len(entities.Services) > 0 {
		parts = append(parts, "Interested in: "+strings.Join(entities.Services, ", "))
	}
	if len(entities.Preferences) > 0 {
		parts = append(parts, "Preferences: "+strings.Join(entities.Preferences, ", "))
	}
	return strings.Join(parts, "\n")
}
