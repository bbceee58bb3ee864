// Package autoflag decides which search results enter the review queue
// without an analyst asking. Rules are independent: an entity matching
// several rules is flagged once, carrying every matching reason.
package autoflag

import (
	"watchgate/internal/domain"
)

// Flag reasons attached by the default rules. Stable strings: they appear in
// review items, audit events, and API responses.
const (
	ReasonSanctioned = "Sanctioned entity detected"
	ReasonPEP        = "PEP detected"
)

// Rule matches entities that warrant review and names why.
type Rule struct {
	Reason string
	Match  func(domain.EntityRecord) bool
}

// DefaultRules returns the built-in screening policy: sanctioned entities
// and politically exposed persons.
func DefaultRules() []Rule {
	return []Rule{
		{
			Reason: ReasonSanctioned,
			Match:  func(e domain.EntityRecord) bool { return e.HasTopic(domain.TopicSanction) },
		},
		{
			Reason: ReasonPEP,
			Match:  func(e domain.EntityRecord) bool { return e.HasTopic(domain.TopicPEP) },
		},
	}
}

// Reasons evaluates every rule against the entity and returns the matching
// reasons in rule order. An empty result means the entity is not flagged.
func Reasons(rules []Rule, entity domain.EntityRecord) []string {
	var reasons []string
	for _, rule := range rules {
		if rule.Match(entity) {
			reasons = append(reasons, rule.Reason)
		}
	}
	return reasons
}
