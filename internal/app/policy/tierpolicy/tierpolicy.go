// internal/app/policy/tierpolicy/tierpolicy.go

// Package tierpolicy holds the pure entitlement decision functions for
// subscription tiers. Nothing here touches the database; callers supply
// counts (from the store or the in-memory document) and a tier, and get back
// a decision.
//
// Boundary semantics are deliberate and asymmetric:
//   - The CanAdd*/CanCreate* guards use strict < (a count equal to the limit
//     denies one more addition).
//   - ShouldFreeze uses strict > (an existing document sitting exactly at a
//     limit is not in violation).
package tierpolicy

import (
	"fmt"

	"github.com/meroket/meroket/internal/domain/models"
)

// Limits is the fixed quantity table for one tier.
type Limits struct {
	Portfolios int
	Sections   int
	Projects   int
}

// limitsTable is immutable at runtime.
var limitsTable = map[string]Limits{
	models.TierFree:  {Portfolios: 1, Sections: 5, Projects: 5},
	models.TierPro:   {Portfolios: 3, Sections: 10, Projects: 25},
	models.TierHyper: {Portfolios: 5, Sections: 10, Projects: 100},
}

// LimitsFor returns the limit table entry for tier. Unknown tiers fall back
// to the free limits; the tier enum is closed and stores only persist known
// values, so the fallback is a guard against corrupt records, not an API.
func LimitsFor(tier string) Limits {
	if l, ok := limitsTable[tier]; ok {
		return l
	}
	return limitsTable[models.TierFree]
}

// Decision is the outcome of an entitlement guard.
type Decision struct {
	Allowed bool
	Message string // user-facing denial message; empty when allowed
}

func allowed() Decision {
	return Decision{Allowed: true}
}

func denied(format string, args ...any) Decision {
	return Decision{Allowed: false, Message: fmt.Sprintf(format, args...)}
}

// CanCreatePortfolio decides whether a user with currentCount portfolios may
// create one more.
func CanCreatePortfolio(currentCount int, tier string) Decision {
	limit := LimitsFor(tier).Portfolios
	if currentCount < limit {
		return allowed()
	}
	return denied("Your %s plan allows up to %d portfolio(s). Upgrade to create more.", tier, limit)
}

// CanAddSection decides whether a document with currentCount sections may
// take one more.
func CanAddSection(currentCount int, tier string) Decision {
	limit := LimitsFor(tier).Sections
	if currentCount < limit {
		return allowed()
	}
	return denied("Your %s plan allows up to %d sections per portfolio.", tier, limit)
}

// CanAddProjectCard decides whether a document with currentCount project
// cards may take one more.
func CanAddProjectCard(currentCount int, tier string) Decision {
	limit := LimitsFor(tier).Projects
	if currentCount < limit {
		return allowed()
	}
	return denied("Your %s plan allows up to %d project cards per portfolio.", tier, limit)
}

// CountProjectCards sums the child records that count toward the "project
// card" limit: experience cards and projects items. Cards in skills or
// testimonials sections are not project work product and are excluded.
func CountProjectCards(sections []models.Section) int {
	n := 0
	for _, s := range sections {
		switch s.Type {
		case models.SectionExperience:
			n += len(s.Cards)
		case models.SectionProjects:
			n += len(s.Items)
		}
	}
	return n
}

// FreezeDecision is the outcome of checking an existing document against the
// current tier limits.
type FreezeDecision struct {
	Freeze bool
	Reason string
}

// ShouldFreeze checks an already-existing document against tier limits.
// Strict >: a document exactly at a limit is not in violation, even though a
// fresh addition at that count would be denied by the CanAdd* guards.
func ShouldFreeze(sectionCount, projectCount int, tier string) FreezeDecision {
	l := LimitsFor(tier)
	if sectionCount > l.Sections {
		return FreezeDecision{
			Freeze: true,
			Reason: fmt.Sprintf("has %d sections, over the %s limit of %d", sectionCount, tier, l.Sections),
		}
	}
	if projectCount > l.Projects {
		return FreezeDecision{
			Freeze: true,
			Reason: fmt.Sprintf("has %d project cards, over the %s limit of %d", projectCount, tier, l.Projects),
		}
	}
	return FreezeDecision{}
}

// ShouldFreezeDoc is ShouldFreeze applied to a whole document.
func ShouldFreezeDoc(data models.PortfolioData, tier string) FreezeDecision {
	return ShouldFreeze(len(data.Sections), CountProjectCards(data.Sections), tier)
}
