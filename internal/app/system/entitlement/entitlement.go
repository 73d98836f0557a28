// internal/app/system/entitlement/entitlement.go

// Package entitlement bridges the pure tier policy to persisted state. It
// runs live count guards before create operations and coordinates the
// multi-record freeze that accompanies a tier demotion.
package entitlement

import (
	"context"

	"github.com/meroket/meroket/internal/app/policy/tierpolicy"
	portfoliostore "github.com/meroket/meroket/internal/app/store/portfolios"
	"github.com/meroket/meroket/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Service applies tier entitlements against the portfolio store.
type Service struct {
	portfolios *portfoliostore.Store
	log        *zap.Logger
}

// NewService constructs an entitlement Service.
func NewService(portfolios *portfoliostore.Store, logger *zap.Logger) *Service {
	return &Service{portfolios: portfolios, log: logger}
}

// FreezePortfolio sets the frozen flag. Idempotent; freezing an already
// frozen portfolio only bumps its updated timestamp.
func (s *Service) FreezePortfolio(ctx context.Context, id primitive.ObjectID) error {
	return s.portfolios.SetFrozen(ctx, id, true)
}

// UnfreezePortfolio clears the frozen flag. Idempotent.
func (s *Service) UnfreezePortfolio(ctx context.Context, id primitive.ObjectID) error {
	return s.portfolios.SetFrozen(ctx, id, false)
}

// CheckCreatePortfolio runs the live portfolio-count guard for a user. When
// the count query fails the decision is denied, never allowed, and the fetch
// error is surfaced to the caller.
func (s *Service) CheckCreatePortfolio(ctx context.Context, userID primitive.ObjectID, tier string) (tierpolicy.Decision, error) {
	count, err := s.portfolios.CountByOwner(ctx, userID)
	if err != nil {
		return tierpolicy.Decision{Allowed: false}, err
	}
	return tierpolicy.CanCreatePortfolio(int(count), tier), nil
}

// DemotionResult reports what a tier change did to the user's portfolios.
// FrozenIDs covers the whole frozen suffix; NewlyFrozenIDs and UnfrozenIDs
// hold only the portfolios whose flag actually flipped in this call.
type DemotionResult struct {
	Kept           int
	NewlyFrozen    int
	FrozenIDs      []primitive.ObjectID
	NewlyFrozenIDs []primitive.ObjectID
	UnfrozenIDs    []primitive.ObjectID
}

// ApplyTierDemotion re-partitions a user's portfolios against the new tier's
// portfolio limit. Portfolios are ordered published-first, then oldest
// created first; the prefix of limit length is kept (and unfrozen, even if
// previously frozen), the suffix is frozen. Published portfolios are thus
// preferentially protected over drafts, and among published ones the oldest
// survives.
//
// The flag writes run sequentially with no rollback; each failure is returned
// after the writes already made have stuck. The returned count is portfolios
// newly frozen by this call, which is also correct for upgrades (an upgrade
// keeps everything and unfreezes all).
func (s *Service) ApplyTierDemotion(ctx context.Context, userID primitive.ObjectID, newTier string) (DemotionResult, error) {
	limit := tierpolicy.LimitsFor(newTier).Portfolios

	all, err := s.portfolios.ListByOwner(ctx, userID)
	if err != nil {
		return DemotionResult{}, err
	}

	var res DemotionResult
	for i, p := range all {
		if i < limit {
			res.Kept++
			if p.IsFrozen {
				if err := s.portfolios.SetFrozen(ctx, p.ID, false); err != nil {
					return res, err
				}
				res.UnfrozenIDs = append(res.UnfrozenIDs, p.ID)
				s.log.Info("portfolio unfrozen",
					zap.String("portfolio_id", p.ID.Hex()),
					zap.String("owner_id", userID.Hex()),
					zap.String("tier", newTier))
			}
			continue
		}

		if err := s.portfolios.SetFrozen(ctx, p.ID, true); err != nil {
			return res, err
		}
		res.FrozenIDs = append(res.FrozenIDs, p.ID)
		if !p.IsFrozen {
			res.NewlyFrozen++
			res.NewlyFrozenIDs = append(res.NewlyFrozenIDs, p.ID)
		}
		s.log.Info("portfolio frozen",
			zap.String("portfolio_id", p.ID.Hex()),
			zap.String("owner_id", userID.Hex()),
			zap.String("tier", newTier),
			zap.Bool("was_published", p.IsPublished))
	}
	return res, nil
}

// CheckSave re-runs the freeze policy over an in-memory document before a
// save. A frozen portfolio, or a document that currently violates the tier's
// section or project limits, refuses the save with a blocking notice; the
// document in the request is never silently truncated.
func (s *Service) CheckSave(p *models.Portfolio, data models.PortfolioData, tier string) tierpolicy.Decision {
	if p.IsFrozen {
		return tierpolicy.Decision{
			Allowed: false,
			Message: "This portfolio is frozen because it exceeds your plan limits. Upgrade your plan or remove content to continue editing.",
		}
	}
	if fd := tierpolicy.ShouldFreezeDoc(data, tier); fd.Freeze {
		return tierpolicy.Decision{
			Allowed: false,
			Message: "Cannot save: the portfolio " + fd.Reason + ". Remove content or upgrade your plan.",
		}
	}
	return tierpolicy.Decision{Allowed: true}
}
